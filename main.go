package main

import (
	"context"
	"io"
	"log"

	api "testimonial-backend/cmd/api"
	"testimonial-backend/internal/testimonial/domain"
	"testimonial-backend/internal/testimonial/repository"
	"testimonial-backend/internal/testimonial/usecase"
	"testimonial-backend/pkg/ai"
	"testimonial-backend/pkg/config"
	"testimonial-backend/pkg/database"
	"testimonial-backend/pkg/gemini"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(&domain.Testimonial{}); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	testimonialRepo := repository.NewTestimonialRepository(db)

	if cfg.WebhookSecret == "" {
		log.Printf("[WARN] WEBHOOK_SECRET not set, webhook signature verification is DISABLED (development mode only)")
	}

	// Initialize the classifier
	classifier := newClassifier(context.Background(), cfg)
	if closer, ok := classifier.(io.Closer); ok {
		defer closer.Close()
	}

	// Initialize use case (dependency injection)
	testimonialUsecase := usecase.NewTestimonialUsecase(testimonialRepo, classifier, cfg)

	// Initialize HTTP handler
	handler := api.NewHandler(testimonialUsecase, cfg)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

// newClassifier selects the AI provider. Provider selection lives here in
// the wiring so pkg/ai and pkg/gemini stay independent. A nil return
// routes every submission through the fallback analysis to manual review.
func newClassifier(ctx context.Context, cfg *config.Config) ai.Classifier {
	switch ai.ProviderType(cfg.AIProvider) {
	case ai.ProviderGemini:
		svc, err := gemini.NewService(ctx, cfg.GeminiApiKey, "")
		if err != nil {
			log.Printf("[WARN] Failed to initialize Gemini classifier: %v", err)
			return nil
		}
		log.Printf("Classifier initialized with provider: gemini")
		return svc

	case ai.ProviderOllama:
		log.Printf("Classifier initialized with provider: ollama")
		return ai.NewOllamaClassifier(cfg.OllamaBaseURL, cfg.OllamaModel)

	default:
		// Prefer Gemini when an API key is available, otherwise Ollama
		if cfg.GeminiApiKey != "" {
			svc, err := gemini.NewService(ctx, cfg.GeminiApiKey, "")
			if err != nil {
				log.Printf("[WARN] Failed to initialize Gemini classifier: %v, falling back to Ollama", err)
				return ai.NewOllamaClassifier(cfg.OllamaBaseURL, cfg.OllamaModel)
			}
			log.Printf("Classifier initialized with provider: gemini (auto)")
			return svc
		}
		log.Printf("Classifier initialized with provider: ollama (auto)")
		return ai.NewOllamaClassifier(cfg.OllamaBaseURL, cfg.OllamaModel)
	}
}
