package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string

	// Webhook intake
	WebhookSecret string // empty disables signature verification (development mode)
	IntakeAddress string

	// AI provider
	AIProvider    string
	GeminiApiKey  string
	OllamaBaseURL string
	OllamaModel   string

	// Filtering thresholds
	MinTestimonialConfidence int
	ManualReviewConfidence   int
	VeryNegativeThreshold    int

	// Dedup window for repeat submissions from one sender
	DedupWindow time.Duration
	DedupLimit  int
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	dedupWindow := time.Hour
	if w := os.Getenv("DEDUP_WINDOW"); w != "" {
		if parsed, err := time.ParseDuration(w); err == nil {
			dedupWindow = parsed
		}
	}

	return &Config{
		Port:          getEnv("PORT", "8080"),
		DatabaseURL:   getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=testimonials port=5432 sslmode=disable"),
		WebhookSecret: getEnv("WEBHOOK_SECRET", ""),
		IntakeAddress: getEnv("INTAKE_ADDRESS", "testimonial@anandu.dev"),
		AIProvider:    getEnv("AI_PROVIDER", "auto"),
		GeminiApiKey:  getEnv("GEMINI_API_KEY", ""),
		OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:   getEnv("OLLAMA_MODEL", "llama3"),

		MinTestimonialConfidence: getEnvInt("MIN_TESTIMONIAL_CONFIDENCE", 70),
		ManualReviewConfidence:   getEnvInt("MANUAL_REVIEW_CONFIDENCE", 60),
		VeryNegativeThreshold:    getEnvInt("VERY_NEGATIVE_THRESHOLD", -50),

		DedupWindow: dedupWindow,
		DedupLimit:  getEnvInt("DEDUP_LIMIT", 3),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
