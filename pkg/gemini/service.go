package gemini

import (
	"context"
	"fmt"

	"testimonial-backend/pkg/ai"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Service wraps the Gemini API client for testimonial classification.
type Service struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewService creates a Gemini-backed classifier. The default model is
// gemini-2.0-flash-exp (fast and free).
func NewService(ctx context.Context, apiKey, modelName string) (*Service, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.0-flash-exp"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(ai.SystemInstruction)},
	}
	model.GenerationConfig = genai.GenerationConfig{
		// Low temperature for consistent classification
		Temperature:      genai.Ptr[float32](0.1),
		MaxOutputTokens:  genai.Ptr[int32](300),
		ResponseMIMEType: "application/json",
	}

	return &Service{client: client, model: model}, nil
}

// Close closes the underlying Gemini client.
func (s *Service) Close() error {
	return s.client.Close()
}

// ClassifyTestimonial implements ai.Classifier.
func (s *Service) ClassifyTestimonial(ctx context.Context, senderName, senderEmail, message string) (*ai.Analysis, error) {
	prompt := ai.BuildPrompt(senderName, message)

	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("gemini API error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from gemini")
	}

	textPart, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return nil, fmt.Errorf("unexpected response type from gemini")
	}

	return ai.ParseAnalysis(string(textPart))
}
