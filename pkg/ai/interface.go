package ai

import "context"

// Sentiment categories, ordered from worst to best.
const (
	SentimentVeryNegative = "very_negative"
	SentimentNegative     = "negative"
	SentimentNeutral      = "neutral"
	SentimentPositive     = "positive"
	SentimentVeryPositive = "very_positive"
)

// Analysis is the normalized result of classifying one inbound message.
type Analysis struct {
	IsTestimonial     bool   `json:"isTestimonial"`
	Confidence        int    `json:"confidence"`     // 0-100
	SentimentScore    int    `json:"sentimentScore"` // -100 to 100
	SentimentCategory string `json:"sentimentCategory"`
	Reasoning         string `json:"reasoning"`
}

// Clamp forces numeric fields into their declared ranges. Provider output
// is not trusted to stay in range.
func (a *Analysis) Clamp() {
	a.Confidence = clamp(a.Confidence, 0, 100)
	a.SentimentScore = clamp(a.SentimentScore, -100, 100)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ValidCategory reports whether c is one of the five sentiment categories.
func ValidCategory(c string) bool {
	switch c {
	case SentimentVeryNegative, SentimentNegative, SentimentNeutral, SentimentPositive, SentimentVeryPositive:
		return true
	}
	return false
}

// Classifier is the interface for testimonial classification providers.
// Implement this interface to add new AI providers (Gemini, Ollama, etc.)
type Classifier interface {
	ClassifyTestimonial(ctx context.Context, senderName, senderEmail, message string) (*Analysis, error)
}

// ProviderType represents the AI provider type
type ProviderType string

const (
	ProviderGemini ProviderType = "gemini"
	ProviderOllama ProviderType = "ollama"
	ProviderAuto   ProviderType = "auto"
)

// FallbackAnalysis is the conservative result used when classification
// fails: let the item through to the manual-review path rather than
// silently dropping or silently accepting it. Its confidence of 50 sits
// below the save bar, so fallback-classified items are never auto-saved.
func FallbackAnalysis(reason string) *Analysis {
	return &Analysis{
		IsTestimonial:     true,
		Confidence:        50,
		SentimentScore:    0,
		SentimentCategory: SentimentNeutral,
		Reasoning:         reason,
	}
}
