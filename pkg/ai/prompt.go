package ai

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"testimonial-backend/pkg/sanitize"
)

// SystemInstruction is shared by all providers.
const SystemInstruction = "You are an expert content analyst specializing in testimonial classification and sentiment analysis. Always respond with valid JSON only."

const classifyPromptTemplate = `Analyze the following email content to determine:
1. Is this a genuine testimonial/feedback about a product or service? (not spam, sales pitch, or unrelated content)
2. What is the sentiment score from -100 (very negative) to 100 (very positive)?

Email from: %s
Message: "%s"

Respond with ONLY a JSON object in this exact format:
{
  "isTestimonial": boolean,
  "confidence": number (0-100),
  "sentimentScore": number (-100 to 100),
  "sentimentCategory": "very_negative" | "negative" | "neutral" | "positive" | "very_positive",
  "reasoning": "brief explanation"
}

Classification criteria:
- Testimonial: ANY genuine feedback about a service/product/experience (positive OR negative experiences)
- Not testimonial: Spam, sales pitches, unrelated content, automated messages, general questions
- Include negative reviews/complaints as testimonials if they describe actual experience with the product/service
- Sentiment: Consider overall tone, specific words, and emotional expression`

// BuildPrompt formats the classification prompt. Contact details are
// redacted before the text leaves the process.
func BuildPrompt(senderName, message string) string {
	return fmt.Sprintf(classifyPromptTemplate,
		sanitize.RedactContact(senderName),
		sanitize.RedactContact(message))
}

// ParseAnalysis parses a provider's JSON answer into an Analysis.
// Markdown code fences are stripped first since models wrap JSON in them.
// Missing fields or an unknown category are treated as a malformed
// response so the caller can fall back.
func ParseAnalysis(raw string) (*Analysis, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)

	var wire struct {
		IsTestimonial     *bool    `json:"isTestimonial"`
		Confidence        *float64 `json:"confidence"`
		SentimentScore    *float64 `json:"sentimentScore"`
		SentimentCategory string   `json:"sentimentCategory"`
		Reasoning         string   `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(clean), &wire); err != nil {
		return nil, fmt.Errorf("failed to parse classifier response: %w", err)
	}
	if wire.IsTestimonial == nil || wire.Confidence == nil || wire.SentimentScore == nil ||
		wire.SentimentCategory == "" || wire.Reasoning == "" {
		return nil, fmt.Errorf("invalid response structure from classifier")
	}
	if !ValidCategory(wire.SentimentCategory) {
		return nil, fmt.Errorf("invalid sentiment category: %q", wire.SentimentCategory)
	}

	analysis := &Analysis{
		IsTestimonial:     *wire.IsTestimonial,
		Confidence:        int(math.Round(*wire.Confidence)),
		SentimentScore:    int(math.Round(*wire.SentimentScore)),
		SentimentCategory: wire.SentimentCategory,
		Reasoning:         wire.Reasoning,
	}
	analysis.Clamp()
	return analysis, nil
}
