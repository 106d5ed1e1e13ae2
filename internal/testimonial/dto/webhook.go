package dto

import "time"

// InboundEmail is the transactional-email provider's inbound-message
// webhook payload. It lives only for the duration of one request.
type InboundEmail struct {
	FromName string `json:"FromName"`
	From     string `json:"From"`
	To       string `json:"To"`
	TextBody string `json:"TextBody"`
	HtmlBody string `json:"HtmlBody"`
}

// AnalysisSummary is the trimmed classification view returned to the
// webhook caller. Full reasoning and internal identifiers stay in the
// store.
type AnalysisSummary struct {
	IsTestimonial      bool   `json:"isTestimonial"`
	Confidence         int    `json:"confidence"`
	SentimentScore     int    `json:"sentimentScore"`
	SentimentCategory  string `json:"sentimentCategory"`
	ManualReviewNeeded bool   `json:"manualReviewNeeded"`
}

// WebhookResponse describes a processed submission (saved or not).
type WebhookResponse struct {
	Message   string           `json:"message"`
	Saved     bool             `json:"saved"`
	Analysis  *AnalysisSummary `json:"analysis"`
	Timestamp string           `json:"timestamp"`
}

// TestimonialView is the public read-side projection of an accepted
// record. Sender addresses are never exposed.
type TestimonialView struct {
	Name              string    `json:"name"`
	Message           string    `json:"message"`
	SentimentCategory string    `json:"sentiment_category"`
	CreatedAt         time.Time `json:"created_at"`
}

// TestimonialsResponse wraps the public list endpoint.
type TestimonialsResponse struct {
	Testimonials []TestimonialView `json:"testimonials"`
	Limit        int               `json:"limit"`
	Offset       int               `json:"offset"`
}
