package domain

import "time"

// Testimonial is an accepted customer testimonial enriched with the
// classifier's analysis. Records are insert-only: the pipeline never
// updates or deletes them.
type Testimonial struct {
	ID                      string    `json:"id" gorm:"primaryKey"`
	Name                    string    `json:"name" gorm:"not null"`
	Email                   string    `json:"email" gorm:"index;not null"`
	Message                 string    `json:"message" gorm:"type:text;not null"`
	CreatedAt               time.Time `json:"created_at" gorm:"index"`
	IsTestimonialConfidence int       `json:"is_testimonial_confidence"`
	SentimentScore          int       `json:"sentiment_score"`
	SentimentCategory       string    `json:"sentiment_category"`
	ManualReviewNeeded      bool      `json:"manual_review_needed"`
	LLMReasoning            string    `json:"llm_reasoning" gorm:"column:llm_reasoning;type:text"`
	LLMProcessedAt          time.Time `json:"llm_processed_at" gorm:"column:llm_processed_at"`
}

// TableName specifies the table name for GORM
func (Testimonial) TableName() string {
	return "testimonials"
}
