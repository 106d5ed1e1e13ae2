package usecase

import (
	"context"
	"errors"

	"testimonial-backend/internal/testimonial/domain"
	"testimonial-backend/internal/testimonial/dto"
	"testimonial-backend/pkg/ai"
)

var (
	// ErrValidation marks a structurally invalid payload (HTTP 400).
	ErrValidation = errors.New("invalid payload")
	// ErrPersistence marks a failed store write (HTTP 500). The email
	// provider may re-deliver per its own retry policy.
	ErrPersistence = errors.New("failed to save testimonial")
)

// Outcome identifies the terminal state of one webhook pipeline run.
type Outcome int

const (
	// OutcomeSaved means the record passed every stage and was inserted.
	OutcomeSaved Outcome = iota
	// OutcomeNotSaved means classification rejected the message or its
	// confidence fell below the save bar. Not an error for the caller.
	OutcomeNotSaved
	// OutcomeWrongRecipient means the mail was not addressed to the
	// testimonial intake address.
	OutcomeWrongRecipient
	// OutcomeRateLimited means the sender already submitted within the
	// dedup window.
	OutcomeRateLimited
)

// Result describes how the pipeline disposed of one inbound email.
type Result struct {
	Outcome            Outcome
	Analysis           *ai.Analysis
	ManualReviewNeeded bool
	Record             *domain.Testimonial
}

// TestimonialUsecase processes inbound testimonial emails and serves the
// read side.
type TestimonialUsecase interface {
	ProcessInboundEmail(ctx context.Context, in *dto.InboundEmail) (*Result, error)
	ListTestimonials(limit, offset int) ([]*domain.Testimonial, error)
}
