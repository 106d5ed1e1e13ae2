package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"testimonial-backend/internal/testimonial/domain"
	"testimonial-backend/internal/testimonial/dto"
	"testimonial-backend/internal/testimonial/repository"
	"testimonial-backend/pkg/ai"
	"testimonial-backend/pkg/config"
	"testimonial-backend/pkg/sanitize"

	"github.com/k3a/html2text"
)

const minMessageLength = 5

// testimonialUsecase implements TestimonialUsecase
type testimonialUsecase struct {
	repo       repository.TestimonialRepository
	classifier ai.Classifier
	cfg        *config.Config
	now        func() time.Time
}

// NewTestimonialUsecase creates the intake pipeline. classifier may be
// nil; every submission then gets the fallback analysis and is routed to
// manual review.
func NewTestimonialUsecase(repo repository.TestimonialRepository, classifier ai.Classifier, cfg *config.Config) TestimonialUsecase {
	return &testimonialUsecase{
		repo:       repo,
		classifier: classifier,
		cfg:        cfg,
		now:        time.Now,
	}
}

// ProcessInboundEmail runs one inbound notification through the ordered
// pipeline: validate, sanitize, dedup, classify, filter, persist. Each
// stage can short-circuit with a terminal Result; only a submission that
// survives every stage mutates the store.
func (u *testimonialUsecase) ProcessInboundEmail(ctx context.Context, in *dto.InboundEmail) (*Result, error) {
	if strings.TrimSpace(in.From) == "" {
		return nil, fmt.Errorf("%w: missing From address", ErrValidation)
	}
	if !isValidAddress(strings.TrimSpace(in.From)) {
		return nil, fmt.Errorf("%w: malformed From address", ErrValidation)
	}
	if in.TextBody == "" && in.HtmlBody == "" {
		return nil, fmt.Errorf("%w: missing message body", ErrValidation)
	}

	// Mail for other recipients is acknowledged without processing; the
	// channel may legitimately receive unrelated mail.
	if strings.TrimSpace(in.To) != u.cfg.IntakeAddress {
		return &Result{Outcome: OutcomeWrongRecipient}, nil
	}

	email := sanitize.NormalizeEmail(in.From)

	name := sanitize.Text(in.FromName)
	if name == "" {
		name = "Anonymous"
	}

	body := in.TextBody
	if body == "" {
		body = html2text.HTML2Text(in.HtmlBody)
	}
	message := sanitize.Text(body)
	if len(message) < minMessageLength {
		return nil, fmt.Errorf("%w: message too short", ErrValidation)
	}

	// Dedup before classification: a repeat sender within the window
	// should not cost a paid classification call.
	since := u.now().Add(-u.cfg.DedupWindow)
	count, err := u.repo.CountRecentByEmail(email, since, u.cfg.DedupLimit)
	if err != nil {
		// A store outage during the lookup is a persistence failure:
		// surfacing it as 500 lets the provider re-deliver later.
		return nil, fmt.Errorf("%w: dedup lookup: %v", ErrPersistence, err)
	}
	if count > 0 {
		return &Result{Outcome: OutcomeRateLimited}, nil
	}

	analysis := u.classify(ctx, name, email, message)

	saved := analysis.IsTestimonial && analysis.Confidence >= u.cfg.MinTestimonialConfidence
	// Independent of the save decision: a saved record can still need
	// review, e.g. a very negative but genuine testimonial.
	review := analysis.Confidence < u.cfg.ManualReviewConfidence ||
		!analysis.IsTestimonial ||
		analysis.SentimentScore < u.cfg.VeryNegativeThreshold

	if !saved {
		return &Result{Outcome: OutcomeNotSaved, Analysis: analysis, ManualReviewNeeded: review}, nil
	}

	record := &domain.Testimonial{
		Name:                    name,
		Email:                   email,
		Message:                 message,
		IsTestimonialConfidence: analysis.Confidence,
		SentimentScore:          analysis.SentimentScore,
		SentimentCategory:       analysis.SentimentCategory,
		ManualReviewNeeded:      review,
		LLMReasoning:            analysis.Reasoning,
		LLMProcessedAt:          u.now(),
	}
	if err := u.repo.Create(record); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	return &Result{Outcome: OutcomeSaved, Analysis: analysis, ManualReviewNeeded: review, Record: record}, nil
}

// ListTestimonials returns stored testimonials for the public page,
// newest first.
func (u *testimonialUsecase) ListTestimonials(limit, offset int) ([]*domain.Testimonial, error) {
	return u.repo.ListAccepted(limit, offset)
}

// classify calls the external classifier and normalizes its answer. Any
// failure is downgraded to the fallback analysis; classification errors
// are never surfaced to the webhook caller.
func (u *testimonialUsecase) classify(ctx context.Context, name, email, message string) *ai.Analysis {
	if u.classifier == nil {
		return ai.FallbackAnalysis("no classifier configured")
	}

	analysis, err := u.classifier.ClassifyTestimonial(ctx, name, email, message)
	if err != nil {
		log.Printf("[WARN] Classification failed for %s: %v", email, err)
		return ai.FallbackAnalysis(fmt.Sprintf("LLM analysis failed: %v", err))
	}

	analysis.Clamp()
	if !ai.ValidCategory(analysis.SentimentCategory) {
		analysis.SentimentCategory = ai.SentimentNeutral
	}

	log.Printf("LLM analysis for %s: testimonial=%t confidence=%d sentiment=%d category=%s",
		email, analysis.IsTestimonial, analysis.Confidence, analysis.SentimentScore, analysis.SentimentCategory)
	return analysis
}

// isValidAddress checks the basic local@domain shape: exactly one @,
// non-empty segments, no whitespace.
func isValidAddress(s string) bool {
	if strings.ContainsAny(s, " \t\r\n") {
		return false
	}
	at := strings.Index(s, "@")
	if at <= 0 || at != strings.LastIndex(s, "@") {
		return false
	}
	return at < len(s)-1
}
