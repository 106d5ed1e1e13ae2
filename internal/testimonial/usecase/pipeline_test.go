package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"testimonial-backend/internal/testimonial/domain"
	"testimonial-backend/internal/testimonial/dto"
	"testimonial-backend/pkg/ai"
	"testimonial-backend/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const intake = "testimonial@anandu.dev"

type fakeRepo struct {
	created    []*domain.Testimonial
	recent     int64
	createErr  error
	countErr   error
	countCalls int
}

func (f *fakeRepo) Create(t *domain.Testimonial) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, t)
	return nil
}

func (f *fakeRepo) CountRecentByEmail(email string, since time.Time, limit int) (int64, error) {
	f.countCalls++
	return f.recent, f.countErr
}

func (f *fakeRepo) ListAccepted(limit, offset int) ([]*domain.Testimonial, error) {
	return f.created, nil
}

type fakeClassifier struct {
	analysis *ai.Analysis
	err      error
	calls    int
}

func (f *fakeClassifier) ClassifyTestimonial(ctx context.Context, senderName, senderEmail, message string) (*ai.Analysis, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	// Copy so pipeline clamping does not mutate test fixtures.
	a := *f.analysis
	return &a, nil
}

func testConfig() *config.Config {
	return &config.Config{
		IntakeAddress:            intake,
		MinTestimonialConfidence: 70,
		ManualReviewConfidence:   60,
		VeryNegativeThreshold:    -50,
		DedupWindow:              time.Hour,
		DedupLimit:               3,
	}
}

func newPipeline(repo *fakeRepo, classifier ai.Classifier) TestimonialUsecase {
	return NewTestimonialUsecase(repo, classifier, testConfig())
}

func inbound(overrides func(*dto.InboundEmail)) *dto.InboundEmail {
	in := &dto.InboundEmail{
		FromName: "Jane Doe",
		From:     "jane@example.com",
		To:       intake,
		TextBody: "This tool saved me hours every week, genuinely great service.",
	}
	if overrides != nil {
		overrides(in)
	}
	return in
}

func TestWrongRecipientIsAcknowledgedWithoutProcessing(t *testing.T) {
	repo := &fakeRepo{}
	classifier := &fakeClassifier{analysis: &ai.Analysis{IsTestimonial: true, Confidence: 95}}
	uc := newPipeline(repo, classifier)

	res, err := uc.ProcessInboundEmail(context.Background(), inbound(func(in *dto.InboundEmail) {
		in.To = "support@anandu.dev"
	}))

	require.NoError(t, err)
	assert.Equal(t, OutcomeWrongRecipient, res.Outcome)
	assert.Zero(t, classifier.calls)
	assert.Empty(t, repo.created)
	assert.Zero(t, repo.countCalls)
}

func TestMissingFromIsValidationError(t *testing.T) {
	uc := newPipeline(&fakeRepo{}, &fakeClassifier{})

	_, err := uc.ProcessInboundEmail(context.Background(), inbound(func(in *dto.InboundEmail) {
		in.From = ""
	}))

	assert.ErrorIs(t, err, ErrValidation)
}

func TestMalformedFromIsValidationError(t *testing.T) {
	for _, from := range []string{"not-an-address", "@domain", "local@", "two@@ats", "with space@example.com"} {
		_, err := newPipeline(&fakeRepo{}, &fakeClassifier{}).ProcessInboundEmail(context.Background(),
			inbound(func(in *dto.InboundEmail) { in.From = from }))
		assert.ErrorIs(t, err, ErrValidation, from)
	}
}

func TestMissingBodyIsValidationError(t *testing.T) {
	uc := newPipeline(&fakeRepo{}, &fakeClassifier{})

	_, err := uc.ProcessInboundEmail(context.Background(), inbound(func(in *dto.InboundEmail) {
		in.TextBody = ""
		in.HtmlBody = ""
	}))

	assert.ErrorIs(t, err, ErrValidation)
}

func TestShortMessageRejectedBeforeClassification(t *testing.T) {
	classifier := &fakeClassifier{analysis: &ai.Analysis{IsTestimonial: true, Confidence: 95}}
	uc := newPipeline(&fakeRepo{}, classifier)

	_, err := uc.ProcessInboundEmail(context.Background(), inbound(func(in *dto.InboundEmail) {
		in.TextBody = "ok"
	}))

	assert.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, classifier.calls)
}

func TestScriptOnlyMessageRejected(t *testing.T) {
	classifier := &fakeClassifier{analysis: &ai.Analysis{IsTestimonial: true, Confidence: 95}}
	uc := newPipeline(&fakeRepo{}, classifier)

	// Sanitization strips everything, leaving fewer than 5 characters.
	_, err := uc.ProcessInboundEmail(context.Background(), inbound(func(in *dto.InboundEmail) {
		in.TextBody = `<script>alert("xss")</script>`
	}))

	assert.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, classifier.calls)
}

func TestRateLimitedWithinWindow(t *testing.T) {
	repo := &fakeRepo{recent: 1}
	classifier := &fakeClassifier{analysis: &ai.Analysis{IsTestimonial: true, Confidence: 95}}
	uc := newPipeline(repo, classifier)

	res, err := uc.ProcessInboundEmail(context.Background(), inbound(nil))
	require.NoError(t, err)
	assert.Equal(t, OutcomeRateLimited, res.Outcome)
	assert.Zero(t, classifier.calls)
	assert.Empty(t, repo.created)

	// Replaying the identical delivery yields the identical outcome.
	res, err = uc.ProcessInboundEmail(context.Background(), inbound(nil))
	require.NoError(t, err)
	assert.Equal(t, OutcomeRateLimited, res.Outcome)
	assert.Empty(t, repo.created)
}

func TestHighConfidenceTestimonialSaved(t *testing.T) {
	repo := &fakeRepo{}
	classifier := &fakeClassifier{analysis: &ai.Analysis{
		IsTestimonial:     true,
		Confidence:        71,
		SentimentScore:    40,
		SentimentCategory: ai.SentimentPositive,
		Reasoning:         "genuine product feedback",
	}}
	uc := newPipeline(repo, classifier)

	res, err := uc.ProcessInboundEmail(context.Background(), inbound(func(in *dto.InboundEmail) {
		in.From = "  Jane@Example.COM "
	}))

	require.NoError(t, err)
	assert.Equal(t, OutcomeSaved, res.Outcome)
	assert.False(t, res.ManualReviewNeeded)
	require.Len(t, repo.created, 1)

	rec := repo.created[0]
	assert.Equal(t, "jane@example.com", rec.Email)
	assert.Equal(t, "Jane Doe", rec.Name)
	assert.Equal(t, 71, rec.IsTestimonialConfidence)
	assert.False(t, rec.ManualReviewNeeded)
	assert.Equal(t, "genuine product feedback", rec.LLMReasoning)
	assert.False(t, rec.LLMProcessedAt.IsZero())
}

func TestLowConfidenceFlagsManualReview(t *testing.T) {
	repo := &fakeRepo{}
	classifier := &fakeClassifier{analysis: &ai.Analysis{
		IsTestimonial:     true,
		Confidence:        59,
		SentimentScore:    10,
		SentimentCategory: ai.SentimentPositive,
		Reasoning:         "unclear",
	}}
	uc := newPipeline(repo, classifier)

	res, err := uc.ProcessInboundEmail(context.Background(), inbound(nil))
	require.NoError(t, err)

	// 59 < 70: below the save bar. 59 < 60: flagged for review.
	assert.Equal(t, OutcomeNotSaved, res.Outcome)
	assert.True(t, res.ManualReviewNeeded)
	assert.Empty(t, repo.created)
}

func TestNonTestimonialNotSaved(t *testing.T) {
	repo := &fakeRepo{}
	classifier := &fakeClassifier{analysis: &ai.Analysis{
		IsTestimonial:     false,
		Confidence:        95,
		SentimentScore:    0,
		SentimentCategory: ai.SentimentNeutral,
		Reasoning:         "sales pitch",
	}}
	uc := newPipeline(repo, classifier)

	res, err := uc.ProcessInboundEmail(context.Background(), inbound(nil))
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotSaved, res.Outcome)
	assert.True(t, res.ManualReviewNeeded)
	assert.Empty(t, repo.created)
}

func TestVeryNegativeSavedButFlagged(t *testing.T) {
	repo := &fakeRepo{}
	classifier := &fakeClassifier{analysis: &ai.Analysis{
		IsTestimonial:     true,
		Confidence:        90,
		SentimentScore:    -80,
		SentimentCategory: ai.SentimentVeryNegative,
		Reasoning:         "angry but genuine complaint",
	}}
	uc := newPipeline(repo, classifier)

	res, err := uc.ProcessInboundEmail(context.Background(), inbound(nil))
	require.NoError(t, err)

	// Save bar and review flag are independent checks.
	assert.Equal(t, OutcomeSaved, res.Outcome)
	assert.True(t, res.ManualReviewNeeded)
	require.Len(t, repo.created, 1)
	assert.True(t, repo.created[0].ManualReviewNeeded)
}

func TestClassifierFailureFallsBackToReview(t *testing.T) {
	repo := &fakeRepo{}
	classifier := &fakeClassifier{err: errors.New("deadline exceeded")}
	uc := newPipeline(repo, classifier)

	res, err := uc.ProcessInboundEmail(context.Background(), inbound(nil))
	require.NoError(t, err)

	// Fallback confidence of 50 is below the save bar, so provider
	// failures never auto-save; they only flag.
	assert.Equal(t, OutcomeNotSaved, res.Outcome)
	assert.True(t, res.ManualReviewNeeded)
	assert.True(t, res.Analysis.IsTestimonial)
	assert.Equal(t, 50, res.Analysis.Confidence)
	assert.Equal(t, 0, res.Analysis.SentimentScore)
	assert.Equal(t, ai.SentimentNeutral, res.Analysis.SentimentCategory)
	assert.Empty(t, repo.created)
}

func TestNoClassifierConfiguredFallsBack(t *testing.T) {
	repo := &fakeRepo{}
	uc := newPipeline(repo, nil)

	res, err := uc.ProcessInboundEmail(context.Background(), inbound(nil))
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotSaved, res.Outcome)
	assert.True(t, res.ManualReviewNeeded)
	assert.Empty(t, repo.created)
}

func TestOutOfRangeScoresClampedBeforeStorage(t *testing.T) {
	repo := &fakeRepo{}
	classifier := &fakeClassifier{analysis: &ai.Analysis{
		IsTestimonial:     true,
		Confidence:        150,
		SentimentScore:    150,
		SentimentCategory: ai.SentimentVeryPositive,
		Reasoning:         "extremely enthusiastic",
	}}
	uc := newPipeline(repo, classifier)

	res, err := uc.ProcessInboundEmail(context.Background(), inbound(nil))
	require.NoError(t, err)
	assert.Equal(t, OutcomeSaved, res.Outcome)
	require.Len(t, repo.created, 1)
	assert.Equal(t, 100, repo.created[0].IsTestimonialConfidence)
	assert.Equal(t, 100, repo.created[0].SentimentScore)

	repo2 := &fakeRepo{}
	classifier2 := &fakeClassifier{analysis: &ai.Analysis{
		IsTestimonial:     true,
		Confidence:        90,
		SentimentScore:    -150,
		SentimentCategory: ai.SentimentVeryNegative,
		Reasoning:         "furious",
	}}
	res, err = newPipeline(repo2, classifier2).ProcessInboundEmail(context.Background(), inbound(nil))
	require.NoError(t, err)
	assert.Equal(t, OutcomeSaved, res.Outcome)
	require.Len(t, repo2.created, 1)
	assert.Equal(t, -100, repo2.created[0].SentimentScore)
}

func TestUnknownCategoryNormalizedToNeutral(t *testing.T) {
	repo := &fakeRepo{}
	classifier := &fakeClassifier{analysis: &ai.Analysis{
		IsTestimonial:     true,
		Confidence:        85,
		SentimentScore:    10,
		SentimentCategory: "ecstatic",
		Reasoning:         "made up category",
	}}
	uc := newPipeline(repo, classifier)

	res, err := uc.ProcessInboundEmail(context.Background(), inbound(nil))
	require.NoError(t, err)
	require.Len(t, repo.created, 1)
	assert.Equal(t, ai.SentimentNeutral, repo.created[0].SentimentCategory)
	assert.Equal(t, ai.SentimentNeutral, res.Analysis.SentimentCategory)
}

func TestHtmlBodyFallback(t *testing.T) {
	repo := &fakeRepo{}
	classifier := &fakeClassifier{analysis: &ai.Analysis{
		IsTestimonial:     true,
		Confidence:        80,
		SentimentScore:    50,
		SentimentCategory: ai.SentimentPositive,
		Reasoning:         "real experience",
	}}
	uc := newPipeline(repo, classifier)

	res, err := uc.ProcessInboundEmail(context.Background(), inbound(func(in *dto.InboundEmail) {
		in.TextBody = ""
		in.HtmlBody = "<p>Fantastic support team, <b>highly</b> recommended.</p>"
	}))

	require.NoError(t, err)
	assert.Equal(t, OutcomeSaved, res.Outcome)
	require.Len(t, repo.created, 1)
	assert.NotContains(t, repo.created[0].Message, "<p>")
	assert.Contains(t, repo.created[0].Message, "Fantastic support team")
}

func TestMissingNameDefaultsToAnonymous(t *testing.T) {
	repo := &fakeRepo{}
	classifier := &fakeClassifier{analysis: &ai.Analysis{
		IsTestimonial:     true,
		Confidence:        80,
		SentimentScore:    30,
		SentimentCategory: ai.SentimentPositive,
		Reasoning:         "ok",
	}}
	uc := newPipeline(repo, classifier)

	res, err := uc.ProcessInboundEmail(context.Background(), inbound(func(in *dto.InboundEmail) {
		in.FromName = ""
	}))

	require.NoError(t, err)
	assert.Equal(t, OutcomeSaved, res.Outcome)
	require.Len(t, repo.created, 1)
	assert.Equal(t, "Anonymous", repo.created[0].Name)
}

func TestDedupLookupFailureIsPersistenceError(t *testing.T) {
	repo := &fakeRepo{countErr: errors.New("connection refused")}
	classifier := &fakeClassifier{analysis: &ai.Analysis{IsTestimonial: true, Confidence: 95}}
	uc := newPipeline(repo, classifier)

	_, err := uc.ProcessInboundEmail(context.Background(), inbound(nil))

	// Store outage before classification surfaces as a persistence
	// failure so the provider re-delivers; no classifier call is spent.
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Zero(t, classifier.calls)
	assert.Empty(t, repo.created)
}

func TestStoreWriteFailureIsPersistenceError(t *testing.T) {
	repo := &fakeRepo{createErr: errors.New("connection reset")}
	classifier := &fakeClassifier{analysis: &ai.Analysis{
		IsTestimonial:     true,
		Confidence:        90,
		SentimentScore:    50,
		SentimentCategory: ai.SentimentPositive,
		Reasoning:         "fine",
	}}
	uc := newPipeline(repo, classifier)

	_, err := uc.ProcessInboundEmail(context.Background(), inbound(nil))
	assert.ErrorIs(t, err, ErrPersistence)
}
