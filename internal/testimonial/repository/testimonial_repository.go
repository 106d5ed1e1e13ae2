package repository

import (
	"time"

	"testimonial-backend/internal/testimonial/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TestimonialRepository defines the store operations used by the intake
// pipeline and the public read side.
type TestimonialRepository interface {
	// Create inserts one accepted testimonial.
	Create(t *domain.Testimonial) error
	// CountRecentByEmail counts submissions from email since the given
	// time. Only existence matters, so the scan is capped at limit rows.
	//
	// This is a point-in-time check: two submissions from the same
	// sender arriving concurrently can both pass before either insert.
	// Accepted weakness, not a guarantee.
	CountRecentByEmail(email string, since time.Time, limit int) (int64, error)
	// ListAccepted returns stored testimonials, newest first.
	ListAccepted(limit, offset int) ([]*domain.Testimonial, error)
}

// testimonialRepository implements TestimonialRepository interface
type testimonialRepository struct {
	db *gorm.DB
}

// NewTestimonialRepository creates a new instance of testimonialRepository
func NewTestimonialRepository(db *gorm.DB) TestimonialRepository {
	return &testimonialRepository{
		db: db,
	}
}

// Create inserts one accepted testimonial
func (r *testimonialRepository) Create(t *domain.Testimonial) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	return r.db.Create(t).Error
}

// CountRecentByEmail counts submissions from email within the window
func (r *testimonialRepository) CountRecentByEmail(email string, since time.Time, limit int) (int64, error) {
	var ids []string
	err := r.db.Model(&domain.Testimonial{}).
		Where("email = ? AND created_at > ?", email, since).
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, err
	}
	return int64(len(ids)), nil
}

// ListAccepted returns stored testimonials ordered newest first
func (r *testimonialRepository) ListAccepted(limit, offset int) ([]*domain.Testimonial, error) {
	var testimonials []*domain.Testimonial
	err := r.db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&testimonials).Error
	if err != nil {
		return nil, err
	}
	return testimonials, nil
}
