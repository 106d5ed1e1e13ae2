package delivery

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"testimonial-backend/internal/testimonial/dto"
	"testimonial-backend/internal/testimonial/usecase"
	"testimonial-backend/pkg/signature"

	"github.com/gin-gonic/gin"
)

type WebhookHandler struct {
	testimonialUsecase usecase.TestimonialUsecase
	secret             string
}

func NewWebhookHandler(testimonialUsecase usecase.TestimonialUsecase, secret string) *WebhookHandler {
	return &WebhookHandler{
		testimonialUsecase: testimonialUsecase,
		secret:             secret,
	}
}

// HandleInbound is the provider webhook: authenticate, parse, run the
// pipeline, compose the terminal response.
func (h *WebhookHandler) HandleInbound(c *gin.Context) {
	// Outermost boundary: nothing internal leaks to the caller.
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ERROR] Webhook panic: %v", r)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to process webhook"})
		}
	}()

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	// The signature covers the raw, unparsed body. An empty secret means
	// verification is disabled (development mode).
	if h.secret != "" && !signature.Verify(body, c.GetHeader(signature.Header), h.secret) {
		log.Printf("[WARN] Invalid webhook signature")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if !strings.HasPrefix(c.ContentType(), "application/json") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Content-Type must be application/json"})
		return
	}

	var in dto.InboundEmail
	if err := json.Unmarshal(body, &in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON payload"})
		return
	}

	result, err := h.testimonialUsecase.ProcessInboundEmail(c.Request.Context(), &in)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, usecase.ErrPersistence):
			log.Printf("[ERROR] Store write failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save testimonial"})
		default:
			log.Printf("[ERROR] Webhook processing failed: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to process webhook"})
		}
		return
	}

	switch result.Outcome {
	case usecase.OutcomeWrongRecipient:
		c.JSON(http.StatusOK, gin.H{"message": "Email not for testimonials"})
	case usecase.OutcomeRateLimited:
		c.JSON(http.StatusOK, gin.H{"message": "Testimonial received (rate limited)"})
	case usecase.OutcomeNotSaved:
		c.JSON(http.StatusOK, dto.WebhookResponse{
			Message:   "Email processed, not saved as testimonial",
			Saved:     false,
			Analysis:  analysisSummary(result),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	default:
		c.JSON(http.StatusOK, dto.WebhookResponse{
			Message:   "Testimonial received and saved",
			Saved:     true,
			Analysis:  analysisSummary(result),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// Active acknowledges GET requests from provider setup checks.
func (h *WebhookHandler) Active(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Webhook endpoint is active. Send POST requests here."})
}

// MethodNotAllowed rejects unsupported methods on the webhook path.
func (h *WebhookHandler) MethodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed. Only POST requests are supported."})
}

// ListTestimonials serves the public read side for the testimonial page.
func (h *WebhookHandler) ListTestimonials(c *gin.Context) {
	limit := 20
	offset := 0

	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	testimonials, err := h.testimonialUsecase.ListTestimonials(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load testimonials"})
		return
	}

	views := make([]dto.TestimonialView, 0, len(testimonials))
	for _, t := range testimonials {
		views = append(views, dto.TestimonialView{
			Name:              t.Name,
			Message:           t.Message,
			SentimentCategory: t.SentimentCategory,
			CreatedAt:         t.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, dto.TestimonialsResponse{
		Testimonials: views,
		Limit:        limit,
		Offset:       offset,
	})
}

// Debug reports store connectivity and recent rows. Development only.
func (h *WebhookHandler) Debug(c *gin.Context) {
	if gin.Mode() == gin.ReleaseMode {
		c.JSON(http.StatusNotFound, gin.H{"error": "Debug endpoint not available in production"})
		return
	}

	recent, err := h.testimonialUsecase.ListTestimonials(10, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Connection failed",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Debug information",
		"count":   len(recent),
		"recent":  recent,
	})
}

func analysisSummary(result *usecase.Result) *dto.AnalysisSummary {
	if result.Analysis == nil {
		return nil
	}
	return &dto.AnalysisSummary{
		IsTestimonial:      result.Analysis.IsTestimonial,
		Confidence:         result.Analysis.Confidence,
		SentimentScore:     result.Analysis.SentimentScore,
		SentimentCategory:  result.Analysis.SentimentCategory,
		ManualReviewNeeded: result.ManualReviewNeeded,
	}
}
