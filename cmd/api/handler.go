package api

import (
	"testimonial-backend/internal/testimonial/delivery"
	"testimonial-backend/internal/testimonial/usecase"
	"testimonial-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	webhookHandler *delivery.WebhookHandler
	config         *config.Config
}

func NewHandler(testimonialUsecase usecase.TestimonialUsecase, cfg *config.Config) *Handler {
	return &Handler{
		webhookHandler: delivery.NewWebhookHandler(testimonialUsecase, cfg.WebhookSecret),
		config:         cfg,
	}
}

func (h *Handler) Start(addr string) error {
	r := gin.Default()

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Webhook-Signature")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h.webhookHandler)

	return r.Run(addr)
}
