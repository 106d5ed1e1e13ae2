package api

import (
	"net/http"

	"testimonial-backend/internal/testimonial/delivery"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, webhookHandler *delivery.WebhookHandler) {
	api := r.Group("/api")
	{
		// Health check
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Inbound email webhook
		api.POST("/webhook", webhookHandler.HandleInbound)
		api.GET("/webhook", webhookHandler.Active)
		api.PUT("/webhook", webhookHandler.MethodNotAllowed)
		api.DELETE("/webhook", webhookHandler.MethodNotAllowed)

		// Public read side for the testimonial page
		api.GET("/testimonials", webhookHandler.ListTestimonials)

		// Development diagnostics
		api.GET("/debug", webhookHandler.Debug)
	}
}
