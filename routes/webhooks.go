package routes

import (
	stripehandler "locaspace-backend/handlers/stripe"

	"github.com/gin-gonic/gin"
)

// WebhooksRoutes expose les webhooks entrants. Pas de JWT: l'authentification
// repose sur la signature Stripe.
func WebhooksRoutes(r *gin.Engine) {
	r.POST("/webhooks/stripe", stripehandler.StripeWebhookHandler)
}
