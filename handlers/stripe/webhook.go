package stripe

import (
	"encoding/json"
	"io"
	"net/http"
	"os"

	"locaspace-backend/db"
	"locaspace-backend/models"
	"locaspace-backend/utils"

	"github.com/gin-gonic/gin"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// StripeWebhookHandler reçoit les événements Stripe signés. Les sessions de
// paiement sont rapprochées par leur identifiant stocké en base
// (payment_session_id) au moment de la création de la session.
// @Summary Handle Stripe webhook events
// @Tags webhooks
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string "message"
// @Failure 400 {object} map[string]string "error: Signature verification failed"
// @Router /webhooks/stripe [post]
func StripeWebhookHandler(c *gin.Context) {
	const MaxBodyBytes = int64(65536)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Impossible de lire le corps de la requête"})
		return
	}

	secret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	if secret == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Webhook secret non configuré"})
		return
	}

	sig := c.GetHeader("Stripe-Signature")
	event, err := webhook.ConstructEvent(payload, sig, secret)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Vérification de la signature Stripe échouée"})
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		handleCheckoutSessionCompleted(c, event)
	case "checkout.session.expired":
		handleCheckoutSessionExpired(c, event)
	default:
		c.JSON(http.StatusOK, gin.H{"message": "Événement ignoré"})
	}
}

func handleCheckoutSessionCompleted(c *gin.Context, event stripe.Event) {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Erreur parsing CheckoutSession"})
		return
	}
	if session.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Session sans identifiant"})
		return
	}

	// Une intervention en attente de ce paiement passe à PAID
	var intervention models.Intervention
	err := db.DB.First(&intervention,
		"payment_session_id = ? AND status = ?", session.ID, models.InterventionPending).Error
	if err == nil {
		if err := db.DB.Model(&intervention).Update("status", models.InterventionPaid).Error; err != nil {
			utils.LogErrorWithUser(intervention.RenterID, err, "Erreur lors du règlement de l'intervention dans StripeWebhookHandler")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour intervention"})
			return
		}
		utils.LogSuccessWithUser(intervention.RenterID, "Intervention réglée via checkout.session.completed")
		c.JSON(http.StatusOK, gin.H{"message": "Intervention réglée"})
		return
	}

	// Sinon il s'agit d'un changement de plan: les droits ont déjà été
	// accordés à la création de la session, on ne fait que tracer
	var sub models.Subscription
	if err := db.DB.First(&sub, "payment_session_id = ?", session.ID).Error; err != nil {
		c.JSON(http.StatusOK, gin.H{"message": "Session inconnue, événement ignoré"})
		return
	}

	utils.LogSuccessWithUser(sub.UserID, "Paiement d'abonnement confirmé via checkout.session.completed")
	c.JSON(http.StatusOK, gin.H{"message": "Paiement d'abonnement confirmé"})
}

// handleCheckoutSessionExpired libère l'intervention pour qu'une nouvelle
// session puisse être créée.
func handleCheckoutSessionExpired(c *gin.Context, event stripe.Event) {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Erreur parsing CheckoutSession"})
		return
	}
	if session.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Session sans identifiant"})
		return
	}

	var intervention models.Intervention
	err := db.DB.First(&intervention,
		"payment_session_id = ? AND status = ?", session.ID, models.InterventionPending).Error
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"message": "Aucune intervention en attente pour cette session"})
		return
	}

	if err := db.DB.Model(&intervention).Update("payment_session_id", "").Error; err != nil {
		utils.LogErrorWithUser(intervention.RenterID, err, "Erreur lors de la libération de la session dans StripeWebhookHandler")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour intervention"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Session expirée, intervention libérée"})
}
