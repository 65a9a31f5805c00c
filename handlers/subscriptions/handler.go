package subscriptions

import (
	"errors"
	"net/http"

	"locaspace-backend/db"
	"locaspace-backend/entitlements"
	"locaspace-backend/models"
	"locaspace-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateSubscription crée l'abonnement d'un utilisateur
// @Summary Create a subscription for a user
// @Description Create a subscription binding a user to a plan, with quotas seeded from the plan benefits
// @Tags user-abonnements
// @Accept json
// @Produce json
// @Param subscription body models.SubscriptionCreate true "Subscription information"
// @Security BearerAuth
// @Success 201 {object} models.Subscription
// @Failure 400 {object} map[string]string "error: Invalid input"
// @Failure 404 {object} map[string]string "error: User or plan not found"
// @Router /user-abonnements [post]
func CreateSubscription(c *gin.Context) {
	var input models.SubscriptionCreate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	sub, err := Create(input)
	if err != nil {
		respondLifecycleError(c, input.UserID, err, "CreateSubscription")
		return
	}

	utils.LogSuccessWithUser(input.UserID, "Abonnement créé avec succès dans CreateSubscription")
	c.JSON(http.StatusCreated, sub)
}

// UpdateSubscription change le plan de l'abonnement d'un utilisateur
// @Summary Change the plan of a user's subscription
// @Description Switch the user's subscription to another plan, reset quotas, extend validity and start a checkout session for paid tiers
// @Tags user-abonnements
// @Accept json
// @Produce json
// @Param userId path string true "ID of the user"
// @Param change body models.SubscriptionChange true "Target plan and billing period"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "subscription, checkoutUrl"
// @Failure 400 {object} map[string]string "error: Invalid input"
// @Failure 404 {object} map[string]string "error: Subscription or plan not found"
// @Failure 409 {object} map[string]string "error: Concurrent modification"
// @Failure 500 {object} map[string]string "error: Payment gateway error"
// @Router /user-abonnements/{userId} [put]
func UpdateSubscription(c *gin.Context) {
	userID := c.Param("userId")
	if _, err := uuid.Parse(userID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var change models.SubscriptionChange
	if err := c.ShouldBindJSON(&change); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	sub, checkoutURL, err := ChangePlan(userID, change)
	if err != nil {
		respondLifecycleError(c, userID, err, "UpdateSubscription")
		return
	}

	utils.LogSuccessWithUser(userID, "Changement de plan effectué avec succès dans UpdateSubscription")
	c.JSON(http.StatusOK, gin.H{
		"subscription": sub,
		"checkoutUrl":  checkoutURL,
		"sessionId":    sub.PaymentSessionID,
	})
}

// GetSubscription retourne l'abonnement courant d'un utilisateur
// @Summary Get a user's subscription
// @Description Return the user's current subscription with its plan and benefits
// @Tags user-abonnements
// @Produce json
// @Param userId path string true "ID of the user"
// @Security BearerAuth
// @Success 200 {object} models.Subscription
// @Failure 404 {object} map[string]string "error: Subscription not found"
// @Router /user-abonnements/{userId} [get]
func GetSubscription(c *gin.Context) {
	userID := c.Param("userId")
	if _, err := uuid.Parse(userID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var sub models.Subscription
	err := db.DB.Preload("Plan").Preload("Plan.Benefits").
		First(&sub, "user_id = ? AND status <> ?", userID, models.SubscriptionDeleted).Error
	if err != nil {
		utils.LogErrorWithUser(userID, err, "Subscription not found dans GetSubscription")
		c.JSON(http.StatusNotFound, gin.H{"error": "Subscription not found"})
		return
	}

	c.JSON(http.StatusOK, sub)
}

// DeleteSubscription supprime définitivement un abonnement
// @Summary Delete a subscription
// @Description Hard delete of a subscription row, used only when the owning account is deleted
// @Tags user-abonnements
// @Produce json
// @Param id path string true "ID of the subscription"
// @Security BearerAuth
// @Success 200 {object} map[string]string "message: Subscription deleted"
// @Failure 404 {object} map[string]string "error: Subscription not found"
// @Router /user-abonnements/{id} [delete]
func DeleteSubscription(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subscription ID"})
		return
	}

	var sub models.Subscription
	if err := db.DB.First(&sub, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subscription not found"})
		return
	}

	if err := db.DB.Delete(&sub).Error; err != nil {
		utils.LogErrorWithUser(sub.UserID, err, "Erreur lors de la suppression dans DeleteSubscription")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting subscription"})
		return
	}

	utils.LogSuccessWithUser(sub.UserID, "Abonnement supprimé avec succès dans DeleteSubscription")
	c.JSON(http.StatusOK, gin.H{"message": "Subscription deleted"})
}

// ConsumePrestationHandler consomme une prestation à quota
// @Summary Consume a rate-limited prestation
// @Description Decrement the remaining counter for the given prestation kind and arm its cooldown window
// @Tags user-abonnements
// @Produce json
// @Param userId path string true "ID of the user"
// @Param kind path string true "Prestation kind (medium or limitless)"
// @Security BearerAuth
// @Success 200 {object} models.Subscription
// @Failure 403 {object} map[string]string "error: Quota exhausted or cooldown active"
// @Failure 404 {object} map[string]string "error: Subscription not found"
// @Router /user-abonnements/{userId}/prestations/{kind}/consume [post]
func ConsumePrestationHandler(c *gin.Context) {
	userID := c.Param("userId")
	if _, err := uuid.Parse(userID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var kind models.BenefitKind
	switch c.Param("kind") {
	case "medium":
		kind = models.BenefitMediumPrestations
	case "limitless":
		kind = models.BenefitLimitlessPrestations
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown prestation kind"})
		return
	}

	sub, err := ConsumePrestation(userID, kind)
	if err != nil {
		respondLifecycleError(c, userID, err, "ConsumePrestationHandler")
		return
	}

	utils.LogSuccessWithUser(userID, "Prestation consommée avec succès dans ConsumePrestationHandler")
	c.JSON(http.StatusOK, sub)
}

// respondLifecycleError traduit les erreurs métier du cycle de vie en codes
// HTTP. Les erreurs passerelle ne divulguent pas le détail Stripe au client.
func respondLifecycleError(c *gin.Context, userID string, err error, where string) {
	utils.LogErrorWithUser(userID, err, "Erreur dans "+where)

	switch {
	case errors.Is(err, ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, ErrPlanNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Plan not found"})
	case errors.Is(err, ErrSubscriptionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Subscription not found"})
	case errors.Is(err, entitlements.ErrQuotaExhausted):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Subscription was modified concurrently, retry with a fresh read"})
	case errors.Is(err, ErrPaymentGateway):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Payment session could not be created"})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
