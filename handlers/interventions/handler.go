package interventions

import (
	"errors"
	"net/http"

	"locaspace-backend/billing"
	"locaspace-backend/db"
	"locaspace-backend/entitlements"
	"locaspace-backend/handlers/subscriptions"
	"locaspace-backend/models"
	"locaspace-backend/payments"
	"locaspace-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type paymentRequest struct {
	// UsePrestation règle l'intervention via une prestation du plan
	// ("medium" ou "limitless") au lieu d'un paiement
	UsePrestation string `json:"usePrestation"`
}

// CreateIntervention enregistre une prestation de service à payer
// @Summary Create an intervention
// @Tags interventions
// @Accept json
// @Produce json
// @Param intervention body models.Intervention true "Intervention information"
// @Security BearerAuth
// @Success 201 {object} models.Intervention
// @Failure 400 {object} map[string]string "error: Invalid input"
// @Router /interventions [post]
func CreateIntervention(c *gin.Context) {
	var intervention models.Intervention
	if err := c.ShouldBindJSON(&intervention); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if intervention.Price < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Price must be non-negative"})
		return
	}
	intervention.Status = models.InterventionPending
	intervention.PaymentSessionID = ""

	if err := db.DB.Create(&intervention).Error; err != nil {
		utils.LogError(err, "Erreur lors de la création de l'intervention dans CreateIntervention")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating intervention"})
		return
	}

	utils.LogSuccessWithUser(intervention.RenterID, "Intervention créée avec succès dans CreateIntervention")
	c.JSON(http.StatusCreated, intervention)
}

// GetInterventions liste les interventions d'un locataire
// @Summary List a renter's interventions
// @Tags interventions
// @Produce json
// @Param renterId query string true "ID of the renter"
// @Security BearerAuth
// @Success 200 {array} models.Intervention
// @Router /interventions [get]
func GetInterventions(c *gin.Context) {
	renterID := c.Query("renterId")
	if _, err := uuid.Parse(renterID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid renter ID"})
		return
	}

	var interventions []models.Intervention
	if err := db.DB.Where("renter_id = ?", renterID).Order("created_at DESC").Find(&interventions).Error; err != nil {
		utils.LogErrorWithUser(renterID, err, "Erreur lors de la récupération des interventions dans GetInterventions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching interventions"})
		return
	}

	c.JSON(http.StatusOK, interventions)
}

// PayIntervention démarre le paiement d'une intervention. Le détenteur du
// plan payant le plus élevé bénéficie d'une remise de 5%; une prestation à
// quota du plan peut couvrir entièrement l'intervention.
// @Summary Pay an intervention
// @Description Create a checkout session for the intervention amount, applying the top-tier service discount, or settle it with a plan prestation
// @Tags interventions
// @Accept json
// @Produce json
// @Param id path string true "ID of the intervention"
// @Param payment body paymentRequest false "Optional prestation settlement"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "intervention, checkoutUrl"
// @Failure 403 {object} map[string]string "error: Quota exhausted or cooldown active"
// @Failure 404 {object} map[string]string "error: Intervention or subscription not found"
// @Failure 500 {object} map[string]string "error: Payment gateway error"
// @Router /interventions/{id}/payment [post]
func PayIntervention(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid intervention ID"})
		return
	}

	var intervention models.Intervention
	if err := db.DB.First(&intervention, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Intervention not found"})
		return
	}
	if intervention.Status != models.InterventionPending {
		c.JSON(http.StatusConflict, gin.H{"error": "Intervention is not awaiting payment"})
		return
	}

	var req paymentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
			return
		}
	}

	// Règlement par prestation du plan: consomme le quota, pas de passerelle
	if req.UsePrestation != "" {
		var kind models.BenefitKind
		switch req.UsePrestation {
		case "medium":
			kind = models.BenefitMediumPrestations
		case "limitless":
			kind = models.BenefitLimitlessPrestations
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown prestation kind"})
			return
		}

		if _, err := subscriptions.ConsumePrestation(intervention.RenterID, kind); err != nil {
			respondPaymentError(c, intervention.RenterID, err)
			return
		}
		if err := db.DB.Model(&intervention).Update("status", models.InterventionPaid).Error; err != nil {
			utils.LogErrorWithUser(intervention.RenterID, err, "Erreur lors de la mise à jour de l'intervention dans PayIntervention")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating intervention"})
			return
		}
		intervention.Status = models.InterventionPaid

		utils.LogSuccessWithUser(intervention.RenterID, "Intervention réglée par prestation dans PayIntervention")
		c.JSON(http.StatusOK, gin.H{"intervention": intervention, "checkoutUrl": ""})
		return
	}

	var payer models.User
	if err := db.DB.First(&payer, "id = ?", intervention.RenterID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Payer not found"})
		return
	}

	amount := billing.ApplyServiceDiscount(intervention.Price, holdsTopTierPlan(intervention.RenterID))

	sessionID, url, err := subscriptions.Gateway.CreateCheckoutSession(
		billing.ToMinorUnits(amount), payments.Currency(), "Intervention: "+intervention.Title, payer.Email)
	if err != nil {
		utils.LogErrorWithUser(payer.ID, err, "Erreur passerelle dans PayIntervention")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Payment session could not be created"})
		return
	}

	if err := db.DB.Model(&intervention).Update("payment_session_id", sessionID).Error; err != nil {
		utils.LogErrorWithUser(payer.ID, err, "Erreur lors de l'enregistrement de la session dans PayIntervention")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error saving payment session"})
		return
	}
	intervention.PaymentSessionID = sessionID

	utils.LogSuccessWithUser(payer.ID, "Session de paiement créée avec succès dans PayIntervention")
	c.JSON(http.StatusOK, gin.H{
		"intervention": intervention,
		"checkoutUrl":  url,
		"amount":       amount,
	})
}

// holdsTopTierPlan indique si le payeur détient le plan payant actif de rang
// le plus élevé du catalogue
func holdsTopTierPlan(userID string) bool {
	var sub models.Subscription
	err := db.DB.Preload("Plan").
		First(&sub, "user_id = ? AND status = ?", userID, models.SubscriptionActive).Error
	if err != nil || sub.Plan == nil || !sub.Plan.IsPaid() {
		return false
	}

	var maxRank int
	row := db.DB.Model(&models.Plan{}).
		Where("tier = ? AND status = ?", models.PlanTierPaid, models.PlanActive).
		Select("COALESCE(MAX(rank), 0)").Row()
	if err := row.Scan(&maxRank); err != nil {
		return false
	}
	return sub.Plan.Rank >= maxRank
}

func respondPaymentError(c *gin.Context, userID string, err error) {
	utils.LogErrorWithUser(userID, err, "Erreur dans PayIntervention")
	switch {
	case errors.Is(err, entitlements.ErrQuotaExhausted):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, subscriptions.ErrSubscriptionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Subscription not found"})
	case errors.Is(err, subscriptions.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Subscription was modified concurrently, retry"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
