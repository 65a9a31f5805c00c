package subscriptions

import (
	"errors"
	"fmt"
	"time"

	"locaspace-backend/billing"
	"locaspace-backend/db"
	"locaspace-backend/entitlements"
	"locaspace-backend/models"
	"locaspace-backend/payments"
	"locaspace-backend/utils"
	mailsmodels "locaspace-backend/utils/mails-models"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrPlanNotFound         = errors.New("plan not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	// ErrConflict signale qu'un autre writer a modifié l'abonnement entre la
	// lecture et l'écriture. L'appelant relit et réessaie.
	ErrConflict = errors.New("subscription was modified concurrently")
	// ErrDefaultPlanMissing est une erreur de configuration fatale pour le
	// sweep: le plan gratuit par défaut doit toujours exister.
	ErrDefaultPlanMissing = errors.New("default free plan missing")
	ErrPaymentGateway     = errors.New("payment gateway error")
)

// Gateway est la passerelle de paiement utilisée par ChangePlan. Variable de
// package pour permettre aux tests d'injecter un faux.
var Gateway payments.CheckoutGateway = payments.NewStripeGateway()

// Create crée l'abonnement d'un utilisateur, normalement une seule fois à
// l'inscription, sur le plan gratuit par défaut. Les quotas sont initialisés
// depuis les avantages du plan et les cooldowns sont désarmés.
func Create(input models.SubscriptionCreate) (*models.Subscription, error) {
	var user models.User
	if err := db.DB.First(&user, "id = ?", input.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var plan models.Plan
	if err := db.DB.Preload("Benefits").First(&plan, "id = ?", input.PlanID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	sub := models.Subscription{
		UserID:    user.ID,
		PlanID:    plan.ID,
		Status:    models.SubscriptionActive,
		StartDate: time.Now(),
		EndDate:   input.EndDate,
	}
	if input.Status != "" {
		sub.Status = models.SubscriptionStatus(input.Status)
	}
	if input.StartDate != nil {
		sub.StartDate = *input.StartDate
	}
	entitlements.Reset(&sub, &plan)

	if err := db.DB.Create(&sub).Error; err != nil {
		return nil, err
	}
	sub.Plan = &plan

	endDate := ""
	if sub.EndDate != nil {
		endDate = sub.EndDate.Format("02/01/2006")
	}
	mailsmodels.SubscriptionCreated(mailsmodels.SubscriptionCreatedData{
		Email:    user.Email,
		PlanName: plan.Name,
		EndDate:  endDate,
	})

	return &sub, nil
}

// ChangePlan fait passer l'abonnement de l'utilisateur sur un nouveau plan.
// Les quotas sont réinitialisés depuis les avantages du nouveau plan (aucun
// report des quotas non consommés), la validité est prolongée additivement
// depuis la date de fin courante, et un plan payant déclenche la création
// d'une session de paiement avant toute écriture en base: un échec passerelle
// ne laisse aucune écriture partielle. Retourne l'abonnement mis à jour et
// l'URL de paiement (vide pour un plan gratuit).
func ChangePlan(userID string, change models.SubscriptionChange) (*models.Subscription, string, error) {
	var sub models.Subscription
	if err := db.DB.First(&sub, "user_id = ? AND status <> ?", userID, models.SubscriptionDeleted).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrSubscriptionNotFound
		}
		return nil, "", err
	}

	var plan models.Plan
	if err := db.DB.Preload("Benefits").First(&plan, "id = ?", change.AbonnementID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrPlanNotFound
		}
		return nil, "", err
	}

	var amount float64
	if plan.IsPaid() {
		amount = billing.TierPrice(plan.MonthlyPrice, plan.AnnualPrice, change.IsAnnual)
		// Remise fidélité: renouvellement annuel du même plan payant déjà actif
		isLoyalRenewal := change.IsAnnual && sub.PlanID == plan.ID && sub.Status == models.SubscriptionActive
		amount = billing.ApplyLoyaltyDiscount(amount, isLoyalRenewal)
	}

	entitlements.Reset(&sub, &plan)
	newEnd := billing.ExtendValidity(sub.EndDate, time.Now(), change.IsAnnual)
	sub.PlanID = plan.ID
	sub.Status = models.SubscriptionActive
	sub.EndDate = &newEnd
	if change.StartDate != nil {
		sub.StartDate = *change.StartDate
	}
	if change.EndDate != nil {
		sub.EndDate = change.EndDate
	}

	checkoutURL := ""
	if plan.IsPaid() {
		var user models.User
		if err := db.DB.First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, "", ErrUserNotFound
			}
			return nil, "", err
		}

		// La session est créée avant la persistance: si la passerelle échoue,
		// ni la prolongation ni la remise à zéro des quotas ne sont commitées
		sessionID, url, err := Gateway.CreateCheckoutSession(billing.ToMinorUnits(amount), payments.Currency(), plan.Name, user.Email)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrPaymentGateway, err)
		}
		sub.PaymentSessionID = sessionID
		checkoutURL = url
	}

	if err := save(&sub); err != nil {
		return nil, "", err
	}
	sub.Plan = &plan

	return &sub, checkoutURL, nil
}

// DowngradeToDefault ramène un abonnement échu sur le plan gratuit par défaut.
// Chemin emprunté par le sweep: jamais d'appel passerelle, et la date de fin
// passe à nil puisque le tier gratuit n'expire pas.
func DowngradeToDefault(sub *models.Subscription) error {
	plan, err := DefaultFreePlan()
	if err != nil {
		return err
	}

	oldPlanName := ""
	var oldPlan models.Plan
	if err := db.DB.First(&oldPlan, "id = ?", sub.PlanID).Error; err == nil {
		oldPlanName = oldPlan.Name
	}

	entitlements.Reset(sub, plan)
	sub.PlanID = plan.ID
	sub.Status = models.SubscriptionActive
	sub.EndDate = nil

	if err := save(sub); err != nil {
		return err
	}
	sub.Plan = plan

	var user models.User
	if err := db.DB.First(&user, "id = ?", sub.UserID).Error; err != nil {
		utils.LogErrorWithUser(sub.UserID, err, "Utilisateur introuvable pour la notification d'expiration")
		return nil
	}
	mailsmodels.SubscriptionExpired(mailsmodels.SubscriptionExpiredData{
		Email:        user.Email,
		OldPlanName:  oldPlanName,
		FreePlanName: plan.Name,
	})

	return nil
}

// ConsumePrestation consomme une prestation à quota de l'abonnement de
// l'utilisateur et persiste le nouveau compteur et le cooldown armé.
func ConsumePrestation(userID string, kind models.BenefitKind) (*models.Subscription, error) {
	var sub models.Subscription
	if err := db.DB.First(&sub, "user_id = ? AND status <> ?", userID, models.SubscriptionDeleted).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}

	switch kind {
	case models.BenefitMediumPrestations:
		if err := entitlements.ConsumeMedium(&sub); err != nil {
			return nil, err
		}
	case models.BenefitLimitlessPrestations:
		if err := entitlements.ConsumeLimitless(&sub); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("benefit kind %q is not consumable", kind)
	}

	if err := save(&sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// DefaultFreePlan retourne le plan gratuit actif de rang le plus bas.
func DefaultFreePlan() (*models.Plan, error) {
	var plan models.Plan
	err := db.DB.Preload("Benefits").
		Where("tier = ? AND status = ?", models.PlanTierFree, models.PlanActive).
		Order("rank asc").
		First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDefaultPlanMissing
		}
		return nil, err
	}
	return &plan, nil
}

// save persiste les champs mutables de l'abonnement en une seule écriture,
// conditionnée par la version lue. Zéro ligne affectée = un écrivain
// concurrent est passé avant nous.
func save(sub *models.Subscription) error {
	res := db.DB.Model(&models.Subscription{}).
		Where("id = ? AND version = ?", sub.ID, sub.Version).
		Updates(map[string]interface{}{
			"plan_id":                         sub.PlanID,
			"status":                          sub.Status,
			"start_date":                      sub.StartDate,
			"end_date":                        sub.EndDate,
			"remaining_medium_prestations":    sub.RemainingMediumPrestations,
			"remaining_limitless_prestations": sub.RemainingLimitlessPrestations,
			"medium_cooldown_end":             sub.MediumCooldownEnd,
			"limitless_cooldown_end":          sub.LimitlessCooldownEnd,
			"payment_session_id":              sub.PaymentSessionID,
			"version":                         sub.Version + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	sub.Version++
	return nil
}
