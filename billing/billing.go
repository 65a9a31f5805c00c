// Package billing regroupe l'arithmétique de tarification des abonnements et
// des prestations. Fonctions pures, montants en unités majeures (euros) sauf
// ToMinorUnits qui est l'unique point de conversion vers les centimes Stripe.
package billing

import (
	"math"
	"time"
)

const (
	// LoyaltyDiscountRate s'applique au renouvellement annuel du même plan payant
	LoyaltyDiscountRate = 0.10
	// ServiceDiscountRate s'applique au paiement d'une intervention pour les
	// détenteurs du plan payant le plus élevé
	ServiceDiscountRate = 0.05

	AnnualValidityDays  = 365
	MonthlyValidityDays = 30
)

// TierPrice retourne le tarif du plan selon la périodicité choisie.
func TierPrice(monthlyPrice, annualPrice float64, isAnnual bool) float64 {
	if isAnnual {
		return annualPrice
	}
	return monthlyPrice
}

// ApplyLoyaltyDiscount réduit le montant de 10% quand l'utilisateur renouvelle
// annuellement le même plan payant qu'il détient déjà.
func ApplyLoyaltyDiscount(amount float64, isRenewalOfSamePaidPlan bool) float64 {
	if isRenewalOfSamePaidPlan {
		return amount * (1 - LoyaltyDiscountRate)
	}
	return amount
}

// ApplyServiceDiscount réduit le montant de 5% quand le payeur détient le plan
// payant le plus élevé du catalogue.
func ApplyServiceDiscount(amount float64, holdsTopTierPlan bool) float64 {
	if holdsTopTierPlan {
		return amount * (1 - ServiceDiscountRate)
	}
	return amount
}

// ExtendValidity calcule la nouvelle date de fin: additive depuis la date de
// fin courante quand elle existe, sinon depuis now. Un renouvellement anticipé
// n'est donc jamais pénalisé.
func ExtendValidity(currentEnd *time.Time, now time.Time, isAnnual bool) time.Time {
	base := now
	if currentEnd != nil {
		base = *currentEnd
	}
	days := MonthlyValidityDays
	if isAnnual {
		days = AnnualValidityDays
	}
	return base.AddDate(0, 0, days)
}

// ToMinorUnits convertit un montant en unités majeures vers les centimes
// attendus par la passerelle de paiement. Seule conversion du module: les
// remises s'appliquent toujours en unités majeures pour éviter d'accumuler des
// erreurs d'arrondi.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
