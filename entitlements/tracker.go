// Package entitlements gère la consommation des prestations à quota accordées
// par un plan. Chaque consommation décrémente le compteur restant et arme une
// période de cooldown pendant laquelle toute nouvelle consommation du même
// type est refusée, quel que soit le quota restant.
package entitlements

import (
	"errors"
	"fmt"
	"time"

	"locaspace-backend/models"
)

// ErrQuotaExhausted couvre les deux refus métier: plus d'utilisation restante,
// ou cooldown encore actif. L'appelant ne doit pas réessayer automatiquement.
var ErrQuotaExhausted = errors.New("quota exhausted")

const (
	// MediumCooldown sépare deux prestations medium consécutives
	MediumCooldown = 365 * 24 * time.Hour
	// LimitlessCooldown sépare deux prestations limitless consécutives
	LimitlessCooldown = 180 * 24 * time.Hour
)

// inCooldown traite une date de fin passée comme une absence de cooldown
func inCooldown(end *time.Time, now time.Time) bool {
	return end != nil && end.After(now)
}

// ConsumeMedium décrémente le compteur de prestations medium et arme le
// cooldown de 365 jours. N'effectue aucune mutation en cas de refus.
func ConsumeMedium(sub *models.Subscription) error {
	return consume(&sub.RemainingMediumPrestations, &sub.MediumCooldownEnd, MediumCooldown, time.Now())
}

// ConsumeLimitless décrémente le compteur de prestations limitless et arme le
// cooldown de 180 jours. N'effectue aucune mutation en cas de refus.
func ConsumeLimitless(sub *models.Subscription) error {
	return consume(&sub.RemainingLimitlessPrestations, &sub.LimitlessCooldownEnd, LimitlessCooldown, time.Now())
}

func consume(remaining *int, cooldownEnd **time.Time, cooldown time.Duration, now time.Time) error {
	if inCooldown(*cooldownEnd, now) {
		return fmt.Errorf("%w: cooling down until %s", ErrQuotaExhausted, (*cooldownEnd).Format(time.RFC3339))
	}
	if *remaining <= 0 {
		return fmt.Errorf("%w: no remaining uses", ErrQuotaExhausted)
	}
	*remaining--
	end := now.Add(cooldown)
	*cooldownEnd = &end
	return nil
}

// Reset réinitialise les deux compteurs depuis les avantages du plan courant
// de l'abonnement et efface les cooldowns. Utilisé lors d'un changement de
// plan et par tout réapprovisionnement externe.
func Reset(sub *models.Subscription, plan *models.Plan) {
	sub.RemainingMediumPrestations = plan.QuotaFor(models.BenefitMediumPrestations)
	sub.RemainingLimitlessPrestations = plan.QuotaFor(models.BenefitLimitlessPrestations)
	sub.MediumCooldownEnd = nil
	sub.LimitlessCooldownEnd = nil
}
