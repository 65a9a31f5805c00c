package entitlements

import (
	"testing"
	"time"

	"locaspace-backend/models"

	"github.com/stretchr/testify/assert"
)

func subWithMedium(remaining int, cooldownEnd *time.Time) *models.Subscription {
	return &models.Subscription{
		RemainingMediumPrestations: remaining,
		MediumCooldownEnd:          cooldownEnd,
	}
}

func TestConsumeMedium_DecrementsAndArmsCooldown(t *testing.T) {
	sub := subWithMedium(2, nil)

	err := ConsumeMedium(sub)

	assert.NoError(t, err)
	assert.Equal(t, 1, sub.RemainingMediumPrestations)
	assert.NotNil(t, sub.MediumCooldownEnd)
	assert.WithinDuration(t, time.Now().Add(MediumCooldown), *sub.MediumCooldownEnd, time.Minute)
}

func TestConsumeMedium_ExhaustedNeverMutates(t *testing.T) {
	sub := subWithMedium(0, nil)

	err := ConsumeMedium(sub)

	assert.ErrorIs(t, err, ErrQuotaExhausted)
	assert.Contains(t, err.Error(), "no remaining uses")
	assert.Equal(t, 0, sub.RemainingMediumPrestations)
	assert.Nil(t, sub.MediumCooldownEnd)
}

func TestConsumeMedium_CooldownBlocksDespiteQuota(t *testing.T) {
	end := time.Now().Add(24 * time.Hour)
	sub := subWithMedium(5, &end)

	err := ConsumeMedium(sub)

	assert.ErrorIs(t, err, ErrQuotaExhausted)
	assert.Contains(t, err.Error(), "cooling down")
	assert.Equal(t, 5, sub.RemainingMediumPrestations)
}

func TestConsumeMedium_ExpiredCooldownIsNoCooldown(t *testing.T) {
	end := time.Now().Add(-time.Second)
	sub := subWithMedium(1, &end)

	err := ConsumeMedium(sub)

	assert.NoError(t, err)
	assert.Equal(t, 0, sub.RemainingMediumPrestations)
}

func TestConsume_CooldownBoundaryInclusive(t *testing.T) {
	// Une date de fin atteinte exactement vaut absence de cooldown
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := now
	remaining := 1
	cooldownEnd := &end

	err := consume(&remaining, &cooldownEnd, MediumCooldown, now)

	assert.NoError(t, err)
	assert.Equal(t, 0, remaining)
	assert.Equal(t, now.Add(MediumCooldown), *cooldownEnd)
}

func TestConsume_QuotaNeverGoesNegative(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	remaining := 2
	var cooldownEnd *time.Time

	// On avance le temps au-delà du cooldown entre chaque appel: seul
	// l'épuisement du quota doit bloquer
	for i := 0; i < 5; i++ {
		_ = consume(&remaining, &cooldownEnd, MediumCooldown, now)
		now = now.Add(MediumCooldown + time.Second)
	}

	assert.Equal(t, 0, remaining)

	err := consume(&remaining, &cooldownEnd, MediumCooldown, now.Add(MediumCooldown))
	assert.ErrorIs(t, err, ErrQuotaExhausted)
	assert.Equal(t, 0, remaining)
}

func TestConsumeLimitless_Uses180DayCooldown(t *testing.T) {
	sub := &models.Subscription{RemainingLimitlessPrestations: 1}

	err := ConsumeLimitless(sub)

	assert.NoError(t, err)
	assert.Equal(t, 0, sub.RemainingLimitlessPrestations)
	assert.WithinDuration(t, time.Now().Add(LimitlessCooldown), *sub.LimitlessCooldownEnd, time.Minute)
}

func TestReset_ReseedsFromPlanAndClearsCooldowns(t *testing.T) {
	end := time.Now().Add(time.Hour)
	sub := &models.Subscription{
		RemainingMediumPrestations:    0,
		RemainingLimitlessPrestations: 7,
		MediumCooldownEnd:             &end,
		LimitlessCooldownEnd:          &end,
	}
	plan := &models.Plan{
		Benefits: []models.PlanBenefit{
			{Kind: models.BenefitMediumPrestations, Quota: 3},
			{Kind: models.BenefitInformational, Description: "Support prioritaire"},
		},
	}

	Reset(sub, plan)

	assert.Equal(t, 3, sub.RemainingMediumPrestations)
	// Kind absent du plan: quota à zéro
	assert.Equal(t, 0, sub.RemainingLimitlessPrestations)
	assert.Nil(t, sub.MediumCooldownEnd)
	assert.Nil(t, sub.LimitlessCooldownEnd)
}
