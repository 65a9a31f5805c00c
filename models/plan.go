package models

import (
	"time"
)

type PlanStatus string

const (
	PlanActive   PlanStatus = "ACTIVE"
	PlanInactive PlanStatus = "INACTIVE"
	PlanDeleted  PlanStatus = "DELETED"
)

type PlanTier string

const (
	PlanTierFree PlanTier = "FREE"
	PlanTierPaid PlanTier = "PAID"
)

type BenefitKind string

const (
	BenefitMediumPrestations    BenefitKind = "MEDIUM_PRESTATIONS"
	BenefitLimitlessPrestations BenefitKind = "LIMITLESS_PRESTATIONS"
	BenefitInformational        BenefitKind = "INFORMATIONAL"
)

// Plan représente une formule d'abonnement avec ses tarifs et ses avantages
type Plan struct {
	ID                  string        `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Name                string        `json:"name" gorm:"not null;unique" binding:"required"`
	Description         string        `json:"description" gorm:"type:text"`
	MonthlyPrice        float64       `json:"monthlyPrice" gorm:"not null;default:0"`
	AnnualPrice         float64       `json:"annualPrice" gorm:"not null;default:0"`
	MonthlyDurationDays int           `json:"monthlyDurationDays" gorm:"not null;default:30"`
	AnnualDurationDays  int           `json:"annualDurationDays" gorm:"not null;default:365"`
	Tier                PlanTier      `json:"tier" gorm:"type:varchar(10);not null;default:'FREE'"`
	Rank                int           `json:"rank" gorm:"not null;default:0"`
	Status              PlanStatus    `json:"status" gorm:"type:varchar(20);default:'ACTIVE'"`
	Benefits            []PlanBenefit `json:"benefits" gorm:"foreignKey:PlanID"`
	CreatedAt           time.Time     `json:"createdAt"`
	UpdatedAt           time.Time     `json:"updatedAt"`
}

// PlanBenefit est un avantage accordé par un plan. Les kinds MEDIUM_PRESTATIONS
// et LIMITLESS_PRESTATIONS portent un quota consommable; INFORMATIONAL est
// purement descriptif.
type PlanBenefit struct {
	ID          string      `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	PlanID      string      `json:"planId" gorm:"type:uuid;not null;index"`
	Kind        BenefitKind `json:"kind" gorm:"type:varchar(30);not null;default:'INFORMATIONAL'"`
	Description string      `json:"description" gorm:"type:text"`
	Quota       int         `json:"quota" gorm:"not null;default:0"`
	Position    int         `json:"position" gorm:"not null;default:0"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// QuotaFor retourne le quota accordé par le plan pour un kind donné (0 si absent)
func (p *Plan) QuotaFor(kind BenefitKind) int {
	for _, b := range p.Benefits {
		if b.Kind == kind {
			return b.Quota
		}
	}
	return 0
}

// IsPaid indique si le plan déclenche un paiement lors d'un changement d'abonnement
func (p *Plan) IsPaid() bool {
	return p.Tier == PlanTierPaid
}
