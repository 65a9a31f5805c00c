package models

import (
	"time"
)

type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "ACTIVE"
	SubscriptionInactive SubscriptionStatus = "INACTIVE"
	SubscriptionDeleted  SubscriptionStatus = "DELETED"
)

// Subscription est le lien unique entre un utilisateur et son plan courant.
// EndDate nil = abonnement sans expiration (tier gratuit). Les compteurs
// Remaining* sont réinitialisés à chaque changement de plan, jamais par une
// modification du catalogue. Version sert de jeton de concurrence optimiste:
// chaque écriture exige la version lue et l'incrémente.
type Subscription struct {
	ID                            string             `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID                        string             `json:"userId" gorm:"type:uuid;not null;uniqueIndex"`
	PlanID                        string             `json:"planId" gorm:"type:uuid;not null"`
	Plan                          *Plan              `json:"plan,omitempty" gorm:"foreignKey:PlanID"`
	Status                        SubscriptionStatus `json:"status" gorm:"type:varchar(20);default:'ACTIVE'"`
	StartDate                     time.Time          `json:"startDate"`
	EndDate                       *time.Time         `json:"endDate"`
	RemainingMediumPrestations    int                `json:"remainingMediumPrestations" gorm:"not null;default:0"`
	RemainingLimitlessPrestations int                `json:"remainingLimitlessPrestations" gorm:"not null;default:0"`
	MediumCooldownEnd             *time.Time         `json:"mediumPrestationsCooldownEnd"`
	LimitlessCooldownEnd          *time.Time         `json:"limitlessPrestationsCooldownEnd"`
	PaymentSessionID              string             `json:"paymentSessionId"`
	Version                       int                `json:"version" gorm:"not null;default:0"`
	CreatedAt                     time.Time          `json:"createdAt"`
	UpdatedAt                     time.Time          `json:"updatedAt"`
}

// SubscriptionCreate est le body attendu pour la création d'un abonnement
type SubscriptionCreate struct {
	UserID    string     `json:"userId" binding:"required"`
	PlanID    string     `json:"planId" binding:"required"`
	Status    string     `json:"status"`
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
}

// SubscriptionChange est le body attendu pour un changement de plan
type SubscriptionChange struct {
	AbonnementID string     `json:"abonnementId" binding:"required"`
	IsAnnual     bool       `json:"isAnnual"`
	StartDate    *time.Time `json:"startDate"`
	EndDate      *time.Time `json:"endDate"`
}
