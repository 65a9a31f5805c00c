package models

import (
	"time"
)

type InterventionStatus string

const (
	InterventionPending InterventionStatus = "PENDING"
	InterventionPaid    InterventionStatus = "PAID"
	InterventionDone    InterventionStatus = "DONE"
)

// Intervention est une prestation de service réalisée sur un bien loué et
// payée par le locataire. Price est en unités majeures (euros).
type Intervention struct {
	ID               string             `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	PropertyRef      string             `json:"propertyRef"`
	ProviderID       string             `json:"providerId" gorm:"type:uuid;not null"`
	RenterID         string             `json:"renterId" gorm:"type:uuid;not null;index"`
	Title            string             `json:"title" gorm:"not null" binding:"required"`
	Description      string             `json:"description" gorm:"type:text"`
	Price            float64            `json:"price" gorm:"not null;default:0"`
	Status           InterventionStatus `json:"status" gorm:"type:varchar(20);default:'PENDING'"`
	PaymentSessionID string             `json:"paymentSessionId"`
	CreatedAt        time.Time          `json:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt"`
}
