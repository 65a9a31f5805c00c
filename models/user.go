package models

import (
	"time"
)

type Role string

const (
	AdminRole    Role = "ADMIN"
	OwnerRole    Role = "OWNER"
	RenterRole   Role = "RENTER"
	ProviderRole Role = "PROVIDER"
)

// User représente un utilisateur dans la base de données
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Email     string    `json:"email" gorm:"not null;uniqueIndex" binding:"required,email"`
	Password  string    `json:"password,omitempty" binding:"required,min=6"`
	UserName  string    `json:"username"`
	Role      Role      `json:"role" gorm:"type:varchar(20);default:'RENTER'"`
	Enable    bool      `json:"enable" gorm:"default:true"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserLogin est le body attendu pour la connexion
type UserLogin struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
