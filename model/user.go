package model

import (
	"time"

	"gorm.io/gorm"
)

// Role is the closed set of user roles in the system.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleCandidat   Role = "CANDIDAT"
	RoleEnseignant Role = "ENSEIGNANT"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCandidat, RoleEnseignant:
		return true
	}
	return false
}

// User represents an account with a fixed role
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	PasswordSalt []byte         `gorm:"not null;type:bytea" json:"-"`
	FirstName    string         `gorm:"not null" json:"first_name"`
	LastName     string         `gorm:"not null" json:"last_name"`
	Phone        string         `gorm:"type:varchar(20)" json:"phone,omitempty"`
	Role         Role           `gorm:"type:varchar(20);not null;default:'CANDIDAT'" json:"role"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	TokenVersion int            `gorm:"default:0" json:"-"` // Increment to invalidate all user tokens

	// Relationships
	CandidatProfile   *CandidatProfile   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"candidat_profile,omitempty"`
	EnseignantProfile *EnseignantProfile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"enseignant_profile,omitempty"`
	Notifications     []Notification     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	TokenBlacklist    []JWTTokenBlacklist `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// FullName returns the display name used in notifications and PV content.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	return u.FirstName + " " + u.LastName
}

// JWTTokenBlacklist stores revoked token JTIs until their natural expiry
type JWTTokenBlacklist struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Token     string    `gorm:"uniqueIndex;not null" json:"-"` // JTI
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Reason    string    `gorm:"type:varchar(50)" json:"reason"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`
}
