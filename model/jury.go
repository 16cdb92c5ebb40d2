package model

import (
	"time"

	"gorm.io/gorm"
)

// JuryStatut is the lifecycle status of a jury
type JuryStatut string

const (
	JuryPropose JuryStatut = "PROPOSE"
	JuryValide  JuryStatut = "VALIDE"
	JuryActif   JuryStatut = "ACTIF"
)

// RoleJury is the role a teacher holds within a jury
type RoleJury string

const (
	JuryPresident   RoleJury = "PRESIDENT"
	JuryRapporteur  RoleJury = "RAPPORTEUR"
	JuryEncadreur   RoleJury = "ENCADREUR"
	JuryExaminateur RoleJury = "EXAMINATEUR"
)

// Valid reports whether r is a known jury role.
func (r RoleJury) Valid() bool {
	switch r {
	case JuryPresident, JuryRapporteur, JuryEncadreur, JuryExaminateur:
		return true
	}
	return false
}

// Jury is the panel of teachers assigned to evaluate defenses within a session
type Jury struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	Nom            string         `gorm:"not null;type:varchar(200)" json:"nom"`
	SessionID      uint           `gorm:"index;not null" json:"session_id"`
	Statut         JuryStatut     `gorm:"type:varchar(20);not null;default:'PROPOSE'" json:"statut"`
	DateValidation *time.Time     `json:"date_validation,omitempty"`

	// Relationships
	Session     SessionSoutenance `gorm:"foreignKey:SessionID" json:"session,omitempty"`
	Composition []MembreJury      `gorm:"foreignKey:JuryID;constraint:OnDelete:CASCADE" json:"composition,omitempty"`
}

// HasMember reports whether the loaded composition already contains the
// (enseignant, role) pair.
func (j *Jury) HasMember(enseignantID uint, role RoleJury) bool {
	for _, m := range j.Composition {
		if m.EnseignantID == enseignantID && m.Role == role {
			return true
		}
	}
	return false
}

// MembreJury associates a teacher with a jury under a specific role.
// A teacher may hold two different roles in the same jury, but never the
// same role twice.
type MembreJury struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	JuryID       uint           `gorm:"not null;uniqueIndex:idx_jury_enseignant_role" json:"jury_id"`
	EnseignantID uint           `gorm:"not null;uniqueIndex:idx_jury_enseignant_role" json:"enseignant_id"`
	Role         RoleJury       `gorm:"type:varchar(20);not null;uniqueIndex:idx_jury_enseignant_role" json:"role"`

	// Relationships
	Jury       Jury              `gorm:"foreignKey:JuryID;constraint:OnDelete:CASCADE" json:"-"`
	Enseignant EnseignantProfile `gorm:"foreignKey:EnseignantID;constraint:OnDelete:CASCADE" json:"enseignant,omitempty"`
}
