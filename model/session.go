package model

import (
	"time"

	"gorm.io/gorm"
)

// SessionStatut is the lifecycle status of a defense session
type SessionStatut string

const (
	SessionOuvert  SessionStatut = "OUVERT"
	SessionEnCours SessionStatut = "EN_COURS"
	SessionFerme   SessionStatut = "FERME"
	SessionTermine SessionStatut = "TERMINE"
)

// SessionSoutenance is an administrative period during which a batch of defenses is organized
type SessionSoutenance struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	Titre           string         `gorm:"not null" json:"titre"`
	AnneeAcademique string         `gorm:"not null;type:varchar(20)" json:"annee_academique"`
	DateOuverture   time.Time      `gorm:"not null" json:"date_ouverture"`
	DateCloture     time.Time      `gorm:"not null" json:"date_cloture"`
	NiveauConcerne  string         `gorm:"type:varchar(20)" json:"niveau_concerne"`
	Statut          SessionStatut  `gorm:"type:varchar(20);not null;default:'OUVERT'" json:"statut"`
	Description     string         `gorm:"type:text" json:"description,omitempty"`
	CreatedByID     *uint          `gorm:"index" json:"created_by_id,omitempty"`

	// Relationships
	CreatedBy *User     `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	Dossiers  []Dossier `gorm:"foreignKey:SessionID" json:"-"`
	Jurys     []Jury    `gorm:"foreignKey:SessionID" json:"-"`
}

// DeriveStatut computes the status the session should carry at the given
// instant. Manually closed (FERME) sessions are left untouched; otherwise the
// open/close window drives OUVERT -> EN_COURS -> TERMINE. The derivation is
// pure and idempotent: applying it twice with the same clock yields the same
// status.
func (s *SessionSoutenance) DeriveStatut(now time.Time) SessionStatut {
	switch s.Statut {
	case SessionFerme, SessionTermine:
		return s.Statut
	}
	if now.After(s.DateCloture) {
		return SessionTermine
	}
	if !now.Before(s.DateOuverture) {
		return SessionEnCours
	}
	return s.Statut
}

// Salle is a defense room
type Salle struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	Nom           string         `gorm:"not null;type:varchar(100)" json:"nom"`
	Batiment      string         `gorm:"not null;type:varchar(100)" json:"batiment"`
	Capacite      int            `gorm:"not null" json:"capacite"`
	EstDisponible bool           `gorm:"default:true" json:"est_disponible"`
}
