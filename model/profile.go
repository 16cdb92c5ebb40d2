package model

import (
	"time"

	"gorm.io/gorm"
)

// Cycle is the study cycle of a candidate
type Cycle string

const (
	CycleIngenieur        Cycle = "INGENIEUR"
	CycleScienceIngenieur Cycle = "SCIENCE_INGENIEUR"
	CycleMasterPro        Cycle = "MASTER_PRO"
)

// Valid reports whether c is a known cycle.
func (c Cycle) Valid() bool {
	switch c {
	case CycleIngenieur, CycleScienceIngenieur, CycleMasterPro:
		return true
	}
	return false
}

// Grade is the academic grade of a teacher
type Grade string

const (
	GradeProfesseur  Grade = "PROFESSEUR"
	GradeMaitreConf  Grade = "MAITRE_CONF"
	GradeChargeCours Grade = "CHARGE_COURS"
	GradeAssistant   Grade = "ASSISTANT"
)

// Valid reports whether g is a known grade.
func (g Grade) Valid() bool {
	switch g {
	case GradeProfesseur, GradeMaitreConf, GradeChargeCours, GradeAssistant:
		return true
	}
	return false
}

// CandidatProfile is the candidate-side extension of a User (exactly one per user)
type CandidatProfile struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	UserID        uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	Matricule     string         `gorm:"uniqueIndex;not null;type:varchar(50)" json:"matricule"`
	Cycle         Cycle          `gorm:"type:varchar(30);not null;default:'INGENIEUR'" json:"cycle"`
	DepartementID *uint          `gorm:"index" json:"departement_id,omitempty"`
	PhotoKey      string         `gorm:"type:varchar(500)" json:"photo_key,omitempty"`
	PhotoURL      string         `gorm:"type:text" json:"photo_url,omitempty"`

	// Relationships
	User        User         `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Departement *Departement `gorm:"foreignKey:DepartementID" json:"departement,omitempty"`
	Dossiers    []Dossier    `gorm:"foreignKey:CandidatID;constraint:OnDelete:CASCADE" json:"dossiers,omitempty"`
}

// EnseignantProfile is the teacher-side extension of a User
type EnseignantProfile struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	UserID     uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	Grade      Grade          `gorm:"type:varchar(20);not null" json:"grade"`
	Specialite string         `gorm:"type:varchar(200)" json:"specialite,omitempty"`

	// Relationships
	User         User          `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Departements []Departement `gorm:"many2many:enseignant_departements" json:"departements,omitempty"`
}
