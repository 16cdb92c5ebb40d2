package model

import (
	"math"
	"time"

	"gorm.io/gorm"
)

// SoutenanceStatut is the lifecycle status of a scheduled defense
type SoutenanceStatut string

const (
	SoutenancePlanifiee SoutenanceStatut = "PLANIFIEE"
	SoutenanceEnCours   SoutenanceStatut = "EN_COURS"
	SoutenanceTerminee  SoutenanceStatut = "TERMINEE"
	SoutenanceAnnulee   SoutenanceStatut = "ANNULEE"
)

// Mention is the honors label derived from the final score
type Mention string

const (
	MentionAucune    Mention = ""
	MentionPassable  Mention = "PASSABLE"
	MentionAssezBien Mention = "ASSEZ_BIEN"
	MentionBien      Mention = "BIEN"
	MentionTresBien  Mention = "TRES_BIEN"
	MentionExcellent Mention = "EXCELLENT"
)

// MentionFromScore maps a /20 score to its honors label. Scores below 10
// carry no mention.
func MentionFromScore(score float64) Mention {
	switch {
	case score >= 18:
		return MentionExcellent
	case score >= 16:
		return MentionTresBien
	case score >= 14:
		return MentionBien
	case score >= 12:
		return MentionAssezBien
	case score >= 10:
		return MentionPassable
	}
	return MentionAucune
}

// EvaluationAverage computes the weighted average of the three evaluation
// axes: 40% memoire, 30% presentation, 30% reponses. The result is rounded
// to two decimals.
func EvaluationAverage(memoire, presentation, reponses float64) float64 {
	avg := 0.4*memoire + 0.3*presentation + 0.3*reponses
	return math.Round(avg*100) / 100
}

// Soutenance is the scheduled defense of a dossier. Exactly one per dossier.
type Soutenance struct {
	ID           uint             `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	DeletedAt    gorm.DeletedAt   `gorm:"index" json:"deleted_at,omitempty"`
	DossierID    uint             `gorm:"uniqueIndex;not null" json:"dossier_id"`
	JuryID       *uint            `gorm:"index" json:"jury_id,omitempty"`
	SalleID      *uint            `gorm:"index" json:"salle_id,omitempty"`
	DateHeure    *time.Time       `json:"date_heure,omitempty"`
	DureeMinutes int              `gorm:"default:60" json:"duree_minutes"`
	OrdrePassage int              `gorm:"default:0" json:"ordre_passage"`
	Statut       SoutenanceStatut `gorm:"type:varchar(20);not null;default:'PLANIFIEE'" json:"statut"`
	NoteFinale   *float64         `json:"note_finale,omitempty"`
	Mention      Mention          `gorm:"type:varchar(20)" json:"mention,omitempty"`
	Observations string           `gorm:"type:text" json:"observations,omitempty"`
	PVGenere     bool             `gorm:"default:false" json:"pv_genere"`

	// Relationships
	Dossier      Dossier       `gorm:"foreignKey:DossierID;constraint:OnDelete:CASCADE" json:"dossier,omitempty"`
	Jury         *Jury         `gorm:"foreignKey:JuryID" json:"jury,omitempty"`
	Salle        *Salle        `gorm:"foreignKey:SalleID" json:"salle,omitempty"`
	Evaluations  []Evaluation  `gorm:"foreignKey:SoutenanceID;constraint:OnDelete:CASCADE" json:"evaluations,omitempty"`
	ProcesVerbal *ProcesVerbal `gorm:"foreignKey:SoutenanceID" json:"proces_verbal,omitempty"`
}

// SetNoteFinale records the final score and recomputes the mention from it.
func (s *Soutenance) SetNoteFinale(note float64) {
	n := note
	s.NoteFinale = &n
	s.Mention = MentionFromScore(note)
}

// Evaluation is a single jury member's grading of a defense. One per
// (soutenance, evaluator) pair.
type Evaluation struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	SoutenanceID     uint           `gorm:"not null;uniqueIndex:idx_soutenance_evaluateur" json:"soutenance_id"`
	EvaluateurID     uint           `gorm:"not null;uniqueIndex:idx_soutenance_evaluateur" json:"evaluateur_id"`
	NoteMemoire      float64        `gorm:"not null" json:"note_memoire"`
	NotePresentation float64        `gorm:"not null" json:"note_presentation"`
	NoteReponses     float64        `gorm:"not null" json:"note_reponses"`
	Moyenne          float64        `gorm:"not null" json:"moyenne"`
	Commentaires     string         `gorm:"type:text" json:"commentaires,omitempty"`

	// Relationships
	Soutenance Soutenance        `gorm:"foreignKey:SoutenanceID;constraint:OnDelete:CASCADE" json:"-"`
	Evaluateur EnseignantProfile `gorm:"foreignKey:EvaluateurID" json:"evaluateur,omitempty"`
}

// ComputeMoyenne fills the weighted average from the three axis notes.
func (e *Evaluation) ComputeMoyenne() {
	e.Moyenne = EvaluationAverage(e.NoteMemoire, e.NotePresentation, e.NoteReponses)
}

// ProcesVerbal is the official record produced once a defense is concluded.
type ProcesVerbal struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	SoutenanceID   uint           `gorm:"uniqueIndex;not null" json:"soutenance_id"`
	NumeroSerie    string         `gorm:"uniqueIndex;not null;type:varchar(100)" json:"numero_serie"`
	DateGeneration time.Time      `json:"date_generation"`
	Contenu        string         `gorm:"type:text" json:"contenu"`
	StorageKey     string         `gorm:"type:varchar(500)" json:"storage_key,omitempty"`
	FileURL        string         `gorm:"type:text" json:"file_url,omitempty"`

	// Relationships
	Soutenance Soutenance `gorm:"foreignKey:SoutenanceID;constraint:OnDelete:CASCADE" json:"-"`
}
