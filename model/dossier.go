package model

import (
	"time"

	"gorm.io/gorm"
)

// DossierStatut is the lifecycle status of a submission bundle
type DossierStatut string

const (
	DossierBrouillon DossierStatut = "BROUILLON"
	DossierDepose    DossierStatut = "DEPOSE"
	DossierValide    DossierStatut = "VALIDE"
	DossierRejete    DossierStatut = "REJETE"
)

// Dossier is a candidate's defense-submission bundle. Status transitions are
// admin-gated; the deletion request is a two-phase flag handled separately
// from the main status axis.
type Dossier struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	CandidatID        uint           `gorm:"index;not null" json:"candidat_id"`
	SessionID         uint           `gorm:"index;not null" json:"session_id"`
	TitreMemoire      string         `gorm:"not null;type:varchar(300)" json:"titre_memoire"`
	Theme             string         `gorm:"type:text" json:"theme,omitempty"`
	EncadreurID       *uint          `gorm:"index" json:"encadreur_id,omitempty"`
	Statut            DossierStatut  `gorm:"type:varchar(20);not null;default:'DEPOSE'" json:"statut"`
	DateDepot         time.Time      `json:"date_depot"`
	DateValidation    *time.Time     `json:"date_validation,omitempty"`
	CommentairesAdmin string         `gorm:"type:text" json:"commentaires_admin,omitempty"`

	// Deletion request (two-phase: candidate sets the flag, admin accepts or rejects)
	DemandeSuppression     bool       `gorm:"default:false" json:"demande_suppression"`
	CommentaireSuppression string     `gorm:"type:text" json:"commentaire_suppression,omitempty"`
	DateDemandeSuppression *time.Time `json:"date_demande_suppression,omitempty"`

	// Relationships
	Candidat   CandidatProfile    `gorm:"foreignKey:CandidatID;constraint:OnDelete:CASCADE" json:"candidat,omitempty"`
	Session    SessionSoutenance  `gorm:"foreignKey:SessionID" json:"session,omitempty"`
	Encadreur  *EnseignantProfile `gorm:"foreignKey:EncadreurID" json:"encadreur,omitempty"`
	Documents  []Document         `gorm:"foreignKey:DossierID;constraint:OnDelete:CASCADE" json:"documents,omitempty"`
	Soutenance *Soutenance        `gorm:"foreignKey:DossierID" json:"soutenance,omitempty"`
}

// RequestDeletion flags the dossier for deletion. Calling it again while a
// request is already pending keeps the flag set (idempotent) but refreshes
// the comment and timestamp.
func (d *Dossier) RequestDeletion(comment string, now time.Time) {
	d.DemandeSuppression = true
	d.CommentaireSuppression = comment
	t := now
	d.DateDemandeSuppression = &t
}

// ResetDeletionRequest clears a pending deletion request (admin rejection).
func (d *Dossier) ResetDeletionRequest() {
	d.DemandeSuppression = false
	d.CommentaireSuppression = ""
	d.DateDemandeSuppression = nil
}

// TypePiece tags the kind of attached document
type TypePiece string

const (
	PieceMemoire             TypePiece = "MEMOIRE"
	PieceRecuPaiement        TypePiece = "RECU_PAIEMENT"
	PieceAccordStage         TypePiece = "ACCORD_STAGE"
	PieceLettreMiseEnStage   TypePiece = "LETTRE_MISE_EN_STAGE"
	PieceCertificatScolarite TypePiece = "CERTIFICAT_SCOLARITE"
	PieceAttestation         TypePiece = "ATTESTATION"
	PieceAutre               TypePiece = "AUTRE"
)

// Valid reports whether t is a known document type.
func (t TypePiece) Valid() bool {
	switch t {
	case PieceMemoire, PieceRecuPaiement, PieceAccordStage, PieceLettreMiseEnStage,
		PieceCertificatScolarite, PieceAttestation, PieceAutre:
		return true
	}
	return false
}

// Document is an uploaded file attached to a dossier. The file itself lives
// in object storage; StorageKey is the collision-resistant key and FileURL
// the public URL.
type Document struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	DossierID      uint           `gorm:"index;not null" json:"dossier_id"`
	Nom            string         `gorm:"not null;type:varchar(200)" json:"nom"`
	StorageKey     string         `gorm:"not null;type:varchar(500)" json:"storage_key"`
	FileURL        string         `gorm:"not null;type:text" json:"file_url"`
	TypePiece      TypePiece      `gorm:"type:varchar(30);not null" json:"type_piece"`
	EstObligatoire bool           `gorm:"default:false" json:"est_obligatoire"`
	FileSize       int64          `gorm:"default:0" json:"file_size"`
	PageCount      int            `gorm:"default:0" json:"page_count"`

	// Relationships
	Dossier Dossier `gorm:"foreignKey:DossierID;constraint:OnDelete:CASCADE" json:"-"`
}
