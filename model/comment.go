package model

import (
	"time"

	"gorm.io/gorm"
)

// Commentaire is a remark left on a dossier. Internal comments are only
// visible to admins and teachers.
type Commentaire struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	DossierID  uint           `gorm:"index;not null" json:"dossier_id"`
	AuteurID   uint           `gorm:"index;not null" json:"auteur_id"`
	Contenu    string         `gorm:"type:text;not null" json:"contenu"`
	EstInterne bool           `gorm:"default:false" json:"est_interne"`

	// Relationships
	Dossier Dossier `gorm:"foreignKey:DossierID;constraint:OnDelete:CASCADE" json:"-"`
	Auteur  User    `gorm:"foreignKey:AuteurID" json:"auteur,omitempty"`
}

// VisibleTo reports whether a user with the given role may see the comment.
// Candidates never see internal comments, even their own dossier's.
func (c *Commentaire) VisibleTo(role Role) bool {
	if !c.EstInterne {
		return true
	}
	return role == RoleAdmin || role == RoleEnseignant
}
