package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NotificationType tags what event a notification reports
type NotificationType string

const (
	NotifDossierValide       NotificationType = "DOSSIER_VALIDE"
	NotifDossierRejete       NotificationType = "DOSSIER_REJETE"
	NotifSoutenancePlanifiee NotificationType = "SOUTENANCE_PLANIFIEE"
	NotifSoutenanceTerminee  NotificationType = "SOUTENANCE_TERMINEE"
	NotifJuryAffectation     NotificationType = "JURY_AFFECTATION"
	NotifSysteme             NotificationType = "SYSTEME"
)

// Notification is an in-app message targeted at a single user
type Notification struct {
	ID           uint             `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	DeletedAt    gorm.DeletedAt   `gorm:"index" json:"deleted_at,omitempty"`
	UserID       uint             `gorm:"index;not null" json:"user_id"`
	Type         NotificationType `gorm:"type:varchar(30);not null;default:'SYSTEME'" json:"type"`
	Titre        string           `gorm:"not null" json:"titre"`
	Message      string           `gorm:"type:text;not null" json:"message"`
	EstLue       bool             `gorm:"default:false;index" json:"est_lue"`
	DateLecture  *time.Time       `json:"date_lecture,omitempty"`
	SoutenanceID *uint            `gorm:"index" json:"soutenance_id,omitempty"`
	DossierID    *uint            `gorm:"index" json:"dossier_id,omitempty"`
	Metadata     datatypes.JSON   `gorm:"type:jsonb" json:"metadata,omitempty"`

	// Relationships
	User       User        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Soutenance *Soutenance `gorm:"foreignKey:SoutenanceID" json:"-"`
	Dossier    *Dossier    `gorm:"foreignKey:DossierID" json:"-"`
}

// MarkRead flags the notification as read and stamps the read time.
// Already-read notifications keep their original timestamp.
func (n *Notification) MarkRead(now time.Time) {
	if n.EstLue {
		return
	}
	n.EstLue = true
	t := now
	n.DateLecture = &t
}
