package authz

import (
	"github.com/jkemta/soutenance-api/model"
	"gorm.io/gorm"
)

// Actor is the authenticated caller, with profile IDs resolved when the role
// has one. ProfileID is the CandidatProfile ID for candidates and the
// EnseignantProfile ID for teachers; zero otherwise.
type Actor struct {
	UserID    uint
	Role      model.Role
	ProfileID uint
}

// IsAdmin reports whether the actor has the admin role.
func (a Actor) IsAdmin() bool { return a.Role == model.RoleAdmin }

// IsCandidat reports whether the actor is a candidate.
func (a Actor) IsCandidat() bool { return a.Role == model.RoleCandidat }

// IsEnseignant reports whether the actor is a teacher.
func (a Actor) IsEnseignant() bool { return a.Role == model.RoleEnseignant }

// ScopeDossiers narrows a dossier query to what the actor may see.
// Admins see everything, candidates their own dossiers, teachers the
// dossiers they supervise or sit on a jury for.
func ScopeDossiers(a Actor) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch {
		case a.IsAdmin():
			return db
		case a.IsCandidat():
			return db.Where("dossiers.candidat_id = ?", a.ProfileID)
		case a.IsEnseignant():
			return db.Where(
				"dossiers.encadreur_id = ? OR dossiers.id IN (?)",
				a.ProfileID,
				juryDossierIDs(db, a.ProfileID),
			)
		}
		return db.Where("1 = 0")
	}
}

// ScopeSoutenances narrows a soutenance query to what the actor may see.
func ScopeSoutenances(a Actor) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch {
		case a.IsAdmin():
			return db
		case a.IsCandidat():
			return db.Joins("JOIN dossiers ON dossiers.id = soutenances.dossier_id").
				Where("dossiers.candidat_id = ?", a.ProfileID)
		case a.IsEnseignant():
			return db.Where(
				"soutenances.jury_id IN (?) OR soutenances.dossier_id IN (?)",
				juryIDsFor(db, a.ProfileID),
				supervisedDossierIDs(db, a.ProfileID),
			)
		}
		return db.Where("1 = 0")
	}
}

// ScopeNotifications narrows notifications to the actor's own.
func ScopeNotifications(a Actor) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", a.UserID)
	}
}

// CanSeeInternalComments reports whether the actor may read internal
// dossier comments.
func CanSeeInternalComments(a Actor) bool {
	return a.IsAdmin() || a.IsEnseignant()
}

// juryIDsFor builds a subquery for the jury IDs the teacher is a member of.
func juryIDsFor(db *gorm.DB, enseignantID uint) *gorm.DB {
	return db.Session(&gorm.Session{NewDB: true}).
		Model(&model.MembreJury{}).
		Select("jury_id").
		Where("enseignant_id = ?", enseignantID)
}

// supervisedDossierIDs builds a subquery for the dossiers the teacher
// supervises as encadreur.
func supervisedDossierIDs(db *gorm.DB, enseignantID uint) *gorm.DB {
	return db.Session(&gorm.Session{NewDB: true}).
		Model(&model.Dossier{}).
		Select("id").
		Where("encadreur_id = ?", enseignantID)
}

// juryDossierIDs builds a subquery for the dossiers whose defense is judged
// by a jury the teacher belongs to.
func juryDossierIDs(db *gorm.DB, enseignantID uint) *gorm.DB {
	return db.Session(&gorm.Session{NewDB: true}).
		Model(&model.Soutenance{}).
		Select("dossier_id").
		Where("jury_id IN (?)", juryIDsFor(db, enseignantID))
}
