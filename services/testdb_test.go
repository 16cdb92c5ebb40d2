package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jkemta/soutenance-api/model"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database migrated with the full
// schema. Each test gets its own database, keyed by the test name.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.JWTTokenBlacklist{},
		&model.Departement{},
		&model.CandidatProfile{},
		&model.EnseignantProfile{},
		&model.SessionSoutenance{},
		&model.Salle{},
		&model.Dossier{},
		&model.Document{},
		&model.Commentaire{},
		&model.Jury{},
		&model.MembreJury{},
		&model.Soutenance{},
		&model.Evaluation{},
		&model.ProcesVerbal{},
		&model.Notification{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string, role model.Role) *model.User {
	t.Helper()
	user := &model.User{
		Email:        email,
		PasswordHash: "irrelevant",
		PasswordSalt: []byte("irrelevant"),
		FirstName:    "Test",
		LastName:     "User",
		Role:         role,
		IsActive:     true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to seed user %s: %v", email, err)
	}
	return user
}

func seedCandidat(t *testing.T, db *gorm.DB, email, matricule string) *model.CandidatProfile {
	t.Helper()
	user := seedUser(t, db, email, model.RoleCandidat)
	profile := &model.CandidatProfile{
		UserID:    user.ID,
		Matricule: matricule,
		Cycle:     model.CycleIngenieur,
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("failed to seed candidat %s: %v", matricule, err)
	}
	profile.User = *user
	return profile
}

func seedEnseignant(t *testing.T, db *gorm.DB, email string) *model.EnseignantProfile {
	t.Helper()
	user := seedUser(t, db, email, model.RoleEnseignant)
	profile := &model.EnseignantProfile{
		UserID: user.ID,
		Grade:  model.GradeMaitreConf,
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("failed to seed enseignant %s: %v", email, err)
	}
	profile.User = *user
	return profile
}

func seedSession(t *testing.T, db *gorm.DB) *model.SessionSoutenance {
	t.Helper()
	now := time.Now()
	session := &model.SessionSoutenance{
		Titre:           "Session de test",
		AnneeAcademique: "2025-2026",
		DateOuverture:   now.Add(-24 * time.Hour),
		DateCloture:     now.Add(24 * time.Hour),
		Statut:          model.SessionEnCours,
	}
	if err := db.Create(session).Error; err != nil {
		t.Fatalf("failed to seed session: %v", err)
	}
	return session
}

func seedDossier(t *testing.T, db *gorm.DB, candidat *model.CandidatProfile, session *model.SessionSoutenance, encadreur *model.EnseignantProfile) *model.Dossier {
	t.Helper()
	dossier := &model.Dossier{
		CandidatID:   candidat.ID,
		SessionID:    session.ID,
		TitreMemoire: "Étude de cas",
		Statut:       model.DossierDepose,
		DateDepot:    time.Now(),
	}
	if encadreur != nil {
		dossier.EncadreurID = &encadreur.ID
	}
	if err := db.Create(dossier).Error; err != nil {
		t.Fatalf("failed to seed dossier: %v", err)
	}
	return dossier
}
