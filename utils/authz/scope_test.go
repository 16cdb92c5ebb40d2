package authz

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

func newScopeDB(t *testing.T) *gorm.DB {
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
		&model.CandidatProfile{},
		&model.EnseignantProfile{},
		&model.SessionSoutenance{},
		&model.Dossier{},
		&model.Jury{},
		&model.MembreJury{},
		&model.Soutenance{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func create(t *testing.T, db *gorm.DB, value interface{}) {
	t.Helper()
	if err := db.Create(value).Error; err != nil {
		t.Fatalf("failed to create %T: %v", value, err)
	}
}

func seedTeacher(t *testing.T, db *gorm.DB, email string) *model.EnseignantProfile {
	t.Helper()
	user := &model.User{
		Email:        email,
		PasswordHash: "irrelevant",
		PasswordSalt: []byte("irrelevant"),
		FirstName:    "Test",
		LastName:     "Enseignant",
		Role:         model.RoleEnseignant,
		IsActive:     true,
	}
	create(t, db, user)
	profile := &model.EnseignantProfile{UserID: user.ID, Grade: model.GradeProfesseur}
	create(t, db, profile)
	return profile
}

func TestScopeSoutenancesTeacherRelations(t *testing.T) {
	db := newScopeDB(t)

	encadreur := seedTeacher(t, db, "encadreur@univ.cm")
	juryMember := seedTeacher(t, db, "examinateur@univ.cm")
	stranger := seedTeacher(t, db, "externe@univ.cm")

	candUser := &model.User{
		Email:        "candidat@univ.cm",
		PasswordHash: "irrelevant",
		PasswordSalt: []byte("irrelevant"),
		FirstName:    "Test",
		LastName:     "Candidat",
		Role:         model.RoleCandidat,
		IsActive:     true,
	}
	create(t, db, candUser)
	candidat := &model.CandidatProfile{UserID: candUser.ID, Matricule: "20T0200", Cycle: model.CycleIngenieur}
	create(t, db, candidat)

	now := time.Now()
	session := &model.SessionSoutenance{
		Titre:           "Session de test",
		AnneeAcademique: "2025-2026",
		DateOuverture:   now.Add(-24 * time.Hour),
		DateCloture:     now.Add(24 * time.Hour),
		Statut:          model.SessionEnCours,
	}
	create(t, db, session)

	dossier := &model.Dossier{
		CandidatID:   candidat.ID,
		SessionID:    session.ID,
		TitreMemoire: "Étude de cas",
		EncadreurID:  &encadreur.ID,
		Statut:       model.DossierValide,
		DateDepot:    now,
	}
	create(t, db, dossier)

	// No jury yet: only the supervisor relation can grant visibility
	soutenance := &model.Soutenance{DossierID: dossier.ID, Statut: model.SoutenancePlanifiee, DureeMinutes: 60}
	create(t, db, soutenance)

	countFor := func(a Actor) int64 {
		t.Helper()
		var n int64
		if err := db.Model(&model.Soutenance{}).Scopes(ScopeSoutenances(a)).Count(&n).Error; err != nil {
			t.Fatalf("scoped count: %v", err)
		}
		return n
	}

	supervisor := Actor{UserID: encadreur.UserID, Role: model.RoleEnseignant, ProfileID: encadreur.ID}
	if got := countFor(supervisor); got != 1 {
		t.Errorf("supervisor sees %d soutenances, want 1", got)
	}
	outsider := Actor{UserID: stranger.UserID, Role: model.RoleEnseignant, ProfileID: stranger.ID}
	if got := countFor(outsider); got != 0 {
		t.Errorf("unrelated enseignant sees %d soutenances, want 0", got)
	}
	owner := Actor{UserID: candUser.ID, Role: model.RoleCandidat, ProfileID: candidat.ID}
	if got := countFor(owner); got != 1 {
		t.Errorf("owning candidate sees %d soutenances, want 1", got)
	}

	// The supervisor sees the dossier and its soutenance alike
	var dossierCount int64
	if err := db.Model(&model.Dossier{}).Scopes(ScopeDossiers(supervisor)).Count(&dossierCount).Error; err != nil {
		t.Fatal(err)
	}
	if dossierCount != 1 {
		t.Errorf("supervisor sees %d dossiers, want 1", dossierCount)
	}

	// Jury membership grants visibility on its own
	jury := &model.Jury{Nom: "Jury C", SessionID: session.ID, Statut: model.JuryActif}
	create(t, db, jury)
	create(t, db, &model.MembreJury{JuryID: jury.ID, EnseignantID: juryMember.ID, Role: model.JuryExaminateur})
	if err := db.Model(soutenance).Update("jury_id", jury.ID).Error; err != nil {
		t.Fatal(err)
	}

	member := Actor{UserID: juryMember.UserID, Role: model.RoleEnseignant, ProfileID: juryMember.ID}
	if got := countFor(member); got != 1 {
		t.Errorf("jury member sees %d soutenances, want 1", got)
	}
	if got := countFor(supervisor); got != 1 {
		t.Errorf("supervisor visibility lost after jury assignment: %d", got)
	}
	if got := countFor(outsider); got != 0 {
		t.Errorf("unrelated enseignant sees %d soutenances after jury assignment, want 0", got)
	}
}
