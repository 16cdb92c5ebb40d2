package soutenances

import (
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jkemta/soutenance-api/model"
	"github.com/jkemta/soutenance-api/services"
	authutil "github.com/jkemta/soutenance-api/utils/auth"
	"github.com/jkemta/soutenance-api/utils/middleware"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
	jwt *authutil.JWTManager
}

// newTestEnv mounts the soutenance transition routes behind the same
// middleware chain the router uses, backed by an in-memory database.
func newTestEnv(t *testing.T) *testEnv {
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
		&model.CandidatProfile{},
		&model.EnseignantProfile{},
		&model.SessionSoutenance{},
		&model.Salle{},
		&model.Dossier{},
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

	jwtManager := authutil.NewJWTManager(authutil.JWTConfig{
		Secret:        "test-secret",
		Expiry:        time.Hour,
		RefreshExpiry: 24 * time.Hour,
		Issuer:        "soutenance-api-test",
	})
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)
	handler := NewHandler(db, services.NewNotificationService(db))

	app := fiber.New()
	group := app.Group("/api/v1/soutenances", authMiddleware.Required())
	group.Post("/:id/demarrer", authMiddleware.RequireAdmin(), handler.Demarrer)
	group.Post("/:id/terminer", authMiddleware.RequireAdmin(), handler.Terminer)

	return &testEnv{app: app, db: db, jwt: jwtManager}
}

func (e *testEnv) seedUser(t *testing.T, email string, role model.Role) *model.User {
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
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("failed to seed user %s: %v", email, err)
	}
	return user
}

func (e *testEnv) seedSoutenance(t *testing.T, statut model.SoutenanceStatut) *model.Soutenance {
	t.Helper()

	candUser := e.seedUser(t, "candidat@univ.cm", model.RoleCandidat)
	candidat := &model.CandidatProfile{UserID: candUser.ID, Matricule: "20T0100", Cycle: model.CycleIngenieur}
	if err := e.db.Create(candidat).Error; err != nil {
		t.Fatal(err)
	}

	now := time.Now()
	session := &model.SessionSoutenance{
		Titre:           "Session de test",
		AnneeAcademique: "2025-2026",
		DateOuverture:   now.Add(-24 * time.Hour),
		DateCloture:     now.Add(24 * time.Hour),
		Statut:          model.SessionEnCours,
	}
	if err := e.db.Create(session).Error; err != nil {
		t.Fatal(err)
	}

	dossier := &model.Dossier{
		CandidatID:   candidat.ID,
		SessionID:    session.ID,
		TitreMemoire: "Étude de cas",
		Statut:       model.DossierValide,
		DateDepot:    now,
	}
	if err := e.db.Create(dossier).Error; err != nil {
		t.Fatal(err)
	}

	soutenance := &model.Soutenance{DossierID: dossier.ID, Statut: statut, DureeMinutes: 60}
	if err := e.db.Create(soutenance).Error; err != nil {
		t.Fatal(err)
	}
	return soutenance
}

func (e *testEnv) tokenFor(t *testing.T, user *model.User) string {
	t.Helper()
	token, _, err := e.jwt.GenerateAccessToken(user.ID, user.Email, user.Role, user.TokenVersion)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return token
}

func (e *testEnv) post(t *testing.T, path, token, body string) int {
	t.Helper()
	r := httptest.NewRequest("POST", path, strings.NewReader(body))
	r.Header.Set("Authorization", "Bearer "+token)
	if body != "" {
		r.Header.Set("Content-Type", "application/json")
	}
	resp, err := e.app.Test(r, -1)
	if err != nil {
		t.Fatalf("request %s: %v", path, err)
	}
	return resp.StatusCode
}

func TestDemarrerAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, "admin@univ.cm", model.RoleAdmin)
	enseignant := env.seedUser(t, "prof@univ.cm", model.RoleEnseignant)
	soutenance := env.seedSoutenance(t, model.SoutenancePlanifiee)

	path := fmt.Sprintf("/api/v1/soutenances/%d/demarrer", soutenance.ID)

	if status := env.post(t, path, env.tokenFor(t, enseignant), ""); status != fiber.StatusForbidden {
		t.Fatalf("demarrer as enseignant status = %d, want 403", status)
	}
	var reloaded model.Soutenance
	if err := env.db.First(&reloaded, soutenance.ID).Error; err != nil {
		t.Fatal(err)
	}
	if reloaded.Statut != model.SoutenancePlanifiee {
		t.Fatalf("statut = %s after forbidden request, want PLANIFIEE", reloaded.Statut)
	}

	if status := env.post(t, path, env.tokenFor(t, admin), ""); status != fiber.StatusOK {
		t.Fatalf("demarrer as admin status = %d, want 200", status)
	}
	if err := env.db.First(&reloaded, soutenance.ID).Error; err != nil {
		t.Fatal(err)
	}
	if reloaded.Statut != model.SoutenanceEnCours {
		t.Errorf("statut = %s after admin start, want EN_COURS", reloaded.Statut)
	}
}

func TestTerminerAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, "admin@univ.cm", model.RoleAdmin)
	enseignant := env.seedUser(t, "prof@univ.cm", model.RoleEnseignant)
	soutenance := env.seedSoutenance(t, model.SoutenanceEnCours)

	path := fmt.Sprintf("/api/v1/soutenances/%d/terminer", soutenance.ID)
	body := `{"note_finale": 15.5, "observations": "RAS"}`

	if status := env.post(t, path, env.tokenFor(t, enseignant), body); status != fiber.StatusForbidden {
		t.Fatalf("terminer as enseignant status = %d, want 403", status)
	}
	var reloaded model.Soutenance
	if err := env.db.First(&reloaded, soutenance.ID).Error; err != nil {
		t.Fatal(err)
	}
	if reloaded.Statut != model.SoutenanceEnCours || reloaded.NoteFinale != nil {
		t.Fatalf("soutenance concluded by a non-admin: statut=%s", reloaded.Statut)
	}

	if status := env.post(t, path, env.tokenFor(t, admin), body); status != fiber.StatusOK {
		t.Fatalf("terminer as admin status = %d, want 200", status)
	}
	if err := env.db.First(&reloaded, soutenance.ID).Error; err != nil {
		t.Fatal(err)
	}
	if reloaded.Statut != model.SoutenanceTerminee {
		t.Errorf("statut = %s, want TERMINEE", reloaded.Statut)
	}
	if reloaded.NoteFinale == nil || *reloaded.NoteFinale != 15.5 {
		t.Errorf("note finale = %v, want 15.5", reloaded.NoteFinale)
	}
	if reloaded.Mention != model.MentionBien {
		t.Errorf("mention = %s, want BIEN", reloaded.Mention)
	}

	var pvCount int64
	if err := env.db.Model(&model.ProcesVerbal{}).Where("soutenance_id = ?", soutenance.ID).Count(&pvCount).Error; err != nil {
		t.Fatal(err)
	}
	if pvCount != 1 {
		t.Errorf("proces-verbal count = %d, want 1", pvCount)
	}
}
