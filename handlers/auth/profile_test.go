package auth

import (
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jkemta/soutenance-api/model"
	authutil "github.com/jkemta/soutenance-api/utils/auth"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

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
		&model.CandidatProfile{},
		&model.EnseignantProfile{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

// asUser injects the locals the auth middleware would set for the user.
func asUser(user *model.User) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user_id", user.ID)
		c.Locals("user_role", user.Role)
		return c.Next()
	}
}

func TestUploadPhotoCandidatOnly(t *testing.T) {
	db := newTestDB(t)
	jwtManager := authutil.NewJWTManager(authutil.JWTConfig{
		Secret: "test-secret",
		Expiry: time.Hour,
		Issuer: "soutenance-api-test",
	})
	h := NewAuthHandler(db, jwtManager, nil, nil)

	ensUser := &model.User{
		Email:        "prof@univ.cm",
		PasswordHash: "irrelevant",
		PasswordSalt: []byte("irrelevant"),
		FirstName:    "Test",
		LastName:     "Enseignant",
		Role:         model.RoleEnseignant,
		IsActive:     true,
	}
	if err := db.Create(ensUser).Error; err != nil {
		t.Fatal(err)
	}

	candUser := &model.User{
		Email:        "candidat@univ.cm",
		PasswordHash: "irrelevant",
		PasswordSalt: []byte("irrelevant"),
		FirstName:    "Test",
		LastName:     "Candidat",
		Role:         model.RoleCandidat,
		IsActive:     true,
	}
	if err := db.Create(candUser).Error; err != nil {
		t.Fatal(err)
	}
	profile := &model.CandidatProfile{UserID: candUser.ID, Matricule: "20T0300", Cycle: model.CycleIngenieur}
	if err := db.Create(profile).Error; err != nil {
		t.Fatal(err)
	}

	app := fiber.New()
	app.Post("/enseignant/photo", asUser(ensUser), h.UploadPhoto)
	app.Post("/candidat/photo", asUser(candUser), h.UploadPhoto)

	resp, err := app.Test(httptest.NewRequest("POST", "/enseignant/photo", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("enseignant upload status = %d, want 403", resp.StatusCode)
	}

	resp, err = app.Test(httptest.NewRequest("POST", "/candidat/photo", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("candidat upload without a file status = %d, want 400", resp.StatusCode)
	}
}
