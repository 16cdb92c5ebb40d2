package services

import (
	"context"
	"errors"
	"testing"

	"github.com/jkemta/soutenance-api/model"
)

func TestCreateUserDuplicateChecks(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, CreateUserRequest{
		Email:     "jean@univ.cm",
		Password:  "motdepasse1",
		FirstName: "Jean",
		LastName:  "Kemta",
		Role:      model.RoleCandidat,
		Matricule: "20T0042",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	_, err = svc.CreateUser(ctx, CreateUserRequest{
		Email:     "jean@univ.cm",
		Password:  "motdepasse1",
		FirstName: "Jean",
		LastName:  "Bis",
		Role:      model.RoleCandidat,
		Matricule: "20T0099",
	})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate email = %v, want ErrConflict", err)
	}

	_, err = svc.CreateUser(ctx, CreateUserRequest{
		Email:     "paul@univ.cm",
		Password:  "motdepasse1",
		FirstName: "Paul",
		LastName:  "Ngono",
		Role:      model.RoleCandidat,
		Matricule: "20T0042",
	})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate matricule = %v, want ErrConflict", err)
	}
}

func TestSetCandidatPhoto(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	ctx := context.Background()

	candidat := seedCandidat(t, db, "candidat@univ.cm", "20T0050")

	previous, err := svc.SetCandidatPhoto(ctx, candidat.ID, "photos/1/a_abc123.png", "https://cdn.example.com/a.png")
	if err != nil {
		t.Fatalf("SetCandidatPhoto: %v", err)
	}
	if previous != "" {
		t.Errorf("previous key = %q, want empty on first upload", previous)
	}

	previous, err = svc.SetCandidatPhoto(ctx, candidat.ID, "photos/1/b_def456.png", "https://cdn.example.com/b.png")
	if err != nil {
		t.Fatalf("SetCandidatPhoto (replace): %v", err)
	}
	if previous != "photos/1/a_abc123.png" {
		t.Errorf("previous key = %q, want the first upload's key", previous)
	}

	var reloaded model.CandidatProfile
	if err := db.First(&reloaded, candidat.ID).Error; err != nil {
		t.Fatal(err)
	}
	if reloaded.PhotoKey != "photos/1/b_def456.png" || reloaded.PhotoURL != "https://cdn.example.com/b.png" {
		t.Errorf("photo fields = (%q, %q), want latest upload", reloaded.PhotoKey, reloaded.PhotoURL)
	}

	if _, err := svc.SetCandidatPhoto(ctx, 9999, "photos/x.png", "https://cdn.example.com/x.png"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown profile = %v, want ErrNotFound", err)
	}
}
