package services

import (
	"context"
	"errors"
	"testing"

	"github.com/jkemta/soutenance-api/model"
)

func TestValidateComposition(t *testing.T) {
	cases := []struct {
		name    string
		membres []JuryMemberInput
		wantErr error
	}{
		{
			name:    "empty composition is allowed",
			membres: nil,
		},
		{
			name: "distinct roles for one teacher",
			membres: []JuryMemberInput{
				{EnseignantID: 1, Role: model.JuryPresident},
				{EnseignantID: 1, Role: model.JuryExaminateur},
				{EnseignantID: 2, Role: model.JuryRapporteur},
			},
		},
		{
			name: "duplicate (teacher, role) pair",
			membres: []JuryMemberInput{
				{EnseignantID: 1, Role: model.JuryPresident},
				{EnseignantID: 1, Role: model.JuryPresident},
			},
			wantErr: ErrConflict,
		},
		{
			name: "unknown role",
			membres: []JuryMemberInput{
				{EnseignantID: 1, Role: "MEMBRE"},
			},
			wantErr: ErrInvalidState,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateComposition(tc.membres)
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestAddMembreUniqueness(t *testing.T) {
	db := newTestDB(t)
	svc := NewJuryService(db, NewNotificationService(db))
	ctx := context.Background()

	session := seedSession(t, db)
	membre := seedEnseignant(t, db, "president@univ.cm")

	jury, err := svc.CreateJury(ctx, CreateJuryRequest{
		Nom:       "Jury B",
		SessionID: session.ID,
		Membres:   []JuryMemberInput{{EnseignantID: membre.ID, Role: model.JuryPresident}},
	})
	if err != nil {
		t.Fatalf("CreateJury: %v", err)
	}

	_, err = svc.AddMembre(ctx, jury.ID, JuryMemberInput{EnseignantID: membre.ID, Role: model.JuryPresident})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate (enseignant, role) = %v, want ErrConflict", err)
	}

	updated, err := svc.AddMembre(ctx, jury.ID, JuryMemberInput{EnseignantID: membre.ID, Role: model.JuryExaminateur})
	if err != nil {
		t.Fatalf("second role for the same enseignant: %v", err)
	}
	if len(updated.Composition) != 2 {
		t.Errorf("composition size = %d, want 2", len(updated.Composition))
	}
}
