package services

import (
	"context"
	"errors"
	"testing"

	"github.com/jkemta/soutenance-api/model"
	"github.com/jkemta/soutenance-api/utils/authz"
)

func candidatActor(p *model.CandidatProfile) authz.Actor {
	return authz.Actor{UserID: p.UserID, Role: model.RoleCandidat, ProfileID: p.ID}
}

func enseignantActor(p *model.EnseignantProfile) authz.Actor {
	return authz.Actor{UserID: p.UserID, Role: model.RoleEnseignant, ProfileID: p.ID}
}

func strPtr(s string) *string { return &s }

func TestDemanderSuppressionCandidatOnly(t *testing.T) {
	db := newTestDB(t)
	svc := NewDossierService(db, NewNotificationService(db), nil)
	ctx := context.Background()

	encadreur := seedEnseignant(t, db, "encadreur@univ.cm")
	candidat := seedCandidat(t, db, "candidat@univ.cm", "20T0001")
	session := seedSession(t, db)
	dossier := seedDossier(t, db, candidat, session, encadreur)

	_, err := svc.DemanderSuppression(ctx, enseignantActor(encadreur), dossier.ID, "erreur de saisie")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("DemanderSuppression as enseignant = %v, want ErrForbidden", err)
	}

	var reloaded model.Dossier
	if err := db.First(&reloaded, dossier.ID).Error; err != nil {
		t.Fatal(err)
	}
	if reloaded.DemandeSuppression {
		t.Error("deletion flag was set by a non-candidate")
	}

	admin := authz.Actor{UserID: 99, Role: model.RoleAdmin}
	if _, err := svc.DemanderSuppression(ctx, admin, dossier.ID, "nettoyage"); !errors.Is(err, ErrForbidden) {
		t.Errorf("DemanderSuppression as admin = %v, want ErrForbidden", err)
	}

	updated, err := svc.DemanderSuppression(ctx, candidatActor(candidat), dossier.ID, "changement de sujet")
	if err != nil {
		t.Fatalf("DemanderSuppression as owner: %v", err)
	}
	if !updated.DemandeSuppression || updated.CommentaireSuppression != "changement de sujet" {
		t.Error("deletion request not recorded for the owner")
	}
}

func TestUpdateDossierEnseignantReadOnly(t *testing.T) {
	db := newTestDB(t)
	svc := NewDossierService(db, NewNotificationService(db), nil)
	ctx := context.Background()

	encadreur := seedEnseignant(t, db, "encadreur@univ.cm")
	candidat := seedCandidat(t, db, "candidat@univ.cm", "20T0002")
	session := seedSession(t, db)
	dossier := seedDossier(t, db, candidat, session, encadreur)

	_, err := svc.UpdateDossier(ctx, enseignantActor(encadreur), dossier.ID, UpdateDossierRequest{
		Theme: strPtr("thème modifié"),
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("UpdateDossier as enseignant = %v, want ErrForbidden", err)
	}

	var reloaded model.Dossier
	if err := db.First(&reloaded, dossier.ID).Error; err != nil {
		t.Fatal(err)
	}
	if reloaded.Theme != "" {
		t.Errorf("Theme = %q, want unchanged", reloaded.Theme)
	}

	updated, err := svc.UpdateDossier(ctx, candidatActor(candidat), dossier.ID, UpdateDossierRequest{
		TitreMemoire: strPtr("Nouveau titre"),
	})
	if err != nil {
		t.Fatalf("UpdateDossier as owner: %v", err)
	}
	if updated.TitreMemoire != "Nouveau titre" {
		t.Errorf("TitreMemoire = %q, want %q", updated.TitreMemoire, "Nouveau titre")
	}
}

func TestDossierVisibilityPerRole(t *testing.T) {
	db := newTestDB(t)
	svc := NewDossierService(db, NewNotificationService(db), nil)
	ctx := context.Background()

	owner := seedCandidat(t, db, "owner@univ.cm", "20T0003")
	other := seedCandidat(t, db, "other@univ.cm", "20T0004")
	session := seedSession(t, db)
	dossier := seedDossier(t, db, owner, session, nil)

	if _, err := svc.GetDossier(ctx, candidatActor(other), dossier.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetDossier outside scope = %v, want ErrNotFound", err)
	}
	if _, err := svc.GetDossier(ctx, candidatActor(owner), dossier.ID); err != nil {
		t.Errorf("GetDossier as owner: %v", err)
	}

	_, total, err := svc.ListDossiers(ctx, candidatActor(other), ListDossiersOptions{})
	if err != nil {
		t.Fatalf("ListDossiers: %v", err)
	}
	if total != 0 {
		t.Errorf("other candidate sees %d dossiers, want 0", total)
	}

	_, total, err = svc.ListDossiers(ctx, authz.Actor{UserID: 1, Role: model.RoleAdmin}, ListDossiersOptions{})
	if err != nil {
		t.Fatalf("ListDossiers as admin: %v", err)
	}
	if total != 1 {
		t.Errorf("admin sees %d dossiers, want 1", total)
	}
}
