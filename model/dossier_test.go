package model

import (
	"testing"
	"time"
)

func TestRequestDeletion(t *testing.T) {
	var d Dossier
	first := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

	d.RequestDeletion("changement de theme", first)
	if !d.DemandeSuppression {
		t.Fatal("DemandeSuppression not set")
	}
	if d.CommentaireSuppression != "changement de theme" {
		t.Errorf("CommentaireSuppression = %q", d.CommentaireSuppression)
	}
	if d.DateDemandeSuppression == nil || !d.DateDemandeSuppression.Equal(first) {
		t.Errorf("DateDemandeSuppression = %v, want %v", d.DateDemandeSuppression, first)
	}

	// Repeating the request keeps the flag and refreshes comment and timestamp
	second := first.Add(48 * time.Hour)
	d.RequestDeletion("abandon", second)
	if !d.DemandeSuppression {
		t.Fatal("DemandeSuppression cleared by repeated request")
	}
	if d.CommentaireSuppression != "abandon" {
		t.Errorf("CommentaireSuppression = %q, want refreshed comment", d.CommentaireSuppression)
	}
	if d.DateDemandeSuppression == nil || !d.DateDemandeSuppression.Equal(second) {
		t.Errorf("DateDemandeSuppression = %v, want %v", d.DateDemandeSuppression, second)
	}
}

func TestResetDeletionRequest(t *testing.T) {
	var d Dossier
	d.RequestDeletion("abandon", time.Now())
	d.ResetDeletionRequest()

	if d.DemandeSuppression {
		t.Error("DemandeSuppression still set")
	}
	if d.CommentaireSuppression != "" {
		t.Errorf("CommentaireSuppression = %q, want empty", d.CommentaireSuppression)
	}
	if d.DateDemandeSuppression != nil {
		t.Errorf("DateDemandeSuppression = %v, want nil", d.DateDemandeSuppression)
	}
}

func TestTypePieceValid(t *testing.T) {
	valid := []TypePiece{
		PieceMemoire, PieceRecuPaiement, PieceAccordStage, PieceLettreMiseEnStage,
		PieceCertificatScolarite, PieceAttestation, PieceAutre,
	}
	for _, p := range valid {
		if !p.Valid() {
			t.Errorf("%q should be valid", p)
		}
	}

	for _, p := range []TypePiece{"", "memoire", "CV", "DIPLOME"} {
		if p.Valid() {
			t.Errorf("%q should be invalid", p)
		}
	}
}
