package services

import (
	"context"
	"errors"
	"testing"

	"github.com/jkemta/soutenance-api/model"
)

func TestCreateEvaluationRules(t *testing.T) {
	db := newTestDB(t)
	svc := NewSoutenanceService(db, NewNotificationService(db))
	ctx := context.Background()

	candidat := seedCandidat(t, db, "candidat@univ.cm", "20T0010")
	session := seedSession(t, db)
	dossier := seedDossier(t, db, candidat, session, nil)

	membre := seedEnseignant(t, db, "rapporteur@univ.cm")
	outsider := seedEnseignant(t, db, "externe@univ.cm")

	jury := &model.Jury{Nom: "Jury A", SessionID: session.ID, Statut: model.JuryActif}
	if err := db.Create(jury).Error; err != nil {
		t.Fatal(err)
	}
	if err := db.Create(&model.MembreJury{JuryID: jury.ID, EnseignantID: membre.ID, Role: model.JuryRapporteur}).Error; err != nil {
		t.Fatal(err)
	}

	soutenance := &model.Soutenance{
		DossierID:    dossier.ID,
		JuryID:       &jury.ID,
		Statut:       model.SoutenanceEnCours,
		DureeMinutes: 60,
	}
	if err := db.Create(soutenance).Error; err != nil {
		t.Fatal(err)
	}

	req := EvaluationRequest{
		SoutenanceID:     soutenance.ID,
		EvaluateurID:     membre.ID,
		NoteMemoire:      15,
		NotePresentation: 14,
		NoteReponses:     13,
	}
	first, err := svc.CreateEvaluation(ctx, req)
	if err != nil {
		t.Fatalf("CreateEvaluation: %v", err)
	}
	if first.Moyenne != 14.1 {
		t.Errorf("Moyenne = %v, want 14.1", first.Moyenne)
	}

	if _, err := svc.CreateEvaluation(ctx, req); !errors.Is(err, ErrConflict) {
		t.Errorf("second evaluation by the same member = %v, want ErrConflict", err)
	}

	req.EvaluateurID = outsider.ID
	if _, err := svc.CreateEvaluation(ctx, req); !errors.Is(err, ErrForbidden) {
		t.Errorf("evaluation by a non-member = %v, want ErrForbidden", err)
	}

	var count int64
	if err := db.Model(&model.Evaluation{}).Where("soutenance_id = ?", soutenance.ID).Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("stored evaluations = %d, want 1", count)
	}
}
