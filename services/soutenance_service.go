package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jkemta/soutenance-api/model"
	"github.com/jkemta/soutenance-api/utils/authz"
	"gorm.io/gorm"
)

// SoutenanceService manages defense scheduling, evaluation and reporting
type SoutenanceService struct {
	db            *gorm.DB
	notifications *NotificationService
}

// NewSoutenanceService creates a new soutenance service
func NewSoutenanceService(db *gorm.DB, notifications *NotificationService) *SoutenanceService {
	return &SoutenanceService{db: db, notifications: notifications}
}

// PlanifierRequest carries the scheduling fields for a defense
type PlanifierRequest struct {
	DossierID    uint
	JuryID       uint
	SalleID      uint
	DateHeure    time.Time
	DureeMinutes int
	OrdrePassage int
}

// Planifier schedules the defense of a validated dossier. The jury must be
// active and the room available; the candidate is notified in the same
// transaction.
func (s *SoutenanceService) Planifier(ctx context.Context, req PlanifierRequest) (*model.Soutenance, error) {
	var dossier model.Dossier
	err := s.db.WithContext(ctx).Preload("Candidat").First(&dossier, req.DossierID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: dossier", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch dossier: %w", err)
	}
	if dossier.Statut != model.DossierValide {
		return nil, fmt.Errorf("%w: only a validated dossier can be scheduled", ErrInvalidState)
	}

	var existing int64
	err = s.db.WithContext(ctx).Model(&model.Soutenance{}).
		Where("dossier_id = ?", req.DossierID).
		Count(&existing).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check existing soutenance: %w", err)
	}
	if existing > 0 {
		return nil, fmt.Errorf("%w: dossier already has a soutenance", ErrConflict)
	}

	var jury model.Jury
	err = s.db.WithContext(ctx).First(&jury, req.JuryID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: jury", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch jury: %w", err)
	}
	if jury.Statut != model.JuryActif {
		return nil, fmt.Errorf("%w: jury is not active", ErrInvalidState)
	}

	var salle model.Salle
	err = s.db.WithContext(ctx).First(&salle, req.SalleID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: salle", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch salle: %w", err)
	}
	if !salle.EstDisponible {
		return nil, fmt.Errorf("%w: salle is not available", ErrInvalidState)
	}

	duree := req.DureeMinutes
	if duree <= 0 {
		duree = 60
	}

	if err := s.checkSalleFree(ctx, req.SalleID, req.DateHeure, duree, 0); err != nil {
		return nil, err
	}

	dateHeure := req.DateHeure
	soutenance := &model.Soutenance{
		DossierID:    req.DossierID,
		JuryID:       &req.JuryID,
		SalleID:      &req.SalleID,
		DateHeure:    &dateHeure,
		DureeMinutes: duree,
		OrdrePassage: req.OrdrePassage,
		Statut:       model.SoutenancePlanifiee,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(soutenance).Error; err != nil {
			return fmt.Errorf("failed to create soutenance: %w", err)
		}

		_, err := s.notifications.CreateNotificationTx(tx, CreateNotificationRequest{
			UserID:       dossier.Candidat.UserID,
			Type:         model.NotifSoutenancePlanifiee,
			Titre:        "Soutenance planifiée",
			Message:      fmt.Sprintf("Votre soutenance est planifiée le %s en %s.", dateHeure.Format("02/01/2006 15:04"), salle.Nom),
			SoutenanceID: &soutenance.ID,
			DossierID:    &dossier.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return s.getByID(ctx, soutenance.ID)
}

// checkSalleFree rejects a slot that overlaps another planned or running
// defense in the same room. excludeID skips the soutenance being moved.
func (s *SoutenanceService) checkSalleFree(ctx context.Context, salleID uint, start time.Time, dureeMinutes int, excludeID uint) error {
	end := start.Add(time.Duration(dureeMinutes) * time.Minute)

	query := s.db.WithContext(ctx).Model(&model.Soutenance{}).
		Where("salle_id = ?", salleID).
		Where("statut IN ?", []model.SoutenanceStatut{model.SoutenancePlanifiee, model.SoutenanceEnCours}).
		Where("date_heure < ? AND date_heure + (duree_minutes * interval '1 minute') > ?", end, start)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var overlapping int64
	if err := query.Count(&overlapping).Error; err != nil {
		return fmt.Errorf("failed to check salle availability: %w", err)
	}
	if overlapping > 0 {
		return fmt.Errorf("%w: salle is already booked for this slot", ErrConflict)
	}
	return nil
}

func (s *SoutenanceService) getByID(ctx context.Context, id uint) (*model.Soutenance, error) {
	var soutenance model.Soutenance
	err := s.db.WithContext(ctx).
		Preload("Dossier").
		Preload("Dossier.Candidat").
		Preload("Dossier.Candidat.User").
		Preload("Jury").
		Preload("Jury.Composition").
		Preload("Jury.Composition.Enseignant").
		Preload("Jury.Composition.Enseignant.User").
		Preload("Salle").
		Preload("Evaluations").
		Preload("ProcesVerbal").
		First(&soutenance, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch soutenance: %w", err)
	}
	return &soutenance, nil
}

// GetSoutenance loads a defense the actor may see
func (s *SoutenanceService) GetSoutenance(ctx context.Context, actor authz.Actor, id uint) (*model.Soutenance, error) {
	var visible int64
	err := s.db.WithContext(ctx).Model(&model.Soutenance{}).
		Scopes(authz.ScopeSoutenances(actor)).
		Where("soutenances.id = ?", id).
		Count(&visible).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check soutenance: %w", err)
	}
	if visible == 0 {
		return nil, ErrNotFound
	}
	return s.getByID(ctx, id)
}

// ListSoutenancesOptions filters the defense listing
type ListSoutenancesOptions struct {
	Statut    model.SoutenanceStatut
	SessionID uint
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// ListSoutenances lists the defenses visible to the actor
func (s *SoutenanceService) ListSoutenances(ctx context.Context, actor authz.Actor, opts ListSoutenancesOptions) ([]model.Soutenance, int64, error) {
	var soutenances []model.Soutenance
	var total int64

	query := s.db.WithContext(ctx).Model(&model.Soutenance{}).
		Scopes(authz.ScopeSoutenances(actor))

	if opts.Statut != "" {
		query = query.Where("soutenances.statut = ?", opts.Statut)
	}
	if opts.SessionID != 0 {
		sessionDossiers := s.db.WithContext(ctx).
			Model(&model.Dossier{}).
			Select("id").
			Where("session_id = ?", opts.SessionID)
		query = query.Where("soutenances.dossier_id IN (?)", sessionDossiers)
	}
	if opts.From != nil {
		query = query.Where("soutenances.date_heure >= ?", *opts.From)
	}
	if opts.To != nil {
		query = query.Where("soutenances.date_heure <= ?", *opts.To)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count soutenances: %w", err)
	}

	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}

	err := query.
		Preload("Dossier").
		Preload("Dossier.Candidat").
		Preload("Dossier.Candidat.User").
		Preload("Jury").
		Preload("Salle").
		Order("soutenances.date_heure ASC").
		Find(&soutenances).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch soutenances: %w", err)
	}
	return soutenances, total, nil
}

// Calendrier lists scheduled defenses inside a date range, ordered by slot
// then passage order. Visibility follows the actor's scope.
func (s *SoutenanceService) Calendrier(ctx context.Context, actor authz.Actor, from, to time.Time) ([]model.Soutenance, error) {
	var soutenances []model.Soutenance
	err := s.db.WithContext(ctx).Model(&model.Soutenance{}).
		Scopes(authz.ScopeSoutenances(actor)).
		Where("soutenances.date_heure BETWEEN ? AND ?", from, to).
		Where("soutenances.statut <> ?", model.SoutenanceAnnulee).
		Preload("Dossier").
		Preload("Dossier.Candidat").
		Preload("Dossier.Candidat.User").
		Preload("Salle").
		Preload("Jury").
		Order("soutenances.date_heure ASC, soutenances.ordre_passage ASC").
		Find(&soutenances).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch calendrier: %w", err)
	}
	return soutenances, nil
}

// MesSoutenances lists the defenses judged by the teacher's juries
func (s *SoutenanceService) MesSoutenances(ctx context.Context, enseignantID uint) ([]model.Soutenance, error) {
	juryIDs := s.db.
		Model(&model.MembreJury{}).
		Select("jury_id").
		Where("enseignant_id = ?", enseignantID)

	var soutenances []model.Soutenance
	err := s.db.WithContext(ctx).
		Where("jury_id IN (?)", juryIDs).
		Preload("Dossier").
		Preload("Dossier.Candidat").
		Preload("Dossier.Candidat.User").
		Preload("Salle").
		Preload("Jury").
		Order("date_heure ASC").
		Find(&soutenances).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch soutenances: %w", err)
	}
	return soutenances, nil
}

// Replanifier moves a scheduled defense to a new slot or room
func (s *SoutenanceService) Replanifier(ctx context.Context, id uint, req PlanifierRequest) (*model.Soutenance, error) {
	soutenance, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if soutenance.Statut != model.SoutenancePlanifiee {
		return nil, fmt.Errorf("%w: only a planned soutenance can be rescheduled", ErrInvalidState)
	}

	updates := map[string]interface{}{}
	salleID := uint(0)
	if soutenance.SalleID != nil {
		salleID = *soutenance.SalleID
	}
	if req.SalleID != 0 {
		salleID = req.SalleID
		updates["salle_id"] = req.SalleID
	}
	duree := soutenance.DureeMinutes
	if req.DureeMinutes > 0 {
		duree = req.DureeMinutes
		updates["duree_minutes"] = req.DureeMinutes
	}
	start := soutenance.DateHeure
	if !req.DateHeure.IsZero() {
		start = &req.DateHeure
		updates["date_heure"] = req.DateHeure
	}
	if req.OrdrePassage != 0 {
		updates["ordre_passage"] = req.OrdrePassage
	}
	if req.JuryID != 0 {
		var jury model.Jury
		if err := s.db.WithContext(ctx).First(&jury, req.JuryID).Error; err != nil {
			return nil, fmt.Errorf("%w: jury", ErrNotFound)
		}
		if jury.Statut != model.JuryActif {
			return nil, fmt.Errorf("%w: jury is not active", ErrInvalidState)
		}
		updates["jury_id"] = req.JuryID
	}

	if len(updates) == 0 {
		return soutenance, nil
	}

	if salleID != 0 && start != nil {
		if err := s.checkSalleFree(ctx, salleID, *start, duree, id); err != nil {
			return nil, err
		}
	}

	if err := s.db.WithContext(ctx).Model(soutenance).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to reschedule soutenance: %w", err)
	}
	return s.getByID(ctx, id)
}

// Demarrer marks a planned defense as running
func (s *SoutenanceService) Demarrer(ctx context.Context, id uint) (*model.Soutenance, error) {
	soutenance, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if soutenance.Statut != model.SoutenancePlanifiee {
		return nil, fmt.Errorf("%w: only a planned soutenance can be started", ErrInvalidState)
	}

	if err := s.db.WithContext(ctx).Model(soutenance).Update("statut", model.SoutenanceEnCours).Error; err != nil {
		return nil, fmt.Errorf("failed to start soutenance: %w", err)
	}
	soutenance.Statut = model.SoutenanceEnCours
	return soutenance, nil
}

// TerminerRequest carries the concluding fields for a defense
type TerminerRequest struct {
	NoteFinale   float64
	Observations string
}

// Terminer concludes a running defense. The mention is derived from the
// final score, the procès-verbal is generated and the candidate notified,
// all in one transaction.
func (s *SoutenanceService) Terminer(ctx context.Context, id uint, req TerminerRequest) (*model.Soutenance, error) {
	soutenance, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if soutenance.Statut != model.SoutenanceEnCours {
		return nil, fmt.Errorf("%w: only a running soutenance can be concluded", ErrInvalidState)
	}
	if req.NoteFinale < 0 || req.NoteFinale > 20 {
		return nil, fmt.Errorf("%w: note finale must be between 0 and 20", ErrInvalidState)
	}

	soutenance.SetNoteFinale(req.NoteFinale)
	soutenance.Observations = req.Observations

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"statut":       model.SoutenanceTerminee,
			"note_finale":  req.NoteFinale,
			"mention":      soutenance.Mention,
			"observations": req.Observations,
			"pv_genere":    true,
		}
		if err := tx.Model(&model.Soutenance{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to conclude soutenance: %w", err)
		}

		pv := buildProcesVerbal(soutenance, req.NoteFinale)
		if err := tx.Create(pv).Error; err != nil {
			return fmt.Errorf("failed to create proces-verbal: %w", err)
		}

		_, err := s.notifications.CreateNotificationTx(tx, CreateNotificationRequest{
			UserID:       soutenance.Dossier.Candidat.UserID,
			Type:         model.NotifSoutenanceTerminee,
			Titre:        "Soutenance terminée",
			Message:      fmt.Sprintf("Votre soutenance est terminée. Note finale : %.2f/20.", req.NoteFinale),
			SoutenanceID: &soutenance.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return s.getByID(ctx, id)
}

// buildProcesVerbal assembles the official record for a concluded defense
func buildProcesVerbal(soutenance *model.Soutenance, note float64) *model.ProcesVerbal {
	now := time.Now()
	serie := fmt.Sprintf("PV-%d-%s", now.Year(), strings.ToUpper(uuid.New().String()[:8]))

	var b strings.Builder
	fmt.Fprintf(&b, "PROCÈS-VERBAL DE SOUTENANCE %s\n\n", serie)
	fmt.Fprintf(&b, "Candidat : %s\n", soutenance.Dossier.Candidat.User.FullName())
	fmt.Fprintf(&b, "Matricule : %s\n", soutenance.Dossier.Candidat.Matricule)
	fmt.Fprintf(&b, "Mémoire : %s\n", soutenance.Dossier.TitreMemoire)
	if soutenance.DateHeure != nil {
		fmt.Fprintf(&b, "Date : %s\n", soutenance.DateHeure.Format("02/01/2006 15:04"))
	}
	if soutenance.Salle != nil {
		fmt.Fprintf(&b, "Salle : %s (%s)\n", soutenance.Salle.Nom, soutenance.Salle.Batiment)
	}
	if soutenance.Jury != nil {
		fmt.Fprintf(&b, "\nJury « %s » :\n", soutenance.Jury.Nom)
		for _, m := range soutenance.Jury.Composition {
			fmt.Fprintf(&b, "  - %s : %s\n", m.Role, m.Enseignant.User.FullName())
		}
	}
	fmt.Fprintf(&b, "\nNote finale : %.2f/20\n", note)
	if mention := model.MentionFromScore(note); mention != model.MentionAucune {
		fmt.Fprintf(&b, "Mention : %s\n", mention)
	}
	if soutenance.Observations != "" {
		fmt.Fprintf(&b, "\nObservations :\n%s\n", soutenance.Observations)
	}

	return &model.ProcesVerbal{
		SoutenanceID:   soutenance.ID,
		NumeroSerie:    serie,
		DateGeneration: now,
		Contenu:        b.String(),
	}
}

// Annuler cancels a defense that has not been concluded
func (s *SoutenanceService) Annuler(ctx context.Context, id uint, motif string) (*model.Soutenance, error) {
	soutenance, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if soutenance.Statut == model.SoutenanceTerminee {
		return nil, fmt.Errorf("%w: a concluded soutenance cannot be cancelled", ErrInvalidState)
	}
	if soutenance.Statut == model.SoutenanceAnnulee {
		return soutenance, nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"statut": model.SoutenanceAnnulee}
		if motif != "" {
			updates["observations"] = motif
		}
		if err := tx.Model(soutenance).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to cancel soutenance: %w", err)
		}

		_, err := s.notifications.CreateNotificationTx(tx, CreateNotificationRequest{
			UserID:       soutenance.Dossier.Candidat.UserID,
			Type:         model.NotifSysteme,
			Titre:        "Soutenance annulée",
			Message:      "Votre soutenance a été annulée.",
			SoutenanceID: &soutenance.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	soutenance.Statut = model.SoutenanceAnnulee
	return soutenance, nil
}

// EvaluationRequest carries a jury member's grading of a defense
type EvaluationRequest struct {
	SoutenanceID     uint
	EvaluateurID     uint // EnseignantProfile ID
	NoteMemoire      float64
	NotePresentation float64
	NoteReponses     float64
	Commentaires     string
}

// CreateEvaluation records a jury member's grading. One evaluation per
// (soutenance, evaluator); the evaluator must sit on the jury.
func (s *SoutenanceService) CreateEvaluation(ctx context.Context, req EvaluationRequest) (*model.Evaluation, error) {
	soutenance, err := s.getByID(ctx, req.SoutenanceID)
	if err != nil {
		return nil, err
	}
	if soutenance.Statut != model.SoutenanceEnCours && soutenance.Statut != model.SoutenanceTerminee {
		return nil, fmt.Errorf("%w: soutenance is not open for evaluation", ErrInvalidState)
	}

	for _, note := range []float64{req.NoteMemoire, req.NotePresentation, req.NoteReponses} {
		if note < 0 || note > 20 {
			return nil, fmt.Errorf("%w: notes must be between 0 and 20", ErrInvalidState)
		}
	}

	if soutenance.JuryID == nil {
		return nil, fmt.Errorf("%w: soutenance has no jury", ErrInvalidState)
	}
	var membre int64
	err = s.db.WithContext(ctx).Model(&model.MembreJury{}).
		Where("jury_id = ? AND enseignant_id = ?", *soutenance.JuryID, req.EvaluateurID).
		Count(&membre).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check jury membership: %w", err)
	}
	if membre == 0 {
		return nil, fmt.Errorf("%w: evaluator is not a member of the jury", ErrForbidden)
	}

	var existing int64
	err = s.db.WithContext(ctx).Model(&model.Evaluation{}).
		Where("soutenance_id = ? AND evaluateur_id = ?", req.SoutenanceID, req.EvaluateurID).
		Count(&existing).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check existing evaluation: %w", err)
	}
	if existing > 0 {
		return nil, fmt.Errorf("%w: evaluator already graded this soutenance", ErrConflict)
	}

	evaluation := &model.Evaluation{
		SoutenanceID:     req.SoutenanceID,
		EvaluateurID:     req.EvaluateurID,
		NoteMemoire:      req.NoteMemoire,
		NotePresentation: req.NotePresentation,
		NoteReponses:     req.NoteReponses,
		Commentaires:     req.Commentaires,
	}
	evaluation.ComputeMoyenne()

	if err := s.db.WithContext(ctx).Create(evaluation).Error; err != nil {
		return nil, fmt.Errorf("failed to create evaluation: %w", err)
	}
	return evaluation, nil
}

// ListEvaluations lists the evaluations of a defense the actor may see
func (s *SoutenanceService) ListEvaluations(ctx context.Context, actor authz.Actor, soutenanceID uint) ([]model.Evaluation, error) {
	if _, err := s.GetSoutenance(ctx, actor, soutenanceID); err != nil {
		return nil, err
	}

	var evaluations []model.Evaluation
	err := s.db.WithContext(ctx).
		Where("soutenance_id = ?", soutenanceID).
		Preload("Evaluateur").
		Preload("Evaluateur.User").
		Order("created_at ASC").
		Find(&evaluations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch evaluations: %w", err)
	}
	return evaluations, nil
}

// GetProcesVerbal loads the procès-verbal of a concluded defense
func (s *SoutenanceService) GetProcesVerbal(ctx context.Context, actor authz.Actor, soutenanceID uint) (*model.ProcesVerbal, error) {
	if _, err := s.GetSoutenance(ctx, actor, soutenanceID); err != nil {
		return nil, err
	}

	var pv model.ProcesVerbal
	err := s.db.WithContext(ctx).Where("soutenance_id = ?", soutenanceID).First(&pv).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch proces-verbal: %w", err)
	}
	return &pv, nil
}
