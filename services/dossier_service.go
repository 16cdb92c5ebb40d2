package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jkemta/soutenance-api/model"
	"github.com/jkemta/soutenance-api/services/storage"
	"github.com/jkemta/soutenance-api/utils/authz"
	"gorm.io/gorm"
)

// DossierService manages submission bundles and their validation workflow
type DossierService struct {
	db            *gorm.DB
	notifications *NotificationService
	storage       *storage.SpacesClient
	sessions      *SessionService
}

// NewDossierService creates a new dossier service
func NewDossierService(db *gorm.DB, notifications *NotificationService, spaces *storage.SpacesClient) *DossierService {
	return &DossierService{
		db:            db,
		notifications: notifications,
		storage:       spaces,
		sessions:      NewSessionService(db),
	}
}

// CreateDossierRequest carries the fields for a new dossier
type CreateDossierRequest struct {
	CandidatID   uint // CandidatProfile ID
	SessionID    uint
	TitreMemoire string
	Theme        string
	EncadreurID  *uint
}

// CreateDossier creates a dossier in an open session. A candidate may hold
// only one dossier per session.
func (s *DossierService) CreateDossier(ctx context.Context, req CreateDossierRequest) (*model.Dossier, error) {
	session, err := s.sessions.GetSession(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if session.Statut != model.SessionOuvert && session.Statut != model.SessionEnCours {
		return nil, fmt.Errorf("%w: session is not open for submissions", ErrInvalidState)
	}

	var existing int64
	err = s.db.WithContext(ctx).Model(&model.Dossier{}).
		Where("candidat_id = ? AND session_id = ?", req.CandidatID, req.SessionID).
		Count(&existing).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check existing dossier: %w", err)
	}
	if existing > 0 {
		return nil, fmt.Errorf("%w: candidat already has a dossier in this session", ErrConflict)
	}

	if req.EncadreurID != nil {
		var count int64
		if err := s.db.WithContext(ctx).Model(&model.EnseignantProfile{}).
			Where("id = ?", *req.EncadreurID).
			Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to check encadreur: %w", err)
		}
		if count == 0 {
			return nil, fmt.Errorf("%w: encadreur", ErrNotFound)
		}
	}

	dossier := &model.Dossier{
		CandidatID:   req.CandidatID,
		SessionID:    req.SessionID,
		TitreMemoire: req.TitreMemoire,
		Theme:        req.Theme,
		EncadreurID:  req.EncadreurID,
		Statut:       model.DossierDepose,
		DateDepot:    time.Now(),
	}

	if err := s.db.WithContext(ctx).Create(dossier).Error; err != nil {
		return nil, fmt.Errorf("failed to create dossier: %w", err)
	}
	return dossier, nil
}

// ListDossiersOptions filters the dossier listing
type ListDossiersOptions struct {
	Statut             model.DossierStatut
	SessionID          uint
	Search             string
	DemandeSuppression *bool
	Limit              int
	Offset             int
}

// ListDossiers lists the dossiers visible to the actor
func (s *DossierService) ListDossiers(ctx context.Context, actor authz.Actor, opts ListDossiersOptions) ([]model.Dossier, int64, error) {
	var dossiers []model.Dossier
	var total int64

	query := s.db.WithContext(ctx).Model(&model.Dossier{}).
		Scopes(authz.ScopeDossiers(actor))

	if opts.Statut != "" {
		query = query.Where("dossiers.statut = ?", opts.Statut)
	}
	if opts.SessionID != 0 {
		query = query.Where("dossiers.session_id = ?", opts.SessionID)
	}
	if opts.DemandeSuppression != nil {
		query = query.Where("dossiers.demande_suppression = ?", *opts.DemandeSuppression)
	}
	if opts.Search != "" {
		like := "%" + strings.ToLower(opts.Search) + "%"
		query = query.Where("LOWER(dossiers.titre_memoire) LIKE ? OR LOWER(dossiers.theme) LIKE ?", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count dossiers: %w", err)
	}

	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}

	err := query.
		Preload("Candidat").
		Preload("Candidat.User").
		Preload("Session").
		Preload("Encadreur").
		Preload("Encadreur.User").
		Order("dossiers.created_at DESC").
		Find(&dossiers).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch dossiers: %w", err)
	}

	return dossiers, total, nil
}

// GetDossier loads a dossier the actor may see. Out-of-scope dossiers are
// reported as not found rather than forbidden.
func (s *DossierService) GetDossier(ctx context.Context, actor authz.Actor, dossierID uint) (*model.Dossier, error) {
	var dossier model.Dossier
	err := s.db.WithContext(ctx).
		Scopes(authz.ScopeDossiers(actor)).
		Preload("Candidat").
		Preload("Candidat.User").
		Preload("Session").
		Preload("Encadreur").
		Preload("Encadreur.User").
		Preload("Documents").
		Preload("Soutenance").
		Where("dossiers.id = ?", dossierID).
		First(&dossier).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch dossier: %w", err)
	}
	return &dossier, nil
}

// UpdateDossierRequest carries the mutable dossier fields
type UpdateDossierRequest struct {
	TitreMemoire *string
	Theme        *string
	EncadreurID  *uint
}

// UpdateDossier updates a dossier's descriptive fields. Candidates may only
// touch their own dossier before it has been validated or rejected; dossiers
// are read-only for supervisors and jury members.
func (s *DossierService) UpdateDossier(ctx context.Context, actor authz.Actor, dossierID uint, req UpdateDossierRequest) (*model.Dossier, error) {
	if actor.IsEnseignant() {
		return nil, fmt.Errorf("%w: dossiers are read-only for enseignants", ErrForbidden)
	}

	dossier, err := s.GetDossier(ctx, actor, dossierID)
	if err != nil {
		return nil, err
	}

	if actor.IsCandidat() && dossier.Statut != model.DossierBrouillon && dossier.Statut != model.DossierDepose {
		return nil, fmt.Errorf("%w: dossier can no longer be modified", ErrInvalidState)
	}

	updates := map[string]interface{}{}
	if req.TitreMemoire != nil {
		updates["titre_memoire"] = *req.TitreMemoire
	}
	if req.Theme != nil {
		updates["theme"] = *req.Theme
	}
	if req.EncadreurID != nil {
		updates["encadreur_id"] = *req.EncadreurID
	}

	if len(updates) == 0 {
		return dossier, nil
	}

	if err := s.db.WithContext(ctx).Model(dossier).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update dossier: %w", err)
	}
	return s.GetDossier(ctx, actor, dossierID)
}

// Valider validates a submitted dossier and notifies the candidate in the
// same transaction.
func (s *DossierService) Valider(ctx context.Context, dossierID uint, commentaires string) (*model.Dossier, error) {
	return s.decide(ctx, dossierID, model.DossierValide, commentaires)
}

// Rejeter rejects a submitted dossier and notifies the candidate in the same
// transaction.
func (s *DossierService) Rejeter(ctx context.Context, dossierID uint, commentaires string) (*model.Dossier, error) {
	return s.decide(ctx, dossierID, model.DossierRejete, commentaires)
}

func (s *DossierService) decide(ctx context.Context, dossierID uint, target model.DossierStatut, commentaires string) (*model.Dossier, error) {
	var dossier model.Dossier
	err := s.db.WithContext(ctx).
		Preload("Candidat").
		First(&dossier, dossierID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch dossier: %w", err)
	}

	if dossier.Statut != model.DossierDepose {
		return nil, fmt.Errorf("%w: only a submitted dossier can be decided", ErrInvalidState)
	}

	now := time.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"statut":             target,
			"commentaires_admin": commentaires,
		}
		if target == model.DossierValide {
			updates["date_validation"] = now
		}
		if err := tx.Model(&dossier).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update dossier: %w", err)
		}

		notifType := model.NotifDossierValide
		titre := "Dossier validé"
		message := fmt.Sprintf("Votre dossier « %s » a été validé.", dossier.TitreMemoire)
		if target == model.DossierRejete {
			notifType = model.NotifDossierRejete
			titre = "Dossier rejeté"
			message = fmt.Sprintf("Votre dossier « %s » a été rejeté.", dossier.TitreMemoire)
			if commentaires != "" {
				message = fmt.Sprintf("%s Motif : %s", message, commentaires)
			}
		}

		_, err := s.notifications.CreateNotificationTx(tx, CreateNotificationRequest{
			UserID:    dossier.Candidat.UserID,
			Type:      notifType,
			Titre:     titre,
			Message:   message,
			DossierID: &dossier.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	dossier.Statut = target
	dossier.CommentairesAdmin = commentaires
	if target == model.DossierValide {
		dossier.DateValidation = &now
	}
	return &dossier, nil
}

// DemanderSuppression flags the candidate's dossier for deletion. Only the
// owning candidate may ask; repeating the request refreshes the comment
// without error.
func (s *DossierService) DemanderSuppression(ctx context.Context, actor authz.Actor, dossierID uint, commentaire string) (*model.Dossier, error) {
	if !actor.IsCandidat() {
		return nil, fmt.Errorf("%w: only the owning candidate can request deletion", ErrForbidden)
	}

	dossier, err := s.GetDossier(ctx, actor, dossierID)
	if err != nil {
		return nil, err
	}

	if dossier.CandidatID != actor.ProfileID {
		return nil, ErrNotFound
	}

	dossier.RequestDeletion(commentaire, time.Now())
	err = s.db.WithContext(ctx).Model(dossier).Updates(map[string]interface{}{
		"demande_suppression":      true,
		"commentaire_suppression":  commentaire,
		"date_demande_suppression": dossier.DateDemandeSuppression,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to record deletion request: %w", err)
	}
	return dossier, nil
}

// AccepterSuppression deletes a dossier whose removal the candidate asked
// for, cascading over documents and their stored files.
func (s *DossierService) AccepterSuppression(ctx context.Context, dossierID uint) error {
	var dossier model.Dossier
	err := s.db.WithContext(ctx).
		Preload("Documents").
		First(&dossier, dossierID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("failed to fetch dossier: %w", err)
	}

	if !dossier.DemandeSuppression {
		return fmt.Errorf("%w: no deletion request pending", ErrInvalidState)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("dossier_id = ?", dossier.ID).Delete(&model.Commentaire{}).Error; err != nil {
			return fmt.Errorf("failed to delete commentaires: %w", err)
		}
		if err := tx.Where("dossier_id = ?", dossier.ID).Delete(&model.Document{}).Error; err != nil {
			return fmt.Errorf("failed to delete documents: %w", err)
		}
		if err := tx.Delete(&dossier).Error; err != nil {
			return fmt.Errorf("failed to delete dossier: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Stored files are removed after the commit; an orphaned object is
	// preferable to a dangling database row.
	if s.storage != nil {
		for _, doc := range dossier.Documents {
			if doc.StorageKey == "" {
				continue
			}
			if err := s.storage.DeleteFile(ctx, doc.StorageKey); err != nil {
				log.Printf("Failed to delete stored file %s: %v", doc.StorageKey, err)
			}
		}
	}

	return nil
}

// RejeterSuppression clears a pending deletion request
func (s *DossierService) RejeterSuppression(ctx context.Context, dossierID uint) (*model.Dossier, error) {
	var dossier model.Dossier
	err := s.db.WithContext(ctx).First(&dossier, dossierID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch dossier: %w", err)
	}

	if !dossier.DemandeSuppression {
		return nil, fmt.Errorf("%w: no deletion request pending", ErrInvalidState)
	}

	dossier.ResetDeletionRequest()
	err = s.db.WithContext(ctx).Model(&dossier).Updates(map[string]interface{}{
		"demande_suppression":      false,
		"commentaire_suppression":  "",
		"date_demande_suppression": nil,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to clear deletion request: %w", err)
	}
	return &dossier, nil
}

// MesDossiers lists the dossiers owned by the candidate
func (s *DossierService) MesDossiers(ctx context.Context, candidatID uint) ([]model.Dossier, error) {
	var dossiers []model.Dossier
	err := s.db.WithContext(ctx).
		Where("candidat_id = ?", candidatID).
		Preload("Session").
		Preload("Documents").
		Preload("Soutenance").
		Order("created_at DESC").
		Find(&dossiers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dossiers: %w", err)
	}
	return dossiers, nil
}
