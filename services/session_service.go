package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jkemta/soutenance-api/model"
	"gorm.io/gorm"
)

// SessionService manages defense sessions
type SessionService struct {
	db *gorm.DB
}

// NewSessionService creates a new session service
func NewSessionService(db *gorm.DB) *SessionService {
	return &SessionService{db: db}
}

// CreateSessionRequest carries the fields for a new session
type CreateSessionRequest struct {
	Titre           string
	AnneeAcademique string
	DateOuverture   time.Time
	DateCloture     time.Time
	NiveauConcerne  string
	Description     string
	CreatedByID     uint
}

// CreateSession creates a defense session
func (s *SessionService) CreateSession(ctx context.Context, req CreateSessionRequest) (*model.SessionSoutenance, error) {
	if !req.DateCloture.After(req.DateOuverture) {
		return nil, fmt.Errorf("%w: closing date must be after opening date", ErrInvalidState)
	}

	createdBy := req.CreatedByID
	session := &model.SessionSoutenance{
		Titre:           req.Titre,
		AnneeAcademique: req.AnneeAcademique,
		DateOuverture:   req.DateOuverture,
		DateCloture:     req.DateCloture,
		NiveauConcerne:  req.NiveauConcerne,
		Statut:          model.SessionOuvert,
		Description:     req.Description,
		CreatedByID:     &createdBy,
	}

	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.refreshStatut(ctx, session)
	return session, nil
}

// GetSession loads a session and refreshes its derived status
func (s *SessionService) GetSession(ctx context.Context, sessionID uint) (*model.SessionSoutenance, error) {
	var session model.SessionSoutenance
	err := s.db.WithContext(ctx).First(&session, sessionID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch session: %w", err)
	}

	s.refreshStatut(ctx, &session)
	return &session, nil
}

// ListSessionsOptions filters the session listing
type ListSessionsOptions struct {
	Statut          model.SessionStatut
	AnneeAcademique string
	Limit           int
	Offset          int
}

// ListSessions lists sessions, refreshing derived statuses along the way
func (s *SessionService) ListSessions(ctx context.Context, opts ListSessionsOptions) ([]model.SessionSoutenance, int64, error) {
	var sessions []model.SessionSoutenance
	var total int64

	query := s.db.WithContext(ctx).Model(&model.SessionSoutenance{})
	if opts.Statut != "" {
		query = query.Where("statut = ?", opts.Statut)
	}
	if opts.AnneeAcademique != "" {
		query = query.Where("annee_academique = ?", opts.AnneeAcademique)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count sessions: %w", err)
	}

	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}

	if err := query.Order("date_ouverture DESC").Find(&sessions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch sessions: %w", err)
	}

	for i := range sessions {
		s.refreshStatut(ctx, &sessions[i])
	}

	return sessions, total, nil
}

// ActiveSession returns the currently running session, preferring EN_COURS
// over OUVERT when both exist.
func (s *SessionService) ActiveSession(ctx context.Context) (*model.SessionSoutenance, error) {
	var sessions []model.SessionSoutenance
	err := s.db.WithContext(ctx).
		Where("statut IN ?", []model.SessionStatut{model.SessionOuvert, model.SessionEnCours}).
		Order("date_ouverture DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sessions: %w", err)
	}

	var fallback *model.SessionSoutenance
	for i := range sessions {
		s.refreshStatut(ctx, &sessions[i])
		switch sessions[i].Statut {
		case model.SessionEnCours:
			return &sessions[i], nil
		case model.SessionOuvert:
			if fallback == nil {
				fallback = &sessions[i]
			}
		}
	}

	if fallback == nil {
		return nil, ErrNotFound
	}
	return fallback, nil
}

// UpdateSessionRequest carries the mutable session fields
type UpdateSessionRequest struct {
	Titre          *string
	DateOuverture  *time.Time
	DateCloture    *time.Time
	NiveauConcerne *string
	Description    *string
}

// UpdateSession updates a session's descriptive fields and window
func (s *SessionService) UpdateSession(ctx context.Context, sessionID uint, req UpdateSessionRequest) (*model.SessionSoutenance, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Titre != nil {
		updates["titre"] = *req.Titre
	}
	if req.DateOuverture != nil {
		updates["date_ouverture"] = *req.DateOuverture
	}
	if req.DateCloture != nil {
		updates["date_cloture"] = *req.DateCloture
	}
	if req.NiveauConcerne != nil {
		updates["niveau_concerne"] = *req.NiveauConcerne
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}

	if len(updates) == 0 {
		return session, nil
	}

	if err := s.db.WithContext(ctx).Model(session).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	return s.GetSession(ctx, sessionID)
}

// CloseSession manually closes a session. A session whose window already ran
// out is marked TERMINE instead.
func (s *SessionService) CloseSession(ctx context.Context, sessionID uint) (*model.SessionSoutenance, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.Statut == model.SessionTermine {
		return nil, fmt.Errorf("%w: session already finished", ErrInvalidState)
	}

	target := model.SessionFerme
	if time.Now().After(session.DateCloture) {
		target = model.SessionTermine
	}

	if err := s.db.WithContext(ctx).Model(session).Update("statut", target).Error; err != nil {
		return nil, fmt.Errorf("failed to close session: %w", err)
	}
	session.Statut = target
	return session, nil
}

// DeleteSession removes a session that has no dossiers attached
func (s *SessionService) DeleteSession(ctx context.Context, sessionID uint) error {
	var dossierCount int64
	if err := s.db.WithContext(ctx).Model(&model.Dossier{}).
		Where("session_id = ?", sessionID).
		Count(&dossierCount).Error; err != nil {
		return fmt.Errorf("failed to count dossiers: %w", err)
	}
	if dossierCount > 0 {
		return fmt.Errorf("%w: session has dossiers attached", ErrConflict)
	}

	result := s.db.WithContext(ctx).Delete(&model.SessionSoutenance{}, sessionID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete session: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// refreshStatut applies the date-window derivation and persists a change.
// Persistence failures are swallowed: the caller still gets the derived
// status and the cron sweep will retry.
func (s *SessionService) refreshStatut(ctx context.Context, session *model.SessionSoutenance) {
	derived := session.DeriveStatut(time.Now())
	if derived == session.Statut {
		return
	}

	_ = s.db.WithContext(ctx).Model(session).Update("statut", derived).Error
	session.Statut = derived
}
