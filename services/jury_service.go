package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jkemta/soutenance-api/model"
	"gorm.io/gorm"
)

// JuryService manages juries and their composition
type JuryService struct {
	db            *gorm.DB
	notifications *NotificationService
}

// NewJuryService creates a new jury service
func NewJuryService(db *gorm.DB, notifications *NotificationService) *JuryService {
	return &JuryService{db: db, notifications: notifications}
}

// JuryMemberInput is one (teacher, role) pair of a jury composition
type JuryMemberInput struct {
	EnseignantID uint
	Role         model.RoleJury
}

// CreateJuryRequest carries the fields for a new jury
type CreateJuryRequest struct {
	Nom       string
	SessionID uint
	Membres   []JuryMemberInput
}

// CreateJury creates a jury with its full composition in one transaction.
// A duplicate (teacher, role) pair anywhere in the input aborts the whole
// creation.
func (s *JuryService) CreateJury(ctx context.Context, req CreateJuryRequest) (*model.Jury, error) {
	var session model.SessionSoutenance
	err := s.db.WithContext(ctx).First(&session, req.SessionID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: session", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch session: %w", err)
	}

	if err := validateComposition(req.Membres); err != nil {
		return nil, err
	}

	jury := &model.Jury{
		Nom:       req.Nom,
		SessionID: req.SessionID,
		Statut:    model.JuryPropose,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(jury).Error; err != nil {
			return fmt.Errorf("failed to create jury: %w", err)
		}

		for _, m := range req.Membres {
			membre := model.MembreJury{
				JuryID:       jury.ID,
				EnseignantID: m.EnseignantID,
				Role:         m.Role,
			}
			if err := tx.Create(&membre).Error; err != nil {
				return fmt.Errorf("failed to add jury member: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetJury(ctx, jury.ID)
}

// validateComposition rejects unknown roles and duplicate (teacher, role)
// pairs within the input itself.
func validateComposition(membres []JuryMemberInput) error {
	seen := make(map[string]bool, len(membres))
	for _, m := range membres {
		if !m.Role.Valid() {
			return fmt.Errorf("%w: unknown jury role %q", ErrInvalidState, m.Role)
		}
		key := fmt.Sprintf("%d/%s", m.EnseignantID, m.Role)
		if seen[key] {
			return fmt.Errorf("%w: duplicate jury member role", ErrConflict)
		}
		seen[key] = true
	}
	return nil
}

// GetJury loads a jury with its composition
func (s *JuryService) GetJury(ctx context.Context, juryID uint) (*model.Jury, error) {
	var jury model.Jury
	err := s.db.WithContext(ctx).
		Preload("Session").
		Preload("Composition").
		Preload("Composition.Enseignant").
		Preload("Composition.Enseignant.User").
		First(&jury, juryID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch jury: %w", err)
	}
	return &jury, nil
}

// ListJurysOptions filters the jury listing
type ListJurysOptions struct {
	SessionID    uint
	Statut       model.JuryStatut
	EnseignantID uint // only juries this teacher sits on
	Limit        int
	Offset       int
}

// ListJurys lists juries
func (s *JuryService) ListJurys(ctx context.Context, opts ListJurysOptions) ([]model.Jury, int64, error) {
	var jurys []model.Jury
	var total int64

	query := s.db.WithContext(ctx).Model(&model.Jury{})
	if opts.SessionID != 0 {
		query = query.Where("session_id = ?", opts.SessionID)
	}
	if opts.Statut != "" {
		query = query.Where("statut = ?", opts.Statut)
	}
	if opts.EnseignantID != 0 {
		member := s.db.WithContext(ctx).
			Model(&model.MembreJury{}).
			Select("jury_id").
			Where("enseignant_id = ?", opts.EnseignantID)
		query = query.Where("id IN (?)", member)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count jurys: %w", err)
	}

	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}

	err := query.
		Preload("Session").
		Preload("Composition").
		Preload("Composition.Enseignant").
		Preload("Composition.Enseignant.User").
		Order("created_at DESC").
		Find(&jurys).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch jurys: %w", err)
	}
	return jurys, total, nil
}

// AddMembre adds a (teacher, role) pair to a jury still being composed
func (s *JuryService) AddMembre(ctx context.Context, juryID uint, input JuryMemberInput) (*model.Jury, error) {
	jury, err := s.GetJury(ctx, juryID)
	if err != nil {
		return nil, err
	}

	if jury.Statut == model.JuryActif {
		return nil, fmt.Errorf("%w: active jury composition is frozen", ErrInvalidState)
	}
	if !input.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown jury role %q", ErrInvalidState, input.Role)
	}
	if jury.HasMember(input.EnseignantID, input.Role) {
		return nil, fmt.Errorf("%w: enseignant already holds this role in the jury", ErrConflict)
	}

	membre := model.MembreJury{
		JuryID:       juryID,
		EnseignantID: input.EnseignantID,
		Role:         input.Role,
	}
	if err := s.db.WithContext(ctx).Create(&membre).Error; err != nil {
		return nil, fmt.Errorf("failed to add jury member: %w", err)
	}

	return s.GetJury(ctx, juryID)
}

// RemoveMembre removes a member from a jury still being composed
func (s *JuryService) RemoveMembre(ctx context.Context, juryID, membreID uint) error {
	jury, err := s.GetJury(ctx, juryID)
	if err != nil {
		return err
	}
	if jury.Statut == model.JuryActif {
		return fmt.Errorf("%w: active jury composition is frozen", ErrInvalidState)
	}

	result := s.db.WithContext(ctx).
		Where("id = ? AND jury_id = ?", membreID, juryID).
		Delete(&model.MembreJury{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove jury member: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Valider moves a proposed jury to VALIDE
func (s *JuryService) Valider(ctx context.Context, juryID uint) (*model.Jury, error) {
	jury, err := s.GetJury(ctx, juryID)
	if err != nil {
		return nil, err
	}

	if jury.Statut != model.JuryPropose {
		return nil, fmt.Errorf("%w: only a proposed jury can be validated", ErrInvalidState)
	}

	now := time.Now()
	err = s.db.WithContext(ctx).Model(jury).Updates(map[string]interface{}{
		"statut":          model.JuryValide,
		"date_validation": now,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to validate jury: %w", err)
	}
	jury.Statut = model.JuryValide
	jury.DateValidation = &now
	return jury, nil
}

// Activer moves a validated jury to ACTIF and notifies its members
func (s *JuryService) Activer(ctx context.Context, juryID uint) (*model.Jury, error) {
	jury, err := s.GetJury(ctx, juryID)
	if err != nil {
		return nil, err
	}

	if jury.Statut != model.JuryValide {
		return nil, fmt.Errorf("%w: only a validated jury can be activated", ErrInvalidState)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(jury).Update("statut", model.JuryActif).Error; err != nil {
			return fmt.Errorf("failed to activate jury: %w", err)
		}

		for _, m := range jury.Composition {
			if m.Enseignant.UserID == 0 {
				continue
			}
			_, err := s.notifications.CreateNotificationTx(tx, CreateNotificationRequest{
				UserID:  m.Enseignant.UserID,
				Type:    model.NotifJuryAffectation,
				Titre:   "Affectation à un jury",
				Message: fmt.Sprintf("Vous êtes affecté au jury « %s » en tant que %s.", jury.Nom, m.Role),
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	jury.Statut = model.JuryActif
	return jury, nil
}

// DeleteJury removes a jury that has no defense assigned to it
func (s *JuryService) DeleteJury(ctx context.Context, juryID uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Soutenance{}).
		Where("jury_id = ?", juryID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count soutenances: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: jury has soutenances assigned", ErrConflict)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("jury_id = ?", juryID).Delete(&model.MembreJury{}).Error; err != nil {
			return fmt.Errorf("failed to delete jury members: %w", err)
		}
		result := tx.Delete(&model.Jury{}, juryID)
		if result.Error != nil {
			return fmt.Errorf("failed to delete jury: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
