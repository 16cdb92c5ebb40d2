package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jkemta/soutenance-api/model"
	"gorm.io/gorm"
)

// SalleService manages defense rooms
type SalleService struct {
	db *gorm.DB
}

// NewSalleService creates a new salle service
func NewSalleService(db *gorm.DB) *SalleService {
	return &SalleService{db: db}
}

// CreateSalleRequest carries the fields for a new room
type CreateSalleRequest struct {
	Nom           string
	Batiment      string
	Capacite      int
	EstDisponible *bool
}

// CreateSalle creates a room
func (s *SalleService) CreateSalle(ctx context.Context, req CreateSalleRequest) (*model.Salle, error) {
	salle := &model.Salle{
		Nom:           req.Nom,
		Batiment:      req.Batiment,
		Capacite:      req.Capacite,
		EstDisponible: true,
	}
	if req.EstDisponible != nil {
		salle.EstDisponible = *req.EstDisponible
	}

	if err := s.db.WithContext(ctx).Create(salle).Error; err != nil {
		return nil, fmt.Errorf("failed to create salle: %w", err)
	}
	return salle, nil
}

// GetSalle loads a room
func (s *SalleService) GetSalle(ctx context.Context, salleID uint) (*model.Salle, error) {
	var salle model.Salle
	err := s.db.WithContext(ctx).First(&salle, salleID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch salle: %w", err)
	}
	return &salle, nil
}

// ListSalles lists all rooms
func (s *SalleService) ListSalles(ctx context.Context) ([]model.Salle, error) {
	var salles []model.Salle
	if err := s.db.WithContext(ctx).Order("batiment, nom").Find(&salles).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch salles: %w", err)
	}
	return salles, nil
}

// AvailableSalles lists rooms marked available and, when a slot is given,
// free of any scheduled defense overlapping it.
func (s *SalleService) AvailableSalles(ctx context.Context, at *time.Time, dureeMinutes int) ([]model.Salle, error) {
	query := s.db.WithContext(ctx).Where("est_disponible = ?", true)

	if at != nil {
		if dureeMinutes <= 0 {
			dureeMinutes = 60
		}
		start := *at
		end := start.Add(time.Duration(dureeMinutes) * time.Minute)

		// Rooms taken by a planned or running defense in the requested slot
		busy := s.db.WithContext(ctx).
			Model(&model.Soutenance{}).
			Select("salle_id").
			Where("salle_id IS NOT NULL").
			Where("statut IN ?", []model.SoutenanceStatut{model.SoutenancePlanifiee, model.SoutenanceEnCours}).
			Where("date_heure < ? AND date_heure + (duree_minutes * interval '1 minute') > ?", end, start)

		query = query.Where("id NOT IN (?)", busy)
	}

	var salles []model.Salle
	if err := query.Order("batiment, nom").Find(&salles).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch available salles: %w", err)
	}
	return salles, nil
}

// UpdateSalleRequest carries the mutable room fields
type UpdateSalleRequest struct {
	Nom           *string
	Batiment      *string
	Capacite      *int
	EstDisponible *bool
}

// UpdateSalle updates a room
func (s *SalleService) UpdateSalle(ctx context.Context, salleID uint, req UpdateSalleRequest) (*model.Salle, error) {
	salle, err := s.GetSalle(ctx, salleID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Nom != nil {
		updates["nom"] = *req.Nom
	}
	if req.Batiment != nil {
		updates["batiment"] = *req.Batiment
	}
	if req.Capacite != nil {
		updates["capacite"] = *req.Capacite
	}
	if req.EstDisponible != nil {
		updates["est_disponible"] = *req.EstDisponible
	}

	if len(updates) == 0 {
		return salle, nil
	}

	if err := s.db.WithContext(ctx).Model(salle).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update salle: %w", err)
	}
	return s.GetSalle(ctx, salleID)
}

// DeleteSalle removes a room that has no defenses scheduled in it
func (s *SalleService) DeleteSalle(ctx context.Context, salleID uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Soutenance{}).
		Where("salle_id = ?", salleID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count soutenances: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: salle has soutenances scheduled", ErrConflict)
	}

	result := s.db.WithContext(ctx).Delete(&model.Salle{}, salleID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete salle: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
