package services

import (
	"context"
	"fmt"

	"github.com/jkemta/soutenance-api/model"
	"gorm.io/gorm"
)

// DepartementService manages academic departments
type DepartementService struct {
	db *gorm.DB
}

// NewDepartementService creates a new departement service
func NewDepartementService(db *gorm.DB) *DepartementService {
	return &DepartementService{db: db}
}

// CreateDepartement creates a department with a unique code
func (s *DepartementService) CreateDepartement(ctx context.Context, code, nom string) (*model.Departement, error) {
	var existing int64
	if err := s.db.WithContext(ctx).Model(&model.Departement{}).
		Where("code = ?", code).
		Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to check departement code: %w", err)
	}
	if existing > 0 {
		return nil, fmt.Errorf("%w: departement code already exists", ErrConflict)
	}

	departement := &model.Departement{Code: code, Nom: nom}
	if err := s.db.WithContext(ctx).Create(departement).Error; err != nil {
		return nil, fmt.Errorf("failed to create departement: %w", err)
	}
	return departement, nil
}

// GetDepartement loads a department
func (s *DepartementService) GetDepartement(ctx context.Context, departementID uint) (*model.Departement, error) {
	var departement model.Departement
	err := s.db.WithContext(ctx).First(&departement, departementID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch departement: %w", err)
	}
	return &departement, nil
}

// ListDepartements lists all departments
func (s *DepartementService) ListDepartements(ctx context.Context) ([]model.Departement, error) {
	var departements []model.Departement
	if err := s.db.WithContext(ctx).Order("code").Find(&departements).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch departements: %w", err)
	}
	return departements, nil
}

// UpdateDepartement updates a department's code and name
func (s *DepartementService) UpdateDepartement(ctx context.Context, departementID uint, code, nom string) (*model.Departement, error) {
	departement, err := s.GetDepartement(ctx, departementID)
	if err != nil {
		return nil, err
	}

	if code != "" && code != departement.Code {
		var existing int64
		if err := s.db.WithContext(ctx).Model(&model.Departement{}).
			Where("code = ? AND id <> ?", code, departementID).
			Count(&existing).Error; err != nil {
			return nil, fmt.Errorf("failed to check departement code: %w", err)
		}
		if existing > 0 {
			return nil, fmt.Errorf("%w: departement code already exists", ErrConflict)
		}
		departement.Code = code
	}
	if nom != "" {
		departement.Nom = nom
	}

	if err := s.db.WithContext(ctx).Save(departement).Error; err != nil {
		return nil, fmt.Errorf("failed to update departement: %w", err)
	}
	return departement, nil
}

// DeleteDepartement removes a department not referenced by any profile
func (s *DepartementService) DeleteDepartement(ctx context.Context, departementID uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.CandidatProfile{}).
		Where("departement_id = ?", departementID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count candidats: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: departement has candidats attached", ErrConflict)
	}

	result := s.db.WithContext(ctx).Delete(&model.Departement{}, departementID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete departement: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
