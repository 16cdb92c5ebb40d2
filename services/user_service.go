package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/jkemta/soutenance-api/model"
	"github.com/jkemta/soutenance-api/utils/auth"
	"gorm.io/gorm"
)

// UserService handles account management
type UserService struct {
	db        *gorm.DB
	blacklist *auth.BlacklistService
}

// NewUserService creates a new user service
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{
		db:        db,
		blacklist: auth.NewBlacklistService(db),
	}
}

// CreateUserRequest carries the fields for an admin-created account.
// Profile fields are read according to the role.
type CreateUserRequest struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	Role      model.Role

	// Candidate profile
	Matricule     string
	Cycle         model.Cycle
	DepartementID *uint

	// Teacher profile
	Grade          model.Grade
	Specialite     string
	DepartementIDs []uint
}

// ListUsersOptions filters the user listing
type ListUsersOptions struct {
	Role   model.Role
	Search string
	Active *bool
	Limit  int
	Offset int
}

// CreateUser creates an account together with its role profile in one
// transaction.
func (s *UserService) CreateUser(ctx context.Context, req CreateUserRequest) (*model.User, error) {
	if !req.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidState, req.Role)
	}

	var existing int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).
		Where("email = ?", strings.ToLower(req.Email)).
		Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing > 0 {
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	}

	if req.Role == model.RoleCandidat && req.Matricule != "" {
		var taken int64
		if err := s.db.WithContext(ctx).Model(&model.CandidatProfile{}).
			Where("matricule = ?", req.Matricule).
			Count(&taken).Error; err != nil {
			return nil, fmt.Errorf("failed to check matricule: %w", err)
		}
		if taken > 0 {
			return nil, fmt.Errorf("%w: matricule already registered", ErrConflict)
		}
	}

	passwordHash, salt, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        strings.ToLower(req.Email),
		PasswordHash: passwordHash,
		PasswordSalt: salt,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		Role:         req.Role,
		IsActive:     true,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		switch req.Role {
		case model.RoleCandidat:
			cycle := req.Cycle
			if cycle == "" {
				cycle = model.CycleIngenieur
			}
			if !cycle.Valid() {
				return fmt.Errorf("%w: unknown cycle %q", ErrInvalidState, cycle)
			}
			profile := model.CandidatProfile{
				UserID:        user.ID,
				Matricule:     req.Matricule,
				Cycle:         cycle,
				DepartementID: req.DepartementID,
			}
			if err := tx.Create(&profile).Error; err != nil {
				return fmt.Errorf("failed to create candidat profile: %w", err)
			}
			user.CandidatProfile = &profile

		case model.RoleEnseignant:
			if !req.Grade.Valid() {
				return fmt.Errorf("%w: unknown grade %q", ErrInvalidState, req.Grade)
			}
			profile := model.EnseignantProfile{
				UserID:     user.ID,
				Grade:      req.Grade,
				Specialite: req.Specialite,
			}
			if err := tx.Create(&profile).Error; err != nil {
				return fmt.Errorf("failed to create enseignant profile: %w", err)
			}
			if len(req.DepartementIDs) > 0 {
				var departements []model.Departement
				if err := tx.Find(&departements, req.DepartementIDs).Error; err != nil {
					return fmt.Errorf("failed to load departements: %w", err)
				}
				if err := tx.Model(&profile).Association("Departements").Replace(departements); err != nil {
					return fmt.Errorf("failed to attach departements: %w", err)
				}
			}
			user.EnseignantProfile = &profile
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// GetUser loads a user with its role profile
func (s *UserService) GetUser(ctx context.Context, userID uint) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).
		Preload("CandidatProfile").
		Preload("CandidatProfile.Departement").
		Preload("EnseignantProfile").
		Preload("EnseignantProfile.Departements").
		First(&user, userID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return &user, nil
}

// ListUsers lists accounts with optional role filter, search and pagination
func (s *UserService) ListUsers(ctx context.Context, opts ListUsersOptions) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	query := s.db.WithContext(ctx).Model(&model.User{})

	if opts.Role != "" {
		query = query.Where("role = ?", opts.Role)
	}
	if opts.Active != nil {
		query = query.Where("is_active = ?", *opts.Active)
	}
	if opts.Search != "" {
		like := "%" + strings.ToLower(opts.Search) + "%"
		query = query.Where(
			"LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?",
			like, like, like,
		)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}

	err := query.
		Preload("CandidatProfile").
		Preload("EnseignantProfile").
		Order("created_at DESC").
		Find(&users).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch users: %w", err)
	}

	return users, total, nil
}

// UpdateUserRequest carries the mutable account fields
type UpdateUserRequest struct {
	FirstName *string
	LastName  *string
	Phone     *string
	IsActive  *bool
}

// UpdateUser updates basic account fields
func (s *UserService) UpdateUser(ctx context.Context, userID uint, req UpdateUserRequest) (*model.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	// Deactivation invalidates every outstanding token
	if req.IsActive != nil && !*req.IsActive {
		if err := s.blacklist.RevokeAllUserTokens(ctx, userID); err != nil {
			return nil, fmt.Errorf("failed to revoke tokens: %w", err)
		}
	}

	return user, nil
}

// SetPassword replaces a user's password and invalidates all their tokens
func (s *UserService) SetPassword(ctx context.Context, userID uint, newPassword string) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	passwordHash, salt, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Model(user).Updates(map[string]interface{}{
		"password_hash": passwordHash,
		"password_salt": salt,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return s.blacklist.RevokeAllUserTokens(ctx, userID)
}

// DeleteUser soft-deletes an account
func (s *UserService) DeleteUser(ctx context.Context, userID uint) error {
	result := s.db.WithContext(ctx).Delete(&model.User{}, userID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return s.blacklist.RevokeAllUserTokens(ctx, userID)
}

// CandidatProfileFor returns the candidate profile of a user, or ErrNotFound
func (s *UserService) CandidatProfileFor(ctx context.Context, userID uint) (*model.CandidatProfile, error) {
	var profile model.CandidatProfile
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch candidat profile: %w", err)
	}
	return &profile, nil
}

// SetCandidatPhoto records the stored photo of a candidate profile and
// returns the previous storage key so the caller can clean it up.
func (s *UserService) SetCandidatPhoto(ctx context.Context, profileID uint, key, url string) (string, error) {
	var profile model.CandidatProfile
	err := s.db.WithContext(ctx).First(&profile, profileID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to fetch candidat profile: %w", err)
	}

	previous := profile.PhotoKey
	err = s.db.WithContext(ctx).Model(&profile).Updates(map[string]interface{}{
		"photo_key": key,
		"photo_url": url,
	}).Error
	if err != nil {
		return "", fmt.Errorf("failed to update photo: %w", err)
	}
	return previous, nil
}

// EnseignantProfileFor returns the teacher profile of a user, or ErrNotFound
func (s *UserService) EnseignantProfileFor(ctx context.Context, userID uint) (*model.EnseignantProfile, error) {
	var profile model.EnseignantProfile
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch enseignant profile: %w", err)
	}
	return &profile, nil
}
