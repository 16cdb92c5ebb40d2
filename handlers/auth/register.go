package auth

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jkemta/soutenance-api/model"
	"github.com/jkemta/soutenance-api/services"
	"github.com/jkemta/soutenance-api/services/storage"
	authutil "github.com/jkemta/soutenance-api/utils/auth"
	"github.com/jkemta/soutenance-api/utils/middleware"
	"github.com/jkemta/soutenance-api/utils/response"
	"github.com/jkemta/soutenance-api/utils/validation"
	"gorm.io/gorm"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	db                   *gorm.DB
	users                *services.UserService
	jwtManager           *authutil.JWTManager
	blacklistService     *authutil.BlacklistService
	bruteForceProtection *middleware.BruteForceProtection
	storage              *storage.SpacesClient
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(db *gorm.DB, jwtManager *authutil.JWTManager, bruteForceProtection *middleware.BruteForceProtection, spaces *storage.SpacesClient) *AuthHandler {
	return &AuthHandler{
		db:                   db,
		users:                services.NewUserService(db),
		jwtManager:           jwtManager,
		blacklistService:     authutil.NewBlacklistService(db),
		bruteForceProtection: bruteForceProtection,
		storage:              spaces,
	}
}

// RegisterRequest represents a candidate self-registration request.
// Teacher and admin accounts are created by an administrator.
type RegisterRequest struct {
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=8"`
	FirstName     string `json:"first_name" validate:"required,min=2"`
	LastName      string `json:"last_name" validate:"required,min=2"`
	Phone         string `json:"phone,omitempty"`
	Matricule     string `json:"matricule" validate:"required"`
	Cycle         string `json:"cycle,omitempty"`
	DepartementID *uint  `json:"departement_id,omitempty"`
}

// RegisterResponse represents a successful registration response
type RegisterResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"` // in seconds
}

// UserResponse represents user data in responses
type UserResponse struct {
	ID        uint       `json:"id"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Phone     string     `json:"phone,omitempty"`
	Role      model.Role `json:"role"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func toUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Phone:     user.Phone,
		Role:      user.Role,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// Register handles candidate self-registration
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Email == "" || req.Password == "" || req.FirstName == "" || req.LastName == "" {
		return response.BadRequest(c, "Email, password, first name and last name are required")
	}

	if !authutil.IsPasswordValid(req.Password) {
		return response.BadRequest(c, "Password must be at least 8 characters long")
	}

	if ok, msg := validation.ValidateMatricule(req.Matricule); !ok {
		return response.BadRequest(c, msg)
	}

	cycle := model.Cycle(req.Cycle)
	if req.Cycle != "" && !cycle.Valid() {
		return response.BadRequest(c, "Invalid cycle")
	}

	user, err := h.users.CreateUser(c.Context(), services.CreateUserRequest{
		Email:         req.Email,
		Password:      req.Password,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Phone:         req.Phone,
		Role:          model.RoleCandidat,
		Matricule:     req.Matricule,
		Cycle:         cycle,
		DepartementID: req.DepartementID,
	})
	if err != nil {
		if errors.Is(err, services.ErrConflict) {
			return response.Conflict(c, "User with this email already exists")
		}
		if errors.Is(err, services.ErrInvalidState) {
			return response.BadRequest(c, "Invalid registration data")
		}
		return response.InternalServerError(c, "Failed to create user")
	}

	accessToken, _, err := h.jwtManager.GenerateAccessToken(user.ID, user.Email, user.Role, user.TokenVersion)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate access token")
	}

	refreshToken, _, err := h.jwtManager.GenerateRefreshToken(user.ID, user.Email, user.Role, user.TokenVersion)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate refresh token")
	}

	res := RegisterResponse{
		User:         toUserResponse(user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    24 * 60 * 60, // 24 hours in seconds
	}

	return response.Created(c, res)
}
