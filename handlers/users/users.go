package users

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jkemta/soutenance-api/handlers"
	"github.com/jkemta/soutenance-api/model"
	"github.com/jkemta/soutenance-api/services"
	authutil "github.com/jkemta/soutenance-api/utils/auth"
	"github.com/jkemta/soutenance-api/utils/response"
	"gorm.io/gorm"
)

// Handler exposes account administration endpoints
type Handler struct {
	users *services.UserService
}

// NewHandler creates a new users handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{users: services.NewUserService(db)}
}

// CreateUserRequest is the admin account-creation payload
type CreateUserRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Phone     string `json:"phone,omitempty"`
	Role      string `json:"role" validate:"required"`

	// Candidate profile
	Matricule     string `json:"matricule,omitempty"`
	Cycle         string `json:"cycle,omitempty"`
	DepartementID *uint  `json:"departement_id,omitempty"`

	// Teacher profile
	Grade          string `json:"grade,omitempty"`
	Specialite     string `json:"specialite,omitempty"`
	DepartementIDs []uint `json:"departement_ids,omitempty"`
}

// Create creates an account of any role together with its profile
func (h *Handler) Create(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	role := model.Role(req.Role)
	if !role.Valid() {
		return response.BadRequest(c, "Invalid role")
	}
	if !authutil.IsPasswordValid(req.Password) {
		return response.BadRequest(c, "Password must be at least 8 characters long")
	}

	user, err := h.users.CreateUser(c.Context(), services.CreateUserRequest{
		Email:          req.Email,
		Password:       req.Password,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Phone:          req.Phone,
		Role:           role,
		Matricule:      req.Matricule,
		Cycle:          model.Cycle(req.Cycle),
		DepartementID:  req.DepartementID,
		Grade:          model.Grade(req.Grade),
		Specialite:     req.Specialite,
		DepartementIDs: req.DepartementIDs,
	})
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to create user")
	}

	return response.Created(c, user)
}

// List lists accounts with optional filters
func (h *Handler) List(c *fiber.Ctx) error {
	page, limit, offset := handlers.Pagination(c)

	opts := services.ListUsersOptions{
		Role:   model.Role(c.Query("role")),
		Search: c.Query("search"),
		Limit:  limit,
		Offset: offset,
	}
	if c.Query("active") != "" {
		active := c.QueryBool("active")
		opts.Active = &active
	}

	users, total, err := h.users.ListUsers(c.Context(), opts)
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to list users")
	}

	return response.Paginated(c, users, response.CalculatePagination(page, limit, total))
}

// Get loads one account with its role profile
func (h *Handler) Get(c *fiber.Ctx) error {
	id, err := handlers.ParseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	user, err := h.users.GetUser(c.Context(), id)
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to load user")
	}
	return response.Success(c, user)
}

// UpdateUserRequest is the admin account-update payload
type UpdateUserRequest struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	IsActive  *bool   `json:"is_active,omitempty"`
}

// Update updates basic account fields. Deactivating an account invalidates
// all of its tokens.
func (h *Handler) Update(c *fiber.Ctx) error {
	id, err := handlers.ParseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.users.UpdateUser(c.Context(), id, services.UpdateUserRequest{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		IsActive:  req.IsActive,
	})
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to update user")
	}
	return response.Success(c, user)
}

// SetPasswordRequest is the admin password-reset payload
type SetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=8"`
}

// SetPassword replaces a user's password and invalidates their tokens
func (h *Handler) SetPassword(c *fiber.Ctx) error {
	id, err := handlers.ParseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var req SetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if !authutil.IsPasswordValid(req.Password) {
		return response.BadRequest(c, "Password must be at least 8 characters long")
	}

	if err := h.users.SetPassword(c.Context(), id, req.Password); err != nil {
		return handlers.ServiceError(c, err, "Failed to set password")
	}
	return response.Success(c, fiber.Map{"message": "Password updated"})
}

// Delete soft-deletes an account
func (h *Handler) Delete(c *fiber.Ctx) error {
	id, err := handlers.ParseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	if err := h.users.DeleteUser(c.Context(), id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to delete user")
	}
	return response.NoContent(c)
}
