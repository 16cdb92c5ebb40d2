package departements

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jkemta/soutenance-api/handlers"
	"github.com/jkemta/soutenance-api/services"
	"github.com/jkemta/soutenance-api/utils/response"
	"gorm.io/gorm"
)

// Handler exposes department endpoints
type Handler struct {
	departements *services.DepartementService
}

// NewHandler creates a new departements handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{departements: services.NewDepartementService(db)}
}

// DepartementRequest is the create/update payload
type DepartementRequest struct {
	Code string `json:"code" validate:"required"`
	Nom  string `json:"nom" validate:"required"`
}

// Create creates a department
func (h *Handler) Create(c *fiber.Ctx) error {
	var req DepartementRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Code == "" || req.Nom == "" {
		return response.BadRequest(c, "Code and nom are required")
	}

	departement, err := h.departements.CreateDepartement(c.Context(), req.Code, req.Nom)
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to create departement")
	}
	return response.Created(c, departement)
}

// List lists all departments
func (h *Handler) List(c *fiber.Ctx) error {
	departements, err := h.departements.ListDepartements(c.Context())
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to list departements")
	}
	return response.Success(c, departements)
}

// Get loads one department
func (h *Handler) Get(c *fiber.Ctx) error {
	id, err := handlers.ParseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	departement, err := h.departements.GetDepartement(c.Context(), id)
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to load departement")
	}
	return response.Success(c, departement)
}

// Update updates a department
func (h *Handler) Update(c *fiber.Ctx) error {
	id, err := handlers.ParseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var req DepartementRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	departement, err := h.departements.UpdateDepartement(c.Context(), id, req.Code, req.Nom)
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to update departement")
	}
	return response.Success(c, departement)
}

// Delete removes a department with no candidates attached
func (h *Handler) Delete(c *fiber.Ctx) error {
	id, err := handlers.ParseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	if err := h.departements.DeleteDepartement(c.Context(), id); err != nil {
		return handlers.ServiceError(c, err, "Failed to delete departement")
	}
	return response.NoContent(c)
}
