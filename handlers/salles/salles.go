package salles

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jkemta/soutenance-api/handlers"
	"github.com/jkemta/soutenance-api/services"
	"github.com/jkemta/soutenance-api/utils/response"
	"gorm.io/gorm"
)

// Handler exposes room endpoints
type Handler struct {
	salles *services.SalleService
}

// NewHandler creates a new salles handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{salles: services.NewSalleService(db)}
}

// CreateSalleRequest is the room creation payload
type CreateSalleRequest struct {
	Nom           string `json:"nom" validate:"required"`
	Batiment      string `json:"batiment,omitempty"`
	Capacite      int    `json:"capacite,omitempty"`
	EstDisponible *bool  `json:"est_disponible,omitempty"`
}

// Create creates a room
func (h *Handler) Create(c *fiber.Ctx) error {
	var req CreateSalleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Nom == "" {
		return response.BadRequest(c, "Nom is required")
	}

	salle, err := h.salles.CreateSalle(c.Context(), services.CreateSalleRequest{
		Nom:           req.Nom,
		Batiment:      req.Batiment,
		Capacite:      req.Capacite,
		EstDisponible: req.EstDisponible,
	})
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to create salle")
	}
	return response.Created(c, salle)
}

// List lists all rooms
func (h *Handler) List(c *fiber.Ctx) error {
	salles, err := h.salles.ListSalles(c.Context())
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to list salles")
	}
	return response.Success(c, salles)
}

// Disponibles lists rooms free at a given time. Without ?date= it lists
// every room currently marked available.
func (h *Handler) Disponibles(c *fiber.Ctx) error {
	var at *time.Time
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return response.BadRequest(c, "Invalid date, expected RFC 3339")
		}
		at = &parsed
	}
	duree := c.QueryInt("duree", 60)

	salles, err := h.salles.AvailableSalles(c.Context(), at, duree)
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to list available salles")
	}
	return response.Success(c, salles)
}

// Get loads one room
func (h *Handler) Get(c *fiber.Ctx) error {
	id, err := handlers.ParseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	salle, err := h.salles.GetSalle(c.Context(), id)
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to load salle")
	}
	return response.Success(c, salle)
}

// UpdateSalleRequest is the room update payload
type UpdateSalleRequest struct {
	Nom           *string `json:"nom,omitempty"`
	Batiment      *string `json:"batiment,omitempty"`
	Capacite      *int    `json:"capacite,omitempty"`
	EstDisponible *bool   `json:"est_disponible,omitempty"`
}

// Update updates a room
func (h *Handler) Update(c *fiber.Ctx) error {
	id, err := handlers.ParseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var req UpdateSalleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	salle, err := h.salles.UpdateSalle(c.Context(), id, services.UpdateSalleRequest{
		Nom:           req.Nom,
		Batiment:      req.Batiment,
		Capacite:      req.Capacite,
		EstDisponible: req.EstDisponible,
	})
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to update salle")
	}
	return response.Success(c, salle)
}

// Delete removes a room with no defenses scheduled in it
func (h *Handler) Delete(c *fiber.Ctx) error {
	id, err := handlers.ParseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	if err := h.salles.DeleteSalle(c.Context(), id); err != nil {
		return handlers.ServiceError(c, err, "Failed to delete salle")
	}
	return response.NoContent(c)
}
