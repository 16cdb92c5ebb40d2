package sessions

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jkemta/soutenance-api/handlers"
	"github.com/jkemta/soutenance-api/model"
	"github.com/jkemta/soutenance-api/services"
	"github.com/jkemta/soutenance-api/utils/middleware"
	"github.com/jkemta/soutenance-api/utils/response"
	"gorm.io/gorm"
)

// Handler exposes defense session endpoints
type Handler struct {
	sessions *services.SessionService
}

// NewHandler creates a new sessions handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{sessions: services.NewSessionService(db)}
}

// CreateSessionRequest is the session creation payload
type CreateSessionRequest struct {
	Titre           string    `json:"titre" validate:"required"`
	AnneeAcademique string    `json:"annee_academique" validate:"required"`
	DateOuverture   time.Time `json:"date_ouverture" validate:"required"`
	DateCloture     time.Time `json:"date_cloture" validate:"required"`
	NiveauConcerne  string    `json:"niveau_concerne,omitempty"`
	Description     string    `json:"description,omitempty"`
}

// Create opens a new defense session
func (h *Handler) Create(c *fiber.Ctx) error {
	var req CreateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Titre == "" || req.AnneeAcademique == "" {
		return response.BadRequest(c, "Titre and annee_academique are required")
	}
	if req.DateOuverture.IsZero() || req.DateCloture.IsZero() {
		return response.BadRequest(c, "Opening and closing dates are required")
	}

	userID, _ := middleware.GetUserID(c)

	session, err := h.sessions.CreateSession(c.Context(), services.CreateSessionRequest{
		Titre:           req.Titre,
		AnneeAcademique: req.AnneeAcademique,
		DateOuverture:   req.DateOuverture,
		DateCloture:     req.DateCloture,
		NiveauConcerne:  req.NiveauConcerne,
		Description:     req.Description,
		CreatedByID:     userID,
	})
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to create session")
	}
	return response.Created(c, session)
}

// List lists sessions
func (h *Handler) List(c *fiber.Ctx) error {
	page, limit, offset := handlers.Pagination(c)

	sessions, total, err := h.sessions.ListSessions(c.Context(), services.ListSessionsOptions{
		Statut:          model.SessionStatut(c.Query("statut")),
		AnneeAcademique: c.Query("annee_academique"),
		Limit:           limit,
		Offset:          offset,
	})
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to list sessions")
	}
	return response.Paginated(c, sessions, response.CalculatePagination(page, limit, total))
}

// Active returns the currently running or open session
func (h *Handler) Active(c *fiber.Ctx) error {
	session, err := h.sessions.ActiveSession(c.Context())
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to load active session")
	}
	return response.Success(c, session)
}

// Get loads one session
func (h *Handler) Get(c *fiber.Ctx) error {
	id, err := handlers.ParseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	session, err := h.sessions.GetSession(c.Context(), id)
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to load session")
	}
	return response.Success(c, session)
}

// UpdateSessionRequest is the session update payload
type UpdateSessionRequest struct {
	Titre          *string    `json:"titre,omitempty"`
	DateOuverture  *time.Time `json:"date_ouverture,omitempty"`
	DateCloture    *time.Time `json:"date_cloture,omitempty"`
	NiveauConcerne *string    `json:"niveau_concerne,omitempty"`
	Description    *string    `json:"description,omitempty"`
}

// Update updates a session's window and descriptive fields
func (h *Handler) Update(c *fiber.Ctx) error {
	id, err := handlers.ParseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var req UpdateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	session, err := h.sessions.UpdateSession(c.Context(), id, services.UpdateSessionRequest{
		Titre:          req.Titre,
		DateOuverture:  req.DateOuverture,
		DateCloture:    req.DateCloture,
		NiveauConcerne: req.NiveauConcerne,
		Description:    req.Description,
	})
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to update session")
	}
	return response.Success(c, session)
}

// Close closes a session to new submissions
func (h *Handler) Close(c *fiber.Ctx) error {
	id, err := handlers.ParseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	session, err := h.sessions.CloseSession(c.Context(), id)
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to close session")
	}
	return response.Success(c, session)
}

// Delete removes a session with no dossiers attached
func (h *Handler) Delete(c *fiber.Ctx) error {
	id, err := handlers.ParseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	if err := h.sessions.DeleteSession(c.Context(), id); err != nil {
		return handlers.ServiceError(c, err, "Failed to delete session")
	}
	return response.NoContent(c)
}
