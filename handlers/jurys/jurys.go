package jurys

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jkemta/soutenance-api/handlers"
	"github.com/jkemta/soutenance-api/model"
	"github.com/jkemta/soutenance-api/services"
	"github.com/jkemta/soutenance-api/utils/response"
	"gorm.io/gorm"
)

// Handler exposes jury endpoints
type Handler struct {
	jurys *services.JuryService
	users *services.UserService
}

// NewHandler creates a new jurys handler
func NewHandler(db *gorm.DB, notifications *services.NotificationService) *Handler {
	return &Handler{
		jurys: services.NewJuryService(db, notifications),
		users: services.NewUserService(db),
	}
}

// MembreInput is one (teacher, role) pair in a composition payload
type MembreInput struct {
	EnseignantID uint   `json:"enseignant_id" validate:"required"`
	Role         string `json:"role" validate:"required"`
}

// CreateJuryRequest is the jury creation payload
type CreateJuryRequest struct {
	Nom       string        `json:"nom" validate:"required"`
	SessionID uint          `json:"session_id" validate:"required"`
	Membres   []MembreInput `json:"membres,omitempty"`
}

// Create creates a jury with its composition atomically
func (h *Handler) Create(c *fiber.Ctx) error {
	var req CreateJuryRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Nom == "" || req.SessionID == 0 {
		return response.BadRequest(c, "nom and session_id are required")
	}

	membres := make([]services.JuryMemberInput, 0, len(req.Membres))
	for _, m := range req.Membres {
		membres = append(membres, services.JuryMemberInput{
			EnseignantID: m.EnseignantID,
			Role:         model.RoleJury(m.Role),
		})
	}

	jury, err := h.jurys.CreateJury(c.Context(), services.CreateJuryRequest{
		Nom:       req.Nom,
		SessionID: req.SessionID,
		Membres:   membres,
	})
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to create jury")
	}
	return response.Created(c, jury)
}

// List lists juries. Teachers only see the juries they sit on.
func (h *Handler) List(c *fiber.Ctx) error {
	actor, err := handlers.ActorFromCtx(c, h.users)
	if err != nil {
		return response.Unauthorized(c, "Not authenticated")
	}

	page, limit, offset := handlers.Pagination(c)

	opts := services.ListJurysOptions{
		SessionID: uint(c.QueryInt("session_id", 0)),
		Statut:    model.JuryStatut(c.Query("statut")),
		Limit:     limit,
		Offset:    offset,
	}
	if actor.IsEnseignant() {
		opts.EnseignantID = actor.ProfileID
	} else if id := c.QueryInt("enseignant_id", 0); id > 0 {
		opts.EnseignantID = uint(id)
	}

	jurys, total, err := h.jurys.ListJurys(c.Context(), opts)
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to list jurys")
	}
	return response.Paginated(c, jurys, response.CalculatePagination(page, limit, total))
}

// Get loads one jury with its composition
func (h *Handler) Get(c *fiber.Ctx) error {
	id, err := handlers.ParseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	jury, err := h.jurys.GetJury(c.Context(), id)
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to load jury")
	}
	return response.Success(c, jury)
}

// AddMembre adds a (teacher, role) pair to a jury
func (h *Handler) AddMembre(c *fiber.Ctx) error {
	id, err := handlers.ParseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var req MembreInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.EnseignantID == 0 || req.Role == "" {
		return response.BadRequest(c, "enseignant_id and role are required")
	}

	jury, err := h.jurys.AddMembre(c.Context(), id, services.JuryMemberInput{
		EnseignantID: req.EnseignantID,
		Role:         model.RoleJury(req.Role),
	})
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to add jury member")
	}
	return response.Success(c, jury)
}

// RemoveMembre removes a member from a jury
func (h *Handler) RemoveMembre(c *fiber.Ctx) error {
	id, err := handlers.ParseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	membreID, err := handlers.ParseIDParam(c, "membreId")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	if err := h.jurys.RemoveMembre(c.Context(), id, membreID); err != nil {
		return handlers.ServiceError(c, err, "Failed to remove jury member")
	}
	return response.NoContent(c)
}

// Valider moves a proposed jury to VALIDE
func (h *Handler) Valider(c *fiber.Ctx) error {
	id, err := handlers.ParseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	jury, err := h.jurys.Valider(c.Context(), id)
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to validate jury")
	}
	return response.Success(c, jury)
}

// Activer moves a validated jury to ACTIF and notifies its members
func (h *Handler) Activer(c *fiber.Ctx) error {
	id, err := handlers.ParseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	jury, err := h.jurys.Activer(c.Context(), id)
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to activate jury")
	}
	return response.Success(c, jury)
}

// Delete removes a jury with no defenses assigned
func (h *Handler) Delete(c *fiber.Ctx) error {
	id, err := handlers.ParseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	if err := h.jurys.DeleteJury(c.Context(), id); err != nil {
		return handlers.ServiceError(c, err, "Failed to delete jury")
	}
	return response.NoContent(c)
}
