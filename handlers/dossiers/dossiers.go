package dossiers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jkemta/soutenance-api/handlers"
	"github.com/jkemta/soutenance-api/model"
	"github.com/jkemta/soutenance-api/services"
	"github.com/jkemta/soutenance-api/services/storage"
	"github.com/jkemta/soutenance-api/utils/response"
	"gorm.io/gorm"
)

// Handler exposes dossier endpoints, including the validation and
// deletion-request workflows.
type Handler struct {
	dossiers *services.DossierService
	comments *services.CommentService
	users    *services.UserService
}

// NewHandler creates a new dossiers handler
func NewHandler(db *gorm.DB, notifications *services.NotificationService, spaces *storage.SpacesClient) *Handler {
	return &Handler{
		dossiers: services.NewDossierService(db, notifications, spaces),
		comments: services.NewCommentService(db),
		users:    services.NewUserService(db),
	}
}

// CreateDossierRequest is the dossier creation payload. Candidates always
// submit for themselves; admins may submit on behalf of a candidate by
// setting candidat_id.
type CreateDossierRequest struct {
	CandidatID   uint   `json:"candidat_id,omitempty"`
	SessionID    uint   `json:"session_id" validate:"required"`
	TitreMemoire string `json:"titre_memoire" validate:"required"`
	Theme        string `json:"theme,omitempty"`
	EncadreurID  *uint  `json:"encadreur_id,omitempty"`
}

// Create submits a dossier in an open session
func (h *Handler) Create(c *fiber.Ctx) error {
	actor, err := handlers.ActorFromCtx(c, h.users)
	if err != nil {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req CreateDossierRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.SessionID == 0 || req.TitreMemoire == "" {
		return response.BadRequest(c, "session_id and titre_memoire are required")
	}

	candidatID := req.CandidatID
	if actor.IsCandidat() {
		candidatID = actor.ProfileID
	}
	if candidatID == 0 {
		return response.BadRequest(c, "candidat_id is required")
	}

	dossier, err := h.dossiers.CreateDossier(c.Context(), services.CreateDossierRequest{
		CandidatID:   candidatID,
		SessionID:    req.SessionID,
		TitreMemoire: req.TitreMemoire,
		Theme:        req.Theme,
		EncadreurID:  req.EncadreurID,
	})
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to create dossier")
	}
	return response.Created(c, dossier)
}

// List lists the dossiers visible to the caller
func (h *Handler) List(c *fiber.Ctx) error {
	actor, err := handlers.ActorFromCtx(c, h.users)
	if err != nil {
		return response.Unauthorized(c, "Not authenticated")
	}

	page, limit, offset := handlers.Pagination(c)

	opts := services.ListDossiersOptions{
		Statut:    model.DossierStatut(c.Query("statut")),
		SessionID: uint(c.QueryInt("session_id", 0)),
		Search:    c.Query("search"),
		Limit:     limit,
		Offset:    offset,
	}
	if c.Query("demande_suppression") != "" {
		pending := c.QueryBool("demande_suppression")
		opts.DemandeSuppression = &pending
	}

	dossiers, total, err := h.dossiers.ListDossiers(c.Context(), actor, opts)
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to list dossiers")
	}
	return response.Paginated(c, dossiers, response.CalculatePagination(page, limit, total))
}

// MesDossiers lists the caller's own dossiers
func (h *Handler) MesDossiers(c *fiber.Ctx) error {
	actor, err := handlers.ActorFromCtx(c, h.users)
	if err != nil {
		return response.Unauthorized(c, "Not authenticated")
	}
	if !actor.IsCandidat() {
		return response.Forbidden(c, "Only candidates have their own dossiers")
	}

	dossiers, err := h.dossiers.MesDossiers(c.Context(), actor.ProfileID)
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to list dossiers")
	}
	return response.Success(c, dossiers)
}

// Get loads one dossier visible to the caller
func (h *Handler) Get(c *fiber.Ctx) error {
	actor, err := handlers.ActorFromCtx(c, h.users)
	if err != nil {
		return response.Unauthorized(c, "Not authenticated")
	}

	id, err := handlers.ParseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	dossier, err := h.dossiers.GetDossier(c.Context(), actor, id)
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to load dossier")
	}
	return response.Success(c, dossier)
}

// UpdateDossierRequest is the dossier update payload
type UpdateDossierRequest struct {
	TitreMemoire *string `json:"titre_memoire,omitempty"`
	Theme        *string `json:"theme,omitempty"`
	EncadreurID  *uint   `json:"encadreur_id,omitempty"`
}

// Update updates a dossier's descriptive fields
func (h *Handler) Update(c *fiber.Ctx) error {
	actor, err := handlers.ActorFromCtx(c, h.users)
	if err != nil {
		return response.Unauthorized(c, "Not authenticated")
	}

	id, err := handlers.ParseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var req UpdateDossierRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	dossier, err := h.dossiers.UpdateDossier(c.Context(), actor, id, services.UpdateDossierRequest{
		TitreMemoire: req.TitreMemoire,
		Theme:        req.Theme,
		EncadreurID:  req.EncadreurID,
	})
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to update dossier")
	}
	return response.Success(c, dossier)
}

// DecisionRequest carries the admin's optional remarks on a decision
type DecisionRequest struct {
	Commentaires string `json:"commentaires,omitempty"`
}

// Valider validates a submitted dossier
func (h *Handler) Valider(c *fiber.Ctx) error {
	id, err := handlers.ParseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var req DecisionRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return response.BadRequest(c, "Invalid request body")
	}

	dossier, err := h.dossiers.Valider(c.Context(), id, req.Commentaires)
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to validate dossier")
	}
	return response.Success(c, dossier)
}

// Rejeter rejects a submitted dossier
func (h *Handler) Rejeter(c *fiber.Ctx) error {
	id, err := handlers.ParseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var req DecisionRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return response.BadRequest(c, "Invalid request body")
	}

	dossier, err := h.dossiers.Rejeter(c.Context(), id, req.Commentaires)
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to reject dossier")
	}
	return response.Success(c, dossier)
}

// SuppressionRequest carries the candidate's reason for a deletion request
type SuppressionRequest struct {
	Commentaire string `json:"commentaire,omitempty"`
}

// DemanderSuppression flags the caller's dossier for deletion
func (h *Handler) DemanderSuppression(c *fiber.Ctx) error {
	actor, err := handlers.ActorFromCtx(c, h.users)
	if err != nil {
		return response.Unauthorized(c, "Not authenticated")
	}

	id, err := handlers.ParseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var req SuppressionRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return response.BadRequest(c, "Invalid request body")
	}

	dossier, err := h.dossiers.DemanderSuppression(c.Context(), actor, id, req.Commentaire)
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to record deletion request")
	}
	return response.Success(c, dossier)
}

// AccepterSuppression deletes a dossier whose removal was requested
func (h *Handler) AccepterSuppression(c *fiber.Ctx) error {
	id, err := handlers.ParseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	if err := h.dossiers.AccepterSuppression(c.Context(), id); err != nil {
		return handlers.ServiceError(c, err, "Failed to delete dossier")
	}
	return response.NoContent(c)
}

// RejeterSuppression clears a pending deletion request
func (h *Handler) RejeterSuppression(c *fiber.Ctx) error {
	id, err := handlers.ParseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	dossier, err := h.dossiers.RejeterSuppression(c.Context(), id)
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to clear deletion request")
	}
	return response.Success(c, dossier)
}
