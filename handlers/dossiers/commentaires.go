package dossiers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jkemta/soutenance-api/handlers"
	"github.com/jkemta/soutenance-api/services"
	"github.com/jkemta/soutenance-api/utils/response"
)

// CreateCommentaireRequest is the remark payload. est_interne is ignored for
// candidates.
type CreateCommentaireRequest struct {
	Contenu    string `json:"contenu" validate:"required"`
	EstInterne bool   `json:"est_interne,omitempty"`
}

// CreateCommentaire adds a remark on a dossier
func (h *Handler) CreateCommentaire(c *fiber.Ctx) error {
	actor, err := handlers.ActorFromCtx(c, h.users)
	if err != nil {
		return response.Unauthorized(c, "Not authenticated")
	}

	dossierID, err := handlers.ParseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var req CreateCommentaireRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Contenu == "" {
		return response.BadRequest(c, "Contenu is required")
	}

	comment, err := h.comments.CreateComment(c.Context(), actor, services.CreateCommentRequest{
		DossierID:  dossierID,
		AuteurID:   actor.UserID,
		Contenu:    req.Contenu,
		EstInterne: req.EstInterne,
	})
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to create commentaire")
	}
	return response.Created(c, comment)
}

// ListCommentaires lists a dossier's remarks visible to the caller
func (h *Handler) ListCommentaires(c *fiber.Ctx) error {
	actor, err := handlers.ActorFromCtx(c, h.users)
	if err != nil {
		return response.Unauthorized(c, "Not authenticated")
	}

	dossierID, err := handlers.ParseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	comments, err := h.comments.ListComments(c.Context(), actor, dossierID)
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to list commentaires")
	}
	return response.Success(c, comments)
}

// DeleteCommentaire removes a remark. Authors may delete their own; admins
// any.
func (h *Handler) DeleteCommentaire(c *fiber.Ctx) error {
	actor, err := handlers.ActorFromCtx(c, h.users)
	if err != nil {
		return response.Unauthorized(c, "Not authenticated")
	}

	commentID, err := handlers.ParseIDParam(c, "commentId")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	if err := h.comments.DeleteComment(c.Context(), actor, commentID); err != nil {
		return handlers.ServiceError(c, err, "Failed to delete commentaire")
	}
	return response.NoContent(c)
}
