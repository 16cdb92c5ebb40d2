package documents

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jkemta/soutenance-api/handlers"
	"github.com/jkemta/soutenance-api/model"
	"github.com/jkemta/soutenance-api/services"
	"github.com/jkemta/soutenance-api/services/storage"
	"github.com/jkemta/soutenance-api/utils/response"
	"gorm.io/gorm"
)

// Handler exposes dossier attachment endpoints
type Handler struct {
	documents *services.DocumentService
	users     *services.UserService
}

// NewHandler creates a new documents handler
func NewHandler(db *gorm.DB, spaces *storage.SpacesClient) *Handler {
	return &Handler{
		documents: services.NewDocumentService(db, spaces),
		users:     services.NewUserService(db),
	}
}

// Upload stores a multipart file on a dossier. The form carries the file
// under "file" plus "type_piece", optional "nom" and "est_obligatoire".
func (h *Handler) Upload(c *fiber.Ctx) error {
	actor, err := handlers.ActorFromCtx(c, h.users)
	if err != nil {
		return response.Unauthorized(c, "Not authenticated")
	}

	dossierID, err := handlers.ParseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	file, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "A file is required")
	}

	typePiece := model.TypePiece(c.FormValue("type_piece"))
	if typePiece == "" {
		return response.BadRequest(c, "type_piece is required")
	}

	document, err := h.documents.UploadDocument(c.Context(), actor, services.UploadDocumentRequest{
		DossierID:      dossierID,
		Nom:            c.FormValue("nom"),
		TypePiece:      typePiece,
		EstObligatoire: c.FormValue("est_obligatoire") == "true",
		File:           file,
	})
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to upload document")
	}
	return response.Created(c, document)
}

// List lists the documents of a dossier visible to the caller
func (h *Handler) List(c *fiber.Ctx) error {
	actor, err := handlers.ActorFromCtx(c, h.users)
	if err != nil {
		return response.Unauthorized(c, "Not authenticated")
	}

	dossierID, err := handlers.ParseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	documents, err := h.documents.ListDocuments(c.Context(), actor, dossierID)
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to list documents")
	}
	return response.Success(c, documents)
}

// Get loads one document visible to the caller
func (h *Handler) Get(c *fiber.Ctx) error {
	actor, err := handlers.ActorFromCtx(c, h.users)
	if err != nil {
		return response.Unauthorized(c, "Not authenticated")
	}

	id, err := handlers.ParseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	document, err := h.documents.GetDocument(c.Context(), actor, id)
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to load document")
	}
	return response.Success(c, document)
}

// Delete removes a document and its stored file
func (h *Handler) Delete(c *fiber.Ctx) error {
	actor, err := handlers.ActorFromCtx(c, h.users)
	if err != nil {
		return response.Unauthorized(c, "Not authenticated")
	}

	id, err := handlers.ParseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	if err := h.documents.DeleteDocument(c.Context(), actor, id); err != nil {
		return handlers.ServiceError(c, err, "Failed to delete document")
	}
	return response.NoContent(c)
}
