package soutenances

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jkemta/soutenance-api/handlers"
	"github.com/jkemta/soutenance-api/model"
	"github.com/jkemta/soutenance-api/services"
	"github.com/jkemta/soutenance-api/utils/response"
	"gorm.io/gorm"
)

// Handler exposes defense scheduling, evaluation and PV endpoints
type Handler struct {
	soutenances *services.SoutenanceService
	users       *services.UserService
}

// NewHandler creates a new soutenances handler
func NewHandler(db *gorm.DB, notifications *services.NotificationService) *Handler {
	return &Handler{
		soutenances: services.NewSoutenanceService(db, notifications),
		users:       services.NewUserService(db),
	}
}

// PlanifierRequest is the scheduling payload
type PlanifierRequest struct {
	DossierID    uint      `json:"dossier_id" validate:"required"`
	JuryID       uint      `json:"jury_id" validate:"required"`
	SalleID      uint      `json:"salle_id" validate:"required"`
	DateHeure    time.Time `json:"date_heure" validate:"required"`
	DureeMinutes int       `json:"duree_minutes,omitempty"`
	OrdrePassage int       `json:"ordre_passage,omitempty"`
}

// Planifier schedules the defense of a validated dossier
func (h *Handler) Planifier(c *fiber.Ctx) error {
	var req PlanifierRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.DossierID == 0 || req.JuryID == 0 || req.SalleID == 0 || req.DateHeure.IsZero() {
		return response.BadRequest(c, "dossier_id, jury_id, salle_id and date_heure are required")
	}

	soutenance, err := h.soutenances.Planifier(c.Context(), services.PlanifierRequest{
		DossierID:    req.DossierID,
		JuryID:       req.JuryID,
		SalleID:      req.SalleID,
		DateHeure:    req.DateHeure,
		DureeMinutes: req.DureeMinutes,
		OrdrePassage: req.OrdrePassage,
	})
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to schedule soutenance")
	}
	return response.Created(c, soutenance)
}

// List lists the defenses visible to the caller
func (h *Handler) List(c *fiber.Ctx) error {
	actor, err := handlers.ActorFromCtx(c, h.users)
	if err != nil {
		return response.Unauthorized(c, "Not authenticated")
	}

	page, limit, offset := handlers.Pagination(c)

	opts := services.ListSoutenancesOptions{
		Statut:    model.SoutenanceStatut(c.Query("statut")),
		SessionID: uint(c.QueryInt("session_id", 0)),
		Limit:     limit,
		Offset:    offset,
	}
	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return response.BadRequest(c, "Invalid from date, expected RFC 3339")
		}
		opts.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return response.BadRequest(c, "Invalid to date, expected RFC 3339")
		}
		opts.To = &to
	}

	soutenances, total, err := h.soutenances.ListSoutenances(c.Context(), actor, opts)
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to list soutenances")
	}
	return response.Paginated(c, soutenances, response.CalculatePagination(page, limit, total))
}

// Calendrier lists scheduled defenses over a date range, ordered by date and
// passage order. Defaults to the coming month.
func (h *Handler) Calendrier(c *fiber.Ctx) error {
	actor, err := handlers.ActorFromCtx(c, h.users)
	if err != nil {
		return response.Unauthorized(c, "Not authenticated")
	}

	from := time.Now().Truncate(24 * time.Hour)
	to := from.AddDate(0, 1, 0)
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return response.BadRequest(c, "Invalid from date, expected RFC 3339")
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return response.BadRequest(c, "Invalid to date, expected RFC 3339")
		}
		to = parsed
	}

	soutenances, err := h.soutenances.Calendrier(c.Context(), actor, from, to)
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to load calendrier")
	}
	return response.Success(c, soutenances)
}

// MesSoutenances lists the caller's own defenses: the ones a teacher's
// juries evaluate, or the ones attached to a candidate's dossiers.
func (h *Handler) MesSoutenances(c *fiber.Ctx) error {
	actor, err := handlers.ActorFromCtx(c, h.users)
	if err != nil {
		return response.Unauthorized(c, "Not authenticated")
	}

	if actor.IsEnseignant() {
		soutenances, err := h.soutenances.MesSoutenances(c.Context(), actor.ProfileID)
		if err != nil {
			return handlers.ServiceError(c, err, "Failed to list soutenances")
		}
		return response.Success(c, soutenances)
	}

	if actor.IsCandidat() {
		soutenances, _, err := h.soutenances.ListSoutenances(c.Context(), actor, services.ListSoutenancesOptions{})
		if err != nil {
			return handlers.ServiceError(c, err, "Failed to list soutenances")
		}
		return response.Success(c, soutenances)
	}

	return response.Forbidden(c, "Administrators use the full soutenance listing")
}

// Get loads one defense visible to the caller
func (h *Handler) Get(c *fiber.Ctx) error {
	actor, err := handlers.ActorFromCtx(c, h.users)
	if err != nil {
		return response.Unauthorized(c, "Not authenticated")
	}

	id, err := handlers.ParseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	soutenance, err := h.soutenances.GetSoutenance(c.Context(), actor, id)
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to load soutenance")
	}
	return response.Success(c, soutenance)
}

// ReplanifierRequest is the rescheduling payload; zero fields keep the
// current value.
type ReplanifierRequest struct {
	JuryID       uint      `json:"jury_id,omitempty"`
	SalleID      uint      `json:"salle_id,omitempty"`
	DateHeure    time.Time `json:"date_heure,omitempty"`
	DureeMinutes int       `json:"duree_minutes,omitempty"`
	OrdrePassage int       `json:"ordre_passage,omitempty"`
}

// Replanifier reschedules a planned defense
func (h *Handler) Replanifier(c *fiber.Ctx) error {
	id, err := handlers.ParseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var req ReplanifierRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	soutenance, err := h.soutenances.Replanifier(c.Context(), id, services.PlanifierRequest{
		JuryID:       req.JuryID,
		SalleID:      req.SalleID,
		DateHeure:    req.DateHeure,
		DureeMinutes: req.DureeMinutes,
		OrdrePassage: req.OrdrePassage,
	})
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to reschedule soutenance")
	}
	return response.Success(c, soutenance)
}

// Demarrer moves a planned defense to EN_COURS
func (h *Handler) Demarrer(c *fiber.Ctx) error {
	id, err := handlers.ParseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	soutenance, err := h.soutenances.Demarrer(c.Context(), id)
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to start soutenance")
	}
	return response.Success(c, soutenance)
}

// TerminerRequest carries the final grade and observations
type TerminerRequest struct {
	NoteFinale   float64 `json:"note_finale" validate:"required,gte=0,lte=20"`
	Observations string  `json:"observations,omitempty"`
}

// Terminer concludes a running defense, derives the mention and generates
// the procès-verbal
func (h *Handler) Terminer(c *fiber.Ctx) error {
	id, err := handlers.ParseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var req TerminerRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	soutenance, err := h.soutenances.Terminer(c.Context(), id, services.TerminerRequest{
		NoteFinale:   req.NoteFinale,
		Observations: req.Observations,
	})
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to conclude soutenance")
	}
	return response.Success(c, soutenance)
}

// AnnulerRequest carries the cancellation reason
type AnnulerRequest struct {
	Motif string `json:"motif,omitempty"`
}

// Annuler cancels a defense that has not been concluded
func (h *Handler) Annuler(c *fiber.Ctx) error {
	id, err := handlers.ParseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var req AnnulerRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return response.BadRequest(c, "Invalid request body")
	}

	soutenance, err := h.soutenances.Annuler(c.Context(), id, req.Motif)
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to cancel soutenance")
	}
	return response.Success(c, soutenance)
}

// EvaluationRequest is a jury member's grading payload
type EvaluationRequest struct {
	NoteMemoire      float64 `json:"note_memoire" validate:"gte=0,lte=20"`
	NotePresentation float64 `json:"note_presentation" validate:"gte=0,lte=20"`
	NoteReponses     float64 `json:"note_reponses" validate:"gte=0,lte=20"`
	Commentaires     string  `json:"commentaires,omitempty"`
}

// CreateEvaluation records the calling jury member's grading
func (h *Handler) CreateEvaluation(c *fiber.Ctx) error {
	actor, err := handlers.ActorFromCtx(c, h.users)
	if err != nil {
		return response.Unauthorized(c, "Not authenticated")
	}
	if !actor.IsEnseignant() {
		return response.Forbidden(c, "Only jury members can grade a soutenance")
	}

	id, err := handlers.ParseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var req EvaluationRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	evaluation, err := h.soutenances.CreateEvaluation(c.Context(), services.EvaluationRequest{
		SoutenanceID:     id,
		EvaluateurID:     actor.ProfileID,
		NoteMemoire:      req.NoteMemoire,
		NotePresentation: req.NotePresentation,
		NoteReponses:     req.NoteReponses,
		Commentaires:     req.Commentaires,
	})
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to record evaluation")
	}
	return response.Created(c, evaluation)
}

// ListEvaluations lists the gradings of a defense visible to the caller
func (h *Handler) ListEvaluations(c *fiber.Ctx) error {
	actor, err := handlers.ActorFromCtx(c, h.users)
	if err != nil {
		return response.Unauthorized(c, "Not authenticated")
	}

	id, err := handlers.ParseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	evaluations, err := h.soutenances.ListEvaluations(c.Context(), actor, id)
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to list evaluations")
	}
	return response.Success(c, evaluations)
}

// GetProcesVerbal loads the PV of a concluded defense
func (h *Handler) GetProcesVerbal(c *fiber.Ctx) error {
	actor, err := handlers.ActorFromCtx(c, h.users)
	if err != nil {
		return response.Unauthorized(c, "Not authenticated")
	}

	id, err := handlers.ParseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	pv, err := h.soutenances.GetProcesVerbal(c.Context(), actor, id)
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to load proces-verbal")
	}
	return response.Success(c, pv)
}
