package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jkemta/soutenance-api/model"
	"github.com/jkemta/soutenance-api/services"
	"github.com/jkemta/soutenance-api/utils/authz"
	"github.com/jkemta/soutenance-api/utils/middleware"
	"github.com/jkemta/soutenance-api/utils/response"
)

// ActorFromCtx builds the authorization actor for the authenticated user.
// For candidates and teachers the role profile ID is resolved so database
// scopes can filter on it.
func ActorFromCtx(c *fiber.Ctx, users *services.UserService) (authz.Actor, error) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return authz.Actor{}, errors.New("not authenticated")
	}
	role, ok := middleware.GetUserRole(c)
	if !ok {
		return authz.Actor{}, errors.New("not authenticated")
	}

	actor := authz.Actor{UserID: userID, Role: role}

	switch role {
	case model.RoleCandidat:
		profile, err := users.CandidatProfileFor(c.Context(), userID)
		if err != nil {
			return authz.Actor{}, err
		}
		actor.ProfileID = profile.ID
	case model.RoleEnseignant:
		profile, err := users.EnseignantProfileFor(c.Context(), userID)
		if err != nil {
			return authz.Actor{}, err
		}
		actor.ProfileID = profile.ID
	}

	return actor, nil
}

// ServiceError maps service sentinel errors onto the response envelope.
// Unknown errors become a 500 with the given fallback message.
func ServiceError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return response.NotFound(c, "Resource not found")
	case errors.Is(err, services.ErrForbidden):
		return response.Forbidden(c, "You do not have access to this resource")
	case errors.Is(err, services.ErrConflict):
		return response.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidState):
		return response.BadRequest(c, err.Error())
	default:
		return response.InternalServerError(c, fallback)
	}
}

// ParseIDParam reads a positive integer route parameter.
func ParseIDParam(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id parameter")
	}
	return uint(id), nil
}

// Pagination reads ?page= and ?limit= with sane defaults.
func Pagination(c *fiber.Ctx) (page, limit, offset int) {
	page = c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit = c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset = (page - 1) * limit
	return page, limit, offset
}
