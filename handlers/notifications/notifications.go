package notifications

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jkemta/soutenance-api/handlers"
	"github.com/jkemta/soutenance-api/model"
	"github.com/jkemta/soutenance-api/services"
	"github.com/jkemta/soutenance-api/utils/middleware"
	"github.com/jkemta/soutenance-api/utils/response"
)

// Handler exposes the caller's notification endpoints
type Handler struct {
	notifications *services.NotificationService
}

// NewHandler creates a new notifications handler
func NewHandler(notifications *services.NotificationService) *Handler {
	return &Handler{notifications: notifications}
}

// List lists the caller's notifications
func (h *Handler) List(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	page, limit, offset := handlers.Pagination(c)

	items, total, err := h.notifications.GetNotificationsByUser(c.Context(), services.ListNotificationsOptions{
		UserID:     userID,
		UnreadOnly: c.QueryBool("non_lues"),
		Type:       model.NotificationType(c.Query("type")),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to list notifications")
	}
	return response.Paginated(c, items, response.CalculatePagination(page, limit, total))
}

// UnreadCount returns the number of unread notifications
func (h *Handler) UnreadCount(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	count, err := h.notifications.GetUnreadCount(c.Context(), userID)
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to count notifications")
	}
	return response.Success(c, fiber.Map{"unread": count})
}

// MarquerLu marks one notification read
func (h *Handler) MarquerLu(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	id, err := handlers.ParseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	if err := h.notifications.MarkAsRead(c.Context(), id, userID); err != nil {
		return handlers.ServiceError(c, err, "Failed to mark notification read")
	}
	return response.Success(c, fiber.Map{"message": "Notification marked as read"})
}

// MarquerToutLu marks every unread notification read
func (h *Handler) MarquerToutLu(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	updated, err := h.notifications.MarkAllAsRead(c.Context(), userID)
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to mark notifications read")
	}
	return response.Success(c, fiber.Map{"updated": updated})
}

// Delete removes one of the caller's notifications
func (h *Handler) Delete(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	id, err := handlers.ParseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	if err := h.notifications.DeleteNotification(c.Context(), id, userID); err != nil {
		return handlers.ServiceError(c, err, "Failed to delete notification")
	}
	return response.NoContent(c)
}

// DeleteAll removes every notification of the caller
func (h *Handler) DeleteAll(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	deleted, err := h.notifications.DeleteAllNotifications(c.Context(), userID)
	if err != nil {
		return handlers.ServiceError(c, err, "Failed to delete notifications")
	}
	return response.Success(c, fiber.Map{"deleted": deleted})
}
