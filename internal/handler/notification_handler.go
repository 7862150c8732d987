package handler

import (
	"net/http"

	"github.com/Pranav-6954/Carpooling/internal/dto"
	"github.com/Pranav-6954/Carpooling/internal/repository"
	"github.com/labstack/echo/v4"
)

type NotificationHandler struct {
	repo repository.NotificationRepository
}

func NewNotificationHandler(repo repository.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{repo: repo}
}

func (h *NotificationHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1/notifications")
	g.GET("", h.List)
	g.PUT("/:id/read", h.MarkRead)
}

func (h *NotificationHandler) List(c echo.Context) error {
	email, err := actorEmail(c)
	if err != nil {
		return err
	}

	notifications, err := h.repo.FindByRecipient(c.Request().Context(), email)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]dto.NotificationResponse, len(notifications))
	for i := range notifications {
		resp[i] = dto.ToNotificationResponse(&notifications[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.repo.MarkRead(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
