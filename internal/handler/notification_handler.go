package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/roadsafety-api/internal/dto"
	"github.com/noah-isme/roadsafety-api/internal/models"
	"github.com/noah-isme/roadsafety-api/pkg/response"
)

type notificationService interface {
	List(ctx context.Context, principal *models.Principal, unreadOnly bool) (*dto.NotificationList, error)
	MarkRead(ctx context.Context, principal *models.Principal, id string) error
}

// NotificationHandler exposes the pull-based notification inbox.
type NotificationHandler struct {
	service notificationService
}

// NewNotificationHandler constructs the handler.
func NewNotificationHandler(svc notificationService) *NotificationHandler {
	return &NotificationHandler{service: svc}
}

// List godoc
// @Summary List own notifications
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param unread query bool false "Only unread"
// @Success 200 {object} response.Envelope
// @Router /user/notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	principal := principalFromContext(c)
	if principal == nil {
		return
	}
	res, err := h.service.List(c.Request.Context(), principal, queryBool(c, "unread"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// MarkRead godoc
// @Summary Mark a notification as read
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	principal := principalFromContext(c)
	if principal == nil {
		return
	}
	if err := h.service.MarkRead(c.Request.Context(), principal, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
