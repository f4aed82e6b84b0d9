package handler

import (
	"errors"
	"net/http"

	"microsocial/internal/domain/notification/service"
	common "microsocial/internal/pkg/common"
	"microsocial/pkg/response"
	"microsocial/pkg/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// NotificationHandler serves the caller's notification feed.
type NotificationHandler struct {
	service service.NotificationService
}

func NewNotificationHandler(service service.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

func (h *NotificationHandler) mapError(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.Error(c, http.StatusNotFound, response.ErrInvalidParam, "notification not found")
		return
	}
	response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "Internal error")
}

// List returns the caller's notifications, newest first.
// @Summary List notifications
// @Tags Notifications
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	page, limit := p.Normalize()

	notifications, total, err := h.service.List(common.CurrentUserID(c), page, limit)
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, utils.PageResult{List: notifications, Total: total, Page: page, Limit: limit})
}

// UnreadCount returns the badge number.
// @Summary Unread count
// @Tags Notifications
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	count, err := h.service.UnreadCount(c.Request.Context(), common.CurrentUserID(c))
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, gin.H{"count": count})
}

// MarkRead marks one notification read.
// @Summary Mark read
// @Tags Notifications
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} response.Response
// @Router /notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.service.MarkRead(common.CurrentUserID(c), c.Param("id")); err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, true)
}

// MarkAllRead clears the unread badge.
// @Summary Mark all read
// @Tags Notifications
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /notifications/read-all [post]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if err := h.service.MarkAllRead(common.CurrentUserID(c)); err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, true)
}

// Delete removes one notification.
// @Summary Delete notification
// @Tags Notifications
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} response.Response
// @Router /notifications/{id} [delete]
func (h *NotificationHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(common.CurrentUserID(c), c.Param("id")); err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, true)
}

// DeleteAll clears the whole feed.
// @Summary Delete all notifications
// @Tags Notifications
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /notifications [delete]
func (h *NotificationHandler) DeleteAll(c *gin.Context) {
	if err := h.service.DeleteAll(common.CurrentUserID(c)); err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, true)
}
