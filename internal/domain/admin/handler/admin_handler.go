package handler

import (
	"errors"
	"net/http"

	"microsocial/internal/domain/admin/service"
	common "microsocial/internal/pkg/common"
	"microsocial/pkg/response"
	"microsocial/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves the administration endpoints.
type AdminHandler struct {
	service service.AdminService
}

func NewAdminHandler(service service.AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

func (h *AdminHandler) mapError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		response.Error(c, http.StatusNotFound, response.ErrUserNotFound, err.Error())
	case errors.Is(err, service.ErrSelfDeletion), errors.Is(err, service.ErrAdminDeletion):
		response.Error(c, http.StatusForbidden, response.ErrNoPermission, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "Internal error")
	}
}

// Dashboard returns platform-wide counters.
// @Summary Admin dashboard
// @Tags Admin
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /admin/dashboard [get]
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.service.Dashboard()
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, stats)
}

// ListUsers pages through every registered account.
// @Summary List users
// @Tags Admin
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	page, limit := p.Normalize()

	users, total, err := h.service.ListUsers(page, limit)
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, utils.PageResult{List: users, Total: total, Page: page, Limit: limit})
}

// DeleteUser removes an account and everything it produced.
// @Summary Delete user
// @Tags Admin
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} response.Response
// @Router /admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	if err := h.service.DeleteUser(common.CurrentUserID(c), c.Param("id")); err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, true)
}
