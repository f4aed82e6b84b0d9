package handler

import (
	"errors"
	"net/http"

	"microsocial/internal/domain/follow/service"
	common "microsocial/internal/pkg/common"
	"microsocial/pkg/response"
	"microsocial/pkg/utils"

	"github.com/gin-gonic/gin"
)

// FollowHandler serves the follow graph.
type FollowHandler struct {
	service service.FollowService
}

func NewFollowHandler(service service.FollowService) *FollowHandler {
	return &FollowHandler{service: service}
}

func (h *FollowHandler) mapError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSelfFollow):
		response.Error(c, http.StatusBadRequest, response.ErrFollowSelf, err.Error())
	case errors.Is(err, service.ErrTargetNotFound):
		response.Error(c, http.StatusNotFound, response.ErrUserNotFound, err.Error())
	case errors.Is(err, service.ErrRequestNotFound):
		response.Error(c, http.StatusNotFound, response.ErrFollowNotFound, err.Error())
	case errors.Is(err, service.ErrNotPending):
		response.Error(c, http.StatusConflict, response.ErrFollowNotPending, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "Internal error")
	}
}

// Toggle follows, requests, cancels or unfollows depending on state.
// @Summary Toggle follow
// @Tags Follow
// @Security BearerAuth
// @Param id path string true "Target user ID"
// @Success 200 {object} response.Response
// @Router /users/{id}/follow [post]
func (h *FollowHandler) Toggle(c *gin.Context) {
	result, err := h.service.Toggle(common.CurrentUserID(c), c.Param("id"))
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, result)
}

// Followers lists accepted followers of a user.
// @Summary Followers
// @Tags Follow
// @Param id path string true "User ID"
// @Success 200 {object} response.Response
// @Router /users/{id}/followers [get]
func (h *FollowHandler) Followers(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	page, limit := p.Normalize()

	follows, total, err := h.service.GetFollowers(c.Param("id"), page, limit)
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, utils.PageResult{List: follows, Total: total, Page: page, Limit: limit})
}

// Following lists who a user follows.
// @Summary Following
// @Tags Follow
// @Param id path string true "User ID"
// @Success 200 {object} response.Response
// @Router /users/{id}/following [get]
func (h *FollowHandler) Following(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	page, limit := p.Normalize()

	follows, total, err := h.service.GetFollowing(c.Param("id"), page, limit)
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, utils.PageResult{List: follows, Total: total, Page: page, Limit: limit})
}

// PendingRequests lists incoming follow requests for the caller.
// @Summary Pending follow requests
// @Tags Follow
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /follow/requests [get]
func (h *FollowHandler) PendingRequests(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	page, limit := p.Normalize()

	follows, total, err := h.service.GetPendingRequests(common.CurrentUserID(c), page, limit)
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, utils.PageResult{List: follows, Total: total, Page: page, Limit: limit})
}

// Accept approves a pending request from the given follower.
// @Summary Accept follow request
// @Tags Follow
// @Security BearerAuth
// @Param followerId path string true "Follower ID"
// @Success 200 {object} response.Response
// @Router /follow/requests/{followerId}/accept [post]
func (h *FollowHandler) Accept(c *gin.Context) {
	if err := h.service.Accept(common.CurrentUserID(c), c.Param("followerId")); err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, true)
}

// Decline removes a pending request from the given follower.
// @Summary Decline follow request
// @Tags Follow
// @Security BearerAuth
// @Param followerId path string true "Follower ID"
// @Success 200 {object} response.Response
// @Router /follow/requests/{followerId}/decline [post]
func (h *FollowHandler) Decline(c *gin.Context) {
	if err := h.service.Decline(common.CurrentUserID(c), c.Param("followerId")); err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, true)
}
