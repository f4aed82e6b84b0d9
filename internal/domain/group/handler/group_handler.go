package handler

import (
	"errors"
	"net/http"

	"microsocial/internal/domain/group/service"
	common "microsocial/internal/pkg/common"
	"microsocial/pkg/response"
	"microsocial/pkg/utils"

	"github.com/gin-gonic/gin"
)

// GroupHandler serves groups, membership, join requests and group chat.
type GroupHandler struct {
	service service.GroupService
}

func NewGroupHandler(service service.GroupService) *GroupHandler {
	return &GroupHandler{service: service}
}

// JoinInput carries the optional message shown to the owner.
type JoinInput struct {
	Message string `json:"message" binding:"max=500"`
}

// MessageInput carries chat message text.
type MessageInput struct {
	Content string `json:"content" binding:"required"`
}

func (h *GroupHandler) mapError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrGroupNotFound):
		response.Error(c, http.StatusNotFound, response.ErrGroupNotFound, err.Error())
	case errors.Is(err, service.ErrMessageNotFound):
		response.Error(c, http.StatusNotFound, response.ErrGroupNotFound, err.Error())
	case errors.Is(err, service.ErrRequestNotFound):
		response.Error(c, http.StatusNotFound, response.ErrRequestNotFound, err.Error())
	case errors.Is(err, service.ErrNotMember):
		response.Error(c, http.StatusForbidden, response.ErrNotGroupMember, err.Error())
	case errors.Is(err, service.ErrNotOwner),
		errors.Is(err, service.ErrNoPermission),
		errors.Is(err, service.ErrCannotKickOwner):
		response.Error(c, http.StatusForbidden, response.ErrNoPermission, err.Error())
	case errors.Is(err, service.ErrAlreadyMember):
		response.Error(c, http.StatusConflict, response.ErrAlreadyMember, err.Error())
	case errors.Is(err, service.ErrDuplicateRequest):
		response.Error(c, http.StatusConflict, response.ErrRequestDuplicate, err.Error())
	case errors.Is(err, service.ErrContentRejected):
		response.Error(c, http.StatusUnprocessableEntity, response.ErrContentRejected, err.Error())
	case errors.Is(err, service.ErrEmptyContent):
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "Internal error")
	}
}

// Create starts a new group with the caller as owner.
// @Summary Create group
// @Tags Groups
// @Security BearerAuth
// @Param input body service.GroupInput true "Group"
// @Success 200 {object} response.Response
// @Router /groups [post]
func (h *GroupHandler) Create(c *gin.Context) {
	var input service.GroupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	group, err := h.service.Create(common.CurrentUserID(c), input)
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, group)
}

// List pages through all groups.
// @Summary List groups
// @Tags Groups
// @Success 200 {object} response.Response
// @Router /groups [get]
func (h *GroupHandler) List(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	page, limit := p.Normalize()

	groups, total, err := h.service.List(page, limit)
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, utils.PageResult{List: groups, Total: total, Page: page, Limit: limit})
}

// Get returns a group with the viewer's membership state.
// @Summary Group details
// @Tags Groups
// @Param id path string true "Group ID"
// @Success 200 {object} response.Response
// @Router /groups/{id} [get]
func (h *GroupHandler) Get(c *gin.Context) {
	view, err := h.service.Get(c.Param("id"), common.CurrentUserID(c))
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, view)
}

// Update edits group metadata (owner or moderator).
// @Summary Edit group
// @Tags Groups
// @Security BearerAuth
// @Param id path string true "Group ID"
// @Param input body service.GroupInput true "Group"
// @Success 200 {object} response.Response
// @Router /groups/{id} [put]
func (h *GroupHandler) Update(c *gin.Context) {
	var input service.GroupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	group, err := h.service.Update(common.CurrentUserID(c), c.Param("id"), input)
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, group)
}

// Delete disbands a group (owner or admin) and notifies its members.
// @Summary Delete group
// @Tags Groups
// @Security BearerAuth
// @Param id path string true "Group ID"
// @Success 200 {object} response.Response
// @Router /groups/{id} [delete]
func (h *GroupHandler) Delete(c *gin.Context) {
	err := h.service.Delete(common.CurrentUserID(c), common.IsAdmin(c), c.Param("id"))
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, true)
}

// Members lists group members; member-only.
// @Summary Group members
// @Tags Groups
// @Security BearerAuth
// @Param id path string true "Group ID"
// @Success 200 {object} response.Response
// @Router /groups/{id}/members [get]
func (h *GroupHandler) Members(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	page, limit := p.Normalize()

	members, total, err := h.service.Members(c.Param("id"), common.CurrentUserID(c), page, limit)
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, utils.PageResult{List: members, Total: total, Page: page, Limit: limit})
}

// Join asks to join a group; the owner reviews the request.
// @Summary Request to join
// @Tags Groups
// @Security BearerAuth
// @Param id path string true "Group ID"
// @Param input body JoinInput false "Message"
// @Success 200 {object} response.Response
// @Router /groups/{id}/join [post]
func (h *GroupHandler) Join(c *gin.Context) {
	// The message is optional; an empty body is fine.
	var input JoinInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
			return
		}
	}

	if err := h.service.Join(common.CurrentUserID(c), c.Param("id"), input.Message); err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, true)
}

// Leave quits the group; a departing owner hands off or disbands.
// @Summary Leave group
// @Tags Groups
// @Security BearerAuth
// @Param id path string true "Group ID"
// @Success 200 {object} response.Response
// @Router /groups/{id}/leave [post]
func (h *GroupHandler) Leave(c *gin.Context) {
	if err := h.service.Leave(common.CurrentUserID(c), c.Param("id")); err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, true)
}

// Kick removes a member (owner or moderator).
// @Summary Remove member
// @Tags Groups
// @Security BearerAuth
// @Param id path string true "Group ID"
// @Param userId path string true "User ID"
// @Success 200 {object} response.Response
// @Router /groups/{id}/members/{userId} [delete]
func (h *GroupHandler) Kick(c *gin.Context) {
	err := h.service.Kick(common.CurrentUserID(c), c.Param("id"), c.Param("userId"))
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, true)
}

// Promote grants a member the moderator role (owner only).
// @Summary Promote member
// @Tags Groups
// @Security BearerAuth
// @Param id path string true "Group ID"
// @Param userId path string true "User ID"
// @Success 200 {object} response.Response
// @Router /groups/{id}/members/{userId}/promote [post]
func (h *GroupHandler) Promote(c *gin.Context) {
	err := h.service.Promote(common.CurrentUserID(c), c.Param("id"), c.Param("userId"))
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, true)
}

// Demote revokes the moderator role (owner only).
// @Summary Demote member
// @Tags Groups
// @Security BearerAuth
// @Param id path string true "Group ID"
// @Param userId path string true "User ID"
// @Success 200 {object} response.Response
// @Router /groups/{id}/members/{userId}/demote [post]
func (h *GroupHandler) Demote(c *gin.Context) {
	err := h.service.Demote(common.CurrentUserID(c), c.Param("id"), c.Param("userId"))
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, true)
}

// JoinRequests lists pending requests (owner or moderator).
// @Summary Pending join requests
// @Tags Groups
// @Security BearerAuth
// @Param id path string true "Group ID"
// @Success 200 {object} response.Response
// @Router /groups/{id}/requests [get]
func (h *GroupHandler) JoinRequests(c *gin.Context) {
	requests, err := h.service.JoinRequests(common.CurrentUserID(c), c.Param("id"))
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, gin.H{"list": requests})
}

// AcceptRequest admits the requester as a member.
// @Summary Accept join request
// @Tags Groups
// @Security BearerAuth
// @Param requestId path string true "Request ID"
// @Success 200 {object} response.Response
// @Router /groups/requests/{requestId}/accept [post]
func (h *GroupHandler) AcceptRequest(c *gin.Context) {
	if err := h.service.AcceptRequest(common.CurrentUserID(c), c.Param("requestId")); err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, true)
}

// RejectRequest declines a join request.
// @Summary Reject join request
// @Tags Groups
// @Security BearerAuth
// @Param requestId path string true "Request ID"
// @Success 200 {object} response.Response
// @Router /groups/requests/{requestId}/reject [post]
func (h *GroupHandler) RejectRequest(c *gin.Context) {
	if err := h.service.RejectRequest(common.CurrentUserID(c), c.Param("requestId")); err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, true)
}

// Messages pages through group chat, newest first; member-only.
// @Summary Group messages
// @Tags Groups
// @Security BearerAuth
// @Param id path string true "Group ID"
// @Success 200 {object} response.Response
// @Router /groups/{id}/messages [get]
func (h *GroupHandler) Messages(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	page, limit := p.Normalize()

	messages, total, err := h.service.Messages(common.CurrentUserID(c), c.Param("id"), page, limit)
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, utils.PageResult{List: messages, Total: total, Page: page, Limit: limit})
}

// PostMessage sends a chat message to the group.
// @Summary Send group message
// @Tags Groups
// @Security BearerAuth
// @Param id path string true "Group ID"
// @Param input body MessageInput true "Message"
// @Success 200 {object} response.Response
// @Router /groups/{id}/messages [post]
func (h *GroupHandler) PostMessage(c *gin.Context) {
	var input MessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	message, err := h.service.PostMessage(c.Request.Context(), common.CurrentUserID(c), c.Param("id"), input.Content)
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, message)
}

// EditMessage updates the sender's own message and marks it edited.
// @Summary Edit group message
// @Tags Groups
// @Security BearerAuth
// @Param messageId path string true "Message ID"
// @Param input body MessageInput true "Message"
// @Success 200 {object} response.Response
// @Router /groups/messages/{messageId} [put]
func (h *GroupHandler) EditMessage(c *gin.Context) {
	var input MessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	message, err := h.service.EditMessage(c.Request.Context(), common.CurrentUserID(c), c.Param("messageId"), input.Content)
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, message)
}

// DeleteMessage removes a message (sender, owner or moderator).
// @Summary Delete group message
// @Tags Groups
// @Security BearerAuth
// @Param messageId path string true "Message ID"
// @Success 200 {object} response.Response
// @Router /groups/messages/{messageId} [delete]
func (h *GroupHandler) DeleteMessage(c *gin.Context) {
	if err := h.service.DeleteMessage(common.CurrentUserID(c), c.Param("messageId")); err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, true)
}
