package handler

import (
	"errors"
	"net/http"

	"microsocial/internal/domain/post/service"
	common "microsocial/internal/pkg/common"
	"microsocial/pkg/response"
	"microsocial/pkg/utils"

	"github.com/gin-gonic/gin"
)

// PostHandler serves posts, the feed, comments, reactions and bookmarks.
type PostHandler struct {
	service service.PostService
}

func NewPostHandler(service service.PostService) *PostHandler {
	return &PostHandler{service: service}
}

// CreatePostInput is the publish payload; media entries reference files
// already stored through /api/upload.
type CreatePostInput struct {
	Content string               `json:"content" binding:"required,max=2000"`
	Media   []service.MediaInput `json:"media" binding:"max=10,dive"`
}

// UpdatePostInput edits a post; a present media array replaces the whole
// attachment set, an absent one leaves it untouched.
type UpdatePostInput struct {
	Content string                `json:"content" binding:"required,max=2000"`
	Media   *[]service.MediaInput `json:"media" binding:"omitempty,max=10,dive"`
}

// ContentInput carries a single text field, used by comment writes.
type ContentInput struct {
	Content string `json:"content" binding:"required"`
}

// ReactInput selects the reaction type.
type ReactInput struct {
	Type string `json:"type" binding:"required"`
}

func (h *PostHandler) mapError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPostNotFound):
		response.Error(c, http.StatusNotFound, response.ErrPostNotFound, err.Error())
	case errors.Is(err, service.ErrCommentNotFound):
		response.Error(c, http.StatusNotFound, response.ErrCommentNotFound, err.Error())
	case errors.Is(err, service.ErrNoAccess), errors.Is(err, service.ErrNotAuthor):
		response.Error(c, http.StatusForbidden, response.ErrNoPermission, err.Error())
	case errors.Is(err, service.ErrContentRejected):
		response.Error(c, http.StatusUnprocessableEntity, response.ErrContentRejected, err.Error())
	case errors.Is(err, service.ErrContentTooLong),
		errors.Is(err, service.ErrEmptyContent),
		errors.Is(err, service.ErrInvalidReaction):
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
	case errors.Is(err, service.ErrAlreadySaved):
		response.Error(c, http.StatusConflict, response.ErrAlreadySaved, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "Internal error")
	}
}

// Feed returns the home timeline; anonymous callers get the public feed.
// @Summary Feed
// @Tags Posts
// @Success 200 {object} response.Response
// @Router /feed [get]
func (h *PostHandler) Feed(c *gin.Context) {
	viewerID := common.CurrentUserID(c)

	if viewerID == "" {
		posts, err := h.service.PublicFeed()
		if err != nil {
			h.mapError(c, err)
			return
		}
		response.Success(c, gin.H{"list": posts})
		return
	}

	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	page, limit := p.Normalize()

	posts, total, err := h.service.Feed(viewerID, common.IsAdmin(c), page, limit)
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, utils.PageResult{List: posts, Total: total, Page: page, Limit: limit})
}

// Create publishes a post.
// @Summary Create post
// @Tags Posts
// @Security BearerAuth
// @Param input body CreatePostInput true "Post"
// @Success 200 {object} response.Response
// @Router /posts [post]
func (h *PostHandler) Create(c *gin.Context) {
	var input CreatePostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	post, err := h.service.Create(c.Request.Context(), common.CurrentUserID(c), input.Content, input.Media)
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, post)
}

// Get returns one post with counters and viewer state.
// @Summary Post details
// @Tags Posts
// @Param id path string true "Post ID"
// @Success 200 {object} response.Response
// @Router /posts/{id} [get]
func (h *PostHandler) Get(c *gin.Context) {
	view, err := h.service.Get(c.Param("id"), common.CurrentUserID(c), common.IsAdmin(c))
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, view)
}

// Update edits a post's text.
// @Summary Edit post
// @Tags Posts
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param input body UpdatePostInput true "Content"
// @Success 200 {object} response.Response
// @Router /posts/{id} [put]
func (h *PostHandler) Update(c *gin.Context) {
	var input UpdatePostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	post, err := h.service.Update(c.Request.Context(), common.CurrentUserID(c), c.Param("id"), input.Content, input.Media)
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, post)
}

// Delete removes a post, its dependents and its media files.
// @Summary Delete post
// @Tags Posts
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} response.Response
// @Router /posts/{id} [delete]
func (h *PostHandler) Delete(c *gin.Context) {
	err := h.service.Delete(common.CurrentUserID(c), common.IsAdmin(c), c.Param("id"))
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, true)
}

// React toggles the caller's reaction.
// @Summary React to post
// @Tags Posts
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param input body ReactInput true "Reaction"
// @Success 200 {object} response.Response
// @Router /posts/{id}/reactions [post]
func (h *PostHandler) React(c *gin.Context) {
	var input ReactInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	result, err := h.service.React(common.CurrentUserID(c), c.Param("id"), input.Type)
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, result)
}

// ListComments pages through a post's comments.
// @Summary List comments
// @Tags Comments
// @Param id path string true "Post ID"
// @Success 200 {object} response.Response
// @Router /posts/{id}/comments [get]
func (h *PostHandler) ListComments(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	page, limit := p.Normalize()

	comments, total, err := h.service.ListComments(
		c.Param("id"), common.CurrentUserID(c), common.IsAdmin(c), page, limit)
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, utils.PageResult{List: comments, Total: total, Page: page, Limit: limit})
}

// AddComment comments on a post.
// @Summary Add comment
// @Tags Comments
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param input body ContentInput true "Content"
// @Success 200 {object} response.Response
// @Router /posts/{id}/comments [post]
func (h *PostHandler) AddComment(c *gin.Context) {
	var input ContentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	comment, err := h.service.AddComment(c.Request.Context(), common.CurrentUserID(c), c.Param("id"), input.Content)
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, comment)
}

// UpdateComment edits the caller's own comment.
// @Summary Edit comment
// @Tags Comments
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Param input body ContentInput true "Content"
// @Success 200 {object} response.Response
// @Router /comments/{id} [put]
func (h *PostHandler) UpdateComment(c *gin.Context) {
	var input ContentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	comment, err := h.service.UpdateComment(c.Request.Context(), common.CurrentUserID(c), c.Param("id"), input.Content)
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, comment)
}

// DeleteComment removes a comment (author, post author or admin).
// @Summary Delete comment
// @Tags Comments
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Success 200 {object} response.Response
// @Router /comments/{id} [delete]
func (h *PostHandler) DeleteComment(c *gin.Context) {
	err := h.service.DeleteComment(common.CurrentUserID(c), common.IsAdmin(c), c.Param("id"))
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, true)
}

// Save bookmarks a post.
// @Summary Save post
// @Tags Posts
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} response.Response
// @Router /posts/{id}/save [post]
func (h *PostHandler) Save(c *gin.Context) {
	if err := h.service.Save(common.CurrentUserID(c), c.Param("id")); err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, true)
}

// Unsave removes a bookmark.
// @Summary Unsave post
// @Tags Posts
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} response.Response
// @Router /posts/{id}/save [delete]
func (h *PostHandler) Unsave(c *gin.Context) {
	if err := h.service.Unsave(common.CurrentUserID(c), c.Param("id")); err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, true)
}

// SavedPosts lists the caller's bookmarks.
// @Summary Saved posts
// @Tags Posts
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /saved [get]
func (h *PostHandler) SavedPosts(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	page, limit := p.Normalize()

	posts, total, err := h.service.SavedPosts(common.CurrentUserID(c), page, limit)
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, utils.PageResult{List: posts, Total: total, Page: page, Limit: limit})
}
