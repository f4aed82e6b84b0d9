package handler

import (
	"errors"
	"net/http"

	"microsocial/internal/domain/user/service"
	common "microsocial/internal/pkg/common"
	"microsocial/pkg/response"

	"github.com/gin-gonic/gin"
)

// UserHandler serves signup, sessions and profile pages.
type UserHandler struct {
	service service.UserService
}

func NewUserHandler(service service.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// RegisterInput is the signup payload.
type RegisterInput struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"fullName" binding:"max=100"`
}

// LoginInput accepts the email or the username.
type LoginInput struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// ProfileInput is the editable account payload.
type ProfileInput struct {
	Username  string `json:"username" binding:"omitempty,min=3,max=50"`
	FullName  string `json:"fullName" binding:"max=100"`
	Bio       string `json:"bio" binding:"max=500"`
	AvatarURL string `json:"avatarUrl" binding:"max=500"`
	CoverURL  string `json:"coverUrl" binding:"max=500"`
	Website   string `json:"website" binding:"max=255"`
	Location  string `json:"location" binding:"max=100"`
	IsPublic  *bool  `json:"isPublic"`
}

func (h *UserHandler) mapError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrUsernameTaken):
		response.Error(c, http.StatusConflict, response.ErrUserExists, err.Error())
	case errors.Is(err, service.ErrInvalidLogin):
		response.Error(c, http.StatusUnauthorized, response.ErrAuthFailed, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		response.Error(c, http.StatusNotFound, response.ErrUserNotFound, err.Error())
	case errors.Is(err, service.ErrWeakPassword),
		errors.Is(err, service.ErrInvalidUsername):
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "Internal error")
	}
}

// Register creates an account and signs the new user in.
// @Summary Register
// @Tags Auth
// @Accept json
// @Produce json
// @Param input body RegisterInput true "Signup"
// @Success 200 {object} response.Response
// @Router /auth/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	result, err := h.service.Register(service.RegisterInput{
		Email:    input.Email,
		Username: input.Username,
		Password: input.Password,
		FullName: input.FullName,
	})
	if err != nil {
		h.mapError(c, err)
		return
	}

	response.Success(c, result)
}

// Login exchanges credentials for a token.
// @Summary Login
// @Tags Auth
// @Accept json
// @Produce json
// @Param input body LoginInput true "Credentials"
// @Success 200 {object} response.Response
// @Router /auth/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	result, err := h.service.Login(input.Identifier, input.Password)
	if err != nil {
		h.mapError(c, err)
		return
	}

	response.Success(c, result)
}

// Logout revokes the presented token.
// @Summary Logout
// @Tags Auth
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /auth/logout [post]
func (h *UserHandler) Logout(c *gin.Context) {
	tokenID := c.GetString("tokenID")

	// Revoke until the token would have expired anyway.
	if err := h.service.Logout(c.Request.Context(), tokenID, common.TokenExpiry(c)); err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "Logout failed")
		return
	}
	response.Success(c, true)
}

// GetAccount returns the caller's own account.
// @Summary Current account
// @Tags Account
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /account [get]
func (h *UserHandler) GetAccount(c *gin.Context) {
	user, err := h.service.GetByID(common.CurrentUserID(c))
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, user)
}

// UpdateAccount edits the caller's profile.
// @Summary Update account
// @Tags Account
// @Security BearerAuth
// @Param input body ProfileInput true "Profile"
// @Success 200 {object} response.Response
// @Router /account [put]
func (h *UserHandler) UpdateAccount(c *gin.Context) {
	var input ProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	user, err := h.service.UpdateProfile(common.CurrentUserID(c), service.ProfileInput{
		Username:  input.Username,
		FullName:  input.FullName,
		Bio:       input.Bio,
		AvatarURL: input.AvatarURL,
		CoverURL:  input.CoverURL,
		Website:   input.Website,
		Location:  input.Location,
		IsPublic:  input.IsPublic,
	})
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, user)
}

// CheckUsername reports whether a username is free to take.
// @Summary Username availability
// @Tags Account
// @Param username query string true "Username"
// @Success 200 {object} response.Response
// @Router /account/username-check [get]
func (h *UserHandler) CheckUsername(c *gin.Context) {
	username := c.Query("username")
	if username == "" {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "username is required")
		return
	}

	available, err := h.service.UsernameAvailable(username, common.CurrentUserID(c))
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, gin.H{"available": available})
}

// GetProfile renders a username page for the current viewer.
// @Summary Profile page
// @Tags Profiles
// @Param username path string true "Username"
// @Success 200 {object} response.Response
// @Router /profiles/{username} [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	view, err := h.service.GetProfile(
		c.Param("username"),
		common.CurrentUserID(c),
		common.IsAdmin(c),
	)
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, view)
}
