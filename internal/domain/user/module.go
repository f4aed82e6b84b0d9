package user

import (
	followrepo "microsocial/internal/domain/follow/repository"
	postrepo "microsocial/internal/domain/post/repository"
	"microsocial/internal/domain/user/handler"
	"microsocial/internal/domain/user/repository"
	"microsocial/internal/domain/user/service"
	"microsocial/internal/pkg/middleware"
	"microsocial/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// UserModule wires accounts, sessions and profile pages.
type UserModule struct{}

func init() {
	registry.Register(&UserModule{})
}

func (m *UserModule) Name() string {
	return "user"
}

func (m *UserModule) Priority() int {
	// Everything else depends on accounts.
	return 1
}

func (m *UserModule) Init(ctx *registry.ModuleContext) error {
	userRepo := repository.NewUserRepository(ctx.DB)
	followRepo := followrepo.NewFollowRepository(ctx.DB)
	postRepo := postrepo.NewPostRepository(ctx.DB)

	userService := service.NewUserService(userRepo, followRepo, postRepo)
	userHandler := handler.NewUserHandler(userService)

	setupRoutes(ctx.Router, userHandler)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.UserHandler) {
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/logout", middleware.AuthMiddleware(), h.Logout)
	}

	account := r.Group("/api/account")
	account.Use(middleware.AuthMiddleware())
	{
		account.GET("", h.GetAccount)
		account.PUT("", h.UpdateAccount)
		account.GET("/username-check", h.CheckUsername)
	}

	profiles := r.Group("/api/profiles")
	profiles.Use(middleware.OptionalAuthMiddleware())
	{
		profiles.GET("/:username", h.GetProfile)
	}
}
