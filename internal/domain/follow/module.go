package follow

import (
	"microsocial/internal/domain/follow/handler"
	"microsocial/internal/domain/follow/repository"
	"microsocial/internal/domain/follow/service"
	"microsocial/internal/domain/notification"
	userrepo "microsocial/internal/domain/user/repository"
	"microsocial/internal/pkg/middleware"
	"microsocial/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// FollowModule wires the follow graph.
type FollowModule struct{}

func init() {
	registry.Register(&FollowModule{})
}

func (m *FollowModule) Name() string {
	return "follow"
}

func (m *FollowModule) Priority() int {
	return 3
}

func (m *FollowModule) Init(ctx *registry.ModuleContext) error {
	followRepo := repository.NewFollowRepository(ctx.DB)
	userRepo := userrepo.NewUserRepository(ctx.DB)

	followService := service.NewFollowService(followRepo, userRepo, notification.Service())
	followHandler := handler.NewFollowHandler(followService)

	setupRoutes(ctx.Router, followHandler)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.FollowHandler) {
	users := r.Group("/api/users")
	{
		users.POST("/:id/follow", middleware.AuthMiddleware(), h.Toggle)
		users.GET("/:id/followers", middleware.OptionalAuthMiddleware(), h.Followers)
		users.GET("/:id/following", middleware.OptionalAuthMiddleware(), h.Following)
	}

	requests := r.Group("/api/follow/requests")
	requests.Use(middleware.AuthMiddleware())
	{
		requests.GET("", h.PendingRequests)
		requests.POST("/:followerId/accept", h.Accept)
		requests.POST("/:followerId/decline", h.Decline)
	}
}
