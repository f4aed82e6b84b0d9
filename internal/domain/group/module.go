package group

import (
	"microsocial/internal/domain/group/handler"
	"microsocial/internal/domain/group/repository"
	"microsocial/internal/domain/group/service"
	"microsocial/internal/domain/notification"
	userrepo "microsocial/internal/domain/user/repository"
	"microsocial/internal/pkg/middleware"
	"microsocial/internal/pkg/moderation"
	"microsocial/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// GroupModule wires groups, membership and group chat.
type GroupModule struct{}

func init() {
	registry.Register(&GroupModule{})
}

func (m *GroupModule) Name() string {
	return "group"
}

func (m *GroupModule) Priority() int {
	return 5
}

func (m *GroupModule) Init(ctx *registry.ModuleContext) error {
	groupRepo := repository.NewGroupRepository(ctx.DB)
	userRepo := userrepo.NewUserRepository(ctx.DB)

	groupService := service.NewGroupService(groupRepo, userRepo, notification.Service(), moderation.Global)
	groupHandler := handler.NewGroupHandler(groupService)

	setupRoutes(ctx.Router, groupHandler)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.GroupHandler) {
	groups := r.Group("/api/groups")
	{
		groups.GET("", h.List)
		groups.GET("/:id", middleware.OptionalAuthMiddleware(), h.Get)

		authed := groups.Group("")
		authed.Use(middleware.AuthMiddleware())
		{
			authed.POST("", h.Create)
			authed.PUT("/:id", h.Update)
			authed.DELETE("/:id", h.Delete)

			authed.GET("/:id/members", h.Members)
			authed.POST("/:id/join", h.Join)
			authed.POST("/:id/leave", h.Leave)
			authed.DELETE("/:id/members/:userId", h.Kick)
			authed.POST("/:id/members/:userId/promote", h.Promote)
			authed.POST("/:id/members/:userId/demote", h.Demote)

			authed.GET("/:id/requests", h.JoinRequests)
			authed.POST("/requests/:requestId/accept", h.AcceptRequest)
			authed.POST("/requests/:requestId/reject", h.RejectRequest)

			authed.GET("/:id/messages", h.Messages)
			authed.POST("/:id/messages", h.PostMessage)
			authed.PUT("/messages/:messageId", h.EditMessage)
			authed.DELETE("/messages/:messageId", h.DeleteMessage)
		}
	}
}
