package post

import (
	followrepo "microsocial/internal/domain/follow/repository"
	"microsocial/internal/domain/notification"
	"microsocial/internal/domain/post/handler"
	"microsocial/internal/domain/post/repository"
	"microsocial/internal/domain/post/service"
	userrepo "microsocial/internal/domain/user/repository"
	"microsocial/internal/pkg/middleware"
	"microsocial/internal/pkg/moderation"
	"microsocial/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// PostModule wires posts, the feed, comments, reactions and bookmarks.
type PostModule struct{}

func init() {
	registry.Register(&PostModule{})
}

func (m *PostModule) Name() string {
	return "post"
}

func (m *PostModule) Priority() int {
	return 4
}

func (m *PostModule) Init(ctx *registry.ModuleContext) error {
	postRepo := repository.NewPostRepository(ctx.DB)
	userRepo := userrepo.NewUserRepository(ctx.DB)
	followRepo := followrepo.NewFollowRepository(ctx.DB)

	postService := service.NewPostService(postRepo, userRepo, followRepo, notification.Service(), moderation.Global)
	postHandler := handler.NewPostHandler(postService)

	setupRoutes(ctx.Router, postHandler)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.PostHandler) {
	r.GET("/api/feed", middleware.OptionalAuthMiddleware(), h.Feed)

	posts := r.Group("/api/posts")
	{
		posts.GET("/:id", middleware.OptionalAuthMiddleware(), h.Get)
		posts.GET("/:id/comments", middleware.OptionalAuthMiddleware(), h.ListComments)

		authed := posts.Group("")
		authed.Use(middleware.AuthMiddleware())
		{
			authed.POST("", h.Create)
			authed.PUT("/:id", h.Update)
			authed.DELETE("/:id", h.Delete)
			authed.POST("/:id/reactions", h.React)
			authed.POST("/:id/comments", h.AddComment)
			authed.POST("/:id/save", h.Save)
			authed.DELETE("/:id/save", h.Unsave)
		}
	}

	comments := r.Group("/api/comments")
	comments.Use(middleware.AuthMiddleware())
	{
		comments.PUT("/:id", h.UpdateComment)
		comments.DELETE("/:id", h.DeleteComment)
	}

	r.GET("/api/saved", middleware.AuthMiddleware(), h.SavedPosts)
}
