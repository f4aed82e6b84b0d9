package notification

import (
	"microsocial/internal/domain/notification/handler"
	"microsocial/internal/domain/notification/repository"
	"microsocial/internal/domain/notification/service"
	"microsocial/internal/pkg/middleware"
	"microsocial/internal/pkg/push"
	"microsocial/internal/pkg/registry"
	"microsocial/internal/pkg/worker"
	"microsocial/pkg/cache"

	"github.com/gin-gonic/gin"
)

// NotificationModule wires in-app notifications and push delivery.
type NotificationModule struct{}

var svc service.NotificationService

// Service exposes the shared dispatcher to the modules that produce
// notifications. Valid after InitModules has run this module.
func Service() service.NotificationService {
	return svc
}

func init() {
	registry.Register(&NotificationModule{})
}

func (m *NotificationModule) Name() string {
	return "notification"
}

func (m *NotificationModule) Priority() int {
	// Before every module that dispatches notifications.
	return 2
}

func (m *NotificationModule) Init(ctx *registry.ModuleContext) error {
	repo := repository.NewNotificationRepository(ctx.DB)

	// Push is optional; without it notifications stay in-app only.
	var pool *worker.PushPool
	if push.GlobalPushService != nil {
		pool = worker.NewPushPool(push.GlobalPushService, 4, 1024)
		pool.Start()
	}

	svc = service.NewNotificationService(repo, cache.NewRedisCache(ctx.Redis), pool)
	notifHandler := handler.NewNotificationHandler(svc)

	setupRoutes(ctx.Router, notifHandler)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.NotificationHandler) {
	notifications := r.Group("/api/notifications")
	notifications.Use(middleware.AuthMiddleware())
	{
		notifications.GET("", h.List)
		notifications.GET("/unread-count", h.UnreadCount)
		notifications.POST("/:id/read", h.MarkRead)
		notifications.POST("/read-all", h.MarkAllRead)
		notifications.DELETE("/:id", h.Delete)
		notifications.DELETE("", h.DeleteAll)
	}
}
