package admin

import (
	"microsocial/internal/domain/admin/handler"
	"microsocial/internal/domain/admin/repository"
	"microsocial/internal/domain/admin/service"
	grouprepo "microsocial/internal/domain/group/repository"
	postrepo "microsocial/internal/domain/post/repository"
	userrepo "microsocial/internal/domain/user/repository"
	"microsocial/internal/pkg/middleware"
	"microsocial/internal/pkg/registry"
)

// AdminModule wires the administration surface.
type AdminModule struct{}

func init() {
	registry.Register(&AdminModule{})
}

func (m *AdminModule) Name() string {
	return "admin"
}

func (m *AdminModule) Priority() int {
	return 7
}

func (m *AdminModule) Init(ctx *registry.ModuleContext) error {
	adminService := service.NewAdminService(
		repository.NewAdminRepository(ctx.DB),
		userrepo.NewUserRepository(ctx.DB),
		postrepo.NewPostRepository(ctx.DB),
		grouprepo.NewGroupRepository(ctx.DB),
	)
	adminHandler := handler.NewAdminHandler(adminService)

	admin := ctx.Router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.GET("/dashboard", adminHandler.Dashboard)
		admin.GET("/users", adminHandler.ListUsers)
		admin.DELETE("/users/:id", adminHandler.DeleteUser)
	}
	return nil
}
