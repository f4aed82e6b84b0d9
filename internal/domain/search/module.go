package search

import (
	followrepo "microsocial/internal/domain/follow/repository"
	grouprepo "microsocial/internal/domain/group/repository"
	postrepo "microsocial/internal/domain/post/repository"
	"microsocial/internal/domain/search/handler"
	"microsocial/internal/domain/search/service"
	userrepo "microsocial/internal/domain/user/repository"
	"microsocial/internal/pkg/middleware"
	"microsocial/internal/pkg/registry"
)

// SearchModule wires cross-entity search.
type SearchModule struct{}

func init() {
	registry.Register(&SearchModule{})
}

func (m *SearchModule) Name() string {
	return "search"
}

func (m *SearchModule) Priority() int {
	return 6
}

func (m *SearchModule) Init(ctx *registry.ModuleContext) error {
	searchService := service.NewSearchService(
		userrepo.NewUserRepository(ctx.DB),
		postrepo.NewPostRepository(ctx.DB),
		grouprepo.NewGroupRepository(ctx.DB),
		followrepo.NewFollowRepository(ctx.DB),
	)
	searchHandler := handler.NewSearchHandler(searchService)

	ctx.Router.GET("/api/search", middleware.OptionalAuthMiddleware(), searchHandler.Search)
	return nil
}
