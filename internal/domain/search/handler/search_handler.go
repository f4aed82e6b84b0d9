package handler

import (
	"net/http"

	"microsocial/internal/domain/search/service"
	common "microsocial/internal/pkg/common"
	"microsocial/pkg/response"

	"github.com/gin-gonic/gin"
)

// SearchHandler serves cross-entity search.
type SearchHandler struct {
	service service.SearchService
}

func NewSearchHandler(service service.SearchService) *SearchHandler {
	return &SearchHandler{service: service}
}

// Search queries profiles, posts and groups. Private posts stay hidden
// from viewers the author has not accepted.
// @Summary Search
// @Tags Search
// @Param q query string true "Query"
// @Param type query string false "all | profiles | posts | groups"
// @Success 200 {object} response.Response
// @Router /search [get]
func (h *SearchHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "q is required")
		return
	}

	result, err := h.service.Search(query, c.DefaultQuery("type", service.ScopeAll),
		common.CurrentUserID(c), common.IsAdmin(c))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "Internal error")
		return
	}
	response.Success(c, result)
}
