package handler

import (
	"net/http"

	"anoa.com/communityforum/internal/middleware"
	home "anoa.com/communityforum/internal/modules/home/service"
	"anoa.com/communityforum/pkg/response"
	"github.com/gin-gonic/gin"
)

type HomeHandler struct {
	homeService home.HomeService
}

func NewHomeHandler(homeService home.HomeService) *HomeHandler {
	return &HomeHandler{homeService: homeService}
}

func (h *HomeHandler) Index(c *gin.Context) {
	overview, err := h.homeService.GetOverview(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.HTML(c, http.StatusOK, "home", gin.H{
		"latestSujets":    overview.LatestSujets,
		"topSujets":       overview.TopDiscussed,
		"latestMembers":   overview.LatestMembers,
		"isAuthenticated": middleware.CurrentUser(c) != nil,
	})
}

// Footer renders the footer on its own, for pages that load it separately.
func (h *HomeHandler) Footer(c *gin.Context) {
	response.HTML(c, http.StatusOK, "footer", nil)
}
