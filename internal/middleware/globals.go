package middleware

import (
	statService "anoa.com/communityforum/internal/modules/stat/service"
	"anoa.com/communityforum/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Globals exposes the member count to every rendered page.
func Globals(stats statService.StatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := stats.GetTotalUsers(c.Request.Context())
		if err != nil {
			zerolog.Ctx(c.Request.Context()).Warn().Err(err).Msg("failed to count members")
		}
		c.Set(response.MemberCountKey, count)
		c.Next()
	}
}
