package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/neticnz/matcher/internal/logger"
)

// autoMatch handles GET /api/cron/auto-match: one full pipeline run. A run
// only fails outright when the initial want load fails; per-want and
// per-batch failures are already absorbed into the counters.
func (r *Router) autoMatch(c *gin.Context) {
	summary, err := r.pipeline.Run(c.Request.Context())
	if err != nil {
		r.logger.Error("pipeline run failed", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "auto-match run failed",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"wants_searched": summary.WantsSearched,
		"new_matches":    summary.NewMatches,
		"emails_sent":    summary.EmailsSent,
	})
}
