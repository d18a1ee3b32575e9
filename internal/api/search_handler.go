package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/neticnz/matcher/internal/domain"
	"github.com/neticnz/matcher/internal/logger"
)

// searchWant handles POST /api/v1/search/:id — a user-triggered search for
// one want, regardless of its auto-search flag.
func (r *Router) searchWant(c *gin.Context) {
	wantID := c.Param("id")

	newMatches, totalSearched, err := r.pipeline.RunWant(c.Request.Context(), wantID)
	if errors.Is(err, domain.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "want not found"})
		return
	}
	if err != nil {
		r.logger.Error("manual search failed",
			logger.String("want_id", wantID),
			logger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"new_matches":    newMatches,
		"total_searched": totalSearched,
	})
}
