package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/neticnz/matcher/internal/domain"
	"github.com/neticnz/matcher/internal/logger"
)

// listMatches handles GET /api/v1/matches?want_id=...
func (r *Router) listMatches(c *gin.Context) {
	wantID := c.Query("want_id")
	if wantID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "want_id required"})
		return
	}

	matches, err := r.matches.ListByWant(c.Request.Context(), wantID)
	if err != nil {
		r.logger.Error("failed to list matches", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch matches"})
		return
	}
	if matches == nil {
		matches = []domain.Match{}
	}

	c.JSON(http.StatusOK, matches)
}

type createMatchRequest struct {
	WantID   string  `json:"want_id" binding:"required"`
	Source   string  `json:"source" binding:"required"`
	Title    string  `json:"title" binding:"required"`
	Price    float64 `json:"price"`
	URL      string  `json:"url"`
	Location string  `json:"location"`
	ImageURL string  `json:"image_url"`
}

// createMatch handles POST /api/v1/matches: direct match submission with
// the same (want_id, url) dedup the pipeline uses. An existing match is
// reported, not treated as an error.
func (r *Router) createMatch(c *gin.Context) {
	var req createMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m, err := domain.NewMatch(req.WantID, req.Source, domain.Listing{
		Title:    req.Title,
		Price:    req.Price,
		URL:      req.URL,
		Location: req.Location,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := r.matches.CreateIfNew(c.Request.Context(), m)
	if err != nil {
		r.logger.Error("failed to create match", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create match"})
		return
	}
	if !created {
		c.JSON(http.StatusOK, gin.H{"message": "match already exists"})
		return
	}

	c.JSON(http.StatusCreated, m)
}
