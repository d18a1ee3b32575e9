package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/neticnz/matcher/internal/domain"
	"github.com/neticnz/matcher/internal/logger"
)

type createWantRequest struct {
	Title        string   `json:"title" binding:"required"`
	Description  string   `json:"description"`
	Category     string   `json:"category"`
	MaxBudget    *float64 `json:"max_budget"`
	Location     string   `json:"location" binding:"required"`
	ContactEmail string   `json:"contact_email" binding:"required,email"`
	ContactName  string   `json:"contact_name"`
	IsFree       bool     `json:"is_free"`
	AutoSearch   *bool    `json:"auto_search"`
}

// createWant handles POST /api/v1/wants.
func (r *Router) createWant(c *gin.Context) {
	var req createWantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	w, err := domain.NewWant(req.Title, req.Location, req.ContactEmail)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	w.Description = req.Description
	w.Category = req.Category
	w.ContactName = req.ContactName
	w.IsFree = req.IsFree
	if req.AutoSearch != nil {
		w.AutoSearch = *req.AutoSearch
	}
	if req.MaxBudget != nil {
		if err := w.SetMaxBudget(*req.MaxBudget); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	if err := r.wants.Create(c.Request.Context(), w); err != nil {
		r.logger.Error("failed to create want", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create want"})
		return
	}

	c.JSON(http.StatusCreated, w)
}

// listWants handles GET /api/v1/wants with optional status and email
// filters. Status defaults to active.
func (r *Router) listWants(c *gin.Context) {
	status := domain.WantStatus(c.DefaultQuery("status", string(domain.WantStatusActive)))
	email := c.Query("email")

	wants, err := r.wants.List(c.Request.Context(), status, email)
	if err != nil {
		r.logger.Error("failed to list wants", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch wants"})
		return
	}
	if wants == nil {
		wants = []domain.Want{}
	}

	c.JSON(http.StatusOK, wants)
}

// getWant handles GET /api/v1/wants/:id.
func (r *Router) getWant(c *gin.Context) {
	w, err := r.wants.GetByID(c.Request.Context(), c.Param("id"))
	if errors.Is(err, domain.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "want not found"})
		return
	}
	if err != nil {
		r.logger.Error("failed to get want", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch want"})
		return
	}

	c.JSON(http.StatusOK, w)
}

// updateWant handles PATCH /api/v1/wants/:id. Status changes (fulfilled,
// expired) arrive here through user actions; the pipeline never mutates a
// want.
func (r *Router) updateWant(c *gin.Context) {
	var upd domain.WantUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	w, err := r.wants.Update(c.Request.Context(), c.Param("id"), upd)
	if errors.Is(err, domain.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "want not found"})
		return
	}
	if err != nil {
		r.logger.Error("failed to update want", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update want"})
		return
	}

	c.JSON(http.StatusOK, w)
}

// resendUnnotified handles POST /api/v1/wants/:id/resend, the operator
// sweep for matches stuck unnotified after a failed send.
func (r *Router) resendUnnotified(c *gin.Context) {
	wantID := c.Param("id")

	resent, err := r.pipeline.ResendUnnotified(c.Request.Context(), wantID)
	if errors.Is(err, domain.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "want not found"})
		return
	}
	if err != nil {
		r.logger.Error("failed to resend unnotified matches",
			logger.String("want_id", wantID),
			logger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "resent": resent})
}
