package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/neticnz/matcher/internal/domain"
	"github.com/neticnz/matcher/internal/logger"
)

// listOffers handles GET /api/v1/offers?want_id=...
func (r *Router) listOffers(c *gin.Context) {
	wantID := c.Query("want_id")
	if wantID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "want_id required"})
		return
	}

	offers, err := r.offers.ListByWant(c.Request.Context(), wantID)
	if err != nil {
		r.logger.Error("failed to list offers", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch offers"})
		return
	}
	if offers == nil {
		offers = []domain.Offer{}
	}

	c.JSON(http.StatusOK, offers)
}

type createOfferRequest struct {
	WantID       string `json:"want_id" binding:"required"`
	OffererName  string `json:"offerer_name" binding:"required"`
	OffererEmail string `json:"offerer_email" binding:"required,email"`
	OffererPhone string `json:"offerer_phone"`
	Message      string `json:"message"`
}

// createOffer handles POST /api/v1/offers: records the offer and emails
// the want's owner. A failed email does not fail the request; the offer is
// already persisted.
func (r *Router) createOffer(c *gin.Context) {
	var req createOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	w, err := r.wants.GetByID(c.Request.Context(), req.WantID)
	if errors.Is(err, domain.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "want not found"})
		return
	}
	if err != nil {
		r.logger.Error("failed to load want for offer", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create offer"})
		return
	}

	o, err := domain.NewOffer(req.WantID, req.OffererName, req.OffererEmail)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	o.OffererPhone = req.OffererPhone
	o.Message = req.Message

	if err := r.offers.Create(c.Request.Context(), o); err != nil {
		r.logger.Error("failed to create offer", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create offer"})
		return
	}

	if r.offerMailer != nil && w.ContactEmail != "" {
		err := r.offerMailer.SendOfferNotification(c.Request.Context(),
			w.ContactEmail, w.Title, o.OffererName, o.OffererEmail, o.Message)
		if err != nil {
			r.logger.Warn("offer created but notification failed",
				logger.String("offer_id", o.ID),
				logger.Error(err),
			)
		}
	}

	c.JSON(http.StatusCreated, o)
}
