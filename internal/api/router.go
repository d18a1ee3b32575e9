// Package api provides the HTTP surface of the matcher service.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/neticnz/matcher/internal/config"
	"github.com/neticnz/matcher/internal/domain"
	"github.com/neticnz/matcher/internal/logger"
)

const (
	healthStatusHealthy  = "healthy"
	healthStatusDegraded = "degraded"
	healthCheckTimeout   = 2 * time.Second
	serviceVersion       = "1.0.0"
)

// PipelineRunner is the slice of the pipeline the API drives.
type PipelineRunner interface {
	Run(ctx context.Context) (domain.RunSummary, error)
	RunWant(ctx context.Context, wantID string) (newMatches, totalSearched int, err error)
	ResendUnnotified(ctx context.Context, wantID string) (int, error)
}

// WantStore is the want persistence the API needs.
type WantStore interface {
	Create(ctx context.Context, w *domain.Want) error
	GetByID(ctx context.Context, id string) (*domain.Want, error)
	List(ctx context.Context, status domain.WantStatus, email string) ([]domain.Want, error)
	Update(ctx context.Context, id string, upd domain.WantUpdate) (*domain.Want, error)
	Ping(ctx context.Context) error
}

// MatchStore is the match persistence the API needs.
type MatchStore interface {
	CreateIfNew(ctx context.Context, m *domain.Match) (bool, error)
	ListByWant(ctx context.Context, wantID string) ([]domain.Match, error)
}

// OfferStore is the offer persistence the API needs.
type OfferStore interface {
	Create(ctx context.Context, o *domain.Offer) error
	ListByWant(ctx context.Context, wantID string) ([]domain.Offer, error)
}

// OfferMailer notifies a want's owner about a direct offer.
type OfferMailer interface {
	SendOfferNotification(ctx context.Context, to, wantTitle, offererName, offererEmail, message string) error
}

// Router holds the API dependencies.
type Router struct {
	pipeline    PipelineRunner
	wants       WantStore
	matches     MatchStore
	offers      OfferStore
	offerMailer OfferMailer // nil disables offer emails
	redisClient *redis.Client
	registry    *prometheus.Registry
	cfg         *config.Config
	logger      logger.Logger
}

// RouterOptions collects the router dependencies.
type RouterOptions struct {
	Pipeline    PipelineRunner
	Wants       WantStore
	Matches     MatchStore
	Offers      OfferStore
	OfferMailer OfferMailer
	RedisClient *redis.Client
	Registry    *prometheus.Registry
	Config      *config.Config
	Logger      logger.Logger
}

// NewRouter creates a new API router.
func NewRouter(opts RouterOptions) *Router {
	return &Router{
		pipeline:    opts.Pipeline,
		wants:       opts.Wants,
		matches:     opts.Matches,
		offers:      opts.Offers,
		offerMailer: opts.OfferMailer,
		redisClient: opts.RedisClient,
		registry:    opts.Registry,
		cfg:         opts.Config,
		logger:      opts.Logger,
	}
}

// SetupRoutes builds the gin engine with all middleware and routes.
func (r *Router) SetupRoutes() *gin.Engine {
	if !r.cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware(r.cfg.Server.CORSOrigins))

	// Public, no auth
	router.GET("/health", r.healthCheck)
	if r.registry != nil {
		router.GET("/metrics", gin.WrapH(
			promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})))
	}

	// Trigger path: shared-secret gated, rejected before any work begins
	cron := router.Group("/api/cron", cronAuthMiddleware(r.cfg.Matcher.CronSecret))
	cron.GET("/auto-match", r.autoMatch)

	v1 := router.Group("/api/v1")

	wants := v1.Group("/wants")
	wants.POST("", r.createWant)
	wants.GET("", r.listWants)
	wants.GET("/:id", r.getWant)
	wants.PATCH("/:id", r.updateWant)
	wants.POST("/:id/resend", r.resendUnnotified)

	matches := v1.Group("/matches")
	matches.GET("", r.listMatches)
	matches.POST("", r.createMatch)

	offers := v1.Group("/offers")
	offers.GET("", r.listOffers)
	offers.POST("", r.createOffer)

	v1.POST("/search/:id", r.searchWant)

	return router
}

// healthCheck reports service and dependency health.
func (r *Router) healthCheck(c *gin.Context) {
	health := gin.H{
		"status":  healthStatusHealthy,
		"service": "matcher",
		"version": serviceVersion,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	dbConnected := true
	if err := r.wants.Ping(ctx); err != nil {
		dbConnected = false
		health["status"] = healthStatusDegraded
	}
	health["database"] = gin.H{"connected": dbConnected}

	if r.redisClient != nil {
		redisConnected := r.redisClient.Ping(ctx).Err() == nil
		health["redis"] = gin.H{"connected": redisConnected}
		if !redisConnected && health["status"] == healthStatusHealthy {
			health["status"] = healthStatusDegraded
		}
	}

	c.JSON(http.StatusOK, health)
}
