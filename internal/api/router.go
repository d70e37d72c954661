package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chirp-app/chirp/internal/cache"
	"github.com/chirp-app/chirp/internal/db"
	"github.com/chirp-app/chirp/internal/timeline"
	"github.com/chirp-app/chirp/pkg/config"
	"github.com/chirp-app/chirp/pkg/logging"
)

// Router sets up API routes
type Router struct {
	cfg    *config.Config
	db     *db.DB
	cache  *cache.Cache
	logger *zap.Logger

	session   *SessionAPI
	cheeps    *CheepAPI
	follows   *FollowAPI
	timelines *TimelineAPI
}

// NewRouter creates a new API router
func NewRouter(database *db.DB, redisCache *cache.Cache, cfg *config.Config) *Router {
	repo := db.NewRepository(database.DB)
	cheepRepo := db.NewCheepRepository(repo)
	followRepo := db.NewFollowRepository(repo)

	var pages timeline.PageCache
	if redisCache != nil {
		pages = redisCache
	}
	timelineSvc := timeline.NewService(cheepRepo, pages)
	uploads := newUploadStore(&cfg.Uploads)

	return &Router{
		cfg:       cfg,
		db:        database,
		cache:     redisCache,
		logger:    logging.WithComponent("api-router"),
		session:   NewSessionAPI(&cfg.Auth),
		cheeps:    NewCheepAPI(cheepRepo, timelineSvc, uploads),
		follows:   NewFollowAPI(followRepo),
		timelines: NewTimelineAPI(timelineSvc),
	}
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check endpoints
	engine.GET("/health", r.healthHandler)
	engine.GET("/.well-known/healthcheck.json", r.healthHandler)

	// Uploaded cheep images
	engine.Static("/uploads", r.cfg.Uploads.Dir)

	// Login stays outside the identity middleware so a stale token in the
	// Authorization header cannot block getting a fresh one.
	engine.POST("/api/login", r.session.Login)

	api := engine.Group("/api", Identity(&r.cfg.Auth))

	api.GET("/cheeps", r.cheeps.List)
	api.GET("/cheeps/:id", r.cheeps.Get)
	api.POST("/cheeps", r.cheeps.Create)
	api.PUT("/cheeps/:id", r.cheeps.Update)

	api.GET("/authors/:name/cheeps", r.timelines.AuthorTimeline)
	api.GET("/authors/:name/followers", r.follows.ListFollowers)
	api.GET("/timeline", r.timelines.PrivateTimeline)

	api.GET("/follows", r.follows.ListFollowing)
	api.GET("/follows/:name", r.follows.IsFollowing)
	api.PUT("/follows/:name", r.follows.Follow)
	api.DELETE("/follows/:name", r.follows.Unfollow)
}

// healthHandler handles health check requests
func (r *Router) healthHandler(c *gin.Context) {
	if err := r.db.Health(c.Request.Context()); err != nil {
		r.logger.Error("Database health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "UNAVAILABLE",
			"service": "chirp-api",
		})
		return
	}

	resp := gin.H{
		"status":  "OK",
		"service": "chirp-api",
	}
	if r.cache != nil {
		if err := r.cache.Health(c.Request.Context()); err != nil {
			r.logger.Warn("Redis health check failed", zap.Error(err))
			resp["cache"] = "degraded"
		}
	}
	c.JSON(http.StatusOK, resp)
}
