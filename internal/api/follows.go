package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chirp-app/chirp/internal/db"
	"github.com/chirp-app/chirp/pkg/logging"
)

// FollowAPI provides follow-graph endpoints
type FollowAPI struct {
	follows *db.FollowRepository
	logger  *zap.Logger
}

// NewFollowAPI creates a new follow API
func NewFollowAPI(follows *db.FollowRepository) *FollowAPI {
	return &FollowAPI{
		follows: follows,
		logger:  logging.WithComponent("api-follows"),
	}
}

// Follow handles PUT /api/follows/:name. Self-follows and unknown
// followees are silent no-ops, so the response is 204 either way.
func (a *FollowAPI) Follow(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	followee := c.Param("name")

	if err := a.follows.Follow(c.Request.Context(), caller, followee); err != nil {
		failStore(c, err)
		return
	}
	a.logger.Debug("Follow processed", zap.String("follower", caller), zap.String("followee", followee))
	c.Status(http.StatusNoContent)
}

// Unfollow handles DELETE /api/follows/:name. Removing an absent edge is
// a silent no-op, symmetric with Follow.
func (a *FollowAPI) Unfollow(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	followee := c.Param("name")

	if err := a.follows.Unfollow(c.Request.Context(), caller, followee); err != nil {
		failStore(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListFollowing handles GET /api/follows. The response lists the names
// the caller follows, alphabetically ordered.
func (a *FollowAPI) ListFollowing(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	names, err := a.follows.GetFollowingNames(c.Request.Context(), caller)
	if err != nil {
		failStore(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"following": names})
}

// IsFollowing handles GET /api/follows/:name
func (a *FollowAPI) IsFollowing(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	following, err := a.follows.IsFollowing(c.Request.Context(), caller, c.Param("name"))
	if err != nil {
		failStore(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"following": following})
}

// ListFollowers handles GET /api/authors/:name/followers
func (a *FollowAPI) ListFollowers(c *gin.Context) {
	names, err := a.follows.GetFollowerNames(c.Request.Context(), c.Param("name"))
	if err != nil {
		failStore(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"followers": names})
}
