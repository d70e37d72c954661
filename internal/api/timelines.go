package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chirp-app/chirp/internal/timeline"
	"github.com/chirp-app/chirp/pkg/telemetry"
)

// TimelineAPI provides author and private timeline endpoints
type TimelineAPI struct {
	timelines *timeline.Service
}

// NewTimelineAPI creates a new timeline API
func NewTimelineAPI(timelines *timeline.Service) *TimelineAPI {
	return &TimelineAPI{timelines: timelines}
}

// AuthorTimeline handles GET /api/authors/:name/cheeps. Unknown authors
// yield an empty page, not an error.
func (a *TimelineAPI) AuthorTimeline(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "api.timeline.author")
	defer span.End()

	views, err := a.timelines.AuthorTimeline(ctx, c.Param("name"), pageParam(c))
	if err != nil {
		failStore(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cheeps": views, "page_size": timeline.PageSize})
}

// PrivateTimeline handles GET /api/timeline, the caller's own cheeps
// plus those of everyone they follow
func (a *TimelineAPI) PrivateTimeline(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "api.timeline.private")
	defer span.End()

	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	views, err := a.timelines.PrivateTimeline(ctx, caller, pageParam(c))
	if err != nil {
		failStore(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cheeps": views, "page_size": timeline.PageSize})
}
