package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chirp-app/chirp/internal/db"
	"github.com/chirp-app/chirp/internal/models"
	"github.com/chirp-app/chirp/internal/timeline"
	"github.com/chirp-app/chirp/pkg/logging"
	"github.com/chirp-app/chirp/pkg/telemetry"
)

// CheepAPI provides cheep-related endpoints
type CheepAPI struct {
	cheeps    *db.CheepRepository
	timelines *timeline.Service
	uploads   *uploadStore
	logger    *zap.Logger
}

// NewCheepAPI creates a new cheep API
func NewCheepAPI(cheeps *db.CheepRepository, timelines *timeline.Service, uploads *uploadStore) *CheepAPI {
	return &CheepAPI{
		cheeps:    cheeps,
		timelines: timelines,
		uploads:   uploads,
		logger:    logging.WithComponent("api-cheeps"),
	}
}

type createCheepRequest struct {
	Text string `json:"text"`
}

type updateCheepRequest struct {
	Text string `json:"text"`
}

// List handles GET /api/cheeps, the paginated public timeline
func (a *CheepAPI) List(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "api.cheeps.list")
	defer span.End()

	views, err := a.timelines.PublicTimeline(ctx, pageParam(c))
	if err != nil {
		failStore(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cheeps": views, "page_size": timeline.PageSize})
}

// Get handles GET /api/cheeps/:id
func (a *CheepAPI) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		failValidation(c, "invalid cheep id")
		return
	}

	record, err := a.cheeps.GetByID(c.Request.Context(), id)
	if err != nil {
		failStore(c, err)
		return
	}
	if record == nil {
		fail(c, http.StatusNotFound, "cheep not found")
		return
	}
	c.JSON(http.StatusOK, record)
}

// Create handles POST /api/cheeps. Accepts either a JSON body with text
// or a multipart form with text and an optional image. Unauthenticated
// callers are rejected before any store access; empty text passes only
// when an image accompanies it.
func (a *CheepAPI) Create(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "api.cheeps.create")
	defer span.End()

	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var text, imageURL string
	multipartForm := strings.HasPrefix(c.ContentType(), "multipart/form-data")
	if multipartForm {
		text = strings.TrimSpace(c.PostForm("text"))
	} else {
		var req createCheepRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			failValidation(c, "invalid request body")
			return
		}
		text = strings.TrimSpace(req.Text)
	}

	// Text is checked before the image touches disk, so a rejected
	// request leaves no orphaned file behind.
	if utf8.RuneCountInString(text) > models.MaxCheepLength {
		failValidation(c, "cheeps cannot be longer than 160 characters")
		return
	}

	if multipartForm {
		if header, err := c.FormFile("image"); err == nil && header != nil {
			if err := a.uploads.validate(header); err != nil {
				failValidation(c, err.Error())
				return
			}
			url, err := a.uploads.save(header)
			if err != nil {
				a.logger.Error("Failed to save upload", zap.Error(err))
				failStore(c, err)
				return
			}
			imageURL = url
		}
	}

	if text == "" && imageURL == "" {
		failValidation(c, "you must either write a cheep or attach an image")
		return
	}

	cheep, err := a.cheeps.Store(ctx, text, caller, time.Now().UTC(), imageURL)
	if err != nil {
		failStore(c, err)
		return
	}
	a.timelines.InvalidatePublic()

	a.logger.Debug("Cheep stored", zap.String("author", caller), zap.Int64("id", cheep.ID))
	c.JSON(http.StatusCreated, gin.H{
		"id":         cheep.ID,
		"text":       cheep.Text,
		"image_url":  cheep.ImageURL,
		"author":     caller,
		"created_at": cheep.CreatedAt,
	})
}

// Update handles PUT /api/cheeps/:id, the ad hoc text-update path.
// Callers may only edit their own cheeps.
func (a *CheepAPI) Update(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		failValidation(c, "invalid cheep id")
		return
	}

	var req updateCheepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, "invalid request body")
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		failValidation(c, "you must write something to cheep")
		return
	}
	if utf8.RuneCountInString(text) > models.MaxCheepLength {
		failValidation(c, "cheeps cannot be longer than 160 characters")
		return
	}

	record, err := a.cheeps.GetByID(c.Request.Context(), id)
	if err != nil {
		failStore(c, err)
		return
	}
	if record == nil {
		fail(c, http.StatusNotFound, "cheep not found")
		return
	}
	if record.AuthorName != caller {
		fail(c, http.StatusForbidden, "cannot edit another author's cheep")
		return
	}

	if _, err := a.cheeps.UpdateText(c.Request.Context(), id, text); err != nil {
		failStore(c, err)
		return
	}
	a.timelines.InvalidatePublic()
	c.Status(http.StatusNoContent)
}

// pageParam reads the page query parameter. Absent or malformed values
// mean page one.
func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil {
		return 1
	}
	return page
}
