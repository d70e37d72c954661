package api

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chirp-app/chirp/pkg/config"
	"github.com/chirp-app/chirp/pkg/logging"
)

// SessionAPI issues caller tokens. This is the minimal stand-in for the
// external identity capability; there is no credential check here.
type SessionAPI struct {
	auth   *config.AuthConfig
	logger *zap.Logger
}

// NewSessionAPI creates a new session API
func NewSessionAPI(auth *config.AuthConfig) *SessionAPI {
	return &SessionAPI{
		auth:   auth,
		logger: logging.WithComponent("api-session"),
	}
}

type loginRequest struct {
	Name string `json:"name"`
}

// Login handles POST /api/login
func (a *SessionAPI) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, "invalid request body")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" || utf8.RuneCountInString(name) > 64 {
		failValidation(c, "name must be 1-64 characters")
		return
	}

	token, err := IssueToken(a.auth, name)
	if err != nil {
		a.logger.Error("Failed to sign token", zap.Error(err))
		failStore(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"name": name, "token": token})
}
