package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chirp-app/chirp/pkg/logging"
)

// fail writes a JSON error body and stops the request
func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// failValidation redisplays the rejection reason to the caller
func failValidation(c *gin.Context, message string) {
	fail(c, http.StatusBadRequest, message)
}

// failStore reports an unhandled store failure. No retry policy exists;
// the request simply fails.
func failStore(c *gin.Context, err error) {
	logging.GetLogger().Error("Store failure", zap.Error(err))
	fail(c, http.StatusInternalServerError, "internal error")
}
