package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/chirp-app/chirp/pkg/config"
)

// callerKey is where the identity middleware stores the caller name.
const callerKey = "caller_name"

// Identity resolves the caller's name from a bearer token when one is
// supplied. The service never stores credentials; the token is only a
// signed carrier for the name the surrounding identity provider attests.
// Requests without a token pass through anonymous; requests with a bad
// token are rejected.
func Identity(cfg *config.AuthConfig) gin.HandlerFunc {
	secret := []byte(cfg.JWTSecret)
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			fail(c, http.StatusUnauthorized, "invalid Authorization header")
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return secret, nil
		})
		if err != nil || !token.Valid {
			fail(c, http.StatusUnauthorized, "invalid token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			fail(c, http.StatusUnauthorized, "invalid token claims")
			return
		}

		name, ok := claims["name"].(string)
		if !ok || name == "" {
			fail(c, http.StatusUnauthorized, "invalid name in token")
			return
		}

		c.Set(callerKey, name)
		c.Next()
	}
}

// CallerName returns the authenticated caller's name, if any
func CallerName(c *gin.Context) (string, bool) {
	name, ok := c.Get(callerKey)
	if !ok {
		return "", false
	}
	s, ok := name.(string)
	return s, ok && s != ""
}

// requireCaller returns the caller name or rejects the request before any
// store access happens
func requireCaller(c *gin.Context) (string, bool) {
	name, ok := CallerName(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "authentication required")
		return "", false
	}
	return name, true
}

// IssueToken signs a token carrying the given caller name
func IssueToken(cfg *config.AuthConfig, name string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"name": name,
		"exp":  time.Now().Add(cfg.TokenTTL).Unix(),
	})
	return token.SignedString([]byte(cfg.JWTSecret))
}
