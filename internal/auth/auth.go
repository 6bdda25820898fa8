package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"botusage/internal/config"

	"github.com/labstack/echo/v4"
)

// Manager validates bearer tokens for project routes
type Manager struct {
	tokens [][]byte
}

// NewManager creates a new authentication manager from the configured API tokens
func NewManager(cfg *config.Config) *Manager {
	m := &Manager{}
	for _, token := range cfg.APITokens {
		m.tokens = append(m.tokens, []byte(token))
	}
	return m
}

// Enabled reports whether any token is configured
func (am *Manager) Enabled() bool {
	return len(am.tokens) > 0
}

// ValidateToken checks if a token is one of the configured API tokens
func (am *Manager) ValidateToken(token string) bool {
	if token == "" {
		return false
	}
	candidate := []byte(token)
	valid := false
	for _, t := range am.tokens {
		if subtle.ConstantTimeCompare(candidate, t) == 1 {
			valid = true
		}
	}
	return valid
}

// Middleware creates middleware for project route authentication. It passes
// every request through when no tokens are configured.
func Middleware(authManager *Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !authManager.Enabled() {
				return next(c)
			}

			token := c.Request().Header.Get("Authorization")
			token = strings.TrimPrefix(token, "Bearer ")

			if !authManager.ValidateToken(token) {
				return c.JSON(http.StatusUnauthorized, map[string]interface{}{
					"success": false,
					"error":   "Unauthorized",
				})
			}

			return next(c)
		}
	}
}
