package handlers

import (
	"context"
	"net/http"
	"time"

	"botusage/internal/database"
	"botusage/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
)

var dbPingTimeout = 5 * time.Second

// HealthHandler handles basic health check requests
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} models.HealthResponse
// @Router /healthz [get]
func HealthHandler(version string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, models.HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC(),
			Version:   version,
		})
	}
}

// DBHealthHandler checks that the event store answers a read-only query
// @Summary Database health check
// @Tags health
// @Produce json
// @Success 200 {object} models.DBHealthResponse
// @Failure 503 {object} models.DBHealthResponse
// @Router /healthz/db [get]
func DBHealthHandler(db *sqlx.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		response := models.DBHealthResponse{
			Status:    "unhealthy",
			Timestamp: time.Now().UTC(),
		}

		if db == nil {
			response.Error = "Database connection not initialized"
			return c.JSON(http.StatusServiceUnavailable, response)
		}

		ctx, cancel := context.WithTimeout(c.Request().Context(), dbPingTimeout)
		defer cancel()

		start := time.Now()
		err := database.ExecuteReadOnlyPing(ctx, db)
		response.Latency = time.Since(start)

		if err != nil {
			response.Error = err.Error()
			return c.JSON(http.StatusServiceUnavailable, response)
		}

		response.Status = "healthy"
		response.Connected = true
		return c.JSON(http.StatusOK, response)
	}
}

// RootHandler handles requests to the root endpoint
func RootHandler(version string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"service": "Bot Usage Analytics API",
			"version": version,
			"status":  "running",
		})
	}
}
