package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"botusage/internal/analytics"
	"botusage/internal/events"
	"botusage/internal/models"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// UsageService is the analytics surface the project handlers need
type UsageService interface {
	Now() time.Time
	GetUsage(ctx context.Context, projectID string, w analytics.Window) (*models.UsageReport, error)
	GetBudget(ctx context.Context, projectID string, w analytics.Window) (*models.BudgetProjection, bool, error)
	SetSpendLimit(ctx context.Context, projectID string, limit float64) error
	RecordEvent(ctx context.Context, projectID string, raw events.Raw) (events.Event, bool, error)
}

// windowFromQuery reads start/end dates, falling back to a named period
func windowFromQuery(c echo.Context, now time.Time) (analytics.Window, error) {
	start, end := c.QueryParam("start"), c.QueryParam("end")
	if start != "" || end != "" {
		return analytics.ParseWindow(start, end)
	}

	period := c.QueryParam("period")
	if period == "" {
		period = analytics.PeriodLast7Days
	}
	return analytics.ResolvePeriod(period, now)
}

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, analytics.ErrInvalidWindow), errors.Is(err, analytics.ErrInvalidBudget),
		errors.Is(err, events.ErrUnrecognizedEventKind), errors.Is(err, events.ErrMalformedPayload):
		return http.StatusBadRequest
	case errors.Is(err, analytics.ErrIngestDisabled):
		return http.StatusNotImplemented
	case errors.Is(err, analytics.ErrUpstreamFetch):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// UsageHandler returns daily and total usage statistics for a project
// @Summary Get project usage
// @Description Get per-day and window-wide usage statistics for a project. Use start/end or a named period.
// @Tags analytics
// @Accept json
// @Produce json
// @Param projectId path string true "Project ID"
// @Param start query string false "Window start date (YYYY-MM-DD)"
// @Param end query string false "Window end date (YYYY-MM-DD)"
// @Param period query string false "Named period (today, yesterday, last_7_days, last_30_days)" default(last_7_days)
// @Success 200 {object} models.UsageResponse
// @Failure 400 {object} models.UsageResponse
// @Failure 502 {object} models.UsageResponse
// @Security BearerAuth
// @Router /api/projects/{projectId}/usage [get]
func UsageHandler(svc UsageService, logger zerolog.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		projectID := c.Param("projectId")

		w, err := windowFromQuery(c, svc.Now())
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.UsageResponse{
				Success: false,
				Error:   err.Error(),
			})
		}

		report, err := svc.GetUsage(c.Request().Context(), projectID, w)
		if err != nil {
			logger.Error().Err(err).Str("project_id", projectID).Msg("Failed to get usage")
			return c.JSON(statusFor(err), models.UsageResponse{
				Success: false,
				Error:   fmt.Sprintf("Failed to get usage: %v", err),
			})
		}

		return c.JSON(http.StatusOK, models.UsageResponse{
			Success: true,
			Usage:   report,
		})
	}
}

// BudgetHandler returns the 30-day spend projection for a project
// @Summary Get budget projection
// @Description Project the window's average daily AI cost over 30 days and compare it with the spend limit
// @Tags analytics
// @Accept json
// @Produce json
// @Param projectId path string true "Project ID"
// @Param start query string false "Window start date (YYYY-MM-DD)"
// @Param end query string false "Window end date (YYYY-MM-DD)"
// @Param period query string false "Named period (today, yesterday, last_7_days, last_30_days)" default(last_7_days)
// @Success 200 {object} models.BudgetResponse
// @Failure 400 {object} models.BudgetResponse
// @Failure 502 {object} models.BudgetResponse
// @Security BearerAuth
// @Router /api/projects/{projectId}/budget [get]
func BudgetHandler(svc UsageService, logger zerolog.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		projectID := c.Param("projectId")

		w, err := windowFromQuery(c, svc.Now())
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.BudgetResponse{
				Success: false,
				Error:   err.Error(),
			})
		}

		return budgetResponse(c, svc, logger, projectID, w)
	}
}

// UpdateBudgetHandler stores a project's monthly spend limit
// @Summary Set spend limit
// @Description Set the monthly AI spend limit of a project and return the updated projection
// @Tags analytics
// @Accept json
// @Produce json
// @Param projectId path string true "Project ID"
// @Param request body models.SpendLimitRequest true "New spend limit"
// @Param period query string false "Named period for the returned projection" default(last_7_days)
// @Success 200 {object} models.BudgetResponse
// @Failure 400 {object} models.BudgetResponse
// @Failure 502 {object} models.BudgetResponse
// @Security BearerAuth
// @Router /api/projects/{projectId}/budget [put]
func UpdateBudgetHandler(svc UsageService, logger zerolog.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		projectID := c.Param("projectId")

		var req models.SpendLimitRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, models.BudgetResponse{
				Success: false,
				Error:   "Invalid request body",
			})
		}
		if req.SpendLimit == nil {
			return c.JSON(http.StatusBadRequest, models.BudgetResponse{
				Success: false,
				Error:   "spendLimit is required",
			})
		}

		w, err := windowFromQuery(c, svc.Now())
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.BudgetResponse{
				Success: false,
				Error:   err.Error(),
			})
		}

		if err := svc.SetSpendLimit(c.Request().Context(), projectID, *req.SpendLimit); err != nil {
			logger.Error().Err(err).Str("project_id", projectID).Msg("Failed to set spend limit")
			return c.JSON(statusFor(err), models.BudgetResponse{
				Success: false,
				Error:   fmt.Sprintf("Failed to set spend limit: %v", err),
			})
		}

		return budgetResponse(c, svc, logger, projectID, w)
	}
}

// RecordEventHandler stores one bot lifecycle event for a project
// @Summary Record event
// @Description Validate and store a lifecycle event. Repeated event ids are acknowledged without being stored again.
// @Tags events
// @Accept json
// @Produce json
// @Param projectId path string true "Project ID"
// @Param event body events.Raw true "Lifecycle event"
// @Success 201 {object} models.EventResponse
// @Success 200 {object} models.EventResponse "Duplicate event"
// @Failure 400 {object} models.EventResponse
// @Security BearerAuth
// @Router /api/projects/{projectId}/events [post]
func RecordEventHandler(svc UsageService, logger zerolog.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		projectID := c.Param("projectId")

		var raw events.Raw
		if err := c.Bind(&raw); err != nil {
			return c.JSON(http.StatusBadRequest, models.EventResponse{
				Success: false,
				Error:   "Invalid request body",
			})
		}

		ev, inserted, err := svc.RecordEvent(c.Request().Context(), projectID, raw)
		if err != nil {
			status := statusFor(err)
			if status >= http.StatusInternalServerError {
				logger.Error().Err(err).Str("project_id", projectID).Msg("Failed to record event")
			}
			return c.JSON(status, models.EventResponse{
				Success: false,
				Error:   err.Error(),
			})
		}

		status := http.StatusCreated
		if !inserted {
			status = http.StatusOK
		}
		return c.JSON(status, models.EventResponse{
			Success:   true,
			ID:        ev.ID,
			Kind:      string(ev.Kind),
			Duplicate: !inserted,
		})
	}
}

func budgetResponse(c echo.Context, svc UsageService, logger zerolog.Logger, projectID string, w analytics.Window) error {
	projection, synthetic, err := svc.GetBudget(c.Request().Context(), projectID, w)
	if err != nil {
		logger.Error().Err(err).Str("project_id", projectID).Msg("Failed to project budget")
		return c.JSON(statusFor(err), models.BudgetResponse{
			Success: false,
			Error:   fmt.Sprintf("Failed to project budget: %v", err),
		})
	}

	return c.JSON(http.StatusOK, models.BudgetResponse{
		Success:     true,
		Budget:      projection,
		IsSynthetic: synthetic,
	})
}
