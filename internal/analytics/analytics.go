// Package analytics turns bot lifecycle events into daily usage statistics
// and budget projections.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"botusage/internal/cache"
	"botusage/internal/events"
	"botusage/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	sampleCacheTTL = 10 * time.Minute
	alertCacheTTL  = 24 * time.Hour
)

var (
	// ErrUpstreamFetch wraps read failures of the event or budget store
	ErrUpstreamFetch = errors.New("upstream fetch failed")
	// ErrIngestDisabled is returned by RecordEvent when no sink is configured
	ErrIngestDisabled = errors.New("event ingestion is not configured")
)

// EventSource reads lifecycle events and history for a project
type EventSource interface {
	// FetchEvents returns raw events with from <= timestamp < to, in any order
	FetchEvents(ctx context.Context, projectID string, from, to time.Time) ([]events.Raw, error)
	// FetchConversationSample returns the metrics of the most recent completed
	// conversation in the project's history, or nil if there is none
	FetchConversationSample(ctx context.Context, projectID string) (*events.ConversationMetrics, error)
	// FirstSeen returns the earliest event time for each of the given users
	FirstSeen(ctx context.Context, projectID string, userIDs []string) (map[string]time.Time, error)
}

// BudgetStore persists per-project monthly spend limits
type BudgetStore interface {
	// FetchSpendLimit returns the stored limit and whether one is set
	FetchSpendLimit(ctx context.Context, projectID string) (float64, bool, error)
	SaveSpendLimit(ctx context.Context, projectID string, limit float64) error
}

// EventSink stores ingested events
type EventSink interface {
	// InsertEvent stores the event and reports false when its id already exists
	InsertEvent(ctx context.Context, projectID string, raw events.Raw, userID string) (bool, error)
}

// AlertLedger records which alerts were already sent
type AlertLedger interface {
	// Claim reports true if key was not claimed within ttl
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// Notifier delivers budget overrun alerts
type Notifier interface {
	SendBudgetAlert(alert models.BudgetAlert) error
}

// Options configures a Service
type Options struct {
	DefaultSpendLimit float64
	SyntheticFallback bool
	FetchTimeout      time.Duration
	Notifier          Notifier
	Alerts            AlertLedger
	Sink              EventSink
	Rand              RandSource
	Logger            zerolog.Logger
	Now               func() time.Time
}

// Service computes usage reports and budget projections on request
type Service struct {
	events  EventSource
	budgets BudgetStore
	opts    Options

	samples *cache.Cache[*events.ConversationMetrics]
}

// NewService creates a new analytics service
func NewService(source EventSource, budgets BudgetStore, opts Options) (*Service, error) {
	if source == nil {
		return nil, fmt.Errorf("event source is required for analytics service")
	}
	if budgets == nil {
		return nil, fmt.Errorf("budget store is required for analytics service")
	}
	if opts.DefaultSpendLimit < 0 {
		return nil, fmt.Errorf("default spend limit must not be negative")
	}
	if opts.Rand == nil {
		opts.Rand = NewLockedRand(time.Now().UnixNano())
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Alerts == nil {
		opts.Alerts = cache.NewMemoryLedger()
	}

	return &Service{
		events:  source,
		budgets: budgets,
		opts:    opts,
		samples: cache.New[*events.ConversationMetrics](),
	}, nil
}

// Now returns the service clock, used to resolve named periods
func (s *Service) Now() time.Time {
	return s.opts.Now()
}

// GetUsage aggregates the project's events over the window
func (s *Service) GetUsage(ctx context.Context, projectID string, w Window) (*models.UsageReport, error) {
	logger := s.opts.Logger.With().
		Str("project_id", projectID).
		Str("start", w.StartDate()).
		Str("end", w.EndDate()).
		Logger()

	limit, err := s.spendLimit(ctx, projectID)
	if err != nil {
		return s.fallbackOnError(logger, projectID, w, err)
	}

	raws, err := s.fetchEvents(ctx, projectID, w)
	if err != nil {
		return s.fallbackOnError(logger, projectID, w, err)
	}

	evs := make([]events.Event, 0, len(raws))
	skipped := 0
	for _, raw := range raws {
		ev, err := events.Classify(raw)
		if err != nil {
			skipped++
			logger.Warn().Err(err).Str("event_id", raw.ID).Str("event_type", raw.Type).Msg("Skipping event")
			continue
		}
		evs = append(evs, ev)
	}

	firstSeen := s.firstSeen(ctx, logger, projectID, w, evs)
	report := Aggregate(projectID, w, evs, limit, firstSeen)

	logger.Debug().
		Int("events", len(raws)).
		Int("skipped", skipped).
		Int("conversations", report.TotalStats.TotalConversations).
		Msg("Usage aggregated")

	if report.TotalStats.TotalConversations == 0 && s.opts.SyntheticFallback {
		sample := s.conversationSample(ctx, logger, projectID)
		logger.Info().Bool("sample", sample != nil).Msg("No conversations in window, serving synthetic activity")
		return SyntheticReport(projectID, w, sample, limit, s.opts.Rand), nil
	}

	return report, nil
}

// GetBudget projects the window's spend over 30 days and alerts on overrun
func (s *Service) GetBudget(ctx context.Context, projectID string, w Window) (*models.BudgetProjection, bool, error) {
	report, err := s.GetUsage(ctx, projectID, w)
	if err != nil {
		return nil, false, err
	}

	projection := Project(report.TotalStats.TotalCost, w.Days(), report.AISpendLimit)
	if projection.IsOverBudget && !report.IsSynthetic {
		s.alert(ctx, projectID, w, report.TotalStats.TotalCost, projection)
	}
	return &projection, report.IsSynthetic, nil
}

// SetSpendLimit validates and persists a project's monthly spend limit
func (s *Service) SetSpendLimit(ctx context.Context, projectID string, limit float64) error {
	if err := ValidateSpendLimit(limit); err != nil {
		return err
	}
	if err := s.budgets.SaveSpendLimit(ctx, projectID, limit); err != nil {
		return fmt.Errorf("failed to save spend limit: %w", err)
	}
	s.opts.Logger.Info().Str("project_id", projectID).Float64("spend_limit", limit).Msg("Spend limit updated")
	return nil
}

// RecordEvent validates and stores one lifecycle event. Events without an id
// are assigned one. It reports whether the event was new.
func (s *Service) RecordEvent(ctx context.Context, projectID string, raw events.Raw) (events.Event, bool, error) {
	if s.opts.Sink == nil {
		return events.Event{}, false, ErrIngestDisabled
	}
	if raw.ID == "" {
		raw.ID = uuid.NewString()
	}

	ev, err := events.Classify(raw)
	if err != nil {
		return events.Event{}, false, err
	}

	inserted, err := s.opts.Sink.InsertEvent(ctx, projectID, raw, ev.UserID())
	if err != nil {
		return events.Event{}, false, fmt.Errorf("failed to record event: %w", err)
	}
	if inserted && ev.Kind == events.KindConversationCompleted {
		s.samples.Delete(projectID)
	}

	s.opts.Logger.Debug().
		Str("project_id", projectID).
		Str("event_id", ev.ID).
		Str("event_type", string(ev.Kind)).
		Bool("duplicate", !inserted).
		Msg("Event recorded")
	return ev, inserted, nil
}

func (s *Service) spendLimit(ctx context.Context, projectID string) (float64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	limit, ok, err := s.budgets.FetchSpendLimit(ctx, projectID)
	if err != nil {
		return 0, fmt.Errorf("%w: spend limit: %w", ErrUpstreamFetch, err)
	}
	if !ok || limit < 0 {
		return s.opts.DefaultSpendLimit, nil
	}
	return limit, nil
}

func (s *Service) fetchEvents(ctx context.Context, projectID string, w Window) ([]events.Raw, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	from, to := w.Bounds()
	raws, err := s.events.FetchEvents(ctx, projectID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: events: %w", ErrUpstreamFetch, err)
	}
	return raws, nil
}

func (s *Service) firstSeen(ctx context.Context, logger zerolog.Logger, projectID string, w Window, evs []events.Event) map[string]time.Time {
	users := ActiveUsers(w, evs)
	if len(users) == 0 {
		return map[string]time.Time{}
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	seen, err := s.events.FirstSeen(ctx, projectID, users)
	if err != nil {
		logger.Warn().Err(err).Msg("First-seen lookup failed, new user counts unavailable")
		return nil
	}
	if seen == nil {
		seen = map[string]time.Time{}
	}
	return seen
}

func (s *Service) conversationSample(ctx context.Context, logger zerolog.Logger, projectID string) *events.ConversationMetrics {
	if sample, ok := s.samples.Get(projectID); ok {
		return sample
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	sample, err := s.events.FetchConversationSample(ctx, projectID)
	if err != nil {
		logger.Warn().Err(err).Msg("Conversation sample lookup failed")
		return nil
	}
	s.samples.Set(projectID, sample, sampleCacheTTL)
	return sample
}

func (s *Service) fallbackOnError(logger zerolog.Logger, projectID string, w Window, err error) (*models.UsageReport, error) {
	if !s.opts.SyntheticFallback {
		logger.Error().Err(err).Msg("Usage fetch failed")
		return nil, err
	}
	logger.Warn().Err(err).Msg("Usage fetch failed, serving synthetic activity")
	return SyntheticReport(projectID, w, nil, s.opts.DefaultSpendLimit, s.opts.Rand), nil
}

func (s *Service) alert(ctx context.Context, projectID string, w Window, totalCost float64, projection models.BudgetProjection) {
	if s.opts.Notifier == nil {
		return
	}
	logger := s.opts.Logger.With().Str("project_id", projectID).Logger()

	key := projectID + ":" + DateKey(s.opts.Now())
	claimed, err := s.opts.Alerts.Claim(ctx, key, alertCacheTTL)
	if err != nil {
		logger.Warn().Err(err).Msg("Alert ledger unavailable, skipping budget alert")
		return
	}
	if !claimed {
		return
	}

	alert := models.BudgetAlert{
		ProjectID:  projectID,
		StartDate:  w.StartDate(),
		EndDate:    w.EndDate(),
		TotalCost:  totalCost,
		Projection: projection,
	}
	if err := s.opts.Notifier.SendBudgetAlert(alert); err != nil {
		if err := s.opts.Alerts.Release(ctx, key); err != nil {
			logger.Warn().Err(err).Msg("Failed to release alert claim")
		}
		logger.Warn().Err(err).Msg("Failed to send budget alert")
		return
	}
	logger.Info().
		Float64("projected_monthly_cost", projection.ProjectedMonthlyCost).
		Float64("spend_limit", projection.SpendLimit).
		Msg("Budget alert sent")
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.FetchTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opts.FetchTimeout)
}
