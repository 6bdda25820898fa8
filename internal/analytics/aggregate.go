package analytics

import (
	"time"

	"botusage/internal/events"
	"botusage/internal/models"
)

// Aggregate computes the usage report for one project and window from an
// already fetched event set. Events outside the window are ignored. firstSeen
// maps user ids to their earliest appearance in the full history; pass nil
// when no such index exists and new user counts stay zero.
func Aggregate(projectID string, w Window, evs []events.Event, spendLimit float64, firstSeen map[string]time.Time) *models.UsageReport {
	acc := newAccumulator(w)
	for _, ev := range evs {
		acc.apply(ev)
	}

	days := acc.finish(firstSeen)
	return &models.UsageReport{
		ProjectID:       projectID,
		StartDate:       w.StartDate(),
		EndDate:         w.EndDate(),
		DailyStats:      days,
		TotalStats:      rollup(days, acc.users.total()),
		AISpendLimit:    spendLimit,
		NewUsersTracked: firstSeen != nil,
	}
}

// SyntheticReport builds a report flagged as illustrative from generated days
func SyntheticReport(projectID string, w Window, sample *events.ConversationMetrics, spendLimit float64, rnd RandSource) *models.UsageReport {
	days := Synthesize(w, sample, rnd)
	return &models.UsageReport{
		ProjectID:    projectID,
		StartDate:    w.StartDate(),
		EndDate:      w.EndDate(),
		DailyStats:   days,
		TotalStats:   rollup(days, syntheticUsers(days)),
		AISpendLimit: spendLimit,
		IsSynthetic:  true,
	}
}

// ActiveUsers returns the distinct user ids appearing in the window's events
func ActiveUsers(w Window, evs []events.Event) []string {
	acc := newAccumulator(w)
	for _, ev := range evs {
		acc.apply(ev)
	}
	return acc.users.users()
}
