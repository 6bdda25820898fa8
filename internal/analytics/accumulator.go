package analytics

import (
	"time"

	"botusage/internal/events"
	"botusage/internal/models"
)

// accumulator folds classified events into one DailyStat per window day
type accumulator struct {
	window  Window
	dates   []string
	buckets map[string]*models.DailyStat
	users   *userTracker
	seen    map[string]struct{}
}

func newAccumulator(w Window) *accumulator {
	a := &accumulator{
		window:  w,
		dates:   w.Dates(),
		buckets: make(map[string]*models.DailyStat),
		users:   newUserTracker(),
		seen:    make(map[string]struct{}),
	}
	for _, date := range a.dates {
		a.buckets[date] = &models.DailyStat{Date: date}
	}
	return a
}

// apply adds one event to its day. It reports false for events outside the
// window and for redelivered event ids.
func (a *accumulator) apply(ev events.Event) bool {
	if !a.window.Contains(ev.Timestamp) {
		return false
	}
	if ev.ID != "" {
		if _, dup := a.seen[ev.ID]; dup {
			return false
		}
		a.seen[ev.ID] = struct{}{}
	}

	date := DateKey(ev.Timestamp)
	stat := a.buckets[date]

	switch {
	case ev.Completed != nil:
		m := ev.Completed.Metrics
		stat.ConversationCount++
		stat.MessageCount += m.MessageCount
		stat.BotMessageCount += m.BotMessageCount
		stat.UserMessageCount += m.UserMessageCount
		n := float64(stat.ConversationCount)
		stat.AverageConversationDuration = (stat.AverageConversationDuration*(n-1) + float64(m.DurationMs)) / n
	case ev.Message != nil:
		a.users.add(date, ev.Message.UserID)
	case ev.Usage != nil:
		stat.TokenUsage += ev.Usage.Tokens
		stat.Cost += ev.Usage.Cost
		stat.LLMCallCount++
	}
	return true
}

// finish fills the per-day user counts and returns the days in ascending order
func (a *accumulator) finish(firstSeen map[string]time.Time) []models.DailyStat {
	stats := make([]models.DailyStat, 0, len(a.dates))
	for _, date := range a.dates {
		stat := a.buckets[date]
		stat.UserCount = a.users.count(date)
		if firstSeen != nil {
			stat.NewUserCount = a.users.newUsers(date, firstSeen)
		}
		stats = append(stats, *stat)
	}
	return stats
}
