package analytics

import (
	"testing"
	"time"

	"botusage/internal/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(date string, hour int) time.Time {
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		panic(err)
	}
	return d.Add(time.Duration(hour) * time.Hour)
}

func completed(id, date string, messages int, durationMs int64) events.Event {
	return events.Event{
		Kind:      events.KindConversationCompleted,
		ID:        id,
		Timestamp: at(date, 12),
		Completed: &events.ConversationCompleted{
			ConversationID: "conv-" + id,
			Metrics: events.ConversationMetrics{
				MessageCount:     messages,
				UserMessageCount: messages / 2,
				BotMessageCount:  messages - messages/2,
				DurationMs:       durationMs,
			},
		},
	}
}

func message(id, date, userID string) events.Event {
	return events.Event{
		Kind:      events.KindMessageReceived,
		ID:        id,
		Timestamp: at(date, 9),
		Message:   &events.MessageReceived{ConversationID: "c", MessageID: id, UserID: userID},
	}
}

func usage(id, date string, tokens int64, cost float64) events.Event {
	return events.Event{
		Kind:      events.KindTokenUsage,
		ID:        id,
		Timestamp: at(date, 15),
		Usage:     &events.TokenUsage{ConversationID: "c", Tokens: tokens, Cost: cost, Model: "gpt-4o-mini"},
	}
}

func mustWindow(t *testing.T, start, end string) Window {
	t.Helper()
	w, err := ParseWindow(start, end)
	require.NoError(t, err)
	return w
}

func TestAggregate_WindowCompleteness(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		days  int
	}{
		{name: "single day", start: "2024-03-10", end: "2024-03-10", days: 1},
		{name: "one week", start: "2024-03-01", end: "2024-03-07", days: 7},
		{name: "across leap day", start: "2024-02-27", end: "2024-03-02", days: 5},
		{name: "across year end", start: "2023-12-30", end: "2024-01-02", days: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := mustWindow(t, tt.start, tt.end)
			report := Aggregate("p1", w, nil, 50, nil)

			require.Len(t, report.DailyStats, tt.days)
			assert.Equal(t, tt.start, report.DailyStats[0].Date)
			assert.Equal(t, tt.end, report.DailyStats[tt.days-1].Date)

			seen := map[string]bool{}
			for i, d := range report.DailyStats {
				assert.False(t, seen[d.Date], "duplicate date %s", d.Date)
				seen[d.Date] = true
				if i > 0 {
					assert.Less(t, report.DailyStats[i-1].Date, d.Date)
				}
			}
		})
	}
}

func TestAggregate_SingleDay(t *testing.T) {
	w := mustWindow(t, "2024-03-10", "2024-03-10")
	evs := []events.Event{
		completed("e1", "2024-03-10", 10, 600000),
		usage("e2", "2024-03-10", 500, 1.5),
	}

	report := Aggregate("p1", w, evs, 50, nil)

	require.Len(t, report.DailyStats, 1)
	day := report.DailyStats[0]
	assert.Equal(t, 1, day.ConversationCount)
	assert.Equal(t, 10, day.MessageCount)
	assert.Equal(t, 5, day.UserMessageCount)
	assert.Equal(t, 5, day.BotMessageCount)
	assert.Equal(t, 600000.0, day.AverageConversationDuration)
	assert.Equal(t, int64(500), day.TokenUsage)
	assert.Equal(t, 1.5, day.Cost)
	assert.Equal(t, 1, day.LLMCallCount)

	total := report.TotalStats
	assert.Equal(t, 1, total.TotalConversations)
	assert.Equal(t, 10, total.TotalMessages)
	assert.Equal(t, int64(500), total.TotalTokens)
	assert.Equal(t, 1.5, total.TotalCost)
	assert.Equal(t, 1, total.TotalLLMCalls)
	assert.Equal(t, 50.0, report.AISpendLimit)
	assert.False(t, report.IsSynthetic)
	assert.False(t, report.NewUsersTracked)
}

func TestAggregate_DistinctUsers(t *testing.T) {
	w := mustWindow(t, "2024-03-01", "2024-03-03")
	evs := []events.Event{
		message("m1", "2024-03-01", "alice"),
		message("m2", "2024-03-01", "alice"),
		message("m3", "2024-03-01", "bob"),
		message("m4", "2024-03-03", "alice"),
	}

	report := Aggregate("p1", w, evs, 50, nil)

	assert.Equal(t, 2, report.DailyStats[0].UserCount)
	assert.Equal(t, 0, report.DailyStats[1].UserCount)
	assert.Equal(t, 1, report.DailyStats[2].UserCount)
	assert.Equal(t, 2, report.TotalStats.TotalUsers)
}

func TestAggregate_RunningAverageIsOrderIndependent(t *testing.T) {
	w := mustWindow(t, "2024-03-10", "2024-03-10")
	orders := [][]int64{
		{10, 20, 30},
		{30, 10, 20},
		{20, 30, 10},
		{30, 20, 10},
	}

	for _, durations := range orders {
		var evs []events.Event
		for i, d := range durations {
			evs = append(evs, completed(string(rune('a'+i)), "2024-03-10", 2, d))
		}
		report := Aggregate("p1", w, evs, 50, nil)
		assert.Equal(t, 20.0, report.DailyStats[0].AverageConversationDuration, "order %v", durations)
		assert.Equal(t, 3, report.DailyStats[0].ConversationCount)
	}
}

func TestAggregate_IgnoresEventsOutsideWindow(t *testing.T) {
	w := mustWindow(t, "2024-03-10", "2024-03-11")
	evs := []events.Event{
		usage("e1", "2024-03-09", 100, 1),
		usage("e2", "2024-03-10", 200, 2),
		usage("e3", "2024-03-12", 300, 3),
	}

	report := Aggregate("p1", w, evs, 50, nil)

	assert.Equal(t, int64(200), report.TotalStats.TotalTokens)
	assert.Equal(t, 2.0, report.TotalStats.TotalCost)
}

func TestAggregate_IgnoresRedeliveredEvents(t *testing.T) {
	w := mustWindow(t, "2024-03-10", "2024-03-10")
	evs := []events.Event{
		completed("e1", "2024-03-10", 4, 100),
		completed("e1", "2024-03-10", 4, 100),
		completed("e2", "2024-03-10", 4, 300),
		usage("", "2024-03-10", 10, 0.5),
		usage("", "2024-03-10", 10, 0.5),
	}

	report := Aggregate("p1", w, evs, 50, nil)

	day := report.DailyStats[0]
	assert.Equal(t, 2, day.ConversationCount)
	assert.Equal(t, 200.0, day.AverageConversationDuration)
	// events without an id cannot be deduplicated
	assert.Equal(t, int64(20), day.TokenUsage)
}

func TestAggregate_NewUsersFromFirstSeen(t *testing.T) {
	w := mustWindow(t, "2024-03-01", "2024-03-02")
	evs := []events.Event{
		message("m1", "2024-03-01", "alice"),
		message("m2", "2024-03-02", "alice"),
		message("m3", "2024-03-02", "bob"),
		message("m4", "2024-03-02", "carol"),
	}
	firstSeen := map[string]time.Time{
		"alice": at("2024-03-01", 9),
		"bob":   at("2024-03-02", 9),
		"carol": at("2024-01-15", 9),
	}

	report := Aggregate("p1", w, evs, 50, firstSeen)

	assert.True(t, report.NewUsersTracked)
	assert.Equal(t, 1, report.DailyStats[0].NewUserCount)
	assert.Equal(t, 1, report.DailyStats[1].NewUserCount)
	assert.Equal(t, 2, report.TotalStats.NewUsers)
	assert.Equal(t, 3, report.TotalStats.TotalUsers)
}

func TestAggregate_ConversationStartedChangesNoCounter(t *testing.T) {
	w := mustWindow(t, "2024-03-10", "2024-03-10")
	evs := []events.Event{{
		Kind:      events.KindConversationStarted,
		ID:        "s1",
		Timestamp: at("2024-03-10", 8),
		Started:   &events.ConversationStarted{ConversationID: "c1", UserID: "alice", Channel: "web"},
	}}

	report := Aggregate("p1", w, evs, 50, nil)

	assert.Equal(t, 0, report.DailyStats[0].ConversationCount)
	assert.Equal(t, 0, report.DailyStats[0].UserCount)
	assert.Equal(t, 0, report.TotalStats.TotalUsers)
}

func TestAggregate_Idempotent(t *testing.T) {
	w := mustWindow(t, "2024-03-01", "2024-03-07")
	evs := []events.Event{
		completed("e1", "2024-03-01", 6, 1000),
		completed("e2", "2024-03-03", 8, 5000),
		message("m1", "2024-03-03", "alice"),
		message("m2", "2024-03-05", "bob"),
		usage("u1", "2024-03-05", 1200, 0.24),
	}

	first := Aggregate("p1", w, evs, 50, nil)
	second := Aggregate("p1", w, evs, 50, nil)

	assert.Equal(t, first.DailyStats, second.DailyStats)
	assert.Equal(t, first.TotalStats, second.TotalStats)
}

func TestActiveUsers(t *testing.T) {
	w := mustWindow(t, "2024-03-01", "2024-03-02")
	evs := []events.Event{
		message("m1", "2024-03-01", "bob"),
		message("m2", "2024-03-02", "alice"),
		message("m3", "2024-03-02", "bob"),
		message("m4", "2024-03-05", "zed"),
	}

	assert.Equal(t, []string{"alice", "bob"}, ActiveUsers(w, evs))
}
