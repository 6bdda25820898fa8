package analytics

import (
	"math/rand"
	"sort"
	"sync"
	"testing"

	"botusage/internal/events"
	"botusage/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedPerm returns a preset permutation, padded with the remaining indexes
type fixedPerm []int

func (f fixedPerm) Perm(n int) []int {
	out := make([]int, 0, n)
	used := map[int]bool{}
	for _, i := range f {
		if i < n && !used[i] {
			out = append(out, i)
			used[i] = true
		}
	}
	for i := 0; i < n; i++ {
		if !used[i] {
			out = append(out, i)
		}
	}
	return out
}

func activeDays(days []models.DailyStat) []int {
	var idx []int
	for i, d := range days {
		if d.ConversationCount > 0 {
			idx = append(idx, i)
		}
	}
	return idx
}

func TestSynthesize_NoSample(t *testing.T) {
	tests := []struct {
		name   string
		start  string
		end    string
		middle int
	}{
		{name: "odd window", start: "2024-03-01", end: "2024-03-07", middle: 3},
		{name: "even window", start: "2024-03-01", end: "2024-03-04", middle: 2},
		{name: "single day", start: "2024-03-01", end: "2024-03-01", middle: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := mustWindow(t, tt.start, tt.end)
			days := Synthesize(w, nil, fixedPerm(nil))

			require.Len(t, days, w.Days())
			for i, d := range days {
				if i == tt.middle {
					continue
				}
				assert.Equal(t, models.DailyStat{Date: d.Date}, d, "day %d should be empty", i)
			}

			mid := days[tt.middle]
			assert.Equal(t, 30, mid.MessageCount)
			assert.Equal(t, 15, mid.BotMessageCount)
			assert.Equal(t, 15, mid.UserMessageCount)
			assert.Equal(t, 1, mid.UserCount)
			assert.Equal(t, 1, mid.NewUserCount)
			assert.Equal(t, 1, mid.ConversationCount)
			assert.Equal(t, 15, mid.LLMCallCount)
			assert.Equal(t, 0, mid.LLMErrorCount)
			assert.Equal(t, int64(3000), mid.TokenUsage)
			assert.Equal(t, 0.009, mid.Cost)
		})
	}
}

func TestSynthesize_FromSample(t *testing.T) {
	w := mustWindow(t, "2024-03-01", "2024-03-10")
	sample := &events.ConversationMetrics{DurationMs: 5 * 60000}

	days := Synthesize(w, sample, fixedPerm{9, 0, 4, 2, 7})

	assert.Equal(t, []int{0, 2, 4, 7, 9}, activeDays(days))

	for _, i := range []int{9, 0, 4} {
		d := days[i]
		assert.Equal(t, 2, d.ConversationCount, "major day %d", i)
		assert.Equal(t, 20, d.MessageCount)
		assert.Equal(t, 10, d.BotMessageCount)
		assert.Equal(t, 10, d.UserMessageCount)
		assert.Equal(t, 3, d.UserCount)
		assert.Equal(t, 10, d.LLMCallCount)
		assert.Equal(t, 0, d.LLMErrorCount)
		assert.Equal(t, int64(2000), d.TokenUsage)
		assert.InDelta(t, 0.006, d.Cost, 1e-12)
	}
	for _, i := range []int{2, 7} {
		d := days[i]
		assert.Equal(t, 1, d.ConversationCount, "minor day %d", i)
		assert.Equal(t, 10, d.MessageCount)
		assert.Equal(t, 1, d.UserCount)
		assert.Equal(t, int64(1000), d.TokenUsage)
	}

	assert.Equal(t, 1, days[9].NewUserCount)
	for i, d := range days {
		if i != 9 {
			assert.Equal(t, 0, d.NewUserCount)
		}
	}
}

func TestSynthesize_SampleShape(t *testing.T) {
	tests := []struct {
		name       string
		durationMs int64
		messages   int
		user       int
		bot        int
	}{
		{name: "sub-minute rounds up to one minute", durationMs: 1500, messages: 2, user: 1, bot: 1},
		{name: "seven minutes", durationMs: 7*60000 + 59999, messages: 14, user: 7, bot: 7},
		{name: "long conversation capped", durationMs: 45 * 60000, messages: 30, user: 15, bot: 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := mustWindow(t, "2024-03-01", "2024-03-08")
			days := Synthesize(w, &events.ConversationMetrics{DurationMs: tt.durationMs}, fixedPerm{5, 1, 3, 6})

			minor := days[6]
			assert.Equal(t, 1, minor.ConversationCount)
			assert.Equal(t, tt.messages, minor.MessageCount)
			assert.Equal(t, tt.user, minor.UserMessageCount)
			assert.Equal(t, tt.bot, minor.BotMessageCount)
		})
	}
}

func TestSynthesize_ActiveDayCount(t *testing.T) {
	tests := []struct {
		name   string
		start  string
		end    string
		active int
	}{
		{name: "short window uses every day", start: "2024-03-01", end: "2024-03-02", active: 2},
		{name: "minimum of four", start: "2024-03-01", end: "2024-03-07", active: 4},
		{name: "half of thirty", start: "2024-03-01", end: "2024-03-30", active: 15},
		{name: "half of thirty one", start: "2024-03-01", end: "2024-03-31", active: 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := mustWindow(t, tt.start, tt.end)
			days := Synthesize(w, &events.ConversationMetrics{DurationMs: 120000}, rand.New(rand.NewSource(7)))
			assert.Len(t, activeDays(days), tt.active)
			assert.Len(t, days, w.Days())
		})
	}
}

func TestSyntheticReport(t *testing.T) {
	w := mustWindow(t, "2024-03-01", "2024-03-07")

	report := SyntheticReport("p1", w, nil, 50, fixedPerm(nil))

	assert.True(t, report.IsSynthetic)
	assert.Equal(t, "p1", report.ProjectID)
	assert.Equal(t, 1, report.TotalStats.TotalConversations)
	assert.Equal(t, 30, report.TotalStats.TotalMessages)
	assert.Equal(t, 1, report.TotalStats.TotalUsers)
	assert.Equal(t, int64(3000), report.TotalStats.TotalTokens)
	assert.Equal(t, 1, report.TotalStats.NewUsers)
	assert.Equal(t, 50.0, report.AISpendLimit)
}

func TestLockedRand_ConcurrentPerm(t *testing.T) {
	rnd := NewLockedRand(42)
	var wg sync.WaitGroup
	perms := make([][]int, 16)
	for i := range perms {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			perms[i] = rnd.Perm(30)
		}(i)
	}
	wg.Wait()

	for _, p := range perms {
		require.Len(t, p, 30)
		sorted := append([]int(nil), p...)
		sort.Ints(sorted)
		for i, v := range sorted {
			assert.Equal(t, i, v)
		}
	}
}
