package analytics

import (
	"math"
	"math/rand"
	"sync"

	"botusage/internal/events"
	"botusage/internal/models"
)

const (
	minActiveDays      = 4
	majorDays          = 3
	maxSampleMessages  = 30
	tokensPerBotReply  = 200
	costPer1KTokens    = 0.003
	syntheticErrorRate = 0.02
)

// RandSource picks days for synthetic activity. *rand.Rand satisfies it.
type RandSource interface {
	Perm(n int) []int
}

// lockedRand serialises access to a *rand.Rand so one source can serve
// concurrent requests.
type lockedRand struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewLockedRand returns a RandSource safe for concurrent use.
func NewLockedRand(seed int64) RandSource {
	return &lockedRand{rnd: rand.New(rand.NewSource(seed))}
}

func (l *lockedRand) Perm(n int) []int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rnd.Perm(n)
}

// Synthesize manufactures an illustrative activity pattern for a window with no
// measured conversations. With a sample conversation the activity is spread
// over randomly chosen days; without one a single fixed record is placed on
// the middle day.
func Synthesize(w Window, sample *events.ConversationMetrics, rnd RandSource) []models.DailyStat {
	dates := w.Dates()
	days := make([]models.DailyStat, len(dates))
	for i, date := range dates {
		days[i] = models.DailyStat{Date: date}
	}

	if sample == nil {
		days[len(days)/2] = fixedSampleDay(dates[len(days)/2])
		return days
	}

	durationMinutes := int(sample.DurationMs / 60000)
	if durationMinutes < 1 {
		durationMinutes = 1
	}
	estimatedMessages := durationMinutes * 2
	if estimatedMessages > maxSampleMessages {
		estimatedMessages = maxSampleMessages
	}
	userMessages := (estimatedMessages + 1) / 2
	botMessages := estimatedMessages - userMessages

	active := len(dates) / 2
	if active < minActiveDays {
		active = minActiveDays
	}
	if active > len(dates) {
		active = len(dates)
	}

	for rank, idx := range rnd.Perm(len(dates))[:active] {
		major := rank < majorDays
		conversations, users := 1, 1
		if major {
			conversations, users = 2, 3
		}

		d := &days[idx]
		d.ConversationCount = conversations
		d.MessageCount = conversations * estimatedMessages
		d.BotMessageCount = conversations * botMessages
		d.UserMessageCount = conversations * userMessages
		d.UserCount = users
		if rank == 0 {
			d.NewUserCount = 1
		}
		d.LLMCallCount = d.BotMessageCount
		d.LLMErrorCount = int(math.Floor(float64(d.LLMCallCount) * syntheticErrorRate))
		d.TokenUsage = int64(d.BotMessageCount * tokensPerBotReply)
		d.Cost = float64(d.TokenUsage) / 1000 * costPer1KTokens
	}
	return days
}

func fixedSampleDay(date string) models.DailyStat {
	return models.DailyStat{
		Date:              date,
		MessageCount:      30,
		BotMessageCount:   15,
		UserMessageCount:  15,
		ConversationCount: 1,
		UserCount:         1,
		NewUserCount:      1,
		LLMCallCount:      15,
		LLMErrorCount:     0,
		TokenUsage:        3000,
		Cost:              0.009,
	}
}

// syntheticUsers approximates the distinct-user total for generated days,
// which carry counts but no identities.
func syntheticUsers(days []models.DailyStat) int {
	n := 0
	for _, d := range days {
		n += d.UserCount
	}
	return n
}
