package analytics

import "botusage/internal/models"

// rollup sums the daily records into window totals. distinctUsers is the size
// of the window-wide user set, never the sum of daily user counts.
func rollup(days []models.DailyStat, distinctUsers int) models.TotalStat {
	total := models.TotalStat{TotalUsers: distinctUsers}
	for _, d := range days {
		total.TotalConversations += d.ConversationCount
		total.TotalMessages += d.MessageCount
		total.TotalTokens += d.TokenUsage
		total.TotalCost += d.Cost
		total.TotalLLMCalls += d.LLMCallCount
		total.TotalLLMErrors += d.LLMErrorCount
		total.NewUsers += d.NewUserCount
	}
	return total
}
