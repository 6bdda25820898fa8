package models

// DailyStat holds the usage counters for one calendar day
type DailyStat struct {
	Date                        string  `json:"date"` // YYYY-MM-DD
	MessageCount                int     `json:"messageCount"`
	BotMessageCount             int     `json:"botMessageCount"`
	UserMessageCount            int     `json:"userMessageCount"`
	ConversationCount           int     `json:"conversationCount"`
	UserCount                   int     `json:"userCount"`
	NewUserCount                int     `json:"newUserCount"`
	LLMCallCount                int     `json:"llmCallCount"`
	LLMErrorCount               int     `json:"llmErrorCount"`
	TokenUsage                  int64   `json:"tokenUsage"`
	Cost                        float64 `json:"cost"`
	AverageConversationDuration float64 `json:"averageConversationDuration"` // milliseconds
}

// TotalStat is the window-wide rollup of the daily stats
type TotalStat struct {
	TotalConversations int     `json:"totalConversations"`
	TotalMessages      int     `json:"totalMessages"`
	TotalUsers         int     `json:"totalUsers"` // distinct across the window
	TotalTokens        int64   `json:"totalTokens"`
	TotalCost          float64 `json:"totalCost"`
	TotalLLMCalls      int     `json:"totalLlmCalls"`
	TotalLLMErrors     int     `json:"totalLlmErrors"`
	NewUsers           int     `json:"newUsers"`
}

// UsageReport is the charting payload for a project and date window
type UsageReport struct {
	ProjectID       string      `json:"projectId"`
	StartDate       string      `json:"startDate"`
	EndDate         string      `json:"endDate"`
	DailyStats      []DailyStat `json:"dailyStats"`
	TotalStats      TotalStat   `json:"totalStats"`
	AISpendLimit    float64     `json:"aiSpendLimit"`
	IsSynthetic     bool        `json:"isSynthetic"`     // illustrative data, not measured
	NewUsersTracked bool        `json:"newUsersTracked"` // new user counts come from a first-seen index
}

// BudgetProjection extrapolates the window's spend to 30 days
type BudgetProjection struct {
	SpendLimit           float64 `json:"spendLimit"`
	AverageDailyCost     float64 `json:"averageDailyCost"`
	ProjectedMonthlyCost float64 `json:"projectedMonthlyCost"`
	IsOverBudget         bool    `json:"isOverBudget"`
	PercentOfLimit       float64 `json:"percentOfLimit"`
}

// BudgetAlert is sent when a project's projection exceeds its spend limit
type BudgetAlert struct {
	ProjectID  string           `json:"projectId"`
	StartDate  string           `json:"startDate"`
	EndDate    string           `json:"endDate"`
	TotalCost  float64          `json:"totalCost"`
	Projection BudgetProjection `json:"projection"`
}

// UsageResponse represents the API response for usage statistics
// @Description Usage statistics response payload
type UsageResponse struct {
	Success bool         `json:"success" example:"true"`
	Usage   *UsageReport `json:"usage,omitempty"`
	Error   string       `json:"error,omitempty" example:""`
}

// BudgetResponse represents the API response for the budget widget
// @Description Budget projection response payload
type BudgetResponse struct {
	Success     bool              `json:"success" example:"true"`
	Budget      *BudgetProjection `json:"budget,omitempty"`
	IsSynthetic bool              `json:"isSynthetic,omitempty"`
	Error       string            `json:"error,omitempty" example:""`
}

// SpendLimitRequest is the body of the budget update endpoint
// @Description Spend limit update payload
type SpendLimitRequest struct {
	SpendLimit *float64 `json:"spendLimit" example:"50"`
}

// EventResponse represents the API response for event ingestion
// @Description Event ingestion response payload
type EventResponse struct {
	Success   bool   `json:"success" example:"true"`
	ID        string `json:"id,omitempty" example:"evt_123"`
	Kind      string `json:"kind,omitempty" example:"message_received"`
	Duplicate bool   `json:"duplicate,omitempty" example:"false"`
	Error     string `json:"error,omitempty" example:""`
}
