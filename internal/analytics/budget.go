package analytics

import (
	"errors"
	"fmt"
	"math"

	"botusage/internal/models"
)

const projectionDays = 30

// ErrInvalidBudget is returned by the budget write path for unusable limits
var ErrInvalidBudget = errors.New("invalid budget")

// ValidateSpendLimit checks a spend limit before it is persisted
func ValidateSpendLimit(limit float64) error {
	if math.IsNaN(limit) || math.IsInf(limit, 0) {
		return fmt.Errorf("%w: spend limit must be a finite number", ErrInvalidBudget)
	}
	if limit < 0 {
		return fmt.Errorf("%w: spend limit must not be negative, got %v", ErrInvalidBudget, limit)
	}
	return nil
}

// Project extrapolates a 30 day cost from the average daily cost of the window.
// The average divides by every calendar day, including days without activity.
func Project(totalCost float64, dayCount int, spendLimit float64) models.BudgetProjection {
	if dayCount < 1 {
		dayCount = 1
	}
	avg := totalCost / float64(dayCount)
	projected := avg * projectionDays

	divisor := spendLimit
	if divisor == 0 {
		divisor = 1
	}

	return models.BudgetProjection{
		SpendLimit:           spendLimit,
		AverageDailyCost:     avg,
		ProjectedMonthlyCost: projected,
		IsOverBudget:         projected > spendLimit,
		PercentOfLimit:       projected / divisor * 100,
	}
}
