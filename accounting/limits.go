package accounting

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Day limits offered by the calculator. The algorithm itself accepts any
// positive limit.
const (
	Limit548     = 548
	Limit540     = 540
	DefaultLimit = Limit548
)

// Presets lists the limits users can choose from by default.
var Presets = []int{Limit548, Limit540}

// ValidateLimit checks that limit is positive and, when allowed is
// non-empty, one of the allowed values.
func ValidateLimit(limit int, allowed []int) error {
	if limit <= 0 {
		return &LimitError{Limit: limit}
	}
	if len(allowed) > 0 && !slices.Contains(allowed, limit) {
		return &LimitError{Limit: limit, Allowed: allowed}
	}
	return nil
}

var hundred = decimal.NewFromInt(100)

// Utilization returns the percentage of limit taken by used, rounded to
// two decimal places. It exceeds 100 once the limit is exceeded.
func Utilization(used, limit int) decimal.Decimal {
	if limit <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(used)).
		Mul(hundred).
		DivRound(decimal.NewFromInt(int64(limit)), 2)
}
