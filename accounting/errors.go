package accounting

import (
	"errors"
	"fmt"
)

// The engine itself never fails: these errors belong to the input
// boundaries (date parsing, limit selection) that feed it.
var (
	// ErrInvalidDate is returned when a date string is neither YYYY-MM-DD
	// nor RFC 3339.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidLimit is returned when a day limit is not positive or not
	// one of the allowed presets.
	ErrInvalidLimit = errors.New("invalid day limit")
)

// LimitError provides details about a rejected limit.
type LimitError struct {
	Limit   int
	Allowed []int
}

func (e *LimitError) Error() string {
	if len(e.Allowed) == 0 {
		return fmt.Sprintf("invalid day limit %d: must be positive", e.Limit)
	}
	return fmt.Sprintf("invalid day limit %d: allowed %v", e.Limit, e.Allowed)
}

func (e *LimitError) Unwrap() error {
	return ErrInvalidLimit
}
