package workspace

import (
	"errors"
	"fmt"

	"github.com/warp/tempwork/accounting"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrPersonNotFound is returned when a referenced person doesn't exist.
	ErrPersonNotFound = errors.New("person not found")

	// ErrContractNotFound is returned when a referenced contract doesn't
	// exist on the person.
	ErrContractNotFound = errors.New("contract not found")

	// ErrSessionNotFound is returned when a named session doesn't exist.
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidSessionName is returned for blank session names.
	ErrInvalidSessionName = errors.New("session name must not be empty")

	// ErrScenarioNotFound is returned for unknown demo scenarios.
	ErrScenarioNotFound = errors.New("scenario not found")
)

// NotFoundError names the missing record.
type NotFoundError struct {
	Kind error
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%v: %s", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return e.Kind
}

func notFound(kind error, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPersonNotFound) ||
		errors.Is(err, ErrContractNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrScenarioNotFound)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidSessionName) ||
		errors.Is(err, accounting.ErrInvalidLimit) ||
		errors.Is(err, accounting.ErrInvalidDate)
}
