/*
store.go - Persistence interface for the calculator workspace

PURPOSE:
  Defines the interface between the workspace service and the database.
  The service builds a complete new snapshot of a person on every edit and
  hands it to the Store; the Store never merges partial updates.

KEY TYPES:
  AppState: all persons plus the selected day limit
  Session:  a named, timestamped copy of an AppState

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite, used by the server and CLI
  - store/memory/memory.go: In-memory for testing

LOOKUP CONVENTION:
  Get* methods return (nil, nil) when the record doesn't exist. The service
  turns that into a NotFoundError.

SEE ALSO:
  - service.go: the only caller
*/
package workspace

import (
	"context"
	"time"

	"github.com/warp/tempwork/accounting"
)

// AppState is the full calculator state: everyone being tracked and the
// limit their contracts are measured against.
type AppState struct {
	Persons     []accounting.PersonAccount `json:"persons"`
	LimitInDays int                        `json:"limitInDays"`
}

// Clone returns a deep copy.
func (s AppState) Clone() AppState {
	out := AppState{LimitInDays: s.LimitInDays, Persons: make([]accounting.PersonAccount, len(s.Persons))}
	for i, p := range s.Persons {
		out.Persons[i] = p.Clone()
	}
	return out
}

// Session is a saved copy of the calculator state.
type Session struct {
	Name    string    `json:"name"`
	State   AppState  `json:"state"`
	SavedAt time.Time `json:"savedAt"`
}

// Store persists persons, the selected limit and named sessions.
type Store interface {
	// ListPersons returns persons in the order they were first saved.
	ListPersons(ctx context.Context) ([]accounting.PersonAccount, error)

	// GetPerson returns nil when the person doesn't exist.
	GetPerson(ctx context.Context, id string) (*accounting.PersonAccount, error)

	// SavePerson inserts or replaces a person and all of their contracts.
	SavePerson(ctx context.Context, person accounting.PersonAccount) error

	// DeletePerson removes a person and their contracts.
	DeletePerson(ctx context.Context, id string) error

	// ReplacePersons atomically swaps the full person list.
	ReplacePersons(ctx context.Context, persons []accounting.PersonAccount) error

	// GetLimit returns 0 when no limit has been stored yet.
	GetLimit(ctx context.Context) (int, error)
	SetLimit(ctx context.Context, limit int) error

	// SaveSession inserts or replaces the session with the same name.
	SaveSession(ctx context.Context, session Session) error

	// GetSession returns nil when the session doesn't exist.
	GetSession(ctx context.Context, name string) (*Session, error)

	// ListSessions returns sessions ordered by name.
	ListSessions(ctx context.Context) ([]Session, error)

	DeleteSession(ctx context.Context, name string) error
	DeleteAllSessions(ctx context.Context) error
}
