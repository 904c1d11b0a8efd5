/*
Package workspace owns the editable calculator state: the people being
tracked, their contracts, the selected day limit and saved sessions.

PURPOSE:
  The accounting engine is pure and only sees snapshots. This package is
  the layer that mutates: every edit loads the current person, builds a
  new snapshot with the change applied, and persists it. Reads run the
  engine over what is stored.

EDITS:
  AddPerson       new person with one empty contract
  RenamePerson    change the display name
  RemovePerson    drop a person and their contracts
  ClearAll        drop everyone (limit and sessions are kept)
  AddContract     append an empty contract
  UpdateContract  set or clear contract dates
  RemoveContract  drop one contract
  SetLimit        choose one of the allowed day limits

SESSIONS:
  SaveSession stores the current state under a name, replacing any session
  with the same name. LoadSession replaces the current state with a saved
  one. Sessions are listed by name.

CONCURRENCY:
  Edits are read-modify-write and are serialized by a mutex.

SEE ALSO:
  - store.go: persistence interface
  - accounting/period.go: the engine run on every read
*/
package workspace

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/warp/tempwork/accounting"
)

// Limits configures the day limits users may choose from.
type Limits struct {
	Default int
	Allowed []int
}

// DefaultLimits offers the two statutory presets.
func DefaultLimits() Limits {
	return Limits{Default: accounting.DefaultLimit, Allowed: accounting.Presets}
}

// Service applies edits to the stored workspace.
type Service struct {
	store  Store
	limits Limits

	mu sync.Mutex

	// Overridable for tests.
	NewID func() string
	Now   func() time.Time
}

// NewService creates a service backed by store.
func NewService(store Store, limits Limits) *Service {
	if limits.Default == 0 {
		limits.Default = accounting.DefaultLimit
	}
	return &Service{
		store:  store,
		limits: limits,
		NewID:  func() string { return uuid.NewString() },
		Now:    time.Now,
	}
}

// AllowedLimits returns the limits users may choose from.
func (s *Service) AllowedLimits() []int {
	return append([]int(nil), s.limits.Allowed...)
}

// =============================================================================
// LIMIT
// =============================================================================

// Limit returns the stored limit, falling back to the configured default.
func (s *Service) Limit(ctx context.Context) (int, error) {
	limit, err := s.store.GetLimit(ctx)
	if err != nil {
		return 0, fmt.Errorf("loading limit: %w", err)
	}
	if limit <= 0 {
		return s.limits.Default, nil
	}
	return limit, nil
}

// SetLimit stores a new limit after validating it against the allowed set.
func (s *Service) SetLimit(ctx context.Context, limit int) error {
	if err := accounting.ValidateLimit(limit, s.limits.Allowed); err != nil {
		return err
	}
	return s.store.SetLimit(ctx, limit)
}

// =============================================================================
// PERSONS
// =============================================================================

// People summarizes every stored person against the current limit.
func (s *Service) People(ctx context.Context) ([]accounting.PersonSummary, error) {
	persons, err := s.store.ListPersons(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing persons: %w", err)
	}
	limit, err := s.Limit(ctx)
	if err != nil {
		return nil, err
	}
	return accounting.SummarizeAll(persons, limit), nil
}

// Person summarizes one person against the current limit.
func (s *Service) Person(ctx context.Context, id string) (accounting.PersonSummary, error) {
	person, err := s.loadPerson(ctx, id)
	if err != nil {
		return accounting.PersonSummary{}, err
	}
	limit, err := s.Limit(ctx)
	if err != nil {
		return accounting.PersonSummary{}, err
	}
	return accounting.Summarize(person, limit), nil
}

// AddPerson creates a person with a single empty contract ready for input.
func (s *Service) AddPerson(ctx context.Context, fullName string) (accounting.PersonAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	person := accounting.PersonAccount{
		ID:        s.NewID(),
		FullName:  strings.TrimSpace(fullName),
		Contracts: []accounting.ContractRange{{ID: s.NewID()}},
	}
	if err := s.store.SavePerson(ctx, person); err != nil {
		return accounting.PersonAccount{}, fmt.Errorf("saving person: %w", err)
	}
	return person, nil
}

// RenamePerson changes a person's display name.
func (s *Service) RenamePerson(ctx context.Context, id, fullName string) (accounting.PersonAccount, error) {
	return s.editPerson(ctx, id, func(p *accounting.PersonAccount) error {
		p.FullName = strings.TrimSpace(fullName)
		return nil
	})
}

// RemovePerson deletes a person and their contracts.
func (s *Service) RemovePerson(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.loadPerson(ctx, id); err != nil {
		return err
	}
	return s.store.DeletePerson(ctx, id)
}

// ClearAll removes every person. The limit and saved sessions are kept.
func (s *Service) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.store.ReplacePersons(ctx, nil)
}

// =============================================================================
// CONTRACTS
// =============================================================================

// AddContract appends an empty contract to a person.
func (s *Service) AddContract(ctx context.Context, personID string) (accounting.ContractRange, error) {
	c := accounting.ContractRange{ID: s.NewID()}
	_, err := s.editPerson(ctx, personID, func(p *accounting.PersonAccount) error {
		p.Contracts = append(p.Contracts, c)
		return nil
	})
	if err != nil {
		return accounting.ContractRange{}, err
	}
	return c, nil
}

// UpdateContract replaces both dates of a contract. A nil date clears it.
// Dates are stored as given; inverted ranges are left for the engine to
// route to the undated bucket.
func (s *Service) UpdateContract(ctx context.Context, personID, contractID string, start, end *accounting.Date) (accounting.ContractRange, error) {
	var updated accounting.ContractRange
	_, err := s.editPerson(ctx, personID, func(p *accounting.PersonAccount) error {
		i := p.FindContract(contractID)
		if i < 0 {
			return notFound(ErrContractNotFound, contractID)
		}
		p.Contracts[i] = accounting.ContractRange{ID: contractID, StartDate: start, EndDate: end}.Clone()
		updated = p.Contracts[i]
		return nil
	})
	return updated, err
}

// RemoveContract deletes one contract from a person.
func (s *Service) RemoveContract(ctx context.Context, personID, contractID string) error {
	_, err := s.editPerson(ctx, personID, func(p *accounting.PersonAccount) error {
		i := p.FindContract(contractID)
		if i < 0 {
			return notFound(ErrContractNotFound, contractID)
		}
		p.Contracts = append(p.Contracts[:i], p.Contracts[i+1:]...)
		return nil
	})
	return err
}

// editPerson applies fn to a fresh copy of the stored person and saves
// the result.
func (s *Service) editPerson(ctx context.Context, id string, fn func(*accounting.PersonAccount) error) (accounting.PersonAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	person, err := s.loadPerson(ctx, id)
	if err != nil {
		return accounting.PersonAccount{}, err
	}
	next := person.Clone()
	if err := fn(&next); err != nil {
		return accounting.PersonAccount{}, err
	}
	if err := s.store.SavePerson(ctx, next); err != nil {
		return accounting.PersonAccount{}, fmt.Errorf("saving person: %w", err)
	}
	return next, nil
}

func (s *Service) loadPerson(ctx context.Context, id string) (accounting.PersonAccount, error) {
	person, err := s.store.GetPerson(ctx, id)
	if err != nil {
		return accounting.PersonAccount{}, fmt.Errorf("loading person: %w", err)
	}
	if person == nil {
		return accounting.PersonAccount{}, notFound(ErrPersonNotFound, id)
	}
	return *person, nil
}

// =============================================================================
// STATE & SESSIONS
// =============================================================================

// State returns a snapshot of everything currently stored.
func (s *Service) State(ctx context.Context) (AppState, error) {
	persons, err := s.store.ListPersons(ctx)
	if err != nil {
		return AppState{}, fmt.Errorf("listing persons: %w", err)
	}
	limit, err := s.Limit(ctx)
	if err != nil {
		return AppState{}, err
	}
	if persons == nil {
		persons = []accounting.PersonAccount{}
	}
	return AppState{Persons: persons, LimitInDays: limit}, nil
}

// ReplaceState overwrites the current persons and limit. A stored limit
// outside the allowed set falls back to the default.
func (s *Service) ReplaceState(ctx context.Context, state AppState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.replaceStateLocked(ctx, state)
}

func (s *Service) replaceStateLocked(ctx context.Context, state AppState) error {
	limit := state.LimitInDays
	if accounting.ValidateLimit(limit, s.limits.Allowed) != nil {
		limit = s.limits.Default
	}
	if err := s.store.ReplacePersons(ctx, state.Clone().Persons); err != nil {
		return fmt.Errorf("replacing persons: %w", err)
	}
	return s.store.SetLimit(ctx, limit)
}

// Sessions lists saved sessions ordered by name.
func (s *Service) Sessions(ctx context.Context) ([]Session, error) {
	sessions, err := s.store.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	return sessions, nil
}

// SaveSession stores the current state under name, replacing any session
// with the same name.
func (s *Service) SaveSession(ctx context.Context, name string) (Session, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Session{}, ErrInvalidSessionName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.State(ctx)
	if err != nil {
		return Session{}, err
	}
	session := Session{Name: name, State: state, SavedAt: s.Now().UTC()}
	if err := s.store.SaveSession(ctx, session); err != nil {
		return Session{}, fmt.Errorf("saving session: %w", err)
	}
	return session, nil
}

// LoadSession replaces the current state with the named session.
func (s *Service) LoadSession(ctx context.Context, name string) (AppState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.store.GetSession(ctx, strings.TrimSpace(name))
	if err != nil {
		return AppState{}, fmt.Errorf("loading session: %w", err)
	}
	if session == nil {
		return AppState{}, notFound(ErrSessionNotFound, name)
	}
	if err := s.replaceStateLocked(ctx, session.State); err != nil {
		return AppState{}, err
	}
	return session.State, nil
}

// DeleteSession removes one saved session.
func (s *Service) DeleteSession(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	session, err := s.store.GetSession(ctx, name)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}
	if session == nil {
		return notFound(ErrSessionNotFound, name)
	}
	return s.store.DeleteSession(ctx, name)
}

// ClearSessions removes every saved session.
func (s *Service) ClearSessions(ctx context.Context) error {
	return s.store.DeleteAllSessions(ctx)
}

// ImportSessions stores sessions as given, replacing same-named ones.
// Sessions with blank names are rejected before anything is written.
func (s *Service) ImportSessions(ctx context.Context, sessions []Session) error {
	for _, session := range sessions {
		if strings.TrimSpace(session.Name) == "" {
			return ErrInvalidSessionName
		}
	}
	for _, session := range sessions {
		session.Name = strings.TrimSpace(session.Name)
		if session.SavedAt.IsZero() {
			session.SavedAt = s.Now().UTC()
		}
		if err := s.store.SaveSession(ctx, session); err != nil {
			return fmt.Errorf("importing session %q: %w", session.Name, err)
		}
	}
	return nil
}
