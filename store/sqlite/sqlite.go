/*
Package sqlite provides a SQLite-backed implementation of workspace.Store.

PURPOSE:
  Persists the calculator workspace: persons, their contracts, the selected
  day limit and named sessions. Periods are never stored; they are
  recomputed from contracts on every read.

KEY TABLES:
  persons:   people being tracked, in insertion order
  contracts: one row per contract, ordered per person, dates nullable
  settings:  key/value pairs (currently only the day limit)
  sessions:  named snapshots of the whole workspace as JSON

SNAPSHOT WRITES:
  SavePerson replaces a person's full contract list inside one database
  transaction. There is no partial contract update.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety, matching the single-writer model
  of SQLite.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time

USAGE:
  store, err := sqlite.New("./data/tempwork.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := workspace.NewService(store, workspace.DefaultLimits())

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - workspace/store.go: Interface definition
  - store/memory/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/tempwork/accounting"
	"github.com/warp/tempwork/workspace"
)

const limitKey = "limit_in_days"

// Store implements workspace.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ workspace.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS persons (
		id TEXT PRIMARY KEY,
		full_name TEXT NOT NULL DEFAULT '',
		position INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_persons_position
		ON persons(position);

	-- Contract ids are not required to be unique, so rows are keyed by
	-- their position within the person.
	CREATE TABLE IF NOT EXISTS contracts (
		person_id TEXT NOT NULL REFERENCES persons(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		id TEXT NOT NULL,
		start_date TEXT,
		end_date TEXT,
		PRIMARY KEY (person_id, position)
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sessions (
		name TEXT PRIMARY KEY,
		state_json TEXT NOT NULL,
		saved_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// PERSON STORE
// =============================================================================

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ListPersons returns all persons with their contracts, in insertion order.
func (s *Store) ListPersons(ctx context.Context) ([]accounting.PersonAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, full_name FROM persons ORDER BY position",
	)
	if err != nil {
		return nil, err
	}

	var persons []accounting.PersonAccount
	index := make(map[string]int)
	for rows.Next() {
		var p accounting.PersonAccount
		if err := rows.Scan(&p.ID, &p.FullName); err != nil {
			rows.Close()
			return nil, err
		}
		p.Contracts = []accounting.ContractRange{}
		index[p.ID] = len(persons)
		persons = append(persons, p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	contracts, err := s.queryContracts(ctx,
		"SELECT person_id, id, start_date, end_date FROM contracts ORDER BY person_id, position",
	)
	if err != nil {
		return nil, err
	}
	for _, pc := range contracts {
		if i, ok := index[pc.personID]; ok {
			persons[i].Contracts = append(persons[i].Contracts, pc.contract)
		}
	}
	return persons, nil
}

// GetPerson retrieves a person and their contracts by ID.
func (s *Store) GetPerson(ctx context.Context, id string) (*accounting.PersonAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := accounting.PersonAccount{Contracts: []accounting.ContractRange{}}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, full_name FROM persons WHERE id = ?", id,
	).Scan(&p.ID, &p.FullName)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	contracts, err := s.queryContracts(ctx,
		"SELECT person_id, id, start_date, end_date FROM contracts WHERE person_id = ? ORDER BY position", id,
	)
	if err != nil {
		return nil, err
	}
	for _, pc := range contracts {
		p.Contracts = append(p.Contracts, pc.contract)
	}
	return &p, nil
}

// SavePerson inserts or replaces a person and their full contract list.
func (s *Store) SavePerson(ctx context.Context, person accounting.PersonAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return savePerson(ctx, tx, person)
	})
}

func savePerson(ctx context.Context, db execer, person accounting.PersonAccount) error {
	query := `
		INSERT INTO persons (id, full_name, position, created_at)
		VALUES (?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM persons), ?)
		ON CONFLICT(id) DO UPDATE SET
			full_name = excluded.full_name
	`
	_, err := db.ExecContext(ctx, query,
		person.ID, person.FullName,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save person: %w", err)
	}

	if _, err := db.ExecContext(ctx, "DELETE FROM contracts WHERE person_id = ?", person.ID); err != nil {
		return fmt.Errorf("failed to clear contracts: %w", err)
	}
	for i, c := range person.Contracts {
		_, err := db.ExecContext(ctx,
			"INSERT INTO contracts (person_id, position, id, start_date, end_date) VALUES (?, ?, ?, ?, ?)",
			person.ID, i, c.ID, nullDate(c.StartDate), nullDate(c.EndDate),
		)
		if err != nil {
			return fmt.Errorf("failed to save contract %s: %w", c.ID, err)
		}
	}
	return nil
}

// DeletePerson removes a person. Contracts go with it via ON DELETE CASCADE.
func (s *Store) DeletePerson(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM persons WHERE id = ?", id)
	return err
}

// ReplacePersons atomically swaps the full person list.
func (s *Store) ReplacePersons(ctx context.Context, persons []accounting.PersonAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM contracts"); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM persons"); err != nil {
			return err
		}
		for _, p := range persons {
			if err := savePerson(ctx, tx, p); err != nil {
				return err
			}
		}
		return nil
	})
}

type personContract struct {
	personID string
	contract accounting.ContractRange
}

func (s *Store) queryContracts(ctx context.Context, query string, args ...any) ([]personContract, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []personContract
	for rows.Next() {
		var pc personContract
		var start, end sql.NullString
		if err := rows.Scan(&pc.personID, &pc.contract.ID, &start, &end); err != nil {
			return nil, err
		}
		pc.contract.StartDate = parseNullDate(start)
		pc.contract.EndDate = parseNullDate(end)
		out = append(out, pc)
	}
	return out, rows.Err()
}

// =============================================================================
// SETTINGS
// =============================================================================

// GetLimit returns the stored day limit, or 0 when none is stored.
func (s *Store) GetLimit(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", limitKey).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	limit, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("corrupt %s setting %q: %w", limitKey, value, err)
	}
	return limit, nil
}

// SetLimit stores the day limit.
func (s *Store) SetLimit(ctx context.Context, limit int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, limitKey, strconv.Itoa(limit))
	return err
}

// =============================================================================
// SESSION STORE
// =============================================================================

// SaveSession inserts or replaces a named session.
func (s *Store) SaveSession(ctx context.Context, session workspace.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stateJSON, err := json.Marshal(session.State)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	query := `
		INSERT INTO sessions (name, state_json, saved_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			state_json = excluded.state_json,
			saved_at = excluded.saved_at
	`
	_, err = s.db.ExecContext(ctx, query,
		session.Name, string(stateJSON), session.SavedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// GetSession retrieves a session by name.
func (s *Store) GetSession(ctx context.Context, name string) (*workspace.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stateJSON, savedAt string
	err := s.db.QueryRowContext(ctx,
		"SELECT name, state_json, saved_at FROM sessions WHERE name = ?", name,
	).Scan(&name, &stateJSON, &savedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeSession(name, stateJSON, savedAt)
}

// ListSessions returns all sessions ordered by name.
func (s *Store) ListSessions(ctx context.Context) ([]workspace.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT name, state_json, saved_at FROM sessions ORDER BY name",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []workspace.Session{}
	for rows.Next() {
		var name, stateJSON, savedAt string
		if err := rows.Scan(&name, &stateJSON, &savedAt); err != nil {
			return nil, err
		}
		session, err := decodeSession(name, stateJSON, savedAt)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	return sessions, rows.Err()
}

// DeleteSession removes a session.
func (s *Store) DeleteSession(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE name = ?", name)
	return err
}

// DeleteAllSessions removes every session.
func (s *Store) DeleteAllSessions(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM sessions")
	return err
}

func decodeSession(name, stateJSON, savedAt string) (*workspace.Session, error) {
	session := workspace.Session{Name: name}
	if err := json.Unmarshal([]byte(stateJSON), &session.State); err != nil {
		return nil, fmt.Errorf("failed to decode session %q: %w", name, err)
	}
	t, err := time.Parse(time.RFC3339Nano, savedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to decode saved_at of session %q: %w", name, err)
	}
	session.SavedAt = t
	return &session, nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"contracts", "persons", "settings", "sessions"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// withTx runs fn inside a database transaction. Callers hold s.mu.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Helper functions

func nullDate(d *accounting.Date) sql.NullString {
	if d == nil || d.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func parseNullDate(s sql.NullString) *accounting.Date {
	if !s.Valid {
		return nil
	}
	d, err := accounting.ParseDate(s.String)
	if err != nil {
		return nil
	}
	return &d
}
