// Package memory provides an in-memory workspace.Store.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/tempwork/accounting"
	"github.com/warp/tempwork/workspace"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	order    []string
	persons  map[string]accounting.PersonAccount
	limit    int
	sessions map[string]workspace.Session
}

var _ workspace.Store = (*Memory)(nil)

func New() *Memory {
	return &Memory{
		persons:  make(map[string]accounting.PersonAccount),
		sessions: make(map[string]workspace.Session),
	}
}

func (m *Memory) ListPersons(_ context.Context) ([]accounting.PersonAccount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]accounting.PersonAccount, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.persons[id].Clone())
	}
	return out, nil
}

func (m *Memory) GetPerson(_ context.Context, id string) (*accounting.PersonAccount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.persons[id]
	if !ok {
		return nil, nil
	}
	clone := p.Clone()
	return &clone, nil
}

func (m *Memory) SavePerson(_ context.Context, person accounting.PersonAccount) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.putLocked(person)
	return nil
}

func (m *Memory) putLocked(person accounting.PersonAccount) {
	if _, ok := m.persons[person.ID]; !ok {
		m.order = append(m.order, person.ID)
	}
	m.persons[person.ID] = person.Clone()
}

func (m *Memory) DeletePerson(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.persons[id]; !ok {
		return nil
	}
	delete(m.persons, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) ReplacePersons(_ context.Context, persons []accounting.PersonAccount) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.order = nil
	m.persons = make(map[string]accounting.PersonAccount, len(persons))
	for _, p := range persons {
		m.putLocked(p)
	}
	return nil
}

func (m *Memory) GetLimit(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.limit, nil
}

func (m *Memory) SetLimit(_ context.Context, limit int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.limit = limit
	return nil
}

func (m *Memory) SaveSession(_ context.Context, session workspace.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session.State = session.State.Clone()
	m.sessions[session.Name] = session
	return nil
}

func (m *Memory) GetSession(_ context.Context, name string) (*workspace.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[name]
	if !ok {
		return nil, nil
	}
	s.State = s.State.Clone()
	return &s, nil
}

func (m *Memory) ListSessions(_ context.Context) ([]workspace.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]workspace.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		s.State = s.State.Clone()
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) DeleteSession(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, name)
	return nil
}

func (m *Memory) DeleteAllSessions(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = make(map[string]workspace.Session)
	return nil
}
