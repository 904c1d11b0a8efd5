/*
autosave.go - Periodic workspace autosave

PURPOSE:
  Periodically stores the current workspace as a named session so that
  work survives a lost browser tab or a wiped database file copy.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Compares the current state with the last autosaved one
  - Saves only when something changed
  - The autosave is an ordinary session and can be loaded like any other

CONFIGURATION:
  - Interval: How often to check (default: 5 minutes)
  - Session:  Session name to write (default: "autosave")

USAGE:
  autosave := NewAutosaver(svc)
  autosave.Start()
  // ... later
  autosave.Stop()

SEE ALSO:
  - service.go: SaveSession
*/
package workspace

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"
)

// DefaultAutosaveSession is the session name used by the autosaver.
const DefaultAutosaveSession = "autosave"

// Autosaver periodically snapshots the workspace into a session.
type Autosaver struct {
	Workspace *Service
	Interval  time.Duration
	Session   string

	last   []byte
	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewAutosaver creates an autosaver with default settings.
func NewAutosaver(svc *Service) *Autosaver {
	return &Autosaver{
		Workspace: svc,
		Interval:  5 * time.Minute,
		Session:   DefaultAutosaveSession,
	}
}

// Start begins the autosave loop.
func (a *Autosaver) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.ticker != nil {
		return
	}
	a.ticker = time.NewTicker(a.Interval)
	a.stop = make(chan struct{})
	a.wg.Add(1)

	go a.run()

	log.Printf("[Autosave] Started with interval %v into session %q", a.Interval, a.Session)
}

// Stop stops the loop and writes a final autosave.
func (a *Autosaver) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.ticker == nil {
		return
	}
	a.ticker.Stop()
	close(a.stop)
	a.wg.Wait()
	a.ticker = nil

	if _, err := a.SaveIfChanged(context.Background()); err != nil {
		log.Printf("[Autosave] Final save failed: %v", err)
	}
	log.Println("[Autosave] Stopped")
}

func (a *Autosaver) run() {
	defer a.wg.Done()

	for {
		select {
		case <-a.ticker.C:
			if _, err := a.SaveIfChanged(context.Background()); err != nil {
				log.Printf("[Autosave] Error: %v", err)
			}
		case <-a.stop:
			return
		}
	}
}

// SaveIfChanged writes the autosave session when the workspace differs
// from the last autosave. It reports whether a session was written.
func (a *Autosaver) SaveIfChanged(ctx context.Context) (bool, error) {
	state, err := a.Workspace.State(ctx)
	if err != nil {
		return false, err
	}
	snapshot, err := json.Marshal(state)
	if err != nil {
		return false, err
	}
	if a.last != nil && bytes.Equal(snapshot, a.last) {
		return false, nil
	}
	if _, err := a.Workspace.SaveSession(ctx, a.Session); err != nil {
		return false, err
	}
	a.last = snapshot
	return true, nil
}
