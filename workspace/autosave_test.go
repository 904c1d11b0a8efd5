package workspace_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/tempwork/workspace"
)

func TestAutosaver_SavesOnlyOnChange(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	a := workspace.NewAutosaver(svc)

	// GIVEN: an empty workspace
	// WHEN: autosave runs twice
	saved, err := a.SaveIfChanged(ctx)
	require.NoError(t, err)
	assert.True(t, saved)

	saved, err = a.SaveIfChanged(ctx)
	require.NoError(t, err)
	assert.False(t, saved, "unchanged workspace should not be saved again")

	// WHEN: the workspace changes
	_, err = svc.AddPerson(ctx, "Anna")
	require.NoError(t, err)

	saved, err = a.SaveIfChanged(ctx)
	require.NoError(t, err)
	assert.True(t, saved)

	// THEN: one session holds the latest state
	sessions, err := svc.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, workspace.DefaultAutosaveSession, sessions[0].Name)
	assert.Len(t, sessions[0].State.Persons, 1)
}

func TestAutosaver_StopWritesFinalSave(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	a := workspace.NewAutosaver(svc)
	a.Interval = time.Hour
	a.Session = "shutdown"

	a.Start()
	_, err := svc.AddPerson(ctx, "Piotr")
	require.NoError(t, err)
	a.Stop()

	sessions, err := svc.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "shutdown", sessions[0].Name)
	assert.Len(t, sessions[0].State.Persons, 1)

	// Stopping twice is harmless.
	a.Stop()
}
