package client_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vrakshhq/vraksh/client"
)

type fakeSettingsPersister struct {
	mu      sync.Mutex
	batches []map[string]any
	fail    bool
}

func (p *fakeSettingsPersister) PersistSettings(_ context.Context, _ string, fields map[string]any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("network down")
	}
	cp := make(map[string]any, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	p.batches = append(p.batches, cp)
	return nil
}

func (p *fakeSettingsPersister) calls() []map[string]any {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]map[string]any(nil), p.batches...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestSettingsEditor_Coalescing(t *testing.T) {
	t.Parallel()

	persister := &fakeSettingsPersister{}
	editor := client.NewSettingsEditor("br-1", persister,
		client.WithDebounce(30*time.Millisecond))
	defer editor.Close()

	// Three rapid edits inside the window coalesce into one call carrying
	// the union of all three changes.
	editor.Set("backgroundColor", "#fff")
	editor.Set("fontColor", "#000")
	editor.Set("fontFamily", "Inter")
	assert.True(t, editor.IsUpdating())

	waitFor(t, func() bool { return len(persister.calls()) == 1 })

	batch := persister.calls()[0]
	assert.Equal(t, map[string]any{
		"backgroundColor": "#fff",
		"fontColor":       "#000",
		"fontFamily":      "Inter",
	}, batch)

	waitFor(t, func() bool { return !editor.IsUpdating() })
}

func TestSettingsEditor_LastWriteWinsWithinWindow(t *testing.T) {
	t.Parallel()

	persister := &fakeSettingsPersister{}
	editor := client.NewSettingsEditor("br-1", persister,
		client.WithDebounce(30*time.Millisecond))
	defer editor.Close()

	editor.Set("fontColor", "#111")
	editor.Set("fontColor", "#222")

	waitFor(t, func() bool { return len(persister.calls()) == 1 })
	assert.Equal(t, map[string]any{"fontColor": "#222"}, persister.calls()[0])
}

func TestSettingsEditor_TimerResetsOnEachEdit(t *testing.T) {
	t.Parallel()

	persister := &fakeSettingsPersister{}
	editor := client.NewSettingsEditor("br-1", persister,
		client.WithDebounce(60*time.Millisecond))
	defer editor.Close()

	// Keep editing faster than the window; nothing flushes while edits
	// keep arriving.
	for i := 0; i < 4; i++ {
		editor.Set("description", i)
		time.Sleep(20 * time.Millisecond)
	}
	assert.Empty(t, persister.calls())

	waitFor(t, func() bool { return len(persister.calls()) == 1 })
	assert.Equal(t, map[string]any{"description": 3}, persister.calls()[0])
}

func TestSettingsEditor_FailedFlushDropsFieldsAndNotifies(t *testing.T) {
	t.Parallel()

	persister := &fakeSettingsPersister{fail: true}

	var gotErr error
	var errMu sync.Mutex
	editor := client.NewSettingsEditor("br-1", persister,
		client.WithDebounce(20*time.Millisecond),
		client.WithErrorCallback(func(err error) {
			errMu.Lock()
			gotErr = err
			errMu.Unlock()
		}))
	defer editor.Close()

	editor.Set("fontColor", "#333")

	waitFor(t, func() bool {
		errMu.Lock()
		defer errMu.Unlock()
		return gotErr != nil
	})

	// The attempted change is dropped, not retried.
	waitFor(t, func() bool { return !editor.IsUpdating() })
	assert.Empty(t, editor.Pending())
	assert.Empty(t, persister.calls())
}

func TestSettingsEditor_CloseFlushesPending(t *testing.T) {
	t.Parallel()

	persister := &fakeSettingsPersister{}
	editor := client.NewSettingsEditor("br-1", persister,
		client.WithDebounce(time.Hour))

	editor.Set("templateId", "t-9")
	editor.Close()

	calls := persister.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, map[string]any{"templateId": "t-9"}, calls[0])

	// Edits after close are ignored.
	editor.Set("templateId", "t-10")
	assert.False(t, editor.IsUpdating())
	assert.Len(t, persister.calls(), 1)
}
