package client

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/vrakshhq/vraksh/pkg/logger"
)

// DefaultDebounce is the window in which successive edits coalesce into
// one persistence call.
const DefaultDebounce = 500 * time.Millisecond

// SettingsPersister writes a set of changed branch settings fields in one
// call.
type SettingsPersister interface {
	PersistSettings(ctx context.Context, branchID string, fields map[string]any) error
}

// SettingsEditor coalesces rapid field edits into debounced persistence
// calls. Each Set resets a single timer; when it fires, the union of all
// pending edits goes out in one call. A failed flush drops the attempted
// fields and reports through the error callback.
type SettingsEditor struct {
	branchID  string
	persister SettingsPersister
	debounce  time.Duration
	onError   func(error)
	logger    *slog.Logger

	mu       sync.Mutex
	pending  map[string]any
	timer    *time.Timer
	flushing bool
	closed   bool
	idle     chan struct{}
}

type SettingsOption func(*SettingsEditor)

// WithDebounce overrides the debounce window.
func WithDebounce(d time.Duration) SettingsOption {
	return func(e *SettingsEditor) { e.debounce = d }
}

// WithErrorCallback sets the handler notified when a flush fails.
func WithErrorCallback(fn func(error)) SettingsOption {
	return func(e *SettingsEditor) { e.onError = fn }
}

// WithSettingsLogger sets a custom logger for the editor.
func WithSettingsLogger(log *slog.Logger) SettingsOption {
	return func(e *SettingsEditor) { e.logger = log }
}

// NewSettingsEditor creates an editor for one branch's settings.
func NewSettingsEditor(branchID string, persister SettingsPersister, opts ...SettingsOption) *SettingsEditor {
	e := &SettingsEditor{
		branchID:  branchID,
		persister: persister,
		debounce:  DefaultDebounce,
		onError:   func(error) {},
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		pending:   make(map[string]any),
		idle:      make(chan struct{}),
	}
	close(e.idle)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Set records a field edit and arms the debounce timer. A later Set for
// the same field before the flush overwrites the pending value. At most
// one timer is live; each edit restarts it.
func (e *SettingsEditor) Set(field string, value any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}

	if len(e.pending) == 0 && !e.flushing {
		e.idle = make(chan struct{})
	}
	e.pending[field] = value

	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = time.AfterFunc(e.debounce, e.flush)
}

// IsUpdating reports true from the first pending edit until a flush
// completes with nothing further pending.
func (e *SettingsEditor) IsUpdating() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pending) > 0 || e.flushing
}

// Close cancels the timer and flushes any pending edits synchronously.
// Further edits are ignored.
func (e *SettingsEditor) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.mu.Unlock()

	e.flush()

	// Wait out a concurrent timer-driven flush if one was running.
	<-e.currentIdle()
}

func (e *SettingsEditor) currentIdle() chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.idle
}

// flush sends the union of pending edits in one call. Edits recorded while
// the call is in flight stay pending for the next flush; after Close they
// are drained here instead of waiting for a timer.
func (e *SettingsEditor) flush() {
	for {
		e.mu.Lock()
		if len(e.pending) == 0 || e.flushing {
			e.mu.Unlock()
			return
		}
		batch := e.pending
		e.pending = make(map[string]any)
		e.flushing = true
		e.mu.Unlock()

		err := e.persister.PersistSettings(context.Background(), e.branchID, batch)

		e.mu.Lock()
		e.flushing = false
		if err != nil {
			// The attempted fields are dropped, not retried.
			e.logger.Warn("settings not saved",
				logger.BranchID(e.branchID),
				logger.Error(err),
				logger.Component("settings"),
			)
		}
		drained := len(e.pending) == 0
		if drained {
			close(e.idle)
		}
		closed := e.closed
		e.mu.Unlock()

		if err != nil {
			e.onError(err)
		}
		if drained || !closed {
			return
		}
	}
}

// Pending returns a copy of the not-yet-flushed edits.
func (e *SettingsEditor) Pending() map[string]any {
	e.mu.Lock()
	defer e.mu.Unlock()
	return maps.Clone(e.pending)
}
