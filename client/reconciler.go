// Package client holds the state layer a UI keeps between renders: the
// per-branch item order with optimistic reordering, and the debounced
// settings editor. Local state is authoritative for rendering; the server
// is updated in the background.
package client

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/vrakshhq/vraksh/pkg/async"
	"github.com/vrakshhq/vraksh/pkg/logger"
)

// State describes how the local item order relates to the server's.
type State string

const (
	// StateConsistent means the last persist succeeded and no reorder is
	// in flight.
	StateConsistent State = "consistent"
	// StateReordering means a local mutation is applied and its persist
	// call is in flight.
	StateReordering State = "reordering"
	// StateDiverged means a persist failed; local order is kept and the
	// server is behind until a later persist succeeds or Refresh is
	// called.
	StateDiverged State = "diverged"
)

// Persister writes a branch's full item order to the server.
type Persister interface {
	PersistOrder(ctx context.Context, branchID string, itemIDs []string) error
}

// ErrPositionOutOfRange is returned by Reorder for invalid positions.
var ErrPositionOutOfRange = fmt.Errorf("position out of range")

// List is a branch's ordered item collection. Moves apply to local state
// synchronously and persist asynchronously; a failed persist never rolls
// the local order back.
type List struct {
	branchID  string
	persister Persister
	logger    *slog.Logger

	mu       sync.Mutex
	ids      []string
	state    State
	inflight int
}

// NewList creates a reconciler for one branch seeded with the server's
// current order.
func NewList(branchID string, ids []string, persister Persister, opts ...ListOption) *List {
	l := &List{
		branchID:  branchID,
		persister: persister,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		ids:       append([]string(nil), ids...),
		state:     StateConsistent,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

type ListOption func(*List)

// WithListLogger sets a custom logger for the list.
func WithListLogger(log *slog.Logger) ListOption {
	return func(l *List) { l.logger = log }
}

// IDs returns the current local order.
func (l *List) IDs() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.ids...)
}

// State returns the current reconciliation state.
func (l *List) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Reorder moves the element at from to position to. The local order
// changes before the call returns; the returned future completes when the
// background persist finishes, carrying the resulting state.
func (l *List) Reorder(ctx context.Context, from, to int) (*async.Future[State], error) {
	l.mu.Lock()
	if from < 0 || from >= len(l.ids) || to < 0 || to >= len(l.ids) {
		l.mu.Unlock()
		return nil, ErrPositionOutOfRange
	}

	id := l.ids[from]
	l.ids = append(l.ids[:from], l.ids[from+1:]...)
	l.ids = append(l.ids[:to], append([]string{id}, l.ids[to:]...)...)

	snapshot := append([]string(nil), l.ids...)
	l.state = StateReordering
	l.inflight++
	l.mu.Unlock()

	return async.Run(ctx, snapshot, func(ctx context.Context, order []string) (State, error) {
		err := l.persister.PersistOrder(ctx, l.branchID, order)

		l.mu.Lock()
		defer l.mu.Unlock()
		l.inflight--
		if err != nil {
			l.state = StateDiverged
			l.logger.Warn("item order not saved",
				logger.BranchID(l.branchID),
				logger.Error(err),
				logger.Component("reconciler"),
			)
			return StateDiverged, nil
		}
		if l.inflight == 0 {
			l.state = StateConsistent
		}
		return l.state, nil
	}), nil
}

// Refresh replaces the local order with a fresh server read and resets the
// state to Consistent.
func (l *List) Refresh(ids []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ids = append([]string(nil), ids...)
	l.state = StateConsistent
}
