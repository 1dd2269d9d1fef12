// Package export appends variable changes to the variable event log.
//
// A Writer is installed as the variable.Listener of a State. It appends
// through the same TransactionContext as the State, so an exported event
// commits or rolls back together with the write that produced it.
package export

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roach88/varstate/internal/store"
	"github.com/roach88/varstate/internal/variable"
)

// IDGenerator returns a unique event ID.
type IDGenerator func() string

// UUIDv7 generates time-sortable event IDs.
func UUIDv7() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Writer is a variable.Listener that records every create and update.
type Writer struct {
	tc       *store.TransactionContext
	ids      IDGenerator
	prefixes [][]byte
	logger   *zap.Logger
}

var _ variable.Listener = (*Writer)(nil)

// Option configures a Writer.
type Option func(*Writer)

// WithIDGenerator replaces the UUIDv7 generator, e.g. for deterministic tests.
func WithIDGenerator(ids IDGenerator) Option {
	return func(w *Writer) {
		if ids != nil {
			w.ids = ids
		}
	}
}

// WithNamePrefixes restricts export to variables whose name starts with one
// of prefixes. No prefixes exports everything.
func WithNamePrefixes(prefixes ...string) Option {
	return func(w *Writer) {
		for _, p := range prefixes {
			w.prefixes = append(w.prefixes, []byte(p))
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(w *Writer) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWriter creates a Writer appending through tc.
func NewWriter(tc *store.TransactionContext, opts ...Option) *Writer {
	w := &Writer{
		tc:     tc,
		ids:    UUIDv7,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// OnCreate implements variable.Listener.
func (w *Writer) OnCreate(ctx context.Context, ev variable.Event) error {
	return w.append(ctx, store.IntentCreated, ev)
}

// OnUpdate implements variable.Listener.
func (w *Writer) OnUpdate(ctx context.Context, ev variable.Event) error {
	return w.append(ctx, store.IntentUpdated, ev)
}

func (w *Writer) exported(name []byte) bool {
	if len(w.prefixes) == 0 {
		return true
	}
	for _, p := range w.prefixes {
		if bytes.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

func (w *Writer) append(ctx context.Context, intent store.Intent, ev variable.Event) error {
	if !w.exported(ev.Name) {
		return nil
	}

	id := w.ids()
	position, err := store.AppendVariableEvent(ctx, w.tc.Querier(), store.VariableEvent{
		ID:           id,
		Intent:       intent,
		Key:          ev.Key,
		WorkflowKey:  ev.WorkflowKey,
		Name:         ev.Name,
		Value:        ev.Value,
		ScopeKey:     ev.ScopeKey,
		RootScopeKey: ev.RootScopeKey,
	})
	if err != nil {
		return fmt.Errorf("export %s %q: %w", intent, ev.Name, err)
	}

	w.logger.Debug("variable exported",
		zap.String("id", id),
		zap.String("intent", string(intent)),
		zap.Int64("position", position),
		zap.Int64("key", ev.Key),
	)
	return nil
}
