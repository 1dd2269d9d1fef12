package variable

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/roach88/varstate/internal/keygen"
	"github.com/roach88/varstate/internal/store"
)

// NoParent is the sentinel callers may use for a scope without a registered
// parent. ParentScopeKey reports that case through its ok result.
const NoParent int64 = -1

// Record is a stored variable. Key is assigned on creation and never changes.
type Record struct {
	Key   int64
	Value []byte
}

// State is the variable store of one partition.
//
// State follows the single-writer model of its caller and is not safe for
// concurrent use.
type State struct {
	tc       *store.TransactionContext
	keys     keygen.KeyGenerator
	listener Listener
	logger   *zap.Logger
}

// Option configures a State.
type Option func(*State)

// WithListener registers the change listener. A State has at most one
// listener; passing a second is a configuration error and panics.
func WithListener(l Listener) Option {
	return func(s *State) {
		if l == nil {
			return
		}
		if s.listener != nil {
			panic("variable listener is already set")
		}
		s.listener = l
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(s *State) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a State over the key ranges reachable through tc.
func New(tc *store.TransactionContext, keys keygen.KeyGenerator, opts ...Option) *State {
	s := &State{
		tc:     tc,
		keys:   keys,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *State) q() store.Querier {
	return s.tc.Querier()
}

// IsEmpty reports whether no scope, variable or temporary payload is stored.
func (s *State) IsEmpty(ctx context.Context) (bool, error) {
	var empty bool
	err := s.q().QueryRowContext(ctx, `
		SELECT NOT EXISTS (SELECT 1 FROM variables)
		   AND NOT EXISTS (SELECT 1 FROM scope_parents)
		   AND NOT EXISTS (SELECT 1 FROM temporary_variables)
	`).Scan(&empty)
	if err != nil {
		return false, fmt.Errorf("is empty: %w", err)
	}
	return empty, nil
}
