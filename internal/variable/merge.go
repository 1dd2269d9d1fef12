package variable

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/roach88/varstate/internal/document"
)

// SetVariablesLocalFromDocument writes every entry of doc into scope itself.
// An empty document is a no-op.
func (s *State) SetVariablesLocalFromDocument(ctx context.Context, scope, workflowKey int64, doc []byte) error {
	indexed, err := document.Index(doc)
	if err != nil {
		return fmt.Errorf("set local variables of scope %d: %w", scope, err)
	}
	if indexed.IsEmpty() {
		return nil
	}

	entries, err := indexed.Entries()
	if err != nil {
		return fmt.Errorf("set local variables of scope %d: %w", scope, err)
	}
	for _, e := range entries {
		if err := s.SetVariableLocal(ctx, scope, workflowKey, e.Name, e.Value); err != nil {
			return err
		}
	}
	return nil
}

// SetVariablesFromDocument merges doc into the scope chain of scope.
//
// Walking from scope towards the root, an entry is written into the first
// scope that already declares its name locally. Entries no scope below the
// root declares are written into the topmost scope of the chain, never into
// an intermediate one. An empty document is a no-op.
func (s *State) SetVariablesFromDocument(ctx context.Context, scope, workflowKey int64, doc []byte) error {
	indexed, err := document.Index(doc)
	if err != nil {
		return fmt.Errorf("set variables of scope %d: %w", scope, err)
	}
	if indexed.IsEmpty() {
		return nil
	}

	pending, err := indexed.Entries()
	if err != nil {
		return fmt.Errorf("set variables of scope %d: %w", scope, err)
	}

	current := scope
	for len(pending) > 0 {
		parent, ok, err := s.ParentScopeKey(ctx, current)
		if err != nil {
			return err
		}
		if !ok {
			break
		}

		remaining := pending[:0]
		for _, e := range pending {
			declared, err := s.HasVariableLocal(ctx, current, e.Name)
			if err != nil {
				return err
			}
			if !declared {
				remaining = append(remaining, e)
				continue
			}
			if err := s.SetVariableLocal(ctx, current, workflowKey, e.Name, e.Value); err != nil {
				return err
			}
		}
		pending = remaining
		current = parent
	}

	if len(pending) > 0 {
		s.logger.Debug("declaring variables at top scope",
			zap.Int64("scope", scope), zap.Int64("top", current), zap.Int("count", len(pending)))
	}
	for _, e := range pending {
		if err := s.SetVariableLocal(ctx, current, workflowKey, e.Name, e.Value); err != nil {
			return err
		}
	}
	return nil
}
