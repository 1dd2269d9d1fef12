package variable

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// CreateScope registers parent as the parent of child. Registering the same
// child again replaces its parent. Callers must not introduce cycles.
func (s *State) CreateScope(ctx context.Context, child, parent int64) error {
	_, err := s.q().ExecContext(ctx, `
		INSERT INTO scope_parents (child_key, parent_key)
		VALUES (?, ?)
		ON CONFLICT(child_key) DO UPDATE SET parent_key = excluded.parent_key
	`, child, parent)
	if err != nil {
		return fmt.Errorf("create scope %d: %w", child, err)
	}

	s.logger.Debug("scope created", zap.Int64("scope", child), zap.Int64("parent", parent))
	return nil
}

// ParentScopeKey returns the registered parent of child. ok is false both for
// a root scope and for a key that was never registered.
func (s *State) ParentScopeKey(ctx context.Context, child int64) (parent int64, ok bool, err error) {
	err = s.q().QueryRowContext(ctx, `
		SELECT parent_key FROM scope_parents WHERE child_key = ?
	`, child).Scan(&parent)
	if errors.Is(err, sql.ErrNoRows) {
		return NoParent, false, nil
	}
	if err != nil {
		return NoParent, false, fmt.Errorf("parent scope of %d: %w", child, err)
	}
	return parent, true, nil
}

// RootScopeKey follows parent links from scope until a scope without a parent
// is reached and returns that scope. A scope without a parent is its own root.
func (s *State) RootScopeKey(ctx context.Context, scope int64) (int64, error) {
	root := scope
	for {
		parent, ok, err := s.ParentScopeKey(ctx, root)
		if err != nil {
			return 0, err
		}
		if !ok {
			return root, nil
		}
		root = parent
	}
}

// RemoveScope deletes the local variables and the temporary payload of scope
// and detaches scope from its parent. Other scopes, including children that
// still point at scope, are left untouched. No listener is notified.
func (s *State) RemoveScope(ctx context.Context, scope int64) error {
	if err := s.RemoveAllVariables(ctx, scope); err != nil {
		return err
	}
	if err := s.RemoveTemporaryVariables(ctx, scope); err != nil {
		return err
	}

	if _, err := s.q().ExecContext(ctx, `DELETE FROM scope_parents WHERE child_key = ?`, scope); err != nil {
		return fmt.Errorf("remove scope %d: %w", scope, err)
	}

	s.logger.Debug("scope removed", zap.Int64("scope", scope))
	return nil
}
