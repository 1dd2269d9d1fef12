package variable

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// record reads the variable stored for (scope, name).
func (s *State) record(ctx context.Context, scope int64, name []byte) (Record, bool, error) {
	var rec Record
	err := s.q().QueryRowContext(ctx, `
		SELECT var_key, value FROM variables WHERE scope_key = ? AND name = ?
	`, scope, blob(name)).Scan(&rec.Key, &rec.Value)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("read variable %q in scope %d: %w", name, scope, err)
	}
	return rec, true, nil
}

func (s *State) put(ctx context.Context, scope int64, name []byte, rec Record) error {
	_, err := s.q().ExecContext(ctx, `
		INSERT INTO variables (scope_key, name, var_key, value)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(scope_key, name) DO UPDATE SET var_key = excluded.var_key, value = excluded.value
	`, scope, blob(name), rec.Key, blob(rec.Value))
	if err != nil {
		return fmt.Errorf("write variable %q in scope %d: %w", name, scope, err)
	}
	return nil
}

// visitLocal calls visit for every variable of scope in name order until
// visit returns false. visit must not issue statements of its own.
func (s *State) visitLocal(ctx context.Context, scope int64, visit func(name, value []byte) bool) (stopped bool, err error) {
	rows, err := s.q().QueryContext(ctx, `
		SELECT name, value FROM variables WHERE scope_key = ? ORDER BY name
	`, scope)
	if err != nil {
		return false, fmt.Errorf("scan variables of scope %d: %w", scope, err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, value []byte
		if err := rows.Scan(&name, &value); err != nil {
			return false, fmt.Errorf("scan variable of scope %d: %w", scope, err)
		}
		if !visit(name, value) {
			return true, nil
		}
	}
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("iterate variables of scope %d: %w", scope, err)
	}
	return false, nil
}

// SetVariableLocal creates or updates name in exactly scope.
//
// A new variable receives a fresh key and fires OnCreate. Changing the value
// of an existing variable keeps its key and fires OnUpdate. Writing a value
// byte-identical to the stored one does nothing.
func (s *State) SetVariableLocal(ctx context.Context, scope, workflowKey int64, name, value []byte) error {
	current, found, err := s.record(ctx, scope, name)
	if err != nil {
		return err
	}

	switch {
	case !found:
		key, err := s.keys.NextKey(ctx)
		if err != nil {
			return fmt.Errorf("set variable %q in scope %d: %w", name, scope, err)
		}
		if err := s.put(ctx, scope, name, Record{Key: key, Value: value}); err != nil {
			return err
		}
		return s.notify(ctx, true, key, workflowKey, scope, name, value)

	case !bytes.Equal(current.Value, value):
		if err := s.put(ctx, scope, name, Record{Key: current.Key, Value: value}); err != nil {
			return err
		}
		return s.notify(ctx, false, current.Key, workflowKey, scope, name, value)

	default:
		return nil
	}
}

func (s *State) notify(ctx context.Context, created bool, key, workflowKey, scope int64, name, value []byte) error {
	if s.listener == nil {
		return nil
	}

	root, err := s.RootScopeKey(ctx, scope)
	if err != nil {
		return err
	}
	ev := Event{
		Key:          key,
		WorkflowKey:  workflowKey,
		Name:         name,
		Value:        value,
		ScopeKey:     scope,
		RootScopeKey: root,
	}

	if created {
		s.logger.Debug("variable created", zap.Int64("key", key), zap.Int64("scope", scope), zap.ByteString("name", name))
		err = s.listener.OnCreate(ctx, ev)
	} else {
		s.logger.Debug("variable updated", zap.Int64("key", key), zap.Int64("scope", scope), zap.ByteString("name", name))
		err = s.listener.OnUpdate(ctx, ev)
	}
	if err != nil {
		return fmt.Errorf("notify listener for %q in scope %d: %w", name, scope, err)
	}
	return nil
}

// VariableLocal returns the value of name in exactly scope.
func (s *State) VariableLocal(ctx context.Context, scope int64, name []byte) ([]byte, bool, error) {
	rec, found, err := s.record(ctx, scope, name)
	if err != nil || !found {
		return nil, false, err
	}
	return rec.Value, true, nil
}

// VariableRecordLocal returns the stored record, including its key.
func (s *State) VariableRecordLocal(ctx context.Context, scope int64, name []byte) (Record, bool, error) {
	return s.record(ctx, scope, name)
}

// HasVariableLocal reports whether scope itself declares name.
func (s *State) HasVariableLocal(ctx context.Context, scope int64, name []byte) (bool, error) {
	var exists bool
	err := s.q().QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM variables WHERE scope_key = ? AND name = ?)
	`, scope, blob(name)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("has variable %q in scope %d: %w", name, scope, err)
	}
	return exists, nil
}

// RemoveAllVariables deletes every local variable of scope without notifying
// the listener.
func (s *State) RemoveAllVariables(ctx context.Context, scope int64) error {
	if _, err := s.q().ExecContext(ctx, `DELETE FROM variables WHERE scope_key = ?`, scope); err != nil {
		return fmt.Errorf("remove variables of scope %d: %w", scope, err)
	}
	return nil
}

// blob maps nil to an empty slice so it binds as a zero-length BLOB, not NULL.
func blob(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
