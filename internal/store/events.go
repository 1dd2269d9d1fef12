package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Intent names the kind of change an exported variable event records.
type Intent string

const (
	IntentCreated Intent = "CREATED"
	IntentUpdated Intent = "UPDATED"
)

// VariableEvent is one entry of the variable export log.
type VariableEvent struct {
	Position     int64  `json:"position"`
	ID           string `json:"id"`
	Intent       Intent `json:"intent"`
	Key          int64  `json:"key"`
	WorkflowKey  int64  `json:"workflow_key"`
	Name         []byte `json:"name"`
	Value        []byte `json:"value"`
	ScopeKey     int64  `json:"scope_key"`
	RootScopeKey int64  `json:"root_scope_key"`
}

// AppendVariableEvent appends ev to the log through q and returns its
// position. ev.Position is ignored; positions are assigned by the log.
//
// Uses ON CONFLICT(id) DO NOTHING so that re-appending an event with the same
// ID is idempotent; the existing position is returned in that case.
func AppendVariableEvent(ctx context.Context, q Querier, ev VariableEvent) (int64, error) {
	var position int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO variable_events
		(id, intent, var_key, workflow_key, name, value, scope_key, root_scope_key)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
		RETURNING position
	`,
		ev.ID,
		string(ev.Intent),
		ev.Key,
		ev.WorkflowKey,
		nonNil(ev.Name),
		nonNil(ev.Value),
		ev.ScopeKey,
		ev.RootScopeKey,
	).Scan(&position)
	if err == sql.ErrNoRows {
		err = q.QueryRowContext(ctx, `SELECT position FROM variable_events WHERE id = ?`, ev.ID).Scan(&position)
	}
	if err != nil {
		return 0, fmt.Errorf("append variable event: %w", err)
	}
	return position, nil
}

// ReadVariableEvents returns up to limit events with a position greater than
// afterPosition, ordered by position. A limit <= 0 means no limit.
//
// Returns an empty slice (not nil) if no events match.
func (s *Store) ReadVariableEvents(ctx context.Context, afterPosition int64, limit int) ([]VariableEvent, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT position, id, intent, var_key, workflow_key, name, value, scope_key, root_scope_key
		FROM variable_events
		WHERE position > ?
		ORDER BY position ASC
		LIMIT ?
	`, afterPosition, limit)
	if err != nil {
		return nil, fmt.Errorf("query variable events: %w", err)
	}
	defer rows.Close()

	return scanVariableEvents(rows)
}

// ReadVariableEventsByScope returns every event recorded for scopeKey,
// ordered by position.
func (s *Store) ReadVariableEventsByScope(ctx context.Context, scopeKey int64) ([]VariableEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT position, id, intent, var_key, workflow_key, name, value, scope_key, root_scope_key
		FROM variable_events
		WHERE scope_key = ?
		ORDER BY position ASC
	`, scopeKey)
	if err != nil {
		return nil, fmt.Errorf("query variable events by scope: %w", err)
	}
	defer rows.Close()

	return scanVariableEvents(rows)
}

func scanVariableEvents(rows *sql.Rows) ([]VariableEvent, error) {
	events := []VariableEvent{}
	for rows.Next() {
		var ev VariableEvent
		var intent string
		if err := rows.Scan(
			&ev.Position, &ev.ID, &intent, &ev.Key, &ev.WorkflowKey,
			&ev.Name, &ev.Value, &ev.ScopeKey, &ev.RootScopeKey,
		); err != nil {
			return nil, fmt.Errorf("scan variable event: %w", err)
		}
		ev.Intent = Intent(intent)
		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate variable events: %w", err)
	}
	return events, nil
}

// nonNil maps a nil slice to an empty one so that it binds as a zero-length
// BLOB rather than NULL.
func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
