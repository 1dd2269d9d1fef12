package variable

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SetTemporaryVariables replaces the temporary payload staged for scope.
// Temporary payloads never take part in lookups, exports or merges.
func (s *State) SetTemporaryVariables(ctx context.Context, scope int64, payload []byte) error {
	_, err := s.q().ExecContext(ctx, `
		INSERT INTO temporary_variables (scope_key, payload)
		VALUES (?, ?)
		ON CONFLICT(scope_key) DO UPDATE SET payload = excluded.payload
	`, scope, blob(payload))
	if err != nil {
		return fmt.Errorf("set temporary variables of scope %d: %w", scope, err)
	}
	return nil
}

// TemporaryVariables returns the payload staged for scope. An empty payload
// is reported the same way as a missing one.
func (s *State) TemporaryVariables(ctx context.Context, scope int64) ([]byte, bool, error) {
	var payload []byte
	err := s.q().QueryRowContext(ctx, `
		SELECT payload FROM temporary_variables WHERE scope_key = ?
	`, scope).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("temporary variables of scope %d: %w", scope, err)
	}
	if len(payload) == 0 {
		return nil, false, nil
	}
	return payload, true, nil
}

// RemoveTemporaryVariables deletes the payload staged for scope.
func (s *State) RemoveTemporaryVariables(ctx context.Context, scope int64) error {
	if _, err := s.q().ExecContext(ctx, `DELETE FROM temporary_variables WHERE scope_key = ?`, scope); err != nil {
		return fmt.Errorf("remove temporary variables of scope %d: %w", scope, err)
	}
	return nil
}
