package store

import (
	"context"
	"fmt"
)

// NextKeyValue reserves the next counter value for partition and returns it.
// The first value handed out for a partition is 1. The reservation is part of
// whatever transaction q belongs to, so a rollback returns the value.
func NextKeyValue(ctx context.Context, q Querier, partition int32) (int64, error) {
	var value int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO key_generator (partition_id, next_value)
		VALUES (?, 2)
		ON CONFLICT(partition_id) DO UPDATE SET next_value = next_value + 1
		RETURNING next_value - 1
	`, partition).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("next key value: %w", err)
	}
	return value, nil
}

// CurrentKeyValue returns the last counter value handed out for partition,
// or 0 if none has been.
func CurrentKeyValue(ctx context.Context, q Querier, partition int32) (int64, error) {
	var next int64
	err := q.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(next_value), 1) FROM key_generator WHERE partition_id = ?
	`, partition).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("current key value: %w", err)
	}
	return next - 1, nil
}
