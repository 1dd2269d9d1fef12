// Package keygen hands out partition-scoped keys for variable records.
//
// A key carries its partition id in the high bits and a per-partition
// counter in the low KeyBits bits, so keys are unique within a partition
// and never collide across partitions.
package keygen

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/roach88/varstate/internal/store"
)

const (
	// KeyBits is the number of low bits holding the per-partition counter.
	KeyBits = 51

	// MaxPartitionID keeps encoded keys positive in an int64.
	MaxPartitionID = 1<<(63-KeyBits) - 1
)

// ErrInvalidPartition is returned for partition ids outside [1, MaxPartitionID].
var ErrInvalidPartition = errors.New("invalid partition id")

// KeyGenerator produces a fresh, strictly increasing key per call.
type KeyGenerator interface {
	NextKey(ctx context.Context) (int64, error)
}

// EncodeKey combines a partition id and a counter value into a key.
func EncodeKey(partition int32, counter int64) int64 {
	return int64(partition)<<KeyBits | counter
}

// DecodePartition extracts the partition id from a key.
func DecodePartition(key int64) int32 {
	return int32(key >> KeyBits)
}

func validatePartition(partition int32) error {
	if partition < 1 || partition > MaxPartitionID {
		return fmt.Errorf("%w: %d (must be between 1 and %d)", ErrInvalidPartition, partition, MaxPartitionID)
	}
	return nil
}

// Sequence is an in-memory generator for a single partition.
//
// Thread-safety: Sequence is safe for concurrent use (atomic operations),
// although the store's single-writer model means one goroutine calls it.
type Sequence struct {
	partition int32
	counter   atomic.Int64
}

// NewSequence creates a generator whose first key has counter 1.
func NewSequence(partition int32) (*Sequence, error) {
	return NewSequenceAt(partition, 0)
}

// NewSequenceAt creates a generator resuming after counter value start.
func NewSequenceAt(partition int32, start int64) (*Sequence, error) {
	if err := validatePartition(partition); err != nil {
		return nil, err
	}
	s := &Sequence{partition: partition}
	s.counter.Store(start)
	return s, nil
}

// NextKey returns the next key. It never fails.
func (s *Sequence) NextKey(context.Context) (int64, error) {
	return EncodeKey(s.partition, s.counter.Add(1)), nil
}

// Current returns the counter value of the last key handed out.
func (s *Sequence) Current() int64 {
	return s.counter.Load()
}

// DBGenerator persists its counter in the store's key_generator table
// through the caller's transaction, so keys survive restarts and a rolled
// back transaction does not consume keys.
type DBGenerator struct {
	tc        *store.TransactionContext
	partition int32
}

// NewDBGenerator creates a persistent generator for partition.
func NewDBGenerator(tc *store.TransactionContext, partition int32) (*DBGenerator, error) {
	if err := validatePartition(partition); err != nil {
		return nil, err
	}
	return &DBGenerator{tc: tc, partition: partition}, nil
}

// NextKey reserves and returns the next key.
func (g *DBGenerator) NextKey(ctx context.Context) (int64, error) {
	counter, err := store.NextKeyValue(ctx, g.tc.Querier(), g.partition)
	if err != nil {
		return 0, fmt.Errorf("next key: %w", err)
	}
	return EncodeKey(g.partition, counter), nil
}
