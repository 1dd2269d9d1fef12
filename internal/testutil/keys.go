package testutil

import (
	"context"
	"sync"
)

// DeterministicKeys hands out keys 1, 2, 3, ... for tests.
//
// Unlike keygen.Sequence, DeterministicKeys does not encode a partition and
// can be reset for test reuse, so the same scenario always produces the same
// variable keys.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicKeys struct {
	mu  sync.Mutex
	seq int64
}

// NewDeterministicKeys creates a generator whose first key is 1.
func NewDeterministicKeys() *DeterministicKeys {
	return &DeterministicKeys{}
}

// NextKey implements keygen.KeyGenerator.
func (k *DeterministicKeys) NextKey(context.Context) (int64, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.seq++
	return k.seq, nil
}

// Current returns the last key handed out, or 0.
func (k *DeterministicKeys) Current() int64 {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.seq
}

// Reset makes the next key 1 again.
func (k *DeterministicKeys) Reset() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.seq = 0
}

// SequentialIDs returns an ID generator producing prefix-0001, prefix-0002, ...
// for deterministic event IDs. An empty prefix defaults to "event".
func SequentialIDs(prefix string) func() string {
	if prefix == "" {
		prefix = "event"
	}
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return prefixed(prefix, n)
	}
}

func prefixed(prefix string, n int) string {
	const digits = "0123456789"
	buf := []byte{'0', '0', '0', '0'}
	for i := len(buf) - 1; i >= 0 && n > 0; i-- {
		buf[i] = digits[n%10]
		n /= 10
	}
	return prefix + "-" + string(buf)
}
