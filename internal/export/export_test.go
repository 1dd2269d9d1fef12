package export_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/varstate/internal/export"
	"github.com/roach88/varstate/internal/store"
	"github.com/roach88/varstate/internal/testutil"
	"github.com/roach88/varstate/internal/variable"
)

func setup(t *testing.T, opts ...export.Option) (*store.Store, *variable.State) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "export.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	tc := st.Transactions()
	opts = append([]export.Option{export.WithIDGenerator(testutil.SequentialIDs("ev"))}, opts...)
	w := export.NewWriter(tc, opts...)
	return st, variable.New(tc, testutil.NewDeterministicKeys(), variable.WithListener(w))
}

func TestUUIDv7(t *testing.T) {
	id := export.UUIDv7()
	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
	assert.NotEqual(t, id, export.UUIDv7())
}

func TestWriter_CreateAndUpdate(t *testing.T) {
	ctx := context.Background()
	st, state := setup(t)
	tc := st.Transactions()

	err := tc.Run(ctx, func(ctx context.Context) error {
		if err := state.CreateScope(ctx, 2, 1); err != nil {
			return err
		}
		if err := state.SetVariableLocal(ctx, 2, 7, []byte("x"), []byte{0x01}); err != nil {
			return err
		}
		if err := state.SetVariableLocal(ctx, 2, 7, []byte("x"), []byte{0x01}); err != nil {
			return err
		}
		return state.SetVariableLocal(ctx, 2, 7, []byte("x"), []byte{0x02})
	})
	require.NoError(t, err)

	events, err := st.ReadVariableEvents(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, store.VariableEvent{
		Position: 1, ID: "ev-0001", Intent: store.IntentCreated,
		Key: 1, WorkflowKey: 7, Name: []byte("x"), Value: []byte{0x01},
		ScopeKey: 2, RootScopeKey: 1,
	}, events[0])
	assert.Equal(t, store.VariableEvent{
		Position: 2, ID: "ev-0002", Intent: store.IntentUpdated,
		Key: 1, WorkflowKey: 7, Name: []byte("x"), Value: []byte{0x02},
		ScopeKey: 2, RootScopeKey: 1,
	}, events[1])
}

func TestWriter_RolledBackWithWrite(t *testing.T) {
	ctx := context.Background()
	st, state := setup(t)
	boom := errors.New("boom")

	err := st.Transactions().Run(ctx, func(ctx context.Context) error {
		if err := state.SetVariableLocal(ctx, 1, 7, []byte("x"), []byte{0x01}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	events, err := st.ReadVariableEvents(ctx, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestWriter_NamePrefixes(t *testing.T) {
	ctx := context.Background()
	st, state := setup(t, export.WithNamePrefixes("order", "ship"))

	for _, name := range []string{"orderId", "customer", "shipping", "Order"} {
		require.NoError(t, state.SetVariableLocal(ctx, 1, 7, []byte(name), []byte{0xc0}))
	}

	events, err := st.ReadVariableEvents(ctx, 0, 0)
	require.NoError(t, err)
	var names []string
	for _, ev := range events {
		names = append(names, string(ev.Name))
	}
	assert.Equal(t, []string{"orderId", "shipping"}, names)

	v, ok, err := state.VariableLocal(ctx, 1, []byte("customer"))
	require.NoError(t, err)
	assert.True(t, ok, "filtered names are still stored")
	assert.Equal(t, []byte{0xc0}, v)
}

func TestWriter_DeletionsNotExported(t *testing.T) {
	ctx := context.Background()
	st, state := setup(t)
	require.NoError(t, state.SetVariableLocal(ctx, 1, 7, []byte("x"), []byte{0x01}))

	require.NoError(t, state.RemoveScope(ctx, 1))

	events, err := st.ReadVariableEvents(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}
