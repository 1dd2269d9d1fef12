package variable_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/roach88/varstate/internal/document"
	"github.com/roach88/varstate/internal/store"
	"github.com/roach88/varstate/internal/testutil"
	"github.com/roach88/varstate/internal/variable"
)

const workflowKey = int64(99)

type fixture struct {
	ctx      context.Context
	store    *store.Store
	state    *variable.State
	listener *testutil.RecordingListener
	keys     *testutil.DeterministicKeys
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	listener := testutil.NewRecordingListener()
	keys := testutil.NewDeterministicKeys()
	return &fixture{
		ctx:      context.Background(),
		store:    st,
		state:    variable.New(st.Transactions(), keys, variable.WithListener(listener)),
		listener: listener,
		keys:     keys,
	}
}

func pack(t *testing.T, v any) []byte {
	t.Helper()
	b, err := msgpack.Marshal(v)
	require.NoError(t, err)
	return b
}

func doc(t *testing.T, pairs ...any) []byte {
	t.Helper()
	require.Zero(t, len(pairs)%2, "pairs must be name/value")
	var entries []document.Entry
	for i := 0; i < len(pairs); i += 2 {
		entries = append(entries, document.Entry{
			Name:  []byte(pairs[i].(string)),
			Value: pack(t, pairs[i+1]),
		})
	}
	d, err := document.Encode(entries...)
	require.NoError(t, err)
	return d
}

// decodeDoc returns the raw values of d by name.
func decodeDoc(t *testing.T, d []byte) map[string][]byte {
	t.Helper()
	indexed, err := document.Index(d)
	require.NoError(t, err)
	entries, err := indexed.Entries()
	require.NoError(t, err)

	out := make(map[string][]byte, len(entries))
	for _, e := range entries {
		out[string(e.Name)] = e.Value
	}
	require.Len(t, out, indexed.Len(), "header count must match distinct entries")
	return out
}

// values builds the expected result of decodeDoc.
func values(t *testing.T, pairs ...any) map[string][]byte {
	t.Helper()
	out := make(map[string][]byte, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		out[pairs[i].(string)] = pack(t, pairs[i+1])
	}
	return out
}

func (f *fixture) setLocal(t *testing.T, scope int64, name string, v any) {
	t.Helper()
	require.NoError(t, f.state.SetVariableLocal(f.ctx, scope, workflowKey, []byte(name), pack(t, v)))
}

func (f *fixture) createScope(t *testing.T, child, parent int64) {
	t.Helper()
	require.NoError(t, f.state.CreateScope(f.ctx, child, parent))
}

func (f *fixture) local(t *testing.T, scope int64, name string) ([]byte, bool) {
	t.Helper()
	v, ok, err := f.state.VariableLocal(f.ctx, scope, []byte(name))
	require.NoError(t, err)
	return v, ok
}

func (f *fixture) lookup(t *testing.T, scope int64, name string) ([]byte, bool) {
	t.Helper()
	v, ok, err := f.state.Variable(f.ctx, scope, []byte(name))
	require.NoError(t, err)
	return v, ok
}
