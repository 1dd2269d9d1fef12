package variable_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/varstate/internal/variable"
)

func TestEndToEnd_LookupThroughParent(t *testing.T) {
	f := newFixture(t)
	f.createScope(t, 2, 1)
	f.setLocal(t, 1, "x", "A")
	f.setLocal(t, 2, "y", "B")

	v, ok := f.lookup(t, 2, "x")
	require.True(t, ok)
	assert.Equal(t, pack(t, "A"), v)

	v, ok = f.lookup(t, 2, "y")
	require.True(t, ok)
	assert.Equal(t, pack(t, "B"), v)

	_, ok = f.lookup(t, 1, "y")
	assert.False(t, ok, "a parent never sees child variables")
}

func TestShadowing(t *testing.T) {
	f := newFixture(t)
	const p, s = 10, 11
	f.createScope(t, s, p)
	f.setLocal(t, p, "N", "1")
	f.setLocal(t, s, "N", "2")

	v, ok := f.lookup(t, s, "N")
	require.True(t, ok)
	assert.Equal(t, pack(t, "2"), v)

	v, ok = f.lookup(t, p, "N")
	require.True(t, ok)
	assert.Equal(t, pack(t, "1"), v)

	d, err := f.state.VariablesAsDocument(f.ctx, s)
	require.NoError(t, err)
	assert.Equal(t, values(t, "N", "2"), decodeDoc(t, d))
}

func TestVariable_UnregisteredScope(t *testing.T) {
	f := newFixture(t)
	f.setLocal(t, 7, "x", 1)

	v, ok := f.lookup(t, 7, "x")
	require.True(t, ok, "an unregistered scope still resolves its own variables")
	assert.Equal(t, pack(t, 1), v)

	_, ok = f.lookup(t, 8, "x")
	assert.False(t, ok)
}

func TestVariablesAsDocument_WholeChain(t *testing.T) {
	f := newFixture(t)
	f.createScope(t, 2, 1)
	f.createScope(t, 3, 2)
	f.setLocal(t, 1, "a", "root")
	f.setLocal(t, 1, "shared", "root")
	f.setLocal(t, 2, "b", "middle")
	f.setLocal(t, 2, "shared", "middle")
	f.setLocal(t, 3, "c", "leaf")

	d, err := f.state.VariablesAsDocument(f.ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, values(t,
		"a", "root",
		"b", "middle",
		"c", "leaf",
		"shared", "middle",
	), decodeDoc(t, d))

	d, err = f.state.VariablesAsDocument(f.ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, values(t, "a", "root", "shared", "root"), decodeDoc(t, d))
}

func TestVariablesAsDocument_EmptyChain(t *testing.T) {
	f := newFixture(t)
	f.createScope(t, 2, 1)

	d, err := f.state.VariablesAsDocument(f.ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, decodeDoc(t, d))
}

func TestVariablesAsDocumentFiltered(t *testing.T) {
	f := newFixture(t)
	f.createScope(t, 2, 1)
	f.setLocal(t, 1, "a", 1)
	f.setLocal(t, 1, "b", 2)
	f.setLocal(t, 2, "b", 20)
	f.setLocal(t, 2, "c", 30)

	tests := []struct {
		name  string
		names []string
		want  map[string][]byte
	}{
		{"nearest wins", []string{"b"}, values(t, "b", 20)},
		{"across scopes", []string{"a", "c"}, values(t, "a", 1, "c", 30)},
		{"missing names omitted", []string{"a", "zzz"}, values(t, "a", 1)},
		{"nothing requested", nil, values(t)},
		{"nothing found", []string{"q"}, values(t)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			names := make([][]byte, len(tt.names))
			for i, n := range tt.names {
				names[i] = []byte(n)
			}
			d, err := f.state.VariablesAsDocumentFiltered(f.ctx, 2, names)
			require.NoError(t, err)
			assert.Equal(t, tt.want, decodeDoc(t, d))
		})
	}
}

func TestVariablesAsDocumentFiltered_StopsOnceAllFound(t *testing.T) {
	f := newFixture(t)
	f.createScope(t, 2, 1)
	f.setLocal(t, 1, "a", 1)
	f.setLocal(t, 2, "b", 20)
	f.setLocal(t, 2, "c", 30)

	// Without the hierarchy table any step past scope 2 fails.
	_, err := f.store.DB().ExecContext(f.ctx, `DROP TABLE scope_parents`)
	require.NoError(t, err)

	d, err := f.state.VariablesAsDocumentFiltered(f.ctx, 2, [][]byte{[]byte("c"), []byte("b")})
	require.NoError(t, err)
	assert.Equal(t, values(t, "b", 20, "c", 30), decodeDoc(t, d))

	_, err = f.state.VariablesAsDocumentFiltered(f.ctx, 2, [][]byte{[]byte("b"), []byte("a")})
	require.Error(t, err)

	_, err = f.state.VariablesAsDocument(f.ctx, 2)
	require.Error(t, err)
}

func TestVariablesAsDocumentFiltered_DuplicateNames(t *testing.T) {
	f := newFixture(t)
	f.createScope(t, 2, 1)
	f.setLocal(t, 1, "x", "outer")
	f.setLocal(t, 2, "x", "inner")

	d, err := f.state.VariablesAsDocumentFiltered(f.ctx, 2, [][]byte{[]byte("x"), []byte("x")})
	require.NoError(t, err)

	assert.Equal(t, values(t, "x", "inner"), decodeDoc(t, d))
}

func TestVariablesLocalAsDocument(t *testing.T) {
	f := newFixture(t)
	f.createScope(t, 2, 1)
	f.setLocal(t, 1, "a", 1)
	f.setLocal(t, 2, "b", 2)

	d, err := f.state.VariablesLocalAsDocument(f.ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, values(t, "b", 2), decodeDoc(t, d))
}

func TestHierarchy_ParentAndRoot(t *testing.T) {
	f := newFixture(t)
	f.createScope(t, 2, 1)
	f.createScope(t, 3, 2)

	parent, ok, err := f.state.ParentScopeKey(f.ctx, 3)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(2), parent)

	parent, ok, err = f.state.ParentScopeKey(f.ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, variable.NoParent, parent)

	root, err := f.state.RootScopeKey(f.ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1), root)

	root, err = f.state.RootScopeKey(f.ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), root)
}

func TestCreateScope_ReplacesParent(t *testing.T) {
	f := newFixture(t)
	f.createScope(t, 3, 1)
	f.createScope(t, 3, 2)

	parent, ok, err := f.state.ParentScopeKey(f.ctx, 3)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(2), parent)
}

func TestRemoveScope(t *testing.T) {
	f := newFixture(t)
	f.createScope(t, 2, 1)
	f.createScope(t, 3, 2)
	f.setLocal(t, 2, "a", 1)
	f.setLocal(t, 2, "b", 2)
	f.setLocal(t, 1, "a", 0)
	require.NoError(t, f.state.SetTemporaryVariables(f.ctx, 2, doc(t, "t", 1)))
	f.listener.Reset()

	require.NoError(t, f.state.RemoveScope(f.ctx, 2))

	for _, name := range []string{"a", "b"} {
		_, ok := f.local(t, 2, name)
		assert.False(t, ok, name)
	}
	parent, ok, err := f.state.ParentScopeKey(f.ctx, 2)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, variable.NoParent, parent)

	_, ok, err = f.state.TemporaryVariables(f.ctx, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok = f.local(t, 1, "a")
	assert.True(t, ok, "parent variables survive")
	parent, ok, err = f.state.ParentScopeKey(f.ctx, 3)
	require.NoError(t, err)
	assert.True(t, ok, "children are not cascaded")
	assert.Equal(t, int64(2), parent)
	assert.Zero(t, f.listener.Count(""))
}

func TestIsEmpty(t *testing.T) {
	f := newFixture(t)

	empty, err := f.state.IsEmpty(f.ctx)
	require.NoError(t, err)
	assert.True(t, empty)

	f.createScope(t, 2, 1)
	empty, err = f.state.IsEmpty(f.ctx)
	require.NoError(t, err)
	assert.False(t, empty)

	require.NoError(t, f.state.RemoveScope(f.ctx, 2))
	empty, err = f.state.IsEmpty(f.ctx)
	require.NoError(t, err)
	assert.True(t, empty)

	require.NoError(t, f.state.SetTemporaryVariables(f.ctx, 5, []byte{0x80}))
	empty, err = f.state.IsEmpty(f.ctx)
	require.NoError(t, err)
	assert.False(t, empty)
}
