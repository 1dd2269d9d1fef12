package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/varstate/internal/keygen"
)

// execute runs the root command against db and returns its stdout.
func execute(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()

	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--db", db}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func mustExecute(t *testing.T, db string, args ...string) string {
	t.Helper()
	out, err := execute(t, db, args...)
	require.NoError(t, err, "varstate %s", strings.Join(args, " "))
	return strings.TrimSpace(out)
}

func newDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "state.db")
}

func TestScopeCommands(t *testing.T) {
	db := newDB(t)

	assert.Equal(t, "scope 2 -> 1", mustExecute(t, db, "scope", "create", "2", "1"))
	assert.Equal(t, "1", mustExecute(t, db, "scope", "parent", "2"))
	assert.Equal(t, "none", mustExecute(t, db, "scope", "parent", "1"))

	mustExecute(t, db, "scope", "remove", "2")
	assert.Equal(t, "none", mustExecute(t, db, "scope", "parent", "2"))
}

func TestScopeParentJSON(t *testing.T) {
	db := newDB(t)
	mustExecute(t, db, "scope", "create", "2", "1")

	out := mustExecute(t, db, "--format", "json", "scope", "parent", "2")

	var resp struct {
		Status string      `json:"status"`
		Data   ScopeResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, ScopeResult{Scope: 2, Parent: 1, HasParent: true}, resp.Data)
}

func TestVarSetAndGet(t *testing.T) {
	db := newDB(t)
	mustExecute(t, db, "scope", "create", "2", "1")

	out := mustExecute(t, db, "var", "set", "1", "orderId", `"A-17"`, "--workflow", "7")
	assert.Equal(t, `orderId = "A-17" (key `+strconv.FormatInt(keygen.EncodeKey(1, 1), 10)+`)`, out)

	assert.Equal(t, `"A-17"`, mustExecute(t, db, "var", "get", "2", "orderId"))

	_, err := execute(t, db, "var", "get", "2", "orderId", "--local")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), `variable "orderId" not found from scope 2`)
}

func TestVarSetKeepsKeyOnUpdate(t *testing.T) {
	db := newDB(t)
	first := mustExecute(t, db, "var", "set", "1", "n", "1")
	second := mustExecute(t, db, "var", "set", "1", "n", "2")

	key := strconv.FormatInt(keygen.EncodeKey(1, 1), 10)
	assert.Equal(t, "n = 1 (key "+key+")", first)
	assert.Equal(t, "n = 2 (key "+key+")", second)
}

func TestVarSetRejectsInvalidArguments(t *testing.T) {
	db := newDB(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad_scope", []string{"var", "set", "x", "n", "1"}, `invalid scope "x"`},
		{"bad_json", []string{"var", "set", "1", "n", "{"}, "invalid value"},
		{"bad_workflow", []string{"var", "set", "1", "n", "1", "--workflow", "w"}, "invalid argument"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, db, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDocImportAndExport(t *testing.T) {
	db := newDB(t)
	mustExecute(t, db, "scope", "create", "2", "1")
	mustExecute(t, db, "scope", "create", "3", "2")
	mustExecute(t, db, "var", "set", "2", "total", "0")

	mustExecute(t, db, "doc", "import", "3", `{"total": 42, "approved": true}`)

	// total stays where it was declared; approved goes to the top.
	assert.Equal(t, `{"total":42}`, mustExecute(t, db, "doc", "export", "2", "--local"))
	assert.Equal(t, `{"approved":true}`, mustExecute(t, db, "doc", "export", "1", "--local"))
	assert.Equal(t, `{}`, mustExecute(t, db, "doc", "export", "3", "--local"))

	assert.Equal(t, `{"approved":true,"total":42}`, mustExecute(t, db, "doc", "export", "3"))
	assert.Equal(t, `{"total":42}`, mustExecute(t, db, "doc", "export", "3", "--names", "total,missing"))
}

func TestDocImportLocal(t *testing.T) {
	db := newDB(t)
	mustExecute(t, db, "scope", "create", "2", "1")
	mustExecute(t, db, "var", "set", "1", "x", "1")

	mustExecute(t, db, "doc", "import", "2", `{"x": 2}`, "--local")

	assert.Equal(t, `{"x":1}`, mustExecute(t, db, "doc", "export", "1", "--local"))
	assert.Equal(t, `{"x":2}`, mustExecute(t, db, "doc", "export", "2", "--local"))
}

func TestDocExportLocalAndNamesConflict(t *testing.T) {
	_, err := execute(t, newDB(t), "doc", "export", "1", "--local", "--names", "a")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestDocImportRejectsNonObject(t *testing.T) {
	_, err := execute(t, newDB(t), "doc", "import", "1", `[1, 2]`)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid document")
}

func TestTempCommands(t *testing.T) {
	db := newDB(t)

	_, err := execute(t, db, "temp", "get", "5")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	mustExecute(t, db, "temp", "set", "5", `{"a": 1}`)
	assert.Equal(t, `{"a":1}`, mustExecute(t, db, "temp", "get", "5"))

	// Temporary variables are not visible to lookups.
	_, err = execute(t, db, "var", "get", "5", "a")
	require.Error(t, err)

	mustExecute(t, db, "temp", "remove", "5")
	_, err = execute(t, db, "temp", "get", "5")
	require.Error(t, err)
}

func TestEventsCommand(t *testing.T) {
	db := newDB(t)
	mustExecute(t, db, "scope", "create", "2", "1")
	mustExecute(t, db, "var", "set", "1", "a", "1")
	mustExecute(t, db, "var", "set", "2", "b", `"x"`)
	mustExecute(t, db, "var", "set", "1", "a", "2")

	out := mustExecute(t, db, "events")
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "1 CREATED scope=1")
	assert.Contains(t, lines[0], "a = 1")
	assert.Contains(t, lines[1], `2 CREATED scope=2`)
	assert.Contains(t, lines[1], `b = "x"`)
	assert.Contains(t, lines[2], "3 UPDATED scope=1")
	assert.Contains(t, lines[2], "a = 2")

	out = mustExecute(t, db, "events", "--after", "1", "--limit", "1")
	assert.Contains(t, out, `b = "x"`)
	assert.NotContains(t, out, "UPDATED")

	out = mustExecute(t, db, "events", "--scope", "1", "--after", "1")
	assert.Contains(t, out, "3 UPDATED")
	assert.NotContains(t, out, "CREATED")
}

func TestEventsCommandJSON(t *testing.T) {
	db := newDB(t)
	mustExecute(t, db, "scope", "create", "2", "1")
	mustExecute(t, db, "var", "set", "2", "obj", `{"k": [1, null]}`, "--workflow", "9")

	out := mustExecute(t, db, "--format", "json", "events")

	var resp struct {
		Data []EventResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 1)

	ev := resp.Data[0]
	assert.Equal(t, int64(1), ev.Position)
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, "obj", ev.Name)
	assert.Equal(t, int64(9), ev.WorkflowKey)
	assert.Equal(t, int64(2), ev.ScopeKey)
	assert.Equal(t, int64(1), ev.RootScopeKey)
	assert.JSONEq(t, `{"k":[1,null]}`, string(ev.Value))
}

func TestEventsEmpty(t *testing.T) {
	assert.Equal(t, "No events.", mustExecute(t, newDB(t), "events"))
}

func TestExportDisabledByConfig(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "state.db")
	cfgPath := filepath.Join(dir, "varstate.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("export:\n  enabled: false\n"), 0644))

	mustExecute(t, db, "--config", cfgPath, "var", "set", "1", "a", "1")
	assert.Equal(t, "No events.", mustExecute(t, db, "--config", cfgPath, "events"))
}

func TestExportNamePrefixesFromConfig(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "state.db")
	cfgPath := filepath.Join(dir, "varstate.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("export:\n  name_prefixes: [pub_]\n"), 0644))

	mustExecute(t, db, "--config", cfgPath, "var", "set", "1", "pub_a", "1")
	mustExecute(t, db, "--config", cfgPath, "var", "set", "1", "private", "2")

	out := mustExecute(t, db, "--config", cfgPath, "events")
	assert.Contains(t, out, "pub_a")
	assert.NotContains(t, out, "private")
}

func TestMissingConfigFile(t *testing.T) {
	_, err := execute(t, newDB(t), "--config", filepath.Join(t.TempDir(), "nope.yaml"), "events")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load config")
}
