package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "varstate", cmd.Use)
	assert.Contains(t, cmd.Long, "scopes")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"scope", "create"},
		{"scope", "parent"},
		{"scope", "remove"},
		{"var", "set"},
		{"var", "get"},
		{"doc", "export"},
		{"doc", "import"},
		{"temp", "set"},
		{"temp", "get"},
		{"temp", "remove"},
		{"events"},
		{"test"},
	}

	for _, path := range commands {
		name := path[len(path)-1]
		t.Run(name, func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err, "Command %v should exist", path)
			require.NotNil(t, subCmd)
			assert.Equal(t, name, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	dbFlag := cmd.PersistentFlags().Lookup("db")
	require.NotNil(t, dbFlag)
	assert.Equal(t, "", dbFlag.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}

func TestVarCommandFlags(t *testing.T) {
	cmd := NewRootCommand()

	setCmd, _, err := cmd.Find([]string{"var", "set"})
	require.NoError(t, err)
	require.NotNil(t, setCmd.Flags().Lookup("workflow"))

	getCmd, _, err := cmd.Find([]string{"var", "get"})
	require.NoError(t, err)
	localFlag := getCmd.Flags().Lookup("local")
	require.NotNil(t, localFlag)
	assert.Equal(t, "false", localFlag.DefValue)
}

func TestDocCommandFlags(t *testing.T) {
	cmd := NewRootCommand()

	exportCmd, _, err := cmd.Find([]string{"doc", "export"})
	require.NoError(t, err)
	require.NotNil(t, exportCmd.Flags().Lookup("names"))
	require.NotNil(t, exportCmd.Flags().Lookup("local"))

	importCmd, _, err := cmd.Find([]string{"doc", "import"})
	require.NoError(t, err)
	require.NotNil(t, importCmd.Flags().Lookup("workflow"))
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, t.TempDir()+"/state.db", "--format", "yaml", "events")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `invalid format "yaml"`)
}
