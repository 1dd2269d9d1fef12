package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// DefaultConfigFile is read when --config is not given. It may be absent.
const DefaultConfigFile = "varstate.yaml"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Database   string // overrides the configured database
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the varstate CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "varstate",
		Short: "Scoped variable state for workflow instances",
		Long: `varstate stores workflow variables in a tree of scopes.

A lookup from a scope sees its own variables and those of its ancestors,
with inner declarations shadowing outer ones. Merging a document writes
each entry where its name is already declared, or at the top of the chain.
Every create and update is appended to the variable event log.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output (debug logging)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default "+DefaultConfigFile+" if present)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides config)")

	cmd.AddCommand(NewScopeCommand(opts))
	cmd.AddCommand(NewVarCommand(opts))
	cmd.AddCommand(NewDocCommand(opts))
	cmd.AddCommand(NewTempCommand(opts))
	cmd.AddCommand(NewEventsCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}
