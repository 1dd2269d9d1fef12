package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/varstate/internal/value"
)

// VarOptions holds flags for the var commands.
type VarOptions struct {
	*RootOptions
	Workflow int64
	Local    bool
}

// VarResult describes one variable.
type VarResult struct {
	Scope int64           `json:"scope"`
	Name  string          `json:"name"`
	Key   int64           `json:"key,omitempty"`
	Value json.RawMessage `json:"value"`
}

// NewVarCommand creates the var command group.
func NewVarCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VarOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "var",
		Short: "Read and write single variables",
	}

	set := &cobra.Command{
		Use:   "set <scope> <name> <json>",
		Short: "Set a variable in exactly scope",
		Long: `Set a variable in exactly scope.

The value is given as JSON and stored in its binary encoding. Setting a
value identical to the stored one changes nothing and is not exported.

Example:
  varstate var set 2 orderId '"A-17"' --workflow 1`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setVar(opts, cmd, args[0], args[1], args[2])
		},
	}
	set.Flags().Int64Var(&opts.Workflow, "workflow", 0, "workflow instance key recorded with the change")

	get := &cobra.Command{
		Use:   "get <scope> <name>",
		Short: "Print a variable as seen from scope",
		Long: `Print a variable as seen from scope.

Without --local the nearest declaration in scope or one of its ancestors
is returned. Exits with code 1 if the variable is not visible.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getVar(opts, cmd, args[0], args[1])
		},
	}
	get.Flags().BoolVar(&opts.Local, "local", false, "do not look at ancestor scopes")

	cmd.AddCommand(set, get)
	return cmd
}

func setVar(opts *VarOptions, cmd *cobra.Command, scopeArg, name, valueJSON string) error {
	scope, err := parseKey("scope", scopeArg)
	if err != nil {
		return err
	}
	raw, err := value.FromJSON([]byte(valueJSON))
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid value", err)
	}

	return withSession(opts.RootOptions, cmd, func(s *session, out *OutputFormatter) error {
		var key int64
		err := s.run(cmd.Context(), func(ctx context.Context) error {
			if err := s.state.SetVariableLocal(ctx, scope, opts.Workflow, []byte(name), raw); err != nil {
				return err
			}
			rec, _, err := s.state.VariableRecordLocal(ctx, scope, []byte(name))
			key = rec.Key
			return err
		})
		if err != nil {
			return err
		}

		rendered, err := value.Render(raw)
		if err != nil {
			return err
		}
		return out.Emit(VarResult{Scope: scope, Name: name, Key: key, Value: json.RawMessage(rendered)},
			fmt.Sprintf("%s = %s (key %d)", name, rendered, key))
	})
}

func getVar(opts *VarOptions, cmd *cobra.Command, scopeArg, name string) error {
	scope, err := parseKey("scope", scopeArg)
	if err != nil {
		return err
	}

	return withSession(opts.RootOptions, cmd, func(s *session, out *OutputFormatter) error {
		var (
			raw   []byte
			found bool
		)
		err := s.run(cmd.Context(), func(ctx context.Context) error {
			var err error
			if opts.Local {
				raw, found, err = s.state.VariableLocal(ctx, scope, []byte(name))
			} else {
				raw, found, err = s.state.Variable(ctx, scope, []byte(name))
			}
			return err
		})
		if err != nil {
			return err
		}
		if !found {
			return NewExitError(ExitFailure, fmt.Sprintf("variable %q not found from scope %d", name, scope))
		}

		rendered, err := value.Render(raw)
		if err != nil {
			return WrapExitError(ExitCommandError, "stored value is not valid", err)
		}
		return out.Emit(VarResult{Scope: scope, Name: name, Value: json.RawMessage(rendered)}, rendered)
	})
}
