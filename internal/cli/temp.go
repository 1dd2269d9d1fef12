package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/varstate/internal/value"
)

// TempResult is a temporary payload.
type TempResult struct {
	Scope     int64           `json:"scope"`
	Variables json.RawMessage `json:"variables,omitempty"`
}

// NewTempCommand creates the temp command group.
func NewTempCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "temp",
		Short: "Stage temporary variables for a scope",
		Long: `Stage temporary variables for a scope.

A temporary payload is held per scope until it is read and removed. It is
never visible to variable lookups or exports.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <scope> <json-object>",
		Short: "Replace the temporary payload of scope",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := parseKey("scope", args[0])
			if err != nil {
				return err
			}
			doc, err := value.DocumentFromJSON([]byte(args[1]))
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid document", err)
			}
			return withSession(rootOpts, cmd, func(s *session, out *OutputFormatter) error {
				err := s.run(cmd.Context(), func(ctx context.Context) error {
					return s.state.SetTemporaryVariables(ctx, scope, doc)
				})
				if err != nil {
					return err
				}
				return out.Emit(TempResult{Scope: scope}, fmt.Sprintf("temporary variables staged for scope %d", scope))
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <scope>",
		Short: "Print the temporary payload of scope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := parseKey("scope", args[0])
			if err != nil {
				return err
			}
			return withSession(rootOpts, cmd, func(s *session, out *OutputFormatter) error {
				var (
					payload []byte
					found   bool
				)
				err := s.run(cmd.Context(), func(ctx context.Context) error {
					var err error
					payload, found, err = s.state.TemporaryVariables(ctx, scope)
					return err
				})
				if err != nil {
					return err
				}
				if !found {
					return NewExitError(ExitFailure, fmt.Sprintf("no temporary variables for scope %d", scope))
				}

				rendered, err := value.DocumentToJSON(payload)
				if err != nil {
					return WrapExitError(ExitCommandError, "stored payload is not valid", err)
				}
				return out.Emit(TempResult{Scope: scope, Variables: rendered}, string(rendered))
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <scope>",
		Short: "Drop the temporary payload of scope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := parseKey("scope", args[0])
			if err != nil {
				return err
			}
			return withSession(rootOpts, cmd, func(s *session, out *OutputFormatter) error {
				err := s.run(cmd.Context(), func(ctx context.Context) error {
					return s.state.RemoveTemporaryVariables(ctx, scope)
				})
				if err != nil {
					return err
				}
				return out.Emit(TempResult{Scope: scope}, fmt.Sprintf("temporary variables of scope %d removed", scope))
			})
		},
	})

	return cmd
}
