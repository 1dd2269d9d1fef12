package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/varstate/internal/variable"
)

// ScopeResult describes a scope and its parent link.
type ScopeResult struct {
	Scope     int64 `json:"scope"`
	Parent    int64 `json:"parent"`
	HasParent bool  `json:"has_parent"`
}

// NewScopeCommand creates the scope command group.
func NewScopeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scope",
		Short: "Manage the scope hierarchy",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "create <scope> <parent>",
		Short: "Register parent as the parent of scope",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := parseKey("scope", args[0])
			if err != nil {
				return err
			}
			parent, err := parseKey("parent", args[1])
			if err != nil {
				return err
			}
			return withSession(rootOpts, cmd, func(s *session, out *OutputFormatter) error {
				err := s.run(cmd.Context(), func(ctx context.Context) error {
					return s.state.CreateScope(ctx, scope, parent)
				})
				if err != nil {
					return err
				}
				return out.Emit(ScopeResult{Scope: scope, Parent: parent, HasParent: true},
					fmt.Sprintf("scope %d -> %d", scope, parent))
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "parent <scope>",
		Short: "Print the parent of scope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := parseKey("scope", args[0])
			if err != nil {
				return err
			}
			return withSession(rootOpts, cmd, func(s *session, out *OutputFormatter) error {
				var res ScopeResult
				err := s.run(cmd.Context(), func(ctx context.Context) error {
					parent, ok, err := s.state.ParentScopeKey(ctx, scope)
					res = ScopeResult{Scope: scope, Parent: parent, HasParent: ok}
					return err
				})
				if err != nil {
					return err
				}
				text := "none"
				if res.HasParent {
					text = fmt.Sprint(res.Parent)
				}
				return out.Emit(res, text)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <scope>",
		Short: "Remove a scope's variables, temporary payload and parent link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := parseKey("scope", args[0])
			if err != nil {
				return err
			}
			return withSession(rootOpts, cmd, func(s *session, out *OutputFormatter) error {
				err := s.run(cmd.Context(), func(ctx context.Context) error {
					return s.state.RemoveScope(ctx, scope)
				})
				if err != nil {
					return err
				}
				return out.Emit(ScopeResult{Scope: scope, Parent: variable.NoParent}, fmt.Sprintf("scope %d removed", scope))
			})
		},
	})

	return cmd
}
