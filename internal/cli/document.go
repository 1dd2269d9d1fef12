package cli

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/varstate/internal/value"
)

// DocOptions holds flags for the doc commands.
type DocOptions struct {
	*RootOptions
	Local    bool
	Names    []string
	Workflow int64
}

// DocResult is an exported document.
type DocResult struct {
	Scope     int64           `json:"scope"`
	Variables json.RawMessage `json:"variables"`
}

// NewDocCommand creates the doc command group.
func NewDocCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DocOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "doc",
		Short: "Export and import variable documents",
	}

	exp := &cobra.Command{
		Use:   "export <scope>",
		Short: "Print the variables visible from scope as one JSON object",
		Long: `Print the variables visible from scope as one JSON object.

A name declared in several scopes of the chain appears once, with the
value nearest to scope. --names restricts the export to the given names;
names that are not visible are left out.

Examples:
  varstate doc export 3
  varstate doc export 3 --names orderId,total
  varstate doc export 3 --local`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return exportDoc(opts, cmd, args[0])
		},
	}
	exp.Flags().BoolVar(&opts.Local, "local", false, "only variables declared in scope itself")
	exp.Flags().StringSliceVar(&opts.Names, "names", nil, "comma-separated variable names to export")

	imp := &cobra.Command{
		Use:   "import <scope> <json-object>",
		Short: "Merge a JSON object into the scope chain",
		Long: `Merge a JSON object into the scope chain.

Each entry is written into the nearest scope, starting at scope, that
already declares its name. Entries no scope declares are created in the
topmost scope of the chain. With --local every entry is written into
scope itself.

Example:
  varstate doc import 3 '{"total": 42, "approved": true}' --workflow 1`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return importDoc(opts, cmd, args[0], args[1])
		},
	}
	imp.Flags().BoolVar(&opts.Local, "local", false, "write every entry into scope itself")
	imp.Flags().Int64Var(&opts.Workflow, "workflow", 0, "workflow instance key recorded with the changes")

	cmd.AddCommand(exp, imp)
	return cmd
}

func exportDoc(opts *DocOptions, cmd *cobra.Command, scopeArg string) error {
	scope, err := parseKey("scope", scopeArg)
	if err != nil {
		return err
	}
	if opts.Local && cmd.Flags().Changed("names") {
		return NewExitError(ExitCommandError, "--local and --names cannot be combined")
	}

	return withSession(opts.RootOptions, cmd, func(s *session, out *OutputFormatter) error {
		var doc []byte
		err := s.run(cmd.Context(), func(ctx context.Context) error {
			var err error
			switch {
			case opts.Local:
				doc, err = s.state.VariablesLocalAsDocument(ctx, scope)
			case cmd.Flags().Changed("names"):
				names := make([][]byte, 0, len(opts.Names))
				for _, n := range opts.Names {
					if n = strings.TrimSpace(n); n != "" {
						names = append(names, []byte(n))
					}
				}
				doc, err = s.state.VariablesAsDocumentFiltered(ctx, scope, names)
			default:
				doc, err = s.state.VariablesAsDocument(ctx, scope)
			}
			return err
		})
		if err != nil {
			return err
		}

		rendered, err := value.DocumentToJSON(doc)
		if err != nil {
			return WrapExitError(ExitCommandError, "stored value is not valid", err)
		}
		return out.Emit(DocResult{Scope: scope, Variables: rendered}, string(rendered))
	})
}

func importDoc(opts *DocOptions, cmd *cobra.Command, scopeArg, objectJSON string) error {
	scope, err := parseKey("scope", scopeArg)
	if err != nil {
		return err
	}
	doc, err := value.DocumentFromJSON([]byte(objectJSON))
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid document", err)
	}

	return withSession(opts.RootOptions, cmd, func(s *session, out *OutputFormatter) error {
		err := s.run(cmd.Context(), func(ctx context.Context) error {
			if opts.Local {
				return s.state.SetVariablesLocalFromDocument(ctx, scope, opts.Workflow, doc)
			}
			return s.state.SetVariablesFromDocument(ctx, scope, opts.Workflow, doc)
		})
		if err != nil {
			return err
		}

		rendered, err := value.DocumentToJSON(doc)
		if err != nil {
			return err
		}
		return out.Emit(DocResult{Scope: scope, Variables: rendered}, "imported "+string(rendered))
	})
}
