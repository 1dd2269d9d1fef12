package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/varstate/internal/store"
	"github.com/roach88/varstate/internal/value"
)

// EventsOptions holds flags for the events command.
type EventsOptions struct {
	*RootOptions
	Scope int64
	After int64
	Limit int
}

// EventResult is one exported variable event with its value rendered.
type EventResult struct {
	Position     int64           `json:"position"`
	ID           string          `json:"id"`
	Intent       store.Intent    `json:"intent"`
	Key          int64           `json:"key"`
	WorkflowKey  int64           `json:"workflow_key"`
	ScopeKey     int64           `json:"scope_key"`
	RootScopeKey int64           `json:"root_scope_key"`
	Name         string          `json:"name"`
	Value        json.RawMessage `json:"value"`
}

// NewEventsCommand creates the events command.
func NewEventsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EventsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Print the variable event log",
		Long: `Print the variable event log.

Every variable create and update is appended to the log in the same
transaction as the write. Removals are not logged.

Examples:
  varstate events
  varstate events --after 10 --limit 5
  varstate events --scope 3 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listEvents(opts, cmd)
		},
	}

	cmd.Flags().Int64Var(&opts.Scope, "scope", 0, "only events recorded for this scope")
	cmd.Flags().Int64Var(&opts.After, "after", 0, "only events after this position")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of events (0 for all)")

	return cmd
}

func listEvents(opts *EventsOptions, cmd *cobra.Command) error {
	return withSession(opts.RootOptions, cmd, func(s *session, out *OutputFormatter) error {
		var (
			events []store.VariableEvent
			err    error
		)
		if cmd.Flags().Changed("scope") {
			events, err = s.store.ReadVariableEventsByScope(cmd.Context(), opts.Scope)
			events = window(events, opts.After, opts.Limit)
		} else {
			events, err = s.store.ReadVariableEvents(cmd.Context(), opts.After, opts.Limit)
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read events", err)
		}

		results := make([]EventResult, 0, len(events))
		lines := make([]string, 0, len(events))
		for _, ev := range events {
			rendered, err := value.Render(ev.Value)
			if err != nil {
				return WrapExitError(ExitCommandError, fmt.Sprintf("event %d has an invalid value", ev.Position), err)
			}
			results = append(results, EventResult{
				Position:     ev.Position,
				ID:           ev.ID,
				Intent:       ev.Intent,
				Key:          ev.Key,
				WorkflowKey:  ev.WorkflowKey,
				ScopeKey:     ev.ScopeKey,
				RootScopeKey: ev.RootScopeKey,
				Name:         string(ev.Name),
				Value:        json.RawMessage(rendered),
			})
			lines = append(lines, fmt.Sprintf("%d %s scope=%d key=%d %s = %s",
				ev.Position, ev.Intent, ev.ScopeKey, ev.Key, ev.Name, rendered))
		}

		if len(lines) == 0 {
			return out.Emit(results, "No events.")
		}
		return out.Emit(results, strings.Join(lines, "\n"))
	})
}

// window applies --after and --limit to events already ordered by position.
func window(events []store.VariableEvent, after int64, limit int) []store.VariableEvent {
	i := 0
	for i < len(events) && events[i].Position <= after {
		i++
	}
	events = events[i:]
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events
}
