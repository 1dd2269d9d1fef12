package harness

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/roach88/varstate/internal/store"
	"github.com/roach88/varstate/internal/testutil"
	"github.com/roach88/varstate/internal/value"
	"github.com/roach88/varstate/internal/variable"
)

// Harness executes one scenario against one store.
type Harness struct {
	store    *store.Store
	state    *variable.State
	listener *testutil.RecordingListener
	logger   *zap.Logger
}

// Option configures Run.
type Option func(*Harness)

// WithLogger routes store debug logging to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Harness) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// Run executes scenario in a fresh in-memory database and evaluates its
// expectations. A step that fails aborts the run with an error; failed
// expectations are reported in the Result.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:    st,
		listener: testutil.NewRecordingListener(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.state = variable.New(st.Transactions(), testutil.NewDeterministicKeys(),
		variable.WithListener(h.listener),
		variable.WithLogger(h.logger),
	)

	ctx := context.Background()
	result := NewResult()

	for i, step := range scenario.Steps {
		seen := h.listener.Count("")
		err := st.Transactions().Run(ctx, func(ctx context.Context) error {
			return h.executeStep(ctx, step)
		})
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, step.Op, err)
		}
		if err := h.recordTrace(result, i, seen); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, step.Op, err)
		}
	}

	for i, exp := range scenario.Expect {
		msg, err := h.evaluate(ctx, exp)
		if err != nil {
			return nil, fmt.Errorf("expect %d (%s): %w", i, exp.Op, err)
		}
		if msg != "" {
			result.AddError(fmt.Sprintf("expect %d (%s): %s", i, exp.Op, msg))
		}
	}

	h.logger.Debug("scenario finished",
		zap.String("scenario", scenario.Name),
		zap.Bool("pass", result.Pass),
		zap.Int("notifications", len(result.Trace)),
	)
	return result, nil
}

func (h *Harness) executeStep(ctx context.Context, step Step) error {
	switch step.Op {
	case OpCreateScope:
		return h.state.CreateScope(ctx, step.Scope, step.Parent)

	case OpRemoveScope:
		return h.state.RemoveScope(ctx, step.Scope)

	case OpSetLocal:
		raw, err := encodeValue(step.Value)
		if err != nil {
			return err
		}
		return h.state.SetVariableLocal(ctx, step.Scope, step.Workflow, []byte(step.Name), raw)

	case OpSetDocument:
		doc, err := value.DocumentFromNative(step.Document)
		if err != nil {
			return err
		}
		return h.state.SetVariablesFromDocument(ctx, step.Scope, step.Workflow, doc)

	case OpSetLocalDocument:
		doc, err := value.DocumentFromNative(step.Document)
		if err != nil {
			return err
		}
		return h.state.SetVariablesLocalFromDocument(ctx, step.Scope, step.Workflow, doc)

	case OpSetTemporary:
		doc, err := value.DocumentFromNative(step.Document)
		if err != nil {
			return err
		}
		return h.state.SetTemporaryVariables(ctx, step.Scope, doc)

	case OpRemoveTemporary:
		return h.state.RemoveTemporaryVariables(ctx, step.Scope)

	case OpRemoveVariables:
		return h.state.RemoveAllVariables(ctx, step.Scope)

	default:
		return fmt.Errorf("unknown step op %q", step.Op)
	}
}

// recordTrace appends the notifications received since seen.
func (h *Harness) recordTrace(result *Result, step, seen int) error {
	for _, n := range h.listener.Notifications()[seen:] {
		rendered, err := value.Render(n.Event.Value)
		if err != nil {
			return fmt.Errorf("render %q: %w", n.Event.Name, err)
		}
		result.Trace = append(result.Trace, TraceEvent{
			Step:         step,
			Kind:         string(n.Kind),
			Key:          n.Event.Key,
			WorkflowKey:  n.Event.WorkflowKey,
			ScopeKey:     n.Event.ScopeKey,
			RootScopeKey: n.Event.RootScopeKey,
			Name:         string(n.Event.Name),
			Value:        rendered,
		})
	}
	return nil
}

func encodeValue(v any) ([]byte, error) {
	conv, err := value.FromNative(v)
	if err != nil {
		return nil, err
	}
	return value.Encode(conv)
}
