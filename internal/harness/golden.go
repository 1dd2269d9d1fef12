package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/varstate/internal/value"
)

// TraceSnapshot is the golden representation of a run.
type TraceSnapshot struct {
	ScenarioName string
	Trace        []TraceEvent
}

// MarshalCanonical renders the snapshot as canonical JSON. Values are
// embedded as JSON, not as strings.
func (s TraceSnapshot) MarshalCanonical() ([]byte, error) {
	trace := make(value.Array, len(s.Trace))
	for i, ev := range s.Trace {
		v, err := value.ParseJSON([]byte(ev.Value))
		if err != nil {
			return nil, err
		}
		trace[i] = value.Object{
			"step":     value.Int(ev.Step),
			"kind":     value.String(ev.Kind),
			"key":      value.Int(ev.Key),
			"workflow": value.Int(ev.WorkflowKey),
			"scope":    value.Int(ev.ScopeKey),
			"root":     value.Int(ev.RootScopeKey),
			"name":     value.String(ev.Name),
			"value":    v,
		}
	}
	return value.MarshalCanonical(value.Object{
		"scenario": value.String(s.ScenarioName),
		"trace":    trace,
	})
}

// RunWithGolden runs scenario and compares its trace with
// testdata/golden/<name>.golden. Regenerate with `go test -update`.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result with its golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	out, err := TraceSnapshot{ScenarioName: scenarioName, Trace: result.Trace}.MarshalCanonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, out)
	return nil
}
