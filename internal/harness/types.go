package harness

// TraceEvent is one recorded listener notification.
type TraceEvent struct {
	// Step is the zero-based index of the step that caused the notification.
	Step         int    `json:"step"`
	Kind         string `json:"kind"`
	Key          int64  `json:"key"`
	WorkflowKey  int64  `json:"workflow"`
	ScopeKey     int64  `json:"scope"`
	RootScopeKey int64  `json:"root"`
	Name         string `json:"name"`

	// Value is the canonical JSON rendering of the variable value.
	Value string `json:"value"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every expectation held.
	Pass bool `json:"pass"`

	Trace []TraceEvent `json:"trace"`

	// Errors lists failed expectations, one message each.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result with an empty trace.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError records a failed expectation.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
