package harness

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaSource string

// ErrInvalidScenario is wrapped by every scenario decoding or schema error.
var ErrInvalidScenario = errors.New("invalid scenario")

// Scenario is one harness run.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	Description string `yaml:"description"`

	// Steps mutate the store, in order.
	Steps []Step `yaml:"steps"`

	// Expect is evaluated after the last step.
	Expect []Expectation `yaml:"expect,omitempty"`
}

// Step operations.
const (
	OpCreateScope      = "create_scope"
	OpRemoveScope      = "remove_scope"
	OpSetLocal         = "set_local"
	OpSetDocument      = "set_document"
	OpSetLocalDocument = "set_local_document"
	OpSetTemporary     = "set_temporary"
	OpRemoveTemporary  = "remove_temporary"
	OpRemoveVariables  = "remove_variables"
)

// Step is a single mutation.
type Step struct {
	Op       string         `yaml:"op"`
	Scope    int64          `yaml:"scope"`
	Parent   int64          `yaml:"parent,omitempty"`
	Workflow int64          `yaml:"workflow,omitempty"`
	Name     string         `yaml:"name,omitempty"`
	Value    any            `yaml:"value,omitempty"`
	Document map[string]any `yaml:"document,omitempty"`
}

// Expectation operations.
const (
	ExpectVariable      = "variable"
	ExpectVariableLocal = "variable_local"
	ExpectAbsent        = "absent"
	ExpectAbsentLocal   = "absent_local"
	ExpectDocument      = "document"
	ExpectDocumentLocal = "document_local"
	ExpectParent        = "parent"
	ExpectNoParent      = "no_parent"
	ExpectTemporary     = "temporary"
	ExpectEmpty         = "empty"
)

// Expectation is a check on the final state.
type Expectation struct {
	Op       string         `yaml:"op"`
	Scope    int64          `yaml:"scope,omitempty"`
	Parent   int64          `yaml:"parent,omitempty"`
	Name     string         `yaml:"name,omitempty"`
	Value    any            `yaml:"value,omitempty"`
	Document map[string]any `yaml:"document,omitempty"`

	// Names restricts a document expectation to a filtered export.
	Names []string `yaml:"names,omitempty"`
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}
	sc, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: parse YAML: %v", ErrInvalidScenario, err)
	}
	if err := validateSchema(raw); err != nil {
		return nil, err
	}

	// Strict decode catches keys the schema would also reject, with YAML
	// line numbers.
	var sc Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}
	return &sc, nil
}

// validateSchema unifies decoded YAML with #Scenario.
func validateSchema(raw any) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile scenario schema: %w", err)
	}

	data := ctx.Encode(raw)
	if err := data.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}

	v := schema.LookupPath(cue.ParsePath("#Scenario")).Unify(data)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidScenario, cueerrors.Details(err, nil))
	}
	return nil
}
