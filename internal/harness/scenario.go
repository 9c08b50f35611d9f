package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/listbind/internal/binding"
)

// Scenario is one binder conformance scenario.
type Scenario struct {
	// Name identifies the scenario and its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario checks.
	Description string `yaml:"description"`

	// Config is an inline binder configuration. Ignored when ConfigFile is
	// set.
	Config *InlineConfig `yaml:"config,omitempty"`

	// ConfigFile is a CUE configuration path, relative to the scenario file.
	ConfigFile string `yaml:"config_file,omitempty"`

	// InitialA and InitialB are the list contents before binding.
	InitialA []int    `yaml:"initial_a,omitempty"`
	InitialB []string `yaml:"initial_b,omitempty"`

	// Steps are applied in order after both lists are attached.
	Steps []Step `yaml:"steps"`

	// Expect checks the final list contents.
	Expect *Expect `yaml:"expect,omitempty"`

	// Assertions check the recorded trace.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// InlineConfig mirrors the CUE binding struct.
type InlineConfig struct {
	Name          string `yaml:"name,omitempty"`
	Bidirectional *bool  `yaml:"bidirectional,omitempty"`
	Source        string `yaml:"source,omitempty"`
	PinSource     bool   `yaml:"pin_source,omitempty"`
	PropertyBind  bool   `yaml:"property_bind,omitempty"`
	Strategy      string `yaml:"strategy,omitempty"`
}

// BinderConfig applies the defaults of binding.DefaultConfig.
func (c *InlineConfig) BinderConfig() binding.Config {
	cfg := binding.DefaultConfig()
	if c == nil {
		return cfg
	}
	if c.Bidirectional != nil {
		cfg.Bidirectional = *c.Bidirectional
	}
	if c.Source != "" {
		cfg.Source = binding.Side(c.Source)
	}
	cfg.PropertyBind = c.PropertyBind
	cfg.Strategy = binding.Strategy(c.Strategy)
	return cfg
}

// Step is one operation on one list.
type Step struct {
	// List is "A" or "B". Ignored by set_bidirectional and set_source.
	List string `yaml:"list,omitempty"`

	// Op is one of the Op* constants.
	Op string `yaml:"op"`

	// Index is the position for insert, remove_at, remove_range, set and
	// move.
	Index int `yaml:"index,omitempty"`

	// To is the destination for move.
	To int `yaml:"to,omitempty"`

	// Count is the number of items for remove_range.
	Count int `yaml:"count,omitempty"`

	// Items are the values for add, insert, reset and attach. List A
	// values are parsed as integers.
	Items []string `yaml:"items,omitempty"`

	// Value is the value for set, set_bidirectional ("true"/"false") and
	// set_source ("A"/"B").
	Value string `yaml:"value,omitempty"`

	// ExpectError names the error the step must fail with. Empty means the
	// step must succeed.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Step operations.
const (
	OpAdd              = "add"
	OpInsert           = "insert"
	OpRemoveAt         = "remove_at"
	OpRemoveRange      = "remove_range"
	OpSet              = "set"
	OpMove             = "move"
	OpClear            = "clear"
	OpReset            = "reset"
	OpAttach           = "attach"
	OpDetach           = "detach"
	OpSetBidirectional = "set_bidirectional"
	OpSetSource        = "set_source"
)

// Expected error categories.
const (
	ErrOneWayViolation          = "one_way_violation"
	ErrUnsupportedConfiguration = "unsupported_configuration"
	ErrInvalidConfiguration     = "invalid_configuration"
	ErrConversion               = "conversion"
	ErrAny                      = "any"
)

// Expect holds the expected final list contents. A nil slice is not
// checked; use [] to expect an empty list.
type Expect struct {
	A []int    `yaml:"a"`
	B []string `yaml:"b"`
}

// Assertion checks the trace or a list.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Kind, Side and Action filter events for trace_count.
	Kind   string `yaml:"kind,omitempty"`
	Side   string `yaml:"side,omitempty"`
	Action string `yaml:"action,omitempty"`

	// Count is the expected number of matching events (trace_count).
	Count int `yaml:"count,omitempty"`

	// Kinds is the expected relative order of event kinds (trace_order).
	Kinds []string `yaml:"kinds,omitempty"`

	// List and Items check list contents as strings (list_equals).
	List  string   `yaml:"list,omitempty"`
	Items []string `yaml:"items,omitempty"`
}

// Assertion types.
const (
	AssertTraceCount = "trace_count"
	AssertTraceOrder = "trace_order"
	AssertListEquals = "list_equals"
)

// LoadScenario reads a scenario file. Unknown fields are rejected so typos
// fail loudly. A relative ConfigFile is resolved against the scenario's
// directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.ConfigFile != "" && !filepath.IsAbs(scenario.ConfigFile) {
		scenario.ConfigFile = filepath.Join(filepath.Dir(path), scenario.ConfigFile)
	}
	if scenario.ConfigFile != "" {
		if _, err := os.Stat(scenario.ConfigFile); err != nil {
			return nil, fmt.Errorf("invalid scenario: config file: %w", err)
		}
	}
	return scenario, nil
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Config != nil && s.ConfigFile != "" {
		return fmt.Errorf("config and config_file are mutually exclusive")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(i int, step Step) error {
	switch step.Op {
	case OpSetBidirectional:
		if step.Value != "true" && step.Value != "false" {
			return fmt.Errorf("steps[%d]: set_bidirectional value must be true or false", i)
		}
		return validateExpectedError(i, step.ExpectError)
	case OpSetSource:
		return validateExpectedError(i, step.ExpectError)
	case OpAdd, OpInsert, OpRemoveAt, OpRemoveRange, OpSet, OpMove, OpClear, OpReset, OpAttach, OpDetach:
	case "":
		return fmt.Errorf("steps[%d]: op is required", i)
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", i, step.Op)
	}

	if step.List != "A" && step.List != "B" {
		return fmt.Errorf("steps[%d]: list must be A or B", i)
	}
	if (step.Op == OpAdd || step.Op == OpInsert) && len(step.Items) == 0 {
		return fmt.Errorf("steps[%d]: %s requires items", i, step.Op)
	}
	return validateExpectedError(i, step.ExpectError)
}

func validateExpectedError(i int, kind string) error {
	switch kind {
	case "", ErrOneWayViolation, ErrUnsupportedConfiguration, ErrInvalidConfiguration, ErrConversion, ErrAny:
		return nil
	}
	return fmt.Errorf("steps[%d]: unknown expect_error %q", i, kind)
}

func validateAssertion(i int, a Assertion) error {
	switch a.Type {
	case AssertTraceCount:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for trace_count", i)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", i)
		}
	case AssertTraceOrder:
		if len(a.Kinds) == 0 {
			return fmt.Errorf("assertions[%d]: kinds list is required for trace_order", i)
		}
	case AssertListEquals:
		if a.List != "A" && a.List != "B" {
			return fmt.Errorf("assertions[%d]: list must be A or B for list_equals", i)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", i)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", i, a.Type)
	}
	return nil
}
