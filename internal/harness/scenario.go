package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/charsheet/internal/character"
	"github.com/roach88/charsheet/internal/rejection"
)

// Scenario is a scripted character session with expectations. It starts
// from a base memo, runs steps against an event source and checks the
// resulting log and memo.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Character names the fresh mortal used as the base when Base is absent.
	// Defaults to Name.
	Character string `yaml:"character,omitempty"`

	// Base is an optional memo document to start from.
	Base map[string]interface{} `yaml:"base,omitempty"`

	// Steps run in order against one event source.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final log and memo.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one operation. Exactly one of Apply, Check, Undo and Redo is set.
type Step struct {
	// Apply is a mutation envelope ({type, payload}) to apply.
	Apply map[string]interface{} `yaml:"apply,omitempty"`

	// Check is a mutation envelope to dry-run.
	Check map[string]interface{} `yaml:"check,omitempty"`

	Undo bool `yaml:"undo,omitempty"`
	Redo bool `yaml:"redo,omitempty"`

	// Expect describes the expected outcome. Without it the step must
	// succeed.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect is the expected outcome of a step.
type Expect struct {
	// Rejected is the expected rejection code. Empty means success.
	Rejected rejection.Code `yaml:"rejected,omitempty"`

	// Repaired lists what the consistency pass must remove, as "kind:name"
	// for charms and "circle:<circle>" for sorcery circles, in removal
	// order.
	Repaired []string `yaml:"repaired,omitempty"`

	// Noop marks an undo or redo with nothing to do.
	Noop bool `yaml:"noop,omitempty"`
}

// Assertion validates the final log or memo.
type Assertion struct {
	// Type specifies the assertion type:
	// - "log_contains": the active log contains Mutation
	// - "log_order": Mutations appear in the active log in order
	// - "log_count": Mutation appears exactly Count times in the active log
	// - "cursor": the final cursor equals Count
	// - "final_state": the memo value at Path matches Equals
	Type string `yaml:"type"`

	Mutation  character.Type   `yaml:"mutation,omitempty"`
	Mutations []character.Type `yaml:"mutations,omitempty"`
	Count     int              `yaml:"count,omitempty"`

	// Path is a dotted path into the memo's JSON form, e.g.
	// "abilities.war.dots" or "exaltation.essence.motes.peripheral.available".
	// Numeric segments index into lists.
	Path string `yaml:"path,omitempty"`

	// Equals is the expected value. Mappings use subset semantics.
	Equals any `yaml:"equals,omitempty"`

	// Absent asserts that Path does not exist.
	Absent bool `yaml:"absent,omitempty"`
}

// Assertion type constants.
const (
	AssertLogContains = "log_contains"
	AssertLogOrder    = "log_order"
	AssertLogCount    = "log_count"
	AssertCursor      = "cursor"
	AssertFinalState  = "final_state"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates a scenario document.
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

// FindScenarios returns the scenario files under dir, sorted. Filter, if
// set, keeps only files whose base name contains it.
func FindScenarios(dir, filter string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "golden" {
				return filepath.SkipDir
			}
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" && !strings.Contains(filepath.Base(path), filter) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

// baseMemo returns the memo the scenario starts from.
func (s *Scenario) baseMemo() (character.Memo, error) {
	if s.Base == nil {
		name := s.Character
		if name == "" {
			name = s.Name
		}
		return character.NewMortalMemo(name), nil
	}
	data, err := yaml.Marshal(s.Base)
	if err != nil {
		return character.Memo{}, fmt.Errorf("encode base: %w", err)
	}
	return character.ParseMemo(data)
}

// envelope converts a step's mutation mapping into an envelope.
func envelope(doc map[string]interface{}) (character.Envelope, error) {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return character.Envelope{}, fmt.Errorf("encode mutation: %w", err)
	}
	envs, err := character.ParseDocument(data)
	if err != nil {
		return character.Envelope{}, err
	}
	if len(envs) != 1 {
		return character.Envelope{}, fmt.Errorf("step must hold exactly one mutation, got %d", len(envs))
	}
	return envs[0], nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if s.Base != nil && s.Character != "" {
		return fmt.Errorf("base and character are mutually exclusive")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, step *Step) error {
	set := 0
	for _, present := range []bool{step.Apply != nil, step.Check != nil, step.Undo, step.Redo} {
		if present {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("steps[%d]: exactly one of apply, check, undo or redo is required", index)
	}
	if step.Expect == nil {
		return nil
	}
	history := step.Undo || step.Redo
	if step.Expect.Noop && !history {
		return fmt.Errorf("steps[%d]: noop applies only to undo and redo", index)
	}
	if (step.Expect.Rejected != "" || len(step.Expect.Repaired) > 0) && history {
		return fmt.Errorf("steps[%d]: undo and redo cannot be rejected or repaired", index)
	}
	if step.Expect.Rejected != "" && len(step.Expect.Repaired) > 0 {
		return fmt.Errorf("steps[%d]: a rejected step repairs nothing", index)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertLogContains:
		if a.Mutation == "" {
			return fmt.Errorf("assertions[%d]: mutation is required for log_contains", index)
		}
	case AssertLogOrder:
		if len(a.Mutations) == 0 {
			return fmt.Errorf("assertions[%d]: mutations list is required for log_order", index)
		}
	case AssertLogCount:
		if a.Mutation == "" {
			return fmt.Errorf("assertions[%d]: mutation is required for log_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for log_count", index)
		}
	case AssertCursor:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for cursor", index)
		}
	case AssertFinalState:
		if a.Path == "" {
			return fmt.Errorf("assertions[%d]: path is required for final_state", index)
		}
		if a.Equals == nil && !a.Absent {
			return fmt.Errorf("assertions[%d]: equals or absent is required for final_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
