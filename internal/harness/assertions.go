package harness

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/roach88/charsheet/internal/character"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string           // Assertion type for categorization
	Expected string           // Human-readable expected outcome
	Actual   string           // Human-readable actual outcome
	Log      []character.Type // Active log for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Log) > 0 {
		fmt.Fprintf(&buf, "\nActive log:\n")
		for i, typ := range e.Log {
			fmt.Fprintf(&buf, "  [%d] %s\n", i+1, typ)
		}
	}

	return buf.String()
}

// assertLogContains checks that the active log contains the mutation type.
func assertLogContains(log []character.Type, a Assertion) error {
	for _, typ := range log {
		if typ == a.Mutation {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertLogContains,
		Expected: fmt.Sprintf("mutation %s", a.Mutation),
		Actual:   "not found in active log",
		Log:      log,
	}
}

// assertLogOrder checks that mutation types appear in the given order.
// Intervening mutations are allowed.
func assertLogOrder(log []character.Type, a Assertion) error {
	pos := 0
	for _, want := range a.Mutations {
		found := false
		for pos < len(log) {
			pos++
			if log[pos-1] == want {
				found = true
				break
			}
		}
		if !found {
			return &AssertionError{
				Type:     AssertLogOrder,
				Expected: fmt.Sprintf("mutations in order: %v", a.Mutations),
				Actual:   fmt.Sprintf("%s not found after position %d", want, pos),
				Log:      log,
			}
		}
	}
	return nil
}

// assertLogCount checks that a mutation type appears exactly Count times.
func assertLogCount(log []character.Type, a Assertion) error {
	count := 0
	for _, typ := range log {
		if typ == a.Mutation {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertLogCount,
			Expected: fmt.Sprintf("%d occurrences of %s", a.Count, a.Mutation),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Log:      log,
		}
	}
	return nil
}

// assertFinalState checks the memo value at a dotted path.
func assertFinalState(memo character.Memo, a Assertion) error {
	tree, err := toGeneric(memo)
	if err != nil {
		return err
	}
	actual, ok := lookup(tree, a.Path)
	if a.Absent {
		if ok {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("%s to be absent", a.Path),
				Actual:   fmt.Sprintf("%s = %v", a.Path, actual),
			}
		}
		return nil
	}
	if !ok {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("%s = %v", a.Path, a.Equals),
			Actual:   fmt.Sprintf("%s not present", a.Path),
		}
	}
	expected, err := toGeneric(a.Equals)
	if err != nil {
		return fmt.Errorf("final_state %s: %w", a.Path, err)
	}
	if !matchSubset(actual, expected) {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("%s = %v", a.Path, expected),
			Actual:   fmt.Sprintf("%s = %v", a.Path, actual),
		}
	}
	return nil
}

// toGeneric converts a value to its JSON tree form so that YAML-decoded
// expectations and the memo compare with the same number and map types.
func toGeneric(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return out, nil
}

// lookup walks a dotted path through maps and lists.
func lookup(tree any, path string) (any, bool) {
	cur := tree
	for _, seg := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// matchSubset reports whether actual contains expected. Maps match when
// every expected key matches; everything else must be equal.
func matchSubset(actual, expected any) bool {
	expMap, ok := expected.(map[string]any)
	if !ok {
		return reflect.DeepEqual(actual, expected)
	}
	actMap, ok := actual.(map[string]any)
	if !ok {
		return false
	}
	for key, want := range expMap {
		got, exists := actMap[key]
		if !exists || !matchSubset(got, want) {
			return false
		}
	}
	return true
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertLogContains:
			err = assertLogContains(result.Log, assertion)
		case AssertLogOrder:
			err = assertLogOrder(result.Log, assertion)
		case AssertLogCount:
			err = assertLogCount(result.Log, assertion)
		case AssertCursor:
			if result.Cursor != assertion.Count {
				err = &AssertionError{
					Type:     AssertCursor,
					Expected: fmt.Sprintf("cursor %d", assertion.Count),
					Actual:   fmt.Sprintf("cursor %d", result.Cursor),
					Log:      result.Log,
				}
			}
		case AssertFinalState:
			err = assertFinalState(result.Memo, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
