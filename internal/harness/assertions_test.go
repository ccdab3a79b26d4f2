package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/charsheet/internal/character"
	"github.com/roach88/charsheet/internal/testutil"
)

func assertionResult(t *testing.T) *Result {
	t.Helper()
	es := testutil.NewHistory(t, testutil.Session()...)
	result := NewResult()
	result.Memo = es.Memo()
	result.Cursor = es.Cursor()
	for _, mut := range es.Log() {
		result.Log = append(result.Log, mut.Type())
	}
	return result
}

func TestEvaluateAssertions_Pass(t *testing.T) {
	result := assertionResult(t)

	errs := EvaluateAssertions(result, []Assertion{
		{Type: AssertLogContains, Mutation: character.TypeCommitMotes},
		{Type: AssertLogOrder, Mutations: []character.Type{character.TypeSetSolar, character.TypeSpendMotes, character.TypeSetAbility}},
		{Type: AssertLogCount, Mutation: character.TypeSetAbility, Count: 2},
		{Type: AssertLogCount, Mutation: character.TypeSetMortal, Count: 0},
		{Type: AssertCursor, Count: 6},
		{Type: AssertFinalState, Path: "name", Equals: testutil.MortalName},
		{Type: AssertFinalState, Path: "exaltation.exalt.solar.caste_abilities.4", Equals: "melee"},
		{Type: AssertFinalState, Path: "exaltation.exalt.essence.motes.commitments.c1", Equals: map[string]any{"name": "Ox-Body"}},
		{Type: AssertFinalState, Path: "exaltation.exalt.charms.solar.Bolster", Absent: true},
		{Type: AssertFinalState, Path: "exaltation.exalt.solar.caste_abilities.9", Absent: true},
	})
	assert.Empty(t, errs)
}

func TestEvaluateAssertions_Failures(t *testing.T) {
	result := assertionResult(t)

	tests := []struct {
		name      string
		assertion Assertion
		want      string
	}{
		{
			name:      "log_contains",
			assertion: Assertion{Type: AssertLogContains, Mutation: character.TypeAddSpell},
			want:      "not found in active log",
		},
		{
			name:      "log_order",
			assertion: Assertion{Type: AssertLogOrder, Mutations: []character.Type{character.TypeCommitMotes, character.TypeSetSolar}},
			want:      "set_solar not found after position 6",
		},
		{
			name:      "log_count",
			assertion: Assertion{Type: AssertLogCount, Mutation: character.TypeSetAbility, Count: 1},
			want:      "2 occurrences",
		},
		{
			name:      "cursor",
			assertion: Assertion{Type: AssertCursor, Count: 2},
			want:      "cursor 6",
		},
		{
			name:      "final_state value",
			assertion: Assertion{Type: AssertFinalState, Path: "abilities.war.dots", Equals: 3},
			want:      "abilities.war.dots = 0",
		},
		{
			name:      "final_state missing",
			assertion: Assertion{Type: AssertFinalState, Path: "merits.luck", Equals: 1},
			want:      "merits.luck not present",
		},
		{
			name:      "final_state present",
			assertion: Assertion{Type: AssertFinalState, Path: "name", Absent: true},
			want:      "name to be absent",
		},
		{
			name:      "final_state subset",
			assertion: Assertion{Type: AssertFinalState, Path: "exaltation.exalt.essence.motes.commitments.c1", Equals: map[string]any{"name": "Iron Skin"}},
			want:      "Assertion failed: final_state",
		},
		{
			name:      "unknown type",
			assertion: Assertion{Type: "trace_contains"},
			want:      `unknown assertion type "trace_contains"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(result, []Assertion{tt.assertion})
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0], tt.want)
		})
	}
}

func TestAssertionError_IncludesLog(t *testing.T) {
	err := &AssertionError{
		Type:     AssertLogContains,
		Expected: "mutation add_spell",
		Actual:   "not found in active log",
		Log:      []character.Type{character.TypeSetSolar},
	}
	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: log_contains")
	assert.Contains(t, msg, "[1] set_solar")
}

func TestMatchSubset(t *testing.T) {
	actual := map[string]any{"a": float64(1), "b": map[string]any{"c": "x", "d": []any{"y"}}}

	assert.True(t, matchSubset(actual, map[string]any{"a": float64(1)}))
	assert.True(t, matchSubset(actual, map[string]any{"b": map[string]any{"d": []any{"y"}}}))
	assert.False(t, matchSubset(actual, map[string]any{"b": map[string]any{"c": "z"}}))
	assert.False(t, matchSubset(actual, map[string]any{"e": nil}))
	assert.False(t, matchSubset("x", map[string]any{"a": float64(1)}))
}
