package harness

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/charsheet/internal/character"
	"github.com/roach88/charsheet/internal/rejection"
)

func parse(t *testing.T, doc string) *Scenario {
	t.Helper()
	scenario, err := ParseScenario([]byte(doc))
	require.NoError(t, err)
	return scenario
}

func TestRun_Testdata(t *testing.T) {
	files, err := FindScenarios("testdata/scenarios", "")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		t.Run(file, func(t *testing.T) {
			scenario, err := LoadScenario(file)
			require.NoError(t, err)

			result, err := Run(scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Len(t, result.Trace, len(scenario.Steps))
		})
	}
}

func TestRun_RecordsTrace(t *testing.T) {
	result, err := Run(parse(t, `
name: trace
description: "Apply, undo and redo"
steps:
  - apply: {type: set_concept, payload: {concept: Exile}}
  - undo: true
  - redo: true
`))
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	assert.Equal(t, []TraceEvent{
		{Step: 0, Op: OpApply, Type: character.TypeSetConcept, Cursor: 1},
		{Step: 1, Op: OpUndo, Cursor: 0},
		{Step: 2, Op: OpRedo, Cursor: 1},
	}, result.Trace)
	assert.Equal(t, 1, result.Cursor)
	assert.Equal(t, []character.Type{character.TypeSetConcept}, result.Log)
	assert.Equal(t, "Exile", result.Memo.Concept)
}

func TestRun_ActiveLogExcludesUndone(t *testing.T) {
	result, err := Run(parse(t, `
name: undone
description: "Undone mutations are not part of the active log"
steps:
  - apply: {type: set_concept, payload: {concept: Exile}}
  - apply: {type: set_name, payload: {name: Swan}}
  - undo: true
assertions:
  - type: log_count
    mutation: set_name
    count: 0
  - type: final_state
    path: name
    equals: undone
`))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, []character.Type{character.TypeSetConcept}, result.Log)
}

func TestRun_UnexpectedOutcomesFail(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "unexpected rejection",
			doc: `
name: unexpected_rejection
description: "d"
steps:
  - apply: {type: spend_motes, payload: {first: peripheral, amount: 1}}
`,
			want: `expected rejection "", got "EXALT_ONLY"`,
		},
		{
			name: "missing rejection",
			doc: `
name: missing_rejection
description: "d"
steps:
  - apply: {type: set_concept, payload: {concept: Exile}}
    expect: {rejected: NAME_EMPTY}
`,
			want: `expected rejection "NAME_EMPTY", got ""`,
		},
		{
			name: "unexpected noop",
			doc: `
name: unexpected_noop
description: "d"
steps:
  - undo: true
`,
			want: "undo moved=false, expected noop=false",
		},
		{
			name: "repair mismatch",
			doc: `
name: repair_mismatch
description: "d"
steps:
  - apply: {type: set_concept, payload: {concept: Exile}}
    expect: {repaired: ["solar:Bolster"]}
`,
			want: "expected repaired [solar:Bolster], got []",
		},
		{
			name: "failed assertion",
			doc: `
name: failed_assertion
description: "d"
steps:
  - apply: {type: set_concept, payload: {concept: Exile}}
assertions:
  - type: cursor
    count: 3
`,
			want: "cursor 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Run(parse(t, tt.doc))
			require.NoError(t, err)
			assert.False(t, result.Pass)
			require.NotEmpty(t, result.Errors)
			assert.Contains(t, result.Errors[0], tt.want)
		})
	}
}

func TestRun_FillsIDsDeterministically(t *testing.T) {
	doc := `
name: ids
description: "Merits without IDs get sequential ones"
steps:
  - apply: {type: add_merit, payload: {merit: {name: Resources, dots: 3}}}
  - apply: {type: add_merit, payload: {merit: {name: Allies, dots: 2}}}
assertions:
  - type: final_state
    path: merits.id-2.name
    equals: Allies
`
	first, err := Run(parse(t, doc))
	require.NoError(t, err)
	require.True(t, first.Pass, "errors: %v", first.Errors)

	second, err := Run(parse(t, doc))
	require.NoError(t, err)
	assert.Equal(t, first.Memo, second.Memo)
}

func TestRun_SchemaRejectionsAreExpectable(t *testing.T) {
	result, err := Run(parse(t, `
name: schema
description: "Schema failures surface as rejections"
steps:
  - apply: {type: set_ability, payload: {ability: cooking, dots: 1}}
    expect: {rejected: PAYLOAD_INVALID}
  - check: {type: set_name, payload: {name: A, nickname: B}}
    expect: {rejected: PAYLOAD_INVALID}
`))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, rejection.CodePayloadInvalid, result.Trace[0].Code)
	assert.Equal(t, 0, result.Cursor)
}

func TestRun_InvalidBase(t *testing.T) {
	scenario := parse(t, `
name: bad_base
description: "d"
base: {version: 2, name: A}
steps:
  - undo: true
    expect: {noop: true}
`)
	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load base memo")
}

func TestRun_WithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := Run(parse(t, `
name: logged
description: "d"
steps:
  - apply: {type: set_concept, payload: {concept: Exile}}
`), WithLogger(logger))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "scenario step completed")
	assert.Contains(t, out, "mutation applied")
}
