package character

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/charsheet/internal/essence"
	"github.com/roach88/charsheet/internal/gear"
	"github.com/roach88/charsheet/internal/rejection"
)

func newHistory(t *testing.T, opts ...Option) *EventSource {
	t.Helper()
	es, err := NewEventSource(NewMortalMemo("Harmonious Jade"), opts...)
	require.NoError(t, err)
	return es
}

func record(t *testing.T, es *EventSource, muts ...Mutation) []Memo {
	t.Helper()
	states := []Memo{es.Memo()}
	for _, mut := range muts {
		_, err := es.ApplyMutation(mut)
		require.NoError(t, err, "apply %s", mut.Type())
		states = append(states, es.Memo())
	}
	return states
}

var session = []Mutation{
	SetSolar{Solar: dawn()},
	SetAbility{Ability: War, Dots: 3},
	AddSolarCharm{Charm: warCharm("Bolster", 1, 1)},
	SpendMotes{First: essence.Peripheral, Amount: 10},
	CommitMotes{ID: "c1", Name: "Ox-Body", First: essence.Personal, Amount: 15},
	SetAbility{Ability: War, Dots: 0},
}

func TestEventSource_UndoRedoRestoresExactStates(t *testing.T) {
	es := newHistory(t)
	states := record(t, es, session...)
	require.Equal(t, len(session), es.Cursor())

	for i := len(session) - 1; i >= 0; i-- {
		require.True(t, es.Undo())
		assert.Equal(t, states[i], es.Memo(), "after undo to %d", i)
	}
	assert.False(t, es.CanUndo())
	assert.False(t, es.Undo())
	assert.Equal(t, es.Base(), es.Memo())

	for i := 1; i <= len(session); i++ {
		require.True(t, es.Redo())
		assert.Equal(t, states[i], es.Memo(), "after redo to %d", i)
	}
	assert.False(t, es.CanRedo())
	assert.False(t, es.Redo())
}

func TestEventSource_ApplyAfterUndoTruncatesRedo(t *testing.T) {
	es := newHistory(t)
	record(t, es, SetName{Name: "A"}, SetName{Name: "B"}, SetName{Name: "C"})

	require.True(t, es.Undo())
	require.True(t, es.Undo())
	assert.Equal(t, 1, es.Cursor())
	assert.Len(t, es.Log(), 3)

	_, err := es.ApplyMutation(SetConcept{Concept: "Exile"})
	require.NoError(t, err)
	assert.Equal(t, 2, es.Cursor())
	assert.Equal(t, []Mutation{SetName{Name: "A"}, SetConcept{Concept: "Exile"}}, es.Log())
	assert.False(t, es.CanRedo())
	assert.Equal(t, "A", es.View().Name())
}

func TestEventSource_RejectedMutationIsNotLogged(t *testing.T) {
	es := newHistory(t)
	record(t, es, SetName{Name: "A"})
	before := es.Memo()

	_, err := es.ApplyMutation(SpendMotes{First: essence.Peripheral, Amount: 1})
	requireCode(t, err, rejection.CodeExaltOnly)
	assert.Equal(t, 1, es.Cursor())
	assert.Len(t, es.Log(), 1)
	assert.Equal(t, before, es.Memo())
}

func TestEventSource_ViewsAreReadOnlySnapshots(t *testing.T) {
	es := newHistory(t)
	record(t, es, SetName{Name: "A"})
	view := es.View()
	require.True(t, view.ReadOnly())

	_, err := view.ApplyMutation(SetName{Name: "B"})
	requireCode(t, err, rejection.CodeReadOnlyView)

	record(t, es, SetName{Name: "B"})
	assert.Equal(t, "A", view.Name())
	assert.Equal(t, "B", es.View().Name())

	require.True(t, es.Undo())
	require.True(t, es.Undo())
	assert.Equal(t, "A", view.Name())
}

func TestEventSource_BaseIsNeverMutated(t *testing.T) {
	base := NewMortalMemo("Harmonious Jade")
	es, err := NewEventSource(base)
	require.NoError(t, err)

	record(t, es, session...)
	assert.Equal(t, base, es.Base())

	base.Name = "Changed"
	assert.Equal(t, "Harmonious Jade", es.Base().Name)
}

func TestRestoreEventSource(t *testing.T) {
	es := newHistory(t)
	states := record(t, es, session...)

	restored, err := RestoreEventSource(es.Base(), es.Log(), 2)
	require.NoError(t, err)
	assert.Equal(t, states[2], restored.Memo())
	assert.True(t, restored.CanRedo())

	require.True(t, restored.Redo())
	assert.Equal(t, states[3], restored.Memo())

	restored, err = RestoreEventSource(es.Base(), es.Log(), 0)
	require.NoError(t, err)
	assert.Equal(t, states[0], restored.Memo())
}

func TestRestoreEventSource_Rejections(t *testing.T) {
	base := NewMortalMemo("Harmonious Jade")

	_, err := RestoreEventSource(base, []Mutation{SetName{Name: "A"}}, 2)
	requireCode(t, err, rejection.CodeMemoInvalid)

	_, err = RestoreEventSource(base, []Mutation{SpendMotes{First: essence.Peripheral, Amount: 1}}, 0)
	requireCode(t, err, rejection.CodeExaltOnly)

	bad := base.Clone()
	bad.Name = ""
	_, err = RestoreEventSource(bad, nil, 0)
	requireCode(t, err, rejection.CodeNameEmpty)
}

func TestEventSource_LogsLifecycle(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	es := newHistory(t, WithLogger(logger))

	record(t, es, SetName{Name: "A"})
	require.True(t, es.Undo())
	require.True(t, es.Redo())

	out := buf.String()
	assert.Contains(t, out, "mutation applied")
	assert.Contains(t, out, "type=set_name")
	assert.Contains(t, out, "msg=undo")
	assert.Contains(t, out, "msg=redo")
}

func tagsOf(memo Memo, weapon string) []string {
	return memo.Inventory.MortalWeapons[weapon].Weapon.Tags
}

func TestEventSource_LogDoesNotShareCallerData(t *testing.T) {
	sword := gear.Weapon{
		Name:        "Balanced Sword",
		WeightClass: gear.Medium,
		Handedness:  gear.OneHanded,
		DamageType:  gear.Lethal,
		Tags:        []string{"balanced"},
	}
	mut := AddWeapon{Weapon: sword}

	es := newHistory(t)
	record(t, es, mut, SetConcept{Concept: "Duelist"})
	mut.Weapon.Tags[0] = "mutated"
	assert.Equal(t, []string{"balanced"}, tagsOf(es.Memo(), "Balanced Sword"))

	require.True(t, es.Undo())
	require.True(t, es.Redo())
	assert.Equal(t, []string{"balanced"}, tagsOf(es.Memo(), "Balanced Sword"))

	require.True(t, es.Undo())
	require.True(t, es.Undo())
	require.True(t, es.Redo())
	assert.Equal(t, []string{"balanced"}, tagsOf(es.Memo(), "Balanced Sword"))

	logged := es.Log()
	logged[0].(AddWeapon).Weapon.Tags[0] = "edited"
	assert.Equal(t, []string{"balanced"}, es.Log()[0].(AddWeapon).Weapon.Tags)
}

func TestRestoreEventSource_CopiesLog(t *testing.T) {
	art := orb()
	log := []Mutation{AddArtifact{Artifact: art}}
	es, err := RestoreEventSource(NewMortalMemo("Harmonious Jade"), log, 1)
	require.NoError(t, err)
	before := es.Memo()

	art.Wonder.Name = "Renamed Orb"
	art.Wonder.Artifact.Sockets = nil
	require.True(t, es.Undo())
	require.True(t, es.Redo())
	assert.Equal(t, before, es.Memo())
}

func TestCharacter_ApplyDoesNotShareCallerData(t *testing.T) {
	mut := AddWeapon{Weapon: gear.Weapon{
		Name:        "Balanced Sword",
		WeightClass: gear.Medium,
		Handedness:  gear.OneHanded,
		DamageType:  gear.Lethal,
		Tags:        []string{"balanced"},
	}}
	c := apply(t, newMortal(t), mut)
	mut.Weapon.Tags[0] = "mutated"
	assert.Equal(t, []string{"balanced"}, tagsOf(c.Memo(), "Balanced Sword"))
}
