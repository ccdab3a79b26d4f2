package character

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/charsheet/internal/charms"
	"github.com/roach88/charsheet/internal/essence"
	"github.com/roach88/charsheet/internal/rejection"
	"github.com/roach88/charsheet/internal/sorcery"
)

func TestDecode_EveryTypeHasADecoder(t *testing.T) {
	types := Types()
	require.Len(t, types, len(decoders))
	for _, typ := range types {
		mut, err := Decode(Envelope{Type: typ})
		require.NoError(t, err, "type %s", typ)
		assert.Equal(t, typ, mut.Type())
		assert.True(t, Known(typ))
	}
	assert.False(t, Known("set_luck"))
}

func TestDecode_UnknownType(t *testing.T) {
	_, err := Decode(Envelope{Type: "set_luck"})
	requireCode(t, err, rejection.CodeUnknownMutation)
}

func TestDecode_RejectsUnknownPayloadFields(t *testing.T) {
	_, err := Decode(Envelope{Type: TypeSetName, Payload: json.RawMessage(`{"name":"A","nickname":"B"}`)})
	requireCode(t, err, rejection.CodePayloadInvalid)
}

func TestMarshalMutation_RoundTrip(t *testing.T) {
	muts := []Mutation{
		SetAbility{Ability: Melee, Dots: 3},
		CommitMotes{ID: "c1", Name: "Ox-Body", First: essence.Personal, Amount: 4},
		RemoveCharm{Charm: charms.ID{Kind: charms.KindSolar, Name: "Bolster"}},
		initiation(sorcery.Terrestrial, "Flame"),
		UnequipArmor{},
	}
	for _, mut := range muts {
		data, err := MarshalMutation(mut)
		require.NoError(t, err)
		got, err := UnmarshalMutation(data)
		require.NoError(t, err)
		assert.Equal(t, mut, got)
	}
}

func TestEncode_InitiationIsFlat(t *testing.T) {
	env, err := Encode(initiation(sorcery.Terrestrial, "Flame"))
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Contains(t, payload, "circle")
	assert.Contains(t, payload, "archetype")
	assert.Contains(t, payload, "shaping_ritual")
	assert.Contains(t, payload, "control_spell")
}

func TestParseDocument_YAMLSequence(t *testing.T) {
	doc := []byte(`
- type: set_solar
  payload:
    solar:
      caste: dawn
      caste_abilities: [archery, awareness, brawl, dodge, melee]
      supernal: melee
      favored_abilities: [athletics, integrity, lore, occult, war]
- type: spend_motes
  payload: {first: peripheral, amount: 10}
- type: remove_concept
`)
	muts, err := DecodeDocument(doc)
	require.NoError(t, err)
	require.Len(t, muts, 3)
	assert.Equal(t, SpendMotes{First: essence.Peripheral, Amount: 10}, muts[1])
	assert.Equal(t, RemoveConcept{}, muts[2])

	c := apply(t, newMortal(t), muts...)
	l, ok := c.Essence()
	require.True(t, ok)
	assert.Equal(t, essence.MotePool{Available: 23, Spent: 10}, l.Motes.Peripheral)
}

func TestParseDocument_SingleMappingAndJSON(t *testing.T) {
	envs, err := ParseDocument([]byte(`{"type": "set_name", "payload": {"name": "A"}}`))
	require.NoError(t, err)
	require.Len(t, envs, 1)
	assert.Equal(t, TypeSetName, envs[0].Type)

	envs, err = ParseDocument([]byte("  \n"))
	require.NoError(t, err)
	assert.Empty(t, envs)
}

func TestParseDocument_Rejections(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		code rejection.Code
	}{
		{"scalar", `42`, rejection.CodePayloadInvalid},
		{"unknown envelope key", `{type: set_name, payload: {name: A}, when: now}`, rejection.CodePayloadInvalid},
		{"missing type", `{payload: {name: A}}`, rejection.CodePayloadInvalid},
		{"sequence of scalars", `[1, 2]`, rejection.CodePayloadInvalid},
		{"malformed", `{type: [`, rejection.CodePayloadInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDocument([]byte(tt.doc))
			requireCode(t, err, tt.code)
		})
	}

	_, err := DecodeDocument([]byte(`{type: set_name, payload: {name: A, nickname: B}}`))
	requireCode(t, err, rejection.CodePayloadInvalid)
	_, err = DecodeDocument([]byte(`{type: set_luck}`))
	requireCode(t, err, rejection.CodeUnknownMutation)
}

func TestParseMemo_RoundTrip(t *testing.T) {
	c := apply(t, newSolar(t),
		SetAbility{Ability: War, Dots: 3},
		AddSpecialty{Ability: War, Specialty: "Cavalry"},
		AddSolarCharm{Charm: warCharm("Bolster", 1, 1)},
		CommitMotes{ID: "c1", Name: "Ox-Body", First: essence.Personal, Amount: 4},
		AddArtifact{Artifact: orb()},
	)
	want, err := json.Marshal(c.Memo())
	require.NoError(t, err)

	memo, err := ParseMemo(want)
	require.NoError(t, err)
	got, err := json.Marshal(memo)
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(got))

	restored, err := FromMemo(memo)
	require.NoError(t, err)
	assert.True(t, restored.HasCharm(solarID("Bolster")))
}

func TestParseMemo_Rejections(t *testing.T) {
	_, err := ParseMemo([]byte(`{"version": 1, "name": "A", "luck": 3}`))
	requireCode(t, err, rejection.CodeMemoInvalid)

	_, err = ParseMemo([]byte(`{"version": 2, "name": "A"}`))
	requireCode(t, err, rejection.CodeMemoInvalid)

	_, err = ParseMemo([]byte(`{"version": 1, "name": ""}`))
	requireCode(t, err, rejection.CodeNameEmpty)
}
