package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/charsheet/internal/character"
	"github.com/roach88/charsheet/internal/rejection"
	"github.com/roach88/charsheet/internal/testutil"
)

func newValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := New()
	require.NoError(t, err)
	return v
}

func TestSchema_CoversEveryMutationType(t *testing.T) {
	types, err := newValidator(t).Types()
	require.NoError(t, err)
	assert.Equal(t, character.Types(), types)
}

func TestValidateEnvelope_AcceptsEncodedMutations(t *testing.T) {
	v := newValidator(t)
	for _, mut := range testutil.Session() {
		env, err := character.Encode(mut)
		require.NoError(t, err)
		assert.NoError(t, v.ValidateEnvelope(env), "type %s", mut.Type())
	}
	assert.NoError(t, v.ValidateEnvelope(character.Envelope{Type: character.TypeUnequipArmor}))
}

func TestValidateEnvelope_Rejections(t *testing.T) {
	v := newValidator(t)
	tests := []struct {
		name    string
		typ     character.Type
		payload string
		code    rejection.Code
	}{
		{"unknown type", "set_luck", `{}`, rejection.CodeUnknownMutation},
		{"unknown key", character.TypeSetName, `{"name": "A", "nickname": "B"}`, rejection.CodePayloadInvalid},
		{"empty name", character.TypeSetName, `{"name": ""}`, rejection.CodePayloadInvalid},
		{"missing field", character.TypeSetAbility, `{"ability": "war"}`, rejection.CodePayloadInvalid},
		{"bad ability", character.TypeSetAbility, `{"ability": "juggling", "dots": 2}`, rejection.CodePayloadInvalid},
		{"wrong type", character.TypeSpendMotes, `{"first": "personal", "amount": "ten"}`, rejection.CodePayloadInvalid},
		{"negative amount", character.TypeGainExperience, `{"amount": -1}`, rejection.CodePayloadInvalid},
		{"bad pool", character.TypeSpendMotes, `{"first": "borrowed", "amount": 1}`, rejection.CodePayloadInvalid},
		{"payload on empty mutation", character.TypeRemoveConcept, `{"concept": "x"}`, rejection.CodePayloadInvalid},
		{"bad charm kind", character.TypeRemoveCharm, `{"charm": {"kind": "lunar", "name": "X"}}`, rejection.CodePayloadInvalid},
		{"malformed", character.TypeSetName, `{"name":`, rejection.CodePayloadInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateEnvelope(character.Envelope{Type: tt.typ, Payload: json.RawMessage(tt.payload)})
			require.Error(t, err)
			assert.Equal(t, tt.code, rejection.CodeOf(err))
		})
	}
}

func TestValidateDocument(t *testing.T) {
	v := newValidator(t)
	envs, err := v.ValidateDocument([]byte(`
- type: set_ability
  payload: {ability: war, dots: 3}
- type: add_sorcery_circle
  payload:
    circle: terrestrial
    archetype: {name: Flame}
    shaping_ritual: {name: Flame Ritual, archetype: Flame}
    control_spell: {name: Flame Control, circle: terrestrial}
- type: remove_sorcery_circle
`))
	require.NoError(t, err)
	assert.Len(t, envs, 3)

	_, err = v.ValidateDocument([]byte(`
- type: set_name
  payload: {name: A}
- type: set_ability
  payload: {ability: war}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutation 1")
	assert.Equal(t, rejection.CodePayloadInvalid, rejection.CodeOf(err))
}
