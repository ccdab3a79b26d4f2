package gear

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mortal(name string) WeaponID  { return WeaponID{Kind: WeaponMortal, Name: name} }
func artifact(name string) WeaponID { return WeaponID{Kind: WeaponArtifact, Name: name} }

func TestHands_EquipOneHanded(t *testing.T) {
	tests := []struct {
		name      string
		start     Hands
		id        WeaponID
		hand      Hand
		wantState HandState
		displaced []WeaponID
	}{
		{
			name:      "empty to main",
			start:     Hands{State: HandsEmpty},
			id:        mortal("sword"),
			hand:      MainHand,
			wantState: HandsMain,
		},
		{
			name:      "empty to off",
			start:     Hands{State: HandsEmpty},
			id:        mortal("knife"),
			hand:      OffHand,
			wantState: HandsOff,
		},
		{
			name:      "main to both",
			start:     Hands{State: HandsMain, Main: ptr(mortal("sword"))},
			id:        mortal("knife"),
			hand:      OffHand,
			wantState: HandsBoth,
		},
		{
			name:      "replace main only",
			start:     Hands{State: HandsBoth, Main: ptr(mortal("sword")), Off: ptr(mortal("knife"))},
			id:        mortal("axe"),
			hand:      MainHand,
			wantState: HandsBoth,
			displaced: []WeaponID{mortal("sword")},
		},
		{
			name:      "one-handed displaces two-handed",
			start:     Hands{State: HandsTwoHanded, Main: ptr(mortal("daiklave"))},
			id:        mortal("knife"),
			hand:      OffHand,
			wantState: HandsOff,
			displaced: []WeaponID{mortal("daiklave")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := tt.start.Clone()
			displaced := h.EquipOneHanded(tt.id, tt.hand)

			assert.Equal(t, tt.wantState, h.State)
			assert.Equal(t, tt.displaced, displaced)
			assert.Contains(t, h.Holding(tt.id), tt.hand)
			require.NoError(t, h.validate())
		})
	}
}

func TestHands_EquipTwoHandedClearsBoth(t *testing.T) {
	h := Hands{State: HandsEmpty}
	h.EquipOneHanded(mortal("sword"), MainHand)
	h.EquipOneHanded(mortal("knife"), OffHand)
	require.Equal(t, HandsBoth, h.State)

	displaced := h.EquipTwoHanded(artifact("Grand Daiklave"))

	assert.Equal(t, HandsTwoHanded, h.State)
	assert.Equal(t, []WeaponID{mortal("sword"), mortal("knife")}, displaced)
	assert.Equal(t, []WeaponID{artifact("Grand Daiklave")}, h.Occupants())
	assert.Equal(t, []Hand{MainHand, OffHand}, h.Holding(artifact("Grand Daiklave")))
	assert.Nil(t, h.Off)
}

func TestHands_FreeRequiresExactMatch(t *testing.T) {
	h := Hands{State: HandsEmpty}
	h.EquipOneHanded(mortal("sword"), MainHand)
	before := h.Clone()

	assert.False(t, h.Free(mortal("knife"), MainHand), "wrong weapon")
	assert.False(t, h.Free(mortal("sword"), OffHand), "wrong hand")
	assert.Equal(t, before, h)

	assert.True(t, h.Free(mortal("sword"), MainHand))
	assert.Equal(t, HandsEmpty, h.State)
}

func TestHands_FreeTwoHandedFromEitherHand(t *testing.T) {
	for _, hand := range []Hand{MainHand, OffHand} {
		h := Hands{State: HandsEmpty}
		h.EquipTwoHanded(mortal("great axe"))

		assert.True(t, h.Free(mortal("great axe"), hand))
		assert.Equal(t, Hands{State: HandsEmpty}, h)
	}
}

func TestHands_ValidateRejectsMismatchedState(t *testing.T) {
	assert.Error(t, Hands{State: HandsBoth, Main: ptr(mortal("sword"))}.validate())
	assert.Error(t, Hands{State: HandsTwoHanded}.validate())
	assert.Error(t, Hands{State: "juggling"}.validate())
	assert.NoError(t, Hands{State: HandsEmpty}.validate())
}

func ptr[T any](v T) *T { return &v }
