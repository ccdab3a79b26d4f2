// Package testutil provides shared character fixtures for tests outside the
// character package.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/charsheet/internal/character"
	"github.com/roach88/charsheet/internal/charms"
	"github.com/roach88/charsheet/internal/essence"
)

// MortalName is the name used by MortalMemo.
const MortalName = "Harmonious Jade"

// MortalMemo returns a fresh mortal memo named MortalName.
func MortalMemo() character.Memo {
	return character.NewMortalMemo(MortalName)
}

// Dawn returns valid Dawn caste traits.
func Dawn() character.SolarTraits {
	return character.SolarTraits{
		Caste:          character.Dawn,
		CasteAbilities: []character.Ability{character.Archery, character.Awareness, character.Brawl, character.Dodge, character.Melee},
		Supernal:       character.Melee,
		Favored:        []character.Ability{character.Athletics, character.Integrity, character.Lore, character.Occult, character.War},
	}
}

// WarCharm returns a Solar War charm.
func WarCharm(name string, dots, ess int, prereqs ...string) charms.SolarCharm {
	return charms.SolarCharm{
		Name:          name,
		Ability:       string(character.War),
		AbilityDots:   dots,
		Essence:       ess,
		Prerequisites: prereqs,
	}
}

// Session is a short valid history starting from MortalMemo: exaltation,
// a charm, mote spending and a commitment, then an ability drop that prunes
// the charm.
func Session() []character.Mutation {
	return []character.Mutation{
		character.SetSolar{Solar: Dawn()},
		character.SetAbility{Ability: character.War, Dots: 3},
		character.AddSolarCharm{Charm: WarCharm("Bolster", 1, 1)},
		character.SpendMotes{First: essence.Peripheral, Amount: 10},
		character.CommitMotes{ID: "c1", Name: "Ox-Body", First: essence.Personal, Amount: 15},
		character.SetAbility{Ability: character.War, Dots: 0},
	}
}

// NewHistory starts an event source on MortalMemo and applies muts.
func NewHistory(t testing.TB, muts ...character.Mutation) *character.EventSource {
	t.Helper()
	es, err := character.NewEventSource(MortalMemo())
	require.NoError(t, err)
	for _, mut := range muts {
		_, err := es.ApplyMutation(mut)
		require.NoError(t, err, "apply %s", mut.Type())
	}
	return es
}
