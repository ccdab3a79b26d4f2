// Package character is the character aggregate: the memo that holds every
// trait, the closed vocabulary of mutations that change it, and the event
// source that records mutations for undo and redo.
//
// Every mutation is a check/apply pair. ApplyMutation runs check, applies
// the edit to a scratch copy of the memo, runs the consistency repair
// (charm pruning and sorcery trimming), verifies the result and only then
// swaps it in. A failed mutation leaves the character exactly as it was.
package character

import (
	"slices"

	"github.com/roach88/charsheet/internal/charms"
	"github.com/roach88/charsheet/internal/essence"
	"github.com/roach88/charsheet/internal/gear"
	"github.com/roach88/charsheet/internal/rejection"
	"github.com/roach88/charsheet/internal/sorcery"
)

// Character is the aggregate. A Character obtained from FromMemo or
// NewMortal is writable; views handed out by an EventSource are read-only
// snapshots and reject ApplyMutation.
//
// Character is not safe for concurrent mutation; callers serialize writes.
type Character struct {
	memo     Memo
	readOnly bool
	repair   Repair
}

// NewMortal returns a starting mortal character.
func NewMortal(name string) (*Character, error) {
	return FromMemo(NewMortalMemo(name))
}

// FromMemo validates memo and returns a writable character holding a copy
// of it.
func FromMemo(memo Memo) (*Character, error) {
	m := memo.Clone()
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &Character{memo: m}, nil
}

// Memo returns an owned copy of the character's state.
func (c *Character) Memo() Memo {
	return c.memo.Clone()
}

// ReadOnly reports whether c is a view.
func (c *Character) ReadOnly() bool {
	return c.readOnly
}

// LastRepair is what the consistency pass removed during the most recent
// ApplyMutation that produced c.
func (c *Character) LastRepair() Repair {
	return c.repair
}

// CheckMutation reports whether mut could be applied. It never changes c.
func (c *Character) CheckMutation(mut Mutation) error {
	if mut == nil {
		return unknownMutation("")
	}
	return mut.check(&c.memo)
}

// ApplyMutation applies mut in place and returns c.
func (c *Character) ApplyMutation(mut Mutation) (*Character, error) {
	if c.readOnly {
		return nil, rejection.New(rejection.CodeReadOnlyView, "character views cannot be mutated").
			With("mutation", string(typeOf(mut)))
	}
	owned, err := cloneMutation(mut)
	if err != nil {
		return nil, err
	}
	next, err := c.next(owned)
	if err != nil {
		return nil, err
	}
	c.memo = next.memo
	c.repair = next.repair
	return c, nil
}

// next computes the character that results from mut without touching c.
func (c *Character) next(mut Mutation) (*Character, error) {
	if mut == nil {
		return nil, unknownMutation("")
	}
	work := c.memo.Clone()
	if err := mut.check(&work); err != nil {
		return nil, err
	}
	if err := mut.apply(&work); err != nil {
		return nil, err
	}
	repaired := work.repair()
	if err := work.verify(); err != nil {
		return nil, err
	}
	return &Character{memo: work, repair: repaired}, nil
}

func typeOf(mut Mutation) Type {
	if mut == nil {
		return ""
	}
	return mut.Type()
}

// Read accessors. Each returns copies.

// Name returns the character's name.
func (c *Character) Name() string { return c.memo.Name }

// Concept returns the character concept, or "".
func (c *Character) Concept() string { return c.memo.Concept }

// Exalted reports whether the character is an Exalt.
func (c *Character) Exalted() bool { return c.memo.exalt() != nil }

// Solar returns the Solar traits, or false for mortals.
func (c *Character) Solar() (SolarTraits, bool) {
	if s := c.memo.solar(); s != nil {
		return s.clone(), true
	}
	return SolarTraits{}, false
}

// Essence returns the mote ledger, or false for mortals.
func (c *Character) Essence() (essence.Ledger, bool) {
	if ex := c.memo.exalt(); ex != nil {
		return ex.Essence.Clone(), true
	}
	return essence.Ledger{}, false
}

// Attribute returns an attribute's dots.
func (c *Character) Attribute(a Attribute) int { return c.memo.Attributes[a] }

// Ability returns an ability's rating.
func (c *Character) Ability(a Ability) Rating { return c.memo.Abilities[a].clone() }

// Craft returns a craft focus rating.
func (c *Character) Craft(focus string) (Rating, bool) {
	r, ok := c.memo.Crafts[craftFocus(focus)]
	return r.clone(), ok
}

// MartialArts returns a style and its rating.
func (c *Character) MartialArts(style string) (MartialArtsRating, bool) {
	ma, ok := c.memo.MartialArts[style]
	return ma.clone(), ok
}

// Willpower returns permanent and current willpower.
func (c *Character) Willpower() Willpower { return c.memo.Willpower }

// Health returns the health track.
func (c *Character) Health() Health { return c.memo.Health.clone() }

// Experience returns both experience pools.
func (c *Character) Experience() Experience { return c.memo.Experience }

// Languages returns the spoken languages.
func (c *Character) Languages() Languages { return c.memo.Languages.clone() }

// Charms returns every known charm, sorted by kind then name.
func (c *Character) Charms() []charms.ID {
	if ex := c.memo.exalt(); ex != nil {
		return ex.Charms.IDs()
	}
	return nil
}

// HasCharm reports whether the character knows id. Spells are looked up in
// the sorcery ladder.
func (c *Character) HasCharm(id charms.ID) bool {
	if id.Kind == charms.KindSpell {
		return slices.ContainsFunc(c.memo.Sorcery.Spells(), func(s sorcery.Spell) bool { return s.Name == id.Name })
	}
	ex := c.memo.exalt()
	return ex != nil && ex.Charms.Has(id)
}

// Inventory returns a copy of the character's equipment.
func (c *Character) Inventory() gear.Inventory { return c.memo.Inventory.Clone() }

// Attuned reports whether the character is attuned to an artifact.
func (c *Character) Attuned(id gear.ArtifactID) bool { return c.memo.attuned(id) }

// Sorcery returns a copy of the sorcery ladder.
func (c *Character) Sorcery() sorcery.Ladder { return c.memo.Sorcery.Clone() }
