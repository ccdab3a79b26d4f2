package character

import (
	"github.com/roach88/charsheet/internal/charms"
	"github.com/roach88/charsheet/internal/rejection"
	"github.com/roach88/charsheet/internal/sorcery"
)

// addCharm is the shared check for every add_*_charm mutation: the charm
// must be structurally valid, new, have its prerequisites and be legal for
// this character.
func addCharm(ex *Exalt, id charms.ID, prereqs []charms.ID, validate, legal func() error) error {
	if err := validate(); err != nil {
		return err
	}
	if err := ex.Charms.CheckAdd(id, prereqs); err != nil {
		return err
	}
	return legal()
}

// AddSolarCharm learns a Solar charm. Solar only.
type AddSolarCharm struct {
	Charm charms.SolarCharm `json:"charm" yaml:"charm"`
}

func (AddSolarCharm) Type() Type { return TypeAddSolarCharm }

func (s AddSolarCharm) check(m *Memo) error {
	if _, err := solarOf(m, s.Type()); err != nil {
		return err
	}
	return addCharm(m.exalt(), s.Charm.ID(), s.Charm.PrerequisiteIDs(), s.Charm.Validate,
		func() error { return m.solarCharmLegal(s.Charm) })
}

func (s AddSolarCharm) apply(m *Memo) error {
	m.exalt().Charms.AddSolar(s.Charm)
	return nil
}

// AddEvocation learns an evocation of an owned artifact or hearthstone.
type AddEvocation struct {
	Evocation charms.Evocation `json:"evocation" yaml:"evocation"`
}

func (AddEvocation) Type() Type { return TypeAddEvocation }

func (s AddEvocation) check(m *Memo) error {
	ex, err := exaltOf(m, s.Type())
	if err != nil {
		return err
	}
	return addCharm(ex, s.Evocation.ID(), s.Evocation.Prerequisites, s.Evocation.Validate,
		func() error { return m.evocationLegal(s.Evocation) })
}

func (s AddEvocation) apply(m *Memo) error {
	m.exalt().Charms.AddEvocation(s.Evocation)
	return nil
}

// AddMartialArtsCharm learns a charm of a known style. Exalt only.
type AddMartialArtsCharm struct {
	Charm charms.MartialArtsCharm `json:"charm" yaml:"charm"`
}

func (AddMartialArtsCharm) Type() Type { return TypeAddMartialArtsCharm }

func (s AddMartialArtsCharm) check(m *Memo) error {
	ex, err := exaltOf(m, s.Type())
	if err != nil {
		return err
	}
	return addCharm(ex, s.Charm.ID(), s.Charm.PrerequisiteIDs(), s.Charm.Validate,
		func() error { return m.martialArtsCharmLegal(s.Charm) })
}

func (s AddMartialArtsCharm) apply(m *Memo) error {
	m.exalt().Charms.AddMartialArts(s.Charm)
	return nil
}

// AddEclipseCharm learns a spirit charm. Eclipse caste Solars only.
type AddEclipseCharm struct {
	Charm charms.EclipseCharm `json:"charm" yaml:"charm"`
}

func (AddEclipseCharm) Type() Type { return TypeAddEclipseCharm }

func (s AddEclipseCharm) check(m *Memo) error {
	if _, err := solarOf(m, s.Type()); err != nil {
		return err
	}
	return addCharm(m.exalt(), s.Charm.ID(), nil, s.Charm.Validate,
		func() error { return m.eclipseCharmLegal(s.Charm) })
}

func (s AddEclipseCharm) apply(m *Memo) error {
	m.exalt().Charms.AddEclipse(s.Charm)
	return nil
}

// RemoveCharm forgets a charm. The consistency pass that follows removes
// everything depending on it. Spells are forwarded to the sorcery ladder.
type RemoveCharm struct {
	Charm charms.ID `json:"charm" yaml:"charm"`
}

func (RemoveCharm) Type() Type { return TypeRemoveCharm }

func (s RemoveCharm) check(m *Memo) error {
	if s.Charm.Kind == charms.KindSpell {
		return m.Sorcery.CheckRemoveSpell(s.Charm.Name)
	}
	ex, err := exaltOf(m, s.Type())
	if err != nil {
		return err
	}
	if !ex.Charms.Has(s.Charm) {
		return rejection.New(rejection.CodeCharmNotFound, "charm not known").With("charm", s.Charm.String())
	}
	return nil
}

func (s RemoveCharm) apply(m *Memo) error {
	if s.Charm.Kind == charms.KindSpell {
		return m.Sorcery.RemoveSpell(s.Charm.Name)
	}
	m.exalt().Charms.Remove(s.Charm)
	return nil
}

// Sorcery.

// AddSorceryCircle initiates the character into the next circle. The
// character must meet the circle's occult and essence gates.
type AddSorceryCircle struct {
	sorcery.Initiation `yaml:",inline"`
}

func (AddSorceryCircle) Type() Type { return TypeAddSorceryCircle }

func (s AddSorceryCircle) check(m *Memo) error {
	if err := m.Sorcery.CheckAddCircle(s.Initiation); err != nil {
		return err
	}
	if !m.sorcerer().Meets(s.Circle) {
		req := sorcery.Requirements[s.Circle]
		e := rejection.New(rejection.CodeSorceryPrerequisitesUnmet, "character does not meet the circle's requirements").
			With("circle", string(s.Circle))
		if req.SolarOnly {
			e = e.With("solar_only", "true")
		}
		return e
	}
	return nil
}

func (s AddSorceryCircle) apply(m *Memo) error {
	return m.Sorcery.AddCircle(s.Initiation)
}

// RemoveSorceryCircle drops the top circle and only its own rituals and
// spells.
type RemoveSorceryCircle struct{}

func (RemoveSorceryCircle) Type() Type { return TypeRemoveSorceryCircle }

func (RemoveSorceryCircle) check(m *Memo) error { return m.Sorcery.CheckRemoveCircle() }

func (RemoveSorceryCircle) apply(m *Memo) error {
	_, err := m.Sorcery.RemoveCircle()
	return err
}

// AddShapingRitual learns a shaping ritual of a held archetype.
type AddShapingRitual struct {
	Ritual sorcery.ShapingRitual `json:"ritual" yaml:"ritual"`
}

func (AddShapingRitual) Type() Type { return TypeAddShapingRitual }

func (s AddShapingRitual) check(m *Memo) error { return m.Sorcery.CheckAddShapingRitual(s.Ritual) }

func (s AddShapingRitual) apply(m *Memo) error { return m.Sorcery.AddShapingRitual(s.Ritual) }

// RemoveShapingRitual forgets a shaping ritual other than an initiation
// ritual.
type RemoveShapingRitual struct {
	Name string `json:"name" yaml:"name"`
}

func (RemoveShapingRitual) Type() Type { return TypeRemoveShapingRitual }

func (s RemoveShapingRitual) check(m *Memo) error { return m.Sorcery.CheckRemoveShapingRitual(s.Name) }

func (s RemoveShapingRitual) apply(m *Memo) error { return m.Sorcery.RemoveShapingRitual(s.Name) }

// AddSpell learns a spell of a held circle.
type AddSpell struct {
	Spell sorcery.Spell `json:"spell" yaml:"spell"`
}

func (AddSpell) Type() Type { return TypeAddSpell }

func (s AddSpell) check(m *Memo) error { return m.Sorcery.CheckAddSpell(s.Spell) }

func (s AddSpell) apply(m *Memo) error { return m.Sorcery.AddSpell(s.Spell) }

// RemoveSpell forgets a spell. Control spells cannot be removed.
type RemoveSpell struct {
	Name string `json:"name" yaml:"name"`
}

func (RemoveSpell) Type() Type { return TypeRemoveSpell }

func (s RemoveSpell) check(m *Memo) error { return m.Sorcery.CheckRemoveSpell(s.Name) }

func (s RemoveSpell) apply(m *Memo) error { return m.Sorcery.RemoveSpell(s.Name) }
