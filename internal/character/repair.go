package character

import (
	"fmt"

	"github.com/roach88/charsheet/internal/charms"
	"github.com/roach88/charsheet/internal/rejection"
	"github.com/roach88/charsheet/internal/sorcery"
)

// Repair is what the consistency pass removed. An empty Repair means the
// memo was already consistent.
type Repair struct {
	Charms  []charms.ID      `json:"charms,omitempty"`
	Circles []sorcery.Circle `json:"circles,omitempty"`
}

// Changed reports whether anything was removed.
func (r Repair) Changed() bool {
	return len(r.Charms) > 0 || len(r.Circles) > 0
}

// Labels renders the repair as "kind:name" for charms and
// "circle:<circle>" for sorcery circles, in removal order.
func (r Repair) Labels() []string {
	if !r.Changed() {
		return nil
	}
	out := make([]string, 0, len(r.Charms)+len(r.Circles))
	for _, id := range r.Charms {
		out = append(out, string(id.Kind)+":"+id.Name)
	}
	for _, c := range r.Circles {
		out = append(out, "circle:"+string(c))
	}
	return out
}

// repair removes every charm whose requirements fail, transitively, and
// trims sorcery circles the character can no longer hold. It is idempotent.
func (m *Memo) repair() Repair {
	var out Repair
	if ex := m.exalt(); ex != nil {
		out.Charms = ex.Charms.Repair(nil, m.charmLegal)
	}
	out.Circles = m.Sorcery.TrimTo(m.sorcerer().Allowed())
	return out
}

// charmLegal reports whether a known charm's own requirements still hold.
// Prerequisites are the pruning closure's concern.
func (m *Memo) charmLegal(id charms.ID) bool {
	ex := m.exalt()
	if ex == nil {
		return false
	}
	var err error
	switch id.Kind {
	case charms.KindSolar:
		err = m.solarCharmLegal(ex.Charms.Solar[id.Name])
	case charms.KindMartialArts:
		err = m.martialArtsCharmLegal(ex.Charms.MartialArts[id.Name])
	case charms.KindEvocation:
		err = m.evocationLegal(ex.Charms.Evocations[id.Name])
	case charms.KindEclipse:
		err = m.eclipseCharmLegal(ex.Charms.Eclipse[id.Name])
	default:
		return false
	}
	return err == nil
}

func unmet(id charms.ID, reason string) *rejection.Error {
	return rejection.New(rejection.CodeCharmPrerequisitesUnmet, reason).With("charm", id.String())
}

func (m *Memo) checkEssence(id charms.ID, required int) error {
	if have := m.essenceRating(); have < required {
		return unmet(id, "essence rating too low").
			With("required", fmt.Sprint(required)).
			With("essence", fmt.Sprint(have))
	}
	return nil
}

// solarCharmLegal checks exaltation, ability dots and essence. The supernal
// ability ignores the essence gate for its own charms.
func (m *Memo) solarCharmLegal(c charms.SolarCharm) error {
	solar := m.solar()
	if solar == nil {
		return rejection.New(rejection.CodeSolarOnly, "solar charms require a Solar").With("charm", c.ID().String())
	}
	ability := Ability(c.Ability)
	if !ability.solar() {
		return rejection.Newf(rejection.CodeUnknownAbility, "unknown charm ability %q", c.Ability).
			With("charm", c.ID().String())
	}
	if have := m.abilityDots(ability); have < c.AbilityDots {
		return unmet(c.ID(), "ability rating too low").
			With("ability", c.Ability).
			With("required", fmt.Sprint(c.AbilityDots)).
			With("dots", fmt.Sprint(have))
	}
	if solar.Supernal == ability {
		return nil
	}
	return m.checkEssence(c.ID(), c.Essence)
}

// martialArtsCharmLegal checks exaltation, style dots and essence. A Brawl
// supernal ignores the essence gate.
func (m *Memo) martialArtsCharmLegal(c charms.MartialArtsCharm) error {
	if m.exalt() == nil {
		return rejection.New(rejection.CodeExaltOnly, "martial arts charms require an Exalt").
			With("charm", c.ID().String())
	}
	style, ok := m.MartialArts[c.Style]
	if !ok {
		return rejection.New(rejection.CodeMartialArtsNotFound, "martial arts style not known").
			With("charm", c.ID().String()).
			With("style", c.Style)
	}
	if style.Rating.Dots < c.AbilityDots {
		return unmet(c.ID(), "martial arts rating too low").
			With("style", c.Style).
			With("required", fmt.Sprint(c.AbilityDots)).
			With("dots", fmt.Sprint(style.Rating.Dots))
	}
	if solar := m.solar(); solar != nil && solar.Supernal == Brawl {
		return nil
	}
	return m.checkEssence(c.ID(), c.Essence)
}

// evocationLegal checks that the evocation's source is still owned.
func (m *Memo) evocationLegal(e charms.Evocation) error {
	if m.exalt() == nil {
		return rejection.New(rejection.CodeExaltOnly, "evocations require an Exalt").With("charm", e.ID().String())
	}
	owned := false
	switch e.Source.Kind {
	case charms.FromArtifact:
		owned = e.Source.Artifact != nil && m.Inventory.HasArtifact(*e.Source.Artifact)
	case charms.FromHearthstone:
		owned = m.Inventory.HasHearthstone(e.Source.Hearthstone)
	}
	if !owned {
		return rejection.New(rejection.CodeEvocationSourceNotFound, "evocation source not owned").
			With("charm", e.ID().String()).
			With("source", e.Source.String())
	}
	return m.checkEssence(e.ID(), e.Essence)
}

// eclipseCharmLegal requires an Eclipse caste Solar.
func (m *Memo) eclipseCharmLegal(c charms.EclipseCharm) error {
	solar := m.solar()
	if solar == nil {
		return rejection.New(rejection.CodeSolarOnly, "eclipse charms require a Solar").With("charm", c.ID().String())
	}
	if solar.Caste != Eclipse {
		return rejection.New(rejection.CodeCasteMismatch, "eclipse charms require the Eclipse caste").
			With("charm", c.ID().String()).
			With("caste", string(solar.Caste))
	}
	return m.checkEssence(c.ID(), c.Essence)
}

// checkCharmsLegal reports the first known charm that would be pruned.
func (m *Memo) checkCharmsLegal() error {
	ex := m.exalt()
	if ex == nil {
		return nil
	}
	remove := charms.Prune(ex.Charms.Nodes(m.charmLegal), nil)
	for _, id := range ex.Charms.IDs() {
		if remove[id] {
			return rejection.New(rejection.CodeMemoInvalid, "charm requirements not met").
				With("charm", id.String())
		}
	}
	return nil
}

// verify checks a freshly applied memo. Failures are engine bugs.
func (m *Memo) verify() error {
	if ex := m.exalt(); ex != nil {
		if err := ex.Essence.Verify(poolFormula(ex.Type)); err != nil {
			return err
		}
	}
	if err := m.Validate(); err != nil {
		return rejection.Invariantf("memo inconsistent after apply: %v", err)
	}
	return nil
}
