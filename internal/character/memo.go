package character

import (
	"fmt"
	"maps"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/charsheet/internal/gear"
	"github.com/roach88/charsheet/internal/rejection"
	"github.com/roach88/charsheet/internal/sorcery"
)

// MemoVersion is the current memo layout version.
const MemoVersion = 1

// DefaultNativeLanguage is the native language of a new character.
const DefaultNativeLanguage = "Low Realm"

// Memo is the owned, serializable snapshot of a character. It shares no
// memory with any Character or EventSource it is handed to or taken from.
type Memo struct {
	Version     int                          `json:"version" yaml:"version"`
	Name        string                       `json:"name" yaml:"name"`
	Concept     string                       `json:"concept,omitempty" yaml:"concept,omitempty"`
	Exaltation  Exaltation                   `json:"exaltation" yaml:"exaltation"`
	Willpower   Willpower                    `json:"willpower" yaml:"willpower"`
	Health      Health                       `json:"health" yaml:"health"`
	Attributes  map[Attribute]int            `json:"attributes" yaml:"attributes"`
	Abilities   map[Ability]Rating           `json:"abilities" yaml:"abilities"`
	Crafts      map[string]Rating            `json:"crafts" yaml:"crafts"`
	MartialArts map[string]MartialArtsRating `json:"martial_arts" yaml:"martial_arts"`
	Experience  Experience                   `json:"experience" yaml:"experience"`
	Languages   Languages                    `json:"languages" yaml:"languages"`
	Merits      map[string]Merit             `json:"merits" yaml:"merits"`
	Flaws       map[string]Flaw              `json:"flaws" yaml:"flaws"`
	Inventory   gear.Inventory               `json:"inventory" yaml:"inventory"`
	Sorcery     sorcery.Ladder               `json:"sorcery" yaml:"sorcery"`
}

// NewMortalMemo returns a starting mortal: every attribute at one dot, every
// ability at zero, willpower 3.
func NewMortalMemo(name string) Memo {
	m := Memo{
		Version:    MemoVersion,
		Name:       norm.NFC.String(name),
		Exaltation: Exaltation{Kind: KindMortal},
		Willpower:  Willpower{Current: 3, Rating: 3},
		Health:     NewHealth(),
		Languages:  Languages{Native: DefaultNativeLanguage},
		Inventory:  gear.NewInventory(),
	}
	m.normalize()
	return m
}

// Clone returns a deep copy.
func (m Memo) Clone() Memo {
	out := m
	out.Exaltation = m.Exaltation.clone()
	out.Health = m.Health.clone()
	out.Attributes = maps.Clone(m.Attributes)
	out.Abilities = make(map[Ability]Rating, len(m.Abilities))
	for k, r := range m.Abilities {
		out.Abilities[k] = r.clone()
	}
	out.Crafts = make(map[string]Rating, len(m.Crafts))
	for k, r := range m.Crafts {
		out.Crafts[k] = r.clone()
	}
	out.MartialArts = make(map[string]MartialArtsRating, len(m.MartialArts))
	for k, r := range m.MartialArts {
		out.MartialArts[k] = r.clone()
	}
	out.Languages = m.Languages.clone()
	out.Merits = maps.Clone(m.Merits)
	out.Flaws = maps.Clone(m.Flaws)
	out.Inventory = m.Inventory.Clone()
	out.Sorcery = m.Sorcery.Clone()
	return out
}

// normalize fills the zero values that decoding leaves behind so every
// fixed trait has an entry.
func (m *Memo) normalize() {
	if m.Version == 0 {
		m.Version = MemoVersion
	}
	if m.Attributes == nil {
		m.Attributes = make(map[Attribute]int, len(Attributes))
	}
	for _, a := range Attributes {
		if _, ok := m.Attributes[a]; !ok {
			m.Attributes[a] = MinAttributeDots
		}
	}
	if m.Abilities == nil {
		m.Abilities = make(map[Ability]Rating, len(Abilities))
	}
	for _, a := range Abilities {
		if _, ok := m.Abilities[a]; !ok {
			m.Abilities[a] = Rating{}
		}
	}
	if m.Crafts == nil {
		m.Crafts = map[string]Rating{}
	}
	if m.MartialArts == nil {
		m.MartialArts = map[string]MartialArtsRating{}
	}
	if m.Merits == nil {
		m.Merits = map[string]Merit{}
	}
	if m.Flaws == nil {
		m.Flaws = map[string]Flaw{}
	}
	if m.Health.WoundPenalties == nil {
		m.Health.WoundPenalties = NewHealth().WoundPenalties
	}
	if m.Exaltation.Kind == "" {
		m.Exaltation.Kind = KindMortal
	}
	if m.Sorcery.Levels == nil {
		m.Sorcery.Levels = []sorcery.Level{}
	}
}

// Validate normalizes the memo and checks every structural invariant.
// Errors carry CodeMemoInvalid or the code of the failing sub-ledger.
func (m *Memo) Validate() error {
	m.normalize()
	if m.Version != MemoVersion {
		return rejection.Newf(rejection.CodeMemoInvalid, "unsupported memo version %d", m.Version)
	}
	if m.Name == "" {
		return rejection.New(rejection.CodeNameEmpty, "character name is required")
	}
	if err := m.Exaltation.validate(); err != nil {
		return fmt.Errorf("exaltation: %w", err)
	}
	if err := m.Willpower.validate(); err != nil {
		return err
	}
	if err := m.Health.validate(); err != nil {
		return err
	}
	for a, dots := range m.Attributes {
		if !a.Valid() {
			return rejection.Newf(rejection.CodeUnknownAttribute, "unknown attribute %q", a)
		}
		if err := checkDots(rejection.CodeMemoInvalid, string(a), dots, MinAttributeDots); err != nil {
			return err
		}
	}
	for a, r := range m.Abilities {
		if !a.Valid() {
			return rejection.Newf(rejection.CodeUnknownAbility, "unknown ability %q", a)
		}
		if err := r.validate(string(a)); err != nil {
			return err
		}
	}
	for focus, r := range m.Crafts {
		if focus == "" || r.Dots == 0 {
			return rejection.New(rejection.CodeMemoInvalid, "craft foci must be named and rated").
				With("craft", focus)
		}
		if err := r.validate("craft:" + focus); err != nil {
			return err
		}
	}
	for name, ma := range m.MartialArts {
		if name == "" || name != ma.Style.Name {
			return rejection.New(rejection.CodeMemoInvalid, "martial arts style key does not match its name").
				With("style", name)
		}
		if err := ma.Rating.validate("martial_arts:" + name); err != nil {
			return err
		}
	}
	if err := m.Experience.validate(); err != nil {
		return err
	}
	if err := m.Languages.validate(); err != nil {
		return err
	}
	for id, merit := range m.Merits {
		if id == "" {
			return rejection.New(rejection.CodeMemoInvalid, "merit identifier is required")
		}
		if err := merit.validate(); err != nil {
			return err
		}
	}
	for name, flaw := range m.Flaws {
		if name == "" || name != flaw.Name {
			return rejection.New(rejection.CodeMemoInvalid, "flaw key does not match its name").
				With("flaw", name)
		}
	}
	if err := m.Inventory.Validate(); err != nil {
		return fmt.Errorf("inventory: %w", err)
	}
	if err := m.Sorcery.Validate(); err != nil {
		return fmt.Errorf("sorcery: %w", err)
	}
	if err := m.checkCharmsLegal(); err != nil {
		return err
	}
	return m.checkSorceryAllowed()
}

// exalt returns the Exalt data or nil for mortals.
func (m *Memo) exalt() *Exalt {
	if m.Exaltation.Kind != KindExalt {
		return nil
	}
	return m.Exaltation.Exalt
}

// solar returns the Solar traits or nil.
func (m *Memo) solar() *SolarTraits {
	if ex := m.exalt(); ex != nil && ex.Type == ExaltSolar {
		return ex.Solar
	}
	return nil
}

// essenceRating is the essence used for gates. Mortals count as one.
func (m *Memo) essenceRating() int {
	if ex := m.exalt(); ex != nil {
		return ex.Essence.Rating
	}
	return 1
}

// abilityDots returns the rating of a Solar ability; Craft counts as the
// highest craft focus.
func (m *Memo) abilityDots(a Ability) int {
	if a == Craft {
		best := 0
		for _, r := range m.Crafts {
			best = max(best, r.Dots)
		}
		return best
	}
	return m.Abilities[a].Dots
}

func (m *Memo) sorcerer() sorcery.Sorcerer {
	return sorcery.Sorcerer{
		Occult:  m.Abilities[Occult].Dots,
		Essence: m.essenceRating(),
		Solar:   m.solar() != nil,
	}
}

func (m *Memo) checkSorceryAllowed() error {
	held := len(m.Sorcery.Levels)
	if allowed := m.sorcerer().Allowed(); held > allowed {
		return rejection.New(rejection.CodeMemoInvalid, "sorcery circle exceeds what the character can hold").
			With("held", fmt.Sprint(held)).
			With("allowed", fmt.Sprint(allowed))
	}
	return nil
}
