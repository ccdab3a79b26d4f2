package character

import (
	"fmt"
	"slices"

	"github.com/roach88/charsheet/internal/charms"
	"github.com/roach88/charsheet/internal/essence"
	"github.com/roach88/charsheet/internal/rejection"
)

// ExaltationKind separates mortals from Exalts.
type ExaltationKind string

const (
	KindMortal ExaltationKind = "mortal"
	KindExalt  ExaltationKind = "exalt"
)

// ExaltType is the Exalt subtype. Only Solars are modelled.
type ExaltType string

const ExaltSolar ExaltType = "solar"

// poolFormula returns the mote pool formula of an Exalt type.
func poolFormula(t ExaltType) essence.PoolFormula {
	switch t {
	case ExaltSolar:
		return essence.SolarPools
	}
	return nil
}

// Caste is a Solar caste.
type Caste string

const (
	Dawn     Caste = "dawn"
	Zenith   Caste = "zenith"
	Twilight Caste = "twilight"
	Night    Caste = "night"
	Eclipse  Caste = "eclipse"
)

// CasteAbilities lists the abilities each caste may choose its five caste
// abilities from. Brawl stands for martial arts.
var CasteAbilities = map[Caste][]Ability{
	Dawn:     {Archery, Awareness, Brawl, Dodge, Melee, Resistance, Thrown, War},
	Zenith:   {Athletics, Integrity, Lore, Performance, Presence, Resistance, Survival, War},
	Twilight: {Bureaucracy, Craft, Integrity, Investigation, Linguistics, Lore, Medicine, Occult},
	Night:    {Athletics, Awareness, Dodge, Investigation, Larceny, Ride, Socialize, Stealth},
	Eclipse:  {Bureaucracy, Larceny, Linguistics, Occult, Presence, Ride, Sail, Socialize},
}

// Solar trait counts and limit bounds.
const (
	CasteAbilityCount   = 5
	FavoredAbilityCount = 5
	MaxLimit            = 10
)

// Limit is the Great Curse track.
type Limit struct {
	Track   int    `json:"track" yaml:"track"`
	Trigger string `json:"trigger,omitempty" yaml:"trigger,omitempty"`
}

// SolarTraits holds the choices that make a Solar.
type SolarTraits struct {
	Caste          Caste     `json:"caste" yaml:"caste"`
	CasteAbilities []Ability `json:"caste_abilities" yaml:"caste_abilities"`
	Supernal       Ability   `json:"supernal" yaml:"supernal"`
	Favored        []Ability `json:"favored_abilities" yaml:"favored_abilities"`
	Limit          Limit     `json:"limit" yaml:"limit"`
}

func (s SolarTraits) clone() SolarTraits {
	s.CasteAbilities = slices.Clone(s.CasteAbilities)
	s.Favored = slices.Clone(s.Favored)
	return s
}

// IsCaste reports whether a is one of the chosen caste abilities.
func (s SolarTraits) IsCaste(a Ability) bool {
	return slices.Contains(s.CasteAbilities, a)
}

// IsFavored reports whether a is one of the favored abilities.
func (s SolarTraits) IsFavored(a Ability) bool {
	return slices.Contains(s.Favored, a)
}

func distinct(abilities []Ability) bool {
	seen := make(map[Ability]bool, len(abilities))
	for _, a := range abilities {
		if seen[a] {
			return false
		}
		seen[a] = true
	}
	return true
}

// Validate checks caste, caste abilities, supernal and favored abilities.
func (s SolarTraits) Validate() error {
	allowed, ok := CasteAbilities[s.Caste]
	if !ok {
		return rejection.Newf(rejection.CodeSolarTraitsInvalid, "unknown caste %q", s.Caste)
	}
	if len(s.CasteAbilities) != CasteAbilityCount || !distinct(s.CasteAbilities) {
		return rejection.Newf(rejection.CodeSolarTraitsInvalid,
			"exactly %d distinct caste abilities are required", CasteAbilityCount)
	}
	for _, a := range s.CasteAbilities {
		if !slices.Contains(allowed, a) {
			return rejection.New(rejection.CodeCasteMismatch, "ability is not available to the caste").
				With("caste", string(s.Caste)).
				With("ability", string(a))
		}
	}
	if !s.IsCaste(s.Supernal) {
		return rejection.New(rejection.CodeCasteMismatch, "supernal ability must be a caste ability").
			With("supernal", string(s.Supernal))
	}
	if len(s.Favored) != FavoredAbilityCount || !distinct(s.Favored) {
		return rejection.Newf(rejection.CodeSolarTraitsInvalid,
			"exactly %d distinct favored abilities are required", FavoredAbilityCount)
	}
	for _, a := range s.Favored {
		if !a.solar() {
			return rejection.Newf(rejection.CodeSolarTraitsInvalid, "unknown favored ability %q", a)
		}
		if s.IsCaste(a) {
			return rejection.New(rejection.CodeSolarTraitsInvalid, "favored ability is already a caste ability").
				With("ability", string(a))
		}
	}
	return checkLimit(s.Limit.Track)
}

func checkLimit(track int) error {
	if track < 0 || track > MaxLimit {
		return rejection.Newf(rejection.CodeLimitOutOfRange, "limit must be between 0 and %d", MaxLimit).
			With("limit", fmt.Sprint(track))
	}
	return nil
}

// Exalt is everything a mortal lacks: a mote ledger, subtype traits and
// charms.
type Exalt struct {
	Type    ExaltType      `json:"type" yaml:"type"`
	Essence essence.Ledger `json:"essence" yaml:"essence"`
	Solar   *SolarTraits   `json:"solar,omitempty" yaml:"solar,omitempty"`
	Charms  charms.Set     `json:"charms" yaml:"charms"`
}

func (e *Exalt) clone() *Exalt {
	if e == nil {
		return nil
	}
	out := &Exalt{
		Type:    e.Type,
		Essence: e.Essence.Clone(),
		Charms:  e.Charms.Clone(),
	}
	if e.Solar != nil {
		s := e.Solar.clone()
		out.Solar = &s
	}
	return out
}

// Exaltation is the active exaltation. Exalt is set exactly when Kind is
// KindExalt.
type Exaltation struct {
	Kind  ExaltationKind `json:"kind" yaml:"kind"`
	Exalt *Exalt         `json:"exalt,omitempty" yaml:"exalt,omitempty"`
}

func (e Exaltation) clone() Exaltation {
	e.Exalt = e.Exalt.clone()
	return e
}

func (e *Exaltation) validate() error {
	switch e.Kind {
	case KindMortal:
		if e.Exalt != nil {
			return rejection.New(rejection.CodeMemoInvalid, "mortal carries exalt data")
		}
		return nil
	case KindExalt:
	default:
		return rejection.Newf(rejection.CodeMemoInvalid, "unknown exaltation kind %q", e.Kind)
	}
	ex := e.Exalt
	if ex == nil {
		return rejection.New(rejection.CodeMemoInvalid, "exalt data missing")
	}
	formula := poolFormula(ex.Type)
	if formula == nil {
		return rejection.Newf(rejection.CodeMemoInvalid, "unknown exalt type %q", ex.Type)
	}
	if ex.Type == ExaltSolar {
		if ex.Solar == nil {
			return rejection.New(rejection.CodeMemoInvalid, "solar traits missing")
		}
		if err := ex.Solar.Validate(); err != nil {
			return fmt.Errorf("solar traits: %w", err)
		}
	}
	ex.Charms.Ensure()
	if ex.Essence.Motes.Commitments == nil {
		ex.Essence.Motes.Commitments = map[string]essence.Commitment{}
	}
	return ex.Essence.Validate(formula)
}
