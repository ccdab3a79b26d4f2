package character

import (
	"fmt"
	"slices"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/charsheet/internal/gear"
	"github.com/roach88/charsheet/internal/rejection"
)

// Attribute is one of the nine fixed attributes.
type Attribute string

const (
	Strength     Attribute = "strength"
	Dexterity    Attribute = "dexterity"
	Stamina      Attribute = "stamina"
	Charisma     Attribute = "charisma"
	Manipulation Attribute = "manipulation"
	Appearance   Attribute = "appearance"
	Perception   Attribute = "perception"
	Intelligence Attribute = "intelligence"
	Wits         Attribute = "wits"
)

// Attributes lists every attribute in sheet order.
var Attributes = []Attribute{
	Strength, Dexterity, Stamina,
	Charisma, Manipulation, Appearance,
	Perception, Intelligence, Wits,
}

// Valid reports whether a is a known attribute.
func (a Attribute) Valid() bool {
	return slices.Contains(Attributes, a)
}

// Ability is one of the 24 fixed abilities. Craft and MartialArts name the
// two open-ended ability families and are used only where a Solar ability is
// expected.
type Ability string

const (
	Archery       Ability = "archery"
	Athletics     Ability = "athletics"
	Awareness     Ability = "awareness"
	Brawl         Ability = "brawl"
	Bureaucracy   Ability = "bureaucracy"
	Dodge         Ability = "dodge"
	Integrity     Ability = "integrity"
	Investigation Ability = "investigation"
	Larceny       Ability = "larceny"
	Linguistics   Ability = "linguistics"
	Lore          Ability = "lore"
	Medicine      Ability = "medicine"
	Melee         Ability = "melee"
	Occult        Ability = "occult"
	Performance   Ability = "performance"
	Presence      Ability = "presence"
	Resistance    Ability = "resistance"
	Ride          Ability = "ride"
	Sail          Ability = "sail"
	Socialize     Ability = "socialize"
	Stealth       Ability = "stealth"
	Survival      Ability = "survival"
	Thrown        Ability = "thrown"
	War           Ability = "war"

	Craft       Ability = "craft"
	MartialArts Ability = "martial_arts"
)

// Abilities lists the fixed abilities alphabetically.
var Abilities = []Ability{
	Archery, Athletics, Awareness, Brawl, Bureaucracy, Dodge,
	Integrity, Investigation, Larceny, Linguistics, Lore, Medicine,
	Melee, Occult, Performance, Presence, Resistance, Ride,
	Sail, Socialize, Stealth, Survival, Thrown, War,
}

// Valid reports whether a is one of the fixed abilities.
func (a Ability) Valid() bool {
	return slices.Contains(Abilities, a)
}

// solar reports whether a can be a Solar caste, favored or charm ability.
// Brawl covers martial arts.
func (a Ability) solar() bool {
	return a == Craft || a.Valid()
}

// Bounds for dot ratings.
const (
	MinAttributeDots = 1
	MaxDots          = 5
)

// Rating is a dot rating with optional specialties. Specialties are kept
// sorted and are always empty at zero dots.
type Rating struct {
	Dots        int      `json:"dots" yaml:"dots"`
	Specialties []string `json:"specialties,omitempty" yaml:"specialties,omitempty"`
}

func (r Rating) clone() Rating {
	r.Specialties = slices.Clone(r.Specialties)
	return r
}

// setDots changes the rating and erases specialties at zero.
func (r *Rating) setDots(dots int) {
	r.Dots = dots
	if dots == 0 {
		r.Specialties = nil
	}
}

func (r Rating) validate(subject string) error {
	if r.Dots < 0 || r.Dots > MaxDots {
		return rejection.New(rejection.CodeMemoInvalid, "rating out of range").
			With("trait", subject).
			With("dots", fmt.Sprint(r.Dots))
	}
	if r.Dots == 0 && len(r.Specialties) > 0 {
		return rejection.New(rejection.CodeMemoInvalid, "zero-rated trait carries specialties").
			With("trait", subject)
	}
	for i, s := range r.Specialties {
		if s == "" {
			return rejection.New(rejection.CodeMemoInvalid, "empty specialty").With("trait", subject)
		}
		if i > 0 && r.Specialties[i-1] >= s {
			return rejection.New(rejection.CodeMemoInvalid, "specialties must be sorted and unique").
				With("trait", subject)
		}
	}
	return nil
}

func checkDots(code rejection.Code, subject string, dots, lo int) error {
	if dots < lo || dots > MaxDots {
		return rejection.Newf(code, "dots must be between %d and %d", lo, MaxDots).
			With("trait", subject).
			With("dots", fmt.Sprint(dots))
	}
	return nil
}

// checkAddSpecialty rejects empty, zero-rated and duplicate specialties.
// Specialties are compared and stored in NFC form.
func (r Rating) checkAddSpecialty(subject, specialty string) error {
	specialty = norm.NFC.String(specialty)
	if specialty == "" {
		return rejection.New(rejection.CodeNameEmpty, "specialty is required").With("trait", subject)
	}
	if r.Dots == 0 {
		return rejection.New(rejection.CodeSpecialtyZeroAbility, "cannot add a specialty to a zero-rated trait").
			With("trait", subject)
	}
	if _, found := slices.BinarySearch(r.Specialties, specialty); found {
		return rejection.New(rejection.CodeSpecialtyDuplicate, "specialty already present").
			With("trait", subject).
			With("specialty", specialty)
	}
	return nil
}

func (r *Rating) addSpecialty(specialty string) {
	specialty = norm.NFC.String(specialty)
	i, _ := slices.BinarySearch(r.Specialties, specialty)
	r.Specialties = slices.Insert(r.Specialties, i, specialty)
}

func (r Rating) checkRemoveSpecialty(subject, specialty string) error {
	specialty = norm.NFC.String(specialty)
	if _, found := slices.BinarySearch(r.Specialties, specialty); !found {
		return rejection.New(rejection.CodeSpecialtyNotFound, "specialty not found").
			With("trait", subject).
			With("specialty", specialty)
	}
	return nil
}

func (r *Rating) removeSpecialty(specialty string) {
	specialty = norm.NFC.String(specialty)
	if i, found := slices.BinarySearch(r.Specialties, specialty); found {
		r.Specialties = slices.Delete(r.Specialties, i, i+1)
	}
	if len(r.Specialties) == 0 {
		r.Specialties = nil
	}
}

// MartialArtsStyle describes a martial arts school.
type MartialArtsStyle struct {
	Name          string           `json:"name" yaml:"name"`
	Description   string           `json:"description,omitempty" yaml:"description,omitempty"`
	Weapons       []string         `json:"weapons,omitempty" yaml:"weapons,omitempty"`
	MaxArmor      gear.WeightClass `json:"max_armor,omitempty" yaml:"max_armor,omitempty"`
	BookReference string           `json:"book_reference,omitempty" yaml:"book_reference,omitempty"`
}

// MartialArtsRating is a known style and the character's rating in it.
type MartialArtsRating struct {
	Style  MartialArtsStyle `json:"style" yaml:"style"`
	Rating Rating           `json:"rating" yaml:"rating"`
}

func (m MartialArtsRating) clone() MartialArtsRating {
	m.Style.Weapons = slices.Clone(m.Style.Weapons)
	m.Rating = m.Rating.clone()
	return m
}

// Willpower bounds.
const (
	MinWillpower        = 1
	MaxWillpower        = 5
	MaxCurrentWillpower = 10
)

// Willpower is the permanent rating and the current, spendable points.
// Current may exceed the rating.
type Willpower struct {
	Current int `json:"current" yaml:"current"`
	Rating  int `json:"rating" yaml:"rating"`
}

func (w Willpower) validate() error {
	if w.Rating < MinWillpower || w.Rating > MaxWillpower {
		return rejection.New(rejection.CodeMemoInvalid, "willpower rating out of range").
			With("rating", fmt.Sprint(w.Rating))
	}
	if w.Current < 0 || w.Current > MaxCurrentWillpower {
		return rejection.New(rejection.CodeMemoInvalid, "current willpower out of range").
			With("current", fmt.Sprint(w.Current))
	}
	return nil
}

// ExperiencePool is an unspent balance and the lifetime total.
type ExperiencePool struct {
	Current int `json:"current" yaml:"current"`
	Total   int `json:"total" yaml:"total"`
}

func (p *ExperiencePool) gain(amount int) {
	p.Current += amount
	p.Total += amount
}

func (p ExperiencePool) checkSpend(kind string, amount int) error {
	if amount > p.Current {
		return rejection.New(rejection.CodeExperienceInsufficient, "not enough experience").
			With("kind", kind).
			With("requested", fmt.Sprint(amount)).
			With("current", fmt.Sprint(p.Current))
	}
	return nil
}

// Experience holds standard experience and Solar (exalt) experience.
type Experience struct {
	Standard ExperiencePool `json:"standard" yaml:"standard"`
	Exalt    ExperiencePool `json:"exalt" yaml:"exalt"`
}

func (e Experience) validate() error {
	for _, p := range []ExperiencePool{e.Standard, e.Exalt} {
		if p.Current < 0 || p.Current > p.Total {
			return rejection.New(rejection.CodeMemoInvalid, "experience balance out of range")
		}
	}
	return nil
}

// Languages is the native language plus any others spoken.
type Languages struct {
	Native string   `json:"native" yaml:"native"`
	Other  []string `json:"other,omitempty" yaml:"other,omitempty"`
}

func (l Languages) clone() Languages {
	l.Other = slices.Clone(l.Other)
	return l
}

// Speaks reports whether the character speaks language.
func (l Languages) Speaks(language string) bool {
	if l.Native == language {
		return true
	}
	_, found := slices.BinarySearch(l.Other, language)
	return found
}

func (l Languages) validate() error {
	if l.Native == "" {
		return rejection.New(rejection.CodeMemoInvalid, "native language is required")
	}
	for i, o := range l.Other {
		if o == "" || o == l.Native || (i > 0 && l.Other[i-1] >= o) {
			return rejection.New(rejection.CodeMemoInvalid, "languages must be unique, sorted and non-empty")
		}
	}
	return nil
}

// MeritKind is how a merit was acquired.
type MeritKind string

const (
	MeritInnate    MeritKind = "innate"
	MeritPurchased MeritKind = "purchased"
	MeritStory     MeritKind = "story"
)

// Merit is an owned merit. Merits are keyed by an identifier so the same
// merit can be taken more than once.
type Merit struct {
	Name          string    `json:"name" yaml:"name"`
	Dots          int       `json:"dots" yaml:"dots"`
	Kind          MeritKind `json:"kind,omitempty" yaml:"kind,omitempty"`
	Description   string    `json:"description,omitempty" yaml:"description,omitempty"`
	BookReference string    `json:"book_reference,omitempty" yaml:"book_reference,omitempty"`
}

func (m Merit) validate() error {
	if m.Name == "" {
		return rejection.New(rejection.CodeNameEmpty, "merit name is required")
	}
	if m.Dots < 0 || m.Dots > MaxDots {
		return rejection.New(rejection.CodeMeritDotsInvalid, "merit dots must be between 0 and 5").
			With("merit", m.Name).
			With("dots", fmt.Sprint(m.Dots))
	}
	switch m.Kind {
	case "", MeritInnate, MeritPurchased, MeritStory:
		return nil
	}
	return rejection.Newf(rejection.CodePayloadInvalid, "unknown merit kind %q", m.Kind).With("merit", m.Name)
}

// Flaw is an owned flaw, keyed by name.
type Flaw struct {
	Name          string `json:"name" yaml:"name"`
	Description   string `json:"description,omitempty" yaml:"description,omitempty"`
	BookReference string `json:"book_reference,omitempty" yaml:"book_reference,omitempty"`
}
