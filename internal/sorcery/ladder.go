// Package sorcery implements the sorcery circle ladder: Terrestrial, then
// Celestial, then Solar. Each circle is entered with an archetype, a
// shaping ritual and a control spell; higher circles extend lower ones.
package sorcery

import (
	"fmt"
	"slices"
	"sort"

	"github.com/roach88/charsheet/internal/rejection"
)

// Circle is a sorcery circle.
type Circle string

const (
	Terrestrial Circle = "terrestrial"
	Celestial   Circle = "celestial"
	SolarCircle Circle = "solar"
)

// Order lists the circles from lowest to highest.
var Order = []Circle{Terrestrial, Celestial, SolarCircle}

// Rank returns the circle's position in Order, or -1.
func (c Circle) Rank() int {
	return slices.Index(Order, c)
}

// Requirement is what a character needs to hold a circle.
type Requirement struct {
	Occult    int
	Essence   int
	SolarOnly bool
}

// Requirements gives the gate for each circle.
var Requirements = map[Circle]Requirement{
	Terrestrial: {Occult: 3, Essence: 1},
	Celestial:   {Occult: 4, Essence: 3, SolarOnly: true},
	SolarCircle: {Occult: 5, Essence: 5, SolarOnly: true},
}

// Sorcerer is the view of a character the gates are evaluated against.
type Sorcerer struct {
	Occult  int
	Essence int
	Solar   bool
}

// Meets reports whether s satisfies the circle's gate.
func (s Sorcerer) Meets(c Circle) bool {
	req, ok := Requirements[c]
	if !ok {
		return false
	}
	if req.SolarOnly && !s.Solar {
		return false
	}
	return s.Occult >= req.Occult && s.Essence >= req.Essence
}

// Allowed returns how many circles, from the bottom, s may hold.
func (s Sorcerer) Allowed() int {
	n := 0
	for _, c := range Order {
		if !s.Meets(c) {
			break
		}
		n++
	}
	return n
}

// Archetype is a sorcerous archetype, the theme a shaping ritual belongs to.
type Archetype struct {
	Name          string `json:"name" yaml:"name"`
	Description   string `json:"description,omitempty" yaml:"description,omitempty"`
	BookReference string `json:"book_reference,omitempty" yaml:"book_reference,omitempty"`
}

// ShapingRitual is a sorcerer's method of gathering sorcerous motes.
type ShapingRitual struct {
	Name          string `json:"name" yaml:"name"`
	Archetype     string `json:"archetype" yaml:"archetype"`
	Description   string `json:"description,omitempty" yaml:"description,omitempty"`
	BookReference string `json:"book_reference,omitempty" yaml:"book_reference,omitempty"`
}

// Spell is a known spell.
type Spell struct {
	Name          string   `json:"name" yaml:"name"`
	Circle        Circle   `json:"circle" yaml:"circle"`
	Cost          string   `json:"cost,omitempty" yaml:"cost,omitempty"`
	Duration      string   `json:"duration,omitempty" yaml:"duration,omitempty"`
	Keywords      []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Description   string   `json:"description,omitempty" yaml:"description,omitempty"`
	BookReference string   `json:"book_reference,omitempty" yaml:"book_reference,omitempty"`
}

func (s Spell) validate() error {
	if s.Name == "" {
		return rejection.New(rejection.CodeNameEmpty, "spell name is required")
	}
	if s.Circle.Rank() < 0 {
		return rejection.Newf(rejection.CodePayloadInvalid, "unknown sorcery circle %q", s.Circle).
			With("spell", s.Name)
	}
	return nil
}

// Level is one circle the character has been initiated into.
type Level struct {
	Circle     Circle                   `json:"circle" yaml:"circle"`
	Archetypes map[string]Archetype     `json:"archetypes" yaml:"archetypes"`
	Rituals    map[string]ShapingRitual `json:"shaping_rituals" yaml:"shaping_rituals"`
	Spells     map[string]Spell         `json:"spells" yaml:"spells"`
	// Initiation and Control name the ritual and spell the circle was
	// entered with. Neither can be removed while the circle stands.
	Initiation string `json:"initiation_ritual" yaml:"initiation_ritual"`
	Control    string `json:"control_spell" yaml:"control_spell"`
}

func (l Level) clone() Level {
	out := l
	out.Archetypes = make(map[string]Archetype, len(l.Archetypes))
	for k, v := range l.Archetypes {
		out.Archetypes[k] = v
	}
	out.Rituals = make(map[string]ShapingRitual, len(l.Rituals))
	for k, v := range l.Rituals {
		out.Rituals[k] = v
	}
	out.Spells = make(map[string]Spell, len(l.Spells))
	for k, v := range l.Spells {
		v.Keywords = slices.Clone(v.Keywords)
		out.Spells[k] = v
	}
	return out
}

// Ladder is the ordered list of circles held. Levels[i].Circle == Order[i].
type Ladder struct {
	Levels []Level `json:"circles" yaml:"circles"`
}

// Clone returns a deep copy.
func (l Ladder) Clone() Ladder {
	out := Ladder{Levels: make([]Level, len(l.Levels))}
	for i, lv := range l.Levels {
		out.Levels[i] = lv.clone()
	}
	return out
}

// Top returns the highest circle held, or "" when none.
func (l *Ladder) Top() Circle {
	if len(l.Levels) == 0 {
		return ""
	}
	return l.Levels[len(l.Levels)-1].Circle
}

// Empty reports whether no circle is held.
func (l *Ladder) Empty() bool {
	return len(l.Levels) == 0
}

func (l *Ladder) archetypeLevel(name string) int {
	for i, lv := range l.Levels {
		if _, ok := lv.Archetypes[name]; ok {
			return i
		}
	}
	return -1
}

func (l *Ladder) ritualLevel(name string) int {
	for i, lv := range l.Levels {
		if _, ok := lv.Rituals[name]; ok {
			return i
		}
	}
	return -1
}

func (l *Ladder) spellLevel(name string) int {
	for i, lv := range l.Levels {
		if _, ok := lv.Spells[name]; ok {
			return i
		}
	}
	return -1
}

// Spells returns every known spell in circle order, then by name.
func (l *Ladder) Spells() []Spell {
	var out []Spell
	for _, lv := range l.Levels {
		for _, name := range sortedKeys(lv.Spells) {
			out = append(out, lv.Spells[name])
		}
	}
	return out
}

// Rituals returns every known shaping ritual in circle order, then by name.
func (l *Ladder) Rituals() []ShapingRitual {
	var out []ShapingRitual
	for _, lv := range l.Levels {
		for _, name := range sortedKeys(lv.Rituals) {
			out = append(out, lv.Rituals[name])
		}
	}
	return out
}

// Initiation is the payload for entering a new circle.
type Initiation struct {
	Circle        Circle        `json:"circle" yaml:"circle"`
	Archetype     Archetype     `json:"archetype" yaml:"archetype"`
	ShapingRitual ShapingRitual `json:"shaping_ritual" yaml:"shaping_ritual"`
	ControlSpell  Spell         `json:"control_spell" yaml:"control_spell"`
}

// CheckAddCircle reports whether the ladder can take the next circle. The
// caller checks the sorcerer's gate.
func (l *Ladder) CheckAddCircle(in Initiation) error {
	next := len(l.Levels)
	if next >= len(Order) {
		return rejection.New(rejection.CodeSorceryCircleOrder, "every circle is already held")
	}
	if in.Circle != Order[next] {
		return rejection.Newf(rejection.CodeSorceryCircleOrder, "next circle must be %s", Order[next]).
			With("circle", string(in.Circle))
	}
	if in.Archetype.Name == "" {
		return rejection.New(rejection.CodeSorceryMissingArchetype, "an archetype is required").
			With("circle", string(in.Circle))
	}
	if in.ShapingRitual.Name == "" {
		return rejection.New(rejection.CodeNameEmpty, "shaping ritual name is required")
	}
	if in.ShapingRitual.Archetype != in.Archetype.Name && l.archetypeLevel(in.ShapingRitual.Archetype) < 0 {
		return rejection.New(rejection.CodeSorceryMissingArchetype, "shaping ritual belongs to an unknown archetype").
			With("ritual", in.ShapingRitual.Name).
			With("archetype", in.ShapingRitual.Archetype)
	}
	if l.ritualLevel(in.ShapingRitual.Name) >= 0 {
		return rejection.New(rejection.CodeSorceryDuplicateShapingRitual, "shaping ritual already known").
			With("ritual", in.ShapingRitual.Name)
	}
	if err := in.ControlSpell.validate(); err != nil {
		return err
	}
	if in.ControlSpell.Circle != in.Circle {
		return rejection.New(rejection.CodePayloadInvalid, "control spell must belong to the circle it opens").
			With("spell", in.ControlSpell.Name).
			With("circle", string(in.Circle))
	}
	if l.spellLevel(in.ControlSpell.Name) >= 0 {
		return rejection.New(rejection.CodeSpellDuplicate, "spell already known").
			With("spell", in.ControlSpell.Name)
	}
	return nil
}

// AddCircle enters the next circle.
func (l *Ladder) AddCircle(in Initiation) error {
	if err := l.CheckAddCircle(in); err != nil {
		return err
	}
	lv := Level{
		Circle:     in.Circle,
		Archetypes: map[string]Archetype{},
		Rituals:    map[string]ShapingRitual{in.ShapingRitual.Name: in.ShapingRitual},
		Spells:     map[string]Spell{},
		Initiation: in.ShapingRitual.Name,
		Control:    in.ControlSpell.Name,
	}
	if l.archetypeLevel(in.Archetype.Name) < 0 {
		lv.Archetypes[in.Archetype.Name] = in.Archetype
	}
	spell := in.ControlSpell
	spell.Keywords = slices.Clone(spell.Keywords)
	lv.Spells[spell.Name] = spell
	l.Levels = append(l.Levels, lv)
	return nil
}

// CheckRemoveCircle reports whether a circle is held.
func (l *Ladder) CheckRemoveCircle() error {
	if l.Empty() {
		return rejection.New(rejection.CodeSorceryNotFound, "no sorcery circle is held")
	}
	return nil
}

// RemoveCircle drops the top circle with its own archetypes, rituals and
// spells. Lower circles are untouched.
func (l *Ladder) RemoveCircle() (Circle, error) {
	if err := l.CheckRemoveCircle(); err != nil {
		return "", err
	}
	top := l.Top()
	l.Levels = l.Levels[:len(l.Levels)-1]
	return top, nil
}

// TrimTo drops circles above n and returns the dropped circles, top first.
func (l *Ladder) TrimTo(n int) []Circle {
	var dropped []Circle
	for len(l.Levels) > n {
		c, _ := l.RemoveCircle()
		dropped = append(dropped, c)
	}
	return dropped
}

// CheckAddShapingRitual reports whether r can be learned.
func (l *Ladder) CheckAddShapingRitual(r ShapingRitual) error {
	if l.Empty() {
		return rejection.New(rejection.CodeSorceryNotFound, "no sorcery circle is held")
	}
	if r.Name == "" {
		return rejection.New(rejection.CodeNameEmpty, "shaping ritual name is required")
	}
	if l.archetypeLevel(r.Archetype) < 0 {
		return rejection.New(rejection.CodeSorceryMissingArchetype, "shaping ritual belongs to an unknown archetype").
			With("ritual", r.Name).
			With("archetype", r.Archetype)
	}
	if l.ritualLevel(r.Name) >= 0 {
		return rejection.New(rejection.CodeSorceryDuplicateShapingRitual, "shaping ritual already known").
			With("ritual", r.Name)
	}
	return nil
}

// AddShapingRitual learns r under the circle that introduced its archetype.
func (l *Ladder) AddShapingRitual(r ShapingRitual) error {
	if err := l.CheckAddShapingRitual(r); err != nil {
		return err
	}
	l.Levels[l.archetypeLevel(r.Archetype)].Rituals[r.Name] = r
	return nil
}

// CheckRemoveShapingRitual reports whether the ritual can be forgotten.
func (l *Ladder) CheckRemoveShapingRitual(name string) error {
	i := l.ritualLevel(name)
	if i < 0 {
		return rejection.New(rejection.CodeSorceryShapingRitualNotFound, "shaping ritual not found").
			With("ritual", name)
	}
	if l.Levels[i].Initiation == name {
		return rejection.New(rejection.CodeSorceryRemoveRequiredRitual, "the initiation ritual of a circle cannot be removed").
			With("ritual", name).
			With("circle", string(l.Levels[i].Circle))
	}
	return nil
}

// RemoveShapingRitual forgets a shaping ritual.
func (l *Ladder) RemoveShapingRitual(name string) error {
	if err := l.CheckRemoveShapingRitual(name); err != nil {
		return err
	}
	delete(l.Levels[l.ritualLevel(name)].Rituals, name)
	return nil
}

// CheckAddSpell reports whether s can be learned.
func (l *Ladder) CheckAddSpell(s Spell) error {
	if err := s.validate(); err != nil {
		return err
	}
	if l.Empty() || s.Circle.Rank() >= len(l.Levels) {
		return rejection.New(rejection.CodeSorceryPrerequisitesUnmet, "spell circle is not held").
			With("spell", s.Name).
			With("circle", string(s.Circle))
	}
	if l.spellLevel(s.Name) >= 0 {
		return rejection.New(rejection.CodeSpellDuplicate, "spell already known").
			With("spell", s.Name)
	}
	return nil
}

// AddSpell learns s in its own circle.
func (l *Ladder) AddSpell(s Spell) error {
	if err := l.CheckAddSpell(s); err != nil {
		return err
	}
	s.Keywords = slices.Clone(s.Keywords)
	l.Levels[s.Circle.Rank()].Spells[s.Name] = s
	return nil
}

// CheckRemoveSpell reports whether the spell can be forgotten.
func (l *Ladder) CheckRemoveSpell(name string) error {
	i := l.spellLevel(name)
	if i < 0 {
		return rejection.New(rejection.CodeSpellNotFound, "spell not found").
			With("spell", name)
	}
	if l.Levels[i].Control == name {
		return rejection.New(rejection.CodeSorceryRemoveControlSpell, "control spells cannot be removed").
			With("spell", name)
	}
	return nil
}

// RemoveSpell forgets a spell.
func (l *Ladder) RemoveSpell(name string) error {
	if err := l.CheckRemoveSpell(name); err != nil {
		return err
	}
	delete(l.Levels[l.spellLevel(name)].Spells, name)
	return nil
}

// Validate checks a decoded ladder.
func (l *Ladder) Validate() error {
	if len(l.Levels) > len(Order) {
		return rejection.New(rejection.CodeMemoInvalid, "too many sorcery circles")
	}
	seenSpell := map[string]bool{}
	seenRitual := map[string]bool{}
	for i := range l.Levels {
		lv := &l.Levels[i]
		if lv.Circle != Order[i] {
			return rejection.Newf(rejection.CodeMemoInvalid, "circle %d is %q, expected %q", i, lv.Circle, Order[i])
		}
		if lv.Archetypes == nil {
			lv.Archetypes = map[string]Archetype{}
		}
		if lv.Rituals == nil {
			lv.Rituals = map[string]ShapingRitual{}
		}
		if lv.Spells == nil {
			lv.Spells = map[string]Spell{}
		}
		if _, ok := lv.Rituals[lv.Initiation]; !ok {
			return rejection.New(rejection.CodeMemoInvalid, "initiation ritual missing").
				With("circle", string(lv.Circle))
		}
		if _, ok := lv.Spells[lv.Control]; !ok {
			return rejection.New(rejection.CodeMemoInvalid, "control spell missing").
				With("circle", string(lv.Circle))
		}
		for name, s := range lv.Spells {
			if name != s.Name || s.Circle != lv.Circle || seenSpell[name] {
				return rejection.New(rejection.CodeMemoInvalid, "spell is misplaced or duplicated").
					With("spell", name)
			}
			seenSpell[name] = true
		}
		for name, r := range lv.Rituals {
			if name != r.Name || seenRitual[name] {
				return rejection.New(rejection.CodeMemoInvalid, "shaping ritual is misplaced or duplicated").
					With("ritual", name)
			}
			if l.archetypeLevel(r.Archetype) < 0 || l.archetypeLevel(r.Archetype) > i {
				return rejection.New(rejection.CodeMemoInvalid, "shaping ritual archetype unknown at its circle").
					With("ritual", name)
			}
			seenRitual[name] = true
		}
	}
	return nil
}

// String summarizes the ladder, e.g. "celestial (2 circles, 5 spells)".
func (l *Ladder) String() string {
	if l.Empty() {
		return "none"
	}
	return fmt.Sprintf("%s (%d circles, %d spells)", l.Top(), len(l.Levels), len(l.Spells()))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
