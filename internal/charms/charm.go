// Package charms defines the charm kinds a character can learn and the
// dependency pruning that keeps a charm set consistent.
package charms

import (
	"fmt"
	"slices"
	"sort"

	"github.com/roach88/charsheet/internal/gear"
	"github.com/roach88/charsheet/internal/rejection"
)

// Kind is a charm namespace. Names are unique within a kind.
type Kind string

const (
	KindSolar       Kind = "solar"
	KindMartialArts Kind = "martial_arts"
	KindEvocation   Kind = "evocation"
	KindEclipse     Kind = "eclipse"
	KindSpell       Kind = "spell"
)

// ID identifies a charm.
type ID struct {
	Kind Kind   `json:"kind" yaml:"kind"`
	Name string `json:"name" yaml:"name"`
}

func (id ID) String() string {
	return string(id.Kind) + ":" + id.Name
}

// Info is the descriptive text shared by every charm kind.
type Info struct {
	Summary       string   `json:"summary,omitempty" yaml:"summary,omitempty"`
	Description   string   `json:"description,omitempty" yaml:"description,omitempty"`
	Cost          string   `json:"cost,omitempty" yaml:"cost,omitempty"`
	ActionType    string   `json:"action_type,omitempty" yaml:"action_type,omitempty"`
	Duration      string   `json:"duration,omitempty" yaml:"duration,omitempty"`
	Keywords      []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	BookReference string   `json:"book_reference,omitempty" yaml:"book_reference,omitempty"`
}

// SolarCharm is governed by one of the Solar abilities (or Craft).
type SolarCharm struct {
	Name          string   `json:"name" yaml:"name"`
	Ability       string   `json:"ability" yaml:"ability"`
	AbilityDots   int      `json:"ability_dots" yaml:"ability_dots"`
	Essence       int      `json:"essence" yaml:"essence"`
	Prerequisites []string `json:"prerequisites,omitempty" yaml:"prerequisites,omitempty"`
	Info          Info     `json:"info" yaml:"info"`
}

// MartialArtsCharm belongs to a martial arts style.
type MartialArtsCharm struct {
	Name          string   `json:"name" yaml:"name"`
	Style         string   `json:"style" yaml:"style"`
	AbilityDots   int      `json:"ability_dots" yaml:"ability_dots"`
	Essence       int      `json:"essence" yaml:"essence"`
	Prerequisites []string `json:"prerequisites,omitempty" yaml:"prerequisites,omitempty"`
	Info          Info     `json:"info" yaml:"info"`
}

// SourceKind is what an evocation is drawn from.
type SourceKind string

const (
	FromArtifact    SourceKind = "artifact"
	FromHearthstone SourceKind = "hearthstone"
)

// Source names the artifact or hearthstone an evocation is bound to.
type Source struct {
	Kind        SourceKind       `json:"kind" yaml:"kind"`
	Artifact    *gear.ArtifactID `json:"artifact,omitempty" yaml:"artifact,omitempty"`
	Hearthstone string           `json:"hearthstone,omitempty" yaml:"hearthstone,omitempty"`
}

func (s Source) String() string {
	if s.Kind == FromHearthstone {
		return "hearthstone:" + s.Hearthstone
	}
	if s.Artifact == nil {
		return "artifact:?"
	}
	return "artifact:" + s.Artifact.String()
}

// Evocation is a charm bound to a specific artifact or hearthstone.
// Prerequisites may name other evocations or Solar charms.
type Evocation struct {
	Name          string `json:"name" yaml:"name"`
	Source        Source `json:"source" yaml:"source"`
	Essence       int    `json:"essence" yaml:"essence"`
	Prerequisites []ID   `json:"prerequisites,omitempty" yaml:"prerequisites,omitempty"`
	Info          Info   `json:"info" yaml:"info"`
}

// EclipseCharm is a spirit charm learned through the Eclipse anima.
type EclipseCharm struct {
	Name    string `json:"name" yaml:"name"`
	Essence int    `json:"essence" yaml:"essence"`
	Info    Info   `json:"info" yaml:"info"`
}

func checkName(kind Kind, name string) error {
	if name == "" {
		return rejection.Newf(rejection.CodeNameEmpty, "%s charm name is required", kind)
	}
	return nil
}

func checkEssence(id ID, essence int) error {
	if essence < 1 || essence > 5 {
		return rejection.New(rejection.CodePayloadInvalid, "charm essence requirement must be between 1 and 5").
			With("charm", id.String()).
			With("essence", fmt.Sprint(essence))
	}
	return nil
}

func checkDots(id ID, dots int) error {
	if dots < 1 || dots > 5 {
		return rejection.New(rejection.CodePayloadInvalid, "charm ability requirement must be between 1 and 5").
			With("charm", id.String()).
			With("dots", fmt.Sprint(dots))
	}
	return nil
}

func checkSelfReference(id ID, prereqs []ID) error {
	if slices.Contains(prereqs, id) {
		return rejection.New(rejection.CodePayloadInvalid, "charm cannot require itself").
			With("charm", id.String())
	}
	return nil
}

// ID returns the charm identifier.
func (c SolarCharm) ID() ID { return ID{Kind: KindSolar, Name: c.Name} }

// Validate checks the charm's structural fields.
func (c SolarCharm) Validate() error {
	if err := checkName(KindSolar, c.Name); err != nil {
		return err
	}
	if c.Ability == "" {
		return rejection.New(rejection.CodePayloadInvalid, "solar charm needs a governing ability").
			With("charm", c.Name)
	}
	if err := checkDots(c.ID(), c.AbilityDots); err != nil {
		return err
	}
	if err := checkEssence(c.ID(), c.Essence); err != nil {
		return err
	}
	return checkSelfReference(c.ID(), c.PrerequisiteIDs())
}

// PrerequisiteIDs returns the prerequisites as identifiers.
func (c SolarCharm) PrerequisiteIDs() []ID { return namesToIDs(KindSolar, c.Prerequisites) }

// ID returns the charm identifier.
func (c MartialArtsCharm) ID() ID { return ID{Kind: KindMartialArts, Name: c.Name} }

// Validate checks the charm's structural fields.
func (c MartialArtsCharm) Validate() error {
	if err := checkName(KindMartialArts, c.Name); err != nil {
		return err
	}
	if c.Style == "" {
		return rejection.New(rejection.CodePayloadInvalid, "martial arts charm needs a style").
			With("charm", c.Name)
	}
	if err := checkDots(c.ID(), c.AbilityDots); err != nil {
		return err
	}
	if err := checkEssence(c.ID(), c.Essence); err != nil {
		return err
	}
	return checkSelfReference(c.ID(), c.PrerequisiteIDs())
}

// PrerequisiteIDs returns the prerequisites as identifiers.
func (c MartialArtsCharm) PrerequisiteIDs() []ID { return namesToIDs(KindMartialArts, c.Prerequisites) }

// ID returns the charm identifier.
func (e Evocation) ID() ID { return ID{Kind: KindEvocation, Name: e.Name} }

// Validate checks the evocation's structural fields.
func (e Evocation) Validate() error {
	if err := checkName(KindEvocation, e.Name); err != nil {
		return err
	}
	switch e.Source.Kind {
	case FromArtifact:
		if e.Source.Artifact == nil || e.Source.Artifact.Name == "" {
			return rejection.New(rejection.CodePayloadInvalid, "evocation source artifact is required").
				With("charm", e.Name)
		}
	case FromHearthstone:
		if e.Source.Hearthstone == "" {
			return rejection.New(rejection.CodePayloadInvalid, "evocation source hearthstone is required").
				With("charm", e.Name)
		}
	default:
		return rejection.Newf(rejection.CodePayloadInvalid, "unknown evocation source %q", e.Source.Kind).
			With("charm", e.Name)
	}
	for _, p := range e.Prerequisites {
		if p.Kind != KindEvocation && p.Kind != KindSolar {
			return rejection.Newf(rejection.CodePayloadInvalid, "evocations cannot require %s charms", p.Kind).
				With("charm", e.Name)
		}
	}
	if err := checkEssence(e.ID(), e.Essence); err != nil {
		return err
	}
	return checkSelfReference(e.ID(), e.Prerequisites)
}

// ID returns the charm identifier.
func (c EclipseCharm) ID() ID { return ID{Kind: KindEclipse, Name: c.Name} }

// Validate checks the charm's structural fields.
func (c EclipseCharm) Validate() error {
	if err := checkName(KindEclipse, c.Name); err != nil {
		return err
	}
	return checkEssence(c.ID(), c.Essence)
}

func namesToIDs(kind Kind, names []string) []ID {
	ids := make([]ID, len(names))
	for i, n := range names {
		ids[i] = ID{Kind: kind, Name: n}
	}
	return ids
}

// Set is every charm a character knows, keyed by name within each kind.
type Set struct {
	Solar       map[string]SolarCharm       `json:"solar" yaml:"solar"`
	MartialArts map[string]MartialArtsCharm `json:"martial_arts" yaml:"martial_arts"`
	Evocations  map[string]Evocation        `json:"evocations" yaml:"evocations"`
	Eclipse     map[string]EclipseCharm     `json:"eclipse" yaml:"eclipse"`
}

// NewSet returns an empty set.
func NewSet() Set {
	return Set{
		Solar:       map[string]SolarCharm{},
		MartialArts: map[string]MartialArtsCharm{},
		Evocations:  map[string]Evocation{},
		Eclipse:     map[string]EclipseCharm{},
	}
}

// Ensure replaces nil maps left by decoding.
func (s *Set) Ensure() {
	if s.Solar == nil {
		s.Solar = map[string]SolarCharm{}
	}
	if s.MartialArts == nil {
		s.MartialArts = map[string]MartialArtsCharm{}
	}
	if s.Evocations == nil {
		s.Evocations = map[string]Evocation{}
	}
	if s.Eclipse == nil {
		s.Eclipse = map[string]EclipseCharm{}
	}
}

// Clone returns a deep copy.
func (s Set) Clone() Set {
	out := NewSet()
	for _, c := range s.Solar {
		out.AddSolar(c)
	}
	for _, c := range s.MartialArts {
		out.AddMartialArts(c)
	}
	for _, e := range s.Evocations {
		out.AddEvocation(e)
	}
	for _, c := range s.Eclipse {
		out.AddEclipse(c)
	}
	return out
}

func (i Info) clone() Info {
	i.Keywords = slices.Clone(i.Keywords)
	return i
}

// AddSolar stores a copy of c. Legality is the caller's concern.
func (s *Set) AddSolar(c SolarCharm) {
	s.Ensure()
	c.Prerequisites = slices.Clone(c.Prerequisites)
	c.Info = c.Info.clone()
	s.Solar[c.Name] = c
}

// AddMartialArts stores a copy of c.
func (s *Set) AddMartialArts(c MartialArtsCharm) {
	s.Ensure()
	c.Prerequisites = slices.Clone(c.Prerequisites)
	c.Info = c.Info.clone()
	s.MartialArts[c.Name] = c
}

// AddEvocation stores a copy of e.
func (s *Set) AddEvocation(e Evocation) {
	s.Ensure()
	e.Prerequisites = slices.Clone(e.Prerequisites)
	e.Info = e.Info.clone()
	if e.Source.Artifact != nil {
		a := *e.Source.Artifact
		e.Source.Artifact = &a
	}
	s.Evocations[e.Name] = e
}

// AddEclipse stores a copy of c.
func (s *Set) AddEclipse(c EclipseCharm) {
	s.Ensure()
	c.Info = c.Info.clone()
	s.Eclipse[c.Name] = c
}

// Len returns the number of known charms.
func (s *Set) Len() int {
	return len(s.Solar) + len(s.MartialArts) + len(s.Evocations) + len(s.Eclipse)
}

// Has reports whether id is known.
func (s *Set) Has(id ID) bool {
	var ok bool
	switch id.Kind {
	case KindSolar:
		_, ok = s.Solar[id.Name]
	case KindMartialArts:
		_, ok = s.MartialArts[id.Name]
	case KindEvocation:
		_, ok = s.Evocations[id.Name]
	case KindEclipse:
		_, ok = s.Eclipse[id.Name]
	}
	return ok
}

// Prerequisites returns the direct prerequisites of id.
func (s *Set) Prerequisites(id ID) []ID {
	switch id.Kind {
	case KindSolar:
		return s.Solar[id.Name].PrerequisiteIDs()
	case KindMartialArts:
		return s.MartialArts[id.Name].PrerequisiteIDs()
	case KindEvocation:
		return s.Evocations[id.Name].Prerequisites
	}
	return nil
}

// IDs returns every known charm, sorted by kind then name.
func (s *Set) IDs() []ID {
	ids := make([]ID, 0, s.Len())
	for n := range s.Solar {
		ids = append(ids, ID{Kind: KindSolar, Name: n})
	}
	for n := range s.MartialArts {
		ids = append(ids, ID{Kind: KindMartialArts, Name: n})
	}
	for n := range s.Evocations {
		ids = append(ids, ID{Kind: KindEvocation, Name: n})
	}
	for n := range s.Eclipse {
		ids = append(ids, ID{Kind: KindEclipse, Name: n})
	}
	sort.Slice(ids, func(i, j int) bool {
		if ids[i].Kind != ids[j].Kind {
			return ids[i].Kind < ids[j].Kind
		}
		return ids[i].Name < ids[j].Name
	})
	return ids
}

// CheckAdd reports whether a charm with the given prerequisites can join the
// set. Legality against the character is the caller's concern.
func (s *Set) CheckAdd(id ID, prerequisites []ID) error {
	if s.Has(id) {
		return rejection.New(rejection.CodeCharmDuplicate, "charm already known").
			With("charm", id.String())
	}
	var missing []string
	for _, p := range prerequisites {
		if !s.Has(p) {
			missing = append(missing, p.String())
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return rejection.New(rejection.CodeCharmPrerequisitesUnmet, "charm prerequisites not known").
			With("charm", id.String()).
			With("missing", fmt.Sprint(missing))
	}
	return nil
}

// Remove deletes id. It does not cascade; use Prune for that.
func (s *Set) Remove(id ID) {
	switch id.Kind {
	case KindSolar:
		delete(s.Solar, id.Name)
	case KindMartialArts:
		delete(s.MartialArts, id.Name)
	case KindEvocation:
		delete(s.Evocations, id.Name)
	case KindEclipse:
		delete(s.Eclipse, id.Name)
	}
}

// Nodes builds the dependency graph of the set. legal reports whether a
// charm's own requirements still hold.
func (s *Set) Nodes(legal func(ID) bool) []Node {
	ids := s.IDs()
	nodes := make([]Node, len(ids))
	for i, id := range ids {
		nodes[i] = Node{ID: id, Prerequisites: s.Prerequisites(id), Legal: legal(id)}
	}
	return nodes
}

// Repair removes forced charms, charms whose requirements fail and,
// transitively, everything depending on them. It returns the removed charms
// in ID order; an empty result means nothing changed. Repair is idempotent.
func (s *Set) Repair(forced []ID, legal func(ID) bool) []ID {
	remove := Prune(s.Nodes(legal), forced)
	removed := make([]ID, 0, len(remove))
	for _, id := range s.IDs() {
		if remove[id] {
			s.Remove(id)
			removed = append(removed, id)
		}
	}
	return removed
}
