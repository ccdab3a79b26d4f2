package gear

import (
	"fmt"

	"github.com/roach88/charsheet/internal/rejection"
)

// HearthstoneCategory is the elemental or celestial aspect of a hearthstone.
type HearthstoneCategory string

const (
	Air      HearthstoneCategory = "air"
	Earth    HearthstoneCategory = "earth"
	Fire     HearthstoneCategory = "fire"
	Water    HearthstoneCategory = "water"
	Wood     HearthstoneCategory = "wood"
	Solar    HearthstoneCategory = "solar"
	Sidereal HearthstoneCategory = "sidereal"
	Lunar    HearthstoneCategory = "lunar"
	Abyssal  HearthstoneCategory = "abyssal"
	Infernal HearthstoneCategory = "infernal"
)

func (c HearthstoneCategory) valid() bool {
	switch c {
	case Air, Earth, Fire, Water, Wood, Solar, Sidereal, Lunar, Abyssal, Infernal:
		return true
	}
	return false
}

// GeomancyLevel distinguishes standard and greater hearthstones.
type GeomancyLevel string

const (
	Standard GeomancyLevel = "standard"
	Greater  GeomancyLevel = "greater"
)

// Hearthstone is a gem grown in a manse.
type Hearthstone struct {
	Name          string              `json:"name" yaml:"name"`
	Category      HearthstoneCategory `json:"category" yaml:"category"`
	GeomancyLevel GeomancyLevel       `json:"geomancy_level" yaml:"geomancy_level"`
	Keywords      []string            `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Lore          string              `json:"lore,omitempty" yaml:"lore,omitempty"`
	Powers        string              `json:"powers,omitempty" yaml:"powers,omitempty"`
	// ManseName is set when the character also owns the manse.
	ManseName   string `json:"manse_name,omitempty" yaml:"manse_name,omitempty"`
	DemenseName string `json:"demense_name,omitempty" yaml:"demense_name,omitempty"`
}

// Validate checks the hearthstone's structural fields.
func (h Hearthstone) Validate() error {
	if h.Name == "" {
		return rejection.New(rejection.CodeNameEmpty, "hearthstone name is required")
	}
	if !h.Category.valid() {
		return rejection.Newf(rejection.CodePayloadInvalid, "unknown hearthstone category %q", h.Category).
			With("hearthstone", h.Name)
	}
	if h.GeomancyLevel != Standard && h.GeomancyLevel != Greater {
		return rejection.Newf(rejection.CodePayloadInvalid, "unknown geomancy level %q", h.GeomancyLevel).
			With("hearthstone", h.Name)
	}
	if h.DemenseName != "" && h.ManseName == "" {
		return rejection.New(rejection.CodePayloadInvalid, "a demense requires a manse").
			With("hearthstone", h.Name)
	}
	return nil
}

// HasManse reports whether the character owns the hearthstone's manse.
func (h Hearthstone) HasManse() bool {
	return h.ManseName != ""
}

// Sockets is an artifact's fixed row of hearthstone slots. A nil entry is
// an empty slot; the length never changes after the artifact is created.
type Sockets []*Hearthstone

// NewSockets returns n empty sockets.
func NewSockets(n int) Sockets {
	return make(Sockets, n)
}

// Filled returns the number of occupied slots.
func (s Sockets) Filled() int {
	n := 0
	for _, h := range s {
		if h != nil {
			n++
		}
	}
	return n
}

// Find returns the slot index holding the named hearthstone, or -1.
func (s Sockets) Find(name string) int {
	for i, h := range s {
		if h != nil && h.Name == name {
			return i
		}
	}
	return -1
}

// Stones returns the slotted hearthstones in slot order.
func (s Sockets) Stones() []Hearthstone {
	out := make([]Hearthstone, 0, len(s))
	for _, h := range s {
		if h != nil {
			out = append(out, *h)
		}
	}
	return out
}

// Insert places h into the first empty slot and returns its index.
func (s Sockets) Insert(h Hearthstone) (int, error) {
	for i, slot := range s {
		if slot == nil {
			stone := h
			s[i] = &stone
			return i, nil
		}
	}
	return -1, rejection.New(rejection.CodeHearthstoneAllSlotsFilled, "all hearthstone slots are filled").
		With("hearthstone", h.Name).
		With("slots", fmt.Sprint(len(s)))
}

// Remove empties the slot holding the named hearthstone.
func (s Sockets) Remove(name string) (Hearthstone, int, bool) {
	i := s.Find(name)
	if i < 0 {
		return Hearthstone{}, -1, false
	}
	h := *s[i]
	s[i] = nil
	return h, i, true
}

// RestoreAt puts h back into slot i. The slot must be empty.
func (s Sockets) RestoreAt(i int, h Hearthstone) error {
	if i < 0 || i >= len(s) || s[i] != nil {
		return rejection.Invariantf("cannot restore hearthstone %q to slot %d", h.Name, i)
	}
	stone := h
	s[i] = &stone
	return nil
}

// Clone returns a deep copy.
func (s Sockets) Clone() Sockets {
	if s == nil {
		return nil
	}
	out := make(Sockets, len(s))
	for i, h := range s {
		if h != nil {
			stone := *h
			stone.Keywords = append([]string(nil), h.Keywords...)
			out[i] = &stone
		}
	}
	return out
}
