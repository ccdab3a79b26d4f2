package character

import (
	"fmt"
	"sort"

	"github.com/roach88/charsheet/internal/gear"
)

// SheetMerit is a merit as it appears on the character sheet. Derived
// merits follow from other traits and cannot be removed directly.
type SheetMerit struct {
	ID      string `json:"id" yaml:"id"`
	Merit   Merit  `json:"merit" yaml:"merit"`
	Derived bool   `json:"derived,omitempty" yaml:"derived,omitempty"`
}

// Merit dots granted by owned equipment and exaltation.
const (
	standardHearthstoneDots = 2
	greaterHearthstoneDots  = 4
	standardManseDots       = 3
	greaterManseDots        = 5
	martialArtistDots       = 4
	exaltedHealingDots      = 5
)

// Merits returns owned and derived merits sorted by identifier.
func (c *Character) Merits() []SheetMerit {
	m := &c.memo
	var out []SheetMerit
	for id, merit := range m.Merits {
		out = append(out, SheetMerit{ID: id, Merit: merit})
	}
	derive := func(id string, merit Merit) {
		out = append(out, SheetMerit{ID: "derived:" + id, Merit: merit, Derived: true})
	}

	for _, id := range m.Inventory.Artifacts() {
		art, _ := m.Inventory.LookupArtifact(id)
		if art.MeritDots > 0 {
			derive(id.String(), Merit{Name: "Artifact", Dots: art.MeritDots, Kind: MeritStory, Description: id.Name})
		}
	}
	for _, h := range m.Inventory.AllHearthstones() {
		dots, manse := standardHearthstoneDots, standardManseDots
		if h.GeomancyLevel == gear.Greater {
			dots, manse = greaterHearthstoneDots, greaterManseDots
		}
		derive("hearthstone:"+h.Name, Merit{Name: "Hearthstone", Dots: dots, Kind: MeritStory, Description: h.Name})
		if h.HasManse() {
			derive("manse:"+h.ManseName, Merit{Name: "Manse", Dots: manse, Kind: MeritStory, Description: h.ManseName})
		}
	}
	if n := len(m.Languages.Other); n > 0 {
		derive("language", Merit{
			Name:        "Language",
			Dots:        min(n, MaxDots),
			Kind:        MeritPurchased,
			Description: fmt.Sprintf("%d additional languages", n),
		})
	}
	if len(m.MartialArts) > 0 {
		derive("martial_artist", Merit{Name: "Martial Artist", Dots: martialArtistDots, Kind: MeritPurchased})
	}
	if m.solar() != nil {
		derive("exalted_healing", Merit{Name: "Exalted Healing", Dots: exaltedHealingDots, Kind: MeritInnate})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
