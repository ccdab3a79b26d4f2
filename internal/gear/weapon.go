// Package gear owns a character's equipment: mortal and artifact weapons,
// armor, wonders, hearthstones and the allocators that place them (hands,
// worn slots, armor slot, hearthstone sockets).
//
// Every mutator has a Check* counterpart. Mutators re-run their check first
// and leave the Inventory unchanged when it fails.
package gear

import (
	"github.com/roach88/charsheet/internal/rejection"
)

// Handedness describes how a weapon is wielded.
type Handedness string

const (
	// Natural weapons are part of the body and always equipped.
	Natural Handedness = "natural"
	// Worn weapons (gauntlets, cestus) are equipped without occupying a hand.
	Worn      Handedness = "worn"
	OneHanded Handedness = "one_handed"
	TwoHanded Handedness = "two_handed"
)

func (h Handedness) valid() bool {
	switch h {
	case Natural, Worn, OneHanded, TwoHanded:
		return true
	}
	return false
}

// WeightClass is a weapon or armor weight category.
type WeightClass string

const (
	Light  WeightClass = "light"
	Medium WeightClass = "medium"
	Heavy  WeightClass = "heavy"
)

func (w WeightClass) valid() bool {
	return w == Light || w == Medium || w == Heavy
}

// DamageType is the kind of damage a weapon inflicts.
type DamageType string

const (
	Bashing    DamageType = "bashing"
	Lethal     DamageType = "lethal"
	Aggravated DamageType = "aggravated"
)

// Valid reports whether d is a known damage type.
func (d DamageType) Valid() bool {
	return d == Bashing || d == Lethal || d == Aggravated
}

// Weapon is the mundane description shared by mortal and artifact weapons.
type Weapon struct {
	Name          string      `json:"name" yaml:"name"`
	WeightClass   WeightClass `json:"weight_class" yaml:"weight_class"`
	Handedness    Handedness  `json:"handedness" yaml:"handedness"`
	DamageType    DamageType  `json:"damage_type" yaml:"damage_type"`
	Ability       string      `json:"ability,omitempty" yaml:"ability,omitempty"`
	Range         string      `json:"range,omitempty" yaml:"range,omitempty"`
	Tags          []string    `json:"tags,omitempty" yaml:"tags,omitempty"`
	BookReference string      `json:"book_reference,omitempty" yaml:"book_reference,omitempty"`
}

// Validate checks the weapon's structural fields.
func (w Weapon) Validate() error {
	if w.Name == "" {
		return rejection.New(rejection.CodeNameEmpty, "weapon name is required")
	}
	if !w.WeightClass.valid() {
		return rejection.Newf(rejection.CodeWeaponInvalid, "unknown weight class %q", w.WeightClass).
			With("weapon", w.Name)
	}
	if !w.Handedness.valid() {
		return rejection.Newf(rejection.CodeWeaponInvalid, "unknown handedness %q", w.Handedness).
			With("weapon", w.Name)
	}
	if !w.DamageType.Valid() || w.DamageType == Aggravated {
		return rejection.Newf(rejection.CodeWeaponInvalid, "weapons deal bashing or lethal damage, got %q", w.DamageType).
			With("weapon", w.Name)
	}
	return nil
}

// Unarmed is the natural weapon every character has.
var Unarmed = Weapon{
	Name:          "Unarmed",
	WeightClass:   Light,
	Handedness:    Natural,
	DamageType:    Bashing,
	Ability:       "brawl",
	Tags:          []string{"grappling", "natural"},
	BookReference: "Core p.582",
}

// MortalWeapon is a stack of identical mundane weapons.
type MortalWeapon struct {
	Weapon   Weapon `json:"weapon" yaml:"weapon"`
	Quantity int    `json:"quantity" yaml:"quantity"`
}

// WeaponKind separates the weapon namespaces.
type WeaponKind string

const (
	WeaponUnarmed  WeaponKind = "unarmed"
	WeaponMortal   WeaponKind = "mortal"
	WeaponArtifact WeaponKind = "artifact"
)

// WeaponID identifies a weapon owned by a character.
type WeaponID struct {
	Kind WeaponKind `json:"kind" yaml:"kind"`
	Name string     `json:"name,omitempty" yaml:"name,omitempty"`
}

// UnarmedID is the identifier of the Unarmed weapon.
var UnarmedID = WeaponID{Kind: WeaponUnarmed}

func (id WeaponID) String() string {
	if id.Kind == WeaponUnarmed {
		return "unarmed"
	}
	return string(id.Kind) + ":" + id.Name
}
