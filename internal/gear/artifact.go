package gear

import (
	"fmt"

	"github.com/roach88/charsheet/internal/rejection"
)

// MagicMaterial is the substance an artifact is forged from.
type MagicMaterial string

const (
	Orichalcum MagicMaterial = "orichalcum"
	Jade       MagicMaterial = "jade"
	Moonsilver MagicMaterial = "moonsilver"
	Starmetal  MagicMaterial = "starmetal"
	Soulsteel  MagicMaterial = "soulsteel"
)

func (m MagicMaterial) valid() bool {
	switch m {
	case Orichalcum, Jade, Moonsilver, Starmetal, Soulsteel:
		return true
	}
	return false
}

// Artifact is the magical half of an artifact weapon, armor or wonder.
type Artifact struct {
	MagicMaterial MagicMaterial `json:"magic_material,omitempty" yaml:"magic_material,omitempty"`
	// MeritDots is the Artifact merit rating; 0 means N/A.
	MeritDots      int     `json:"merit_dots" yaml:"merit_dots"`
	AttunementCost int     `json:"attunement_cost" yaml:"attunement_cost"`
	Lore           string  `json:"lore,omitempty" yaml:"lore,omitempty"`
	Powers         string  `json:"powers,omitempty" yaml:"powers,omitempty"`
	Sockets        Sockets `json:"hearthstone_slots" yaml:"hearthstone_slots"`
}

func (a Artifact) validate(name string, requireMaterial bool) error {
	if requireMaterial && !a.MagicMaterial.valid() {
		return rejection.Newf(rejection.CodeArtifactInvalid, "unknown magic material %q", a.MagicMaterial).
			With("artifact", name)
	}
	if a.MagicMaterial != "" && !a.MagicMaterial.valid() {
		return rejection.Newf(rejection.CodeArtifactInvalid, "unknown magic material %q", a.MagicMaterial).
			With("artifact", name)
	}
	if a.MeritDots < 0 || a.MeritDots > 5 {
		return rejection.New(rejection.CodeArtifactInvalid, "artifact merit dots must be between 0 and 5").
			With("artifact", name).
			With("dots", fmt.Sprint(a.MeritDots))
	}
	if a.AttunementCost < 0 {
		return rejection.New(rejection.CodeArtifactInvalid, "attunement cost must not be negative").
			With("artifact", name)
	}
	return nil
}

// ArtifactWeapon is a weapon forged from a magical material.
type ArtifactWeapon struct {
	Weapon   Weapon   `json:"weapon" yaml:"weapon"`
	Artifact Artifact `json:"artifact" yaml:"artifact"`
}

// ArtifactArmor is armor forged from a magical material.
type ArtifactArmor struct {
	Armor    Armor    `json:"armor" yaml:"armor"`
	Artifact Artifact `json:"artifact" yaml:"artifact"`
}

// Wonder is an artifact that is neither weapon nor armor.
type Wonder struct {
	Name     string   `json:"name" yaml:"name"`
	Artifact Artifact `json:"artifact" yaml:"artifact"`
}

// ArtifactKind separates the artifact namespaces.
type ArtifactKind string

const (
	KindWeapon ArtifactKind = "weapon"
	KindArmor  ArtifactKind = "armor"
	KindWonder ArtifactKind = "wonder"
)

// ArtifactID identifies an owned artifact.
type ArtifactID struct {
	Kind ArtifactKind `json:"kind" yaml:"kind"`
	Name string       `json:"name" yaml:"name"`
}

func (id ArtifactID) String() string {
	return string(id.Kind) + ":" + id.Name
}

// NewArtifact is the payload used to add an artifact. Exactly one of the
// three fields is set.
type NewArtifact struct {
	Weapon *ArtifactWeapon `json:"weapon,omitempty" yaml:"weapon,omitempty"`
	Armor  *ArtifactArmor  `json:"armor,omitempty" yaml:"armor,omitempty"`
	Wonder *Wonder         `json:"wonder,omitempty" yaml:"wonder,omitempty"`
}

// ID returns the identifier the artifact will have once added.
func (n NewArtifact) ID() (ArtifactID, error) {
	set := 0
	var id ArtifactID
	if n.Weapon != nil {
		set++
		id = ArtifactID{Kind: KindWeapon, Name: n.Weapon.Weapon.Name}
	}
	if n.Armor != nil {
		set++
		id = ArtifactID{Kind: KindArmor, Name: n.Armor.Armor.Name}
	}
	if n.Wonder != nil {
		set++
		id = ArtifactID{Kind: KindWonder, Name: n.Wonder.Name}
	}
	if set != 1 {
		return ArtifactID{}, rejection.New(rejection.CodePayloadInvalid,
			"artifact must be exactly one of weapon, armor or wonder")
	}
	return id, nil
}

func (n NewArtifact) validate() error {
	id, err := n.ID()
	if err != nil {
		return err
	}
	var art Artifact
	switch id.Kind {
	case KindWeapon:
		if err := n.Weapon.Weapon.Validate(); err != nil {
			return err
		}
		art = n.Weapon.Artifact
		if err := art.validate(id.Name, true); err != nil {
			return err
		}
	case KindArmor:
		if err := n.Armor.Armor.Validate(); err != nil {
			return err
		}
		art = n.Armor.Artifact
		if err := art.validate(id.Name, true); err != nil {
			return err
		}
	case KindWonder:
		if n.Wonder.Name == "" {
			return rejection.New(rejection.CodeNameEmpty, "wonder name is required")
		}
		art = n.Wonder.Artifact
		if err := art.validate(id.Name, false); err != nil {
			return err
		}
	}
	if art.Sockets.Filled() > 0 {
		return rejection.New(rejection.CodeArtifactInvalid, "new artifacts must have empty hearthstone slots").
			With("artifact", id.String())
	}
	return nil
}
