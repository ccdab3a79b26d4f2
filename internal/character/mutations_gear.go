package character

import (
	"github.com/roach88/charsheet/internal/essence"
	"github.com/roach88/charsheet/internal/gear"
	"github.com/roach88/charsheet/internal/rejection"
)

// AttunementID is the commitment identifier used for attuning an artifact.
func AttunementID(id gear.ArtifactID) string {
	return "attunement:" + id.String()
}

// attuned reports whether the character is attuned to the artifact.
func (m *Memo) attuned(id gear.ArtifactID) bool {
	ex := m.exalt()
	if ex == nil {
		return false
	}
	_, ok := ex.Essence.Motes.Commitments[AttunementID(id)]
	return ok
}

// Weapons.

// AddWeapon adds one mortal weapon. Identical weapons stack by quantity.
type AddWeapon struct {
	Weapon gear.Weapon `json:"weapon" yaml:"weapon"`
}

func (AddWeapon) Type() Type { return TypeAddWeapon }

func (s AddWeapon) check(m *Memo) error { return m.Inventory.CheckAddWeapon(s.Weapon) }

func (s AddWeapon) apply(m *Memo) error { return m.Inventory.AddWeapon(s.Weapon) }

// RemoveWeapon removes one copy of a mortal weapon, unequipping the last.
type RemoveWeapon struct {
	Name string `json:"name" yaml:"name"`
}

func (RemoveWeapon) Type() Type { return TypeRemoveWeapon }

func (s RemoveWeapon) check(m *Memo) error { return m.Inventory.CheckRemoveWeapon(s.Name) }

func (s RemoveWeapon) apply(m *Memo) error { return m.Inventory.RemoveWeapon(s.Name) }

// EquipWeapon equips a weapon. Hand is required for one-handed weapons.
type EquipWeapon struct {
	Weapon gear.WeaponID `json:"weapon" yaml:"weapon"`
	Hand   gear.Hand     `json:"hand,omitempty" yaml:"hand,omitempty"`
}

func (EquipWeapon) Type() Type { return TypeEquipWeapon }

func (s EquipWeapon) check(m *Memo) error { return m.Inventory.CheckEquipWeapon(s.Weapon, s.Hand) }

func (s EquipWeapon) apply(m *Memo) error {
	_, err := m.Inventory.EquipWeapon(s.Weapon, s.Hand)
	return err
}

// UnequipWeapon unequips a weapon. An empty hand frees every hand holding it.
type UnequipWeapon struct {
	Weapon gear.WeaponID `json:"weapon" yaml:"weapon"`
	Hand   gear.Hand     `json:"hand,omitempty" yaml:"hand,omitempty"`
}

func (UnequipWeapon) Type() Type { return TypeUnequipWeapon }

func (s UnequipWeapon) check(m *Memo) error { return m.Inventory.CheckUnequipWeapon(s.Weapon, s.Hand) }

func (s UnequipWeapon) apply(m *Memo) error { return m.Inventory.UnequipWeapon(s.Weapon, s.Hand) }

// Armor.

// AddArmor adds a suit of mortal armor.
type AddArmor struct {
	Armor gear.Armor `json:"armor" yaml:"armor"`
}

func (AddArmor) Type() Type { return TypeAddArmor }

func (s AddArmor) check(m *Memo) error { return m.Inventory.CheckAddArmor(s.Armor) }

func (s AddArmor) apply(m *Memo) error { return m.Inventory.AddArmor(s.Armor) }

// RemoveArmor removes mortal armor, taking it off first.
type RemoveArmor struct {
	Name string `json:"name" yaml:"name"`
}

func (RemoveArmor) Type() Type { return TypeRemoveArmor }

func (s RemoveArmor) check(m *Memo) error { return m.Inventory.CheckRemoveArmor(s.Name) }

func (s RemoveArmor) apply(m *Memo) error { return m.Inventory.RemoveArmor(s.Name) }

// EquipArmor wears armor, replacing any worn armor.
type EquipArmor struct {
	Armor gear.ArmorID `json:"armor" yaml:"armor"`
}

func (EquipArmor) Type() Type { return TypeEquipArmor }

func (s EquipArmor) check(m *Memo) error { return m.Inventory.CheckEquipArmor(s.Armor) }

func (s EquipArmor) apply(m *Memo) error { return m.Inventory.EquipArmor(s.Armor) }

// UnequipArmor takes off worn armor.
type UnequipArmor struct{}

func (UnequipArmor) Type() Type { return TypeUnequipArmor }

func (UnequipArmor) check(m *Memo) error { return m.Inventory.CheckUnequipArmor() }

func (UnequipArmor) apply(m *Memo) error { return m.Inventory.UnequipArmor() }

// Artifacts.

// AddArtifact adds an artifact weapon, armor or wonder with empty sockets.
type AddArtifact struct {
	Artifact gear.NewArtifact `json:"artifact" yaml:"artifact"`
}

func (AddArtifact) Type() Type { return TypeAddArtifact }

func (s AddArtifact) check(m *Memo) error { return m.Inventory.CheckAddArtifact(s.Artifact) }

func (s AddArtifact) apply(m *Memo) error {
	_, err := m.Inventory.AddArtifact(s.Artifact)
	return err
}

// RemoveArtifact removes an artifact. Its hearthstones return to the
// unslotted inventory, any attunement is released to spent motes, and
// repair drops evocations bound to it.
type RemoveArtifact struct {
	Artifact gear.ArtifactID `json:"artifact" yaml:"artifact"`
}

func (RemoveArtifact) Type() Type { return TypeRemoveArtifact }

func (s RemoveArtifact) check(m *Memo) error { return m.Inventory.CheckRemoveArtifact(s.Artifact) }

func (s RemoveArtifact) apply(m *Memo) error {
	if m.attuned(s.Artifact) {
		if _, err := m.exalt().Essence.Uncommit(AttunementID(s.Artifact)); err != nil {
			return err
		}
	}
	return m.Inventory.RemoveArtifact(s.Artifact)
}

// AttuneArtifact commits the artifact's attunement cost. Exalt only.
type AttuneArtifact struct {
	Artifact gear.ArtifactID `json:"artifact" yaml:"artifact"`
	First    essence.Pool    `json:"first" yaml:"first"`
}

func (AttuneArtifact) Type() Type { return TypeAttuneArtifact }

func (s AttuneArtifact) check(m *Memo) error {
	ex, err := exaltOf(m, s.Type())
	if err != nil {
		return err
	}
	art, ok := m.Inventory.LookupArtifact(s.Artifact)
	if !ok {
		return rejection.New(rejection.CodeArtifactNotFound, "artifact not found").
			With("artifact", s.Artifact.String())
	}
	if art.AttunementCost == 0 {
		return rejection.New(rejection.CodeArtifactNotAttunable, "artifact has no attunement cost").
			With("artifact", s.Artifact.String())
	}
	if m.attuned(s.Artifact) {
		return rejection.New(rejection.CodeArtifactAlreadyAttuned, "artifact is already attuned").
			With("artifact", s.Artifact.String())
	}
	return ex.Essence.CheckCommit(AttunementID(s.Artifact), s.Artifact.Name, s.First, art.AttunementCost)
}

func (s AttuneArtifact) apply(m *Memo) error {
	ex, err := exaltOf(m, s.Type())
	if err != nil {
		return err
	}
	art, _ := m.Inventory.LookupArtifact(s.Artifact)
	return ex.Essence.Commit(AttunementID(s.Artifact), s.Artifact.Name, s.First, art.AttunementCost)
}

// UnattuneArtifact releases an attunement; the motes become spent.
type UnattuneArtifact struct {
	Artifact gear.ArtifactID `json:"artifact" yaml:"artifact"`
}

func (UnattuneArtifact) Type() Type { return TypeUnattuneArtifact }

func (s UnattuneArtifact) check(m *Memo) error {
	if _, err := exaltOf(m, s.Type()); err != nil {
		return err
	}
	if !m.attuned(s.Artifact) {
		return rejection.New(rejection.CodeArtifactNotAttuned, "artifact is not attuned").
			With("artifact", s.Artifact.String())
	}
	return nil
}

func (s UnattuneArtifact) apply(m *Memo) error {
	ex, err := exaltOf(m, s.Type())
	if err != nil {
		return err
	}
	_, err = ex.Essence.Uncommit(AttunementID(s.Artifact))
	return err
}

// Hearthstones.

// AddHearthstone adds an unslotted hearthstone.
type AddHearthstone struct {
	Hearthstone gear.Hearthstone `json:"hearthstone" yaml:"hearthstone"`
}

func (AddHearthstone) Type() Type { return TypeAddHearthstone }

func (s AddHearthstone) check(m *Memo) error { return m.Inventory.CheckAddHearthstone(s.Hearthstone) }

func (s AddHearthstone) apply(m *Memo) error { return m.Inventory.AddHearthstone(s.Hearthstone) }

// RemoveHearthstone removes a hearthstone, unslotting it first. Repair drops
// evocations bound to it.
type RemoveHearthstone struct {
	Name string `json:"name" yaml:"name"`
}

func (RemoveHearthstone) Type() Type { return TypeRemoveHearthstone }

func (s RemoveHearthstone) check(m *Memo) error { return m.Inventory.CheckRemoveHearthstone(s.Name) }

func (s RemoveHearthstone) apply(m *Memo) error {
	_, err := m.Inventory.RemoveHearthstone(s.Name)
	return err
}

// SlotHearthstone moves a hearthstone into the first empty socket of an
// artifact, from the unslotted inventory or another socket.
type SlotHearthstone struct {
	Artifact    gear.ArtifactID `json:"artifact" yaml:"artifact"`
	Hearthstone string          `json:"hearthstone" yaml:"hearthstone"`
}

func (SlotHearthstone) Type() Type { return TypeSlotHearthstone }

func (s SlotHearthstone) check(m *Memo) error {
	return m.Inventory.CheckSlotHearthstone(s.Artifact, s.Hearthstone)
}

func (s SlotHearthstone) apply(m *Memo) error {
	return m.Inventory.SlotHearthstone(s.Artifact, s.Hearthstone)
}

// UnslotHearthstone returns a slotted hearthstone to the unslotted inventory.
type UnslotHearthstone struct {
	Name string `json:"name" yaml:"name"`
}

func (UnslotHearthstone) Type() Type { return TypeUnslotHearthstone }

func (s UnslotHearthstone) check(m *Memo) error { return m.Inventory.CheckUnslotHearthstone(s.Name) }

func (s UnslotHearthstone) apply(m *Memo) error { return m.Inventory.UnslotHearthstone(s.Name) }
