package gear

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/charsheet/internal/rejection"
)

var (
	sword  = Weapon{Name: "Straight Sword", WeightClass: Medium, Handedness: OneHanded, DamageType: Lethal, Ability: "melee"}
	knife  = Weapon{Name: "Knife", WeightClass: Light, Handedness: OneHanded, DamageType: Lethal, Ability: "melee"}
	axe    = Weapon{Name: "Great Axe", WeightClass: Heavy, Handedness: TwoHanded, DamageType: Lethal, Ability: "melee"}
	cestus = Weapon{Name: "Cestus", WeightClass: Light, Handedness: Worn, DamageType: Bashing, Ability: "brawl"}
	claws  = Weapon{Name: "Tiger Claws", WeightClass: Light, Handedness: Natural, DamageType: Lethal, Ability: "brawl"}
)

func daiklave(slots int) NewArtifact {
	return NewArtifact{Weapon: &ArtifactWeapon{
		Weapon: Weapon{Name: "Volcano Cutter", WeightClass: Heavy, Handedness: TwoHanded, DamageType: Lethal, Ability: "melee"},
		Artifact: Artifact{
			MagicMaterial:  Orichalcum,
			MeritDots:      3,
			AttunementCost: 5,
			Sockets:        NewSockets(slots),
		},
	}}
}

func wonder(name string, slots int) NewArtifact {
	return NewArtifact{Wonder: &Wonder{Name: name, Artifact: Artifact{MeritDots: 2, Sockets: NewSockets(slots)}}}
}

func stone(name string) Hearthstone {
	return Hearthstone{Name: name, Category: Fire, GeomancyLevel: Standard}
}

func TestAddWeapon_StacksIdentical(t *testing.T) {
	inv := NewInventory()

	require.NoError(t, inv.AddWeapon(sword))
	require.NoError(t, inv.AddWeapon(sword))
	assert.Equal(t, 2, inv.MortalWeapons[sword.Name].Quantity)

	different := sword
	different.DamageType = Bashing
	err := inv.AddWeapon(different)
	assert.True(t, rejection.Is(err, rejection.CodeWeaponDuplicate))

	assert.True(t, rejection.Is(inv.AddWeapon(Unarmed), rejection.CodeWeaponDuplicate))
	assert.True(t, rejection.Is(inv.AddWeapon(Weapon{}), rejection.CodeNameEmpty))
}

func TestEquipTwoHanded_UnequipsOneHandedWithoutDeleting(t *testing.T) {
	inv := NewInventory()
	require.NoError(t, inv.AddWeapon(sword))
	require.NoError(t, inv.AddWeapon(knife))
	require.NoError(t, inv.AddWeapon(axe))

	_, err := inv.EquipWeapon(mortal(sword.Name), MainHand)
	require.NoError(t, err)
	_, err = inv.EquipWeapon(mortal(knife.Name), OffHand)
	require.NoError(t, err)

	displaced, err := inv.EquipWeapon(mortal(axe.Name), "")
	require.NoError(t, err)

	assert.ElementsMatch(t, []WeaponID{mortal(sword.Name), mortal(knife.Name)}, displaced)
	assert.Equal(t, HandsTwoHanded, inv.Hands.State)
	assert.Equal(t, []WeaponID{mortal(axe.Name)}, inv.Hands.Occupants())
	assert.False(t, inv.Equipped(mortal(sword.Name)))
	assert.False(t, inv.Equipped(mortal(knife.Name)))
	assert.Contains(t, inv.MortalWeapons, sword.Name)
	assert.Contains(t, inv.MortalWeapons, knife.Name)
	require.NoError(t, inv.Validate())
}

func TestEquipOneHanded_SingleCopyMovesHands(t *testing.T) {
	inv := NewInventory()
	require.NoError(t, inv.AddWeapon(sword))

	_, err := inv.EquipWeapon(mortal(sword.Name), MainHand)
	require.NoError(t, err)
	_, err = inv.EquipWeapon(mortal(sword.Name), OffHand)
	require.NoError(t, err)

	assert.Equal(t, HandsOff, inv.Hands.State)
	assert.Equal(t, []Hand{OffHand}, inv.Hands.Holding(mortal(sword.Name)))
}

func TestEquipOneHanded_PairFillsBothHands(t *testing.T) {
	inv := NewInventory()
	require.NoError(t, inv.AddWeapon(knife))
	require.NoError(t, inv.AddWeapon(knife))

	_, err := inv.EquipWeapon(mortal(knife.Name), MainHand)
	require.NoError(t, err)
	_, err = inv.EquipWeapon(mortal(knife.Name), OffHand)
	require.NoError(t, err)
	assert.Equal(t, HandsBoth, inv.Hands.State)
	require.NoError(t, inv.Validate())

	require.NoError(t, inv.RemoveWeapon(knife.Name))
	assert.Equal(t, HandsMain, inv.Hands.State, "one copy left, one hand holds it")

	require.NoError(t, inv.RemoveWeapon(knife.Name))
	assert.Equal(t, HandsEmpty, inv.Hands.State)
	assert.NotContains(t, inv.MortalWeapons, knife.Name)
}

func TestEquipWeapon_Rejections(t *testing.T) {
	inv := NewInventory()
	require.NoError(t, inv.AddWeapon(sword))
	require.NoError(t, inv.AddWeapon(claws))

	_, err := inv.EquipWeapon(mortal("Nothing"), MainHand)
	assert.True(t, rejection.Is(err, rejection.CodeWeaponNotFound))

	_, err = inv.EquipWeapon(mortal(claws.Name), MainHand)
	assert.True(t, rejection.Is(err, rejection.CodeWeaponNotEquippable))

	_, err = inv.EquipWeapon(UnarmedID, MainHand)
	assert.True(t, rejection.Is(err, rejection.CodeWeaponNotEquippable))

	_, err = inv.EquipWeapon(mortal(sword.Name), "")
	assert.True(t, rejection.Is(err, rejection.CodePayloadInvalid))

	_, err = inv.EquipWeapon(mortal(sword.Name), MainHand)
	require.NoError(t, err)
	_, err = inv.EquipWeapon(mortal(sword.Name), MainHand)
	assert.True(t, rejection.Is(err, rejection.CodeWeaponAlreadyEquipped))

	assert.True(t, inv.Equipped(mortal(claws.Name)), "natural weapons are always equipped")
	assert.True(t, inv.Equipped(UnarmedID))
}

func TestWornWeapons(t *testing.T) {
	inv := NewInventory()
	require.NoError(t, inv.AddWeapon(cestus))
	require.NoError(t, inv.AddWeapon(axe))
	id := mortal(cestus.Name)

	_, err := inv.EquipWeapon(id, "")
	require.NoError(t, err)
	_, err = inv.EquipWeapon(mortal(axe.Name), "")
	require.NoError(t, err)

	assert.True(t, inv.Equipped(id), "worn weapons do not occupy hands")
	assert.Equal(t, HandsTwoHanded, inv.Hands.State)

	_, err = inv.EquipWeapon(id, "")
	assert.True(t, rejection.Is(err, rejection.CodeWeaponAlreadyEquipped))

	require.NoError(t, inv.UnequipWeapon(id, ""))
	assert.False(t, inv.Equipped(id))
	assert.True(t, rejection.Is(inv.UnequipWeapon(id, ""), rejection.CodeWeaponNotEquipped))
}

func TestUnequipWeapon_HandMustMatch(t *testing.T) {
	inv := NewInventory()
	require.NoError(t, inv.AddWeapon(sword))
	_, err := inv.EquipWeapon(mortal(sword.Name), MainHand)
	require.NoError(t, err)

	err = inv.UnequipWeapon(mortal(sword.Name), OffHand)
	assert.True(t, rejection.Is(err, rejection.CodeWeaponNotEquipped))
	assert.Equal(t, HandsMain, inv.Hands.State)

	require.NoError(t, inv.UnequipWeapon(mortal(sword.Name), MainHand))
	assert.Equal(t, HandsEmpty, inv.Hands.State)
}

func TestArmor(t *testing.T) {
	inv := NewInventory()
	chain := Armor{Name: "Chain Shirt", WeightClass: Medium}

	require.NoError(t, inv.AddArmor(chain))
	assert.True(t, rejection.Is(inv.AddArmor(chain), rejection.CodeArmorDuplicate))
	assert.True(t, rejection.Is(inv.UnequipArmor(), rejection.CodeArmorNotEquipped))

	id := ArmorID{Kind: ArmorMortal, Name: chain.Name}
	require.NoError(t, inv.EquipArmor(id))
	assert.Equal(t, &id, inv.EquippedArmor)

	require.NoError(t, inv.RemoveArmor(chain.Name))
	assert.Nil(t, inv.EquippedArmor, "removing worn armor takes it off")
	assert.True(t, rejection.Is(inv.EquipArmor(id), rejection.CodeArmorNotFound))
}

func TestAddArtifact_Rejections(t *testing.T) {
	inv := NewInventory()

	_, err := inv.AddArtifact(daiklave(1))
	require.NoError(t, err)

	_, err = inv.AddArtifact(daiklave(1))
	assert.True(t, rejection.Is(err, rejection.CodeArtifactDuplicate))

	_, err = inv.AddArtifact(NewArtifact{})
	assert.True(t, rejection.Is(err, rejection.CodePayloadInvalid))

	bad := daiklave(1)
	bad.Weapon.Weapon.Name = "Other"
	bad.Weapon.Artifact.MagicMaterial = "glass"
	_, err = inv.AddArtifact(bad)
	assert.True(t, rejection.Is(err, rejection.CodeArtifactInvalid))

	prefilled := wonder("Jewel", 1)
	prefilled.Wonder.Artifact.Sockets[0] = ptr(stone("Gem"))
	_, err = inv.AddArtifact(prefilled)
	assert.True(t, rejection.Is(err, rejection.CodeArtifactInvalid))
}

func TestSlotHearthstone_MovesBetweenSockets(t *testing.T) {
	inv := NewInventory()
	dk, err := inv.AddArtifact(daiklave(1))
	require.NoError(t, err)
	crown, err := inv.AddArtifact(wonder("Crown", 2))
	require.NoError(t, err)
	require.NoError(t, inv.AddHearthstone(stone("Ruby")))

	require.NoError(t, inv.SlotHearthstone(dk, "Ruby"))
	assert.NotContains(t, inv.Hearthstones, "Ruby")
	loc, ok := inv.Locate("Ruby")
	require.True(t, ok)
	assert.Equal(t, &dk, loc.Artifact)

	require.NoError(t, inv.SlotHearthstone(crown, "Ruby"))
	loc, _ = inv.Locate("Ruby")
	assert.Equal(t, &crown, loc.Artifact)
	assert.Equal(t, 0, inv.ArtifactWeapons["Volcano Cutter"].Artifact.Sockets.Filled())
	require.NoError(t, inv.Validate())
}

func TestSlotHearthstone_FullTargetRestoresOrigin(t *testing.T) {
	inv := NewInventory()
	dk, err := inv.AddArtifact(daiklave(1))
	require.NoError(t, err)
	crown, err := inv.AddArtifact(wonder("Crown", 1))
	require.NoError(t, err)
	require.NoError(t, inv.AddHearthstone(stone("Ruby")))
	require.NoError(t, inv.AddHearthstone(stone("Opal")))
	require.NoError(t, inv.SlotHearthstone(dk, "Ruby"))
	require.NoError(t, inv.SlotHearthstone(crown, "Opal"))
	before := inv.Clone()

	assert.True(t, rejection.Is(inv.CheckSlotHearthstone(crown, "Ruby"), rejection.CodeHearthstoneAllSlotsFilled))

	err = inv.SlotHearthstone(crown, "Ruby")
	assert.True(t, rejection.Is(err, rejection.CodeHearthstoneAllSlotsFilled))
	assert.Equal(t, before, inv, "failed move leaves the stone where it was")

	require.NoError(t, inv.UnslotHearthstone("Opal"))
	err = inv.SlotHearthstone(dk, "Opal")
	assert.True(t, rejection.Is(err, rejection.CodeHearthstoneAllSlotsFilled))
	assert.Contains(t, inv.Hearthstones, "Opal", "unslotted stone returns to inventory")
}

func TestSlotHearthstone_ZeroSlotArtifact(t *testing.T) {
	inv := NewInventory()
	bare, err := inv.AddArtifact(wonder("Plain Ring", 0))
	require.NoError(t, err)
	require.NoError(t, inv.AddHearthstone(stone("Ruby")))

	err = inv.SlotHearthstone(bare, "Ruby")
	assert.True(t, rejection.Is(err, rejection.CodeHearthstoneAllSlotsFilled))
	assert.Contains(t, inv.Hearthstones, "Ruby")
}

func TestHearthstone_Rejections(t *testing.T) {
	inv := NewInventory()
	dk, err := inv.AddArtifact(daiklave(1))
	require.NoError(t, err)
	require.NoError(t, inv.AddHearthstone(stone("Ruby")))

	assert.True(t, rejection.Is(inv.AddHearthstone(stone("Ruby")), rejection.CodeHearthstoneDuplicate))
	assert.True(t, rejection.Is(inv.UnslotHearthstone("Ruby"), rejection.CodeHearthstoneNotSlotted))
	assert.True(t, rejection.Is(inv.UnslotHearthstone("Nope"), rejection.CodeHearthstoneNotFound))
	assert.True(t, rejection.Is(inv.SlotHearthstone(dk, "Nope"), rejection.CodeHearthstoneNotFound))
	assert.True(t, rejection.Is(inv.SlotHearthstone(ArtifactID{Kind: KindWonder, Name: "Nope"}, "Ruby"), rejection.CodeArtifactNotFound))

	require.NoError(t, inv.SlotHearthstone(dk, "Ruby"))
	assert.True(t, rejection.Is(inv.AddHearthstone(stone("Ruby")), rejection.CodeHearthstoneDuplicate),
		"slotted stones count toward uniqueness")
}

func TestRemoveHearthstone_AutoUnslots(t *testing.T) {
	inv := NewInventory()
	dk, err := inv.AddArtifact(daiklave(1))
	require.NoError(t, err)
	require.NoError(t, inv.AddHearthstone(stone("Ruby")))
	require.NoError(t, inv.SlotHearthstone(dk, "Ruby"))

	h, err := inv.RemoveHearthstone("Ruby")
	require.NoError(t, err)
	assert.Equal(t, "Ruby", h.Name)
	assert.False(t, inv.HasHearthstone("Ruby"))
	assert.Equal(t, 0, inv.ArtifactWeapons["Volcano Cutter"].Artifact.Sockets.Filled())
}

func TestRemoveArtifact_ReturnsStonesAndUnequips(t *testing.T) {
	inv := NewInventory()
	dk, err := inv.AddArtifact(daiklave(1))
	require.NoError(t, err)
	require.NoError(t, inv.AddHearthstone(stone("Ruby")))
	require.NoError(t, inv.SlotHearthstone(dk, "Ruby"))
	_, err = inv.EquipWeapon(artifact("Volcano Cutter"), "")
	require.NoError(t, err)

	require.NoError(t, inv.RemoveArtifact(dk))

	assert.False(t, inv.HasArtifact(dk))
	assert.Contains(t, inv.Hearthstones, "Ruby")
	assert.Equal(t, HandsEmpty, inv.Hands.State)
	assert.True(t, rejection.Is(inv.RemoveArtifact(dk), rejection.CodeArtifactNotFound))
}

func TestClone_IsDeep(t *testing.T) {
	inv := NewInventory()
	dk, err := inv.AddArtifact(daiklave(1))
	require.NoError(t, err)
	require.NoError(t, inv.AddHearthstone(stone("Ruby")))

	c := inv.Clone()
	require.NoError(t, c.SlotHearthstone(dk, "Ruby"))

	assert.Contains(t, inv.Hearthstones, "Ruby")
	assert.Equal(t, 0, inv.ArtifactWeapons["Volcano Cutter"].Artifact.Sockets.Filled())
}

func TestValidate_DetectsDuplicateStone(t *testing.T) {
	inv := NewInventory()
	dk, err := inv.AddArtifact(daiklave(1))
	require.NoError(t, err)
	require.NoError(t, inv.AddHearthstone(stone("Ruby")))
	require.NoError(t, inv.SlotHearthstone(dk, "Ruby"))
	inv.Hearthstones["Ruby"] = stone("Ruby")

	assert.True(t, rejection.Is(inv.Validate(), rejection.CodeMemoInvalid))
}
