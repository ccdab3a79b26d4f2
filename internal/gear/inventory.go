package gear

import (
	"fmt"
	"slices"
	"sort"

	"github.com/roach88/charsheet/internal/rejection"
)

// Inventory is everything a character owns and wears.
//
// Hearthstones live either in Hearthstones (unslotted) or in exactly one
// artifact socket; a name is never present in both or twice.
type Inventory struct {
	MortalWeapons   map[string]MortalWeapon   `json:"mortal_weapons" yaml:"mortal_weapons"`
	ArtifactWeapons map[string]ArtifactWeapon `json:"artifact_weapons" yaml:"artifact_weapons"`
	MortalArmor     map[string]Armor          `json:"mortal_armor" yaml:"mortal_armor"`
	ArtifactArmor   map[string]ArtifactArmor  `json:"artifact_armor" yaml:"artifact_armor"`
	Wonders         map[string]Wonder         `json:"wonders" yaml:"wonders"`
	Hearthstones    map[string]Hearthstone    `json:"hearthstones" yaml:"hearthstones"`
	Hands           Hands                     `json:"hands" yaml:"hands"`
	Worn            []WeaponID                `json:"worn" yaml:"worn"`
	EquippedArmor   *ArmorID                  `json:"equipped_armor,omitempty" yaml:"equipped_armor,omitempty"`
}

// NewInventory returns an empty inventory with empty hands.
func NewInventory() Inventory {
	inv := Inventory{Hands: Hands{State: HandsEmpty}}
	inv.ensure()
	return inv
}

func (inv *Inventory) ensure() {
	if inv.MortalWeapons == nil {
		inv.MortalWeapons = map[string]MortalWeapon{}
	}
	if inv.ArtifactWeapons == nil {
		inv.ArtifactWeapons = map[string]ArtifactWeapon{}
	}
	if inv.MortalArmor == nil {
		inv.MortalArmor = map[string]Armor{}
	}
	if inv.ArtifactArmor == nil {
		inv.ArtifactArmor = map[string]ArtifactArmor{}
	}
	if inv.Wonders == nil {
		inv.Wonders = map[string]Wonder{}
	}
	if inv.Hearthstones == nil {
		inv.Hearthstones = map[string]Hearthstone{}
	}
	if inv.Worn == nil {
		inv.Worn = []WeaponID{}
	}
	if inv.Hands.State == "" {
		inv.Hands.settle()
	}
}

// Clone returns a deep copy.
func (inv Inventory) Clone() Inventory {
	out := Inventory{
		MortalWeapons:   make(map[string]MortalWeapon, len(inv.MortalWeapons)),
		ArtifactWeapons: make(map[string]ArtifactWeapon, len(inv.ArtifactWeapons)),
		MortalArmor:     make(map[string]Armor, len(inv.MortalArmor)),
		ArtifactArmor:   make(map[string]ArtifactArmor, len(inv.ArtifactArmor)),
		Wonders:         make(map[string]Wonder, len(inv.Wonders)),
		Hearthstones:    make(map[string]Hearthstone, len(inv.Hearthstones)),
		Hands:           inv.Hands.Clone(),
		Worn:            append([]WeaponID{}, inv.Worn...),
	}
	for k, v := range inv.MortalWeapons {
		v.Weapon.Tags = slices.Clone(v.Weapon.Tags)
		out.MortalWeapons[k] = v
	}
	for k, v := range inv.ArtifactWeapons {
		v.Weapon.Tags = slices.Clone(v.Weapon.Tags)
		v.Artifact.Sockets = v.Artifact.Sockets.Clone()
		out.ArtifactWeapons[k] = v
	}
	for k, v := range inv.MortalArmor {
		v.Tags = slices.Clone(v.Tags)
		out.MortalArmor[k] = v
	}
	for k, v := range inv.ArtifactArmor {
		v.Armor.Tags = slices.Clone(v.Armor.Tags)
		v.Artifact.Sockets = v.Artifact.Sockets.Clone()
		out.ArtifactArmor[k] = v
	}
	for k, v := range inv.Wonders {
		v.Artifact.Sockets = v.Artifact.Sockets.Clone()
		out.Wonders[k] = v
	}
	for k, v := range inv.Hearthstones {
		v.Keywords = slices.Clone(v.Keywords)
		out.Hearthstones[k] = v
	}
	if inv.EquippedArmor != nil {
		a := *inv.EquippedArmor
		out.EquippedArmor = &a
	}
	return out
}

// Validate checks a decoded inventory for structural consistency.
func (inv *Inventory) Validate() error {
	inv.ensure()
	for name, mw := range inv.MortalWeapons {
		if err := keyed(name, mw.Weapon.Name); err != nil {
			return err
		}
		if err := mw.Weapon.Validate(); err != nil {
			return err
		}
		if mw.Quantity < 1 {
			return rejection.New(rejection.CodeMemoInvalid, "weapon quantity must be positive").
				With("weapon", name)
		}
	}
	for name, aw := range inv.ArtifactWeapons {
		if err := keyed(name, aw.Weapon.Name); err != nil {
			return err
		}
		if err := aw.Weapon.Validate(); err != nil {
			return err
		}
		if err := aw.Artifact.validate(name, true); err != nil {
			return err
		}
	}
	for name, a := range inv.MortalArmor {
		if err := keyed(name, a.Name); err != nil {
			return err
		}
		if err := a.Validate(); err != nil {
			return err
		}
	}
	for name, aa := range inv.ArtifactArmor {
		if err := keyed(name, aa.Armor.Name); err != nil {
			return err
		}
		if err := aa.Armor.Validate(); err != nil {
			return err
		}
		if err := aa.Artifact.validate(name, true); err != nil {
			return err
		}
	}
	for name, w := range inv.Wonders {
		if err := keyed(name, w.Name); err != nil {
			return err
		}
		if err := w.Artifact.validate(name, false); err != nil {
			return err
		}
	}

	seen := map[string]bool{}
	for name, h := range inv.Hearthstones {
		if err := keyed(name, h.Name); err != nil {
			return err
		}
		seen[name] = true
	}
	for _, id := range inv.Artifacts() {
		sockets, _ := inv.socketsOf(id)
		for _, h := range sockets.Stones() {
			if seen[h.Name] {
				return rejection.New(rejection.CodeMemoInvalid, "hearthstone is held in more than one place").
					With("hearthstone", h.Name)
			}
			seen[h.Name] = true
		}
	}
	for _, h := range inv.AllHearthstones() {
		if err := h.Validate(); err != nil {
			return err
		}
	}

	if err := inv.Hands.validate(); err != nil {
		return err
	}
	for _, id := range inv.Hands.Occupants() {
		w, ok := inv.weapon(id)
		if !ok {
			return rejection.New(rejection.CodeMemoInvalid, "equipped weapon is not owned").
				With("weapon", id.String())
		}
		wantTwo := inv.Hands.State == HandsTwoHanded
		if wantTwo != (w.Handedness == TwoHanded) || w.Handedness == Worn || w.Handedness == Natural {
			return rejection.New(rejection.CodeMemoInvalid, "weapon is held in the wrong number of hands").
				With("weapon", id.String())
		}
	}
	if inv.Hands.State == HandsBoth && *inv.Hands.Main == *inv.Hands.Off && inv.count(*inv.Hands.Main) < 2 {
		return rejection.New(rejection.CodeMemoInvalid, "single weapon held in both hands").
			With("weapon", inv.Hands.Main.String())
	}
	for _, id := range inv.Worn {
		w, ok := inv.weapon(id)
		if !ok || w.Handedness != Worn {
			return rejection.New(rejection.CodeMemoInvalid, "worn weapon is not an owned worn weapon").
				With("weapon", id.String())
		}
	}
	if inv.EquippedArmor != nil {
		if _, ok := inv.armor(*inv.EquippedArmor); !ok {
			return rejection.New(rejection.CodeMemoInvalid, "equipped armor is not owned").
				With("armor", inv.EquippedArmor.String())
		}
	}
	return nil
}

func keyed(key, name string) error {
	if key != name {
		return rejection.Newf(rejection.CodeMemoInvalid, "entry %q is keyed as %q", name, key)
	}
	return nil
}

// Weapons.

func (inv *Inventory) weapon(id WeaponID) (Weapon, bool) {
	switch id.Kind {
	case WeaponUnarmed:
		return Unarmed, true
	case WeaponMortal:
		mw, ok := inv.MortalWeapons[id.Name]
		return mw.Weapon, ok
	case WeaponArtifact:
		aw, ok := inv.ArtifactWeapons[id.Name]
		return aw.Weapon, ok
	}
	return Weapon{}, false
}

// Weapon returns the weapon identified by id.
func (inv *Inventory) Weapon(id WeaponID) (Weapon, error) {
	w, ok := inv.weapon(id)
	if !ok {
		return Weapon{}, rejection.New(rejection.CodeWeaponNotFound, "weapon not found").
			With("weapon", id.String())
	}
	return w, nil
}

func (inv *Inventory) count(id WeaponID) int {
	switch id.Kind {
	case WeaponMortal:
		return inv.MortalWeapons[id.Name].Quantity
	case WeaponUnarmed:
		return 1
	case WeaponArtifact:
		if _, ok := inv.ArtifactWeapons[id.Name]; ok {
			return 1
		}
	}
	return 0
}

// Weapons returns every owned weapon identifier, Unarmed first.
func (inv *Inventory) Weapons() []WeaponID {
	out := []WeaponID{UnarmedID}
	for _, name := range sortedKeys(inv.MortalWeapons) {
		out = append(out, WeaponID{Kind: WeaponMortal, Name: name})
	}
	for _, name := range sortedKeys(inv.ArtifactWeapons) {
		out = append(out, WeaponID{Kind: WeaponArtifact, Name: name})
	}
	return out
}

// Equipped reports whether id is in hand, worn or natural.
func (inv *Inventory) Equipped(id WeaponID) bool {
	w, ok := inv.weapon(id)
	if !ok {
		return false
	}
	switch w.Handedness {
	case Natural:
		return true
	case Worn:
		return slices.Contains(inv.Worn, id)
	default:
		return inv.Hands.Contains(id)
	}
}

// CheckAddWeapon reports whether a mortal weapon can be added.
func (inv *Inventory) CheckAddWeapon(w Weapon) error {
	if err := w.Validate(); err != nil {
		return err
	}
	if w.Name == Unarmed.Name {
		return rejection.New(rejection.CodeWeaponDuplicate, "every character already has Unarmed")
	}
	if existing, ok := inv.MortalWeapons[w.Name]; ok && !sameWeapon(existing.Weapon, w) {
		return rejection.New(rejection.CodeWeaponDuplicate, "a different weapon already uses this name").
			With("weapon", w.Name)
	}
	return nil
}

// AddWeapon adds one mortal weapon. Identical weapons stack.
func (inv *Inventory) AddWeapon(w Weapon) error {
	if err := inv.CheckAddWeapon(w); err != nil {
		return err
	}
	inv.ensure()
	mw, ok := inv.MortalWeapons[w.Name]
	if !ok {
		mw = MortalWeapon{Weapon: w}
		mw.Weapon.Tags = slices.Clone(w.Tags)
	}
	mw.Quantity++
	inv.MortalWeapons[w.Name] = mw
	return nil
}

func sameWeapon(a, b Weapon) bool {
	return a.Name == b.Name &&
		a.WeightClass == b.WeightClass &&
		a.Handedness == b.Handedness &&
		a.DamageType == b.DamageType &&
		a.Ability == b.Ability &&
		a.Range == b.Range &&
		a.BookReference == b.BookReference &&
		slices.Equal(a.Tags, b.Tags)
}

// CheckRemoveWeapon reports whether one copy of a mortal weapon can be removed.
func (inv *Inventory) CheckRemoveWeapon(name string) error {
	if _, ok := inv.MortalWeapons[name]; !ok {
		return rejection.New(rejection.CodeWeaponNotFound, "weapon not found").
			With("weapon", name)
	}
	return nil
}

// RemoveWeapon removes one copy of a mortal weapon. The last copy is
// unequipped before removal; a pair held in both hands drops to one hand.
func (inv *Inventory) RemoveWeapon(name string) error {
	if err := inv.CheckRemoveWeapon(name); err != nil {
		return err
	}
	id := WeaponID{Kind: WeaponMortal, Name: name}
	mw := inv.MortalWeapons[name]
	mw.Quantity--
	if mw.Quantity == 0 {
		inv.unequip(id)
		delete(inv.MortalWeapons, name)
		return nil
	}
	inv.MortalWeapons[name] = mw
	if mw.Quantity == 1 && len(inv.Hands.Holding(id)) == 2 && inv.Hands.State == HandsBoth {
		inv.Hands.Free(id, OffHand)
	}
	return nil
}

func (inv *Inventory) unequip(id WeaponID) {
	inv.Hands.Release(id)
	inv.Worn = slices.DeleteFunc(inv.Worn, func(w WeaponID) bool { return w == id })
}

// CheckEquipWeapon reports whether id can be equipped. One-handed weapons
// need a hand; other kinds ignore it.
func (inv *Inventory) CheckEquipWeapon(id WeaponID, hand Hand) error {
	w, err := inv.Weapon(id)
	if err != nil {
		return err
	}
	switch w.Handedness {
	case Natural:
		return rejection.New(rejection.CodeWeaponNotEquippable, "natural weapons are always equipped").
			With("weapon", id.String())
	case Worn:
		if slices.Contains(inv.Worn, id) {
			return rejection.New(rejection.CodeWeaponAlreadyEquipped, "weapon is already worn").
				With("weapon", id.String())
		}
	case TwoHanded:
		if inv.Hands.State == HandsTwoHanded && *inv.Hands.Main == id {
			return rejection.New(rejection.CodeWeaponAlreadyEquipped, "weapon is already equipped").
				With("weapon", id.String())
		}
	case OneHanded:
		if !hand.Valid() {
			return rejection.Newf(rejection.CodePayloadInvalid, "one-handed weapons need a hand, got %q", hand).
				With("weapon", id.String())
		}
		if slices.Contains(inv.Hands.Holding(id), hand) {
			return rejection.New(rejection.CodeWeaponAlreadyEquipped, "weapon is already in that hand").
				With("weapon", id.String()).
				With("hand", string(hand))
		}
	}
	return nil
}

// EquipWeapon equips id and returns the weapons it displaced from the hands.
// A one-handed weapon owned only once moves out of the other hand.
func (inv *Inventory) EquipWeapon(id WeaponID, hand Hand) ([]WeaponID, error) {
	if err := inv.CheckEquipWeapon(id, hand); err != nil {
		return nil, err
	}
	w, _ := inv.weapon(id)
	switch w.Handedness {
	case Worn:
		inv.Worn = append(inv.Worn, id)
		return nil, nil
	case TwoHanded:
		return inv.Hands.EquipTwoHanded(id), nil
	default:
		if inv.count(id) < 2 {
			inv.Hands.Free(id, hand.Other())
		}
		return inv.Hands.EquipOneHanded(id, hand), nil
	}
}

// CheckUnequipWeapon reports whether id can be unequipped. An empty hand
// releases a one-handed weapon from every hand holding it.
func (inv *Inventory) CheckUnequipWeapon(id WeaponID, hand Hand) error {
	w, err := inv.Weapon(id)
	if err != nil {
		return err
	}
	notEquipped := rejection.New(rejection.CodeWeaponNotEquipped, "weapon is not equipped").
		With("weapon", id.String())
	switch w.Handedness {
	case Natural:
		return rejection.New(rejection.CodeWeaponNotEquippable, "natural weapons cannot be unequipped").
			With("weapon", id.String())
	case Worn:
		if !slices.Contains(inv.Worn, id) {
			return notEquipped
		}
	case TwoHanded:
		if !inv.Hands.Contains(id) {
			return notEquipped
		}
	case OneHanded:
		if hand == "" {
			if !inv.Hands.Contains(id) {
				return notEquipped
			}
			return nil
		}
		if !hand.Valid() {
			return rejection.Newf(rejection.CodePayloadInvalid, "unknown hand %q", hand)
		}
		if !slices.Contains(inv.Hands.Holding(id), hand) {
			return notEquipped.With("hand", string(hand))
		}
	}
	return nil
}

// UnequipWeapon unequips id. The weapon stays owned.
func (inv *Inventory) UnequipWeapon(id WeaponID, hand Hand) error {
	if err := inv.CheckUnequipWeapon(id, hand); err != nil {
		return err
	}
	w, _ := inv.weapon(id)
	switch {
	case w.Handedness == Worn:
		inv.unequip(id)
	case w.Handedness == TwoHanded || hand == "":
		inv.Hands.Release(id)
	default:
		inv.Hands.Free(id, hand)
	}
	return nil
}

// Armor.

func (inv *Inventory) armor(id ArmorID) (Armor, bool) {
	switch id.Kind {
	case ArmorMortal:
		a, ok := inv.MortalArmor[id.Name]
		return a, ok
	case ArmorArtifact:
		aa, ok := inv.ArtifactArmor[id.Name]
		return aa.Armor, ok
	}
	return Armor{}, false
}

// CheckAddArmor reports whether mortal armor can be added.
func (inv *Inventory) CheckAddArmor(a Armor) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if _, ok := inv.MortalArmor[a.Name]; ok {
		return rejection.New(rejection.CodeArmorDuplicate, "armor already owned").
			With("armor", a.Name)
	}
	return nil
}

// AddArmor adds mortal armor.
func (inv *Inventory) AddArmor(a Armor) error {
	if err := inv.CheckAddArmor(a); err != nil {
		return err
	}
	inv.ensure()
	a.Tags = slices.Clone(a.Tags)
	inv.MortalArmor[a.Name] = a
	return nil
}

// CheckRemoveArmor reports whether mortal armor can be removed.
func (inv *Inventory) CheckRemoveArmor(name string) error {
	if _, ok := inv.MortalArmor[name]; !ok {
		return rejection.New(rejection.CodeArmorNotFound, "armor not found").
			With("armor", name)
	}
	return nil
}

// RemoveArmor removes mortal armor, taking it off first if worn.
func (inv *Inventory) RemoveArmor(name string) error {
	if err := inv.CheckRemoveArmor(name); err != nil {
		return err
	}
	id := ArmorID{Kind: ArmorMortal, Name: name}
	if inv.EquippedArmor != nil && *inv.EquippedArmor == id {
		inv.EquippedArmor = nil
	}
	delete(inv.MortalArmor, name)
	return nil
}

// CheckEquipArmor reports whether id can be worn.
func (inv *Inventory) CheckEquipArmor(id ArmorID) error {
	if _, ok := inv.armor(id); !ok {
		return rejection.New(rejection.CodeArmorNotFound, "armor not found").
			With("armor", id.String())
	}
	return nil
}

// EquipArmor wears id, replacing any armor already worn.
func (inv *Inventory) EquipArmor(id ArmorID) error {
	if err := inv.CheckEquipArmor(id); err != nil {
		return err
	}
	a := id
	inv.EquippedArmor = &a
	return nil
}

// CheckUnequipArmor reports whether armor is worn.
func (inv *Inventory) CheckUnequipArmor() error {
	if inv.EquippedArmor == nil {
		return rejection.New(rejection.CodeArmorNotEquipped, "no armor is worn")
	}
	return nil
}

// UnequipArmor takes off worn armor.
func (inv *Inventory) UnequipArmor() error {
	if err := inv.CheckUnequipArmor(); err != nil {
		return err
	}
	inv.EquippedArmor = nil
	return nil
}

// Artifacts.

// Artifacts returns every owned artifact, ordered by kind then name.
func (inv *Inventory) Artifacts() []ArtifactID {
	var out []ArtifactID
	for _, name := range sortedKeys(inv.ArtifactWeapons) {
		out = append(out, ArtifactID{Kind: KindWeapon, Name: name})
	}
	for _, name := range sortedKeys(inv.ArtifactArmor) {
		out = append(out, ArtifactID{Kind: KindArmor, Name: name})
	}
	for _, name := range sortedKeys(inv.Wonders) {
		out = append(out, ArtifactID{Kind: KindWonder, Name: name})
	}
	return out
}

// LookupArtifact returns the magical traits of an owned artifact.
func (inv *Inventory) LookupArtifact(id ArtifactID) (Artifact, bool) {
	switch id.Kind {
	case KindWeapon:
		aw, ok := inv.ArtifactWeapons[id.Name]
		return aw.Artifact, ok
	case KindArmor:
		aa, ok := inv.ArtifactArmor[id.Name]
		return aa.Artifact, ok
	case KindWonder:
		w, ok := inv.Wonders[id.Name]
		return w.Artifact, ok
	}
	return Artifact{}, false
}

// HasArtifact reports whether id is owned.
func (inv *Inventory) HasArtifact(id ArtifactID) bool {
	_, ok := inv.LookupArtifact(id)
	return ok
}

func (inv *Inventory) socketsOf(id ArtifactID) (Sockets, bool) {
	a, ok := inv.LookupArtifact(id)
	return a.Sockets, ok
}

func artifactNotFound(id ArtifactID) error {
	return rejection.New(rejection.CodeArtifactNotFound, "artifact not found").
		With("artifact", id.String())
}

// CheckAddArtifact reports whether an artifact can be added.
func (inv *Inventory) CheckAddArtifact(n NewArtifact) error {
	if err := n.validate(); err != nil {
		return err
	}
	id, _ := n.ID()
	if inv.HasArtifact(id) {
		return rejection.New(rejection.CodeArtifactDuplicate, "artifact already owned").
			With("artifact", id.String())
	}
	return nil
}

// AddArtifact adds an artifact with empty hearthstone slots.
func (inv *Inventory) AddArtifact(n NewArtifact) (ArtifactID, error) {
	if err := inv.CheckAddArtifact(n); err != nil {
		return ArtifactID{}, err
	}
	inv.ensure()
	id, _ := n.ID()
	switch id.Kind {
	case KindWeapon:
		aw := *n.Weapon
		aw.Weapon.Tags = slices.Clone(aw.Weapon.Tags)
		aw.Artifact.Sockets = NewSockets(len(aw.Artifact.Sockets))
		inv.ArtifactWeapons[id.Name] = aw
	case KindArmor:
		aa := *n.Armor
		aa.Armor.Tags = slices.Clone(aa.Armor.Tags)
		aa.Artifact.Sockets = NewSockets(len(aa.Artifact.Sockets))
		inv.ArtifactArmor[id.Name] = aa
	case KindWonder:
		w := *n.Wonder
		w.Artifact.Sockets = NewSockets(len(w.Artifact.Sockets))
		inv.Wonders[id.Name] = w
	}
	return id, nil
}

// CheckRemoveArtifact reports whether the artifact is owned.
func (inv *Inventory) CheckRemoveArtifact(id ArtifactID) error {
	if !inv.HasArtifact(id) {
		return artifactNotFound(id)
	}
	return nil
}

// RemoveArtifact unequips the artifact, returns its hearthstones to the
// unslotted inventory and removes it.
func (inv *Inventory) RemoveArtifact(id ArtifactID) error {
	if err := inv.CheckRemoveArtifact(id); err != nil {
		return err
	}
	sockets, _ := inv.socketsOf(id)
	for _, h := range sockets.Stones() {
		inv.Hearthstones[h.Name] = h
	}
	switch id.Kind {
	case KindWeapon:
		inv.unequip(WeaponID{Kind: WeaponArtifact, Name: id.Name})
		delete(inv.ArtifactWeapons, id.Name)
	case KindArmor:
		if inv.EquippedArmor != nil && *inv.EquippedArmor == (ArmorID{Kind: ArmorArtifact, Name: id.Name}) {
			inv.EquippedArmor = nil
		}
		delete(inv.ArtifactArmor, id.Name)
	case KindWonder:
		delete(inv.Wonders, id.Name)
	}
	return nil
}

// Hearthstones.

// Location is where a hearthstone sits. A nil Artifact means the unslotted
// inventory.
type Location struct {
	Artifact *ArtifactID `json:"artifact,omitempty" yaml:"artifact,omitempty"`
	Slot     int         `json:"slot" yaml:"slot"`
}

// Slotted reports whether the location is an artifact socket.
func (l Location) Slotted() bool {
	return l.Artifact != nil
}

// Locate finds a hearthstone by name.
func (inv *Inventory) Locate(name string) (Location, bool) {
	if _, ok := inv.Hearthstones[name]; ok {
		return Location{}, true
	}
	for _, id := range inv.Artifacts() {
		sockets, _ := inv.socketsOf(id)
		if i := sockets.Find(name); i >= 0 {
			a := id
			return Location{Artifact: &a, Slot: i}, true
		}
	}
	return Location{}, false
}

// HasHearthstone reports whether the named hearthstone is owned anywhere.
func (inv *Inventory) HasHearthstone(name string) bool {
	_, ok := inv.Locate(name)
	return ok
}

// AllHearthstones returns every owned hearthstone, unslotted first.
func (inv *Inventory) AllHearthstones() []Hearthstone {
	var out []Hearthstone
	for _, name := range sortedKeys(inv.Hearthstones) {
		out = append(out, inv.Hearthstones[name])
	}
	for _, id := range inv.Artifacts() {
		sockets, _ := inv.socketsOf(id)
		out = append(out, sockets.Stones()...)
	}
	return out
}

func hearthstoneNotFound(name string) error {
	return rejection.New(rejection.CodeHearthstoneNotFound, "hearthstone not found").
		With("hearthstone", name)
}

// CheckAddHearthstone reports whether h can be added to the unslotted inventory.
func (inv *Inventory) CheckAddHearthstone(h Hearthstone) error {
	if err := h.Validate(); err != nil {
		return err
	}
	if inv.HasHearthstone(h.Name) {
		return rejection.New(rejection.CodeHearthstoneDuplicate, "hearthstone already owned").
			With("hearthstone", h.Name)
	}
	return nil
}

// AddHearthstone adds h unslotted.
func (inv *Inventory) AddHearthstone(h Hearthstone) error {
	if err := inv.CheckAddHearthstone(h); err != nil {
		return err
	}
	inv.ensure()
	h.Keywords = slices.Clone(h.Keywords)
	inv.Hearthstones[h.Name] = h
	return nil
}

// CheckRemoveHearthstone reports whether the hearthstone is owned.
func (inv *Inventory) CheckRemoveHearthstone(name string) error {
	if !inv.HasHearthstone(name) {
		return hearthstoneNotFound(name)
	}
	return nil
}

// RemoveHearthstone removes a hearthstone, unslotting it first if needed.
func (inv *Inventory) RemoveHearthstone(name string) (Hearthstone, error) {
	if err := inv.CheckRemoveHearthstone(name); err != nil {
		return Hearthstone{}, err
	}
	h, _, err := inv.take(name)
	return h, err
}

// take detaches a hearthstone from wherever it is and records where it was.
func (inv *Inventory) take(name string) (Hearthstone, Location, error) {
	loc, ok := inv.Locate(name)
	if !ok {
		return Hearthstone{}, Location{}, hearthstoneNotFound(name)
	}
	if !loc.Slotted() {
		h := inv.Hearthstones[name]
		delete(inv.Hearthstones, name)
		return h, loc, nil
	}
	sockets, _ := inv.socketsOf(*loc.Artifact)
	h, _, _ := sockets.Remove(name)
	return h, loc, nil
}

// restore undoes take exactly.
func (inv *Inventory) restore(h Hearthstone, loc Location) error {
	if !loc.Slotted() {
		if _, dup := inv.Hearthstones[h.Name]; dup {
			return rejection.Invariantf("hearthstone %q restored twice", h.Name)
		}
		inv.Hearthstones[h.Name] = h
		return nil
	}
	sockets, ok := inv.socketsOf(*loc.Artifact)
	if !ok {
		return rejection.Invariantf("artifact %s vanished while moving %q", loc.Artifact, h.Name)
	}
	return sockets.RestoreAt(loc.Slot, h)
}

// CheckSlotHearthstone reports whether the named hearthstone can be slotted
// into target.
func (inv *Inventory) CheckSlotHearthstone(target ArtifactID, name string) error {
	sockets, ok := inv.socketsOf(target)
	if !ok {
		return artifactNotFound(target)
	}
	if !inv.HasHearthstone(name) {
		return hearthstoneNotFound(name)
	}
	if sockets.Find(name) < 0 && sockets.Filled() == len(sockets) {
		return rejection.New(rejection.CodeHearthstoneAllSlotsFilled, "all hearthstone slots are filled").
			With("hearthstone", name).
			With("artifact", target.String()).
			With("slots", fmt.Sprint(len(sockets)))
	}
	return nil
}

// SlotHearthstone moves the named hearthstone into the first empty socket of
// target. The stone is detached from its current place first; if insertion
// fails it is put back exactly where it was before the error is returned.
func (inv *Inventory) SlotHearthstone(target ArtifactID, name string) error {
	dst, ok := inv.socketsOf(target)
	if !ok {
		return artifactNotFound(target)
	}
	stone, from, err := inv.take(name)
	if err != nil {
		return err
	}
	if _, err := dst.Insert(stone); err != nil {
		if rerr := inv.restore(stone, from); rerr != nil {
			return rerr
		}
		return err
	}
	return nil
}

// CheckUnslotHearthstone reports whether the named hearthstone is slotted.
func (inv *Inventory) CheckUnslotHearthstone(name string) error {
	loc, ok := inv.Locate(name)
	if !ok {
		return hearthstoneNotFound(name)
	}
	if !loc.Slotted() {
		return rejection.New(rejection.CodeHearthstoneNotSlotted, "hearthstone is not slotted").
			With("hearthstone", name)
	}
	return nil
}

// UnslotHearthstone returns a slotted hearthstone to the unslotted inventory.
// The socket is only emptied once the stone has a home.
func (inv *Inventory) UnslotHearthstone(name string) error {
	if err := inv.CheckUnslotHearthstone(name); err != nil {
		return err
	}
	loc, _ := inv.Locate(name)
	sockets, _ := inv.socketsOf(*loc.Artifact)
	inv.ensure()
	inv.Hearthstones[name] = *sockets[loc.Slot]
	sockets[loc.Slot] = nil
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
