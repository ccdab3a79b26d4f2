package character

import (
	"fmt"
	"sort"

	"github.com/roach88/charsheet/internal/rejection"
)

// Type is the stable tag of a mutation variant. It is what the codec, the
// store and scenario files use to name a mutation.
type Type string

// Mutation is one state change of a character. The set of mutations is
// closed: only this package implements it.
//
// check reports whether the mutation is legal against m and must not modify
// m. apply performs the edit; it is only ever called on a scratch memo
// after check succeeded, and re-runs the same validation through the
// sub-ledger mutators it delegates to.
type Mutation interface {
	Type() Type
	check(m *Memo) error
	apply(m *Memo) error
}

const (
	TypeSetName                    Type = "set_name"
	TypeSetConcept                 Type = "set_concept"
	TypeRemoveConcept              Type = "remove_concept"
	TypeSetAttribute               Type = "set_attribute"
	TypeSetAbility                 Type = "set_ability"
	TypeAddSpecialty               Type = "add_specialty"
	TypeRemoveSpecialty            Type = "remove_specialty"
	TypeSetCraftDots               Type = "set_craft_dots"
	TypeAddCraftSpecialty          Type = "add_craft_specialty"
	TypeRemoveCraftSpecialty       Type = "remove_craft_specialty"
	TypeAddMartialArtsStyle        Type = "add_martial_arts_style"
	TypeRemoveMartialArtsStyle     Type = "remove_martial_arts_style"
	TypeSetMartialArtsDots         Type = "set_martial_arts_dots"
	TypeAddMartialArtsSpecialty    Type = "add_martial_arts_specialty"
	TypeRemoveMartialArtsSpecialty Type = "remove_martial_arts_specialty"
	TypeSetWillpowerRating         Type = "set_willpower_rating"
	TypeSetCurrentWillpower        Type = "set_current_willpower"
	TypeSetWoundPenalties          Type = "set_wound_penalties"
	TypeTakeDamage                 Type = "take_damage"
	TypeHealDamage                 Type = "heal_damage"
	TypeGainExperience             Type = "gain_experience"
	TypeSpendExperience            Type = "spend_experience"
	TypeGainExaltExperience        Type = "gain_exalt_experience"
	TypeSpendExaltExperience       Type = "spend_exalt_experience"
	TypeAddMerit                   Type = "add_merit"
	TypeRemoveMerit                Type = "remove_merit"
	TypeAddFlaw                    Type = "add_flaw"
	TypeRemoveFlaw                 Type = "remove_flaw"
	TypeAddLanguage                Type = "add_language"
	TypeRemoveLanguage             Type = "remove_language"
	TypeSetNativeLanguage          Type = "set_native_language"

	TypeSetMortal        Type = "set_mortal"
	TypeSetSolar         Type = "set_solar"
	TypeSetEssenceRating Type = "set_essence_rating"
	TypeSpendMotes       Type = "spend_motes"
	TypeCommitMotes      Type = "commit_motes"
	TypeRecoverMotes     Type = "recover_motes"
	TypeUncommitMotes    Type = "uncommit_motes"
	TypeSetLimitTrigger  Type = "set_limit_trigger"
	TypeGainLimit        Type = "gain_limit"
	TypeReduceLimit      Type = "reduce_limit"

	TypeAddWeapon         Type = "add_weapon"
	TypeRemoveWeapon      Type = "remove_weapon"
	TypeEquipWeapon       Type = "equip_weapon"
	TypeUnequipWeapon     Type = "unequip_weapon"
	TypeAddArmor          Type = "add_armor"
	TypeRemoveArmor       Type = "remove_armor"
	TypeEquipArmor        Type = "equip_armor"
	TypeUnequipArmor      Type = "unequip_armor"
	TypeAddArtifact       Type = "add_artifact"
	TypeRemoveArtifact    Type = "remove_artifact"
	TypeAttuneArtifact    Type = "attune_artifact"
	TypeUnattuneArtifact  Type = "unattune_artifact"
	TypeAddHearthstone    Type = "add_hearthstone"
	TypeRemoveHearthstone Type = "remove_hearthstone"
	TypeSlotHearthstone   Type = "slot_hearthstone"
	TypeUnslotHearthstone Type = "unslot_hearthstone"

	TypeAddSolarCharm       Type = "add_solar_charm"
	TypeAddEvocation        Type = "add_evocation"
	TypeAddMartialArtsCharm Type = "add_martial_arts_charm"
	TypeAddEclipseCharm     Type = "add_eclipse_charm"
	TypeRemoveCharm         Type = "remove_charm"

	TypeAddSorceryCircle    Type = "add_sorcery_circle"
	TypeRemoveSorceryCircle Type = "remove_sorcery_circle"
	TypeAddShapingRitual    Type = "add_shaping_ritual"
	TypeRemoveShapingRitual Type = "remove_shaping_ritual"
	TypeAddSpell            Type = "add_spell"
	TypeRemoveSpell         Type = "remove_spell"
)

// decoders maps every type tag to the decoder of its payload.
var decoders = map[Type]func(payload []byte) (Mutation, error){
	TypeSetName:                    decodeAs[SetName],
	TypeSetConcept:                 decodeAs[SetConcept],
	TypeRemoveConcept:              decodeAs[RemoveConcept],
	TypeSetAttribute:               decodeAs[SetAttribute],
	TypeSetAbility:                 decodeAs[SetAbility],
	TypeAddSpecialty:               decodeAs[AddSpecialty],
	TypeRemoveSpecialty:            decodeAs[RemoveSpecialty],
	TypeSetCraftDots:               decodeAs[SetCraftDots],
	TypeAddCraftSpecialty:          decodeAs[AddCraftSpecialty],
	TypeRemoveCraftSpecialty:       decodeAs[RemoveCraftSpecialty],
	TypeAddMartialArtsStyle:        decodeAs[AddMartialArtsStyle],
	TypeRemoveMartialArtsStyle:     decodeAs[RemoveMartialArtsStyle],
	TypeSetMartialArtsDots:         decodeAs[SetMartialArtsDots],
	TypeAddMartialArtsSpecialty:    decodeAs[AddMartialArtsSpecialty],
	TypeRemoveMartialArtsSpecialty: decodeAs[RemoveMartialArtsSpecialty],
	TypeSetWillpowerRating:         decodeAs[SetWillpowerRating],
	TypeSetCurrentWillpower:        decodeAs[SetCurrentWillpower],
	TypeSetWoundPenalties:          decodeAs[SetWoundPenalties],
	TypeTakeDamage:                 decodeAs[TakeDamage],
	TypeHealDamage:                 decodeAs[HealDamage],
	TypeGainExperience:             decodeAs[GainExperience],
	TypeSpendExperience:            decodeAs[SpendExperience],
	TypeGainExaltExperience:        decodeAs[GainExaltExperience],
	TypeSpendExaltExperience:       decodeAs[SpendExaltExperience],
	TypeAddMerit:                   decodeAs[AddMerit],
	TypeRemoveMerit:                decodeAs[RemoveMerit],
	TypeAddFlaw:                    decodeAs[AddFlaw],
	TypeRemoveFlaw:                 decodeAs[RemoveFlaw],
	TypeAddLanguage:                decodeAs[AddLanguage],
	TypeRemoveLanguage:             decodeAs[RemoveLanguage],
	TypeSetNativeLanguage:          decodeAs[SetNativeLanguage],

	TypeSetMortal:        decodeAs[SetMortal],
	TypeSetSolar:         decodeAs[SetSolar],
	TypeSetEssenceRating: decodeAs[SetEssenceRating],
	TypeSpendMotes:       decodeAs[SpendMotes],
	TypeCommitMotes:      decodeAs[CommitMotes],
	TypeRecoverMotes:     decodeAs[RecoverMotes],
	TypeUncommitMotes:    decodeAs[UncommitMotes],
	TypeSetLimitTrigger:  decodeAs[SetLimitTrigger],
	TypeGainLimit:        decodeAs[GainLimit],
	TypeReduceLimit:      decodeAs[ReduceLimit],

	TypeAddWeapon:         decodeAs[AddWeapon],
	TypeRemoveWeapon:      decodeAs[RemoveWeapon],
	TypeEquipWeapon:       decodeAs[EquipWeapon],
	TypeUnequipWeapon:     decodeAs[UnequipWeapon],
	TypeAddArmor:          decodeAs[AddArmor],
	TypeRemoveArmor:       decodeAs[RemoveArmor],
	TypeEquipArmor:        decodeAs[EquipArmor],
	TypeUnequipArmor:      decodeAs[UnequipArmor],
	TypeAddArtifact:       decodeAs[AddArtifact],
	TypeRemoveArtifact:    decodeAs[RemoveArtifact],
	TypeAttuneArtifact:    decodeAs[AttuneArtifact],
	TypeUnattuneArtifact:  decodeAs[UnattuneArtifact],
	TypeAddHearthstone:    decodeAs[AddHearthstone],
	TypeRemoveHearthstone: decodeAs[RemoveHearthstone],
	TypeSlotHearthstone:   decodeAs[SlotHearthstone],
	TypeUnslotHearthstone: decodeAs[UnslotHearthstone],

	TypeAddSolarCharm:       decodeAs[AddSolarCharm],
	TypeAddEvocation:        decodeAs[AddEvocation],
	TypeAddMartialArtsCharm: decodeAs[AddMartialArtsCharm],
	TypeAddEclipseCharm:     decodeAs[AddEclipseCharm],
	TypeRemoveCharm:         decodeAs[RemoveCharm],

	TypeAddSorceryCircle:    decodeAs[AddSorceryCircle],
	TypeRemoveSorceryCircle: decodeAs[RemoveSorceryCircle],
	TypeAddShapingRitual:    decodeAs[AddShapingRitual],
	TypeRemoveShapingRitual: decodeAs[RemoveShapingRitual],
	TypeAddSpell:            decodeAs[AddSpell],
	TypeRemoveSpell:         decodeAs[RemoveSpell],
}

// Types returns every mutation type tag, sorted.
func Types() []Type {
	out := make([]Type, 0, len(decoders))
	for t := range decoders {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Known reports whether t names a mutation.
func Known(t Type) bool {
	_, ok := decoders[t]
	return ok
}

func unknownMutation(t Type) error {
	return rejection.Newf(rejection.CodeUnknownMutation, "unknown mutation type %q", t)
}

// checkAmount rejects negative quantities.
func checkAmount(amount int) error {
	if amount < 0 {
		return rejection.New(rejection.CodeAmountInvalid, "amount must not be negative").
			With("amount", fmt.Sprint(amount))
	}
	return nil
}

// exaltOf returns the Exalt data or an EXALT_ONLY rejection.
func exaltOf(m *Memo, t Type) (*Exalt, error) {
	ex := m.exalt()
	if ex == nil {
		return nil, rejection.New(rejection.CodeExaltOnly, "mutation requires an Exalt").
			With("mutation", string(t))
	}
	return ex, nil
}

// solarOf returns the Solar traits or a SOLAR_ONLY rejection. Mortals and
// other Exalts are both rejected as not Solar.
func solarOf(m *Memo, t Type) (*SolarTraits, error) {
	s := m.solar()
	if s == nil {
		return nil, rejection.New(rejection.CodeSolarOnly, "mutation requires a Solar").
			With("mutation", string(t))
	}
	return s, nil
}
