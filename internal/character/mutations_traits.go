package character

import (
	"fmt"
	"slices"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/charsheet/internal/gear"
	"github.com/roach88/charsheet/internal/rejection"
)

// Identity.

// SetName renames the character.
type SetName struct {
	Name string `json:"name" yaml:"name"`
}

func (SetName) Type() Type { return TypeSetName }

func (s SetName) check(*Memo) error {
	if s.Name == "" {
		return rejection.New(rejection.CodeNameEmpty, "character name is required")
	}
	return nil
}

func (s SetName) apply(m *Memo) error {
	m.Name = norm.NFC.String(s.Name)
	return nil
}

// SetConcept sets the one-line character concept.
type SetConcept struct {
	Concept string `json:"concept" yaml:"concept"`
}

func (SetConcept) Type() Type { return TypeSetConcept }

func (s SetConcept) check(*Memo) error {
	if s.Concept == "" {
		return rejection.New(rejection.CodeNameEmpty, "concept is required; use remove_concept to clear it")
	}
	return nil
}

func (s SetConcept) apply(m *Memo) error {
	m.Concept = norm.NFC.String(s.Concept)
	return nil
}

// RemoveConcept clears the concept.
type RemoveConcept struct{}

func (RemoveConcept) Type() Type { return TypeRemoveConcept }

func (RemoveConcept) check(*Memo) error { return nil }

func (RemoveConcept) apply(m *Memo) error {
	m.Concept = ""
	return nil
}

// Attributes and abilities.

// SetAttribute sets one attribute to 1..5 dots.
type SetAttribute struct {
	Attribute Attribute `json:"attribute" yaml:"attribute"`
	Dots      int       `json:"dots" yaml:"dots"`
}

func (SetAttribute) Type() Type { return TypeSetAttribute }

func (s SetAttribute) check(*Memo) error {
	if !s.Attribute.Valid() {
		return rejection.Newf(rejection.CodeUnknownAttribute, "unknown attribute %q", s.Attribute)
	}
	return checkDots(rejection.CodeAttributeDotsOutOfRange, string(s.Attribute), s.Dots, MinAttributeDots)
}

func (s SetAttribute) apply(m *Memo) error {
	m.Attributes[s.Attribute] = s.Dots
	return nil
}

func checkAbility(a Ability) error {
	if !a.Valid() {
		return rejection.Newf(rejection.CodeUnknownAbility, "unknown ability %q", a)
	}
	return nil
}

// SetAbility sets one ability to 0..5 dots. Dropping to zero erases its
// specialties.
type SetAbility struct {
	Ability Ability `json:"ability" yaml:"ability"`
	Dots    int     `json:"dots" yaml:"dots"`
}

func (SetAbility) Type() Type { return TypeSetAbility }

func (s SetAbility) check(*Memo) error {
	if err := checkAbility(s.Ability); err != nil {
		return err
	}
	return checkDots(rejection.CodeAbilityDotsOutOfRange, string(s.Ability), s.Dots, 0)
}

func (s SetAbility) apply(m *Memo) error {
	r := m.Abilities[s.Ability]
	r.setDots(s.Dots)
	m.Abilities[s.Ability] = r
	return nil
}

// AddSpecialty adds a specialty to a rated ability.
type AddSpecialty struct {
	Ability   Ability `json:"ability" yaml:"ability"`
	Specialty string  `json:"specialty" yaml:"specialty"`
}

func (AddSpecialty) Type() Type { return TypeAddSpecialty }

func (s AddSpecialty) check(m *Memo) error {
	if err := checkAbility(s.Ability); err != nil {
		return err
	}
	return m.Abilities[s.Ability].checkAddSpecialty(string(s.Ability), s.Specialty)
}

func (s AddSpecialty) apply(m *Memo) error {
	r := m.Abilities[s.Ability]
	r.addSpecialty(s.Specialty)
	m.Abilities[s.Ability] = r
	return nil
}

// RemoveSpecialty removes a specialty from an ability.
type RemoveSpecialty struct {
	Ability   Ability `json:"ability" yaml:"ability"`
	Specialty string  `json:"specialty" yaml:"specialty"`
}

func (RemoveSpecialty) Type() Type { return TypeRemoveSpecialty }

func (s RemoveSpecialty) check(m *Memo) error {
	if err := checkAbility(s.Ability); err != nil {
		return err
	}
	return m.Abilities[s.Ability].checkRemoveSpecialty(string(s.Ability), s.Specialty)
}

func (s RemoveSpecialty) apply(m *Memo) error {
	r := m.Abilities[s.Ability]
	r.removeSpecialty(s.Specialty)
	m.Abilities[s.Ability] = r
	return nil
}

// Craft.

// SetCraftDots rates a craft focus. Zero dots forgets the focus.
type SetCraftDots struct {
	Focus string `json:"focus" yaml:"focus"`
	Dots  int    `json:"dots" yaml:"dots"`
}

func (SetCraftDots) Type() Type { return TypeSetCraftDots }

func (s SetCraftDots) check(*Memo) error {
	focus := craftFocus(s.Focus)
	if focus == "" {
		return rejection.New(rejection.CodeNameEmpty, "craft focus is required")
	}
	return checkDots(rejection.CodeAbilityDotsOutOfRange, "craft:"+focus, s.Dots, 0)
}

func (s SetCraftDots) apply(m *Memo) error {
	focus := craftFocus(s.Focus)
	if s.Dots == 0 {
		delete(m.Crafts, focus)
		return nil
	}
	r := m.Crafts[focus]
	r.setDots(s.Dots)
	m.Crafts[focus] = r
	return nil
}

// craftFocus is the NFC form under which a focus is stored.
func craftFocus(focus string) string {
	return norm.NFC.String(focus)
}

func craftOf(m *Memo, focus string) (Rating, error) {
	focus = craftFocus(focus)
	r, ok := m.Crafts[focus]
	if !ok {
		return Rating{}, rejection.New(rejection.CodeCraftNotFound, "craft focus not found").With("craft", focus)
	}
	return r, nil
}

// AddCraftSpecialty adds a specialty to a craft focus.
type AddCraftSpecialty struct {
	Focus     string `json:"focus" yaml:"focus"`
	Specialty string `json:"specialty" yaml:"specialty"`
}

func (AddCraftSpecialty) Type() Type { return TypeAddCraftSpecialty }

func (s AddCraftSpecialty) check(m *Memo) error {
	r, err := craftOf(m, s.Focus)
	if err != nil {
		return err
	}
	return r.checkAddSpecialty("craft:"+s.Focus, s.Specialty)
}

func (s AddCraftSpecialty) apply(m *Memo) error {
	focus := craftFocus(s.Focus)
	r := m.Crafts[focus]
	r.addSpecialty(s.Specialty)
	m.Crafts[focus] = r
	return nil
}

// RemoveCraftSpecialty removes a specialty from a craft focus.
type RemoveCraftSpecialty struct {
	Focus     string `json:"focus" yaml:"focus"`
	Specialty string `json:"specialty" yaml:"specialty"`
}

func (RemoveCraftSpecialty) Type() Type { return TypeRemoveCraftSpecialty }

func (s RemoveCraftSpecialty) check(m *Memo) error {
	r, err := craftOf(m, s.Focus)
	if err != nil {
		return err
	}
	return r.checkRemoveSpecialty("craft:"+s.Focus, s.Specialty)
}

func (s RemoveCraftSpecialty) apply(m *Memo) error {
	focus := craftFocus(s.Focus)
	r := m.Crafts[focus]
	r.removeSpecialty(s.Specialty)
	m.Crafts[focus] = r
	return nil
}

// Martial arts.

func styleOf(m *Memo, name string) (MartialArtsRating, error) {
	ma, ok := m.MartialArts[name]
	if !ok {
		return MartialArtsRating{}, rejection.New(rejection.CodeMartialArtsNotFound, "martial arts style not known").
			With("style", name)
	}
	return ma, nil
}

// AddMartialArtsStyle learns a style. It requires at least one dot of Brawl.
type AddMartialArtsStyle struct {
	Style MartialArtsStyle `json:"style" yaml:"style"`
	Dots  int              `json:"dots" yaml:"dots"`
}

func (AddMartialArtsStyle) Type() Type { return TypeAddMartialArtsStyle }

func (s AddMartialArtsStyle) check(m *Memo) error {
	if s.Style.Name == "" {
		return rejection.New(rejection.CodeNameEmpty, "martial arts style name is required")
	}
	if _, ok := m.MartialArts[s.Style.Name]; ok {
		return rejection.New(rejection.CodeMartialArtsDuplicate, "martial arts style already known").
			With("style", s.Style.Name)
	}
	if m.Abilities[Brawl].Dots < 1 {
		return rejection.New(rejection.CodeAbilityDotsOutOfRange, "martial arts requires at least one dot of brawl").
			With("style", s.Style.Name)
	}
	return checkDots(rejection.CodeAbilityDotsOutOfRange, "martial_arts:"+s.Style.Name, s.Dots, 0)
}

func (s AddMartialArtsStyle) apply(m *Memo) error {
	ma := MartialArtsRating{Style: s.Style, Rating: Rating{Dots: s.Dots}}
	m.MartialArts[s.Style.Name] = ma.clone()
	return nil
}

// RemoveMartialArtsStyle forgets a style; repair drops its charms.
type RemoveMartialArtsStyle struct {
	Name string `json:"name" yaml:"name"`
}

func (RemoveMartialArtsStyle) Type() Type { return TypeRemoveMartialArtsStyle }

func (s RemoveMartialArtsStyle) check(m *Memo) error {
	_, err := styleOf(m, s.Name)
	return err
}

func (s RemoveMartialArtsStyle) apply(m *Memo) error {
	delete(m.MartialArts, s.Name)
	return nil
}

// SetMartialArtsDots rates a known style. Zero keeps the style but erases
// its specialties.
type SetMartialArtsDots struct {
	Style string `json:"style" yaml:"style"`
	Dots  int    `json:"dots" yaml:"dots"`
}

func (SetMartialArtsDots) Type() Type { return TypeSetMartialArtsDots }

func (s SetMartialArtsDots) check(m *Memo) error {
	if _, err := styleOf(m, s.Style); err != nil {
		return err
	}
	return checkDots(rejection.CodeAbilityDotsOutOfRange, "martial_arts:"+s.Style, s.Dots, 0)
}

func (s SetMartialArtsDots) apply(m *Memo) error {
	ma := m.MartialArts[s.Style]
	ma.Rating.setDots(s.Dots)
	m.MartialArts[s.Style] = ma
	return nil
}

// AddMartialArtsSpecialty adds a specialty to a rated style.
type AddMartialArtsSpecialty struct {
	Style     string `json:"style" yaml:"style"`
	Specialty string `json:"specialty" yaml:"specialty"`
}

func (AddMartialArtsSpecialty) Type() Type { return TypeAddMartialArtsSpecialty }

func (s AddMartialArtsSpecialty) check(m *Memo) error {
	ma, err := styleOf(m, s.Style)
	if err != nil {
		return err
	}
	return ma.Rating.checkAddSpecialty("martial_arts:"+s.Style, s.Specialty)
}

func (s AddMartialArtsSpecialty) apply(m *Memo) error {
	ma := m.MartialArts[s.Style]
	ma.Rating.addSpecialty(s.Specialty)
	m.MartialArts[s.Style] = ma
	return nil
}

// RemoveMartialArtsSpecialty removes a specialty from a style.
type RemoveMartialArtsSpecialty struct {
	Style     string `json:"style" yaml:"style"`
	Specialty string `json:"specialty" yaml:"specialty"`
}

func (RemoveMartialArtsSpecialty) Type() Type { return TypeRemoveMartialArtsSpecialty }

func (s RemoveMartialArtsSpecialty) check(m *Memo) error {
	ma, err := styleOf(m, s.Style)
	if err != nil {
		return err
	}
	return ma.Rating.checkRemoveSpecialty("martial_arts:"+s.Style, s.Specialty)
}

func (s RemoveMartialArtsSpecialty) apply(m *Memo) error {
	ma := m.MartialArts[s.Style]
	ma.Rating.removeSpecialty(s.Specialty)
	m.MartialArts[s.Style] = ma
	return nil
}

// Willpower and health.

// SetWillpowerRating sets permanent willpower and refills current willpower
// to match.
type SetWillpowerRating struct {
	Dots int `json:"dots" yaml:"dots"`
}

func (SetWillpowerRating) Type() Type { return TypeSetWillpowerRating }

func (s SetWillpowerRating) check(*Memo) error {
	if s.Dots < MinWillpower || s.Dots > MaxWillpower {
		return rejection.Newf(rejection.CodeWillpowerOutOfRange,
			"willpower rating must be between %d and %d", MinWillpower, MaxWillpower).
			With("dots", fmt.Sprint(s.Dots))
	}
	return nil
}

func (s SetWillpowerRating) apply(m *Memo) error {
	m.Willpower = Willpower{Current: s.Dots, Rating: s.Dots}
	return nil
}

// SetCurrentWillpower sets spendable willpower, 0..10.
type SetCurrentWillpower struct {
	Amount int `json:"amount" yaml:"amount"`
}

func (SetCurrentWillpower) Type() Type { return TypeSetCurrentWillpower }

func (s SetCurrentWillpower) check(*Memo) error {
	if s.Amount < 0 || s.Amount > MaxCurrentWillpower {
		return rejection.Newf(rejection.CodeWillpowerOutOfRange,
			"current willpower must be between 0 and %d", MaxCurrentWillpower).
			With("amount", fmt.Sprint(s.Amount))
	}
	return nil
}

func (s SetCurrentWillpower) apply(m *Memo) error {
	m.Willpower.Current = s.Amount
	return nil
}

// SetWoundPenalties replaces the health track. Damage that no longer fits
// is shed, least severe first.
type SetWoundPenalties struct {
	Penalties []WoundPenalty `json:"penalties" yaml:"penalties"`
}

func (SetWoundPenalties) Type() Type { return TypeSetWoundPenalties }

func (s SetWoundPenalties) check(*Memo) error {
	return checkWoundPenalties(s.Penalties)
}

func (s SetWoundPenalties) apply(m *Memo) error {
	m.Health.setTrack(s.Penalties)
	return nil
}

// TakeDamage marks health boxes.
type TakeDamage struct {
	DamageType gear.DamageType `json:"damage_type" yaml:"damage_type"`
	Amount     int             `json:"amount" yaml:"amount"`
}

func (TakeDamage) Type() Type { return TypeTakeDamage }

func (s TakeDamage) check(*Memo) error {
	if !s.DamageType.Valid() {
		return rejection.Newf(rejection.CodeDamageTypeInvalid, "unknown damage type %q", s.DamageType)
	}
	return checkAmount(s.Amount)
}

func (s TakeDamage) apply(m *Memo) error {
	m.Health.takeDamage(s.DamageType, s.Amount)
	return nil
}

// HealDamage clears health boxes, bashing first.
type HealDamage struct {
	Amount int `json:"amount" yaml:"amount"`
}

func (HealDamage) Type() Type { return TypeHealDamage }

func (s HealDamage) check(*Memo) error { return checkAmount(s.Amount) }

func (s HealDamage) apply(m *Memo) error {
	m.Health.heal(s.Amount)
	return nil
}

// Experience.

// GainExperience adds standard experience.
type GainExperience struct {
	Amount int `json:"amount" yaml:"amount"`
}

func (GainExperience) Type() Type { return TypeGainExperience }

func (s GainExperience) check(*Memo) error { return checkAmount(s.Amount) }

func (s GainExperience) apply(m *Memo) error {
	m.Experience.Standard.gain(s.Amount)
	return nil
}

// SpendExperience spends standard experience.
type SpendExperience struct {
	Amount int `json:"amount" yaml:"amount"`
}

func (SpendExperience) Type() Type { return TypeSpendExperience }

func (s SpendExperience) check(m *Memo) error {
	if err := checkAmount(s.Amount); err != nil {
		return err
	}
	return m.Experience.Standard.checkSpend("standard", s.Amount)
}

func (s SpendExperience) apply(m *Memo) error {
	m.Experience.Standard.Current -= s.Amount
	return nil
}

// GainExaltExperience adds exalt experience. Exalt only.
type GainExaltExperience struct {
	Amount int `json:"amount" yaml:"amount"`
}

func (GainExaltExperience) Type() Type { return TypeGainExaltExperience }

func (s GainExaltExperience) check(m *Memo) error {
	if _, err := exaltOf(m, s.Type()); err != nil {
		return err
	}
	return checkAmount(s.Amount)
}

func (s GainExaltExperience) apply(m *Memo) error {
	m.Experience.Exalt.gain(s.Amount)
	return nil
}

// SpendExaltExperience spends exalt experience. Exalt only.
type SpendExaltExperience struct {
	Amount int `json:"amount" yaml:"amount"`
}

func (SpendExaltExperience) Type() Type { return TypeSpendExaltExperience }

func (s SpendExaltExperience) check(m *Memo) error {
	if _, err := exaltOf(m, s.Type()); err != nil {
		return err
	}
	if err := checkAmount(s.Amount); err != nil {
		return err
	}
	return m.Experience.Exalt.checkSpend("exalt", s.Amount)
}

func (s SpendExaltExperience) apply(m *Memo) error {
	m.Experience.Exalt.Current -= s.Amount
	return nil
}

// Merits and flaws.

// AddMerit adds a merit under a caller-chosen identifier.
type AddMerit struct {
	ID    string `json:"id" yaml:"id"`
	Merit Merit  `json:"merit" yaml:"merit"`
}

func (AddMerit) Type() Type { return TypeAddMerit }

func (s AddMerit) check(m *Memo) error {
	if s.ID == "" {
		return rejection.New(rejection.CodeNameEmpty, "merit identifier is required")
	}
	if _, ok := m.Merits[s.ID]; ok {
		return rejection.New(rejection.CodeMeritDuplicate, "merit identifier already used").With("merit", s.ID)
	}
	return s.Merit.validate()
}

func (s AddMerit) apply(m *Memo) error {
	m.Merits[s.ID] = s.Merit
	return nil
}

// RemoveMerit removes a merit by identifier.
type RemoveMerit struct {
	ID string `json:"id" yaml:"id"`
}

func (RemoveMerit) Type() Type { return TypeRemoveMerit }

func (s RemoveMerit) check(m *Memo) error {
	if _, ok := m.Merits[s.ID]; !ok {
		return rejection.New(rejection.CodeMeritNotFound, "merit not found").With("merit", s.ID)
	}
	return nil
}

func (s RemoveMerit) apply(m *Memo) error {
	delete(m.Merits, s.ID)
	return nil
}

// AddFlaw adds a flaw, keyed by name.
type AddFlaw struct {
	Flaw Flaw `json:"flaw" yaml:"flaw"`
}

func (AddFlaw) Type() Type { return TypeAddFlaw }

func (s AddFlaw) check(m *Memo) error {
	if s.Flaw.Name == "" {
		return rejection.New(rejection.CodeNameEmpty, "flaw name is required")
	}
	if _, ok := m.Flaws[s.Flaw.Name]; ok {
		return rejection.New(rejection.CodeFlawDuplicate, "flaw already present").With("flaw", s.Flaw.Name)
	}
	return nil
}

func (s AddFlaw) apply(m *Memo) error {
	m.Flaws[s.Flaw.Name] = s.Flaw
	return nil
}

// RemoveFlaw removes a flaw.
type RemoveFlaw struct {
	Name string `json:"name" yaml:"name"`
}

func (RemoveFlaw) Type() Type { return TypeRemoveFlaw }

func (s RemoveFlaw) check(m *Memo) error {
	if _, ok := m.Flaws[s.Name]; !ok {
		return rejection.New(rejection.CodeFlawNotFound, "flaw not found").With("flaw", s.Name)
	}
	return nil
}

func (s RemoveFlaw) apply(m *Memo) error {
	delete(m.Flaws, s.Name)
	return nil
}

// Languages.

// AddLanguage adds a spoken language.
type AddLanguage struct {
	Language string `json:"language" yaml:"language"`
}

func (AddLanguage) Type() Type { return TypeAddLanguage }

func (s AddLanguage) check(m *Memo) error {
	if s.Language == "" {
		return rejection.New(rejection.CodeNameEmpty, "language is required")
	}
	if m.Languages.Speaks(s.Language) {
		return rejection.New(rejection.CodeLanguageDuplicate, "language already spoken").
			With("language", s.Language)
	}
	return nil
}

func (s AddLanguage) apply(m *Memo) error {
	i, _ := slices.BinarySearch(m.Languages.Other, s.Language)
	m.Languages.Other = slices.Insert(m.Languages.Other, i, s.Language)
	return nil
}

// RemoveLanguage removes a non-native language.
type RemoveLanguage struct {
	Language string `json:"language" yaml:"language"`
}

func (RemoveLanguage) Type() Type { return TypeRemoveLanguage }

func (s RemoveLanguage) check(m *Memo) error {
	if s.Language == m.Languages.Native {
		return rejection.New(rejection.CodeLanguageNative, "the native language cannot be removed").
			With("language", s.Language)
	}
	if !m.Languages.Speaks(s.Language) {
		return rejection.New(rejection.CodeLanguageNotFound, "language not spoken").
			With("language", s.Language)
	}
	return nil
}

func (s RemoveLanguage) apply(m *Memo) error {
	if i, found := slices.BinarySearch(m.Languages.Other, s.Language); found {
		m.Languages.Other = slices.Delete(m.Languages.Other, i, i+1)
	}
	if len(m.Languages.Other) == 0 {
		m.Languages.Other = nil
	}
	return nil
}

// SetNativeLanguage replaces the native language. The new native language
// leaves the other languages if present; the old one is forgotten.
type SetNativeLanguage struct {
	Language string `json:"language" yaml:"language"`
}

func (SetNativeLanguage) Type() Type { return TypeSetNativeLanguage }

func (s SetNativeLanguage) check(*Memo) error {
	if s.Language == "" {
		return rejection.New(rejection.CodeNameEmpty, "language is required")
	}
	return nil
}

func (s SetNativeLanguage) apply(m *Memo) error {
	if i, found := slices.BinarySearch(m.Languages.Other, s.Language); found {
		m.Languages.Other = slices.Delete(m.Languages.Other, i, i+1)
	}
	if len(m.Languages.Other) == 0 {
		m.Languages.Other = nil
	}
	m.Languages.Native = s.Language
	return nil
}
