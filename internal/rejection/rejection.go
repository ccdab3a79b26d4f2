// Package rejection defines the closed error taxonomy returned by every
// character mutation check.
//
// Rejections are ordinary values: a mutation that fails validation returns a
// *Error carrying a stable Code and leaves the character untouched. Internal
// bugs in the repair algorithms are reported separately as *InvariantError so
// callers can tell caller mistakes from engine faults.
package rejection

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Code categorizes a rejected mutation.
type Code string

const (
	CodeNameEmpty     Code = "NAME_EMPTY"
	CodeAmountInvalid Code = "AMOUNT_INVALID"
	CodeReadOnlyView  Code = "READ_ONLY_VIEW"

	CodeUnknownMutation Code = "UNKNOWN_MUTATION"
	CodePayloadInvalid  Code = "PAYLOAD_INVALID"
	CodeMemoInvalid     Code = "MEMO_INVALID"

	CodeUnknownAttribute        Code = "UNKNOWN_ATTRIBUTE"
	CodeAttributeDotsOutOfRange Code = "ATTRIBUTE_DOTS_OUT_OF_RANGE"
	CodeUnknownAbility          Code = "UNKNOWN_ABILITY"
	CodeAbilityDotsOutOfRange   Code = "ABILITY_DOTS_OUT_OF_RANGE"
	CodeSpecialtyZeroAbility    Code = "SPECIALTY_ZERO_ABILITY"
	CodeSpecialtyDuplicate      Code = "SPECIALTY_DUPLICATE"
	CodeSpecialtyNotFound       Code = "SPECIALTY_NOT_FOUND"
	CodeCraftNotFound           Code = "CRAFT_NOT_FOUND"
	CodeMartialArtsNotFound     Code = "MARTIAL_ARTS_STYLE_NOT_FOUND"
	CodeMartialArtsDuplicate    Code = "MARTIAL_ARTS_STYLE_DUPLICATE"

	CodeWillpowerOutOfRange Code = "WILLPOWER_OUT_OF_RANGE"
	CodeHealthTrackInvalid  Code = "HEALTH_TRACK_INVALID"
	CodeDamageTypeInvalid   Code = "DAMAGE_TYPE_INVALID"

	CodeExperienceInsufficient Code = "EXPERIENCE_INSUFFICIENT"

	CodeExaltOnly          Code = "EXALT_ONLY"
	CodeSolarOnly          Code = "SOLAR_ONLY"
	CodeCasteMismatch      Code = "CASTE_MISMATCH"
	CodeSolarTraitsInvalid Code = "SOLAR_TRAITS_INVALID"
	CodeLimitOutOfRange    Code = "LIMIT_OUT_OF_RANGE"

	CodeEssenceRatingOutOfRange Code = "ESSENCE_RATING_OUT_OF_RANGE"
	CodeInsufficientMotes       Code = "INSUFFICIENT_MOTES"
	CodeMotePoolInvalid         Code = "MOTE_POOL_INVALID"
	CodeCommitmentNotFound      Code = "COMMITMENT_NOT_FOUND"
	CodeCommitmentDuplicate     Code = "COMMITMENT_DUPLICATE"

	CodeCharmNotFound           Code = "CHARM_NOT_FOUND"
	CodeCharmDuplicate          Code = "CHARM_DUPLICATE"
	CodeCharmPrerequisitesUnmet Code = "CHARM_PREREQUISITES_UNMET"
	CodeEvocationSourceNotFound Code = "EVOCATION_SOURCE_NOT_FOUND"

	CodeWeaponNotFound        Code = "WEAPON_NOT_FOUND"
	CodeWeaponDuplicate       Code = "WEAPON_DUPLICATE"
	CodeWeaponNotEquippable   Code = "WEAPON_NOT_EQUIPPABLE"
	CodeWeaponNotEquipped     Code = "WEAPON_NOT_EQUIPPED"
	CodeWeaponAlreadyEquipped Code = "WEAPON_ALREADY_EQUIPPED"
	CodeWeaponInvalid         Code = "WEAPON_INVALID"

	CodeArmorNotFound    Code = "ARMOR_NOT_FOUND"
	CodeArmorDuplicate   Code = "ARMOR_DUPLICATE"
	CodeArmorNotEquipped Code = "ARMOR_NOT_EQUIPPED"
	CodeArmorInvalid     Code = "ARMOR_INVALID"

	CodeArtifactNotFound       Code = "ARTIFACT_NOT_FOUND"
	CodeArtifactDuplicate      Code = "DUPLICATE_ARTIFACT"
	CodeArtifactInvalid        Code = "ARTIFACT_INVALID"
	CodeArtifactNotAttunable   Code = "ARTIFACT_NOT_ATTUNABLE"
	CodeArtifactAlreadyAttuned Code = "ARTIFACT_ALREADY_ATTUNED"
	CodeArtifactNotAttuned     Code = "ARTIFACT_NOT_ATTUNED"

	CodeHearthstoneNotFound       Code = "HEARTHSTONE_NOT_FOUND"
	CodeHearthstoneDuplicate      Code = "HEARTHSTONE_DUPLICATE"
	CodeHearthstoneNotSlotted     Code = "HEARTHSTONE_NOT_SLOTTED"
	CodeHearthstoneAllSlotsFilled Code = "HEARTHSTONE_ALL_SLOTS_FILLED"

	CodeMeritNotFound     Code = "MERIT_NOT_FOUND"
	CodeMeritDuplicate    Code = "MERIT_DUPLICATE"
	CodeMeritDotsInvalid  Code = "MERIT_DOTS_INVALID"
	CodeFlawNotFound      Code = "FLAW_NOT_FOUND"
	CodeFlawDuplicate     Code = "FLAW_DUPLICATE"
	CodeLanguageNotFound  Code = "LANGUAGE_NOT_FOUND"
	CodeLanguageDuplicate Code = "LANGUAGE_DUPLICATE"
	CodeLanguageNative    Code = "LANGUAGE_NATIVE"

	CodeSorceryNotFound               Code = "SORCERY_NOT_FOUND"
	CodeSorceryCircleOrder            Code = "SORCERY_CIRCLE_ORDER"
	CodeSorceryPrerequisitesUnmet     Code = "SORCERY_PREREQUISITES_UNMET"
	CodeSorceryMissingArchetype       Code = "SORCERY_MISSING_ARCHETYPE"
	CodeSorceryDuplicateShapingRitual Code = "SORCERY_DUPLICATE_SHAPING_RITUAL"
	CodeSorceryShapingRitualNotFound  Code = "SORCERY_SHAPING_RITUAL_NOT_FOUND"
	CodeSorceryRemoveRequiredRitual   Code = "SORCERY_REMOVE_REQUIRED_RITUAL"
	CodeSorceryRemoveControlSpell     Code = "SORCERY_REMOVE_CONTROL_SPELL"
	CodeSpellDuplicate                Code = "SPELL_DUPLICATE"
	CodeSpellNotFound                 Code = "SPELL_NOT_FOUND"
)

// Error is a rejected mutation.
type Error struct {
	// Code identifies the rejection category.
	Code Code

	// Message is a human-readable description.
	Message string

	// Details contains structured context (entity names, requested values).
	Details map[string]string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	keys := make([]string, 0, len(e.Details))
	for k := range e.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + e.Details[k]
	}
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, strings.Join(parts, ", "))
}

// With returns a copy of e carrying an extra detail.
func (e *Error) With(key, value string) *Error {
	details := make(map[string]string, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &Error{Code: e.Code, Message: e.Message, Details: details}
}

// New creates a rejection with a fixed message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a rejection with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Is reports whether err is a rejection with the given code.
// Uses errors.As to handle wrapped errors.
func Is(err error, code Code) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// CodeOf returns the rejection code carried by err, or "" if err is not a rejection.
func CodeOf(err error) Code {
	var re *Error
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

// InvariantError reports a broken internal invariant. It indicates a bug in a
// repair algorithm rather than a caller mistake and is never produced by a
// check.
type InvariantError struct {
	Message string
}

func (e *InvariantError) Error() string {
	return "invariant violated: " + e.Message
}

// Invariantf creates an InvariantError with a formatted message.
func Invariantf(format string, args ...any) *InvariantError {
	return &InvariantError{Message: fmt.Sprintf(format, args...)}
}

// IsInvariant reports whether err is (or wraps) an InvariantError.
func IsInvariant(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}
