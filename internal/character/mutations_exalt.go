package character

import (
	"fmt"

	"github.com/roach88/charsheet/internal/charms"
	"github.com/roach88/charsheet/internal/essence"
	"github.com/roach88/charsheet/internal/rejection"
)

// SetMortal removes the exaltation along with its ledger, charms and exalt
// experience. Repair trims sorcery circles mortals cannot hold. A character
// that is already mortal rejects it.
type SetMortal struct{}

func (SetMortal) Type() Type { return TypeSetMortal }

func (SetMortal) check(m *Memo) error {
	_, err := exaltOf(m, TypeSetMortal)
	return err
}

func (SetMortal) apply(m *Memo) error {
	m.Exaltation = Exaltation{Kind: KindMortal}
	m.Experience.Exalt = ExperiencePool{}
	return nil
}

// SetSolar makes the character a Solar or replaces an existing Solar's
// traits. A new Solar starts at essence 1 with full pools; an existing
// Solar keeps its ledger and charms, subject to repair.
type SetSolar struct {
	Solar SolarTraits `json:"solar" yaml:"solar"`
}

func (SetSolar) Type() Type { return TypeSetSolar }

func (s SetSolar) check(m *Memo) error {
	if ex := m.exalt(); ex != nil && ex.Type != ExaltSolar {
		return rejection.New(rejection.CodeSolarOnly, "character is already a different kind of Exalt").
			With("exalt_type", string(ex.Type))
	}
	return s.Solar.Validate()
}

func (s SetSolar) apply(m *Memo) error {
	traits := s.Solar.clone()
	if ex := m.exalt(); ex != nil {
		ex.Solar = &traits
		return nil
	}
	ledger, err := essence.NewLedger(essence.MinRating, essence.SolarPools)
	if err != nil {
		return err
	}
	m.Exaltation = Exaltation{
		Kind: KindExalt,
		Exalt: &Exalt{
			Type:    ExaltSolar,
			Essence: ledger,
			Solar:   &traits,
			Charms:  charms.NewSet(),
		},
	}
	return nil
}

// SetEssenceRating changes the essence rating. Every commitment, including
// artifact attunements, is released and both pools are refilled to the new
// maximum.
type SetEssenceRating struct {
	Rating int `json:"rating" yaml:"rating"`
}

func (SetEssenceRating) Type() Type { return TypeSetEssenceRating }

func (s SetEssenceRating) check(m *Memo) error {
	if _, err := exaltOf(m, s.Type()); err != nil {
		return err
	}
	return essence.CheckRating(s.Rating)
}

func (s SetEssenceRating) apply(m *Memo) error {
	ex, err := exaltOf(m, s.Type())
	if err != nil {
		return err
	}
	return ex.Essence.SetRating(s.Rating, poolFormula(ex.Type))
}

// SpendMotes spends motes from the preferred pool first.
type SpendMotes struct {
	First  essence.Pool `json:"first" yaml:"first"`
	Amount int          `json:"amount" yaml:"amount"`
}

func (SpendMotes) Type() Type { return TypeSpendMotes }

func (s SpendMotes) check(m *Memo) error {
	ex, err := exaltOf(m, s.Type())
	if err != nil {
		return err
	}
	return ex.Essence.CheckSpend(s.First, s.Amount)
}

func (s SpendMotes) apply(m *Memo) error {
	ex, err := exaltOf(m, s.Type())
	if err != nil {
		return err
	}
	return ex.Essence.Spend(s.First, s.Amount)
}

// CommitMotes commits motes to a named ongoing effect under a unique
// identifier.
type CommitMotes struct {
	ID     string       `json:"id" yaml:"id"`
	Name   string       `json:"name" yaml:"name"`
	First  essence.Pool `json:"first" yaml:"first"`
	Amount int          `json:"amount" yaml:"amount"`
}

func (CommitMotes) Type() Type { return TypeCommitMotes }

func (s CommitMotes) check(m *Memo) error {
	ex, err := exaltOf(m, s.Type())
	if err != nil {
		return err
	}
	return ex.Essence.CheckCommit(s.ID, s.Name, s.First, s.Amount)
}

func (s CommitMotes) apply(m *Memo) error {
	ex, err := exaltOf(m, s.Type())
	if err != nil {
		return err
	}
	return ex.Essence.Commit(s.ID, s.Name, s.First, s.Amount)
}

// RecoverMotes recovers spent motes, peripheral first.
type RecoverMotes struct {
	Amount int `json:"amount" yaml:"amount"`
}

func (RecoverMotes) Type() Type { return TypeRecoverMotes }

func (s RecoverMotes) check(m *Memo) error {
	ex, err := exaltOf(m, s.Type())
	if err != nil {
		return err
	}
	return ex.Essence.CheckRecover(s.Amount)
}

func (s RecoverMotes) apply(m *Memo) error {
	ex, err := exaltOf(m, s.Type())
	if err != nil {
		return err
	}
	return ex.Essence.Recover(s.Amount)
}

// UncommitMotes ends a commitment; its motes become spent.
type UncommitMotes struct {
	ID string `json:"id" yaml:"id"`
}

func (UncommitMotes) Type() Type { return TypeUncommitMotes }

func (s UncommitMotes) check(m *Memo) error {
	ex, err := exaltOf(m, s.Type())
	if err != nil {
		return err
	}
	return ex.Essence.CheckUncommit(s.ID)
}

func (s UncommitMotes) apply(m *Memo) error {
	ex, err := exaltOf(m, s.Type())
	if err != nil {
		return err
	}
	_, err = ex.Essence.Uncommit(s.ID)
	return err
}

// SetLimitTrigger sets the Solar's limit break trigger.
type SetLimitTrigger struct {
	Trigger string `json:"trigger" yaml:"trigger"`
}

func (SetLimitTrigger) Type() Type { return TypeSetLimitTrigger }

func (s SetLimitTrigger) check(m *Memo) error {
	_, err := solarOf(m, s.Type())
	return err
}

func (s SetLimitTrigger) apply(m *Memo) error {
	solar, err := solarOf(m, s.Type())
	if err != nil {
		return err
	}
	solar.Limit.Trigger = s.Trigger
	return nil
}

// GainLimit adds limit. The track may not pass 10.
type GainLimit struct {
	Amount int `json:"amount" yaml:"amount"`
}

func (GainLimit) Type() Type { return TypeGainLimit }

func (s GainLimit) check(m *Memo) error {
	solar, err := solarOf(m, s.Type())
	if err != nil {
		return err
	}
	if err := checkAmount(s.Amount); err != nil {
		return err
	}
	return checkLimit(solar.Limit.Track + s.Amount)
}

func (s GainLimit) apply(m *Memo) error {
	solar, err := solarOf(m, s.Type())
	if err != nil {
		return err
	}
	solar.Limit.Track += s.Amount
	return nil
}

// ReduceLimit removes limit. The track may not go below 0.
type ReduceLimit struct {
	Amount int `json:"amount" yaml:"amount"`
}

func (ReduceLimit) Type() Type { return TypeReduceLimit }

func (s ReduceLimit) check(m *Memo) error {
	solar, err := solarOf(m, s.Type())
	if err != nil {
		return err
	}
	if err := checkAmount(s.Amount); err != nil {
		return err
	}
	if s.Amount > solar.Limit.Track {
		return rejection.New(rejection.CodeLimitOutOfRange, "limit cannot go below zero").
			With("limit", fmt.Sprint(solar.Limit.Track)).
			With("amount", fmt.Sprint(s.Amount))
	}
	return nil
}

func (s ReduceLimit) apply(m *Memo) error {
	solar, err := solarOf(m, s.Type())
	if err != nil {
		return err
	}
	solar.Limit.Track -= s.Amount
	return nil
}
