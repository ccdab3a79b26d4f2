package character

import (
	"fmt"
	"slices"

	"github.com/roach88/charsheet/internal/gear"
	"github.com/roach88/charsheet/internal/rejection"
)

// WoundPenalty is the dice penalty of one health box.
type WoundPenalty string

const (
	PenaltyZero          WoundPenalty = "zero"
	PenaltyMinusOne      WoundPenalty = "minus_one"
	PenaltyMinusTwo      WoundPenalty = "minus_two"
	PenaltyMinusFour     WoundPenalty = "minus_four"
	PenaltyIncapacitated WoundPenalty = "incapacitated"
)

// DefaultWoundPenalties is the starting health track.
var DefaultWoundPenalties = []WoundPenalty{
	PenaltyZero,
	PenaltyMinusOne, PenaltyMinusOne,
	PenaltyMinusTwo, PenaltyMinusTwo,
	PenaltyMinusFour,
	PenaltyIncapacitated,
}

func (p WoundPenalty) valid() bool {
	switch p {
	case PenaltyZero, PenaltyMinusOne, PenaltyMinusTwo, PenaltyMinusFour, PenaltyIncapacitated:
		return true
	}
	return false
}

// Health is the health track and the damage marked on it. Damage is filled
// aggravated first, then lethal, then bashing, from the left.
type Health struct {
	WoundPenalties []WoundPenalty `json:"wound_penalties" yaml:"wound_penalties"`
	Bashing        int            `json:"bashing" yaml:"bashing"`
	Lethal         int            `json:"lethal" yaml:"lethal"`
	Aggravated     int            `json:"aggravated" yaml:"aggravated"`
}

// NewHealth returns an undamaged default track.
func NewHealth() Health {
	return Health{WoundPenalties: slices.Clone(DefaultWoundPenalties)}
}

func (h Health) clone() Health {
	h.WoundPenalties = slices.Clone(h.WoundPenalties)
	return h
}

// checkWoundPenalties accepts a track that ends in exactly one
// incapacitated box.
func checkWoundPenalties(track []WoundPenalty) error {
	if len(track) == 0 || track[len(track)-1] != PenaltyIncapacitated {
		return rejection.New(rejection.CodeHealthTrackInvalid, "health track must end in an incapacitated box")
	}
	for i, p := range track {
		if !p.valid() {
			return rejection.Newf(rejection.CodeHealthTrackInvalid, "unknown wound penalty %q", p)
		}
		if p == PenaltyIncapacitated && i != len(track)-1 {
			return rejection.New(rejection.CodeHealthTrackInvalid, "only the last box may be incapacitated")
		}
	}
	return nil
}

// Boxes is the length of the track.
func (h Health) Boxes() int {
	return len(h.WoundPenalties)
}

// Damaged is the number of marked boxes.
func (h Health) Damaged() int {
	return h.Bashing + h.Lethal + h.Aggravated
}

// Penalty returns the penalty of the rightmost damaged box, or zero when
// undamaged.
func (h Health) Penalty() WoundPenalty {
	d := h.Damaged()
	if d == 0 {
		return PenaltyZero
	}
	return h.WoundPenalties[min(d, len(h.WoundPenalties))-1]
}

func (h Health) validate() error {
	if err := checkWoundPenalties(h.WoundPenalties); err != nil {
		return err
	}
	if h.Bashing < 0 || h.Lethal < 0 || h.Aggravated < 0 || h.Damaged() > h.Boxes() {
		return rejection.New(rejection.CodeMemoInvalid, "damage does not fit the health track").
			With("damaged", fmt.Sprint(h.Damaged())).
			With("boxes", fmt.Sprint(h.Boxes()))
	}
	return nil
}

// setTrack replaces the track and sheds the least severe damage that no
// longer fits.
func (h *Health) setTrack(track []WoundPenalty) {
	h.WoundPenalties = slices.Clone(track)
	over := h.Damaged() - h.Boxes()
	for _, level := range []*int{&h.Bashing, &h.Lethal, &h.Aggravated} {
		if over <= 0 {
			break
		}
		shed := min(*level, over)
		*level -= shed
		over -= shed
	}
}

// takeDamage marks amount boxes of damage. Once the track is full, each
// further point upgrades one bashing box to lethal; damage beyond an all
// lethal or aggravated track is lost.
func (h *Health) takeDamage(kind gear.DamageType, amount int) {
	for i := 0; i < amount; i++ {
		if h.Damaged() < h.Boxes() {
			switch kind {
			case gear.Bashing:
				h.Bashing++
			case gear.Lethal:
				h.Lethal++
			case gear.Aggravated:
				h.Aggravated++
			}
			continue
		}
		if h.Bashing == 0 {
			return
		}
		h.Bashing--
		if kind == gear.Aggravated {
			h.Aggravated++
		} else {
			h.Lethal++
		}
	}
}

// heal removes amount boxes, bashing first.
func (h *Health) heal(amount int) {
	for _, level := range []*int{&h.Bashing, &h.Lethal, &h.Aggravated} {
		healed := min(*level, amount)
		*level -= healed
		amount -= healed
	}
}
