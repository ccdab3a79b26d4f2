// Package essence implements the mote ledger carried by every Exalted
// character.
//
// A ledger has two pools, peripheral and personal. Each pool tracks motes that
// are available and motes that are spent; committed motes are recorded per
// commitment and excluded from both. For every pool the identity
//
//	available + spent + committed == maximum(rating)
//
// holds after every operation. Each operation comes as a Check* predicate and
// a mutator that re-runs the same check before touching state.
package essence

import (
	"fmt"

	"github.com/roach88/charsheet/internal/rejection"
)

// MinRating and MaxRating bound the essence rating.
const (
	MinRating = 1
	MaxRating = 5
)

// Pool names one of the two mote pools.
type Pool string

const (
	Peripheral Pool = "peripheral"
	Personal   Pool = "personal"
)

// Valid reports whether p names a known pool.
func (p Pool) Valid() bool {
	return p == Peripheral || p == Personal
}

// Other returns the opposite pool.
func (p Pool) Other() Pool {
	if p == Personal {
		return Peripheral
	}
	return Personal
}

// MotePool is one pool's uncommitted motes.
type MotePool struct {
	Available int `json:"available" yaml:"available"`
	Spent     int `json:"spent" yaml:"spent"`
}

// Commitment is a named allocation of motes to an ongoing effect.
type Commitment struct {
	Name       string `json:"name" yaml:"name"`
	Peripheral int    `json:"peripheral" yaml:"peripheral"`
	Personal   int    `json:"personal" yaml:"personal"`
}

// Total returns the motes held by the commitment across both pools.
func (c Commitment) Total() int {
	return c.Peripheral + c.Personal
}

// Motes holds both pools and the active commitments keyed by identifier.
type Motes struct {
	Peripheral  MotePool              `json:"peripheral" yaml:"peripheral"`
	Personal    MotePool              `json:"personal" yaml:"personal"`
	Commitments map[string]Commitment `json:"commitments" yaml:"commitments"`
}

// Ledger is an Exalt's essence rating plus mote pools.
type Ledger struct {
	Rating int   `json:"rating" yaml:"rating"`
	Motes  Motes `json:"motes" yaml:"motes"`
}

// PoolFormula computes pool maximums for an essence rating. Each Exalt type
// carries its own formula.
type PoolFormula func(rating int) (peripheral, personal int)

// SolarPools is the Solar Exalted pool formula.
func SolarPools(rating int) (peripheral, personal int) {
	return 7*rating + 26, 3*rating + 10
}

// CheckRating validates an essence rating.
func CheckRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return rejection.Newf(rejection.CodeEssenceRatingOutOfRange,
			"essence rating must be between %d and %d", MinRating, MaxRating).
			With("rating", fmt.Sprint(rating))
	}
	return nil
}

// NewLedger returns a fully recovered ledger at the given rating.
func NewLedger(rating int, formula PoolFormula) (Ledger, error) {
	if err := CheckRating(rating); err != nil {
		return Ledger{}, err
	}
	peripheral, personal := formula(rating)
	return Ledger{
		Rating: rating,
		Motes: Motes{
			Peripheral:  MotePool{Available: peripheral},
			Personal:    MotePool{Available: personal},
			Commitments: map[string]Commitment{},
		},
	}, nil
}

// Clone returns a deep copy of the ledger.
func (l Ledger) Clone() Ledger {
	out := l
	out.Motes.Commitments = make(map[string]Commitment, len(l.Motes.Commitments))
	for id, c := range l.Motes.Commitments {
		out.Motes.Commitments[id] = c
	}
	return out
}

// pool returns a pointer to the named pool.
func (l *Ledger) pool(p Pool) *MotePool {
	if p == Personal {
		return &l.Motes.Personal
	}
	return &l.Motes.Peripheral
}

// Committed returns the motes held by all commitments, per pool.
func (l *Ledger) Committed() (peripheral, personal int) {
	for _, c := range l.Motes.Commitments {
		peripheral += c.Peripheral
		personal += c.Personal
	}
	return peripheral, personal
}

// Available returns the motes available across both pools.
func (l *Ledger) Available() int {
	return l.Motes.Peripheral.Available + l.Motes.Personal.Available
}

// split divides amount between the preferred pool and the other one. The
// preferred pool gives min(available, amount); the rest overflows.
func (l *Ledger) split(first Pool, amount int) (peripheral, personal int) {
	take := min(l.pool(first).Available, amount)
	rest := amount - take
	if first == Peripheral {
		return take, rest
	}
	return rest, take
}

func checkAmount(amount int) error {
	if amount < 0 {
		return rejection.New(rejection.CodeAmountInvalid, "amount must not be negative").
			With("amount", fmt.Sprint(amount))
	}
	return nil
}

func checkPool(p Pool) error {
	if !p.Valid() {
		return rejection.Newf(rejection.CodePayloadInvalid, "unknown mote pool %q", p)
	}
	return nil
}

func (l *Ledger) checkDraw(first Pool, amount int) error {
	if err := checkPool(first); err != nil {
		return err
	}
	if err := checkAmount(amount); err != nil {
		return err
	}
	if l.Available() < amount {
		return rejection.New(rejection.CodeInsufficientMotes, "not enough motes available").
			With("requested", fmt.Sprint(amount)).
			With("available", fmt.Sprint(l.Available()))
	}
	return nil
}

// CheckSpend reports whether amount motes can be spent.
func (l *Ledger) CheckSpend(first Pool, amount int) error {
	return l.checkDraw(first, amount)
}

// Spend moves amount motes from available to spent, preferred pool first.
func (l *Ledger) Spend(first Pool, amount int) error {
	if err := l.CheckSpend(first, amount); err != nil {
		return err
	}
	peripheral, personal := l.split(first, amount)
	l.Motes.Peripheral.Available -= peripheral
	l.Motes.Peripheral.Spent += peripheral
	l.Motes.Personal.Available -= personal
	l.Motes.Personal.Spent += personal
	return nil
}

// CheckCommit reports whether a new commitment can be made.
func (l *Ledger) CheckCommit(id, name string, first Pool, amount int) error {
	if id == "" {
		return rejection.New(rejection.CodePayloadInvalid, "commitment id is required")
	}
	if name == "" {
		return rejection.New(rejection.CodeNameEmpty, "commitment name is required")
	}
	if _, exists := l.Motes.Commitments[id]; exists {
		return rejection.New(rejection.CodeCommitmentDuplicate, "commitment already exists").
			With("id", id)
	}
	return l.checkDraw(first, amount)
}

// Commit withdraws amount motes from available into a new commitment.
func (l *Ledger) Commit(id, name string, first Pool, amount int) error {
	if err := l.CheckCommit(id, name, first, amount); err != nil {
		return err
	}
	peripheral, personal := l.split(first, amount)
	l.Motes.Peripheral.Available -= peripheral
	l.Motes.Personal.Available -= personal
	if l.Motes.Commitments == nil {
		l.Motes.Commitments = map[string]Commitment{}
	}
	l.Motes.Commitments[id] = Commitment{Name: name, Peripheral: peripheral, Personal: personal}
	return nil
}

// CheckRecover reports whether amount motes can be recovered.
func (l *Ledger) CheckRecover(amount int) error {
	return checkAmount(amount)
}

// Recover refills spent motes, peripheral first, then personal. Each pool
// recovers at most its spent amount; any excess is discarded.
func (l *Ledger) Recover(amount int) error {
	if err := l.CheckRecover(amount); err != nil {
		return err
	}
	for _, p := range []Pool{Peripheral, Personal} {
		mp := l.pool(p)
		n := min(mp.Spent, amount)
		mp.Spent -= n
		mp.Available += n
		amount -= n
	}
	return nil
}

// CheckUncommit reports whether the commitment exists.
func (l *Ledger) CheckUncommit(id string) error {
	if _, ok := l.Motes.Commitments[id]; !ok {
		return rejection.New(rejection.CodeCommitmentNotFound, "commitment not found").
			With("id", id)
	}
	return nil
}

// Uncommit ends a commitment. Its motes return to spent, not available, and
// must be recovered before reuse.
func (l *Ledger) Uncommit(id string) (Commitment, error) {
	if err := l.CheckUncommit(id); err != nil {
		return Commitment{}, err
	}
	c := l.Motes.Commitments[id]
	delete(l.Motes.Commitments, id)
	l.Motes.Peripheral.Spent += c.Peripheral
	l.Motes.Personal.Spent += c.Personal
	return c, nil
}

// SetRating resets the ledger to a new rating. Every commitment is released,
// both pools are fully recovered and the new maximums become available.
func (l *Ledger) SetRating(rating int, formula PoolFormula) error {
	if err := CheckRating(rating); err != nil {
		return err
	}
	fresh, err := NewLedger(rating, formula)
	if err != nil {
		return err
	}
	*l = fresh
	return nil
}

// Verify checks the capacity identity of both pools against formula.
// A failure is a bug in the ledger, never a caller error.
func (l *Ledger) Verify(formula PoolFormula) error {
	if err := CheckRating(l.Rating); err != nil {
		return rejection.Invariantf("essence rating %d out of range", l.Rating)
	}
	maxPeripheral, maxPersonal := formula(l.Rating)
	committedPeripheral, committedPersonal := l.Committed()
	for id, c := range l.Motes.Commitments {
		if c.Peripheral < 0 || c.Personal < 0 {
			return rejection.Invariantf("commitment %q holds negative motes", id)
		}
	}
	checks := []struct {
		pool      Pool
		mp        MotePool
		committed int
		max       int
	}{
		{Peripheral, l.Motes.Peripheral, committedPeripheral, maxPeripheral},
		{Personal, l.Motes.Personal, committedPersonal, maxPersonal},
	}
	for _, c := range checks {
		if c.mp.Available < 0 || c.mp.Spent < 0 {
			return rejection.Invariantf("%s pool is negative: %+v", c.pool, c.mp)
		}
		if got := c.mp.Available + c.mp.Spent + c.committed; got != c.max {
			return rejection.Invariantf("%s pool holds %d motes, expected %d", c.pool, got, c.max)
		}
	}
	return nil
}

// Validate reports whether a decoded ledger is well formed. Unlike Verify it
// returns a rejection, since decoded ledgers come from callers.
func (l *Ledger) Validate(formula PoolFormula) error {
	if err := CheckRating(l.Rating); err != nil {
		return err
	}
	if err := l.Verify(formula); err != nil {
		return rejection.New(rejection.CodeMotePoolInvalid, err.Error())
	}
	return nil
}
