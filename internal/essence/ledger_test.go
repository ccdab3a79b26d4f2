package essence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/charsheet/internal/rejection"
)

func newSolar(t *testing.T, rating int) Ledger {
	t.Helper()
	l, err := NewLedger(rating, SolarPools)
	require.NoError(t, err)
	return l
}

func TestNewLedger_SolarRatingOne(t *testing.T) {
	l := newSolar(t, 1)

	assert.Equal(t, MotePool{Available: 33, Spent: 0}, l.Motes.Peripheral)
	assert.Equal(t, MotePool{Available: 13, Spent: 0}, l.Motes.Personal)
	assert.Empty(t, l.Motes.Commitments)
	require.NoError(t, l.Verify(SolarPools))
}

func TestNewLedger_RejectsOutOfRange(t *testing.T) {
	for _, rating := range []int{0, 6, -1} {
		_, err := NewLedger(rating, SolarPools)
		assert.True(t, rejection.Is(err, rejection.CodeEssenceRatingOutOfRange), "rating %d", rating)
	}
}

// The exact splits for spend then commit at essence 1.
func TestSpendAndCommit_Scenario(t *testing.T) {
	l := newSolar(t, 1)

	require.NoError(t, l.Spend(Peripheral, 10))
	require.NoError(t, l.Spend(Personal, 10))
	assert.Equal(t, MotePool{Available: 23, Spent: 10}, l.Motes.Peripheral)
	assert.Equal(t, MotePool{Available: 3, Spent: 10}, l.Motes.Personal)

	require.NoError(t, l.Commit("a", "First", Peripheral, 10))
	require.NoError(t, l.Commit("b", "Second", Personal, 10))
	assert.Equal(t, MotePool{Available: 6, Spent: 10}, l.Motes.Peripheral)
	assert.Equal(t, MotePool{Available: 0, Spent: 10}, l.Motes.Personal)

	assert.Equal(t, Commitment{Name: "First", Peripheral: 10, Personal: 0}, l.Motes.Commitments["a"])
	assert.Equal(t, Commitment{Name: "Second", Peripheral: 7, Personal: 3}, l.Motes.Commitments["b"])
	require.NoError(t, l.Verify(SolarPools))
}

func TestSpend_Properties(t *testing.T) {
	states := []struct {
		name       string
		peripheral int
		personal   int
	}{
		{"pristine", 0, 0},
		{"half spent", 15, 5},
		{"peripheral drained", 33, 0},
		{"personal drained", 0, 13},
	}

	for _, st := range states {
		for _, first := range []Pool{Peripheral, Personal} {
			base := newSolar(t, 1)
			require.NoError(t, base.Spend(Peripheral, st.peripheral))
			require.NoError(t, base.Spend(Personal, st.personal))

			total := base.Available()
			for a := 0; a <= total; a++ {
				l := base.Clone()
				require.NoError(t, l.Spend(first, a), "%s: spend %d from %s", st.name, a, first)

				spentBefore := base.Motes.Peripheral.Spent + base.Motes.Personal.Spent
				spentAfter := l.Motes.Peripheral.Spent + l.Motes.Personal.Spent
				assert.Equal(t, spentBefore+a, spentAfter)
				assert.GreaterOrEqual(t, l.Motes.Peripheral.Available, 0)
				assert.GreaterOrEqual(t, l.Motes.Personal.Available, 0)

				preferred := base.pool(first).Available
				gotPreferred := l.pool(first).Spent - base.pool(first).Spent
				assert.Equal(t, min(preferred, a), gotPreferred)
				require.NoError(t, l.Verify(SolarPools))
			}

			l := base.Clone()
			err := l.Spend(first, total+1)
			assert.True(t, rejection.Is(err, rejection.CodeInsufficientMotes))
			assert.Equal(t, base, l, "failed spend must not change the ledger")
		}
	}
}

func TestSpend_RejectsNegativeAndUnknownPool(t *testing.T) {
	l := newSolar(t, 1)

	assert.True(t, rejection.Is(l.Spend(Peripheral, -1), rejection.CodeAmountInvalid))
	assert.True(t, rejection.Is(l.Spend(Pool("ambient"), 1), rejection.CodePayloadInvalid))
}

func TestCommit_Rejections(t *testing.T) {
	l := newSolar(t, 1)
	require.NoError(t, l.Commit("x", "Ward", Peripheral, 1))

	assert.True(t, rejection.Is(l.CheckCommit("x", "Ward", Peripheral, 1), rejection.CodeCommitmentDuplicate))
	assert.True(t, rejection.Is(l.CheckCommit("", "Ward", Peripheral, 1), rejection.CodePayloadInvalid))
	assert.True(t, rejection.Is(l.CheckCommit("y", "", Peripheral, 1), rejection.CodeNameEmpty))
	assert.True(t, rejection.Is(l.CheckCommit("y", "Ward", Peripheral, 100), rejection.CodeInsufficientMotes))
}

func TestUncommit_MovesToSpent(t *testing.T) {
	l := newSolar(t, 1)
	require.NoError(t, l.Commit("x", "Ward", Personal, 15))
	assert.Equal(t, Commitment{Name: "Ward", Peripheral: 2, Personal: 13}, l.Motes.Commitments["x"])

	c, err := l.Uncommit("x")
	require.NoError(t, err)
	assert.Equal(t, 15, c.Total())
	assert.Equal(t, MotePool{Available: 31, Spent: 2}, l.Motes.Peripheral)
	assert.Equal(t, MotePool{Available: 0, Spent: 13}, l.Motes.Personal)
	require.NoError(t, l.Verify(SolarPools))

	_, err = l.Uncommit("x")
	assert.True(t, rejection.Is(err, rejection.CodeCommitmentNotFound))
}

func TestCommitUncommitRecover_RoundTrip(t *testing.T) {
	for _, first := range []Pool{Peripheral, Personal} {
		for a := 0; a <= 46; a++ {
			before := newSolar(t, 1)
			l := before.Clone()

			require.NoError(t, l.Commit("id", "Effect", first, a))
			_, err := l.Uncommit("id")
			require.NoError(t, err)
			require.NoError(t, l.Recover(a))

			assert.Equal(t, before, l, "commit/uncommit/recover %d from %s", a, first)
		}
	}
}

func TestRecover_PeripheralFirstCapped(t *testing.T) {
	l := newSolar(t, 1)
	require.NoError(t, l.Spend(Peripheral, 5))
	require.NoError(t, l.Spend(Personal, 4))

	require.NoError(t, l.Recover(7))
	assert.Equal(t, MotePool{Available: 33, Spent: 0}, l.Motes.Peripheral)
	assert.Equal(t, MotePool{Available: 11, Spent: 2}, l.Motes.Personal)

	require.NoError(t, l.Recover(100))
	assert.Equal(t, MotePool{Available: 13, Spent: 0}, l.Motes.Personal)
	require.NoError(t, l.Verify(SolarPools))

	assert.True(t, rejection.Is(l.Recover(-3), rejection.CodeAmountInvalid))
}

func TestSetRating_ResetsEverything(t *testing.T) {
	for r1 := MinRating; r1 <= MaxRating; r1++ {
		for r2 := MinRating; r2 <= MaxRating; r2++ {
			l := newSolar(t, r1)
			require.NoError(t, l.Spend(Peripheral, 7))
			require.NoError(t, l.Commit("c", "Armor", Personal, 5))

			require.NoError(t, l.SetRating(r2, SolarPools))

			peripheral, personal := SolarPools(r2)
			assert.Equal(t, r2, l.Rating)
			assert.Equal(t, MotePool{Available: peripheral}, l.Motes.Peripheral)
			assert.Equal(t, MotePool{Available: personal}, l.Motes.Personal)
			assert.Empty(t, l.Motes.Commitments)
		}
	}
}

func TestSetRating_RejectsOutOfRangeWithoutChange(t *testing.T) {
	l := newSolar(t, 2)
	require.NoError(t, l.Spend(Peripheral, 3))
	before := l.Clone()

	err := l.SetRating(6, SolarPools)
	assert.True(t, rejection.Is(err, rejection.CodeEssenceRatingOutOfRange))
	assert.Equal(t, before, l)
}

func TestVerify_DetectsBrokenIdentity(t *testing.T) {
	l := newSolar(t, 1)
	l.Motes.Peripheral.Spent = 5

	err := l.Verify(SolarPools)
	require.Error(t, err)
	assert.True(t, rejection.IsInvariant(err))

	err = l.Validate(SolarPools)
	assert.True(t, rejection.Is(err, rejection.CodeMotePoolInvalid))
}

func TestClone_IsIndependent(t *testing.T) {
	l := newSolar(t, 1)
	require.NoError(t, l.Commit("c", "Ward", Peripheral, 3))

	c := l.Clone()
	_, err := c.Uncommit("c")
	require.NoError(t, err)

	assert.Contains(t, l.Motes.Commitments, "c")
}
