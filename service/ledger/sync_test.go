package ledger

import (
	"testing"
	"time"

	"lending/core"
	"lending/pkg/lasa"
	"lending/pkg/number"
	"lending/pkg/pool"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// borrowedEnv ETH pool with 50 supplied and 20 borrowed against USDC
func borrowedEnv(t *testing.T) *env {
	e := newEnv(t)
	e.createPool("ETH", "0.8")
	e.createPool("USDC", "0.8")

	alice := e.open("alice", map[string]string{"ETH": "50"})
	bob := e.open("bob", map[string]string{"USDC": "1000"})
	e.deposit("alice", alice, "ETH", "50")
	e.deposit("bob", bob, "USDC", "1000")
	e.borrow("bob", bob, "ETH", "20")
	return e
}

func TestSyncOneDay(t *testing.T) {
	e := borrowedEnv(t)
	before := e.pool("ETH")
	require.False(t, before.BorrowRate.IsZero())
	assert.Equal(t, wad("0.4").Dec(), before.Utilization.Dec())

	e.advance(24 * time.Hour)
	require.Nil(t, e.SyncManually(e.ctx, "ETH"))
	after := e.pool("ETH")

	rateTime := new(uint256.Int).Mul(before.BorrowRate, uint256.NewInt(86400))
	interest, err := number.MulDivDown(before.PseudoTotalBorrowAmount, rateTime, new(uint256.Int).Mul(uint256.NewInt(pool.SecondsPerYear), number.Wad()))
	require.Nil(t, err)
	require.False(t, interest.IsZero())

	assert.Equal(t, new(uint256.Int).Add(before.PseudoTotalBorrowAmount, interest).Dec(), after.PseudoTotalBorrowAmount.Dec())
	assert.Equal(t, new(uint256.Int).Add(before.PseudoTotalPool, interest).Dec(), after.PseudoTotalPool.Dec())
	assert.Equal(t, before.TotalDeposited.Dec(), after.TotalDeposited.Dec())

	fee, err := number.WadMul(interest, wad("0.2"))
	require.Nil(t, err)
	assert.True(t, e.fees.Balance("ETH").IsZero(), "fees are credited when collected")

	feeShares := e.svc.positions[core.FeePosition].LendingShares("ETH")
	require.False(t, feeShares.IsZero())
	owed, err := pool.AmountForWithdrawShares(after, feeShares)
	require.Nil(t, err)
	assert.False(t, owed.Gt(fee))
	assert.True(t, new(uint256.Int).Sub(fee, owed).LtUint64(3), "fee shares are worth the fee")

	e.checkBooks()
}

func TestCollectFees(t *testing.T) {
	e := borrowedEnv(t)
	e.advance(30 * 24 * time.Hour)
	require.Nil(t, e.SyncManually(e.ctx, "ETH"))

	feeShares := e.svc.positions[core.FeePosition].LendingShares("ETH")
	require.False(t, feeShares.IsZero())
	want, err := pool.AmountForWithdrawShares(e.pool("ETH"), feeShares)
	require.Nil(t, err)

	_, err = e.CollectFees(e.ctx, "alice", "ETH")
	assert.ErrorIs(t, err, core.ErrOperationForbidden)
	_, err = e.CollectFees(e.ctx, admin, "BTC")
	assert.ErrorIs(t, err, core.ErrPoolNotFound)

	before := e.pool("ETH")
	paid, err := e.CollectFees(e.ctx, admin, "ETH")
	require.Nil(t, err)
	assert.Equal(t, want.Dec(), paid.Dec())
	assert.Equal(t, paid.Dec(), e.fees.Balance("ETH").Dec())
	assert.Equal(t, paid.Dec(), e.vault.WalletOf(admin, "ETH").Dec())
	assert.True(t, e.svc.positions[core.FeePosition].LendingShares("ETH").IsZero())

	after := e.pool("ETH")
	assert.Equal(t, new(uint256.Int).Sub(before.TotalDeposited, paid).Dec(), after.TotalDeposited.Dec())
	assert.Equal(t, new(uint256.Int).Sub(before.PseudoTotalPool, paid).Dec(), after.PseudoTotalPool.Dec())
	e.checkBooks()

	t.Run("nothing left", func(t *testing.T) {
		paid, err := e.CollectFees(e.ctx, admin, "ETH")
		require.Nil(t, err)
		assert.True(t, paid.IsZero())
		assert.Equal(t, want.Dec(), e.fees.Balance("ETH").Dec())
		e.checkBooks()
	})

	t.Run("lenders keep their interest", func(t *testing.T) {
		alice := e.svc.positions[core.PositionID(1)]
		require.NotNil(t, alice)
		owed, err := pool.AmountForWithdrawShares(e.pool("ETH"), alice.LendingShares("ETH"))
		require.Nil(t, err)
		assert.True(t, owed.Gt(wad("50")))
	})
}

func TestSyncIdempotent(t *testing.T) {
	e := borrowedEnv(t)
	e.advance(time.Hour)

	require.Nil(t, e.SyncManually(e.ctx, "ETH"))
	first := e.pool("ETH")
	minted := e.svc.positions[core.FeePosition].LendingShares("ETH")

	require.Nil(t, e.SyncManually(e.ctx, "ETH"))
	assert.Equal(t, first, e.pool("ETH"))
	assert.Equal(t, minted.Dec(), e.svc.positions[core.FeePosition].LendingShares("ETH").Dec())
}

func TestSyncMatchesView(t *testing.T) {
	e := borrowedEnv(t)
	e.advance(7 * time.Hour)

	preview, err := e.Pool(e.ctx, "ETH")
	require.Nil(t, err)
	assert.Equal(t, uint64(e.clock.Now().Unix()), preview.LastSyncTimestamp)
	_, minted := e.svc.positions[core.FeePosition]
	assert.False(t, minted, "views do not mint fee shares")

	require.Nil(t, e.SyncManually(e.ctx, "ETH"))
	assert.Equal(t, preview, e.pool("ETH"))
}

func TestSyncMonotone(t *testing.T) {
	e := borrowedEnv(t)
	last := e.pool("ETH")

	for i := 0; i < 30; i++ {
		e.advance(5 * time.Hour)
		require.Nil(t, e.SyncManually(e.ctx, "ETH"))

		p := e.pool("ETH")
		assert.False(t, p.PseudoTotalPool.Lt(last.PseudoTotalPool))
		assert.False(t, p.PseudoTotalBorrowAmount.Lt(last.PseudoTotalBorrowAmount))
		assert.GreaterOrEqual(t, p.TimeStampScaling, last.TimeStampScaling)
		e.checkBooks()
		last = p
	}
}

func TestSyncAdjustsCurve(t *testing.T) {
	e := borrowedEnv(t)
	start := e.pool("ETH")
	assert.True(t, start.Curve.MaxValue.IsZero())

	e.advance(time.Hour)
	require.Nil(t, e.SyncManually(e.ctx, "ETH"))
	assert.Equal(t, start.TimeStampScaling, e.pool("ETH").TimeStampScaling, "window not elapsed")

	e.advance(lasa.DefaultAdjustmentWindow * time.Second)
	require.Nil(t, e.SyncManually(e.ctx, "ETH"))

	p := e.pool("ETH")
	assert.Equal(t, uint64(e.clock.Now().Unix()), p.TimeStampScaling)
	assert.False(t, p.Curve.MaxValue.IsZero(), "first observation is a new max")
	assert.True(t, p.Curve.BestPole.Eq(start.Curve.Pole))
	assert.False(t, p.Curve.Pole.Eq(start.Curve.Pole))
	assert.Equal(t, p.Utilization.Dec(), p.Curve.LastUtilization.Dec())

	t.Run("locked curve is frozen", func(t *testing.T) {
		require.Nil(t, e.LockCurve(e.ctx, admin, "ETH"))
		pole := e.pool("ETH").Curve.Pole.Clone()

		e.advance(10 * lasa.DefaultAdjustmentWindow * time.Second)
		require.Nil(t, e.SyncManually(e.ctx, "ETH"))
		assert.True(t, e.pool("ETH").Curve.Pole.Eq(pole))

		require.Nil(t, e.UnlockCurve(e.ctx, admin, "ETH"))
	})
}

func TestSyncUnknownPool(t *testing.T) {
	e := newEnv(t)
	assert.ErrorIs(t, e.SyncManually(e.ctx, "ETH"), core.ErrPoolNotFound)
}
