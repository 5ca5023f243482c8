package ledger

import (
	"testing"
	"time"

	"lending/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collateralEnv carol supplies 1000 A and 1000 B, alice deposits 100 A
// at a collateral factor of 0.85
func collateralEnv(t *testing.T, opts ...option) (*env, core.PositionID) {
	e := newEnv(t, opts...)
	e.createPool("A", "0.85")
	e.createPool("B", "0.85")

	carol := e.open("carol", map[string]string{"A": "1000", "B": "1000"})
	e.deposit("carol", carol, "A", "1000")
	e.deposit("carol", carol, "B", "1000")

	alice := e.open("alice", map[string]string{"A": "100", "B": "10"})
	e.deposit("alice", alice, "A", "100")
	return e, alice
}

func TestBorrowUpToLimit(t *testing.T) {
	e, alice := collateralEnv(t)

	collateral, err := e.CollateralValue(e.ctx, alice)
	require.Nil(t, err)
	assert.Equal(t, wad("85").Dec(), collateral.Dec())

	before := e.pool("B")
	_, err = e.BorrowExactAmount(e.ctx, "alice", alice, "B", wad("85.01"))
	assert.ErrorIs(t, err, core.ErrResultsInBadDebt)
	assert.Equal(t, before, e.pool("B"))
	assert.Equal(t, wad("10").Dec(), e.vault.WalletOf("alice", "B").Dec())

	tokens, err := e.BorrowTokens(e.ctx, alice)
	require.Nil(t, err)
	assert.Empty(t, tokens)

	shares := e.borrow("alice", alice, "B", "85")
	assert.Equal(t, wad("85").Dec(), shares.Dec())
	assert.Equal(t, wad("95").Dec(), e.vault.WalletOf("alice", "B").Dec())

	ratio, err := e.DebtRatio(e.ctx, alice)
	require.Nil(t, err)
	assert.Equal(t, wad("1").Dec(), ratio.Dec())

	borrowed, err := e.BorrowValue(e.ctx, alice)
	require.Nil(t, err)
	assert.Equal(t, wad("85").Dec(), borrowed.Dec())

	p := e.pool("B")
	assert.Equal(t, wad("915").Dec(), p.TotalDeposited.Dec())
	assert.Equal(t, wad("85").Dec(), p.TotalBorrowed.Dec())
	assert.Equal(t, wad("0.085").Dec(), p.Utilization.Dec())
	assert.False(t, p.BorrowRate.IsZero())

	e.checkBooks()
}

func TestBorrowRejections(t *testing.T) {
	e, alice := collateralEnv(t)

	t.Run("liquidity", func(t *testing.T) {
		_, err := e.BorrowExactAmount(e.ctx, "alice", alice, "B", wad("1001"))
		assert.ErrorIs(t, err, core.ErrInsufficientLiquidity)
	})

	t.Run("owner", func(t *testing.T) {
		_, err := e.BorrowExactAmount(e.ctx, "bob", alice, "B", wad("1"))
		assert.ErrorIs(t, err, core.ErrNotOwner)
	})

	t.Run("zero", func(t *testing.T) {
		_, err := e.BorrowExactAmount(e.ctx, "alice", alice, "B", wad("0"))
		assert.ErrorIs(t, err, core.ErrInvalidAction)
	})

	t.Run("no collateral", func(t *testing.T) {
		bob := e.open("bob", nil)
		_, err := e.BorrowExactAmount(e.ctx, "bob", bob, "B", wad("1"))
		assert.ErrorIs(t, err, core.ErrResultsInBadDebt)
	})

	e.checkBooks()
}

func TestBorrowStalePrice(t *testing.T) {
	e, alice := collateralEnv(t, withHeartbeat(time.Hour))
	e.advance(2 * time.Hour)

	_, err := e.BorrowExactAmount(e.ctx, "alice", alice, "B", wad("10"))
	assert.ErrorIs(t, err, core.ErrStalePrice)

	_, err = e.DebtRatio(e.ctx, alice)
	assert.Nil(t, err, "no debt, no prices needed")

	e.setPrice("A", "1")
	_, err = e.BorrowExactAmount(e.ctx, "alice", alice, "B", wad("10"))
	assert.ErrorIs(t, err, core.ErrStalePrice, "borrowed token is stale too")

	e.setPrice("B", "1")
	e.borrow("alice", alice, "B", "10")
	e.checkBooks()
}

func TestPayback(t *testing.T) {
	e, alice := collateralEnv(t)
	e.borrow("alice", alice, "B", "85")
	e.advance(10 * 24 * time.Hour)

	amount, err := e.PaybackExactShares(e.ctx, "alice", alice, "B", wad("40"))
	require.Nil(t, err)
	assert.True(t, amount.Gt(wad("40")), "interest accrued")

	entry, err := e.Borrowing(e.ctx, alice, "B")
	require.Nil(t, err)
	assert.Equal(t, wad("45").Dec(), entry.Shares.Dec())
	e.checkBooks()

	burned, err := e.PaybackExactAmount(e.ctx, "alice", alice, "B", wad("10"))
	require.Nil(t, err)
	assert.False(t, burned.IsZero())
	assert.True(t, burned.Lt(wad("10")))
	e.checkBooks()

	_, err = e.PaybackExactAmount(e.ctx, "alice", alice, "B", wad("1000"))
	assert.ErrorIs(t, err, core.ErrInsufficientShares)

	_, err = e.PaybackExactAmount(e.ctx, "alice", alice, "B", wad("0.000000000000000001"))
	assert.ErrorIs(t, err, core.ErrInvalidAction, "burns no share")

	rest, err := e.Borrowing(e.ctx, alice, "B")
	require.Nil(t, err)
	_, err = e.PaybackExactShares(e.ctx, "alice", alice, "B", rest.Shares)
	require.Nil(t, err)

	tokens, err := e.BorrowTokens(e.ctx, alice)
	require.Nil(t, err)
	assert.Empty(t, tokens)

	ratio, err := e.DebtRatio(e.ctx, alice)
	require.Nil(t, err)
	assert.True(t, ratio.IsZero())

	p := e.pool("B")
	assert.True(t, p.TotalBorrowShares.IsZero())
	assert.True(t, p.PseudoTotalBorrowAmount.IsZero())
	assert.True(t, p.PseudoTotalPool.Gt(wad("1000")), "lenders keep the interest")
	e.checkBooks()
}

func TestPaybackOnBehalf(t *testing.T) {
	e, alice := collateralEnv(t)
	e.borrow("alice", alice, "B", "50")

	e.vault.Fund("bob", "B", wad("20"))
	amount, err := e.PaybackExactShares(e.ctx, "bob", alice, "B", wad("20"))
	require.Nil(t, err)
	assert.Equal(t, wad("20").Dec(), amount.Dec())
	assert.True(t, e.vault.WalletOf("bob", "B").IsZero())

	entry, err := e.Borrowing(e.ctx, alice, "B")
	require.Nil(t, err)
	assert.Equal(t, wad("30").Dec(), entry.Shares.Dec())
	e.checkBooks()
}

func TestCollateralToggle(t *testing.T) {
	e, alice := collateralEnv(t)

	assert.ErrorIs(t, e.CollateralizeDeposit(e.ctx, "alice", alice, "B"), core.ErrInvalidAction)
	assert.ErrorIs(t, e.UnCollateralizeDeposit(e.ctx, "bob", alice, "A"), core.ErrNotOwner)

	require.Nil(t, e.UnCollateralizeDeposit(e.ctx, "alice", alice, "A"))
	collateral, err := e.CollateralValue(e.ctx, alice)
	require.Nil(t, err)
	assert.True(t, collateral.IsZero())

	_, err = e.BorrowExactAmount(e.ctx, "alice", alice, "B", wad("1"))
	assert.ErrorIs(t, err, core.ErrResultsInBadDebt)

	require.Nil(t, e.CollateralizeDeposit(e.ctx, "alice", alice, "A"))
	e.borrow("alice", alice, "B", "50")

	assert.ErrorIs(t, e.UnCollateralizeDeposit(e.ctx, "alice", alice, "A"), core.ErrResultsInBadDebt)
	entry, err := e.Lending(e.ctx, alice, "A")
	require.Nil(t, err)
	assert.True(t, entry.Collateral)

	ratio, err := e.DebtRatio(e.ctx, alice)
	require.Nil(t, err)
	assert.False(t, ratio.Gt(wad("1")))
	e.checkBooks()
}

func TestSolelyCollateral(t *testing.T) {
	e, alice := collateralEnv(t)
	e.vault.Fund("alice", "A", wad("50"))

	require.Nil(t, e.SolelyDeposit(e.ctx, "alice", alice, "A", wad("50")))
	pure, err := e.PureCollateral(e.ctx, alice, "A")
	require.Nil(t, err)
	assert.Equal(t, wad("50").Dec(), pure.Dec())

	p := e.pool("A")
	assert.Equal(t, wad("1100").Dec(), p.TotalDeposited.Dec(), "pure collateral stays out of the pool")
	assert.Equal(t, wad("50").Dec(), p.TotalPureCollateral.Dec())

	collateral, err := e.CollateralValue(e.ctx, alice)
	require.Nil(t, err)
	assert.Equal(t, wad("127.5").Dec(), collateral.Dec())

	e.borrow("alice", alice, "B", "80")

	assert.ErrorIs(t, e.SolelyWithdraw(e.ctx, "alice", alice, "A", wad("60")), core.ErrInsufficientShares)
	assert.ErrorIs(t, e.SolelyWithdraw(e.ctx, "bob", alice, "A", wad("1")), core.ErrNotOwner)

	require.Nil(t, e.SolelyWithdraw(e.ctx, "alice", alice, "A", wad("50")))
	assert.Equal(t, wad("50").Dec(), e.vault.WalletOf("alice", "A").Dec())

	tokens, err := e.LendingTokens(e.ctx, alice)
	require.Nil(t, err)
	assert.ElementsMatch(t, []string{"A"}, tokens)

	_, err = e.WithdrawExactAmount(e.ctx, "alice", alice, "A", wad("10"))
	assert.ErrorIs(t, err, core.ErrResultsInBadDebt)
	e.checkBooks()
}

func TestSolelyDepositCap(t *testing.T) {
	e := newEnv(t)
	p, err := e.CreatePool(e.ctx, admin, core.PoolParams{
		Token:                "C",
		Decimals:             18,
		PoolFee:              wad("0.2"),
		CollateralFactor:     wad("0.5"),
		MaxDepositAmount:     wad("100"),
		MultiplicativeFactor: wad("0.0625"),
	})
	require.Nil(t, err)
	e.setPrice(p.Token, "1")

	alice := e.open("alice", map[string]string{"C": "200"})
	e.deposit("alice", alice, "C", "60")

	assert.ErrorIs(t, e.SolelyDeposit(e.ctx, "alice", alice, "C", wad("41")), core.ErrInvalidAction)
	require.Nil(t, e.SolelyDeposit(e.ctx, "alice", alice, "C", wad("40")))

	_, err = e.DepositExactAmount(e.ctx, "alice", alice, "C", wad("41"))
	assert.ErrorIs(t, err, core.ErrInvalidAction)
	e.deposit("alice", alice, "C", "40")
	e.checkBooks()
}
