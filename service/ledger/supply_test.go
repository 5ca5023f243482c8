package ledger

import (
	"testing"
	"time"

	"lending/core"
	"lending/pkg/pool"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstDeposit(t *testing.T) {
	e := newEnv(t)
	e.createPool("ETH", "0.8")
	alice := e.open("alice", map[string]string{"ETH": "1"})

	shares, err := e.DepositExactAmount(e.ctx, "alice", alice, "ETH", uint256.NewInt(1000))
	require.Nil(t, err)
	assert.Equal(t, uint64(999), shares.Uint64())

	p := e.pool("ETH")
	assert.Equal(t, uint64(1000), p.PseudoTotalPool.Uint64())
	assert.Equal(t, uint64(1000), p.TotalDepositShares.Uint64())
	assert.Equal(t, uint64(1000), p.TotalDeposited.Uint64())
	assert.Equal(t, uint64(1), e.svc.positions[core.DeadPosition].LendingShares("ETH").Uint64())

	tokens, err := e.LendingTokens(e.ctx, alice)
	require.Nil(t, err)
	assert.Equal(t, []string{"ETH"}, tokens)

	e.checkBooks()
}

func TestDepositExactShares(t *testing.T) {
	e := newEnv(t)
	e.createPool("ETH", "0.8")
	alice := e.open("alice", map[string]string{"ETH": "10"})

	amount, err := e.DepositExactShares(e.ctx, "alice", alice, "ETH", uint256.NewInt(500))
	require.Nil(t, err)
	assert.Equal(t, uint64(501), amount.Uint64(), "the dead share is paid on top")

	entry, err := e.Lending(e.ctx, alice, "ETH")
	require.Nil(t, err)
	assert.Equal(t, uint64(500), entry.Shares.Uint64())
	assert.True(t, entry.Collateral)

	amount, err = e.DepositExactShares(e.ctx, "alice", alice, "ETH", uint256.NewInt(100))
	require.Nil(t, err)
	assert.Equal(t, uint64(100), amount.Uint64())

	e.checkBooks()
}

func TestDepositRejections(t *testing.T) {
	e := newEnv(t)
	e.createPool("ETH", "0.8")
	alice := e.open("alice", map[string]string{"ETH": "2000000000"})

	t.Run("zero amount", func(t *testing.T) {
		_, err := e.DepositExactAmount(e.ctx, "alice", alice, "ETH", uint256.NewInt(0))
		assert.ErrorIs(t, err, core.ErrInvalidAction)
	})

	t.Run("single unit first deposit", func(t *testing.T) {
		_, err := e.DepositExactAmount(e.ctx, "alice", alice, "ETH", uint256.NewInt(1))
		assert.ErrorIs(t, err, core.ErrInvalidAction)
	})

	t.Run("cap", func(t *testing.T) {
		_, err := e.DepositExactAmount(e.ctx, "alice", alice, "ETH", wad("1000000001"))
		assert.ErrorIs(t, err, core.ErrInvalidAction)

		e.deposit("alice", alice, "ETH", "999999999")
		_, err = e.DepositExactAmount(e.ctx, "alice", alice, "ETH", wad("2"))
		assert.ErrorIs(t, err, core.ErrInvalidAction)

		_, err = e.DepositExactShares(e.ctx, "alice", alice, "ETH", wad("2"))
		assert.ErrorIs(t, err, core.ErrInvalidAction)
	})

	t.Run("unknown pool", func(t *testing.T) {
		_, err := e.DepositExactAmount(e.ctx, "alice", alice, "BTC", wad("1"))
		assert.ErrorIs(t, err, core.ErrPoolNotFound)
	})

	t.Run("unknown position", func(t *testing.T) {
		_, err := e.DepositExactAmount(e.ctx, "alice", 404, "ETH", wad("1"))
		assert.ErrorIs(t, err, core.ErrPositionNotFound)
	})

	t.Run("reserved position", func(t *testing.T) {
		_, err := e.DepositExactAmount(e.ctx, "alice", core.FeePosition, "ETH", wad("1"))
		assert.ErrorIs(t, err, core.ErrInvalidAction)
	})

	e.checkBooks()
}

func TestDepositOnBehalf(t *testing.T) {
	e := newEnv(t)
	e.createPool("ETH", "0.8")
	alice := e.open("alice", nil)
	e.open("bob", map[string]string{"ETH": "10"})

	e.deposit("bob", alice, "ETH", "10")
	assert.True(t, e.vault.WalletOf("bob", "ETH").IsZero())

	entry, err := e.Lending(e.ctx, alice, "ETH")
	require.Nil(t, err)
	assert.Equal(t, wad("10").Uint64()-1, entry.Shares.Uint64())

	_, err = e.WithdrawExactShares(e.ctx, "bob", alice, "ETH", entry.Shares)
	assert.ErrorIs(t, err, core.ErrNotOwner)
}

func TestWithdraw(t *testing.T) {
	e := newEnv(t)
	e.createPool("ETH", "0.8")
	e.createPool("USDC", "0.8")
	alice := e.open("alice", map[string]string{"ETH": "100"})
	bob := e.open("bob", map[string]string{"USDC": "1000"})

	e.deposit("alice", alice, "ETH", "100")
	e.deposit("bob", bob, "USDC", "1000")
	e.borrow("bob", bob, "ETH", "60")

	t.Run("exact amount", func(t *testing.T) {
		burned, err := e.WithdrawExactAmount(e.ctx, "alice", alice, "ETH", wad("10"))
		require.Nil(t, err)
		assert.Equal(t, wad("10").Dec(), burned.Dec())
		assert.Equal(t, wad("10").Dec(), e.vault.WalletOf("alice", "ETH").Dec())
	})

	t.Run("insufficient liquidity", func(t *testing.T) {
		_, err := e.WithdrawExactAmount(e.ctx, "alice", alice, "ETH", wad("31"))
		assert.ErrorIs(t, err, core.ErrInsufficientLiquidity)
	})

	t.Run("insufficient shares", func(t *testing.T) {
		_, err := e.WithdrawExactShares(e.ctx, "alice", alice, "ETH", wad("91"))
		assert.ErrorIs(t, err, core.ErrInsufficientShares)
	})

	t.Run("not owner", func(t *testing.T) {
		_, err := e.WithdrawExactAmount(e.ctx, "bob", alice, "ETH", wad("1"))
		assert.ErrorIs(t, err, core.ErrNotOwner)
	})

	t.Run("locked", func(t *testing.T) {
		require.Nil(t, e.SetPositionLock(e.ctx, admin, alice, true))
		_, err := e.WithdrawExactAmount(e.ctx, "alice", alice, "ETH", wad("1"))
		assert.ErrorIs(t, err, core.ErrPositionLocked)

		_, err = e.DepositExactAmount(e.ctx, "alice", alice, "ETH", wad("1"))
		assert.ErrorIs(t, err, core.ErrPositionLocked)

		require.Nil(t, e.SetPositionLock(e.ctx, admin, alice, false))
		_, err = e.WithdrawExactAmount(e.ctx, "alice", alice, "ETH", wad("1"))
		assert.Nil(t, err)
	})

	e.checkBooks()
}

func TestRoundTrip(t *testing.T) {
	e := newEnv(t)
	e.createPool("ETH", "0.8")
	e.createPool("USDC", "0.8")
	alice := e.open("alice", map[string]string{"ETH": "1000"})
	bob := e.open("bob", map[string]string{"USDC": "1000"})

	e.deposit("alice", alice, "ETH", "100")

	t.Run("fresh pool", func(t *testing.T) {
		amount := uint256.NewInt(123_456_789)
		shares, err := e.DepositExactAmount(e.ctx, "alice", alice, "ETH", amount)
		require.Nil(t, err)
		back, err := e.WithdrawExactShares(e.ctx, "alice", alice, "ETH", shares)
		require.Nil(t, err)
		assert.Equal(t, amount.Dec(), back.Dec())
	})

	e.deposit("bob", bob, "USDC", "1000")
	e.borrow("bob", bob, "ETH", "50")
	e.advance(30 * 24 * time.Hour)
	require.Nil(t, e.SyncManually(e.ctx, "ETH"))

	p := e.pool("ETH")
	require.True(t, p.PseudoTotalPool.Gt(p.TotalDepositShares), "shares appreciated")

	for _, v := range []uint64{1_000, 123_456_789, 987_654_321_123} {
		amount := uint256.NewInt(v)
		shares, err := e.DepositExactAmount(e.ctx, "alice", alice, "ETH", amount)
		require.Nil(t, err)
		back, err := e.WithdrawExactShares(e.ctx, "alice", alice, "ETH", shares)
		require.Nil(t, err)

		assert.False(t, back.Gt(amount), "never returns more than deposited")
		// one unit lost per rounding step at most
		assert.LessOrEqual(t, new(uint256.Int).Sub(amount, back).Uint64(), uint64(2))
	}

	e.checkBooks()
}

func TestCleanup(t *testing.T) {
	e := newEnv(t)
	e.createPool("ETH", "0.8")
	alice := e.open("alice", map[string]string{"ETH": "100"})

	e.deposit("alice", alice, "ETH", "50")
	e.vault.Donate("ETH", wad("5"))

	shares := e.deposit("alice", alice, "ETH", "11")
	p := e.pool("ETH")
	assert.Equal(t, wad("66").Dec(), p.TotalDeposited.Dec())
	assert.Equal(t, wad("66").Dec(), p.PseudoTotalPool.Dec())

	want, err := pool.SharesForDeposit(&core.Pool{
		TotalDepositShares: wad("50"),
		PseudoTotalPool:    wad("55"),
	}, wad("11"))
	require.Nil(t, err)
	assert.Equal(t, want.Dec(), shares.Dec(), "donation is priced in before minting")

	e.checkBooks()
}

func TestShareConservation(t *testing.T) {
	e := newEnv(t)
	e.createPool("ETH", "0.8")

	owners := []string{"alice", "bob", "carol", "dave"}
	ids := make([]core.PositionID, len(owners))
	for i, owner := range owners {
		ids[i] = e.open(owner, map[string]string{"ETH": "1000"})
	}

	amounts := []string{"10", "3.3", "0.000000000000000007", "250", "1.5"}
	for i := 0; i < 40; i++ {
		k := i % len(owners)
		owner, pid := owners[k], ids[k]
		if i%3 == 2 {
			held := e.svc.positions[pid].LendingShares("ETH")
			half := new(uint256.Int).Rsh(held, 1)
			if !half.IsZero() {
				_, err := e.WithdrawExactShares(e.ctx, owner, pid, "ETH", half)
				require.Nil(t, err)
			}
		} else {
			_, err := e.DepositExactAmount(e.ctx, owner, pid, "ETH", wad(amounts[i%len(amounts)]))
			require.Nil(t, err)
		}

		e.checkBooks()
	}
}
