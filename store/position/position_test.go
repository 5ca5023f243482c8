package position

import (
	"testing"

	"lending/core"
	"lending/pkg/number"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntries(t *testing.T) {
	pos := core.NewPosition(7)
	pos.SetLendingShares("ETH", number.MustParse("1.5"))
	pos.Lending["ETH"].Collateral = false
	pos.SetPureCollateral("ETH", number.MustParse("2"))
	pos.SetBorrowShares("USDC", number.MustParse("100"))

	entries := Entries(pos)
	require.Len(t, entries, 2)

	eth := entries[0]
	assert.Equal(t, "7", eth.PositionID)
	assert.Equal(t, "ETH", eth.Token)
	assert.Equal(t, "1500000000000000000", eth.LendingShares.String())
	assert.Equal(t, "2000000000000000000", eth.PureCollateral.String())
	assert.True(t, eth.BorrowShares.IsZero())
	assert.False(t, eth.Collateral)

	usdc := entries[1]
	assert.Equal(t, "USDC", usdc.Token)
	assert.Equal(t, "100000000000000000000", usdc.BorrowShares.String())

	fee := core.NewPosition(core.FeePosition)
	fee.SetLendingShares("ETH", number.MustParse("0.1"))
	entries = append(entries, Entries(fee)...)
	assert.Equal(t, "18446744073709551615", entries[2].PositionID)

	positions, err := Positions(entries)
	require.Nil(t, err)
	require.Len(t, positions, 2)

	got := positions[0]
	assert.Equal(t, core.PositionID(7), got.ID)
	assert.Equal(t, pos.Lending, got.Lending)
	assert.Equal(t, pos.Borrowing, got.Borrowing)
	assert.Equal(t, pos.PureCollateral, got.PureCollateral)
	assert.ElementsMatch(t, []string{"ETH"}, got.LendingTokens.Items())
	assert.ElementsMatch(t, []string{"USDC"}, got.BorrowTokens.Items())

	assert.Equal(t, core.FeePosition, positions[1].ID)
	assert.True(t, positions[1].Lending["ETH"].Collateral)
}

func TestPositionsRejectsBadID(t *testing.T) {
	_, err := Positions([]*Entry{{PositionID: "x", Token: "ETH"}})
	assert.Error(t, err)
}
