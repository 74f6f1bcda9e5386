package types

import (
	"testing"

	"code.perpnote.io/perpnote/libs/num"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToken(t *testing.T) {
	t.Run("Mint grows the supply and the holder balance", testTokenMint)
	t.Run("Burn shrinks the supply and rejects overdrafts", testTokenBurn)
	t.Run("Transfer moves balance and keeps the supply", testTokenTransfer)
	t.Run("Zero amounts are rejected everywhere", testTokenZeroAmounts)
	t.Run("Holders lists non zero balances sorted", testTokenHolders)
}

func testTokenMint(t *testing.T) {
	tok := NewToken("note", "NOTE", 6)
	require.NoError(t, tok.Mint("alice", num.NewUint(100)))
	require.NoError(t, tok.Mint("alice", num.NewUint(50)))

	assert.True(t, tok.BalanceOf("alice").EQ(num.NewUint(150)))
	assert.True(t, tok.TotalSupply().EQ(num.NewUint(150)))
	assert.True(t, tok.BalanceOf("bob").IsZero())
}

func testTokenBurn(t *testing.T) {
	tok := NewToken("note", "NOTE", 6)
	require.NoError(t, tok.Mint("alice", num.NewUint(100)))

	require.NoError(t, tok.Burn("alice", num.NewUint(40)))
	assert.True(t, tok.BalanceOf("alice").EQ(num.NewUint(60)))
	assert.True(t, tok.TotalSupply().EQ(num.NewUint(60)))

	err := tok.Burn("alice", num.NewUint(100))
	require.ErrorIs(t, err, ErrInsufficientBalance)
	assert.True(t, tok.TotalSupply().EQ(num.NewUint(60)))
}

func testTokenTransfer(t *testing.T) {
	tok := NewToken("note", "NOTE", 6)
	require.NoError(t, tok.Mint("alice", num.NewUint(100)))

	require.NoError(t, tok.Transfer("alice", "bob", num.NewUint(30)))
	assert.True(t, tok.BalanceOf("alice").EQ(num.NewUint(70)))
	assert.True(t, tok.BalanceOf("bob").EQ(num.NewUint(30)))
	assert.True(t, tok.TotalSupply().EQ(num.NewUint(100)))

	err := tok.Transfer("bob", "alice", num.NewUint(31))
	require.ErrorIs(t, err, ErrInsufficientBalance)
}

func testTokenZeroAmounts(t *testing.T) {
	tok := NewToken("note", "NOTE", 6)
	require.ErrorIs(t, tok.Mint("alice", num.UintZero()), ErrZeroAmount)
	require.ErrorIs(t, tok.Burn("alice", num.UintZero()), ErrZeroAmount)
	require.ErrorIs(t, tok.Transfer("alice", "bob", num.UintZero()), ErrZeroAmount)
}

func testTokenHolders(t *testing.T) {
	tok := NewToken("note", "NOTE", 6)
	require.NoError(t, tok.Mint("carol", num.NewUint(1)))
	require.NoError(t, tok.Mint("alice", num.NewUint(1)))
	require.NoError(t, tok.Mint("bob", num.NewUint(1)))
	require.NoError(t, tok.Burn("bob", num.NewUint(1)))

	assert.Equal(t, []string{"alice", "carol"}, tok.Holders())
}

func TestAccessControl(t *testing.T) {
	ac := NewAccessControl("owner")
	require.NoError(t, ac.Check("owner"))
	require.ErrorIs(t, ac.Check("mallory"), ErrNotOwner)

	require.ErrorIs(t, ac.TransferOwnership("mallory", "mallory"), ErrNotOwner)
	require.NoError(t, ac.TransferOwnership("owner", "alice"))
	require.NoError(t, ac.Check("alice"))
	require.ErrorIs(t, ac.Check("owner"), ErrNotOwner)
}

func TestOneTimeInit(t *testing.T) {
	var oti OneTimeInit
	calls := 0
	require.NoError(t, oti.Do(func() error { calls++; return nil }))
	require.ErrorIs(t, oti.Do(func() error { calls++; return nil }), ErrAlreadyInitialised)
	assert.Equal(t, 1, calls)
	assert.True(t, oti.Done())
}
