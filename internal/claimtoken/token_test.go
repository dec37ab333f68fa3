package claimtoken

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/fleshka4/ammpool/internal/apperrors"
)

var (
	alice = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	bob   = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
)

func sumBalances(tok *Token) *big.Int {
	sum := new(big.Int)
	for _, v := range tok.Snapshot() {
		sum.Add(sum, v)
	}
	return sum
}

func TestMintBurnTransfer(t *testing.T) {
	t.Parallel()

	tok := New()
	require.NoError(t, tok.Mint(alice, big.NewInt(10)))
	require.NoError(t, tok.Transfer(alice, bob, big.NewInt(4)))
	require.NoError(t, tok.Burn(bob, big.NewInt(1)))

	require.Equal(t, "6", tok.BalanceOf(alice).String())
	require.Equal(t, "3", tok.BalanceOf(bob).String())
	require.Equal(t, "9", tok.TotalSupply().String())
	require.Zero(t, tok.TotalSupply().Cmp(sumBalances(tok)))
}

func TestBurn_InsufficientBalance(t *testing.T) {
	t.Parallel()

	tok := New()
	require.NoError(t, tok.Mint(alice, big.NewInt(2)))

	err := tok.Burn(alice, big.NewInt(3))
	require.ErrorIs(t, err, ErrInsufficientBalance)
	require.ErrorIs(t, err, apperrors.ErrUnderflow)
	require.Equal(t, "2", tok.TotalSupply().String())

	require.ErrorIs(t, tok.Transfer(bob, alice, big.NewInt(1)), ErrInsufficientBalance)
}

func TestTransfer_Self(t *testing.T) {
	t.Parallel()

	tok := New()
	require.NoError(t, tok.Mint(alice, big.NewInt(5)))
	require.NoError(t, tok.Transfer(alice, alice, big.NewInt(5)))
	require.Equal(t, "5", tok.BalanceOf(alice).String())
}

func TestMint_Zero(t *testing.T) {
	t.Parallel()

	tok := New()
	require.NoError(t, tok.Mint(alice, big.NewInt(0)))
	require.Equal(t, "0", tok.TotalSupply().String())
	require.Empty(t, tok.Snapshot())
}

func TestCheckpointRevert(t *testing.T) {
	t.Parallel()

	tok := New()
	require.NoError(t, tok.Mint(alice, big.NewInt(10)))

	id := tok.Checkpoint()
	require.NoError(t, tok.Mint(bob, big.NewInt(7)))
	require.NoError(t, tok.Burn(alice, big.NewInt(3)))
	require.NoError(t, tok.Transfer(alice, bob, big.NewInt(2)))
	tok.RevertTo(id)
	tok.Commit()

	require.Equal(t, "10", tok.BalanceOf(alice).String())
	require.Equal(t, "0", tok.BalanceOf(bob).String())
	require.Equal(t, "10", tok.TotalSupply().String())
}

func TestRestore_DerivesSupply(t *testing.T) {
	t.Parallel()

	tok := New()
	require.NoError(t, tok.Restore(map[common.Address]*big.Int{
		alice: big.NewInt(3),
		bob:   big.NewInt(4),
	}))
	require.Equal(t, "7", tok.TotalSupply().String())
	require.Equal(t, "4", tok.BalanceOf(bob).String())
}
