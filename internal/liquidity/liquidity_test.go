package liquidity

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fleshka4/ammpool/internal/apperrors"
)

func bi(s string) *big.Int {
	z, _ := new(big.Int).SetString(s, 10)
	return z
}

func TestSqrt_SmallValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   int64
		want int64
	}{
		{0, 0},
		{1, 1},
		{2, 1},
		{3, 1},
		{4, 2},
		{8, 2},
		{9, 3},
		{100, 10},
		{101, 10},
		{120, 10},
		{121, 11},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, Sqrt(big.NewInt(tt.in)).Int64(), "sqrt(%d)", tt.in)
	}
}

func TestSqrt_MatchesFloorSqrt(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	limit := new(big.Int).Lsh(big.NewInt(1), 256)
	for i := 0; i < 500; i++ {
		y := new(big.Int).Rand(rng, limit)
		got := Sqrt(y)
		want := new(big.Int).Sqrt(y)
		require.Zero(t, want.Cmp(got), "sqrt(%s): want %s got %s", y, want, got)
	}
}

func TestSqrt_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	y := bi("1000000")
	_ = Sqrt(y)
	require.Equal(t, "1000000", y.String())
}

func TestMinRatio(t *testing.T) {
	t.Parallel()

	require.Equal(t, "2", MinRatio(bi("20"), bi("30"), bi("10"), bi("10")).String())
	require.Equal(t, "0", MinRatio(bi("5"), bi("50"), bi("10"), bi("10")).String())
	// zero reserve counts as one
	require.Equal(t, "7", MinRatio(bi("7"), bi("9"), bi("0"), bi("0")).String())
}

func TestMintAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name               string
		amountA, amountB   string
		supply             string
		reserveA, reserveB string
		want               string
	}{
		{
			name:    "bootstrap geometric mean",
			amountA: "10", amountB: "10", supply: "0",
			reserveA: "0", reserveB: "0",
			want: "10",
		},
		{
			name:    "bootstrap floors",
			amountA: "2", amountB: "5", supply: "0",
			reserveA: "0", reserveB: "0",
			want: "3",
		},
		{
			name:    "doubling the pool doubles supply",
			amountA: "10", amountB: "10", supply: "10",
			reserveA: "10", reserveB: "10",
			want: "10",
		},
		{
			name:    "min side wins",
			amountA: "30", amountB: "10", supply: "10",
			reserveA: "10", reserveB: "10",
			want: "10",
		},
		{
			name:    "small deposit truncates to zero",
			amountA: "5", amountB: "5", supply: "10",
			reserveA: "10", reserveB: "10",
			want: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := MintAmount(bi(tt.amountA), bi(tt.amountB), bi(tt.supply), bi(tt.reserveA), bi(tt.reserveB))
			require.NoError(t, err)
			require.Equal(t, tt.want, got.String())
		})
	}
}

func TestMintAmount_Overflow(t *testing.T) {
	t.Parallel()

	huge := new(big.Int).Lsh(big.NewInt(1), 200)
	_, err := MintAmount(huge, huge, bi("0"), bi("0"), bi("0"))
	require.ErrorIs(t, err, apperrors.ErrOverflow)

	_, err = MintAmount(huge, huge, huge, bi("1"), bi("1"))
	require.ErrorIs(t, err, apperrors.ErrOverflow)
}

func TestMintAmount_InvalidInput(t *testing.T) {
	t.Parallel()

	_, err := MintAmount(nil, bi("1"), bi("0"), bi("0"), bi("0"))
	require.ErrorIs(t, err, apperrors.ErrInvalidArgument)

	_, err = MintAmount(bi("1"), bi("-1"), bi("0"), bi("0"), bi("0"))
	require.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}
