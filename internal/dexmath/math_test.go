package dexmath

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/fleshka4/ammpool/internal/apperrors"
)

func bi(s string) *big.Int {
	z, _ := new(big.Int).SetString(s, 10)
	return z
}

func maxUint256() *big.Int {
	return new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
}

func TestQuoteInto_Basic(t *testing.T) {
	t.Parallel()

	out := new(big.Int)
	require.NoError(t, QuoteInto(out, bi("100"), bi("1000"), bi("1000")))
	require.Equal(t, "100", out.String())

	require.NoError(t, QuoteInto(out, bi("7"), bi("3"), bi("10")))
	require.Equal(t, "23", out.String()) // 70/3 = 23.3 -> 23
}

func TestQuote_Zeroes(t *testing.T) {
	t.Parallel()

	_, err := Quote(bi("0"), bi("1"), bi("1"))
	require.ErrorIs(t, err, apperrors.ErrInsufficientAmount)

	_, err = Quote(bi("1"), bi("0"), bi("1"))
	require.ErrorIs(t, err, apperrors.ErrInsufficientLiquidity)

	_, err = Quote(bi("1"), bi("1"), bi("0"))
	require.ErrorIs(t, err, apperrors.ErrInsufficientLiquidity)

	// amountIn is checked before the reserves.
	_, err = Quote(bi("0"), bi("0"), bi("0"))
	require.ErrorIs(t, err, apperrors.ErrInsufficientAmount)
}

func TestQuote_InvalidInputs(t *testing.T) {
	t.Parallel()

	_, err := Quote(nil, bi("1"), bi("1"))
	require.ErrorIs(t, err, apperrors.ErrInvalidArgument)

	_, err = Quote(bi("-1"), bi("1"), bi("1"))
	require.ErrorIs(t, err, apperrors.ErrInvalidArgument)

	_, err = Quote(maxUint256(), bi("1"), bi("2"))
	require.ErrorIs(t, err, apperrors.ErrOverflow)

	require.Error(t, QuoteInto(nil, bi("1"), bi("1"), bi("1")))
}

func TestQuote_EntireReserveIn(t *testing.T) {
	t.Parallel()

	out, err := Quote(bi("500"), bi("500"), bi("1234"))
	require.NoError(t, err)
	require.Equal(t, "1234", out.String())
}

func TestQuote_MatchesFloorAndIsMonotonic(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		rIn := big.NewInt(rng.Int63n(1_000_000) + 1)
		rOut := big.NewInt(rng.Int63n(1_000_000) + 1)

		var prev *big.Int
		for amount := int64(1); amount <= 50; amount++ {
			in := big.NewInt(amount)
			got, err := Quote(in, rIn, rOut)
			require.NoError(t, err)

			want := new(big.Int).Mul(in, rOut)
			want.Quo(want, rIn)
			require.Zero(t, want.Cmp(got), "want %s got %s", want, got)

			if prev != nil {
				require.True(t, got.Cmp(prev) >= 0, "quote must not decrease with amountIn")
			}
			prev = got
		}
	}
}

func TestOptimalDeposit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name               string
		desiredA, desiredB string
		minA, minB         string
		reserveA, reserveB string
		wantA, wantB       string
		wantErr            error
	}{
		{
			name:     "empty pool takes desired amounts",
			desiredA: "10", desiredB: "10", minA: "0", minB: "0",
			reserveA: "0", reserveB: "0",
			wantA: "10", wantB: "10",
		},
		{
			name:     "implied B within desired",
			desiredA: "10", desiredB: "30", minA: "0", minB: "0",
			reserveA: "10", reserveB: "20",
			wantA: "10", wantB: "20",
		},
		{
			name:     "implied B below minimum",
			desiredA: "10", desiredB: "30", minA: "0", minB: "21",
			reserveA: "10", reserveB: "20",
			wantErr: apperrors.ErrBelowMinimumB,
		},
		{
			name:     "falls back to implied A",
			desiredA: "10", desiredB: "2", minA: "0", minB: "0",
			reserveA: "10", reserveB: "20",
			wantA: "1", wantB: "2",
		},
		{
			name:     "implied A at minimum",
			desiredA: "10", desiredB: "2", minA: "1", minB: "0",
			reserveA: "10", reserveB: "20",
			wantA: "1", wantB: "2",
		},
		{
			name:     "implied A below minimum",
			desiredA: "10", desiredB: "2", minA: "2", minB: "0",
			reserveA: "10", reserveB: "20",
			wantErr: apperrors.ErrBelowMinimumA,
		},
		{
			name:     "one sided reserve",
			desiredA: "10", desiredB: "10", minA: "0", minB: "0",
			reserveA: "10", reserveB: "0",
			wantErr: apperrors.ErrInsufficientLiquidity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a, b, err := OptimalDeposit(bi(tt.desiredA), bi(tt.desiredB), bi(tt.minA), bi(tt.minB), bi(tt.reserveA), bi(tt.reserveB))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Nil(t, a)
				require.Nil(t, b)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantA, a.String())
			require.Equal(t, tt.wantB, b.String())
		})
	}
}

func TestOptimalDeposit_DoesNotAliasInputs(t *testing.T) {
	t.Parallel()

	desiredA, desiredB := bi("10"), bi("10")
	a, b, err := OptimalDeposit(desiredA, desiredB, bi("0"), bi("0"), bi("0"), bi("0"))
	require.NoError(t, err)

	a.SetInt64(99)
	b.SetInt64(99)
	require.Equal(t, "10", desiredA.String())
	require.Equal(t, "10", desiredB.String())
}

func TestOptimalDeposit_BelowMinimumKinds(t *testing.T) {
	t.Parallel()

	_, _, err := OptimalDeposit(bi("10"), bi("2"), bi("5"), bi("0"), bi("10"), bi("20"))
	require.True(t, errors.Is(err, apperrors.ErrBelowMinimum))
	require.False(t, errors.Is(err, apperrors.ErrBelowMinimumB))
}

func TestProportionalWithdrawal(t *testing.T) {
	t.Parallel()

	a, b, err := ProportionalWithdrawal(bi("5"), bi("10"), bi("21"), bi("10"))
	require.NoError(t, err)
	require.Equal(t, "5", a.String())
	require.Equal(t, "10", b.String()) // 105/10 -> 10

	a, b, err = ProportionalWithdrawal(bi("10"), bi("10"), bi("10"), bi("10"))
	require.NoError(t, err)
	require.Equal(t, "10", a.String())
	require.Equal(t, "10", b.String())

	_, _, err = ProportionalWithdrawal(bi("1"), bi("0"), bi("10"), bi("10"))
	require.ErrorIs(t, err, apperrors.ErrInsufficientLiquidity)

	_, _, err = ProportionalWithdrawal(bi("1"), bi("10"), bi("10"), bi("0"))
	require.ErrorIs(t, err, apperrors.ErrInsufficientLiquidity)

	_, _, err = ProportionalWithdrawal(bi("0"), bi("10"), bi("10"), bi("10"))
	require.ErrorIs(t, err, apperrors.ErrInsufficientAmount)
}

func TestPrice(t *testing.T) {
	t.Parallel()

	p, err := Price(bi("10"), bi("10"))
	require.NoError(t, err)
	require.Equal(t, "1000000000000000000", p.String())

	p, err = Price(bi("10"), bi("20"))
	require.NoError(t, err)
	require.Equal(t, "2000000000000000000", p.String())

	p, err = Price(bi("3"), bi("1"))
	require.NoError(t, err)
	require.Equal(t, "333333333333333333", p.String())

	_, err = Price(bi("0"), bi("10"))
	require.ErrorIs(t, err, apperrors.ErrInsufficientLiquidity)
}

func BenchmarkQuote_Allocating(b *testing.B) {
	ain := bi("1000000000000000000")
	rIn := bi("1234567890000000000000")
	rOut := bi("987654321000000000000000")
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Quote(ain, rIn, rOut); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkQuote_NoAllocs(b *testing.B) {
	ain := bi("1000000000000000000")
	rIn := bi("1234567890000000000000")
	rOut := bi("987654321000000000000000")
	out := new(big.Int)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if err := QuoteInto(out, ain, rIn, rOut); err != nil {
			b.Fatal(err)
		}
	}
}
