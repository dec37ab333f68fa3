// Package liquidity computes how many claim tokens a deposit is worth.
package liquidity

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/fleshka4/ammpool/internal/dexmath"
)

var (
	one   = big.NewInt(1)
	two   = big.NewInt(2)
	three = big.NewInt(3)
)

// Sqrt returns the largest z with z*z <= y.
//
// The Babylonian iteration starts from y/2+1 and stops as soon as the next
// estimate stops decreasing. Sqrt(0) is 0 and Sqrt(y) is 1 for 0 < y <= 3.
func Sqrt(y *big.Int) *big.Int {
	if y.Cmp(three) > 0 {
		z := new(big.Int).Set(y)
		x := new(big.Int).Rsh(y, 1)
		x.Add(x, one)
		next := new(big.Int)
		for x.Cmp(z) < 0 {
			z.Set(x)
			// x = (y/x + x) / 2
			next.Quo(y, x)
			next.Add(next, x)
			x.Quo(next, two)
		}
		return z
	}
	if y.Sign() != 0 {
		return big.NewInt(1)
	}
	return new(big.Int)
}

// MinRatio returns min(amountA/reserveA, amountB/reserveB) with truncating
// integer division. A zero reserve is treated as one.
//
// The ratio is truncated before it is scaled by the total supply, so a deposit
// that is small next to the reserves yields zero.
func MinRatio(amountA, amountB, reserveA, reserveB *big.Int) *big.Int {
	ratioA := new(big.Int).Quo(amountA, atLeastOne(reserveA))
	ratioB := new(big.Int).Quo(amountB, atLeastOne(reserveB))
	if ratioA.Cmp(ratioB) < 0 {
		return ratioA
	}
	return ratioB
}

func atLeastOne(x *big.Int) *big.Int {
	if x.Sign() == 0 {
		return one
	}
	return x
}

// MintAmount returns the claim amount owed for depositing amountA and amountB
// into reserves (reserveA, reserveB) with totalSupply claims outstanding.
// Reserves and supply must be the values before the deposit is applied.
//
// The first deposit mints the geometric mean of the two amounts, which sets
// the exchange rate between deposited value and claim units.
func MintAmount(amountA, amountB, totalSupply, reserveA, reserveB *big.Int) (*big.Int, error) {
	for _, x := range []*big.Int{amountA, amountB, totalSupply, reserveA, reserveB} {
		if err := dexmath.CheckAmount(x); err != nil {
			return nil, err
		}
	}

	if totalSupply.Sign() == 0 {
		product := new(big.Int).Mul(amountA, amountB)
		if err := dexmath.CheckAmount(product); err != nil {
			return nil, errors.Wrap(err, "amountA * amountB")
		}
		return Sqrt(product), nil
	}

	claim := MinRatio(amountA, amountB, reserveA, reserveB)
	claim.Mul(claim, totalSupply)
	if err := dexmath.CheckAmount(claim); err != nil {
		return nil, errors.Wrap(err, "ratio * totalSupply")
	}
	return claim, nil
}
