package dexmath

import (
	"math/big"
	"sync"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/fleshka4/ammpool/internal/apperrors"
)

var (
	// Scale is the fixed-point scale of Price (1e18).
	Scale = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

	defaultMath = newMathService()
)

type mathTmp struct {
	a *big.Int
	b *big.Int
}

type mathService struct {
	pool *sync.Pool
}

func newMathService() *mathService {
	return &mathService{
		pool: &sync.Pool{
			New: func() any {
				return &mathTmp{
					a: new(big.Int),
					b: new(big.Int),
				}
			},
		},
	}
}

// CheckAmount reports whether x is a valid unsigned 256-bit amount.
func CheckAmount(x *big.Int) error {
	if x == nil || x.Sign() < 0 {
		return errors.Wrap(apperrors.ErrInvalidArgument, "amount must be a non-negative integer")
	}
	if _, overflow := uint256.FromBig(x); overflow {
		return errors.Wrapf(apperrors.ErrOverflow, "amount %s exceeds 256 bits", x.String())
	}
	return nil
}

func checkAmounts(xs ...*big.Int) error {
	for _, x := range xs {
		if err := CheckAmount(x); err != nil {
			return err
		}
	}
	return nil
}

func (m *mathService) quoteInto(out, amountIn, reserveIn, reserveOut *big.Int) error {
	if out == nil {
		return errors.Wrap(apperrors.ErrInvalidArgument, "nil output")
	}
	if err := checkAmounts(amountIn, reserveIn, reserveOut); err != nil {
		return err
	}
	if amountIn.Sign() == 0 {
		return apperrors.ErrInsufficientAmount
	}
	if reserveIn.Sign() == 0 || reserveOut.Sign() == 0 {
		return apperrors.ErrInsufficientLiquidity
	}

	t := m.pool.Get().(*mathTmp)
	defer m.pool.Put(t)

	// num := amountIn * reserveOut, must fit a 256-bit word.
	t.a.Mul(amountIn, reserveOut)
	if err := CheckAmount(t.a); err != nil {
		return errors.Wrap(err, "amountIn * reserveOut")
	}

	// out = num / reserveIn, no amountIn term in the denominator.
	out.Quo(t.a, reserveIn)
	return nil
}

// QuoteInto writes floor(amountIn * reserveOut / reserveIn) into out.
//
// The price is the plain reserve ratio: unlike a constant-product curve the
// denominator does not grow with amountIn, so the quoted price does not
// depend on the trade size. out must be non-nil; temporaries come from a pool.
func QuoteInto(out, amountIn, reserveIn, reserveOut *big.Int) error {
	return defaultMath.quoteInto(out, amountIn, reserveIn, reserveOut)
}

// Quote returns floor(amountIn * reserveOut / reserveIn) in a newly allocated
// *big.Int. It fails with ErrInsufficientAmount when amountIn is zero and with
// ErrInsufficientLiquidity when either reserve is zero.
func Quote(amountIn, reserveIn, reserveOut *big.Int) (*big.Int, error) {
	out := new(big.Int)
	if err := QuoteInto(out, amountIn, reserveIn, reserveOut); err != nil {
		return nil, err
	}
	return out, nil
}

// OptimalDeposit returns the amounts of a deposit that keep the current
// reserve ratio, never exceeding the desired amounts.
//
// With both reserves empty the desired amounts are accepted verbatim and set
// the initial ratio.
func OptimalDeposit(desiredA, desiredB, minA, minB, reserveA, reserveB *big.Int) (*big.Int, *big.Int, error) {
	if err := checkAmounts(desiredA, desiredB, minA, minB, reserveA, reserveB); err != nil {
		return nil, nil, err
	}

	if reserveA.Sign() == 0 && reserveB.Sign() == 0 {
		return new(big.Int).Set(desiredA), new(big.Int).Set(desiredB), nil
	}

	impliedB, err := Quote(desiredA, reserveA, reserveB)
	if err != nil {
		return nil, nil, errors.Wrap(err, "quote B")
	}
	if impliedB.Cmp(desiredB) <= 0 {
		if impliedB.Cmp(minB) < 0 {
			return nil, nil, errors.Wrapf(apperrors.ErrBelowMinimumB, "implied %s < min %s", impliedB, minB)
		}
		return new(big.Int).Set(desiredA), impliedB, nil
	}

	impliedA, err := Quote(desiredB, reserveB, reserveA)
	if err != nil {
		return nil, nil, errors.Wrap(err, "quote A")
	}
	if impliedA.Cmp(desiredA) > 0 {
		return nil, nil, errors.Wrapf(apperrors.ErrConstraintViolation, "implied A %s > desired %s", impliedA, desiredA)
	}
	if impliedA.Cmp(minA) < 0 {
		return nil, nil, errors.Wrapf(apperrors.ErrBelowMinimumA, "implied %s < min %s", impliedA, minA)
	}
	return impliedA, new(big.Int).Set(desiredB), nil
}

// ProportionalWithdrawal returns the share of both reserves redeemed by
// claimAmount out of totalSupply, rounded down.
func ProportionalWithdrawal(claimAmount, reserveA, reserveB, totalSupply *big.Int) (*big.Int, *big.Int, error) {
	if err := checkAmounts(claimAmount, reserveA, reserveB, totalSupply); err != nil {
		return nil, nil, err
	}
	if claimAmount.Sign() == 0 {
		return nil, nil, apperrors.ErrInsufficientAmount
	}
	if reserveA.Sign() == 0 || reserveB.Sign() == 0 || totalSupply.Sign() == 0 {
		return nil, nil, apperrors.ErrInsufficientLiquidity
	}

	amountA, err := share(claimAmount, reserveA, totalSupply)
	if err != nil {
		return nil, nil, errors.Wrap(err, "share A")
	}
	amountB, err := share(claimAmount, reserveB, totalSupply)
	if err != nil {
		return nil, nil, errors.Wrap(err, "share B")
	}
	return amountA, amountB, nil
}

func share(claimAmount, reserve, totalSupply *big.Int) (*big.Int, error) {
	out := new(big.Int).Mul(claimAmount, reserve)
	if err := CheckAmount(out); err != nil {
		return nil, err
	}
	return out.Quo(out, totalSupply), nil
}

// Price returns reserveB * Scale / reserveA: the amount of B one unit of A is
// worth, as an 18-decimal fixed-point number.
func Price(reserveA, reserveB *big.Int) (*big.Int, error) {
	if err := checkAmounts(reserveA, reserveB); err != nil {
		return nil, err
	}
	if reserveA.Sign() == 0 || reserveB.Sign() == 0 {
		return nil, apperrors.ErrInsufficientLiquidity
	}

	out := new(big.Int).Mul(reserveB, Scale)
	if err := CheckAmount(out); err != nil {
		return nil, errors.Wrap(err, "reserveB * scale")
	}
	return out.Quo(out, reserveA), nil
}
