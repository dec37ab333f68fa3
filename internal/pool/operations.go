package pool

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/fleshka4/ammpool/internal/apperrors"
	"github.com/fleshka4/ammpool/internal/dexmath"
	"github.com/fleshka4/ammpool/internal/liquidity"
	"github.com/fleshka4/ammpool/internal/model"
)

// DepositParams describes a deposit of a pair of assets.
type DepositParams struct {
	Caller    common.Address
	AssetA    common.Address
	AssetB    common.Address
	DesiredA  *big.Int
	DesiredB  *big.Int
	MinA      *big.Int
	MinB      *big.Int
	Recipient common.Address
	// Deadline is a unix timestamp in seconds.
	Deadline uint64
}

type DepositResult struct {
	AmountA *big.Int
	AmountB *big.Int
	Claim   *big.Int
	Record  model.Record
}

// WithdrawParams describes the redemption of claims for the underlying assets.
type WithdrawParams struct {
	Caller    common.Address
	AssetA    common.Address
	AssetB    common.Address
	Claim     *big.Int
	MinA      *big.Int
	MinB      *big.Int
	Recipient common.Address
	Deadline  uint64
}

type WithdrawResult struct {
	AmountA *big.Int
	AmountB *big.Int
	Record  model.Record
}

// SwapParams describes a swap of Path[0] for Path[1].
type SwapParams struct {
	Caller       common.Address
	AmountIn     *big.Int
	MinAmountOut *big.Int
	Path         []common.Address
	Recipient    common.Address
	Deadline     uint64
}

type SwapResult struct {
	AmountIn  *big.Int
	AmountOut *big.Int
	Record    model.Record
}

type ReconcileResult struct {
	Previous *big.Int
	Current  *big.Int
	Record   model.Record
}

func orZero(x *big.Int) *big.Int {
	if x == nil {
		return new(big.Int)
	}
	return x
}

// Deposit pulls a ratio-preserving pair of amounts from the caller and mints
// claims to the recipient.
func (p *Pool) Deposit(params DepositParams) (*DepositResult, error) {
	if err := p.checkDeadline(params.Deadline); err != nil {
		return nil, err
	}
	if params.AssetA == params.AssetB {
		return nil, errors.Wrap(apperrors.ErrInvalidPath, "deposit of identical assets")
	}
	minA, minB := orZero(params.MinA), orZero(params.MinB)
	for _, x := range []*big.Int{params.DesiredA, params.DesiredB, minA, minB} {
		if err := dexmath.CheckAmount(x); err != nil {
			return nil, err
		}
	}
	if params.DesiredA.Sign() == 0 || params.DesiredB.Sign() == 0 {
		return nil, errors.Wrap(apperrors.ErrInsufficientAmount, "desired amounts must be positive")
	}

	var res *DepositResult
	err := p.execute("deposit", func() error {
		reserveA := p.reserves.Get(params.AssetA)
		reserveB := p.reserves.Get(params.AssetB)
		supply := p.claims.TotalSupply()

		amountA, amountB, err := dexmath.OptimalDeposit(params.DesiredA, params.DesiredB, minA, minB, reserveA, reserveB)
		if err != nil {
			return errors.Wrap(err, "dexmath.OptimalDeposit")
		}

		if err := p.pull(params.AssetA, params.Caller, amountA); err != nil {
			return err
		}
		if err := p.pull(params.AssetB, params.Caller, amountB); err != nil {
			return err
		}
		if err := p.reserves.Increase(params.AssetA, amountA); err != nil {
			return errors.Wrap(err, "p.reserves.Increase")
		}
		if err := p.reserves.Increase(params.AssetB, amountB); err != nil {
			return errors.Wrap(err, "p.reserves.Increase")
		}

		claim, err := liquidity.MintAmount(amountA, amountB, supply, reserveA, reserveB)
		if err != nil {
			return errors.Wrap(err, "liquidity.MintAmount")
		}
		if err := p.claims.Mint(params.Recipient, claim); err != nil {
			return errors.Wrap(err, "p.claims.Mint")
		}
		if claim.Sign() == 0 {
			p.log.Warn("deposit minted no claims",
				zap.String("provider", params.Caller.Hex()),
				zap.Stringer("amount_a", amountA),
				zap.Stringer("amount_b", amountB),
			)
		}

		rec := p.appendRecord(model.Record{
			Kind: model.KindDeposit,
			Deposit: &model.DepositRecord{
				Provider:    params.Caller,
				Recipient:   params.Recipient,
				AssetA:      params.AssetA,
				AssetB:      params.AssetB,
				AmountA:     amountA,
				AmountB:     amountB,
				ClaimAmount: claim,
			},
		})
		res = &DepositResult{AmountA: amountA, AmountB: amountB, Claim: claim, Record: rec}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Withdraw burns the caller's claims and sends the proportional share of both
// reserves to the recipient.
func (p *Pool) Withdraw(params WithdrawParams) (*WithdrawResult, error) {
	if err := p.checkDeadline(params.Deadline); err != nil {
		return nil, err
	}
	if params.AssetA == params.AssetB {
		return nil, errors.Wrap(apperrors.ErrInvalidPath, "withdrawal of identical assets")
	}
	minA, minB := orZero(params.MinA), orZero(params.MinB)
	for _, x := range []*big.Int{params.Claim, minA, minB} {
		if err := dexmath.CheckAmount(x); err != nil {
			return nil, err
		}
	}

	var res *WithdrawResult
	err := p.execute("withdraw", func() error {
		reserveA := p.reserves.Get(params.AssetA)
		reserveB := p.reserves.Get(params.AssetB)
		supply := p.claims.TotalSupply()

		amountA, amountB, err := dexmath.ProportionalWithdrawal(params.Claim, reserveA, reserveB, supply)
		if err != nil {
			return errors.Wrap(err, "dexmath.ProportionalWithdrawal")
		}
		if amountA.Cmp(minA) < 0 {
			return errors.Wrapf(apperrors.ErrBelowMinimumA, "%s < min %s", amountA, minA)
		}
		if amountB.Cmp(minB) < 0 {
			return errors.Wrapf(apperrors.ErrBelowMinimumB, "%s < min %s", amountB, minB)
		}

		if err := p.reserves.Decrease(params.AssetA, amountA); err != nil {
			return errors.Wrap(err, "p.reserves.Decrease")
		}
		if err := p.reserves.Decrease(params.AssetB, amountB); err != nil {
			return errors.Wrap(err, "p.reserves.Decrease")
		}
		if err := p.claims.Burn(params.Caller, params.Claim); err != nil {
			return errors.Wrap(err, "p.claims.Burn")
		}
		if err := p.push(params.AssetA, params.Recipient, amountA); err != nil {
			return err
		}
		if err := p.push(params.AssetB, params.Recipient, amountB); err != nil {
			return err
		}

		rec := p.appendRecord(model.Record{
			Kind: model.KindWithdrawal,
			Withdrawal: &model.WithdrawalRecord{
				Provider:    params.Caller,
				Recipient:   params.Recipient,
				AssetA:      params.AssetA,
				AssetB:      params.AssetB,
				AmountA:     amountA,
				AmountB:     amountB,
				ClaimAmount: new(big.Int).Set(params.Claim),
			},
		})
		res = &WithdrawResult{AmountA: amountA, AmountB: amountB, Record: rec}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Swap sells AmountIn of Path[0] for Path[1] at the current reserve ratio.
func (p *Pool) Swap(params SwapParams) (*SwapResult, error) {
	if err := p.checkDeadline(params.Deadline); err != nil {
		return nil, err
	}
	if len(params.Path) != 2 {
		return nil, errors.Wrapf(apperrors.ErrInvalidPath, "path of length %d", len(params.Path))
	}
	assetIn, assetOut := params.Path[0], params.Path[1]
	if assetIn == assetOut {
		return nil, errors.Wrap(apperrors.ErrInvalidPath, "swap of identical assets")
	}
	minOut := orZero(params.MinAmountOut)
	if err := dexmath.CheckAmount(minOut); err != nil {
		return nil, err
	}

	var res *SwapResult
	err := p.execute("swap", func() error {
		amountOut := new(big.Int)
		if err := dexmath.QuoteInto(amountOut, params.AmountIn, p.reserves.Get(assetIn), p.reserves.Get(assetOut)); err != nil {
			return errors.Wrap(err, "dexmath.QuoteInto")
		}
		if amountOut.Cmp(minOut) < 0 {
			return errors.Wrapf(apperrors.ErrSlippageExceeded, "out %s < min %s", amountOut, minOut)
		}

		if err := p.pull(assetIn, params.Caller, params.AmountIn); err != nil {
			return err
		}
		if err := p.reserves.Increase(assetIn, params.AmountIn); err != nil {
			return errors.Wrap(err, "p.reserves.Increase")
		}
		if err := p.reserves.Decrease(assetOut, amountOut); err != nil {
			return errors.Wrap(err, "p.reserves.Decrease")
		}
		if err := p.push(assetOut, params.Recipient, amountOut); err != nil {
			return err
		}

		amountIn := new(big.Int).Set(params.AmountIn)
		rec := p.appendRecord(model.Record{
			Kind: model.KindSwap,
			Swap: &model.SwapRecord{
				Trader:    params.Caller,
				Recipient: params.Recipient,
				AssetIn:   assetIn,
				AssetOut:  assetOut,
				AmountIn:  amountIn,
				AmountOut: amountOut,
			},
		})
		res = &SwapResult{AmountIn: amountIn, AmountOut: amountOut, Record: rec}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ReconcileReserve overwrites the tracked reserve of id with the balance the
// pool address actually holds. Only the owner may call it.
func (p *Pool) ReconcileReserve(caller, id common.Address) (*ReconcileResult, error) {
	if caller != p.owner {
		return nil, errors.Wrapf(apperrors.ErrUnauthorized, "%s is not the owner", caller.Hex())
	}

	var res *ReconcileResult
	err := p.execute("reconcile", func() error {
		observed, err := p.observe(id)
		if err != nil {
			return err
		}
		prev, err := p.reserves.Reconcile(id, observed)
		if err != nil {
			return errors.Wrap(err, "p.reserves.Reconcile")
		}

		rec := p.appendRecord(model.Record{
			Kind: model.KindReconcile,
			Reconcile: &model.ReconcileRecord{
				Asset:    id,
				Previous: prev,
				Current:  observed,
			},
		})
		res = &ReconcileResult{Previous: prev, Current: observed, Record: rec}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// observe reads the pool's balance from the registry that performs its
// transfers, so a reconciled reserve is always backed by movable funds.
func (p *Pool) observe(id common.Address) (*big.Int, error) {
	a, err := p.asset(id)
	if err != nil {
		return nil, err
	}
	return a.BalanceOf(p.address), nil
}

// TransferClaims moves claims between holders.
func (p *Pool) TransferClaims(from, to common.Address, amount *big.Int) error {
	if err := dexmath.CheckAmount(amount); err != nil {
		return err
	}
	return p.execute("transferClaims", func() error {
		return errors.Wrap(p.claims.Transfer(from, to, amount), "p.claims.Transfer")
	})
}
