package validate

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/fleshka4/ammpool/internal/apperrors"
	"github.com/fleshka4/ammpool/internal/service/dto"
)

var zeroAddress = common.Address{}

func addresses(names []string, addrs ...common.Address) error {
	for i, a := range addrs {
		if a == zeroAddress {
			return errors.Wrapf(apperrors.ErrInvalidArgument, "%s cannot be empty", names[i])
		}
	}
	return nil
}

func amounts(names []string, xs ...*big.Int) error {
	for i, x := range xs {
		if x == nil {
			return errors.Wrapf(apperrors.ErrInvalidArgument, "%s is required", names[i])
		}
		if x.Sign() < 0 {
			return errors.Wrapf(apperrors.ErrInvalidArgument, "%s cannot be negative", names[i])
		}
	}
	return nil
}

// QuoteRequestValidate validates a quote request.
func QuoteRequestValidate(req dto.QuoteRequest) error {
	return amounts([]string{"amount_in", "reserve_in", "reserve_out"}, req.AmountIn, req.ReserveIn, req.ReserveOut)
}

// PairRequestValidate validates a pair selection.
func PairRequestValidate(req dto.PairRequest) error {
	return addresses([]string{"asset_a", "asset_b"}, req.AssetA, req.AssetB)
}

// DepositRequestValidate validates a deposit. Pair and amount checks that
// depend on pool state are left to the pool.
func DepositRequestValidate(req dto.DepositRequest) error {
	if err := addresses([]string{"caller", "asset_a", "asset_b", "recipient"}, req.Caller, req.AssetA, req.AssetB, req.Recipient); err != nil {
		return err
	}
	return amounts([]string{"desired_a", "desired_b"}, req.DesiredA, req.DesiredB)
}

// WithdrawRequestValidate validates a withdrawal.
func WithdrawRequestValidate(req dto.WithdrawRequest) error {
	if err := addresses([]string{"caller", "asset_a", "asset_b", "recipient"}, req.Caller, req.AssetA, req.AssetB, req.Recipient); err != nil {
		return err
	}
	return amounts([]string{"claim"}, req.Claim)
}

// SwapRequestValidate validates a swap.
func SwapRequestValidate(req dto.SwapRequest) error {
	if err := addresses([]string{"caller", "recipient"}, req.Caller, req.Recipient); err != nil {
		return err
	}
	for _, a := range req.Path {
		if a == zeroAddress {
			return errors.Wrap(apperrors.ErrInvalidArgument, "path cannot contain an empty address")
		}
	}
	return amounts([]string{"amount_in"}, req.AmountIn)
}

// ReconcileRequestValidate validates a reconcile request.
func ReconcileRequestValidate(req dto.ReconcileRequest) error {
	return addresses([]string{"caller", "asset"}, req.Caller, req.Asset)
}

// TransferClaimsRequestValidate validates a claim transfer.
func TransferClaimsRequestValidate(req dto.TransferClaimsRequest) error {
	if err := addresses([]string{"from", "to"}, req.From, req.To); err != nil {
		return err
	}
	return amounts([]string{"amount"}, req.Amount)
}

// ApproveRequestValidate validates an approval.
func ApproveRequestValidate(req dto.ApproveRequest) error {
	if err := addresses([]string{"owner", "asset"}, req.Owner, req.Asset); err != nil {
		return err
	}
	return amounts([]string{"amount"}, req.Amount)
}

// FaucetRequestValidate validates a faucet credit.
func FaucetRequestValidate(req dto.FaucetRequest) error {
	if err := addresses([]string{"owner", "asset"}, req.Owner, req.Asset); err != nil {
		return err
	}
	if err := amounts([]string{"amount"}, req.Amount); err != nil {
		return err
	}
	if req.Amount.Sign() == 0 {
		return errors.Wrap(apperrors.ErrInvalidArgument, "amount cannot be zero")
	}
	return nil
}
