package service

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fleshka4/ammpool/internal/model"
	"github.com/fleshka4/ammpool/internal/pool"
	"github.com/fleshka4/ammpool/internal/service/dto"
)

// Service represents interface for business logic.
type Service interface {
	Quote(ctx context.Context, req dto.QuoteRequest) (*big.Int, error)
	Price(ctx context.Context, req dto.PairRequest) (*big.Int, error)
	Reserves(ctx context.Context, req dto.PairRequest) (*dto.Reserves, error)
	Records(ctx context.Context, req dto.RecordsRequest) ([]model.Record, error)
	Position(ctx context.Context, req dto.PositionRequest) (*dto.Position, error)
	Balance(ctx context.Context, req dto.BalanceRequest) (*big.Int, error)

	Deposit(ctx context.Context, req dto.DepositRequest) (*pool.DepositResult, error)
	Withdraw(ctx context.Context, req dto.WithdrawRequest) (*pool.WithdrawResult, error)
	Swap(ctx context.Context, req dto.SwapRequest) (*pool.SwapResult, error)
	Reconcile(ctx context.Context, req dto.ReconcileRequest) (*pool.ReconcileResult, error)
	TransferClaims(ctx context.Context, req dto.TransferClaimsRequest) error
	Approve(ctx context.Context, req dto.ApproveRequest) error
	Faucet(ctx context.Context, req dto.FaucetRequest) error

	// PoolAddress returns the address the pool holds funds under.
	PoolAddress() common.Address
}
