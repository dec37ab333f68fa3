package dto

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// QuoteRequest prices AmountIn against caller-supplied reserves.
type QuoteRequest struct {
	AmountIn   *big.Int
	ReserveIn  *big.Int
	ReserveOut *big.Int
}

// PairRequest selects two assets of the pool.
type PairRequest struct {
	AssetA common.Address
	AssetB common.Address
}

type Reserves struct {
	ReserveA *big.Int
	ReserveB *big.Int
}

// RecordsRequest pages through the record log.
type RecordsRequest struct {
	From  uint64
	Limit int
}

type PositionRequest struct {
	Owner common.Address
}

// Position is the claim holding of an owner.
type Position struct {
	Owner       common.Address
	Claims      *big.Int
	TotalSupply *big.Int
}

type DepositRequest struct {
	Caller    common.Address
	AssetA    common.Address
	AssetB    common.Address
	DesiredA  *big.Int
	DesiredB  *big.Int
	MinA      *big.Int
	MinB      *big.Int
	Recipient common.Address
	Deadline  uint64
}

type WithdrawRequest struct {
	Caller    common.Address
	AssetA    common.Address
	AssetB    common.Address
	Claim     *big.Int
	MinA      *big.Int
	MinB      *big.Int
	Recipient common.Address
	Deadline  uint64
}

type SwapRequest struct {
	Caller       common.Address
	AmountIn     *big.Int
	MinAmountOut *big.Int
	Path         []common.Address
	Recipient    common.Address
	Deadline     uint64
}

type ReconcileRequest struct {
	Caller common.Address
	Asset  common.Address
}

type TransferClaimsRequest struct {
	From   common.Address
	To     common.Address
	Amount *big.Int
}

// ApproveRequest lets the pool pull Amount of Asset from Owner.
type ApproveRequest struct {
	Owner  common.Address
	Asset  common.Address
	Amount *big.Int
}

// FaucetRequest credits Amount of Asset to Owner in the reference bank.
type FaucetRequest struct {
	Owner  common.Address
	Asset  common.Address
	Amount *big.Int
}

type BalanceRequest struct {
	Owner common.Address
	Asset common.Address
}
