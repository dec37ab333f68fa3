// Package model holds the records and state the pool persists.
package model

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// RecordKind tags the payload of a Record.
type RecordKind string

const (
	KindDeposit    RecordKind = "deposit"
	KindWithdrawal RecordKind = "withdrawal"
	KindSwap       RecordKind = "swap"
	KindReconcile  RecordKind = "reconcile"
)

// DepositRecord is appended for every successful deposit.
type DepositRecord struct {
	Provider    common.Address `json:"provider"`
	Recipient   common.Address `json:"recipient"`
	AssetA      common.Address `json:"asset_a"`
	AssetB      common.Address `json:"asset_b"`
	AmountA     *big.Int       `json:"amount_a"`
	AmountB     *big.Int       `json:"amount_b"`
	ClaimAmount *big.Int       `json:"claim_amount"`
}

// WithdrawalRecord is appended for every successful withdrawal.
type WithdrawalRecord struct {
	Provider    common.Address `json:"provider"`
	Recipient   common.Address `json:"recipient"`
	AssetA      common.Address `json:"asset_a"`
	AssetB      common.Address `json:"asset_b"`
	AmountA     *big.Int       `json:"amount_a"`
	AmountB     *big.Int       `json:"amount_b"`
	ClaimAmount *big.Int       `json:"claim_amount"`
}

// SwapRecord is appended for every successful swap.
type SwapRecord struct {
	Trader    common.Address `json:"trader"`
	Recipient common.Address `json:"recipient"`
	AssetIn   common.Address `json:"asset_in"`
	AssetOut  common.Address `json:"asset_out"`
	AmountIn  *big.Int       `json:"amount_in"`
	AmountOut *big.Int       `json:"amount_out"`
}

// ReconcileRecord is appended when the owner overwrites a tracked reserve.
type ReconcileRecord struct {
	Asset    common.Address `json:"asset"`
	Previous *big.Int       `json:"previous"`
	Current  *big.Int       `json:"current"`
}

// Record is one entry of the append-only operation log. Exactly one payload
// field matching Kind is set.
type Record struct {
	Seq       uint64     `json:"seq"`
	Kind      RecordKind `json:"kind"`
	Timestamp time.Time  `json:"timestamp"`

	Deposit    *DepositRecord    `json:"deposit,omitempty"`
	Withdrawal *WithdrawalRecord `json:"withdrawal,omitempty"`
	Swap       *SwapRecord       `json:"swap,omitempty"`
	Reconcile  *ReconcileRecord  `json:"reconcile,omitempty"`
}

// Holding is a balance of the reference asset bank.
type Holding struct {
	Asset  common.Address `json:"asset"`
	Owner  common.Address `json:"owner"`
	Amount *big.Int       `json:"amount"`
}

// Allowance is an approval of the reference asset bank.
type Allowance struct {
	Asset   common.Address `json:"asset"`
	Owner   common.Address `json:"owner"`
	Spender common.Address `json:"spender"`
	Amount  *big.Int       `json:"amount"`
}

// State is everything needed to rebuild a pool after a restart.
type State struct {
	Reserves   map[common.Address]*big.Int `json:"reserves"`
	Claims     map[common.Address]*big.Int `json:"claims"`
	Holdings   []Holding                   `json:"holdings,omitempty"`
	Allowances []Allowance                 `json:"allowances,omitempty"`
	NextSeq    uint64                      `json:"next_seq"`
	UpdatedAt  time.Time                   `json:"updated_at"`
}
