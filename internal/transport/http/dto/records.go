package dto

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fleshka4/ammpool/internal/model"
)

// LiquidityRecord is the payload of deposit and withdrawal records.
type LiquidityRecord struct {
	Provider    string `json:"provider"`
	Recipient   string `json:"recipient"`
	AssetA      string `json:"asset_a"`
	AssetB      string `json:"asset_b"`
	AmountA     string `json:"amount_a"`
	AmountB     string `json:"amount_b"`
	ClaimAmount string `json:"claim_amount"`
}

type SwapRecord struct {
	Trader    string `json:"trader"`
	Recipient string `json:"recipient"`
	AssetIn   string `json:"asset_in"`
	AssetOut  string `json:"asset_out"`
	AmountIn  string `json:"amount_in"`
	AmountOut string `json:"amount_out"`
}

type ReconcileRecord struct {
	Asset    string `json:"asset"`
	Previous string `json:"previous"`
	Current  string `json:"current"`
}

// Record mirrors model.Record with every amount as a decimal string.
type Record struct {
	Seq       uint64    `json:"seq"`
	Kind      string    `json:"kind"`
	Timestamp time.Time `json:"timestamp"`

	Deposit    *LiquidityRecord `json:"deposit,omitempty"`
	Withdrawal *LiquidityRecord `json:"withdrawal,omitempty"`
	Swap       *SwapRecord      `json:"swap,omitempty"`
	Reconcile  *ReconcileRecord `json:"reconcile,omitempty"`
}

type RecordsResponse struct {
	Records []Record `json:"records"`
}

// NewRecordsResponse converts log records into their wire form.
func NewRecordsResponse(records []model.Record) RecordsResponse {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		rec := Record{
			Seq:       r.Seq,
			Kind:      string(r.Kind),
			Timestamp: r.Timestamp,
		}
		if d := r.Deposit; d != nil {
			rec.Deposit = liquidity(d.Provider, d.Recipient, d.AssetA, d.AssetB, d.AmountA, d.AmountB, d.ClaimAmount)
		}
		if w := r.Withdrawal; w != nil {
			rec.Withdrawal = liquidity(w.Provider, w.Recipient, w.AssetA, w.AssetB, w.AmountA, w.AmountB, w.ClaimAmount)
		}
		if s := r.Swap; s != nil {
			rec.Swap = &SwapRecord{
				Trader:    s.Trader.Hex(),
				Recipient: s.Recipient.Hex(),
				AssetIn:   s.AssetIn.Hex(),
				AssetOut:  s.AssetOut.Hex(),
				AmountIn:  amount(s.AmountIn),
				AmountOut: amount(s.AmountOut),
			}
		}
		if c := r.Reconcile; c != nil {
			rec.Reconcile = &ReconcileRecord{
				Asset:    c.Asset.Hex(),
				Previous: amount(c.Previous),
				Current:  amount(c.Current),
			}
		}
		out = append(out, rec)
	}
	return RecordsResponse{Records: out}
}

func liquidity(provider, recipient, assetA, assetB common.Address, amountA, amountB, claim *big.Int) *LiquidityRecord {
	return &LiquidityRecord{
		Provider:    provider.Hex(),
		Recipient:   recipient.Hex(),
		AssetA:      assetA.Hex(),
		AssetB:      assetB.Hex(),
		AmountA:     amount(amountA),
		AmountB:     amount(amountB),
		ClaimAmount: amount(claim),
	}
}

func amount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
