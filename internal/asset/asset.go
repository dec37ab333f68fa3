// Package asset describes the fungible-asset capability the pool moves funds
// through, and ships an in-memory implementation of it.
package asset

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

var (
	// ErrUnknownAsset is returned by a Registry for an id it does not serve.
	ErrUnknownAsset = errors.New("unknown asset")

	// ErrInsufficientFunds is returned when the sender balance is too low.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInsufficientAllowance is returned by TransferFrom when the spender was
	// not approved for the amount.
	ErrInsufficientAllowance = errors.New("insufficient allowance")
)

// Asset moves one fungible asset between owners.
type Asset interface {
	// Transfer moves amount from the balance of from to to.
	Transfer(from, to common.Address, amount *big.Int) error
	// TransferFrom moves amount from from to to on behalf of spender,
	// consuming the allowance from granted to spender.
	TransferFrom(spender, from, to common.Address, amount *big.Int) error
	// BalanceOf returns the balance of owner.
	BalanceOf(owner common.Address) *big.Int
}

// Registry resolves asset ids to their transfer capability.
type Registry interface {
	Asset(id common.Address) (Asset, error)
}
