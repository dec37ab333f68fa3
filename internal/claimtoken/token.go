// Package claimtoken is the fungible ledger of pool shares.
package claimtoken

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/fleshka4/ammpool/internal/apperrors"
	"github.com/fleshka4/ammpool/internal/dexmath"
)

// ErrInsufficientBalance is returned by Burn and Transfer when the holder owns
// fewer claims than requested.
var ErrInsufficientBalance = errors.Wrap(apperrors.ErrUnderflow, "insufficient claim balance")

type change struct {
	owner      common.Address
	prev       *big.Int
	existed    bool
	prevSupply *big.Int
}

// Token keeps balances and total supply. The supply always equals the sum of
// balances.
type Token struct {
	mu       sync.RWMutex
	balances map[common.Address]*big.Int
	supply   *big.Int

	journal   []change
	recording bool
}

func New() *Token {
	return &Token{
		balances: make(map[common.Address]*big.Int),
		supply:   new(big.Int),
	}
}

func (t *Token) Mint(to common.Address, amount *big.Int) error {
	if err := dexmath.CheckAmount(amount); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	supply := new(big.Int).Add(t.supply, amount)
	if err := dexmath.CheckAmount(supply); err != nil {
		return errors.Wrap(err, "total supply")
	}
	t.set(to, new(big.Int).Add(t.balance(to), amount), supply)
	return nil
}

func (t *Token) Burn(from common.Address, amount *big.Int) error {
	if err := dexmath.CheckAmount(amount); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	bal := t.balance(from)
	if bal.Cmp(amount) < 0 {
		return errors.Wrapf(ErrInsufficientBalance, "%s holds %s, burning %s", from.Hex(), bal, amount)
	}
	t.set(from, new(big.Int).Sub(bal, amount), new(big.Int).Sub(t.supply, amount))
	return nil
}

func (t *Token) Transfer(from, to common.Address, amount *big.Int) error {
	if err := dexmath.CheckAmount(amount); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	bal := t.balance(from)
	if bal.Cmp(amount) < 0 {
		return errors.Wrapf(ErrInsufficientBalance, "%s holds %s, sending %s", from.Hex(), bal, amount)
	}
	if from == to {
		return nil
	}
	t.set(from, new(big.Int).Sub(bal, amount), t.supply)
	t.set(to, new(big.Int).Add(t.balance(to), amount), t.supply)
	return nil
}

func (t *Token) BalanceOf(owner common.Address) *big.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return new(big.Int).Set(t.balance(owner))
}

func (t *Token) TotalSupply() *big.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return new(big.Int).Set(t.supply)
}

// Snapshot returns a copy of every non-zero balance.
func (t *Token) Snapshot() map[common.Address]*big.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[common.Address]*big.Int, len(t.balances))
	for k, v := range t.balances {
		if v.Sign() != 0 {
			out[k] = new(big.Int).Set(v)
		}
	}
	return out
}

// Restore loads balances and derives the supply from them.
func (t *Token) Restore(balances map[common.Address]*big.Int) error {
	next := make(map[common.Address]*big.Int, len(balances))
	supply := new(big.Int)
	for k, v := range balances {
		if err := dexmath.CheckAmount(v); err != nil {
			return errors.Wrapf(err, "balance %s", k.Hex())
		}
		next[k] = new(big.Int).Set(v)
		supply.Add(supply, v)
	}
	if err := dexmath.CheckAmount(supply); err != nil {
		return errors.Wrap(err, "total supply")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.balances = next
	t.supply = supply
	t.journal = nil
	t.recording = false
	return nil
}

func (t *Token) Checkpoint() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.recording = true
	return len(t.journal)
}

func (t *Token) RevertTo(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if id < 0 || id > len(t.journal) {
		return
	}
	for i := len(t.journal) - 1; i >= id; i-- {
		c := t.journal[i]
		if c.existed {
			t.balances[c.owner] = c.prev
		} else {
			delete(t.balances, c.owner)
		}
		t.supply = c.prevSupply
	}
	t.journal = t.journal[:id]
}

func (t *Token) Commit() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.journal = nil
	t.recording = false
}

func (t *Token) balance(owner common.Address) *big.Int {
	if v, ok := t.balances[owner]; ok {
		return v
	}
	return new(big.Int)
}

func (t *Token) set(owner common.Address, balance, supply *big.Int) {
	if t.recording {
		prev, ok := t.balances[owner]
		t.journal = append(t.journal, change{owner: owner, prev: prev, existed: ok, prevSupply: t.supply})
	}
	t.balances[owner] = balance
	t.supply = supply
}
