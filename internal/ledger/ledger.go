// Package ledger tracks how much of each asset the pool believes it holds.
//
// The ledger is only changed by explicit calls. It never reads live asset
// balances, so pricing always runs against the tracked figures.
package ledger

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/fleshka4/ammpool/internal/apperrors"
	"github.com/fleshka4/ammpool/internal/dexmath"
)

type change struct {
	asset   common.Address
	prev    *big.Int
	existed bool
}

// Ledger is a per-asset reserve book. It is safe for concurrent use.
type Ledger struct {
	mu       sync.RWMutex
	reserves map[common.Address]*big.Int

	// journal holds undo entries while a checkpoint is open.
	journal   []change
	recording bool
}

func New() *Ledger {
	return &Ledger{reserves: make(map[common.Address]*big.Int)}
}

// Get returns a copy of the reserve of asset, zero when it was never touched.
func (l *Ledger) Get(asset common.Address) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if v, ok := l.reserves[asset]; ok {
		return new(big.Int).Set(v)
	}
	return new(big.Int)
}

// Increase adds amount to the reserve of asset.
func (l *Ledger) Increase(asset common.Address, amount *big.Int) error {
	if err := dexmath.CheckAmount(amount); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	next := new(big.Int).Add(l.current(asset), amount)
	if err := dexmath.CheckAmount(next); err != nil {
		return errors.Wrapf(err, "reserve %s", asset.Hex())
	}
	l.set(asset, next)
	return nil
}

// Decrease subtracts amount from the reserve of asset and fails with
// ErrUnderflow if the reserve is smaller than amount.
func (l *Ledger) Decrease(asset common.Address, amount *big.Int) error {
	if err := dexmath.CheckAmount(amount); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	cur := l.current(asset)
	if cur.Cmp(amount) < 0 {
		return errors.Wrapf(apperrors.ErrUnderflow, "reserve %s: %s < %s", asset.Hex(), cur, amount)
	}
	l.set(asset, new(big.Int).Sub(cur, amount))
	return nil
}

// Reconcile overwrites the reserve of asset with an observed balance and
// returns the previous value.
func (l *Ledger) Reconcile(asset common.Address, actual *big.Int) (*big.Int, error) {
	if err := dexmath.CheckAmount(actual); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	prev := new(big.Int).Set(l.current(asset))
	l.set(asset, new(big.Int).Set(actual))
	return prev, nil
}

// Snapshot returns a deep copy of all reserves.
func (l *Ledger) Snapshot() map[common.Address]*big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make(map[common.Address]*big.Int, len(l.reserves))
	for k, v := range l.reserves {
		out[k] = new(big.Int).Set(v)
	}
	return out
}

// Restore replaces every reserve with the given values and drops the journal.
func (l *Ledger) Restore(reserves map[common.Address]*big.Int) error {
	next := make(map[common.Address]*big.Int, len(reserves))
	for k, v := range reserves {
		if err := dexmath.CheckAmount(v); err != nil {
			return errors.Wrapf(err, "reserve %s", k.Hex())
		}
		next[k] = new(big.Int).Set(v)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.reserves = next
	l.journal = nil
	l.recording = false
	return nil
}

// Checkpoint starts recording undo entries and returns a revision id that
// RevertTo accepts.
func (l *Ledger) Checkpoint() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.recording = true
	return len(l.journal)
}

// RevertTo undoes every change made after the checkpoint id.
func (l *Ledger) RevertTo(id int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if id < 0 || id > len(l.journal) {
		return
	}
	for i := len(l.journal) - 1; i >= id; i-- {
		c := l.journal[i]
		if c.existed {
			l.reserves[c.asset] = c.prev
		} else {
			delete(l.reserves, c.asset)
		}
	}
	l.journal = l.journal[:id]
}

// Commit discards the journal and stops recording.
func (l *Ledger) Commit() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.journal = nil
	l.recording = false
}

func (l *Ledger) current(asset common.Address) *big.Int {
	if v, ok := l.reserves[asset]; ok {
		return v
	}
	return new(big.Int)
}

// set must be called with mu held. Stored values are never mutated in place,
// so the journal can keep the old pointer.
func (l *Ledger) set(asset common.Address, v *big.Int) {
	if l.recording {
		prev, ok := l.reserves[asset]
		l.journal = append(l.journal, change{asset: asset, prev: prev, existed: ok})
	}
	l.reserves[asset] = v
}
