package asset

import (
	"bytes"
	"math/big"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/fleshka4/ammpool/internal/dexmath"
	"github.com/fleshka4/ammpool/internal/model"
)

// Hook runs after a Bank transfer has been applied and outside the Bank lock.
// It mirrors a receiver callback of a token contract and is mostly useful in
// tests.
type Hook func(id, from, to common.Address, amount *big.Int)

type slot struct {
	id    common.Address
	owner common.Address
	// spender is zero for balance slots.
	spender common.Address
}

type change struct {
	allowance bool
	key       slot
	prev      *big.Int
	existed   bool
}

// Bank is an in-memory multi-asset ledger with ERC-20 style allowances. It
// implements Registry for the assets it was created with.
type Bank struct {
	mu         sync.RWMutex
	known      map[common.Address]struct{}
	balances   map[slot]*big.Int
	allowances map[slot]*big.Int
	hook       Hook

	journal   []change
	recording bool
}

func NewBank(ids ...common.Address) *Bank {
	b := &Bank{
		known:      make(map[common.Address]struct{}, len(ids)),
		balances:   make(map[slot]*big.Int),
		allowances: make(map[slot]*big.Int),
	}
	for _, id := range ids {
		b.known[id] = struct{}{}
	}
	return b
}

// SetHook installs h, replacing any previous hook. A nil h removes it.
func (b *Bank) SetHook(h Hook) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hook = h
}

// Asset implements Registry.
func (b *Bank) Asset(id common.Address) (Asset, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if _, ok := b.known[id]; !ok {
		return nil, errors.Wrap(ErrUnknownAsset, id.Hex())
	}
	return &bankAsset{bank: b, id: id}, nil
}

// Assets returns the ids the bank serves in ascending byte order.
func (b *Bank) Assets() []common.Address {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]common.Address, 0, len(b.known))
	for id := range b.known {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i][:], out[j][:]) < 0
	})
	return out
}

// Credit mints amount of asset id to owner.
func (b *Bank) Credit(id, owner common.Address, amount *big.Int) error {
	if err := dexmath.CheckAmount(amount); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.known[id]; !ok {
		return errors.Wrap(ErrUnknownAsset, id.Hex())
	}
	key := slot{id: id, owner: owner}
	next := new(big.Int).Add(b.get(b.balances, key), amount)
	if err := dexmath.CheckAmount(next); err != nil {
		return errors.Wrapf(err, "balance of %s", owner.Hex())
	}
	b.put(false, key, next)
	return nil
}

// Approve sets the allowance owner grants spender on asset id.
func (b *Bank) Approve(id, owner, spender common.Address, amount *big.Int) error {
	if err := dexmath.CheckAmount(amount); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.known[id]; !ok {
		return errors.Wrap(ErrUnknownAsset, id.Hex())
	}
	b.put(true, slot{id: id, owner: owner, spender: spender}, new(big.Int).Set(amount))
	return nil
}

func (b *Bank) Allowance(id, owner, spender common.Address) *big.Int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return new(big.Int).Set(b.get(b.allowances, slot{id: id, owner: owner, spender: spender}))
}

func (b *Bank) BalanceOf(id, owner common.Address) *big.Int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return new(big.Int).Set(b.get(b.balances, slot{id: id, owner: owner}))
}

func (b *Bank) transfer(id, spender, from, to common.Address, amount *big.Int, useAllowance bool) error {
	if err := dexmath.CheckAmount(amount); err != nil {
		return err
	}

	b.mu.Lock()
	if err := b.move(id, spender, from, to, amount, useAllowance); err != nil {
		b.mu.Unlock()
		return err
	}
	hook := b.hook
	b.mu.Unlock()

	if hook != nil {
		hook(id, from, to, amount)
	}
	return nil
}

func (b *Bank) move(id, spender, from, to common.Address, amount *big.Int, useAllowance bool) error {
	if _, ok := b.known[id]; !ok {
		return errors.Wrap(ErrUnknownAsset, id.Hex())
	}

	var (
		allowKey slot
		allowed  *big.Int
	)
	if useAllowance {
		allowKey = slot{id: id, owner: from, spender: spender}
		allowed = b.get(b.allowances, allowKey)
		if allowed.Cmp(amount) < 0 {
			return errors.Wrapf(ErrInsufficientAllowance, "%s allows %s %s, need %s", from.Hex(), spender.Hex(), allowed, amount)
		}
	}

	fromKey := slot{id: id, owner: from}
	bal := b.get(b.balances, fromKey)
	if bal.Cmp(amount) < 0 {
		return errors.Wrapf(ErrInsufficientFunds, "%s holds %s, need %s", from.Hex(), bal, amount)
	}

	if useAllowance {
		b.put(true, allowKey, new(big.Int).Sub(allowed, amount))
	}
	if from == to {
		return nil
	}
	toKey := slot{id: id, owner: to}
	b.put(false, fromKey, new(big.Int).Sub(bal, amount))
	b.put(false, toKey, new(big.Int).Add(b.get(b.balances, toKey), amount))
	return nil
}

func (b *Bank) get(m map[slot]*big.Int, key slot) *big.Int {
	if v, ok := m[key]; ok {
		return v
	}
	return new(big.Int)
}

func (b *Bank) put(allowance bool, key slot, v *big.Int) {
	m := b.balances
	if allowance {
		m = b.allowances
	}
	if b.recording {
		prev, ok := m[key]
		b.journal = append(b.journal, change{allowance: allowance, key: key, prev: prev, existed: ok})
	}
	m[key] = v
}

// Checkpoint starts recording undo entries and returns a revision id.
func (b *Bank) Checkpoint() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.recording = true
	return len(b.journal)
}

// RevertTo undoes every balance and allowance change after id.
func (b *Bank) RevertTo(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if id < 0 || id > len(b.journal) {
		return
	}
	for i := len(b.journal) - 1; i >= id; i-- {
		c := b.journal[i]
		m := b.balances
		if c.allowance {
			m = b.allowances
		}
		if c.existed {
			m[c.key] = c.prev
		} else {
			delete(m, c.key)
		}
	}
	b.journal = b.journal[:id]
}

func (b *Bank) Commit() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.journal = nil
	b.recording = false
}

type bankAsset struct {
	bank *Bank
	id   common.Address
}

func (a *bankAsset) Transfer(from, to common.Address, amount *big.Int) error {
	return a.bank.transfer(a.id, from, from, to, amount, false)
}

func (a *bankAsset) TransferFrom(spender, from, to common.Address, amount *big.Int) error {
	return a.bank.transfer(a.id, spender, from, to, amount, true)
}

func (a *bankAsset) BalanceOf(owner common.Address) *big.Int {
	return a.bank.BalanceOf(a.id, owner)
}

// Snapshot exports non-zero balances and allowances in a stable order.
func (b *Bank) Snapshot() ([]model.Holding, []model.Allowance) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	holdings := make([]model.Holding, 0, len(b.balances))
	for k, v := range b.balances {
		if v.Sign() == 0 {
			continue
		}
		holdings = append(holdings, model.Holding{Asset: k.id, Owner: k.owner, Amount: new(big.Int).Set(v)})
	}
	sort.Slice(holdings, func(i, j int) bool {
		if c := bytes.Compare(holdings[i].Asset[:], holdings[j].Asset[:]); c != 0 {
			return c < 0
		}
		return bytes.Compare(holdings[i].Owner[:], holdings[j].Owner[:]) < 0
	})

	allowances := make([]model.Allowance, 0, len(b.allowances))
	for k, v := range b.allowances {
		if v.Sign() == 0 {
			continue
		}
		allowances = append(allowances, model.Allowance{Asset: k.id, Owner: k.owner, Spender: k.spender, Amount: new(big.Int).Set(v)})
	}
	sort.Slice(allowances, func(i, j int) bool {
		a, c := allowances[i], allowances[j]
		if r := bytes.Compare(a.Asset[:], c.Asset[:]); r != 0 {
			return r < 0
		}
		if r := bytes.Compare(a.Owner[:], c.Owner[:]); r != 0 {
			return r < 0
		}
		return bytes.Compare(a.Spender[:], c.Spender[:]) < 0
	})

	return holdings, allowances
}

// Restore replaces all balances and allowances. Assets mentioned in the
// snapshot become known to the bank.
func (b *Bank) Restore(holdings []model.Holding, allowances []model.Allowance) error {
	balances := make(map[slot]*big.Int, len(holdings))
	grants := make(map[slot]*big.Int, len(allowances))
	ids := make(map[common.Address]struct{})

	for _, h := range holdings {
		if err := dexmath.CheckAmount(h.Amount); err != nil {
			return errors.Wrapf(err, "holding %s/%s", h.Asset.Hex(), h.Owner.Hex())
		}
		balances[slot{id: h.Asset, owner: h.Owner}] = new(big.Int).Set(h.Amount)
		ids[h.Asset] = struct{}{}
	}
	for _, a := range allowances {
		if err := dexmath.CheckAmount(a.Amount); err != nil {
			return errors.Wrapf(err, "allowance %s/%s", a.Asset.Hex(), a.Owner.Hex())
		}
		grants[slot{id: a.Asset, owner: a.Owner, spender: a.Spender}] = new(big.Int).Set(a.Amount)
		ids[a.Asset] = struct{}{}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for id := range ids {
		b.known[id] = struct{}{}
	}
	b.balances = balances
	b.allowances = grants
	b.journal = nil
	b.recording = false
	return nil
}
