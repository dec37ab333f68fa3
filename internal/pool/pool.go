// Package pool executes deposits, withdrawals and swaps against a pair of
// reserves. Every mutating call either completes or leaves no trace.
package pool

import (
	"math/big"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/fleshka4/ammpool/internal/apperrors"
	"github.com/fleshka4/ammpool/internal/asset"
	"github.com/fleshka4/ammpool/internal/claimtoken"
	"github.com/fleshka4/ammpool/internal/dexmath"
	"github.com/fleshka4/ammpool/internal/ledger"
	"github.com/fleshka4/ammpool/internal/model"
)

// Option configures a Pool.
type Option func(*Pool)

// WithClock overrides the time source used for deadlines and record stamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pool) {
		p.now = now
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(p *Pool) {
		p.log = log
	}
}

// Pool holds the reserve ledger and claim token of one pool address.
type Pool struct {
	address common.Address
	owner   common.Address

	assets   asset.Registry
	reserves *ledger.Ledger
	claims   *claimtoken.Token

	now   func() time.Time
	log   *zap.Logger
	guard guard

	recMu   sync.RWMutex
	records []model.Record
	nextSeq uint64
}

// New creates an empty pool. assets resolves the transfer capability of every
// asset the pool is asked to move; if it also implements Journal its changes
// are rolled back together with the pool state.
func New(address, owner common.Address, assets asset.Registry, opts ...Option) (*Pool, error) {
	if address == (common.Address{}) {
		return nil, errors.Wrap(apperrors.ErrInvalidArgument, "pool address is empty")
	}
	if assets == nil {
		return nil, errors.Wrap(apperrors.ErrInvalidArgument, "asset registry is nil")
	}

	p := &Pool{
		address:  address,
		owner:    owner,
		assets:   assets,
		reserves: ledger.New(),
		claims:   claimtoken.New(),
		now:      time.Now,
		log:      zap.NewNop(),
		nextSeq:  1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *Pool) Address() common.Address {
	return p.address
}

func (p *Pool) Owner() common.Address {
	return p.owner
}

// execute runs fn under the reentrancy guard. If fn fails or panics every
// journaled change made by fn is undone.
func (p *Pool) execute(op string, fn func() error) error {
	if !p.guard.enter() {
		return errors.Wrap(apperrors.ErrReentrant, op)
	}
	defer p.guard.exit()

	journals := []Journal{p.reserves, p.claims}
	if j, ok := p.assets.(Journal); ok {
		journals = append(journals, j)
	}
	ids := make([]int, len(journals))
	for i, j := range journals {
		ids[i] = j.Checkpoint()
	}
	recLen, seq := p.recordMark()

	committed := false
	defer func() {
		if committed {
			return
		}
		for i, j := range journals {
			j.RevertTo(ids[i])
			j.Commit()
		}
		p.truncateRecords(recLen, seq)
	}()

	if err := fn(); err != nil {
		p.log.Debug("operation rolled back", zap.String("op", op), zap.Error(err))
		return err
	}

	for _, j := range journals {
		j.Commit()
	}
	committed = true
	return nil
}

func (p *Pool) checkDeadline(deadline uint64) error {
	now := p.now().Unix()
	if now < 0 {
		now = 0
	}
	if deadline < uint64(now) {
		return errors.Wrapf(apperrors.ErrDeadlineExpired, "deadline %d, now %d", deadline, now)
	}
	return nil
}

func (p *Pool) asset(id common.Address) (asset.Asset, error) {
	a, err := p.assets.Asset(id)
	if err != nil {
		return nil, &transferError{op: "resolve", asset: id, cause: err}
	}
	return a, nil
}

// pull moves amount of id from the caller into the pool.
func (p *Pool) pull(id, from common.Address, amount *big.Int) error {
	a, err := p.asset(id)
	if err != nil {
		return err
	}
	if err := a.TransferFrom(p.address, from, p.address, amount); err != nil {
		return &transferError{op: "transferFrom", asset: id, cause: err}
	}
	return nil
}

// push moves amount of id from the pool to a recipient.
func (p *Pool) push(id, to common.Address, amount *big.Int) error {
	a, err := p.asset(id)
	if err != nil {
		return err
	}
	if err := a.Transfer(p.address, to, amount); err != nil {
		return &transferError{op: "transfer", asset: id, cause: err}
	}
	return nil
}

func (p *Pool) recordMark() (int, uint64) {
	p.recMu.RLock()
	defer p.recMu.RUnlock()
	return len(p.records), p.nextSeq
}

func (p *Pool) truncateRecords(n int, seq uint64) {
	p.recMu.Lock()
	defer p.recMu.Unlock()

	if n < len(p.records) {
		p.records = p.records[:n]
	}
	p.nextSeq = seq
}

func (p *Pool) appendRecord(r model.Record) model.Record {
	p.recMu.Lock()
	defer p.recMu.Unlock()

	r.Seq = p.nextSeq
	r.Timestamp = p.now().UTC()
	p.nextSeq++
	p.records = append(p.records, r)
	return r
}

// Records returns up to limit records with a sequence number of at least
// from. A non-positive limit returns all of them.
func (p *Pool) Records(from uint64, limit int) []model.Record {
	p.recMu.RLock()
	defer p.recMu.RUnlock()

	i := sort.Search(len(p.records), func(i int) bool {
		return p.records[i].Seq >= from
	})
	end := len(p.records)
	if limit > 0 && i+limit < end {
		end = i + limit
	}
	out := make([]model.Record, end-i)
	copy(out, p.records[i:end])
	return out
}

// NextSeq returns the sequence number the next record will get.
func (p *Pool) NextSeq() uint64 {
	p.recMu.RLock()
	defer p.recMu.RUnlock()
	return p.nextSeq
}

// Snapshot returns the persistent part of the pool state.
func (p *Pool) Snapshot() model.State {
	return model.State{
		Reserves:  p.reserves.Snapshot(),
		Claims:    p.claims.Snapshot(),
		NextSeq:   p.NextSeq(),
		UpdatedAt: p.now().UTC(),
	}
}

// Restore loads a previously saved state and record log. It must not run
// concurrently with mutating calls.
func (p *Pool) Restore(state model.State, records []model.Record) error {
	if err := p.reserves.Restore(state.Reserves); err != nil {
		return errors.Wrap(err, "p.reserves.Restore")
	}
	if err := p.claims.Restore(state.Claims); err != nil {
		return errors.Wrap(err, "p.claims.Restore")
	}

	recs := make([]model.Record, len(records))
	copy(recs, records)
	sort.Slice(recs, func(i, j int) bool { return recs[i].Seq < recs[j].Seq })

	next := state.NextSeq
	if n := len(recs); n > 0 && recs[n-1].Seq >= next {
		next = recs[n-1].Seq + 1
	}
	if next == 0 {
		next = 1
	}

	p.recMu.Lock()
	defer p.recMu.Unlock()
	p.records = recs
	p.nextSeq = next
	return nil
}

// QuotePrice returns the spot price of assetA in assetB with 18 decimals.
func (p *Pool) QuotePrice(assetA, assetB common.Address) (*big.Int, error) {
	return dexmath.Price(p.reserves.Get(assetA), p.reserves.Get(assetB))
}

// QuoteOutput prices amountIn against arbitrary reserves.
func (p *Pool) QuoteOutput(amountIn, reserveIn, reserveOut *big.Int) (*big.Int, error) {
	return dexmath.Quote(amountIn, reserveIn, reserveOut)
}

func (p *Pool) Reserves(assetA, assetB common.Address) (*big.Int, *big.Int) {
	return p.reserves.Get(assetA), p.reserves.Get(assetB)
}

func (p *Pool) TotalSupply() *big.Int {
	return p.claims.TotalSupply()
}

func (p *Pool) ClaimBalance(owner common.Address) *big.Int {
	return p.claims.BalanceOf(owner)
}
