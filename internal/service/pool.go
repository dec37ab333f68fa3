package service

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/fleshka4/ammpool/internal/apperrors"
	"github.com/fleshka4/ammpool/internal/asset"
	"github.com/fleshka4/ammpool/internal/metrics"
	"github.com/fleshka4/ammpool/internal/model"
	"github.com/fleshka4/ammpool/internal/pool"
	"github.com/fleshka4/ammpool/internal/service/dto"
	"github.com/fleshka4/ammpool/internal/service/validate"
	"github.com/fleshka4/ammpool/internal/storage"
)

const (
	defaultRecordsLimit = 100
	maxRecordsLimit     = 1000
)

// Deps are the collaborators of PoolService. Bank and Metrics are optional.
type Deps struct {
	Pool          *pool.Pool
	Bank          *asset.Bank
	Store         storage.Store
	Metrics       *metrics.Metrics
	Logger        *zap.Logger
	FaucetEnabled bool
}

// PoolService serializes mutating requests against one pool and persists the
// result of each of them.
type PoolService struct {
	// sem is a one-slot semaphore; waiting on it honors the caller's context.
	sem chan struct{}

	pool    *pool.Pool
	bank    *asset.Bank
	store   storage.Store
	metrics *metrics.Metrics
	log     *zap.Logger
	faucet  bool

	// persistedSeq is the first record sequence not yet written to the store.
	persistedSeq uint64
}

// NewPoolService creates PoolService.
func NewPoolService(d Deps) (*PoolService, error) {
	if d.Pool == nil {
		return nil, errors.New("pool is nil")
	}
	if d.Store == nil {
		d.Store = storage.Nop{}
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}

	return &PoolService{
		sem:          make(chan struct{}, 1),
		pool:         d.Pool,
		bank:         d.Bank,
		store:        d.Store,
		metrics:      d.Metrics,
		log:          d.Logger,
		faucet:       d.FaucetEnabled,
		persistedSeq: d.Pool.NextSeq(),
	}, nil
}

// Restore loads persisted state into the pool and the bank. When the store is
// empty the given grants are credited and saved as the initial state.
func (s *PoolService) Restore(ctx context.Context, grants []model.Holding) error {
	if err := s.lock(ctx); err != nil {
		return err
	}
	defer s.unlock()

	state, err := s.store.LoadState(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		if s.bank != nil {
			for _, g := range grants {
				if err := s.bank.Credit(g.Asset, g.Owner, g.Amount); err != nil {
					return errors.Wrap(err, "s.bank.Credit")
				}
			}
		}
		s.log.Info("no persisted state, starting empty", zap.Int("grants", len(grants)))
		s.persist(ctx)
		return nil
	case err != nil:
		return errors.Wrap(err, "s.store.LoadState")
	}

	records, err := s.store.LoadRecords(ctx, 0, 0)
	if err != nil {
		return errors.Wrap(err, "s.store.LoadRecords")
	}
	if err := s.pool.Restore(*state, records); err != nil {
		return errors.Wrap(err, "s.pool.Restore")
	}
	if s.bank != nil {
		if err := s.bank.Restore(state.Holdings, state.Allowances); err != nil {
			return errors.Wrap(err, "s.bank.Restore")
		}
	}
	s.persistedSeq = s.pool.NextSeq()

	s.log.Info("state restored",
		zap.Int("records", len(records)),
		zap.Uint64("next_seq", s.persistedSeq),
	)
	s.publish()
	return nil
}

// mutate runs fn under the service lock, then persists and publishes the new
// state if fn succeeded.
func (s *PoolService) mutate(ctx context.Context, op string, fn func() error) error {
	start := time.Now()

	if err := s.lock(ctx); err != nil {
		if s.metrics != nil {
			s.metrics.Observe(op, start, err)
		}
		return err
	}
	defer s.unlock()

	err := fn()
	if s.metrics != nil {
		s.metrics.Observe(op, start, err)
	}
	if err != nil {
		s.log.Info("operation failed",
			zap.String("op", op),
			zap.String("kind", apperrors.Kind(err)),
			zap.Error(err),
		)
		return err
	}

	s.persist(ctx)
	s.publish()
	return nil
}

// lock waits for the service lock until ctx is done.
func (s *PoolService) lock(ctx context.Context) error {
	select {
	case s.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "waiting for pool lock")
	}
}

func (s *PoolService) unlock() {
	<-s.sem
}

// persist writes new records and the state snapshot. A failure is logged and
// retried on the next mutation; the completed operation stands.
func (s *PoolService) persist(ctx context.Context) {
	records := s.pool.Records(s.persistedSeq, 0)
	if err := s.store.AppendRecords(ctx, records); err != nil {
		s.log.Error("failed to persist records", zap.Error(err), zap.Int("pending", len(records)))
		return
	}
	if n := len(records); n > 0 {
		s.persistedSeq = records[n-1].Seq + 1
	}

	state := s.pool.Snapshot()
	if s.bank != nil {
		state.Holdings, state.Allowances = s.bank.Snapshot()
	}
	if err := s.store.SaveState(ctx, state); err != nil {
		s.log.Error("failed to persist state", zap.Error(err))
	}
}

func (s *PoolService) publish() {
	if s.metrics == nil {
		return
	}
	state := s.pool.Snapshot()
	s.metrics.SetReserves(state.Reserves, s.pool.TotalSupply())
}

func (s *PoolService) PoolAddress() common.Address {
	return s.pool.Address()
}

// Quote prices an amount against arbitrary reserves.
func (s *PoolService) Quote(_ context.Context, req dto.QuoteRequest) (*big.Int, error) {
	if err := validate.QuoteRequestValidate(req); err != nil {
		return nil, err
	}
	return s.pool.QuoteOutput(req.AmountIn, req.ReserveIn, req.ReserveOut)
}

// Price returns the spot price of AssetA in AssetB.
func (s *PoolService) Price(_ context.Context, req dto.PairRequest) (*big.Int, error) {
	if err := validate.PairRequestValidate(req); err != nil {
		return nil, err
	}
	return s.pool.QuotePrice(req.AssetA, req.AssetB)
}

func (s *PoolService) Reserves(_ context.Context, req dto.PairRequest) (*dto.Reserves, error) {
	if err := validate.PairRequestValidate(req); err != nil {
		return nil, err
	}
	a, b := s.pool.Reserves(req.AssetA, req.AssetB)
	return &dto.Reserves{ReserveA: a, ReserveB: b}, nil
}

func (s *PoolService) Records(_ context.Context, req dto.RecordsRequest) ([]model.Record, error) {
	limit := req.Limit
	switch {
	case limit < 0:
		return nil, errors.Wrap(apperrors.ErrInvalidArgument, "limit cannot be negative")
	case limit == 0:
		limit = defaultRecordsLimit
	case limit > maxRecordsLimit:
		limit = maxRecordsLimit
	}
	return s.pool.Records(req.From, limit), nil
}

func (s *PoolService) Position(_ context.Context, req dto.PositionRequest) (*dto.Position, error) {
	if req.Owner == (common.Address{}) {
		return nil, errors.Wrap(apperrors.ErrInvalidArgument, "owner cannot be empty")
	}
	return &dto.Position{
		Owner:       req.Owner,
		Claims:      s.pool.ClaimBalance(req.Owner),
		TotalSupply: s.pool.TotalSupply(),
	}, nil
}

// Balance returns the reference bank balance of an owner.
func (s *PoolService) Balance(_ context.Context, req dto.BalanceRequest) (*big.Int, error) {
	if s.bank == nil {
		return nil, errors.Wrap(apperrors.ErrNotConfigured, "no reference bank configured")
	}
	if req.Owner == (common.Address{}) || req.Asset == (common.Address{}) {
		return nil, errors.Wrap(apperrors.ErrInvalidArgument, "owner and asset are required")
	}
	return s.bank.BalanceOf(req.Asset, req.Owner), nil
}

func (s *PoolService) Deposit(ctx context.Context, req dto.DepositRequest) (*pool.DepositResult, error) {
	if err := validate.DepositRequestValidate(req); err != nil {
		return nil, err
	}

	var res *pool.DepositResult
	err := s.mutate(ctx, "deposit", func() error {
		var err error
		res, err = s.pool.Deposit(pool.DepositParams{
			Caller:    req.Caller,
			AssetA:    req.AssetA,
			AssetB:    req.AssetB,
			DesiredA:  req.DesiredA,
			DesiredB:  req.DesiredB,
			MinA:      req.MinA,
			MinB:      req.MinB,
			Recipient: req.Recipient,
			Deadline:  req.Deadline,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("deposit",
		zap.String("provider", req.Caller.Hex()),
		zap.Stringer("amount_a", res.AmountA),
		zap.Stringer("amount_b", res.AmountB),
		zap.Stringer("claim", res.Claim),
	)
	return res, nil
}

func (s *PoolService) Withdraw(ctx context.Context, req dto.WithdrawRequest) (*pool.WithdrawResult, error) {
	if err := validate.WithdrawRequestValidate(req); err != nil {
		return nil, err
	}

	var res *pool.WithdrawResult
	err := s.mutate(ctx, "withdraw", func() error {
		var err error
		res, err = s.pool.Withdraw(pool.WithdrawParams{
			Caller:    req.Caller,
			AssetA:    req.AssetA,
			AssetB:    req.AssetB,
			Claim:     req.Claim,
			MinA:      req.MinA,
			MinB:      req.MinB,
			Recipient: req.Recipient,
			Deadline:  req.Deadline,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("withdraw",
		zap.String("provider", req.Caller.Hex()),
		zap.Stringer("claim", req.Claim),
		zap.Stringer("amount_a", res.AmountA),
		zap.Stringer("amount_b", res.AmountB),
	)
	return res, nil
}

func (s *PoolService) Swap(ctx context.Context, req dto.SwapRequest) (*pool.SwapResult, error) {
	if err := validate.SwapRequestValidate(req); err != nil {
		return nil, err
	}

	var res *pool.SwapResult
	err := s.mutate(ctx, "swap", func() error {
		var err error
		res, err = s.pool.Swap(pool.SwapParams{
			Caller:       req.Caller,
			AmountIn:     req.AmountIn,
			MinAmountOut: req.MinAmountOut,
			Path:         req.Path,
			Recipient:    req.Recipient,
			Deadline:     req.Deadline,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("swap",
		zap.String("trader", req.Caller.Hex()),
		zap.Stringer("amount_in", res.AmountIn),
		zap.Stringer("amount_out", res.AmountOut),
	)
	return res, nil
}

func (s *PoolService) Reconcile(ctx context.Context, req dto.ReconcileRequest) (*pool.ReconcileResult, error) {
	if err := validate.ReconcileRequestValidate(req); err != nil {
		return nil, err
	}

	var res *pool.ReconcileResult
	err := s.mutate(ctx, "reconcile", func() error {
		var err error
		res, err = s.pool.ReconcileReserve(req.Caller, req.Asset)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Warn("reserve reconciled",
		zap.String("asset", req.Asset.Hex()),
		zap.Stringer("previous", res.Previous),
		zap.Stringer("current", res.Current),
	)
	return res, nil
}

func (s *PoolService) TransferClaims(ctx context.Context, req dto.TransferClaimsRequest) error {
	if err := validate.TransferClaimsRequestValidate(req); err != nil {
		return err
	}
	return s.mutate(ctx, "transfer_claims", func() error {
		return s.pool.TransferClaims(req.From, req.To, req.Amount)
	})
}

// Approve lets the pool pull up to Amount of Asset from Owner.
func (s *PoolService) Approve(ctx context.Context, req dto.ApproveRequest) error {
	if err := validate.ApproveRequestValidate(req); err != nil {
		return err
	}
	if s.bank == nil {
		return errors.Wrap(apperrors.ErrNotConfigured, "no reference bank configured")
	}
	return s.mutate(ctx, "approve", func() error {
		return translateBankErr(s.bank.Approve(req.Asset, req.Owner, s.pool.Address(), req.Amount))
	})
}

// Faucet credits the reference bank when the faucet is enabled.
func (s *PoolService) Faucet(ctx context.Context, req dto.FaucetRequest) error {
	if !s.faucet || s.bank == nil {
		return errors.Wrap(apperrors.ErrNotConfigured, "faucet is disabled")
	}
	if err := validate.FaucetRequestValidate(req); err != nil {
		return err
	}
	return s.mutate(ctx, "faucet", func() error {
		return translateBankErr(s.bank.Credit(req.Asset, req.Owner, req.Amount))
	})
}

func translateBankErr(err error) error {
	if errors.Is(err, asset.ErrUnknownAsset) {
		return errors.Wrap(apperrors.ErrInvalidArgument, err.Error())
	}
	return err
}
