package main

import (
	"context"
	"math/big"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/fleshka4/ammpool/internal/asset"
	"github.com/fleshka4/ammpool/internal/config"
	"github.com/fleshka4/ammpool/internal/infra/erc20"
	"github.com/fleshka4/ammpool/internal/metrics"
	"github.com/fleshka4/ammpool/internal/model"
	"github.com/fleshka4/ammpool/internal/pool"
	"github.com/fleshka4/ammpool/internal/service"
	"github.com/fleshka4/ammpool/internal/storage"
	"github.com/fleshka4/ammpool/internal/storage/file"
	"github.com/fleshka4/ammpool/internal/storage/postgres"
	transport "github.com/fleshka4/ammpool/internal/transport/http"
)

const defaultConfigPath = "cfg/config.yaml"

func configPath(cmd *cobra.Command) string {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return path
	}
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return defaultConfigPath
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func runServe(cmd *cobra.Command, _ []string) (err error) {
	cfg, err := config.Load(configPath(cmd))
	if err != nil {
		return errors.Wrap(err, "config.Load")
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return errors.Wrap(err, "newLogger")
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	poolAddr := common.HexToAddress(cfg.PoolAddress)
	store, err := openStore(ctx, cfg, poolAddr)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, store.Close())
	}()

	bank := asset.NewBank(cfg.AssetAddresses()...)
	p, err := pool.New(poolAddr, common.HexToAddress(cfg.Owner), bank, pool.WithLogger(logger.Named("pool")))
	if err != nil {
		return errors.Wrap(err, "pool.New")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m, err := metrics.New(registry)
	if err != nil {
		return errors.Wrap(err, "metrics.New")
	}

	svc, err := service.NewPoolService(service.Deps{
		Pool:          p,
		Bank:          bank,
		Store:         store,
		Metrics:       m,
		Logger:        logger.Named("service"),
		FaucetEnabled: cfg.Faucet.Enabled,
	})
	if err != nil {
		return errors.Wrap(err, "service.NewPoolService")
	}
	if err := svc.Restore(ctx, grants(cfg)); err != nil {
		return errors.Wrap(err, "svc.Restore")
	}

	if cfg.Chain.RPCURL != "" {
		client, err := erc20.NewClient(cfg.Chain.RPCURL, cfg.Chain.CallTimeout)
		if err != nil {
			return errors.Wrap(err, "erc20.NewClient")
		}
		if err := verifyAssets(ctx, client, bank, poolAddr, bank.Assets(), logger.Named("chain")); err != nil {
			return errors.Wrap(err, "verifyAssets")
		}
	}

	srv, err := transport.NewServer(svc, cfg,
		transport.WithLogger(logger.Named("http")),
		transport.WithGatherer(registry),
	)
	if err != nil {
		return errors.Wrap(err, "transport.NewServer")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(gctx, cfg.ListenAddr)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("stop requested")
		return nil
	})
	return g.Wait()
}

func openStore(ctx context.Context, cfg *config.Config, poolAddr common.Address) (storage.Store, error) {
	switch cfg.Storage.Driver {
	case config.StorageNone:
		return storage.Nop{}, nil
	case config.StorageFile:
		store, err := file.NewStore(cfg.Storage.Path)
		if err != nil {
			return nil, errors.Wrap(err, "file.NewStore")
		}
		return store, nil
	case config.StoragePostgres:
		store, err := postgres.NewStore(ctx, cfg.Storage.DSN, poolAddr)
		if err != nil {
			return nil, errors.Wrap(err, "postgres.NewStore")
		}
		return store, nil
	default:
		return nil, errors.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// grants converts the configured initial balances. Config validation has
// already checked every field.
func grants(cfg *config.Config) []model.Holding {
	out := make([]model.Holding, 0, len(cfg.Faucet.Grants))
	for _, g := range cfg.Faucet.Grants {
		amount, _ := new(big.Int).SetString(g.Amount, 10)
		out = append(out, model.Holding{
			Asset:  common.HexToAddress(g.Asset),
			Owner:  common.HexToAddress(g.Owner),
			Amount: amount,
		})
	}
	return out
}
