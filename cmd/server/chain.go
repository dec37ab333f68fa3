package main

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/fleshka4/ammpool/internal/infra/erc20"
)

type balanceReader interface {
	BalanceOf(id, owner common.Address) *big.Int
}

// verifyAssets checks that every asset is an ERC-20 contract on the configured
// chain and logs how the pool's chain balances compare with the reference
// bank. The chain is never used for accounting.
func verifyAssets(
	ctx context.Context,
	client erc20.Client,
	bank balanceReader,
	poolAddr common.Address,
	assets []common.Address,
	log *zap.Logger,
) error {
	for _, id := range assets {
		decimals, err := client.Decimals(ctx, id)
		if err != nil {
			return errors.Wrapf(err, "asset %s is not a readable ERC-20 token", id.Hex())
		}
		log.Info("asset verified on chain", zap.String("asset", id.Hex()), zap.Uint8("decimals", decimals))
	}

	onChain, err := client.BalancesOf(ctx, poolAddr, assets)
	if err != nil {
		return errors.Wrap(err, "client.BalancesOf")
	}
	for _, id := range assets {
		chain, local := onChain[id], bank.BalanceOf(id, poolAddr)
		if chain == nil || chain.Cmp(local) != 0 {
			log.Warn("chain balance differs from the reference bank, reserves follow the bank",
				zap.String("asset", id.Hex()),
				zap.Stringer("chain", chain),
				zap.Stringer("bank", local),
			)
		}
	}
	return nil
}
