package main

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fleshka4/ammpool/internal/asset"
	"github.com/fleshka4/ammpool/internal/infra/erc20/mock"
)

var (
	chainPool   = common.HexToAddress("0x00000000000000000000000000000000000000f0")
	chainAssetA = common.HexToAddress("0x000000000000000000000000000000000000000a")
	chainAssetB = common.HexToAddress("0x000000000000000000000000000000000000000b")
)

func TestVerifyAssets(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := mock.NewMockClient(ctrl)

	bank := asset.NewBank(chainAssetB, chainAssetA)
	require.NoError(t, bank.Credit(chainAssetA, chainPool, big.NewInt(100)))
	require.NoError(t, bank.Credit(chainAssetB, chainPool, big.NewInt(5)))

	assets := bank.Assets()
	gomock.InOrder(
		client.EXPECT().Decimals(gomock.Any(), chainAssetA).Return(uint8(18), nil),
		client.EXPECT().Decimals(gomock.Any(), chainAssetB).Return(uint8(6), nil),
		client.EXPECT().BalancesOf(gomock.Any(), chainPool, assets).Return(map[common.Address]*big.Int{
			chainAssetA: big.NewInt(100),
			chainAssetB: big.NewInt(7),
		}, nil),
	)

	core, logs := observer.New(zapcore.InfoLevel)
	require.NoError(t, verifyAssets(context.Background(), client, bank, chainPool, assets, zap.New(core)))

	require.Equal(t, 2, logs.FilterMessage("asset verified on chain").Len())
	mismatches := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, mismatches, 1)
	require.Equal(t, chainAssetB.Hex(), mismatches[0].ContextMap()["asset"])
}

func TestVerifyAssets_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		setup func(c *mock.MockClient)
	}{
		{
			name: "not a token",
			setup: func(c *mock.MockClient) {
				c.EXPECT().Decimals(gomock.Any(), chainAssetA).Return(uint8(0), errors.New("execution reverted"))
			},
		},
		{
			name: "balances unavailable",
			setup: func(c *mock.MockClient) {
				c.EXPECT().Decimals(gomock.Any(), chainAssetA).Return(uint8(18), nil)
				c.EXPECT().BalancesOf(gomock.Any(), chainPool, gomock.Any()).Return(nil, errors.New("connection refused"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			client := mock.NewMockClient(ctrl)
			tt.setup(client)

			bank := asset.NewBank(chainAssetA)
			err := verifyAssets(context.Background(), client, bank, chainPool, bank.Assets(), zap.NewNop())
			require.Error(t, err)
		})
	}
}
