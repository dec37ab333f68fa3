package erc20

import (
	"context"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/fleshka4/ammpool/internal/infra/erc20/mock"
)

var (
	tokenA = common.HexToAddress("0x000000000000000000000000000000000000000a")
	tokenB = common.HexToAddress("0x000000000000000000000000000000000000000b")
	holder = common.HexToAddress("0x00000000000000000000000000000000000000f0")
)

// toMatcher matches a CallMsg sent to a given contract.
type toMatcher common.Address

func (m toMatcher) Matches(x any) bool {
	msg, ok := x.(ethereum.CallMsg)
	return ok && msg.To != nil && *msg.To == common.Address(m)
}

func (m toMatcher) String() string {
	return "call to " + common.Address(m).Hex()
}

func mustPackBalance(t *testing.T, value *big.Int) []byte {
	t.Helper()

	a, err := abi.JSON(strings.NewReader(tokenABIJSON))
	require.NoError(t, err)

	b, err := a.Methods["balanceOf"].Outputs.Pack(value)
	require.NoError(t, err)
	return b
}

func newTestClient(t *testing.T) (*mock.MockEthCaller, Client) {
	t.Helper()

	ctrl := gomock.NewController(t)
	caller := mock.NewMockEthCaller(ctrl)
	client, err := newClientWithCaller(caller, time.Second)
	require.NoError(t, err)
	return caller, client
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	t.Run("dial error", func(t *testing.T) {
		client, err := NewClient("invalid://url", time.Second)
		require.Error(t, err)
		require.Nil(t, client)
	})
}

func TestCallMethod(t *testing.T) {
	t.Parallel()

	t.Run("pack error", func(t *testing.T) {
		t.Parallel()

		invalidABI, err := abi.JSON(strings.NewReader(`[]`))
		require.NoError(t, err)
		c := &ethClientImpl{tokenABI: invalidABI}

		_, err = c.call(context.Background(), common.Address{}, "nonexistent")
		require.Error(t, err)
	})

	t.Run("unpack error", func(t *testing.T) {
		t.Parallel()

		caller, client := newTestClient(t)
		caller.EXPECT().
			CallContract(gomock.Any(), gomock.Any(), gomock.Nil()).
			Return([]byte("invalid data"), nil)

		_, err := client.BalanceOf(context.Background(), tokenA, holder)
		require.Error(t, err)
	})
}

func TestBalanceOf(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		caller, client := newTestClient(t)
		caller.EXPECT().
			CallContract(gomock.Any(), toMatcher(tokenA), gomock.Nil()).
			DoAndReturn(func(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
				// selector followed by the padded holder address
				require.Len(t, msg.Data, 4+32)
				require.Equal(t, holder.Bytes(), msg.Data[4+12:])
				return mustPackBalance(t, big.NewInt(4242)), nil
			})

		got, err := client.BalanceOf(context.Background(), tokenA, holder)
		require.NoError(t, err)
		require.Equal(t, "4242", got.String())
	})

	t.Run("call error", func(t *testing.T) {
		t.Parallel()

		caller, client := newTestClient(t)
		caller.EXPECT().
			CallContract(gomock.Any(), gomock.Any(), gomock.Nil()).
			Return(nil, errors.New("call error"))

		_, err := client.BalanceOf(context.Background(), tokenA, holder)
		require.ErrorContains(t, err, "call error")
	})
}

func TestBalancesOf(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		caller, client := newTestClient(t)
		caller.EXPECT().
			CallContract(gomock.Any(), toMatcher(tokenA), gomock.Nil()).
			Return(mustPackBalance(t, big.NewInt(1)), nil)
		caller.EXPECT().
			CallContract(gomock.Any(), toMatcher(tokenB), gomock.Nil()).
			Return(mustPackBalance(t, big.NewInt(2)), nil)

		got, err := client.BalancesOf(context.Background(), holder, []common.Address{tokenA, tokenB})
		require.NoError(t, err)
		require.Len(t, got, 2)
		require.Equal(t, "1", got[tokenA].String())
		require.Equal(t, "2", got[tokenB].String())
	})

	t.Run("errors are combined", func(t *testing.T) {
		t.Parallel()

		caller, client := newTestClient(t)
		caller.EXPECT().
			CallContract(gomock.Any(), toMatcher(tokenA), gomock.Nil()).
			Return(nil, errors.New("first failure"))
		caller.EXPECT().
			CallContract(gomock.Any(), toMatcher(tokenB), gomock.Nil()).
			Return(nil, errors.New("second failure"))

		_, err := client.BalancesOf(context.Background(), holder, []common.Address{tokenA, tokenB})
		require.ErrorContains(t, err, "first failure")
		require.ErrorContains(t, err, "second failure")
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		_, client := newTestClient(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := client.BalancesOf(ctx, holder, []common.Address{tokenA})
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestDecimals(t *testing.T) {
	t.Parallel()

	caller, client := newTestClient(t)

	a, err := abi.JSON(strings.NewReader(tokenABIJSON))
	require.NoError(t, err)
	packed, err := a.Methods["decimals"].Outputs.Pack(uint8(18))
	require.NoError(t, err)

	caller.EXPECT().
		CallContract(gomock.Any(), toMatcher(tokenA), gomock.Nil()).
		Return(packed, nil)

	got, err := client.Decimals(context.Background(), tokenA)
	require.NoError(t, err)
	require.Equal(t, uint8(18), got)
}
