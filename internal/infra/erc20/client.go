package erc20

import (
	"context"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

const tokenABIJSON = `[
	{"inputs":[{"internalType":"address","name":"account","type":"address"}],"name":"balanceOf","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"decimals","outputs":[{"internalType":"uint8","name":"","type":"uint8"}],"stateMutability":"view","type":"function"}
]`

// Client reads ERC-20 token state from an Ethereum node.
type Client interface {
	// BalanceOf returns the balance owner holds of token.
	BalanceOf(ctx context.Context, token, owner common.Address) (*big.Int, error)
	// BalancesOf reads the balance of owner for every token concurrently.
	BalancesOf(ctx context.Context, owner common.Address, tokens []common.Address) (map[common.Address]*big.Int, error)
	// Decimals returns the decimals of token.
	Decimals(ctx context.Context, token common.Address) (uint8, error)
}

// EthCaller represents interface for calling contracts.
type EthCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

type ethClientImpl struct {
	caller   EthCaller
	tokenABI abi.ABI

	callTimeout time.Duration
}

// NewClient creates a Client backed by an Ethereum RPC connection.
func NewClient(rpcURL string, callTimeout time.Duration) (Client, error) {
	caller, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, errors.Wrap(err, "ethclient.Dial")
	}

	return newClientWithCaller(caller, callTimeout)
}

func newClientWithCaller(caller EthCaller, callTimeout time.Duration) (Client, error) {
	tokenABI, err := abi.JSON(strings.NewReader(tokenABIJSON))
	if err != nil {
		return nil, errors.Wrap(err, "abi.JSON")
	}

	return &ethClientImpl{
		caller:   caller,
		tokenABI: tokenABI,

		callTimeout: callTimeout,
	}, nil
}

func (c *ethClientImpl) call(ctx context.Context, to common.Address, method string, args ...interface{}) ([]interface{}, error) {
	data, err := c.tokenABI.Pack(method, args...)
	if err != nil {
		return nil, errors.Wrap(err, "c.tokenABI.Pack")
	}

	if c.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.callTimeout)
		defer cancel()
	}

	res, err := c.caller.CallContract(
		ctx,
		ethereum.CallMsg{
			To:   &to,
			Data: data,
		},
		nil,
	)
	if err != nil {
		return nil, errors.Wrap(err, "c.caller.CallContract")
	}

	out, err := c.tokenABI.Unpack(method, res)
	if err != nil {
		return nil, errors.Wrap(err, "c.tokenABI.Unpack")
	}

	return out, nil
}

// BalanceOf returns the balance owner holds of token.
func (c *ethClientImpl) BalanceOf(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	out, err := c.call(ctx, token, "balanceOf", owner)
	if err != nil {
		return nil, errors.Wrap(err, "c.call")
	}
	if len(out) == 0 {
		return nil, errors.New("empty output from balanceOf call")
	}

	balance, ok := out[0].(*big.Int)
	if !ok {
		return nil, errors.New("failed to cast balanceOf result to *big.Int")
	}
	return balance, nil
}

// BalancesOf reads the balance of owner for every token concurrently. All
// failures are reported together.
func (c *ethClientImpl) BalancesOf(ctx context.Context, owner common.Address, tokens []common.Address) (map[common.Address]*big.Int, error) {
	type balanceResult struct {
		token   common.Address
		balance *big.Int
		err     error
	}

	var wg sync.WaitGroup
	ch := make(chan balanceResult, len(tokens))

	getBalance := func(token common.Address) {
		defer wg.Done()

		select {
		case <-ctx.Done():
			ch <- balanceResult{token: token, err: errors.Wrap(ctx.Err(), "context cancelled before call")}
			return
		default:
		}

		balance, err := c.BalanceOf(ctx, token, owner)
		if err != nil {
			ch <- balanceResult{token: token, err: errors.Wrapf(err, "balanceOf %s", token.Hex())}
			return
		}
		ch <- balanceResult{token: token, balance: balance}
	}

	wg.Add(len(tokens))
	for _, token := range tokens {
		go getBalance(token)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	var (
		balances    = make(map[common.Address]*big.Int, len(tokens))
		combinedErr error
	)
	for result := range ch {
		if result.err != nil {
			combinedErr = multierr.Append(combinedErr, result.err)
			continue
		}
		balances[result.token] = result.balance
	}

	if combinedErr != nil {
		return nil, errors.Wrap(combinedErr, "failed to get balances")
	}
	return balances, nil
}

// Decimals returns the decimals of token.
func (c *ethClientImpl) Decimals(ctx context.Context, token common.Address) (uint8, error) {
	out, err := c.call(ctx, token, "decimals")
	if err != nil {
		return 0, errors.Wrap(err, "c.call")
	}
	if len(out) == 0 {
		return 0, errors.New("empty output from decimals call")
	}

	decimals, ok := out[0].(uint8)
	if !ok {
		return 0, errors.New("failed to cast decimals result to uint8")
	}
	return decimals, nil
}
