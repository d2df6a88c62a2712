package client

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"defolio/internal/app/port"
	"defolio/internal/domain/entity"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// Minimal ERC-20 ABI: balanceOf plus the metadata getters adapters degrade on.
const erc20ABI = `[
	{"constant":true,"inputs":[{"name":"_owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[],"name":"symbol","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"stateMutability":"view","type":"function"}
]`

// Multicall3 aggregate3, deployed at the same address on every supported chain.
const multicall3ABI = `[
	{"inputs":[{"components":[{"name":"target","type":"address"},{"name":"allowFailure","type":"bool"},{"name":"callData","type":"bytes"}],"name":"calls","type":"tuple[]"}],"name":"aggregate3","outputs":[{"components":[{"name":"success","type":"bool"},{"name":"returnData","type":"bytes"}],"name":"returnData","type":"tuple[]"}],"stateMutability":"payable","type":"function"}
]`

var (
	parsedABIsOnce   sync.Once
	parsedERC20ABI   abi.ABI
	parsedMulticall3 abi.ABI
)

func initParsedABIs() {
	parsedABIsOnce.Do(func() {
		var err error
		parsedERC20ABI, err = abi.JSON(strings.NewReader(erc20ABI))
		if err != nil {
			panic(fmt.Sprintf("failed to parse ERC20 ABI: %v", err))
		}
		parsedMulticall3, err = abi.JSON(strings.NewReader(multicall3ABI))
		if err != nil {
			panic(fmt.Sprintf("failed to parse Multicall3 ABI: %v", err))
		}
	})
}

// multicall3Call mirrors the aggregate3 input tuple.
type multicall3Call struct {
	Target       common.Address
	AllowFailure bool
	CallData     []byte
}

// multicall3Result mirrors the aggregate3 output tuple.
type multicall3Result struct {
	Success    bool
	ReturnData []byte
}

// EVMClient implements port.ChainClient for EVM-compatible chains. One client
// is always bound to a single RPC endpoint; rotation is the chain registry's
// job, not the client's.
type EVMClient struct {
	ethClient   *ethclient.Client
	cfg         entity.ChainConfig
	endpoint    string
	callTimeout time.Duration
}

// NewEVMClient dials the given RPC endpoint for the chain.
func NewEVMClient(cfg entity.ChainConfig, rpcURL string, connectTimeout, callTimeout time.Duration) (*EVMClient, error) {
	initParsedABIs()

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	ethClient, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC %s: %w", rpcURL, err)
	}
	return &EVMClient{
		ethClient:   ethClient,
		cfg:         cfg,
		endpoint:    rpcURL,
		callTimeout: callTimeout,
	}, nil
}

// NativeBalance fetches the native currency balance for a wallet.
func (c *EVMClient) NativeBalance(ctx context.Context, walletAddress string) (*big.Int, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()
	return c.ethClient.BalanceAt(callCtx, common.HexToAddress(walletAddress), nil)
}

// TokenBalance fetches one ERC-20 balance for a wallet.
func (c *EVMClient) TokenBalance(ctx context.Context, tokenAddress, walletAddress string) (*big.Int, error) {
	callData, err := parsedERC20ABI.Pack("balanceOf", common.HexToAddress(walletAddress))
	if err != nil {
		return nil, fmt.Errorf("pack balanceOf: %w", err)
	}
	raw, err := c.CallContract(ctx, tokenAddress, callData)
	if err != nil {
		return nil, err
	}
	return unpackBalance(raw)
}

// Balances executes a batched balance query. Native balances go through a
// JSON-RPC batch; token balances go through one Multicall3 aggregate3 call
// when the chain has a multicall contract, falling back to per-token
// eth_call batch elements otherwise. Per-item failures are reported inside
// the results.
func (c *EVMClient) Balances(ctx context.Context, requests []entity.BalanceRequest) ([]entity.BalanceResult, error) {
	results := make([]entity.BalanceResult, len(requests))
	for i, req := range requests {
		results[i] = entity.BalanceResult{Request: req}
	}
	if len(requests) == 0 {
		return results, nil
	}

	var (
		batchElems   []rpc.BatchElem
		batchIndexes []int
		tokenCalls   []multicall3Call
		tokenIndexes []int
	)
	useMulticall := c.cfg.MulticallAddress != ""

	for i, req := range requests {
		switch req.Type {
		case entity.NativeBalanceRequest:
			batchElems = append(batchElems, rpc.BatchElem{
				Method: "eth_getBalance",
				Args:   []interface{}{common.HexToAddress(req.WalletAddress), "latest"},
				Result: new(*hexutil.Big),
			})
			batchIndexes = append(batchIndexes, i)
		case entity.TokenBalanceRequest:
			callData, err := parsedERC20ABI.Pack("balanceOf", common.HexToAddress(req.WalletAddress))
			if err != nil {
				results[i].Error = fmt.Errorf("pack balanceOf for %s: %w", req.TokenSymbol, err)
				continue
			}
			if useMulticall {
				tokenCalls = append(tokenCalls, multicall3Call{
					Target:       common.HexToAddress(req.TokenAddress),
					AllowFailure: true,
					CallData:     callData,
				})
				tokenIndexes = append(tokenIndexes, i)
			} else {
				callArgs := map[string]interface{}{
					"to":   common.HexToAddress(req.TokenAddress),
					"data": hexutil.Bytes(callData),
				}
				batchElems = append(batchElems, rpc.BatchElem{
					Method: "eth_call",
					Args:   []interface{}{callArgs, "latest"},
					Result: new(hexutil.Bytes),
				})
				batchIndexes = append(batchIndexes, i)
			}
		default:
			results[i].Error = fmt.Errorf("unknown balance request type %v for %s", req.Type, req.TokenSymbol)
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	if len(batchElems) > 0 {
		if err := c.ethClient.Client().BatchCallContext(callCtx, batchElems); err != nil {
			return results, fmt.Errorf("RPC batch call failed: %w", err)
		}
		for j, elem := range batchElems {
			i := batchIndexes[j]
			if elem.Error != nil {
				results[i].Error = fmt.Errorf("failed to fetch %s for wallet %s: %w",
					requests[i].TokenSymbol, requests[i].WalletAddress, elem.Error)
				continue
			}
			switch requests[i].Type {
			case entity.NativeBalanceRequest:
				if value, ok := elem.Result.(**hexutil.Big); ok && value != nil && *value != nil {
					results[i].Balance = (*big.Int)(*value)
				} else {
					results[i].Error = fmt.Errorf("unexpected native balance result for %s", requests[i].TokenSymbol)
				}
			case entity.TokenBalanceRequest:
				raw, ok := elem.Result.(*hexutil.Bytes)
				if !ok || raw == nil {
					results[i].Error = fmt.Errorf("unexpected token balance result for %s", requests[i].TokenSymbol)
					continue
				}
				balance, err := unpackBalance(*raw)
				if err != nil {
					results[i].Error = fmt.Errorf("decode balanceOf for %s: %w", requests[i].TokenSymbol, err)
					continue
				}
				results[i].Balance = balance
			}
		}
	}

	if len(tokenCalls) > 0 {
		if err := c.multicallBalances(callCtx, tokenCalls, tokenIndexes, results); err != nil {
			return results, err
		}
	}

	for i := range results {
		if results[i].Error == nil && results[i].Balance == nil {
			results[i].Balance = big.NewInt(0)
		}
	}
	return results, nil
}

func (c *EVMClient) multicallBalances(ctx context.Context, calls []multicall3Call, indexes []int, results []entity.BalanceResult) error {
	input, err := parsedMulticall3.Pack("aggregate3", calls)
	if err != nil {
		return fmt.Errorf("pack aggregate3: %w", err)
	}
	target := common.HexToAddress(c.cfg.MulticallAddress)
	raw, err := c.ethClient.CallContract(ctx, ethereum.CallMsg{To: &target, Data: input}, nil)
	if err != nil {
		return fmt.Errorf("multicall aggregate3 failed: %w", err)
	}
	unpacked, err := parsedMulticall3.Unpack("aggregate3", raw)
	if err != nil {
		return fmt.Errorf("unpack aggregate3: %w", err)
	}
	returnData := *abi.ConvertType(unpacked[0], new([]multicall3Result)).(*[]multicall3Result)
	if len(returnData) != len(calls) {
		return fmt.Errorf("multicall returned %d results for %d calls", len(returnData), len(calls))
	}
	for j, item := range returnData {
		i := indexes[j]
		if !item.Success {
			results[i].Error = fmt.Errorf("balanceOf call failed for token %s", results[i].Request.TokenAddress)
			continue
		}
		balance, err := unpackBalance(item.ReturnData)
		if err != nil {
			results[i].Error = fmt.Errorf("decode balanceOf for %s: %w", results[i].Request.TokenSymbol, err)
			continue
		}
		results[i].Balance = balance
	}
	return nil
}

// TokenMetadata reads symbol and decimals from an ERC-20 contract.
func (c *EVMClient) TokenMetadata(ctx context.Context, tokenAddress string) (entity.TokenMetadata, error) {
	symbolData, err := parsedERC20ABI.Pack("symbol")
	if err != nil {
		return entity.TokenMetadata{}, fmt.Errorf("pack symbol: %w", err)
	}
	decimalsData, err := parsedERC20ABI.Pack("decimals")
	if err != nil {
		return entity.TokenMetadata{}, fmt.Errorf("pack decimals: %w", err)
	}

	rawSymbol, err := c.CallContract(ctx, tokenAddress, symbolData)
	if err != nil {
		return entity.TokenMetadata{}, fmt.Errorf("symbol() call on %s: %w", tokenAddress, err)
	}
	symbolOut, err := parsedERC20ABI.Unpack("symbol", rawSymbol)
	if err != nil || len(symbolOut) == 0 {
		return entity.TokenMetadata{}, fmt.Errorf("decode symbol() of %s: %w", tokenAddress, err)
	}
	symbol, ok := symbolOut[0].(string)
	if !ok {
		return entity.TokenMetadata{}, fmt.Errorf("symbol() of %s returned %T", tokenAddress, symbolOut[0])
	}

	rawDecimals, err := c.CallContract(ctx, tokenAddress, decimalsData)
	if err != nil {
		return entity.TokenMetadata{}, fmt.Errorf("decimals() call on %s: %w", tokenAddress, err)
	}
	decimalsOut, err := parsedERC20ABI.Unpack("decimals", rawDecimals)
	if err != nil || len(decimalsOut) == 0 {
		return entity.TokenMetadata{}, fmt.Errorf("decode decimals() of %s: %w", tokenAddress, err)
	}
	decimals, ok := decimalsOut[0].(uint8)
	if !ok {
		return entity.TokenMetadata{}, fmt.Errorf("decimals() of %s returned %T", tokenAddress, decimalsOut[0])
	}

	return entity.TokenMetadata{Symbol: symbol, Decimals: decimals}, nil
}

// CallContract performs a read-only contract call at the latest block.
func (c *EVMClient) CallContract(ctx context.Context, to string, data []byte) ([]byte, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()
	target := common.HexToAddress(to)
	return c.ethClient.CallContract(callCtx, ethereum.CallMsg{To: &target, Data: data}, nil)
}

// Ping issues a minimal liveness probe.
func (c *EVMClient) Ping(ctx context.Context) error {
	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()
	_, err := c.ethClient.BlockNumber(callCtx)
	return err
}

// Endpoint returns the RPC URL this client was built against.
func (c *EVMClient) Endpoint() string { return c.endpoint }

// Config returns the chain configuration this client serves.
func (c *EVMClient) Config() entity.ChainConfig { return c.cfg }

// Close releases the underlying connection.
func (c *EVMClient) Close() { c.ethClient.Close() }

func unpackBalance(raw []byte) (*big.Int, error) {
	if len(raw) == 0 {
		return big.NewInt(0), nil
	}
	unpacked, err := parsedERC20ABI.Unpack("balanceOf", raw)
	if err != nil {
		return nil, err
	}
	if len(unpacked) == 0 {
		return nil, fmt.Errorf("balanceOf unpack returned no data")
	}
	balance, ok := unpacked[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("balanceOf result is %T, want *big.Int", unpacked[0])
	}
	return balance, nil
}

var _ port.ChainClient = (*EVMClient)(nil)
