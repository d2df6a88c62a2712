package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"defolio/internal/app/port"
	"defolio/internal/domain/entity"

	jsoniter "github.com/json-iterator/go"
)

var solanaJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrUnsupportedOperation is returned for EVM-only operations invoked on
// non-EVM chains.
var ErrUnsupportedOperation = errors.New("operation not supported on this chain")

type solanaRPCRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

type solanaRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type solanaRPCResponse struct {
	Result jsoniter.RawMessage `json:"result"`
	Error  *solanaRPCError     `json:"error"`
}

// SolanaClient implements port.ChainClient over the Solana JSON-RPC API.
// Like its EVM counterpart it is bound to a single endpoint.
type SolanaClient struct {
	httpClient *http.Client
	cfg        entity.ChainConfig
	endpoint   string
}

// NewSolanaClient builds a client for one Solana RPC endpoint.
func NewSolanaClient(cfg entity.ChainConfig, rpcURL string, callTimeout time.Duration) (*SolanaClient, error) {
	if rpcURL == "" {
		return nil, fmt.Errorf("empty RPC URL for chain %s", cfg.ID)
	}
	return &SolanaClient{
		httpClient: &http.Client{Timeout: callTimeout},
		cfg:        cfg,
		endpoint:   rpcURL,
	}, nil
}

func (c *SolanaClient) call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	body, err := solanaJSON.Marshal(solanaRPCRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request to %s failed: %w", method, c.endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned HTTP %d", method, resp.StatusCode)
	}

	var rpcResp solanaRPCResponse
	if err := solanaJSON.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("%s RPC error %d: %s", method, rpcResp.Error.Code, rpcResp.Error.Message)
	}
	if result != nil {
		if err := solanaJSON.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("decode %s result: %w", method, err)
		}
	}
	return nil
}

// NativeBalance returns the SOL balance in lamports.
func (c *SolanaClient) NativeBalance(ctx context.Context, walletAddress string) (*big.Int, error) {
	var result struct {
		Value uint64 `json:"value"`
	}
	if err := c.call(ctx, "getBalance", []interface{}{walletAddress}, &result); err != nil {
		return nil, err
	}
	return new(big.Int).SetUint64(result.Value), nil
}

// splAccountsResult holds the jsonParsed getTokenAccountsByOwner response.
type splAccountsResult struct {
	Value []struct {
		Account struct {
			Data struct {
				Parsed struct {
					Info struct {
						TokenAmount struct {
							Amount   string `json:"amount"`
							Decimals uint8  `json:"decimals"`
						} `json:"tokenAmount"`
					} `json:"info"`
				} `json:"parsed"`
			} `json:"data"`
		} `json:"account"`
	} `json:"value"`
}

// TokenBalance sums all SPL token accounts for the given mint.
func (c *SolanaClient) TokenBalance(ctx context.Context, tokenAddress, walletAddress string) (*big.Int, error) {
	var result splAccountsResult
	params := []interface{}{
		walletAddress,
		map[string]string{"mint": tokenAddress},
		map[string]string{"encoding": "jsonParsed"},
	}
	if err := c.call(ctx, "getTokenAccountsByOwner", params, &result); err != nil {
		return nil, err
	}
	total := big.NewInt(0)
	for _, account := range result.Value {
		amount, ok := new(big.Int).SetString(account.Account.Data.Parsed.Info.TokenAmount.Amount, 10)
		if !ok {
			return nil, fmt.Errorf("malformed token amount %q for mint %s",
				account.Account.Data.Parsed.Info.TokenAmount.Amount, tokenAddress)
		}
		total.Add(total, amount)
	}
	return total, nil
}

// Balances resolves each request sequentially. Solana has no batch
// equivalent of Multicall3, so per-item failures are recorded inline.
func (c *SolanaClient) Balances(ctx context.Context, requests []entity.BalanceRequest) ([]entity.BalanceResult, error) {
	results := make([]entity.BalanceResult, len(requests))
	for i, req := range requests {
		results[i] = entity.BalanceResult{Request: req}
		switch req.Type {
		case entity.NativeBalanceRequest:
			results[i].Balance, results[i].Error = c.NativeBalance(ctx, req.WalletAddress)
		case entity.TokenBalanceRequest:
			results[i].Balance, results[i].Error = c.TokenBalance(ctx, req.TokenAddress, req.WalletAddress)
		default:
			results[i].Error = fmt.Errorf("unknown balance request type %v for %s", req.Type, req.TokenSymbol)
		}
	}
	return results, nil
}

// TokenMetadata reports mint decimals from getTokenSupply. SPL mints carry
// no on-chain symbol, so the symbol is left empty for callers to fill from
// their own registries.
func (c *SolanaClient) TokenMetadata(ctx context.Context, tokenAddress string) (entity.TokenMetadata, error) {
	var result struct {
		Value struct {
			Decimals uint8 `json:"decimals"`
		} `json:"value"`
	}
	if err := c.call(ctx, "getTokenSupply", []interface{}{tokenAddress}, &result); err != nil {
		return entity.TokenMetadata{}, err
	}
	return entity.TokenMetadata{Decimals: result.Value.Decimals}, nil
}

// CallContract is an EVM-only operation.
func (c *SolanaClient) CallContract(ctx context.Context, to string, data []byte) ([]byte, error) {
	return nil, fmt.Errorf("callContract on chain %s: %w", c.cfg.ID, ErrUnsupportedOperation)
}

// Ping checks node health via getHealth.
func (c *SolanaClient) Ping(ctx context.Context) error {
	var status string
	if err := c.call(ctx, "getHealth", nil, &status); err != nil {
		return err
	}
	if status != "ok" {
		return fmt.Errorf("node health is %q", status)
	}
	return nil
}

// Endpoint returns the RPC URL this client was built against.
func (c *SolanaClient) Endpoint() string { return c.endpoint }

// Config returns the chain configuration this client serves.
func (c *SolanaClient) Config() entity.ChainConfig { return c.cfg }

// Close is a no-op; the shared http.Client owns no persistent resources.
func (c *SolanaClient) Close() {}

var _ port.ChainClient = (*SolanaClient)(nil)
