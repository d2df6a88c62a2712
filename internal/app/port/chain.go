package port

import (
	"context"
	"math/big"

	"defolio/internal/domain/entity"
)

// ChainClient is a connected client for one chain, always bound to a single
// RPC endpoint. Implementations are specific to network kinds (EVM, Solana).
type ChainClient interface {
	// NativeBalance fetches the native currency balance for a wallet.
	NativeBalance(ctx context.Context, walletAddress string) (*big.Int, error)

	// TokenBalance fetches the balance of one token for a wallet.
	TokenBalance(ctx context.Context, tokenAddress, walletAddress string) (*big.Int, error)

	// Balances executes a batched balance query. Per-item failures are
	// reported inside the results; the returned error covers transport-level
	// failure of the whole batch only.
	Balances(ctx context.Context, requests []entity.BalanceRequest) ([]entity.BalanceResult, error)

	// TokenMetadata reads symbol and decimals from a token contract.
	TokenMetadata(ctx context.Context, tokenAddress string) (entity.TokenMetadata, error)

	// CallContract performs a read-only contract call. EVM only; other kinds
	// return an error.
	CallContract(ctx context.Context, to string, data []byte) ([]byte, error)

	// Ping issues a minimal liveness probe.
	Ping(ctx context.Context) error

	// Endpoint returns the RPC URL this client was built against.
	Endpoint() string

	// Config returns the chain configuration this client serves.
	Config() entity.ChainConfig

	Close()
}

// ChainOperation is a chain-scoped unit of work executed under failover.
type ChainOperation func(ctx context.Context, client ChainClient) error

// FailoverOptions tunes a single WithFailover invocation.
type FailoverOptions struct {
	// MaxRetries is the number of additional attempts after the first
	// failure. Zero or negative selects the registry default.
	MaxRetries int
}

// ChainRegistry maintains one resilient, lazily constructed client per
// supported chain and executes chain-scoped operations with automatic
// endpoint rotation and retry.
type ChainRegistry interface {
	// RegisterChain inserts or overwrites the chain's config and resets its
	// RPC index to the first endpoint.
	RegisterChain(cfg entity.ChainConfig)

	// Config returns the registered config for a chain id.
	Config(chainID entity.ChainID) (entity.ChainConfig, bool)

	// ChainIDs lists every registered chain id.
	ChainIDs() []entity.ChainID

	// GetClient returns the cached client for the chain, constructing it from
	// the current RPC index if absent. Returns *entity.UnregisteredChainError
	// for unknown ids.
	GetClient(chainID entity.ChainID) (ChainClient, error)

	// RotateRPC advances the chain's RPC index by one (wrapping) and evicts
	// the cached client. No-op for unknown chain ids.
	RotateRPC(chainID entity.ChainID)

	// WithFailover runs op with the chain's current client, recording
	// endpoint health and rotating past endpoints that keep failing with
	// rotation-worthy errors. The default retry budget applies.
	WithFailover(ctx context.Context, chainID entity.ChainID, op ChainOperation) error

	// WithFailoverOpts is WithFailover with an explicit retry budget.
	WithFailoverOpts(ctx context.Context, chainID entity.ChainID, op ChainOperation, opts FailoverOptions) error

	// HealthCheck probes the chain's current endpoint and records the outcome
	// the same way WithFailover does.
	HealthCheck(ctx context.Context, chainID entity.ChainID) bool

	// HealthCheckAll probes every registered chain concurrently. Chains fail
	// independently.
	HealthCheckAll(ctx context.Context) map[entity.ChainID]bool

	// RPCStatus snapshots the current RPC URL and endpoint health per chain.
	RPCStatus() map[entity.ChainID]entity.RPCStatus
}
