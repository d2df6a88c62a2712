package chainregistry

import (
	"os"
	"strings"

	"defolio/internal/domain/entity"
)

// Multicall3 is deployed at the same address on every supported EVM chain.
const multicall3Address = "0xcA11bde05977b3631167028862bE2a173976CA11"

// Built-in chain catalog. The first URL of each list is the default primary;
// RPC_URL_<CHAINID> (or RPC_URL_SOLANA) prepends an operator-supplied
// endpoint ahead of the public ones.
var builtinChains = []entity.ChainConfig{
	{
		ID:   entity.EVMChainID(1),
		Name: "Ethereum Mainnet",
		Kind: entity.KindEVM,
		RPCURLs: []string{
			"https://ethereum-rpc.publicnode.com",
			"https://eth.llamarpc.com",
			"https://rpc.ankr.com/eth",
		},
		Native:               entity.NativeCurrency{Name: "Ether", Symbol: "ETH", Decimals: 18},
		BlockExplorerURL:     "https://etherscan.io",
		PriceFeedID:          "ethereum",
		MulticallAddress:     multicall3Address,
		WrappedNativeAddress: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
		Stablecoins: map[string]string{
			"USDC": "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
			"USDT": "0xdAC17F958D2ee523a2206206994597C13D831ec7",
			"DAI":  "0x6B175474E89094C44Da98b954EedeAC495271d0F",
		},
	},
	{
		ID:   entity.EVMChainID(10),
		Name: "Optimism",
		Kind: entity.KindEVM,
		RPCURLs: []string{
			"https://mainnet.optimism.io",
			"https://optimism-rpc.publicnode.com",
		},
		Native:               entity.NativeCurrency{Name: "Ether", Symbol: "ETH", Decimals: 18},
		BlockExplorerURL:     "https://optimistic.etherscan.io",
		PriceFeedID:          "optimism",
		MulticallAddress:     multicall3Address,
		WrappedNativeAddress: "0x4200000000000000000000000000000000000006",
		Stablecoins: map[string]string{
			"USDC": "0x0b2C639c533813f4Aa9D7837CAf62653d097Ff85",
			"USDT": "0x94b008aA00579c1307B0EF2c499aD98a8ce58e58",
		},
	},
	{
		ID:   entity.EVMChainID(56),
		Name: "BNB Smart Chain",
		Kind: entity.KindEVM,
		RPCURLs: []string{
			"https://bsc-dataseed.binance.org",
			"https://bsc-rpc.publicnode.com",
			"https://1rpc.io/bnb",
		},
		Native:               entity.NativeCurrency{Name: "BNB", Symbol: "BNB", Decimals: 18},
		BlockExplorerURL:     "https://bscscan.com",
		PriceFeedID:          "bsc",
		MulticallAddress:     multicall3Address,
		WrappedNativeAddress: "0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c",
		Stablecoins: map[string]string{
			"USDT": "0x55d398326f99059fF775485246999027B3197955",
			"USDC": "0x8AC76a51cc950d9822D68b83fE1Ad97B32Cd580d",
		},
	},
	{
		ID:   entity.EVMChainID(137),
		Name: "Polygon PoS",
		Kind: entity.KindEVM,
		RPCURLs: []string{
			"https://polygon-rpc.com",
			"https://polygon-bor-rpc.publicnode.com",
			"https://rpc.ankr.com/polygon",
		},
		Native:               entity.NativeCurrency{Name: "POL", Symbol: "POL", Decimals: 18},
		BlockExplorerURL:     "https://polygonscan.com",
		PriceFeedID:          "polygon",
		MulticallAddress:     multicall3Address,
		WrappedNativeAddress: "0x0d500B1d8E8eF31E21C99d1Db9A6444d3ADf1270",
		Stablecoins: map[string]string{
			"USDC": "0x3c499c542cEF5E3811e1192ce70d8cC03d5c3359",
			"USDT": "0xc2132D05D31c914a87C6611C10748AEb04B58e8F",
		},
	},
	{
		ID:   entity.EVMChainID(8453),
		Name: "Base",
		Kind: entity.KindEVM,
		RPCURLs: []string{
			"https://mainnet.base.org",
			"https://base-rpc.publicnode.com",
			"https://base.llamarpc.com",
		},
		Native:               entity.NativeCurrency{Name: "Ether", Symbol: "ETH", Decimals: 18},
		BlockExplorerURL:     "https://basescan.org",
		PriceFeedID:          "base",
		MulticallAddress:     multicall3Address,
		WrappedNativeAddress: "0x4200000000000000000000000000000000000006",
		Stablecoins: map[string]string{
			"USDC": "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913",
		},
	},
	{
		ID:   entity.EVMChainID(42161),
		Name: "Arbitrum One",
		Kind: entity.KindEVM,
		RPCURLs: []string{
			"https://arb1.arbitrum.io/rpc",
			"https://arbitrum-one-rpc.publicnode.com",
			"https://arbitrum.llamarpc.com",
		},
		Native:               entity.NativeCurrency{Name: "Ether", Symbol: "ETH", Decimals: 18},
		BlockExplorerURL:     "https://arbiscan.io",
		PriceFeedID:          "arbitrum",
		MulticallAddress:     multicall3Address,
		WrappedNativeAddress: "0x82aF49447D8a07e3bd95BD0d56f35241523fBab1",
		Stablecoins: map[string]string{
			"USDC": "0xaf88d065e77c8cC2239327C5EDb3A432268e5831",
			"USDT": "0xFd086bC7CD5C481DCC9C85ebE478A1C0b69FCbb9",
		},
	},
	{
		ID:   entity.EVMChainID(43114),
		Name: "Avalanche C-Chain",
		Kind: entity.KindEVM,
		RPCURLs: []string{
			"https://api.avax.network/ext/bc/C/rpc",
			"https://avalanche-c-chain-rpc.publicnode.com",
		},
		Native:               entity.NativeCurrency{Name: "AVAX", Symbol: "AVAX", Decimals: 18},
		BlockExplorerURL:     "https://snowtrace.io",
		PriceFeedID:          "avalanche",
		MulticallAddress:     multicall3Address,
		WrappedNativeAddress: "0xB31f66AA3C1e785363F0875A1B74E27b85FD66c7",
		Stablecoins: map[string]string{
			"USDC": "0xB97EF9Ef8734C71904D8002F8b6Bc66Dd9c48a6E",
			"USDT": "0x9702230A8Ea53601f5cD2dc00fDBc13d4dF4A8c7",
		},
	},
	{
		ID:   entity.ChainSolana,
		Name: "Solana",
		Kind: entity.KindSolana,
		RPCURLs: []string{
			"https://api.mainnet-beta.solana.com",
			"https://solana-rpc.publicnode.com",
		},
		Native:           entity.NativeCurrency{Name: "Solana", Symbol: "SOL", Decimals: 9},
		BlockExplorerURL: "https://solscan.io",
		PriceFeedID:      "solana",
	},
}

// DefaultChainConfigs returns the built-in catalog with environment RPC
// overrides applied.
func DefaultChainConfigs() []entity.ChainConfig {
	configs := make([]entity.ChainConfig, 0, len(builtinChains))
	for _, cfg := range builtinChains {
		configs = append(configs, overrideFromEnv(cfg))
	}
	return configs
}

// overrideFromEnv prepends an operator-supplied RPC URL, if any, so it
// becomes the chain's primary endpoint while the public list stays as
// fallback.
func overrideFromEnv(cfg entity.ChainConfig) entity.ChainConfig {
	key := "RPC_URL_" + strings.ToUpper(string(cfg.ID))
	override := strings.TrimSpace(os.Getenv(key))
	if override == "" {
		return cfg
	}
	urls := make([]string, 0, len(cfg.RPCURLs)+1)
	urls = append(urls, override)
	for _, u := range cfg.RPCURLs {
		if u != override {
			urls = append(urls, u)
		}
	}
	cfg.RPCURLs = urls
	return cfg
}
