package priceoracle

import (
	"context"
	"strconv"
	"strings"
	"time"

	"defolio/internal/app/port"
	"defolio/internal/domain/entity"
	"defolio/internal/pkg/utils"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Major stables are pinned to $1 instead of queried.
var stablecoinSymbols = map[string]struct{}{
	"USDC": {},
	"USDT": {},
	"DAI":  {},
}

// wrappedSOLMint prices native SOL, which has no ERC-20 style address.
const wrappedSOLMint = "So11111111111111111111111111111111111111112"

// Options tunes the oracle.
type Options struct {
	CacheTTL          time.Duration
	RequestsPerSecond float64
}

// Oracle implements port.PriceOracle on top of DEX Screener with a TTL
// price cache and a client-side rate limit.
type Oracle struct {
	client  PairClient
	chains  port.ChainRegistry
	cache   *cache.Cache
	limiter *rate.Limiter
	logger  *zap.Logger
}

// New builds the oracle.
func New(client PairClient, chains port.ChainRegistry, logger *zap.Logger, opts Options) *Oracle {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 4
	}
	return &Oracle{
		client:  client,
		chains:  chains,
		cache:   cache.New(opts.CacheTTL, 10*time.Minute),
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
		logger:  logger.Named("PriceOracle"),
	}
}

// EnrichPositions prices every token it can and refreshes position values.
// All failures are logged and degrade to unpriced tokens.
func (o *Oracle) EnrichPositions(ctx context.Context, positions []entity.Position) {
	missing := o.collectMissing(positions)
	for dexChainID, addresses := range missing {
		for _, batch := range utils.BatchStrings(addresses, maxTokensPerRequest) {
			if err := o.limiter.Wait(ctx); err != nil {
				o.logger.Warn("price fetch aborted", zap.Error(err))
				return
			}
			pairs, err := o.client.TokenPairs(ctx, dexChainID, batch)
			if err != nil {
				o.logger.Warn("price fetch failed",
					zap.String("dexChainID", dexChainID),
					zap.Int("tokens", len(batch)),
					zap.Error(err))
				continue
			}
			for address, price := range bestPrices(pairs) {
				o.cache.SetDefault(priceKey(dexChainID, address), price)
			}
		}
	}
	o.applyPrices(positions)
}

// collectMissing gathers, per DEX Screener chain id, the lookup addresses
// that are neither stables nor already cached.
func (o *Oracle) collectMissing(positions []entity.Position) map[string][]string {
	missing := make(map[string][]string)
	seen := make(map[string]struct{})
	for _, position := range positions {
		cfg, ok := o.chains.Config(position.ChainID)
		if !ok || cfg.PriceFeedID == "" {
			continue
		}
		for _, token := range position.Tokens {
			if _, stable := stablecoinSymbols[strings.ToUpper(token.Symbol)]; stable {
				continue
			}
			address := lookupAddress(cfg, token)
			if address == "" {
				continue
			}
			key := priceKey(cfg.PriceFeedID, address)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			if _, cached := o.cache.Get(key); cached {
				continue
			}
			missing[cfg.PriceFeedID] = append(missing[cfg.PriceFeedID], address)
		}
	}
	return missing
}

// applyPrices walks the positions and fills USD fields from the cache.
// Borrow positions count against net worth, so their value flips negative.
func (o *Oracle) applyPrices(positions []entity.Position) {
	for i := range positions {
		position := &positions[i]
		cfg, ok := o.chains.Config(position.ChainID)
		if !ok {
			continue
		}
		total := 0.0
		for j := range position.Tokens {
			token := &position.Tokens[j]
			price, found := o.priceFor(cfg, *token)
			if !found {
				continue
			}
			token.PriceUSD = price
			token.ValueUSD = price * utils.ToFloat(token.Amount, token.Decimals)
			total += token.ValueUSD
		}
		if position.Type == entity.PositionBorrow {
			total = -total
		}
		position.ValueUSD = total
	}
}

func (o *Oracle) priceFor(cfg entity.ChainConfig, token entity.TokenAmount) (float64, bool) {
	if _, stable := stablecoinSymbols[strings.ToUpper(token.Symbol)]; stable {
		return 1.0, true
	}
	address := lookupAddress(cfg, token)
	if address == "" || cfg.PriceFeedID == "" {
		return 0, false
	}
	cached, found := o.cache.Get(priceKey(cfg.PriceFeedID, address))
	if !found {
		return 0, false
	}
	price, ok := cached.(float64)
	return price, ok
}

// lookupAddress maps a token to the address DEX Screener knows it by.
// Native holdings are priced through the wrapped representation.
func lookupAddress(cfg entity.ChainConfig, token entity.TokenAmount) string {
	if token.Address == "" || token.Address == entity.ZeroAddress {
		if cfg.WrappedNativeAddress != "" {
			return cfg.WrappedNativeAddress
		}
		if cfg.ID == entity.ChainSolana {
			return wrappedSOLMint
		}
		return ""
	}
	return token.Address
}

// bestPrices picks, per base token, the price from the deepest pair.
func bestPrices(pairs []PairData) map[string]float64 {
	prices := make(map[string]float64)
	liquidity := make(map[string]float64)
	for _, pair := range pairs {
		price, err := strconv.ParseFloat(pair.PriceUsd, 64)
		if err != nil || price <= 0 {
			continue
		}
		address := pair.BaseToken.Address
		depth := 0.0
		if pair.Liquidity != nil {
			depth = pair.Liquidity.Usd
		}
		if existing, ok := liquidity[address]; ok && existing >= depth {
			continue
		}
		prices[address] = price
		liquidity[address] = depth
	}
	return prices
}

func priceKey(dexChainID, address string) string {
	return dexChainID + "_" + strings.ToLower(address)
}

var _ port.PriceOracle = (*Oracle)(nil)
