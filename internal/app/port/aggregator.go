package port

import (
	"context"

	"defolio/internal/domain/entity"
)

// PortfolioAggregator produces a complete Portfolio for one address,
// optionally scoped to a subset of chain ids.
type PortfolioAggregator interface {
	// BuildPortfolio queries every applicable adapter on every applicable
	// chain, tolerating individual chain/adapter failures, and merges the
	// results. Partial data beats a failed request: the error is non-nil only
	// when the request itself is invalid, never for partial failures.
	BuildPortfolio(ctx context.Context, address string, chainIDs []entity.ChainID) (*entity.Portfolio, error)
}

// YieldScanner collects the yield rates currently offered across chains.
type YieldScanner interface {
	CollectYieldRates(ctx context.Context, chainIDs []entity.ChainID, minAPY float64, limit int) []entity.YieldRate
}
