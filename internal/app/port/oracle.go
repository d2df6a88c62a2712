package port

import (
	"context"

	"defolio/internal/domain/entity"
)

// PriceOracle fills in per-token USD prices. The aggregator treats it as
// opaque: enrich, then recompute subtotals.
type PriceOracle interface {
	// EnrichPositions sets PriceUSD/ValueUSD on every token amount it can
	// price and refreshes each position's ValueUSD. Unpriceable tokens are
	// left at zero; enrichment never fails the portfolio.
	EnrichPositions(ctx context.Context, positions []entity.Position)
}
