package port

import (
	"context"

	"defolio/internal/domain/entity"
)

// ProtocolAdapter integrates one external protocol on a set of chains.
// Implementations must degrade gracefully: detection fails closed, fetch
// operations on unsupported chains return empty results rather than errors,
// and partial sub-query failures are skipped rather than propagated.
type ProtocolAdapter interface {
	// Info returns the adapter's static identity.
	Info() entity.ProtocolInfo

	// SupportedChains returns the fixed, non-empty set of chain ids this
	// adapter can operate on.
	SupportedChains() []entity.ChainID

	// HasPositions reports whether the address holds any position. Internal
	// errors yield false, never an error to the caller.
	HasPositions(ctx context.Context, client ChainClient, address string, chainID entity.ChainID) bool

	// GetPositions fetches the address's positions on one chain. Unsupported
	// chains yield an empty list, not an error.
	GetPositions(ctx context.Context, client ChainClient, address string, chainID entity.ChainID) ([]entity.Position, error)

	// GetYieldRates fetches the rates currently offered by the protocol on
	// one chain. Unsupported chains yield an empty list, not an error.
	GetYieldRates(ctx context.Context, client ChainClient, chainID entity.ChainID) ([]entity.YieldRate, error)
}
