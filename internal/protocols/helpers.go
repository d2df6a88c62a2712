package protocols

import (
	"context"
	"math"
	"math/big"

	"defolio/internal/app/port"
	"defolio/internal/domain/entity"
	"defolio/internal/pkg/utils"
)

const (
	// unknownSymbol is the placeholder for tokens whose metadata could not
	// be read on-chain.
	unknownSymbol = "UNKNOWN"

	// defaultDecimals is assumed when a token contract exposes no decimals.
	defaultDecimals uint8 = 18

	secondsPerYear = 31_536_000
)

// ray is Aave's 1e27 fixed-point unit.
var ray = new(big.Float).SetFloat64(1e27)

// safeTokenMetadata reads token metadata, falling back to placeholder values
// on any failure so one misbehaving contract never blocks a position.
func safeTokenMetadata(ctx context.Context, client port.ChainClient, tokenAddress string) entity.TokenMetadata {
	md, err := client.TokenMetadata(ctx, tokenAddress)
	if err != nil {
		return entity.TokenMetadata{Symbol: unknownSymbol, Decimals: defaultDecimals}
	}
	if md.Symbol == "" {
		md.Symbol = unknownSymbol
	}
	return md
}

// newTokenAmount builds a TokenAmount with a formatted balance. USD fields
// stay zero until the price oracle enriches the position.
func newTokenAmount(address, symbol string, decimals uint8, amount *big.Int) entity.TokenAmount {
	if amount == nil {
		amount = big.NewInt(0)
	}
	return entity.TokenAmount{
		Address:          address,
		Symbol:           symbol,
		Decimals:         decimals,
		Amount:           amount,
		FormattedBalance: utils.FormatBigInt(amount, decimals),
	}
}

// rayRateToAPR converts an Aave per-second ray rate into a simple yearly
// rate in percent.
func rayRateToAPR(rate *big.Int) float64 {
	if rate == nil || rate.Sign() == 0 {
		return 0
	}
	apr, _ := new(big.Float).Quo(new(big.Float).SetInt(rate), ray).Float64()
	return apr * 100
}

// rayRateToAPY compounds an Aave per-second ray rate into a yearly yield in
// percent.
func rayRateToAPY(rate *big.Int) float64 {
	apr := rayRateToAPR(rate) / 100
	if apr == 0 {
		return 0
	}
	return (math.Pow(1+apr/secondsPerYear, secondsPerYear) - 1) * 100
}

// hasPositionsViaGet is the default liveness probe: fetch positions and
// report presence, swallowing errors.
func hasPositionsViaGet(ctx context.Context, adapter port.ProtocolAdapter, client port.ChainClient, address string, chainID entity.ChainID) bool {
	positions, err := adapter.GetPositions(ctx, client, address, chainID)
	if err != nil {
		return false
	}
	return len(positions) > 0
}

// supportsChain reports whether chainID is in the adapter's supported set.
func supportsChain(chains []entity.ChainID, chainID entity.ChainID) bool {
	for _, id := range chains {
		if id == chainID {
			return true
		}
	}
	return false
}
