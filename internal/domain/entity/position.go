package entity

import "math/big"

// PositionType classifies how a holding is deployed.
type PositionType string

const (
	PositionSupply         PositionType = "supply"
	PositionBorrow         PositionType = "borrow"
	PositionLiquidity      PositionType = "liquidity"
	PositionStake          PositionType = "stake"
	PositionVault          PositionType = "vault"
	PositionCollateral     PositionType = "collateral"
	PositionWallet         PositionType = "wallet"
	PositionRestake        PositionType = "restake"
	PositionSavings        PositionType = "savings"
	PositionFarm           PositionType = "farm"
	PositionLocked         PositionType = "locked"
	PositionFixedYield     PositionType = "fixed-yield"
	PositionRWA            PositionType = "rwa"
	PositionTokenizedStock PositionType = "tokenized-stock"
)

// ProtocolCategory groups protocols for catalog lookups.
type ProtocolCategory string

const (
	CategoryWallet  ProtocolCategory = "wallet"
	CategoryLending ProtocolCategory = "lending"
	CategoryStaking ProtocolCategory = "staking"
	CategoryDEX     ProtocolCategory = "dex"
	CategoryYield   ProtocolCategory = "yield"
	CategoryRWA     ProtocolCategory = "rwa"
)

// ProtocolInfo is an adapter's static identity.
type ProtocolInfo struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Category     ProtocolCategory `json:"category"`
	Website      string           `json:"website,omitempty"`
	PassiveYield bool             `json:"passiveYield"`
}

// TokenAmount is one token entry inside a position.
type TokenAmount struct {
	Address          string   `json:"address,omitempty"`
	Symbol           string   `json:"symbol"`
	Decimals         uint8    `json:"decimals"`
	Amount           *big.Int `json:"-"`
	FormattedBalance string   `json:"formattedBalance"`
	PriceUSD         float64  `json:"priceUSD"`
	ValueUSD         float64  `json:"valueUSD"`
}

// YieldInfo carries the rate attached to a yield-bearing position.
type YieldInfo struct {
	APY float64 `json:"apy"`
	APR float64 `json:"apr,omitempty"`
}

// Position is one reported holding. Produced fresh per request by adapters
// and never persisted by the core.
type Position struct {
	Protocol     ProtocolInfo   `json:"protocol"`
	ChainID      ChainID        `json:"chainId"`
	Type         PositionType   `json:"type"`
	Tokens       []TokenAmount  `json:"tokens"`
	ValueUSD     float64        `json:"valueUSD"`
	Yield        *YieldInfo     `json:"yield,omitempty"`
	HealthFactor *float64       `json:"healthFactor,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// YieldRate is one yield opportunity reported by an adapter.
type YieldRate struct {
	Protocol string       `json:"protocol"`
	ChainID  ChainID      `json:"chainId"`
	Asset    string       `json:"asset"`
	Symbol   string       `json:"symbol"`
	Type     PositionType `json:"type"`
	APY      float64      `json:"apy"`
	APR      float64      `json:"apr,omitempty"`
	TVLUSD   float64      `json:"tvlUsd,omitempty"`
}
