package entity

import (
	"fmt"
	"strconv"
)

// NetworkKind distinguishes the client stack a chain needs.
type NetworkKind string

const (
	KindEVM    NetworkKind = "evm"
	KindSolana NetworkKind = "solana"
)

// ChainID identifies a chain: the decimal chain id for EVM networks
// ("1", "42161", ...) or the distinguished "solana" token.
type ChainID string

// ChainSolana is the only non-numeric chain id.
const ChainSolana ChainID = "solana"

// EVMChainID builds a ChainID from a numeric EVM chain id.
func EVMChainID(id uint64) ChainID {
	return ChainID(strconv.FormatUint(id, 10))
}

// NativeCurrency describes a chain's gas token.
type NativeCurrency struct {
	Name     string `json:"name" yaml:"name"`
	Symbol   string `json:"symbol" yaml:"symbol"`
	Decimals uint8  `json:"decimals" yaml:"decimals"`
}

// ChainConfig holds the static configuration for one supported chain.
// Registered once at startup and treated as immutable afterwards;
// re-registration under the same id replaces the whole config.
type ChainConfig struct {
	ID               ChainID        `json:"chainId" yaml:"chainId"`
	Name             string         `json:"name" yaml:"name"`
	Kind             NetworkKind    `json:"kind" yaml:"kind"`
	RPCURLs          []string       `json:"rpcUrls" yaml:"rpcUrls"`
	Native           NativeCurrency `json:"nativeCurrency" yaml:"nativeCurrency"`
	BlockExplorerURL string         `json:"blockExplorerUrl,omitempty" yaml:"blockExplorerUrl,omitempty"`
	PriceFeedID      string         `json:"-" yaml:"priceFeedId,omitempty"`

	// EVM only.
	MulticallAddress     string            `json:"-" yaml:"multicallAddress,omitempty"`
	WrappedNativeAddress string            `json:"-" yaml:"wrappedNativeAddress,omitempty"`
	Stablecoins          map[string]string `json:"-" yaml:"stablecoins,omitempty"`
}

// UnregisteredChainError is returned when a chain id is not known to the
// chain registry. It is the registry's only structural error.
type UnregisteredChainError struct {
	ChainID ChainID
}

func (e *UnregisteredChainError) Error() string {
	return fmt.Sprintf("chain %q is not registered", e.ChainID)
}
