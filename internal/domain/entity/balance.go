package entity

import "math/big"

// BalanceRequestType defines the type of balance request.
type BalanceRequestType int

const (
	// NativeBalanceRequest requests the native balance of a wallet.
	NativeBalanceRequest BalanceRequestType = iota
	// TokenBalanceRequest requests the balance of a specific token for a wallet.
	TokenBalanceRequest
)

// ZeroAddress represents the EVM zero address.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// BalanceRequest is a single item in a batched balance query.
type BalanceRequest struct {
	Type          BalanceRequestType
	WalletAddress string
	TokenAddress  string
	TokenSymbol   string
	TokenDecimals uint8
}

// BalanceResult is the outcome of one request from a batch. Sub-request
// errors are carried per item so one bad token never fails the batch.
type BalanceResult struct {
	Request BalanceRequest
	Balance *big.Int
	Error   error
}

// TokenMetadata is the on-chain identity of a token contract.
type TokenMetadata struct {
	Symbol   string
	Decimals uint8
}
