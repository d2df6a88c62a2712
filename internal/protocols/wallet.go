package protocols

import (
	"context"
	"fmt"

	"defolio/internal/app/port"
	"defolio/internal/domain/entity"
)

// WalletAdapter reports plain wallet holdings on EVM chains: the native
// currency, the wrapped native token and the chain's configured
// stablecoins, all fetched in a single batched query.
type WalletAdapter struct {
	chains []entity.ChainID
}

// NewWalletAdapter builds the adapter for the given EVM chain ids.
func NewWalletAdapter(chains []entity.ChainID) *WalletAdapter {
	return &WalletAdapter{chains: chains}
}

func (a *WalletAdapter) Info() entity.ProtocolInfo {
	return entity.ProtocolInfo{
		ID:       "wallet",
		Name:     "Wallet",
		Category: entity.CategoryWallet,
	}
}

func (a *WalletAdapter) SupportedChains() []entity.ChainID {
	return a.chains
}

func (a *WalletAdapter) HasPositions(ctx context.Context, client port.ChainClient, address string, chainID entity.ChainID) bool {
	return hasPositionsViaGet(ctx, a, client, address, chainID)
}

func (a *WalletAdapter) GetPositions(ctx context.Context, client port.ChainClient, address string, chainID entity.ChainID) ([]entity.Position, error) {
	if !supportsChain(a.chains, chainID) {
		return nil, nil
	}
	cfg := client.Config()

	requests := []entity.BalanceRequest{{
		Type:          entity.NativeBalanceRequest,
		WalletAddress: address,
		TokenSymbol:   cfg.Native.Symbol,
		TokenDecimals: cfg.Native.Decimals,
	}}
	if cfg.WrappedNativeAddress != "" {
		requests = append(requests, entity.BalanceRequest{
			Type:          entity.TokenBalanceRequest,
			WalletAddress: address,
			TokenAddress:  cfg.WrappedNativeAddress,
			TokenSymbol:   "W" + cfg.Native.Symbol,
			TokenDecimals: cfg.Native.Decimals,
		})
	}
	for symbol, tokenAddress := range cfg.Stablecoins {
		// Stablecoin decimals differ per chain (6 on most, 18 on BSC), so
		// they are read from the contract instead of assumed.
		md := safeTokenMetadata(ctx, client, tokenAddress)
		requests = append(requests, entity.BalanceRequest{
			Type:          entity.TokenBalanceRequest,
			WalletAddress: address,
			TokenAddress:  tokenAddress,
			TokenSymbol:   symbol,
			TokenDecimals: md.Decimals,
		})
	}

	results, err := client.Balances(ctx, requests)
	if err != nil {
		return nil, fmt.Errorf("wallet balances on chain %s: %w", chainID, err)
	}

	var positions []entity.Position
	for _, result := range results {
		if result.Error != nil || result.Balance == nil || result.Balance.Sign() == 0 {
			continue
		}
		req := result.Request
		tokenAddress := req.TokenAddress
		if req.Type == entity.NativeBalanceRequest {
			tokenAddress = entity.ZeroAddress
		}
		positions = append(positions, entity.Position{
			Protocol: a.Info(),
			ChainID:  chainID,
			Type:     entity.PositionWallet,
			Tokens: []entity.TokenAmount{
				newTokenAmount(tokenAddress, req.TokenSymbol, req.TokenDecimals, result.Balance),
			},
		})
	}
	return positions, nil
}

// GetYieldRates returns nothing: wallet holdings carry no yield.
func (a *WalletAdapter) GetYieldRates(ctx context.Context, client port.ChainClient, chainID entity.ChainID) ([]entity.YieldRate, error) {
	return nil, nil
}

var _ port.ProtocolAdapter = (*WalletAdapter)(nil)
