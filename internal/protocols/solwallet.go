package protocols

import (
	"context"
	"fmt"

	"defolio/internal/app/port"
	"defolio/internal/domain/entity"
)

// Major SPL mints probed by the Solana wallet adapter.
var solanaMints = []struct {
	mint     string
	symbol   string
	decimals uint8
}{
	{"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", "USDC", 6},
	{"Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB", "USDT", 6},
	{"mSoLzYCxHdYgdzU16g5QSh3i5K3z3KZK7ytfqcJm7So", "mSOL", 9},
}

// SolanaWalletAdapter reports SOL and major SPL token holdings.
type SolanaWalletAdapter struct{}

// NewSolanaWalletAdapter builds the adapter.
func NewSolanaWalletAdapter() *SolanaWalletAdapter {
	return &SolanaWalletAdapter{}
}

func (a *SolanaWalletAdapter) Info() entity.ProtocolInfo {
	return entity.ProtocolInfo{
		ID:       "solana-wallet",
		Name:     "Solana Wallet",
		Category: entity.CategoryWallet,
	}
}

func (a *SolanaWalletAdapter) SupportedChains() []entity.ChainID {
	return []entity.ChainID{entity.ChainSolana}
}

func (a *SolanaWalletAdapter) HasPositions(ctx context.Context, client port.ChainClient, address string, chainID entity.ChainID) bool {
	return hasPositionsViaGet(ctx, a, client, address, chainID)
}

func (a *SolanaWalletAdapter) GetPositions(ctx context.Context, client port.ChainClient, address string, chainID entity.ChainID) ([]entity.Position, error) {
	if chainID != entity.ChainSolana {
		return nil, nil
	}
	cfg := client.Config()

	requests := []entity.BalanceRequest{{
		Type:          entity.NativeBalanceRequest,
		WalletAddress: address,
		TokenSymbol:   cfg.Native.Symbol,
		TokenDecimals: cfg.Native.Decimals,
	}}
	for _, token := range solanaMints {
		requests = append(requests, entity.BalanceRequest{
			Type:          entity.TokenBalanceRequest,
			WalletAddress: address,
			TokenAddress:  token.mint,
			TokenSymbol:   token.symbol,
			TokenDecimals: token.decimals,
		})
	}

	results, err := client.Balances(ctx, requests)
	if err != nil {
		return nil, fmt.Errorf("solana balances: %w", err)
	}

	var positions []entity.Position
	for _, result := range results {
		if result.Error != nil || result.Balance == nil || result.Balance.Sign() == 0 {
			continue
		}
		req := result.Request
		positions = append(positions, entity.Position{
			Protocol: a.Info(),
			ChainID:  chainID,
			Type:     entity.PositionWallet,
			Tokens: []entity.TokenAmount{
				newTokenAmount(req.TokenAddress, req.TokenSymbol, req.TokenDecimals, result.Balance),
			},
		})
	}
	return positions, nil
}

func (a *SolanaWalletAdapter) GetYieldRates(ctx context.Context, client port.ChainClient, chainID entity.ChainID) ([]entity.YieldRate, error) {
	return nil, nil
}

var _ port.ProtocolAdapter = (*SolanaWalletAdapter)(nil)
