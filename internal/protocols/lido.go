package protocols

import (
	"context"
	"fmt"

	"defolio/internal/app/port"
	"defolio/internal/domain/entity"
)

const (
	stETHAddress  = "0xae7ab96520DE3A18E5e111B5EaAb095312D7fE84"
	wstETHAddress = "0x7f39C581F595B53c5cb19bD0b3f8dA6c935E2Ca0"
)

// LidoAdapter reports stETH and wstETH staking positions on Ethereum
// mainnet. Lido publishes no on-chain rate, so yield rates stay empty and
// positions are flagged as passively yielding instead.
type LidoAdapter struct{}

// NewLidoAdapter builds the adapter.
func NewLidoAdapter() *LidoAdapter {
	return &LidoAdapter{}
}

func (a *LidoAdapter) Info() entity.ProtocolInfo {
	return entity.ProtocolInfo{
		ID:           "lido",
		Name:         "Lido",
		Category:     entity.CategoryStaking,
		Website:      "https://lido.fi",
		PassiveYield: true,
	}
}

func (a *LidoAdapter) SupportedChains() []entity.ChainID {
	return []entity.ChainID{"1"}
}

func (a *LidoAdapter) HasPositions(ctx context.Context, client port.ChainClient, address string, chainID entity.ChainID) bool {
	return hasPositionsViaGet(ctx, a, client, address, chainID)
}

func (a *LidoAdapter) GetPositions(ctx context.Context, client port.ChainClient, address string, chainID entity.ChainID) ([]entity.Position, error) {
	if !supportsChain(a.SupportedChains(), chainID) {
		return nil, nil
	}

	requests := []entity.BalanceRequest{
		{
			Type:          entity.TokenBalanceRequest,
			WalletAddress: address,
			TokenAddress:  stETHAddress,
			TokenSymbol:   "stETH",
			TokenDecimals: 18,
		},
		{
			Type:          entity.TokenBalanceRequest,
			WalletAddress: address,
			TokenAddress:  wstETHAddress,
			TokenSymbol:   "wstETH",
			TokenDecimals: 18,
		},
	}
	results, err := client.Balances(ctx, requests)
	if err != nil {
		return nil, fmt.Errorf("lido balances: %w", err)
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
			Type:     entity.PositionStake,
			Tokens: []entity.TokenAmount{
				newTokenAmount(req.TokenAddress, req.TokenSymbol, req.TokenDecimals, result.Balance),
			},
		})
	}
	return positions, nil
}

func (a *LidoAdapter) GetYieldRates(ctx context.Context, client port.ChainClient, chainID entity.ChainID) ([]entity.YieldRate, error) {
	return nil, nil
}

var _ port.ProtocolAdapter = (*LidoAdapter)(nil)
