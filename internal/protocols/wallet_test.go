package protocols

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"defolio/internal/domain/entity"
)

// fakeClient is a canned port.ChainClient for adapter tests.
type fakeClient struct {
	cfg         entity.ChainConfig
	balances    map[string]*big.Int // keyed by token symbol, "" for native
	balanceErrs map[string]error
	metadata    map[string]entity.TokenMetadata // keyed by token address
	metadataErr error
	callResult  []byte
	callErr     error
}

func (c *fakeClient) NativeBalance(ctx context.Context, wallet string) (*big.Int, error) {
	return c.balances[""], nil
}

func (c *fakeClient) TokenBalance(ctx context.Context, token, wallet string) (*big.Int, error) {
	return c.balances[token], nil
}

func (c *fakeClient) Balances(ctx context.Context, requests []entity.BalanceRequest) ([]entity.BalanceResult, error) {
	results := make([]entity.BalanceResult, len(requests))
	for i, req := range requests {
		results[i] = entity.BalanceResult{Request: req}
		key := req.TokenSymbol
		if req.Type == entity.NativeBalanceRequest {
			key = ""
		}
		if err, ok := c.balanceErrs[key]; ok {
			results[i].Error = err
			continue
		}
		balance := c.balances[key]
		if balance == nil {
			balance = big.NewInt(0)
		}
		results[i].Balance = balance
	}
	return results, nil
}

func (c *fakeClient) TokenMetadata(ctx context.Context, token string) (entity.TokenMetadata, error) {
	if c.metadataErr != nil {
		return entity.TokenMetadata{}, c.metadataErr
	}
	return c.metadata[token], nil
}

func (c *fakeClient) CallContract(ctx context.Context, to string, data []byte) ([]byte, error) {
	return c.callResult, c.callErr
}

func (c *fakeClient) Ping(ctx context.Context) error { return nil }
func (c *fakeClient) Endpoint() string               { return "fake" }
func (c *fakeClient) Config() entity.ChainConfig     { return c.cfg }
func (c *fakeClient) Close()                         {}

func ethereumTestMetadata() map[string]entity.TokenMetadata {
	return map[string]entity.TokenMetadata{
		"0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48": {Symbol: "USDC", Decimals: 6},
		"0x6B175474E89094C44Da98b954EedeAC495271d0F": {Symbol: "DAI", Decimals: 18},
	}
}

func ethereumTestConfig() entity.ChainConfig {
	return entity.ChainConfig{
		ID:   "1",
		Name: "Ethereum",
		Kind: entity.KindEVM,
		Native: entity.NativeCurrency{
			Name: "Ether", Symbol: "ETH", Decimals: 18,
		},
		WrappedNativeAddress: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
		Stablecoins: map[string]string{
			"USDC": "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
			"DAI":  "0x6B175474E89094C44Da98b954EedeAC495271d0F",
		},
	}
}

func TestWalletAdapterSkipsZeroBalances(t *testing.T) {
	adapter := NewWalletAdapter([]entity.ChainID{"1"})
	client := &fakeClient{
		cfg: ethereumTestConfig(),
		balances: map[string]*big.Int{
			"":     big.NewInt(2e18), // 2 ETH
			"USDC": big.NewInt(0),
			"DAI":  big.NewInt(5e18),
		},
		metadata: ethereumTestMetadata(),
	}

	positions, err := adapter.GetPositions(context.Background(), client, "0xwallet", "1")
	if err != nil {
		t.Fatalf("GetPositions: %v", err)
	}
	if len(positions) != 2 {
		t.Fatalf("got %d positions, want 2 (native + DAI)", len(positions))
	}
	for _, p := range positions {
		if p.Type != entity.PositionWallet {
			t.Errorf("position type = %s, want wallet", p.Type)
		}
		if p.ChainID != "1" {
			t.Errorf("chain id = %s, want 1", p.ChainID)
		}
	}
}

func TestWalletAdapterNativeUsesZeroAddress(t *testing.T) {
	adapter := NewWalletAdapter([]entity.ChainID{"1"})
	client := &fakeClient{
		cfg:      ethereumTestConfig(),
		balances: map[string]*big.Int{"": big.NewInt(1e18)},
	}

	positions, err := adapter.GetPositions(context.Background(), client, "0xwallet", "1")
	if err != nil {
		t.Fatalf("GetPositions: %v", err)
	}
	if len(positions) != 1 {
		t.Fatalf("got %d positions, want 1", len(positions))
	}
	token := positions[0].Tokens[0]
	if token.Address != entity.ZeroAddress {
		t.Errorf("native token address = %s, want zero address", token.Address)
	}
	if token.FormattedBalance != "1" {
		t.Errorf("formatted balance = %q, want 1", token.FormattedBalance)
	}
}

func TestWalletAdapterUnsupportedChainIsEmpty(t *testing.T) {
	adapter := NewWalletAdapter([]entity.ChainID{"1"})
	client := &fakeClient{cfg: ethereumTestConfig()}

	positions, err := adapter.GetPositions(context.Background(), client, "0xwallet", "42161")
	if err != nil {
		t.Fatalf("GetPositions: %v", err)
	}
	if len(positions) != 0 {
		t.Errorf("unsupported chain returned %d positions, want 0", len(positions))
	}
}

func TestWalletAdapterSkipsFailedSubRequests(t *testing.T) {
	adapter := NewWalletAdapter([]entity.ChainID{"1"})
	client := &fakeClient{
		cfg: ethereumTestConfig(),
		balances: map[string]*big.Int{
			"": big.NewInt(1e18),
		},
		balanceErrs: map[string]error{
			"USDC": errors.New("execution reverted"),
		},
	}

	positions, err := adapter.GetPositions(context.Background(), client, "0xwallet", "1")
	if err != nil {
		t.Fatalf("GetPositions: %v", err)
	}
	if len(positions) != 1 {
		t.Fatalf("got %d positions, want 1 (failed token skipped)", len(positions))
	}
}

func TestWalletAdapterReadsStablecoinDecimalsFromChain(t *testing.T) {
	// BSC-bridged USDT and USDC carry 18 decimals, unlike their 6-decimal
	// Ethereum counterparts; the adapter must not assume either.
	usdtAddress := "0x55d398326f99059fF775485246999027B3197955"
	cfg := entity.ChainConfig{
		ID:   "56",
		Name: "BNB Smart Chain",
		Kind: entity.KindEVM,
		Native: entity.NativeCurrency{
			Name: "BNB", Symbol: "BNB", Decimals: 18,
		},
		Stablecoins: map[string]string{"USDT": usdtAddress},
	}
	adapter := NewWalletAdapter([]entity.ChainID{"56"})
	client := &fakeClient{
		cfg:      cfg,
		balances: map[string]*big.Int{"USDT": big.NewInt(1e18)}, // 1 USDT
		metadata: map[string]entity.TokenMetadata{
			usdtAddress: {Symbol: "USDT", Decimals: 18},
		},
	}

	positions, err := adapter.GetPositions(context.Background(), client, "0xwallet", "56")
	if err != nil {
		t.Fatalf("GetPositions: %v", err)
	}
	if len(positions) != 1 {
		t.Fatalf("got %d positions, want 1", len(positions))
	}
	token := positions[0].Tokens[0]
	if token.Decimals != 18 {
		t.Errorf("USDT decimals = %d, want 18 from on-chain metadata", token.Decimals)
	}
	if token.FormattedBalance != "1" {
		t.Errorf("formatted balance = %q, want 1", token.FormattedBalance)
	}
}

func TestWalletAdapterMetadataFailureDegradesToDefaults(t *testing.T) {
	adapter := NewWalletAdapter([]entity.ChainID{"1"})
	client := &fakeClient{
		cfg:         ethereumTestConfig(),
		balances:    map[string]*big.Int{"DAI": big.NewInt(3e18)},
		metadataErr: errors.New("execution reverted"),
	}

	positions, err := adapter.GetPositions(context.Background(), client, "0xwallet", "1")
	if err != nil {
		t.Fatalf("GetPositions: %v", err)
	}
	var dai *entity.TokenAmount
	for i := range positions {
		if positions[i].Tokens[0].Symbol == "DAI" {
			dai = &positions[i].Tokens[0]
		}
	}
	if dai == nil {
		t.Fatal("DAI position missing despite metadata failure")
	}
	if dai.Decimals != 18 || dai.FormattedBalance != "3" {
		t.Errorf("degraded DAI = %d decimals %q, want 18 decimals and 3", dai.Decimals, dai.FormattedBalance)
	}
}

func TestWalletAdapterHasPositions(t *testing.T) {
	adapter := NewWalletAdapter([]entity.ChainID{"1"})

	empty := &fakeClient{cfg: ethereumTestConfig()}
	if adapter.HasPositions(context.Background(), empty, "0xwallet", "1") {
		t.Error("empty wallet should have no positions")
	}

	funded := &fakeClient{
		cfg:      ethereumTestConfig(),
		balances: map[string]*big.Int{"": big.NewInt(1)},
	}
	if !adapter.HasPositions(context.Background(), funded, "0xwallet", "1") {
		t.Error("funded wallet should have positions")
	}
}
