package protocols

import (
	"context"
	"testing"

	"defolio/internal/app/port"
	"defolio/internal/domain/entity"
)

// staticAdapter is a minimal adapter for registry tests.
type staticAdapter struct {
	info   entity.ProtocolInfo
	chains []entity.ChainID
}

func (a *staticAdapter) Info() entity.ProtocolInfo         { return a.info }
func (a *staticAdapter) SupportedChains() []entity.ChainID { return a.chains }
func (a *staticAdapter) HasPositions(context.Context, port.ChainClient, string, entity.ChainID) bool {
	return false
}
func (a *staticAdapter) GetPositions(context.Context, port.ChainClient, string, entity.ChainID) ([]entity.Position, error) {
	return nil, nil
}
func (a *staticAdapter) GetYieldRates(context.Context, port.ChainClient, entity.ChainID) ([]entity.YieldRate, error) {
	return nil, nil
}

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	r.Register(&staticAdapter{
		info:   entity.ProtocolInfo{ID: "aave-v3", Category: entity.CategoryLending},
		chains: []entity.ChainID{"1", "42161"},
	})

	if _, ok := r.Get("aave-v3"); !ok {
		t.Fatal("registered adapter not found")
	}
	if _, ok := r.Get("missing"); ok {
		t.Fatal("unknown id should not resolve")
	}
}

func TestRegistryReplacesSameID(t *testing.T) {
	r := NewRegistry()
	r.Register(&staticAdapter{info: entity.ProtocolInfo{ID: "wallet", Name: "old"}})
	r.Register(&staticAdapter{info: entity.ProtocolInfo{ID: "wallet", Name: "new"}})

	if got := len(r.All()); got != 1 {
		t.Fatalf("got %d adapters, want 1", got)
	}
	adapter, _ := r.Get("wallet")
	if adapter.Info().Name != "new" {
		t.Errorf("replacement did not take effect, got %q", adapter.Info().Name)
	}
}

func TestRegistryForChain(t *testing.T) {
	r := NewRegistry()
	r.Register(&staticAdapter{
		info:   entity.ProtocolInfo{ID: "wallet"},
		chains: []entity.ChainID{"1", "42161"},
	})
	r.Register(&staticAdapter{
		info:   entity.ProtocolInfo{ID: "solana-wallet"},
		chains: []entity.ChainID{entity.ChainSolana},
	})

	ethereum := r.ForChain("1")
	if len(ethereum) != 1 || ethereum[0].Info().ID != "wallet" {
		t.Errorf("ForChain(1) = %v adapters, want just wallet", len(ethereum))
	}
	if got := r.ForChain("999"); len(got) != 0 {
		t.Errorf("ForChain(999) returned %d adapters, want 0", len(got))
	}
}

func TestRegistryByCategory(t *testing.T) {
	r := NewRegistry()
	r.Register(&staticAdapter{info: entity.ProtocolInfo{ID: "wallet", Category: entity.CategoryWallet}})
	r.Register(&staticAdapter{info: entity.ProtocolInfo{ID: "lido", Category: entity.CategoryStaking}})
	r.Register(&staticAdapter{info: entity.ProtocolInfo{ID: "aave-v3", Category: entity.CategoryLending}})

	got := r.ByCategory(entity.CategoryStaking)
	if len(got) != 1 || got[0].Info().ID != "lido" {
		t.Errorf("ByCategory(staking) = %d adapters, want just lido", len(got))
	}
}

func TestRegistryAllPreservesOrder(t *testing.T) {
	r := NewRegistry()
	for _, id := range []string{"c", "a", "b"} {
		r.Register(&staticAdapter{info: entity.ProtocolInfo{ID: id}})
	}
	all := r.All()
	want := []string{"c", "a", "b"}
	for i, adapter := range all {
		if adapter.Info().ID != want[i] {
			t.Fatalf("All()[%d] = %s, want %s", i, adapter.Info().ID, want[i])
		}
	}
}
