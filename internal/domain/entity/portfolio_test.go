package entity

import (
	"math/rand"
	"testing"
)

func testPositions() []Position {
	return []Position{
		{Protocol: ProtocolInfo{ID: "wallet"}, ChainID: "1", Type: PositionWallet, ValueUSD: 100},
		{Protocol: ProtocolInfo{ID: "wallet"}, ChainID: "42161", Type: PositionWallet, ValueUSD: 40},
		{Protocol: ProtocolInfo{ID: "aave-v3"}, ChainID: "1", Type: PositionSupply, ValueUSD: 250},
		{Protocol: ProtocolInfo{ID: "aave-v3"}, ChainID: "1", Type: PositionBorrow, ValueUSD: 60},
		{Protocol: ProtocolInfo{ID: "lido"}, ChainID: "1", Type: PositionStake, ValueUSD: 500},
	}
}

func TestRecomputeTotals(t *testing.T) {
	p := &Portfolio{Address: "0xwallet", Positions: testPositions()}
	p.Recompute()

	if p.TotalValueUSD != 950 {
		t.Errorf("total = %v, want 950", p.TotalValueUSD)
	}
	if got := p.ByChain["1"].TotalValueUSD; got != 910 {
		t.Errorf("chain 1 subtotal = %v, want 910", got)
	}
	if got := p.ByChain["42161"].TotalValueUSD; got != 40 {
		t.Errorf("chain 42161 subtotal = %v, want 40", got)
	}
	if got := p.ByProtocol["aave-v3"].TotalValueUSD; got != 310 {
		t.Errorf("aave-v3 subtotal = %v, want 310", got)
	}
	if got := p.ByType[PositionWallet].TotalValueUSD; got != 140 {
		t.Errorf("wallet type subtotal = %v, want 140", got)
	}
	if got := len(p.ByChain["1"].Positions); got != 4 {
		t.Errorf("chain 1 holds %d positions, want 4", got)
	}
}

func TestRecomputeIsOrderIndependent(t *testing.T) {
	base := &Portfolio{Positions: testPositions()}
	base.Recompute()

	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 10; trial++ {
		shuffled := &Portfolio{Positions: testPositions()}
		rng.Shuffle(len(shuffled.Positions), func(i, j int) {
			shuffled.Positions[i], shuffled.Positions[j] = shuffled.Positions[j], shuffled.Positions[i]
		})
		shuffled.Recompute()

		if shuffled.TotalValueUSD != base.TotalValueUSD {
			t.Fatalf("total varies with order: %v vs %v", shuffled.TotalValueUSD, base.TotalValueUSD)
		}
		for chainID, group := range base.ByChain {
			if shuffled.ByChain[chainID].TotalValueUSD != group.TotalValueUSD {
				t.Fatalf("chain %s subtotal varies with order", chainID)
			}
		}
		for protocol, group := range base.ByProtocol {
			if shuffled.ByProtocol[protocol].TotalValueUSD != group.TotalValueUSD {
				t.Fatalf("protocol %s subtotal varies with order", protocol)
			}
		}
	}
}

func TestRecomputeRefreshesStaleGroups(t *testing.T) {
	p := &Portfolio{Positions: testPositions()}
	p.Recompute()

	// Simulate price enrichment mutating position values.
	for i := range p.Positions {
		p.Positions[i].ValueUSD *= 2
	}
	p.Recompute()

	if p.TotalValueUSD != 1900 {
		t.Errorf("total after re-enrichment = %v, want 1900", p.TotalValueUSD)
	}
	if got := p.ByProtocol["lido"].TotalValueUSD; got != 1000 {
		t.Errorf("lido subtotal = %v, want 1000", got)
	}
}

func TestRecomputeEmptyPortfolio(t *testing.T) {
	p := &Portfolio{Address: "0xwallet"}
	p.Recompute()

	if p.TotalValueUSD != 0 {
		t.Errorf("total = %v, want 0", p.TotalValueUSD)
	}
	if p.ByChain == nil || p.ByProtocol == nil || p.ByType == nil {
		t.Error("groupings must be initialized even when empty")
	}
}
