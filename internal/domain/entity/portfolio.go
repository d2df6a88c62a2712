package entity

// PositionGroup is one bucket in a portfolio breakdown with its own subtotal.
type PositionGroup struct {
	Positions     []Position `json:"positions"`
	TotalValueUSD float64    `json:"totalValueUSD"`
}

// AggregationError records one failed (chain, adapter) combination. Failed
// combinations contribute zero positions; they never abort aggregation.
type AggregationError struct {
	ChainID  ChainID `json:"chainId"`
	Protocol string  `json:"protocol"`
	Message  string  `json:"message"`
}

// Portfolio is the aggregation result for one address.
type Portfolio struct {
	Address       string                          `json:"address"`
	TotalValueUSD float64                         `json:"totalValueUSD"`
	Positions     []Position                      `json:"positions"`
	ByChain       map[ChainID]*PositionGroup      `json:"byChain"`
	ByProtocol    map[string]*PositionGroup       `json:"byProtocol"`
	ByType        map[PositionType]*PositionGroup `json:"byType"`
	Errors        []AggregationError              `json:"errors,omitempty"`
}

// Recompute rebuilds the grand total and every grouping from the flat
// position list. It must be called again after any pass that mutates
// position values (price enrichment), otherwise subtotals go stale.
// The fold is order-independent, so results do not depend on the order in
// which adapter calls completed.
func (p *Portfolio) Recompute() {
	p.TotalValueUSD = 0
	p.ByChain = make(map[ChainID]*PositionGroup)
	p.ByProtocol = make(map[string]*PositionGroup)
	p.ByType = make(map[PositionType]*PositionGroup)

	for _, pos := range p.Positions {
		p.TotalValueUSD += pos.ValueUSD

		chainGroup := p.ByChain[pos.ChainID]
		if chainGroup == nil {
			chainGroup = &PositionGroup{}
			p.ByChain[pos.ChainID] = chainGroup
		}
		chainGroup.Positions = append(chainGroup.Positions, pos)
		chainGroup.TotalValueUSD += pos.ValueUSD

		protoGroup := p.ByProtocol[pos.Protocol.ID]
		if protoGroup == nil {
			protoGroup = &PositionGroup{}
			p.ByProtocol[pos.Protocol.ID] = protoGroup
		}
		protoGroup.Positions = append(protoGroup.Positions, pos)
		protoGroup.TotalValueUSD += pos.ValueUSD

		typeGroup := p.ByType[pos.Type]
		if typeGroup == nil {
			typeGroup = &PositionGroup{}
			p.ByType[pos.Type] = typeGroup
		}
		typeGroup.Positions = append(typeGroup.Positions, pos)
		typeGroup.TotalValueUSD += pos.ValueUSD
	}
}
