package port

import (
	"time"

	"defolio/internal/domain/entity"
)

// PortfolioSnapshot is one point-in-time record of an address's portfolio.
type PortfolioSnapshot struct {
	Address       string    `json:"address"`
	TakenAt       time.Time `json:"takenAt"`
	TotalValueUSD float64   `json:"totalValueUSD"`
	PositionCount int       `json:"positionCount"`
}

// HistoryStore keeps recent portfolio snapshots per address.
type HistoryStore interface {
	Record(portfolio *entity.Portfolio)
	History(address string) []PortfolioSnapshot
}
