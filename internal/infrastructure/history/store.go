// Package history keeps recent portfolio snapshots in memory.
package history

import (
	"strings"
	"sync"
	"time"

	"defolio/internal/app/port"
	"defolio/internal/domain/entity"
)

// defaultMaxSnapshots bounds the per-address log.
const defaultMaxSnapshots = 100

// Store is a bounded in-memory snapshot log per address. Addresses are
// case-insensitive.
type Store struct {
	mu        sync.RWMutex
	snapshots map[string][]port.PortfolioSnapshot
	max       int
	now       func() time.Time
}

// NewStore builds a store keeping at most max snapshots per address; zero
// or negative selects the default.
func NewStore(max int) *Store {
	if max <= 0 {
		max = defaultMaxSnapshots
	}
	return &Store{
		snapshots: make(map[string][]port.PortfolioSnapshot),
		max:       max,
		now:       time.Now,
	}
}

// Record appends a snapshot of the portfolio, evicting the oldest entry
// once the cap is reached.
func (s *Store) Record(portfolio *entity.Portfolio) {
	if portfolio == nil || portfolio.Address == "" {
		return
	}
	key := strings.ToLower(portfolio.Address)
	snapshot := port.PortfolioSnapshot{
		Address:       portfolio.Address,
		TakenAt:       s.now(),
		TotalValueUSD: portfolio.TotalValueUSD,
		PositionCount: len(portfolio.Positions),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	log := append(s.snapshots[key], snapshot)
	if len(log) > s.max {
		log = log[len(log)-s.max:]
	}
	s.snapshots[key] = log
}

// History returns the address's snapshots, oldest first.
func (s *Store) History(address string) []port.PortfolioSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	log := s.snapshots[strings.ToLower(address)]
	out := make([]port.PortfolioSnapshot, len(log))
	copy(out, log)
	return out
}

var _ port.HistoryStore = (*Store)(nil)
