package service

import (
	"context"
	"sort"
	"sync"

	"defolio/internal/app/port"
	"defolio/internal/domain/entity"

	"golang.org/x/sync/errgroup"
)

// YieldService implements port.YieldScanner: it fans out over chains and
// adapters the same way the aggregator does, but collects offered rates
// instead of held positions.
type YieldService struct {
	chains              port.ChainRegistry
	adapters            AdapterCatalog
	logger              port.Logger
	maxConcurrentChains int
	failover            port.FailoverOptions
}

// NewYieldService wires the yield scanning pipeline. failover carries the
// retry budget applied to every chain call.
func NewYieldService(chains port.ChainRegistry, adapters AdapterCatalog, logger port.Logger, maxConcurrentChains int, failover port.FailoverOptions) *YieldService {
	if maxConcurrentChains <= 0 {
		maxConcurrentChains = 4
	}
	return &YieldService{
		chains:              chains,
		adapters:            adapters,
		logger:              logger,
		maxConcurrentChains: maxConcurrentChains,
		failover:            failover,
	}
}

// CollectYieldRates gathers the rates currently offered across the given
// chains (all registered chains when empty), filters by minAPY, and returns
// at most limit entries sorted by APY descending. Chain and adapter
// failures are logged and skipped.
func (s *YieldService) CollectYieldRates(ctx context.Context, chainIDs []entity.ChainID, minAPY float64, limit int) []entity.YieldRate {
	if len(chainIDs) == 0 {
		chainIDs = s.chains.ChainIDs()
	}

	var (
		mu    sync.Mutex
		rates []entity.YieldRate
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrentChains)

	for _, chainID := range chainIDs {
		if _, ok := s.chains.Config(chainID); !ok {
			continue
		}
		g.Go(func() error {
			for _, adapter := range s.adapters.ForChain(chainID) {
				var fetched []entity.YieldRate
				err := s.chains.WithFailoverOpts(gctx, chainID, func(ctx context.Context, client port.ChainClient) error {
					var opErr error
					fetched, opErr = adapter.GetYieldRates(ctx, client, chainID)
					return opErr
				}, s.failover)
				if err != nil {
					s.logger.Warn("yield scan failed", "chain", chainID, "protocol", adapter.Info().ID, "error", err)
					continue
				}
				mu.Lock()
				for _, rate := range fetched {
					if rate.APY >= minAPY {
						rates = append(rates, rate)
					}
				}
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(rates, func(i, j int) bool { return rates[i].APY > rates[j].APY })
	if limit > 0 && len(rates) > limit {
		rates = rates[:limit]
	}
	return rates
}

var _ port.YieldScanner = (*YieldService)(nil)
