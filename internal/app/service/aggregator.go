package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"defolio/internal/app/port"
	"defolio/internal/domain/entity"
	"defolio/internal/pkg/metrics"

	"golang.org/x/sync/errgroup"
)

// AdapterCatalog is the slice of the adapter registry the aggregator needs.
type AdapterCatalog interface {
	All() []port.ProtocolAdapter
	ForChain(chainID entity.ChainID) []port.ProtocolAdapter
}

// AggregatorService implements port.PortfolioAggregator. It fans out over
// every requested chain and every adapter supporting that chain, executes
// each fetch under the chain registry's failover loop, and merges whatever
// survives into a single portfolio. Failed (chain, adapter) combinations
// become entries in Portfolio.Errors, never a failed request.
type AggregatorService struct {
	chains              port.ChainRegistry
	adapters            AdapterCatalog
	oracle              port.PriceOracle
	history             port.HistoryStore
	logger              port.Logger
	maxConcurrentChains int
	failover            port.FailoverOptions
}

// NewAggregatorService wires the aggregation pipeline. oracle and history
// may be nil, disabling enrichment and snapshots respectively. failover
// carries the retry budget applied to every chain call; the zero value
// means the registry default.
func NewAggregatorService(
	chains port.ChainRegistry,
	adapters AdapterCatalog,
	oracle port.PriceOracle,
	history port.HistoryStore,
	logger port.Logger,
	maxConcurrentChains int,
	failover port.FailoverOptions,
) *AggregatorService {
	if maxConcurrentChains <= 0 {
		maxConcurrentChains = 4
	}
	return &AggregatorService{
		chains:              chains,
		adapters:            adapters,
		oracle:              oracle,
		history:             history,
		logger:              logger,
		maxConcurrentChains: maxConcurrentChains,
		failover:            failover,
	}
}

// BuildPortfolio queries every applicable adapter on every applicable chain.
func (s *AggregatorService) BuildPortfolio(ctx context.Context, address string, chainIDs []entity.ChainID) (*entity.Portfolio, error) {
	if address == "" {
		return nil, fmt.Errorf("address must not be empty")
	}
	started := time.Now()
	defer func() {
		metrics.AggregationDuration.Observe(time.Since(started).Seconds())
	}()

	portfolio := &entity.Portfolio{Address: address}
	targets, skipped := s.resolveChains(chainIDs)
	portfolio.Errors = append(portfolio.Errors, skipped...)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrentChains)

	for _, chainID := range targets {
		g.Go(func() error {
			positions, chainErrors := s.collectChain(gctx, address, chainID)
			mu.Lock()
			portfolio.Positions = append(portfolio.Positions, positions...)
			portfolio.Errors = append(portfolio.Errors, chainErrors...)
			mu.Unlock()
			return nil
		})
	}
	// Workers never return errors; failures are collected per chain.
	_ = g.Wait()

	portfolio.Recompute()
	if s.oracle != nil {
		s.oracle.EnrichPositions(ctx, portfolio.Positions)
		portfolio.Recompute()
	}
	if s.history != nil {
		s.history.Record(portfolio)
	}

	s.logger.Info("portfolio aggregated",
		"address", address,
		"chains", len(targets),
		"positions", len(portfolio.Positions),
		"errors", len(portfolio.Errors),
		"duration", time.Since(started).String(),
	)
	return portfolio, nil
}

// resolveChains maps the requested chain filter onto the registered set.
// An empty filter selects every registered chain; unknown ids are reported
// as aggregation errors rather than rejected.
func (s *AggregatorService) resolveChains(chainIDs []entity.ChainID) ([]entity.ChainID, []entity.AggregationError) {
	if len(chainIDs) == 0 {
		return s.chains.ChainIDs(), nil
	}
	var targets []entity.ChainID
	var skipped []entity.AggregationError
	for _, chainID := range chainIDs {
		if _, ok := s.chains.Config(chainID); !ok {
			skipped = append(skipped, entity.AggregationError{
				ChainID: chainID,
				Message: fmt.Sprintf("chain %q is not registered", chainID),
			})
			continue
		}
		targets = append(targets, chainID)
	}
	return targets, skipped
}

// collectChain runs every adapter supporting the chain concurrently and
// gathers their positions. Each adapter failure is isolated.
func (s *AggregatorService) collectChain(ctx context.Context, address string, chainID entity.ChainID) ([]entity.Position, []entity.AggregationError) {
	adapters := s.adapters.ForChain(chainID)
	if len(adapters) == 0 {
		return nil, nil
	}

	var (
		mu        sync.Mutex
		positions []entity.Position
		errs      []entity.AggregationError
		wg        sync.WaitGroup
	)
	for _, adapter := range adapters {
		wg.Add(1)
		go func(adapter port.ProtocolAdapter) {
			defer wg.Done()
			protocolID := adapter.Info().ID

			var fetched []entity.Position
			err := s.chains.WithFailoverOpts(ctx, chainID, func(ctx context.Context, client port.ChainClient) error {
				var opErr error
				fetched, opErr = adapter.GetPositions(ctx, client, address, chainID)
				return opErr
			}, s.failover)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Warn("adapter failed", "chain", chainID, "protocol", protocolID, "error", err)
				metrics.AdapterFailures.WithLabelValues(string(chainID), protocolID).Inc()
				errs = append(errs, entity.AggregationError{
					ChainID:  chainID,
					Protocol: protocolID,
					Message:  err.Error(),
				})
				return
			}
			positions = append(positions, fetched...)
		}(adapter)
	}
	wg.Wait()
	return positions, errs
}

var _ port.PortfolioAggregator = (*AggregatorService)(nil)
