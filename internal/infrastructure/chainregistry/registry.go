package chainregistry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"defolio/internal/app/port"
	"defolio/internal/domain/entity"
	"defolio/internal/pkg/metrics"

	"golang.org/x/sync/errgroup"
)

const (
	defaultMaxRetries = 3
	rotationThreshold = 3
	failureWindow     = 60 * time.Second
	baseBackoff       = 1 * time.Second
	maxBackoff        = 10 * time.Second
)

// Dialer builds a connected client for one chain against one RPC URL.
type Dialer func(cfg entity.ChainConfig, rpcURL string) (port.ChainClient, error)

type endpointKey struct {
	chain entity.ChainID
	index int
}

// Registry implements port.ChainRegistry. It owns the per-chain client cache,
// the current RPC index, and per-endpoint health counters; all of them are
// guarded by one mutex so index advance and cache eviction are atomic.
type Registry struct {
	mu       sync.Mutex
	configs  map[entity.ChainID]entity.ChainConfig
	clients  map[entity.ChainID]port.ChainClient
	rpcIndex map[entity.ChainID]int
	health   map[endpointKey]*entity.EndpointHealth

	dial   Dialer
	logger port.Logger

	// Injected for tests.
	now     func() time.Time
	backoff func(attempt int) time.Duration
}

// New creates an empty chain registry.
func New(dial Dialer, logger port.Logger) *Registry {
	return &Registry{
		configs:  make(map[entity.ChainID]entity.ChainConfig),
		clients:  make(map[entity.ChainID]port.ChainClient),
		rpcIndex: make(map[entity.ChainID]int),
		health:   make(map[endpointKey]*entity.EndpointHealth),
		dial:     dial,
		logger:   logger,
		now:      time.Now,
		backoff:  backoffDelay,
	}
}

// backoffDelay is the wait before retry attempt n (0-based): exponential from
// 1s, capped at 10s, with +/-30% jitter.
func backoffDelay(attempt int) time.Duration {
	d := baseBackoff << uint(attempt)
	if d > maxBackoff || d <= 0 {
		d = maxBackoff
	}
	jitter := 0.7 + rand.Float64()*0.6
	return time.Duration(float64(d) * jitter)
}

// RegisterChain inserts or overwrites the chain's config, resets its RPC
// index to 0 and drops any cached client and stale health records.
func (r *Registry) RegisterChain(cfg entity.ChainConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.configs[cfg.ID] = cfg
	r.rpcIndex[cfg.ID] = 0
	if client, ok := r.clients[cfg.ID]; ok {
		client.Close()
		delete(r.clients, cfg.ID)
	}
	for key := range r.health {
		if key.chain == cfg.ID {
			delete(r.health, key)
		}
	}
	r.logger.Debug("Chain registered", "chain", cfg.ID, "name", cfg.Name, "endpoints", len(cfg.RPCURLs))
}

// Config returns the registered config for a chain id.
func (r *Registry) Config(chainID entity.ChainID) (entity.ChainConfig, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cfg, ok := r.configs[chainID]
	return cfg, ok
}

// ChainIDs lists every registered chain id in stable order.
func (r *Registry) ChainIDs() []entity.ChainID {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]entity.ChainID, 0, len(r.configs))
	for id := range r.configs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// GetClient returns the cached client for the chain, dialing the endpoint at
// the current RPC index if no client is cached.
func (r *Registry) GetClient(chainID entity.ChainID) (port.ChainClient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cfg, ok := r.configs[chainID]
	if !ok {
		return nil, &entity.UnregisteredChainError{ChainID: chainID}
	}
	if client, ok := r.clients[chainID]; ok {
		return client, nil
	}

	url := cfg.RPCURLs[r.rpcIndex[chainID]]
	client, err := r.dial(cfg, url)
	if err != nil {
		return nil, fmt.Errorf("dial %s for chain %s: %w", url, chainID, err)
	}
	r.clients[chainID] = client
	r.logger.Info("Chain client created", "chain", chainID, "endpoint", url)
	return client, nil
}

// RotateRPC advances the chain's RPC index by one, wrapping past the last
// endpoint, and evicts the cached client. No-op for unknown chain ids.
func (r *Registry) RotateRPC(chainID entity.ChainID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cfg, ok := r.configs[chainID]
	if !ok {
		return
	}
	r.rotateLocked(chainID, cfg)
}

func (r *Registry) rotateLocked(chainID entity.ChainID, cfg entity.ChainConfig) {
	old := r.rpcIndex[chainID]
	next := (old + 1) % len(cfg.RPCURLs)
	r.rpcIndex[chainID] = next
	if client, ok := r.clients[chainID]; ok {
		client.Close()
		delete(r.clients, chainID)
	}
	metrics.RPCRotations.WithLabelValues(string(chainID)).Inc()
	r.logger.Warn("Rotated RPC endpoint", "chain", chainID,
		"from", cfg.RPCURLs[old], "to", cfg.RPCURLs[next])
}

// WithFailover runs op with the default retry budget.
func (r *Registry) WithFailover(ctx context.Context, chainID entity.ChainID, op port.ChainOperation) error {
	return r.WithFailoverOpts(ctx, chainID, op, port.FailoverOptions{})
}

// WithFailoverOpts executes op against the chain's current client. Failures
// are recorded against the active endpoint; rotation-worthy errors that push
// an endpoint past the failure threshold rotate to the next endpoint as a
// side effect, so later attempts (and later calls) dial a fresh URL. The
// operation is retried with exponential backoff until the budget runs out;
// the last error propagates.
func (r *Registry) WithFailoverOpts(ctx context.Context, chainID entity.ChainID, op port.ChainOperation, opts port.FailoverOptions) error {
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(r.backoff(attempt - 1)):
			}
		}

		client, err := r.GetClient(chainID)
		if err != nil {
			var unregistered *entity.UnregisteredChainError
			if errors.As(err, &unregistered) {
				return err
			}
			// Dial failures count against the endpoint like any other failure.
			r.recordFailure(chainID, err)
			lastErr = err
			r.logger.Warn("Chain client unavailable", "chain", chainID, "attempt", attempt, "error", err)
			continue
		}

		if err := op(ctx, client); err != nil {
			r.recordFailure(chainID, err)
			lastErr = err
			r.logger.Warn("Chain operation failed", "chain", chainID, "attempt", attempt, "error", err)
			continue
		}

		r.recordSuccess(chainID)
		return nil
	}
	return lastErr
}

// HealthCheck probes the chain's current endpoint, recording the outcome the
// same way WithFailover does.
func (r *Registry) HealthCheck(ctx context.Context, chainID entity.ChainID) bool {
	client, err := r.GetClient(chainID)
	if err != nil {
		var unregistered *entity.UnregisteredChainError
		if !errors.As(err, &unregistered) {
			r.recordFailure(chainID, err)
		}
		return false
	}
	if err := client.Ping(ctx); err != nil {
		r.recordFailure(chainID, err)
		return false
	}
	r.recordSuccess(chainID)
	return true
}

// HealthCheckAll probes every registered chain concurrently. One chain's
// probe failure never blocks or fails another's.
func (r *Registry) HealthCheckAll(ctx context.Context) map[entity.ChainID]bool {
	ids := r.ChainIDs()
	results := make(map[entity.ChainID]bool, len(ids))
	var mu sync.Mutex

	var g errgroup.Group
	for _, id := range ids {
		g.Go(func() error {
			ok := r.HealthCheck(ctx, id)
			mu.Lock()
			results[id] = ok
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// RPCStatus snapshots the current endpoint URL and health per chain.
// Read-only, no side effects.
func (r *Registry) RPCStatus() map[entity.ChainID]entity.RPCStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	status := make(map[entity.ChainID]entity.RPCStatus, len(r.configs))
	for id, cfg := range r.configs {
		idx := r.rpcIndex[id]
		snapshot := entity.RPCStatus{CurrentURL: cfg.RPCURLs[idx]}
		if h, ok := r.health[endpointKey{chain: id, index: idx}]; ok {
			snapshot.Health = *h
		}
		status[id] = snapshot
	}
	return status
}

// recordSuccess resets the active endpoint's failure counter and stamps the
// success time.
func (r *Registry) recordSuccess(chainID entity.ChainID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.configs[chainID]; !ok {
		return
	}
	h := r.healthLocked(chainID, r.rpcIndex[chainID])
	h.FailureCount = 0
	h.LastSuccessTime = r.now()
}

// recordFailure bumps the active endpoint's failure counter (resetting to 1
// when the previous failure is older than the sliding window) and rotates
// when the endpoint crossed the threshold with a rotation-worthy error. The
// failure that trips the rotation still propagates; rotation only helps
// subsequent attempts.
func (r *Registry) recordFailure(chainID entity.ChainID, cause error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cfg, ok := r.configs[chainID]
	if !ok {
		return
	}
	idx := r.rpcIndex[chainID]
	h := r.healthLocked(chainID, idx)

	now := r.now()
	if !h.LastFailureTime.IsZero() && now.Sub(h.LastFailureTime) > failureWindow {
		h.FailureCount = 1
	} else {
		h.FailureCount++
	}
	h.LastFailureTime = now
	metrics.RPCFailures.WithLabelValues(string(chainID), cfg.RPCURLs[idx]).Inc()

	if h.FailureCount >= rotationThreshold && IsRotationWorthy(cause) && len(cfg.RPCURLs) > 1 {
		r.rotateLocked(chainID, cfg)
	}
}

func (r *Registry) healthLocked(chainID entity.ChainID, index int) *entity.EndpointHealth {
	key := endpointKey{chain: chainID, index: index}
	h, ok := r.health[key]
	if !ok {
		h = &entity.EndpointHealth{}
		r.health[key] = h
	}
	return h
}
