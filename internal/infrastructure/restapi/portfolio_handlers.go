package restapi

import (
	"net/http"
	"strconv"
	"strings"

	"defolio/internal/app/port"
	"defolio/internal/domain/entity"

	"github.com/gin-gonic/gin"
)

// PortfolioHandler serves the portfolio, history and yield endpoints.
type PortfolioHandler struct {
	aggregator port.PortfolioAggregator
	yields     port.YieldScanner
	resolver   port.NameResolver
	history    port.HistoryStore
	chains     port.ChainRegistry
	logger     port.Logger
}

// NewPortfolioHandler wires the handler's dependencies. resolver and
// history may be nil.
func NewPortfolioHandler(
	aggregator port.PortfolioAggregator,
	yields port.YieldScanner,
	resolver port.NameResolver,
	history port.HistoryStore,
	chains port.ChainRegistry,
	logger port.Logger,
) *PortfolioHandler {
	return &PortfolioHandler{
		aggregator: aggregator,
		yields:     yields,
		resolver:   resolver,
		history:    history,
		chains:     chains,
		logger:     logger,
	}
}

// errorResponse is the uniform error payload.
type errorResponse struct {
	Error string `json:"error"`
}

// parseChainFilter splits a comma-separated chains query parameter.
func parseChainFilter(raw string) []entity.ChainID {
	if raw == "" {
		return nil
	}
	var out []entity.ChainID
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, entity.ChainID(part))
		}
	}
	return out
}

// resolveAddress maps an ENS name or hex address to a hex address.
func (h *PortfolioHandler) resolveAddress(c *gin.Context) (string, bool) {
	raw := c.Param("address")
	if h.resolver == nil {
		return raw, true
	}
	address, err := h.resolver.Resolve(c.Request.Context(), raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return "", false
	}
	return address, true
}

// GetPortfolio handles GET /api/v1/portfolio/:address?chains=1,42161.
func (h *PortfolioHandler) GetPortfolio(c *gin.Context) {
	address, ok := h.resolveAddress(c)
	if !ok {
		return
	}
	portfolio, err := h.aggregator.BuildPortfolio(c.Request.Context(), address, parseChainFilter(c.Query("chains")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, portfolio)
}

// GetHistory handles GET /api/v1/portfolio/:address/history.
func (h *PortfolioHandler) GetHistory(c *gin.Context) {
	address, ok := h.resolveAddress(c)
	if !ok {
		return
	}
	if h.history == nil {
		c.JSON(http.StatusNotFound, errorResponse{Error: "history is not enabled"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"address":   address,
		"snapshots": h.history.History(address),
	})
}

// GetYields handles GET /api/v1/yields?chains=&minApy=&limit=.
func (h *PortfolioHandler) GetYields(c *gin.Context) {
	minAPY := 0.0
	if raw := c.Query("minApy"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "minApy must be a number"})
			return
		}
		minAPY = parsed
	}
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	rates := h.yields.CollectYieldRates(c.Request.Context(), parseChainFilter(c.Query("chains")), minAPY, limit)
	c.JSON(http.StatusOK, gin.H{"yields": rates})
}

// chainStatus is one entry of the chains listing.
type chainStatus struct {
	entity.ChainConfig
	RPC entity.RPCStatus `json:"rpc"`
}

// GetChains handles GET /api/v1/chains.
func (h *PortfolioHandler) GetChains(c *gin.Context) {
	statuses := h.chains.RPCStatus()
	out := make([]chainStatus, 0, len(statuses))
	for chainID, status := range statuses {
		cfg, ok := h.chains.Config(chainID)
		if !ok {
			continue
		}
		out = append(out, chainStatus{ChainConfig: cfg, RPC: status})
	}
	c.JSON(http.StatusOK, gin.H{"chains": out})
}

// GetHealth handles GET /api/v1/health: it probes every chain and reports
// 503 when none is reachable.
func (h *PortfolioHandler) GetHealth(c *gin.Context) {
	results := h.chains.HealthCheckAll(c.Request.Context())
	healthy := 0
	for _, ok := range results {
		if ok {
			healthy++
		}
	}
	status := http.StatusOK
	if len(results) > 0 && healthy == 0 {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"status": map[bool]string{true: "ok", false: "degraded"}[healthy == len(results)],
		"chains": results,
	})
}
