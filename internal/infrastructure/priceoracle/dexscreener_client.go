// Package priceoracle enriches positions with USD prices from the DEX
// Screener public API.
package priceoracle

import (
	"context"
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	defaultBaseURL = "https://api.dexscreener.com"

	// maxTokensPerRequest is the API's documented cap for /tokens/v1.
	maxTokensPerRequest = 30
)

// PairData is the slice of the DEX Screener pair payload the oracle uses.
type PairData struct {
	ChainID     string    `json:"chainId"`
	DexID       string    `json:"dexId"`
	PairAddress string    `json:"pairAddress"`
	BaseToken   PairToken `json:"baseToken"`
	QuoteToken  PairToken `json:"quoteToken"`
	PriceUsd    string    `json:"priceUsd"`
	Liquidity   *struct {
		Usd float64 `json:"usd"`
	} `json:"liquidity"`
}

// PairToken identifies one side of a trading pair.
type PairToken struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

// PairClient fetches trading pairs for a set of token addresses on one
// DEX Screener chain.
type PairClient interface {
	TokenPairs(ctx context.Context, dexChainID string, tokenAddresses []string) ([]PairData, error)
}

// dexScreenerClient is the fasthttp-backed PairClient.
type dexScreenerClient struct {
	client  *fasthttp.Client
	baseURL string
	timeout time.Duration
	logger  *zap.Logger
}

// NewDEXScreenerClient builds the default PairClient. An empty baseURL
// selects the public API.
func NewDEXScreenerClient(baseURL string, timeout time.Duration, logger *zap.Logger) PairClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &dexScreenerClient{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		logger:  logger.Named("DEXScreenerClient"),
	}
}

func (c *dexScreenerClient) TokenPairs(ctx context.Context, dexChainID string, tokenAddresses []string) ([]PairData, error) {
	if len(tokenAddresses) == 0 {
		return nil, fmt.Errorf("tokenAddresses cannot be empty")
	}
	if len(tokenAddresses) > maxTokensPerRequest {
		return nil, fmt.Errorf("number of token addresses (%d) exceeds max tokens per request (%d)",
			len(tokenAddresses), maxTokensPerRequest)
	}

	requestURL := fmt.Sprintf("%s/tokens/v1/%s/%s", c.baseURL, dexChainID, strings.Join(tokenAddresses, ","))
	c.logger.Debug("Requesting token pairs", zap.String("url", requestURL))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.SetContentTypeBytes([]byte("application/json"))

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if deadline, ok := ctx.Deadline(); ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, fmt.Errorf("failed to execute request to %s: %w", requestURL, err)
		}
	} else {
		if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
			return nil, fmt.Errorf("failed to execute request to %s with default timeout: %w", requestURL, err)
		}
	}

	rawBody := resp.Body()
	if resp.StatusCode() != fasthttp.StatusOK {
		c.logger.Error("DEX Screener API request failed",
			zap.String("url", requestURL),
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("responseBody", rawBody))
		return nil, fmt.Errorf("DEX Screener request to %s failed with status %d", requestURL, resp.StatusCode())
	}

	// The endpoint answers with either a bare array or a {"pairs": [...]}
	// wrapper depending on the route version.
	var wrapper struct {
		Pairs []PairData `json:"pairs"`
	}
	if err := json.Unmarshal(rawBody, &wrapper); err == nil && wrapper.Pairs != nil {
		return wrapper.Pairs, nil
	}
	var pairs []PairData
	if err := json.Unmarshal(rawBody, &pairs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal DEX Screener response from %s: %w", requestURL, err)
	}
	return pairs, nil
}
