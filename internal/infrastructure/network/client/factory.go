package client

import (
	"fmt"
	"time"

	"defolio/internal/app/port"
	"defolio/internal/domain/entity"
)

const (
	defaultConnectTimeout = 10 * time.Second
	defaultCallTimeout    = 15 * time.Second
)

// NewDialer returns a dial function for the chain registry that picks the
// right client implementation by network kind. Zero timeouts fall back to
// the package defaults.
func NewDialer(connectTimeout, callTimeout time.Duration) func(entity.ChainConfig, string) (port.ChainClient, error) {
	if connectTimeout <= 0 {
		connectTimeout = defaultConnectTimeout
	}
	if callTimeout <= 0 {
		callTimeout = defaultCallTimeout
	}
	return func(cfg entity.ChainConfig, rpcURL string) (port.ChainClient, error) {
		switch cfg.Kind {
		case entity.KindEVM:
			return NewEVMClient(cfg, rpcURL, connectTimeout, callTimeout)
		case entity.KindSolana:
			return NewSolanaClient(cfg, rpcURL, callTimeout)
		default:
			return nil, fmt.Errorf("no client implementation for network kind %q (chain %s)", cfg.Kind, cfg.ID)
		}
	}
}
