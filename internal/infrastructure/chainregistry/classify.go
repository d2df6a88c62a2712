package chainregistry

import (
	"errors"
	"net"
	"strings"
)

// Rotation is only worth it for errors that implicate the endpoint itself:
// rate limiting or connection-level failure. Application errors (malformed
// responses, reverts) are retried in place without rotating.
var (
	rateLimitSignatures = []string{
		"rate limit",
		"too many requests",
		"429",
		"throttle",
	}
	connectionSignatures = []string{
		"connection refused",
		"connection reset",
		"no such host",
		"dns",
		"timeout",
		"timed out",
		"socket hang up",
		"network error",
		"fetch failed",
		"broken pipe",
	}
)

// IsRotationWorthy reports whether an error should count toward switching
// the chain to its next RPC endpoint.
func IsRotationWorthy(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, sig := range rateLimitSignatures {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	for _, sig := range connectionSignatures {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}
