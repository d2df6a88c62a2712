package chainregistry

import (
	"errors"
	"fmt"
	"testing"
)

type timeoutError struct{}

func (timeoutError) Error() string { return "operation expired" }
func (timeoutError) Timeout() bool { return true }

func (timeoutError) Temporary() bool { return true }

func TestIsRotationWorthy(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limit", errors.New("provider rate limit exceeded"), true},
		{"too many requests", errors.New("HTTP 429 Too Many Requests"), true},
		{"throttled", errors.New("request was throttled by upstream"), true},
		{"connection refused", errors.New("dial tcp 1.2.3.4:443: connection refused"), true},
		{"dns", errors.New("lookup rpc.example.org: no such host"), true},
		{"timeout text", errors.New("request timed out after 30s"), true},
		{"socket hang up", errors.New("socket hang up"), true},
		{"fetch failed", errors.New("fetch failed"), true},
		{"net.Error timeout", timeoutError{}, true},
		{"wrapped net.Error", fmt.Errorf("probe: %w", timeoutError{}), true},
		{"revert", errors.New("execution reverted: E42"), false},
		{"malformed response", errors.New("invalid character '<' looking for beginning of value"), false},
		{"generic", errors.New("unexpected nil header"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsRotationWorthy(tc.err); got != tc.want {
				t.Fatalf("IsRotationWorthy(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
