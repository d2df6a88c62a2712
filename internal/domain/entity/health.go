package entity

import "time"

// EndpointHealth tracks failures for one (chain, endpoint-index) pair.
// Created lazily on first access and mutated only by the owning chain
// registry. Zero timestamps mean "never observed".
type EndpointHealth struct {
	FailureCount    uint      `json:"failureCount"`
	LastFailureTime time.Time `json:"lastFailureTime,omitzero"`
	LastSuccessTime time.Time `json:"lastSuccessTime,omitzero"`
}

// RPCStatus is a read-only snapshot of a chain's active endpoint.
type RPCStatus struct {
	CurrentURL string         `json:"currentRpcUrl"`
	Health     EndpointHealth `json:"health"`
}
