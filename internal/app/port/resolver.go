package port

import "context"

// NameResolver turns a human-readable name (ENS) into an address. Plain
// addresses pass through unchanged.
type NameResolver interface {
	Resolve(ctx context.Context, nameOrAddress string) (string, error)
}
