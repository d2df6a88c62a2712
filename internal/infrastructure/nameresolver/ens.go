// Package nameresolver resolves ENS names to addresses.
package nameresolver

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"defolio/internal/app/port"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ensRegistryAddress is the ENS registry on Ethereum mainnet.
const ensRegistryAddress = "0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e"

const ensABI = `[
	{"inputs":[{"name":"node","type":"bytes32"}],"name":"resolver","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"name":"node","type":"bytes32"}],"name":"addr","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"}
]`

var (
	ensABIOnce   sync.Once
	parsedENSABI abi.ABI
)

func ensParsedABI() abi.ABI {
	ensABIOnce.Do(func() {
		var err error
		parsedENSABI, err = abi.JSON(strings.NewReader(ensABI))
		if err != nil {
			panic(fmt.Sprintf("failed to parse ENS ABI: %v", err))
		}
	})
	return parsedENSABI
}

// ENSResolver implements port.NameResolver for .eth names. Lookups run on
// Ethereum mainnet through the chain registry, so they inherit its endpoint
// failover. Plain hex addresses pass through untouched.
type ENSResolver struct {
	chains port.ChainRegistry
}

// New builds the resolver.
func New(chains port.ChainRegistry) *ENSResolver {
	return &ENSResolver{chains: chains}
}

// Resolve turns an ENS name into a hex address. Inputs that are already
// hex addresses are returned unchanged.
func (r *ENSResolver) Resolve(ctx context.Context, nameOrAddress string) (string, error) {
	trimmed := strings.TrimSpace(nameOrAddress)
	if common.IsHexAddress(trimmed) {
		return trimmed, nil
	}
	if !strings.Contains(trimmed, ".") {
		return "", fmt.Errorf("%q is neither a hex address nor an ENS name", nameOrAddress)
	}

	node := Namehash(trimmed)
	var resolved common.Address
	err := r.chains.WithFailover(ctx, "1", func(ctx context.Context, client port.ChainClient) error {
		resolverAddress, err := r.callForAddress(ctx, client, ensRegistryAddress, "resolver", node)
		if err != nil {
			return err
		}
		if resolverAddress == (common.Address{}) {
			return fmt.Errorf("no resolver configured for %q", trimmed)
		}
		resolved, err = r.callForAddress(ctx, client, resolverAddress.Hex(), "addr", node)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", trimmed, err)
	}
	if resolved == (common.Address{}) {
		return "", fmt.Errorf("%q does not resolve to an address", trimmed)
	}
	return resolved.Hex(), nil
}

func (r *ENSResolver) callForAddress(ctx context.Context, client port.ChainClient, to, method string, node [32]byte) (common.Address, error) {
	input, err := ensParsedABI().Pack(method, node)
	if err != nil {
		return common.Address{}, fmt.Errorf("pack %s: %w", method, err)
	}
	raw, err := client.CallContract(ctx, to, input)
	if err != nil {
		return common.Address{}, fmt.Errorf("%s call: %w", method, err)
	}
	out, err := ensParsedABI().Unpack(method, raw)
	if err != nil || len(out) == 0 {
		return common.Address{}, fmt.Errorf("decode %s result: %w", method, err)
	}
	address, ok := out[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("%s returned %T, want address", method, out[0])
	}
	return address, nil
}

// Namehash implements the ENS name hashing algorithm.
func Namehash(name string) [32]byte {
	var node [32]byte
	if name == "" {
		return node
	}
	labels := strings.Split(strings.ToLower(name), ".")
	for i := len(labels) - 1; i >= 0; i-- {
		labelHash := crypto.Keccak256([]byte(labels[i]))
		copy(node[:], crypto.Keccak256(node[:], labelHash))
	}
	return node
}

var _ port.NameResolver = (*ENSResolver)(nil)
