package nameresolver

import (
	"context"
	"encoding/hex"
	"math/big"
	"strings"
	"testing"

	"defolio/internal/app/port"
	"defolio/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
)

func TestNamehashVectors(t *testing.T) {
	// Reference vectors from EIP-137.
	tests := []struct {
		name string
		want string
	}{
		{"", "0000000000000000000000000000000000000000000000000000000000000000"},
		{"eth", "93cdeb708b7545dc668eb9280176169d1c33cfd8ed6f04690a0bcc88a93fc4ae"},
		{"foo.eth", "de9b09fd7c5f901e23a3f19fecc54828e9c848539801e86591bd9801b019f84f"},
	}
	for _, tt := range tests {
		node := Namehash(tt.name)
		if got := hex.EncodeToString(node[:]); got != tt.want {
			t.Errorf("Namehash(%q) = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestNamehashIsCaseInsensitive(t *testing.T) {
	if Namehash("Foo.ETH") != Namehash("foo.eth") {
		t.Error("namehash must normalize case")
	}
}

// ensClient answers resolver()/addr() calls with fixed addresses.
type ensClient struct {
	resolver common.Address
	addr     common.Address
}

func (c *ensClient) NativeBalance(context.Context, string) (*big.Int, error) { return nil, nil }

func (c *ensClient) TokenBalance(context.Context, string, string) (*big.Int, error) {
	return nil, nil
}

func (c *ensClient) Balances(context.Context, []entity.BalanceRequest) ([]entity.BalanceResult, error) {
	return nil, nil
}

func (c *ensClient) TokenMetadata(context.Context, string) (entity.TokenMetadata, error) {
	return entity.TokenMetadata{}, nil
}

func (c *ensClient) CallContract(_ context.Context, to string, data []byte) ([]byte, error) {
	selector := hex.EncodeToString(data[:4])
	switch {
	case strings.EqualFold(to, ensRegistryAddress) && selector == "0178b8bf": // resolver(bytes32)
		return common.LeftPadBytes(c.resolver.Bytes(), 32), nil
	case selector == "3b3b57de": // addr(bytes32)
		return common.LeftPadBytes(c.addr.Bytes(), 32), nil
	}
	return common.LeftPadBytes(nil, 32), nil
}

func (c *ensClient) Ping(context.Context) error { return nil }
func (c *ensClient) Endpoint() string           { return "fake" }
func (c *ensClient) Config() entity.ChainConfig { return entity.ChainConfig{ID: "1"} }
func (c *ensClient) Close()                     {}

// directRegistry hands every failover call straight to one client.
type directRegistry struct {
	client port.ChainClient
}

func (r *directRegistry) RegisterChain(entity.ChainConfig) {}

func (r *directRegistry) Config(entity.ChainID) (entity.ChainConfig, bool) {
	return entity.ChainConfig{}, false
}

func (r *directRegistry) ChainIDs() []entity.ChainID { return nil }

func (r *directRegistry) GetClient(entity.ChainID) (port.ChainClient, error) {
	return r.client, nil
}

func (r *directRegistry) RotateRPC(entity.ChainID) {}

func (r *directRegistry) WithFailover(ctx context.Context, _ entity.ChainID, op port.ChainOperation) error {
	return op(ctx, r.client)
}

func (r *directRegistry) WithFailoverOpts(ctx context.Context, id entity.ChainID, op port.ChainOperation, _ port.FailoverOptions) error {
	return r.WithFailover(ctx, id, op)
}

func (r *directRegistry) HealthCheck(context.Context, entity.ChainID) bool { return true }

func (r *directRegistry) HealthCheckAll(context.Context) map[entity.ChainID]bool { return nil }

func (r *directRegistry) RPCStatus() map[entity.ChainID]entity.RPCStatus { return nil }

func TestResolvePassesThroughHexAddresses(t *testing.T) {
	resolver := New(&directRegistry{})
	address := "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"

	got, err := resolver.Resolve(context.Background(), address)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != address {
		t.Errorf("got %s, want passthrough", got)
	}
}

func TestResolveENSName(t *testing.T) {
	want := common.HexToAddress("0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045")
	registry := &directRegistry{client: &ensClient{
		resolver: common.HexToAddress("0x4976fb03C32e5B8cfe2b6cCB31c09Ba78EBaBa41"),
		addr:     want,
	}}

	got, err := New(registry).Resolve(context.Background(), "vitalik.eth")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != want.Hex() {
		t.Errorf("got %s, want %s", got, want.Hex())
	}
}

func TestResolveNameWithoutResolverFails(t *testing.T) {
	registry := &directRegistry{client: &ensClient{}}
	if _, err := New(registry).Resolve(context.Background(), "unclaimed.eth"); err == nil {
		t.Fatal("expected error for name without resolver")
	}
}

func TestResolveRejectsGarbage(t *testing.T) {
	if _, err := New(&directRegistry{}).Resolve(context.Background(), "not-an-address"); err == nil {
		t.Fatal("expected error for input that is neither address nor name")
	}
}
