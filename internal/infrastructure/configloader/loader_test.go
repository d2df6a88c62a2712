package configloader

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "server:\n  port: \"9090\"\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("port = %s, want 9090", cfg.Server.Port)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("default level = %s, want info", cfg.Logging.Level)
	}
	if cfg.RPC.MaxRetries != 3 {
		t.Errorf("default max retries = %d, want 3", cfg.RPC.MaxRetries)
	}
	if cfg.Performance.MaxConcurrentChains != 4 {
		t.Errorf("default fan-out = %d, want 4", cfg.Performance.MaxConcurrentChains)
	}
}

func TestLoadParsesChains(t *testing.T) {
	path := writeConfig(t, `
chains:
  - chainId: "1"
    name: Ethereum
    kind: evm
    rpcUrls:
      - https://eth.example.com
    nativeCurrency:
      name: Ether
      symbol: ETH
      decimals: 18
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Chains) != 1 {
		t.Fatalf("got %d chains, want 1", len(cfg.Chains))
	}
	chain := cfg.Chains[0]
	if chain.ID != "1" || chain.Native.Decimals != 18 || len(chain.RPCURLs) != 1 {
		t.Errorf("chain parsed wrong: %+v", chain)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadMalformedYAMLFails(t *testing.T) {
	path := writeConfig(t, "server: [not a map")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestDefaultIsComplete(t *testing.T) {
	cfg := Default()
	if cfg.Server.Port == "" || cfg.PriceOracle.CacheTTLMinutes == 0 || cfg.RPC.CallTimeoutSeconds == 0 {
		t.Errorf("Default() left zero values: %+v", cfg)
	}
}
