package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"defolio/internal/domain/entity"

	jsoniter "github.com/json-iterator/go"
)

func newSolanaTestServer(t *testing.T, handler func(method string, params []interface{}) (string, *solanaRPCError)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req solanaRPCRequest
		if err := jsoniter.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		result, rpcErr := handler(req.Method, req.Params)
		w.Header().Set("Content-Type", "application/json")
		if rpcErr != nil {
			errJSON, _ := jsoniter.MarshalToString(rpcErr)
			w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":` + errJSON + `}`))
			return
		}
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":` + result + `}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newSolanaTestClient(t *testing.T, srv *httptest.Server) *SolanaClient {
	t.Helper()
	cfg := entity.ChainConfig{ID: entity.ChainSolana, Kind: entity.KindSolana}
	c, err := NewSolanaClient(cfg, srv.URL, 5*time.Second)
	if err != nil {
		t.Fatalf("NewSolanaClient: %v", err)
	}
	return c
}

func TestSolanaNativeBalance(t *testing.T) {
	srv := newSolanaTestServer(t, func(method string, params []interface{}) (string, *solanaRPCError) {
		if method != "getBalance" {
			t.Errorf("method = %q, want getBalance", method)
		}
		return `{"context":{"slot":1},"value":2039280}`, nil
	})
	c := newSolanaTestClient(t, srv)

	balance, err := c.NativeBalance(context.Background(), "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin")
	if err != nil {
		t.Fatalf("NativeBalance: %v", err)
	}
	if balance.Int64() != 2039280 {
		t.Errorf("balance = %s, want 2039280", balance)
	}
}

func TestSolanaTokenBalanceSumsAccounts(t *testing.T) {
	srv := newSolanaTestServer(t, func(method string, params []interface{}) (string, *solanaRPCError) {
		if method != "getTokenAccountsByOwner" {
			t.Errorf("method = %q, want getTokenAccountsByOwner", method)
		}
		return `{"value":[
			{"account":{"data":{"parsed":{"info":{"tokenAmount":{"amount":"1000","decimals":6}}}}}},
			{"account":{"data":{"parsed":{"info":{"tokenAmount":{"amount":"250","decimals":6}}}}}}
		]}`, nil
	})
	c := newSolanaTestClient(t, srv)

	balance, err := c.TokenBalance(context.Background(), "mint", "owner")
	if err != nil {
		t.Fatalf("TokenBalance: %v", err)
	}
	if balance.Int64() != 1250 {
		t.Errorf("balance = %s, want 1250", balance)
	}
}

func TestSolanaRPCErrorPropagates(t *testing.T) {
	srv := newSolanaTestServer(t, func(method string, params []interface{}) (string, *solanaRPCError) {
		return "", &solanaRPCError{Code: -32005, Message: "rate limit exceeded"}
	})
	c := newSolanaTestClient(t, srv)

	if _, err := c.NativeBalance(context.Background(), "wallet"); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestSolanaPing(t *testing.T) {
	srv := newSolanaTestServer(t, func(method string, params []interface{}) (string, *solanaRPCError) {
		if method != "getHealth" {
			t.Errorf("method = %q, want getHealth", method)
		}
		return `"ok"`, nil
	})
	c := newSolanaTestClient(t, srv)

	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}
