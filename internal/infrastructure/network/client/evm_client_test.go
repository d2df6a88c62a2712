package client

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

func TestUnpackBalance(t *testing.T) {
	initParsedABIs()

	want := big.NewInt(123456789)
	raw, err := parsedERC20ABI.Methods["balanceOf"].Outputs.Pack(want)
	if err != nil {
		t.Fatalf("pack output: %v", err)
	}

	got, err := unpackBalance(raw)
	if err != nil {
		t.Fatalf("unpackBalance: %v", err)
	}
	if got.Cmp(want) != 0 {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestUnpackBalanceEmptyReturnIsZero(t *testing.T) {
	initParsedABIs()

	got, err := unpackBalance(nil)
	if err != nil {
		t.Fatalf("unpackBalance: %v", err)
	}
	if got.Sign() != 0 {
		t.Errorf("got %s, want 0", got)
	}
}

func TestMulticall3RoundTrip(t *testing.T) {
	initParsedABIs()

	calls := []multicall3Call{
		{Target: common.HexToAddress("0x1"), AllowFailure: true, CallData: []byte{0x70, 0xa0, 0x82, 0x31}},
		{Target: common.HexToAddress("0x2"), AllowFailure: true, CallData: []byte{0x70, 0xa0, 0x82, 0x31}},
	}
	if _, err := parsedMulticall3.Pack("aggregate3", calls); err != nil {
		t.Fatalf("pack aggregate3: %v", err)
	}

	wantResults := []multicall3Result{
		{Success: true, ReturnData: common.LeftPadBytes(big.NewInt(7).Bytes(), 32)},
		{Success: false, ReturnData: nil},
	}
	raw, err := parsedMulticall3.Methods["aggregate3"].Outputs.Pack(wantResults)
	if err != nil {
		t.Fatalf("pack outputs: %v", err)
	}
	unpacked, err := parsedMulticall3.Unpack("aggregate3", raw)
	if err != nil {
		t.Fatalf("unpack aggregate3: %v", err)
	}
	got := *abi.ConvertType(unpacked[0], new([]multicall3Result)).(*[]multicall3Result)
	if len(got) != 2 {
		t.Fatalf("got %d results, want 2", len(got))
	}
	if !got[0].Success || got[1].Success {
		t.Errorf("success flags = %v/%v, want true/false", got[0].Success, got[1].Success)
	}
	balance, err := unpackBalance(got[0].ReturnData)
	if err != nil {
		t.Fatalf("unpackBalance: %v", err)
	}
	if balance.Int64() != 7 {
		t.Errorf("balance = %s, want 7", balance)
	}
}
