package history

import (
	"fmt"
	"testing"
	"time"

	"defolio/internal/domain/entity"
)

func TestRecordAndHistory(t *testing.T) {
	store := NewStore(10)
	store.Record(&entity.Portfolio{Address: "0xAbC", TotalValueUSD: 100})
	store.Record(&entity.Portfolio{Address: "0xabc", TotalValueUSD: 150})

	history := store.History("0xABC")
	if len(history) != 2 {
		t.Fatalf("got %d snapshots, want 2 (address lookup is case-insensitive)", len(history))
	}
	if history[0].TotalValueUSD != 100 || history[1].TotalValueUSD != 150 {
		t.Errorf("snapshots out of order: %+v", history)
	}
}

func TestRecordEvictsOldest(t *testing.T) {
	store := NewStore(3)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	store.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	for i := 1; i <= 5; i++ {
		store.Record(&entity.Portfolio{Address: "0xabc", TotalValueUSD: float64(i)})
	}

	history := store.History("0xabc")
	if len(history) != 3 {
		t.Fatalf("got %d snapshots, want cap of 3", len(history))
	}
	if history[0].TotalValueUSD != 3 || history[2].TotalValueUSD != 5 {
		t.Errorf("eviction kept wrong entries: %+v", history)
	}
}

func TestRecordIgnoresEmptyAddress(t *testing.T) {
	store := NewStore(10)
	store.Record(nil)
	store.Record(&entity.Portfolio{})
	if len(store.History("")) != 0 {
		t.Error("empty address must not be recorded")
	}
}

func TestHistoryReturnsCopy(t *testing.T) {
	store := NewStore(10)
	store.Record(&entity.Portfolio{Address: "0xabc", TotalValueUSD: 1})

	history := store.History("0xabc")
	history[0].TotalValueUSD = 999

	if store.History("0xabc")[0].TotalValueUSD != 1 {
		t.Error("History must return a copy, not the internal slice")
	}
}

func TestStoreIsolatesAddresses(t *testing.T) {
	store := NewStore(10)
	for i := 0; i < 3; i++ {
		store.Record(&entity.Portfolio{Address: fmt.Sprintf("0x%d", i), TotalValueUSD: float64(i)})
	}
	if len(store.History("0x1")) != 1 {
		t.Error("snapshots leaked across addresses")
	}
}
