package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Furqan3/bustracker/internal/tracker/store"
	"github.com/Furqan3/bustracker/internal/tracker/store/memory"
)

func fix(i int) store.FixRecord {
	return store.FixRecord{
		Latitude:        10.0 + float64(i)/1000,
		Longitude:       20.0 + float64(i)/1000,
		DeviceTimestamp: int64(1700000000 + i),
		Satellites:      7,
		ReceivedAt:      time.Now().UTC(),
	}
}

func TestFixLogStore_LatestOnEmpty(t *testing.T) {
	fl := memory.NewFixLogStore(100)

	_, err := fl.Latest(context.Background())
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFixLogStore_AppendAndLatest(t *testing.T) {
	fl := memory.NewFixLogStore(100)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := fl.Append(ctx, fix(i)); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	rec, err := fl.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if rec.DeviceTimestamp != 1700000002 {
		t.Errorf("expected latest ts=1700000002, got %d", rec.DeviceTimestamp)
	}
}

func TestFixLogStore_EvictsOldestBeyondCap(t *testing.T) {
	fl := memory.NewFixLogStore(100)
	ctx := context.Background()

	for i := 0; i < 101; i++ {
		if err := fl.Append(ctx, fix(i)); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	n, err := fl.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 100 {
		t.Fatalf("expected count=100 after 101 appends, got %d", n)
	}

	// The first fix (ts=1700000000) is the one evicted.
	recent, err := fl.Recent(ctx, 100)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 100 {
		t.Fatalf("expected 100 recent entries, got %d", len(recent))
	}
	for _, rec := range recent {
		if rec.DeviceTimestamp == 1700000000 {
			t.Fatal("evicted fix still present in Recent(100)")
		}
	}
	if recent[len(recent)-1].DeviceTimestamp != 1700000001 {
		t.Errorf("expected oldest survivor ts=1700000001, got %d", recent[len(recent)-1].DeviceTimestamp)
	}
}

func TestFixLogStore_RecentMostRecentFirst(t *testing.T) {
	fl := memory.NewFixLogStore(100)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := fl.Append(ctx, fix(i)); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	recent, err := fl.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(recent))
	}
	for i, wantTS := range []int64{1700000004, 1700000003, 1700000002} {
		if recent[i].DeviceTimestamp != wantTS {
			t.Errorf("recent[%d]: expected ts=%d, got %d", i, wantTS, recent[i].DeviceTimestamp)
		}
	}
}

func TestFixLogStore_RecentLimitLargerThanSize(t *testing.T) {
	fl := memory.NewFixLogStore(100)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := fl.Append(ctx, fix(i)); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	recent, err := fl.Recent(ctx, 20)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 {
		t.Errorf("expected 2 entries, got %d", len(recent))
	}
}
