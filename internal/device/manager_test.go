package device

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunKeepsOrder(t *testing.T) {
	m := NewManager[string](WithWorkerLimit[string](3))
	serials := []string{"emulator-5554", "R58M12345", "192.168.1.7:5555", "ZY22"}
	results := m.Run(context.Background(), serials, func(ctx context.Context, serial string) (string, error) {
		if serial == "R58M12345" {
			return "", fmt.Errorf("offline")
		}
		return "ok:" + serial, nil
	})

	if len(results) != len(serials) {
		t.Fatalf("got %d results", len(results))
	}
	for i, r := range results {
		if r.Serial != serials[i] {
			t.Errorf("result %d is for %s, want %s", i, r.Serial, serials[i])
		}
	}
	if results[1].Err == nil || results[0].Value != "ok:emulator-5554" {
		t.Errorf("results = %+v", results)
	}
}

func TestDefaultIsSequential(t *testing.T) {
	var running, peak int32
	m := NewManager[struct{}]()
	m.Run(context.Background(), []string{"a", "b", "c"}, func(ctx context.Context, serial string) (struct{}, error) {
		n := atomic.AddInt32(&running, 1)
		if n > atomic.LoadInt32(&peak) {
			atomic.StoreInt32(&peak, n)
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return struct{}{}, nil
	})
	if peak != 1 {
		t.Errorf("peak concurrency = %d, want 1", peak)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results := NewManager[int]().Run(ctx, []string{"a", "b"}, func(ctx context.Context, serial string) (int, error) {
		return 1, nil
	})
	for _, r := range results {
		if r.Err == nil && r.Value != 1 {
			t.Errorf("result %+v neither ran nor reported cancellation", r)
		}
	}
}

func TestRunEmpty(t *testing.T) {
	if got := NewManager[int]().Run(context.Background(), nil, nil); len(got) != 0 {
		t.Errorf("got %v", got)
	}
}
