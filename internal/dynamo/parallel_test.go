package dynamo

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestPool_ForCoversRangeOnce(t *testing.T) {
	tests := []struct {
		name       string
		workers    int
		n, grain   int
		maxWorkers int
	}{
		{"serial", 1, 10, 4, 1},
		{"aligned", 4, 64, 8, 4},
		{"ragged tail", 3, 50, 7, 3},
		{"more workers than blocks", 8, 10, 4, 3},
		{"grain of one", 5, 13, 1, 5},
		{"invalid grain", 2, 9, 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := NewPool(tt.workers)
			hits := make([]int32, tt.n)
			var mu sync.Mutex
			seen := map[int]bool{}

			pool.For(tt.n, tt.grain, func(worker, start, end int) {
				mu.Lock()
				seen[worker] = true
				mu.Unlock()
				grain := max(tt.grain, 1)
				if start%grain != 0 {
					t.Errorf("chunk start %d not aligned to %d", start, grain)
				}
				for i := start; i < end; i++ {
					atomic.AddInt32(&hits[i], 1)
				}
			})

			for i, h := range hits {
				if h != 1 {
					t.Errorf("index %d visited %d times", i, h)
				}
			}
			if len(seen) > tt.maxWorkers {
				t.Errorf("used %d workers, want at most %d", len(seen), tt.maxWorkers)
			}
		})
	}
}

func TestPool_ForEmptyRange(t *testing.T) {
	called := false
	NewPool(4).For(0, 8, func(_, _, _ int) { called = true })
	if called {
		t.Error("fn called for empty range")
	}
}

func TestPool_ForErr(t *testing.T) {
	boom := errors.New("boom")
	err := NewPool(4).ForErr(100, 10, func(_, start, end int) error {
		if start <= 50 && 50 < end {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Errorf("ForErr() = %v, want %v", err, boom)
	}
}

func TestPool_Each(t *testing.T) {
	pool := NewPool(6)
	var calls [6]int32
	pool.Each(func(w int) {
		atomic.AddInt32(&calls[w], 1)
	})
	for w, c := range calls {
		if c != 1 {
			t.Errorf("worker %d called %d times", w, c)
		}
	}
}

func TestNewPool_ClampsToOne(t *testing.T) {
	if got := NewPool(0).Workers(); got != 1 {
		t.Errorf("NewPool(0).Workers() = %d, want 1", got)
	}
}
