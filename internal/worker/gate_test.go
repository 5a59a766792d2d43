package worker

import (
	"sync"
	"testing"
)

func TestGateAdmitRelease(t *testing.T) {
	g := NewGate(2)

	if !g.TryAdmit() {
		t.Fatal("first admit should succeed")
	}
	if !g.TryAdmit() {
		t.Fatal("second admit should succeed")
	}
	if g.TryAdmit() {
		t.Fatal("third admit should be rejected at limit 2")
	}
	if g.Active() != 2 {
		t.Errorf("active = %d, want 2", g.Active())
	}

	g.Release()
	if !g.TryAdmit() {
		t.Fatal("admit after release should succeed")
	}
}

func TestGateMinimumLimit(t *testing.T) {
	g := NewGate(0)
	if g.Limit() != 1 {
		t.Errorf("limit = %d, want 1", g.Limit())
	}
	g = NewGate(-5)
	if g.Limit() != 1 {
		t.Errorf("limit = %d, want 1", g.Limit())
	}
}

// Конкурентные TryAdmit никогда не должны превышать лимит.
func TestGateConcurrentAdmission(t *testing.T) {
	const limit = 4
	const goroutines = 100

	g := NewGate(limit)

	var wg sync.WaitGroup
	admitted := make(chan struct{}, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.TryAdmit() {
				admitted <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(admitted)

	count := 0
	for range admitted {
		count++
	}
	if count != limit {
		t.Errorf("admitted %d goroutines, want exactly %d", count, limit)
	}
	if g.Active() != limit {
		t.Errorf("active = %d, want %d", g.Active(), limit)
	}
}

func TestGateReleaseWithoutAdmitPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on release without admit")
		}
	}()
	NewGate(1).Release()
}
