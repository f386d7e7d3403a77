package hunt

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestRegistry_PutIfAbsent(t *testing.T) {
	r := NewRegistry()
	s1 := NewSession("p1", strongStats(), testMonster())
	s2 := NewSession("p1", strongStats(), testMonster())

	if !r.PutIfAbsent(s1) {
		t.Fatal("first PutIfAbsent rejected")
	}
	if r.PutIfAbsent(s2) {
		t.Error("second PutIfAbsent for the same player accepted")
	}

	got, ok := r.Get("p1")
	if !ok || got != s1 {
		t.Error("Get returned the wrong session")
	}

	r.Delete("p1")
	if _, ok := r.Get("p1"); ok {
		t.Error("session still present after Delete")
	}
	if !r.PutIfAbsent(s2) {
		t.Error("PutIfAbsent rejected after Delete")
	}
}

func TestRegistry_ConcurrentStart(t *testing.T) {
	r := NewRegistry()

	var accepted atomic.Int32
	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := NewSession("p1", strongStats(), testMonster())
			if r.PutIfAbsent(s) {
				accepted.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := accepted.Load(); got != 1 {
		t.Errorf("%d concurrent starts accepted, want exactly 1", got)
	}
}
