package seq

import (
	"sync"
	"testing"
)

func TestNextConcurrent(t *testing.T) {

	s := New()

	var wg sync.WaitGroup
	seen := make(chan int64, 100)

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				seen <- s.Next()
			}
		}()
	}

	wg.Wait()
	close(seen)

	unique := make(map[int64]bool)

	for n := range seen {
		if unique[n] {
			t.Fatalf("duplicate sequence number %d", n)
		}
		unique[n] = true
	}

	if len(unique) != 100 || s.Last() != 100 {
		t.Errorf("expected 100 unique numbers ending at 100, got %d ending at %d", len(unique), s.Last())
	}
}
