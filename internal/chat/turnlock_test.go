package chat

import (
	"sync"
	"testing"
)

func TestTurnLocksSerializePerSession(t *testing.T) {
	t.Parallel()
	locks := newTurnLocks()

	var mu sync.Mutex
	inTurn := map[string]int{}
	maxConcurrent := map[string]int{}

	var wg sync.WaitGroup
	for _, sessionID := range []string{"s1", "s2"} {
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				locks.Lock(id)
				defer locks.Unlock(id)

				mu.Lock()
				inTurn[id]++
				if inTurn[id] > maxConcurrent[id] {
					maxConcurrent[id] = inTurn[id]
				}
				mu.Unlock()

				mu.Lock()
				inTurn[id]--
				mu.Unlock()
			}(sessionID)
		}
	}
	wg.Wait()

	for id, max := range maxConcurrent {
		if max > 1 {
			t.Errorf("Expected at most one turn in flight for %s, saw %d", id, max)
		}
	}
}

func TestTurnLocksEvictIdleSessions(t *testing.T) {
	t.Parallel()
	locks := newTurnLocks()

	locks.Lock("s1")
	locks.Unlock("s1")

	locks.mu.Lock()
	defer locks.mu.Unlock()
	if len(locks.locks) != 0 {
		t.Errorf("Expected lock map to be empty after last turn, got %d entries", len(locks.locks))
	}
}
