package locker

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedSerializesPerKey(t *testing.T) {
	locks := NewKeyed()

	var wg sync.WaitGroup
	var counters [3]int

	for i := 0; i < 100; i++ {
		for key := uint(1); key <= 2; key++ {
			wg.Add(1)
			go func(key uint) {
				defer wg.Done()
				locks.Lock(key)
				defer locks.Unlock(key)
				counters[key]++
			}(key)
		}
	}

	wg.Wait()
	assert.Equal(t, 100, counters[1])
	assert.Equal(t, 100, counters[2])
}

func TestKeyedIndependentKeys(t *testing.T) {
	locks := NewKeyed()

	locks.Lock(1)

	// A different key must not block
	done := make(chan struct{})
	go func() {
		locks.Lock(2)
		locks.Unlock(2)
		close(done)
	}()

	<-done
	locks.Unlock(1)
}
