package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeterministicClock_StartsAtEpoch(t *testing.T) {
	clock := NewDeterministicClock()
	assert.Equal(t, Epoch, clock.Now())
	assert.Equal(t, clock.Now(), clock.Now(), "reading does not advance")
}

func TestDeterministicClock_AdvanceAndReset(t *testing.T) {
	clock := NewDeterministicClock()

	clock.Advance(250 * time.Millisecond)
	clock.Advance(time.Second)
	assert.Equal(t, Epoch.Add(1250*time.Millisecond), clock.Now())

	later := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	clock.Set(later)
	assert.Equal(t, later, clock.Now())

	clock.Reset()
	assert.Equal(t, Epoch, clock.Now())
}

func TestDeterministicClock_ThreadSafe(t *testing.T) {
	clock := NewDeterministicClock()
	const goroutines = 50

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			clock.Advance(time.Millisecond)
			_ = clock.Now()
		}()
	}
	wg.Wait()

	assert.Equal(t, Epoch.Add(goroutines*time.Millisecond), clock.Now())
}
