package renderer

import (
	"DeskShell/internal/adapters/store"
	"DeskShell/internal/core/domain"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCounter_Transitions(t *testing.T) {
	c := NewCounter(store.New(domain.CounterState{}))

	var seen []int
	c.Subscribe(func(s domain.CounterState) { seen = append(seen, s.Count) })

	c.Increment()
	c.Increment()
	c.Decrement()
	c.IncrementBy(5)
	assert.Equal(t, 6, c.Count())

	c.Reset()
	assert.Equal(t, 0, c.Count())
	assert.Equal(t, []int{1, 2, 1, 6, 0}, seen)
}

func TestCounter_SharesInjectedStore(t *testing.T) {
	shared := store.New(domain.CounterState{Count: 10})
	c := NewCounter(shared)

	c.IncrementBy(5)
	assert.Equal(t, 15, shared.State().Count)

	// Another component committing to the same store is visible to the counter.
	shared.Replace(domain.CounterState{Count: 2})
	assert.Equal(t, 2, c.Count())
}

func TestCounter_ConcurrentIncrements(t *testing.T) {
	c := NewCounter(store.New(domain.CounterState{}))

	var wg sync.WaitGroup
	for i := 0; i < 1000; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Increment()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1000, c.Count())
}
