package renderer

import (
	"DeskShell/internal/core/domain"
	"DeskShell/internal/core/ports"
)

// Counter is the dashboard counter.
type Counter struct {
	state ports.Store[domain.CounterState]
}

// NewCounter drives state. Components bound to the same store see every
// change the counter makes.
func NewCounter(state ports.Store[domain.CounterState]) *Counter {
	return &Counter{state: state}
}

func (c *Counter) Count() int {
	return c.state.State().Count
}

func (c *Counter) Increment() {
	c.apply(domain.Increment)
}

func (c *Counter) Decrement() {
	c.apply(domain.Decrement)
}

func (c *Counter) Reset() {
	c.apply(domain.ResetCounter)
}

func (c *Counter) IncrementBy(amount int) {
	c.apply(domain.IncrementBy(amount))
}

// Subscribe is called with the new state after every change.
func (c *Counter) Subscribe(callback func(domain.CounterState)) ports.Unsubscribe {
	return c.state.Subscribe(callback)
}

func (c *Counter) apply(transition func(domain.CounterState) domain.CounterState) {
	_ = c.state.SetState(func(cur domain.CounterState) (domain.CounterState, error) {
		return transition(cur), nil
	})
}
