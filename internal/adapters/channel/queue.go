package channel

import (
	"DeskShell/internal/core/domain"
	"sync"
)

// queue is an unbounded FIFO of pending messages. push never blocks on the
// consumer; ready carries at most one wake-up at a time. Once closed, push
// refuses new messages, so a push either lands before close or fails.
type queue struct {
	mu     sync.Mutex
	items  []domain.Message
	closed bool
	ready  chan struct{}
}

func newQueue() *queue {
	return &queue{ready: make(chan struct{}, 1)}
}

func (q *queue) push(msg domain.Message) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, msg)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
	return true
}

func (q *queue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
}

// takeAll hands over everything queued so far and leaves the queue empty.
func (q *queue) takeAll() []domain.Message {
	q.mu.Lock()
	defer q.mu.Unlock()

	items := q.items
	q.items = nil
	return items
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
