package channel

import (
	"DeskShell/internal/core/domain"
	"DeskShell/internal/core/ports"
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type subscription struct {
	handler ports.Handler
	active  atomic.Bool
}

// InMemoryChannel implements ports.Channel for one direction of the
// process boundary.
//
// Send only queues. Handlers run on whichever goroutine calls Tick, which is
// normally the single Run loop, so a handler never executes inside Send and
// may itself call Send without deadlocking.
type InMemoryChannel struct {
	log       zerolog.Logger
	direction domain.Direction
	origin    string

	mu          sync.RWMutex
	subscribers map[string][]*subscription

	queue  *queue
	tickMu sync.Mutex
	seq    atomic.Uint64

	done      chan struct{}
	closeOnce sync.Once

	now func() time.Time
}

var _ ports.Channel = (*InMemoryChannel)(nil)
var _ ports.VersionedSender = (*InMemoryChannel)(nil)
var _ ports.Inbox = (*InMemoryChannel)(nil)

// NewInMemoryChannel creates an empty channel. origin is stamped on every
// message sent through this instance.
func NewInMemoryChannel(direction domain.Direction, origin string, baseLogger *zerolog.Logger) *InMemoryChannel {
	return &InMemoryChannel{
		log: baseLogger.With().
			Str("component", "in_memory_channel").
			Str("direction", string(direction)).
			Logger(),
		direction:   direction,
		origin:      origin,
		subscribers: make(map[string][]*subscription),
		queue:       newQueue(),
		done:        make(chan struct{}),
		now:         time.Now,
	}
}

// Send queues an unversioned message.
func (c *InMemoryChannel) Send(channel string, payload any) error {
	return c.SendVersion(channel, 0, payload)
}

// SendVersion encodes payload now, so serialization failures surface at the
// call site, then queues the message.
func (c *InMemoryChannel) SendVersion(channel string, version int, payload any) error {
	raw, err := domain.EncodePayload(channel, payload)
	if err != nil {
		return err
	}

	return c.enqueue(domain.Message{
		ID:      uuid.New(),
		Channel: channel,
		Version: version,
		Origin:  c.origin,
		Seq:     c.seq.Add(1),
		Payload: raw,
		SentAt:  c.now(),
	})
}

// Deliver queues a message encoded by a remote sender, keeping its origin
// and sequence number.
func (c *InMemoryChannel) Deliver(msg domain.Message) error {
	raw, err := domain.EncodePayload(msg.Channel, msg.Payload)
	if err != nil {
		return err
	}
	msg.Payload = raw
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	if msg.SentAt.IsZero() {
		msg.SentAt = c.now()
	}
	return c.enqueue(msg)
}

func (c *InMemoryChannel) enqueue(msg domain.Message) error {
	if !c.queue.push(msg) {
		return domain.ErrChannelClosed
	}
	return nil
}

// On registers handler for channel.
func (c *InMemoryChannel) On(channel string, handler ports.Handler) ports.Unsubscribe {
	if handler == nil {
		c.log.Warn().Str("channel", channel).Msg("Ignoring nil handler")
		return func() {}
	}

	sub := &subscription{handler: handler}
	sub.active.Store(true)

	c.mu.Lock()
	c.subscribers[channel] = append(c.subscribers[channel], sub)
	count := len(c.subscribers[channel])
	c.mu.Unlock()

	c.log.Debug().Str("channel", channel).Int("handlers", count).Msg("Handler registered")

	var once sync.Once
	return func() {
		once.Do(func() { c.remove(channel, sub) })
	}
}

func (c *InMemoryChannel) remove(channel string, target *subscription) {
	target.active.Store(false)

	c.mu.Lock()
	defer c.mu.Unlock()

	current := c.subscribers[channel]
	kept := make([]*subscription, 0, len(current))
	for _, sub := range current {
		if sub != target {
			kept = append(kept, sub)
		}
	}
	if len(kept) == 0 {
		delete(c.subscribers, channel)
		return
	}
	c.subscribers[channel] = kept
}

// handlersFor copies the registry slice so registration changes during a
// dispatch never reorder or skip the handlers being called.
func (c *InMemoryChannel) handlersFor(channel string) []*subscription {
	c.mu.RLock()
	defer c.mu.RUnlock()

	current := c.subscribers[channel]
	if len(current) == 0 {
		return nil
	}
	return append([]*subscription(nil), current...)
}

// Pending reports how many messages wait for the next tick.
func (c *InMemoryChannel) Pending() int {
	return c.queue.len()
}

// Tick is the dispatch point: it delivers every message queued before the
// call, oldest first, and returns how many it delivered. Messages sent by
// handlers during the tick stay queued for the next one.
func (c *InMemoryChannel) Tick(ctx context.Context) int {
	c.tickMu.Lock()
	defer c.tickMu.Unlock()

	batch := c.queue.takeAll()
	for _, msg := range batch {
		c.dispatch(ctx, msg)
	}
	return len(batch)
}

// Run ticks whenever work arrives until ctx is done or the channel is closed.
// After Close it drains what is left before returning.
func (c *InMemoryChannel) Run(ctx context.Context) error {
	c.log.Info().Msg("Dispatch loop started")
	defer c.log.Info().Msg("Dispatch loop stopped")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-c.done:
			c.Tick(ctx)
			return nil
		case <-c.queue.ready:
			c.Tick(ctx)
		}
	}
}

// Close stops accepting messages. It is safe to call more than once.
func (c *InMemoryChannel) Close() {
	c.closeOnce.Do(func() {
		c.queue.close()
		close(c.done)
	})
}

func (c *InMemoryChannel) dispatch(ctx context.Context, msg domain.Message) {
	handlers := c.handlersFor(msg.Channel)
	if len(handlers) == 0 {
		// Fire-and-forget: nobody listening is not an error.
		c.log.Debug().Str("channel", msg.Channel).Msg("Dropped message with no handlers")
		return
	}

	for _, sub := range handlers {
		if !sub.active.Load() {
			continue
		}
		c.invoke(ctx, sub.handler, msg)
	}
}

// invoke runs one handler, containing its error or panic.
func (c *InMemoryChannel) invoke(ctx context.Context, handler ports.Handler, msg domain.Message) {
	log := c.log.With().
		Str("channel", msg.Channel).
		Str("message_id", msg.ID.String()).
		Str("origin", msg.Origin).
		Logger()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Channel handler panicked")
		}
	}()

	if err := handler(log.WithContext(ctx), msg); err != nil {
		log.Error().Err(err).Msg("Channel handler failed")
	}
}
