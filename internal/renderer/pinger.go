package renderer

import (
	"DeskShell/internal/adapters/channel"
	"DeskShell/internal/core/domain"
	"DeskShell/internal/core/ports"
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Pinger sends ping requests to the host and tracks the indicator shown
// next to the button: sent, then acked if the pong for the latest ping
// arrives, then idle again after the reset delay.
//
// Status changes are committed while the Pinger holds its lock, so
// subscribers must not call back into Ping, Stop or a pong handler.
type Pinger struct {
	state  ports.Store[domain.PingStatus]
	sender ports.Sender
	reset  time.Duration
	log    zerolog.Logger

	mu          sync.Mutex
	outstanding string // id of the latest ping
	generation  uint64 // bumped by every ping; stale resets compare against it
	timer       *time.Timer
}

// NewPinger drives state, which should start at domain.PingIdle.
func NewPinger(state ports.Store[domain.PingStatus], sender ports.Sender, resetAfter time.Duration, baseLogger *zerolog.Logger) *Pinger {
	return &Pinger{
		state:  state,
		sender: sender,
		reset:  resetAfter,
		log:    baseLogger.With().Str("component", "pinger").Logger(),
	}
}

// Ping sends one ping. The only failure is a send error; nothing waits for
// the host.
func (p *Pinger) Ping() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := uuid.NewString()
	if err := channel.PingTopic.Send(p.sender, domain.Ping{ID: id}); err != nil {
		p.log.Error().Err(err).Msg("Failed to send ping")
		return err
	}

	p.outstanding = id
	p.generation++
	gen := p.generation
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(p.reset, func() { p.expire(gen) })

	p.set(domain.PingSent)
	p.log.Debug().Str("ping_id", id).Msg("Ping sent")
	return nil
}

// expire returns the indicator to idle unless a newer ping was sent after
// the timer for gen was armed.
func (p *Pinger) expire(gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.generation {
		return
	}
	p.outstanding = ""
	p.set(domain.PingIdle)
}

// Listen marks the latest ping as acknowledged when its pong arrives on
// events. Pongs for older pings or for other windows are ignored.
func (p *Pinger) Listen(events ports.Channel) ports.Unsubscribe {
	return channel.PongTopic.On(events, func(ctx context.Context, pong domain.Pong) error {
		p.mu.Lock()
		defer p.mu.Unlock()
		if pong.ReplyTo == "" || pong.ReplyTo != p.outstanding {
			return nil
		}
		p.outstanding = ""
		p.set(domain.PingAcked)
		return nil
	})
}

func (p *Pinger) Status() domain.PingStatus {
	return p.state.State()
}

func (p *Pinger) Subscribe(callback func(domain.PingStatus)) ports.Unsubscribe {
	return p.state.Subscribe(callback)
}

// Stop cancels a pending reset.
func (p *Pinger) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.generation++
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

func (p *Pinger) set(status domain.PingStatus) {
	_ = p.state.SetState(func(domain.PingStatus) (domain.PingStatus, error) {
		return status, nil
	})
}
