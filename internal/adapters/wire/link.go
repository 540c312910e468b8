package wire

import (
	"DeskShell/internal/core/domain"
	"DeskShell/internal/core/ports"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/net/websocket"
	"golang.org/x/sync/errgroup"
)

var (
	ErrLinkClosed = errors.New("link is closed")

	errPeerClosed = errors.New("peer closed the connection")
)

// Options apply to both ends of a link.
type Options struct {
	// Sealer, when set, seals every outbound frame and requires every
	// inbound frame to open with the same key.
	Sealer ports.SecurityPort

	// MaxFrameBytes bounds inbound websocket messages. Zero keeps the
	// websocket package default.
	MaxFrameBytes int
}

// Link is one websocket connection between the host and a renderer window.
//
// Send encodes immediately and queues the frame for the writer goroutine,
// so it never waits on the network. Inbound frames are validated and handed
// to the inbox; frames that fail validation are logged and dropped without
// closing the link.
type Link struct {
	conn   *websocket.Conn
	out    domain.Direction // direction of outbound frames, bound into sealing
	origin string           // stamped on outbound frames
	peer   string // when set, overrides the origin of inbound frames
	inbox  ports.Inbox
	sealer ports.SecurityPort
	log    zerolog.Logger

	mu      sync.Mutex
	pending [][]byte
	ready   chan struct{}

	seq       atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

var _ ports.VersionedSender = (*Link)(nil)

func newLink(conn *websocket.Conn, out domain.Direction, origin, peer string, inbox ports.Inbox, opts Options, log zerolog.Logger) *Link {
	if conn != nil && opts.MaxFrameBytes > 0 {
		conn.MaxPayloadBytes = opts.MaxFrameBytes
	}
	return &Link{
		conn:   conn,
		out:    out,
		origin: origin,
		peer:   peer,
		inbox:  inbox,
		sealer: opts.Sealer,
		log:    log,
		ready:  make(chan struct{}, 1),
	}
}

// Dial connects a renderer to the host at url. Inbound frames (host events)
// go to inbox. The returned link does nothing until Run is called.
func Dial(ctx context.Context, url, origin string, inbox ports.Inbox, opts Options, baseLogger *zerolog.Logger) (*Link, error) {
	log := baseLogger.With().Str("component", "wire_link").Str("origin", origin).Logger()

	config, err := websocket.NewConfig(url, "http://localhost/")
	if err != nil {
		return nil, fmt.Errorf("websocket config for %s: %w", url, err)
	}

	conn, err := config.DialContext(ctx)
	if err != nil {
		log.Error().Err(err).Str("url", url).Msg("Failed to dial host")
		return nil, fmt.Errorf("dial host: %w", err)
	}

	log.Info().Str("url", url).Msg("Connected to host")
	return newLink(conn, domain.DirectionRequest, origin, "", inbox, opts, log), nil
}

// Send queues an unversioned frame.
func (l *Link) Send(channel string, payload any) error {
	return l.SendVersion(channel, 0, payload)
}

// SendVersion encodes payload into a frame and queues it.
func (l *Link) SendVersion(channel string, version int, payload any) error {
	raw, err := domain.EncodePayload(channel, payload)
	if err != nil {
		return err
	}
	return l.sendRaw(channel, version, raw)
}

func (l *Link) sendRaw(channel string, version int, raw json.RawMessage) error {
	if l.closed.Load() {
		return ErrLinkClosed
	}

	frame := frameFromMessage(domain.Message{
		ID:      uuid.New(),
		Channel: channel,
		Version: version,
		Origin:  l.origin,
		Seq:     l.seq.Add(1),
		Payload: raw,
		SentAt:  time.Now(),
	})

	data, err := json.Marshal(frame)
	if err != nil {
		return &domain.SerializationError{Channel: channel, Err: err}
	}
	if l.sealer != nil {
		if data, err = l.sealer.Seal(data, []byte(l.out)); err != nil {
			return fmt.Errorf("seal frame: %w", err)
		}
	}

	l.mu.Lock()
	l.pending = append(l.pending, data)
	l.mu.Unlock()

	select {
	case l.ready <- struct{}{}:
	default:
	}
	return nil
}

// Run pumps frames in both directions until ctx is done, the peer hangs
// up, or Close is called. A clean shutdown returns nil.
func (l *Link) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return l.readLoop() })
	g.Go(func() error { return l.writeLoop(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		l.Close()
		return nil
	})

	err := g.Wait()
	if errors.Is(err, errPeerClosed) || (err != nil && l.closed.Load()) {
		return nil
	}
	return err
}

// Close stops the link and closes the connection.
func (l *Link) Close() {
	l.closeOnce.Do(func() {
		l.closed.Store(true)
		if l.conn != nil {
			l.conn.Close()
		}
		l.log.Info().Msg("Link closed")
	})
}

func (l *Link) readLoop() error {
	for {
		var data []byte
		if err := websocket.Message.Receive(l.conn, &data); err != nil {
			if errors.Is(err, websocket.ErrFrameTooLarge) {
				l.log.Warn().Int("max_bytes", l.conn.MaxPayloadBytes).Msg("Dropped oversized frame")
				continue
			}
			if errors.Is(err, io.EOF) || l.closed.Load() {
				return errPeerClosed
			}
			l.log.Error().Err(err).Msg("Failed to read frame")
			return err
		}
		l.handleFrame(data)
	}
}

func (l *Link) writeLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-l.ready:
		}

		l.mu.Lock()
		batch := l.pending
		l.pending = nil
		l.mu.Unlock()

		for _, data := range batch {
			var err error
			if l.sealer != nil {
				err = websocket.Message.Send(l.conn, data)
			} else {
				err = websocket.Message.Send(l.conn, string(data))
			}
			if err != nil {
				l.log.Error().Err(err).Msg("Failed to write frame")
				return err
			}
		}
	}
}

// handleFrame opens, validates and delivers one inbound frame.
func (l *Link) handleFrame(data []byte) {
	if l.sealer != nil {
		opened, err := l.sealer.Open(data, []byte(l.out.Reverse()))
		if err != nil {
			l.log.Warn().Err(err).Msg("Dropped frame that failed to open")
			return
		}
		data = opened
	}

	frame, err := decodeFrame(data)
	if err != nil {
		l.log.Warn().Err(err).Msg("Dropped invalid frame")
		return
	}

	if l.peer != "" {
		frame.Origin = l.peer
	}

	if err := l.inbox.Deliver(frame.message()); err != nil {
		l.log.Error().Err(err).Str("channel", frame.Channel).Msg("Failed to deliver frame")
	}
}
