package wire

import (
	"DeskShell/internal/core/domain"
	"DeskShell/internal/core/ports"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/net/websocket"
)

// HostOrigin is stamped on every frame the host sends.
const HostOrigin = "host"

var ErrUnknownWindow = errors.New("no such window")

// Server is the host end of the wire. Every accepted connection is a
// renderer window with its own uuid; frames from a window are delivered to
// the request inbox with that uuid as origin, whatever the window claims.
//
// Server is also the host's event sender: Send broadcasts to every
// connected window, and with no windows connected it is a no-op.
type Server struct {
	inbox ports.Inbox
	opts  Options
	log   zerolog.Logger

	mu    sync.RWMutex
	links map[string]*Link
}

var (
	_ ports.VersionedSender = (*Server)(nil)
	_ ports.WindowSender    = (*Server)(nil)
)

// NewServer creates a host server delivering renderer requests into inbox.
func NewServer(inbox ports.Inbox, opts Options, baseLogger *zerolog.Logger) *Server {
	return &Server{
		inbox: inbox,
		opts:  opts,
		log:   baseLogger.With().Str("component", "wire_server").Logger(),
		links: make(map[string]*Link),
	}
}

// Handler returns the websocket endpoint to mount on the host's mux.
func (s *Server) Handler() http.Handler {
	return websocket.Handler(s.serve)
}

func (s *Server) serve(conn *websocket.Conn) {
	windowID := uuid.NewString()
	log := s.log.With().Str("window_id", windowID).Logger()
	link := newLink(conn, domain.DirectionEvent, HostOrigin, windowID, s.inbox, s.opts, log)

	s.mu.Lock()
	s.links[windowID] = link
	s.mu.Unlock()
	log.Info().Str("remote_addr", conn.Request().RemoteAddr).Msg("Window connected")

	defer func() {
		s.mu.Lock()
		delete(s.links, windowID)
		s.mu.Unlock()
		log.Info().Msg("Window disconnected")
	}()

	if err := link.Run(conn.Request().Context()); err != nil {
		log.Error().Err(err).Msg("Window link failed")
	}
}

// Send broadcasts an unversioned event.
func (s *Server) Send(channel string, payload any) error {
	return s.SendVersion(channel, 0, payload)
}

// SendVersion encodes once, then queues a frame on every open window link.
func (s *Server) SendVersion(channel string, version int, payload any) error {
	return s.broadcast("", channel, version, payload)
}

// SendExcept broadcasts to every window but skip, typically the window
// whose request caused the event.
func (s *Server) SendExcept(skip, channel string, version int, payload any) error {
	return s.broadcast(skip, channel, version, payload)
}

// SendTo queues an event for one window only.
func (s *Server) SendTo(window, channel string, version int, payload any) error {
	raw, err := domain.EncodePayload(channel, payload)
	if err != nil {
		return err
	}

	s.mu.RLock()
	link, ok := s.links[window]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownWindow, window)
	}
	return link.sendRaw(channel, version, raw)
}

func (s *Server) broadcast(skip, channel string, version int, payload any) error {
	raw, err := domain.EncodePayload(channel, payload)
	if err != nil {
		return err
	}

	for id, link := range s.snapshot() {
		if id == skip {
			continue
		}
		if err := link.sendRaw(channel, version, raw); err != nil {
			// The window is going away; the others still get the event.
			s.log.Debug().Err(err).Str("channel", channel).Str("window_id", id).Msg("Skipped closing window")
		}
	}
	return nil
}

// Windows lists the ids of connected windows, sorted.
func (s *Server) Windows() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.links))
	for id := range s.links {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Close disconnects every window.
func (s *Server) Close() {
	for _, link := range s.snapshot() {
		link.Close()
	}
}

func (s *Server) snapshot() map[string]*Link {
	s.mu.RLock()
	defer s.mu.RUnlock()

	links := make(map[string]*Link, len(s.links))
	for id, link := range s.links {
		links[id] = link
	}
	return links
}
