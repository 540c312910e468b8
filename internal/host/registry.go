package host

import (
	"DeskShell/internal/core/ports"
	"DeskShell/internal/shared/config"
	"sync"

	"github.com/rs/zerolog"
)

// HandlerConstructor builds a request handler from the host's dependencies.
// events is how a handler replies to or notifies renderer windows.
type HandlerConstructor func(
	cfg *config.Config,
	events ports.Sender,
	baseLogger *zerolog.Logger,
) ports.RequestHandler

var (
	registryMu sync.Mutex
	registry   []HandlerConstructor
)

// Register is called by handlers in their init() function
func Register(constructor HandlerConstructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = append(registry, constructor)
}

// RegisterAllHandlers builds every registered handler and binds it to the
// request channel, in registration order. The returned funcs detach them.
func RegisterAllHandlers(
	cfg *config.Config,
	requests ports.Channel,
	events ports.Sender,
	baseLogger *zerolog.Logger,
) []ports.Unsubscribe {
	log := baseLogger.With().Str("component", "host_registry").Logger()

	registryMu.Lock()
	constructors := append([]HandlerConstructor(nil), registry...)
	registryMu.Unlock()

	unsubs := make([]ports.Unsubscribe, 0, len(constructors))
	for _, constructor := range constructors {
		handler := constructor(cfg, events, baseLogger)
		unsubs = append(unsubs, requests.On(handler.Channel(), handler.Handle))
		log.Info().Str("channel", handler.Channel()).Msg("Registered request handler")
	}
	return unsubs
}
