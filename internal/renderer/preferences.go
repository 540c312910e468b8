package renderer

import (
	"DeskShell/internal/adapters/channel"
	"DeskShell/internal/core/domain"
	"DeskShell/internal/core/ports"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

var errUnchanged = errors.New("state unchanged")

// Preferences holds the selected language and theme and writes every change
// back to the settings repository.
type Preferences struct {
	state ports.Store[domain.Preferences]
	repo  ports.SettingsRepository
	log   zerolog.Logger

	mu         sync.Mutex
	saved      domain.Preferences
	announcers []*announcer
	unsub      []ports.Unsubscribe
}

// announcer is one Publish registration. followed holds snapshots applied
// from the host, in commit order, that must not be announced again.
type announcer struct {
	sender   ports.Sender
	last     domain.Preferences
	followed []domain.Preferences
}

// LoadPreferences reads the persisted settings. Missing or unsupported
// stored values fall back to the defaults.
func LoadPreferences(ctx context.Context, repo ports.SettingsRepository, baseLogger *zerolog.Logger) (domain.Preferences, error) {
	log := baseLogger.With().Str("component", "preferences").Logger()
	prefs := domain.DefaultPreferences()

	language, found, err := repo.Get(ctx, domain.SettingLanguage)
	if err != nil {
		return prefs, fmt.Errorf("load %s: %w", domain.SettingLanguage, err)
	}
	if found {
		if err := domain.ValidateLanguage(language); err != nil {
			log.Warn().Err(err).Msg("Ignoring stored language")
		} else {
			prefs.Language = language
		}
	}

	theme, found, err := repo.Get(ctx, domain.SettingTheme)
	if err != nil {
		return prefs, fmt.Errorf("load %s: %w", domain.SettingTheme, err)
	}
	if found {
		if err := domain.ValidateTheme(domain.Theme(theme)); err != nil {
			log.Warn().Err(err).Msg("Ignoring stored theme")
		} else {
			prefs.Theme = domain.Theme(theme)
		}
	}

	log.Info().Str("language", prefs.Language).Str("theme", string(prefs.Theme)).Msg("Preferences loaded")
	return prefs, nil
}

// NewPreferences drives state, normally seeded with LoadPreferences. The
// snapshot state holds now is taken to be what repo already has.
func NewPreferences(state ports.Store[domain.Preferences], repo ports.SettingsRepository, baseLogger *zerolog.Logger) *Preferences {
	p := &Preferences{
		state: state,
		repo:  repo,
		log:   baseLogger.With().Str("component", "preferences").Logger(),
		saved: state.State(),
	}
	p.track(state.Subscribe(p.persist))
	return p
}

// Current returns the active preferences.
func (p *Preferences) Current() domain.Preferences {
	return p.state.State()
}

// SetLanguage switches the UI language. Unsupported codes are rejected and
// leave the current language in place.
func (p *Preferences) SetLanguage(code string) error {
	return p.state.SetState(func(cur domain.Preferences) (domain.Preferences, error) {
		if err := domain.ValidateLanguage(code); err != nil {
			return cur, err
		}
		cur.Language = code
		return cur, nil
	})
}

func (p *Preferences) SetTheme(theme domain.Theme) error {
	return p.state.SetState(func(cur domain.Preferences) (domain.Preferences, error) {
		if err := domain.ValidateTheme(theme); err != nil {
			return cur, err
		}
		cur.Theme = theme
		return cur, nil
	})
}

func (p *Preferences) ToggleTheme() {
	_ = p.state.SetState(func(cur domain.Preferences) (domain.Preferences, error) {
		cur.Theme = cur.Theme.Toggled()
		return cur, nil
	})
}

func (p *Preferences) Subscribe(callback func(domain.Preferences)) ports.Unsubscribe {
	return p.state.Subscribe(callback)
}

// Publish announces local changes on sender so the host can relay them to
// the other windows. Snapshots applied by Follow are not announced.
func (p *Preferences) Publish(sender ports.Sender) {
	a := &announcer{sender: sender, last: p.Current()}

	p.mu.Lock()
	p.announcers = append(p.announcers, a)
	p.mu.Unlock()

	p.track(p.state.Subscribe(func(next domain.Preferences) {
		if !p.shouldAnnounce(a, next) {
			return
		}
		if err := channel.PreferencesTopic.Send(a.sender, next); err != nil {
			p.log.Error().Err(err).Msg("Failed to announce preferences")
		}
	}))
}

func (p *Preferences) shouldAnnounce(a *announcer, next domain.Preferences) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(a.followed) > 0 && a.followed[0] == next {
		a.followed = a.followed[1:]
		a.last = next
		return false
	}
	if next == a.last {
		return false
	}
	a.last = next
	return true
}

// Follow applies preferences broadcast by the host. Snapshots equal to the
// current one are not committed.
func (p *Preferences) Follow(events ports.Channel) {
	unsub := channel.PreferencesTopic.On(events, func(ctx context.Context, incoming domain.Preferences) error {
		err := p.state.SetState(func(cur domain.Preferences) (domain.Preferences, error) {
			if incoming == cur {
				return cur, errUnchanged
			}
			if err := domain.ValidateLanguage(incoming.Language); err != nil {
				return cur, err
			}
			if err := domain.ValidateTheme(incoming.Theme); err != nil {
				return cur, err
			}
			p.markFollowed(incoming)
			return incoming, nil
		})
		if errors.Is(err, errUnchanged) {
			return nil
		}
		return err
	})
	p.track(unsub)
}

// markFollowed runs inside the committing updater, so followed entries line
// up with notifications in commit order.
func (p *Preferences) markFollowed(incoming domain.Preferences) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, a := range p.announcers {
		a.followed = append(a.followed, incoming)
	}
}

// Close detaches persistence and any Publish or Follow registrations.
func (p *Preferences) Close() {
	p.mu.Lock()
	unsubs := p.unsub
	p.unsub = nil
	p.announcers = nil
	p.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
}

func (p *Preferences) track(unsub ports.Unsubscribe) {
	p.mu.Lock()
	p.unsub = append(p.unsub, unsub)
	p.mu.Unlock()
}

// persist writes the keys that differ from what was last saved.
func (p *Preferences) persist(next domain.Preferences) {
	ctx := context.Background()

	if next.Language != p.saved.Language {
		if err := p.repo.Set(ctx, domain.SettingLanguage, next.Language); err != nil {
			p.log.Error().Err(err).Msg("Failed to persist language")
		} else {
			p.saved.Language = next.Language
		}
	}

	if next.Theme != p.saved.Theme {
		if err := p.repo.Set(ctx, domain.SettingTheme, string(next.Theme)); err != nil {
			p.log.Error().Err(err).Msg("Failed to persist theme")
		} else {
			p.saved.Theme = next.Theme
		}
	}
}
