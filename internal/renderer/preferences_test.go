package renderer

import (
	"DeskShell/internal/adapters/channel"
	"DeskShell/internal/adapters/store"
	"DeskShell/internal/core/domain"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) Get(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockSettingsRepository) Set(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func emptyRepo() *MockSettingsRepository {
	repo := new(MockSettingsRepository)
	repo.On("Get", mock.Anything, domain.SettingLanguage).Return("", false, nil)
	repo.On("Get", mock.Anything, domain.SettingTheme).Return("", false, nil)
	return repo
}

func setCalls(repo *MockSettingsRepository) int {
	n := 0
	for _, call := range repo.Calls {
		if call.Method == "Set" {
			n++
		}
	}
	return n
}

// openPreferences loads from repo and wires a store seeded with the result.
func openPreferences(t *testing.T, repo *MockSettingsRepository) *Preferences {
	t.Helper()
	nopLogger := zerolog.Nop()
	loaded, err := LoadPreferences(context.Background(), repo, &nopLogger)
	require.NoError(t, err)
	prefs := NewPreferences(store.New(loaded), repo, &nopLogger)
	t.Cleanup(prefs.Close)
	return prefs
}

// --- Tests ---

func TestLoadPreferences_Defaults(t *testing.T) {
	nopLogger := zerolog.Nop()
	repo := emptyRepo()

	loaded, err := LoadPreferences(context.Background(), repo, &nopLogger)
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultPreferences(), loaded)
	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}

func TestLoadPreferences_StoredValues(t *testing.T) {
	repo := new(MockSettingsRepository)
	repo.On("Get", mock.Anything, domain.SettingLanguage).Return("lo", true, nil)
	repo.On("Get", mock.Anything, domain.SettingTheme).Return("dark", true, nil)

	prefs := openPreferences(t, repo)

	assert.Equal(t, domain.Preferences{Language: "lo", Theme: domain.ThemeDark}, prefs.Current())
	repo.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}

func TestLoadPreferences_UnsupportedStoredValuesFallBack(t *testing.T) {
	nopLogger := zerolog.Nop()
	repo := new(MockSettingsRepository)
	repo.On("Get", mock.Anything, domain.SettingLanguage).Return("klingon", true, nil)
	repo.On("Get", mock.Anything, domain.SettingTheme).Return("neon", true, nil)

	loaded, err := LoadPreferences(context.Background(), repo, &nopLogger)
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultPreferences(), loaded)
}

func TestLoadPreferences_RepositoryError(t *testing.T) {
	nopLogger := zerolog.Nop()
	repo := new(MockSettingsRepository)
	boom := errors.New("disk on fire")
	repo.On("Get", mock.Anything, domain.SettingLanguage).Return("", false, boom)

	_, err := LoadPreferences(context.Background(), repo, &nopLogger)
	assert.ErrorIs(t, err, boom)
}

func TestPreferences_SetLanguagePersists(t *testing.T) {
	repo := emptyRepo()
	repo.On("Set", mock.Anything, domain.SettingLanguage, "lo").Return(nil).Once()

	prefs := openPreferences(t, repo)

	require.NoError(t, prefs.SetLanguage("lo"))
	assert.Equal(t, "lo", prefs.Current().Language)
	repo.AssertExpectations(t)
}

func TestPreferences_RejectsUnsupportedLanguage(t *testing.T) {
	repo := emptyRepo()
	prefs := openPreferences(t, repo)

	notified := 0
	prefs.Subscribe(func(domain.Preferences) { notified++ })

	assert.ErrorIs(t, prefs.SetLanguage("xx"), domain.ErrUnsupportedLanguage)
	assert.ErrorIs(t, prefs.SetTheme("neon"), domain.ErrUnsupportedTheme)
	assert.Equal(t, domain.DefaultPreferences(), prefs.Current())
	assert.Zero(t, notified)
	repo.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}

func TestPreferences_ToggleThemePersistsEachChange(t *testing.T) {
	repo := emptyRepo()
	repo.On("Set", mock.Anything, domain.SettingTheme, "dark").Return(nil).Once()
	repo.On("Set", mock.Anything, domain.SettingTheme, "light").Return(nil).Once()

	prefs := openPreferences(t, repo)

	prefs.ToggleTheme()
	assert.Equal(t, domain.ThemeDark, prefs.Current().Theme)
	prefs.ToggleTheme()
	assert.Equal(t, domain.ThemeLight, prefs.Current().Theme)

	repo.AssertExpectations(t)
}

func TestPreferences_SharesInjectedStore(t *testing.T) {
	repo := emptyRepo()
	repo.On("Set", mock.Anything, domain.SettingTheme, "dark").Return(nil).Once()
	nopLogger := zerolog.Nop()

	shared := store.New(domain.DefaultPreferences())
	prefs := NewPreferences(shared, repo, &nopLogger)
	defer prefs.Close()

	shared.Replace(domain.Preferences{Language: "en", Theme: domain.ThemeDark})
	assert.Equal(t, domain.ThemeDark, prefs.Current().Theme)
	repo.AssertExpectations(t)
}

func TestPreferences_PublishAndFollow(t *testing.T) {
	nopLogger := zerolog.Nop()
	ctx := context.Background()

	// Two windows sharing one host relay, collapsed into one channel here.
	bus := channel.NewInMemoryChannel(domain.DirectionEvent, "host", &nopLogger)

	repoA := emptyRepo()
	repoA.On("Set", mock.Anything, domain.SettingLanguage, "lo").Return(nil)
	windowA := openPreferences(t, repoA)

	repoB := emptyRepo()
	repoB.On("Set", mock.Anything, domain.SettingLanguage, "lo").Return(nil)
	windowB := openPreferences(t, repoB)

	windowA.Publish(bus)
	windowA.Follow(bus)
	windowB.Publish(bus)
	windowB.Follow(bus)

	require.NoError(t, windowA.SetLanguage("lo"))

	// A announces, B applies without re-announcing, A ignores its own echo.
	assert.Equal(t, 1, bus.Tick(ctx))
	assert.Equal(t, "lo", windowB.Current().Language)
	assert.Equal(t, 0, bus.Tick(ctx))

	repoA.AssertNumberOfCalls(t, "Set", 1)
	repoB.AssertNumberOfCalls(t, "Set", 1)
}

func TestPreferences_RapidChangesSettle(t *testing.T) {
	nopLogger := zerolog.Nop()
	ctx := context.Background()

	// The relay hands a window its own announcements back.
	bus := channel.NewInMemoryChannel(domain.DirectionEvent, "host", &nopLogger)

	repo := emptyRepo()
	repo.On("Set", mock.Anything, domain.SettingLanguage, mock.Anything).Return(nil)
	repo.On("Set", mock.Anything, domain.SettingTheme, mock.Anything).Return(nil)
	window := openPreferences(t, repo)
	window.Publish(bus)
	window.Follow(bus)

	require.NoError(t, window.SetLanguage("lo"))
	require.NoError(t, window.SetLanguage("en"))
	window.ToggleTheme()
	assert.Equal(t, 3, bus.Pending())

	ticks := 0
	for bus.Pending() > 0 {
		require.Less(t, ticks, 5, "announcements kept bouncing")
		bus.Tick(ctx)
		ticks++
	}

	assert.Equal(t, 1, ticks)
	assert.Equal(t, domain.Preferences{Language: "en", Theme: domain.ThemeDark}, window.Current())
	// Three local writes, then the echoes replay lo/light, en and dark once.
	assert.Equal(t, 7, setCalls(repo))
}

func TestPreferences_RapidChangesAcrossWindowsSettle(t *testing.T) {
	nopLogger := zerolog.Nop()
	ctx := context.Background()
	bus := channel.NewInMemoryChannel(domain.DirectionEvent, "host", &nopLogger)

	var windows []*Preferences
	var repos []*MockSettingsRepository
	for i := 0; i < 3; i++ {
		repo := emptyRepo()
		repo.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		w := openPreferences(t, repo)
		w.Publish(bus)
		w.Follow(bus)
		windows = append(windows, w)
		repos = append(repos, repo)
	}

	require.NoError(t, windows[0].SetLanguage("lo"))
	require.NoError(t, windows[1].SetTheme(domain.ThemeDark))
	require.NoError(t, windows[0].SetLanguage("en"))

	ticks := 0
	for bus.Pending() > 0 {
		require.Less(t, ticks, 10, "announcements kept bouncing")
		bus.Tick(ctx)
		ticks++
	}

	// Every window ends on the last announcement delivered.
	for _, w := range windows[1:] {
		assert.Equal(t, windows[0].Current(), w.Current())
	}
	for _, repo := range repos {
		assert.LessOrEqual(t, setCalls(repo), 8)
	}
}
