package domain

import (
	"fmt"
	"slices"
)

// Theme is the UI color scheme name.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

const (
	LanguageEnglish = "en"
	LanguageLao     = "lo"
)

// Settings keys in the local key-value store.
const (
	SettingLanguage = "language"
	SettingTheme    = "theme"
)

const (
	DefaultLanguage = LanguageEnglish
	DefaultTheme    = ThemeLight
)

var (
	supportedLanguages = []string{LanguageEnglish, LanguageLao}
	supportedThemes    = []Theme{ThemeLight, ThemeDark}
)

// Preferences is the persisted, user-selectable part of the UI state.
type Preferences struct {
	Language string `json:"language"`
	Theme    Theme  `json:"theme"`
}

// DefaultPreferences is used for any key missing from the settings store.
func DefaultPreferences() Preferences {
	return Preferences{Language: DefaultLanguage, Theme: DefaultTheme}
}

// SupportedLanguages returns the language codes that have a translation catalog.
func SupportedLanguages() []string {
	return slices.Clone(supportedLanguages)
}

func ValidateLanguage(code string) error {
	if !slices.Contains(supportedLanguages, code) {
		return fmt.Errorf("%w: %q", ErrUnsupportedLanguage, code)
	}
	return nil
}

func ValidateTheme(theme Theme) error {
	if !slices.Contains(supportedThemes, theme) {
		return fmt.Errorf("%w: %q", ErrUnsupportedTheme, theme)
	}
	return nil
}

// Toggled flips between light and dark.
func (t Theme) Toggled() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// PingStatus is the renderer-side indicator for the last ping.
type PingStatus string

const (
	PingIdle  PingStatus = "idle"
	PingSent  PingStatus = "sent"
	PingAcked PingStatus = "acked" // host answered with a pong
)
