package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/taskflow/internal/storage"
)

// Theme is the appearance preference. It is chosen once at startup and
// passed down explicitly.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// ResolveTheme picks the stored preference, then the configured one, then
// the terminal background. configured may be "system".
func ResolveTheme(stored, configured string, terminalDark func() bool) Theme {
	if t := Theme(stored); t.Valid() {
		return t
	}
	if t := Theme(configured); t.Valid() {
		return t
	}
	if terminalDark != nil && !terminalDark() {
		return ThemeLight
	}
	return ThemeDark
}

// LoadTheme reads the stored preference from kv. Read errors fall through to
// the configured value.
func LoadTheme(kv storage.KV, configured string) Theme {
	stored, _, err := kv.Get(storage.ThemeKey)
	if err != nil {
		stored = ""
	}
	return ResolveTheme(stored, configured, lipgloss.HasDarkBackground)
}

// SaveTheme persists t under storage.ThemeKey.
func SaveTheme(kv storage.KV, t Theme) error {
	if err := kv.Set(storage.ThemeKey, string(t)); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	return nil
}
