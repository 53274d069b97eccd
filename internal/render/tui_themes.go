package render

import (
	"github.com/charmbracelet/lipgloss"
)

// TUITheme defines the color scheme for the TUI and the product panel
type TUITheme struct {
	Name        string
	Description string

	Surface lipgloss.Color
	Border  lipgloss.Color

	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color

	Text     lipgloss.Color
	TextDim  lipgloss.Color
	TextMute lipgloss.Color
}

var (
	// CampusTheme is the default: green and gold on dark
	CampusTheme = TUITheme{
		Name:        "campus",
		Description: "Campus - green and gold on dark",

		Surface: lipgloss.Color("#1f2a24"),
		Border:  lipgloss.Color("#3d5246"),

		Primary:   lipgloss.Color("#5fb878"),
		Secondary: lipgloss.Color("#e5b84b"),
		Accent:    lipgloss.Color("#8fc1e3"),
		Warning:   lipgloss.Color("#e5b84b"),
		Error:     lipgloss.Color("#e06c75"),

		Text:     lipgloss.Color("#e6efe9"),
		TextDim:  lipgloss.Color("#8aa394"),
		TextMute: lipgloss.Color("#4f6358"),
	}

	// TokyoNightTheme is based on the Tokyo Night color scheme
	TokyoNightTheme = TUITheme{
		Name:        "tokyonight",
		Description: "Tokyo Night - dark theme with blue accents",

		Surface: lipgloss.Color("#24283b"),
		Border:  lipgloss.Color("#414868"),

		Primary:   lipgloss.Color("#7aa2f7"),
		Secondary: lipgloss.Color("#9ece6a"),
		Accent:    lipgloss.Color("#bb9af7"),
		Warning:   lipgloss.Color("#e0af68"),
		Error:     lipgloss.Color("#f7768e"),

		Text:     lipgloss.Color("#c0caf5"),
		TextDim:  lipgloss.Color("#565f89"),
		TextMute: lipgloss.Color("#3b4261"),
	}

	// PaperTheme suits light terminals
	PaperTheme = TUITheme{
		Name:        "paper",
		Description: "Paper - for light terminal backgrounds",

		Surface: lipgloss.Color("#f4f1ea"),
		Border:  lipgloss.Color("#c9c2b2"),

		Primary:   lipgloss.Color("#2f6f4f"),
		Secondary: lipgloss.Color("#9a6b00"),
		Accent:    lipgloss.Color("#2d5f8b"),
		Warning:   lipgloss.Color("#9a6b00"),
		Error:     lipgloss.Color("#b3261e"),

		Text:     lipgloss.Color("#2b2b2b"),
		TextDim:  lipgloss.Color("#6b6b6b"),
		TextMute: lipgloss.Color("#a8a8a8"),
	}
)

// AvailableTUIThemes returns every built-in theme
func AvailableTUIThemes() []TUITheme {
	return []TUITheme{CampusTheme, TokyoNightTheme, PaperTheme}
}

// TUIThemeNames returns just the theme names
func TUIThemeNames() []string {
	themes := AvailableTUIThemes()
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}

// GetTUIThemeByName returns a theme by name
func GetTUIThemeByName(name string) (TUITheme, bool) {
	for _, t := range AvailableTUIThemes() {
		if t.Name == name {
			return t, true
		}
	}
	return TUITheme{}, false
}

// ThemeOrDefault returns the named theme, falling back to CampusTheme
func ThemeOrDefault(name string) TUITheme {
	if t, ok := GetTUIThemeByName(name); ok {
		return t
	}
	return CampusTheme
}
