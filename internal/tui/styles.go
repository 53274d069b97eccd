// Package tui provides the interactive chat screen for campuschat.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/campuschat/internal/render"
)

// Color variables (updated from theme)
var (
	colorBorder    lipgloss.Color
	colorPrimary   lipgloss.Color
	colorSecondary lipgloss.Color
	colorAccent    lipgloss.Color
	colorWarning   lipgloss.Color
	colorError     lipgloss.Color
	colorText      lipgloss.Color
	colorTextDim   lipgloss.Color
	colorTextMute  lipgloss.Color
)

// Style variables (rebuilt when theme changes)
var (
	headerStyle   lipgloss.Style
	titleStyle    lipgloss.Style
	subtitleStyle lipgloss.Style
	hintStyle     lipgloss.Style

	messagesAreaStyle    lipgloss.Style
	userBubbleStyle      lipgloss.Style
	userLabelStyle       lipgloss.Style
	assistantBubbleStyle lipgloss.Style
	assistantLabelStyle  lipgloss.Style
	toolNoteStyle        lipgloss.Style
	interruptedStyle     lipgloss.Style

	panelStyle      lipgloss.Style
	panelTitleStyle lipgloss.Style

	inputPanelStyle lipgloss.Style
	inputLabelStyle lipgloss.Style
	loadingStyle    lipgloss.Style

	statusBarStyle  lipgloss.Style
	statusKeyStyle  lipgloss.Style
	statusDescStyle lipgloss.Style

	errorStyle lipgloss.Style

	welcomeStyle      lipgloss.Style
	welcomeTitleStyle lipgloss.Style

	currentTheme render.TUITheme
)

func init() {
	UpdateTheme(render.CampusTheme)
}

// UpdateTheme rebuilds every style from theme
func UpdateTheme(theme render.TUITheme) {
	currentTheme = theme

	colorBorder = theme.Border
	colorPrimary = theme.Primary
	colorSecondary = theme.Secondary
	colorAccent = theme.Accent
	colorWarning = theme.Warning
	colorError = theme.Error
	colorText = theme.Text
	colorTextDim = theme.TextDim
	colorTextMute = theme.TextMute

	headerStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	subtitleStyle = lipgloss.NewStyle().Foreground(colorSecondary)
	hintStyle = lipgloss.NewStyle().Foreground(colorTextMute)

	messagesAreaStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)
	userBubbleStyle = lipgloss.NewStyle().Foreground(colorText).PaddingLeft(2)
	userLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	assistantBubbleStyle = lipgloss.NewStyle().Foreground(colorText).PaddingLeft(2)
	assistantLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	toolNoteStyle = lipgloss.NewStyle().Italic(true).Foreground(colorTextDim).PaddingLeft(2)
	interruptedStyle = lipgloss.NewStyle().Italic(true).Foreground(colorWarning).PaddingLeft(2)

	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorSecondary).
		Padding(0, 1)
	panelTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorSecondary)

	inputPanelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorPrimary).
		Padding(0, 1)
	inputLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	loadingStyle = lipgloss.NewStyle().Foreground(colorSecondary)

	statusBarStyle = lipgloss.NewStyle().Foreground(colorTextDim)
	statusKeyStyle = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	statusDescStyle = lipgloss.NewStyle().Foreground(colorTextDim)

	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(colorError).PaddingLeft(1)

	welcomeStyle = lipgloss.NewStyle().Foreground(colorTextDim).Align(lipgloss.Center)
	welcomeTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Align(lipgloss.Center)
}
