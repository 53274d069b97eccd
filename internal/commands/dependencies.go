package commands

import (
	"context"

	"github.com/diogo/campuschat/internal/browser"
	"github.com/diogo/campuschat/internal/render"
	"github.com/diogo/campuschat/internal/tui"
)

// TUIInterface defines the methods required from the TUI package.
type TUIInterface interface {
	RunChat(sender tui.Sender, st tui.ChatStore, endpoint string, markdown render.Options) error
}

// CookieExtractor reads the storefront session cookie from a local browser
type CookieExtractor func(ctx context.Context, b browser.SupportedBrowser, domain string) (*browser.ExtractResult, error)

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	// TUI is the terminal user interface.
	TUI TUIInterface

	// ExtractCookie reads cookies from browser profiles.
	ExtractCookie CookieExtractor
}

// DefaultTUI is the production implementation of TUIInterface.
type DefaultTUI struct{}

func (d *DefaultTUI) RunChat(sender tui.Sender, st tui.ChatStore, endpoint string, markdown render.Options) error {
	return tui.RunChat(sender, st, endpoint, markdown)
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		TUI:           &DefaultTUI{},
		ExtractCookie: browser.ExtractSessionCookie,
	}
}

// withDefaults fills nil fields so commands can be built from a partial struct
func (d *Dependencies) withDefaults() *Dependencies {
	out := NewDependencies()
	if d == nil {
		return out
	}
	if d.TUI != nil {
		out.TUI = d.TUI
	}
	if d.ExtractCookie != nil {
		out.ExtractCookie = d.ExtractCookie
	}
	return out
}
