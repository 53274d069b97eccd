package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	apierrors "github.com/diogo/campuschat/internal/errors"
)

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// isTerminal reports whether f is connected to a terminal
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func dimStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorTextDim)
}

// formatErrorMessage formats an error with additional context from structured errors
func formatErrorMessage(err error, context string) string {
	if err == nil {
		return ""
	}

	errorStyle := lipgloss.NewStyle().Foreground(colorError)
	dim := dimStyle()

	var sb strings.Builder
	sb.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s: %v", context, err)))

	if status := apierrors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dim.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}

	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) && apiErr.Body != "" {
		sb.WriteString(dim.Render(fmt.Sprintf("\n\n  %s", strings.ReplaceAll(apiErr.Body, "\n", "\n  "))))
		return sb.String()
	}

	switch {
	case apierrors.IsAuthError(err):
		sb.WriteString(dim.Render("\n  Hint: Your session expired. Run 'campuschat login' or 'campuschat import-cookie'"))
	case apierrors.IsTimeoutError(err):
		sb.WriteString(dim.Render("\n  Hint: The assistant stopped responding. Try again, or raise idle_timeout"))
	case apierrors.IsNetworkError(err):
		sb.WriteString(dim.Render("\n  Hint: Check your internet connection and try again"))
	case errors.Is(err, apierrors.ErrEmptyPrompt):
		sb.WriteString(dim.Render("\n  Hint: Pass a prompt as an argument, with -f, or on stdin"))
	}

	return sb.String()
}
