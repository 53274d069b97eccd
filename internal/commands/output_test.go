package commands

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	apierrors "github.com/diogo/campuschat/internal/errors"
)

func TestFormatErrorMessage_Nil(t *testing.T) {
	if got := formatErrorMessage(nil, "ctx"); got != "" {
		t.Fatalf("expected empty for nil error, got %s", got)
	}
}

func TestFormatErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{
			name: "api error with body",
			err:  apierrors.NewAPIErrorWithBody(500, "/api/chat", "chat request failed", "upstream down"),
			want: []string{"HTTP Status: 500", "upstream down"},
		},
		{
			name: "auth",
			err:  fmt.Errorf("send: %w", apierrors.NewAuthError("")),
			want: []string{"campuschat login"},
		},
		{
			name: "timeout",
			err:  apierrors.NewTimeoutError("no data for 60s"),
			want: []string{"idle_timeout"},
		},
		{
			name: "network",
			err:  apierrors.NewNetworkError("send message", errors.New("connection refused")),
			want: []string{"internet connection"},
		},
		{
			name: "empty prompt",
			err:  apierrors.ErrEmptyPrompt,
			want: []string{"-f"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := formatErrorMessage(tt.err, "Request failed")
			if !strings.Contains(out, "Request failed") {
				t.Errorf("missing context in %q", out)
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("expected %q in %q", w, out)
				}
			}
		})
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"a longer title here", 8, "a longer..."},
		{"línea\nnueva", 20, "línea nueva"},
		{"ñññññ", 3, "ñññ..."},
	}
	for _, tt := range tests {
		if got := truncateRunes(tt.in, tt.n); got != tt.want {
			t.Errorf("truncateRunes(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("0123456789abcdef"); got != "01234567" {
		t.Errorf("shortID() = %s", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Errorf("shortID() = %s", got)
	}
}
