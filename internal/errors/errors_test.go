package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAuthError(t *testing.T) {
	err := NewAuthError("test auth error")

	expected := "authentication failed: test auth error"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}

	if !err.Is(NewAuthError("target")) {
		t.Error("Expected error to be auth error type")
	}

	if err.Is(NewAPIError(400, "test", "other error")) {
		t.Error("Expected error not to match different type")
	}

	if err.Is(errors.New("standard error")) {
		t.Error("Expected error not to match standard error")
	}

	if NewAuthError("").Error() != "authentication failed: session cookie may have expired" {
		t.Errorf("unexpected default message: %s", NewAuthError("").Error())
	}
}

func TestAPIError(t *testing.T) {
	err := NewAPIError(400, "test-endpoint", "test API error")

	expected := "API error [400] at test-endpoint: test API error"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}

	noStatus := NewAPIError(0, "test-endpoint", "boom")
	if noStatus.Error() != "API error at test-endpoint: boom" {
		t.Errorf("Error() = %s", noStatus.Error())
	}

	withBody := NewAPIErrorWithBody(502, "ep", "bad gateway", "<html>")
	if withBody.Body != "<html>" {
		t.Errorf("Body = %q, want <html>", withBody.Body)
	}
}

func TestNetworkError(t *testing.T) {
	inner := errors.New("connection refused")
	err := NewNetworkErrorWithEndpoint("send message", "https://example.edu/api/chat", inner)

	expected := "network error during send message at https://example.edu/api/chat: connection refused"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}

	if !errors.Is(err, inner) {
		t.Error("NetworkError should unwrap to the inner error")
	}

	wrapped := fmt.Errorf("send failed: %w", err)
	if !IsNetworkError(wrapped) {
		t.Error("IsNetworkError should see through wrapping")
	}

	if NewNetworkError("read stream", inner).Error() != "network error during read stream: connection refused" {
		t.Errorf("unexpected message: %s", NewNetworkError("read stream", inner).Error())
	}
}

func TestTimeoutError(t *testing.T) {
	err := NewTimeoutError("no data for 30s")

	expected := "request timed out: no data for 30s"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}

	if !errors.Is(err, ErrStreamStalled) {
		t.Error("TimeoutError should match ErrStreamStalled")
	}
	if !IsTimeoutError(fmt.Errorf("wrap: %w", err)) {
		t.Error("IsTimeoutError should see through wrapping")
	}
	if NewTimeoutError("").Error() != "request timed out" {
		t.Errorf("unexpected default message: %s", NewTimeoutError("").Error())
	}
}

func TestParseError(t *testing.T) {
	err := NewParseError("test parse error", `{"type":`)

	expected := "parse error: test parse error"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}

	if !err.Is(NewParseError("target", "")) {
		t.Error("Expected error to be parse error type")
	}

	if !IsParseError(err) {
		t.Error("ParseError should match ErrInvalidResponse")
	}

	if err.Line != `{"type":` {
		t.Errorf("Line = %q", err.Line)
	}
}

func TestIsAuthError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"auth error", NewAuthError("x"), true},
		{"wrapped auth error", fmt.Errorf("ctx: %w", NewAuthError("x")), true},
		{"sentinel", ErrAuthFailed, true},
		{"api error", NewAPIError(500, "ep", "x"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAuthError(tt.err); got != tt.want {
				t.Errorf("IsAuthError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFromStatus(t *testing.T) {
	if !IsAuthError(FromStatus(401, "ep", "")) {
		t.Error("401 should map to AuthError")
	}
	if !IsAuthError(FromStatus(403, "ep", "")) {
		t.Error("403 should map to AuthError")
	}

	err := FromStatus(500, "ep", "oops")
	if GetHTTPStatus(err) != 500 {
		t.Errorf("GetHTTPStatus() = %d, want 500", GetHTTPStatus(err))
	}
	if GetHTTPStatus(errors.New("plain")) != 0 {
		t.Error("GetHTTPStatus of plain error should be 0")
	}
}
