package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	apierrors "github.com/diogo/campuschat/internal/errors"
	"github.com/diogo/campuschat/internal/models"
)

func TestClientStreamSuccess(t *testing.T) {
	mock := NewMockHttpClient(200, "0:\"Hi\"\n")
	client, err := NewClient(
		WithHTTPClient(mock),
		WithEndpoint("https://shop.example.edu/api/chat"),
		WithSessionCookie("abc123"),
		WithHeader("X-Campus", "north"),
	)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	body, err := client.Stream(context.Background(), []models.WireMessage{{Role: models.RoleUser, Content: "lamp"}})
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(data) != "0:\"Hi\"\n" {
		t.Errorf("body = %q", data)
	}

	req := mock.LastRequest
	if req == nil {
		t.Fatal("no request recorded")
	}
	if req.Method != "POST" {
		t.Errorf("Method = %s, want POST", req.Method)
	}
	if req.URL.String() != "https://shop.example.edu/api/chat" {
		t.Errorf("URL = %s", req.URL)
	}
	if got := req.Header.Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := req.Header.Get("X-Campus"); got != "north" {
		t.Errorf("X-Campus = %q", got)
	}

	cookie, err := req.Cookie(models.SessionCookieName)
	if err != nil {
		t.Fatalf("session cookie missing: %v", err)
	}
	if cookie.Value != "abc123" {
		t.Errorf("cookie = %q, want abc123", cookie.Value)
	}

	var gotBody, wantBody any
	_ = json.Unmarshal([]byte(mock.LastBody), &gotBody)
	_ = json.Unmarshal([]byte(`{"messages":[{"role":"user","content":"lamp"}]}`), &wantBody)
	if !reflect.DeepEqual(gotBody, wantBody) {
		t.Errorf("payload = %s", mock.LastBody)
	}
}

func TestClientStreamStatusErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(t *testing.T, err error)
	}{
		{
			name:   "unauthorized",
			status: 401,
			check: func(t *testing.T, err error) {
				if !apierrors.IsAuthError(err) {
					t.Errorf("expected AuthError, got %v", err)
				}
			},
		},
		{
			name:   "server error",
			status: 500,
			check: func(t *testing.T, err error) {
				if got := apierrors.GetHTTPStatus(err); got != 500 {
					t.Errorf("status = %d, want 500", got)
				}
				var apiErr *apierrors.APIError
				if !errors.As(err, &apiErr) {
					t.Fatalf("expected APIError, got %T", err)
				}
				if apiErr.Body != "upstream down" {
					t.Errorf("Body = %q", apiErr.Body)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockHttpClient(tt.status, "upstream down")
			client, err := NewClient(WithHTTPClient(mock))
			if err != nil {
				t.Fatalf("NewClient() error = %v", err)
			}

			body, err := client.Stream(context.Background(), nil)
			if body != nil {
				t.Error("expected no body on error status")
			}
			if err == nil {
				t.Fatal("expected an error")
			}
			tt.check(t, err)
			if !mock.Response.Body.(*MockResponseBody).Closed() {
				t.Error("error body should be closed")
			}
		})
	}
}

func TestClientStreamNetworkError(t *testing.T) {
	client, err := NewClient(WithHTTPClient(NewMockHttpClientWithError(errors.New("connection refused"))))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	_, err = client.Stream(context.Background(), nil)
	if !apierrors.IsNetworkError(err) {
		t.Errorf("expected NetworkError, got %v", err)
	}
}

func TestClientStreamCancelledContext(t *testing.T) {
	client, err := NewClient(WithHTTPClient(NewMockHttpClientWithError(errors.New("request canceled"))))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = client.Stream(ctx, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestClientStreamOutlivesRequestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		w.WriteHeader(http.StatusOK)
		flusher.Flush()
		for i := 0; i < 4; i++ {
			select {
			case <-r.Context().Done():
				return
			case <-time.After(150 * time.Millisecond):
			}
			fmt.Fprint(w, "0:\"tick \"\n")
			flusher.Flush()
		}
	}))
	defer srv.Close()

	client, err := NewClient(WithEndpoint(srv.URL), WithTimeout(300*time.Millisecond))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	defer client.Close()

	body, err := client.Stream(context.Background(), nil)
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("reading past the request timeout failed: %v", err)
	}
	if got := strings.Count(string(data), "tick"); got != 4 {
		t.Errorf("got %d frames, want 4: %q", got, data)
	}
}

func TestClientStreamHeaderTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	client, err := NewClient(WithEndpoint(srv.URL), WithTimeout(100*time.Millisecond))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	defer client.Close()

	_, err = client.Stream(context.Background(), nil)
	if !apierrors.IsTimeoutError(err) {
		t.Errorf("expected TimeoutError, got %v", err)
	}
}

func TestClientClosed(t *testing.T) {
	client, err := NewClient(WithHTTPClient(NewMockHttpClient(200)))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	client.Close()
	client.Close()
	if !client.IsClosed() {
		t.Error("client should report closed")
	}

	_, err = client.Stream(context.Background(), nil)
	if !errors.Is(err, apierrors.ErrClientClosed) {
		t.Errorf("expected ErrClientClosed, got %v", err)
	}
}

func TestClientDefaults(t *testing.T) {
	client, err := NewClient(WithHTTPClient(NewMockHttpClient(200)))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if client.Endpoint() != models.DefaultEndpoint {
		t.Errorf("Endpoint() = %s, want %s", client.Endpoint(), models.DefaultEndpoint)
	}
}
