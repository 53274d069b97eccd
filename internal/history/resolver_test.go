package history

import (
	"strings"
	"testing"
	"time"

	"github.com/diogo/campuschat/internal/models"
)

func seedResolver(t *testing.T) (*Store, *Resolver) {
	t.Helper()
	store := newTestStore(t)
	sessions := []struct{ id, prompt string }{
		{"3f2a9c10-aaaa", "desk lamp"},
		{"3f2a9c77-bbbb", "mini fridge"},
		{"91bd0e44-cccc", "used bike"},
	}
	for _, s := range sessions {
		if err := store.SaveSession(s.id, []models.Message{models.NewMessage(models.RoleUser, s.prompt)}); err != nil {
			t.Fatal(err)
		}
		time.Sleep(5 * time.Millisecond)
	}
	return store, NewResolver(store)
}

func TestResolver_Resolve(t *testing.T) {
	_, r := seedResolver(t)

	tests := []struct {
		ref     string
		want    string
		wantErr string
	}{
		{"@last", "91bd0e44-cccc", ""},
		{"@FIRST", "3f2a9c10-aaaa", ""},
		{"1", "91bd0e44-cccc", ""},
		{"3", "3f2a9c10-aaaa", ""},
		{"4", "", "out of range"},
		{"91bd0e44-cccc", "91bd0e44-cccc", ""},
		{"91bd0e", "91bd0e44-cccc", ""},
		{"3f2a9c", "", "ambiguous"},
		{"fridge", "3f2a9c77-bbbb", ""},
		{"e", "", "multiple conversations"},
		{"sofa", "", "no conversation matching"},
		{"  ", "", "empty reference"},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := r.Resolve(tt.ref)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Resolve(%q) error = %v, want %q", tt.ref, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q) returned error: %v", tt.ref, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %s, want %s", tt.ref, got, tt.want)
			}
		})
	}
}

func TestResolver_Empty(t *testing.T) {
	r := NewResolver(newTestStore(t))
	if _, err := r.Resolve("@last"); err == nil {
		t.Error("expected error with no conversations")
	}
}

func TestResolver_ResolveWithInfo(t *testing.T) {
	_, r := seedResolver(t)

	conv, err := r.ResolveWithInfo("bike")
	if err != nil {
		t.Fatalf("ResolveWithInfo failed: %v", err)
	}
	if conv.Title != "used bike" {
		t.Errorf("Title = %q", conv.Title)
	}
}

func TestListAliases(t *testing.T) {
	if !strings.Contains(ListAliases(), "@last") {
		t.Error("ListAliases should mention @last")
	}
}
