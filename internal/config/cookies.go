package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	apierrors "github.com/diogo/campuschat/internal/errors"
	"github.com/diogo/campuschat/internal/models"
)

// Cookies holds the storefront session cookie
type Cookies struct {
	mu      sync.RWMutex `json:"-"`
	Session string       `json:"campusmart-session"`
}

// NewCookies creates Cookies holding the given session value
func NewCookies(session string) *Cookies {
	return &Cookies{Session: session}
}

// GetSession returns the session cookie in a thread-safe manner
func (c *Cookies) GetSession() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Session
}

// SetSession replaces the session cookie
func (c *Cookies) SetSession(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Session = value
}

// CookieListItem represents a cookie in browser export format
type CookieListItem struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Domain string `json:"domain,omitempty"`
}

// LoadCookies loads cookies from the cookies file
func LoadCookies() (*Cookies, error) {
	cookiesPath, err := GetCookiesPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(cookiesPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w. Please import it first:\n  campuschat import-cookie <path-to-cookies.json>\n  campuschat login --browser chrome", apierrors.ErrNoSessionCookie)
		}
		return nil, fmt.Errorf("failed to read cookies file: %w", err)
	}

	return parseCookies(data)
}

// parseCookies parses cookies from JSON data
// Supports both list format [{name, value}] and dict format {name: value}
func parseCookies(data []byte) (*Cookies, error) {
	var dictFormat map[string]string
	if err := json.Unmarshal(data, &dictFormat); err == nil {
		value := strings.TrimSpace(dictFormat[models.SessionCookieName])
		if value == "" {
			return nil, fmt.Errorf("missing required cookie: %s", models.SessionCookieName)
		}
		return NewCookies(value), nil
	}

	var listFormat []CookieListItem
	if err := json.Unmarshal(data, &listFormat); err == nil {
		cookies := &Cookies{}
		for _, item := range listFormat {
			if item.Name == models.SessionCookieName {
				cookies.Session = strings.TrimSpace(item.Value)
			}
		}

		if cookies.Session == "" {
			return nil, fmt.Errorf("missing required cookie: %s", models.SessionCookieName)
		}
		return cookies, nil
	}

	return nil, fmt.Errorf("invalid cookies format: expected list [{name, value}] or dict {name: value}")
}

// SaveCookies saves cookies to the cookies file
func SaveCookies(cookies *Cookies) error {
	if err := ValidateCookies(cookies); err != nil {
		return err
	}

	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	listFormat := []CookieListItem{
		{Name: models.SessionCookieName, Value: cookies.GetSession()},
	}

	data, err := json.MarshalIndent(listFormat, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cookies: %w", err)
	}

	if err := os.WriteFile(filepath.Join(configDir, "cookies.json"), data, 0o600); err != nil {
		return fmt.Errorf("failed to write cookies file: %w", err)
	}

	return nil
}

// ImportCookies imports cookies from a source file
func ImportCookies(sourcePath string) error {
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("source file not found: %s", sourcePath)
		}
		return fmt.Errorf("could not read file: %w", err)
	}

	cookies, err := parseCookies(data)
	if err != nil {
		return err
	}

	return SaveCookies(cookies)
}

// ValidateCookies checks if cookies are valid
func ValidateCookies(cookies *Cookies) error {
	if cookies == nil {
		return fmt.Errorf("cookies are nil")
	}
	if cookies.GetSession() == "" {
		return fmt.Errorf("missing required cookie: %s", models.SessionCookieName)
	}
	return nil
}
