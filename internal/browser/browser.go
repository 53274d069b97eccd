// Package browser extracts the storefront session cookie from local web browsers.
package browser

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/browserutils/kooky"
	_ "github.com/browserutils/kooky/browser/chrome"
	_ "github.com/browserutils/kooky/browser/chromium"
	_ "github.com/browserutils/kooky/browser/edge"
	_ "github.com/browserutils/kooky/browser/firefox"
	_ "github.com/browserutils/kooky/browser/opera"

	"github.com/diogo/campuschat/internal/config"
	"github.com/diogo/campuschat/internal/models"
)

// SupportedBrowser represents a supported browser type
type SupportedBrowser string

const (
	BrowserAuto     SupportedBrowser = "auto"
	BrowserChrome   SupportedBrowser = "chrome"
	BrowserChromium SupportedBrowser = "chromium"
	BrowserFirefox  SupportedBrowser = "firefox"
	BrowserEdge     SupportedBrowser = "edge"
	BrowserOpera    SupportedBrowser = "opera"
)

// AllSupportedBrowsers returns the browsers tried by BrowserAuto, in order
func AllSupportedBrowsers() []SupportedBrowser {
	return []SupportedBrowser{
		BrowserChrome,
		BrowserFirefox,
		BrowserEdge,
		BrowserChromium,
		BrowserOpera,
	}
}

// String returns the string representation of the browser
func (b SupportedBrowser) String() string {
	return string(b)
}

// ParseBrowser parses a browser string into a SupportedBrowser
func ParseBrowser(s string) (SupportedBrowser, error) {
	switch strings.ToLower(s) {
	case "auto", "":
		return BrowserAuto, nil
	case "chrome", "google-chrome":
		return BrowserChrome, nil
	case "chromium":
		return BrowserChromium, nil
	case "firefox", "mozilla", "mozilla-firefox":
		return BrowserFirefox, nil
	case "edge", "microsoft-edge", "msedge":
		return BrowserEdge, nil
	case "opera":
		return BrowserOpera, nil
	default:
		return "", fmt.Errorf("unsupported browser: %s. Supported: chrome, chromium, firefox, edge, opera", s)
	}
}

// CookieDomain returns the host whose cookies hold the session for endpoint
func CookieDomain(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	host := u.Hostname()
	if host == "" {
		return "", fmt.Errorf("endpoint %q has no host", endpoint)
	}
	return host, nil
}

// ExtractResult contains the result of cookie extraction
type ExtractResult struct {
	Cookies     *config.Cookies
	BrowserName string
}

// ExtractSessionCookie finds the storefront session cookie for domain in the
// given browser, or in every supported browser for BrowserAuto
func ExtractSessionCookie(ctx context.Context, browser SupportedBrowser, domain string) (*ExtractResult, error) {
	if browser == BrowserAuto {
		return extractFromAllBrowsers(ctx, domain)
	}
	return extractFromBrowser(ctx, browser, domain)
}

func extractFromAllBrowsers(ctx context.Context, domain string) (*ExtractResult, error) {
	var lastErr error
	for _, browser := range AllSupportedBrowsers() {
		result, err := extractFromBrowser(ctx, browser, domain)
		if err == nil {
			return result, nil
		}
		lastErr = err
	}

	if lastErr != nil {
		return nil, fmt.Errorf("could not find the %s session cookie in any browser: %w", domain, lastErr)
	}
	return nil, fmt.Errorf("could not find the %s session cookie in any supported browser", domain)
}

// extractFromBrowser tries every profile of the browser until one has the cookie
func extractFromBrowser(ctx context.Context, browser SupportedBrowser, domain string) (*ExtractResult, error) {
	stores := kooky.FindAllCookieStores(ctx)

	var matching []kooky.CookieStore
	for _, store := range stores {
		if matchesBrowser(store.Browser(), browser) {
			matching = append(matching, store)
		} else {
			_ = store.Close()
		}
	}
	defer func() {
		for _, s := range matching {
			_ = s.Close()
		}
	}()

	if len(matching) == 0 {
		return nil, fmt.Errorf("browser %s not found or no cookie store available", browser)
	}

	var lastErr error
	for _, store := range matching {
		result, err := extractFromStore(ctx, store, domain)
		if err == nil {
			return result, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// matchesBrowser checks if a browser name matches the target browser
func matchesBrowser(browserName string, target SupportedBrowser) bool {
	browserName = strings.ToLower(browserName)

	switch target {
	case BrowserChrome:
		return strings.Contains(browserName, "chrome") && !strings.Contains(browserName, "chromium")
	case BrowserChromium:
		return strings.Contains(browserName, "chromium")
	case BrowserFirefox:
		return strings.Contains(browserName, "firefox")
	case BrowserEdge:
		return strings.Contains(browserName, "edge")
	case BrowserOpera:
		return strings.Contains(browserName, "opera")
	default:
		return false
	}
}

func extractFromStore(ctx context.Context, store kooky.CookieStore, domain string) (*ExtractResult, error) {
	cookies := store.TraverseCookies(
		kooky.Valid,
		kooky.DomainContains(domain),
	).OnlyCookies()

	picker := newSessionPicker(domain)
	for cookie := range cookies {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		picker.offer(cookie.Name, cookie.Domain, cookie.Value)
	}

	displayName := store.Browser()
	if profile := store.Profile(); profile != "" {
		displayName = fmt.Sprintf("%s (profile: %s)", displayName, profile)
	}

	value, ok := picker.result()
	if !ok {
		return nil, fmt.Errorf("cookie %s not found in %s. Please ensure you are logged into %s", models.SessionCookieName, displayName, domain)
	}

	return &ExtractResult{
		Cookies:     config.NewCookies(value),
		BrowserName: displayName,
	}, nil
}

// sessionPicker chooses the session cookie among candidates, preferring
// one set on the exact host over one set on a subdomain
type sessionPicker struct {
	domain string
	value  string
	exact  bool
}

func newSessionPicker(domain string) *sessionPicker {
	return &sessionPicker{domain: strings.ToLower(domain)}
}

func (p *sessionPicker) offer(name, cookieDomain, value string) {
	if name != models.SessionCookieName || value == "" {
		return
	}
	d := strings.TrimPrefix(strings.ToLower(cookieDomain), ".")
	if d != p.domain && !strings.HasSuffix(d, "."+p.domain) {
		return
	}
	exact := d == p.domain
	if p.value == "" || (exact && !p.exact) {
		p.value = value
		p.exact = exact
	}
}

func (p *sessionPicker) result() (string, bool) {
	return p.value, p.value != ""
}

// ListAvailableBrowsers returns a list of browsers that have cookie stores
func ListAvailableBrowsers(ctx context.Context) []string {
	stores := kooky.FindAllCookieStores(ctx)
	var browsers []string

	seen := make(map[string]bool)
	for _, store := range stores {
		name := store.Browser()
		if !seen[name] {
			browsers = append(browsers, name)
			seen[name] = true
		}
		_ = store.Close()
	}

	return browsers
}
