package chat

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	"github.com/bogdanfinn/tls-client/bandwidth"

	"github.com/diogo/campuschat/internal/models"
)

// MockResponseBody is a ReadCloser that returns its data in fixed chunks
type MockResponseBody struct {
	chunks [][]byte
	pos    int
	closed bool
	mu     sync.Mutex
}

// NewMockResponseBody creates a body that yields each chunk from a separate Read
func NewMockResponseBody(chunks ...string) *MockResponseBody {
	b := &MockResponseBody{}
	for _, c := range chunks {
		b.chunks = append(b.chunks, []byte(c))
	}
	return b
}

// Read implements the io.Reader interface
func (m *MockResponseBody) Read(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pos >= len(m.chunks) {
		return 0, io.EOF
	}
	n := copy(p, m.chunks[m.pos])
	if n < len(m.chunks[m.pos]) {
		m.chunks[m.pos] = m.chunks[m.pos][n:]
	} else {
		m.pos++
	}
	return n, nil
}

// Close implements the io.Closer interface
func (m *MockResponseBody) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called
func (m *MockResponseBody) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// MockHttpClient is a mock implementation of tls_client.HttpClient for testing
type MockHttpClient struct {
	Response    *fhttp.Response
	Err         error
	LastRequest *fhttp.Request
	LastBody    string
}

// GetCookies implements the tls_client.HttpClient interface
func (m *MockHttpClient) GetCookies(u *url.URL) []*fhttp.Cookie {
	return nil
}

// SetCookies implements the tls_client.HttpClient interface
func (m *MockHttpClient) SetCookies(u *url.URL, cookies []*fhttp.Cookie) {}

// SetCookieJar implements the tls_client.HttpClient interface
func (m *MockHttpClient) SetCookieJar(jar fhttp.CookieJar) {}

// GetCookieJar implements the tls_client.HttpClient interface
func (m *MockHttpClient) GetCookieJar() fhttp.CookieJar {
	return nil
}

// SetProxy implements the tls_client.HttpClient interface
func (m *MockHttpClient) SetProxy(proxyUrl string) error {
	return nil
}

// GetProxy implements the tls_client.HttpClient interface
func (m *MockHttpClient) GetProxy() string {
	return ""
}

// SetFollowRedirect implements the tls_client.HttpClient interface
func (m *MockHttpClient) SetFollowRedirect(followRedirect bool) {}

// GetFollowRedirect implements the tls_client.HttpClient interface
func (m *MockHttpClient) GetFollowRedirect() bool {
	return false
}

// CloseIdleConnections implements the tls_client.HttpClient interface
func (m *MockHttpClient) CloseIdleConnections() {}

// Do implements the tls_client.HttpClient interface
func (m *MockHttpClient) Do(req *fhttp.Request) (*fhttp.Response, error) {
	m.LastRequest = req
	if req.Body != nil {
		data, _ := io.ReadAll(req.Body)
		m.LastBody = string(data)
	}
	return m.Response, m.Err
}

// Get implements the tls_client.HttpClient interface
func (m *MockHttpClient) Get(url string) (*fhttp.Response, error) {
	return m.Response, m.Err
}

// Head implements the tls_client.HttpClient interface
func (m *MockHttpClient) Head(url string) (*fhttp.Response, error) {
	return m.Response, m.Err
}

// Post implements the tls_client.HttpClient interface
func (m *MockHttpClient) Post(url, contentType string, body io.Reader) (*fhttp.Response, error) {
	return m.Response, m.Err
}

// GetBandwidthTracker implements the tls_client.HttpClient interface
func (m *MockHttpClient) GetBandwidthTracker() bandwidth.BandwidthTracker {
	return nil
}

// NewMockHttpClient creates a new MockHttpClient with a successful response
func NewMockHttpClient(statusCode int, chunks ...string) *MockHttpClient {
	return &MockHttpClient{
		Response: &fhttp.Response{
			StatusCode: statusCode,
			Body:       NewMockResponseBody(chunks...),
			Header:     make(fhttp.Header),
		},
	}
}

// NewMockHttpClientWithError creates a new MockHttpClient that returns an error
func NewMockHttpClientWithError(err error) *MockHttpClient {
	return &MockHttpClient{Err: err}
}

// fakeStreamer returns canned bodies without any HTTP
type fakeStreamer struct {
	body     io.ReadCloser
	err      error
	calls    int
	lastMsgs []models.WireMessage
}

func (f *fakeStreamer) Stream(ctx context.Context, msgs []models.WireMessage) (io.ReadCloser, error) {
	f.calls++
	f.lastMsgs = msgs
	if f.err != nil {
		return nil, f.err
	}
	return f.body, nil
}

// blockingBody yields its prefix and then blocks until closed
type blockingBody struct {
	prefix  *strings.Reader
	release chan struct{}
	once    sync.Once
}

func newBlockingBody(prefix string) *blockingBody {
	return &blockingBody{prefix: strings.NewReader(prefix), release: make(chan struct{})}
}

func (b *blockingBody) Read(p []byte) (int, error) {
	if b.prefix.Len() > 0 {
		return b.prefix.Read(p)
	}
	<-b.release
	return 0, errors.New("body closed")
}

func (b *blockingBody) Close() error {
	b.once.Do(func() { close(b.release) })
	return nil
}

// recordingSink counts sink calls
type recordingSink struct {
	mu      sync.Mutex
	updates []string
	added   []models.Message
	removed []string
	panels  []models.PanelUpdate
}

func (r *recordingSink) AddMessage(sessionID string, msg models.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.added = append(r.added, msg)
}

func (r *recordingSink) UpdateMessage(sessionID, messageID, content string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, content)
	return true
}

func (r *recordingSink) RemoveMessage(sessionID, messageID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removed = append(r.removed, messageID)
}

func (r *recordingSink) OpenPanel(update models.PanelUpdate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.panels = append(r.panels, update)
}

// waitFor polls cond until it holds or the deadline passes
func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}
