package lib

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const MatchdayUserAgentString = "Mozilla/5.0 (compatible; matchday/1.0; +https://github.com/defeedco/matchday)"

// Responses larger than this are cut off rather than read into memory.
const maxPayloadBytes = 16 << 20

var (
	ErrUnsupportedScheme = errors.New("unsupported url scheme")
	ErrPayloadTooLarge   = errors.New("payload too large")
)

// HTTPStatusError is returned for responses outside the 2xx range.
type HTTPStatusError struct {
	URL  string
	Code int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("http status %d for %s", e.Code, e.URL)
}

func (e *HTTPStatusError) StatusCode() int {
	return e.Code
}

// FetchURL fetches a URL and returns the http response.
// The response body should be closed by the caller.
func FetchURL(ctx context.Context, client *http.Client, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", MatchdayUserAgentString)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch url: %w", err)
	}

	return resp, nil
}

// HTTPFetcher retrieves payloads over http and https.
type HTTPFetcher struct {
	client *http.Client
	logger *zerolog.Logger
}

func NewHTTPFetcher(logger *zerolog.Logger, timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPFetcher{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, u *neturl.URL) ([]byte, error) {
	start := time.Now()

	resp, err := FetchURL(ctx, f.client, u.String())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPStatusError{URL: u.String(), Code: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(data) > maxPayloadBytes {
		return nil, ErrPayloadTooLarge
	}

	f.logger.Trace().
		Str("url", u.String()).
		Int("bytes", len(data)).
		Dur("took", time.Since(start)).
		Msg("fetched page")

	return data, nil
}

// FileFetcher reads file:// URLs from the local filesystem. When Root is set,
// paths outside of it are refused.
type FileFetcher struct {
	Root string
}

func (f FileFetcher) Fetch(ctx context.Context, u *neturl.URL) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if u.Scheme != "file" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
	}

	path := filepath.FromSlash(u.Path)
	if u.Host != "" && u.Host != "localhost" {
		// file://testdata/page.html names a relative path
		path = filepath.Join(u.Host, path)
	}

	if f.Root != "" {
		root, err := filepath.Abs(f.Root)
		if err != nil {
			return nil, fmt.Errorf("resolve root: %w", err)
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("resolve path: %w", err)
		}
		if abs != root && !strings.HasPrefix(abs, root+string(filepath.Separator)) {
			return nil, fmt.Errorf("path '%s' is outside of '%s'", abs, root)
		}
		path = abs
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return data, nil
}

type fetcher interface {
	Fetch(ctx context.Context, u *neturl.URL) ([]byte, error)
}

// MultiFetcher dispatches by URL scheme.
type MultiFetcher struct {
	mu       sync.RWMutex
	byScheme map[string]fetcher
}

func NewMultiFetcher() *MultiFetcher {
	return &MultiFetcher{byScheme: make(map[string]fetcher)}
}

// NewDefaultFetcher serves http, https and file URLs.
func NewDefaultFetcher(logger *zerolog.Logger, timeout time.Duration, fileRoot string) *MultiFetcher {
	httpFetcher := NewHTTPFetcher(logger, timeout)
	return NewMultiFetcher().
		Handle("http", httpFetcher).
		Handle("https", httpFetcher).
		Handle("file", FileFetcher{Root: fileRoot})
}

func (m *MultiFetcher) Handle(scheme string, f fetcher) *MultiFetcher {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.byScheme[strings.ToLower(scheme)] = f
	return m
}

func (m *MultiFetcher) Fetch(ctx context.Context, u *neturl.URL) ([]byte, error) {
	m.mu.RLock()
	f, ok := m.byScheme[strings.ToLower(u.Scheme)]
	m.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrUnsupportedScheme, u.Scheme)
	}
	return f.Fetch(ctx, u)
}
