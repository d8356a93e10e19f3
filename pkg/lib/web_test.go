package lib

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	neturl "net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestHTTPFetcher_Fetch(t *testing.T) {
	logger := zerolog.Nop()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != MatchdayUserAgentString {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		switch r.URL.Path {
		case "/ok":
			_, _ = w.Write([]byte("payload"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	tests := []struct {
		name       string
		path       string
		want       string
		wantStatus int
	}{
		{
			name: "ok",
			path: "/ok",
			want: "payload",
		},
		{
			name:       "not found",
			path:       "/missing",
			wantStatus: http.StatusNotFound,
		},
	}

	fetcher := NewHTTPFetcher(&logger, time.Second)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, _ := neturl.Parse(server.URL + tt.path)
			data, err := fetcher.Fetch(context.Background(), u)

			if tt.wantStatus != 0 {
				var statusErr *HTTPStatusError
				if !errors.As(err, &statusErr) || statusErr.StatusCode() != tt.wantStatus {
					t.Errorf("Fetch() error = %v, want status %d", err, tt.wantStatus)
				}
				return
			}
			if err != nil {
				t.Fatalf("Fetch() error = %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("Fetch() = %q, want %q", data, tt.want)
			}
		})
	}
}

func TestFileFetcher_Fetch(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "page.html"), []byte("<html></html>"), 0o644); err != nil {
		t.Fatal(err)
	}

	fetcher := FileFetcher{Root: dir}

	inside := &neturl.URL{Scheme: "file", Path: filepath.ToSlash(filepath.Join(dir, "page.html"))}
	data, err := fetcher.Fetch(context.Background(), inside)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(data) != "<html></html>" {
		t.Errorf("Fetch() = %q", data)
	}

	outside := &neturl.URL{Scheme: "file", Path: filepath.ToSlash(filepath.Join(dir, "..", "elsewhere.html"))}
	if _, err := fetcher.Fetch(context.Background(), outside); err == nil {
		t.Error("expected error for path outside root")
	}
}

func TestMultiFetcher_UnknownScheme(t *testing.T) {
	logger := zerolog.Nop()
	fetcher := NewDefaultFetcher(&logger, time.Second, "")

	u, _ := neturl.Parse("ftp://example.com/feed")
	if _, err := fetcher.Fetch(context.Background(), u); !errors.Is(err, ErrUnsupportedScheme) {
		t.Errorf("Fetch() error = %v, want ErrUnsupportedScheme", err)
	}
}
