package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"
	"time"
)

// memPage is the payload understood by memFormat.
type memPage struct {
	Posts []RawPost `json:"posts"`
	// Broken marks the post at that index as unbuildable, -1 for none.
	Broken int    `json:"broken"`
	Next   string `json:"next"`
}

type memFormat struct{}

func (memFormat) Name() string { return "mem" }

func (memFormat) BuildURL(base *url.URL, q Query) (*url.URL, error) {
	u := *base
	v := u.Query()
	if q.MaxResults > 0 {
		v.Set("n", fmt.Sprint(q.MaxResults))
	}
	u.RawQuery = v.Encode()
	return &u, nil
}

func (memFormat) ParsePage(data []byte, pageURL *url.URL) (*Page, error) {
	var p memPage
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}

	page := &Page{Blog: Blog{Title: "mem"}}
	for i, post := range p.Posts {
		broken := i == p.Broken
		page.Posts = append(page.Posts, PostBuilderFunc(func() (RawPost, error) {
			if broken {
				return RawPost{}, &PostError{Index: i, Reason: "broken"}
			}
			return post, nil
		}))
	}
	if p.Next != "" {
		next, err := pageURL.Parse(p.Next)
		if err != nil {
			return nil, err
		}
		page.Next = next
	}
	return page, nil
}

type memFetcher struct {
	pages   map[string][]byte
	fetches map[string]int
	order   []string
}

func newMemFetcher() *memFetcher {
	return &memFetcher{pages: map[string][]byte{}, fetches: map[string]int{}}
}

func (m *memFetcher) add(u string, p memPage) {
	data, _ := json.Marshal(p)
	m.pages[u] = data
}

func (m *memFetcher) Fetch(_ context.Context, u *url.URL) ([]byte, error) {
	m.fetches[u.String()]++
	m.order = append(m.order, u.String())
	data, ok := m.pages[u.String()]
	if !ok {
		return nil, statusErr(404)
	}
	return data, nil
}

type statusErr int

func (e statusErr) Error() string   { return fmt.Sprintf("status %d", int(e)) }
func (e statusErr) StatusCode() int { return int(e) }

var day0 = time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)

// paged registers pages of size posts each, newest first, linked by next.
func paged(m *memFetcher, pages, size int) *url.URL {
	n := 0
	for p := 0; p < pages; p++ {
		var mp memPage
		mp.Broken = -1
		for i := 0; i < size; i++ {
			mp.Posts = append(mp.Posts, RawPost{
				ID:        fmt.Sprintf("post-%d", n),
				Published: day0.Add(-time.Duration(n) * time.Hour),
			})
			n++
		}
		if p < pages-1 {
			mp.Next = fmt.Sprintf("/page/%d", p+1)
		}
		m.add(fmt.Sprintf("http://blog.test/page/%d", p), mp)
	}
	u, _ := url.Parse("http://blog.test/page/0")
	return u
}

func collect(t *testing.T, f *Feed) ([]RawPost, error) {
	t.Helper()
	var posts []RawPost
	for post, err := range f.Posts(context.Background()) {
		if err != nil {
			return posts, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func TestFeed_Pagination(t *testing.T) {
	m := newMemFetcher()
	start := paged(m, 3, 10)

	f, err := Open(context.Background(), m, memFormat{}, start)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	posts, err := collect(t, f)
	if err != nil {
		t.Fatalf("Posts() error = %v", err)
	}

	if len(posts) != 30 {
		t.Fatalf("got %d posts, want 30", len(posts))
	}
	for i, post := range posts {
		if want := fmt.Sprintf("post-%d", i); post.ID != want {
			t.Errorf("posts[%d] = %s, want %s", i, post.ID, want)
		}
	}
	for u, n := range m.fetches {
		if n != 1 {
			t.Errorf("%s fetched %d times", u, n)
		}
	}
	if len(m.fetches) != 3 {
		t.Errorf("fetched %d pages, want 3", len(m.fetches))
	}
}

func TestFeed_Options(t *testing.T) {
	tests := []struct {
		name      string
		opts      []Option
		wantPosts int
		wantPages int
	}{
		{
			name:      "max pages",
			opts:      []Option{WithMaxPages(2)},
			wantPosts: 20,
			wantPages: 2,
		},
		{
			// posts 0..9 span hours 0..9 before day0, so page 0 is all newer.
			name:      "stop before",
			opts:      []Option{WithStopBefore(day0.Add(-15 * time.Hour))},
			wantPosts: 20,
			wantPages: 2,
		},
		{
			name:      "no limits",
			wantPosts: 30,
			wantPages: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMemFetcher()
			f, err := Open(context.Background(), m, memFormat{}, paged(m, 3, 10), tt.opts...)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			posts, err := collect(t, f)
			if err != nil {
				t.Fatalf("Posts() error = %v", err)
			}
			if len(posts) != tt.wantPosts {
				t.Errorf("got %d posts, want %d", len(posts), tt.wantPosts)
			}
			if len(m.fetches) != tt.wantPages {
				t.Errorf("fetched %d pages, want %d", len(m.fetches), tt.wantPages)
			}
		})
	}
}

func TestFeed_EarlyBreakFetchesNothingMore(t *testing.T) {
	m := newMemFetcher()
	f, err := Open(context.Background(), m, memFormat{}, paged(m, 3, 10))
	if err != nil {
		t.Fatal(err)
	}

	n := 0
	for range f.Posts(context.Background()) {
		n++
		if n == 10 {
			break
		}
	}

	if len(m.order) != 1 {
		t.Errorf("fetched %v, want only the first page", m.order)
	}
}

func TestFeed_SingleUse(t *testing.T) {
	m := newMemFetcher()
	f, err := Open(context.Background(), m, memFormat{}, paged(m, 1, 2))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := collect(t, f); err != nil {
		t.Fatal(err)
	}
	if _, err := collect(t, f); !errors.Is(err, ErrFeedConsumed) {
		t.Errorf("second iteration error = %v, want ErrFeedConsumed", err)
	}
}

func TestFeed_SkipsBrokenPosts(t *testing.T) {
	m := newMemFetcher()
	m.add("http://blog.test/", memPage{
		Posts:  []RawPost{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		Broken: 1,
	})
	start, _ := url.Parse("http://blog.test/")

	f, err := Open(context.Background(), m, memFormat{}, start)
	if err != nil {
		t.Fatal(err)
	}
	posts, err := collect(t, f)
	if err != nil {
		t.Fatal(err)
	}
	if len(posts) != 2 || posts[0].ID != "a" || posts[1].ID != "c" {
		t.Errorf("got %+v", posts)
	}
}

func TestFeed_Errors(t *testing.T) {
	t.Run("unparsable first page fails open", func(t *testing.T) {
		m := newMemFetcher()
		m.pages["http://blog.test/"] = []byte("<html>")
		start, _ := url.Parse("http://blog.test/")

		_, err := Open(context.Background(), m, memFormat{}, start)
		var invalid *InvalidMetadataError
		if !errors.As(err, &invalid) {
			t.Fatalf("Open() error = %v, want InvalidMetadataError", err)
		}
	})

	t.Run("missing next page ends with fetch error", func(t *testing.T) {
		m := newMemFetcher()
		m.add("http://blog.test/", memPage{Posts: []RawPost{{ID: "a"}}, Broken: -1, Next: "/gone"})
		start, _ := url.Parse("http://blog.test/")

		f, err := Open(context.Background(), m, memFormat{}, start)
		if err != nil {
			t.Fatal(err)
		}
		posts, err := collect(t, f)
		var fetchErr *FetchError
		if !errors.As(err, &fetchErr) {
			t.Fatalf("error = %v, want FetchError", err)
		}
		if fetchErr.Status != 404 {
			t.Errorf("status = %d, want 404", fetchErr.Status)
		}
		if len(posts) != 1 {
			t.Errorf("got %d posts before the failure, want 1", len(posts))
		}
	})

	t.Run("rejected next link is not fetched", func(t *testing.T) {
		m := newMemFetcher()
		m.add("http://blog.test/", memPage{Posts: []RawPost{{ID: "a"}}, Broken: -1, Next: "http://internal.test/admin"})
		m.add("http://internal.test/admin", memPage{Posts: []RawPost{{ID: "secret"}}, Broken: -1})
		start, _ := url.Parse("http://blog.test/")
		denied := errors.New("host not allowed")

		follow := func(u *url.URL) error {
			if u.Host != "blog.test" {
				return denied
			}
			return nil
		}
		f, err := Open(context.Background(), m, memFormat{}, start, WithFollow(follow))
		if err != nil {
			t.Fatal(err)
		}
		posts, err := collect(t, f)
		var rejected *RejectedLinkError
		if !errors.As(err, &rejected) || !errors.Is(err, denied) {
			t.Fatalf("error = %v, want RejectedLinkError", err)
		}
		if rejected.URL != "http://internal.test/admin" {
			t.Errorf("URL = %s", rejected.URL)
		}
		if len(posts) != 1 || m.fetches["http://internal.test/admin"] != 0 {
			t.Errorf("posts = %d, fetches = %v", len(posts), m.order)
		}
	})

	t.Run("cycle is not refetched", func(t *testing.T) {
		m := newMemFetcher()
		m.add("http://blog.test/a", memPage{Posts: []RawPost{{ID: "1"}}, Broken: -1, Next: "/b"})
		m.add("http://blog.test/b", memPage{Posts: []RawPost{{ID: "2"}}, Broken: -1, Next: "/a"})
		start, _ := url.Parse("http://blog.test/a")

		f, err := Open(context.Background(), m, memFormat{}, start)
		if err != nil {
			t.Fatal(err)
		}
		posts, err := collect(t, f)
		if err != nil {
			t.Fatal(err)
		}
		if len(posts) != 2 || len(m.order) != 2 {
			t.Errorf("posts = %d, fetches = %v", len(posts), m.order)
		}
	})
}

func TestURLBuilder(t *testing.T) {
	u, err := NewURLBuilder("http://blog.test/feed", memFormat{}).MaxResults(5).BuildURL()
	if err != nil {
		t.Fatal(err)
	}
	if u.String() != "http://blog.test/feed?n=5" {
		t.Errorf("BuildURL() = %s", u)
	}

	for _, b := range []*URLBuilder{
		NewURLBuilder("::not a url", memFormat{}),
		NewURLBuilder("http://blog.test/", memFormat{}).Labels("..", "Serie A"),
		NewURLBuilder("http://blog.test/", memFormat{}).Labels("Serie A", "."),
		NewURLBuilder("http://blog.test/", memFormat{}).Labels(""),
	} {
		_, err = b.BuildURL()
		var buildErr *BuildError
		if !errors.As(err, &buildErr) {
			t.Errorf("BuildURL(%+v) error = %v, want BuildError", b.Query(), err)
		}
	}
}

func TestDetect(t *testing.T) {
	tests := map[string]string{
		"https://x.blogspot.com":                                  FormatHTML,
		"https://x.blogspot.com/search/label/Football":            FormatHTML,
		"https://x.blogspot.com/feeds/posts/default":              FormatAtom,
		"https://x.blogspot.com/feeds/posts/default?alt=json":     FormatJSON,
		"https://www.blogger.com/feeds/123/posts/default?alt=rss": FormatAtom,
	}
	for raw, want := range tests {
		u, _ := url.Parse(raw)
		if got := Detect(u); got != want {
			t.Errorf("Detect(%s) = %s, want %s", raw, got, want)
		}
	}
}

func TestRawPost_Text(t *testing.T) {
	post := RawPost{
		Title: "Porto vs Braga",
		Body:  `<div>Round 7<br/>1st Half: <a href="/f/1">link</a></div><p>2nd Half</p>`,
		Link:  "https://x.blogspot.com/2021/03/porto.html",
	}

	text := post.Text()
	for _, want := range []string{"Porto vs Braga\n", "Round 7\n1st Half: link", "2nd Half"} {
		if !strings.Contains(text, want) {
			t.Errorf("Text() = %q, missing %q", text, want)
		}
	}

	links := post.Links()
	if len(links) != 1 || links[0] != "https://x.blogspot.com/f/1" {
		t.Errorf("Links() = %v", links)
	}
}

