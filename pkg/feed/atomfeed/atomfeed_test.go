package atomfeed

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/defeedco/matchday/pkg/feed"
)

func TestFormat_ParsePage(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "feed.atom"))
	if err != nil {
		t.Fatal(err)
	}
	pageURL, _ := url.Parse("https://fullmatches.blogspot.com/feeds/posts/default")

	page, err := Format{}.ParsePage(data, pageURL)
	if err != nil {
		t.Fatalf("ParsePage() error = %v", err)
	}

	if page.Blog.ID != "5514432086785419312" || page.Blog.Author != "editor" {
		t.Errorf("blog = %+v", page.Blog)
	}
	if page.Next == nil || page.Next.Query().Get("start-index") != "2" {
		t.Errorf("next = %v", page.Next)
	}
	if len(page.Posts) != 1 {
		t.Fatalf("got %d builders, want 1", len(page.Posts))
	}

	post, err := page.Posts[0].Build()
	if err != nil {
		t.Fatal(err)
	}
	if post.ID != "7001" || post.Labels[0] != "Primeira" {
		t.Errorf("post = %+v", post)
	}
	if !post.Published.Equal(time.Date(2021, 3, 2, 9, 15, 0, 0, time.UTC)) {
		t.Errorf("published = %v", post.Published)
	}
	if links := post.Links(); len(links) != 1 || links[0] != "https://files.example/v/aa11" {
		t.Errorf("links = %v", links)
	}
}

func TestFormat_ParsePage_Invalid(t *testing.T) {
	pageURL, _ := url.Parse("https://fullmatches.blogspot.com/feeds/posts/default")

	_, err := Format{}.ParsePage([]byte(`{"feed": {}}`), pageURL)
	var invalid *feed.InvalidMetadataError
	if !errors.As(err, &invalid) {
		t.Errorf("error = %v, want InvalidMetadataError", err)
	}
}

func TestFormat_BuildURL(t *testing.T) {
	u, err := feed.NewURLBuilder("https://fullmatches.blogspot.com", Format{}).Labels("Porto").BuildURL()
	if err != nil {
		t.Fatal(err)
	}
	if want := "https://fullmatches.blogspot.com/feeds/posts/default/-/Porto?alt=atom"; u.String() != want {
		t.Errorf("BuildURL() = %s, want %s", u, want)
	}
}
