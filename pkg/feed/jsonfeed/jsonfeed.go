// Package jsonfeed reads the JSON rendition of the Blogger feeds API
// (alt=json).
package jsonfeed

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/defeedco/matchday/pkg/feed"
	"github.com/defeedco/matchday/pkg/feed/internal/gdata"
)

func init() {
	feed.Register(Format{})
}

type Format struct{}

func (Format) Name() string {
	return feed.FormatJSON
}

func (Format) BuildURL(base *url.URL, q feed.Query) (*url.URL, error) {
	return gdata.BuildURL(base, q, "json")
}

// text is the {"$t": "..."} wrapper the feeds API puts around every value.
type text struct {
	T string `json:"$t"`
}

type link struct {
	Rel  string `json:"rel"`
	Type string `json:"type"`
	Href string `json:"href"`
}

type person struct {
	Name text `json:"name"`
}

type category struct {
	Term string `json:"term"`
}

type document struct {
	Version  string    `json:"version"`
	Encoding string    `json:"encoding"`
	Feed     *feedBody `json:"feed"`
}

type feedBody struct {
	ID     text     `json:"id"`
	Title  text     `json:"title"`
	Links  []link   `json:"link"`
	Author []person `json:"author"`
	// Entry is kept raw so a single malformed entry fails alone.
	Entry []json.RawMessage `json:"entry"`
}

type entry struct {
	ID        text       `json:"id"`
	Published text       `json:"published"`
	Updated   text       `json:"updated"`
	Category  []category `json:"category"`
	Title     text       `json:"title"`
	Content   text       `json:"content"`
	Summary   text       `json:"summary"`
	Links     []link     `json:"link"`
}

func (Format) ParsePage(data []byte, pageURL *url.URL) (*feed.Page, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, feed.Invalid(pageURL.String(), "decode json", err)
	}
	if doc.Feed == nil {
		return nil, feed.Invalid(pageURL.String(), "missing feed object", nil)
	}

	f := doc.Feed
	page := &feed.Page{
		Blog: feed.Blog{
			ID:      gdata.BlogID(f.ID.T),
			Title:   f.Title.T,
			Link:    rel(f.Links, "alternate"),
			Version: doc.Version,
		},
	}
	if len(f.Author) > 0 {
		page.Blog.Author = f.Author[0].Name.T
	}

	for i, raw := range f.Entry {
		page.Posts = append(page.Posts, &postBuilder{index: i, raw: raw})
	}

	if next := rel(f.Links, "next"); next != "" {
		if u, err := pageURL.Parse(next); err == nil {
			page.Next = u
		}
	}

	return page, nil
}

func rel(links []link, name string) string {
	for _, l := range links {
		if l.Rel == name {
			return l.Href
		}
	}
	return ""
}

type postBuilder struct {
	index int
	raw   json.RawMessage
}

func (b *postBuilder) Build() (feed.RawPost, error) {
	var e entry
	if err := json.Unmarshal(b.raw, &e); err != nil {
		return feed.RawPost{}, &feed.PostError{Index: b.index, Reason: "decode entry: " + err.Error()}
	}
	if e.ID.T == "" {
		return feed.RawPost{}, &feed.PostError{Index: b.index, Reason: "missing post id"}
	}

	body := e.Content.T
	if body == "" {
		body = e.Summary.T
	}

	post := feed.RawPost{
		ID:        gdata.PostID(e.ID.T),
		Title:     strings.TrimSpace(e.Title.T),
		Link:      rel(e.Links, "alternate"),
		Body:      body,
		Published: gdata.ParseTime(e.Published.T),
		Updated:   gdata.ParseTime(e.Updated.T),
	}
	for _, c := range e.Category {
		post.Labels = append(post.Labels, c.Term)
	}

	return post, nil
}
