// Package atomfeed reads the default Atom rendition of the Blogger feeds API.
package atomfeed

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed/atom"

	"github.com/defeedco/matchday/pkg/feed"
	"github.com/defeedco/matchday/pkg/feed/internal/gdata"
)

func init() {
	feed.Register(Format{})
}

type Format struct{}

func (Format) Name() string {
	return feed.FormatAtom
}

func (Format) BuildURL(base *url.URL, q feed.Query) (*url.URL, error) {
	return gdata.BuildURL(base, q, "atom")
}

func (Format) ParsePage(data []byte, pageURL *url.URL) (*feed.Page, error) {
	parser := &atom.Parser{}
	doc, err := parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, feed.Invalid(pageURL.String(), "parse atom", err)
	}
	if doc.ID == "" && doc.Title == "" {
		return nil, feed.Invalid(pageURL.String(), "missing feed metadata", nil)
	}

	page := &feed.Page{
		Blog: feed.Blog{
			ID:      gdata.BlogID(doc.ID),
			Title:   doc.Title,
			Link:    rel(doc.Links, "alternate"),
			Version: doc.Version,
		},
	}
	if len(doc.Authors) > 0 && doc.Authors[0] != nil {
		page.Blog.Author = doc.Authors[0].Name
	}

	for i, e := range doc.Entries {
		page.Posts = append(page.Posts, &postBuilder{index: i, entry: e})
	}

	if next := rel(doc.Links, "next"); next != "" {
		if u, err := pageURL.Parse(next); err == nil {
			page.Next = u
		}
	}

	return page, nil
}

func rel(links []*atom.Link, name string) string {
	for _, l := range links {
		if l != nil && l.Rel == name {
			return l.Href
		}
	}
	return ""
}

type postBuilder struct {
	index int
	entry *atom.Entry
}

func (b *postBuilder) Build() (feed.RawPost, error) {
	e := b.entry
	if e == nil || e.ID == "" {
		return feed.RawPost{}, &feed.PostError{Index: b.index, Reason: "missing post id"}
	}

	post := feed.RawPost{
		ID:    gdata.PostID(e.ID),
		Title: strings.TrimSpace(e.Title),
		Link:  rel(e.Links, "alternate"),
		Body:  e.Summary,
	}
	if e.Content != nil && e.Content.Value != "" {
		post.Body = e.Content.Value
	}
	if e.PublishedParsed != nil {
		post.Published = *e.PublishedParsed
	}
	if e.UpdatedParsed != nil {
		post.Updated = *e.UpdatedParsed
	}
	for _, c := range e.Categories {
		if c != nil {
			post.Labels = append(post.Labels, c.Term)
		}
	}

	return post, nil
}
