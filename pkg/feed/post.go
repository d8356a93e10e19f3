// Package feed pages through blog-style post listings and exposes their posts
// as a single lazy sequence, independent of the wire format.
package feed

import (
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// RawPost is one unextracted post of a feed.
type RawPost struct {
	ID    string
	Title string
	Link  string
	// Body is the raw post markup.
	Body      string
	Published time.Time
	Updated   time.Time
	Labels    []string
}

// Text returns the plain text of the post title followed by its body.
// Block level elements are separated by newlines so that line oriented
// patterns keep working on the flattened text.
func (p RawPost) Text() string {
	body := p.Body
	if body == "" {
		return p.Title
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return strings.TrimSpace(p.Title + "\n" + body)
	}
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, li, tr, h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	return strings.TrimSpace(p.Title + "\n" + doc.Text())
}

// Links returns the absolute targets of every anchor in the post body, in
// document order.
func (p RawPost) Links() []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(p.Body))
	if err != nil {
		return nil
	}

	base, _ := url.Parse(p.Link)
	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}
		if base != nil {
			if ref, err := base.Parse(href); err == nil {
				href = ref.String()
			}
		}
		links = append(links, href)
	})

	return links
}

// Blog holds the metadata of a feed.
type Blog struct {
	ID      string
	Title   string
	Author  string
	Link    string
	Version string
}

// PostBuilder turns the markup or structure of one post into a RawPost.
// Building is deferred until the post is consumed.
type PostBuilder interface {
	Build() (RawPost, error)
}

// PostBuilderFunc adapts a function to PostBuilder.
type PostBuilderFunc func() (RawPost, error)

func (f PostBuilderFunc) Build() (RawPost, error) {
	return f()
}

// Page is one parsed payload of a feed.
type Page struct {
	Blog  Blog
	Posts []PostBuilder
	// Next is the following page, nil on the last page.
	Next *url.URL
}
