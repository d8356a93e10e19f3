// Package htmlfeed reads the HTML pages a Blogger blog renders for its
// search and label listings.
package htmlfeed

import (
	"bytes"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/defeedco/matchday/pkg/feed"
)

// TimestampLayout is how updated-min and updated-max are written.
const TimestampLayout = "2006-01-02T15:04:05Z"

func init() {
	feed.Register(Format{})
}

type Format struct{}

func (Format) Name() string {
	return feed.FormatHTML
}

// BuildURL writes labels as path segments under /search/label and the
// remaining filters as query parameters. Filters the HTML listing has no
// equivalent for are dropped.
func (Format) BuildURL(base *url.URL, q feed.Query) (*url.URL, error) {
	u := *base
	u.RawQuery = ""
	if u.Path == "" {
		u.Path = "/"
	}

	segments := []string{"search"}
	if len(q.Labels) > 0 {
		segments = append(segments, "label")
		for _, l := range q.Labels {
			segments = append(segments, url.PathEscape(l))
		}
	}
	u = *u.JoinPath(segments...)

	v := base.Query()
	if q.MaxResults > 0 {
		v.Set("max-results", strconv.Itoa(q.MaxResults))
	}
	if !q.StartDate.IsZero() {
		v.Set("updated-min", q.StartDate.UTC().Format(TimestampLayout))
	}
	if !q.EndDate.IsZero() {
		v.Set("updated-max", q.EndDate.UTC().Format(TimestampLayout))
	}
	if q.OrderBy != "" {
		v.Set("orderby", q.OrderBy)
	}
	if q.PageToken != "" {
		v.Set("start", q.PageToken)
	}
	u.RawQuery = v.Encode()

	return &u, nil
}

func (Format) ParsePage(data []byte, pageURL *url.URL) (*feed.Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, feed.Invalid(pageURL.String(), "parse html", err)
	}

	container := doc.Find("div.blog-posts").First()
	if container.Length() == 0 {
		return nil, feed.Invalid(pageURL.String(), "no blog-posts container", nil)
	}

	page := &feed.Page{Blog: parseBlog(doc, data)}

	container.Find("div.post-outer, article.post-outer-container").Each(func(i int, s *goquery.Selection) {
		page.Posts = append(page.Posts, &postBuilder{index: i, sel: s, base: pageURL})
	})

	if href, ok := doc.Find("a.blog-pager-older-link").First().Attr("href"); ok {
		if next, err := pageURL.Parse(strings.TrimSpace(href)); err == nil {
			page.Next = next
		}
	}

	return page, nil
}

// The blog id only appears in a stylesheet link inside <noscript>, which the
// parser keeps as raw text.
var blogIDPattern = regexp.MustCompile(`targetBlogID=(\d+)`)

func parseBlog(doc *goquery.Document, data []byte) feed.Blog {
	blog := feed.Blog{
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
	}

	if m := blogIDPattern.FindSubmatch(data); m != nil {
		blog.ID = string(m[1])
	}
	blog.Version, _ = doc.Find("div.Header").First().Attr("data-version")
	blog.Link, _ = doc.Find(`meta[property="og:url"]`).First().Attr("content")
	blog.Author = strings.TrimSpace(
		doc.Find("span[itemprop=author]").First().Find("span[itemprop=name]").First().Text(),
	)

	return blog
}

type postBuilder struct {
	index int
	sel   *goquery.Selection
	base  *url.URL
}

func (b *postBuilder) Build() (feed.RawPost, error) {
	s := b.sel
	post := feed.RawPost{}

	id, ok := s.Find("meta[itemprop=postId]").First().Attr("content")
	if !ok || strings.TrimSpace(id) == "" {
		return post, &feed.PostError{Index: b.index, Reason: "missing post id"}
	}
	post.ID = strings.TrimSpace(id)

	body := s.Find("div.post-body").First()
	if body.Length() == 0 {
		return post, &feed.PostError{Index: b.index, Reason: "missing post body"}
	}
	html, err := body.Html()
	if err != nil {
		return post, &feed.PostError{Index: b.index, Reason: "render post body: " + err.Error()}
	}
	post.Body = strings.TrimSpace(html)

	title := s.Find(".post-title").First()
	post.Title = strings.TrimSpace(title.Text())

	href, ok := title.Find("a").First().Attr("href")
	if !ok {
		return post, &feed.PostError{Index: b.index, Reason: "missing post link"}
	}
	if link, err := b.base.Parse(strings.TrimSpace(href)); err == nil {
		post.Link = link.String()
	}

	post.Published = parsePublished(s)
	// the HTML listing carries no update time
	post.Updated = post.Published

	s.Find("span.post-labels a, div.post-labels a").Each(func(_ int, a *goquery.Selection) {
		if label := strings.TrimSpace(a.Text()); label != "" {
			post.Labels = append(post.Labels, label)
		}
	})

	return post, nil
}

func parsePublished(s *goquery.Selection) time.Time {
	candidates := []string{}
	if v, ok := s.Find("a.timestamp-link abbr").First().Attr("title"); ok {
		candidates = append(candidates, v)
	}
	if v, ok := s.Find("time.published").First().Attr("datetime"); ok {
		candidates = append(candidates, v)
	}

	for _, c := range candidates {
		c = strings.TrimSpace(c)
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
			if t, err := time.Parse(layout, c); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}
