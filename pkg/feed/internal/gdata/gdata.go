// Package gdata holds what the Blogger JSON and Atom feeds share: the query
// encoding of the feeds API and its tag URIs.
package gdata

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/defeedco/matchday/pkg/feed"
)

const feedsPath = "/feeds/posts/default"

// BuildURL serializes q as a feeds API request with the given alt parameter.
// A base that already points into /feeds/ keeps its path.
func BuildURL(base *url.URL, q feed.Query, alt string) (*url.URL, error) {
	u := *base
	if u.Path == "" {
		u.Path = "/"
	}
	if !strings.Contains(u.Path, "/feeds/") {
		u = *u.JoinPath(feedsPath)
	}
	if len(q.Labels) > 0 {
		labels := make([]string, 0, len(q.Labels)+1)
		labels = append(labels, "-")
		for _, l := range q.Labels {
			labels = append(labels, url.PathEscape(l))
		}
		u = *u.JoinPath(labels...)
	}

	v := u.Query()
	v.Set("alt", alt)
	if q.MaxResults > 0 {
		v.Set("max-results", strconv.Itoa(q.MaxResults))
	}
	if !q.StartDate.IsZero() {
		v.Set("updated-min", q.StartDate.Format(time.RFC3339))
	}
	if !q.EndDate.IsZero() {
		v.Set("updated-max", q.EndDate.Format(time.RFC3339))
	}
	if q.OrderBy != "" {
		v.Set("orderby", q.OrderBy)
	}
	if q.PageToken != "" {
		v.Set("start-index", q.PageToken)
	}
	if q.FetchBodies != nil {
		v.Set("fetchBodies", strconv.FormatBool(*q.FetchBodies))
	}
	if q.FetchImages != nil {
		v.Set("fetchImages", strconv.FormatBool(*q.FetchImages))
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	u.RawQuery = v.Encode()

	return &u, nil
}

var (
	blogIDPattern = regexp.MustCompile(`blog-(\d+)`)
	postIDPattern = regexp.MustCompile(`post-(\d+)`)
)

// BlogID extracts the numeric id from "tag:blogger.com,1999:blog-123".
func BlogID(tag string) string {
	if m := blogIDPattern.FindStringSubmatch(tag); m != nil {
		return m[1]
	}
	return tag
}

// PostID extracts the numeric id from "tag:blogger.com,1999:blog-123.post-456".
func PostID(tag string) string {
	if m := postIDPattern.FindStringSubmatch(tag); m != nil {
		return m[1]
	}
	return tag
}

// ParseTime accepts the timestamps the feeds API emits, with or without
// fractional seconds.
func ParseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return t
}
