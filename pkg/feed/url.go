package feed

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"time"
)

// Query holds the filters of a page request. Zero values are omitted from the
// built URL.
type Query struct {
	StartDate   time.Time
	EndDate     time.Time
	FetchBodies *bool
	FetchImages *bool
	Labels      []string
	MaxResults  int
	OrderBy     string
	PageToken   string
	Status      string
}

// URLBuilder accumulates a Query through chained setters and serializes it
// with a Format.
type URLBuilder struct {
	base   string
	format Format
	query  Query
}

func NewURLBuilder(base string, format Format) *URLBuilder {
	return &URLBuilder{base: base, format: format}
}

func (b *URLBuilder) StartDate(t time.Time) *URLBuilder {
	b.query.StartDate = t
	return b
}

func (b *URLBuilder) EndDate(t time.Time) *URLBuilder {
	b.query.EndDate = t
	return b
}

func (b *URLBuilder) FetchBodies(v bool) *URLBuilder {
	b.query.FetchBodies = &v
	return b
}

func (b *URLBuilder) FetchImages(v bool) *URLBuilder {
	b.query.FetchImages = &v
	return b
}

func (b *URLBuilder) Labels(labels ...string) *URLBuilder {
	b.query.Labels = slices.Clone(labels)
	return b
}

func (b *URLBuilder) MaxResults(n int) *URLBuilder {
	b.query.MaxResults = n
	return b
}

func (b *URLBuilder) OrderBy(order string) *URLBuilder {
	b.query.OrderBy = order
	return b
}

func (b *URLBuilder) PageToken(token string) *URLBuilder {
	b.query.PageToken = token
	return b
}

func (b *URLBuilder) Status(status string) *URLBuilder {
	b.query.Status = status
	return b
}

// Query returns a copy of the accumulated filters.
func (b *URLBuilder) Query() Query {
	q := b.query
	q.Labels = slices.Clone(q.Labels)
	return q
}

func (b *URLBuilder) BuildURL() (*url.URL, error) {
	if b.format == nil {
		return nil, &BuildError{Base: b.base, Err: errors.New("no format")}
	}

	base, err := url.Parse(b.base)
	if err != nil {
		return nil, &BuildError{Base: b.base, Err: err}
	}
	if base.Scheme == "" {
		return nil, &BuildError{Base: b.base, Err: errors.New("missing scheme")}
	}
	if base.Host == "" && base.Scheme != "file" {
		return nil, &BuildError{Base: b.base, Err: errors.New("missing host")}
	}

	// labels become path segments in some formats
	for _, label := range b.query.Labels {
		switch label {
		case "", ".", "..":
			return nil, &BuildError{Base: b.base, Err: fmt.Errorf("invalid label '%s'", label)}
		}
	}

	u, err := b.format.BuildURL(base, b.Query())
	if err != nil {
		return nil, &BuildError{Base: b.base, Err: err}
	}
	return u, nil
}
