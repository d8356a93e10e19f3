package datasource

import (
	"slices"
	"time"

	"github.com/defeedco/matchday/pkg/feed"
)

// SnapshotRequest describes what a snapshot should cover. Zero values mean
// the data source default.
type SnapshotRequest struct {
	StartDate   time.Time
	EndDate     time.Time
	Labels      []string
	FetchBodies *bool
	FetchImages *bool
	MaxResults  int
	OrderBy     string
	PageToken   string
	Status      string
}

// ApplyTo copies every set filter onto b.
func (r SnapshotRequest) ApplyTo(b *feed.URLBuilder) *feed.URLBuilder {
	if !r.StartDate.IsZero() {
		b.StartDate(r.StartDate)
	}
	if !r.EndDate.IsZero() {
		b.EndDate(r.EndDate)
	}
	if len(r.Labels) > 0 {
		b.Labels(r.Labels...)
	}
	if r.FetchBodies != nil {
		b.FetchBodies(*r.FetchBodies)
	}
	if r.FetchImages != nil {
		b.FetchImages(*r.FetchImages)
	}
	if r.MaxResults > 0 {
		b.MaxResults(r.MaxResults)
	}
	if r.OrderBy != "" {
		b.OrderBy(r.OrderBy)
	}
	if r.PageToken != "" {
		b.PageToken(r.PageToken)
	}
	if r.Status != "" {
		b.Status(r.Status)
	}
	return b
}

// SnapshotRequestBuilder accumulates a SnapshotRequest.
type SnapshotRequestBuilder struct {
	req SnapshotRequest
}

func NewSnapshotRequest() *SnapshotRequestBuilder {
	return &SnapshotRequestBuilder{}
}

func (b *SnapshotRequestBuilder) StartDate(t time.Time) *SnapshotRequestBuilder {
	b.req.StartDate = t
	return b
}

func (b *SnapshotRequestBuilder) EndDate(t time.Time) *SnapshotRequestBuilder {
	b.req.EndDate = t
	return b
}

func (b *SnapshotRequestBuilder) Labels(labels ...string) *SnapshotRequestBuilder {
	b.req.Labels = append(b.req.Labels, labels...)
	return b
}

func (b *SnapshotRequestBuilder) FetchBodies(v bool) *SnapshotRequestBuilder {
	b.req.FetchBodies = &v
	return b
}

func (b *SnapshotRequestBuilder) FetchImages(v bool) *SnapshotRequestBuilder {
	b.req.FetchImages = &v
	return b
}

func (b *SnapshotRequestBuilder) MaxResults(n int) *SnapshotRequestBuilder {
	b.req.MaxResults = n
	return b
}

func (b *SnapshotRequestBuilder) OrderBy(order string) *SnapshotRequestBuilder {
	b.req.OrderBy = order
	return b
}

func (b *SnapshotRequestBuilder) PageToken(token string) *SnapshotRequestBuilder {
	b.req.PageToken = token
	return b
}

func (b *SnapshotRequestBuilder) Status(status string) *SnapshotRequestBuilder {
	b.req.Status = status
	return b
}

// Build returns a copy that later builder calls do not affect.
func (b *SnapshotRequestBuilder) Build() SnapshotRequest {
	req := b.req
	req.Labels = slices.Clone(b.req.Labels)
	if b.req.FetchBodies != nil {
		v := *b.req.FetchBodies
		req.FetchBodies = &v
	}
	if b.req.FetchImages != nil {
		v := *b.req.FetchImages
		req.FetchImages = &v
	}
	return req
}
