package feed

import (
	"context"
	"errors"
	"iter"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Fetcher retrieves the raw payload behind a URL.
type Fetcher interface {
	Fetch(ctx context.Context, u *url.URL) ([]byte, error)
}

type Option func(*Feed)

// WithMaxPages caps the number of pages fetched, the first one included.
func WithMaxPages(n int) Option {
	return func(f *Feed) {
		f.maxPages = n
	}
}

// WithStopBefore stops following next links once a page holds a post
// published before t.
func WithStopBefore(t time.Time) Option {
	return func(f *Feed) {
		f.stopBefore = t
	}
}

// WithFollow vets every next page link before it is fetched. A link that
// fails the check ends the sequence with a *RejectedLinkError.
func WithFollow(check func(*url.URL) error) Option {
	return func(f *Feed) {
		f.follow = check
	}
}

func WithLogger(logger *zerolog.Logger) Option {
	return func(f *Feed) {
		f.logger = logger
	}
}

// Feed is a forward-only handle on a paginated listing. Its posts can be
// iterated once.
type Feed struct {
	fetcher    Fetcher
	format     Format
	logger     *zerolog.Logger
	maxPages   int
	stopBefore time.Time
	follow     func(*url.URL) error

	first    *Page
	firstURL *url.URL
	consumed atomic.Bool
}

// Open fetches and parses the first page at start. A payload that cannot be
// parsed fails here, before any post is produced.
func Open(ctx context.Context, fetcher Fetcher, format Format, start *url.URL, opts ...Option) (*Feed, error) {
	nop := zerolog.Nop()
	f := &Feed{
		fetcher: fetcher,
		format:  format,
		logger:  &nop,
	}
	for _, opt := range opts {
		opt(f)
	}

	page, err := f.load(ctx, start)
	if err != nil {
		return nil, err
	}
	f.first = page
	f.firstURL = start

	return f, nil
}

func (f *Feed) Blog() Blog {
	return f.first.Blog
}

func (f *Feed) Format() Format {
	return f.format
}

// Posts yields the posts of every page in feed order, fetching the next page
// when the current one is exhausted. Posts that cannot be built are logged
// and skipped. A fetch or parse failure is yielded once and ends the
// sequence.
func (f *Feed) Posts(ctx context.Context) iter.Seq2[RawPost, error] {
	return func(yield func(RawPost, error) bool) {
		if f.consumed.Swap(true) {
			yield(RawPost{}, ErrFeedConsumed)
			return
		}

		visited := map[string]struct{}{f.firstURL.String(): {}}
		page, pageURL := f.first, f.firstURL
		f.first = &Page{Blog: page.Blog}
		fetched := 1

		for {
			logger := f.logger.With().Str("page_url", pageURL.String()).Logger()

			var oldest time.Time
			for i, builder := range page.Posts {
				post, err := builder.Build()
				if err != nil {
					logger.Warn().Err(err).Int("post_index", i).Msg("skipping unbuildable post")
					continue
				}
				if !post.Published.IsZero() && (oldest.IsZero() || post.Published.Before(oldest)) {
					oldest = post.Published
				}
				if !yield(post, nil) {
					return
				}
			}

			next := page.Next
			switch {
			case next == nil:
				return
			case f.maxPages > 0 && fetched >= f.maxPages:
				logger.Debug().Int("max_pages", f.maxPages).Msg("page limit reached")
				return
			case !f.stopBefore.IsZero() && !oldest.IsZero() && oldest.Before(f.stopBefore):
				logger.Debug().Time("oldest", oldest).Msg("reached posts older than requested")
				return
			}
			if _, seen := visited[next.String()]; seen {
				logger.Warn().Str("next_url", next.String()).Msg("next page already fetched")
				return
			}
			visited[next.String()] = struct{}{}

			if f.follow != nil {
				if err := f.follow(next); err != nil {
					yield(RawPost{}, &RejectedLinkError{URL: next.String(), Err: err})
					return
				}
			}

			if err := ctx.Err(); err != nil {
				yield(RawPost{}, err)
				return
			}

			var err error
			page, err = f.load(ctx, next)
			if err != nil {
				yield(RawPost{}, err)
				return
			}
			pageURL = next
			fetched++
		}
	}
}

func (f *Feed) load(ctx context.Context, u *url.URL) (*Page, error) {
	f.logger.Debug().Str("page_url", u.String()).Msg("fetching page")

	data, err := f.fetcher.Fetch(ctx, u)
	if err != nil {
		fetchErr := &FetchError{URL: u.String(), Err: err}
		var status interface{ StatusCode() int }
		if errors.As(err, &status) {
			fetchErr.Status = status.StatusCode()
		}
		return nil, fetchErr
	}

	page, err := f.format.ParsePage(data, u)
	if err != nil {
		var invalid *InvalidMetadataError
		if errors.As(err, &invalid) {
			return nil, err
		}
		return nil, Invalid(u.String(), "parse page", err)
	}

	return page, nil
}
