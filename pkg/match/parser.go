package match

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/defeedco/matchday/pkg/extract"
	"github.com/defeedco/matchday/pkg/feed"
	"github.com/defeedco/matchday/pkg/fold"
)

var ErrNoMatchKits = errors.New("no match pattern kits")

// Parser turns one post into at most one Match carrying the media listed in
// that post.
type Parser struct {
	matches *extract.KitSet[Match]
	sources *extract.KitSet[VideoFileSource]
	files   *extract.KitSet[VideoFile]
	links   *extract.KitSet[Link]
}

// NewParser compiles the kits of every known type from defs. Definitions of
// other types are ignored.
func NewParser(defs []extract.Definition) (*Parser, error) {
	matches, err := extract.CompileAll(defs, MatchSchema)
	if err != nil {
		return nil, fmt.Errorf("compile match kits: %w", err)
	}
	if matches.Len() == 0 {
		return nil, ErrNoMatchKits
	}
	sources, err := extract.CompileAll(defs, FileSourceSchema)
	if err != nil {
		return nil, fmt.Errorf("compile file source kits: %w", err)
	}
	files, err := extract.CompileAll(defs, VideoFileSchema)
	if err != nil {
		return nil, fmt.Errorf("compile video file kits: %w", err)
	}
	links, err := extract.CompileAll(defs, LinkSchema)
	if err != nil {
		return nil, fmt.Errorf("compile url kits: %w", err)
	}

	return &Parser{
		matches: matches,
		sources: sources,
		files:   files,
		links:   links,
	}, nil
}

// Parse yields nothing for a post no match kit recognizes. A coercion
// failure of the match kits is yielded as an error for the caller to skip.
func (p *Parser) Parse(ctx context.Context, post feed.RawPost) iter.Seq2[*Match, error] {
	return func(yield func(*Match, error) bool) {
		if err := ctx.Err(); err != nil {
			yield(nil, err)
			return
		}

		text := post.Text()
		m, ok, err := p.matches.Extract(text)
		if err != nil {
			yield(nil, fmt.Errorf("post '%s': %w", post.ID, err))
			return
		}
		if !ok {
			return
		}

		files := slices.Collect(fold.Zip(
			valid(p.files.ExtractAll(text)),
			slices.Values(p.filterLinks(post.Links())),
			func(f VideoFile, link string) VideoFile {
				if f.URL == "" {
					f.URL = link
				}
				return f
			},
		))

		packs := fold.FoldSlice(files, packFolder{})
		sources := collectPointers(valid(p.sources.ExtractAll(text)))
		for len(sources) < len(packs) {
			sources = append(sources, &VideoFileSource{})
		}

		m.FileSources = slices.Collect(fold.Zip(
			slices.Values(sources),
			slices.Values(packs),
			func(src *VideoFileSource, pack []VideoFile) *VideoFileSource {
				src.AddFiles(pack...)
				return src
			},
		))

		yield(&m, nil)
	}
}

// filterLinks keeps the links a url kit recognizes, rewritten to what the kit
// captured. Without url kits every link is kept.
func (p *Parser) filterLinks(links []string) []string {
	if p.links.Len() == 0 {
		return links
	}

	var out []string
	for _, href := range links {
		link, ok, err := p.links.Extract(href)
		if err != nil || !ok {
			continue
		}
		out = append(out, link.URL)
	}
	return out
}

// valid drops fragments whose fields failed to convert.
func valid[T any](seq iter.Seq2[T, error]) iter.Seq[T] {
	return func(yield func(T) bool) {
		for v, err := range seq {
			if err != nil {
				continue
			}
			if !yield(v) {
				return
			}
		}
	}
}

func collectPointers[T any](seq iter.Seq[T]) []*T {
	var out []*T
	for v := range seq {
		out = append(out, &v)
	}
	return out
}

// packFolder groups consecutive files into one set of parts; a part seen
// twice starts the next set.
type packFolder struct{}

func (packFolder) Identity() []VideoFile {
	return nil
}

func (packFolder) Accumulate(f VideoFile, acc []VideoFile) []VideoFile {
	return append(acc, f)
}

func (packFolder) IsFull(next VideoFile, acc []VideoFile) bool {
	return slices.ContainsFunc(acc, func(f VideoFile) bool {
		return f.Part == next.Part
	})
}
