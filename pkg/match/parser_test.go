package match

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/defeedco/matchday/pkg/extract"
	"github.com/defeedco/matchday/pkg/feed"
	"github.com/defeedco/matchday/pkg/fold"
)

func loadKits(t *testing.T) []extract.Definition {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "kits.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	var defs []extract.Definition
	if err := yaml.Unmarshal(data, &defs); err != nil {
		t.Fatalf("decode kits: %v", err)
	}
	return defs
}

const sourceLine = `<div>Channel: Sport TV 1 | Language: Portuguese | 1080p | 50fps | MKV | 4.3 GB</div>`

func post(id, headline, body string) feed.RawPost {
	return feed.RawPost{
		ID:    id,
		Title: "Porto vs Braga",
		Link:  "https://fullmatches.blogspot.com/2021/03/" + id + ".html",
		Body:  "<div>" + headline + "</div>" + body,
	}
}

func parseAll(t *testing.T, p *Parser, posts ...feed.RawPost) ([]*Match, []error) {
	t.Helper()
	var out []*Match
	var errs []error
	for _, rp := range posts {
		for m, err := range p.Parse(context.Background(), rp) {
			if err != nil {
				errs = append(errs, err)
				continue
			}
			out = append(out, m)
		}
	}
	return out, errs
}

func TestParser_Parse(t *testing.T) {
	p, err := NewParser(loadKits(t))
	if err != nil {
		t.Fatalf("NewParser() error = %v", err)
	}

	rp := post("a",
		"Primeira Liga 2020/21 Matchday 22 - Porto vs Braga - 01/03/2021",
		sourceLine+
			`<div>1st Half: <a href="https://files.example/v/aa11">download</a></div>`+
			`<div>2nd Half: <a href="https://files.example/v/bb22">download</a></div>`+
			`<div><a href="https://ads.example/click">sponsor</a></div>`,
	)

	matches, errs := parseAll(t, p, rp)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors %v", errs)
	}
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}

	m := matches[0]
	if m.Competition != "Primeira Liga" || m.HomeTeam != "Porto" || m.AwayTeam != "Braga" {
		t.Errorf("match = %+v", m)
	}
	if m.Season != (Season{2020, 2021}) || m.Fixture != (Fixture{"Matchday 22", 22}) {
		t.Errorf("season = %+v, fixture = %+v", m.Season, m.Fixture)
	}
	if !m.Date.Equal(time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date = %v", m.Date)
	}

	if len(m.FileSources) != 1 {
		t.Fatalf("got %d file sources, want 1", len(m.FileSources))
	}
	src := m.FileSources[0]
	if src.Channel != "Sport TV 1" || src.Resolution != "1080p" || src.FrameRate != 50 ||
		src.Container != "MKV" || src.FileSize != 4_300_000_000 {
		t.Errorf("source = %+v", src)
	}
	want := []VideoFile{
		{Part: PartFirstHalf, URL: "https://files.example/v/aa11"},
		{Part: PartSecondHalf, URL: "https://files.example/v/bb22"},
	}
	if len(src.Files) != len(want) {
		t.Fatalf("files = %+v", src.Files)
	}
	for i := range want {
		if src.Files[i] != want[i] {
			t.Errorf("files[%d] = %+v, want %+v", i, src.Files[i], want[i])
		}
	}
}

func TestParser_NoMatchAndBadField(t *testing.T) {
	p, err := NewParser(loadKits(t))
	if err != nil {
		t.Fatal(err)
	}

	unrelated := feed.RawPost{ID: "x", Title: "Site news", Body: "<p>We moved servers.</p>"}
	matches, errs := parseAll(t, p, unrelated)
	if len(matches) != 0 || len(errs) != 0 {
		t.Errorf("unrelated post gave %v, %v", matches, errs)
	}

	badDate := post("b", "Primeira Liga 2020/21 Matchday 22 - Porto vs Braga - 31/02/2021", "")
	_, errs = parseAll(t, p, badDate)
	var extractionErr *extract.ExtractionError
	if len(errs) != 1 || !errors.As(errs[0], &extractionErr) || extractionErr.Field != "date" {
		t.Errorf("errors = %v, want one ExtractionError on date", errs)
	}
}

func TestNewParser_RequiresMatchKits(t *testing.T) {
	var defs []extract.Definition
	for _, d := range loadKits(t) {
		if d.Type != TypeMatch {
			defs = append(defs, d)
		}
	}
	if _, err := NewParser(defs); !errors.Is(err, ErrNoMatchKits) {
		t.Errorf("NewParser() error = %v, want ErrNoMatchKits", err)
	}

	bad := []extract.Definition{{
		Type:    TypeMatch,
		Pattern: `(\w+) vs (\w+)`,
		Fields:  []extract.Binding{extract.Bind(1, "homeTeam"), extract.Bind(3, "awayTeam")},
	}}
	if _, err := NewParser(bad); !errors.Is(err, extract.ErrInvalidKit) {
		t.Errorf("NewParser() error = %v, want ErrInvalidKit", err)
	}
}

func TestFolder_MergesHalvesAcrossPosts(t *testing.T) {
	p, err := NewParser(loadKits(t))
	if err != nil {
		t.Fatal(err)
	}

	headline := "Primeira Liga 2020/21 Matchday 22 - Porto vs Braga - 01/03/2021"
	posts := []feed.RawPost{
		post("a", headline, sourceLine+`<div>1st Half: <a href="https://files.example/v/aa11">x</a></div>`),
		post("b", headline, sourceLine+`<div>2nd Half: <a href="https://files.example/v/bb22">x</a></div>`),
		post("c", "Primeira Liga 2020/21 Matchday 22 - Benfica vs Sporting - 02/03/2021",
			sourceLine+`<div>1st Half: <a href="https://files.example/v/cc33">x</a></div>`),
	}

	fragments, errs := parseAll(t, p, posts...)
	if len(errs) != 0 || len(fragments) != 3 {
		t.Fatalf("fragments = %d, errors = %v", len(fragments), errs)
	}

	merged := fold.FoldSlice(fragments, fold.Folder[*Match, *Match](Folder{}))
	if len(merged) != 2 {
		t.Fatalf("got %d matches, want 2", len(merged))
	}

	first := merged[0]
	if first.HomeTeam != "Porto" || len(first.FileSources) != 1 || first.FileCount() != 2 {
		t.Errorf("first = %s with %d sources, %d files", first, len(first.FileSources), first.FileCount())
	}
	if first.FileSources[0].Files[1].Part != PartSecondHalf {
		t.Errorf("files = %+v", first.FileSources[0].Files)
	}
	if merged[1].HomeTeam != "Benfica" || merged[1].FileCount() != 1 {
		t.Errorf("second = %s", merged[1])
	}

	// The fragment that started the group is left untouched.
	if fragments[0].FileCount() != 1 {
		t.Errorf("first fragment was mutated: %d files", fragments[0].FileCount())
	}
}

func TestFolder_DistinctSourcesAndDuplicateParts(t *testing.T) {
	base := &Match{HomeTeam: "Porto", AwayTeam: "Braga"}
	hd := &VideoFileSource{Resolution: "1080p", Files: []VideoFile{{Part: PartFirstHalf, URL: "a"}}}
	sd := &VideoFileSource{Resolution: "576p", Files: []VideoFile{{Part: PartFirstHalf, URL: "b"}}}
	hdAgain := &VideoFileSource{Resolution: "1080p", Files: []VideoFile{{Part: PartFirstHalf, URL: "c"}}}

	a, b, c := *base, *base, *base
	a.FileSources = []*VideoFileSource{hd}
	b.FileSources = []*VideoFileSource{sd}
	c.FileSources = []*VideoFileSource{hdAgain}

	merged := fold.FoldSlice([]*Match{&a, &b, &c}, fold.Folder[*Match, *Match](Folder{}))
	if len(merged) != 1 {
		t.Fatalf("got %d matches, want 1", len(merged))
	}
	sources := merged[0].FileSources
	if len(sources) != 2 {
		t.Fatalf("got %d sources, want 2", len(sources))
	}
	if len(sources[0].Files) != 1 || sources[0].Files[0].URL != "a" {
		t.Errorf("duplicate part was added: %+v", sources[0].Files)
	}
}
