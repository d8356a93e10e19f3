package datasource

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/defeedco/matchday/pkg/extract"
	"github.com/defeedco/matchday/pkg/lib"
)

func TestFromOPML(t *testing.T) {
	f, err := os.Open(filepath.Join("testdata", "feeds.opml"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	doc, err := lib.ParseOPML(f)
	if err != nil {
		t.Fatalf("ParseOPML() error = %v", err)
	}

	pluginID := uuid.New()
	kits := []extract.Definition{{
		Type:    "match",
		Pattern: `(\w+) vs (\w+)`,
		Fields:  []extract.Binding{extract.Bind(1, "homeTeam"), extract.Bind(2, "awayTeam")},
	}}
	sources, rejected := FromOPML(doc, pluginID, kits)

	if len(sources) != 2 {
		t.Fatalf("got %d sources, want 2", len(sources))
	}
	if sources[0].Title != "Full Matches Archive" || sources[1].Title != "Replay blog" {
		t.Errorf("titles = %q, %q", sources[0].Title, sources[1].Title)
	}
	if sources[0].PluginID != pluginID || sources[0].ID == uuid.Nil {
		t.Errorf("source = %+v", sources[0])
	}
	if _, ok := rejected["ftp://old.example.com/feed"]; !ok || len(rejected) != 1 {
		t.Errorf("rejected = %v", rejected)
	}
}

func TestToOPML(t *testing.T) {
	sources := []*DataSource{
		{Title: "Archive", BaseURL: "https://fullmatches.blogspot.com"},
		{BaseURL: "https://replays.blogspot.com"},
	}

	var buf bytes.Buffer
	if err := ToOPML("matchday", sources).Write(&buf); err != nil {
		t.Fatal(err)
	}

	doc, err := lib.ParseOPML(&buf)
	if err != nil {
		t.Fatal(err)
	}
	var urls []string
	for o := range doc.Feeds() {
		urls = append(urls, o.XMLUrl)
	}
	if len(urls) != 2 || urls[1] != "https://replays.blogspot.com" || doc.Head.Title != "matchday" {
		t.Errorf("round trip = %v, %+v", urls, doc.Head)
	}
}
