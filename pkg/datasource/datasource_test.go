package datasource

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/defeedco/matchday/pkg/extract"
	"github.com/defeedco/matchday/pkg/lib"
)

func TestLoadFile(t *testing.T) {
	sources, err := LoadFile(filepath.Join("testdata", "sources.yaml"))
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("got %d sources, want 2", len(sources))
	}

	first := sources[0]
	if first.ID == uuid.Nil {
		t.Error("missing id was not derived")
	}
	if first.PatternKits[0].Flags != extract.CaseInsensitive|extract.UnicodeCase {
		t.Errorf("flags = %s", first.PatternKits[0].Flags)
	}
	if len(first.PatternKits[0].Fields) != 6 || !first.Enabled || first.Format != "html" {
		t.Errorf("first = %+v", first)
	}
	if sources[1].ID.String() != "0b7d7e3e-63b4-4f5e-a7b4-35a6f3f0c1de" || sources[1].Enabled {
		t.Errorf("second = %+v", sources[1])
	}

	again, err := LoadFile(filepath.Join("testdata", "sources.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if again[0].ID != first.ID {
		t.Error("derived id is not stable across loads")
	}
}

func TestDecode_RoundTrip(t *testing.T) {
	sources, err := LoadFile(filepath.Join("testdata", "sources.yaml"))
	if err != nil {
		t.Fatal(err)
	}

	for _, enc := range []Encoding{EncodingJSON, EncodingYAML} {
		t.Run(string(enc), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Encode(&buf, enc, sources...); err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			decoded, err := Decode(&buf, enc)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if len(decoded) != len(sources) {
				t.Fatalf("got %d sources", len(decoded))
			}
			for i := range sources {
				if decoded[i].ID != sources[i].ID || decoded[i].BaseURL != sources[i].BaseURL {
					t.Errorf("source %d = %+v", i, decoded[i])
				}
				if decoded[i].PatternKits[0].Flags != sources[i].PatternKits[0].Flags ||
					decoded[i].PatternKits[0].Pattern != sources[i].PatternKits[0].Pattern {
					t.Errorf("kit %d = %+v", i, decoded[i].PatternKits[0])
				}
			}
		})
	}
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		enc     Encoding
		payload string
	}{
		{
			name:    "missing plugin id",
			enc:     EncodingJSON,
			payload: `{"baseUrl": "https://x.blogspot.com", "patternKits": [{"type": "match", "pattern": "(a)", "fields": [{"group": 1, "field": "homeTeam"}]}]}`,
		},
		{
			name:    "bad base url",
			enc:     EncodingJSON,
			payload: `{"pluginId": "64d08bc8-bd9f-11ea-b3de-0242ac130004", "baseUrl": "gopher://x", "patternKits": [{"type": "match", "pattern": "(a)", "fields": [{"group": 1, "field": "homeTeam"}]}]}`,
		},
		{
			name:    "no pattern kits",
			enc:     EncodingYAML,
			payload: "pluginId: 64d08bc8-bd9f-11ea-b3de-0242ac130004\nbaseUrl: https://x.blogspot.com\n",
		},
		{
			name:    "unknown flag",
			enc:     EncodingYAML,
			payload: "pluginId: 64d08bc8-bd9f-11ea-b3de-0242ac130004\nbaseUrl: https://x.blogspot.com\npatternKits:\n  - {type: match, pattern: '(a)', flags: [LOUD], fields: [{group: 1, field: homeTeam}]}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(strings.NewReader(tt.payload), tt.enc); err == nil {
				t.Error("expected error")
			}
		})
	}

	_, err := Decode(strings.NewReader(tests[0].payload), EncodingJSON)
	var ve lib.ValidationErrors
	if !errors.As(err, &ve) {
		t.Errorf("error = %v, want ValidationErrors", err)
	}
}

func TestSnapshotRequestBuilder(t *testing.T) {
	b := NewSnapshotRequest().Labels("Primeira").MaxResults(10).FetchBodies(true)
	req := b.Build()
	b.Labels("Porto").MaxResults(20).FetchBodies(false)

	if len(req.Labels) != 1 || req.MaxResults != 10 || !*req.FetchBodies {
		t.Errorf("built request changed after build: %+v", req)
	}
	if later := b.Build(); len(later.Labels) != 2 || later.MaxResults != 20 {
		t.Errorf("later = %+v", later)
	}

	empty := NewSnapshotRequest().Build()
	if empty.FetchBodies != nil || empty.Labels != nil || !empty.StartDate.IsZero() {
		t.Errorf("empty request = %+v", empty)
	}
}
