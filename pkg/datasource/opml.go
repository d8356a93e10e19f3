package datasource

import (
	"github.com/google/uuid"

	"github.com/defeedco/matchday/pkg/extract"
	"github.com/defeedco/matchday/pkg/lib"
)

// ToOPML lists the feed URL of every data source, so the same blogs can be
// followed in a feed reader.
func ToOPML(title string, sources []*DataSource) *lib.OPML {
	out := &lib.OPML{Head: lib.OPMLHead{Title: title}}
	for _, ds := range sources {
		text := ds.Title
		if text == "" {
			text = ds.BaseURL
		}
		out.Body.Outlines = append(out.Body.Outlines, lib.OPMLOutline{
			Text:   text,
			Title:  ds.Title,
			Type:   "rss",
			XMLUrl: ds.BaseURL,
		})
	}
	return out
}

// FromOPML creates one data source per feed of doc, all sharing the given
// plugin and pattern kits. Feeds that fail validation are returned in
// rejected rather than failing the import.
func FromOPML(doc *lib.OPML, pluginID uuid.UUID, kits []extract.Definition) (sources []*DataSource, rejected map[string]error) {
	rejected = make(map[string]error)
	for outline := range doc.Feeds() {
		title := outline.Title
		if title == "" {
			title = outline.Text
		}
		ds := &DataSource{
			PluginID:    pluginID,
			Title:       title,
			BaseURL:     outline.XMLUrl,
			PatternKits: kits,
			Enabled:     true,
		}
		if err := ds.Validate(); err != nil {
			rejected[outline.XMLUrl] = err
			continue
		}
		ds.EnsureID()
		sources = append(sources, ds)
	}
	return sources, rejected
}
