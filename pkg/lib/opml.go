package lib

import (
	"encoding/xml"
	"fmt"
	"io"
	"iter"
)

// OPML is a feed subscription list.
// See: https://opml.org
type OPML struct {
	XMLName xml.Name `xml:"opml"`
	Version string   `xml:"version,attr"`
	Head    OPMLHead `xml:"head"`
	Body    OPMLBody `xml:"body"`
}

type OPMLHead struct {
	Title string `xml:"title"`
}

type OPMLBody struct {
	Outlines []OPMLOutline `xml:"outline"`
}

// OPMLOutline is a feed when XMLUrl is set, otherwise a folder of Outlines.
type OPMLOutline struct {
	Text     string        `xml:"text,attr"`
	Title    string        `xml:"title,attr,omitempty"`
	Type     string        `xml:"type,attr,omitempty"`
	XMLUrl   string        `xml:"xmlUrl,attr,omitempty"`
	HTMLUrl  string        `xml:"htmlUrl,attr,omitempty"`
	Outlines []OPMLOutline `xml:"outline,omitempty"`
}

func ParseOPML(r io.Reader) (*OPML, error) {
	var out OPML
	if err := xml.NewDecoder(r).Decode(&out); err != nil {
		return nil, fmt.Errorf("parse OPML: %w", err)
	}

	return &out, nil
}

func (o *OPML) Write(w io.Writer) error {
	if o.Version == "" {
		o.Version = "2.0"
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(o); err != nil {
		return fmt.Errorf("write OPML: %w", err)
	}
	return enc.Close()
}

// Feeds yields every outline with a feed URL, folders flattened.
func (o *OPML) Feeds() iter.Seq[OPMLOutline] {
	return func(yield func(OPMLOutline) bool) {
		walkOutlines(o.Body.Outlines, yield)
	}
}

func walkOutlines(outlines []OPMLOutline, yield func(OPMLOutline) bool) bool {
	for _, o := range outlines {
		if o.XMLUrl != "" && !yield(o) {
			return false
		}
		if !walkOutlines(o.Outlines, yield) {
			return false
		}
	}
	return true
}
