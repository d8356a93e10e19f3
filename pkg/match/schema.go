package match

import (
	"strings"
	"time"

	"github.com/defeedco/matchday/pkg/extract"
)

// Type identifiers of the pattern kits a match data source declares.
const (
	TypeMatch      = "match"
	TypeFileSource = "file_source"
	TypeVideoFile  = "video_file"
	TypeURL        = "url"
)

// DateLayouts are the date spellings accepted for a match date.
var DateLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	time.DateOnly,
	"02.01.2006",
	"02-01-2006",
	"2 January 2006",
	"January 2, 2006",
	"02/01/06",
}

var MatchSchema = extract.NewSchema[Match](TypeMatch).
	String("competition", func(m *Match, v string) { m.Competition = v }).
	String("homeTeam", func(m *Match, v string) { m.HomeTeam = v }).
	String("awayTeam", func(m *Match, v string) { m.AwayTeam = v }).
	Field("season", func(m *Match, raw string) error {
		s, err := ParseSeason(raw)
		if err != nil {
			return err
		}
		m.Season = s
		return nil
	}).
	Field("fixture", func(m *Match, raw string) error {
		f, err := ParseFixture(raw)
		if err != nil {
			return err
		}
		m.Fixture = f
		return nil
	}).
	Time("date", func(m *Match, v time.Time) { m.Date = v }, DateLayouts...)

var FileSourceSchema = extract.NewSchema[VideoFileSource](TypeFileSource).
	String("channel", func(s *VideoFileSource, v string) { s.Channel = v }).
	String("source", func(s *VideoFileSource, v string) { s.Source = v }).
	String("languages", func(s *VideoFileSource, v string) { s.Languages = v }).
	String("container", func(s *VideoFileSource, v string) { s.Container = strings.ToUpper(v) }).
	String("videoCodec", func(s *VideoFileSource, v string) { s.VideoCodec = v }).
	String("audioCodec", func(s *VideoFileSource, v string) { s.AudioCodec = v }).
	String("audioChannels", func(s *VideoFileSource, v string) { s.AudioChannels = v }).
	String("duration", func(s *VideoFileSource, v string) { s.Duration = v }).
	Field("resolution", func(s *VideoFileSource, raw string) (err error) {
		s.Resolution, err = normalizeResolution(raw)
		return err
	}).
	Field("videoBitrate", func(s *VideoFileSource, raw string) (err error) {
		s.VideoBitrate, err = parseQuantity(raw)
		return err
	}).
	Field("audioBitrate", func(s *VideoFileSource, raw string) (err error) {
		s.AudioBitrate, err = parseQuantity(raw)
		return err
	}).
	Field("fileSize", func(s *VideoFileSource, raw string) (err error) {
		s.FileSize, err = parseQuantity(raw)
		return err
	}).
	Field("frameRate", func(s *VideoFileSource, raw string) (err error) {
		s.FrameRate, err = parseFrameRate(raw)
		return err
	})

var VideoFileSchema = extract.NewSchema[VideoFile](TypeVideoFile).
	Field("part", func(f *VideoFile, raw string) (err error) {
		f.Part, err = ParsePartID(raw)
		return err
	}).
	String("url", func(f *VideoFile, v string) { f.URL = v })

// Link is the output of a url kit: the part of an anchor target that
// identifies a downloadable file.
type Link struct {
	URL string
}

var LinkSchema = extract.NewSchema[Link](TypeURL).
	String("url", func(l *Link, v string) { l.URL = v })
