package match

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// PartID names the portion of an event a video file covers. The numeric
// value is the playback order.
type PartID int

const (
	PartUnknown PartID = iota
	PartPreMatch
	PartFirstHalf
	PartSecondHalf
	PartExtraTime
	PartPenalties
	PartTrophyCeremony
	PartPostMatch
	PartHighlights
	PartFullCoverage
)

var partNames = map[PartID]string{
	PartUnknown:        "",
	PartPreMatch:       "Pre-Match",
	PartFirstHalf:      "1st Half",
	PartSecondHalf:     "2nd Half",
	PartExtraTime:      "Extra-Time",
	PartPenalties:      "Penalties",
	PartTrophyCeremony: "Trophy Ceremony",
	PartPostMatch:      "Post-Match",
	PartHighlights:     "Highlights",
	PartFullCoverage:   "Full Coverage",
}

var partPatterns = []struct {
	part    PartID
	pattern *regexp.Regexp
}{
	{PartPreMatch, regexp.MustCompile(`(?i)^pre[-\s]?match`)},
	{PartFirstHalf, regexp.MustCompile(`(?i)^(1\s?st|first)[-\s]half`)},
	{PartSecondHalf, regexp.MustCompile(`(?i)^(2\s?nd|second)[-\s]half`)},
	{PartExtraTime, regexp.MustCompile(`(?i)^extra[-\s]?time`)},
	{PartPenalties, regexp.MustCompile(`(?i)^penalt(y|ies)`)},
	{PartTrophyCeremony, regexp.MustCompile(`(?i)^trophy`)},
	{PartPostMatch, regexp.MustCompile(`(?i)^post[-\s]?match`)},
	{PartHighlights, regexp.MustCompile(`(?i)^highlights?`)},
	{PartFullCoverage, regexp.MustCompile(`(?i)^full[-\s](coverage|match|game)`)},
}

func ParsePartID(s string) (PartID, error) {
	s = strings.TrimSpace(s)
	for _, p := range partPatterns {
		if p.pattern.MatchString(s) {
			return p.part, nil
		}
	}
	return PartUnknown, fmt.Errorf("not an event part: '%s'", s)
}

func (p PartID) String() string {
	return partNames[p]
}

func (p PartID) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *PartID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*p = PartUnknown
		return nil
	}
	part, err := ParsePartID(string(data))
	if err != nil {
		return err
	}
	*p = part
	return nil
}

// VideoFile is one downloadable part of an event.
type VideoFile struct {
	Part PartID `json:"part"`
	URL  string `json:"url"`
}

// VideoFileSource groups the files of one encoding of an event, usually one
// broadcaster at one quality.
type VideoFileSource struct {
	Channel       string      `json:"channel,omitempty"`
	Source        string      `json:"source,omitempty"`
	Languages     string      `json:"languages,omitempty"`
	Resolution    string      `json:"resolution,omitempty"`
	Container     string      `json:"container,omitempty"`
	VideoCodec    string      `json:"videoCodec,omitempty"`
	AudioCodec    string      `json:"audioCodec,omitempty"`
	VideoBitrate  int64       `json:"videoBitrate,omitempty"`
	AudioBitrate  int64       `json:"audioBitrate,omitempty"`
	FrameRate     int         `json:"frameRate,omitempty"`
	AudioChannels string      `json:"audioChannels,omitempty"`
	Duration      string      `json:"duration,omitempty"`
	FileSize      int64       `json:"fileSize,omitempty"`
	Files         []VideoFile `json:"files,omitempty"`
}

// SameMetadata compares everything but the files.
func (s *VideoFileSource) SameMetadata(other *VideoFileSource) bool {
	a, b := s, other
	return a.Channel == b.Channel &&
		a.Source == b.Source &&
		a.Languages == b.Languages &&
		a.Resolution == b.Resolution &&
		a.Container == b.Container &&
		a.VideoCodec == b.VideoCodec &&
		a.AudioCodec == b.AudioCodec &&
		a.VideoBitrate == b.VideoBitrate &&
		a.AudioBitrate == b.AudioBitrate &&
		a.FrameRate == b.FrameRate &&
		a.AudioChannels == b.AudioChannels &&
		a.Duration == b.Duration &&
		a.FileSize == b.FileSize
}

// HasPart reports whether a file for part is already present.
func (s *VideoFileSource) HasPart(part PartID) bool {
	for _, f := range s.Files {
		if f.Part == part {
			return true
		}
	}
	return false
}

// AddFiles appends the files whose part is not yet present.
func (s *VideoFileSource) AddFiles(files ...VideoFile) {
	for _, f := range files {
		if !s.HasPart(f.Part) {
			s.Files = append(s.Files, f)
		}
	}
}

var (
	quantityPattern   = regexp.MustCompile(`(?i)^([\d.,]+)\s*([kmgt]?)(i?b|bps|bit/s|b/s)?$`)
	resolutionPattern = regexp.MustCompile(`(?i)(\d{3,4})\s*[pi]\b|\d{3,4}\s*x\s*(\d{3,4})|\b(4k|uhd)\b|\b(hd|sd)\b`)
	frameRatePattern  = regexp.MustCompile(`(?i)^(\d+)(?:\.\d+)?\s*(fps)?$`)
)

var unitScale = map[string]float64{
	"":  1,
	"k": 1e3,
	"m": 1e6,
	"g": 1e9,
	"t": 1e12,
}

// parseQuantity reads values like "4.3 GB" or "4000 kbps" into base units.
func parseQuantity(s string) (int64, error) {
	m := quantityPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("not a quantity: '%s'", s)
	}

	raw := m[1]
	// a single comma not followed by three digits is a decimal comma: "4,3 GB"
	if i := strings.IndexByte(raw, ','); i >= 0 && strings.Count(raw, ",") == 1 &&
		!strings.Contains(raw, ".") && len(raw)-i-1 != 3 {
		raw = strings.Replace(raw, ",", ".", 1)
	}
	raw = strings.ReplaceAll(raw, ",", "")

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("not a quantity: '%s'", s)
	}
	return int64(math.Round(v * unitScale[strings.ToLower(m[2])])), nil
}

// normalizeResolution maps the spellings found in posts onto "1080p" style
// names.
func normalizeResolution(s string) (string, error) {
	m := resolutionPattern.FindStringSubmatch(s)
	switch {
	case m == nil:
		return "", fmt.Errorf("not a resolution: '%s'", s)
	case m[1] != "":
		return m[1] + "p", nil
	case m[2] != "":
		return m[2] + "p", nil
	case m[3] != "":
		return "2160p", nil
	case strings.EqualFold(m[4], "hd"):
		return "720p", nil
	default:
		return "576p", nil
	}
}

func parseFrameRate(s string) (int, error) {
	m := frameRatePattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("not a frame rate: '%s'", s)
	}
	return strconv.Atoi(m[1])
}
