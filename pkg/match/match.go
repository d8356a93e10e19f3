// Package match models sporting fixtures and the downloadable media posted
// for them, and extracts both from blog posts.
package match

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/defeedco/matchday/pkg/lib"
)

// Match is one fixture between two teams together with every media source
// found for it.
type Match struct {
	Competition string             `json:"competition"`
	Season      Season             `json:"season"`
	Fixture     Fixture            `json:"fixture"`
	HomeTeam    string             `json:"homeTeam"`
	AwayTeam    string             `json:"awayTeam"`
	Date        time.Time          `json:"date"`
	FileSources []*VideoFileSource `json:"fileSources,omitempty"`
}

func (m *Match) UID() lib.TypedUID {
	date := ""
	if !m.Date.IsZero() {
		date = m.Date.Format(time.DateOnly)
	}
	return lib.NewTypedUID("match", m.Competition, m.HomeTeam, m.AwayTeam, date)
}

// SameEvent reports whether both values describe the same fixture, ignoring
// media.
func (m *Match) SameEvent(other *Match) bool {
	if m == nil || other == nil {
		return false
	}
	return m.UID().Equal(other.UID())
}

func (m *Match) String() string {
	s := fmt.Sprintf("%s vs. %s", m.HomeTeam, m.AwayTeam)
	if m.Competition != "" {
		s = m.Competition + ": " + s
	}
	if !m.Date.IsZero() {
		s += " (" + m.Date.Format(time.DateOnly) + ")"
	}
	return s
}

// FileCount is the number of video files over all sources.
func (m *Match) FileCount() int {
	n := 0
	for _, src := range m.FileSources {
		n += len(src.Files)
	}
	return n
}

// Season spans two calendar years, e.g. 2020/21.
type Season struct {
	StartYear int `json:"startYear"`
	EndYear   int `json:"endYear"`
}

var seasonPattern = regexp.MustCompile(`^(\d{2}|\d{4})\s*[/-]\s*(\d{2}|\d{4})$`)

const (
	minYear = 1900
	maxYear = 3000
)

// ParseSeason accepts "2020/21", "2020-2021" and "20/21". Two digit years
// belong to the 2000s.
func ParseSeason(s string) (Season, error) {
	m := seasonPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Season{}, fmt.Errorf("not a season: '%s'", s)
	}

	start, _ := strconv.Atoi(m[1])
	end, _ := strconv.Atoi(m[2])
	if start < 100 {
		start += 2000
	}
	if end < 100 {
		end += start / 100 * 100
		if end < start {
			end += 100
		}
	}

	if start < minYear || start > maxYear || end < minYear || end > maxYear {
		return Season{}, fmt.Errorf("season years out of range: '%s'", s)
	}
	if end < start {
		return Season{}, fmt.Errorf("season ends before it starts: '%s'", s)
	}
	return Season{StartYear: start, EndYear: end}, nil
}

func (s Season) IsZero() bool {
	return s.StartYear == 0 && s.EndYear == 0
}

func (s Season) String() string {
	if s.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d/%02d", s.StartYear, s.EndYear%100)
}

// Fixture is the stage of a competition a match belongs to. Number orders
// fixtures; knockout stages sort after every matchday.
type Fixture struct {
	Title  string `json:"title"`
	Number int    `json:"number"`
}

var (
	GroupStage   = Fixture{Title: "Group Stage", Number: 256}
	RoundOf64    = Fixture{Title: "Round of 64", Number: 1024 * 16}
	RoundOf32    = Fixture{Title: "Round of 32", Number: 1024 * 32}
	RoundOf16    = Fixture{Title: "Round of 16", Number: 1024 * 64}
	QuarterFinal = Fixture{Title: "Quarter-Final", Number: 1024 * 1024}
	SemiFinal    = Fixture{Title: "Semi-Final", Number: 1024 * 1024 * 4}
	Playoff      = Fixture{Title: "Playoff", Number: 1024 * 1024 * 8}
	Final        = Fixture{Title: "Final", Number: 1024 * 1024 * 16}
)

var (
	fixtureNumber      = regexp.MustCompile(`^\d{1,2}$`)
	fixtureTitleNumber = regexp.MustCompile(`^(\p{L}+) (\d{1,2})$`)
	fixtureGroup       = regexp.MustCompile(`(?i)\bgroup\b`)
	fixtureQuarter     = regexp.MustCompile(`(?i)\bquarter[-\s]?(final)?s?\b`)
	fixtureSemi        = regexp.MustCompile(`(?i)\bsemi[-\s]?(final)?s?\b`)
	fixturePlayoff     = regexp.MustCompile(`(?i)\bplay-*offs?\b`)
	fixtureFinal       = regexp.MustCompile(`(?i)\bfinal\b`)
	fixtureRound       = regexp.MustCompile(`(?i)\bround\s+of\s+(\d+)\b`)
)

// ParseFixture understands a bare number ("13"), a title and number
// ("Matchday 26", "Jornada 3") and the names of competition stages.
func ParseFixture(s string) (Fixture, error) {
	s = strings.TrimSpace(s)

	if fixtureNumber.MatchString(s) {
		n, _ := strconv.Atoi(s)
		return Fixture{Title: fmt.Sprintf("Matchday %d", n), Number: n}, nil
	}
	if m := fixtureTitleNumber.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[2])
		return Fixture{Title: fmt.Sprintf("%s %d", m[1], n), Number: n}, nil
	}

	switch {
	case fixtureGroup.MatchString(s):
		return GroupStage, nil
	case fixtureQuarter.MatchString(s):
		return QuarterFinal, nil
	case fixtureSemi.MatchString(s):
		return SemiFinal, nil
	case fixturePlayoff.MatchString(s):
		return Playoff, nil
	case fixtureFinal.MatchString(s):
		return Final, nil
	}

	if m := fixtureRound.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		switch n {
		case 16:
			return RoundOf16, nil
		case 32:
			return RoundOf32, nil
		case 64:
			return RoundOf64, nil
		default:
			return Fixture{Title: fmt.Sprintf("Round of %d", n), Number: 1024 + n}, nil
		}
	}

	return Fixture{}, fmt.Errorf("not a fixture: '%s'", s)
}

func (f Fixture) String() string {
	return f.Title
}
