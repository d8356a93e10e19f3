package extract

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Members of the Unicode \w and \s sets, spliced into bracket expressions.
const (
	wordSet  = `\p{L}\p{M}\p{Nd}\p{Pc}`
	spaceSet = `\s\p{Z}\x{85}`
)

// boundaryPrefix names the empty groups standing in for \b and \B. RE2 word
// boundaries are ASCII only, so they are checked after matching instead.
const boundaryPrefix = "__boundary_"

type boundary struct {
	group int
	// want is true for \b and false for \B.
	want bool
}

// unicodeClasses rewrites the perl classes \w, \d, \s, their negations and
// the word boundary assertions of pattern so that they follow Unicode.
func unicodeClasses(pattern string) (string, error) {
	var b strings.Builder
	inClass := false
	markers := 0

	for i := 0; i < len(pattern); i++ {
		c := pattern[i]

		switch {
		case c == '\\' && i+1 < len(pattern):
			next := pattern[i+1]
			i++
			switch next {
			case 'Q':
				// literal text up to \E
				end := strings.Index(pattern[i+1:], `\E`)
				if end < 0 {
					b.WriteString(pattern[i-1:])
					return b.String(), nil
				}
				b.WriteString(pattern[i-1 : i+1+end+2])
				i += end + 2
			case 'w':
				if inClass {
					b.WriteString(wordSet)
				} else {
					b.WriteString("[" + wordSet + "]")
				}
			case 's':
				if inClass {
					b.WriteString(spaceSet)
				} else {
					b.WriteString("[" + spaceSet + "]")
				}
			case 'W', 'S':
				if inClass {
					return "", fmt.Errorf(`\%c inside a character class has no Unicode form`, next)
				}
				set := wordSet
				if next == 'S' {
					set = spaceSet
				}
				b.WriteString("[^" + set + "]")
			case 'd':
				b.WriteString(`\p{Nd}`)
			case 'D':
				b.WriteString(`\P{Nd}`)
			case 'b', 'B':
				if inClass {
					b.WriteByte('\\')
					b.WriteByte(next)
					continue
				}
				fmt.Fprintf(&b, "(?P<%s%c%d>)", boundaryPrefix, next, markers)
				markers++
			default:
				b.WriteByte('\\')
				b.WriteByte(next)
			}

		case c == '[' && !inClass:
			inClass = true
			b.WriteByte(c)
			if i+1 < len(pattern) && pattern[i+1] == '^' {
				b.WriteByte('^')
				i++
			}
			// a leading ] is a literal
			if i+1 < len(pattern) && pattern[i+1] == ']' {
				b.WriteByte(']')
				i++
			}

		case c == '[' && inClass && strings.HasPrefix(pattern[i:], "[:"):
			end := strings.Index(pattern[i:], ":]")
			if end < 0 {
				b.WriteByte(c)
				continue
			}
			b.WriteString(pattern[i : i+end+2])
			i += end + 1

		case c == ']' && inClass:
			inClass = false
			b.WriteByte(c)

		default:
			b.WriteByte(c)
		}
	}

	return b.String(), nil
}

// groupIndex maps the declared group numbers to submatch indexes of re,
// skipping the boundary markers, and lists those markers.
func groupIndex(re *regexp.Regexp) (groups []int, checks []boundary) {
	groups = []int{0}
	for i, name := range re.SubexpNames() {
		if i == 0 {
			continue
		}
		if kind, ok := strings.CutPrefix(name, boundaryPrefix); ok {
			checks = append(checks, boundary{group: i, want: kind[0] == 'b'})
			continue
		}
		groups = append(groups, i)
	}
	return groups, checks
}

func isWordBoundary(text string, pos int) bool {
	before, after := false, false
	if pos > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:pos])
		before = isWordRune(r)
	}
	if pos < len(text) {
		r, _ := utf8.DecodeRuneInString(text[pos:])
		after = isWordRune(r)
	}
	return before != after
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsMark(r) || unicode.IsDigit(r) || unicode.Is(unicode.Pc, r)
}
