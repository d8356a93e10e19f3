package feed

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
)

// Names of the formats shipped with this module.
const (
	FormatHTML = "html"
	FormatJSON = "json"
	FormatAtom = "atom"
)

// Format is one wire representation of a feed.
type Format interface {
	Name() string
	// BuildURL serializes q onto base.
	BuildURL(base *url.URL, q Query) (*url.URL, error)
	// ParsePage parses one payload fetched from pageURL.
	ParsePage(data []byte, pageURL *url.URL) (*Page, error)
}

// Formats is a set of formats addressed by name.
type Formats struct {
	mu      sync.RWMutex
	formats map[string]Format
}

func NewFormats() *Formats {
	return &Formats{formats: make(map[string]Format)}
}

// DefaultFormats holds the formats registered by their packages at init.
var DefaultFormats = NewFormats()

// Register adds f to the default set.
func Register(f Format) {
	DefaultFormats.Register(f)
}

// Get looks up a format of the default set.
func Get(name string) (Format, error) {
	return DefaultFormats.Get(name)
}

func (r *Formats) Register(f Format) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := strings.ToLower(f.Name())
	if _, exists := r.formats[name]; exists {
		panic(fmt.Sprintf("feed format '%s' registered twice", name))
	}
	r.formats[name] = f
}

func (r *Formats) Get(name string) (Format, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.formats[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownFormat, name)
	}
	return f, nil
}

func (r *Formats) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.formats))
	for name := range r.formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Detect guesses the format name of a feed from its base URL. Blogger serves
// the structured feeds under /feeds/, as atom unless alt=json is requested.
func Detect(base *url.URL) string {
	if !strings.Contains(base.Path, "/feeds/") {
		return FormatHTML
	}
	if strings.EqualFold(base.Query().Get("alt"), "json") {
		return FormatJSON
	}
	return FormatAtom
}
