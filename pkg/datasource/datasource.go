// Package datasource defines configured feed endpoints and the plugin
// contract that turns them into snapshots of domain records.
package datasource

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/defeedco/matchday/pkg/extract"
	"github.com/defeedco/matchday/pkg/lib"
)

// idNamespace derives stable ids for data sources declared without one.
var idNamespace = uuid.MustParse("5f0c2f8e-3d4b-4c1e-9a57-2b8f6d1e7c90")

// DataSource is one configured feed endpoint together with the pattern kits
// used to extract records from its posts.
type DataSource struct {
	ID       uuid.UUID `json:"id" yaml:"id"`
	PluginID uuid.UUID `json:"pluginId" yaml:"pluginId" validate:"required"`
	Title    string    `json:"title,omitempty" yaml:"title,omitempty"`
	BaseURL  string    `json:"baseUrl" yaml:"baseUrl" validate:"required,feedurl"`
	// Format names a registered feed format. Empty means detect it from
	// BaseURL.
	Format      string               `json:"format,omitempty" yaml:"format,omitempty"`
	PatternKits []extract.Definition `json:"patternKits" yaml:"patternKits" validate:"required,min=1,dive"`
	Enabled     bool                 `json:"enabled" yaml:"enabled"`
}

func (ds *DataSource) String() string {
	if ds.Title != "" {
		return fmt.Sprintf("%s (%s)", ds.Title, ds.BaseURL)
	}
	return ds.BaseURL
}

// Validate checks the plugin independent constraints.
func (ds *DataSource) Validate() error {
	return lib.ValidateStruct(ds)
}

// EnsureID assigns an id derived from the plugin and base URL when none was
// configured, so repeated loads of the same file agree.
func (ds *DataSource) EnsureID() {
	if ds.ID == uuid.Nil {
		ds.ID = uuid.NewSHA1(idNamespace, []byte(ds.PluginID.String()+"|"+ds.BaseURL))
	}
}

// Encoding of a persisted data source.
type Encoding string

const (
	EncodingJSON Encoding = "json"
	EncodingYAML Encoding = "yaml"
)

// EncodingFromPath picks the encoding from a file extension.
func EncodingFromPath(path string) (Encoding, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return EncodingJSON, nil
	case ".yaml", ".yml":
		return EncodingYAML, nil
	default:
		return "", fmt.Errorf("unsupported data source file '%s'", path)
	}
}

// Decode reads either one data source or a list of them. Every data source
// is validated and given an id.
func Decode(r io.Reader, enc Encoding) ([]*DataSource, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var sources []*DataSource
	switch enc {
	case EncodingJSON:
		if data[0] == '[' {
			err = json.Unmarshal(data, &sources)
		} else {
			var ds DataSource
			err = json.Unmarshal(data, &ds)
			sources = []*DataSource{&ds}
		}
	case EncodingYAML:
		var node yaml.Node
		if err = yaml.Unmarshal(data, &node); err == nil && len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
			err = node.Decode(&sources)
		} else if err == nil {
			var ds DataSource
			err = node.Decode(&ds)
			sources = []*DataSource{&ds}
		}
	default:
		return nil, fmt.Errorf("unknown encoding '%s'", enc)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", enc, err)
	}

	for i, ds := range sources {
		if ds == nil {
			return nil, fmt.Errorf("data source %d is empty", i)
		}
		if err := ds.Validate(); err != nil {
			return nil, fmt.Errorf("data source %d: %w", i, err)
		}
		ds.EnsureID()
	}
	return sources, nil
}

// LoadFile decodes the data sources declared in a JSON or YAML file.
func LoadFile(path string) ([]*DataSource, error) {
	enc, err := EncodingFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	sources, err := Decode(f, enc)
	if err != nil {
		return nil, fmt.Errorf("load '%s': %w", path, err)
	}
	return sources, nil
}

// Encode writes ds in the given encoding.
func Encode(w io.Writer, enc Encoding, ds ...*DataSource) error {
	switch enc {
	case EncodingJSON:
		e := json.NewEncoder(w)
		e.SetIndent("", "  ")
		return e.Encode(ds)
	case EncodingYAML:
		e := yaml.NewEncoder(w)
		e.SetIndent(2)
		defer e.Close()
		return e.Encode(ds)
	default:
		return fmt.Errorf("unknown encoding '%s'", enc)
	}
}
