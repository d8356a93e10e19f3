package blogger

import (
	"strings"
)

// DefaultPluginID identifies the Blogger plugin in persisted data sources.
const DefaultPluginID = "64d08bc8-bd9f-11ea-b3de-0242ac130004"

type Config struct {
	PluginID    string `env:"BLOGGER_PLUGIN_ID,default=64d08bc8-bd9f-11ea-b3de-0242ac130004" validate:"required,uuid"`
	Title       string `env:"BLOGGER_TITLE,default=Blogger" validate:"required"`
	Description string `env:"BLOGGER_DESCRIPTION,default=Match archives published on Blogger blogs"`
	// Semicolon separated host patterns, matched with path.Match.
	AllowedHosts string `env:"BLOGGER_ALLOWED_HOSTS,default=*.blogspot.com;www.blogger.com"`
	// AllowLocal permits file:// data sources, used for archived listings.
	AllowLocal bool `env:"BLOGGER_ALLOW_LOCAL,default=false"`
	// MaxPages caps the pages read per snapshot. Zero means no cap.
	MaxPages   int  `env:"BLOGGER_MAX_PAGES,default=20" validate:"min=0"`
	MaxResults int  `env:"BLOGGER_MAX_RESULTS,default=25" validate:"min=0,max=500"`
	Enabled    bool `env:"BLOGGER_ENABLED,default=true"`
}

func DefaultConfig() Config {
	return Config{
		PluginID:     DefaultPluginID,
		Title:        "Blogger",
		Description:  "Match archives published on Blogger blogs",
		AllowedHosts: "*.blogspot.com;www.blogger.com",
		MaxPages:     20,
		MaxResults:   25,
		Enabled:      true,
	}
}

func (c Config) hostPatterns() []string {
	var out []string
	for _, h := range strings.Split(c.AllowedHosts, ";") {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			out = append(out, h)
		}
	}
	return out
}
