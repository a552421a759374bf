// Package catalog loads the ordered product list the viewer cycles
// through and fetches the asset bytes behind each entry.
package catalog

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vitrine3d/vitrine/internal/logger"
	"go.uber.org/zap"
)

// Entry is one product in the catalog. Width/Height/Thickness are the
// authoritative dimensions when supplied; each may be a bare number or
// a numeric string with a unit suffix.
type Entry struct {
	Name      string `yaml:"name"`
	URL       string `yaml:"url"`
	Width     string `yaml:"width,omitempty"`
	Height    string `yaml:"height,omitempty"`
	Thickness string `yaml:"thickness,omitempty"`
	Unit      string `yaml:"unit,omitempty"`
}

// Catalog is the ordered, validated product list.
type Catalog struct {
	Entries []Entry `yaml:"products"`
}

// LoadFile reads and validates a catalog YAML file. Entries with
// invalid or empty URLs are dropped, not fatal.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes catalog YAML and filters invalid entries.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}

	valid := c.Entries[:0]
	for _, e := range c.Entries {
		if !ValidURL(e.URL) {
			logger.Warn("dropping catalog entry with invalid url",
				zap.String("name", e.Name),
				zap.String("url", e.URL))
			continue
		}
		valid = append(valid, e)
	}
	c.Entries = valid
	return &c, nil
}

// Len returns the number of usable entries.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Entries)
}

// ValidURL accepts http(s) and file URLs plus plain filesystem paths.
func ValidURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "http", "https":
		return u.Host != ""
	case "file":
		return u.Path != ""
	case "":
		// Plain path.
		return true
	default:
		// Windows drive letters parse as single-letter schemes.
		return len(u.Scheme) == 1
	}
}
