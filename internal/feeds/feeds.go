// Package feeds holds the static registry mapping news categories to
// their RSS sources.
package feeds

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"newsdesk/internal/logger"
)

// AllCategories is the pseudo-key that resolves to every source in
// registry-definition order.
const AllCategories = "all"

// Source is one feed endpoint inside a category.
type Source struct {
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url" json:"url"`
}

// Category groups an ordered list of sources under a key.
type Category struct {
	Name    string   `yaml:"name"`
	Sources []Source `yaml:"sources"`
}

// registryConfig is the YAML shape of a feeds file:
//
//	default: headlines
//	categories:
//	  - name: headlines
//	    sources:
//	      - name: BBC
//	        url: https://feeds.bbci.co.uk/news/rss.xml
type registryConfig struct {
	Default    string     `yaml:"default"`
	Categories []Category `yaml:"categories"`
}

// Registry resolves category keys to source lists. It is immutable after
// construction and safe for concurrent use.
type Registry struct {
	categories map[string][]Source
	order      []string
	defaultKey string
}

// Default returns the built-in registry: BBC and NYT section feeds
// grouped into the categories the service has always shipped with.
func Default() *Registry {
	r := &Registry{categories: map[string][]Source{}, defaultKey: "headlines"}
	add := func(name string, sources ...Source) {
		r.order = append(r.order, name)
		r.categories[name] = sources
	}

	add("headlines",
		Source{Name: "BBC", URL: "https://feeds.bbci.co.uk/news/rss.xml"},
		Source{Name: "NYT", URL: "https://rss.nytimes.com/services/xml/rss/nyt/World.xml"},
	)
	add("business",
		Source{Name: "BBC Business", URL: "https://feeds.bbci.co.uk/news/business/rss.xml"},
		Source{Name: "NYT Business", URL: "https://rss.nytimes.com/services/xml/rss/nyt/Business.xml"},
	)
	add("tech",
		Source{Name: "BBC Tech", URL: "https://feeds.bbci.co.uk/news/technology/rss.xml"},
		Source{Name: "NYT Tech", URL: "https://rss.nytimes.com/services/xml/rss/nyt/Technology.xml"},
	)
	add("entertainment",
		Source{Name: "BBC Entertainment", URL: "https://feeds.bbci.co.uk/news/entertainment_and_arts/rss.xml"},
	)
	add("sports",
		Source{Name: "BBC Sport", URL: "https://feeds.bbci.co.uk/sport/rss.xml"},
	)
	add("world",
		Source{Name: "BBC World", URL: "https://feeds.bbci.co.uk/news/world/rss.xml"},
		Source{Name: "NYT World", URL: "https://rss.nytimes.com/services/xml/rss/nyt/World.xml"},
	)
	add("health",
		Source{Name: "BBC Health", URL: "https://feeds.bbci.co.uk/news/health/rss.xml"},
		Source{Name: "NYT Health", URL: "https://rss.nytimes.com/services/xml/rss/nyt/Health.xml"},
	)
	add("science",
		Source{Name: "BBC Science", URL: "https://feeds.bbci.co.uk/news/science_and_environment/rss.xml"},
		Source{Name: "NYT Science", URL: "https://rss.nytimes.com/services/xml/rss/nyt/Science.xml"},
	)

	return r
}

// Load reads a registry from a YAML file. A missing default key falls
// back to the first category in the file.
func Load(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg registryConfig
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing feeds config %s: %w", path, err)
	}
	if len(cfg.Categories) == 0 {
		return nil, fmt.Errorf("feeds config %s defines no categories", path)
	}

	r := &Registry{categories: map[string][]Source{}}
	for _, c := range cfg.Categories {
		if c.Name == "" || c.Name == AllCategories {
			return nil, fmt.Errorf("feeds config %s: invalid category name %q", path, c.Name)
		}
		if len(c.Sources) == 0 {
			return nil, fmt.Errorf("feeds config %s: category %q has no sources", path, c.Name)
		}
		if _, dup := r.categories[c.Name]; dup {
			return nil, fmt.Errorf("feeds config %s: duplicate category %q", path, c.Name)
		}
		r.order = append(r.order, c.Name)
		r.categories[c.Name] = c.Sources
	}

	r.defaultKey = cfg.Default
	if r.defaultKey == "" {
		r.defaultKey = r.order[0]
	}
	if _, ok := r.categories[r.defaultKey]; !ok {
		return nil, fmt.Errorf("feeds config %s: default category %q is not defined", path, r.defaultKey)
	}

	return r, nil
}

// LoadOrDefault loads a registry file when one exists, otherwise returns
// the built-in registry.
func LoadOrDefault(path string) (*Registry, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Debug("feeds config not found, using built-in registry", "path", path)
		return Default(), nil
	}
	return Load(path)
}

// Resolve returns the ordered source list for key and the canonical
// category the sources belong to. Unknown keys resolve to the default
// category. The AllCategories pseudo-key concatenates every category in
// definition order and resolves to itself.
func (r *Registry) Resolve(key string) ([]Source, string) {
	if key == AllCategories {
		var out []Source
		for _, name := range r.order {
			out = append(out, r.categories[name]...)
		}
		return out, AllCategories
	}

	sources, ok := r.categories[key]
	if !ok {
		logger.Debug("unknown category, falling back to default", "category", key, "default", r.defaultKey)
		key = r.defaultKey
		sources = r.categories[key]
	}

	out := make([]Source, len(sources))
	copy(out, sources)
	return out, key
}

// Categories returns the category keys in definition order.
func (r *Registry) Categories() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// DefaultCategory returns the key unknown categories resolve to.
func (r *Registry) DefaultCategory() string {
	return r.defaultKey
}
