package catalog

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Source yields the catalog to use for a discovery run. The engine reads it
// once per camera so a reload mid-batch affects only later cameras.
type Source interface {
	Current() *Catalog
}

// Static is a fixed Source, mainly for tests and the one-shot CLI.
type Static struct {
	Catalog *Catalog
}

func (s Static) Current() *Catalog { return s.Catalog }

// Registry holds the live catalog: the builtin profiles overlaid with an
// optional YAML file. Reload swaps the whole catalog atomically; readers
// never see a half-applied overlay.
type Registry struct {
	path string

	mu      sync.RWMutex
	current *Catalog
}

// NewRegistry creates a registry serving the builtin catalog. path may be
// empty, in which case Reload is a no-op.
func NewRegistry(path string) *Registry {
	return &Registry{path: path, current: Builtin()}
}

func (r *Registry) Current() *Catalog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Reload re-reads the overlay file and rebuilds the catalog. A missing or
// unreadable file leaves the previous catalog in place.
func (r *Registry) Reload() error {
	if r.path == "" {
		return nil
	}
	data, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("catalog overlay read: %w", err)
	}

	var overlay struct {
		Vendors []Profile `yaml:"vendors"`
	}
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("catalog overlay parse: %w", err)
	}

	next := Builtin()
	for _, p := range overlay.Vendors {
		if p.ID == "" {
			return fmt.Errorf("catalog overlay: vendor with empty id")
		}
		next.put(p)
	}

	r.mu.Lock()
	r.current = next
	r.mu.Unlock()
	return nil
}
