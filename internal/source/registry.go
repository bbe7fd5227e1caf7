// Package source holds the source registry and the dispatcher that fans
// a research query out to the registered source adapters.
package source

import (
	"fmt"
	"sort"
	"strings"

	"github.com/prodscout/prodscout/internal/research"
)

// Registry maps source ids to their adapters. Populated once at startup,
// read-only afterwards.
type Registry struct {
	sources map[string]research.Source
}

// NewRegistry builds a Registry from the given sources.
func NewRegistry(sources ...research.Source) *Registry {
	m := make(map[string]research.Source, len(sources))
	for _, s := range sources {
		m[s.ID()] = s
	}
	return &Registry{sources: m}
}

// Lookup returns the source registered under id.
func (r *Registry) Lookup(id string) (research.Source, bool) {
	s, ok := r.sources[id]
	return s, ok
}

// Known returns the registered ids in sorted order.
func (r *Registry) Known() []string {
	ids := make([]string, 0, len(r.sources))
	for id := range r.sources {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Validate rejects any requested id without a registered source. This is
// the boundary check the orchestrator runs before doing any I/O.
func (r *Registry) Validate(ids []string) error {
	var unknown []string
	for _, id := range ids {
		if _, ok := r.sources[id]; !ok {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("%w: unknown source id(s) %s (known: %s)",
			research.ErrConfiguration,
			strings.Join(unknown, ", "),
			strings.Join(r.Known(), ", "))
	}
	return nil
}
