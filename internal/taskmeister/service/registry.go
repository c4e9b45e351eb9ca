package service

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
)

// Registry holds the set of Service definitions currently known to the
// daemon, keyed by alias (spec.md §4.5).
type Registry struct {
	services map[string]Service
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{services: make(map[string]Service)}
}

// Get returns the Service for alias, if known.
func (r Registry) Get(alias string) (Service, bool) {
	svc, ok := r.services[alias]
	return svc, ok
}

// All returns every known Service, ordered by alias.
func (r Registry) All() []Service {
	aliases := make([]string, 0, len(r.services))
	for alias := range r.services {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)

	services := make([]Service, 0, len(aliases))
	for _, alias := range aliases {
		services = append(services, r.services[alias])
	}
	return services
}

// Put registers svc directly, overwriting any existing entry with the same
// alias. Used by the Orchestrator to apply a Diff's Added/Changed sets
// without a full disk reload; removals go through Delete.
func (r *Registry) Put(svc Service) {
	r.services[svc.Alias] = svc
}

// Delete removes alias from the Registry.
func (r *Registry) Delete(alias string) {
	delete(r.services, alias)
}

// Load walks every directory in paths recursively; each regular file found
// is parsed as one Service. Duplicate aliases across files are a load error
// reporting both file paths (spec.md §4.5).
func Load(paths []string) (*Registry, error) {
	registry := NewRegistry()
	sources := make(map[string]string) // alias -> source file, for duplicate reporting

	for _, root := range paths {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return fmt.Errorf("walk %s: %w", path, err)
			}
			if d.IsDir() {
				return nil
			}

			svc, err := LoadFile(path)
			if err != nil {
				return err
			}

			if existing, ok := sources[svc.Alias]; ok {
				return fmt.Errorf(
					"duplicate alias %q found in %s and %s",
					svc.Alias, existing, path,
				)
			}
			sources[svc.Alias] = path
			registry.services[svc.Alias] = *svc

			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return registry, nil
}

// diffKind describes the action required to reconcile a Job against the new
// Registry contents (spec.md §4.5).
type diffKind int

const (
	// diffNone means the Service is unchanged; no action.
	diffNone diffKind = iota
	// diffChanged means the Service exists in both registries but differs;
	// triggers a Restart with remove_service=true, restart_job=true.
	diffChanged
	// diffRemoved means the Service existed before but no longer does;
	// triggers a Stop with remove_service=true, restart_job=false.
	diffRemoved
	// diffAdded means the Service is new; per spec.md §4.5, no auto-start.
	diffAdded
)

// DiffEntry is one actionable item produced by Diff.
type DiffEntry struct {
	Alias string
	Kind  diffKind
}

// Diff compares the receiver (the old Registry) against next (the newly
// loaded Registry) and returns the disjoint action sets described in
// spec.md §4.5.
func (r Registry) Diff(next *Registry) []DiffEntry {
	var entries []DiffEntry

	for alias, oldSvc := range r.services {
		newSvc, ok := next.services[alias]
		switch {
		case !ok:
			entries = append(entries, DiffEntry{Alias: alias, Kind: diffRemoved})
		case !oldSvc.Equal(newSvc):
			entries = append(entries, DiffEntry{Alias: alias, Kind: diffChanged})
		}
	}
	for alias := range next.services {
		if _, ok := r.services[alias]; !ok {
			entries = append(entries, DiffEntry{Alias: alias, Kind: diffAdded})
		}
	}

	return entries
}

// IsRemoved reports whether the DiffEntry is a removal.
func (e DiffEntry) IsRemoved() bool { return e.Kind == diffRemoved }

// IsChanged reports whether the DiffEntry is a change.
func (e DiffEntry) IsChanged() bool { return e.Kind == diffChanged }

// IsAdded reports whether the DiffEntry is a newly-declared Service.
func (e DiffEntry) IsAdded() bool { return e.Kind == diffAdded }
