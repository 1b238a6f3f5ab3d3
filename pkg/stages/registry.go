package stages

import "fmt"

// NotFound is the index reported for slugs that are not in the registry.
const NotFound = -1

// Registry is an ordered, validated catalog of stages.
// A Registry is read-only after construction and safe for concurrent use.
type Registry struct {
	stages  []Stage
	indexes map[string]int // slug -> position
}

// New builds a registry from an ordered list of stages.
//
// The list must form a single linked chain: at least one stage, unique
// non-empty slugs, stage i's NextSlug equal to stage i+1's Slug, and exactly
// one final stage at the end with an empty NextSlug.
func New(list []Stage) (*Registry, error) {
	if len(list) == 0 {
		return nil, fmt.Errorf("registry must contain at least one stage")
	}

	r := &Registry{
		stages:  make([]Stage, len(list)),
		indexes: make(map[string]int, len(list)),
	}
	copy(r.stages, list)

	for i, s := range r.stages {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("stage %d: %w", i, err)
		}
		if prev, exists := r.indexes[s.Slug]; exists {
			return nil, fmt.Errorf("duplicate slug '%s' at positions %d and %d", s.Slug, prev, i)
		}
		r.indexes[s.Slug] = i
	}

	last := len(r.stages) - 1
	for i, s := range r.stages {
		if i == last {
			if !s.IsFinal {
				return nil, fmt.Errorf("last stage '%s' must be final", s.Slug)
			}
			continue
		}
		if s.IsFinal {
			return nil, fmt.Errorf("stage '%s' at position %d is final but is not the last stage", s.Slug, i)
		}
		if want := r.stages[i+1].Slug; s.NextSlug != want {
			return nil, fmt.Errorf("stage '%s': next_slug '%s' breaks the chain (expected '%s')", s.Slug, s.NextSlug, want)
		}
	}

	return r, nil
}

// MustNew is like New but panics on an invalid catalog.
// Intended for catalogs compiled into the binary.
func MustNew(list []Stage) *Registry {
	r, err := New(list)
	if err != nil {
		panic(fmt.Sprintf("stages: %v", err))
	}
	return r
}

// BySlug returns the stage with the given slug.
// The boolean is false when the slug is unknown.
func (r *Registry) BySlug(slug string) (Stage, bool) {
	i, ok := r.indexes[slug]
	if !ok {
		return Stage{}, false
	}
	return r.stages[i], true
}

// Index returns the 0-based position of slug in the chain, or NotFound.
func (r *Registry) Index(slug string) int {
	if i, ok := r.indexes[slug]; ok {
		return i
	}
	return NotFound
}

// IsValid reports whether slug identifies a known stage.
func (r *Registry) IsValid(slug string) bool {
	_, ok := r.indexes[slug]
	return ok
}

// EntrySlug returns the slug of the first stage in the chain.
func (r *Registry) EntrySlug() string {
	return r.stages[0].Slug
}

// Final returns the terminal stage.
func (r *Registry) Final() Stage {
	return r.stages[len(r.stages)-1]
}

// At returns the stage at position i.
func (r *Registry) At(i int) (Stage, bool) {
	if i < 0 || i >= len(r.stages) {
		return Stage{}, false
	}
	return r.stages[i], true
}

// Next returns the stage following slug, if any.
func (r *Registry) Next(slug string) (Stage, bool) {
	s, ok := r.BySlug(slug)
	if !ok || !s.HasNext() {
		return Stage{}, false
	}
	return r.BySlug(s.NextSlug)
}

// Len returns the number of stages.
func (r *Registry) Len() int {
	return len(r.stages)
}

// Stages returns a copy of the ordered catalog.
func (r *Registry) Stages() []Stage {
	out := make([]Stage, len(r.stages))
	copy(out, r.stages)
	return out
}
