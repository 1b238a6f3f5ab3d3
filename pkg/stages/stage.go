package stages

import "fmt"

// Stage is one step in the fixed hunt sequence. Stages are immutable once
// placed in a Registry.
type Stage struct {
	Slug        string `json:"slug" yaml:"slug"`                               // Unique, routable identifier
	Title       string `json:"title" yaml:"title"`                             // Display heading
	Description string `json:"description" yaml:"description"`                 // Display body
	NextHint    string `json:"next_hint,omitempty" yaml:"next_hint,omitempty"` // Clue for the following stage (optional)
	NextSlug    string `json:"next_slug,omitempty" yaml:"next_slug,omitempty"` // Empty on the terminal stage
	IsFinal     bool   `json:"is_final,omitempty" yaml:"is_final,omitempty"`
}

// HasNext reports whether completing this stage leads somewhere.
func (s Stage) HasNext() bool {
	return s.NextSlug != ""
}

// Validate checks the fields of a single stage in isolation.
// Chain invariants are checked by New.
func (s Stage) Validate() error {
	if s.Slug == "" {
		return fmt.Errorf("slug is required")
	}
	if s.IsFinal && s.NextSlug != "" {
		return fmt.Errorf("stage '%s': final stage must not have next_slug (got '%s')", s.Slug, s.NextSlug)
	}
	if !s.IsFinal && s.NextSlug == "" {
		return fmt.Errorf("stage '%s': next_slug is required on non-final stages", s.Slug)
	}
	if s.NextSlug == s.Slug {
		return fmt.Errorf("stage '%s': next_slug must not point to itself", s.Slug)
	}
	return nil
}
