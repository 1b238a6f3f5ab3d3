// Package stages defines the fixed, ordered catalog of hunt stages and the
// pure lookup functions used to validate and gate them.
//
// # Overview
//
// A hunt is a single linked chain of stages. Each stage is identified by an
// opaque slug that doubles as its routable key, and its position in the
// registry (0-based) is the unit of gating. Stage i's NextSlug always names
// stage i+1; the last stage has an empty NextSlug and is the only one marked
// final.
//
// # Usage Example
//
//	reg := stages.Default()
//
//	if !reg.IsValid(slug) {
//		// unknown slug, render locked
//	}
//
//	idx := reg.Index(slug) // stages.NotFound for unknown slugs
//	stage, _ := reg.BySlug(slug)
//	next := stage.NextSlug // "" on the final stage
//
// Custom registries are built with New, which rejects any catalog that breaks
// the chain invariants (duplicate slugs, broken links, missing or misplaced
// final stage).
//
// Lookups have no side effects and no failure modes beyond "not found", which
// is reported as a normal result rather than an error.
package stages
