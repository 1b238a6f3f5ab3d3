package report

import (
	"strings"

	"github.com/dyluth/hunt/pkg/stages"
)

// Trail markers.
const (
	MarkDone    = "●"
	MarkCurrent = "◉"
	MarkPending = "○"
)

// Trail renders one marker per stage relative to currentSlug: stages before
// it are done, it is current, later ones are pending. An unknown slug renders
// every stage as pending.
func Trail(reg *stages.Registry, currentSlug string) string {
	current := reg.Index(currentSlug)

	marks := make([]string, reg.Len())
	for i := range marks {
		switch {
		case current == stages.NotFound:
			marks[i] = MarkPending
		case i < current:
			marks[i] = MarkDone
		case i == current:
			marks[i] = MarkCurrent
		default:
			marks[i] = MarkPending
		}
	}
	return strings.Join(marks, " ")
}

// FrontierSlug is the stage a participant should visit next: the first
// stage that is not completed, or the final stage once all are.
func FrontierSlug(reg *stages.Registry, completed []string) string {
	for _, r := range Rows(reg, completed) {
		if r.Status != StatusCompleted {
			return r.Slug
		}
	}
	return reg.Final().Slug
}
