// Package report renders a participant's position in the hunt: a stage
// listing with per-stage status and the compact progress trail.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dyluth/hunt/internal/progress"
	"github.com/dyluth/hunt/pkg/stages"
)

// OutputFormat specifies how to format the stage listing.
type OutputFormat string

const (
	// OutputFormatDefault uses a table with truncated titles
	OutputFormatDefault OutputFormat = "default"

	// OutputFormatJSONL outputs one JSON object per stage
	OutputFormatJSONL OutputFormat = "jsonl"
)

// StageStatus is a stage's standing for one participant.
type StageStatus string

const (
	StatusCompleted StageStatus = "completed"
	StatusUnlocked  StageStatus = "unlocked"
	StatusLocked    StageStatus = "locked"
)

// Row is one stage in a listing.
type Row struct {
	Position int         `json:"position"` // 1-based
	Slug     string      `json:"slug"`
	Title    string      `json:"title"`
	Status   StageStatus `json:"status"`
	Final    bool        `json:"final,omitempty"`
}

// Rows classifies every stage in reg against the completed set. A stage is
// completed if recorded, otherwise unlocked or locked by the gating rule.
func Rows(reg *stages.Registry, completed []string) []Row {
	done := make(map[string]struct{}, len(completed))
	for _, slug := range completed {
		done[slug] = struct{}{}
	}

	list := reg.Stages()
	rows := make([]Row, len(list))
	for i, s := range list {
		status := StatusLocked
		if _, ok := done[s.Slug]; ok {
			status = StatusCompleted
		} else if progress.HasUnlockedStage(completed, i) {
			status = StatusUnlocked
		}
		rows[i] = Row{Position: i + 1, Slug: s.Slug, Title: s.Title, Status: status, Final: s.IsFinal}
	}
	return rows
}

// Completed counts the rows whose stage is completed. Recorded slugs that
// name no stage in the registry are not rows and so never count.
func Completed(rows []Row) int {
	n := 0
	for _, r := range rows {
		if r.Status == StatusCompleted {
			n++
		}
	}
	return n
}

// FormatTable writes rows as a formatted table to the provided writer.
// Returns the number of completed stages.
func FormatTable(w io.Writer, rows []Row) int {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No stages defined")
		return 0
	}

	completed := Completed(rows)

	fmt.Fprintf(w, "%-3s %-10s %-10s %s\n", "#", "SLUG", "STATUS", "TITLE")
	fmt.Fprintf(w, "%-3s %-10s %-10s %s\n", "---", "----------", "----------", "----------------------------------------")

	for _, r := range rows {
		fmt.Fprintf(w, "%-3d %-10s %-10s %s\n", r.Position, r.Slug, r.Status, formatTitle(r))
	}

	noun := "stage"
	if len(rows) != 1 {
		noun = "stages"
	}
	fmt.Fprintf(w, "\n%d of %d %s completed\n", completed, len(rows), noun)

	return completed
}

// FormatJSONL writes rows as line-delimited JSON, one object per stage.
func FormatJSONL(w io.Writer, rows []Row) error {
	for _, r := range rows {
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to marshal stage to JSON: %w", err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
			return fmt.Errorf("failed to write JSONL output: %w", err)
		}
	}
	return nil
}

// formatTitle truncates titles to 40 runes and tags the final stage.
// Locked stages keep their titles hidden.
func formatTitle(r Row) string {
	if r.Status == StatusLocked {
		return "?"
	}
	title := strings.TrimSpace(r.Title)
	if title == "" {
		title = "-"
	}
	if runes := []rune(title); len(runes) > 40 {
		title = string(runes[:37]) + "..."
	}
	if r.Final {
		title += " (final)"
	}
	return title
}
