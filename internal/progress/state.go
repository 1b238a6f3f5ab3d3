// Package progress persists and retrieves the set of completed stages for a
// participant and decides which stages are unlocked.
//
// Two interchangeable backends implement Backend: LocalBackend keeps progress
// in the client's durable key-value store, RemoteBackend keeps it in a
// networked record store keyed by device identity. The Facade exposes one
// uniform interface over whichever backend was chosen at startup.
package progress

// Status is the tri-state view of a progress fetch.
type Status string

const (
	// StatusLoading means a fetch is in flight.
	StatusLoading Status = "loading"

	// StatusError means the fetch failed and the completed set is unknown.
	StatusError Status = "error"

	// StatusReady means the completed set is available.
	StatusReady Status = "ready"
)

// State is the transient result of a progress fetch. It is never persisted.
type State struct {
	Status         Status   `json:"status"`
	CompletedSlugs []string `json:"completed_slugs,omitempty"` // Set only when Status is ready
	Message        string   `json:"message,omitempty"`         // Set only when Status is error
}

// Loading returns the in-flight state.
func Loading() State {
	return State{Status: StatusLoading}
}

// Ready returns a ready state holding completed.
// A nil slice is normalized to an empty one.
func Ready(completed []string) State {
	if completed == nil {
		completed = []string{}
	}
	return State{Status: StatusReady, CompletedSlugs: completed}
}

// Failed returns an error state carrying a human-readable message.
func Failed(message string) State {
	return State{Status: StatusError, Message: message}
}

// IsReady reports whether the completed set is available.
func (s State) IsReady() bool {
	return s.Status == StatusReady
}

// Result is the outcome of a completion attempt.
// When OK is false the caller must not assume the stage was recorded.
type Result struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Succeeded returns a successful completion result.
func Succeeded() Result {
	return Result{OK: true}
}

// Rejected returns a failed completion result.
func Rejected(message string) Result {
	return Result{OK: false, Error: message}
}

// dedupe drops empty and repeated slugs while keeping first-seen order.
func dedupe(slugs []string) []string {
	out := make([]string, 0, len(slugs))
	seen := make(map[string]struct{}, len(slugs))
	for _, s := range slugs {
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func contains(slugs []string, slug string) bool {
	for _, s := range slugs {
		if s == slug {
			return true
		}
	}
	return false
}
