package progress

import (
	"context"
	"strings"
)

// Mode names the active backend.
type Mode string

const (
	ModeAuto   Mode = "auto"
	ModeLocal  Mode = "local"
	ModeRemote Mode = "remote"
)

// Environment is the signal backend selection is derived from.
type Environment struct {
	Mode             Mode   // Explicit choice; empty or auto defers to the other fields
	Hostname         string // Host the client runs on / is served from
	RemoteConfigured bool   // Whether connection details for a record store exist
}

// SelectMode picks the backend for env. It is pure and side-effect free.
//
// An explicit local or remote mode wins. Otherwise development hosts
// (localhost, 172.*) use local storage, a configured record store selects
// remote, and everything else falls back to local.
func SelectMode(env Environment) Mode {
	switch env.Mode {
	case ModeLocal, ModeRemote:
		return env.Mode
	}

	if env.Hostname == "localhost" || strings.HasPrefix(env.Hostname, "172.") {
		return ModeLocal
	}
	if env.RemoteConfigured {
		return ModeRemote
	}
	return ModeLocal
}

// Facade is the single progress interface used by the hunt controller.
// The backend is chosen once, at construction.
type Facade struct {
	backend Backend
	mode    Mode
}

// NewFacade wraps backend. mode is informational.
func NewFacade(backend Backend, mode Mode) *Facade {
	return &Facade{backend: backend, mode: mode}
}

// Mode reports which backend is active.
func (f *Facade) Mode() Mode {
	return f.mode
}

// FetchProgress delegates to the active backend.
func (f *Facade) FetchProgress(ctx context.Context) State {
	return f.backend.FetchProgress(ctx)
}

// CompleteStage delegates to the active backend.
func (f *Facade) CompleteStage(ctx context.Context, slug string) Result {
	return f.backend.CompleteStage(ctx, slug)
}

// HasUnlockedStage is the gating rule. The first stage (index <= 0) is always
// unlocked; stage i > 0 is unlocked once at least i stages are completed.
//
// The rule counts completions and does not check which stages they were, so
// completions for non-contiguous stages still open later ones.
func HasUnlockedStage(completedSlugs []string, stageIndex int) bool {
	if stageIndex <= 0 {
		return true
	}
	return len(completedSlugs) >= stageIndex
}
