package progress

import "context"

// Backend is one progress persistence strategy.
//
// Both operations report failures through their return values rather than
// errors so that callers always end up in a definite state.
type Backend interface {
	// FetchProgress returns the completed set, or an error state.
	FetchProgress(ctx context.Context) State

	// CompleteStage records slug as completed. Completing an already
	// completed stage succeeds without rewriting anything.
	CompleteStage(ctx context.Context, slug string) Result
}

var (
	_ Backend = (*LocalBackend)(nil)
	_ Backend = (*RemoteBackend)(nil)
	_ Backend = (*Facade)(nil)
)
