// Package hunt drives the participant-facing flow for one navigation target:
// resolve the requested stage, decide whether it is unlocked, and record its
// completion.
package hunt

import (
	"context"
	"errors"
	"sync"

	"github.com/dyluth/hunt/internal/progress"
	"github.com/dyluth/hunt/pkg/stages"
	"go.uber.org/zap"
)

// ViewState is the state of the controller for the current navigation target.
type ViewState string

const (
	ViewLoading      ViewState = "loading"
	ViewLocked       ViewState = "locked"
	ViewStage        ViewState = "stage"
	ViewNetworkError ViewState = "network_error"
)

// DefaultCompletionError is shown when a failed completion carries no message.
const DefaultCompletionError = "Could not save progress."

// ErrNotCompletable is returned by Complete outside of the stage state.
var ErrNotCompletable = errors.New("no unlocked stage to complete")

// CompletionError reports a failed completion. The stage stays on screen and
// the action can be retried.
type CompletionError struct {
	Slug    string
	Message string
}

func (e *CompletionError) Error() string {
	return e.Message
}

// Navigator is the routing layer. Replace swaps the current entry for slug
// rather than pushing a new one.
type Navigator interface {
	Replace(slug string)
}

// ProgressSource is the subset of the progress facade the controller needs.
type ProgressSource interface {
	FetchProgress(ctx context.Context) progress.State
	CompleteStage(ctx context.Context, slug string) progress.Result
}

// View is a snapshot of what should be presented.
type View struct {
	Slug            string
	Stage           *stages.Stage // Nil unless the slug names a real stage
	Index           int
	State           ViewState
	Progress        progress.State
	Completing      bool
	CompletionError string
	Finished        bool
}

// Controller is the hunt state machine. All state transitions start from
// loading and each target slug ends in exactly one of locked, stage or
// network_error.
type Controller struct {
	source   ProgressSource
	registry *stages.Registry
	nav      Navigator
	logger   *zap.Logger

	mu         sync.Mutex
	generation uint64
	view       View
}

// NewController wires a controller. A nil registry uses stages.Default().
func NewController(source ProgressSource, registry *stages.Registry, nav Navigator, logger *zap.Logger) *Controller {
	if registry == nil {
		registry = stages.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		source:   source,
		registry: registry,
		nav:      nav,
		logger:   logger,
		view:     View{State: ViewLoading, Index: stages.NotFound, Progress: progress.Loading()},
	}
}

// View returns the current snapshot.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// Visit starts a new navigation to slug and returns the resulting view.
//
// An empty slug is redirected to the entry stage. If another Visit begins
// while this one is waiting on progress, this one's result is discarded and
// the newer view is returned instead.
func (c *Controller) Visit(ctx context.Context, slug string) View {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.view = View{Slug: slug, Index: stages.NotFound, State: ViewLoading, Progress: progress.Loading()}

	if slug == "" {
		entry := c.registry.EntrySlug()
		c.mu.Unlock()
		c.logger.Debug("redirecting to entry stage", zap.String("slug", entry))
		c.navigate(entry)
		return c.View()
	}

	stage, ok := c.registry.BySlug(slug)
	if !ok {
		c.view.State = ViewLocked
		c.mu.Unlock()
		c.logger.Debug("unknown stage slug", zap.String("slug", slug))
		return c.View()
	}
	c.view.Stage = &stage
	c.view.Index = c.registry.Index(slug)
	c.mu.Unlock()

	state := c.source.FetchProgress(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		c.logger.Debug("discarding stale progress", zap.String("slug", slug))
		return c.snapshot()
	}

	c.view.Progress = state
	switch {
	case state.Status == progress.StatusError:
		c.view.State = ViewNetworkError
		c.logger.Warn("progress unavailable", zap.String("slug", slug), zap.String("message", state.Message))
	case progress.HasUnlockedStage(state.CompletedSlugs, c.view.Index):
		c.view.State = ViewStage
	default:
		c.view.State = ViewLocked
	}
	return c.snapshot()
}

// Complete records the current stage as completed.
//
// On success it navigates to the next stage, or marks the hunt finished on
// the final stage. On failure the view stays on the stage with
// CompletionError set and a *CompletionError is returned.
func (c *Controller) Complete(ctx context.Context) error {
	c.mu.Lock()
	if c.view.State != ViewStage || c.view.Stage == nil || c.view.Completing {
		c.mu.Unlock()
		return ErrNotCompletable
	}
	gen := c.generation
	stage := *c.view.Stage
	c.view.Completing = true
	c.view.CompletionError = ""
	c.mu.Unlock()

	res := c.source.CompleteStage(ctx, stage.Slug)

	c.mu.Lock()
	current := gen == c.generation
	if current {
		c.view.Completing = false
	}

	if !res.OK {
		msg := res.Error
		if msg == "" {
			msg = DefaultCompletionError
		}
		if current {
			c.view.CompletionError = msg
		}
		c.mu.Unlock()
		c.logger.Warn("stage completion failed", zap.String("slug", stage.Slug), zap.String("error", msg))
		return &CompletionError{Slug: stage.Slug, Message: msg}
	}

	c.logger.Info("stage completed", zap.String("slug", stage.Slug))
	if stage.HasNext() {
		c.mu.Unlock()
		// A newer visit owns navigation now.
		if current {
			c.navigate(stage.NextSlug)
		}
		return nil
	}

	if current {
		completed := c.view.Progress.CompletedSlugs
		if !containsSlug(completed, stage.Slug) {
			c.view.Progress = progress.Ready(append(append([]string(nil), completed...), stage.Slug))
		}
		c.view.Finished = true
	}
	c.mu.Unlock()
	return nil
}

func (c *Controller) navigate(slug string) {
	if c.nav != nil {
		c.nav.Replace(slug)
	}
}

// snapshot copies the view so callers cannot alias controller state.
// Callers hold c.mu.
func (c *Controller) snapshot() View {
	v := c.view
	if v.Stage != nil {
		s := *v.Stage
		v.Stage = &s
	}
	if v.Progress.CompletedSlugs != nil {
		v.Progress.CompletedSlugs = append([]string(nil), v.Progress.CompletedSlugs...)
	}
	return v
}

func containsSlug(slugs []string, slug string) bool {
	for _, s := range slugs {
		if s == slug {
			return true
		}
	}
	return false
}
