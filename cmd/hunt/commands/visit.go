package commands

import (
	"context"
	"fmt"

	"github.com/dyluth/hunt/internal/app"
	"github.com/dyluth/hunt/internal/hunt"
	"github.com/dyluth/hunt/internal/printer"
	"github.com/dyluth/hunt/internal/report"
	"github.com/spf13/cobra"
)

var visitHint bool

var visitCmd = &cobra.Command{
	Use:   "visit [SLUG]",
	Short: "Show a stage if it is unlocked",
	Long: `Visit a stage by its slug.

With no SLUG you are taken to the first stage. A stage is shown only once the
stages before it are completed; otherwise it is reported as locked.

Examples:
  # Start the hunt
  hunt visit

  # Show a stage together with the clue for the next one
  hunt visit bd91e2 --hint`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVisit,
}

func init() {
	visitCmd.Flags().BoolVar(&visitHint, "hint", false, "Show the clue for the next stage")

	rootCmd.AddCommand(visitCmd)
}

// routeRecorder is the CLI's navigation layer. Replace just remembers the
// most recent target so the command can follow it.
type routeRecorder struct {
	target string
}

func (r *routeRecorder) Replace(slug string) {
	r.target = slug
}

// take returns and clears the pending target.
func (r *routeRecorder) take() string {
	t := r.target
	r.target = ""
	return t
}

func runVisit(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	slug := ""
	if len(args) > 0 {
		slug = args[0]
	}

	nav := &routeRecorder{}
	ctrl := hunt.NewController(a.Facade, a.Registry, nav, logger)
	view := visitFollowingRedirects(ctx, ctrl, nav, slug)

	return renderView(a, view, visitHint)
}

// visitFollowingRedirects visits slug and, if the controller redirects, the
// redirect target.
func visitFollowingRedirects(ctx context.Context, ctrl *hunt.Controller, nav *routeRecorder, slug string) hunt.View {
	view := ctrl.Visit(ctx, slug)
	if target := nav.take(); target != "" {
		logger.Debug("following redirect")
		view = ctrl.Visit(ctx, target)
	}
	return view
}

// renderView prints a settled view. Locked and network error states are
// returned as errors so the exit status reflects them.
func renderView(a *app.App, view hunt.View, showHint bool) error {
	switch view.State {
	case hunt.ViewStage:
		printer.Stage(*view.Stage, report.Trail(a.Registry, view.Slug), showHint)
		return nil

	case hunt.ViewLocked:
		printer.Locked(view.Slug)
		return printer.Error(
			fmt.Sprintf("stage '%s' is locked", view.Slug),
			"This stage is not unlocked yet, or no stage has this slug.",
			[]string{"See which stages are open:\n  hunt stages"},
		)

	case hunt.ViewNetworkError:
		return printer.ErrorWithContext(
			"could not load progress",
			view.Progress.Message,
			map[string]string{"Backend": string(a.Mode())},
			[]string{
				"Check the record store is reachable:\n  hunt status",
				"Fall back to local progress:\n  hunt --mode local visit",
			},
		)

	default:
		return fmt.Errorf("stage '%s' did not settle (state %s)", view.Slug, view.State)
	}
}
