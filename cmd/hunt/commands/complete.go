package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/dyluth/hunt/internal/hunt"
	"github.com/dyluth/hunt/internal/printer"
	"github.com/spf13/cobra"
)

var completeCmd = &cobra.Command{
	Use:   "complete SLUG",
	Short: "Mark an unlocked stage as completed",
	Long: `Complete a stage and move on to the next one.

The stage must be unlocked. Completing a stage twice is harmless. On the final
stage the hunt is finished.

Examples:
  hunt complete 7f3a9c`,
	Args: cobra.ExactArgs(1),
	RunE: runComplete,
}

func init() {
	rootCmd.AddCommand(completeCmd)
}

func runComplete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	slug := args[0]

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	nav := &routeRecorder{}
	ctrl := hunt.NewController(a.Facade, a.Registry, nav, logger)

	view := ctrl.Visit(ctx, slug)
	if view.State != hunt.ViewStage {
		return renderView(a, view, false)
	}

	if err := ctrl.Complete(ctx); err != nil {
		var cerr *hunt.CompletionError
		if errors.As(err, &cerr) {
			return printer.ErrorWithContext(
				"could not save progress",
				cerr.Message,
				map[string]string{"Stage": cerr.Slug, "Backend": string(a.Mode())},
				[]string{fmt.Sprintf("Try again:\n  hunt complete %s", cerr.Slug)},
			)
		}
		return fmt.Errorf("failed to complete stage: %w", err)
	}

	if next := nav.take(); next != "" {
		printer.Success("Stage '%s' completed\n", slug)
		printer.Info("Next stage: %s\n", next)
		return nil
	}

	if ctrl.View().Finished {
		printer.Success("Hunt finished! You reached the final stage\n")
	}
	return nil
}
