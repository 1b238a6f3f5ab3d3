package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/dyluth/hunt/internal/printer"
	"github.com/dyluth/hunt/internal/progress"
	"github.com/dyluth/hunt/internal/watch"
	"github.com/dyluth/hunt/pkg/records"
	"github.com/spf13/cobra"
)

var (
	watchDevice  string
	watchSlug    string
	watchTimeout time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Wait for progress recorded by another device",
	Long: `Wait for progress recorded in the shared record store.

With --slug, polls until the device has completed that stage. Without --slug,
streams progress events as they happen (Redis) or waits for the device's
record to appear (SQLite).

Requires the remote backend.

Examples:
  # Wait for the partner's phone to finish the second stage
  hunt watch --slug bd91e2 --timeout 10m

  # Stream every completion in the namespace
  hunt watch --device ""`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchDevice, "device", "self", "Device ID to watch (\"self\" for this device, empty for all devices)")
	watchCmd.Flags().StringVar(&watchSlug, "slug", "", "Wait until this stage is completed")
	watchCmd.Flags().DurationVar(&watchTimeout, "timeout", 5*time.Minute, "Give up after this long")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if a.Mode() != progress.ModeRemote || a.Store == nil {
		return printer.Error(
			"watch requires a remote record store",
			fmt.Sprintf("The active backend is '%s'; local progress cannot change behind your back.", a.Mode()),
			[]string{"Configure storage.remote in hunt.yml and run with --mode remote"},
		)
	}

	device := watchDevice
	if device == "self" {
		device = a.DeviceID()
	}

	redisStore, streamable := a.Store.(*records.RedisStore)
	if watchSlug == "" && streamable {
		return streamEvents(ctx, redisStore, device)
	}

	if device == "" {
		return printer.Error("--device is required", "Polling needs a single device to watch.", []string{"Watch this device:\n  hunt watch --device self"})
	}

	if watchSlug != "" {
		printer.Step("Waiting for %s to complete '%s'...\n", device, watchSlug)
	} else {
		printer.Step("Waiting for progress from %s...\n", device)
	}

	rec, err := watch.PollForStage(ctx, a.Store, device, watchSlug, watchTimeout)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return printer.Error("stopped waiting", err.Error(), []string{"Increase --timeout or check the device ID with:\n  hunt whoami"})
	}

	printer.Success("%s has completed %d stage(s): %s\n", rec.DeviceID, len(rec.CompletedSlugs), strings.Join(rec.CompletedSlugs, ", "))
	return nil
}

func streamEvents(ctx context.Context, store *records.RedisStore, device string) error {
	ctx, cancel := context.WithTimeout(ctx, watchTimeout)
	defer cancel()

	sub, err := store.SubscribeProgressEvents(ctx)
	if err != nil {
		return printer.Error("could not subscribe to progress events", err.Error(), []string{"Check the record store is reachable:\n  hunt status"})
	}
	defer sub.Close()

	printer.Step("Streaming progress events (namespace '%s')...\n", store.Namespace())

	err = watch.Follow(ctx, sub, device,
		func(ev records.ProgressEvent) error {
			latest := "-"
			if n := len(ev.CompletedSlugs); n > 0 {
				latest = ev.CompletedSlugs[n-1]
			}
			printer.Info("%s %s completed %s (%d total)\n",
				time.UnixMilli(ev.UpdatedAtMs).Format(time.RFC3339), ev.DeviceID, latest, len(ev.CompletedSlugs))
			return nil
		},
		func(err error) {
			logger.Warn(err.Error())
		})

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
