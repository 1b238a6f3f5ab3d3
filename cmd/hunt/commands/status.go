package commands

import (
	"context"
	"time"

	"github.com/dyluth/hunt/internal/config"
	"github.com/dyluth/hunt/internal/printer"
	"github.com/dyluth/hunt/internal/progress"
	"github.com/dyluth/hunt/internal/report"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show device, storage backend and progress",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	printer.Info("Device:   %s\n", a.DeviceID())
	printer.Info("Backend:  %s\n", a.Mode())
	printer.Info("State:    %s\n", a.KV.Path())

	if a.Mode() == progress.ModeRemote {
		remote := cfg.Storage.Remote
		if remote.Driver == config.DriverSQLite {
			printer.Info("Store:    sqlite %s\n", remote.SQLitePath)
		} else {
			printer.Info("Store:    redis namespace '%s'\n", remote.Namespace)
		}

		if err := a.Ping(ctx); err != nil {
			printer.Warning("Record store unreachable: %v\n", err)
		} else {
			printer.Success("Record store reachable\n")
		}
	}

	state := a.Facade.FetchProgress(ctx)
	if !state.IsReady() {
		return printer.Error(
			"could not load progress",
			state.Message,
			[]string{"Fall back to local progress:\n  hunt --mode local status"},
		)
	}

	completed := report.Completed(report.Rows(a.Registry, state.CompletedSlugs))
	printer.Info("Progress: %d/%d\n\n", completed, a.Registry.Len())

	frontier := report.FrontierSlug(a.Registry, state.CompletedSlugs)
	printer.Println(report.Trail(a.Registry, frontier))
	if completed < a.Registry.Len() {
		printer.Info("\nNext: hunt visit %s\n", frontier)
	}
	return nil
}
