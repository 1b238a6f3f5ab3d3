package commands

import (
	"context"
	"fmt"

	"github.com/dyluth/hunt/internal/printer"
	"github.com/dyluth/hunt/internal/report"
	"github.com/spf13/cobra"
)

var stagesOutputFormat string

var stagesCmd = &cobra.Command{
	Use:   "stages",
	Short: "List the stages and which are completed, unlocked or locked",
	Long: `List every stage of the hunt with its status for this participant.

Output Formats:
  default - Human-readable table; titles of locked stages are hidden
  jsonl   - Line-delimited JSON, one stage per line

Examples:
  hunt stages
  hunt stages --output=jsonl | jq 'select(.status=="unlocked") | .slug'`,
	Args: cobra.NoArgs,
	RunE: runStages,
}

func init() {
	stagesCmd.Flags().StringVarP(&stagesOutputFormat, "output", "o", "default", "Output format: default or jsonl")

	rootCmd.AddCommand(stagesCmd)
}

func runStages(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	var outputFormat report.OutputFormat
	switch stagesOutputFormat {
	case "default":
		outputFormat = report.OutputFormatDefault
	case "jsonl":
		outputFormat = report.OutputFormatJSONL
	default:
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", stagesOutputFormat),
			[]string{"Valid formats: default, jsonl"},
		)
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	state := a.Facade.FetchProgress(ctx)
	if !state.IsReady() {
		return printer.ErrorWithContext(
			"could not load progress",
			state.Message,
			map[string]string{"Backend": string(a.Mode())},
			[]string{"Check the record store is reachable:\n  hunt status"},
		)
	}

	rows := report.Rows(a.Registry, state.CompletedSlugs)
	if outputFormat == report.OutputFormatJSONL {
		return report.FormatJSONL(printer.Out(), rows)
	}

	report.FormatTable(printer.Out(), rows)
	return nil
}
