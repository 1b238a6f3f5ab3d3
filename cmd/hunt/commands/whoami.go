package commands

import (
	"github.com/dyluth/hunt/internal/identity"
	"github.com/dyluth/hunt/internal/printer"
	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Print this device's participant ID",
	Long: `Print the device ID that keys this participant's progress.

The ID is created on first use and never changes. Use it with
"hunt watch --device" on another machine to follow this device's progress.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		id := a.DeviceID()
		if identity.IsSentinel(id) {
			printer.Warning("No durable storage: progress is not tied to this device\n")
		}
		printer.Println(id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
