package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sweepOnce bool

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Periodically recalculate job flags so they track wall-clock time",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		if sweepOnce {
			result, err := services.Sweep.RunOnce()
			if err != nil {
				return err
			}
			fmt.Printf("Sweep pass: %d jobs, %d flagged\n", result.JobCount, result.FlaggedCount)
			return nil
		}

		fmt.Printf("Sweeping every %s. Press Ctrl+C to stop.\n", services.Sweep.Interval())
		return services.Sweep.Run(cmd.Context())
	},
}

func init() {
	sweepCmd.Flags().BoolVar(&sweepOnce, "once", false, "Run a single sweep pass and exit")
	RootCmd.AddCommand(sweepCmd)
}
