package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
)

var flagsJSON bool

var flagsCmd = &cobra.Command{
	Use:   "flags",
	Short: "Inspect and recalculate job punctuality flags",
}

var flagsRecalcCmd = &cobra.Command{
	Use:   "recalc",
	Short: "Recalculate flags for every stored job against the current time",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		result, err := services.Flags.Recalculate()
		if err != nil {
			return fmt.Errorf("recalculate flags: %w", err)
		}

		fmt.Printf("Recalculated %d jobs: %d flagged\n", result.JobCount, result.FlaggedCount)
		for _, id := range result.NewlyFlagged {
			flag := result.Flags[id]
			fmt.Printf("  + %s: %s (%d min)\n", id, flag.FlagReason, flag.DelayMinutes)
		}
		for _, id := range result.Cleared {
			fmt.Printf("  - %s: cleared\n", id)
		}
		return nil
	},
}

var flagsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the currently flagged jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		flags, err := services.Flags.Flags()
		if err != nil {
			return fmt.Errorf("load flags: %w", err)
		}

		if flagsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(flags)
		}

		ids := make([]string, 0, len(flags))
		for id, flag := range flags {
			if flag.IsFlagged {
				ids = append(ids, id)
			}
		}
		sort.Strings(ids)

		if len(ids) == 0 {
			fmt.Println("No flagged jobs.")
			return nil
		}

		fmt.Printf("%d flagged jobs:\n", len(ids))
		for _, id := range ids {
			flag := flags[id]
			fmt.Printf("  %-24s %-22s %d min\n", id, flag.FlagReason, flag.DelayMinutes)
		}
		return nil
	},
}

func init() {
	flagsListCmd.Flags().BoolVar(&flagsJSON, "json", false, "Output in JSON format")
	flagsCmd.AddCommand(flagsRecalcCmd)
	flagsCmd.AddCommand(flagsListCmd)
	RootCmd.AddCommand(flagsCmd)
}
