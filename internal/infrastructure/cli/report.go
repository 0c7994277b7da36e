package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var reportJSON bool

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show the aggregated timesheet, one row per work-order bucket",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		rows, err := services.Timesheet.Rows()
		if err != nil {
			return fmt.Errorf("aggregate timesheet: %w", err)
		}

		if reportJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(rows)
		}

		if len(rows) == 0 {
			fmt.Println("No logged work yet. Run 'onsite ingest' with a feed page first.")
			return nil
		}

		fmt.Printf("%-24s %-18s %-24s %-14s %8s %8s  %s\n",
			"Project", "Worker", "Work Order", "Status", "Work", "Break", "Active")
		for _, row := range rows {
			active := ""
			if row.IsCurrentlyActive {
				active = "*"
			}
			name := row.WorkOrderName
			if name == "" {
				name = "(ad hoc)"
			}
			fmt.Printf("%-24s %-18s %-24s %-14s %7sh %7sh  %s\n",
				row.ProjectName, row.WorkerName, name, row.Status,
				row.WorkHours, row.BreakHours, active)
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "Output in JSON format")
	RootCmd.AddCommand(reportCmd)
}
