package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <feed.json>",
	Short: "Ingest a raw status-log feed page into the workspace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read feed page: %w", err)
		}

		source := filepath.Base(args[0])
		result, err := services.Timesheet.IngestJSON(source, data)
		if err != nil {
			return fmt.Errorf("ingest %s: %w", source, err)
		}

		if _, err := services.Timesheet.Summaries(); err != nil {
			return fmt.Errorf("refresh summaries: %w", err)
		}

		fmt.Printf("Ingested %s: %d accepted, %d skipped\n", source, result.Accepted, result.Skipped)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(ingestCmd)
}
