package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/felixgeelhaar/onsite/internal/infrastructure/watch"
	"github.com/felixgeelhaar/onsite/pkg/domain/events"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch a drop directory and ingest feed pages as they arrive",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		dir := ""
		if len(args) > 0 {
			dir = args[0]
		} else if cfg, err := services.Workspace.Repo.LoadConfig(); err == nil && cfg.FeedDropDir != "" {
			dir = cfg.FeedDropDir
		}
		if dir == "" {
			return fmt.Errorf("no drop directory: pass one as an argument or set feed_drop_dir in config")
		}

		watcher, err := watch.NewFeedWatcher(dir, 500*time.Millisecond, func(path string) {
			_ = services.Workspace.Publisher.Publish(events.NewFileChanged(path, "write").Base())

			data, err := os.ReadFile(path)
			if err != nil {
				fmt.Printf("Skipping %s: %v\n", path, err)
				return
			}

			source := filepath.Base(path)
			result, err := services.Timesheet.IngestJSON(source, data)
			if err != nil {
				fmt.Printf("Rejected %s: %v\n", source, err)
				return
			}
			if _, err := services.Timesheet.Summaries(); err != nil {
				fmt.Printf("Summary refresh failed: %v\n", err)
				return
			}
			fmt.Printf("Ingested %s at %s: %d accepted, %d skipped\n",
				source, time.Now().Format("15:04:05"), result.Accepted, result.Skipped)
		})
		if err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}

		fmt.Printf("Watching %s for feed pages...\n", dir)
		return watcher.Run(cmd.Context())
	},
}

func init() {
	RootCmd.AddCommand(watchCmd)
}
