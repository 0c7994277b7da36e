package cli

import (
	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var projectPath string

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "onsite",
	Version: Version,
	Short:   "Field time tracking and job punctuality flags",
	Long: `Onsite reconciles raw worker status logs into per-project timesheets
and keeps punctuality flags on scheduled jobs current.
It answers:
1. Who worked where, and for how long?
2. Which jobs started or ended late?
3. What is happening on site right now?`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.PersistentFlags().StringVar(&projectPath, "project", "", "Path to the workspace root (defaults to the current directory)")
}
