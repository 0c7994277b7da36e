package cli

import (
	"fmt"

	"github.com/felixgeelhaar/onsite/internal/infrastructure/wiring"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new onsite workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := getProjectRoot()
		if err != nil {
			return fmt.Errorf("resolve project path: %w", err)
		}
		workspace := wiring.NewWorkspace(root)

		if workspace.Repo.IsInitialized() {
			fmt.Println("Workspace already initialized.")
			return nil
		}

		if err := workspace.Repo.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize workspace: %w", err)
		}
		if err := workspace.Audit.Log("workspace.initialized", "human", nil); err != nil {
			return fmt.Errorf("failed to record initialization: %w", err)
		}

		fmt.Printf("Successfully initialized onsite workspace at %s\n", root)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(initCmd)
}
