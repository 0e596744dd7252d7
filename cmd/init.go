package cmd

import (
	"github.com/fgrehm/devctr/internal/workspace"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init <name>",
	Short: "Create a new workspace directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u := newUI()

		parent, err := workspaceDir()
		if err != nil {
			return failed("initializing application", err)
		}

		u.Header("Initializing application: " + args[0])
		layout, err := workspace.Init(parent, args[0])
		if err != nil {
			return failed("initializing application", err)
		}

		logger.Debug("initialized workspace", "root", layout.Root)
		u.Success("Created " + layout.Root)
		u.Dim("  Next: cd " + args[0] + " && devctr add-repo <name> --git <url>")
		return nil
	},
}
