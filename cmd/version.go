package cmd

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/fgrehm/devctr/internal/render"
	"github.com/fgrehm/devctr/internal/ui"
	"github.com/fgrehm/devctr/internal/workspace"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version and workspace information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		layout, err := currentWorkspace()
		if err != nil {
			logger.Debug("could not resolve workspace", "error", err)
		}
		printVersion(newUI(), cmd.OutOrStdout(), layout)
	},
}

// printVersion writes the build details followed by what the generated
// scripts will use in this workspace. An empty layout Root is reported as
// "none".
func printVersion(u *ui.UI, w io.Writer, layout workspace.Layout) {
	_, _ = fmt.Fprintln(w, versionString())
	u.Keyval("commit", Commit)
	u.Keyval("built", Built)
	u.Keyval("go", runtime.Version())

	root, settings := "none", "defaults"
	if layout.Root != "" {
		root = layout.Root
		if layout.Exists(workspace.SettingsFile) {
			settings = workspace.SettingsFile
		}
	}
	u.Keyval("workspace", root)
	u.Keyval("settings", settings)
	u.Keyval("engines", strings.Join(render.Engines, ", "))
}
