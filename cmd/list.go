package cmd

import (
	"fmt"
	"strings"

	"github.com/fgrehm/devctr/internal/devcontainer"
	"github.com/fgrehm/devctr/internal/process"
	"github.com/fgrehm/devctr/internal/repo"
	"github.com/fgrehm/devctr/internal/ui"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List repositories and container definitions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		u := newUI()

		layout, err := currentWorkspace()
		if err != nil {
			return failed("listing workspace", err)
		}

		repos, err := repo.NewRegistrar(layout, process.NewExecRunner(logger), logger).List()
		if err != nil {
			return failed("listing workspace", err)
		}
		u.Header("Repositories")
		if len(repos) == 0 {
			u.Dim("  No repositories")
		} else {
			var rows [][]string
			for _, name := range repos {
				rows = append(rows, []string{name, layout.RepoPath(name)})
			}
			u.Table([]string{"REPO", "PATH"}, rows)
		}

		defs, err := devcontainer.List(layout)
		if err != nil {
			return failed("listing workspace", err)
		}
		u.Header("Containers")
		printContainers(u, defs)
		return nil
	},
}

// printContainers renders definition summaries. Definitions that failed to
// load keep their row with the error in the last column.
func printContainers(u *ui.UI, defs []devcontainer.Summary) {
	if len(defs) == 0 {
		u.Dim("  No containers")
		return
	}

	var rows [][]string
	for _, d := range defs {
		if d.Err != nil {
			logger.Debug("could not load container definition", "name", d.Name, "error", d.Err)
			rows = append(rows, []string{d.Name, "", "", "", fmt.Sprintf("(error: %v)", d.Err)})
			continue
		}
		rows = append(rows, []string{d.Name, d.SubrepoTag, d.BaseImage, d.User, strings.Join(d.Targets, ", ")})
	}
	u.Table([]string{"CONTAINER", "IMAGE", "BASE", "USER", "TARGETS"}, rows)
}
