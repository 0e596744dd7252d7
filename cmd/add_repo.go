package cmd

import (
	"github.com/fgrehm/devctr/internal/process"
	"github.com/fgrehm/devctr/internal/repo"
	"github.com/spf13/cobra"
)

var gitFlag string

var addRepoCmd = &cobra.Command{
	Use:   "add-repo <name>",
	Short: "Register a repository, cloning it when --git is given",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u := newUI()
		name := args[0]

		layout, err := currentWorkspace()
		if err != nil {
			return failed("adding repo", err)
		}

		reg := repo.NewRegistrar(layout, process.NewExecRunner(logger), logger)
		reg.SetOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())

		u.Header("Adding repo: " + name)
		if gitFlag == "" {
			err = reg.Add(cmd.Context(), name, "")
		} else {
			err = u.Frame("git clone", func() error {
				return reg.Add(cmd.Context(), name, gitFlag)
			})
		}
		if err != nil {
			return failed("adding repo", err)
		}

		u.Success("Added " + layout.RepoPath(name))
		return nil
	},
}

func init() {
	addRepoCmd.Flags().StringVar(&gitFlag, "git", "", "git URL to clone into the repository directory")
}
