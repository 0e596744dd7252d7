package cmd

import (
	"github.com/fgrehm/devctr/internal/devcontainer"
	"github.com/fgrehm/devctr/internal/prompt"
	"github.com/spf13/cobra"
)

var (
	repoFlag        string
	subdirFlag      string
	displayNameFlag string
	buildCmdFlag    string
)

var addContainerCmd = &cobra.Command{
	Use:   "add-container <name>",
	Short: "Generate a devcontainer derived from a repository's image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u := newUI()

		layout, err := currentWorkspace()
		if err != nil {
			return failed("adding container", err)
		}
		settings, err := layout.LoadSettings()
		if err != nil {
			return failed("adding container", err)
		}

		var prompter devcontainer.Prompter
		if cmd.Flags().Changed("build-cmd") {
			prompter = prompt.Static{Cmd: buildCmdFlag, DefaultCmd: settings.DefaultBuildCmd}
		} else {
			prompter = prompt.New(cmd.InOrStdin(), cmd.OutOrStdout(), settings.DefaultBuildCmd)
		}

		gen := devcontainer.NewGenerator(layout, prompter, logger)
		gen.SetPackages(settings.DevcontainerPackages)

		u.Header("Adding container: " + args[0])
		def, err := gen.Add(cmd.Context(), devcontainer.Request{
			Name:        args[0],
			DisplayName: displayNameFlag,
			Repo:        repoFlag,
			Subdir:      subdirFlag,
		})
		if err != nil {
			return failed("adding container", err)
		}

		dir := layout.ContainerPath(def.Name)
		u.Success("Created container " + def.Name)
		u.Keyval("dockerfile", dir+"/"+devcontainer.DockerfileFile)
		u.Keyval("prebuild", dir+"/"+devcontainer.PrebuildFile)
		u.Keyval("descriptor", dir+"/"+devcontainer.MetadataFile)
		u.Keyval("launcher", "./"+layout.LauncherPath(def.Name))
		u.Keyval("image", def.SubrepoTag)
		return nil
	},
}

func init() {
	addContainerCmd.Flags().StringVarP(&repoFlag, "repo", "r", "", "repository the container is derived from")
	addContainerCmd.Flags().StringVarP(&subdirFlag, "subdir", "s", "", "repository subdirectory mounted as the workspace")
	addContainerCmd.Flags().StringVar(&displayNameFlag, "display-name", "", "name shown by editors (defaults to <name>)")
	addContainerCmd.Flags().StringVar(&buildCmdFlag, "build-cmd", "", "docker build arguments for the repository image, skipping the prompt")
	_ = addContainerCmd.MarkFlagRequired("repo")
}
