// Package devcontainer generates container definitions: a Dockerfile
// layered on a repository's own image, the prebuild script producing that
// image, a devcontainer.json descriptor and a launcher script.
package devcontainer

import (
	"path"

	"github.com/fgrehm/devctr/internal/identity"
)

// Request names a container definition to generate.
type Request struct {
	// Name identifies the definition and its launcher script.
	Name string

	// DisplayName is shown by editors. Defaults to Name.
	DisplayName string

	// Repo is the registered repository the container is derived from.
	Repo string

	// Subdir is mounted as the workspace, relative to the repository root.
	// Empty means the repository root.
	Subdir string
}

// Definition holds every value embedded into a definition's artifacts.
type Definition struct {
	Name        string
	DisplayName string
	Repo        string
	Subdir      string

	// RepoPath is the workspace-relative repository path.
	RepoPath string

	// SubrepoTag is the image tag handed from the prebuild script to the
	// Dockerfile. It is derived once and injected everywhere.
	SubrepoTag string

	Identity identity.Identity

	// BuildCmd completes the engine build invocation in the prebuild script.
	BuildCmd string

	// Packages are installed into the devcontainer stage.
	Packages []string
}

// MountSource returns the workspace-relative path bind-mounted into the
// container.
func (d *Definition) MountSource() string {
	return path.Join(d.RepoPath, d.Subdir)
}
