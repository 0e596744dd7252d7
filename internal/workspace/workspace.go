package workspace

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

const (
	// ReposDir holds repository entries.
	ReposDir = "repos"

	// DevContainerDir holds container definitions and the shared shell library.
	DevContainerDir = ".devcontainer"

	// CommonLibFile is the shell library sourced by every launcher script.
	CommonLibFile = "common.sh"

	// SettingsFile holds optional workspace settings.
	SettingsFile = "devctr.toml"

	// ScriptMode is the permission set given to every generated script.
	ScriptMode fs.FileMode = 0o775
)

// Layout maps repository and container names to paths inside a workspace.
//
// Methods returning relative paths use forward slashes since those paths
// are embedded verbatim into generated scripts and descriptors. Abs converts
// them into host paths under Root.
type Layout struct {
	// Root is the absolute path to the workspace directory.
	Root string
}

// New returns a Layout rooted at dir.
func New(dir string) (Layout, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return Layout{}, IOError("resolving workspace root", err)
	}
	return Layout{Root: abs}, nil
}

// RepoPath returns the relative path of a repository entry.
func (l Layout) RepoPath(name string) string {
	return path.Join(ReposDir, name)
}

// ContainerPath returns the relative path of a container definition.
func (l Layout) ContainerPath(name string) string {
	return path.Join(DevContainerDir, name)
}

// LauncherPath returns the relative path of a container's launcher script.
func (l Layout) LauncherPath(name string) string {
	return name
}

// CommonLibPath returns the relative path of the shared shell library.
func (l Layout) CommonLibPath() string {
	return path.Join(DevContainerDir, CommonLibFile)
}

// Abs resolves a relative workspace path against Root.
func (l Layout) Abs(rel string) string {
	return filepath.Join(l.Root, filepath.FromSlash(rel))
}

// Exists reports whether rel exists under Root. Paths that cannot be
// inspected for reasons other than absence count as existing.
func (l Layout) Exists(rel string) bool {
	_, err := os.Lstat(l.Abs(rel))
	return !errors.Is(err, fs.ErrNotExist)
}

// WriteScript writes an executable script at the given absolute path.
// The mode is applied explicitly so the process umask does not narrow it.
func WriteScript(path string, content []byte) error {
	if err := os.WriteFile(path, content, ScriptMode); err != nil {
		return IOError("writing "+filepath.Base(path), err)
	}
	if err := os.Chmod(path, ScriptMode); err != nil {
		return IOError("setting permissions on "+filepath.Base(path), err)
	}
	return nil
}
