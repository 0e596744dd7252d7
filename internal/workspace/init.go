package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fgrehm/devctr/internal/render"
)

// Init creates a new workspace named name inside parent: the repos and
// .devcontainer directories, the shared shell library every launcher
// sources, and a devctr.toml holding the default settings.
func Init(parent, name string) (Layout, error) {
	if err := ValidateName("workspace", name); err != nil {
		return Layout{}, err
	}

	l, err := New(filepath.Join(parent, name))
	if err != nil {
		return Layout{}, err
	}
	if _, err := os.Lstat(l.Root); !errors.Is(err, fs.ErrNotExist) {
		return Layout{}, fmt.Errorf("directory %q %w", name, ErrAlreadyExists)
	}

	for _, dir := range []string{ReposDir, DevContainerDir} {
		if err := os.MkdirAll(l.Abs(dir), 0o755); err != nil {
			return Layout{}, IOError("creating "+dir, err)
		}
	}

	lib, err := render.CommonLib()
	if err != nil {
		return Layout{}, err
	}
	if err := WriteScript(l.Abs(l.CommonLibPath()), []byte(lib)); err != nil {
		return Layout{}, err
	}

	settings, err := DefaultSettings().encode()
	if err != nil {
		return Layout{}, err
	}
	if err := os.WriteFile(l.Abs(SettingsFile), settings, 0o644); err != nil {
		return Layout{}, IOError("writing "+SettingsFile, err)
	}

	return l, nil
}
