package workspace

import (
	"path/filepath"
)

// Resolve walks up from startDir looking for an initialized workspace,
// recognized by its .devcontainer/common.sh. If none is found, startDir
// itself is used so commands still work in a bare directory.
func Resolve(startDir string) (Layout, error) {
	start, err := New(startDir)
	if err != nil {
		return Layout{}, err
	}

	dir := start.Root
	for {
		candidate := Layout{Root: dir}
		if candidate.Exists(candidate.CommonLibPath()) {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached the filesystem root.
			return start, nil
		}
		dir = parent
	}
}
