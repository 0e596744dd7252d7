package workspace

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/fgrehm/devctr/internal/render"
)

// Settings holds optional per-workspace defaults read from devctr.toml.
type Settings struct {
	// DefaultBuildCmd answers the build command prompt when the operator
	// enters nothing.
	DefaultBuildCmd string `toml:"default_build_cmd"`

	// DevcontainerPackages are installed into the devcontainer stage of
	// newly generated definitions.
	DevcontainerPackages []string `toml:"devcontainer_packages"`
}

var packageName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9.+:=~_-]*$`)

// DefaultSettings returns the settings used when devctr.toml is absent.
func DefaultSettings() Settings {
	return Settings{
		DefaultBuildCmd:      render.DefaultBuildCmd,
		DevcontainerPackages: append([]string(nil), render.DefaultPackages...),
	}
}

// LoadSettings reads devctr.toml from the workspace root. Missing files and
// missing keys fall back to DefaultSettings.
func (l Layout) LoadSettings() (Settings, error) {
	s := DefaultSettings()
	md, err := toml.DecodeFile(l.Abs(SettingsFile), &s)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("reading %s: %w", SettingsFile, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Settings{}, fmt.Errorf("reading %s: unknown setting %q", SettingsFile, undecoded[0].String())
	}

	if strings.TrimSpace(s.DefaultBuildCmd) == "" {
		s.DefaultBuildCmd = render.DefaultBuildCmd
	}
	for _, p := range s.DevcontainerPackages {
		if !packageName.MatchString(p) {
			return Settings{}, fmt.Errorf("reading %s: invalid package name %q", SettingsFile, p)
		}
	}
	return s, nil
}

// encode renders s as a commented devctr.toml document.
func (s Settings) encode() ([]byte, error) {
	var b bytes.Buffer
	b.WriteString("# devctr workspace settings\n")
	b.WriteString("# default_build_cmd answers the add-container prompt when left empty.\n")
	b.WriteString("# devcontainer_packages are installed into the devcontainer stage.\n\n")
	if err := toml.NewEncoder(&b).Encode(s); err != nil {
		return nil, fmt.Errorf("encoding settings: %w", err)
	}
	return b.Bytes(), nil
}
