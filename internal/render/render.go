// Package render produces the text artifacts devctr writes into a workspace:
// the shared shell library, and the per-container Dockerfile, prebuild and
// launcher scripts.
package render

import (
	"embed"
	"fmt"
	"strings"
	"text/template"
)

const (
	// SubrepoTagPrefix prefixes the image tag the prebuild script produces
	// and the Dockerfile consumes.
	SubrepoTagPrefix = "subrepo_image_"

	// DefaultBuildCmd is the engine build argument list used when the
	// operator gives none.
	DefaultBuildCmd = "-f ./Dockerfile ./"
)

// Engines lists the container engines probed by generated scripts, in
// order of preference.
var Engines = []string{"podman", "docker"}

// DefaultPackages are installed into the devcontainer stage.
var DefaultPackages = []string{"git", "curl", "jq", "vim"}

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("").ParseFS(templateFS, "templates/*.tmpl"))

// SubrepoTag returns the tag of the image built from a container's repository.
func SubrepoTag(containerName string) string {
	return SubrepoTagPrefix + containerName
}

// PreferredEngine returns the first engine in the preference order.
func PreferredEngine() string {
	return Engines[0]
}

// Params carries the values shared by every per-container artifact.
type Params struct {
	// Name is the container definition name.
	Name string

	// RepoPath is the workspace-relative repository path (repos/<repo>).
	RepoPath string

	// SubrepoTag is the tag produced by the prebuild script.
	SubrepoTag string

	Username string
	UID      uint32
	GID      uint32

	// BuildCmd is appended verbatim to the engine build invocation.
	BuildCmd string

	// Packages are installed into the devcontainer stage.
	Packages []string
}

type data struct {
	Params
	Engines   []string
	TagPrefix string
}

// CommonLib renders .devcontainer/common.sh.
func CommonLib() (string, error) {
	return execute("common.sh.tmpl", Params{})
}

// Dockerfile renders the multi-stage container build file.
func Dockerfile(p Params) (string, error) {
	return execute("Dockerfile.tmpl", p)
}

// Prebuild renders the script that builds the repository image.
func Prebuild(p Params) (string, error) {
	return execute("prebuild.tmpl", p)
}

// Launcher renders the per-container entry script.
func Launcher(p Params) (string, error) {
	return execute("launcher.tmpl", p)
}

func execute(name string, p Params) (string, error) {
	var b strings.Builder
	d := data{Params: p, Engines: Engines, TagPrefix: SubrepoTagPrefix}
	if err := templates.ExecuteTemplate(&b, name, d); err != nil {
		return "", fmt.Errorf("rendering %s: %w", strings.TrimSuffix(name, ".tmpl"), err)
	}
	return b.String(), nil
}
