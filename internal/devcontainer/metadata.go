package devcontainer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/fgrehm/devctr/internal/render"
	"github.com/fgrehm/devctr/internal/workspace"
	"github.com/tidwall/jsonc"
)

const (
	// MetadataFile is the descriptor read by devcontainer-aware editors.
	MetadataFile = "devcontainer.json"

	// DockerfileFile is the layered container build file.
	DockerfileFile = "Dockerfile"

	// PrebuildFile builds the repository image.
	PrebuildFile = "prebuild"

	// TargetDevcontainer is the interactive development stage.
	TargetDevcontainer = "devcontainer"

	// TargetBuildcontainer is the minimal stage built by default.
	TargetBuildcontainer = "buildcontainer"
)

// Metadata is the devcontainer.json written for a definition. Field order
// matches the emitted document.
type Metadata struct {
	Name              string         `json:"name"`
	Build             Build          `json:"build"`
	InitializeCommand string         `json:"initializeCommand"`
	ContainerUser     string         `json:"containerUser"`
	Customizations    map[string]any `json:"customizations,omitempty"`
	WorkspaceMount    string         `json:"workspaceMount"`
	WorkspaceFolder   string         `json:"workspaceFolder"`
}

// Build is the descriptor's build section.
type Build struct {
	Dockerfile string    `json:"dockerfile"`
	Context    string    `json:"context"`
	Target     string    `json:"target"`
	Args       BuildArgs `json:"args"`
}

// BuildArgs are passed to the engine when building the Dockerfile.
type BuildArgs struct {
	Username   string `json:"USERNAME"`
	UserUID    string `json:"USER_UID"`
	UserGID    string `json:"USER_GID"`
	SubrepoTag string `json:"SUBREPO_TAG"`
}

// Map returns the build args keyed by ARG name.
func (a BuildArgs) Map() map[string]string {
	return map[string]string{
		"USERNAME":    a.Username,
		"USER_UID":    a.UserUID,
		"USER_GID":    a.UserGID,
		"SUBREPO_TAG": a.SubrepoTag,
	}
}

const workspaceFolder = "/workspaces/${localWorkspaceFolderBasename}"

// newMetadata builds the descriptor for def.
func newMetadata(layout workspace.Layout, def *Definition) *Metadata {
	return &Metadata{
		Name: def.DisplayName,
		Build: Build{
			Dockerfile: "./" + DockerfileFile,
			Context:    "..",
			Target:     TargetDevcontainer,
			Args: BuildArgs{
				Username:   def.Identity.Username,
				UserUID:    strconv.FormatUint(uint64(def.Identity.UID), 10),
				UserGID:    strconv.FormatUint(uint64(def.Identity.GID), 10),
				SubrepoTag: def.SubrepoTag,
			},
		},
		InitializeCommand: fmt.Sprintf("CONT_CMD=%s ./%s/%s", render.PreferredEngine(), layout.ContainerPath(def.Name), PrebuildFile),
		ContainerUser:     def.Identity.Username,
		Customizations: map[string]any{
			"vscode": map[string]any{
				"settings":   map[string]any{},
				"extensions": []string{},
			},
		},
		WorkspaceMount:  "source=${localWorkspaceFolder}/" + def.MountSource() + ",target=" + workspaceFolder + ",type=bind",
		WorkspaceFolder: workspaceFolder,
	}
}

// Marshal encodes the descriptor with four-space indentation and without
// HTML escaping.
func (m *Metadata) Marshal() ([]byte, error) {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(m); err != nil {
		return nil, fmt.Errorf("encoding %s: %w", MetadataFile, err)
	}
	return b.Bytes(), nil
}

// ParseMetadata parses a devcontainer.json document. Comments and
// trailing commas are accepted, so hand-edited descriptors still load.
func ParseMetadata(data []byte) (*Metadata, error) {
	var m Metadata
	if err := json.Unmarshal(jsonc.ToJSON(data), &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", MetadataFile, err)
	}
	return &m, nil
}
