package devcontainer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fgrehm/devctr/internal/identity"
	"github.com/fgrehm/devctr/internal/render"
	"github.com/fgrehm/devctr/internal/workspace"
)

// Prompter supplies the engine build arguments for a repository image.
type Prompter interface {
	BuildCommand(repoPath, containerName string) (string, error)
}

// rename is a variable so tests can simulate a failed commit.
var rename = os.Rename

// Generator creates container definitions inside a workspace.
type Generator struct {
	layout   workspace.Layout
	prompter Prompter
	identity func() identity.Identity
	packages []string
	logger   *slog.Logger
}

// NewGenerator creates a Generator for the given workspace. The build
// command is asked from prompter once per definition.
func NewGenerator(layout workspace.Layout, prompter Prompter, logger *slog.Logger) *Generator {
	return &Generator{
		layout:   layout,
		prompter: prompter,
		identity: identity.Current,
		packages: render.DefaultPackages,
		logger:   logger,
	}
}

// SetIdentity overrides how the build identity is resolved.
func (g *Generator) SetIdentity(fn func() identity.Identity) {
	g.identity = fn
}

// SetPackages sets the packages installed into the devcontainer stage.
func (g *Generator) SetPackages(pkgs []string) {
	g.packages = pkgs
}

// Add generates the definition described by req. Nothing is written unless
// every check passes and every artifact renders; the artifacts are then
// staged and moved into place together.
func (g *Generator) Add(ctx context.Context, req Request) (*Definition, error) {
	if err := workspace.ValidateContainerName(req.Name); err != nil {
		return nil, err
	}
	if err := workspace.ValidateName("repository", req.Repo); err != nil {
		return nil, err
	}
	subdir, err := workspace.CleanSubdir(req.Subdir)
	if err != nil {
		return nil, err
	}

	lock, err := g.layout.Lock()
	if err != nil {
		return nil, err
	}
	defer func() { _ = lock.Release() }()

	if g.layout.Exists(g.layout.ContainerPath(req.Name)) {
		return nil, fmt.Errorf("container %q %w", req.Name, workspace.ErrAlreadyExists)
	}
	if g.layout.Exists(g.layout.LauncherPath(req.Name)) {
		return nil, fmt.Errorf("launcher ./%s %w", req.Name, workspace.ErrAlreadyExists)
	}

	repoPath := g.layout.RepoPath(req.Repo)
	if !isDir(g.layout.Abs(repoPath)) {
		return nil, fmt.Errorf("repository %q %w, run `devctr add-repo %s` first", req.Repo, workspace.ErrNotFound, req.Repo)
	}
	if subdir != "" && !isDir(g.layout.Abs(repoPath+"/"+subdir)) {
		return nil, fmt.Errorf("subdirectory %q of repository %q %w", subdir, req.Repo, workspace.ErrNotFound)
	}

	def := &Definition{
		Name:        req.Name,
		DisplayName: req.DisplayName,
		Repo:        req.Repo,
		Subdir:      subdir,
		RepoPath:    repoPath,
		SubrepoTag:  render.SubrepoTag(req.Name),
		Identity:    g.identity(),
		Packages:    g.packages,
	}
	if def.DisplayName == "" {
		def.DisplayName = req.Name
	}
	g.logger.Debug("resolved identity", "user", def.Identity.Username, "uid", def.Identity.UID, "gid", def.Identity.GID)

	def.BuildCmd, err = g.prompter.BuildCommand(repoPath, req.Name)
	if err != nil {
		return nil, err
	}

	files, err := g.render(def)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := g.commit(def, files); err != nil {
		return nil, err
	}

	g.logger.Debug("created container definition", "name", def.Name, "repo", def.Repo, "tag", def.SubrepoTag)
	return def, nil
}

// artifacts holds rendered file contents keyed by file name within the
// definition directory, plus the launcher.
type artifacts struct {
	files    map[string][]byte
	scripts  map[string]bool
	launcher []byte
}

func (g *Generator) render(def *Definition) (*artifacts, error) {
	p := render.Params{
		Name:       def.Name,
		RepoPath:   def.RepoPath,
		SubrepoTag: def.SubrepoTag,
		Username:   def.Identity.Username,
		UID:        def.Identity.UID,
		GID:        def.Identity.GID,
		BuildCmd:   def.BuildCmd,
		Packages:   def.Packages,
	}

	dockerfile, err := render.Dockerfile(p)
	if err != nil {
		return nil, err
	}
	prebuild, err := render.Prebuild(p)
	if err != nil {
		return nil, err
	}
	launcher, err := render.Launcher(p)
	if err != nil {
		return nil, err
	}
	metadata, err := newMetadata(g.layout, def).Marshal()
	if err != nil {
		return nil, err
	}

	return &artifacts{
		files: map[string][]byte{
			DockerfileFile: []byte(dockerfile),
			PrebuildFile:   []byte(prebuild),
			MetadataFile:   metadata,
		},
		scripts:  map[string]bool{PrebuildFile: true},
		launcher: []byte(launcher),
	}, nil
}

// commit writes the artifacts into staging locations next to their
// destinations, then renames them into place. On failure the staging
// files and any already renamed directory are removed.
func (g *Generator) commit(def *Definition, a *artifacts) (err error) {
	parent := g.layout.Abs(workspace.DevContainerDir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return workspace.IOError("creating "+workspace.DevContainerDir, err)
	}
	staging, err := os.MkdirTemp(parent, ".staging-"+def.Name+"-")
	if err != nil {
		return workspace.IOError("staging container definition", err)
	}
	defer func() {
		if err != nil {
			_ = os.RemoveAll(staging)
		}
	}()
	if err := os.Chmod(staging, 0o755); err != nil {
		return workspace.IOError("staging container definition", err)
	}

	for file, content := range a.files {
		path := filepath.Join(staging, file)
		if a.scripts[file] {
			if err := workspace.WriteScript(path, content); err != nil {
				return err
			}
			continue
		}
		if err := os.WriteFile(path, content, 0o644); err != nil {
			return workspace.IOError("writing "+file, err)
		}
	}

	tmp, err := os.CreateTemp(g.layout.Root, ".staging-"+def.Name+"-")
	if err != nil {
		return workspace.IOError("staging launcher", err)
	}
	launcherTmp := tmp.Name()
	_ = tmp.Close()
	defer func() {
		if err != nil {
			_ = os.Remove(launcherTmp)
		}
	}()
	if err := workspace.WriteScript(launcherTmp, a.launcher); err != nil {
		return err
	}

	dir := g.layout.Abs(g.layout.ContainerPath(def.Name))
	if err := rename(staging, dir); err != nil {
		return workspace.IOError("creating "+g.layout.ContainerPath(def.Name), err)
	}
	if err := rename(launcherTmp, g.layout.Abs(g.layout.LauncherPath(def.Name))); err != nil {
		_ = os.RemoveAll(dir)
		return workspace.IOError("creating launcher ./"+def.Name, err)
	}
	return nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
