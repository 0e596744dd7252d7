// Package repo registers source repositories inside a workspace.
package repo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/fgrehm/devctr/internal/process"
	"github.com/fgrehm/devctr/internal/workspace"
)

// StubDockerfile is written into repositories created without a remote so
// they can serve as a container base right away.
const StubDockerfile = "FROM ubuntu:latest\n"

// Registrar creates repository entries under repos/.
type Registrar struct {
	layout workspace.Layout
	runner process.Runner
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
}

// NewRegistrar creates a Registrar for the given workspace.
func NewRegistrar(layout workspace.Layout, runner process.Runner, logger *slog.Logger) *Registrar {
	return &Registrar{
		layout: layout,
		runner: runner,
		stdout: io.Discard,
		stderr: io.Discard,
		logger: logger,
	}
}

// SetOutput sets where git output is streamed.
func (r *Registrar) SetOutput(stdout, stderr io.Writer) {
	r.stdout = stdout
	r.stderr = stderr
}

// Add registers a repository named name. With a gitURL the repository is
// cloned; without one an empty repository holding StubDockerfile is
// created. A clone that cannot be started or exits non-zero is an ErrIO
// failure.
func (r *Registrar) Add(ctx context.Context, name, gitURL string) error {
	if err := workspace.ValidateName("repository", name); err != nil {
		return err
	}

	lock, err := r.layout.Lock()
	if err != nil {
		return err
	}
	defer func() { _ = lock.Release() }()

	rel := r.layout.RepoPath(name)
	if r.layout.Exists(rel) {
		return fmt.Errorf("repository %q %w", name, workspace.ErrAlreadyExists)
	}

	if gitURL != "" {
		return r.clone(ctx, name, gitURL)
	}
	return r.createStub(name)
}

func (r *Registrar) clone(ctx context.Context, name, gitURL string) error {
	if err := os.MkdirAll(r.layout.Abs(workspace.ReposDir), 0o755); err != nil {
		return workspace.IOError("creating "+workspace.ReposDir, err)
	}

	args := []string{"clone", "--", gitURL, "./" + r.layout.RepoPath(name)}
	res, err := r.runner.Run(ctx, process.Command{
		Name:   "git",
		Args:   args,
		Dir:    r.layout.Root,
		Stdout: r.stdout,
		Stderr: r.stderr,
	})
	if err != nil {
		return workspace.IOError("running git clone", err)
	}
	if !res.Success() {
		msg := fmt.Sprintf("exit status %d", res.ExitCode)
		if stderr := strings.TrimSpace(res.Stderr); stderr != "" {
			msg += ": " + lastLine(stderr)
		}
		return workspace.IOError("git clone "+process.ScrubArgs([]string{gitURL})[0], errors.New(msg))
	}

	r.logger.Debug("cloned repository", "name", name, "path", r.layout.RepoPath(name))
	return nil
}

func (r *Registrar) createStub(name string) error {
	rel := r.layout.RepoPath(name)
	if err := os.MkdirAll(r.layout.Abs(rel), 0o755); err != nil {
		return workspace.IOError("creating "+rel, err)
	}
	dockerfile := r.layout.Abs(rel + "/Dockerfile")
	if err := os.WriteFile(dockerfile, []byte(StubDockerfile), 0o644); err != nil {
		return workspace.IOError("writing "+rel+"/Dockerfile", err)
	}

	r.logger.Debug("created stub repository", "name", name, "path", rel)
	return nil
}

// List returns the names of registered repositories, sorted.
func (r *Registrar) List() ([]string, error) {
	entries, err := os.ReadDir(r.layout.Abs(workspace.ReposDir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, workspace.IOError("listing repositories", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// lastLine returns the last line of s, which for git is usually the
// "fatal: ..." summary.
func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
