// Package e2e contains end-to-end tests that exercise the devctr binary.
// Tests that need git or a container engine are skipped when those are not
// installed.
package e2e

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// devctrBin is the path to the compiled devctr binary, set by TestMain.
var devctrBin string

func TestMain(m *testing.M) {
	_, cleanup, err := buildDevctr()
	if err != nil {
		fmt.Fprintf(os.Stderr, "building devctr: %v\n", err)
		os.Exit(1)
	}
	code := m.Run()
	cleanup()
	os.Exit(code)
}

// buildDevctr compiles the devctr binary into a temp directory and returns
// its path along with a cleanup function.
func buildDevctr() (string, func(), error) {
	dir, err := os.MkdirTemp("", "devctr-e2e-bin-*")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { _ = os.RemoveAll(dir) }

	bin := filepath.Join(dir, "devctr")
	if runtime.GOOS == "windows" {
		bin += ".exe"
	}

	// e2e/ is one level below the repo root.
	repoRoot, err := filepath.Abs("..")
	if err != nil {
		cleanup()
		return "", nil, err
	}

	cmd := exec.Command("go", "build", "-o", bin, repoRoot)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("go build: %w", err)
	}
	devctrBin = bin
	return bin, cleanup, nil
}

// runDevctr runs devctr in dir with stdin as input and returns combined
// output and the exit status.
func runDevctr(t *testing.T, dir, stdin string, args ...string) (string, int) {
	t.Helper()
	cmd := exec.Command(devctrBin, args...)
	cmd.Dir = dir
	cmd.Stdin = strings.NewReader(stdin)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return out.String(), 0
	case errors.As(err, &exitErr):
		return out.String(), exitErr.ExitCode()
	default:
		t.Fatalf("running devctr %v: %v", args, err)
		return "", -1
	}
}

// mustRunDevctr runs devctr and fails the test if it exits non-zero.
func mustRunDevctr(t *testing.T, dir, stdin string, args ...string) string {
	t.Helper()
	out, code := runDevctr(t, dir, stdin, args...)
	if code != 0 {
		t.Fatalf("devctr %v exited %d\noutput:\n%s", args, code, out)
	}
	return out
}

// setupWorkspace runs `devctr init` in a temp dir and returns the new
// workspace root.
func setupWorkspace(t *testing.T) string {
	t.Helper()
	parent := t.TempDir()
	mustRunDevctr(t, parent, "", "init", "ws")
	return filepath.Join(parent, "ws")
}

func TestE2EWorkflow(t *testing.T) {
	ws := setupWorkspace(t)

	mustRunDevctr(t, ws, "", "add-repo", "app")
	if data, err := os.ReadFile(filepath.Join(ws, "repos", "app", "Dockerfile")); err != nil || string(data) != "FROM ubuntu:latest\n" {
		t.Fatalf("stub Dockerfile = %q, %v", data, err)
	}

	out := mustRunDevctr(t, ws, "\n", "add-container", "dev", "--repo", "app")
	if !strings.Contains(out, "repos/app$> docker build ") {
		t.Errorf("prompt not shown:\n%s", out)
	}

	for _, rel := range []string{
		".devcontainer/dev/Dockerfile",
		".devcontainer/dev/prebuild",
		".devcontainer/dev/devcontainer.json",
		"dev",
	} {
		if _, err := os.Stat(filepath.Join(ws, rel)); err != nil {
			t.Errorf("missing %s: %v", rel, err)
		}
	}

	// Commands work from any directory inside the workspace.
	out = mustRunDevctr(t, filepath.Join(ws, "repos", "app"), "", "list")
	for _, want := range []string{"app", "dev", "subrepo_image_dev"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}
}

func TestE2EExitCodes(t *testing.T) {
	ws := setupWorkspace(t)
	mustRunDevctr(t, ws, "", "add-repo", "app")

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantOut  string
	}{
		{"no subcommand", nil, 2, "Usage:"},
		{"unknown subcommand", []string{"frobnicate"}, 2, "Usage:"},
		{"missing name", []string{"add-repo"}, 2, "Usage:"},
		{"missing repo flag", []string{"add-container", "dev"}, 2, "Usage:"},
		{"duplicate repo", []string{"add-repo", "app"}, 1, "Error adding repo:\n\t- "},
		{"unknown repo", []string{"add-container", "dev", "--repo", "nope", "--build-cmd", "."}, 1, "devctr add-repo nope"},
		{"existing workspace", []string{"init", "repos"}, 1, "Error initializing application:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, code := runDevctr(t, ws, "", tt.args...)
			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d\noutput:\n%s", code, tt.wantCode, out)
			}
			if !strings.Contains(out, tt.wantOut) {
				t.Errorf("output missing %q:\n%s", tt.wantOut, out)
			}
		})
	}
}

func TestE2EPromptClosed(t *testing.T) {
	ws := setupWorkspace(t)
	mustRunDevctr(t, ws, "", "add-repo", "app")

	out, code := runDevctr(t, ws, "", "add-container", "dev", "--repo", "app")
	if code != 1 {
		t.Errorf("exit code = %d, want 1\noutput:\n%s", code, out)
	}
	if _, err := os.Stat(filepath.Join(ws, ".devcontainer", "dev")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("definition should not exist after a failed prompt, stat err = %v", err)
	}
}

func TestE2EGitClone(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	src := t.TempDir()
	for _, args := range [][]string{
		{"init", "-q"},
		{"-c", "user.name=e2e", "-c", "user.email=e2e@example.com", "commit", "-q", "--allow-empty", "-m", "init"},
	} {
		cmd := exec.Command("git", args...)
		cmd.Dir = src
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}

	ws := setupWorkspace(t)
	out := mustRunDevctr(t, ws, "", "add-repo", "app", "--git", src)
	if !strings.Contains(out, "--- git clone ---") {
		t.Errorf("clone output not framed:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(ws, "repos", "app", ".git")); err != nil {
		t.Errorf("repository not cloned: %v", err)
	}

	out, code := runDevctr(t, ws, "", "add-repo", "broken", "--git", filepath.Join(src, "missing"))
	if code != 1 {
		t.Errorf("clone of a missing repository exited %d, want 1\noutput:\n%s", code, out)
	}
}
