// Package process runs external programs (git, container engines) and
// reports their exit status as data rather than as an error.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os/exec"
	"strings"
)

// Command describes a single external invocation.
type Command struct {
	Name string
	Args []string

	// Dir is the working directory. Empty means the current directory.
	Dir string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Result is the outcome of a command that was started.
type Result struct {
	ExitCode int

	// Stderr holds everything the command wrote to stderr.
	Stderr string
}

// Success reports whether the command exited with status 0.
func (r *Result) Success() bool {
	return r.ExitCode == 0
}

// Runner starts external commands.
type Runner interface {
	// Run executes c and waits for it. A non-nil error means the command
	// could not be started (or was cancelled); a non-zero exit is reported
	// through Result.
	Run(ctx context.Context, c Command) (*Result, error)
}

// ExecRunner implements Runner with os/exec.
type ExecRunner struct {
	logger *slog.Logger
}

// NewExecRunner creates an ExecRunner that logs invocations at debug level.
func NewExecRunner(logger *slog.Logger) *ExecRunner {
	return &ExecRunner{logger: logger}
}

// Run executes the command with the given I/O streams attached.
func (r *ExecRunner) Run(ctx context.Context, c Command) (*Result, error) {
	r.logger.Debug("exec", "cmd", c.Name, "args", ScrubArgs(c.Args), "dir", c.Dir)

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdin = c.Stdin
	cmd.Stdout = c.Stdout

	// Capture stderr for error messages while also writing to the caller's stderr.
	var stderrBuf bytes.Buffer
	if c.Stderr != nil {
		cmd.Stderr = io.MultiWriter(c.Stderr, &stderrBuf)
	} else {
		cmd.Stderr = &stderrBuf
	}

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("%s %v: %w", c.Name, ScrubArgs(c.Args), ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res := &Result{ExitCode: exitErr.ExitCode(), Stderr: stderrBuf.String()}
		r.logger.Debug("exec finished", "cmd", c.Name, "exit", res.ExitCode)
		return res, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s %v: %w", c.Name, ScrubArgs(c.Args), err)
	}
	return &Result{Stderr: stderrBuf.String()}, nil
}

// ScrubArgs returns a copy of args with credentials embedded in URLs
// redacted. The host and path are kept for debugging.
func ScrubArgs(args []string) []string {
	result := make([]string, len(args))
	for i, arg := range args {
		result[i] = scrubURL(arg)
	}
	return result
}

func scrubURL(arg string) string {
	if !strings.Contains(arg, "://") {
		return arg
	}
	u, err := url.Parse(arg)
	if err != nil || u.User == nil {
		return arg
	}
	if _, ok := u.User.Password(); ok {
		return u.Redacted()
	}
	// A bare user component on http(s) is usually an access token.
	if u.Scheme == "http" || u.Scheme == "https" {
		u.User = url.User("xxxxx")
		return u.String()
	}
	return arg
}
