package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fgrehm/devctr/internal/ui"
	"github.com/fgrehm/devctr/internal/workspace"
	"github.com/spf13/cobra"
)

var (
	debugFlag bool
	dirFlag   string
	logger    *slog.Logger
)

// Version variables injected at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Built   = "unknown"
)

var rootCmd = &cobra.Command{
	Use:     "devctr",
	Short:   "Scaffold devcontainers for the repositories in a workspace",
	Version: Version,
	Args:    cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelWarn
		if debugFlag {
			level = slog.LevelDebug
		}
		logger = newLogger(level)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return errors.New("a subcommand is required")
	},
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&dirFlag, "dir", "d", "", "workspace directory to operate on (defaults to current directory)")
	rootCmd.SetVersionTemplate(fmt.Sprintf("devctr version %s\n", Version))
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(addRepoCmd)
	rootCmd.AddCommand(addContainerCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command with signal handling and exits with the
// resulting status: 0 on success, 1 when an operation failed and 2 for
// invalid invocations.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, stderr io.Writer) int {
	logger = newLogger(slog.LevelWarn)
	c, err := rootCmd.ExecuteContextC(ctx)
	return report(c, err, stderr)
}

func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.TimeValue(t.UTC())
				}
			}
			return a
		},
	}))
}

// commandError marks a failure of the operation itself, as opposed to a
// malformed invocation.
type commandError struct {
	verb string
	err  error
}

func (e *commandError) Error() string { return e.err.Error() }
func (e *commandError) Unwrap() error { return e.err }

// failed wraps err so it is reported as "Error <verb>: ...".
func failed(verb string, err error) error {
	if err == nil {
		return nil
	}
	return &commandError{verb: verb, err: err}
}

// report prints err and returns the process exit status for it.
func report(c *cobra.Command, err error, stderr io.Writer) int {
	if err == nil {
		return 0
	}

	var cmdErr *commandError
	if errors.As(err, &cmdErr) {
		ui.New(io.Discard, stderr).Error(cmdErr.verb, cmdErr.err.Error())
		return 1
	}

	if c == nil {
		c = rootCmd
	}
	_, _ = fmt.Fprintf(stderr, "Error: %v\n\n%s", err, c.UsageString())
	return 2
}

// newUI creates a UI that writes to stdout and stderr.
func newUI() *ui.UI {
	return ui.New(os.Stdout, os.Stderr)
}

// workspaceDir returns the directory given by --dir, or the current
// directory.
func workspaceDir() (string, error) {
	if dirFlag != "" {
		return dirFlag, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	return cwd, nil
}

// currentWorkspace returns the workspace to operate on. An explicit --dir
// is the root as given; otherwise the nearest workspace enclosing the
// current directory is used.
func currentWorkspace() (workspace.Layout, error) {
	var (
		layout workspace.Layout
		err    error
	)
	if dirFlag != "" {
		layout, err = workspace.New(dirFlag)
	} else {
		var cwd string
		cwd, err = workspaceDir()
		if err != nil {
			return workspace.Layout{}, err
		}
		layout, err = workspace.Resolve(cwd)
	}
	if err != nil {
		return workspace.Layout{}, err
	}
	logger.Debug("resolved workspace", "root", layout.Root, "explicit", dirFlag != "")
	return layout, nil
}

// versionString returns a formatted version string for display.
// For dev builds, includes commit and build timestamp.
func versionString() string {
	v := "devctr " + Version
	if strings.Contains(Version, "-dev") && Commit != "unknown" {
		v += " (" + Commit
		if Built != "unknown" {
			v += ", " + Built
		}
		v += ")"
	}
	return v
}
