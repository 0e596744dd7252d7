// Package prompt collects the container build command from the operator.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fgrehm/devctr/internal/render"
	"github.com/fgrehm/devctr/internal/workspace"
)

// Collector asks the operator for the arguments that complete a
// `docker build` invocation inside a repository.
type Collector struct {
	in         *bufio.Reader
	out        io.Writer
	defaultCmd string
}

// New creates a Collector reading answers from in and writing the prompt to
// out. An empty defaultCmd selects render.DefaultBuildCmd.
func New(in io.Reader, out io.Writer, defaultCmd string) *Collector {
	if defaultCmd == "" {
		defaultCmd = render.DefaultBuildCmd
	}
	return &Collector{
		in:         bufio.NewReader(in),
		out:        out,
		defaultCmd: defaultCmd,
	}
}

// BuildCommand prints the prompt for the repository at repoPath and reads
// one line. Surrounding whitespace is trimmed and an empty answer yields
// the default. A stream closed before any input is an ErrInput failure.
func (c *Collector) BuildCommand(repoPath, containerName string) (string, error) {
	_, _ = fmt.Fprintln(c.out, "Fill in the rest of the docker build command to build the image from your repo.")
	_, _ = fmt.Fprintln(c.out, "For example: `docker build "+render.DefaultBuildCmd+"`")
	_, _ = fmt.Fprintf(c.out, "(Or just hit `enter` but make sure to edit `.devcontainer/%s/prebuild` script later)\n", containerName)
	_, _ = fmt.Fprintln(c.out)
	_, _ = fmt.Fprintf(c.out, "%s$> docker build ", repoPath)

	line, err := c.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return "", workspace.InputError("reading build command", err)
	}

	return answer(line, c.defaultCmd), nil
}

// Static answers the build command prompt without asking.
type Static struct {
	Cmd        string
	DefaultCmd string
}

// BuildCommand returns the configured command, or the default when it is
// blank.
func (s Static) BuildCommand(_, _ string) (string, error) {
	def := s.DefaultCmd
	if def == "" {
		def = render.DefaultBuildCmd
	}
	return answer(s.Cmd, def), nil
}

func answer(raw, def string) string {
	cmd := strings.TrimSpace(raw)
	if cmd == "" {
		return def
	}
	return cmd
}
