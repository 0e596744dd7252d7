package devcontainer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/fgrehm/devctr/internal/dockerfile"
	"github.com/fgrehm/devctr/internal/workspace"
	"golang.org/x/sync/errgroup"
)

// listConcurrency bounds how many definitions are read at once.
const listConcurrency = 4

// Summary describes an existing container definition as read back from
// its artifacts.
type Summary struct {
	Name        string
	DisplayName string
	SubrepoTag  string

	// Targets are the Dockerfile stages in declaration order.
	Targets []string

	// BaseImage is the image the devcontainer stage builds on.
	BaseImage string

	// User is the user the devcontainer stage runs as.
	User string

	// Err is set when the definition could not be read. The other fields
	// are filled in as far as reading got.
	Err error
}

// List reads every container definition in the workspace. A definition
// that fails to load is reported through its Summary.Err rather than
// failing the listing.
func List(layout workspace.Layout) ([]Summary, error) {
	entries, err := os.ReadDir(layout.Abs(workspace.DevContainerDir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, workspace.IOError("listing container definitions", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	summaries := make([]Summary, len(names))
	var g errgroup.Group
	g.SetLimit(listConcurrency)
	for i, name := range names {
		g.Go(func() error {
			summaries[i] = Load(layout, name)
			return nil
		})
	}
	_ = g.Wait()

	return summaries, nil
}

// Load reads a single container definition.
func Load(layout workspace.Layout, name string) Summary {
	s := Summary{Name: name}
	dir := layout.ContainerPath(name)

	data, err := os.ReadFile(layout.Abs(path.Join(dir, MetadataFile)))
	if err != nil {
		s.Err = workspace.IOError("reading "+path.Join(dir, MetadataFile), err)
		return s
	}
	meta, err := ParseMetadata(data)
	if err != nil {
		s.Err = err
		return s
	}
	s.DisplayName = meta.Name
	s.SubrepoTag = meta.Build.Args.SubrepoTag

	data, err = os.ReadFile(layout.Abs(path.Join(dir, DockerfileFile)))
	if err != nil {
		s.Err = workspace.IOError("reading "+path.Join(dir, DockerfileFile), err)
		return s
	}
	df, err := dockerfile.Parse(string(data))
	if err != nil {
		s.Err = fmt.Errorf("%s: %w", path.Join(dir, DockerfileFile), err)
		return s
	}

	target := meta.Build.Target
	if target == "" {
		target = df.DefaultTarget()
	}
	args := meta.Build.Args.Map()
	s.Targets = df.Targets()
	s.BaseImage = df.FindBaseImage(args, target)
	s.User = df.FindUserStatement(args, target)
	return s
}
