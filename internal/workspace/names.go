package workspace

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/fgrehm/devctr/internal/render"
	"github.com/google/go-containerregistry/pkg/name"
)

const maxNameLen = 128

var safeName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateName checks that value is safe to use as a single path segment
// and inside generated shell scripts. kind names the value in errors
// (e.g. "repository").
func ValidateName(kind, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s name is empty", ErrInvalidName, kind)
	}
	if len(value) > maxNameLen {
		return fmt.Errorf("%w: %s name is longer than %d characters", ErrInvalidName, kind, maxNameLen)
	}
	if !safeName.MatchString(value) {
		return fmt.Errorf("%w: %s name %q must start with a letter or digit and contain only letters, digits, '.', '_' or '-'", ErrInvalidName, kind, value)
	}
	return nil
}

// ValidateContainerName checks value like ValidateName and additionally
// requires the derived subrepo image tag to be a valid image reference.
func ValidateContainerName(value string) error {
	if err := ValidateName("container", value); err != nil {
		return err
	}
	if _, err := name.NewRepository(render.SubrepoTag(value)); err != nil {
		return fmt.Errorf("%w: container name %q does not produce a valid image name: %v", ErrInvalidName, value, err)
	}
	return nil
}

// CleanSubdir validates a repository subdirectory and returns it in clean,
// slash-separated form. The empty string denotes the repository root.
func CleanSubdir(subdir string) (string, error) {
	if subdir == "" {
		return "", nil
	}
	if !filepath.IsLocal(subdir) {
		return "", fmt.Errorf("%w: subdirectory %q must be a relative path inside the repository", ErrInvalidName, subdir)
	}

	clean := filepath.ToSlash(filepath.Clean(subdir))
	for _, seg := range strings.Split(clean, "/") {
		if !safeName.MatchString(seg) {
			return "", fmt.Errorf("%w: subdirectory %q contains unsupported segment %q", ErrInvalidName, subdir, seg)
		}
	}
	return clean, nil
}
