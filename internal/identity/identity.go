// Package identity resolves the host user that generated container
// definitions are built for.
package identity

import (
	"os"
	"os/user"
	"strings"
	"unicode"
	"unicode/utf8"
)

// UnknownUser replaces a username that cannot be resolved.
const UnknownUser = "unknown_user"

// Identity is the numeric and named identity of the invoking user.
type Identity struct {
	UID      uint32
	GID      uint32
	Username string
}

// These are variables so tests can override them.
var (
	getuid      = os.Getuid
	getgid      = os.Getgid
	currentUser = user.Current
)

// Current returns the identity of the running process. The username is
// best effort: a failed lookup, an empty or undecodable name, and a name
// that would break the quoting of generated scripts yield UnknownUser.
func Current() Identity {
	return Identity{
		UID:      uint32(getuid()),
		GID:      uint32(getgid()),
		Username: username(),
	}
}

func username() string {
	u, err := currentUser()
	if err != nil || u == nil {
		return UnknownUser
	}
	if u.Username == "" || !utf8.ValidString(u.Username) || breaksQuoting(u.Username) {
		return UnknownUser
	}
	return u.Username
}

// breaksQuoting reports whether name holds whitespace, control characters,
// quotes or backslashes. Those split or escape the unquoted ARG defaults in
// the generated Dockerfile.
func breaksQuoting(name string) bool {
	return strings.IndexFunc(name, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r) || strings.ContainsRune(`"'\`+"`", r)
	}) >= 0
}
