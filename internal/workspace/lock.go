package workspace

import (
	"github.com/gofrs/flock"
)

// LockFile sits in the workspace root next to repos/.
const LockFile = ".devctr.lock"

// Lock is an exclusive advisory lock serializing commands that mutate a
// workspace.
type Lock struct {
	fl *flock.Flock
}

// Lock acquires the workspace lock without blocking. It returns ErrLocked
// (as an ErrIO failure) when another process holds it. No directory is
// created; Root must exist.
func (l Layout) Lock() (*Lock, error) {
	fl := flock.New(l.Abs(LockFile))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, IOError("locking workspace", err)
	}
	if !ok {
		return nil, IOError("locking workspace", ErrLocked)
	}
	return &Lock{fl: fl}, nil
}

// Release drops the lock.
func (lk *Lock) Release() error {
	return lk.fl.Unlock()
}
