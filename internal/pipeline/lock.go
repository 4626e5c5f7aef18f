package pipeline

// lock.go serializes pipeline runs against a shared database file.
//
// Drop-and-recreate table operations are not safe under concurrent writers,
// so at most one run may touch the database at a time. The lock is an
// exclusively created file next to the database; it works across processes
// and is released when the run finishes.

import (
	"errors"
	"fmt"
	"os"

	"github.com/astomelio/data-engineer-challenge-2025/internal/errdefs"
)

// AcquireLock takes the single-writer lock for the given database path.
// It returns a release function, or errdefs.ErrLocked when another run
// holds the lock. A crashed run leaves the lock file behind; the operator
// removes it after confirming no run is active.
func AcquireLock(dbPath string) (release func(), err error) {
	lockPath := dbPath + ".lock"

	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("%w (lock file: %s)", errdefs.ErrLocked, lockPath)
		}
		return nil, fmt.Errorf("creating lock file: %w", err)
	}

	fmt.Fprintf(f, "%d\n", os.Getpid())
	f.Close()

	return func() { os.Remove(lockPath) }, nil
}
