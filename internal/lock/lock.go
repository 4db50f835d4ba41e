// Package lock guards a file against concurrent writers from other statdash
// processes using a sibling lock directory.
package lock

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rileyhilliard/statdash/internal/errors"
)

// DefaultRetry is how long Acquire waits between attempts.
const DefaultRetry = 250 * time.Millisecond

// DefaultStale is the age after which a lock is considered abandoned.
const DefaultStale = 24 * time.Hour

const infoFileName = "info.json"

// Options control Acquire.
type Options struct {
	// Timeout bounds how long Acquire waits. Zero tries once.
	Timeout time.Duration

	// Stale locks older than this are removed. Zero never treats a lock as stale.
	Stale time.Duration

	// Retry is the wait between attempts. Zero uses DefaultRetry.
	Retry time.Duration

	// Command is recorded in the lock info for other processes to report.
	Command string
}

// Lock represents a held lock directory.
type Lock struct {
	Dir  string    // The lock directory path
	Info *LockInfo // Info about the lock holder (us)
}

// PathFor returns the lock directory guarding target.
func PathFor(target string) string {
	return target + ".lock"
}

// TryAcquire makes one attempt to take the lock at dir. It returns ErrLocked
// when another live process holds it. A stale lock is removed first.
func TryAcquire(dir string, opts Options) (*Lock, error) {
	removeStale(dir, opts.Stale)

	if err := os.MkdirAll(filepath.Dir(dir), 0755); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrLock,
			fmt.Sprintf("Couldn't create the parent of %s", dir),
			"Check that the directory is writable")
	}

	// mkdir fails if the directory exists, which makes it the atomic step.
	if err := os.Mkdir(dir, 0755); err != nil {
		if os.IsExist(err) {
			return nil, ErrLocked
		}
		return nil, errors.WrapWithCode(err, errors.ErrLock,
			fmt.Sprintf("Couldn't create lock %s", dir),
			"Check that the directory is writable")
	}

	infoFile := filepath.Join(dir, infoFileName)
	info := NewLockInfo(opts.Command)
	data, err := info.Marshal()
	if err == nil {
		err = os.WriteFile(infoFile, data, 0644)
	}
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, errors.WrapWithCode(err, errors.ErrLock,
			"Failed to write lock info file",
			"Check disk space and permissions")
	}

	return &Lock{Dir: dir, Info: info}, nil
}

// Acquire takes the lock at dir, retrying until opts.Timeout passes or ctx
// is done.
func Acquire(ctx context.Context, dir string, opts Options) (*Lock, error) {
	retry := opts.Retry
	if retry <= 0 {
		retry = DefaultRetry
	}
	deadline := time.Now().Add(opts.Timeout)

	for {
		l, err := TryAcquire(dir, opts)
		if !stderrors.Is(err, ErrLocked) {
			return l, err
		}

		if !time.Now().Before(deadline) {
			return nil, errors.New(errors.ErrLock,
				fmt.Sprintf("%s is in use by %s", filepath.Base(dir), Holder(dir)),
				fmt.Sprintf("Wait for it to finish, or remove %s if that process is gone", dir))
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retry):
		}
	}
}

// Release removes the lock, allowing others to acquire it.
func (l *Lock) Release() error {
	if l == nil || l.Dir == "" {
		return nil
	}
	if err := os.RemoveAll(l.Dir); err != nil {
		return errors.WrapWithCode(err, errors.ErrLock,
			fmt.Sprintf("Failed to remove lock directory: %s", l.Dir), "")
	}
	return nil
}

// Holder describes who holds the lock at dir.
func Holder(dir string) string {
	data, err := os.ReadFile(filepath.Join(dir, infoFileName))
	if err != nil {
		return "unknown"
	}
	info, err := ParseLockInfo(data)
	if err != nil {
		return "unknown"
	}
	return info.String()
}

// staleCheckDone runs between reading a stale lock's info and moving the
// lock aside. Tests use it to interleave a competing process.
var staleCheckDone = func() {}

// removeStale deletes the lock at dir if its holder started more than
// staleThreshold ago. The directory is first renamed to a unique name, so
// only one process can claim it, and the moved info must still describe the
// holder that was judged stale. Otherwise another process took a fresh lock
// in between and it is moved back untouched.
func removeStale(dir string, staleThreshold time.Duration) {
	infoFile := filepath.Join(dir, infoFileName)
	if !isLockStale(infoFile, staleThreshold) {
		return
	}
	seen, err := readLockInfo(infoFile)
	if err != nil {
		return
	}
	staleCheckDone()

	tomb := fmt.Sprintf("%s.stale-%d-%d", dir, os.Getpid(), time.Now().UnixNano())
	if err := os.Rename(dir, tomb); err != nil {
		return // already claimed or removed by someone else
	}

	moved, err := readLockInfo(filepath.Join(tomb, infoFileName))
	if err != nil || !sameHolder(seen, moved) {
		_ = os.Rename(tomb, dir)
		return
	}
	_ = os.RemoveAll(tomb)
}

func sameHolder(a, b *LockInfo) bool {
	return a.PID == b.PID && a.Hostname == b.Hostname && a.Started.Equal(b.Started)
}

func readLockInfo(infoFile string) (*LockInfo, error) {
	data, err := os.ReadFile(infoFile)
	if err != nil {
		return nil, err
	}
	return ParseLockInfo(data)
}

// isLockStale checks if the lock's info file is older than the stale threshold.
func isLockStale(infoFile string, staleThreshold time.Duration) bool {
	if staleThreshold <= 0 {
		return false
	}

	info, err := readLockInfo(infoFile)
	if err != nil {
		return false // Can't read, assume not stale
	}

	return info.Age() > staleThreshold
}
