package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// ErrLocked is returned when another process holds the settings lock past
// the acquire timeout.
var ErrLocked = errors.New("settings are locked by another process")

const (
	lockSuffix = ".lock"
	// DefaultStaleAfter is how old a lock file must be before it is taken over.
	DefaultStaleAfter = 30 * time.Second
	lockPollInterval  = 50 * time.Millisecond
)

// Lock is an advisory lock file next to a settings file. It serializes
// read-modify-write transactions of cooperating processes; it does not stop
// other programs from writing the settings file.
type Lock struct {
	path       string
	owner      string
	timeout    time.Duration
	staleAfter time.Duration
	held       bool
}

type lockInfo struct {
	Owner      string    `json:"owner"`
	PID        int       `json:"pid"`
	AcquiredAt time.Time `json:"acquiredAt"`
}

// NewLock returns a lock guarding settingsPath. A zero timeout tries once.
func NewLock(settingsPath string, timeout time.Duration) *Lock {
	return &Lock{
		path:       settingsPath + lockSuffix,
		owner:      uuid.NewString(),
		timeout:    timeout,
		staleAfter: DefaultStaleAfter,
	}
}

// Path returns the lock file location.
func (l *Lock) Path() string { return l.path }

// Acquire creates the lock file, waiting for a concurrent holder to release
// it until the timeout elapses or ctx is done.
func (l *Lock) Acquire(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("creating lock directory: %w", err)
	}

	deadline := time.Now().Add(l.timeout)
	for {
		err := l.tryCreate()
		if err == nil {
			l.held = true
			return nil
		}
		if !errors.Is(err, os.ErrExist) {
			return fmt.Errorf("creating lock %s: %w", l.path, err)
		}

		if owner, stale := l.staleOwner(); stale {
			l.takeOver(owner)
			continue
		}

		if !time.Now().Before(deadline) {
			return fmt.Errorf("%w: %s", ErrLocked, l.path)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(lockPollInterval):
		}
	}
}

// Release removes the lock file if this Lock still owns it.
func (l *Lock) Release() error {
	if !l.held {
		return nil
	}
	l.held = false

	data, err := os.ReadFile(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading lock %s: %w", l.path, err)
	}

	var info lockInfo
	if err := json.Unmarshal(data, &info); err == nil && info.Owner != l.owner {
		// Taken over as stale by someone else; leave theirs alone.
		return nil
	}

	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing lock %s: %w", l.path, err)
	}
	return nil
}

func (l *Lock) tryCreate() error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := json.Marshal(lockInfo{
		Owner:      l.owner,
		PID:        os.Getpid(),
		AcquiredAt: time.Now().UTC(),
	})
	if err == nil {
		_, err = f.Write(data)
	}
	if err != nil {
		_ = os.Remove(l.path)
	}
	return err
}

// staleOwner reports whether the lock file is past staleAfter and, if so,
// the owner recorded in it.
func (l *Lock) staleOwner() (string, bool) {
	info, err := os.Stat(l.path)
	if err != nil || time.Since(info.ModTime()) <= l.staleAfter {
		return "", false
	}
	return readOwner(l.path), true
}

// takeOver removes the stale lock left by owner. The file is renamed aside
// first and checked; if another waiter already replaced it with a fresh
// lock, that lock is linked back into place.
func (l *Lock) takeOver(owner string) {
	aside := l.path + ".stale-" + l.owner
	if err := os.Rename(l.path, aside); err != nil {
		return
	}
	if readOwner(aside) != owner {
		_ = os.Link(aside, l.path)
	}
	_ = os.Remove(aside)
}

func readOwner(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	var info lockInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return ""
	}
	return info.Owner
}
