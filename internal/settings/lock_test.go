package settings

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLock_AcquireRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".claude", "settings.local.json")
	lock := NewLock(path, time.Second)

	require.NoError(t, lock.Acquire(context.Background()))
	assert.FileExists(t, lock.Path())

	require.NoError(t, lock.Release())
	assert.NoFileExists(t, lock.Path())

	// Releasing twice is harmless.
	require.NoError(t, lock.Release())
}

func TestLock_ContendedTimesOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.local.json")

	first := NewLock(path, time.Second)
	require.NoError(t, first.Acquire(context.Background()))
	defer first.Release()

	second := NewLock(path, 100*time.Millisecond)
	err := second.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrLocked)
}

func TestLock_WaitsForRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.local.json")

	first := NewLock(path, time.Second)
	require.NoError(t, first.Acquire(context.Background()))

	done := make(chan error, 1)
	go func() {
		done <- NewLock(path, 2*time.Second).Acquire(context.Background())
	}()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, first.Release())

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("second lock was never acquired")
	}
}

func TestLock_TakesOverStaleLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.local.json")
	lockPath := path + lockSuffix
	require.NoError(t, os.WriteFile(lockPath, []byte(`{"owner":"gone","pid":1}`), 0o644))

	old := time.Now().Add(-2 * DefaultStaleAfter)
	require.NoError(t, os.Chtimes(lockPath, old, old))

	lock := NewLock(path, 0)
	require.NoError(t, lock.Acquire(context.Background()))
	require.NoError(t, lock.Release())
}

func TestLock_ReleaseLeavesForeignLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.local.json")
	lock := NewLock(path, time.Second)
	require.NoError(t, lock.Acquire(context.Background()))

	// Simulate a stale takeover by another owner.
	require.NoError(t, os.WriteFile(lock.Path(), []byte(`{"owner":"someone-else","pid":2}`), 0o644))

	require.NoError(t, lock.Release())
	assert.FileExists(t, lock.Path())
}

func TestLock_CancelledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.local.json")
	first := NewLock(path, time.Second)
	require.NoError(t, first.Acquire(context.Background()))
	defer first.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewLock(path, 5*time.Second).Acquire(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLock_TakeOverKeepsReplacedLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.local.json")
	lock := NewLock(path, 0)
	fresh := `{"owner":"fresh","pid":3}`
	require.NoError(t, os.WriteFile(lock.Path(), []byte(fresh), 0o644))

	// The stale lock seen earlier belonged to "gone"; a newer holder has
	// replaced it since.
	lock.takeOver("gone")

	data, err := os.ReadFile(lock.Path())
	require.NoError(t, err)
	assert.Equal(t, fresh, string(data))

	leftovers, err := filepath.Glob(lock.Path() + ".stale-*")
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestLock_TakeOverRemovesStaleOwner(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.local.json")
	lock := NewLock(path, 0)
	require.NoError(t, os.WriteFile(lock.Path(), []byte(`{"owner":"gone","pid":1}`), 0o644))

	lock.takeOver("gone")
	assert.NoFileExists(t, lock.Path())
}
