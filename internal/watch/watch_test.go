package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestFiles_DebouncesChanges(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "settings.local.json")
	other := filepath.Join(dir, "unrelated.json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- Files(ctx, []string{target}, 50*time.Millisecond, zaptest.NewLogger(t), func() {
			calls.Add(1)
		})
	}()

	// Give the watcher time to register.
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(target, []byte("{}"), 0o644))
	}

	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestFiles_NoExistingDirectory(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope", "settings.local.json")
	err := Files(context.Background(), []string{missing}, DefaultDebounce, nil, func() {})
	assert.Error(t, err)
}

func TestFiles_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Files(ctx, []string{filepath.Join(t.TempDir(), "x.json")}, DefaultDebounce, nil, func() {})
	assert.NoError(t, err)
}
