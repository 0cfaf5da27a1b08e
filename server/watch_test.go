package server

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchFiles(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "config.yaml")
	other := filepath.Join(dir, "other.yaml")
	require.NoError(t, os.WriteFile(watched, []byte("a"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	require.NoError(t, watchFiles(ctx, quietLogger(), []string{watched}, 50*time.Millisecond, func() {
		calls.Add(1)
	}))

	require.NoError(t, os.WriteFile(other, []byte("b"), 0o600))
	time.Sleep(200 * time.Millisecond)
	assert.Zero(t, calls.Load(), "changes to other files are ignored")

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(watched, []byte("c"), 0o600))
	}
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 20*time.Millisecond)
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load(), "a burst of writes reloads once")
}

func TestWatchFiles_Rename(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(watched, []byte("a"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	require.NoError(t, watchFiles(ctx, quietLogger(), []string{watched}, 20*time.Millisecond, func() {
		calls.Add(1)
	}))

	tmp := filepath.Join(dir, "config.yaml.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("b"), 0o600))
	require.NoError(t, os.Rename(tmp, watched))

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 20*time.Millisecond)
}

func TestWatchFiles_MissingDirectory(t *testing.T) {
	err := watchFiles(context.Background(), quietLogger(), []string{"/does/not/exist/config.yaml"}, time.Millisecond, func() {})
	assert.Error(t, err)
}

func TestServer_WatchConfig(t *testing.T) {
	env := newTestEnv(t, "")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, env.server.watchConfig(ctx))

	writeConfig(t, env.cfgPath, "http://watched.example.com", "")
	assert.Eventually(t, func() bool {
		return env.server.Config().API.BaseURL == "http://watched.example.com"
	}, 5*time.Second, 50*time.Millisecond)
}
