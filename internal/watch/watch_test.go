// © 2026 The agsscript Authors
//
// SPDX-License-Identifier: Apache-2.0

package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/edmundito/agsscript/internal/exc"
)

func runWatcher(t *testing.T, paths []string) (chan []string, func()) {
	t.Helper()
	w, err := New(paths, OptionWithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	changes := make(chan []string, 16)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(ctx context.Context, changed []string) error {
			changes <- changed
			return nil
		})
	}()
	return changes, func() {
		cancel()
		require.True(t, errors.Is(<-done, context.Canceled))
		require.NoError(t, w.Close())
	}
}

func waitChange(t *testing.T, changes chan []string) []string {
	t.Helper()
	select {
	case changed := <-changes:
		return changed
	case <-time.After(5 * time.Second):
		require.FailNow(t, "no change reported")
	}
	return nil
}

func TestWatchDirectory(t *testing.T) {
	t.Parallel()

	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	changes, stop := runWatcher(t, []string{dir})
	defer stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Room.asc"), []byte("int x;\n"), 0o644))

	changed := waitChange(t, changes)
	require.Equal(t, []string{filepath.Join(dir, "Room.asc")}, changed)
}

func TestWatchFile(t *testing.T) {
	t.Parallel()

	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	target := filepath.Join(dir, "Globals.ash")
	require.NoError(t, os.WriteFile(target, []byte("int x;\n"), 0o644))
	changes, stop := runWatcher(t, []string{target})
	defer stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "Other.ash"), []byte("int y;\n"), 0o644))
	require.NoError(t, os.WriteFile(target, []byte("int z;\n"), 0o644))

	changed := waitChange(t, changes)
	require.Equal(t, []string{target}, changed)
}

func TestWatchMissingTarget(t *testing.T) {
	t.Parallel()

	_, err := New([]string{filepath.Join(t.TempDir(), "missing.asc")})
	var e exc.Exception
	require.True(t, errors.As(err, &e))
	require.Equal(t, exc.CodeFileNotFound, e.Code())
}

func TestWatchCallbackError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w, err := New([]string{dir}, OptionWithDebounce(10*time.Millisecond))
	require.NoError(t, err)
	defer w.Close()

	boom := errors.New("boom")
	done := make(chan error, 1)
	go func() {
		done <- w.Run(context.Background(), func(ctx context.Context, changed []string) error {
			return boom
		})
	}()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.asc"), []byte("int a;\n"), 0o644))

	select {
	case err := <-done:
		require.ErrorIs(t, err, boom)
	case <-time.After(5 * time.Second):
		require.FailNow(t, "watcher did not stop")
	}
}
