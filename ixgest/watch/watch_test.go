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
	"go.uber.org/zap/zaptest"

	"github.com/teranos/protix/errors"
)

const testDebounce = 50 * time.Millisecond

func startWatcher(t *testing.T, paths []string, onChange func() error) *Watcher {
	t.Helper()
	w, err := New(paths, testDebounce, onChange, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		w.Close()
	})
	return w
}

func TestWatcherRunsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "terms.tsv")
	require.NoError(t, os.WriteFile(path, []byte("P1\tGO:1\tBPO\n"), 0644))

	var calls atomic.Int32
	startWatcher(t, []string{path}, func() error {
		calls.Add(1)
		return nil
	})

	require.NoError(t, os.WriteFile(path, []byte("P1\tGO:2\tBPO\n"), 0644))

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 5*time.Second, 10*time.Millisecond)
}

func TestWatcherDebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "proteins.fasta")
	require.NoError(t, os.WriteFile(path, []byte(">P1\nA\n"), 0644))

	var calls atomic.Int32
	startWatcher(t, []string{path}, func() error {
		calls.Add(1)
		return nil
	})

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := f.WriteString("AAAA\n")
		require.NoError(t, err)
	}
	require.NoError(t, f.Close())

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, 5*time.Second, 10*time.Millisecond)
	time.Sleep(5 * testDebounce)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "taxonomy.tsv")
	require.NoError(t, os.WriteFile(path, []byte("P1\t9606\n"), 0644))

	var calls atomic.Int32
	startWatcher(t, []string{path}, func() error {
		calls.Add(1)
		return nil
	})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	time.Sleep(5 * testDebounce)
	assert.Equal(t, int32(0), calls.Load())
}

func TestWatcherKeepsRunningAfterFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "terms.tsv")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	var calls atomic.Int32
	startWatcher(t, []string{path}, func() error {
		calls.Add(1)
		return errors.New("integration failed")
	})

	require.NoError(t, os.WriteFile(path, []byte("a"), 0644))
	require.Eventually(t, func() bool { return calls.Load() == 1 }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("b"), 0644))
	assert.Eventually(t, func() bool { return calls.Load() == 2 }, 5*time.Second, 10*time.Millisecond)
}

func TestNewRejectsStdinOnly(t *testing.T) {
	_, err := New([]string{"-", ""}, testDebounce, func() error { return nil }, nil)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidRequestError(err))
}

func TestNewMissingDirectory(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent", "proteins.fasta")
	_, err := New([]string{missing}, testDebounce, func() error { return nil }, nil)
	require.Error(t, err)
	assert.True(t, errors.IsMissingSource(err))
}

func TestNewValidatesArguments(t *testing.T) {
	_, err := New([]string{"x"}, testDebounce, nil, nil)
	assert.True(t, errors.IsInvalidRequestError(err))

	_, err = New([]string{"x"}, -time.Second, func() error { return nil }, nil)
	assert.True(t, errors.IsInvalidRequestError(err))
}
