package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatch(t *testing.T, path string) (*syncBuffer, context.CancelFunc, <-chan error) {
	t.Helper()
	out := &syncBuffer{}
	cmd := NewWatchCommand(&RootOptions{Format: "text"})
	cmd.SetOut(out)
	cmd.SetErr(&syncBuffer{})

	ctx, cancel := context.WithCancel(context.Background())
	opts := &WatchOptions{RootOptions: &RootOptions{Format: "text"}, Debounce: 20 * time.Millisecond}
	done := make(chan error, 1)
	go func() { done <- runWatch(ctx, opts, path, cmd) }()
	t.Cleanup(cancel)
	return out, cancel, done
}

func TestWatch_RevalidatesOnChange(t *testing.T) {
	dir := copyUnits(t, "loop_unit.yaml")
	out, cancel, done := startWatch(t, dir)

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "✓ All 1 unit(s) valid")
	}, 5*time.Second, 10*time.Millisecond)

	data, err := os.ReadFile(unitPath("loop_unit_b.yaml"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "loop_unit_b.yaml"), data, 0644))

	require.Eventually(t, func() bool {
		s := out.String()
		return strings.Contains(s, "[cycle 2]") && strings.Contains(s, "✗ 1 of 2 unit(s) invalid")
	}, 5*time.Second, 10*time.Millisecond)
	assert.Contains(t, out.String(), "[E222] E#4")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestWatch_IgnoresOtherFiles(t *testing.T) {
	dir := copyUnits(t, "loop_unit.yaml")
	out, _, _ := startWatch(t, dir)

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "[cycle 1]")
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("x"), 0644))
	time.Sleep(200 * time.Millisecond)
	assert.NotContains(t, out.String(), "[cycle 2]")
}

func TestWatch_CancelledContext(t *testing.T) {
	dir := copyUnits(t, "loop_unit.yaml")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmd := NewWatchCommand(&RootOptions{Format: "text"})
	out := &syncBuffer{}
	cmd.SetOut(out)
	err := runWatch(ctx, &WatchOptions{RootOptions: &RootOptions{Format: "text"}, Debounce: time.Millisecond}, dir, cmd)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "[cycle 1]")
}

func TestWatch_NotFound(t *testing.T) {
	cmd := NewWatchCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&syncBuffer{})
	err := runWatch(context.Background(), &WatchOptions{RootOptions: &RootOptions{Format: "text"}}, "/nonexistent", cmd)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRelevantEvent(t *testing.T) {
	tests := []struct {
		name  string
		ev    fsnotify.Event
		path  string
		isDir bool
		want  bool
	}{
		{"write unit in dir", fsnotify.Event{Name: "/u/a.cue", Op: fsnotify.Write}, "/u", true, true},
		{"remove unit in dir", fsnotify.Event{Name: "/u/a.yaml", Op: fsnotify.Remove}, "/u", true, true},
		{"chmod ignored", fsnotify.Event{Name: "/u/a.cue", Op: fsnotify.Chmod}, "/u", true, false},
		{"non-unit ignored", fsnotify.Event{Name: "/u/readme.md", Op: fsnotify.Write}, "/u", true, false},
		{"watched file", fsnotify.Event{Name: "/u/a.cue", Op: fsnotify.Write}, "/u/a.cue", false, true},
		{"sibling of watched file", fsnotify.Event{Name: "/u/b.cue", Op: fsnotify.Write}, "/u/a.cue", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, relevantEvent(tt.ev, tt.path, tt.isDir))
		})
	}
}
