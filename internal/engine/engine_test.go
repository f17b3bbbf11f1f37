package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsukumo919/window-mover/internal/config"
	"github.com/tsukumo919/window-mover/internal/layout"
	"github.com/tsukumo919/window-mover/internal/platform"
)

type fakeBackend struct {
	mu sync.Mutex

	displays []platform.Display
	windows  []platform.Window
	desktops int
	invalid  map[platform.WindowID]bool

	calls []string
	moved map[platform.WindowID]layout.Rect

	moveResizeErr error
	listErr       error
}

func newFakeBackend() *fakeBackend {
	full := layout.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}
	return &fakeBackend{
		displays: []platform.Display{{ID: 0, Name: "eDP-1", Bounds: full, Usable: full}},
		desktops: 4,
		invalid:  make(map[platform.WindowID]bool),
		moved:    make(map[platform.WindowID]layout.Rect),
	}
}

func (f *fakeBackend) record(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeBackend) Displays() ([]platform.Display, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.displays, nil
}

func (f *fakeBackend) ListWindows() ([]platform.Window, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]platform.Window, len(f.windows))
	copy(out, f.windows)
	return out, nil
}

func (f *fakeBackend) IsWindowValid(id platform.WindowID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.invalid[id]
}

func (f *fakeBackend) MoveResize(id platform.WindowID, r layout.Rect) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.moveResizeErr != nil {
		return f.moveResizeErr
	}
	f.record("moveresize %d", id)
	f.moved[id] = r
	return nil
}

func (f *fakeBackend) SetMaximized(id platform.WindowID, on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("maximize %d %v", id, on)
	return nil
}

func (f *fakeBackend) SetMinimized(id platform.WindowID, on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("minimize %d %v", id, on)
	return nil
}

func (f *fakeBackend) MoveToDesktop(id platform.WindowID, desktop int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("desktop %d %d", id, desktop)
	return nil
}

func (f *fakeBackend) DesktopCount() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.desktops, nil
}

func (f *fakeBackend) Close() {}

func (f *fakeBackend) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeBackend) movedRect(id platform.WindowID) (layout.Rect, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.moved[id]
	return r, ok
}

func newTestEngine(t *testing.T, backend platform.Backend, yamlText string) *Engine {
	t.Helper()
	cfg, err := config.Parse([]byte(yamlText))
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e, err := New(backend, cfg, logger)
	require.NoError(t, err)
	e.startedAt = time.Now()
	return e
}

func notepad(id platform.WindowID) platform.Window {
	return platform.Window{
		ID:      id,
		PID:     100 + int(id),
		Process: "notepad",
		Title:   "Untitled - Notepad",
		Bounds:  layout.Rect{X: 50, Y: 50, Width: 600, Height: 400},
	}
}

const notepadRules = `
rules:
  - name: center notepad
    condition:
      process: notepad
    action:
      move_to: MiddleCenter
      resize_to: {width: "320", height: 50%}
`

func TestDispatchAppliesMatchedRule(t *testing.T) {
	backend := newFakeBackend()
	backend.windows = []platform.Window{notepad(7)}
	e := newTestEngine(t, backend, notepadRules)

	e.dispatch(context.Background())

	r, ok := backend.movedRect(7)
	require.True(t, ok, "window should have been placed")
	assert.Equal(t, layout.Rect{X: 800, Y: 270, Width: 320, Height: 540}, r)
	require.Contains(t, e.tracked, platform.WindowID(7))
	assert.True(t, e.tracked[7].processed)
}

func TestMinimizedAndUntitledWindowsAreLeftAlone(t *testing.T) {
	backend := newFakeBackend()
	hidden := notepad(1)
	hidden.Minimized = true
	starting := notepad(2)
	starting.Title = ""
	backend.windows = []platform.Window{hidden, starting}
	e := newTestEngine(t, backend, notepadRules)

	e.dispatch(context.Background())

	assert.Empty(t, backend.callLog(), "neither window may be placed")
	assert.Empty(t, e.tracked, "skipped windows are not tracked yet")

	// Once restored and titled they are discovered like new windows.
	hidden.Minimized = false
	starting.Title = "Untitled - Notepad"
	backend.windows = []platform.Window{hidden, starting}

	e.dispatch(context.Background())

	_, ok := backend.movedRect(1)
	assert.True(t, ok, "restored window should be placed")
	_, ok = backend.movedRect(2)
	assert.True(t, ok, "titled window should be placed")
}

func TestProcessedWindowNotReplaced(t *testing.T) {
	backend := newFakeBackend()
	backend.windows = []platform.Window{notepad(7)}
	e := newTestEngine(t, backend, notepadRules)

	e.dispatch(context.Background())
	e.dispatch(context.Background())

	assert.Len(t, backend.callLog(), 1, "placement must happen exactly once")
}

func TestIgnoredWindowNeverReachesRules(t *testing.T) {
	backend := newFakeBackend()
	backend.windows = []platform.Window{
		{ID: 3, Process: "notepad", Title: "OSComponent", Bounds: layout.Rect{Width: 100, Height: 100}},
	}
	e := newTestEngine(t, backend, `
ignores:
  - name: shell bits
    conditions:
      - title: OSComponent
`+notepadRules[1:])

	e.dispatch(context.Background())

	assert.Empty(t, backend.callLog())
	require.Contains(t, e.tracked, platform.WindowID(3))
	assert.True(t, e.tracked[3].processed, "ignored windows are still marked seen")
}

func TestPlacementSequencing(t *testing.T) {
	backend := newFakeBackend()
	backend.windows = []platform.Window{notepad(9)}
	e := newTestEngine(t, backend, `
rules:
  - name: full placement
    condition:
      process: notepad
    action:
      move_to: TopLeft
      target_workspace: 2
      maximize: "OFF"
`)

	e.dispatch(context.Background())

	require.Equal(t, []string{
		"desktop 9 1",
		"moveresize 9",
		"maximize 9 false",
	}, backend.callLog())
}

func TestWorkspaceOutOfRangeIsSkipped(t *testing.T) {
	backend := newFakeBackend()
	backend.desktops = 2
	backend.windows = []platform.Window{notepad(4)}
	e := newTestEngine(t, backend, `
rules:
  - name: nine lives
    condition:
      process: notepad
    action:
      move_to: TopLeft
      target_workspace: 9
`)

	e.dispatch(context.Background())

	calls := backend.callLog()
	require.Len(t, calls, 1, "geometry should still apply")
	assert.Equal(t, "moveresize 4", calls[0])
}

func TestTargetMonitorOutOfRangeFallsBack(t *testing.T) {
	backend := newFakeBackend()
	backend.windows = []platform.Window{notepad(5)}
	e := newTestEngine(t, backend, `
rules:
  - name: on monitor three
    condition:
      process: notepad
    action:
      move_to: TopLeft
      target_monitor: 3
`)

	e.dispatch(context.Background())

	r, ok := backend.movedRect(5)
	require.True(t, ok)
	assert.Equal(t, 0, r.X, "should place on the only display")
	assert.Equal(t, 0, r.Y)
}

func TestPlacementFailureAllowsRetry(t *testing.T) {
	backend := newFakeBackend()
	backend.windows = []platform.Window{notepad(6)}
	backend.moveResizeErr = fmt.Errorf("window gone")
	e := newTestEngine(t, backend, notepadRules)

	e.dispatch(context.Background())
	require.Contains(t, e.tracked, platform.WindowID(6))
	assert.False(t, e.tracked[6].processed, "failed placement must stay eligible")

	backend.mu.Lock()
	backend.moveResizeErr = nil
	backend.mu.Unlock()

	e.dispatch(context.Background())
	assert.True(t, e.tracked[6].processed)
	_, ok := backend.movedRect(6)
	assert.True(t, ok)
}

func TestDelayedPlacement(t *testing.T) {
	backend := newFakeBackend()
	backend.windows = []platform.Window{notepad(8)}
	e := newTestEngine(t, backend, `
rules:
  - name: wait for it
    condition:
      process: notepad
    action:
      move_to: MiddleCenter
      execution_delay: 20
`)

	e.dispatch(context.Background())

	assert.True(t, e.tracked[8].processed, "processed is marked before the delay fires")
	_, ok := backend.movedRect(8)
	assert.False(t, ok, "placement must not run before the delay")

	select {
	case res := <-e.results:
		require.NoError(t, res.err)
	case <-time.After(2 * time.Second):
		t.Fatal("delayed placement never completed")
	}

	_, ok = backend.movedRect(8)
	assert.True(t, ok)
}

func TestDelayedPlacementCancelledForDeadWindow(t *testing.T) {
	backend := newFakeBackend()
	backend.windows = []platform.Window{notepad(8)}
	e := newTestEngine(t, backend, `
rules:
  - name: wait for it
    condition:
      process: notepad
    action:
      move_to: MiddleCenter
      execution_delay: 20
`)

	e.dispatch(context.Background())
	backend.mu.Lock()
	backend.invalid[8] = true
	backend.mu.Unlock()

	select {
	case <-e.results:
		t.Fatal("placement should have been cancelled")
	case <-time.After(150 * time.Millisecond):
	}
	_, ok := backend.movedRect(8)
	assert.False(t, ok)
}

func TestCleanupRemovesOnlyStaleEntries(t *testing.T) {
	backend := newFakeBackend()
	backend.windows = []platform.Window{notepad(1), notepad(2)}
	e := newTestEngine(t, backend, notepadRules)

	e.dispatch(context.Background())
	require.Len(t, e.tracked, 2)

	backend.mu.Lock()
	backend.invalid[1] = true
	backend.mu.Unlock()

	e.cleanup()

	assert.NotContains(t, e.tracked, platform.WindowID(1))
	assert.Contains(t, e.tracked, platform.WindowID(2))
}

func TestReloadRejectsBadConfigKeepsOldSet(t *testing.T) {
	backend := newFakeBackend()
	e := newTestEngine(t, backend, notepadRules)
	before := e.set.Load()

	bad, err := config.Parse([]byte(`
rules:
  - name: broken
    condition:
      title: "regex:["
    action:
      maximize: "ON"
`))
	require.NoError(t, err)

	require.Error(t, e.reload(bad))
	assert.Same(t, before, e.set.Load(), "previous rule set must stay active")
}

func TestReloadReappliesWhenConfigured(t *testing.T) {
	backend := newFakeBackend()
	backend.windows = []platform.Window{notepad(7)}
	e := newTestEngine(t, backend, notepadRules)

	e.dispatch(context.Background())
	require.True(t, e.tracked[7].processed)

	cfg, err := config.Parse([]byte(notepadRules))
	require.NoError(t, err)
	require.NoError(t, e.reload(cfg))

	assert.False(t, e.tracked[7].processed, "apply_on_reload defaults to true")

	e.dispatch(context.Background())
	assert.Len(t, backend.callLog(), 2)
}

func TestRecheckOnTitleChange(t *testing.T) {
	backend := newFakeBackend()
	win := platform.Window{ID: 2, Process: "term", Title: "shell", Bounds: layout.Rect{Width: 400, Height: 300}}
	backend.windows = []platform.Window{win}
	e := newTestEngine(t, backend, `
global:
  recheck_on_title_change: true
rules:
  - name: editor windows
    condition:
      title: vim
    action:
      move_to: TopRight
`)

	e.dispatch(context.Background())
	assert.Empty(t, backend.callLog())

	backend.mu.Lock()
	backend.windows[0].Title = "vim scratch"
	backend.mu.Unlock()

	e.dispatch(context.Background())
	_, ok := backend.movedRect(2)
	assert.True(t, ok, "title change must trigger reclassification")
}

func TestStatusCounts(t *testing.T) {
	backend := newFakeBackend()
	backend.windows = []platform.Window{notepad(1), {ID: 2, Process: "vim", Title: "x", Bounds: layout.Rect{Width: 10, Height: 10}}}
	e := newTestEngine(t, backend, notepadRules)

	e.dispatch(context.Background())
	st := e.status()

	assert.False(t, st.Paused)
	assert.Equal(t, 2, st.TrackedWindows)
	assert.Equal(t, 2, st.ProcessedWindows)
	assert.Equal(t, 1, st.Rules)
}

func TestDescribeWindows(t *testing.T) {
	backend := newFakeBackend()
	backend.windows = []platform.Window{
		notepad(1),
		{ID: 2, Process: "vim", Title: "scratch", Bounds: layout.Rect{Width: 10, Height: 10}},
	}
	e := newTestEngine(t, backend, notepadRules)

	reports, err := e.describe()
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "matched", reports[0].Classification)
	assert.Equal(t, "center notepad", reports[0].Rule)
	assert.Equal(t, "unmatched", reports[1].Classification)
}

func TestControlSignalsThroughRun(t *testing.T) {
	backend := newFakeBackend()
	backend.windows = []platform.Window{notepad(7)}
	e := newTestEngine(t, backend, `
global:
  polling_interval: 10
  apply_on_resume: true
`+notepadRules[1:])

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	require.Eventually(t, func() bool {
		_, ok := backend.movedRect(7)
		return ok
	}, 2*time.Second, 5*time.Millisecond, "polling loop should place the window")

	require.NoError(t, e.Pause(ctx))
	st, err := e.Status(ctx)
	require.NoError(t, err)
	assert.True(t, st.Paused)

	require.NoError(t, e.Resume(ctx))
	st, err = e.Status(ctx)
	require.NoError(t, err)
	assert.False(t, st.Paused)

	require.Eventually(t, func() bool {
		return len(backend.callLog()) >= 2
	}, 2*time.Second, 5*time.Millisecond, "apply_on_resume should replace the window")

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("engine did not stop")
	}
}
