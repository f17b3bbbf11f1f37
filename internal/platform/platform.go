// Package platform defines the window-system surface the engine runs
// against. The concrete backend lives in internal/x11; the engine and the
// rule matchers only ever see these types, which keeps them testable with a
// scripted fake.
package platform

import "github.com/tsukumo919/window-mover/internal/layout"

// WindowID is the window system's opaque handle.
type WindowID uint32

// Window is an immutable snapshot of one window at enumeration time. It is
// never mutated; callers re-fetch when freshness matters.
type Window struct {
	ID      WindowID
	PID     int
	Process string
	Class   string
	Title   string
	Bounds  layout.Rect

	Maximized bool
	Minimized bool
}

// Display is one physical monitor. Bounds is the full output rectangle;
// Usable has dock and panel struts already subtracted.
type Display struct {
	ID     int
	Name   string
	Bounds layout.Rect
	Usable layout.Rect
}

// Backend is the set of window-system capabilities the engine needs. All
// mutating calls address windows by handle and may fail if the handle went
// stale between enumeration and application.
type Backend interface {
	// Displays enumerates connected monitors in a stable order.
	Displays() ([]Display, error)

	// ListWindows snapshots the managed, non-hidden top-level windows.
	ListWindows() ([]Window, error)

	// IsWindowValid reports whether the handle still names a live window.
	IsWindowValid(id WindowID) bool

	// MoveResize places a window at an absolute rectangle, restoring it
	// from the maximized state first when necessary.
	MoveResize(id WindowID, r layout.Rect) error

	// SetMaximized toggles the maximized state.
	SetMaximized(id WindowID, on bool) error

	// SetMinimized iconifies or restores a window.
	SetMinimized(id WindowID, on bool) error

	// MoveToDesktop sends a window to a virtual desktop (0-based).
	MoveToDesktop(id WindowID, desktop int) error

	// DesktopCount reports the number of virtual desktops.
	DesktopCount() (int, error)

	// Close releases the window-system connection.
	Close()
}
