//go:build linux

package platform

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/tsukumo919/window-mover/internal/layout"
	"github.com/tsukumo919/window-mover/internal/x11"
)

// LinuxBackend wraps an X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend opens a fresh X11 connection.
func NewLinuxBackend() (*LinuxBackend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &LinuxBackend{conn: conn}, nil
}

// Close disconnects from the X server.
func (b *LinuxBackend) Close() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// Displays returns all active displays with their work areas.
func (b *LinuxBackend) Displays() ([]Display, error) {
	monitors, err := b.conn.GetMonitors()
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, Display{
			ID:     m.ID,
			Name:   m.Name,
			Bounds: layout.Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height},
			Usable: layout.Rect{X: m.UsableX, Y: m.UsableY, Width: m.UsableWidth, Height: m.UsableHeight},
		})
	}

	sort.Slice(displays, func(i, j int) bool {
		return displays[i].ID < displays[j].ID
	})

	return displays, nil
}

// ListWindows snapshots every managed normal window.
func (b *LinuxBackend) ListWindows() ([]Window, error) {
	clients, err := b.conn.ListClients()
	if err != nil {
		return nil, err
	}

	windows := make([]Window, 0, len(clients))
	for _, windowID := range clients {
		if !b.conn.IsNormalWindow(windowID) {
			continue
		}

		x, y, w, h, err := b.conn.WindowGeometry(windowID)
		if err != nil {
			// Window vanished between listing and inspection.
			continue
		}

		pid := b.conn.WindowPID(windowID)
		maximized, minimized := b.conn.WindowStates(windowID)

		windows = append(windows, Window{
			ID:        WindowID(windowID),
			PID:       pid,
			Process:   processName(pid),
			Class:     b.conn.WindowClass(windowID),
			Title:     b.conn.WindowTitle(windowID),
			Bounds:    layout.Rect{X: x, Y: y, Width: w, Height: h},
			Maximized: maximized,
			Minimized: minimized,
		})
	}

	sort.Slice(windows, func(i, j int) bool {
		return windows[i].ID < windows[j].ID
	})

	return windows, nil
}

// IsWindowValid reports whether the handle still names a live window.
func (b *LinuxBackend) IsWindowValid(id WindowID) bool {
	return b.conn.IsWindowValid(xproto.Window(id))
}

// MoveResize places a window at an absolute rectangle.
func (b *LinuxBackend) MoveResize(id WindowID, r layout.Rect) error {
	return b.conn.MoveResizeWindow(xproto.Window(id), r.X, r.Y, r.Width, r.Height)
}

// SetMaximized toggles the maximized state on both axes.
func (b *LinuxBackend) SetMaximized(id WindowID, on bool) error {
	return b.conn.SetMaximized(xproto.Window(id), on)
}

// SetMinimized iconifies or restores a window.
func (b *LinuxBackend) SetMinimized(id WindowID, on bool) error {
	return b.conn.SetMinimized(xproto.Window(id), on)
}

// MoveToDesktop sends a window to a virtual desktop (0-based).
func (b *LinuxBackend) MoveToDesktop(id WindowID, desktop int) error {
	return b.conn.SetWindowDesktop(xproto.Window(id), desktop)
}

// DesktopCount reports the number of virtual desktops.
func (b *LinuxBackend) DesktopCount() (int, error) {
	return b.conn.GetDesktopCount()
}

// processName resolves a PID to its short command name via /proc. Returns
// an empty string when the PID is unknown or the process is gone.
func processName(pid int) string {
	if pid <= 0 {
		return ""
	}
	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/comm", pid))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
