package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tsukumo919/window-mover/internal/layout"
	"github.com/tsukumo919/window-mover/internal/platform"
	"github.com/tsukumo919/window-mover/internal/rules"
)

// dispatch runs one discovery cycle: enumerate windows, classify each one
// not yet processed and apply the matched rule.
func (e *Engine) dispatch(ctx context.Context) {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			e.logger.Error("dispatch panic recovered", "error", err)
		}
	}()

	windows, err := e.backend.ListWindows()
	if err != nil {
		e.logger.Error("window enumeration failed", "error", err)
		return
	}

	set := e.set.Load()
	recheckTitles := e.settings.Load().RecheckOnTitleChange
	now := time.Now()

	for _, win := range windows {
		// A minimized window stays where the user put it; an untitled one
		// is usually still initializing and gets picked up next cycle.
		if win.Minimized || win.Title == "" {
			continue
		}

		t, ok := e.tracked[win.ID]
		if !ok {
			t = &trackedWindow{title: win.Title}
			e.tracked[win.ID] = t
		}
		t.lastSeen = now

		if t.processed {
			if !recheckTitles || win.Title == t.title {
				continue
			}
			e.logger.Debug("title changed, rechecking", "window", win.Title, "was", t.title)
		}
		t.title = win.Title

		cls := set.Classify(win)
		// Ignored and unmatched windows are remembered so they are not
		// reclassified every cycle.
		t.processed = true

		switch cls.Kind {
		case rules.Ignored:
			e.logger.Debug("window ignored", "window", win.Title, "entry", cls.IgnoredBy)
		case rules.Matched:
			e.logger.Info("rule matched", "rule", cls.Rule.Name, "window", win.Title, "process", win.Process)
			e.schedule(ctx, win, cls.Rule, set)
		default:
			e.logger.Debug("no rule matched", "window", win.Title, "process", win.Process)
		}
	}
}

// schedule applies a rule's action, either inline or after its delay. The
// delayed goroutine closes over copies of the action and offsets, so a
// reload cannot change a placement that is already in flight.
func (e *Engine) schedule(ctx context.Context, win platform.Window, rule *rules.Rule, set *rules.Set) {
	action := rule.Action
	offsets := set.Offsets

	if action.Delay <= 0 {
		if err := e.perform(win, action, offsets); err != nil {
			e.logger.Error("placement failed", "rule", rule.Name, "window", win.Title, "error", err)
			if t, ok := e.tracked[win.ID]; ok {
				t.processed = false
			}
		}
		return
	}

	e.logger.Debug("placement delayed", "rule", rule.Name, "window", win.Title, "delay", action.Delay)
	go func() {
		timer := time.NewTimer(action.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if !e.backend.IsWindowValid(win.ID) {
			return
		}

		res := placementResult{window: win.ID, title: win.Title, err: e.perform(win, action, offsets)}
		select {
		case e.results <- res:
		case <-ctx.Done():
		}
	}()
}

// perform executes the placement sequence: workspace first, then geometry,
// then maximize/minimize. The first failing step aborts the rest.
func (e *Engine) perform(win platform.Window, action rules.Action, offsets rules.OffsetTable) error {
	if action.TargetWorkspace > 0 {
		count, err := e.backend.DesktopCount()
		if err != nil {
			return fmt.Errorf("desktop count: %w", err)
		}
		if action.TargetWorkspace > count {
			e.logger.Warn("target workspace out of range",
				"window", win.Title, "workspace", action.TargetWorkspace, "desktops", count)
		} else if err := e.backend.MoveToDesktop(win.ID, action.TargetWorkspace-1); err != nil {
			return fmt.Errorf("move to workspace %d: %w", action.TargetWorkspace, err)
		}
	}

	if action.HasGeometry || action.TargetMonitor > 0 {
		target, err := e.resolveGeometry(win, action, offsets)
		if err != nil {
			return err
		}
		if err := e.backend.MoveResize(win.ID, target); err != nil {
			return fmt.Errorf("move/resize: %w", err)
		}
	}

	if action.Maximize != rules.SwitchUnset {
		if err := e.backend.SetMaximized(win.ID, action.Maximize == rules.SwitchOn); err != nil {
			return fmt.Errorf("set maximized: %w", err)
		}
	}
	if action.Minimize != rules.SwitchUnset {
		if err := e.backend.SetMinimized(win.ID, action.Minimize == rules.SwitchOn); err != nil {
			return fmt.Errorf("set minimized: %w", err)
		}
	}

	return nil
}

func (e *Engine) resolveGeometry(win platform.Window, action rules.Action, offsets rules.OffsetTable) (layout.Rect, error) {
	displays, err := e.backend.Displays()
	if err != nil {
		return layout.Rect{}, fmt.Errorf("enumerate displays: %w", err)
	}
	if len(displays) == 0 {
		return layout.Rect{}, errors.New("no displays found")
	}

	areas := make([]layout.Rect, len(displays))
	for i, d := range displays {
		areas[i] = d.Bounds
	}
	idx := layout.MonitorIndexForRect(areas, win.Bounds, 0)

	if action.TargetMonitor > 0 {
		if action.TargetMonitor <= len(displays) {
			idx = action.TargetMonitor - 1
		} else {
			e.logger.Warn("target monitor out of range, using current",
				"window", win.Title, "monitor", action.TargetMonitor, "displays", len(displays))
		}
	}

	d := displays[idx]
	return layout.Resolve(action.Geometry, d.Usable, offsets.For(idx+1), win.Bounds), nil
}

// cleanup drops tracked entries whose window no longer exists.
func (e *Engine) cleanup() {
	removed := 0
	for id := range e.tracked {
		if !e.backend.IsWindowValid(id) {
			delete(e.tracked, id)
			removed++
		}
	}
	if removed > 0 {
		e.logger.Debug("stale windows dropped", "count", removed, "tracked", len(e.tracked))
	}
}
