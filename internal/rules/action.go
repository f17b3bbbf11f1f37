package rules

import (
	"fmt"
	"strings"
	"time"

	"github.com/tsukumo919/window-mover/internal/config"
	"github.com/tsukumo919/window-mover/internal/layout"
)

// Switch is the tri-state carried by maximize and minimize directives.
type Switch int

const (
	SwitchUnset Switch = iota
	SwitchOn
	SwitchOff
)

func parseSwitch(s string) Switch {
	switch strings.ToUpper(s) {
	case "ON":
		return SwitchOn
	case "OFF":
		return SwitchOff
	default:
		return SwitchUnset
	}
}

// Action is a rule's compiled placement directive. Geometry is only
// meaningful when HasGeometry is set; TargetMonitor and TargetWorkspace use
// the 1-based config numbering, zero meaning unset.
type Action struct {
	Geometry    layout.Spec
	HasGeometry bool

	TargetMonitor   int
	TargetWorkspace int

	Maximize Switch
	Minimize Switch

	Delay time.Duration
}

func compileAction(a config.Action) (Action, error) {
	out := Action{
		TargetMonitor:   a.TargetMonitor,
		TargetWorkspace: a.TargetWorkspace,
		Maximize:        parseSwitch(a.Maximize),
		Minimize:        parseSwitch(a.Minimize),
		Delay:           time.Duration(a.ExecutionDelay) * time.Millisecond,
	}

	anchor := layout.MiddleCenter
	if a.Anchor != "" {
		parsed, ok := layout.ParseAnchor(a.Anchor)
		if !ok {
			return Action{}, fmt.Errorf("unknown anchor point %q", a.Anchor)
		}
		anchor = parsed
	}
	out.Geometry.Anchor = anchor

	if a.MoveTo != nil {
		p, err := compileMoveTo(a.MoveTo)
		if err != nil {
			return Action{}, fmt.Errorf("move_to: %w", err)
		}
		out.Geometry.MoveTo = &p
		out.HasGeometry = true
	}

	if a.ResizeTo != nil {
		if s := a.ResizeTo.EffectiveWidth(); s != "" {
			l, err := layout.ParseLength(string(s))
			if err != nil {
				return Action{}, fmt.Errorf("resize_to.width: %w", err)
			}
			out.Geometry.Width = &l
			out.HasGeometry = true
		}
		if s := a.ResizeTo.EffectiveHeight(); s != "" {
			l, err := layout.ParseLength(string(s))
			if err != nil {
				return Action{}, fmt.Errorf("resize_to.height: %w", err)
			}
			out.Geometry.Height = &l
			out.HasGeometry = true
		}
	}

	if a.Offset != nil {
		out.Geometry.OffsetX = a.Offset.X
		out.Geometry.OffsetY = a.Offset.Y
	}

	return out, nil
}

func compileMoveTo(mt *config.MoveTo) (layout.Placement, error) {
	if !mt.Explicit {
		anchor, ok := layout.ParseAnchor(mt.AnchorName)
		if !ok {
			return layout.Placement{}, fmt.Errorf("unknown anchor point %q", mt.AnchorName)
		}
		return layout.AnchorPlacement(anchor), nil
	}
	x, err := layout.ParseLength(string(mt.X))
	if err != nil {
		return layout.Placement{}, fmt.Errorf("x: %w", err)
	}
	y, err := layout.ParseLength(string(mt.Y))
	if err != nil {
		return layout.Placement{}, fmt.Errorf("y: %w", err)
	}
	return layout.CoordinatePlacement(x, y), nil
}
