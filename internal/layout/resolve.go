package layout

// PlacementKind distinguishes the two move_to forms.
type PlacementKind int

const (
	// PlaceAnchor moves the window so that its own anchor point lands on a
	// named point of the effective work area.
	PlaceAnchor PlacementKind = iota
	// PlaceCoordinates moves the window to explicit coordinates measured
	// from the work area origin. Configured monitor insets are bypassed in
	// this form and the window anchor is ignored.
	PlaceCoordinates
)

// Placement is the target of a move: either a named anchor point or an
// explicit coordinate pair.
type Placement struct {
	Kind   PlacementKind
	Anchor Anchor // valid when Kind == PlaceAnchor
	X, Y   Length // valid when Kind == PlaceCoordinates
}

// AnchorPlacement returns a placement targeting a named work-area point.
func AnchorPlacement(a Anchor) Placement {
	return Placement{Kind: PlaceAnchor, Anchor: a}
}

// CoordinatePlacement returns a placement at explicit coordinates.
func CoordinatePlacement(x, y Length) Placement {
	return Placement{Kind: PlaceCoordinates, X: x, Y: y}
}

// Spec is the geometric part of a rule action, fully resolved from
// configuration: no string parsing happens here.
type Spec struct {
	// Anchor is the window's own reference point for anchor placements.
	Anchor Anchor
	// MoveTo is nil when the action does not reposition the window.
	MoveTo *Placement
	// Width and Height are nil when the corresponding dimension keeps its
	// current size.
	Width  *Length
	Height *Length
	// OffsetX and OffsetY shift the final position by a pixel delta. They
	// only take effect when MoveTo resolved a position.
	OffsetX int
	OffsetY int
}

// Resolve computes the target rectangle for a window.
//
// workArea is the monitor's raw usable area (OS-reserved regions already
// excluded); insets are the configured per-monitor offsets; current is the
// window's present geometry, used for any dimension or axis the spec leaves
// unspecified.
//
// Resolution order: effective area (work area minus insets, except for
// explicit-coordinate placements which bypass insets entirely) → size →
// position → pixel offset. The function is pure.
func Resolve(spec Spec, workArea Rect, insets Insets, current Rect) Rect {
	explicit := spec.MoveTo != nil && spec.MoveTo.Kind == PlaceCoordinates

	effective := workArea
	if !explicit {
		effective = workArea.Shrink(insets)
	}

	width := current.Width
	if spec.Width != nil {
		width = spec.Width.Resolve(effective.Width)
	}
	height := current.Height
	if spec.Height != nil {
		height = spec.Height.Resolve(effective.Height)
	}

	x, y := current.X, current.Y
	moved := false

	if spec.MoveTo != nil {
		switch spec.MoveTo.Kind {
		case PlaceAnchor:
			target := spec.MoveTo.Anchor
			baseX := effective.X + int(float64(effective.Width)*target.FracX())
			baseY := effective.Y + int(float64(effective.Height)*target.FracY())
			x = baseX - int(float64(width)*spec.Anchor.FracX())
			y = baseY - int(float64(height)*spec.Anchor.FracY())
		case PlaceCoordinates:
			x = workArea.X + spec.MoveTo.X.Resolve(workArea.Width)
			y = workArea.Y + spec.MoveTo.Y.Resolve(workArea.Height)
		}
		moved = true
	}

	if moved {
		x += spec.OffsetX
		y += spec.OffsetY
	}

	return Rect{X: x, Y: y, Width: width, Height: height}
}

// MonitorIndexForRect returns the index of the work area containing the
// rect's center point, or fallback when no area contains it.
func MonitorIndexForRect(areas []Rect, r Rect, fallback int) int {
	cx, cy := r.CenterX(), r.CenterY()
	for i, area := range areas {
		if area.Contains(cx, cy) {
			return i
		}
	}
	return fallback
}
