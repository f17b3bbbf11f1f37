package layout

// Rect describes a rectangular region in absolute desktop coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Insets are pixel amounts shaved off each edge of a work area.
type Insets struct {
	Top    int
	Bottom int
	Left   int
	Right  int
}

// Shrink returns r reduced by the given insets. Width and height are
// clamped to zero so degenerate inset configurations cannot produce a
// negative-sized area.
func (r Rect) Shrink(in Insets) Rect {
	out := Rect{
		X:      r.X + in.Left,
		Y:      r.Y + in.Top,
		Width:  r.Width - in.Left - in.Right,
		Height: r.Height - in.Top - in.Bottom,
	}
	if out.Width < 0 {
		out.Width = 0
	}
	if out.Height < 0 {
		out.Height = 0
	}
	return out
}

// Contains reports whether the point (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// CenterX returns the x coordinate of the rect's center.
func (r Rect) CenterX() int { return r.X + r.Width/2 }

// CenterY returns the y coordinate of the rect's center.
func (r Rect) CenterY() int { return r.Y + r.Height/2 }
