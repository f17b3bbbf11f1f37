package layout

// Anchor names one of the nine reference points of a rectangle: the four
// corners, the four edge midpoints, and the center. It is used both for the
// point on the work area a window is moved to and for the point on the
// window itself that lands there.
type Anchor int

const (
	TopLeft Anchor = iota
	TopCenter
	TopRight
	MiddleLeft
	MiddleCenter
	MiddleRight
	BottomLeft
	BottomCenter
	BottomRight
)

var anchorNames = map[string]Anchor{
	"TopLeft":      TopLeft,
	"TopCenter":    TopCenter,
	"TopRight":     TopRight,
	"MiddleLeft":   MiddleLeft,
	"MiddleCenter": MiddleCenter,
	"MiddleRight":  MiddleRight,
	"BottomLeft":   BottomLeft,
	"BottomCenter": BottomCenter,
	"BottomRight":  BottomRight,
}

// anchorFractions maps each anchor to its fractional position on a rect:
// left/top edges are 0, center is 0.5, right/bottom edges are 1.
var anchorFractions = [...][2]float64{
	TopLeft:      {0, 0},
	TopCenter:    {0.5, 0},
	TopRight:     {1, 0},
	MiddleLeft:   {0, 0.5},
	MiddleCenter: {0.5, 0.5},
	MiddleRight:  {1, 0.5},
	BottomLeft:   {0, 1},
	BottomCenter: {0.5, 1},
	BottomRight:  {1, 1},
}

// ParseAnchor resolves an anchor point by its configuration name.
func ParseAnchor(name string) (Anchor, bool) {
	a, ok := anchorNames[name]
	return a, ok
}

// IsAnchorName reports whether name is one of the nine anchor point names.
func IsAnchorName(name string) bool {
	_, ok := anchorNames[name]
	return ok
}

// FracX returns the anchor's horizontal fraction (0, 0.5 or 1).
func (a Anchor) FracX() float64 { return anchorFractions[a][0] }

// FracY returns the anchor's vertical fraction (0, 0.5 or 1).
func (a Anchor) FracY() float64 { return anchorFractions[a][1] }

func (a Anchor) String() string {
	for name, v := range anchorNames {
		if v == a {
			return name
		}
	}
	return "TopLeft"
}
