package layout

import "testing"

func lp(l Length) *Length { return &l }

func TestResolve_CenterAnchorWithPercentHeight(t *testing.T) {
	// 1920x1080 monitor with a 40px bottom inset leaves a 1920x1040
	// effective area. A 320 x 50% window centered on MiddleCenter must land
	// at (800, 260) with size (320, 520).
	spec := Spec{
		Anchor: MiddleCenter,
		MoveTo: &Placement{Kind: PlaceAnchor, Anchor: MiddleCenter},
		Width:  lp(Pixels(320)),
		Height: lp(Percent(50)),
	}
	work := Rect{X: 0, Y: 0, Width: 1920, Height: 1080}
	got := Resolve(spec, work, Insets{Bottom: 40}, Rect{X: 5, Y: 5, Width: 100, Height: 100})

	want := Rect{X: 800, Y: 260, Width: 320, Height: 520}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestResolve_ExplicitCoordinatesBypassInsets(t *testing.T) {
	spec := Spec{
		Anchor: MiddleCenter, // ignored for explicit coordinates
		MoveTo: &Placement{Kind: PlaceCoordinates, X: Percent(10), Y: Pixels(10)},
	}
	work := Rect{X: 0, Y: 0, Width: 1920, Height: 1080}
	current := Rect{X: 400, Y: 400, Width: 640, Height: 480}

	// Heavy insets must not change the result.
	got := Resolve(spec, work, Insets{Top: 100, Bottom: 100, Left: 100, Right: 100}, current)

	if got.X != 192 || got.Y != 10 {
		t.Fatalf("expected position (192, 10), got (%d, %d)", got.X, got.Y)
	}
	if got.Width != 640 || got.Height != 480 {
		t.Fatalf("expected size preserved, got %dx%d", got.Width, got.Height)
	}
}

func TestResolve_OffsetShiftsBothPlacementForms(t *testing.T) {
	work := Rect{X: 0, Y: 0, Width: 1000, Height: 1000}

	anchor := Spec{
		Anchor:  TopLeft,
		MoveTo:  &Placement{Kind: PlaceAnchor, Anchor: TopLeft},
		OffsetX: -20,
	}
	got := Resolve(anchor, work, Insets{}, Rect{Width: 100, Height: 100})
	if got.X != -20 || got.Y != 0 {
		t.Fatalf("anchor form: expected (-20, 0), got (%d, %d)", got.X, got.Y)
	}

	coords := Spec{
		MoveTo:  &Placement{Kind: PlaceCoordinates, X: Pixels(50), Y: Pixels(50)},
		OffsetX: -20,
	}
	got = Resolve(coords, work, Insets{}, Rect{Width: 100, Height: 100})
	if got.X != 30 || got.Y != 50 {
		t.Fatalf("coordinate form: expected (30, 50), got (%d, %d)", got.X, got.Y)
	}
}

func TestResolve_NoMoveToKeepsPositionAndIgnoresOffset(t *testing.T) {
	spec := Spec{
		Width:   lp(Percent(50)),
		OffsetX: 100,
		OffsetY: 100,
	}
	work := Rect{X: 0, Y: 0, Width: 800, Height: 600}
	got := Resolve(spec, work, Insets{}, Rect{X: 30, Y: 40, Width: 200, Height: 150})

	want := Rect{X: 30, Y: 40, Width: 400, Height: 150}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestResolve_AnchorCorners(t *testing.T) {
	work := Rect{X: 100, Y: 50, Width: 1000, Height: 500}
	win := Rect{Width: 200, Height: 100}

	tests := []struct {
		name           string
		anchor, target Anchor
		wantX, wantY   int
	}{
		{"top-left to top-left", TopLeft, TopLeft, 100, 50},
		{"bottom-right to bottom-right", BottomRight, BottomRight, 900, 450},
		{"top-left to bottom-right", TopLeft, BottomRight, 1100, 550},
		{"middle-center to top-center", MiddleCenter, TopCenter, 500, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := Spec{
				Anchor: tt.anchor,
				MoveTo: &Placement{Kind: PlaceAnchor, Anchor: tt.target},
				Width:  lp(Pixels(win.Width)),
				Height: lp(Pixels(win.Height)),
			}
			got := Resolve(spec, work, Insets{}, Rect{})
			if got.X != tt.wantX || got.Y != tt.wantY {
				t.Fatalf("expected (%d, %d), got (%d, %d)", tt.wantX, tt.wantY, got.X, got.Y)
			}
		})
	}
}

func TestResolve_IsDeterministic(t *testing.T) {
	spec := Spec{
		Anchor: BottomCenter,
		MoveTo: &Placement{Kind: PlaceAnchor, Anchor: BottomCenter},
		Width:  lp(Percent(33)),
		Height: lp(Pixels(400)),
	}
	work := Rect{X: 1920, Y: 0, Width: 2560, Height: 1440}
	first := Resolve(spec, work, Insets{Top: 30}, Rect{Width: 1, Height: 1})
	for i := 0; i < 10; i++ {
		if got := Resolve(spec, work, Insets{Top: 30}, Rect{Width: 1, Height: 1}); got != first {
			t.Fatalf("resolve not deterministic: %+v vs %+v", got, first)
		}
	}
}

func TestMonitorIndexForRect(t *testing.T) {
	areas := []Rect{
		{X: 0, Y: 0, Width: 1920, Height: 1080},
		{X: 1920, Y: 0, Width: 2560, Height: 1440},
	}
	if got := MonitorIndexForRect(areas, Rect{X: 2000, Y: 100, Width: 400, Height: 300}, 0); got != 1 {
		t.Fatalf("expected monitor 1, got %d", got)
	}
	// Center off every monitor falls back.
	if got := MonitorIndexForRect(areas, Rect{X: -5000, Y: -5000, Width: 10, Height: 10}, 0); got != 0 {
		t.Fatalf("expected fallback 0, got %d", got)
	}
}
