package layout

import "testing"

func TestParseLength(t *testing.T) {
	tests := []struct {
		in      string
		want    Length
		wantErr bool
	}{
		{"320", Pixels(320), false},
		{"320px", Pixels(320), false},
		{" 50% ", Percent(50), false},
		{"12.5%", Percent(12.5), false},
		{"-40", Pixels(-40), false},
		{"", Length{}, true},
		{"abc", Length{}, true},
		{"%", Length{}, true},
		{"px", Length{}, true},
	}
	for _, tt := range tests {
		got, err := ParseLength(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseLength(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseLength(%q): unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLength(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestLengthResolve(t *testing.T) {
	if got := Percent(50).Resolve(1040); got != 520 {
		t.Fatalf("expected 520, got %d", got)
	}
	if got := Pixels(320).Resolve(99999); got != 320 {
		t.Fatalf("expected 320, got %d", got)
	}
}

func TestRectShrinkClampsToZero(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 100, Height: 100}
	got := r.Shrink(Insets{Left: 80, Right: 80})
	if got.Width != 0 {
		t.Fatalf("expected clamped width 0, got %d", got.Width)
	}
	if got.X != 80 {
		t.Fatalf("expected x=80, got %d", got.X)
	}
}

func TestParseAnchorNames(t *testing.T) {
	for name, want := range anchorNames {
		got, ok := ParseAnchor(name)
		if !ok || got != want {
			t.Fatalf("ParseAnchor(%q) = %v, %v", name, got, ok)
		}
	}
	if _, ok := ParseAnchor("UpperLeft"); ok {
		t.Fatal("expected unknown anchor name to fail")
	}
}
