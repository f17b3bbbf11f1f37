package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// LengthUnit distinguishes absolute pixel lengths from percentages of a
// work-area dimension.
type LengthUnit int

const (
	UnitPixels LengthUnit = iota
	UnitPercent
)

// Length is a size or coordinate in either pixels or percent. Percent values
// are resolved against a base dimension at placement time.
type Length struct {
	Unit  LengthUnit
	Value float64
}

// Pixels returns an absolute pixel length.
func Pixels(v int) Length { return Length{Unit: UnitPixels, Value: float64(v)} }

// Percent returns a percentage length (0-100 scale).
func Percent(v float64) Length { return Length{Unit: UnitPercent, Value: v} }

// Resolve converts the length into pixels against the given base dimension.
func (l Length) Resolve(base int) int {
	if l.Unit == UnitPercent {
		return int(float64(base) * l.Value / 100)
	}
	return int(l.Value)
}

// ParseLength parses a configuration value into a Length. Accepted forms are
// bare integers ("320"), pixel-suffixed values ("320px") and percentages
// ("50%"). Whitespace around the value is ignored.
func ParseLength(raw string) (Length, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Length{}, fmt.Errorf("empty length value")
	}
	switch {
	case strings.HasSuffix(s, "%"):
		v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil {
			return Length{}, fmt.Errorf("invalid percentage %q", raw)
		}
		return Percent(v), nil
	case strings.HasSuffix(s, "px"):
		v, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(s, "px")))
		if err != nil {
			return Length{}, fmt.Errorf("invalid pixel value %q", raw)
		}
		return Pixels(v), nil
	default:
		v, err := strconv.Atoi(s)
		if err != nil {
			return Length{}, fmt.Errorf("invalid length %q", raw)
		}
		return Pixels(v), nil
	}
}
