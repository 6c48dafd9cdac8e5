package layout

import (
	"strconv"
	"strings"
)

// This file defines unit-safe types and helpers for lengths and line height.
// The solver works in points; template lengths are converted at the edge.

// Unit represents the original unit of a length value as written in a template.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers like factors
	UnitMM               // millimeters
	UnitCM               // centimeters
	UnitIN               // inches
	UnitPT               // points
	UnitPX               // CSS pixels (96 per inch)
)

// Conversion constants between pt, mm and px.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
	PtToPx = 96.0 / 72.0
	PxToPt = 72.0 / 96.0
)

// DefaultLineHeight is the line height multiplier used when none is given.
const DefaultLineHeight = 1.0

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitMM:
		return "mm"
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	case UnitPT:
		return "pt"
	case UnitPX:
		return "px"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func (l Length) IsZero() bool { return l.Value == 0 }

// ToPT converts the length to points. Unit-less values are taken as points.
func (l Length) ToPT() float64 {
	switch l.Unit {
	case UnitMM:
		return l.Value * MmToPt
	case UnitCM:
		return l.Value * 10 * MmToPt
	case UnitIN:
		return l.Value * 72
	case UnitPX:
		return l.Value * PxToPt
	default:
		return l.Value
	}
}

// ToMM converts the length to millimeters.
func (l Length) ToMM() float64 {
	if l.Unit == UnitMM {
		return l.Value
	}
	return l.ToPT() * PtToMm
}

var unitSuffixes = []struct {
	s string
	u Unit
}{{"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}, {"px", UnitPX}}

// ParseLength parses a template length such as "12pt" or "80mm". A value
// without suffix gets fallback as its unit. ok is false for non-numbers.
func ParseLength(value string, fallback Unit) (Length, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, false
	}
	unit := fallback
	num := v
	for _, suf := range unitSuffixes {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, false
	}
	return Length{Value: f, Unit: unit}, true
}

// LineHeightKind distinguishes factor-based vs absolute line-height specification.
type LineHeightKind int

const (
	LineHeightFactor LineHeightKind = iota
	LineHeightAbsolute
)

// LineHeightSpec preserves author intent: either a factor (1.2x or 1.2) or an
// absolute length (18pt).
type LineHeightSpec struct {
	Kind   LineHeightKind `json:"kind"`
	Factor float64        `json:"factor,omitempty"`
	Len    Length         `json:"len,omitempty"`
}

// ParseLineHeight reads "1.2x", "1.2" or an absolute length.
func ParseLineHeight(value string) (LineHeightSpec, bool) {
	v := strings.TrimSpace(strings.ToLower(value))
	if v == "" {
		return LineHeightSpec{}, false
	}
	if f, err := strconv.ParseFloat(strings.TrimSuffix(v, "x"), 64); err == nil {
		return LineHeightSpec{Kind: LineHeightFactor, Factor: f}, true
	}
	l, ok := ParseLength(v, UnitPT)
	if !ok {
		return LineHeightSpec{}, false
	}
	return LineHeightSpec{Kind: LineHeightAbsolute, Len: l}, true
}

// Multiplier returns the line height as a multiple of fontSize (points).
// An absolute line height is relative to the configured size, so a dynamic size
// keeps the proportion rather than the absolute distance.
func (s LineHeightSpec) Multiplier(fontSize float64) float64 {
	switch s.Kind {
	case LineHeightFactor:
		return s.Factor
	case LineHeightAbsolute:
		if fontSize <= 0 {
			return DefaultLineHeight
		}
		return s.Len.ToPT() / fontSize
	default:
		return DefaultLineHeight
	}
}
