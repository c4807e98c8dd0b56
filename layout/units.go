package layout

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// This file defines unit-aware lengths used when reading layout profiles.
// The engine itself works in points only.

// Unit represents the original unit of a length value as written in a profile.
type Unit int

const (
	UnitNone Unit = iota // bare numbers, read as points
	UnitMM               // millimeters
	UnitCM               // centimeters
	UnitIN               // inches
	UnitPT               // points
)

// Conversion constants between pt and mm.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
)

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

// ToPT converts the length to points. Unit-less values are already points.
func (l Length) ToPT() float64 {
	switch l.Unit {
	case UnitMM:
		return l.Value * MmToPt
	case UnitCM:
		return l.Value * 10 * MmToPt
	case UnitIN:
		return l.Value * 72
	default:
		return l.Value
	}
}

// ToMM converts the length to millimeters.
func (l Length) ToMM() float64 {
	switch l.Unit {
	case UnitMM:
		return l.Value
	case UnitCM:
		return l.Value * 10
	case UnitIN:
		return l.Value * 25.4
	default:
		return l.Value * PtToMm
	}
}

func (l Length) String() string {
	return strconv.FormatFloat(l.Value, 'g', -1, 64) + UnitToString(l.Unit)
}

// ParseLength parses a length such as "12pt", "7.5mm", "1in" or "2cm".
func ParseLength(value string) (Length, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, fmt.Errorf("长度为空")
	}
	unit := UnitNone
	num := v
	for _, suf := range []struct {
		s string
		u Unit
	}{{"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, fmt.Errorf("无法解析长度 %q: %w", value, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Length{}, fmt.Errorf("长度必须是有限数：%q", value)
	}
	return Length{Value: f, Unit: unit}, nil
}

// ParseRawLengthStr is the lenient variant of ParseLength: invalid input yields a zero length.
func ParseRawLengthStr(value string) Length {
	l, err := ParseLength(value)
	if err != nil {
		return Length{Value: 0, Unit: UnitNone}
	}
	return l
}

// PageSize is a paper size in points, portrait orientation.
type PageSize struct {
	Width  float64
	Height float64
}

// Landscape swaps the sides so that the page is wider than tall.
func (p PageSize) Landscape() PageSize {
	if p.Width < p.Height {
		return PageSize{Width: p.Height, Height: p.Width}
	}
	return p
}

var pagePresets = map[string]PageSize{
	"A3":     {842, 1191},
	"A4":     {595, 842},
	"A5":     {420, 595},
	"LETTER": {612, 792},
	"LEGAL":  {612, 1008},
}

// LookupPageSize returns the preset with the given (case-insensitive) name.
func LookupPageSize(name string) (PageSize, bool) {
	p, ok := pagePresets[strings.ToUpper(strings.TrimSpace(name))]
	return p, ok
}
