package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// This file defines unit-safe types and helpers for length and line-height.
// Layout coordinates are millimetres; font sizes are points.

// Unit is the unit a length was written in.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers like factors
	UnitMM               // millimeters
	UnitCM               // centimeters
	UnitIN               // inches
	UnitPT               // points
)

// Conversion constants between pt and mm.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
	InToMm = 25.4
)

// Pt converts points to millimetres.
func Pt(v float64) float64 { return v * PtToMm }

// Inch converts inches to millimetres.
func Inch(v float64) float64 { return v * InToMm }

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

// MM builds a millimetre length.
func MM(v float64) Length { return Length{Value: v, Unit: UnitMM} }

// PT builds a point length.
func PT(v float64) Length { return Length{Value: v, Unit: UnitPT} }

// IN builds an inch length.
func IN(v float64) Length { return Length{Value: v, Unit: UnitIN} }

func (l Length) IsZero() bool { return l.Value == 0 }

// To converts this length to target unit. Supported targets: UnitMM, UnitPT.
// Unit-less values are taken as millimetres.
func (l Length) To(target Unit) float64 {
	var mm float64
	switch l.Unit {
	case UnitCM:
		mm = l.Value * 10
	case UnitIN:
		mm = l.Value * InToMm
	case UnitPT:
		if target == UnitPT {
			return l.Value
		}
		mm = l.Value * PtToMm
	default:
		mm = l.Value
	}
	if target == UnitPT {
		return mm * MmToPt
	}
	return mm
}

func (l Length) ToMM() float64 { return l.To(UnitMM) }
func (l Length) ToPT() float64 { return l.To(UnitPT) }

func (l Length) String() string {
	return strconv.FormatFloat(l.Value, 'f', -1, 64) + UnitToString(l.Unit)
}

// MarshalText implements encoding.TextMarshaler.
func (l Length) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler so style files can say "0.75in" or "12pt".
func (l *Length) UnmarshalText(b []byte) error {
	v, err := parseRawLength(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// ParseRawLengthStr parses a length string preserving its unit. Invalid input yields a zero length.
func ParseRawLengthStr(value string) Length {
	l, err := parseRawLength(value)
	if err != nil {
		return Length{}
	}
	return l
}

func parseRawLength(value string) (Length, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return Length{}, nil
	}
	lower := strings.ToLower(v)
	unit := UnitNone
	num := lower
	for _, suf := range []struct {
		s string
		u Unit
	}{{"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}} {
		if strings.HasSuffix(lower, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(lower, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, fmt.Errorf("无法解析长度 %q", value)
	}
	if f < 0 {
		return Length{}, fmt.Errorf("长度不能为负数: %q", value)
	}
	return Length{Value: f, Unit: unit}, nil
}

// LineHeightKind distinguishes factor-based from absolute line heights.
type LineHeightKind int

const (
	LineHeightFactor LineHeightKind = iota
	LineHeightAbsolute
)

// LineHeightSpec preserves original author intent: either a factor (e.g., 1.2x) or an absolute length (e.g., 12pt).
type LineHeightSpec struct {
	Kind   LineHeightKind `json:"kind"`
	Factor float64        `json:"factor,omitempty"`
	Len    Length         `json:"len,omitempty"`
}

// Leading builds an absolute line height in points.
func Leading(pt float64) LineHeightSpec {
	return LineHeightSpec{Kind: LineHeightAbsolute, Len: PT(pt)}
}

// Factor builds a font-size relative line height.
func Factor(f float64) LineHeightSpec {
	return LineHeightSpec{Kind: LineHeightFactor, Factor: f}
}

// Resolve computes the absolute line height in target unit using the given fontSize (which carries its unit).
func (s LineHeightSpec) Resolve(fontSize Length, target Unit) float64 {
	switch s.Kind {
	case LineHeightFactor:
		if s.Factor <= 0 {
			return fontSize.To(target) * 1.2
		}
		return fontSize.To(target) * s.Factor
	case LineHeightAbsolute:
		return s.Len.To(target)
	default:
		return fontSize.To(target) * 1.2
	}
}

// UnmarshalText accepts "1.2x" for factors and any length for absolute values.
func (s *LineHeightSpec) UnmarshalText(b []byte) error {
	v := strings.TrimSpace(string(b))
	if strings.HasSuffix(v, "x") {
		f, err := strconv.ParseFloat(strings.TrimSuffix(v, "x"), 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("无法解析行高倍数 %q", v)
		}
		*s = Factor(f)
		return nil
	}
	l, err := parseRawLength(v)
	if err != nil {
		return err
	}
	if l.Unit == UnitNone {
		l.Unit = UnitPT
	}
	*s = LineHeightSpec{Kind: LineHeightAbsolute, Len: l}
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (s LineHeightSpec) MarshalText() ([]byte, error) {
	if s.Kind == LineHeightFactor {
		return []byte(strconv.FormatFloat(s.Factor, 'f', -1, 64) + "x"), nil
	}
	return s.Len.MarshalText()
}
