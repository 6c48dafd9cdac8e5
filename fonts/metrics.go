package fonts

import "unicode/utf8"

// Metrics 是换算到某个字号后的竖直度量，Descent 为正数。
type Metrics struct {
	Size    float64 `json:"size"`
	Ascent  float64 `json:"ascent"`
	Descent float64 `json:"descent"`
	LineGap float64 `json:"lineGap"`
}

// LineHeight 返回 ascent + descent + line gap。
func (m Metrics) LineHeight() float64 {
	return m.Ascent + m.Descent + m.LineGap
}

// Scale 将字体单位换算到字号：units * size / unitsPerEm。
func Scale(units, size, unitsPerEm float64) float64 {
	if unitsPerEm == 0 {
		return 0
	}
	return units * size / unitsPerEm
}

// Scaled 返回 size 下的竖直度量。
func (f *ParsedFont) Scaled(size float64) Metrics {
	upem := f.units.UnitsPerEm
	return Metrics{
		Size:    size,
		Ascent:  Scale(f.units.Ascent, size, upem),
		Descent: Scale(f.units.Descent, size, upem),
		LineGap: Scale(f.units.LineGap, size, upem),
	}
}

// RuneWidth 返回 r 在 size 下的前进宽度。
func (f *ParsedFont) RuneWidth(r rune, size float64) float64 {
	return Scale(f.Advance(r), size, f.units.UnitsPerEm)
}

// TextWidth 返回 s 在 size 下的宽度，相邻字符之间加 spacing：
// sum(advance) + spacing*(runes-1)。
func (f *ParsedFont) TextWidth(s string, size, spacing float64) float64 {
	if s == "" {
		return 0
	}
	var units float64
	for _, r := range s {
		units += f.Advance(r)
	}
	n := utf8.RuneCountInString(s)
	return Scale(units, size, f.units.UnitsPerEm) + spacing*float64(n-1)
}
