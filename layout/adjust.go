package layout

import (
	"math"

	"github.com/ByLCY/textfit/fonts"
)

// Calibration 记录行框与上升部基线之差（delta）在各竖直对齐方式下分配给
// 预览上下两侧的比例，取值范围 [0,1]，具体数值取决于要对齐的两种渲染器。
type Calibration struct {
	Top       float64 `json:"top"`       // VAlignTop 时作为顶部偏移的比例
	MiddleTop float64 `json:"middleTop"` // VAlignMiddle 时顶部所占比例，其余归底部
	Bottom    float64 `json:"bottom"`    // VAlignBottom 时作为底部偏移的比例
}

// DefaultCalibration 将 delta 全部放在对齐的一侧，居中时上下各一半。
var DefaultCalibration = Calibration{Top: 1, MiddleTop: 0.5, Bottom: 1}

// Adjust 使用 DefaultCalibration 计算 font 在 size 下的预览修正量。
func Adjust(font *fonts.ParsedFont, size float64, box Box) (VerticalAdjustment, error) {
	return DefaultCalibration.Adjust(font, size, box)
}

// Adjust 计算预览的修正量，使行框模型下的首行基线与文档渲染器按上升部
// 定位的基线重合。
//
//	lineBox = (ascent+descent+lineGap)*size/upem*lineHeight
//	anchor  = ascent*size/upem
//	delta   = lineBox - anchor
//
// delta 为负（行高小于 1）时保留符号。比例超出 [0,1] 的 Calibration 返回
// ErrInvalidBounds。
func (c Calibration) Adjust(font *fonts.ParsedFont, size float64, box Box) (VerticalAdjustment, error) {
	if font == nil {
		return VerticalAdjustment{}, ErrNilFont
	}
	if err := c.validate(); err != nil {
		return VerticalAdjustment{}, err
	}
	if err := validateBox(box); err != nil {
		return VerticalAdjustment{}, err
	}
	if size < 0 || math.IsNaN(size) || math.IsInf(size, 0) {
		return VerticalAdjustment{}, invalid("font size", "%g is not a non-negative number", size)
	}
	box = normalizeBox(box)

	m := font.Scaled(size)
	lineBox := m.LineHeight() * box.LineHeight
	delta := lineBox - m.Ascent

	adj := VerticalAdjustment{Delta: delta}
	switch box.VerticalAlign {
	case VAlignMiddle:
		adj.Top = delta * c.MiddleTop
		adj.Bottom = delta - adj.Top
	case VAlignBottom:
		adj.Bottom = delta * c.Bottom
	default:
		adj.Top = delta * c.Top
	}
	return adj, nil
}

func (c Calibration) validate() error {
	for _, v := range []namedValue{{"top", c.Top}, {"middleTop", c.MiddleTop}, {"bottom", c.Bottom}} {
		if math.IsNaN(v.value) || v.value < 0 || v.value > 1 {
			return invalid("calibration", "%s %g is outside [0,1]", v.name, v.value)
		}
	}
	return nil
}

// Pixels 将修正量从 pt 换算为 CSS 像素。
func (a VerticalAdjustment) Pixels() VerticalAdjustment {
	return VerticalAdjustment{Top: a.Top * PtToPx, Bottom: a.Bottom * PtToPx, Delta: a.Delta * PtToPx}
}
