package layout

// 该文件定义字段配置、求解结果与垂直校正量，供求解、渲染与调试 JSON 共用。
// 除非字段另有说明，所有长度单位均为 pt。

// HAlign 表示字段内各行的水平对齐方式。
type HAlign string

const (
	AlignLeft    HAlign = "left"
	AlignCenter  HAlign = "center"
	AlignRight   HAlign = "right"
	AlignJustify HAlign = "justify"
)

// VAlign 表示文本块在字段内的竖直对齐方式。
type VAlign string

const (
	VAlignTop    VAlign = "top"
	VAlignMiddle VAlign = "middle"
	VAlignBottom VAlign = "bottom"
)

// FitMode 决定求解前如何断行。
type FitMode string

const (
	// FitVertical 按 box 宽度换行，只要求换行后的总高度放得下。
	FitVertical FitMode = "vertical"
	// FitHorizontal 只在换行符处断行，最长的一行必须放得下 box 宽度。
	FitHorizontal FitMode = "horizontal"
)

// Box 描述字段的尺寸与段落设置。
type Box struct {
	Width            float64 `json:"width"`
	Height           float64 `json:"height"`
	LineHeight       float64 `json:"lineHeight"` // 行高倍数，0 表示 DefaultLineHeight
	CharacterSpacing float64 `json:"characterSpacing"`
	Align            HAlign  `json:"align,omitempty"`
	VerticalAlign    VAlign  `json:"verticalAlign,omitempty"`
}

// Bounds 限定动态字号的搜索范围。
type Bounds struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step,omitempty"` // 0 表示 DefaultSizeStep
	Fit  FitMode `json:"fit,omitempty"`  // 空表示 FitVertical
}

// Line 是字段中排好的一行。
type Line struct {
	Content string  `json:"content"`
	Width   float64 `json:"width"`
	// Hard 表示该行结束于换行符或文本末尾，而不是因宽度不足而断行。
	Hard bool `json:"hard,omitempty"`
}

// Result 是文本放入 box 的求解结果。Overflow 是正常状态：即使用 Bounds.Min
// 也放不下，由调用方裁剪。
type Result struct {
	Size      float64 `json:"size"`
	LineCount int     `json:"lineCount"`
	Overflow  bool    `json:"overflow"`
	Lines     []Line  `json:"lines"`
	Width     float64 `json:"width"`  // 最宽一行的宽度
	Height    float64 `json:"height"` // LineCount * Size * LineHeight
}

// VerticalAdjustment 是施加在预览上的修正量，使预览的首行基线与文档渲染器一致。
type VerticalAdjustment struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	Delta  float64 `json:"delta"`
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Field 是文本字段的只读配置。
type Field struct {
	Name       string  `json:"name"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Box        Box     `json:"box"`
	Font       string  `json:"font"`
	FontSize   float64 `json:"fontSize"`
	Dynamic    *Bounds `json:"dynamic,omitempty"` // nil 表示固定使用 FontSize
	Opacity    float64 `json:"opacity"`
	Color      Color   `json:"color"`
	Background *Color  `json:"background,omitempty"`
	Content    string  `json:"content"`
}

// Computation 汇总某一时刻预览与文档输出对一个字段所需的全部信息。
type Computation struct {
	Field      string             `json:"field"`
	Font       string             `json:"font"`
	Content    string             `json:"content"`
	Result     Result             `json:"result"`
	Adjustment VerticalAdjustment `json:"adjustment"`
	Ascent     float64            `json:"ascent"`
	Descent    float64            `json:"descent"`
	LineGap    float64            `json:"lineGap"`
}

// Size is shorthand for c.Result.Size.
func (c Computation) Size() float64 { return c.Result.Size }

// DocumentMeta 保存模板元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
	Page     string   `json:"page,omitempty"` // 页面尺寸名，例如 "A4"
}
