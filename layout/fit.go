package layout

import (
	"math"

	"github.com/ByLCY/textfit/fonts"
	"github.com/ByLCY/textfit/internal/logging"
)

// DefaultSizeStep 是字号搜索的默认步长（pt）。
const DefaultSizeStep = 0.25

// MaxSizeCandidates 限制一次搜索的候选字号数量，超出时 Bounds 视为无效。
const MaxSizeCandidates = 1 << 20

const heightEpsilon = 1e-9

// Fit 在 [bounds.Min, bounds.Max] 中查找能让 text 放进 box 的最大字号。
// 候选字号为 bounds.Min + k*Step（小于 bounds.Max），再加上 bounds.Max 本身。
//
// FitVertical 按 box 宽度贪心换行，只比较总高度 lineCount*size*lineHeight 与
// box 高度；单个字形比 box 更宽时该行仍会超出宽度，但不算溢出。
// FitHorizontal 只在换行符处断行，宽度与高度都必须放得下。
//
// 空文本返回 bounds.Max。没有候选能放下时返回 Size == bounds.Min 且 Overflow
// 为 true。只有输入非法时才返回错误，溢出不是错误。
func Fit(text string, font *fonts.ParsedFont, box Box, bounds Bounds, opts ...FitOption) (Result, error) {
	cfg := newFitConfig(opts)
	if font == nil {
		return Result{}, ErrNilFont
	}
	if err := validateBox(box); err != nil {
		return Result{}, err
	}
	if err := validateBounds(bounds); err != nil {
		return Result{}, err
	}
	box = normalizeBox(box)
	text = normalizeText(text)
	if text == "" {
		return Result{Size: bounds.Max}, nil
	}

	step := bounds.Step
	if step == 0 {
		step = DefaultSizeStep
	}
	grid := newSizeGrid(bounds.Min, bounds.Max, step)
	mode := bounds.Fit
	if mode == "" {
		mode = FitVertical
	}
	log := logging.Or(cfg.logger)

	measured := map[int]Result{}
	fitsAt := func(i int) bool {
		r, ok := measured[i]
		if !ok {
			r = layoutAt(text, font, box, grid.at(i), mode)
			measured[i] = r
		}
		return !r.Overflow
	}

	// 二分查找最大的可放下下标，首次探测使用起始字号。
	lo, hi := 0, grid.n-1
	best := -1
	seed := hi
	if cfg.hasStart {
		seed = grid.index(cfg.startingSize)
	}
	if fitsAt(seed) {
		best, lo = seed, seed+1
	} else {
		hi = seed - 1
	}
	for lo <= hi {
		mid := lo + (hi-lo)/2
		if fitsAt(mid) {
			best, lo = mid, mid+1
		} else {
			hi = mid - 1
		}
	}
	log.Debug("size search done", "measured", len(measured), "candidates", grid.n, "best", best)

	if best < 0 {
		r, ok := measured[0]
		if !ok {
			r = layoutAt(text, font, box, grid.at(0), mode)
		}
		r.Overflow = true
		return r, nil
	}
	return measured[best], nil
}

// LayoutAt 以固定字号排版 text 并报告是否溢出 box，供非动态字号的字段使用。
func LayoutAt(text string, font *fonts.ParsedFont, box Box, size float64, mode FitMode) (Result, error) {
	if font == nil {
		return Result{}, ErrNilFont
	}
	if err := validateBox(box); err != nil {
		return Result{}, err
	}
	if size < 0 || math.IsNaN(size) || math.IsInf(size, 0) {
		return Result{}, invalid("font size", "%g is not a non-negative number", size)
	}
	if mode == "" {
		mode = FitVertical
	}
	text = normalizeText(text)
	if text == "" {
		return Result{Size: size}, nil
	}
	return layoutAt(text, font, normalizeBox(box), size, mode), nil
}

// layoutAt 要求 text 已规范化、box 已校验并规范化。
func layoutAt(text string, font *fonts.ParsedFont, box Box, size float64, mode FitMode) Result {
	m := measurer{font: font, size: size, spacing: box.CharacterSpacing}
	var lines []Line
	if mode == FitHorizontal {
		lines = splitNewlines(text, m)
	} else {
		lines = greedyWrap(text, box.Width, m)
	}
	r := Result{
		Size:      size,
		LineCount: len(lines),
		Lines:     lines,
		Height:    float64(len(lines)) * size * box.LineHeight,
	}
	for _, ln := range lines {
		r.Width = math.Max(r.Width, ln.Width)
	}
	r.Overflow = r.Height > box.Height+heightEpsilon
	if mode == FitHorizontal && r.Width > box.Width+widthEpsilon {
		r.Overflow = true
	}
	return r
}

// sizeGrid 枚举候选字号：i < n-1 时为 min + i*step，下标 n-1 固定为 max。
// 调用方需先通过 validateBounds 保证 n 不超过 MaxSizeCandidates+1。
type sizeGrid struct {
	min, max, step float64
	n              int
}

func newSizeGrid(min, max, step float64) sizeGrid {
	n := 1
	if max > min {
		n = int(math.Ceil((max-min)/step-1e-9)) + 1
	}
	return sizeGrid{min: min, max: max, step: step, n: n}
}

func (g sizeGrid) at(i int) float64 {
	if i >= g.n-1 {
		return g.max
	}
	return g.min + float64(i)*g.step
}

// index 返回字号不大于 size 的最大候选下标，并限制在网格范围内。
func (g sizeGrid) index(size float64) int {
	if math.IsNaN(size) || size <= g.min {
		return 0
	}
	if size >= g.max {
		return g.n - 1
	}
	i := int(math.Floor((size-g.min)/g.step + 1e-9))
	if i > g.n-2 {
		i = g.n - 2
	}
	if i < 0 {
		i = 0
	}
	return i
}

type namedValue struct {
	name  string
	value float64
}

func validateBounds(b Bounds) error {
	for _, v := range []namedValue{{"min", b.Min}, {"max", b.Max}, {"step", b.Step}} {
		if math.IsNaN(v.value) || math.IsInf(v.value, 0) {
			return invalid("bounds", "%s is %g", v.name, v.value)
		}
		if v.value < 0 {
			return invalid("bounds", "%s %g is negative", v.name, v.value)
		}
	}
	if b.Min > b.Max {
		return invalid("bounds", "min %g is greater than max %g", b.Min, b.Max)
	}
	step := b.Step
	if step == 0 {
		step = DefaultSizeStep
	}
	if (b.Max-b.Min)/step > MaxSizeCandidates {
		return invalid("bounds", "step %g between %g and %g gives more than %d candidates", step, b.Min, b.Max, MaxSizeCandidates)
	}
	switch b.Fit {
	case "", FitVertical, FitHorizontal:
	default:
		return invalid("bounds", "unknown fit mode %q", b.Fit)
	}
	return nil
}

func validateBox(b Box) error {
	for _, v := range []namedValue{
		{"width", b.Width},
		{"height", b.Height},
		{"line height", b.LineHeight},
		{"character spacing", b.CharacterSpacing},
	} {
		if math.IsNaN(v.value) || math.IsInf(v.value, 0) {
			return invalid("box", "%s is %g", v.name, v.value)
		}
	}
	if b.Width < 0 || b.Height < 0 {
		return invalid("box", "negative dimensions %gx%g", b.Width, b.Height)
	}
	if b.LineHeight < 0 {
		return invalid("box", "negative line height %g", b.LineHeight)
	}
	return nil
}

func normalizeBox(b Box) Box {
	if b.LineHeight == 0 {
		b.LineHeight = DefaultLineHeight
	}
	return b
}
