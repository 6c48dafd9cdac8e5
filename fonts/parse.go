package fonts

import (
	"errors"
	"fmt"
	"sort"
)

// Units 以字体单位保存竖直方向的度量，Descent 为基线以下的正距离。
type Units struct {
	UnitsPerEm float64 `json:"unitsPerEm"`
	Ascent     float64 `json:"ascent"`
	Descent    float64 `json:"descent"`
	LineGap    float64 `json:"lineGap"`
}

// glyphSource 负责 rune→字形、字形→前进宽度（字体单位）的映射，实现必须并发安全。
type glyphSource interface {
	glyphIndex(r rune) uint16
	advance(gid uint16) float64
}

// ParsedFont 是字体解析后的不可变结果，可在 goroutine 之间共享。
type ParsedFont struct {
	name      string
	family    string
	backend   string
	style     Style
	units     Units
	numGlyphs int
	glyphs    glyphSource
}

// Name 返回解析时使用的逻辑名。
func (f *ParsedFont) Name() string { return f.name }

// Family 返回字体文件中记录的字族名（可能为空）。
func (f *ParsedFont) Family() string { return f.family }

// Backend returns the parser backend that produced f.
func (f *ParsedFont) Backend() string { return f.backend }

// Style returns the descriptor's style flags.
func (f *ParsedFont) Style() Style { return f.style }

// Units 返回以字体单位表示的竖直度量。
func (f *ParsedFont) Units() Units { return f.units }

func (f *ParsedFont) UnitsPerEm() float64 { return f.units.UnitsPerEm }
func (f *ParsedFont) Ascent() float64     { return f.units.Ascent }
func (f *ParsedFont) Descent() float64    { return f.units.Descent }
func (f *ParsedFont) LineGap() float64    { return f.units.LineGap }

// NumGlyphs 返回字形数量，后端不提供时为 0。
func (f *ParsedFont) NumGlyphs() int { return f.numGlyphs }

// GlyphIndex 返回 r 对应的字形，未映射时为 0（.notdef）。
func (f *ParsedFont) GlyphIndex(r rune) uint16 { return f.glyphs.glyphIndex(r) }

// Advance 返回 r 的前进宽度（字体单位）。
func (f *ParsedFont) Advance(r rune) float64 {
	return f.glyphs.advance(f.glyphs.glyphIndex(r))
}

type backend interface {
	parse(data []byte) (*ParsedFont, error)
}

const defaultBackend = "sfnt"

var backends = map[string]backend{
	"sfnt":   sfntBackend{},
	"gotext": gotextBackend{},
}

// Backends 列出已注册的解析后端。
func Backends() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type parseConfig struct {
	backend string
}

// ParseOption configures Parse.
type ParseOption func(*parseConfig)

// WithBackend 按名字选择解析后端（"sfnt" 或 "gotext"）。
func WithBackend(name string) ParseOption {
	return func(c *parseConfig) { c.backend = name }
}

var errBadUnitsPerEm = errors.New("units per em must be positive")

// Parse 读取 TrueType/OpenType 字体，所有失败都以 *FontLoadError 返回。
func Parse(d Descriptor, opts ...ParseOption) (*ParsedFont, error) {
	cfg := parseConfig{backend: defaultBackend}
	for _, opt := range opts {
		opt(&cfg)
	}
	if len(d.Data) == 0 {
		return nil, &FontLoadError{Name: d.Name, Err: ErrEmptyFontData}
	}
	b, ok := backends[cfg.backend]
	if !ok {
		return nil, &FontLoadError{Name: d.Name, Err: fmt.Errorf("unknown parser backend %q", cfg.backend)}
	}
	f, err := b.parse(d.Data)
	if err != nil {
		return nil, &FontLoadError{Name: d.Name, Err: err}
	}
	if f.units.UnitsPerEm <= 0 {
		return nil, &FontLoadError{Name: d.Name, Err: errBadUnitsPerEm}
	}
	f.name = d.Name
	f.style = d.Style
	f.backend = cfg.backend
	return f, nil
}

// NewFixedPitch 构造一个所有字形前进宽度相同的字体，不需要字体文件，
// 用于兜底与测试。
func NewFixedPitch(name string, u Units, advance float64) (*ParsedFont, error) {
	if u.UnitsPerEm <= 0 {
		return nil, &FontLoadError{Name: name, Err: errBadUnitsPerEm}
	}
	if advance < 0 {
		return nil, &FontLoadError{Name: name, Err: fmt.Errorf("negative advance %g", advance)}
	}
	return &ParsedFont{
		name:    name,
		family:  name,
		backend: "fixed",
		units:   u,
		glyphs:  fixedPitch(advance),
	}, nil
}

type fixedPitch float64

func (fixedPitch) glyphIndex(r rune) uint16      { return 1 }
func (p fixedPitch) advance(gid uint16) float64 { return float64(p) }
