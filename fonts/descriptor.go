package fonts

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultFont 是模板未声明任何字体时 Builtin 提供的字体名。
const DefaultFont = "goregular"

var (
	// ErrFontLoad 可通过 errors.Is 匹配任意 *FontLoadError。
	ErrFontLoad = errors.New("fonts: font load failed")

	// ErrFontNotFound 表示 provider 不认识该字体名。
	ErrFontNotFound = errors.New("fonts: font not found")

	// ErrEmptyFontData 表示 descriptor 没有字体数据。
	ErrEmptyFontData = errors.New("fonts: empty font data")
)

// FontLoadError 报告某个逻辑字体名对应的字体数据损坏、不受支持或缺失。
type FontLoadError struct {
	Name string
	Err  error
}

func (e *FontLoadError) Error() string {
	return fmt.Sprintf("fonts: load %q: %v", e.Name, e.Err)
}

func (e *FontLoadError) Unwrap() error { return e.Err }

// Is 让任意 FontLoadError 满足 errors.Is(err, ErrFontLoad)。
func (e *FontLoadError) Is(target error) bool { return target == ErrFontLoad }

// Style 是附在 descriptor 上的样式标记集合。
type Style uint8

const (
	StyleBold Style = 1 << iota
	StyleItalic

	StyleRegular Style = 0
)

func (s Style) String() string {
	switch s {
	case StyleRegular:
		return "regular"
	case StyleBold:
		return "bold"
	case StyleItalic:
		return "italic"
	case StyleBold | StyleItalic:
		return "bold-italic"
	default:
		return fmt.Sprintf("Style(%d)", uint8(s))
	}
}

// ParseStyle 解析宽松的样式名，例如 "Bold"、"bold italic"、"bold-italic"、
// "BI" 或 "oblique"。按单词匹配，"Book" 之类的名字不会被误判为粗体。
func ParseStyle(style string) Style {
	result := StyleRegular
	for _, tok := range strings.FieldsFunc(strings.ToLower(style), isStyleSeparator) {
		switch tok {
		case "b":
			result |= StyleBold
		case "i":
			result |= StyleItalic
		case "bi", "ib":
			result |= StyleBold | StyleItalic
		default:
			if strings.Contains(tok, "bold") || tok == "black" || tok == "heavy" {
				result |= StyleBold
			}
			if strings.Contains(tok, "italic") || strings.Contains(tok, "oblique") {
				result |= StyleItalic
			}
		}
	}
	return result
}

func isStyleSeparator(r rune) bool {
	return r == ' ' || r == '-' || r == '_' || r == ',' || r == '|' || r == '\t'
}

// Descriptor 标识一份字体二进制。交给 Parse 或 Provider 之后不得再修改 Data。
type Descriptor struct {
	Name  string
	Data  []byte
	Style Style
}

// Provider 按逻辑名提供字体 descriptor。
type Provider interface {
	Descriptor(name string) (Descriptor, error)
}

// ProviderFunc 把函数适配为 Provider。
type ProviderFunc func(name string) (Descriptor, error)

// Descriptor implements Provider.
func (f ProviderFunc) Descriptor(name string) (Descriptor, error) { return f(name) }

// MapProvider 提供调用方注入的 descriptor。
type MapProvider map[string]Descriptor

// Descriptor implements Provider.
func (m MapProvider) Descriptor(name string) (Descriptor, error) {
	d, ok := m[name]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %s", ErrFontNotFound, name)
	}
	if d.Name == "" {
		d.Name = name
	}
	return d, nil
}

// Chain 依次询问每个 provider，返回第一个找到的 descriptor。
// 除 ErrFontNotFound 以外的错误会立即结束查找。
func Chain(providers ...Provider) Provider {
	return ProviderFunc(func(name string) (Descriptor, error) {
		for _, p := range providers {
			if p == nil {
				continue
			}
			d, err := p.Descriptor(name)
			if err == nil {
				return d, nil
			}
			if !errors.Is(err, ErrFontNotFound) {
				return Descriptor{}, err
			}
		}
		return Descriptor{}, fmt.Errorf("%w: %s", ErrFontNotFound, name)
	})
}
