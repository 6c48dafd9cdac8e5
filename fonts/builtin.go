package fonts

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gosmallcaps"
)

var builtinFonts = map[string]Descriptor{
	"goregular":    {Name: "goregular", Data: goregular.TTF},
	"gobold":       {Name: "gobold", Data: gobold.TTF, Style: StyleBold},
	"goitalic":     {Name: "goitalic", Data: goitalic.TTF, Style: StyleItalic},
	"gobolditalic": {Name: "gobolditalic", Data: gobolditalic.TTF, Style: StyleBold | StyleItalic},
	"gomedium":     {Name: "gomedium", Data: gomedium.TTF},
	"gomono":       {Name: "gomono", Data: gomono.TTF},
	"gomonobold":   {Name: "gomonobold", Data: gomonobold.TTF, Style: StyleBold},
	"gosmallcaps":  {Name: "gosmallcaps", Data: gosmallcaps.TTF},
}

// Builtin 返回内置字体的 provider，名字可以带或不带 "builtin:" 前缀。
func Builtin() Provider {
	return ProviderFunc(func(name string) (Descriptor, error) {
		key := strings.ToLower(trimBuiltinPrefix(name))
		if key == "" {
			key = DefaultFont
		}
		d, ok := builtinFonts[key]
		if !ok {
			return Descriptor{}, fmt.Errorf("%w: builtin:%s", ErrFontNotFound, key)
		}
		return d, nil
	})
}

// BuiltinNames 按字母序列出 Builtin 提供的字体名。
func BuiltinNames() []string {
	names := make([]string, 0, len(builtinFonts))
	for name := range builtinFonts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func trimBuiltinPrefix(s string) string {
	return strings.TrimPrefix(strings.TrimPrefix(s, "built-in:"), "builtin:")
}

func hasBuiltinPrefix(s string) bool {
	return strings.HasPrefix(s, "builtin:") || strings.HasPrefix(s, "built-in:")
}
