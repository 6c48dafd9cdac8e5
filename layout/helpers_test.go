package layout

import (
	"testing"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/ByLCY/textfit/fonts"
)

// fixedFont 构造每个字符前进宽度都为 adv 的字体。
func fixedFont(t *testing.T, ascent, descent, gap, upem, adv float64) *fonts.ParsedFont {
	t.Helper()
	f, err := fonts.NewFixedPitch("fixed", fonts.Units{
		UnitsPerEm: upem,
		Ascent:     ascent,
		Descent:    descent,
		LineGap:    gap,
	}, adv)
	if err != nil {
		t.Fatalf("fixed font: %v", err)
	}
	return f
}

// halfEm：ascent/descent/lineGap/upem 为 800/200/0/1000，每个字符宽半个 em。
func halfEm(t *testing.T) *fonts.ParsedFont {
	return fixedFont(t, 800, 200, 0, 1000, 500)
}

func goRegular(t *testing.T) *fonts.ParsedFont {
	t.Helper()
	f, err := fonts.Parse(fonts.Descriptor{Name: "goregular", Data: goregular.TTF})
	if err != nil {
		t.Fatalf("parse goregular: %v", err)
	}
	return f
}
