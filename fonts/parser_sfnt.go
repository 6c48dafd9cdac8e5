package fonts

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// sfntBackend parses with golang.org/x/image/font/sfnt. Metrics are read at
// ppem == unitsPerEm, which yields exact font-unit values in 26.6 fixed point.
type sfntBackend struct{}

func (sfntBackend) parse(data []byte) (*ParsedFont, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, err
	}
	upem := int(f.UnitsPerEm())
	if upem <= 0 {
		return nil, errBadUnitsPerEm
	}
	var buf sfnt.Buffer
	ppem := fixed.I(upem)
	m, err := f.Metrics(&buf, ppem, font.HintingNone)
	if err != nil {
		return nil, fmt.Errorf("read metrics: %w", err)
	}

	// 前进宽度表只在这里构建一次。
	n := f.NumGlyphs()
	advances := make([]float64, n)
	for i := 0; i < n; i++ {
		adv, err := f.GlyphAdvance(&buf, sfnt.GlyphIndex(i), ppem, font.HintingNone)
		if err != nil {
			return nil, fmt.Errorf("glyph %d advance: %w", i, err)
		}
		advances[i] = fixedToFloat(adv)
	}

	family, _ := f.Name(&buf, sfnt.NameIDFamily)
	ascent := fixedToFloat(m.Ascent)
	descent := fixedToFloat(m.Descent)
	lineGap := fixedToFloat(m.Height) - ascent - descent
	if lineGap < 0 {
		lineGap = 0
	}
	return &ParsedFont{
		family: family,
		units: Units{
			UnitsPerEm: float64(upem),
			Ascent:     ascent,
			Descent:    descent,
			LineGap:    lineGap,
		},
		numGlyphs: n,
		glyphs: &sfntGlyphs{
			font:     f,
			advances: advances,
		},
	}, nil
}

type sfntGlyphs struct {
	font     *sfnt.Font
	advances []float64
	buffers  sync.Pool
}

// glyphIndex uses a pooled Buffer per call; sfnt.Font is safe for concurrent
// use as long as buffers are not shared.
func (g *sfntGlyphs) glyphIndex(r rune) uint16 {
	buf, _ := g.buffers.Get().(*sfnt.Buffer)
	if buf == nil {
		buf = &sfnt.Buffer{}
	}
	defer g.buffers.Put(buf)
	idx, err := g.font.GlyphIndex(buf, r)
	if err != nil {
		return 0
	}
	return uint16(idx)
}

func (g *sfntGlyphs) advance(gid uint16) float64 {
	if int(gid) >= len(g.advances) {
		return 0
	}
	return g.advances[gid]
}

func fixedToFloat(x fixed.Int26_6) float64 {
	return float64(x) / 64.0
}
