package fonts

import (
	"bytes"
	"sync"

	gotext "github.com/go-text/typesetting/font"
)

// gotextBackend parses with github.com/go-text/typesetting. The go-text Face
// is not safe for concurrent use, so lookups go through a mutex and advances
// are memoized per glyph.
type gotextBackend struct{}

func (gotextBackend) parse(data []byte) (*ParsedFont, error) {
	face, err := gotext.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	upem := float64(face.Upem())
	if upem <= 0 {
		return nil, errBadUnitsPerEm
	}
	u := Units{UnitsPerEm: upem}
	if ext, ok := face.FontHExtents(); ok {
		u.Ascent = float64(ext.Ascender)
		u.Descent = -float64(ext.Descender)
		u.LineGap = float64(ext.LineGap)
	}
	if u.LineGap < 0 {
		u.LineGap = 0
	}
	return &ParsedFont{
		units: u,
		glyphs: &gotextGlyphs{
			face:     face,
			advances: map[uint16]float64{},
		},
	}, nil
}

type gotextGlyphs struct {
	mu       sync.Mutex
	face     *gotext.Face
	advances map[uint16]float64
}

func (g *gotextGlyphs) glyphIndex(r rune) uint16 {
	g.mu.Lock()
	defer g.mu.Unlock()
	gid, ok := g.face.NominalGlyph(r)
	if !ok {
		return 0
	}
	return uint16(gid)
}

func (g *gotextGlyphs) advance(gid uint16) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	if adv, ok := g.advances[gid]; ok {
		return adv
	}
	adv := float64(g.face.HorizontalAdvance(gotext.GID(gid)))
	g.advances[gid] = adv
	return adv
}
