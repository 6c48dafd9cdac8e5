package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"log/slog"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/textfit/fonts"
	"github.com/ByLCY/textfit/internal/logging"
	"github.com/ByLCY/textfit/layout"
	"github.com/ByLCY/textfit/renderer"
)

// Renderer draws computed fields via github.com/tdewolff/canvas.
// 基线位置为文本块顶部加上字体上升部（Ascent），预览修正量正是相对这一模型计算的。
type Renderer struct {
	provider fonts.Provider
	logger   *slog.Logger

	fontMu       sync.Mutex
	fontFamilies map[string]*fontFamilyEntry
	fallback     *fontFamilyEntry
}

var _ renderer.Renderer = (*Renderer)(nil)

type fontFamilyEntry struct {
	family *canvas.FontFamily
	style  canvas.FontStyle
}

// Options configures the canvas renderer.
type Options struct {
	// Provider 按字段使用的字体名提供字体数据，nil 表示使用内置字体。
	Provider fonts.Provider
	Logger   *slog.Logger
}

// NewRenderer creates a renderer that loads fonts from provider.
func NewRenderer(provider fonts.Provider) *Renderer {
	return NewRendererWithOptions(Options{Provider: provider})
}

// NewRendererWithOptions creates a renderer from opts.
func NewRendererWithOptions(opts Options) *Renderer {
	if opts.Provider == nil {
		opts.Provider = fonts.Builtin()
	}
	return &Renderer{
		provider:     opts.Provider,
		logger:       opts.Logger,
		fontFamilies: map[string]*fontFamilyEntry{},
	}
}

// Render renders the document into a single-page PDF.
func (r *Renderer) Render(doc *renderer.Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("渲染文档为空")
	}
	width, height := doc.Width, doc.Height
	if width <= 0 || height <= 0 {
		width, height, _ = renderer.PageSize(renderer.DefaultPage)
	}

	var buf bytes.Buffer
	writer := pdf.New(&buf, toMm(width), toMm(height), nil)
	applyMeta(writer, doc.Meta)

	c := canvas.New(toMm(width), toMm(height))
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点
	for _, item := range doc.Items {
		if err := r.drawField(ctx, item.Field, item.Computation); err != nil {
			return nil, fmt.Errorf("field %s: %w", item.Field.Name, err)
		}
	}
	c.RenderTo(writer)

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}

// BlockTop 按竖直对齐方式返回文本块在字段框内的顶部位置（pt）。
func BlockTop(f layout.Field, c layout.Computation) float64 {
	lh := f.Box.LineHeight
	if lh <= 0 {
		lh = layout.DefaultLineHeight
	}
	block := float64(c.Result.LineCount) * c.Size() * lh
	switch f.Box.VerticalAlign {
	case layout.VAlignMiddle:
		return f.Y + (f.Box.Height-block)/2
	case layout.VAlignBottom:
		return f.Y + f.Box.Height - block
	default:
		return f.Y
	}
}

// FirstBaseline 返回首行基线的 y（pt）：文本块顶部加上计算字号下的 ascent。
func FirstBaseline(f layout.Field, c layout.Computation) float64 {
	return BlockTop(f, c) + c.Ascent
}

// LineX 返回宽度为 w 的行的起始 x。
func LineX(f layout.Field, w float64) float64 {
	free := f.Box.Width - w
	if free <= 0 {
		return f.X
	}
	switch f.Box.Align {
	case layout.AlignCenter:
		return f.X + free/2
	case layout.AlignRight:
		return f.X + free
	default:
		return f.X
	}
}

func (r *Renderer) drawField(ctx *canvas.Context, f layout.Field, c layout.Computation) error {
	if f.Background != nil {
		ctx.SetFillColor(colorFromLayout(*f.Background, f.Opacity))
		ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
		ctx.DrawPath(toMm(f.X), toMm(f.Y), canvas.Rectangle(toMm(f.Box.Width), toMm(f.Box.Height)))
	}
	if c.Result.LineCount == 0 {
		return nil
	}
	if c.Result.Overflow {
		logging.Or(r.logger).Warn("rendering overflowing field", "field", f.Name, "size", c.Size())
	}

	face, err := r.fontFace(c.Font, c.Size(), f.Color, f.Opacity)
	if err != nil {
		return err
	}
	lh := f.Box.LineHeight
	if lh <= 0 {
		lh = layout.DefaultLineHeight
	}
	spacing := f.Box.CharacterSpacing

	// 首行基线为文本块顶部加 Ascent，之后每行下移 size*lineHeight。
	baseline := FirstBaseline(f, c)
	for _, line := range c.Result.Lines {
		switch {
		// 两端对齐只作用于因宽度断开的行，段落最后一行保持左对齐。
		case f.Box.Align == layout.AlignJustify && !line.Hard:
			drawJustified(ctx, face, f, line, baseline, spacing)
		case spacing != 0:
			drawSpaced(ctx, face, LineX(f, line.Width), baseline, line.Content, spacing)
		default:
			ctx.DrawText(toMm(LineX(f, line.Width)), toMm(baseline), canvas.NewTextLine(face, line.Content, canvas.Left))
		}
		baseline += c.Size() * lh
	}
	return nil
}

// drawJustified 将行内剩余宽度平均分配到词间空白。
func drawJustified(ctx *canvas.Context, face *canvas.FontFace, f layout.Field, line layout.Line, baseline, spacing float64) {
	words := strings.Fields(line.Content)
	if len(words) < 2 {
		drawSpaced(ctx, face, f.X, baseline, strings.TrimSpace(line.Content), spacing)
		return
	}
	used := 0.0
	widths := make([]float64, len(words))
	for i, w := range words {
		widths[i] = textWidth(face, w, spacing)
		used += widths[i]
	}
	gap := (f.Box.Width - used) / float64(len(words)-1)
	x := f.X
	for i, w := range words {
		drawSpaced(ctx, face, x, baseline, w, spacing)
		x += widths[i] + gap
	}
}

// drawSpaced 从 x（pt）开始逐字绘制 s，字符之间加 spacing。
func drawSpaced(ctx *canvas.Context, face *canvas.FontFace, x, baseline float64, s string, spacing float64) {
	if spacing == 0 {
		ctx.DrawText(toMm(x), toMm(baseline), canvas.NewTextLine(face, s, canvas.Left))
		return
	}
	for _, ch := range s {
		glyph := string(ch)
		ctx.DrawText(toMm(x), toMm(baseline), canvas.NewTextLine(face, glyph, canvas.Left))
		x += toPt(face.TextWidth(glyph)) + spacing
	}
}

// textWidth measures s in points with the renderer's face.
func textWidth(face *canvas.FontFace, s string, spacing float64) float64 {
	if spacing == 0 {
		return toPt(face.TextWidth(s))
	}
	w, n := 0.0, 0
	for _, ch := range s {
		w += toPt(face.TextWidth(string(ch)))
		n++
	}
	if n > 1 {
		w += spacing * float64(n-1)
	}
	return w
}

func (r *Renderer) fontFace(name string, size float64, col layout.Color, opacity float64) (*canvas.FontFace, error) {
	entry, err := r.ensureFontFamily(name)
	if err != nil {
		return nil, err
	}
	return entry.family.Face(size, colorFromLayout(col, opacity), entry.style, canvas.FontNormal), nil
}

func (r *Renderer) ensureFontFamily(name string) (*fontFamilyEntry, error) {
	if name == "" {
		name = fonts.DefaultFont
	}
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if entry, ok := r.fontFamilies[name]; ok {
		return entry, nil
	}

	entry, err := loadFamily(r.provider, name)
	if err != nil {
		logging.Or(r.logger).Warn("font unavailable, using fallback", "font", name, "err", err)
		fb, fbErr := r.fallbackFamily()
		if fbErr != nil {
			return nil, err
		}
		entry = fb
	}
	r.fontFamilies[name] = entry
	return entry, nil
}

func (r *Renderer) fallbackFamily() (*fontFamilyEntry, error) {
	if r.fallback != nil {
		return r.fallback, nil
	}
	entry, err := loadFamily(fonts.Builtin(), fonts.DefaultFont)
	if err != nil {
		return nil, err
	}
	r.fallback = entry
	return entry, nil
}

func loadFamily(p fonts.Provider, name string) (*fontFamilyEntry, error) {
	d, err := p.Descriptor(name)
	if err != nil {
		return nil, &fonts.FontLoadError{Name: name, Err: err}
	}
	style := canvasStyle(d.Style)
	family := canvas.NewFontFamily(name)
	if err := family.LoadFont(d.Data, 0, style); err != nil {
		return nil, &fonts.FontLoadError{Name: name, Err: err}
	}
	return &fontFamilyEntry{family: family, style: style}, nil
}

func canvasStyle(s fonts.Style) canvas.FontStyle {
	style := canvas.FontRegular
	if s&fonts.StyleBold != 0 {
		style = canvas.FontBold
	}
	if s&fonts.StyleItalic != 0 {
		style |= canvas.FontItalic
	}
	return style
}

// colorFromLayout 将 (0,1] 以外的不透明度视为不透明，0 即 Field.Opacity 未设置。
func colorFromLayout(c layout.Color, opacity float64) color.Color {
	if opacity <= 0 || opacity > 1 {
		opacity = 1
	}
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, opacity)
}

// toPt 将毫米(mm)转换为点(pt)。
func toPt(mm float64) float64 { return mm * layout.MmToPt }

// toMm 将点(pt)转换为毫米(mm)。
func toMm(pt float64) float64 { return pt * layout.PtToMm }
