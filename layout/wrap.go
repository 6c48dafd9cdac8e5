package layout

import (
	"math"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/ByLCY/textfit/fonts"
)

// widthEpsilon 用于比较行宽与 box 宽度时吸收浮点误差。
const widthEpsilon = 1e-9

// measurer 以固定字体与字号测量文本，相邻字符之间（包括跨 token）插入字距。
type measurer struct {
	font    *fonts.ParsedFont
	size    float64
	spacing float64
}

func (m measurer) width(s string) float64 {
	return m.font.TextWidth(s, m.size, m.spacing)
}

// extend 返回宽度为 current 的行追加宽度 w 后的新宽度，空行不加前导字距。
func (m measurer) extend(current float64, hasContent bool, w float64) float64 {
	if !hasContent {
		return w
	}
	return current + m.spacing + w
}

// normalizeText 在测量前做 NFC 规范化，并把 \r 与 \r\n 统一为 \n。
func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return norm.NFC.String(text)
}

// Wrap 以 font 与 size 将 text 断行。FitVertical 模式下按 width 贪心换行，
// 优先在空白处断开，比 box 更宽的单词会被拆开；FitHorizontal 只在换行符处断行。
// 换行符总是开始新的一行，末尾的换行符会产生一个空的最后一行。
func Wrap(text string, font *fonts.ParsedFont, size, width, spacing float64, mode FitMode) []Line {
	m := measurer{font: font, size: size, spacing: spacing}
	text = normalizeText(text)
	if mode == FitHorizontal {
		return splitNewlines(text, m)
	}
	return greedyWrap(text, width, m)
}

func splitNewlines(content string, m measurer) []Line {
	parts := strings.Split(content, "\n")
	lines := make([]Line, 0, len(parts))
	for _, p := range parts {
		lines = append(lines, Line{Content: p, Width: m.width(p), Hard: true})
	}
	return lines
}

func greedyWrap(content string, limit float64, m measurer) []Line {
	if limit < 0 || math.IsNaN(limit) {
		limit = 0
	}
	tokens := tokenizeContent(content)
	var lines []Line
	var builder strings.Builder
	current := 0.0
	// softBreak 在因宽度断行后置位，下一行开头的空白会被丢弃。
	softBreak := false

	emit := func(force bool) {
		if builder.Len() == 0 {
			if force {
				lines = append(lines, Line{Content: "", Hard: true})
			}
			return
		}
		lines = append(lines, Line{Content: builder.String(), Width: current, Hard: force})
		builder.Reset()
		current = 0
	}
	appendRun := func(run string, w float64) {
		current = m.extend(current, builder.Len() > 0, w)
		builder.WriteString(run)
		softBreak = false
	}

	for _, token := range tokens {
		if token == "\n" {
			emit(true)
			softBreak = false
			continue
		}

		tokenWidth := m.width(token)
		if isSpaceToken(token) {
			if builder.Len() == 0 && softBreak {
				continue
			}
			if builder.Len() > 0 && m.extend(current, true, tokenWidth) > limit+widthEpsilon {
				// 断行处的空白被断行吃掉
				emit(false)
				softBreak = true
				continue
			}
			appendRun(token, tokenWidth)
			continue
		}

		if builder.Len() > 0 && m.extend(current, true, tokenWidth) > limit+widthEpsilon {
			emit(false)
			softBreak = true
		}
		if tokenWidth <= limit+widthEpsilon {
			appendRun(token, tokenWidth)
			continue
		}

		for _, chunk := range splitTokenByWidth(token, limit, m) {
			chunkWidth := m.width(chunk)
			if builder.Len() > 0 && m.extend(current, true, chunkWidth) > limit+widthEpsilon {
				emit(false)
				softBreak = true
			}
			appendRun(chunk, chunkWidth)
		}
	}

	emit(true)
	return lines
}

func isSpaceToken(token string) bool {
	for _, r := range token {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return token != ""
}

// tokenizeContent 将 s 切分为连续空白、连续非空白以及单独的 "\n"。
func tokenizeContent(s string) []string {
	var tokens []string
	var builder strings.Builder
	lastWasSpace := false
	flush := func() {
		if builder.Len() == 0 {
			return
		}
		tokens = append(tokens, builder.String())
		builder.Reset()
	}

	for _, r := range s {
		if r == '\n' {
			flush()
			tokens = append(tokens, "\n")
			lastWasSpace = false
			continue
		}
		isSpace := unicode.IsSpace(r)
		if builder.Len() == 0 {
			lastWasSpace = isSpace
		} else if lastWasSpace != isSpace {
			flush()
			lastWasSpace = isSpace
		}
		builder.WriteRune(r)
	}
	flush()
	return tokens
}

// splitTokenByWidth 将宽于 limit 的单词切成放得下的片段；
// 即使单个字符已超宽，每段也至少包含一个字符。
func splitTokenByWidth(token string, limit float64, m measurer) []string {
	var parts []string
	var builder strings.Builder
	current := 0.0
	for _, r := range token {
		w := m.width(string(r))
		next := m.extend(current, builder.Len() > 0, w)
		if builder.Len() > 0 && next > limit+widthEpsilon {
			parts = append(parts, builder.String())
			builder.Reset()
			next = w
		}
		builder.WriteRune(r)
		current = next
	}
	if builder.Len() > 0 {
		parts = append(parts, builder.String())
	}
	return parts
}
