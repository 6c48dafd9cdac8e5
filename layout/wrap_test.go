package layout

import (
	"strings"
	"testing"
)

func lineContents(lines []Line) []string {
	out := make([]string, len(lines))
	for i, ln := range lines {
		out[i] = ln.Content
	}
	return out
}

func TestWrapGreedyBreaksAtSpaces(t *testing.T) {
	f := halfEm(t)
	// 10pt 时每个字符 5pt，每行 8 个字符。
	lines := Wrap("hello world again", f, 10, 40, 0, FitVertical)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), lineContents(lines))
	}
	for i, want := range []string{"hello", "world", "again"} {
		if got := strings.TrimSpace(lines[i].Content); got != want {
			t.Fatalf("line %d: got %q want %q", i, got, want)
		}
		if lines[i].Width > 40 {
			t.Fatalf("line %d too wide: %g", i, lines[i].Width)
		}
	}
}

func TestWrapHonorsNewlines(t *testing.T) {
	f := halfEm(t)
	lines := Wrap("foo\n\nbar", f, 10, 100, 0, FitVertical)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines including blank, got %d", len(lines))
	}
	if lines[1].Content != "" || lines[1].Width != 0 {
		t.Fatalf("expected middle line to be blank, got %+v", lines[1])
	}

	lines = Wrap("foo\n", f, 10, 100, 0, FitVertical)
	if len(lines) != 2 || lines[1].Content != "" {
		t.Fatalf("trailing newline should give an empty last line, got %q", lineContents(lines))
	}

	lines = Wrap("a\r\nb\rc", f, 10, 100, 0, FitVertical)
	if got := strings.Join(lineContents(lines), "|"); got != "a|b|c" {
		t.Fatalf("carriage returns not normalized: %q", got)
	}
}

// 当第一行宽度与容器宽度恰好相等且后面紧跟一个显式换行时，不应产生额外的空行。
func TestWrapNoBlankLineWhenEqualWidthThenNewline(t *testing.T) {
	f := goRegular(t)
	first := "SAMPLE-A"
	limit := f.TextWidth(first, 12, 0)

	lines := Wrap(first+"\n"+"SAMPLE", f, 12, limit, 0, FitVertical)
	if got := len(lines); got != 2 {
		t.Fatalf("expected 2 lines without blank, got %d: %q", got, lineContents(lines))
	}
	if lines[0].Content != first {
		t.Fatalf("first line mismatch: got=%q want=%q", lines[0].Content, first)
	}
	if lines[1].Content != "SAMPLE" {
		t.Fatalf("second line mismatch: got=%q want=%q", lines[1].Content, "SAMPLE")
	}
}

func TestWrapSplitsLongWords(t *testing.T) {
	f := halfEm(t)
	content := strings.Repeat("a", 53)
	lines := Wrap(content, f, 10, 30, 0, FitVertical)
	if len(lines) != 9 {
		t.Fatalf("expected 9 lines, got %d", len(lines))
	}
	total := 0
	for i, ln := range lines {
		if ln.Width-30 > 1e-9 {
			t.Fatalf("line %d width exceeds limit: width=%g", i, ln.Width)
		}
		total += len(ln.Content)
	}
	if total != 53 {
		t.Fatalf("runes lost while splitting: %d", total)
	}
}

func TestWrapKeepsOversizedRune(t *testing.T) {
	f := halfEm(t)
	lines := Wrap("ab", f, 10, 2, 0, FitVertical)
	if len(lines) != 2 || lines[0].Content != "a" || lines[0].Width != 5 {
		t.Fatalf("each rune should get its own line, got %+v", lines)
	}
}

func TestWrapDropsSpacesAtSoftBreaks(t *testing.T) {
	f := halfEm(t)
	lines := Wrap("aaaa     bbbb", f, 10, 20, 0, FitVertical)
	if got := strings.Join(lineContents(lines), "|"); got != "aaaa|bbbb" {
		t.Fatalf("unexpected lines: %q", got)
	}
}

func TestWrapCharacterSpacing(t *testing.T) {
	f := halfEm(t)
	// "abc" = 15 + 2*1, " " adds 1+5, "def" adds 1+17.
	lines := Wrap("abc def", f, 10, 41, 1, FitVertical)
	if len(lines) != 1 || lines[0].Width != 41 {
		t.Fatalf("expected one line of width 41, got %+v", lines)
	}
	lines = Wrap("abc def", f, 10, 40, 1, FitVertical)
	if len(lines) != 2 || lines[1].Content != "def" || lines[1].Width != 17 {
		t.Fatalf("expected break before def, got %+v", lines)
	}
}

func TestWrapHorizontalOnlyBreaksAtNewlines(t *testing.T) {
	f := halfEm(t)
	lines := Wrap("one two three\nfour", f, 10, 1, 0, FitHorizontal)
	if got := strings.Join(lineContents(lines), "|"); got != "one two three|four" {
		t.Fatalf("unexpected lines: %q", got)
	}
	if lines[0].Width != 65 {
		t.Fatalf("unexpected width: %g", lines[0].Width)
	}
}

func TestWrapNormalizesToNFC(t *testing.T) {
	f := halfEm(t)
	lines := Wrap("e\u0301", f, 10, 100, 0, FitVertical)
	if len(lines) != 1 || lines[0].Content != "\u00e9" || lines[0].Width != 5 {
		t.Fatalf("expected composed rune, got %+v", lines)
	}
}
