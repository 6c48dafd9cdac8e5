package layout

import (
	"math"
	"strings"
	"testing"

	"github.com/ByLCY/textfit/dsl"
	"github.com/ByLCY/textfit/fonts"
)

const cardTemplate = `
template Card v2 {
  meta {
    title: "Business card"
    keywords: ["print", "contact"]
  }

  resources {
    font Body { src: "builtin:goregular" }
    font Heading {
      src: "builtin:gobold"
      style: "bold"
    }
    color Ink #336699
    style Base {
      font: Body
      size: 10pt
    }
    style Title extends Base {
      font: Heading
      min: 6pt
      max: 24pt
    }
  }

  field name x 10mm y 20mm width 80mm height 12mm style Title {
    color: Ink
    align: center
    valign: middle
    "${person.first} ${person.last}"
  }

  field note width 50mm height 20mm size 9pt {
    line-height: 18pt
    spacing: 0.5pt
    opacity: 50%
    background: #fff
    "Call ${person.phone}"
  }
}
`

func buildTemplate(t *testing.T, src string, data any) *Template {
	t.Helper()
	doc, err := dsl.ParseString(src)
	if err != nil {
		t.Fatalf("解析 DSL 失败: %v", err)
	}
	tpl, err := Build(doc, data)
	if err != nil {
		t.Fatalf("构建模板失败: %v", err)
	}
	return tpl
}

func almost(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestBuildTemplate(t *testing.T) {
	data := map[string]any{"person": map[string]any{"first": "Ada", "last": "Lovelace"}}
	tpl := buildTemplate(t, cardTemplate, data)

	if tpl.Name != "Card" || tpl.Version != "v2" {
		t.Fatalf("unexpected identity: %s %s", tpl.Name, tpl.Version)
	}
	if tpl.Meta.Title != "Business card" || strings.Join(tpl.Meta.Keywords, ",") != "print,contact" {
		t.Fatalf("unexpected meta: %+v", tpl.Meta)
	}
	if len(tpl.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(tpl.Fields))
	}

	name, ok := tpl.Field("name")
	if !ok {
		t.Fatalf("field name missing")
	}
	if name.Content != "Ada Lovelace" {
		t.Fatalf("content not bound: %q", name.Content)
	}
	if name.Font != "Heading" || name.FontSize != 10 {
		t.Fatalf("style inheritance failed: font=%s size=%g", name.Font, name.FontSize)
	}
	if name.Dynamic == nil || name.Dynamic.Min != 6 || name.Dynamic.Max != 24 || name.Dynamic.Fit != FitVertical {
		t.Fatalf("unexpected dynamic bounds: %+v", name.Dynamic)
	}
	if !almost(name.X, 10*MmToPt) || !almost(name.Box.Width, 80*MmToPt) || !almost(name.Box.Height, 12*MmToPt) {
		t.Fatalf("lengths not converted to points: %+v", name)
	}
	if name.Box.Align != AlignCenter || name.Box.VerticalAlign != VAlignMiddle {
		t.Fatalf("unexpected alignment: %+v", name.Box)
	}
	if name.Color != (Color{R: 0x33, G: 0x66, B: 0x99}) || name.Opacity != 1 || name.Background != nil {
		t.Fatalf("unexpected paint: %+v", name)
	}

	note, _ := tpl.Field("note")
	if note.Font != "Body" || note.FontSize != 9 || note.Dynamic != nil {
		t.Fatalf("unexpected note field: %+v", note)
	}
	if !almost(note.Box.LineHeight, 2) || !almost(note.Box.CharacterSpacing, 0.5) {
		t.Fatalf("unexpected paragraph settings: %+v", note.Box)
	}
	if note.Opacity != 0.5 || note.Background == nil || *note.Background != (Color{R: 255, G: 255, B: 255}) {
		t.Fatalf("unexpected paint: %+v", note)
	}
	if note.Content != "Call ${person.phone}" {
		t.Fatalf("unresolved placeholder should stay: %q", note.Content)
	}
	if len(tpl.Missing) != 1 || tpl.Missing[0] != "person.phone" {
		t.Fatalf("unexpected missing list: %v", tpl.Missing)
	}
}

func TestBuildDefaults(t *testing.T) {
	tpl := buildTemplate(t, `
template Bare v1 {
  field a width 50mm height 10mm fit horizontal {
    "plain"
    "second"
  }
}
`, nil)
	a := tpl.Fields[0]
	if a.Font != fonts.DefaultFont || a.FontSize != DefaultFontSize || a.Box.LineHeight != DefaultLineHeight {
		t.Fatalf("defaults not applied: %+v", a)
	}
	if a.Dynamic == nil || a.Dynamic.Min != DefaultDynamicMinSize || a.Dynamic.Max != DefaultDynamicMaxSize || a.Dynamic.Fit != FitHorizontal {
		t.Fatalf("unexpected dynamic defaults: %+v", a.Dynamic)
	}
	if a.Content != "plain\nsecond" {
		t.Fatalf("literals should be joined by newlines: %q", a.Content)
	}
	if tpl.Meta.Title != "Bare" {
		t.Fatalf("title should default to the template name: %q", tpl.Meta.Title)
	}
}

func TestBuildErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"unknown style", `template T v1 { field a style Missing { "x" } }`},
		{"style cycle", `template T v1 {
  resources {
    style A extends B { size: 9pt }
    style B extends A { size: 9pt }
  }
}`},
		{"bad color", `template T v1 { field a { color: "#12"; "x" } }`},
		{"duplicate", "template T v1 {\n field a { \"x\" }\n field a { \"y\" }\n}"},
		{"bad length", `template T v1 { field a width wide { "x" } }`},
		{"bad valign", `template T v1 { field a valign sideways { "x" } }`},
		{"min above max", `template T v1 { field a min 20pt max 10pt { "x" } }`},
		{"unknown fit", `template T v1 { field a fit diagonal { "x" } }`},
		{"opacity range", `template T v1 { field a opacity 2 { "x" } }`},
		{"unknown color", `template T v1 { field a { color: Nope; "x" } }`},
		{"bad line height", `template T v1 { field a line-height tall { "x" } }`},
	}
	for _, tc := range cases {
		doc, err := dsl.ParseString(tc.src)
		if err != nil {
			t.Fatalf("%s: parse failed: %v", tc.name, err)
		}
		if _, err := Build(doc, nil); err == nil {
			t.Fatalf("%s: expected build error", tc.name)
		}
	}
}

func TestTemplateProvider(t *testing.T) {
	tpl := buildTemplate(t, cardTemplate, nil)
	p := tpl.Provider("")
	cache := fonts.NewCache()

	heading, err := fonts.Resolve("Heading", p, cache)
	if err != nil {
		t.Fatalf("resolve Heading: %v", err)
	}
	if heading.Name() != "Heading" || heading.Style() != fonts.StyleBold {
		t.Fatalf("unexpected font: %s %v", heading.Name(), heading.Style())
	}
	if _, err := fonts.Resolve(fonts.DefaultFont, p, cache); err != nil {
		t.Fatalf("undeclared names should fall back to builtin fonts: %v", err)
	}
	if _, err := fonts.Resolve("Nope", p, cache); err == nil {
		t.Fatalf("expected missing font error")
	}
}
