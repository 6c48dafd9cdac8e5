package dsl_test

import (
	"strings"
	"testing"

	"github.com/ByLCY/textfit/dsl"
)

const sampleDSL = `
template Invoice v1 {
  meta {
    title: "Invoice"
    keywords: [
      "finance"
      "internal"
    ]
  }

  resources {
    font Body {
      src: "builtin:goregular"
    }

    color Accent = #0F62FE

    style Caption extends Body {
      size: 9pt
    }
  }

  field title x 10mm y 12mm width 80mm height 12mm font Body size 14pt min 6pt max 30pt {
    "Hello, ${user.name}!"
  }

  field note width 50mm height 20mm {
    font: Body
    line-height: 1.2x
    spacing: -0.5pt
    valign: middle
    "Note"
  }
}
`

func TestParseTemplate(t *testing.T) {
	tpl, err := dsl.ParseString(sampleDSL)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if tpl.Name != "Invoice" {
		t.Fatalf("expected template name Invoice, got %s", tpl.Name)
	}
	if tpl.Version != "v1" {
		t.Fatalf("expected version v1, got %s", tpl.Version)
	}
	if len(tpl.Sections) != 4 {
		t.Fatalf("expected 4 sections, got %d", len(tpl.Sections))
	}
	kinds := []string{}
	for _, s := range tpl.Sections {
		kinds = append(kinds, s.Kind())
	}
	if got := strings.Join(kinds, ","); got != "meta,resources,field,field" {
		t.Fatalf("unexpected section kinds: %s", got)
	}

	meta := tpl.Sections[0].Meta
	title := meta.Block.Statements[0].Assignment
	if title == nil || title.Key != "title" {
		t.Fatalf("expected title assignment, got %+v", meta.Block.Statements[0])
	}
	if got := string(*title.Value.String); got != "Invoice" {
		t.Fatalf("expected title Invoice, got %s", got)
	}
	keywords := meta.Block.Statements[1].Assignment
	if keywords == nil || keywords.Value.Array == nil || len(keywords.Value.Array.Values) != 2 {
		t.Fatalf("expected keywords array with 2 values")
	}

	res := tpl.Sections[1].Resources
	font := res.Block.Statements[0].Command
	if font == nil || font.Name != "font" || font.Args[0].Value != "Body" {
		t.Fatalf("expected font Body command, got %+v", res.Block.Statements[0])
	}
	src := font.Block.Statements[0].Assignment
	if src == nil || string(*src.Value.String) != "builtin:goregular" {
		t.Fatalf("unexpected font src: %+v", src)
	}
	color := res.Block.Statements[1].Command
	if color == nil || len(color.Args) != 3 {
		t.Fatalf("unexpected color command: %+v", res.Block.Statements[1])
	}
	if last := color.Args[2]; last.Type != "Color" || last.Value != "#0F62FE" {
		t.Fatalf("color should be a single token, got %s %q", last.Type, last.Value)
	}
	style := res.Block.Statements[2].Command
	if style == nil || len(style.Args) != 3 || style.Args[1].Value != "extends" {
		t.Fatalf("unexpected style command: %+v", style)
	}
}

func TestParseFields(t *testing.T) {
	tpl, err := dsl.ParseString(sampleDSL)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	fields := tpl.Fields()
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}

	title := fields[0]
	if title.Name != "title" {
		t.Fatalf("expected field title, got %s", title.Name)
	}
	if got := tokensToString(title.Args); got != "x 10mm y 12mm width 80mm height 12mm font Body size 14pt min 6pt max 30pt" {
		t.Fatalf("unexpected inline args: %s", got)
	}
	if title.Block == nil || title.Block.Statements[0].Text == nil {
		t.Fatalf("title missing literal content")
	}
	if got := string(title.Block.Statements[0].Text.Value); !strings.Contains(got, "${user.name}") {
		t.Fatalf("expected interpolation in content, got %s", got)
	}

	note := fields[1]
	if len(note.Args) != 4 {
		t.Fatalf("expected 4 inline args on note, got %d", len(note.Args))
	}
	assignments := map[string]*dsl.Value{}
	for _, st := range note.Block.Statements {
		if st.Assignment != nil {
			assignments[st.Assignment.Key] = st.Assignment.Value
		}
	}
	if v := assignments["line-height"]; v == nil || v.Number == nil || *v.Number != "1.2x" {
		t.Fatalf("line-height should be the number 1.2x, got %+v", v)
	}
	if v := assignments["spacing"]; v == nil || v.Number == nil || *v.Number != "-0.5pt" {
		t.Fatalf("spacing should keep its sign, got %+v", v)
	}
	if v := assignments["valign"]; v == nil || v.Ident == nil || *v.Ident != "middle" {
		t.Fatalf("valign should be the identifier middle, got %+v", v)
	}
}

func TestParseRejectsUnknownSection(t *testing.T) {
	_, err := dsl.ParseString(`template T v1 { page A4 { } }`)
	if err == nil {
		t.Fatalf("expected parse error for page section")
	}
}

func tokensToString(parts []*dsl.Lexeme) string {
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		values = append(values, p.Value)
	}
	return strings.Join(values, " ")
}
