package layout

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ByLCY/textfit/binding"
	"github.com/ByLCY/textfit/dsl"
	"github.com/ByLCY/textfit/fonts"
)

// 模板未指定时 Build 使用的字段默认值。
const (
	DefaultFontSize        = 13.0
	DefaultDynamicMinSize  = 4.0
	DefaultDynamicMaxSize  = 72.0
	DefaultOpacity         = 1.0
	defaultFontResourceKey = "Body"
)

// DefaultColor 是字段未指定颜色时的文字颜色。
var DefaultColor = Color{R: 0, G: 0, B: 0}

// FontResource 描述 resources 中声明的字体，src 可以是文件路径或 builtin:* 形式。
type FontResource struct {
	Name  string `json:"name"`
	Src   string `json:"src"`
	Style string `json:"style,omitempty"`
}

// StyleResource 是一组具名的字段属性，Extends 指向被继承（可覆盖）的父样式。
type StyleResource struct {
	Name    string            `json:"name"`
	Extends string            `json:"extends,omitempty"`
	Props   map[string]string `json:"props"`
}

// Template 是解析后的模板：资源已解析，字段内容已绑定数据。
type Template struct {
	Name    string                   `json:"name"`
	Version string                   `json:"version"`
	Meta    DocumentMeta             `json:"meta"`
	Fonts   map[string]FontResource  `json:"fonts"`
	Colors  map[string]Color         `json:"colors"`
	Styles  map[string]StyleResource `json:"styles"`
	Fields  []Field                  `json:"fields"`
	// Missing 记录在数据中找不到值的占位符。
	Missing []string `json:"missing,omitempty"`
}

// Field 按名字查找字段。
func (t *Template) Field(name string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Provider 返回模板字体资源对应的 provider。相对路径基于 baseDir 解析，
// 未声明的字体名回退到内置 Go 字体。
func (t *Template) Provider(baseDir string) fonts.Provider {
	sp := &fonts.SourceProvider{BaseDir: baseDir, Sources: map[string]fonts.Source{}}
	for name, f := range t.Fonts {
		sp.Sources[name] = fonts.Source{Src: f.Src, Style: f.Style}
	}
	return fonts.Chain(sp, fonts.Builtin())
}

// Build 将解析后的模板转换为字段配置。data 用于填充字段内容中的 ${path}
// 占位符，可以为 nil。
func Build(tpl *dsl.Template, data any) (*Template, error) {
	if tpl == nil {
		return nil, fmt.Errorf("layout: 模板为空")
	}
	out := &Template{
		Name:    tpl.Name,
		Version: tpl.Version,
		Meta:    collectMeta(tpl),
	}
	if err := collectResources(tpl, out); err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	for _, section := range tpl.Fields() {
		if seen[section.Name] {
			return nil, fmt.Errorf("field %s 重复定义 (%s)", section.Name, section.Pos)
		}
		seen[section.Name] = true

		field, missing, err := buildField(section, out, data)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", section.Name, err)
		}
		out.Fields = append(out.Fields, field)
		out.Missing = append(out.Missing, missing...)
	}
	return out, nil
}

func buildField(section *dsl.FieldSection, tpl *Template, data any) (Field, []string, error) {
	inline := parseArgs(section.Args)
	if section.Block != nil {
		for _, stmt := range section.Block.Statements {
			if stmt.Assignment != nil {
				inline[stmt.Assignment.Key] = valueToString(stmt.Assignment.Value)
			}
		}
	}
	style := inline["style"]
	delete(inline, "style")
	if style != "" {
		if _, ok := tpl.Styles[style]; !ok {
			return Field{}, nil, fmt.Errorf("style %s 未定义", style)
		}
	}
	attrs := mergeStyleAttributes(style, inline, tpl.Styles)

	field := Field{
		Name:     section.Name,
		Font:     attrs["font"],
		FontSize: DefaultFontSize,
		Opacity:  DefaultOpacity,
		Color:    DefaultColor,
	}
	if field.Font == "" {
		field.Font = defaultFontName(tpl.Fonts)
	}

	var err error
	if field.X, err = lengthAttr(attrs, "x", UnitMM); err != nil {
		return Field{}, nil, err
	}
	if field.Y, err = lengthAttr(attrs, "y", UnitMM); err != nil {
		return Field{}, nil, err
	}
	if field.Box.Width, err = lengthAttr(attrs, "width", UnitMM); err != nil {
		return Field{}, nil, err
	}
	if field.Box.Height, err = lengthAttr(attrs, "height", UnitMM); err != nil {
		return Field{}, nil, err
	}
	if v, ok := attrs["size"]; ok {
		if field.FontSize, err = lengthAttr(attrs, "size", UnitPT); err != nil {
			return Field{}, nil, err
		}
		if field.FontSize <= 0 {
			return Field{}, nil, fmt.Errorf("size %s 必须为正数", v)
		}
	}
	if field.Box.CharacterSpacing, err = lengthAttr(attrs, "spacing", UnitPT); err != nil {
		return Field{}, nil, err
	}

	field.Box.LineHeight = DefaultLineHeight
	if v, ok := attrs["line-height"]; ok {
		lh, ok := ParseLineHeight(v)
		if !ok {
			return Field{}, nil, fmt.Errorf("line-height %q 无法解析", v)
		}
		field.Box.LineHeight = lh.Multiplier(field.FontSize)
	}

	if field.Box.Align, err = parseHAlign(attrs["align"]); err != nil {
		return Field{}, nil, err
	}
	if field.Box.VerticalAlign, err = parseVAlign(attrs["valign"]); err != nil {
		return Field{}, nil, err
	}

	if field.Dynamic, err = parseDynamic(attrs); err != nil {
		return Field{}, nil, err
	}

	if v, ok := attrs["opacity"]; ok {
		f, err := strconv.ParseFloat(strings.TrimSuffix(v, "%"), 64)
		if err != nil {
			return Field{}, nil, fmt.Errorf("opacity %q 无法解析", v)
		}
		if strings.HasSuffix(v, "%") {
			f /= 100
		}
		if f < 0 || f > 1 {
			return Field{}, nil, fmt.Errorf("opacity %g 超出 [0,1]", f)
		}
		field.Opacity = f
	}
	if v, ok := attrs["color"]; ok {
		if field.Color, err = resolveColor(v, tpl.Colors); err != nil {
			return Field{}, nil, err
		}
	}
	if v, ok := attrs["background"]; ok {
		c, err := resolveColor(v, tpl.Colors)
		if err != nil {
			return Field{}, nil, err
		}
		field.Background = &c
	}

	content, missing := binding.Bind(extractText(section.Block), data)
	field.Content = content
	return field, missing, nil
}

// parseDynamic 只有在字段给出 min、max、step 或 fit 之一时才返回动态字号范围。
func parseDynamic(attrs map[string]string) (*Bounds, error) {
	_, hasMin := attrs["min"]
	_, hasMax := attrs["max"]
	_, hasStep := attrs["step"]
	_, hasFit := attrs["fit"]
	if !hasMin && !hasMax && !hasStep && !hasFit {
		return nil, nil
	}
	b := &Bounds{Min: DefaultDynamicMinSize, Max: DefaultDynamicMaxSize, Fit: FitVertical}
	var err error
	if hasMin {
		if b.Min, err = lengthAttr(attrs, "min", UnitPT); err != nil {
			return nil, err
		}
	}
	if hasMax {
		if b.Max, err = lengthAttr(attrs, "max", UnitPT); err != nil {
			return nil, err
		}
	}
	if hasStep {
		if b.Step, err = lengthAttr(attrs, "step", UnitPT); err != nil {
			return nil, err
		}
	}
	if hasFit {
		switch FitMode(strings.ToLower(attrs["fit"])) {
		case FitVertical:
			b.Fit = FitVertical
		case FitHorizontal:
			b.Fit = FitHorizontal
		default:
			return nil, fmt.Errorf("fit %q 不是 vertical 或 horizontal", attrs["fit"])
		}
	}
	if err := validateBounds(*b); err != nil {
		return nil, err
	}
	return b, nil
}

func parseHAlign(v string) (HAlign, error) {
	switch strings.ToLower(v) {
	case "", "left", "start":
		return AlignLeft, nil
	case "center", "middle":
		return AlignCenter, nil
	case "right", "end":
		return AlignRight, nil
	case "justify":
		return AlignJustify, nil
	default:
		return "", fmt.Errorf("align %q 无法识别", v)
	}
}

func parseVAlign(v string) (VAlign, error) {
	switch strings.ToLower(v) {
	case "", "top":
		return VAlignTop, nil
	case "middle", "center":
		return VAlignMiddle, nil
	case "bottom":
		return VAlignBottom, nil
	default:
		return "", fmt.Errorf("valign %q 无法识别", v)
	}
}

func lengthAttr(attrs map[string]string, key string, fallback Unit) (float64, error) {
	v, ok := attrs[key]
	if !ok || v == "" {
		return 0, nil
	}
	l, ok := ParseLength(v, fallback)
	if !ok {
		return 0, fmt.Errorf("%s %q 不是合法长度", key, v)
	}
	return l.ToPT(), nil
}

// defaultFontName 为未指定字体的字段选择字体：优先 "Body"，只声明了一个字体时
// 用它，否则用内置默认字体。
func defaultFontName(fontsByName map[string]FontResource) string {
	if _, ok := fontsByName[defaultFontResourceKey]; ok {
		return defaultFontResourceKey
	}
	if len(fontsByName) == 1 {
		for name := range fontsByName {
			return name
		}
	}
	return fonts.DefaultFont
}

func collectResources(tpl *dsl.Template, out *Template) error {
	out.Fonts = map[string]FontResource{}
	out.Colors = map[string]Color{}
	rawStyles := map[string]StyleResource{}

	for _, section := range tpl.Sections {
		if section.Resources == nil || section.Resources.Block == nil {
			continue
		}
		for _, stmt := range section.Resources.Block.Statements {
			if stmt.Command == nil {
				continue
			}
			switch stmt.Command.Name {
			case "font":
				font := parseFontResource(stmt.Command)
				if font.Name == "" {
					return fmt.Errorf("font 资源缺少名称 (%s)", stmt.Command.Pos)
				}
				out.Fonts[font.Name] = font
			case "color":
				name, value := parseColorResource(stmt.Command)
				if name == "" || value == "" {
					return fmt.Errorf("color 资源不完整 (%s)", stmt.Command.Pos)
				}
				c, err := parseColor(value)
				if err != nil {
					return err
				}
				out.Colors[name] = c
			case "style":
				style := parseStyleResource(stmt.Command)
				if style.Name != "" {
					rawStyles[style.Name] = style
				}
			default:
				return fmt.Errorf("未知资源类型 %s (%s)", stmt.Command.Name, stmt.Command.Pos)
			}
		}
	}

	styles, err := resolveStyles(rawStyles)
	if err != nil {
		return err
	}
	out.Styles = styles
	return nil
}

func collectMeta(tpl *dsl.Template) DocumentMeta {
	meta := DocumentMeta{
		Title:   tpl.Name,
		Creator: "textfit",
	}
	for _, section := range tpl.Sections {
		if section.Meta == nil || section.Meta.Block == nil {
			continue
		}
		for _, stmt := range section.Meta.Block.Statements {
			if stmt.Assignment == nil {
				continue
			}
			switch strings.ToLower(stmt.Assignment.Key) {
			case "title":
				meta.Title = valueToString(stmt.Assignment.Value)
			case "author":
				meta.Author = valueToString(stmt.Assignment.Value)
			case "subject":
				meta.Subject = valueToString(stmt.Assignment.Value)
			case "creator":
				meta.Creator = valueToString(stmt.Assignment.Value)
			case "keywords":
				meta.Keywords = valueToStringSlice(stmt.Assignment.Value)
			case "page":
				meta.Page = valueToString(stmt.Assignment.Value)
			}
		}
	}
	return meta
}

// parseFontResource 解析 `font Name { src: "..." style: "bold" }`。
func parseFontResource(cmd *dsl.Command) FontResource {
	if len(cmd.Args) == 0 {
		return FontResource{}
	}
	font := FontResource{Name: cmd.Args[0].Value}
	if cmd.Block == nil {
		return font
	}
	for _, stmt := range cmd.Block.Statements {
		if stmt.Assignment == nil {
			continue
		}
		switch stmt.Assignment.Key {
		case "src":
			font.Src = valueToString(stmt.Assignment.Value)
		case "style":
			font.Style = valueToString(stmt.Assignment.Value)
		}
	}
	if font.Src == "" {
		font.Src = "builtin:" + fonts.DefaultFont
	}
	return font
}

// parseStyleResource reads `style Name [extends Parent] { key: value }`.
func parseStyleResource(cmd *dsl.Command) StyleResource {
	if len(cmd.Args) == 0 {
		return StyleResource{}
	}
	style := StyleResource{
		Name:  cmd.Args[0].Value,
		Props: map[string]string{},
	}
	if len(cmd.Args) >= 3 && strings.EqualFold(cmd.Args[1].Value, "extends") {
		style.Extends = cmd.Args[2].Value
	}
	if cmd.Block == nil {
		return style
	}
	for _, stmt := range cmd.Block.Statements {
		if stmt.Assignment == nil {
			continue
		}
		if val := valueToString(stmt.Assignment.Value); val != "" {
			style.Props[stmt.Assignment.Key] = val
		}
	}
	return style
}

func resolveStyles(styles map[string]StyleResource) (map[string]StyleResource, error) {
	resolved := map[string]StyleResource{}
	visiting := map[string]bool{}

	var dfs func(name string) (StyleResource, error)
	dfs = func(name string) (StyleResource, error) {
		if style, ok := resolved[name]; ok {
			return style, nil
		}
		style, ok := styles[name]
		if !ok {
			return StyleResource{}, fmt.Errorf("style %s 未定义", name)
		}
		if visiting[name] {
			return StyleResource{}, fmt.Errorf("style 继承存在循环：%s", name)
		}
		visiting[name] = true

		props := map[string]string{}
		if style.Extends != "" {
			parent, err := dfs(style.Extends)
			if err != nil {
				return StyleResource{}, err
			}
			for k, v := range parent.Props {
				props[k] = v
			}
		}
		for k, v := range style.Props {
			props[k] = v
		}
		style.Props = props
		resolved[name] = style
		delete(visiting, name)
		return style, nil
	}

	names := make([]string, 0, len(styles))
	for name := range styles {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := dfs(name); err != nil {
			return nil, err
		}
	}
	return resolved, nil
}

// parseColorResource reads `color Name #rrggbb`.
func parseColorResource(cmd *dsl.Command) (string, string) {
	if len(cmd.Args) < 2 {
		return "", ""
	}
	return cmd.Args[0].Value, cmd.Args[len(cmd.Args)-1].Value
}

// parseArgs 读取行内的 `key value` 对，末尾缺少值的 key 会被忽略。
func parseArgs(args []*dsl.Lexeme) map[string]string {
	result := map[string]string{}
	for cursor := 0; cursor < len(args)-1; cursor += 2 {
		result[args[cursor].Value] = args[cursor+1].Value
	}
	return result
}

func mergeStyleAttributes(style string, inline map[string]string, styles map[string]StyleResource) map[string]string {
	out := make(map[string]string)
	if s, ok := styles[style]; ok {
		for k, v := range s.Props {
			out[k] = v
		}
	}
	for k, v := range inline {
		out[k] = v
	}
	return out
}

// extractText 拼接字段块中的字符串字面量，相邻字面量之间以换行分隔。
func extractText(block *dsl.Block) string {
	if block == nil {
		return ""
	}
	var parts []string
	for _, stmt := range block.Statements {
		if stmt.Text != nil {
			parts = append(parts, string(stmt.Text.Value))
		}
	}
	return strings.Join(parts, "\n")
}

func resolveColor(value string, named map[string]Color) (Color, error) {
	if c, ok := named[value]; ok {
		return c, nil
	}
	if strings.HasPrefix(value, "#") {
		return parseColor(value)
	}
	return Color{}, fmt.Errorf("颜色 %s 未定义", value)
}

func parseColor(value string) (Color, error) {
	hex := strings.TrimPrefix(value, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 && len(hex) != 8 {
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
	var rgb [3]int
	for i := range rgb {
		v, err := strconv.ParseUint(hex[2*i:2*i+2], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("颜色值 %s 无法解析: %w", value, err)
		}
		rgb[i] = int(v)
	}
	return Color{R: rgb[0], G: rgb[1], B: rgb[2]}, nil
}

func valueToString(val *dsl.Value) string {
	if val == nil {
		return ""
	}
	switch {
	case val.String != nil:
		return string(*val.String)
	case val.Number != nil:
		return *val.Number
	case val.Color != nil:
		return *val.Color
	case val.Ident != nil:
		return *val.Ident
	default:
		return ""
	}
}

func valueToStringSlice(val *dsl.Value) []string {
	if val == nil {
		return nil
	}
	if val.Array != nil {
		out := make([]string, 0, len(val.Array.Values))
		for _, item := range val.Array.Values {
			if s := valueToString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	if s := valueToString(val); s != "" {
		return []string{s}
	}
	return nil
}
