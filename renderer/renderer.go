// Package renderer defines the document side of a template: fields placed on
// a page with their computed sizes.
package renderer

import (
	"strings"

	"github.com/ByLCY/textfit/layout"
)

// Item 是一个字段及其计算结果。
type Item struct {
	Field       layout.Field       `json:"field"`
	Computation layout.Computation `json:"computation"`
}

// Document 是一页待渲染的字段集合。Width/Height 以 pt 为单位。
type Document struct {
	Width  float64             `json:"width"`
	Height float64             `json:"height"`
	Meta   layout.DocumentMeta `json:"meta"`
	Items  []Item              `json:"items"`
}

// Renderer 将文档输出为最终文件，例如 PDF。
// Render 返回生成的二进制数据以及可能的错误。
type Renderer interface {
	Render(doc *Document) ([]byte, error)
}

// 常用页面尺寸（pt）。
var pageSizes = map[string][2]float64{
	"a3":     {841.89, 1190.55},
	"a4":     {595.28, 841.89},
	"a5":     {419.53, 595.28},
	"letter": {612, 792},
	"legal":  {612, 1008},
}

// DefaultPage 是模板未指定页面尺寸时使用的页面。
const DefaultPage = "A4"

// PageSize 返回页面尺寸（pt），例如 "A4" 或 "letter"。
// 带 " landscape" 后缀时交换宽高。
func PageSize(name string) (width, height float64, ok bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	landscape := false
	if rest, found := strings.CutSuffix(key, "landscape"); found {
		key = strings.TrimSpace(rest)
		landscape = true
	}
	size, ok := pageSizes[key]
	if !ok {
		return 0, 0, false
	}
	if landscape {
		return size[1], size[0], true
	}
	return size[0], size[1], true
}
