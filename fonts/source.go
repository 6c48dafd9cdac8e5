package fonts

import (
	"fmt"
	"os"
	"path/filepath"
)

// Source 声明逻辑字体的数据来源。Src 为 "builtin:<name>" 或文件路径，
// 相对路径基于 provider 的 BaseDir 解析。
type Source struct {
	Src   string
	Style string
}

// SourceProvider 将模板声明的逻辑名映射到 Source。
// 读取的字节不会保留，解析结果由 Cache 持有。
type SourceProvider struct {
	BaseDir string
	Sources map[string]Source
}

// Descriptor implements Provider.
func (p *SourceProvider) Descriptor(name string) (Descriptor, error) {
	src, ok := p.Sources[name]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %s", ErrFontNotFound, name)
	}
	data, err := p.load(name, src.Src)
	if err != nil {
		return Descriptor{}, err
	}
	style := ParseStyle(src.Style)
	return Descriptor{Name: name, Data: data, Style: style}, nil
}

func (p *SourceProvider) load(name, src string) ([]byte, error) {
	if src == "" {
		return nil, fmt.Errorf("font %s has no src", name)
	}
	if hasBuiltinPrefix(src) {
		d, err := Builtin().Descriptor(src)
		if err != nil {
			return nil, err
		}
		return d.Data, nil
	}
	path := src
	if p.BaseDir == "" && !filepath.IsAbs(path) {
		return nil, fmt.Errorf("relative font path %s needs a base directory (use builtin:<name> instead)", src)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(p.BaseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFontNotFound, src)
		}
		return nil, fmt.Errorf("read font %s: %w", src, err)
	}
	return data, nil
}
