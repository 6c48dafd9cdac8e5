package fonts

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/ByLCY/textfit/internal/logging"
)

// Cache 按逻辑名缓存解析后的字体，由调用方持有（通常每个编辑会话一个），
// 可并发使用。
//
// 未命中时先插入一个 pending 条目再解析，同名的并发请求等待第一次解析的结果，
// 不会重复解析。解析失败的条目会被移除，不做缓存。
type Cache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	parse   []ParseOption
	logger  *slog.Logger
}

type cacheEntry struct {
	done chan struct{}
	font *ParsedFont
	err  error
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithParseOptions 设置未命中时每次解析使用的选项。
func WithParseOptions(opts ...ParseOption) CacheOption {
	return func(c *Cache) { c.parse = append(c.parse, opts...) }
}

// WithCacheLogger routes cache diagnostics to l.
func WithCacheLogger(l *slog.Logger) CacheOption {
	return func(c *Cache) { c.logger = l }
}

// NewCache 返回一个空缓存。
func NewCache(opts ...CacheOption) *Cache {
	c := &Cache{entries: map[string]*cacheEntry{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resolve 返回 name 对应的解析结果，未命中时通过 p 解析。同一个 cache 的
// 重复调用返回同一个 *ParsedFont；cache 为 nil 时每次都重新解析。
func Resolve(name string, p Provider, c *Cache) (*ParsedFont, error) {
	return ResolveContext(context.Background(), name, p, c)
}

// ResolveContext 与 Resolve 相同，但 ctx 会限制等待其他调用方解析的时间。
// 解析本身不会被中断。
func ResolveContext(ctx context.Context, name string, p Provider, c *Cache) (*ParsedFont, error) {
	if p == nil {
		return nil, &FontLoadError{Name: name, Err: ErrFontNotFound}
	}
	if c == nil {
		return load(name, p, nil)
	}
	log := logging.Or(c.logger)

	c.mu.Lock()
	if e, ok := c.entries[name]; ok {
		c.mu.Unlock()
		select {
		case <-e.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		if e.err != nil {
			return nil, e.err
		}
		log.Debug("font cache hit", "font", name)
		return e.font, nil
	}
	e := &cacheEntry{done: make(chan struct{})}
	c.entries[name] = e
	c.mu.Unlock()

	log.Debug("font cache miss", "font", name)
	e.font, e.err = load(name, p, c.parse)

	if e.err != nil {
		c.mu.Lock()
		if c.entries[name] == e {
			delete(c.entries, name)
		}
		c.mu.Unlock()
		log.Debug("font parse failed", "font", name, "err", e.err)
	} else {
		log.Info("font parsed", "font", name, "backend", e.font.Backend(), "glyphs", e.font.NumGlyphs())
	}
	close(e.done)
	return e.font, e.err
}

func load(name string, p Provider, opts []ParseOption) (*ParsedFont, error) {
	d, err := p.Descriptor(name)
	if err != nil {
		return nil, &FontLoadError{Name: name, Err: err}
	}
	// 缓存键使用请求的名字，而不是 provider 返回的名字。
	d.Name = name
	return Parse(d, opts...)
}

// Len 返回已解析与解析中的条目数。
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Names 按字母序返回已缓存的名字。
func (c *Cache) Names() []string {
	c.mu.Lock()
	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	c.mu.Unlock()
	sort.Strings(names)
	return names
}

// Forget 删除 name，下次 Resolve 会重新解析。已经返回的字体仍然有效。
func (c *Cache) Forget(name string) {
	c.mu.Lock()
	delete(c.entries, name)
	c.mu.Unlock()
}

// Store 以字体名存入已解析的字体，名字已被占用时不覆盖，返回是否存入。
func (c *Cache) Store(f *ParsedFont) bool {
	if f == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[f.Name()]; ok {
		return false
	}
	done := make(chan struct{})
	close(done)
	c.entries[f.Name()] = &cacheEntry{done: done, font: f}
	return true
}
