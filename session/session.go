// Package session 在用户编辑过程中重新计算字段排版。每个 Session 持有自己的
// 字体缓存，会话之间不共享任何状态。
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ByLCY/textfit/fonts"
	"github.com/ByLCY/textfit/internal/logging"
	"github.com/ByLCY/textfit/layout"
)

// DefaultDebounce 是 Edit 在重新计算前等待后续输入的时长。
const DefaultDebounce = 30 * time.Millisecond

// ErrClosed 会交给 Close 之后发起的编辑。
var ErrClosed = errors.New("session: closed")

// Session 基于一个字体 provider 与一个缓存计算字段排版，所有方法均可并发调用。
type Session struct {
	provider    fonts.Provider
	cache       *fonts.Cache
	debounce    time.Duration
	logger      *slog.Logger
	calibration layout.Calibration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	closed   bool
	pending  map[string]*edit
	lastSize map[string]float64
}

// edit 是一次已调度的重算，每个字段至多一个。
type edit struct {
	cancel context.CancelFunc
}

// Option configures a Session.
type Option func(*Session)

// WithCache 让会话使用 c 而不是新建缓存。
func WithCache(c *fonts.Cache) Option {
	return func(s *Session) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithDebounce 设置字段最后一次 Edit 到重算之间的延迟，0 表示立即重算。
func WithDebounce(d time.Duration) Option {
	return func(s *Session) {
		if d >= 0 {
			s.debounce = d
		}
	}
}

// WithLogger routes session diagnostics to l.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithCalibration replaces layout.DefaultCalibration.
func WithCalibration(c layout.Calibration) Option {
	return func(s *Session) { s.calibration = c }
}

// New 返回通过 provider 解析字体的会话，provider 为 nil 时使用内置字体。
func New(provider fonts.Provider, opts ...Option) *Session {
	if provider == nil {
		provider = fonts.Builtin()
	}
	s := &Session{
		provider:    provider,
		debounce:    DefaultDebounce,
		calibration: layout.DefaultCalibration,
		pending:     map[string]*edit{},
		lastSize:    map[string]float64{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = fonts.NewCache(fonts.WithCacheLogger(s.logger))
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return s
}

// Cache returns the session's font cache.
func (s *Session) Cache() *fonts.Cache { return s.cache }

func (s *Session) log() *slog.Logger { return logging.Or(s.logger) }

// Compute 解析字段字体并计算 text 的字号与偏移。动态字段的搜索从该字段上一次
// 选定的字号开始，没有时从 field.FontSize 开始。
func (s *Session) Compute(ctx context.Context, field layout.Field, text string) (layout.Computation, error) {
	if err := ctx.Err(); err != nil {
		return layout.Computation{}, err
	}
	name := field.Font
	if name == "" {
		name = fonts.DefaultFont
	}
	font, err := fonts.ResolveContext(ctx, name, s.provider, s.cache)
	if err != nil {
		return layout.Computation{}, fmt.Errorf("session: field %s: %w", field.Name, err)
	}

	start := field.FontSize
	s.mu.Lock()
	if last, ok := s.lastSize[field.Name]; ok {
		start = last
	}
	s.mu.Unlock()

	c, err := layout.Compute(field, font, text,
		layout.WithStartingSize(start),
		layout.WithCalibration(s.calibration),
		layout.WithLogger(s.logger),
	)
	if err != nil {
		return layout.Computation{}, fmt.Errorf("session: field %s: %w", field.Name, err)
	}
	if err := ctx.Err(); err != nil {
		return layout.Computation{}, err
	}

	s.mu.Lock()
	s.lastSize[field.Name] = c.Size()
	s.mu.Unlock()

	log := s.log()
	log.Info("field computed", "field", field.Name, "size", c.Size(), "lines", c.Result.LineCount)
	if c.Result.Overflow {
		log.Warn("field overflows", "field", field.Name, "size", c.Size(), "height", c.Result.Height)
	}
	return c, nil
}

// Edit 在防抖延迟后重算 field，并把结果交给 done。同一字段之后的 Edit 或
// Cancel 会取代本次编辑，被取代的结果直接丢弃，不会排队。
// done 在单独的 goroutine 中执行。
func (s *Session) Edit(field layout.Field, text string, done func(layout.Computation, error)) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		if done != nil {
			done(layout.Computation{}, ErrClosed)
		}
		return
	}
	if prev, ok := s.pending[field.Name]; ok {
		prev.cancel()
	}
	ctx, cancel := context.WithCancel(s.ctx)
	e := &edit{cancel: cancel}
	s.pending[field.Name] = e
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer cancel()

		if s.debounce > 0 {
			timer := time.NewTimer(s.debounce)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}

		c, err := s.Compute(ctx, field, text)

		s.mu.Lock()
		current := s.pending[field.Name] == e && ctx.Err() == nil
		if current {
			delete(s.pending, field.Name)
		}
		s.mu.Unlock()
		if !current {
			s.log().Debug("edit superseded", "field", field.Name)
			return
		}
		if done != nil {
			done(c, err)
		}
	}()
}

// Cancel 丢弃指定字段尚未完成的编辑。
func (s *Session) Cancel(field string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.pending[field]; ok {
		e.cancel()
		delete(s.pending, field)
	}
}

// Wait 阻塞到所有已调度的编辑完成或被丢弃。
func (s *Session) Wait() {
	s.wg.Wait()
}

// Close 取消所有未完成的编辑并等待其退出，之后的 Edit 会收到 ErrClosed。
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.pending = map[string]*edit{}
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	return nil
}
