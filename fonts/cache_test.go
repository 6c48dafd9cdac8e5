package fonts

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

// countingProvider counts descriptor lookups, i.e. parses on miss.
type countingProvider struct {
	inner Provider
	calls atomic.Int32
}

func (p *countingProvider) Descriptor(name string) (Descriptor, error) {
	p.calls.Add(1)
	return p.inner.Descriptor(name)
}

func TestResolveReturnsIdenticalInstance(t *testing.T) {
	p := &countingProvider{inner: Builtin()}
	c := NewCache()

	a, err := Resolve("goregular", p, c)
	require.NoError(t, err)
	b, err := Resolve("goregular", p, c)
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Equal(t, int32(1), p.calls.Load())
	assert.Equal(t, 1, c.Len())
}

func TestResolveDistinctNamesDoNotShare(t *testing.T) {
	c := NewCache()
	regular, err := Resolve("goregular", Builtin(), c)
	require.NoError(t, err)
	mono, err := Resolve("gomono", Builtin(), c)
	require.NoError(t, err)

	assert.NotSame(t, regular, mono)
	assert.Equal(t, "goregular", regular.Name())
	assert.Equal(t, "gomono", mono.Name())
	assert.NotEqual(t, regular.Advance('i'), mono.Advance('i'))
	assert.Equal(t, []string{"gomono", "goregular"}, c.Names())
}

func TestCachesAreIsolated(t *testing.T) {
	first, err := Resolve("goregular", Builtin(), NewCache())
	require.NoError(t, err)
	second, err := Resolve("goregular", Builtin(), NewCache())
	require.NoError(t, err)
	assert.NotSame(t, first, second, "independent sessions must not share entries")
}

func TestResolveConcurrentParsesOnce(t *testing.T) {
	p := &countingProvider{inner: Builtin()}
	c := NewCache()

	const workers = 16
	results := make([]*ParsedFont, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			f, err := Resolve("goregular", p, c)
			assert.NoError(t, err)
			results[i] = f
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), p.calls.Load())
	for _, f := range results {
		assert.Same(t, results[0], f)
	}
}

func TestResolveMalformedIsNotCached(t *testing.T) {
	p := &countingProvider{inner: MapProvider{"broken": {Data: []byte("garbage")}}}
	c := NewCache()

	_, err := Resolve("broken", p, c)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFontLoad))
	assert.Equal(t, 0, c.Len())

	_, err = Resolve("broken", p, c)
	require.Error(t, err)
	assert.Equal(t, int32(2), p.calls.Load())
}

func TestResolveMissingFont(t *testing.T) {
	_, err := Resolve("nope", MapProvider{}, NewCache())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFontLoad)
	assert.ErrorIs(t, err, ErrFontNotFound)

	_, err = Resolve("nope", nil, NewCache())
	assert.ErrorIs(t, err, ErrFontLoad)
}

func TestResolveNilCacheParsesEveryTime(t *testing.T) {
	a, err := Resolve("goregular", Builtin(), nil)
	require.NoError(t, err)
	b, err := Resolve("goregular", Builtin(), nil)
	require.NoError(t, err)
	assert.NotSame(t, a, b)
}

func TestResolveContextCancelledWhileWaiting(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	slow := ProviderFunc(func(name string) (Descriptor, error) {
		close(started)
		<-release
		return Descriptor{Name: name, Data: goregular.TTF}, nil
	})
	c := NewCache()

	done := make(chan error, 1)
	go func() {
		_, err := Resolve("slow", slow, c)
		done <- err
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ResolveContext(ctx, "slow", slow, c)
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	require.NoError(t, <-done)
	f, err := Resolve("slow", slow, c)
	require.NoError(t, err)
	assert.Equal(t, "slow", f.Name())
}

func TestStoreAndForget(t *testing.T) {
	c := NewCache()
	f, err := NewFixedPitch("fixed", Units{UnitsPerEm: 1000, Ascent: 800, Descent: 200}, 500)
	require.NoError(t, err)

	assert.True(t, c.Store(f))
	assert.False(t, c.Store(f))
	got, err := Resolve("fixed", MapProvider{}, c)
	require.NoError(t, err)
	assert.Same(t, f, got)

	c.Forget("fixed")
	assert.Equal(t, 0, c.Len())
}

func TestCacheUsesParseOptions(t *testing.T) {
	c := NewCache(WithParseOptions(WithBackend("gotext")))
	f, err := Resolve("goregular", Builtin(), c)
	require.NoError(t, err)
	assert.Equal(t, "gotext", f.Backend())
}
