package idgen

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceyewan/snowkit/clog"
)

func newTestRegistry(t *testing.T, opts ...Option) *Registry {
	t.Helper()
	r := NewRegistry(append([]Option{WithLogger(clog.Discard())}, opts...)...)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestRegistryGet(t *testing.T) {
	r := newTestRegistry(t)

	a, err := r.Get(1)
	require.NoError(t, err)
	b, err := r.Get(1)
	require.NoError(t, err)
	c, err := r.Get(2)
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, uint64(2), c.NodeID())
	assert.Equal(t, 2, r.Len())
}

func TestRegistryConcurrentGet(t *testing.T) {
	const callers = 64
	r := newTestRegistry(t)

	var (
		wg      sync.WaitGroup
		start   = make(chan struct{})
		results = make([]*Generator, callers)
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			g, err := r.Get(7)
			if err != nil {
				t.Error(err)
				return
			}
			results[i] = g
		}(i)
	}
	close(start)
	wg.Wait()

	for _, g := range results {
		assert.Same(t, results[0], g)
	}
	assert.Equal(t, 1, r.Len())
}

func TestRegistryDispose(t *testing.T) {
	r := newTestRegistry(t)

	g, err := r.Get(3)
	require.NoError(t, err)

	assert.True(t, r.Dispose(g))
	assert.False(t, r.Dispose(g))
	assert.False(t, r.Dispose(nil))
	assert.Zero(t, r.Len())

	fresh, err := r.Get(3)
	require.NoError(t, err)
	assert.NotSame(t, g, fresh)

	// 旧实例不能移除新实例
	assert.False(t, r.Dispose(g))
	assert.Equal(t, 1, r.Len())

	// 已释放的生成器仍可使用
	_, err = g.Generate64()
	assert.NoError(t, err)
}

func TestRegistryClose(t *testing.T) {
	r := NewRegistry(WithLogger(clog.Discard()))

	_, err := r.Get(1)
	require.NoError(t, err)
	_, err = r.Get(2)
	require.NoError(t, err)

	require.NoError(t, r.Close())
	assert.Zero(t, r.Len())
	assert.NoError(t, r.Close())

	_, err = r.Get(1)
	assert.ErrorIs(t, err, ErrRegistryClosed)
}

func TestRegistryOptions(t *testing.T) {
	t.Run("applied to every generator", func(t *testing.T) {
		r := newTestRegistry(t, WithTinyBlockSize(250*time.Millisecond))
		for _, node := range []uint64{1, 2} {
			g, err := r.Get(node)
			require.NoError(t, err)
			assert.Equal(t, int64(250), g.Layout(SchemeTiny).TickMs)
		}
	})

	t.Run("invalid options surface on get", func(t *testing.T) {
		r := newTestRegistry(t, WithTinyBlockSize(0))
		_, err := r.Get(1)
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Zero(t, r.Len())
	})
}
