package idgen

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceyewan/snowkit/clog"
	"github.com/ceyewan/snowkit/xerrors"
)

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		g := newTestGenerator(t, 5)
		assert.Equal(t, uint64(5), g.NodeID())
		assert.Equal(t, int64(1000), g.Layout(SchemeTiny).TickMs)
		assert.Equal(t, Layout{}, g.Layout(Scheme(9)))
	})

	t.Run("invalid options", func(t *testing.T) {
		tests := []struct {
			name string
			opt  Option
			code string
		}{
			{"tiny block below 1ms", WithTinyBlockSize(500 * time.Microsecond), "tiny_block_too_small"},
			{"negative max backwards", WithMaxBackwards(-time.Second), "max_backwards_negative"},
			{"unknown policy", WithRegressionPolicy(RegressionPolicy(7)), "unknown_regression_policy"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := New(1, tt.opt)
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidInput)
				assert.Equal(t, tt.code, xerrors.GetCode(err))
			})
		}
	})
}

func TestGenerate64Scenario(t *testing.T) {
	clock := newFakeClock(t0)
	g := newFakeGenerator(t, 5, clock)

	id1, err := g.Generate64()
	require.NoError(t, err)
	id2, err := g.Generate64()
	require.NoError(t, err)

	assert.Equal(t, uint64(t0-Epoch64)<<23|5<<13, id1)
	assert.Equal(t, id1+1, id2)

	p1, p2 := Decode(Scheme64, id1), Decode(Scheme64, id2)
	assert.Equal(t, Parts{Timestamp: t0, Node: 5, Sequence: 0}, p1)
	assert.Equal(t, Parts{Timestamp: t0, Node: 5, Sequence: 1}, p2)
	assert.Equal(t, t0, ExtractTimestamp64(id1))
	assert.Equal(t, t0, ExtractTimestamp64(id2))
}

func TestGenerateUnsupported(t *testing.T) {
	g := newTestGenerator(t, 1)

	_, err := g.Generate(Scheme128)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "unsupported_scheme", xerrors.GetCode(err))

	_, err = g.Generate(Scheme(-1))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = g.GenerateHex(Scheme(99))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestMonotonic(t *testing.T) {
	const n = 3000
	g := newTestGenerator(t, 3)

	for _, s := range []Scheme{SchemeTiny, SchemeMini, Scheme48, Scheme64} {
		t.Run(s.String(), func(t *testing.T) {
			var prev uint64
			for i := 0; i < n; i++ {
				id, err := g.Generate(s)
				require.NoError(t, err)
				if i > 0 {
					require.Greater(t, id, prev, "id %d not increasing", i)
				}
				prev = id
			}
		})
	}

	t.Run("128", func(t *testing.T) {
		var prev ID128
		for i := 0; i < n; i++ {
			id, err := g.Generate128()
			require.NoError(t, err)
			if i > 0 {
				require.Equal(t, 1, id.Compare(prev), "id %d not increasing", i)
			}
			prev = id
		}
	})
}

func TestTimestampRoundTrip(t *testing.T) {
	g := newTestGenerator(t, 1)

	for _, s := range []Scheme{SchemeTiny, SchemeMini, Scheme48, Scheme64} {
		t.Run(s.String(), func(t *testing.T) {
			tick := LayoutOf(s).TickMs
			before := time.Now().UnixMilli()
			id, err := g.Generate(s)
			require.NoError(t, err)
			after := time.Now().UnixMilli()

			ts := ExtractTimestamp(s, id)
			assert.GreaterOrEqual(t, ts, before-tick)
			assert.LessOrEqual(t, ts, after)
		})
	}

	t.Run("128", func(t *testing.T) {
		before := time.Now().UnixMilli()
		id, err := g.Generate128()
		require.NoError(t, err)
		after := time.Now().UnixMilli()

		ts := ExtractTimestamp128(id)
		assert.GreaterOrEqual(t, ts, before-1)
		assert.LessOrEqual(t, ts, after)
	})
}

func TestSequenceExhaustion(t *testing.T) {
	t.Run("mini spins to next millisecond", func(t *testing.T) {
		clock := newFakeClock(t0)
		g := newFakeGenerator(t, 0, clock)
		max := int(LayoutOf(SchemeMini).MaxSequence)

		ids := make([]uint64, 0, max+2)
		for i := 0; i <= max+1; i++ {
			id, err := g.GenerateMini()
			require.NoError(t, err)
			ids = append(ids, id)
		}

		for i := 0; i <= max; i++ {
			p := Decode(SchemeMini, ids[i])
			require.Equal(t, t0, p.Timestamp)
			require.Equal(t, uint64(i), p.Sequence)
		}

		last := Decode(SchemeMini, ids[max+1])
		assert.Equal(t, t0+1, last.Timestamp)
		assert.Equal(t, uint64(0), last.Sequence)
		assert.Greater(t, ids[max+1], ids[max])
		assert.Equal(t, int64(1), clock.Yields())
		assert.Zero(t, clock.Sleeps())
	})

	t.Run("clock stepping back into a full tick waits again", func(t *testing.T) {
		clock := newFakeClock(t0)
		max := int(LayoutOf(SchemeMini).MaxSequence)

		// Gate 读到 t0+1 返回后，下一次读数回拨到 t0，只发生一次
		stepped, reads := false, 0
		stepClock := ClockFunc(func() int64 {
			now := clock.NowMs()
			if !stepped && now == t0+1 {
				if reads++; reads == 2 {
					stepped = true
					clock.Set(t0)
					return t0
				}
			}
			return now
		})
		g := newTestGenerator(t, 0, WithClock(stepClock), WithYield(func() { clock.Advance(1) }))

		var prev uint64
		for i := 0; i <= max+2; i++ {
			id, err := g.GenerateMini()
			require.NoError(t, err)
			if i > 0 {
				require.Greater(t, id, prev, "call %d: %+v", i, Decode(SchemeMini, id))
			}
			prev = id
		}
		require.True(t, stepped)

		last := Decode(SchemeMini, prev)
		assert.Equal(t, t0+1, last.Timestamp)
		assert.Equal(t, uint64(1), last.Sequence)
	})

	t.Run("48 sleeps to next second", func(t *testing.T) {
		clock := newFakeClock(t0)
		g := newFakeGenerator(t, 2, clock)
		max := int(LayoutOf(Scheme48).MaxSequence)

		var prev uint64
		for i := 0; i <= max; i++ {
			id, err := g.Generate48()
			require.NoError(t, err)
			prev = id
		}
		require.Zero(t, clock.Sleeps())

		id, err := g.Generate48()
		require.NoError(t, err)
		assert.Greater(t, id, prev)

		p := Decode(Scheme48, id)
		assert.Equal(t, (t0/1000+1)*1000, p.Timestamp)
		assert.Equal(t, uint64(0), p.Sequence)
		assert.Equal(t, uint64(2), p.Node)
		assert.Positive(t, clock.Sleeps())
		assert.Zero(t, clock.Yields())
	})
}

func TestNodeIsolation(t *testing.T) {
	clock := newFakeClock(t0)
	g3 := newFakeGenerator(t, 3, clock)
	g7 := newFakeGenerator(t, 7, clock)

	for _, s := range []Scheme{Scheme48, Scheme64} {
		t.Run(s.String(), func(t *testing.T) {
			a, err := g3.Generate(s)
			require.NoError(t, err)
			b, err := g7.Generate(s)
			require.NoError(t, err)
			require.NotEqual(t, a, b)

			l := LayoutOf(s)
			nodeField := l.NodeMask << l.NodeShift
			assert.Equal(t, a&^nodeField, b&^nodeField)
			assert.Equal(t, uint64(3), Decode(s, a).Node)
			assert.Equal(t, uint64(7), Decode(s, b).Node)
		})
	}

	t.Run("128", func(t *testing.T) {
		a, err := g3.Generate128()
		require.NoError(t, err)
		b, err := g7.Generate128()
		require.NoError(t, err)

		assert.Equal(t, a.Hi, b.Hi)
		assert.Equal(t, uint64(3), Decode128(a).Node)
		assert.Equal(t, uint64(7), Decode128(b).Node)
	})

	t.Run("tiny and mini carry no node", func(t *testing.T) {
		a, err := g3.GenerateMini()
		require.NoError(t, err)
		b, err := g7.GenerateMini()
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})
}

func TestEncodingConsistency(t *testing.T) {
	newPair := func() (*Generator, *Generator) {
		return newFakeGenerator(t, 9, newFakeClock(t0)), newFakeGenerator(t, 9, newFakeClock(t0))
	}

	for _, s := range []Scheme{SchemeTiny, SchemeMini, Scheme48, Scheme64} {
		t.Run(s.String(), func(t *testing.T) {
			numeric, hexed := newPair()
			id, err := numeric.Generate(s)
			require.NoError(t, err)
			str, err := hexed.GenerateHex(s)
			require.NoError(t, err)

			parsed, err := ParseHex(str)
			require.NoError(t, err)
			assert.Equal(t, id, parsed)
			assert.Equal(t, FormatHex(id), str)

			_, asc := newPair()
			str, err = asc.GenerateAscii(s)
			require.NoError(t, err)
			parsed, err = ParseAscii(str)
			require.NoError(t, err)
			assert.Equal(t, id, parsed)

			ts, err := ExtractTimestampHex(s, FormatHex(id))
			require.NoError(t, err)
			assert.Equal(t, ExtractTimestamp(s, id), ts)
			ts, err = ExtractTimestampAscii(s, FormatAscii(id))
			require.NoError(t, err)
			assert.Equal(t, ExtractTimestamp(s, id), ts)
		})
	}

	t.Run("128", func(t *testing.T) {
		numeric, hexed := newPair()
		id, err := numeric.Generate128()
		require.NoError(t, err)
		str, err := hexed.Generate128Hex()
		require.NoError(t, err)

		parsed, err := ParseHex128(str)
		require.NoError(t, err)
		assert.Equal(t, id, parsed)

		_, asc := newPair()
		str, err = asc.Generate128Ascii()
		require.NoError(t, err)
		parsed, err = ParseAscii128(str)
		require.NoError(t, err)
		assert.Equal(t, id, parsed)

		ts, err := ExtractTimestamp128Hex(id.Hex())
		require.NoError(t, err)
		assert.Equal(t, t0, ts)
		ts, err = ExtractTimestamp128Ascii(id.Ascii())
		require.NoError(t, err)
		assert.Equal(t, t0, ts)
	})
}

func TestNamedGenerators(t *testing.T) {
	clock := newFakeClock(t0)
	g := newFakeGenerator(t, 1, clock)

	numeric := []func() (uint64, error){g.GenerateTiny, g.GenerateMini, g.Generate48, g.Generate64}
	for i, fn := range numeric {
		id, err := fn()
		require.NoError(t, err)
		tick := LayoutOf(Scheme(i)).TickMs
		assert.Equal(t, t0/tick*tick, Decode(Scheme(i), id).Timestamp, Scheme(i).String())
	}

	strs := []func() (string, error){
		g.GenerateTinyHex, g.GenerateMiniHex, g.Generate48Hex, g.Generate64Hex, g.Generate128Hex,
		g.GenerateTinyAscii, g.GenerateMiniAscii, g.Generate48Ascii, g.Generate64Ascii, g.Generate128Ascii,
	}
	for _, fn := range strs {
		str, err := fn()
		require.NoError(t, err)
		assert.NotEmpty(t, str)
	}

	hexExtract := []func(string) (int64, error){
		ExtractTimestampTinyHex, ExtractTimestampMiniHex, ExtractTimestamp48Hex, ExtractTimestamp64Hex,
	}
	asciiExtract := []func(string) (int64, error){
		ExtractTimestampTinyAscii, ExtractTimestampMiniAscii, ExtractTimestamp48Ascii, ExtractTimestamp64Ascii,
	}
	numExtract := []func(uint64) int64{
		ExtractTimestampTiny, ExtractTimestampMini, ExtractTimestamp48, ExtractTimestamp64,
	}
	for i := range numExtract {
		s := Scheme(i)
		id, err := g.Generate(s)
		require.NoError(t, err)
		want := numExtract[i](id)

		got, err := hexExtract[i](FormatHex(id))
		require.NoError(t, err)
		assert.Equal(t, want, got, s.String())
		got, err = asciiExtract[i](FormatAscii(id))
		require.NoError(t, err)
		assert.Equal(t, want, got, s.String())
	}
}

func TestClockRegression(t *testing.T) {
	t.Run("wait within limit", func(t *testing.T) {
		clock := newFakeClock(t0)
		g := newFakeGenerator(t, 1, clock)

		id1, err := g.Generate64()
		require.NoError(t, err)

		clock.Set(t0 - 500)
		id2, err := g.Generate64()
		require.NoError(t, err)

		assert.Greater(t, id2, id1)
		assert.Equal(t, Parts{Timestamp: t0, Node: 1, Sequence: 1}, Decode(Scheme64, id2))
		assert.Equal(t, int64(500), clock.Yields())
	})

	t.Run("wait beyond limit", func(t *testing.T) {
		clock := newFakeClock(t0)
		g := newFakeGenerator(t, 1, clock, WithMaxBackwards(time.Second))

		_, err := g.Generate64()
		require.NoError(t, err)

		clock.Set(t0 - 2000)
		_, err = g.Generate64()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrClockRegressed)
		assert.Equal(t, "clock_regressed", xerrors.GetCode(err))
		assert.Contains(t, err.Error(), "drift: 2000ms")
		assert.Zero(t, clock.Yields())

		// 时钟恢复后可以继续生成
		clock.Set(t0 + 1)
		id, err := g.Generate64()
		require.NoError(t, err)
		assert.Equal(t, t0+1, ExtractTimestamp64(id))
	})

	t.Run("wait on second tick scheme", func(t *testing.T) {
		clock := newFakeClock(t0)
		g := newFakeGenerator(t, 1, clock)

		id1, err := g.Generate48()
		require.NoError(t, err)

		clock.Set(t0 - 1000)
		id2, err := g.Generate48()
		require.NoError(t, err)
		assert.Greater(t, id2, id1)
		assert.Positive(t, clock.Sleeps())
	})

	t.Run("reject", func(t *testing.T) {
		clock := newFakeClock(t0)
		g := newFakeGenerator(t, 1, clock, WithRegressionPolicy(RegressionReject))

		_, err := g.Generate64()
		require.NoError(t, err)

		clock.Set(t0 - 1)
		_, err = g.Generate64()
		assert.ErrorIs(t, err, ErrClockRegressed)
	})

	t.Run("accept", func(t *testing.T) {
		clock := newFakeClock(t0)
		g := newFakeGenerator(t, 1, clock, WithRegressionPolicy(RegressionAccept))

		id1, err := g.Generate64()
		require.NoError(t, err)

		clock.Set(t0 - 500)
		id2, err := g.Generate64()
		require.NoError(t, err)

		assert.Less(t, id2, id1)
		assert.Equal(t, Parts{Timestamp: t0 - 500, Node: 1, Sequence: 0}, Decode(Scheme64, id2))
	})

	t.Run("schemes are independent", func(t *testing.T) {
		clock := newFakeClock(t0)
		g := newFakeGenerator(t, 1, clock, WithRegressionPolicy(RegressionReject))

		_, err := g.Generate64()
		require.NoError(t, err)

		clock.Set(t0 - 1)
		_, err = g.GenerateMini()
		assert.NoError(t, err)
	})
}

func TestTinyCustomBlock(t *testing.T) {
	clock := newFakeClock(t0)
	g := newFakeGenerator(t, 0, clock, WithTinyBlockSize(100*time.Millisecond))
	require.Equal(t, int64(100), g.Layout(SchemeTiny).TickMs)
	want := t0 / 100 * 100

	id, err := g.GenerateTiny()
	require.NoError(t, err)
	assert.Equal(t, want, g.ExtractTimestampTiny(id))
	assert.Equal(t, want, g.ExtractTimestamp(SchemeTiny, id))
	assert.Equal(t, want, g.Decode(SchemeTiny, id).Timestamp)

	ts, err := g.ExtractTimestampHex(SchemeTiny, FormatHex(id))
	require.NoError(t, err)
	assert.Equal(t, want, ts)
	ts, err = g.ExtractTimestampAscii(SchemeTiny, FormatAscii(id))
	require.NoError(t, err)
	assert.Equal(t, want, ts)

	// 默认布局按 1 秒解释同一个 ID，结果不同
	assert.NotEqual(t, want, ExtractTimestampTiny(id))
}

func TestTinyBlockRange(t *testing.T) {
	// t0 距 tiny 纪元约 50.5 * 2^32 毫秒
	require.Equal(t, int64(51), MinTinyBlock(t0))
	assert.Equal(t, int64(1), MinTinyBlock(EpochTiny-1))

	clock := newFakeClock(t0)
	for _, block := range []int64{10, 50} {
		_, err := New(0, append(clock.options(),
			WithLogger(clog.Discard()),
			WithTinyBlockSize(time.Duration(block)*time.Millisecond))...)
		require.Error(t, err, "block %dms", block)
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Equal(t, "tiny_block_too_small", xerrors.GetCode(err))
	}

	g := newFakeGenerator(t, 0, clock, WithTinyBlockSize(51*time.Millisecond))
	id, err := g.GenerateTiny()
	require.NoError(t, err)
	assert.Equal(t, t0/51*51, g.ExtractTimestampTiny(id))
}

func TestTimestampOverflow(t *testing.T) {
	clock := newFakeClock(t0)
	g := newFakeGenerator(t, 1, clock, WithTinyBlockSize(100*time.Millisecond))

	// 100ms 块的 tiny 字段在 2030 年用尽
	tinyEnd := (EpochTiny/100 + 1<<32) * 100
	clock.Set(tinyEnd - 100)
	last, err := g.GenerateTiny()
	require.NoError(t, err)
	assert.Equal(t, tinyEnd-100, g.ExtractTimestampTiny(last))

	clock.Set(tinyEnd)
	_, err = g.GenerateTiny()
	assert.ErrorIs(t, err, ErrTimestampOverflow)
	assert.Equal(t, "timestamp_overflow", xerrors.GetCode(err))

	// 48 位方案的秒级字段在 2148 年用尽
	end48 := Epoch48 + 1<<32*1000
	clock.Set(end48)
	_, err = g.Generate48()
	assert.ErrorIs(t, err, ErrTimestampOverflow)
}

func TestGeneratorExtract128(t *testing.T) {
	clock := newFakeClock(t0)
	g := newFakeGenerator(t, 0xBEEF, clock)

	id, err := g.Generate128()
	require.NoError(t, err)
	assert.Equal(t, t0, g.ExtractTimestamp128(id))

	ts, err := g.ExtractTimestampHex(Scheme128, id.Hex())
	require.NoError(t, err)
	assert.Equal(t, t0, ts)
}

func TestConcurrentGenerate(t *testing.T) {
	const (
		workers = 8
		perG    = 2000
	)
	g := newTestGenerator(t, 11)

	for _, s := range []Scheme{SchemeMini, Scheme64} {
		t.Run(s.String(), func(t *testing.T) {
			var (
				mu   sync.Mutex
				seen = make(map[uint64]struct{}, workers*perG)
				wg   sync.WaitGroup
			)
			for w := 0; w < workers; w++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					local := make([]uint64, 0, perG)
					for i := 0; i < perG; i++ {
						id, err := g.Generate(s)
						if err != nil {
							t.Error(err)
							return
						}
						local = append(local, id)
					}
					mu.Lock()
					for _, id := range local {
						seen[id] = struct{}{}
					}
					mu.Unlock()
				}()
			}
			wg.Wait()
			assert.Len(t, seen, workers*perG)
		})
	}

	t.Run("128", func(t *testing.T) {
		var (
			mu   sync.Mutex
			seen = make(map[ID128]struct{}, workers*perG)
			wg   sync.WaitGroup
		)
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < perG; i++ {
					id, err := g.Generate128()
					if err != nil {
						t.Error(err)
						return
					}
					mu.Lock()
					seen[id] = struct{}{}
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Len(t, seen, workers*perG)
	})
}
