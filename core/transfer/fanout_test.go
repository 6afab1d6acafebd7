package transfer

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyropy/relstore/core/errs"
)

func collect[T any](n int, results <-chan result[T]) []result[T] {
	out := make([]result[T], n)
	for i := 0; i < n; i++ {
		res := <-results
		out[res.index] = res
	}
	return out
}

func TestFanOut(t *testing.T) {
	results := collect(5, fanOut("test", 5, 0, func(i int) (int, error) {
		return i * i, nil
	}))

	for i, res := range results {
		require.NoError(t, res.err)
		assert.Equal(t, i*i, res.value)
	}
}

func TestFanOut_Panic(t *testing.T) {
	results := collect(3, fanOut("test", 3, 0, func(i int) (int, error) {
		if i == 1 {
			panic("boom")
		}
		return i, nil
	}))

	assert.NoError(t, results[0].err)
	assert.ErrorIs(t, results[1].err, errs.ErrJoin)
	assert.Contains(t, results[1].err.Error(), "boom")
	assert.NoError(t, results[2].err)
}

func TestFanOut_Error(t *testing.T) {
	want := errors.New("failed")
	results := collect(2, fanOut("test", 2, 0, func(i int) (int, error) {
		if i == 0 {
			return 0, want
		}
		return 1, nil
	}))

	assert.ErrorIs(t, results[0].err, want)
	assert.NoError(t, results[1].err)
}

func TestFanOut_Limit(t *testing.T) {
	var inFlight, peak atomic.Int32

	collect(10, fanOut("test", 10, 2, func(i int) (int, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}

		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return i, nil
	}))

	assert.LessOrEqual(t, peak.Load(), int32(2))
	assert.GreaterOrEqual(t, peak.Load(), int32(1))
}
