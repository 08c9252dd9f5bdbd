package taskpool

import (
	"errors"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDeferredEvaluatesOnce(t *testing.T) {
	var calls atomic.Int64
	f := Deferred(func() (int, error) {
		calls.Add(1)
		return 42, nil
	})
	require.Equal(t, int64(0), calls.Load())

	for i := 0; i < 3; i++ {
		v, err := f.Get()
		require.NoError(t, err)
		require.Equal(t, 42, v)
	}
	require.Equal(t, int64(1), calls.Load())
}

func TestResolved(t *testing.T) {
	f := Resolved[int64](7, nil)
	v, err := f.Get()
	require.NoError(t, err)
	require.Equal(t, int64(7), v)

	boom := errors.New("boom")
	require.ErrorIs(t, Resolved(0, boom).Wait(), boom)
}

func TestSubmitFuture(t *testing.T) {
	p := New(2)
	defer p.Close()

	f := Submit(p, func() (int64, error) { return 123, nil })
	v, err := f.Get()
	require.NoError(t, err)
	require.Equal(t, int64(123), v)
}

func TestSumIsOrderIndependent(t *testing.T) {
	p := New(8)
	defer p.Close()

	// Tasks finish in a scrambled order; the sum must not care.
	futs := make([]*Future[int64], 32)
	var want int64
	for i := range futs {
		v := int64(i + 1)
		want += v
		futs[i] = Submit(p, func() (int64, error) {
			time.Sleep(time.Duration(rand.Intn(5)) * time.Millisecond)
			return v, nil
		})
	}
	got, err := Sum(futs).Get()
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestSumPropagatesFirstError(t *testing.T) {
	p := New(4)
	defer p.Close()

	boom := errors.New("slice failed")
	var ran atomic.Int64
	futs := []*Future[int64]{
		Submit(p, func() (int64, error) { ran.Add(1); return 1, nil }),
		Submit(p, func() (int64, error) { ran.Add(1); return 0, boom }),
		Submit(p, func() (int64, error) { ran.Add(1); return 2, nil }),
	}
	_, err := Sum(futs).Get()
	require.ErrorIs(t, err, boom)
	// Every slice still ran to completion; there is no cancellation.
	require.Equal(t, int64(3), ran.Load())
}

func TestJoin(t *testing.T) {
	p := New(4)
	defer p.Close()

	ok := func() (Unit, error) { return Unit{}, nil }
	require.NoError(t, Join([]*Future[Unit]{Submit(p, ok), Submit(p, ok)}).Wait())

	boom := errors.New("short write")
	futs := []*Future[Unit]{
		Submit(p, ok),
		Submit(p, func() (Unit, error) { return Unit{}, boom }),
		Submit(p, ok),
	}
	require.ErrorIs(t, Join(futs).Wait(), boom)
}

func TestZeroFutures(t *testing.T) {
	v, err := Sum[int64](nil).Get()
	require.NoError(t, err)
	require.Zero(t, v)
	require.NoError(t, Join(nil).Wait())
}
