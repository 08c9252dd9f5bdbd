package taskpool

import "sync"

// Unit is the result type of futures that carry no value.
type Unit = struct{}

// Future is a deferred computation of T. Evaluation runs inline in the first
// caller of Get; no goroutine is spawned for the future itself. For futures
// backed by a pool task, Get blocks until the task has finished.
type Future[T any] struct {
	once sync.Once
	eval func() (T, error)
	val  T
	err  error
}

// Deferred wraps eval into a future. eval runs at most once.
func Deferred[T any](eval func() (T, error)) *Future[T] {
	return &Future[T]{eval: eval}
}

// Resolved returns an already-complete future. Used for zero-size requests.
func Resolved[T any](val T, err error) *Future[T] {
	f := &Future[T]{val: val, err: err}
	f.once.Do(func() {})
	return f
}

func (f *Future[T]) Get() (T, error) {
	f.once.Do(func() {
		f.val, f.err = f.eval()
		f.eval = nil
	})
	return f.val, f.err
}

func (f *Future[T]) Wait() error {
	_, err := f.Get()
	return err
}

// Submit schedules fn on the pool and returns a future for its result.
// The task starts as soon as a worker is free, independent of Get.
func Submit[T any](p *Pool, fn func() (T, error)) *Future[T] {
	done := make(chan struct{})
	var val T
	var err error
	p.Submit(func() {
		val, err = fn()
		close(done)
	})
	return Deferred(func() (T, error) {
		<-done
		return val, err
	})
}

type addable interface {
	~int | ~int32 | ~int64 | ~uint64
}

// Sum reduces a set of futures to the sum of their results. All futures are
// waited on even when one fails, so no task is left running against a buffer
// the caller thinks is done with; the first error encountered is returned.
// Completion order does not matter.
func Sum[T addable](futs []*Future[T]) *Future[T] {
	return Deferred(func() (T, error) {
		var total T
		var first error
		for _, f := range futs {
			v, err := f.Get()
			if err != nil {
				if first == nil {
					first = err
				}
				continue
			}
			total += v
		}
		if first != nil {
			var zero T
			return zero, first
		}
		return total, nil
	})
}

// Join waits for every future and propagates the first failure.
func Join(futs []*Future[Unit]) *Future[Unit] {
	return Deferred(func() (Unit, error) {
		var first error
		for _, f := range futs {
			if err := f.Wait(); err != nil && first == nil {
				first = err
			}
		}
		return Unit{}, first
	})
}
