package videofx

import "sync"

// Result is a deferred result handle. The pipeline resolves results
// synchronously at explicit steps (buffer mapping, processor completion),
// never from a separate goroutine, but the handle itself is safe to read
// concurrently.
//
// A Result abandoned by Flush is never resolved; callers must not keep
// waiting on it after flushing the pipeline.
type Result[T any] struct {
	mu       sync.Mutex
	resolved bool
	value    T
	err      error
	subs     []func(T, error)
}

// NewResult creates an unresolved result. Processors use this to hand back
// work that completes at a later pipeline step.
func NewResult[T any]() *Result[T] {
	return &Result[T]{}
}

// ResolvedResult creates a result already resolved with value.
func ResolvedResult[T any](value T) *Result[T] {
	r := NewResult[T]()
	r.Resolve(value)
	return r
}

// FailedResult creates a result already resolved with err.
func FailedResult[T any](err error) *Result[T] {
	r := NewResult[T]()
	r.Fail(err)
	return r
}

// Resolve completes the result with value. Resolving an already resolved
// result is a no-op.
func (r *Result[T]) Resolve(value T) {
	r.settle(value, nil)
}

// Fail completes the result with err. Failing an already resolved result is
// a no-op.
func (r *Result[T]) Fail(err error) {
	var zero T
	r.settle(zero, err)
}

func (r *Result[T]) settle(value T, err error) {
	r.mu.Lock()
	if r.resolved {
		r.mu.Unlock()
		return
	}
	r.resolved = true
	r.value = value
	r.err = err
	subs := r.subs
	r.subs = nil
	r.mu.Unlock()

	for _, f := range subs {
		f(value, err)
	}
}

// Done reports whether the result has been resolved.
func (r *Result[T]) Done() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolved
}

// Value returns the resolved value or error. Before resolution it returns
// ErrResultPending.
func (r *Result[T]) Value() (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.resolved {
		var zero T
		return zero, ErrResultPending
	}
	return r.value, r.err
}

// whenResolved registers f to run when the result resolves. If the result
// is already resolved, f runs immediately.
func (r *Result[T]) whenResolved(f func(T, error)) {
	r.mu.Lock()
	if !r.resolved {
		r.subs = append(r.subs, f)
		r.mu.Unlock()
		return
	}
	value, err := r.value, r.err
	r.mu.Unlock()
	f(value, err)
}

// chainResult forwards the resolution of from into a new result of another
// type via transform. A failed source fails the returned result directly.
func chainResult[A, B any](from *Result[A], transform func(A) *Result[B]) *Result[B] {
	out := NewResult[B]()
	from.whenResolved(func(value A, err error) {
		if err != nil {
			out.Fail(err)
			return
		}
		transform(value).whenResolved(func(v B, err error) {
			if err != nil {
				out.Fail(err)
				return
			}
			out.Resolve(v)
		})
	})
	return out
}
