package provider

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// ErrModelLoad wraps failures to construct a model.
var ErrModelLoad = errors.New("model load failed")

// Lazy holds a single model instance that is constructed on first use.
//
// Construction and every call made through Do run under one mutex, so
// concurrent first calls build exactly one instance and native models that
// are not goroutine-safe are never entered twice. A failed construction is
// not cached; the next call tries again. Loaded never waits on the mutex.
type Lazy[T any] struct {
	mu     sync.Mutex
	build  func() (T, error)
	value  T
	loaded atomic.Bool
}

// NewLazy returns a Lazy that builds its value with build.
func NewLazy[T any](build func() (T, error)) *Lazy[T] {
	return &Lazy[T]{build: build}
}

// Do runs fn with the model, building it first if needed.
func (l *Lazy[T]) Do(fn func(T) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.loaded.Load() {
		value, err := l.build()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrModelLoad, err)
		}
		l.value = value
		l.loaded.Store(true)
	}

	return fn(l.value)
}

// Loaded reports whether the model has been built.
func (l *Lazy[T]) Loaded() bool {
	return l.loaded.Load()
}

// Close releases the model with release if it was built. A later Do builds
// a fresh instance.
func (l *Lazy[T]) Close(release func(T)) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.loaded.Load() {
		return
	}
	l.loaded.Store(false)
	release(l.value)
	var zero T
	l.value = zero
}
