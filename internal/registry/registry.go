// Package registry provides the concurrency-safe name-to-value maps used to
// share provider clients across sessions.
package registry

import "github.com/alphadose/haxmap"

// Registry is a concurrent map keyed by name. All operations are safe for
// use from multiple goroutines.
type Registry[T any] interface {
	Get(name string) (T, bool)
	Add(name string, value T)
}

func New[T any]() Registry[T] {
	return &hashRegistry[T]{entries: haxmap.New[string, T]()}
}

type hashRegistry[T any] struct {
	entries *haxmap.Map[string, T]
}

func (r *hashRegistry[T]) Get(name string) (T, bool) {
	return r.entries.Get(name)
}

func (r *hashRegistry[T]) Add(name string, value T) {
	r.entries.Set(name, value)
}
