// Package stdx holds tiny generic helpers that the standard library does not
// provide.
package stdx

// Must0 panics when err is not nil. Use it only for failures that mean the
// program cannot meaningfully continue.
func Must0(err error) {
	if err != nil {
		panic(err)
	}
}

// Must1 returns v, panicking when err is not nil. It collapses constructor
// calls whose error path is unreachable by construction.
func Must1[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

// Zero returns the zero value for T.
func Zero[T any]() T {
	var zero T
	return zero
}

// Ptr returns a pointer to v. Handy for the optional numeric fields on
// configs and usage reports.
func Ptr[T any](v T) *T {
	return &v
}
