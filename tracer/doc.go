// Package tracer persists conversation snapshots for later inspection. Each
// trace is written twice: a JSON record carrying the full history, the
// request config and a timestamp, and a plain-text transcript for reading
// without tooling.
package tracer
