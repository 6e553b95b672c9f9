//go:build dev

// Package trace provides runtime tracing for development builds.
//
// Usage:
//
//	go build -tags dev ./cmd/snipcomplete
//	SNIPCOMPLETE_TRACE=trace.out snipcomplete tags 'django, or'
//	go tool trace trace.out
package trace

import (
	"context"
	"fmt"
	"os"
	"runtime/trace"
	"sync"
)

// EnvVar names the output file for the execution trace
const EnvVar = "SNIPCOMPLETE_TRACE"

var (
	mu     sync.Mutex
	file   *os.File
	active bool
)

// Init starts tracing when SNIPCOMPLETE_TRACE is set.
// The returned function stops it and must be deferred.
func Init() func() {
	path := os.Getenv(EnvVar)
	if path == "" {
		return func() {}
	}

	mu.Lock()
	defer mu.Unlock()

	f, err := os.Create(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "snipcomplete: failed to create trace file %s: %v\n", path, err)
		return func() {}
	}
	if err := trace.Start(f); err != nil {
		fmt.Fprintf(os.Stderr, "snipcomplete: failed to start trace: %v\n", err)
		_ = f.Close()
		return func() {}
	}

	file = f
	active = true

	return func() {
		mu.Lock()
		defer mu.Unlock()

		if active {
			trace.Stop()
			active = false
		}
		if file != nil {
			_ = file.Close()
			file = nil
		}
	}
}

// Region opens a trace region and returns its end function
func Region(ctx context.Context, name string) func() {
	if !active {
		return func() {}
	}
	return trace.StartRegion(ctx, name).End
}

// WithRegion runs f inside a trace region
func WithRegion(ctx context.Context, name string, f func()) {
	if !active {
		f()
		return
	}
	trace.WithRegion(ctx, name, f)
}

// Log writes a message to the trace
func Log(ctx context.Context, category, message string) {
	if active {
		trace.Log(ctx, category, message)
	}
}

// IsEnabled reports whether a trace is being written
func IsEnabled() bool {
	return active
}
