//go:build !dev

// Package trace provides runtime tracing for development builds.
// Release builds compile these no-op stubs.
package trace

import "context"

// EnvVar names the output file for the execution trace
const EnvVar = "SNIPCOMPLETE_TRACE"

// Init is a no-op in release builds
func Init() func() {
	return func() {}
}

// Region is a no-op in release builds
func Region(_ context.Context, _ string) func() {
	return func() {}
}

// WithRegion calls f
func WithRegion(_ context.Context, _ string, f func()) {
	f()
}

// Log is a no-op in release builds
func Log(_ context.Context, _, _ string) {
}

// IsEnabled always returns false in release builds
func IsEnabled() bool {
	return false
}
