// Package middleware provides cross-cutting signal wrappers: operators
// that leave a signal's events untouched while attaching observability
// to each observation.
//
// Traced records one OpenTelemetry span per observation against the
// global tracer provider. Pair it with metrics.Instrument for the
// Prometheus side.
package middleware
