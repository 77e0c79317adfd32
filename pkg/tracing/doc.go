/*
Package tracing wraps go.opentelemetry.io/otel/trace for setting and retrieving tracers in a context.Context.

Instrumented code retrieves its tracer from the context rather than from a package global.
*/
package tracing
