// Package telemetry provides structured logging, Prometheus metrics, and
// OpenTelemetry tracing for Skybridge.
//
// Logging wraps zerolog with field helpers for the identifiers that matter
// here (provider, resource, service). Metrics cover the shared algorithms —
// wait outcomes and poll counts, page fetches and yielded items — plus
// per-provider call counters. Tracing supports stdout and OTLP gRPC
// exporters with span helpers for wait, list, and provider operations.
//
// All three are optional: a zero-value Metrics records nothing, and a
// disabled Tracer produces no-op spans.
package telemetry
