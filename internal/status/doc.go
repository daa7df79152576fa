// Package status serves operator visibility over HTTP: a health probe, a
// JSON snapshot of recent runs and breaker state, and Prometheus metrics.
//
// The server is optional and defaults to loopback; it exposes no mutating
// endpoints.
package status
