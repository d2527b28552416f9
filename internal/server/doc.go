// Package server is the HTTP host of the Fibonacci engine. It exposes
// compute and compute_batch as JSON endpoints, with Prometheus metrics,
// OpenTelemetry spans, request IDs and structured request logs.
//
// Endpoints:
//
//	GET /fibonacci?n=<u32>[&policy=wrap|saturate|checked]
//	GET /batch?count=<u32>&n=<u32>[&policy=...]
//	GET /health
//	GET /metrics
package server
