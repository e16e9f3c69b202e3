// Package http provides the REST API: admission evaluation, workflow
// submission with registered step kinds, workflow summaries and gate
// diagnostics, plus health and Prometheus metrics endpoints.
package http
