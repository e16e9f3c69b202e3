// Package websocket streams workflow telemetry events to clients,
// filtered per workflow ID.
package websocket
