// Package server exposes the worker status board over HTTP.
//
// Endpoints:
//
//   - GET /api/status: JSON array of every worker's latest status
//   - GET /api/summary: worker counts per state and the earliest next attempt
//   - GET /api/sse: Server-Sent Events, a "snapshot" event followed by one
//     event per update named after the worker's new state
//   - GET /: the status page, when assets are configured
//
// All three API endpoints accept ?platform= and ?state= filters; state takes
// a comma separated list. The server shuts down when its context ends, giving
// in-flight requests 5 seconds.
package server
