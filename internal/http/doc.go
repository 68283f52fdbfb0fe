// Package http exposes the conductor's read-only status endpoint.
//
// The router serves:
//   - GET /healthz: {"status":"ok","mode":...} while the event loop runs, 503
//     once it has stopped.
//   - GET /state: the full snapshot (identity, mode, participants, groups and
//     the current meeting) as produced by the event loop.
//   - GET /schedule: the derived meetings for the loaded schedule, the
//     current meeting and any overlap conflicts.
//
// Every response is produced from one snapshot taken inside the event loop,
// so readers never observe a half-applied update. Response DTOs live in
// status_handler.go.
package http
