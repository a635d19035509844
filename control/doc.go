// File: control/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Configuration and runtime telemetry layer for pipews.
//
// Provides concurrent-safe state handling primitives including:
//   - Typed transport/session configuration with file and env sources
//   - Hot-reload listeners fired on config file changes
//   - Metrics registry for session and server counters
package control
