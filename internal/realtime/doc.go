// Package realtime implements the Connection Supervisor.
//
// The Connection Supervisor:
//   - Owns the single WebSocket connection to the push gateway
//   - Reconnects with exponential backoff after abnormal closes
//   - Sends application-level heartbeats while connected
//   - Queues outbound messages across disconnect windows (FIFO)
//   - Emits subscribe/unsubscribe control frames for channels
package realtime
