// Package dispatch implements the inbound classifier.
//
// Every raw frame from the Connection Supervisor is parsed as a typed
// envelope. Malformed frames are logged and dropped; ping/pong liveness
// frames are filtered out; everything else reaches the single registered
// handler with its payload untouched.
package dispatch
