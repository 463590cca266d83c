// Package session holds the current credential and drives the connection
// lifecycle from session and visibility signals. The supervisor receives
// the credential through an injected provider, never from process-wide
// state.
package session
