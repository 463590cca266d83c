// Package notify consumes dispatched envelopes and maintains the in-app
// notification feed: classification by event type, unread tracking, a
// bounded ring of recent entries, optional persistence, and channel
// re-subscription after every reconnect.
package notify
