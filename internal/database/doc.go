// Package database provides the optional PostgreSQL pool used to persist
// the notification feed.
package database
