// Package activity provides the Bun-backed audit trail for default view
// mutations. The Repository implements both the ActivitySink used by commands
// and the ActivityRepository read side used by the project feed.
package activity
