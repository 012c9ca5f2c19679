// Package command exposes go-command compatible handlers for default view
// mutations (set, clear, cleanup). Commands are wired by the service layer and
// can be invoked by any transport.
package command
