package tui

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = goerr.New("prompt aborted")
	// ErrNoDriver is returned when the renderer has no prompt driver.
	ErrNoDriver = goerr.New("prompt driver is nil")
	// ErrFormLocked is returned when the form is disabled and the caller
	// asked for interactive input.
	ErrFormLocked = goerr.New("form is locked")
)
