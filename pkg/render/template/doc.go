// Package template wraps pongo2 behind a small renderer interface used by the
// HTML page layout.
package template
