// Package model holds the runtime values of a property-intake session. A
// Values map is keyed by field name and carries strings, numbers, booleans,
// option lists and file uploads. Uploads own a preview handle that must be
// released through Previews when the value holding it is replaced, cleared or
// discarded.
package model
