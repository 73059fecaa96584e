// Package backend registers and selects gpu.Context implementations.
//
// Backend packages register a context factory from their init function, so
// enabling a backend is a blank import:
//
//	import _ "github.com/gogpu/videofx/backend/gles"
//
// Contexts are then created by name with New, or by priority with Default.
package backend
