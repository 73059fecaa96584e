// Package gles implements the gpu.Context capability on OpenGL ES 3.x.
//
// The package registers itself with the backend registry under the name
// "gles"; enable it with a blank import:
//
//	import _ "github.com/gogpu/videofx/backend/gles"
//
// The caller owns GL context creation and must keep the context current on
// the thread driving videofx. Pixel readback uses pixel pack buffers so
// that ReadPixels returns immediately and the copy overlaps later frames;
// MapBufferRange is the only blocking point.
package gles
