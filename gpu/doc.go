// Package gpu defines the primitive GPU capability consumed by videofx.
//
// The package contains no GPU code of its own: it declares opaque resource
// IDs and the Context interface that backends implement. The videofx root
// package is written entirely against this interface, which keeps the
// compositing and readback logic testable without a live GPU context.
//
// Backends register Context factories with the backend package; the GL ES
// implementation lives in backend/gles.
package gpu
