package videofx

// Size is a width/height pair in pixels.
type Size struct {
	Width  int
	Height int
}

// IsZero reports whether either dimension is unset.
func (s Size) IsZero() bool {
	return s.Width == 0 || s.Height == 0
}
