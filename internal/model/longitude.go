package model

// UnwrapLongitude maps a stored longitude into the polygon's continuous frame.
// Stored values above Datelon are shifted down by 360 degrees when the
// greenwich flag is set; all other values pass through unchanged.
func UnwrapLongitude(x int32, h *Header) int32 {
	if h.CrossesGreenwich() && int64(x) > int64(h.Datelon) {
		return x - M360
	}
	return x
}

// WrapLongitude is the inverse of UnwrapLongitude for stored longitudes in
// [0, 360°). Shifted values are exactly the negative ones.
func WrapLongitude(x int32, h *Header) int32 {
	if h.CrossesGreenwich() && x < 0 {
		return x + M360
	}
	return x
}

// Unwrap returns a copy of points in the unwrapped frame.
func (h *Header) Unwrap(points []Point) []Point {
	out := make([]Point, len(points))
	for i, p := range points {
		out[i] = Point{X: UnwrapLongitude(p.X, h), Y: p.Y}
	}
	return out
}

// Wrap returns a copy of unwrapped points in the storage convention.
func (h *Header) Wrap(points []Point) []Point {
	out := make([]Point, len(points))
	for i, p := range points {
		out[i] = Point{X: WrapLongitude(p.X, h), Y: p.Y}
	}
	return out
}
