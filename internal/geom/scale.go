package geom

// The map is authored in logical units and drawn at a single uniform scale
// derived from the viewport height. Width may overflow or underflow the
// container; there is never an aspect correction.

// ScaleValue converts a logical length to pixels.
func ScaleValue(v, scale float64) float64 {
	return v * scale
}

// ScalePoint converts a logical point to pixels.
func ScalePoint(p Point, scale float64) Point {
	return Point{X: p.X * scale, Y: p.Y * scale}
}

// ScalePoints converts every point of a polygon. The input is not modified.
func ScalePoints(points []Point, scale float64) []Point {
	out := make([]Point, len(points))
	for i, p := range points {
		out[i] = ScalePoint(p, scale)
	}
	return out
}

// ScalePointGrade converts a point authored against a map of width
// gradeMapWidth into pixels for a map of width mapWidth.
func ScalePointGrade(p Point, mapWidth, gradeMapWidth, scale float64) Point {
	if gradeMapWidth == 0 {
		return ScalePoint(p, scale)
	}
	ratio := mapWidth / gradeMapWidth
	return Point{X: p.X * ratio * scale, Y: p.Y * ratio * scale}
}
