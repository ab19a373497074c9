package draw

import "math"

// Radar maps the top-down field onto a block of canvas cells. X runs left
// to right across the columns; Z runs bottom to top so forward is up.
type Radar struct {
	HalfWidth float64 // Field x extent, ±
	HalfDepth float64 // Field z extent, ±
	Col, Row  int     // Top-left cell of the radar area
	Cols      int
	Rows      int
}

// Cell returns the canvas cell for field point (x, z). ok is false when the
// point lies outside the radar area.
func (r Radar) Cell(x, z float64) (col, row int, ok bool) {
	if r.Cols <= 0 || r.Rows <= 0 {
		return 0, 0, false
	}
	if math.Abs(x) > r.HalfWidth || math.Abs(z) > r.HalfDepth {
		return 0, 0, false
	}
	fx := (x + r.HalfWidth) / (2 * r.HalfWidth)
	fz := (r.HalfDepth - z) / (2 * r.HalfDepth)
	col = int(fx * float64(r.Cols))
	row = int(fz * float64(r.Rows))
	if col >= r.Cols {
		col = r.Cols - 1
	}
	if row >= r.Rows {
		row = r.Rows - 1
	}
	return r.Col + col, r.Row + row, true
}

// Point is Cell without bounds checking, for drawing lines that may leave
// the area.
func (r Radar) Point(x, z float64) Point {
	fx := (x + r.HalfWidth) / (2 * r.HalfWidth)
	fz := (r.HalfDepth - z) / (2 * r.HalfDepth)
	return Point{
		X: float64(r.Col) + fx*float64(r.Cols),
		Y: float64(r.Row) + fz*float64(r.Rows),
	}
}

// Contains reports whether a cell lies inside the radar area.
func (r Radar) Contains(col, row int) bool {
	return col >= r.Col && col < r.Col+r.Cols && row >= r.Row && row < r.Row+r.Rows
}
