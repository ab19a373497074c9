package physics

import "math"

// SpatialGrid is a uniform grid over the ground (x,z) plane for
// broad-phase proximity checks. Items are inserted by position and index;
// a query visits the 3x3 cell neighborhood around a point.
//
// Cell size must be >= the largest interaction distance so every pair in
// range shares a neighborhood. Positions outside the covered area clamp to
// the edge cells, which can only add candidates, never lose one.
type SpatialGrid struct {
	minX, minZ  float64
	cellSize    float64
	invCellSize float64 // 1 / cellSize
	cols        int
	rows        int
	cells       []gridCell
}

// gridCell stores the indices of items in one cell. The slice is reused
// between ticks (reset to [:0]).
type gridCell struct {
	items []int
}

// NewSpatialGrid covers [minX, minX+width] x [minZ, minZ+depth].
func NewSpatialGrid(minX, minZ, width, depth, cellSize float64) *SpatialGrid {
	cols := max(1, int(math.Ceil(width/cellSize)))
	rows := max(1, int(math.Ceil(depth/cellSize)))
	return &SpatialGrid{
		minX:        minX,
		minZ:        minZ,
		cellSize:    cellSize,
		invCellSize: 1 / cellSize,
		cols:        cols,
		rows:        rows,
		cells:       make([]gridCell, cols*rows),
	}
}

// CellSize returns the edge length of one cell.
func (g *SpatialGrid) CellSize() float64 { return g.cellSize }

// Clear removes all items without releasing cell memory.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i].items = g.cells[i].items[:0]
	}
}

// Insert adds item index at (x, z).
func (g *SpatialGrid) Insert(x, z float64, index int) {
	col, row := g.posToCell(x, z)
	i := row*g.cols + col
	g.cells[i].items = append(g.cells[i].items, index)
}

// QueryAround calls fn for each item in the 3x3 neighborhood of (x, z).
// Iteration stops early when fn returns true.
func (g *SpatialGrid) QueryAround(x, z float64, fn func(index int) bool) {
	col, row := g.posToCell(x, z)

	for r := row - 1; r <= row+1; r++ {
		if r < 0 || r >= g.rows {
			continue
		}
		rowOffset := r * g.cols
		for c := col - 1; c <= col+1; c++ {
			if c < 0 || c >= g.cols {
				continue
			}
			for _, idx := range g.cells[rowOffset+c].items {
				if fn(idx) {
					return
				}
			}
		}
	}
}

// posToCell converts a position to cell coordinates, clamped to the grid.
func (g *SpatialGrid) posToCell(x, z float64) (col, row int) {
	col = clampCell(int(math.Floor((x-g.minX)*g.invCellSize)), g.cols)
	row = clampCell(int(math.Floor((z-g.minZ)*g.invCellSize)), g.rows)
	return col, row
}

func clampCell(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}
