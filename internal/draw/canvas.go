package draw

import (
	"io"
	"strconv"
	"strings"
)

// Cell is one character position on the canvas.
type Cell struct {
	Ch    rune
	Color string // ANSI color prefix, empty for default
}

var blank = Cell{Ch: ' '}

// Canvas is a character grid that renders only the cells that changed since
// the previous frame.
type Canvas struct {
	width  int
	height int
	cells  []Cell // Flat slice: [row * width + col]
	prev   []Cell // Last rendered frame

	// Offset for centering the render area when terminal is larger than max resolution.
	// These are 0-based terminal offsets (columns/rows to skip).
	offsetCol int
	offsetRow int

	forceRedraw bool
	renderBuf   strings.Builder // Buffer for batching render output
	numBuf      [20]byte
}

// NewCanvas creates a blank canvas of the given size.
func NewCanvas(width, height int) *Canvas {
	c := &Canvas{}
	c.Resize(width, height)
	return c
}

// Resize reallocates the canvas when the size changed. A resized canvas
// redraws every cell on the next Render.
func (c *Canvas) Resize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	if width == c.width && height == c.height && c.cells != nil {
		return
	}
	c.width = width
	c.height = height
	c.cells = make([]Cell, width*height)
	c.prev = make([]Cell, width*height)
	c.Clear()
	c.forceRedraw = true
}

// SetOffset sets the column and row offset for centering the canvas.
// Offsets are 0-based terminal positions: the canvas starts at (offsetCol+1, offsetRow+1).
func (c *Canvas) SetOffset(col, row int) {
	if col != c.offsetCol || row != c.offsetRow {
		c.forceRedraw = true
	}
	c.offsetCol = col
	c.offsetRow = row
}

// OffsetCol returns the column offset used for centering.
func (c *Canvas) OffsetCol() int {
	return c.offsetCol
}

// OffsetRow returns the row offset used for centering.
func (c *Canvas) OffsetRow() int {
	return c.offsetRow
}

// Width returns the column count.
func (c *Canvas) Width() int {
	return c.width
}

// Height returns the row count.
func (c *Canvas) Height() int {
	return c.height
}

// ForceRedraw makes the next Render emit every cell.
func (c *Canvas) ForceRedraw() {
	c.forceRedraw = true
}

// Clear blanks every cell.
func (c *Canvas) Clear() {
	for i := range c.cells {
		c.cells[i] = blank
	}
}

// Set places ch at 0-based (col, row). Out-of-range writes are ignored.
func (c *Canvas) Set(col, row int, ch rune, color string) {
	if col < 0 || col >= c.width || row < 0 || row >= c.height {
		return
	}
	c.cells[row*c.width+col] = Cell{Ch: ch, Color: color}
}

// Get returns the cell at 0-based (col, row).
func (c *Canvas) Get(col, row int) Cell {
	if col < 0 || col >= c.width || row < 0 || row >= c.height {
		return blank
	}
	return c.cells[row*c.width+col]
}

// Text writes s starting at 0-based (col, row), clipped to the canvas.
func (c *Canvas) Text(col, row int, s, color string) {
	for _, r := range s {
		c.Set(col, row, r, color)
		col++
	}
}

// CenterText writes s centered on row.
func (c *Canvas) CenterText(row int, s, color string) {
	c.Text((c.width-len([]rune(s)))/2, row, s, color)
}

// DrawLine draws a line of ch between two cell positions.
func (c *Canvas) DrawLine(p1, p2 Point, ch rune, color string) {
	Line(p1, p2, func(col, row int) {
		c.Set(col, row, ch, color)
	})
}

// maxChunkSize is the maximum bytes to write at once for optimal network flow.
// 1500 bytes matches typical MTU size for smooth SSH/network transmission.
const maxChunkSize = 1400

// Render writes the cells that differ from the previous frame.
func (c *Canvas) Render(w io.Writer) {
	c.renderBuf.Reset()

	color := ""
	lastCol, lastRow := -2, -2
	for row := 0; row < c.height; row++ {
		for col := 0; col < c.width; col++ {
			i := row*c.width + col
			cell := c.cells[i]
			if !c.forceRedraw && cell == c.prev[i] {
				continue
			}
			c.prev[i] = cell

			if row != lastRow || col != lastCol+1 {
				c.moveCursor(col, row)
			}
			lastCol, lastRow = col, row

			if cell.Color != color {
				if cell.Color == "" {
					c.renderBuf.WriteString(ColorReset)
				} else {
					c.renderBuf.WriteString(cell.Color)
				}
				color = cell.Color
			}
			c.renderBuf.WriteRune(cell.Ch)
		}
	}
	if color != "" {
		c.renderBuf.WriteString(ColorReset)
	}
	c.forceRedraw = false

	// Write output in chunks for optimal network flow
	data := c.renderBuf.String()
	for len(data) > 0 {
		chunk := data
		if len(chunk) > maxChunkSize {
			chunk = data[:maxChunkSize]
		}
		_, _ = io.WriteString(w, chunk)
		data = data[len(chunk):]
	}
}

func (c *Canvas) moveCursor(col, row int) {
	c.renderBuf.WriteString("\033[")
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(row+1+c.offsetRow), 10))
	c.renderBuf.WriteByte(';')
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(col+1+c.offsetCol), 10))
	c.renderBuf.WriteByte('H')
}

// RenderBorder draws a box border around the canvas area when the terminal
// exceeds the max render resolution on either axis.
func (c *Canvas) RenderBorder(w io.Writer) {
	hasH := c.offsetCol >= 1 // Room for left/right vertical bars
	hasV := c.offsetRow >= 1 // Room for top/bottom horizontal bars
	if !hasH && !hasV {
		return
	}

	// Border positions (1-based terminal coordinates)
	left := c.offsetCol
	right := c.offsetCol + c.width + 1
	top := c.offsetRow
	bottom := c.offsetRow + c.height + 1
	bar := strings.Repeat("─", c.width)

	var buf strings.Builder
	at := func(row, col int, s string) {
		buf.WriteString("\033[")
		buf.WriteString(strconv.Itoa(row))
		buf.WriteByte(';')
		buf.WriteString(strconv.Itoa(col))
		buf.WriteByte('H')
		buf.WriteString(s)
	}

	if hasV {
		if hasH {
			at(top, left, "┌"+bar+"┐")
			at(bottom, left, "└"+bar+"┘")
		} else {
			at(top, c.offsetCol+1, bar)
			at(bottom, c.offsetCol+1, bar)
		}
	}
	if hasH {
		for row := c.offsetRow + 1; row <= c.offsetRow+c.height; row++ {
			at(row, left, "│")
			at(row, right, "│")
		}
	}

	_, _ = io.WriteString(w, buf.String())
}
