// Package parallel provides tile-based parallel execution infrastructure
// for pixform.
//
// This package implements a tile-based dispatch system where the image is
// divided into 16x16 pixel tiles that can be transformed independently in
// parallel. Key features:
//
//   - 16x16 tiles matching the device compute workgroup shape
//   - Ceiling-division grid so partial edge tiles are never dropped
//   - Work-stealing worker pool for uneven per-tile cost
//
// Thread safety: Grid is immutable after construction and safe for
// concurrent reads. WorkerPool is safe for concurrent use.
package parallel

// Tile size constants. 16x16 matches the device compute workgroup, so CPU
// and device dispatch walk the same grid.
const (
	// TileWidth is the width of a tile in pixels.
	TileWidth = 16

	// TileHeight is the height of a tile in pixels.
	TileHeight = 16

	// TilePixels is the total number of pixels in a full tile.
	TilePixels = TileWidth * TileHeight
)

// Tile represents one rectangular region of the image grid.
//
// Edge tiles are clamped to the image bounds, so a tile's extent may be
// smaller than TileWidth x TileHeight. Together the tiles of a Grid cover
// every pixel exactly once.
type Tile struct {
	// Col is the tile column index (0-based).
	Col int

	// Row is the tile row index (0-based).
	Row int

	// X0, Y0 are the inclusive top-left pixel coordinates of the tile.
	X0, Y0 int

	// X1, Y1 are the exclusive bottom-right pixel coordinates, clamped
	// to the image bounds.
	X1, Y1 int
}

// Width returns the tile's actual width in pixels.
func (t Tile) Width() int { return t.X1 - t.X0 }

// Height returns the tile's actual height in pixels.
func (t Tile) Height() int { return t.Y1 - t.Y0 }

// Pixels returns the number of pixels covered by the tile.
func (t Tile) Pixels() int { return t.Width() * t.Height() }

// Grid partitions a width x height image into 16x16 tiles.
type Grid struct {
	// ImageWidth, ImageHeight are the image dimensions in pixels.
	ImageWidth  int
	ImageHeight int

	// Cols, Rows are the grid dimensions in tiles, computed by ceiling
	// division so the grid always covers the full image.
	Cols int
	Rows int
}

// NewGrid creates a grid covering a width x height image.
// Both dimensions must be positive.
func NewGrid(width, height int) Grid {
	return Grid{
		ImageWidth:  width,
		ImageHeight: height,
		Cols:        (width + TileWidth - 1) / TileWidth,
		Rows:        (height + TileHeight - 1) / TileHeight,
	}
}

// NumTiles returns the total number of tiles in the grid.
func (g Grid) NumTiles() int {
	return g.Cols * g.Rows
}

// TileAt returns the tile at the given grid position, with its extent
// clamped to the image bounds.
func (g Grid) TileAt(col, row int) Tile {
	x0 := col * TileWidth
	y0 := row * TileHeight
	x1 := x0 + TileWidth
	y1 := y0 + TileHeight
	if x1 > g.ImageWidth {
		x1 = g.ImageWidth
	}
	if y1 > g.ImageHeight {
		y1 = g.ImageHeight
	}
	return Tile{Col: col, Row: row, X0: x0, Y0: y0, X1: x1, Y1: y1}
}

// Tiles returns all tiles in row-major order.
func (g Grid) Tiles() []Tile {
	tiles := make([]Tile, 0, g.NumTiles())
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			tiles = append(tiles, g.TileAt(col, row))
		}
	}
	return tiles
}

// ForEach calls fn for every tile in row-major order.
func (g Grid) ForEach(fn func(Tile)) {
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			fn(g.TileAt(col, row))
		}
	}
}
