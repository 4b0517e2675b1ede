package grid

import "fmt"

// SquareGrid is the rectangular topology. Keys are "x,y" with y growing
// downwards from the top rank.
type SquareGrid struct{}

var _ Adapter = SquareGrid{}

var squareDirections = []Coord{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {-1, -1}, {1, -1}, {-1, 1},
}

func (SquareGrid) Topology() Topology {
	return TopologySquare
}

func (SquareGrid) CoordToString(c Coord) string {
	return fmt.Sprintf("%d,%d", c.X, c.Y)
}

func (SquareGrid) StringToCoord(s string) (Coord, error) {
	x, y, err := parsePair(s)
	if err != nil {
		return Coord{}, err
	}
	return Coord{X: x, Y: y}, nil
}

// Neighbors returns the eight surrounding tiles, unbounded
func (SquareGrid) Neighbors(c Coord) []Coord {
	out := make([]Coord, 0, len(squareDirections))
	for _, d := range squareDirections {
		out = append(out, c.Add(d))
	}
	return out
}

// PixelPosition returns the centre of the tile
func (SquareGrid) PixelPosition(c Coord, tileSize float64) Pixel {
	return Pixel{
		X: float64(c.X)*tileSize + tileSize/2,
		Y: float64(c.Y)*tileSize + tileSize/2,
	}
}

func (SquareGrid) SymmetryPoints(c Coord, symmetry Symmetry, rows, cols int) []Coord {
	switch symmetry {
	case SymmetryHorizontal:
		return []Coord{{X: cols - 1 - c.X, Y: c.Y}}
	case SymmetryVertical:
		return []Coord{{X: c.X, Y: rows - 1 - c.Y}}
	case SymmetryRotational:
		return []Coord{{X: cols - 1 - c.X, Y: rows - 1 - c.Y}}
	default:
		return nil
	}
}

// GenerateInitialGrid returns every tile in row-major order
func (SquareGrid) GenerateInitialGrid(rows, cols int) []Coord {
	if rows <= 0 || cols <= 0 {
		return nil
	}
	out := make([]Coord, 0, rows*cols)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			out = append(out, Coord{X: x, Y: y})
		}
	}
	return out
}

// Distance is the Chebyshev (king-move) distance
func (SquareGrid) Distance(a, b Coord) int {
	return max(abs(a.X-b.X), abs(a.Y-b.Y))
}
