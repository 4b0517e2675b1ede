package grid

import "fmt"

// HexGrid is a pointy-topped hexagonal topology in axial coordinates.
// Keys are "q,r".
type HexGrid struct{}

var _ Adapter = HexGrid{}

var hexDirections = []Coord{
	{1, 0}, {1, -1}, {0, -1},
	{-1, 0}, {-1, 1}, {0, 1},
}

func (HexGrid) Topology() Topology {
	return TopologyHex
}

func (HexGrid) CoordToString(c Coord) string {
	return fmt.Sprintf("%d,%d", c.X, c.Y)
}

func (HexGrid) StringToCoord(s string) (Coord, error) {
	q, r, err := parsePair(s)
	if err != nil {
		return Coord{}, err
	}
	return Coord{X: q, Y: r}, nil
}

func (HexGrid) Neighbors(c Coord) []Coord {
	out := make([]Coord, 0, len(hexDirections))
	for _, d := range hexDirections {
		out = append(out, c.Add(d))
	}
	return out
}

func (HexGrid) PixelPosition(c Coord, tileSize float64) Pixel {
	return Pixel{
		X: tileSize * (float64(c.X) + float64(c.Y)/2),
		Y: tileSize * 0.75 * float64(c.Y),
	}
}

// SymmetryPoints reflects in axial space; rows and cols are unused
// because the hex board is centred on the origin.
func (HexGrid) SymmetryPoints(c Coord, symmetry Symmetry, _, _ int) []Coord {
	switch symmetry {
	case SymmetryHorizontal:
		return []Coord{{X: -c.X - c.Y, Y: c.Y}}
	case SymmetryVertical:
		return []Coord{{X: c.X, Y: -c.Y - c.X}}
	case SymmetryRotational:
		return []Coord{{X: -c.X, Y: -c.Y}}
	default:
		return nil
	}
}

// GenerateInitialGrid returns a hexagon centred on 0,0 whose radius is
// half the larger requested dimension.
func (HexGrid) GenerateInitialGrid(rows, cols int) []Coord {
	if rows <= 0 || cols <= 0 {
		return nil
	}
	radius := max(rows, cols) / 2
	var out []Coord
	for q := -radius; q <= radius; q++ {
		r1 := max(-radius, -q-radius)
		r2 := min(radius, -q+radius)
		for r := r1; r <= r2; r++ {
			out = append(out, Coord{X: q, Y: r})
		}
	}
	return out
}

// Distance is the axial hex distance
func (HexGrid) Distance(a, b Coord) int {
	dq := a.X - b.X
	dr := a.Y - b.Y
	return (abs(dq) + abs(dr) + abs(dq+dr)) / 2
}
