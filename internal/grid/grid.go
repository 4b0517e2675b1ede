package grid

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Topology names a board geometry
type Topology string

const (
	TopologySquare Topology = "square"
	TopologyHex    Topology = "hex"
)

// Symmetry selects a mirror mode used by the authoring tools
type Symmetry string

const (
	SymmetryNone       Symmetry = "none"
	SymmetryHorizontal Symmetry = "horizontal"
	SymmetryVertical   Symmetry = "vertical"
	SymmetryRotational Symmetry = "rotational"
)

// ErrMalformedKey is returned when a square key cannot be parsed
var ErrMalformedKey = errors.New("malformed square key")

// Coord is a logical tile coordinate. For hex grids X is the axial q
// component and Y the axial r component.
type Coord struct {
	X int
	Y int
}

// Add returns the component-wise sum
func (c Coord) Add(o Coord) Coord {
	return Coord{X: c.X + o.X, Y: c.Y + o.Y}
}

// Sub returns the component-wise difference c - o
func (c Coord) Sub(o Coord) Coord {
	return Coord{X: c.X - o.X, Y: c.Y - o.Y}
}

// Pixel is a presentation-only position
type Pixel struct {
	X float64
	Y float64
}

// Adapter converts between coordinates, canonical keys and pixels for one
// topology. Implementations are stateless.
type Adapter interface {
	Topology() Topology
	CoordToString(c Coord) string
	StringToCoord(s string) (Coord, error)
	Neighbors(c Coord) []Coord
	PixelPosition(c Coord, tileSize float64) Pixel
	SymmetryPoints(c Coord, symmetry Symmetry, rows, cols int) []Coord
	GenerateInitialGrid(rows, cols int) []Coord
	Distance(a, b Coord) int
}

// For returns the adapter for a topology name. Unknown names fall back to
// the square adapter and report false.
func For(topology Topology) (Adapter, bool) {
	switch Topology(strings.ToLower(string(topology))) {
	case TopologySquare, "":
		return SquareGrid{}, true
	case TopologyHex:
		return HexGrid{}, true
	default:
		return SquareGrid{}, false
	}
}

// parsePair parses the raw "a,b" key form shared by both adapters
func parsePair(s string) (int, int, error) {
	left, right, ok := strings.Cut(strings.TrimSpace(s), ",")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedKey, s)
	}
	a, err := strconv.Atoi(strings.TrimSpace(left))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedKey, s)
	}
	b, err := strconv.Atoi(strings.TrimSpace(right))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedKey, s)
	}
	return a, b, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
