package grid

import (
	"fmt"
	"strconv"
	"strings"
)

// ToAlgebraic renders a square-grid coordinate as <file><rank> where the
// file is 'a'+x and the rank is height-y. It returns false when the
// coordinate has no algebraic name.
func ToAlgebraic(c Coord, height int) (string, bool) {
	if c.X < 0 || c.X >= 26 || c.Y < 0 || c.Y >= height {
		return "", false
	}
	return fmt.Sprintf("%c%d", 'a'+c.X, height-c.Y), true
}

// FromAlgebraic parses <file><rank> back into a coordinate
func FromAlgebraic(s string, height int) (Coord, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) < 2 || s[0] < 'a' || s[0] > 'z' {
		return Coord{}, fmt.Errorf("%w: %q", ErrMalformedKey, s)
	}
	rank, err := strconv.Atoi(s[1:])
	if err != nil || rank <= 0 {
		return Coord{}, fmt.Errorf("%w: %q", ErrMalformedKey, s)
	}
	return Coord{X: int(s[0] - 'a'), Y: height - rank}, nil
}

// Normalize converts any accepted external key form into the adapter's
// canonical key. The algebraic form is only accepted on square grids.
func Normalize(a Adapter, raw string, height int) (string, error) {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, ",") {
		c, err := a.StringToCoord(raw)
		if err != nil {
			return "", err
		}
		return a.CoordToString(c), nil
	}
	if a.Topology() != TopologySquare {
		return "", fmt.Errorf("%w: %q", ErrMalformedKey, raw)
	}
	c, err := FromAlgebraic(raw, height)
	if err != nil {
		return "", err
	}
	return a.CoordToString(c), nil
}

// Label renders a canonical key in the form shown to players: algebraic
// on square grids, the raw key otherwise.
func Label(a Adapter, key string, height int) string {
	if a.Topology() != TopologySquare {
		return key
	}
	c, err := a.StringToCoord(key)
	if err != nil {
		return key
	}
	if name, ok := ToAlgebraic(c, height); ok {
		return name
	}
	return key
}
