// Package move names the four directions a board can be slid in.
package move

import (
	"errors"
	"fmt"
	"strings"
)

// Direction is a slide direction. The numeric order is also the order the
// search enumerates moves in, so ties go to the earlier direction.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// NumDirections is the number of directions.
const NumDirections = 4

// Directions lists every direction in enumeration order.
var Directions = [NumDirections]Direction{Up, Down, Left, Right}

var ErrUnknownDirection = errors.New("unknown direction")

var directionNames = [NumDirections]string{"up", "down", "left", "right"}

func (d Direction) String() string {
	if d < 0 || d >= NumDirections {
		return fmt.Sprintf("direction(%d)", int(d))
	}
	return directionNames[d]
}

// Letter returns the one-letter abbreviation (U, D, L or R).
func (d Direction) Letter() string {
	if d < 0 || d >= NumDirections {
		return "?"
	}
	return "UDLR"[d : d+1]
}

// FromString parses a direction name or its first letter.
func FromString(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "u", "up":
		return Up, nil
	case "d", "down":
		return Down, nil
	case "l", "left":
		return Left, nil
	case "r", "right":
		return Right, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDirection, s)
}

// MarshalText lets directions appear by name in yaml logs.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := FromString(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
