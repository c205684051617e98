package board

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"
)

const rankDigits = "0123456789abcdef"

var (
	ErrBadBoardString = errors.New("board string must have 16 hex rank digits")
	ErrBadTileValue   = errors.New("tile values must be 0 or a power of two between 2 and 32768")
)

// String renders the board as 16 hex rank digits, square 0 first, with a
// slash between rows. Parse accepts the same format.
func (b Board) String() string {
	var sb strings.Builder
	for i := 0; i < NumSquares; i++ {
		if i > 0 && i%Dim == 0 {
			sb.WriteByte('/')
		}
		sb.WriteByte(rankDigits[(b>>(4*uint(i)))&0xf])
	}
	return sb.String()
}

// Parse reads a board written by String. Row separators and whitespace are
// optional.
func Parse(s string) (Board, error) {
	var b Board
	n := 0
	for _, ch := range strings.ToLower(s) {
		if ch == '/' || ch == ' ' || ch == '\t' || ch == '\n' {
			continue
		}
		rank := strings.IndexRune(rankDigits, ch)
		if rank < 0 || n >= NumSquares {
			return 0, fmt.Errorf("%w: %q", ErrBadBoardString, s)
		}
		b |= Board(rank) << (4 * uint(n))
		n++
	}
	if n != NumSquares {
		return 0, fmt.Errorf("%w: %q", ErrBadBoardString, s)
	}
	return b, nil
}

func (b Board) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *Board) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// FromRanks packs a grid of ranks.
func FromRanks(grid [Dim][Dim]int) Board {
	var b Board
	for r := 0; r < Dim; r++ {
		b = b.WithRow(r, RowFromRanks(grid[r]))
	}
	return b
}

// Ranks unpacks the board into a grid of ranks.
func (b Board) Ranks() [Dim][Dim]int {
	var grid [Dim][Dim]int
	for r := 0; r < Dim; r++ {
		grid[r] = b.Row(r).Ranks()
	}
	return grid
}

// FromValues packs a grid of tile values (0, 2, 4, ... 32768).
func FromValues(grid [Dim][Dim]int) (Board, error) {
	var ranks [Dim][Dim]int
	for r := 0; r < Dim; r++ {
		for c := 0; c < Dim; c++ {
			v := grid[r][c]
			if v == 0 {
				continue
			}
			if v < 2 || v&(v-1) != 0 || v > 1<<MaxRank {
				return 0, fmt.Errorf("%w: got %d at (%d,%d)", ErrBadTileValue, v, r, c)
			}
			ranks[r][c] = bits.TrailingZeros(uint(v))
		}
	}
	return FromRanks(ranks), nil
}

// Values unpacks the board into a grid of tile values.
func (b Board) Values() [Dim][Dim]int {
	var grid [Dim][Dim]int
	for r := 0; r < Dim; r++ {
		for c := 0; c < Dim; c++ {
			if rank := b.Rank(r, c); rank > 0 {
				grid[r][c] = 1 << rank
			}
		}
	}
	return grid
}

// ToDisplayText renders the board as a grid of tile values.
func (b Board) ToDisplayText() string {
	var str string
	sep := "+" + strings.Repeat("------+", Dim) + "\n"
	str += sep
	for r := 0; r < Dim; r++ {
		row := "|"
		for c := 0; c < Dim; c++ {
			rank := b.Rank(r, c)
			if rank == 0 {
				row += fmt.Sprintf("%6s|", "")
			} else {
				row += fmt.Sprintf("%6d|", 1<<rank)
			}
		}
		str += row + "\n"
	}
	str += sep
	return str
}
