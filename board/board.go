// Package board holds the packed representation of a 4x4 sliding-tile board.
// Every square is a 4-bit nibble holding a rank: 0 for an empty square, and
// r for a tile with value 2^r. Square (row, col) lives at bit offset
// 4*(4*row+col), so (0,0) is the least significant nibble.
package board

import "math/bits"

const (
	// Dim is the width and height of the board.
	Dim = 4
	// NumSquares is the number of squares on the board.
	NumSquares = Dim * Dim
	// MaxRank is the largest rank a nibble can hold (a 32768 tile).
	MaxRank = 0xf

	RowMask Board = 0xFFFF
	ColMask Board = 0x000F000F000F000F
)

// Spawn distribution. The game loop draws tiles with these odds, and the
// search averages over exactly the same odds; the two must not drift apart.
const (
	SpawnLowRank  = 1
	SpawnHighRank = 2
	SpawnLowProb  = 0.9
	SpawnHighProb = 0.1
)

// Board is a full 4x4 position packed into 64 bits. It is a value type;
// every operation returns a new Board.
type Board uint64

// Row is one horizontal quartet of nibbles, square 0 in the low nibble. A
// column packed with Col uses the same layout with the top square low.
type Row uint16

// Transpose swaps rows and columns.
func (b Board) Transpose() Board {
	a1 := b & 0xF0F00F0FF0F00F0F
	a2 := b & 0x0000F0F00000F0F0
	a3 := b & 0x0F0F00000F0F0000
	a := a1 | (a2 << 12) | (a3 >> 12)
	b1 := a & 0xFF00FF0000FF00FF
	b2 := a & 0x00FF00FF00000000
	b3 := a & 0x00000000FF00FF00
	return b1 | (b2 >> 24) | (b3 << 24)
}

// ReverseRows mirrors the board left to right.
func (b Board) ReverseRows() Board {
	return ((b & 0x000F000F000F000F) << 12) |
		((b & 0x00F000F000F000F0) << 4) |
		((b & 0x0F000F000F000F00) >> 4) |
		((b & 0xF000F000F000F000) >> 12)
}

// ReverseCols mirrors the board top to bottom.
func (b Board) ReverseCols() Board {
	return (b << 48) |
		((b & 0x00000000FFFF0000) << 16) |
		((b >> 16) & 0x00000000FFFF0000) |
		(b >> 48)
}

// CountEmpty returns the number of empty squares. The nibble-folding trick
// below overflows its 4-bit counter when all 16 squares are empty, so the
// empty board is answered directly.
func (b Board) CountEmpty() int {
	if b == 0 {
		return NumSquares
	}
	x := uint64(b)
	x |= (x >> 2) & 0x3333333333333333
	x |= x >> 1
	x = ^x & 0x1111111111111111
	// each nibble is now 1 for an empty square; fold them into the low nibble
	x += x >> 32
	x += x >> 16
	x += x >> 8
	x += x >> 4
	return int(x & 0xf)
}

// Row extracts horizontal row i (0 is the top row).
func (b Board) Row(i int) Row {
	return Row((b >> (16 * uint(i))) & RowMask)
}

// Col extracts vertical column i packed as a Row, top square in the low
// nibble. It is the exact inverse of Row.UnpackCol shifted into column i.
func (b Board) Col(i int) Row {
	return b.Transpose().Row(i)
}

// WithRow returns a copy of the board with row i replaced.
func (b Board) WithRow(i int, r Row) Board {
	shift := 16 * uint(i)
	return (b &^ (RowMask << shift)) | (Board(r) << shift)
}

// WithCol returns a copy of the board with column i replaced.
func (b Board) WithCol(i int, r Row) Board {
	shift := 4 * uint(i)
	return (b &^ (ColMask << shift)) | (r.UnpackCol() << shift)
}

// Rank returns the rank at (row, col).
func (b Board) Rank(row, col int) int {
	return int((b >> (4 * uint(Dim*row+col))) & 0xf)
}

// SetRank returns a copy of the board with (row, col) set to rank.
func (b Board) SetRank(row, col, rank int) Board {
	shift := 4 * uint(Dim*row+col)
	return (b &^ (0xf << shift)) | (Board(rank&0xf) << shift)
}

// MaxRank returns the highest rank on the board.
func (b Board) MaxRank() int {
	maxrank := 0
	for b != 0 {
		if k := int(b & 0xf); k > maxrank {
			maxrank = k
		}
		b >>= 4
	}
	return maxrank
}

// DistinctTiles counts the distinct non-empty ranks on the board.
func (b Board) DistinctTiles() int {
	var seen uint16
	for b != 0 {
		seen |= 1 << (b & 0xf)
		b >>= 4
	}
	// rank 0 is not a tile
	return bits.OnesCount16(seen >> 1)
}

// Ranks unpacks the row into its four ranks, square 0 first.
func (r Row) Ranks() [Dim]int {
	return [Dim]int{
		int(r & 0xf),
		int((r >> 4) & 0xf),
		int((r >> 8) & 0xf),
		int((r >> 12) & 0xf),
	}
}

// RowFromRanks packs four ranks into a Row.
func RowFromRanks(line [Dim]int) Row {
	return Row(line[0]&0xf) | Row(line[1]&0xf)<<4 |
		Row(line[2]&0xf)<<8 | Row(line[3]&0xf)<<12
}

// Reverse mirrors the row.
func (r Row) Reverse() Row {
	return (r >> 12) | ((r >> 4) & 0x00F0) | ((r << 4) & 0x0F00) | (r << 12)
}

// UnpackCol spreads the row into column 0 of an otherwise empty board.
func (r Row) UnpackCol() Board {
	tmp := Board(r)
	return (tmp | (tmp << 12) | (tmp << 24) | (tmp << 36)) & ColMask
}
