// Package tables precomputes, for every one of the 65536 possible rows, the
// effect of sliding that row and what the row is worth. With these tables a
// move is four lookups and XORs, and scoring a board is eight lookups.
//
// A Tables value is built once and is read-only afterwards, so it may be
// shared by any number of concurrent searches.
package tables

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/domino14/tzfe/board"
	"github.com/domino14/tzfe/cache"
	"github.com/domino14/tzfe/move"
)

const numRows = 1 << 16

// Tables holds the move and score tables.
//
// Move tables store old^new rather than new, so a move is applied by XORing
// the looked-up delta into the board; a zero delta means the row did not
// change. rowLeft is the source of truth; the other three are derived from it
// while the tables are built.
type Tables struct {
	rowLeft  [numRows]board.Row
	rowRight [numRows]board.Row
	colUp    [numRows]board.Board
	colDown  [numRows]board.Board

	score [numRows]float64
	heur  [numRows]float64

	weights HeuristicWeights
}

// New builds tables with the given heuristic weights.
func New(w HeuristicWeights) *Tables {
	st := time.Now()
	t := &Tables{weights: w}
	for r := 0; r < numRows; r++ {
		row := board.Row(r)
		line := row.Ranks()

		t.score[row] = rowScore(line)
		t.heur[row] = rowHeuristic(line, w)

		result := slideLeft(line)
		revRow := row.Reverse()
		revResult := result.Reverse()

		t.rowLeft[row] = row ^ result
		t.rowRight[revRow] = revRow ^ revResult
		t.colUp[row] = row.UnpackCol() ^ result.UnpackCol()
		t.colDown[revRow] = revRow.UnpackCol() ^ revResult.UnpackCol()
	}
	log.Debug().Dur("elapsed", time.Since(st)).Msg("built-move-and-score-tables")
	return t
}

// Get returns the process-wide tables for the given weights, building them
// on first use. Calling it again is cheap.
func Get(w HeuristicWeights) *Tables {
	obj, _ := cache.Load(w.key(), func(string) (any, error) {
		return New(w), nil
	})
	return obj.(*Tables)
}

// Weights returns the heuristic weights the tables were built with.
func (t *Tables) Weights() HeuristicWeights {
	return t.weights
}

// slideLeft slides and merges one row to the left. Each tile merges at most
// once per move, and two tiles of MaxRank never merge, so a nibble can never
// overflow.
func slideLeft(line [4]int) board.Row {
	for i := 0; i < 3; i++ {
		j := i + 1
		for ; j < 4; j++ {
			if line[j] != 0 {
				break
			}
		}
		if j == 4 {
			// nothing left to pull in from the right
			break
		}
		if line[i] == 0 {
			line[i] = line[j]
			line[j] = 0
			i-- // look at this square again
		} else if line[i] == line[j] && line[i] != board.MaxRank {
			line[i]++
			line[j] = 0
		}
	}
	return board.RowFromRanks(line)
}

// LeftDelta returns old^new for sliding the given row left.
func (t *Tables) LeftDelta(r board.Row) board.Row {
	return t.rowLeft[r]
}

func (t *Tables) moveLeft(b board.Board) board.Board {
	ret := b
	ret ^= board.Board(t.rowLeft[(b>>0)&board.RowMask]) << 0
	ret ^= board.Board(t.rowLeft[(b>>16)&board.RowMask]) << 16
	ret ^= board.Board(t.rowLeft[(b>>32)&board.RowMask]) << 32
	ret ^= board.Board(t.rowLeft[(b>>48)&board.RowMask]) << 48
	return ret
}

func (t *Tables) moveRight(b board.Board) board.Board {
	ret := b
	ret ^= board.Board(t.rowRight[(b>>0)&board.RowMask]) << 0
	ret ^= board.Board(t.rowRight[(b>>16)&board.RowMask]) << 16
	ret ^= board.Board(t.rowRight[(b>>32)&board.RowMask]) << 32
	ret ^= board.Board(t.rowRight[(b>>48)&board.RowMask]) << 48
	return ret
}

// moveUp and moveDown read columns out of the transposed board; row i of
// the transpose is column i of the board, top square first.
func (t *Tables) moveUp(b board.Board) board.Board {
	ret := b
	tr := b.Transpose()
	ret ^= t.colUp[(tr>>0)&board.RowMask] << 0
	ret ^= t.colUp[(tr>>16)&board.RowMask] << 4
	ret ^= t.colUp[(tr>>32)&board.RowMask] << 8
	ret ^= t.colUp[(tr>>48)&board.RowMask] << 12
	return ret
}

func (t *Tables) moveDown(b board.Board) board.Board {
	ret := b
	tr := b.Transpose()
	ret ^= t.colDown[(tr>>0)&board.RowMask] << 0
	ret ^= t.colDown[(tr>>16)&board.RowMask] << 4
	ret ^= t.colDown[(tr>>32)&board.RowMask] << 8
	ret ^= t.colDown[(tr>>48)&board.RowMask] << 12
	return ret
}

// ExecuteMove slides the board in direction d. A move that changes nothing
// returns the input unchanged; that is the only signal that d is illegal.
// An unknown direction also returns the board unchanged.
func (t *Tables) ExecuteMove(d move.Direction, b board.Board) board.Board {
	switch d {
	case move.Up:
		return t.moveUp(b)
	case move.Down:
		return t.moveDown(b)
	case move.Left:
		return t.moveLeft(b)
	case move.Right:
		return t.moveRight(b)
	}
	return b
}

// LegalMoves returns the directions that change the board, in enumeration
// order.
func (t *Tables) LegalMoves(b board.Board) []move.Direction {
	moves := make([]move.Direction, 0, move.NumDirections)
	for _, d := range move.Directions {
		if t.ExecuteMove(d, b) != b {
			moves = append(moves, d)
		}
	}
	return moves
}

// CanMove reports whether any direction changes the board.
func (t *Tables) CanMove(b board.Board) bool {
	for _, d := range move.Directions {
		if t.ExecuteMove(d, b) != b {
			return true
		}
	}
	return false
}

func sumRows(b board.Board, tbl *[numRows]float64) float64 {
	return tbl[(b>>0)&board.RowMask] +
		tbl[(b>>16)&board.RowMask] +
		tbl[(b>>32)&board.RowMask] +
		tbl[(b>>48)&board.RowMask]
}

// ScoreBoard returns the score the tiles on the board were worth to build.
// Tiles that spawned as a 4 were free; the game loop subtracts those.
func (t *Tables) ScoreBoard(b board.Board) float64 {
	return sumRows(b, &t.score)
}

// ScoreHeurBoard returns the static evaluation used at search leaves: the
// per-row heuristic summed over rows and over columns, plus a constant.
func (t *Tables) ScoreHeurBoard(b board.Board) float64 {
	return sumRows(b, &t.heur) + sumRows(b.Transpose(), &t.heur) + t.weights.BoardOffset
}

// RowScore and RowHeuristic expose single table entries.
func (t *Tables) RowScore(r board.Row) float64 {
	return t.score[r]
}

func (t *Tables) RowHeuristic(r board.Row) float64 {
	return t.heur[r]
}
