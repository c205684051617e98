package game

import (
	"lukechampine.com/frand"

	"github.com/domino14/tzfe/board"
)

// RandSource supplies the uniform draws behind tile spawns.
type RandSource interface {
	Intn(n int) int
}

// NewSeededSource returns a deterministic source: two games fed the same
// seed and the same moves spawn the same tiles.
func NewSeededSource(seed [32]byte) RandSource {
	return frand.NewCustom(seed[:], 1024, 12)
}

type globalSource struct{}

func (globalSource) Intn(n int) int { return frand.Intn(n) }

// RandomSource draws from the process-wide frand generator.
var RandomSource RandSource = globalSource{}

// DrawTile returns the rank of a freshly spawned tile: 1 nine times out of
// ten, 2 otherwise.
func DrawTile(rng RandSource) int {
	if rng.Intn(10) < 9 {
		return board.SpawnLowRank
	}
	return board.SpawnHighRank
}

// InsertTileRand places a tile of the given rank on an empty square chosen
// uniformly at random.
func InsertTileRand(b board.Board, rank int, rng RandSource) (board.Board, error) {
	numOpen := b.CountEmpty()
	if numOpen == 0 {
		return b, ErrNoOpenSquares
	}
	index := rng.Intn(numOpen)
	for sq := range board.NumSquares {
		if b.Rank(sq/board.Dim, sq%board.Dim) != 0 {
			continue
		}
		if index == 0 {
			return b.SetRank(sq/board.Dim, sq%board.Dim, rank), nil
		}
		index--
	}
	// unreachable: index < numOpen
	return b, ErrNoOpenSquares
}
