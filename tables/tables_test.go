package tables

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
	"lukechampine.com/frand"

	"github.com/domino14/tzfe/board"
	"github.com/domino14/tzfe/move"
)

var testTables *Tables

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	testTables = New(DefaultHeuristicWeights())
	os.Exit(m.Run())
}

func randomBoards(n int) []board.Board {
	rng := frand.NewCustom([]byte("0123456789abcdef0123456789abcdef"), 1024, 12)
	boards := make([]board.Board, n)
	for i := range boards {
		var b board.Board
		for sq := 0; sq < board.NumSquares; sq++ {
			// keep roughly a third of the squares empty
			if rng.Intn(3) == 0 {
				continue
			}
			b |= board.Board(1+rng.Intn(15)) << (4 * uint(sq))
		}
		boards[i] = b
	}
	return boards
}

// slideLine is a plain reference implementation of one leftward slide.
func slideLine(line [4]int) [4]int {
	var tiles []int
	for _, r := range line {
		if r != 0 {
			tiles = append(tiles, r)
		}
	}
	var out [4]int
	o := 0
	for i := 0; i < len(tiles); {
		if i+1 < len(tiles) && tiles[i] == tiles[i+1] && tiles[i] != board.MaxRank {
			out[o] = tiles[i] + 1
			i += 2
		} else {
			out[o] = tiles[i]
			i++
		}
		o++
	}
	return out
}

// slideBoard slides every line of the board toward d, square by square.
func slideBoard(d move.Direction, b board.Board) board.Board {
	grid := b.Ranks()
	for k := 0; k < board.Dim; k++ {
		var line [4]int
		for i := 0; i < board.Dim; i++ {
			switch d {
			case move.Left:
				line[i] = grid[k][i]
			case move.Right:
				line[i] = grid[k][3-i]
			case move.Up:
				line[i] = grid[i][k]
			case move.Down:
				line[i] = grid[3-i][k]
			}
		}
		out := slideLine(line)
		for i := 0; i < board.Dim; i++ {
			switch d {
			case move.Left:
				grid[k][i] = out[i]
			case move.Right:
				grid[k][3-i] = out[i]
			case move.Up:
				grid[i][k] = out[i]
			case move.Down:
				grid[3-i][k] = out[i]
			}
		}
	}
	return board.FromRanks(grid)
}

func slideRow(t *Tables, line [4]int) [4]int {
	r := board.RowFromRanks(line)
	return (r ^ t.LeftDelta(r)).Ranks()
}

func TestSlideRows(t *testing.T) {
	is := is.New(t)
	cases := []struct {
		in, out [4]int
	}{
		{[4]int{1, 1, 0, 0}, [4]int{2, 0, 0, 0}},
		{[4]int{1, 0, 1, 0}, [4]int{2, 0, 0, 0}},
		{[4]int{0, 0, 0, 1}, [4]int{1, 0, 0, 0}},
		{[4]int{1, 1, 1, 1}, [4]int{2, 2, 0, 0}},
		{[4]int{2, 1, 1, 0}, [4]int{2, 2, 0, 0}},
		{[4]int{1, 1, 2, 0}, [4]int{2, 2, 0, 0}},
		{[4]int{3, 0, 3, 3}, [4]int{4, 3, 0, 0}},
		{[4]int{1, 2, 3, 4}, [4]int{1, 2, 3, 4}},
		{[4]int{15, 15, 15, 15}, [4]int{15, 15, 15, 15}},
		{[4]int{0, 15, 0, 15}, [4]int{15, 15, 0, 0}},
		{[4]int{14, 14, 15, 15}, [4]int{15, 15, 15, 0}},
		{[4]int{0, 0, 0, 0}, [4]int{0, 0, 0, 0}},
	}
	for _, c := range cases {
		is.Equal(slideRow(testTables, c.in), c.out)
	}
}

func TestEveryRowMatchesReference(t *testing.T) {
	is := is.New(t)
	for r := 0; r < 1<<16; r++ {
		row := board.Row(r)
		is.Equal((row ^ testTables.LeftDelta(row)).Ranks(), slideLine(row.Ranks()))
	}
}

func TestExecuteMoveMatchesLiteralSlide(t *testing.T) {
	is := is.New(t)
	for _, b := range randomBoards(2000) {
		for _, d := range move.Directions {
			is.Equal(testTables.ExecuteMove(d, b), slideBoard(d, b))
		}
	}
}

func TestExecuteMoveTransformIdentities(t *testing.T) {
	is := is.New(t)
	tb := testTables
	for _, b := range randomBoards(2000) {
		left := func(x board.Board) board.Board { return tb.ExecuteMove(move.Left, x) }
		is.Equal(tb.ExecuteMove(move.Right, b), left(b.ReverseRows()).ReverseRows())
		is.Equal(tb.ExecuteMove(move.Up, b), left(b.Transpose()).Transpose())
		is.Equal(tb.ExecuteMove(move.Down, b),
			left(b.ReverseCols().Transpose()).Transpose().ReverseCols())
	}
}

func TestIllegalMoveIsIdempotent(t *testing.T) {
	is := is.New(t)
	noops := 0
	for _, b := range randomBoards(2000) {
		for _, d := range move.Directions {
			once := testTables.ExecuteMove(d, b)
			if once != b {
				continue
			}
			noops++
			is.Equal(testTables.ExecuteMove(d, once), once)
		}
	}
	is.True(noops > 0)
}

func TestLegalMoves(t *testing.T) {
	is := is.New(t)
	blocked := board.FromRanks([4][4]int{
		{1, 2, 1, 2},
		{2, 1, 2, 1},
		{1, 2, 1, 2},
		{2, 1, 2, 1},
	})
	is.Equal(len(testTables.LegalMoves(blocked)), 0)
	is.True(!testTables.CanMove(blocked))

	onlyRight := board.FromRanks([4][4]int{
		{1, 2, 1, 0},
		{2, 1, 2, 0},
		{1, 2, 1, 0},
		{2, 1, 2, 0},
	})
	is.Equal(testTables.LegalMoves(onlyRight), []move.Direction{move.Right})
	is.Equal(testTables.ExecuteMove(move.Direction(9), onlyRight), onlyRight)
}

func TestScoreBoard(t *testing.T) {
	is := is.New(t)
	b := board.FromRanks([4][4]int{{2, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 3, 0}})
	is.Equal(testTables.ScoreBoard(b), 20.0)
	// empty squares do not count
	b = board.FromRanks([4][4]int{{2, 1, 1, 1}, {1, 1, 1, 1}, {1, 1, 3, 1}, {1, 1, 1, 1}})
	is.Equal(testTables.ScoreBoard(b), 20.0)
	is.Equal(testTables.ScoreBoard(0), 0.0)
	// a 2048 tile took 10 * 2048 points of merges
	is.Equal(testTables.RowScore(board.RowFromRanks([4]int{11})), 20480.0)
}

func TestRowHeuristic(t *testing.T) {
	is := is.New(t)
	cases := []struct {
		line [4]int
		heur float64
	}{
		{[4]int{0, 0, 0, 0}, 40000},
		{[4]int{1, 2, 3, 4}, 33000},
		{[4]int{4, 3, 2, 1}, 33000},
		{[4]int{1, 3, 2, 0}, 11000},
		{[4]int{5, 5, 5, 5}, 20000},
		{[4]int{0, 9, 0, 0}, 30000},
		// empties never pair up with a tile for a step
		{[4]int{0, 1, 0, 0}, 30000},
		{[4]int{2, 1, 0, 0}, 41000},
		{[4]int{3, 0, 0, 1}, 40000},
		// an empty square breaks monotonicity
		{[4]int{0, 1, 2, 3}, 32000},
		{[4]int{3, 2, 1, 0}, 32000},
		// any max tile at an end counts, not just the first one
		{[4]int{1, 3, 0, 3}, 30000},
		{[4]int{3, 0, 1, 3}, 30000},
	}
	for _, c := range cases {
		is.Equal(testTables.RowHeuristic(board.RowFromRanks(c.line)), c.heur)
	}
}

func TestScoreHeurBoard(t *testing.T) {
	is := is.New(t)
	is.Equal(testTables.ScoreHeurBoard(0), 8*40000.0+100000)
	for _, b := range randomBoards(200) {
		// rows and columns both count, so transposing changes nothing
		is.Equal(testTables.ScoreHeurBoard(b), testTables.ScoreHeurBoard(b.Transpose()))
	}
}

func TestGetSharesTables(t *testing.T) {
	is := is.New(t)
	w := DefaultHeuristicWeights()
	t1 := Get(w)
	t2 := Get(w)
	is.True(t1 == t2)
	w.Monotonic = 1
	t3 := Get(w)
	is.True(t3 != t1)
	is.Equal(t3.Weights().Monotonic, 1.0)
}

func TestLoadHeuristicWeights(t *testing.T) {
	is := is.New(t)
	path := filepath.Join(t.TempDir(), "weights.yaml")
	is.NoErr(os.WriteFile(path, []byte("monotonic: 2500\nboard-offset: 0\n"), 0o644))
	w, err := LoadHeuristicWeights(path)
	is.NoErr(err)
	is.Equal(w.Monotonic, 2500.0)
	is.Equal(w.BoardOffset, 0.0)
	is.Equal(w.EmptySquare, 10000.0)

	w, err = LoadHeuristicWeights("")
	is.NoErr(err)
	is.Equal(w, DefaultHeuristicWeights())

	_, err = LoadHeuristicWeights(filepath.Join(t.TempDir(), "missing.yaml"))
	is.True(err != nil)
}

func BenchmarkExecuteMove(b *testing.B) {
	boards := randomBoards(1024)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bd := boards[i&1023]
		for _, d := range move.Directions {
			testTables.ExecuteMove(d, bd)
		}
	}
}
