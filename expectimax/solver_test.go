package expectimax

import (
	"os"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/domino14/tzfe/board"
	"github.com/domino14/tzfe/move"
	"github.com/domino14/tzfe/tables"
)

var testTables *tables.Tables

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	testTables = tables.Get(tables.DefaultHeuristicWeights())
	os.Exit(m.Run())
}

var (
	blockedBoard = board.FromRanks([board.Dim][board.Dim]int{
		{1, 2, 1, 2},
		{2, 1, 2, 1},
		{1, 2, 1, 2},
		{2, 1, 2, 1},
	})
	onlyRightBoard = board.FromRanks([board.Dim][board.Dim]int{
		{1, 2, 1, 0},
		{2, 1, 2, 0},
		{1, 2, 1, 0},
		{2, 1, 2, 0},
	})
	openingBoard = board.FromRanks([board.Dim][board.Dim]int{
		{0, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 0, 2},
		{0, 0, 0, 0},
	})
)

func shallowSolver() *Solver {
	s := NewSolver(testTables)
	s.SetSearchDepthLimit(3)
	return s
}

func TestFindBestMoveOnlyLegalDirection(t *testing.T) {
	is := is.New(t)
	s := NewSolver(testTables)
	d, ok := s.FindBestMove(onlyRightBoard)
	is.True(ok)
	is.Equal(d, move.Right)
}

func TestFindBestMoveBlocked(t *testing.T) {
	is := is.New(t)
	s := NewSolver(testTables)
	_, ok := s.FindBestMove(blockedBoard)
	is.True(!ok)
}

func TestIllegalDirectionScoresZero(t *testing.T) {
	is := is.New(t)
	s := shallowSolver()
	scores := s.ScoreAllMoves(onlyRightBoard)
	for _, st := range scores {
		if st.Direction == move.Right {
			is.True(st.Score > 0)
			is.True(st.MovesEvaled > 0)
			continue
		}
		is.Equal(st.Score, 0.0)
		is.Equal(st.MovesEvaled, 0)
	}
}

// A move node with no legal move is worth nothing, while the same board cut
// off by depth or probability is worth its heuristic.
func TestDeadBoardScoresZeroUnlessCutOff(t *testing.T) {
	is := is.New(t)
	s := NewSolver(testTables)

	st := s.newEvalState()
	is.Equal(s.scoreMoveNode(st, blockedBoard, 1.0), 0.0)
	is.Equal(st.curDepth, 0)
	is.Equal(st.movesEvaled, 4)

	heur := testTables.ScoreHeurBoard(blockedBoard)
	is.True(heur > 0)

	st = s.newEvalState()
	is.Equal(s.scoreMoveNode(st, blockedBoard, CprobThreshBase/2), heur)

	st = s.newEvalState()
	st.curDepth = SearchDepthLimit
	is.Equal(s.scoreMoveNode(st, blockedBoard, 1.0), heur)
	is.Equal(st.maxDepth, SearchDepthLimit)
}

func TestTileChooseNodeAveragesSpawns(t *testing.T) {
	is := is.New(t)
	s := NewSolver(testTables)
	s.SetSearchDepthLimit(0)

	// one open square at (3,3)
	b := board.FromRanks([board.Dim][board.Dim]int{
		{1, 2, 1, 2},
		{2, 1, 2, 1},
		{1, 2, 1, 2},
		{2, 1, 2, 0},
	})
	lo := b.SetRank(3, 3, 1)
	hi := b.SetRank(3, 3, 2)
	expected := testTables.ScoreHeurBoard(lo)*0.9 + testTables.ScoreHeurBoard(hi)*0.1

	st := s.newEvalState()
	is.Equal(s.scoreTileChooseNode(st, b, 1.0), expected)

	// the same mass split over two squares
	b2 := b.SetRank(0, 0, 0)
	st = s.newEvalState()
	got := s.scoreTileChooseNode(st, b2, 1.0)
	var sum float64
	for _, sq := range [][2]int{{0, 0}, {3, 3}} {
		sum += testTables.ScoreHeurBoard(b2.SetRank(sq[0], sq[1], 1)) * 0.9
		sum += testTables.ScoreHeurBoard(b2.SetRank(sq[0], sq[1], 2)) * 0.1
	}
	is.Equal(got, sum/2)
}

func TestEveryLegalMoveBeatsEpsilon(t *testing.T) {
	is := is.New(t)
	s := shallowSolver()
	for _, d := range testTables.LegalMoves(openingBoard) {
		is.True(s.ScoreTopLevelMove(openingBoard, d) >= TieBreakEpsilon)
	}
}

func TestCacheIsPerCall(t *testing.T) {
	is := is.New(t)
	s := shallowSolver()
	first := s.ScoreTopLevelMoveWithStats(openingBoard, move.Left)
	second := s.ScoreTopLevelMoveWithStats(openingBoard, move.Left)
	is.True(first.CacheSize > 0)
	// nothing carries over from the first call
	is.Equal(first.Score, second.Score)
	is.Equal(first.CacheHits, second.CacheHits)
	is.Equal(first.CacheSize, second.CacheSize)
	is.Equal(first.MovesEvaled, second.MovesEvaled)
}

func TestCacheDepthLimitDisablesCache(t *testing.T) {
	is := is.New(t)
	s := shallowSolver()
	cached := s.ScoreTopLevelMoveWithStats(openingBoard, move.Down)

	s.SetCacheDepthLimit(0)
	uncached := s.ScoreTopLevelMoveWithStats(openingBoard, move.Down)
	is.Equal(uncached.CacheSize, 0)
	is.Equal(uncached.CacheHits, 0)
	// cutoffs depend only on the path, so a cache can only skip work
	is.True(uncached.MovesEvaled >= cached.MovesEvaled)
	is.True(uncached.Score > 0)
}

func TestFindBestMoveDeterministic(t *testing.T) {
	is := is.New(t)
	s := shallowSolver()
	d1, ok1 := s.FindBestMove(openingBoard)
	d2, ok2 := s.FindBestMove(openingBoard)
	is.True(ok1)
	is.Equal(ok1, ok2)
	is.Equal(d1, d2)
}

func TestTranspositionTableBudget(t *testing.T) {
	is := is.New(t)
	tt := newTranspositionTable(2)
	tt.store(1, 1.5)
	tt.store(2, 2.5)
	tt.store(3, 3.5)
	is.Equal(tt.Len(), 2)
	is.Equal(tt.dropped, uint64(1))

	// updates to existing boards still land
	tt.store(2, 4.0)
	v, ok := tt.lookup(2)
	is.True(ok)
	is.Equal(v, 4.0)

	_, ok = tt.lookup(3)
	is.True(!ok)
	is.Equal(tt.lookups, uint64(2))
	is.Equal(tt.hits, uint64(1))
}

func BenchmarkFindBestMove(b *testing.B) {
	s := NewSolver(testTables)
	for i := 0; i < b.N; i++ {
		s.FindBestMove(openingBoard)
	}
}
