// Package expectimax searches a 2048 position by alternating a max node over
// the four slide directions and a chance node over every possible tile spawn.
package expectimax

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/domino14/tzfe/board"
	"github.com/domino14/tzfe/move"
	"github.com/domino14/tzfe/tables"
)

const (
	// CprobThreshBase is the cumulative spawn probability below which a
	// branch is no longer expanded.
	CprobThreshBase = 0.0001
	// CacheDepthLimit is the depth below which move-node values are
	// memoized.
	CacheDepthLimit = 6
	// SearchDepthLimit is the hard cap on move-node depth.
	SearchDepthLimit = 8
	// TieBreakEpsilon is added to every legal top-level result so it
	// always beats the 0 an illegal direction scores.
	TieBreakEpsilon = 1e-6
)

// Stats describes one top-level move evaluation.
type Stats struct {
	Direction   move.Direction
	Score       float64
	MovesEvaled int
	CacheHits   int
	CacheSize   int
	MaxDepth    int
	Elapsed     time.Duration
}

func (s Stats) String() string {
	return fmt.Sprintf("%-5s %.6f (moves %d, cachehits %d, cachesize %d, maxdepth %d, %v)",
		s.Direction, s.Score, s.MovesEvaled, s.CacheHits, s.CacheSize, s.MaxDepth, s.Elapsed)
}

// evalState is the scratch state of one top-level move evaluation. It is
// never shared between evaluations.
type evalState struct {
	ttable      *TranspositionTable
	cprobThresh float64
	curDepth    int
	maxDepth    int
	movesEvaled int
	cacheHits   int

	cacheDepthLimit  int
	searchDepthLimit int
}

// Solver scores moves with expectimax. The zero value is not usable; create
// one with NewSolver. A Solver holds no search state between calls, so it
// may be used from several goroutines at once.
type Solver struct {
	tables *tables.Tables

	cprobThresh      float64
	cacheDepthLimit  int
	searchDepthLimit int
	ttMaxEntries     int
}

func NewSolver(t *tables.Tables) *Solver {
	return &Solver{
		tables:           t,
		cprobThresh:      CprobThreshBase,
		cacheDepthLimit:  CacheDepthLimit,
		searchDepthLimit: SearchDepthLimit,
	}
}

func (s *Solver) Tables() *tables.Tables {
	return s.tables
}

func (s *Solver) SetCprobThreshold(t float64) {
	s.cprobThresh = t
}

func (s *Solver) SetCacheDepthLimit(d int) {
	s.cacheDepthLimit = d
}

func (s *Solver) SetSearchDepthLimit(d int) {
	s.searchDepthLimit = d
}

// SetTTFractionOfMem caps each evaluation's transposition table at the given
// fraction of system memory. Zero (the default) leaves it unbounded.
func (s *Solver) SetTTFractionOfMem(f float64) {
	s.ttMaxEntries = maxEntriesForMemory(f)
}

func (s *Solver) newEvalState() *evalState {
	return &evalState{
		ttable:           newTranspositionTable(s.ttMaxEntries),
		cprobThresh:      s.cprobThresh,
		cacheDepthLimit:  s.cacheDepthLimit,
		searchDepthLimit: s.searchDepthLimit,
	}
}

func (s *Solver) scoreMoveNode(st *evalState, b board.Board, cprob float64) float64 {
	if cprob < st.cprobThresh || st.curDepth >= st.searchDepthLimit {
		if st.curDepth > st.maxDepth {
			st.maxDepth = st.curDepth
		}
		return s.tables.ScoreHeurBoard(b)
	}

	if st.curDepth < st.cacheDepthLimit {
		if v, ok := st.ttable.lookup(b); ok {
			st.cacheHits++
			return v
		}
	}

	best := 0.0
	st.curDepth++
	for _, d := range move.Directions {
		nb := s.tables.ExecuteMove(d, b)
		st.movesEvaled++
		if nb == b {
			continue
		}
		best = max(best, s.scoreTileChooseNode(st, nb, cprob))
	}
	st.curDepth--

	if st.curDepth < st.cacheDepthLimit {
		st.ttable.store(b, best)
	}
	return best
}

func (s *Solver) scoreTileChooseNode(st *evalState, b board.Board, cprob float64) float64 {
	numOpen := b.CountEmpty()
	if numOpen == 0 {
		// A slide always leaves at least one square open.
		return 0
	}
	cprob /= float64(numOpen)

	res := 0.0
	for sq := range board.NumSquares {
		if b.Rank(sq/board.Dim, sq%board.Dim) != 0 {
			continue
		}
		lo := b.SetRank(sq/board.Dim, sq%board.Dim, board.SpawnLowRank)
		hi := b.SetRank(sq/board.Dim, sq%board.Dim, board.SpawnHighRank)
		res += s.scoreMoveNode(st, lo, cprob*board.SpawnLowProb) * board.SpawnLowProb
		res += s.scoreMoveNode(st, hi, cprob*board.SpawnHighProb) * board.SpawnHighProb
	}
	return res / float64(numOpen)
}

// ScoreTopLevelMoveWithStats scores playing d on b and reports the search
// counters. An illegal direction scores 0.
func (s *Solver) ScoreTopLevelMoveWithStats(b board.Board, d move.Direction) Stats {
	ts := time.Now()
	nb := s.tables.ExecuteMove(d, b)
	if nb == b {
		return Stats{Direction: d}
	}
	st := s.newEvalState()
	res := s.scoreTileChooseNode(st, nb, 1.0) + TieBreakEpsilon

	stats := Stats{
		Direction:   d,
		Score:       res,
		MovesEvaled: st.movesEvaled,
		CacheHits:   st.cacheHits,
		CacheSize:   st.ttable.Len(),
		MaxDepth:    st.maxDepth,
		Elapsed:     time.Since(ts),
	}
	log.Debug().
		Str("direction", d.String()).
		Float64("result", res).
		Int("moves-evaled", stats.MovesEvaled).
		Int("cache-hits", stats.CacheHits).
		Int("cache-size", stats.CacheSize).
		Int("max-depth", stats.MaxDepth).
		Uint64("tt-lookups", st.ttable.lookups).
		Uint64("tt-dropped", st.ttable.dropped).
		Dur("elapsed", stats.Elapsed).
		Msg("toplevel-move-scored")
	return stats
}

// ScoreTopLevelMove scores playing d on b. An illegal direction scores 0;
// every legal direction scores strictly more than 0.
func (s *Solver) ScoreTopLevelMove(b board.Board, d move.Direction) float64 {
	return s.ScoreTopLevelMoveWithStats(b, d).Score
}

// ScoreAllMoves scores every direction, in enumeration order.
func (s *Solver) ScoreAllMoves(b board.Board) [move.NumDirections]Stats {
	var all [move.NumDirections]Stats
	for i, d := range move.Directions {
		all[i] = s.ScoreTopLevelMoveWithStats(b, d)
	}
	return all
}

// FindBestMove returns the highest scoring direction, the earliest one on a
// tie. It returns false if no direction changes the board.
func (s *Solver) FindBestMove(b board.Board) (move.Direction, bool) {
	best := 0.0
	bestDir := move.Up
	found := false
	for _, st := range s.ScoreAllMoves(b) {
		if st.Score > best {
			best = st.Score
			bestDir = st.Direction
			found = true
		}
	}
	return bestDir, found
}

// PickMove lets a Solver drive a game.
func (s *Solver) PickMove(b board.Board) (move.Direction, bool) {
	return s.FindBestMove(b)
}
