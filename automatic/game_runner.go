// Package automatic plays 2048 games without a human: one at a time through a
// GameRunner, or in batches through PlayGames.
package automatic

import (
	"github.com/rs/zerolog/log"

	"github.com/domino14/tzfe/config"
	"github.com/domino14/tzfe/expectimax"
	"github.com/domino14/tzfe/game"
	"github.com/domino14/tzfe/tables"
)

// NewSolverFromConfig builds (or reuses) the tables for the configured
// heuristic weights and returns a solver with the configured search limits.
func NewSolverFromConfig(cfg *config.Config) (*expectimax.Solver, error) {
	w, err := tables.LoadHeuristicWeights(cfg.GetString(config.ConfigHeuristicWeightsPath))
	if err != nil {
		return nil, err
	}
	s := expectimax.NewSolver(tables.Get(w))
	s.SetCprobThreshold(cfg.GetFloat64(config.ConfigCprobThresh))
	s.SetCacheDepthLimit(cfg.GetInt(config.ConfigCacheDepthLimit))
	s.SetSearchDepthLimit(cfg.GetInt(config.ConfigSearchDepthLimit))
	s.SetTTFractionOfMem(cfg.GetFloat64(config.ConfigTTFractionOfMem))
	return s, nil
}

// GameRunner plays whole games with a solver picking every move.
type GameRunner struct {
	solver   *expectimax.Solver
	logchan  chan<- *GameRecord
	maxTurns int
}

// NewGameRunner creates a runner. logchan may be nil.
func NewGameRunner(logchan chan<- *GameRecord, solver *expectimax.Solver) *GameRunner {
	return &GameRunner{solver: solver, logchan: logchan}
}

// SetMaxTurns stops every game after n moves. 0 means play to the end.
func (r *GameRunner) SetMaxTurns(n int) {
	r.maxTurns = n
}

// PlaySeededGame plays one game whose spawns come from seed.
func (r *GameRunner) PlaySeededGame(idx int, seed [32]byte) (*game.History, error) {
	g := game.NewGame(r.solver.Tables(), game.NewSeededSource(seed))
	g.Start()
	if err := g.PlayToEnd(r.solver, r.maxTurns); err != nil {
		return nil, err
	}
	h := g.History()
	log.Debug().Int("game", idx).
		Str("uid", h.UID).
		Int("turns", len(h.Turns)).
		Float64("score", h.Score).
		Int("max-rank", h.MaxRank).
		Msg("autoplay-game-finished")
	if r.logchan != nil {
		r.logchan <- newGameRecord(idx, seed, h)
	}
	return h, nil
}
