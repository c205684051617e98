package automatic

import (
	"os"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/domino14/tzfe/config"
	"github.com/domino14/tzfe/expectimax"
)

var DefaultConfig = config.DefaultConfig()

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func fastSolver(is *is.I) *expectimax.Solver {
	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigSearchDepthLimit, 1)
	s, err := NewSolverFromConfig(cfg)
	is.NoErr(err)
	return s
}

func TestNewSolverFromConfig(t *testing.T) {
	is := is.New(t)
	s, err := NewSolverFromConfig(DefaultConfig)
	is.NoErr(err)
	is.True(s.Tables() != nil)

	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigHeuristicWeightsPath, "/nonexistent/weights.yaml")
	_, err = NewSolverFromConfig(cfg)
	is.True(err != nil)
}

func TestPlaySeededGameIsReproducible(t *testing.T) {
	is := is.New(t)
	solver := fastSolver(is)
	logchan := make(chan *GameRecord, 2)
	runner := NewGameRunner(logchan, solver)
	runner.SetMaxTurns(50)

	seed := [32]byte{0xde, 0xad, 0xbe, 0xef}
	h1, err := runner.PlaySeededGame(0, seed)
	is.NoErr(err)
	h2, err := runner.PlaySeededGame(1, seed)
	is.NoErr(err)

	is.Equal(len(h1.Turns), 50)
	is.Equal(h1.MoveString(), h2.MoveString())
	is.Equal(h1.FinalBoard, h2.FinalBoard)
	is.Equal(h1.Digest(), h2.Digest())

	rec := <-logchan
	is.Equal(rec.Game, 0)
	is.Equal(rec.Moves, h1.MoveString())
	is.Equal(rec.Turns, 50)
}
