// Package game runs a 2048 game: it spawns tiles, applies moves, and keeps
// score. How moves are chosen is up to the caller.
package game

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/domino14/tzfe/board"
	"github.com/domino14/tzfe/move"
	"github.com/domino14/tzfe/tables"
)

var (
	ErrNoOpenSquares = errors.New("no open squares")
	ErrIllegalMove   = errors.New("move does not change the board")
	ErrGameOver      = errors.New("game is over")
)

// DrawPenalty is subtracted from the score for every rank-2 tile that
// spawns, since the player never earned the merge that makes one.
const DrawPenalty = 4

// MovePicker chooses a direction for a position. It returns false when it
// has no move to offer.
type MovePicker interface {
	PickMove(b board.Board) (move.Direction, bool)
}

// Game is the state of one game in progress.
type Game struct {
	tables *tables.Tables
	rng    RandSource

	board   board.Board
	penalty int
	turnnum int
	playing bool
	history *History
}

// NewGame creates a game. Call Start before playing.
func NewGame(t *tables.Tables, rng RandSource) *Game {
	return &Game{tables: t, rng: rng}
}

// Start clears the board and spawns the two opening tiles.
func (g *Game) Start() {
	g.board = 0
	g.penalty = 0
	g.turnnum = 0
	g.history = newHistory()
	for range 2 {
		// an empty board always has room
		g.board, _ = InsertTileRand(g.board, DrawTile(g.rng), g.rng)
	}
	g.playing = true
	log.Debug().Str("uid", g.history.UID).Str("board", g.board.String()).Msg("game-started")
}

// SetBoard replaces the position, keeping the turn count and penalty.
func (g *Game) SetBoard(b board.Board) {
	g.board = b
	if g.history == nil {
		g.history = newHistory()
	}
	g.playing = g.tables.CanMove(b)
}

func (g *Game) Board() board.Board { return g.board }

func (g *Game) Tables() *tables.Tables { return g.tables }

// Playing returns whether any move is still legal.
func (g *Game) Playing() bool { return g.playing }

// Turn is the number of accepted moves so far.
func (g *Game) Turn() int { return g.turnnum }

func (g *Game) Penalty() int { return g.penalty }

func (g *Game) History() *History { return g.history }

// Score is the board's merge score less the spawn penalty.
func (g *Game) Score() float64 {
	return g.tables.ScoreBoard(g.board) - float64(g.penalty)
}

// LegalMoves lists the directions that change the board.
func (g *Game) LegalMoves() []move.Direction {
	return g.tables.LegalMoves(g.board)
}

// PlayMove slides the board and spawns a tile. An illegal move is rejected
// and does not use up a turn.
func (g *Game) PlayMove(d move.Direction) error {
	if !g.playing {
		return ErrGameOver
	}
	nb := g.tables.ExecuteMove(d, g.board)
	if nb == g.board {
		return fmt.Errorf("%w: %s", ErrIllegalMove, d)
	}
	tile := DrawTile(g.rng)
	if tile == board.SpawnHighRank {
		g.penalty += DrawPenalty
	}
	spawned, err := InsertTileRand(nb, tile, g.rng)
	if err != nil {
		return err
	}
	g.history.Turns = append(g.history.Turns, Turn{Direction: d, Before: g.board, Spawned: tile})
	g.board = spawned
	g.turnnum++
	if !g.tables.CanMove(g.board) {
		g.playing = false
		g.finish()
	}
	return nil
}

func (g *Game) finish() {
	g.history.FinalBoard = g.board
	g.history.Score = g.Score()
	g.history.MaxRank = g.board.MaxRank()
	log.Debug().Str("uid", g.history.UID).
		Int("turns", g.turnnum).
		Float64("score", g.history.Score).
		Int("max-rank", g.history.MaxRank).
		Msg("game-over")
}

// PlayToEnd lets the picker choose every move until no move is legal or the
// picker gives up. maxTurns of 0 means no limit.
func (g *Game) PlayToEnd(p MovePicker, maxTurns int) error {
	for g.playing {
		if maxTurns > 0 && g.turnnum >= maxTurns {
			break
		}
		d, ok := p.PickMove(g.board)
		if !ok {
			g.playing = false
			g.finish()
			break
		}
		if err := g.PlayMove(d); err != nil {
			return err
		}
	}
	if g.playing {
		// stopped by the turn limit
		g.history.FinalBoard = g.board
		g.history.Score = g.Score()
		g.history.MaxRank = g.board.MaxRank()
	}
	return nil
}
