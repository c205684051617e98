package game

import (
	"encoding/binary"

	"github.com/cespare/xxhash"
	"github.com/google/uuid"

	"github.com/domino14/tzfe/board"
	"github.com/domino14/tzfe/move"
)

// Turn records one accepted move and the tile that spawned after it.
type Turn struct {
	Direction move.Direction `yaml:"direction"`
	Before    board.Board    `yaml:"before"`
	Spawned   int            `yaml:"spawned"`
}

// History is the record of one game.
type History struct {
	UID        string      `yaml:"uid"`
	Turns      []Turn      `yaml:"turns"`
	FinalBoard board.Board `yaml:"final_board"`
	Score      float64     `yaml:"score"`
	MaxRank    int         `yaml:"max_rank"`
}

func newHistory() *History {
	return &History{UID: uuid.NewString()}
}

// Moves returns the accepted directions in play order.
func (h *History) Moves() []move.Direction {
	moves := make([]move.Direction, len(h.Turns))
	for i, t := range h.Turns {
		moves[i] = t.Direction
	}
	return moves
}

// MoveString renders the accepted directions as a string of UDLR letters.
func (h *History) MoveString() string {
	bts := make([]byte, len(h.Turns))
	for i, t := range h.Turns {
		bts[i] = t.Direction.Letter()[0]
	}
	return string(bts)
}

// Digest fingerprints the sequence of positions and moves. Two replays of the
// same seed with the same engine have equal digests.
func (h *History) Digest() uint64 {
	d := xxhash.New()
	var buf [9]byte
	for _, t := range h.Turns {
		binary.LittleEndian.PutUint64(buf[:8], uint64(t.Before))
		buf[8] = byte(t.Direction)
		d.Write(buf[:])
	}
	binary.LittleEndian.PutUint64(buf[:8], uint64(h.FinalBoard))
	d.Write(buf[:8])
	return d.Sum64()
}
