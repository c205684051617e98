package tables

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// HeuristicWeights are the per-row bonuses summed into the heuristic table.
// A board's heuristic is the row sum over its rows and its columns, plus
// BoardOffset.
type HeuristicWeights struct {
	// EmptySquare is awarded for every empty square.
	EmptySquare float64 `yaml:"empty-square"`
	// MaxAtEdge is awarded when the row's highest rank sits at either end.
	MaxAtEdge float64 `yaml:"max-at-edge"`
	// AdjacentStep is awarded for every neighbouring pair one rank apart.
	AdjacentStep float64 `yaml:"adjacent-step"`
	// Monotonic is awarded when the row is strictly ascending or descending.
	Monotonic float64 `yaml:"monotonic"`
	// BoardOffset is added once per board.
	BoardOffset float64 `yaml:"board-offset"`
}

// DefaultHeuristicWeights returns the stock weights.
func DefaultHeuristicWeights() HeuristicWeights {
	return HeuristicWeights{
		EmptySquare:  10000,
		MaxAtEdge:    20000,
		AdjacentStep: 1000,
		Monotonic:    10000,
		BoardOffset:  100000,
	}
}

// LoadHeuristicWeights reads weights from a yaml file. Keys missing from the
// file keep their default value.
func LoadHeuristicWeights(path string) (HeuristicWeights, error) {
	w := DefaultHeuristicWeights()
	if path == "" {
		return w, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return w, fmt.Errorf("reading heuristic weights: %w", err)
	}
	if err := yaml.Unmarshal(data, &w); err != nil {
		return w, fmt.Errorf("parsing heuristic weights %s: %w", path, err)
	}
	return w, nil
}

// key identifies a weight set in the object cache.
func (w HeuristicWeights) key() string {
	return fmt.Sprintf("tables:%g:%g:%g:%g:%g", w.EmptySquare, w.MaxAtEdge,
		w.AdjacentStep, w.Monotonic, w.BoardOffset)
}

// rowHeuristic scores one row under the given weights. Empty squares earn
// only EmptySquare: they never form a step pair, they break monotonicity,
// and an empty row has no max tile. Every tile of the top rank counts for
// MaxAtEdge, so [1,3,0,3] has its max at an edge.
func rowHeuristic(line [4]int, w HeuristicWeights) float64 {
	score := 0.0
	top := 0
	for _, rank := range line {
		if rank == 0 {
			score += w.EmptySquare
		}
		top = max(top, rank)
	}
	if top > 0 && (line[0] == top || line[3] == top) {
		score += w.MaxAtEdge
	}
	for i := 0; i < 3; i++ {
		a, b := line[i], line[i+1]
		if a != 0 && b != 0 && (a == b+1 || a+1 == b) {
			score += w.AdjacentStep
		}
	}
	if line[0] == 0 || line[1] == 0 || line[2] == 0 || line[3] == 0 {
		return score
	}
	if line[0] < line[1] && line[1] < line[2] && line[2] < line[3] {
		score += w.Monotonic
	}
	if line[0] > line[1] && line[1] > line[2] && line[2] > line[3] {
		score += w.Monotonic
	}
	return score
}

// rowScore is the game score a row stands for: every tile of rank r >= 2 was
// built by merges worth (r-1) * 2^r in total.
func rowScore(line [4]int) float64 {
	score := 0.0
	for _, rank := range line {
		if rank >= 2 {
			score += float64((rank - 1) * (1 << rank))
		}
	}
	return score
}
