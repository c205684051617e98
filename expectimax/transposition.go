package expectimax

import (
	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"

	"github.com/domino14/tzfe/board"
)

// entrySize is a rough per-entry cost of a map[board.Board]float64 entry,
// bucket overhead included.
const entrySize = 40

// TranspositionTable caches move-node values by board. A table belongs to
// one top-level move evaluation and is thrown away afterwards: the cached
// values are only meaningful relative to that evaluation's root depth.
//
// The board is its own key, so unlike a zobrist-hashed table there are no
// collisions to detect.
type TranspositionTable struct {
	table      map[board.Board]float64
	maxEntries int

	lookups uint64
	hits    uint64
	created uint64
	dropped uint64
}

// maxEntriesForMemory returns how many entries fit in the given fraction of
// system memory. Zero means no limit.
func maxEntriesForMemory(fractionOfMemory float64) int {
	if fractionOfMemory <= 0 {
		return 0
	}
	totalMem := memory.TotalMemory()
	if totalMem == 0 {
		log.Warn().Msg("could-not-determine-system-memory")
		return 0
	}
	n := int(fractionOfMemory * float64(totalMem) / entrySize)
	log.Debug().Int("max-entries", n).
		Uint64("total-system-memory-bytes", totalMem).
		Float64("fraction-of-memory", fractionOfMemory).
		Msg("transposition-table-budget")
	return n
}

func newTranspositionTable(maxEntries int) *TranspositionTable {
	return &TranspositionTable{
		table:      make(map[board.Board]float64),
		maxEntries: maxEntries,
	}
}

func (t *TranspositionTable) lookup(b board.Board) (float64, bool) {
	t.lookups++
	v, ok := t.table[b]
	if ok {
		t.hits++
	}
	return v, ok
}

// store overwrites any previous value. Once the table is at its entry budget
// new boards are not added; existing entries can still be updated.
func (t *TranspositionTable) store(b board.Board, v float64) {
	if t.maxEntries > 0 && len(t.table) >= t.maxEntries {
		if _, ok := t.table[b]; !ok {
			t.dropped++
			return
		}
	}
	t.table[b] = v
	t.created++
}

// Len returns the number of cached boards.
func (t *TranspositionTable) Len() int {
	return len(t.table)
}
