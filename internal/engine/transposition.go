package engine

import (
	"github.com/hailam/chesscore/internal/board"
)

// Bound says how a stored score relates to the true value of the node.
type Bound uint8

const (
	BoundExact Bound = iota // score is the value
	BoundLower              // failed high: value >= score
	BoundUpper              // failed low: value <= score
)

func (b Bound) String() string {
	switch b {
	case BoundExact:
		return "exact"
	case BoundLower:
		return "lower"
	}
	return "upper"
}

// TTEntry is one slot of the transposition table.
type TTEntry struct {
	Key   uint64
	Move  board.Move
	Score int16
	Depth int8
	Bound Bound
	Age   uint8
}

const ttEntrySize = 24

// TranspositionTable caches search results by Zobrist key in a fixed number
// of slots, one entry per slot.
//
// A slot is chosen by the low bits of the key and the full key is checked on
// probe, so two positions collide only if their 64-bit keys are equal. Such a
// collision returns another position's score and move; the move is always
// re-checked against the legal moves before use, but the score is trusted.
// At 64 bits this is rare enough to accept.
//
// The table is not safe for concurrent use; the engine searches on one
// goroutine.
type TranspositionTable struct {
	entries []TTEntry
	mask    uint64
	age     uint8

	probes, hits uint64
}

// NewTranspositionTable allocates a table of about sizeMB megabytes, rounded
// down to a power-of-two number of entries.
func NewTranspositionTable(sizeMB int) *TranspositionTable {
	if sizeMB < 1 {
		sizeMB = 1
	}
	n := uint64(1)
	for n*2*ttEntrySize <= uint64(sizeMB)<<20 {
		n *= 2
	}
	return &TranspositionTable{entries: make([]TTEntry, n), mask: n - 1}
}

// Probe returns the entry stored for key, if any.
func (tt *TranspositionTable) Probe(key uint64) (TTEntry, bool) {
	tt.probes++
	e := tt.entries[key&tt.mask]
	if e.Depth > 0 && e.Key == key {
		tt.hits++
		return e, true
	}
	return TTEntry{}, false
}

// Store records a result with depth-preferred replacement. An entry for the
// same key is replaced only by one of equal or greater depth. An entry for a
// different key is replaced if it is from an earlier search or no deeper
// than the new one.
func (tt *TranspositionTable) Store(key uint64, depth, score int, bound Bound, move board.Move) {
	if depth <= 0 {
		return
	}
	e := &tt.entries[key&tt.mask]
	if e.Depth > 0 {
		if e.Key == key && depth < int(e.Depth) {
			return
		}
		if e.Key != key && e.Age == tt.age && depth < int(e.Depth) {
			return
		}
	}
	if depth > 127 {
		depth = 127
	}
	*e = TTEntry{Key: key, Move: move, Score: int16(score), Depth: int8(depth), Bound: bound, Age: tt.age}
}

// NewSearch ages existing entries so they become replaceable.
func (tt *TranspositionTable) NewSearch() {
	tt.age++
}

// Clear empties the table.
func (tt *TranspositionTable) Clear() {
	clear(tt.entries)
	tt.age = 0
	tt.probes, tt.hits = 0, 0
}

// HashFull returns the permille of a sample of slots filled in the current search.
func (tt *TranspositionTable) HashFull() int {
	n := min(1000, len(tt.entries))
	used := 0
	for i := 0; i < n; i++ {
		if tt.entries[i].Depth > 0 && tt.entries[i].Age == tt.age {
			used++
		}
	}
	return used * 1000 / n
}

// HitRate returns probe hits as a percentage.
func (tt *TranspositionTable) HitRate() float64 {
	if tt.probes == 0 {
		return 0
	}
	return float64(tt.hits) / float64(tt.probes) * 100
}

// Len returns the number of slots.
func (tt *TranspositionTable) Len() int {
	return len(tt.entries)
}

// scoreToTT makes mate scores relative to the node being stored.
func scoreToTT(score, ply int) int {
	switch {
	case score > MateScore-MaxPly:
		return score + ply
	case score < -MateScore+MaxPly:
		return score - ply
	}
	return score
}

// scoreFromTT converts a stored mate score back to distance from the root.
func scoreFromTT(score, ply int) int {
	switch {
	case score > MateScore-MaxPly:
		return score - ply
	case score < -MateScore+MaxPly:
		return score + ply
	}
	return score
}
