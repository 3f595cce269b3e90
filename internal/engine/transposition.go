package engine

import (
	"math/bits"

	"github.com/hailam/chessplay/internal/board"
)

// TTFlag indicates the type of bound stored in the transposition table.
type TTFlag uint8

const (
	TTExact      TTFlag = iota // Exact score
	TTLowerBound               // Failed high (beta cutoff)
	TTUpperBound               // Failed low
)

const ttAgeMask = 0x7F // 7-bit age counter, wraps at 128

// TTEntry represents an entry in the transposition table.
type TTEntry struct {
	Key      uint64     // Full Zobrist hash for verification
	BestMove board.Move // Best move found
	Score    int16      // Score (bounded by flag)
	Depth    int8       // Search depth
	Flag     TTFlag     // Type of bound
	PV       bool       // Entry was stored from a PV node
	Age      uint8      // Generation for replacement (7-bit, wraps)
}

// TranspositionTable is a hash table for storing search results. Slot
// selection uses Lemire's fast-range reduction instead of a power-of-two
// mask, so any requested size maps to a slot count without wasting memory
// rounding up to the next power of two.
type TranspositionTable struct {
	entries []TTEntry
	size    uint64
	age     uint8

	// Statistics
	hits   uint64
	probes uint64
}

// NewTranspositionTable creates a transposition table with the given size in MB.
func NewTranspositionTable(sizeMB int) *TranspositionTable {
	entrySize := uint64(16) // size of TTEntry including padding
	numEntries := (uint64(sizeMB) * 1024 * 1024) / entrySize
	if numEntries == 0 {
		numEntries = 1
	}

	return &TranspositionTable{
		entries: make([]TTEntry, numEntries),
		size:    numEntries,
	}
}

// index maps a 64-bit hash onto [0, len) via Lemire fast-range reduction:
// the high 64 bits of the 128-bit product hash*len are a uniform value
// in [0, len) without the modulo bias or power-of-two restriction of a
// mask-based scheme.
func (tt *TranspositionTable) index(hash uint64) uint64 {
	hi, _ := bits.Mul64(hash, tt.size)
	return hi
}

// Probe looks up a position in the transposition table.
// Returns the entry and true if found, otherwise returns empty entry and false.
func (tt *TranspositionTable) Probe(hash uint64) (TTEntry, bool) {
	tt.probes++

	idx := tt.index(hash)
	entry := tt.entries[idx]

	if entry.Key == hash {
		tt.hits++
		return entry, true
	}

	return TTEntry{}, false
}

// Store saves a position in the transposition table. The slot is
// overwritten when the generation differs, the key differs (a collision
// with an unrelated position), the new bound is exact (highest-quality
// data), or the new depth plus 4 (plus 2 more when storing from a PV node)
// exceeds the depth already stored.
// A NULL best move never displaces a previously remembered one for the
// same key.
func (tt *TranspositionTable) Store(hash uint64, depth int, score int, flag TTFlag, bestMove board.Move, pv bool) {
	idx := tt.index(hash)
	entry := &tt.entries[idx]

	pvBonus := 0
	if pv {
		pvBonus = 2
	}
	replace := entry.Age != tt.age ||
		entry.Key != hash ||
		flag == TTExact ||
		depth+4+pvBonus > int(entry.Depth)

	if !replace {
		return
	}

	if bestMove == board.NoMove && entry.Key == hash {
		bestMove = entry.BestMove
	}

	entry.Key = hash
	entry.BestMove = bestMove
	entry.Score = int16(score)
	entry.Depth = int8(depth)
	entry.Flag = flag
	entry.PV = pv
	entry.Age = tt.age
}

// NewSearch advances the age counter for a new search, wrapping at 128.
func (tt *TranspositionTable) NewSearch() {
	tt.age = (tt.age + 1) & ttAgeMask
}

// Clear clears the transposition table.
func (tt *TranspositionTable) Clear() {
	for i := range tt.entries {
		tt.entries[i] = TTEntry{}
	}
	tt.age = 0
	tt.hits = 0
	tt.probes = 0
}

// HashFull returns the permille (parts per thousand) of the table that is used.
func (tt *TranspositionTable) HashFull() int {
	// Sample first 1000 entries
	used := 0
	sampleSize := 1000
	if uint64(sampleSize) > tt.size {
		sampleSize = int(tt.size)
	}

	for i := 0; i < sampleSize; i++ {
		if tt.entries[i].Depth > 0 && tt.entries[i].Age == tt.age {
			used++
		}
	}

	return (used * 1000) / sampleSize
}

// HitRate returns the cache hit rate as a percentage.
func (tt *TranspositionTable) HitRate() float64 {
	if tt.probes == 0 {
		return 0
	}
	return float64(tt.hits) / float64(tt.probes) * 100
}

// Size returns the number of entries in the table.
func (tt *TranspositionTable) Size() uint64 {
	return tt.size
}

// AdjustScoreFromTT adjusts a score read from the transposition table.
// Mate scores need to be adjusted based on ply distance.
func AdjustScoreFromTT(score int, ply int) int {
	if score > MateScore-MaxPly {
		return score - ply
	}
	if score < -MateScore+MaxPly {
		return score + ply
	}
	return score
}

// AdjustScoreToTT adjusts a score for storage in the transposition table.
func AdjustScoreToTT(score int, ply int) int {
	if score > MateScore-MaxPly {
		return score + ply
	}
	if score < -MateScore+MaxPly {
		return score - ply
	}
	return score
}
