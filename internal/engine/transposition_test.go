package engine

import (
	"testing"

	"github.com/hailam/chessplay/internal/board"
)

func TestTranspositionStoreProbeRoundTrip(t *testing.T) {
	tt := NewTranspositionTable(1)
	move := board.NewMove(board.E2, board.E4, board.KindDoublePush)

	tt.Store(0x1234, 6, 150, TTExact, move, true)

	entry, ok := tt.Probe(0x1234)
	if !ok {
		t.Fatal("expected to find the stored entry")
	}
	if entry.BestMove != move {
		t.Errorf("best move: got %s, want %s", entry.BestMove.String(), move.String())
	}
	if entry.Score != 150 {
		t.Errorf("score: got %d, want 150", entry.Score)
	}
	if entry.Flag != TTExact {
		t.Errorf("flag: got %v, want TTExact", entry.Flag)
	}
	if entry.Depth != 6 {
		t.Errorf("depth: got %d, want 6", entry.Depth)
	}
}

func TestTranspositionProbeMiss(t *testing.T) {
	tt := NewTranspositionTable(1)
	if _, ok := tt.Probe(0xdeadbeef); ok {
		t.Error("expected a miss on an empty table")
	}
}

// TestTranspositionKeyCollisionDiscarded checks that a slot collision from
// an unrelated key (same index, different full hash) is not returned as a
// hit — Probe must verify the full key, not just the slot.
func TestTranspositionKeyCollisionDiscarded(t *testing.T) {
	tt := NewTranspositionTable(1)
	tt.Store(0x1111, 4, 10, TTExact, board.NoMove, false)

	// tt.Size() entries share the Lemire-reduced index space; find a second
	// key landing on the same slot as 0x1111 by linear probing over a
	// small range (the table is tiny at 1MB, so collisions are frequent).
	var collidingKey uint64
	target := tt.index(0x1111)
	for k := uint64(2); k < 100000; k++ {
		if tt.index(k) == target && k != 0x1111 {
			collidingKey = k
			break
		}
	}
	if collidingKey == 0 {
		t.Skip("no colliding key found in search range")
	}

	if _, ok := tt.Probe(collidingKey); ok {
		t.Error("expected a colliding key to miss, not return the other entry's data")
	}
}

// TestTranspositionReplacementKeepsBestMoveOnMissingMove checks that
// storing with a NoMove best move does not clobber a previously stored
// move for the same key, as the comment on Store promises.
func TestTranspositionReplacementKeepsBestMoveOnMissingMove(t *testing.T) {
	tt := NewTranspositionTable(1)
	move := board.NewMove(board.D2, board.D4, board.KindDoublePush)
	tt.Store(0x42, 4, 0, TTExact, move, false)

	// Same generation, deeper exact re-store without a move (e.g. a
	// fail-soft re-probe that never reached move ordering).
	tt.Store(0x42, 10, 0, TTExact, board.NoMove, false)

	entry, ok := tt.Probe(0x42)
	if !ok {
		t.Fatal("expected entry to still be present")
	}
	if entry.BestMove != move {
		t.Errorf("best move was clobbered by a NoMove store: got %s, want %s",
			entry.BestMove.String(), move.String())
	}
}

func TestAdjustScoreMateRoundTrip(t *testing.T) {
	mateScore := MateScore - 5
	stored := AdjustScoreToTT(mateScore, 3)
	recovered := AdjustScoreFromTT(stored, 3)
	if recovered != mateScore {
		t.Errorf("mate score round trip: got %d, want %d", recovered, mateScore)
	}

	nonMate := 120
	if AdjustScoreToTT(nonMate, 7) != nonMate {
		t.Error("non-mate score should be unaffected by ply adjustment on store")
	}
	if AdjustScoreFromTT(nonMate, 7) != nonMate {
		t.Error("non-mate score should be unaffected by ply adjustment on probe")
	}
}

func TestTranspositionClear(t *testing.T) {
	tt := NewTranspositionTable(1)
	tt.Store(0x99, 4, 10, TTExact, board.NoMove, false)
	tt.Probe(0x99)

	tt.Clear()

	if _, ok := tt.Probe(0x99); ok {
		t.Error("expected table to be empty after Clear")
	}
	if tt.HitRate() != 0 {
		t.Errorf("expected hit rate 0 after Clear, got %f", tt.HitRate())
	}
}
