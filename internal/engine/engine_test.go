package engine

import (
	"testing"
	"time"

	"github.com/hailam/chessplay/internal/board"
)

func TestMultiPV(t *testing.T) {
	pos := board.NewPosition()
	eng := NewEngine(16)

	limits := SearchLimits{
		Depth:   4,
		MultiPV: 3,
	}

	results := eng.SearchMultiPV(pos, limits)

	if len(results) < 2 {
		t.Fatalf("Expected at least 2 PVs, got %d", len(results))
	}

	if results[0].Move == results[1].Move {
		t.Errorf("First two PVs have same move: %s", results[0].Move.String())
	}

	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("PV %d has higher score than PV %d (%d > %d)",
				i+1, i, results[i].Score, results[i-1].Score)
		}
	}

	t.Logf("Multi-PV results:")
	for i, r := range results {
		t.Logf("  PV %d: %s (score: %d, depth: %d)", i+1, r.Move.String(), r.Score, r.Depth)
	}
}

func TestSearchBasic(t *testing.T) {
	pos := board.NewPosition()
	eng := NewEngine(16)
	eng.SetDifficulty(Easy)

	move := eng.Search(pos)
	if move == board.NoMove {
		t.Error("Search returned NoMove for starting position")
	}
	t.Logf("Best move: %s", move.String())
}

// TestSearchAcrossPositions exercises the engine over a sequence of
// different positions, reusing the same transposition table and history
// tables the way a long game would.
func TestSearchAcrossPositions(t *testing.T) {
	pos := board.NewPosition()
	eng := NewEngine(16)

	iterations := 10
	if testing.Short() {
		iterations = 3
	}

	for i := 0; i < iterations; i++ {
		limits := SearchLimits{
			Depth:    6,
			MoveTime: 500 * time.Millisecond,
		}

		move := eng.SearchWithLimits(pos, limits)
		if move == board.NoMove {
			t.Errorf("Iteration %d: Search returned NoMove", i)
		}

		if i%2 == 0 {
			pos, _ = board.ParseFEN("rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 2")
		} else {
			pos, _ = board.ParseFEN("rnbqkbnr/ppp1pppp/8/3p4/3P4/8/PPP1PPPP/RNBQKBNR w KQkq d6 0 2")
		}
	}

	t.Logf("Completed %d search iterations", iterations)
}

// TestSearchMultiplePositions exercises fixed-depth search across opening,
// middlegame, and endgame positions.
func TestSearchMultiplePositions(t *testing.T) {
	eng := NewEngine(16)

	positions := []string{
		board.StartFEN,
		"r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R b KQkq - 3 3", // Italian Game
		"8/8/8/4k3/8/4K3/4P3/8 w - - 0 1",                                  // KP endgame
	}

	for i, fen := range positions {
		pos, err := board.ParseFEN(fen)
		if err != nil {
			t.Fatalf("Failed to parse position %d: %v", i, err)
		}

		limits := SearchLimits{
			Depth:    5,
			MoveTime: 300 * time.Millisecond,
		}

		move := eng.SearchWithLimits(pos, limits)
		if move == board.NoMove {
			if !pos.InCheck() || pos.GenerateLegalMoves().Len() > 0 {
				t.Errorf("Position %d: Search returned NoMove", i)
			}
		} else {
			t.Logf("Position %d: best move = %s", i, move.String())
		}
	}
}
