package nnue

import (
	"testing"

	"github.com/hailam/chessplay/internal/board"
)

// TestEvaluationPerspectiveSymmetry checks that swapping the side to move
// without touching the board (a null move) negates the evaluation, modulo
// the rounding introduced by scaleOutput's integer division.
func TestEvaluationPerspectiveSymmetry(t *testing.T) {
	eval, err := NewEvaluator("")
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}

	pos := board.NewPosition()
	scoreWhiteToMove := eval.Evaluate(pos)

	null := pos.MakeNullMove()
	eval.Reset()
	scoreAfterNullMove := eval.Evaluate(&null)

	sum := scoreWhiteToMove + scoreAfterNullMove
	if sum < -2 || sum > 2 {
		t.Errorf("evaluation perspective not symmetric: %d + %d = %d, want ~0",
			scoreWhiteToMove, scoreAfterNullMove, sum)
	}
}

// TestEvaluateDeterministic checks that evaluating the same position twice
// through a freshly reset cache returns the same score — the EvalTable is a
// pure cache and must never change what Evaluate reports.
func TestEvaluateDeterministic(t *testing.T) {
	eval, err := NewEvaluator("")
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}

	pos := board.NewPosition()
	first := eval.Evaluate(pos)
	eval.Reset()
	second := eval.Evaluate(pos)

	if first != second {
		t.Errorf("evaluation not deterministic across a cache reset: %d != %d", first, second)
	}
}
