package engine

import (
	"testing"

	"github.com/hailam/chessplay/internal/board"
)

func TestScoreMoveCategoryOrdering(t *testing.T) {
	pos, err := board.ParseFEN("rnbqkb1r/pppp1ppp/5n2/4p3/3PP3/8/PPP2PPP/RNBQKBNR w KQkq - 0 3")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	mo := NewMoveOrderer()
	ttMove := board.NewMove(board.D4, board.E5, board.KindCapture)
	quiet := board.NewMove(board.B1, board.C3, board.KindQuiet)

	ttScore := mo.scoreMove(pos, ttMove, 0, ttMove)
	captureScore := mo.scoreMove(pos, ttMove, 0, board.NoMove)
	quietScore := mo.scoreMove(pos, quiet, 0, board.NoMove)

	if ttScore != ttMoveScore {
		t.Errorf("TT move score: got %d, want %d", ttScore, ttMoveScore)
	}
	if ttScore <= captureScore {
		t.Error("TT move must outrank the same move scored as an ordinary capture")
	}
	if captureScore <= quietScore {
		t.Error("a winning capture must outrank a plain quiet move with no history")
	}
}

func TestScoreMoveKillerAboveQuietHistory(t *testing.T) {
	pos := board.NewPosition()
	mo := NewMoveOrderer()

	killer := board.NewMove(board.G1, board.F3, board.KindQuiet)
	other := board.NewMove(board.B1, board.C3, board.KindQuiet)
	mo.UpdateKiller(killer, 0)

	killerScoreGot := mo.scoreMove(pos, killer, 0, board.NoMove)
	otherScoreGot := mo.scoreMove(pos, other, 0, board.NoMove)

	if killerScoreGot != killerScore {
		t.Errorf("killer score: got %d, want %d", killerScoreGot, killerScore)
	}
	if killerScoreGot <= otherScoreGot {
		t.Error("the recorded killer must outrank an unscored quiet move")
	}
}

func TestUpdateQuietHistoryRewardsCutoffPunishesRejected(t *testing.T) {
	mo := NewMoveOrderer()
	cutoff := board.NewMove(board.E2, board.E4, board.KindDoublePush)
	rejected := board.NewMove(board.D2, board.D4, board.KindDoublePush)

	mo.UpdateQuietHistory(board.White, cutoff, []board.Move{cutoff, rejected}, 4)

	cutoffHist := mo.history[board.White][board.E2][board.E4]
	rejectedHist := mo.history[board.White][board.D2][board.D4]

	if cutoffHist <= 0 {
		t.Errorf("expected cutoff move history to be positive, got %d", cutoffHist)
	}
	if rejectedHist >= 0 {
		t.Errorf("expected rejected move history to be negative, got %d", rejectedHist)
	}
}

func TestGravityBonusStaysBounded(t *testing.T) {
	var v int32
	for i := 0; i < 10000; i++ {
		v = gravityBonus(v, 1500, historyMax)
	}
	if v > historyMax || v < -historyMax {
		t.Errorf("gravity-updated history escaped its bound: %d not in [-%d, %d]", v, historyMax, historyMax)
	}
}

func TestHistoryBonusCapped(t *testing.T) {
	if got := historyBonus(100); got != 1500 {
		t.Errorf("expected historyBonus to cap at 1500 for a large depth, got %d", got)
	}
	if got := historyBonus(1); got < 0 {
		t.Errorf("historyBonus should never go negative, got %d", got)
	}
}

func TestMoveOrdererClearResetsKillersAndHistory(t *testing.T) {
	mo := NewMoveOrderer()
	m := board.NewMove(board.E2, board.E4, board.KindDoublePush)
	mo.UpdateKiller(m, 3)
	mo.UpdateQuietHistory(board.White, m, nil, 4)

	mo.Clear()

	if mo.killers[3] != board.NoMove {
		t.Error("expected killers to be cleared")
	}
	if mo.history[board.White][board.E2][board.E4] != 0 {
		t.Error("expected quiet history to be cleared")
	}
}

func TestPickMoveSelectsHighestScoringRemaining(t *testing.T) {
	pos := board.NewPosition()
	moves := pos.GenerateLegalMoves()
	scores := make([]int32, moves.Len())
	for i := range scores {
		scores[i] = int32(i)
	}
	// The last move has the highest score; PickMove at index 0 should bring
	// it to the front.
	want := moves.Get(moves.Len() - 1)

	PickMove(moves, scores, 0)

	if moves.Get(0) != want {
		t.Errorf("PickMove did not select the highest-scoring move: got %s, want %s",
			moves.Get(0).String(), want.String())
	}
	if scores[0] != int32(moves.Len()-1) {
		t.Errorf("PickMove did not swap the score alongside the move: got %d, want %d",
			scores[0], moves.Len()-1)
	}
}
