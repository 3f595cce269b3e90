package engine

import (
	"github.com/hailam/chessplay/internal/board"
)

// Move ordering priorities, per the category table: TT move, winning
// capture, queen promotion, killer, then losing captures (MVV-LVA plus
// capture history, with no category offset) and all other moves (butterfly
// history) on one shared scale.
const (
	ttMoveScore       = 10000000
	winningCaptureTag = 90000
	queenPromoScore   = 80000
	killerScore       = 70001

	historyMax     = 8192
	captureHistMax = 16384
)

// mvvLvaIndex returns 8*victim - attacker using the six piece-kind indices,
// the Most-Valuable-Victim/Least-Valuable-Attacker ranking used to order
// captures before refining by capture history.
func mvvLvaIndex(victim, attacker board.PieceType) int {
	return 8*int(victim) - int(attacker)
}

// MoveOrderer holds the per-search ordering tables: one killer slot per
// ply, and gravity-updated quiet/capture history.
type MoveOrderer struct {
	killers [MaxPly]board.Move

	// Quiet history: hist[side][from][to], a signed value kept in [-8192, 8192].
	history [2][64][64]int32

	// Capture history: cap_hist[piece][to][capturedKind], kept in [-16384, 16384].
	captureHistory [12][64][6]int32
}

// NewMoveOrderer creates a new move orderer.
func NewMoveOrderer() *MoveOrderer {
	return &MoveOrderer{}
}

// Clear resets the move orderer for a new search.
func (mo *MoveOrderer) Clear() {
	for i := range mo.killers {
		mo.killers[i] = board.NoMove
	}
	mo.history = [2][64][64]int32{}
	mo.captureHistory = [12][64][6]int32{}
}

// ScoreMoves assigns ordering scores to a generated move list.
func (mo *MoveOrderer) ScoreMoves(pos *board.Position, moves *board.MoveList, ply int, ttMove board.Move) []int32 {
	scores := make([]int32, moves.Len())
	for i := 0; i < moves.Len(); i++ {
		scores[i] = mo.scoreMove(pos, moves.Get(i), ply, ttMove)
	}
	return scores
}

// scoreMove returns the ordering score for a single move per the category
// table: TT move, SEE-split captures, queen promotions, the ply's killer,
// then butterfly history for everything else.
func (mo *MoveOrderer) scoreMove(pos *board.Position, m board.Move, ply int, ttMove board.Move) int32 {
	if m == ttMove {
		return ttMoveScore
	}

	from, to := m.From(), m.To()

	if m.IsCapture(pos) {
		attackerPiece := pos.PieceAt(from)
		attacker := attackerPiece.Type()

		var victim board.PieceType
		if m.IsEnPassant() {
			victim = board.Pawn
		} else {
			victim = pos.PieceAt(to).Type()
		}

		score := int32(mvvLvaIndex(victim, attacker))
		score += mo.captureHistory[attackerPiece][to][victim]

		if SEEGreaterOrEqual(pos, m, 0) {
			score += winningCaptureTag
		}
		return score
	}

	if m.IsPromotion() && m.Promotion() == board.Queen {
		return queenPromoScore
	}

	if m == mo.killers[ply] {
		return killerScore
	}

	return mo.history[pos.SideToMove][from][to]
}

// PickMove selects the best remaining move and swaps it to position index,
// implementing the "pick next-highest-scoring move on demand" move-list idiom.
func PickMove(moves *board.MoveList, scores []int32, index int) {
	best := index
	for j := index + 1; j < moves.Len(); j++ {
		if scores[j] > scores[best] {
			best = j
		}
	}
	if best != index {
		moves.Swap(index, best)
		scores[index], scores[best] = scores[best], scores[index]
	}
}

// UpdateKiller records the ply's single killer slot: the last quiet move
// that caused a cutoff at that ply.
func (mo *MoveOrderer) UpdateKiller(m board.Move, ply int) {
	if ply >= MaxPly {
		return
	}
	mo.killers[ply] = m
}

// gravityBonus applies bonus to old via the gravity formula
// new = old + bonus - old*|bonus|/max, which keeps the value bounded
// without a hard clip.
func gravityBonus(old, bonus, max int32) int32 {
	return old + bonus - old*iabs32(bonus)/max
}

func iabs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// historyBonus computes the depth-scaled bonus capped at 1500, per the
// cutoff-move update rule.
func historyBonus(depth int) int32 {
	b := int32(355*depth - 345)
	if b > 1500 {
		b = 1500
	}
	if b < 0 {
		b = 0
	}
	return b
}

// UpdateQuietHistory applies the cutoff bonus to the cutoff move and the
// matching negative bonus to every quiet move tried earlier at this node
// and rejected.
func (mo *MoveOrderer) UpdateQuietHistory(side board.Color, cutoff board.Move, triedQuiets []board.Move, depth int) {
	bonus := historyBonus(depth)

	from, to := cutoff.From(), cutoff.To()
	mo.history[side][from][to] = gravityBonus(mo.history[side][from][to], bonus, historyMax)

	for _, m := range triedQuiets {
		if m == cutoff {
			continue
		}
		f, t := m.From(), m.To()
		mo.history[side][f][t] = gravityBonus(mo.history[side][f][t], -bonus, historyMax)
	}
}

// UpdateCaptureHistory applies the same gravity update to capture history,
// unconditionally on a fail-high (regardless of whether the cutoff move
// itself was a capture) for every capture tried and rejected earlier.
func (mo *MoveOrderer) UpdateCaptureHistory(pos *board.Position, cutoff board.Move, triedCaptures []board.Move, depth int) {
	bonus := historyBonus(depth)

	applyOne := func(m board.Move, b int32) {
		piece := pos.PieceAt(m.From())
		if piece == board.NoPiece {
			return
		}
		var victim board.PieceType
		if m.IsEnPassant() {
			victim = board.Pawn
		} else {
			captured := pos.PieceAt(m.To())
			if captured == board.NoPiece {
				return
			}
			victim = captured.Type()
		}
		cell := &mo.captureHistory[piece][m.To()][victim]
		*cell = gravityBonus(*cell, b, captureHistMax)
	}

	if cutoff.IsCapture(pos) {
		applyOne(cutoff, bonus)
	}
	for _, m := range triedCaptures {
		if m == cutoff {
			continue
		}
		applyOne(m, -bonus)
	}
}
