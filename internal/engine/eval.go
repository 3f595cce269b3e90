// Package engine implements the chess AI search engine.
package engine

import (
	"github.com/hailam/chessplay/internal/board"
)

// Evaluation constants
const (
	PawnValue   = 100
	KnightValue = 320
	BishopValue = 330
	RookValue   = 500
	QueenValue  = 900
	KingValue   = 20000
)

// Piece values array for quick lookup
var pieceValues = [7]int{PawnValue, KnightValue, BishopValue, RookValue, QueenValue, KingValue, 0}

// SEEGreaterOrEqual reports whether the capturing side at least breaks even
// relative to threshold after the full alternating exchange on m's
// destination square. Used by move ordering to split captures into
// winning/losing buckets.
func SEEGreaterOrEqual(pos *board.Position, m board.Move, threshold int) bool {
	return SEE(pos, m) >= threshold
}

// SEE (Static Exchange Evaluation) estimates the result of a capture sequence.
// Returns the estimated material gain/loss from the perspective of the moving side.
// This is a proper implementation that simulates the entire capture sequence.
func SEE(pos *board.Position, m board.Move) int {
	from := m.From()
	to := m.To()

	attacker := pos.PieceAt(from)
	if attacker == board.NoPiece {
		return 0
	}

	// Get initial capture value
	var capturedValue int
	if m.IsEnPassant() {
		capturedValue = PawnValue
	} else {
		victim := pos.PieceAt(to)
		if victim == board.NoPiece {
			return 0 // Not a capture
		}
		capturedValue = pieceValues[victim.Type()]
	}

	// Add promotion bonus if applicable
	if m.IsPromotion() {
		capturedValue += pieceValues[m.Promotion()] - PawnValue
	}

	// Use the swap algorithm for SEE
	// This simulates captures alternating between sides
	return seeSwap(pos, to, from, attacker, capturedValue)
}

// seeSwap performs the SEE swap algorithm.
// It simulates alternating captures on the target square.
func seeSwap(pos *board.Position, target, excludeFrom board.Square, firstAttacker board.Piece, initialGain int) int {
	// Gain array for the swap algorithm
	var gain [32]int
	d := 0 // Depth in swap sequence

	// Start with initial capture gain
	gain[d] = initialGain

	// Occupied bitboard, excluding the initial attacker
	occupied := pos.AllOccupied &^ board.SquareBB(excludeFrom)

	// Current attacker info
	attackerValue := pieceValues[firstAttacker.Type()]
	side := firstAttacker.Color().Other() // Next side to capture

	// Find all attackers and simulate capture sequence
	for {
		d++

		// Gain at this depth is the attacker value minus what opponent gains after
		gain[d] = attackerValue - gain[d-1]

		// If we're clearly winning, we can stop (opponent won't recapture)
		if max(-gain[d-1], gain[d]) < 0 {
			break
		}

		// Find least valuable attacker for this side
		attackerSq, attackerPiece := getLeastValuableAttacker(pos, target, side, occupied)
		if attackerSq == board.NoSquare {
			break // No more attackers
		}

		// Remove attacker from occupied
		occupied &^= board.SquareBB(attackerSq)

		// Update attacker value and switch sides
		attackerValue = pieceValues[attackerPiece.Type()]
		side = side.Other()

		// Check for x-ray attackers revealed
		// (handled implicitly by getLeastValuableAttacker using updated occupied)
	}

	// Negamax the gain array to get final result
	for d--; d > 0; d-- {
		gain[d-1] = -max(-gain[d-1], gain[d])
	}

	return gain[0]
}

// getLeastValuableAttacker finds the least valuable piece attacking a square.
// Returns NoSquare if no attacker found.
func getLeastValuableAttacker(pos *board.Position, target board.Square, side board.Color, occupied board.Bitboard) (board.Square, board.Piece) {
	// Check attackers in order of value (pawn first, king last)

	// Pawns
	pawns := pos.Pieces[side][board.Pawn]
	pawnAttacks := board.PawnAttacks(target, side.Other()) // Squares that attack target
	attackers := pawns & pawnAttacks & occupied
	if attackers != 0 {
		sq := attackers.LSB()
		return sq, board.NewPiece(board.Pawn, side)
	}

	// Knights
	knights := pos.Pieces[side][board.Knight]
	knightAttacks := board.KnightAttacks(target)
	attackers = knights & knightAttacks & occupied
	if attackers != 0 {
		sq := attackers.LSB()
		return sq, board.NewPiece(board.Knight, side)
	}

	// Bishops (and diagonal queen attacks)
	bishops := pos.Pieces[side][board.Bishop]
	bishopAttacks := board.BishopAttacks(target, occupied)
	attackers = bishops & bishopAttacks & occupied
	if attackers != 0 {
		sq := attackers.LSB()
		return sq, board.NewPiece(board.Bishop, side)
	}

	// Rooks (and straight queen attacks)
	rooks := pos.Pieces[side][board.Rook]
	rookAttacks := board.RookAttacks(target, occupied)
	attackers = rooks & rookAttacks & occupied
	if attackers != 0 {
		sq := attackers.LSB()
		return sq, board.NewPiece(board.Rook, side)
	}

	// Queens (check both diagonal and straight)
	queens := pos.Pieces[side][board.Queen]
	attackers = queens & (bishopAttacks | rookAttacks) & occupied
	if attackers != 0 {
		sq := attackers.LSB()
		return sq, board.NewPiece(board.Queen, side)
	}

	// King (only if no other attackers, king captures last)
	kingBB := pos.Pieces[side][board.King]
	kingAttacks := board.KingAttacks(target)
	attackers = kingBB & kingAttacks & occupied
	if attackers != 0 {
		sq := attackers.LSB()
		return sq, board.NewPiece(board.King, side)
	}

	return board.NoSquare, board.NoPiece
}

// max returns the maximum of two integers.
func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
