package board

// GenerateLegalMoves generates all legal moves for the position.
func (p *Position) GenerateLegalMoves() *MoveList {
	ml := &MoveList{}
	p.generateAllMoves(ml)
	return p.filterLegalMoves(ml)
}

// GeneratePseudoLegalMoves generates all pseudo-legal moves (may leave king in check).
func (p *Position) GeneratePseudoLegalMoves() *MoveList {
	ml := &MoveList{}
	p.generateAllMoves(ml)
	return ml
}

// GenerateCaptures generates all capture (and queen-promotion) moves, legal only.
func (p *Position) GenerateCaptures() *MoveList {
	ml := &MoveList{}
	p.generateCaptures(ml)
	return p.filterLegalMoves(ml)
}

// generateAllMoves generates all pseudo-legal moves, king moves first so a
// double check can short-circuit generation entirely (only the king can
// move out of a double check).
func (p *Position) generateAllMoves(ml *MoveList) {
	us := p.SideToMove

	p.generateKingMoves(ml, us)
	if p.Checkers.PopCount() >= 2 {
		return
	}

	them := us.Other()
	occupied := p.AllOccupied
	enemies := p.Occupied[them]

	p.generatePawnMoves(ml, us, enemies, occupied)

	knights := p.Pieces[us][Knight]
	for knights != 0 {
		from := knights.PopLSB()
		targets := KnightAttacks(from) &^ p.Occupied[us]
		addTargets(ml, from, targets, enemies)
	}

	bishops := p.Pieces[us][Bishop]
	for bishops != 0 {
		from := bishops.PopLSB()
		targets := BishopAttacks(from, occupied) &^ p.Occupied[us]
		addTargets(ml, from, targets, enemies)
	}

	rooks := p.Pieces[us][Rook]
	for rooks != 0 {
		from := rooks.PopLSB()
		targets := RookAttacks(from, occupied) &^ p.Occupied[us]
		addTargets(ml, from, targets, enemies)
	}

	queens := p.Pieces[us][Queen]
	for queens != 0 {
		from := queens.PopLSB()
		targets := QueenAttacks(from, occupied) &^ p.Occupied[us]
		addTargets(ml, from, targets, enemies)
	}

	p.generateCastlingMoves(ml, us)
}

// addTargets adds a quiet or capture move for each destination in targets,
// deciding the kind from whether it lands on an enemy-occupied square.
func addTargets(ml *MoveList, from Square, targets, enemies Bitboard) {
	for targets != 0 {
		to := targets.PopLSB()
		if enemies&SquareBB(to) != 0 {
			ml.Add(NewMove(from, to, KindCapture))
		} else {
			ml.Add(NewMove(from, to, KindQuiet))
		}
	}
}

// generatePawnMoves generates all pawn moves.
func (p *Position) generatePawnMoves(ml *MoveList, us Color, enemies, occupied Bitboard) {
	pawns := p.Pieces[us][Pawn]
	empty := ^occupied

	var push1, push2, attackL, attackR Bitboard
	var promotionRank Bitboard
	var pushDir int

	if us == White {
		push1 = pawns.North() & empty
		push2 = (push1 & Rank3).North() & empty
		attackL = pawns.NorthWest() & enemies
		attackR = pawns.NorthEast() & enemies
		promotionRank = Rank8
		pushDir = 8
	} else {
		push1 = pawns.South() & empty
		push2 = (push1 & Rank6).South() & empty
		attackL = pawns.SouthWest() & enemies
		attackR = pawns.SouthEast() & enemies
		promotionRank = Rank1
		pushDir = -8
	}

	nonPromo := push1 &^ promotionRank
	for nonPromo != 0 {
		to := nonPromo.PopLSB()
		from := Square(int(to) - pushDir)
		ml.Add(NewMove(from, to, KindQuiet))
	}

	for push2 != 0 {
		to := push2.PopLSB()
		from := Square(int(to) - 2*pushDir)
		ml.Add(NewMove(from, to, KindDoublePush))
	}

	nonPromoL := attackL &^ promotionRank
	for nonPromoL != 0 {
		to := nonPromoL.PopLSB()
		from := Square(int(to) - pushDir + 1)
		ml.Add(NewMove(from, to, KindCapture))
	}

	nonPromoR := attackR &^ promotionRank
	for nonPromoR != 0 {
		to := nonPromoR.PopLSB()
		from := Square(int(to) - pushDir - 1)
		ml.Add(NewMove(from, to, KindCapture))
	}

	promoPush := push1 & promotionRank
	for promoPush != 0 {
		to := promoPush.PopLSB()
		from := Square(int(to) - pushDir)
		addPromotions(ml, from, to, false)
	}

	promoL := attackL & promotionRank
	for promoL != 0 {
		to := promoL.PopLSB()
		from := Square(int(to) - pushDir + 1)
		addPromotions(ml, from, to, true)
	}

	promoR := attackR & promotionRank
	for promoR != 0 {
		to := promoR.PopLSB()
		from := Square(int(to) - pushDir - 1)
		addPromotions(ml, from, to, true)
	}

	if p.EnPassant != NoSquare {
		epBB := SquareBB(p.EnPassant)
		var epAttackers Bitboard
		if us == White {
			epAttackers = (epBB.SouthWest() | epBB.SouthEast()) & pawns
		} else {
			epAttackers = (epBB.NorthWest() | epBB.NorthEast()) & pawns
		}
		for epAttackers != 0 {
			from := epAttackers.PopLSB()
			ml.Add(NewMove(from, p.EnPassant, KindEnPassant))
		}
	}
}

// addPromotions adds all four promotion moves (plain or capturing).
func addPromotions(ml *MoveList, from, to Square, capture bool) {
	ml.Add(NewMove(from, to, promoKindFor(Queen, capture)))
	ml.Add(NewMove(from, to, promoKindFor(Rook, capture)))
	ml.Add(NewMove(from, to, promoKindFor(Bishop, capture)))
	ml.Add(NewMove(from, to, promoKindFor(Knight, capture)))
}

// generateKingMoves generates king moves (non-castling).
func (p *Position) generateKingMoves(ml *MoveList, us Color) {
	from := p.KingSquare[us]
	targets := KingAttacks(from) &^ p.Occupied[us]
	addTargets(ml, from, targets, p.Occupied[us.Other()])
}

// generateCastlingMoves generates castling moves, validating empty squares
// and that the king does not start, pass through, or land on an attacked
// square (spec 4.5).
func (p *Position) generateCastlingMoves(ml *MoveList, us Color) {
	them := us.Other()

	if us == White {
		if p.CastlingRights&WhiteKingSideCastle != 0 {
			if p.AllOccupied&(SquareBB(F1)|SquareBB(G1)) == 0 {
				if !p.IsSquareAttacked(E1, them) && !p.IsSquareAttacked(F1, them) && !p.IsSquareAttacked(G1, them) {
					ml.Add(NewMove(E1, G1, KindCastleKing))
				}
			}
		}
		if p.CastlingRights&WhiteQueenSideCastle != 0 {
			if p.AllOccupied&(SquareBB(B1)|SquareBB(C1)|SquareBB(D1)) == 0 {
				if !p.IsSquareAttacked(E1, them) && !p.IsSquareAttacked(D1, them) && !p.IsSquareAttacked(C1, them) {
					ml.Add(NewMove(E1, C1, KindCastleQueen))
				}
			}
		}
	} else {
		if p.CastlingRights&BlackKingSideCastle != 0 {
			if p.AllOccupied&(SquareBB(F8)|SquareBB(G8)) == 0 {
				if !p.IsSquareAttacked(E8, them) && !p.IsSquareAttacked(F8, them) && !p.IsSquareAttacked(G8, them) {
					ml.Add(NewMove(E8, G8, KindCastleKing))
				}
			}
		}
		if p.CastlingRights&BlackQueenSideCastle != 0 {
			if p.AllOccupied&(SquareBB(B8)|SquareBB(C8)|SquareBB(D8)) == 0 {
				if !p.IsSquareAttacked(E8, them) && !p.IsSquareAttacked(D8, them) && !p.IsSquareAttacked(C8, them) {
					ml.Add(NewMove(E8, C8, KindCastleQueen))
				}
			}
		}
	}
}

// generateCaptures generates capture and promotion moves only, king captures
// first so a double check still short-circuits generation correctly.
func (p *Position) generateCaptures(ml *MoveList) {
	us := p.SideToMove

	from := p.KingSquare[us]
	kingCaptures := KingAttacks(from) & p.Occupied[us.Other()]
	for kingCaptures != 0 {
		to := kingCaptures.PopLSB()
		ml.Add(NewMove(from, to, KindCapture))
	}
	if p.Checkers.PopCount() >= 2 {
		return
	}

	them := us.Other()
	enemies := p.Occupied[them]
	occupied := p.AllOccupied

	pawns := p.Pieces[us][Pawn]
	var attackL, attackR Bitboard
	var promotionRank Bitboard
	var pushDir int

	if us == White {
		attackL = pawns.NorthWest() & enemies
		attackR = pawns.NorthEast() & enemies
		promotionRank = Rank8
		pushDir = 8
	} else {
		attackL = pawns.SouthWest() & enemies
		attackR = pawns.SouthEast() & enemies
		promotionRank = Rank1
		pushDir = -8
	}

	nonPromoL := attackL &^ promotionRank
	for nonPromoL != 0 {
		to := nonPromoL.PopLSB()
		from := Square(int(to) - pushDir + 1)
		ml.Add(NewMove(from, to, KindCapture))
	}

	nonPromoR := attackR &^ promotionRank
	for nonPromoR != 0 {
		to := nonPromoR.PopLSB()
		from := Square(int(to) - pushDir - 1)
		ml.Add(NewMove(from, to, KindCapture))
	}

	promoL := attackL & promotionRank
	for promoL != 0 {
		to := promoL.PopLSB()
		from := Square(int(to) - pushDir + 1)
		addPromotions(ml, from, to, true)
	}

	promoR := attackR & promotionRank
	for promoR != 0 {
		to := promoR.PopLSB()
		from := Square(int(to) - pushDir - 1)
		addPromotions(ml, from, to, true)
	}

	empty := ^occupied
	var push1 Bitboard
	if us == White {
		push1 = pawns.North() & empty & Rank8
	} else {
		push1 = pawns.South() & empty & Rank1
	}
	for push1 != 0 {
		to := push1.PopLSB()
		from := Square(int(to) - pushDir)
		ml.Add(NewMove(from, to, promoKindFor(Queen, false)))
	}

	if p.EnPassant != NoSquare {
		epBB := SquareBB(p.EnPassant)
		var epAttackers Bitboard
		if us == White {
			epAttackers = (epBB.SouthWest() | epBB.SouthEast()) & pawns
		} else {
			epAttackers = (epBB.NorthWest() | epBB.NorthEast()) & pawns
		}
		for epAttackers != 0 {
			from := epAttackers.PopLSB()
			ml.Add(NewMove(from, p.EnPassant, KindEnPassant))
		}
	}

	knights := p.Pieces[us][Knight]
	for knights != 0 {
		from := knights.PopLSB()
		targets := KnightAttacks(from) & enemies
		for targets != 0 {
			ml.Add(NewMove(from, targets.PopLSB(), KindCapture))
		}
	}

	bishops := p.Pieces[us][Bishop]
	for bishops != 0 {
		from := bishops.PopLSB()
		targets := BishopAttacks(from, occupied) & enemies
		for targets != 0 {
			ml.Add(NewMove(from, targets.PopLSB(), KindCapture))
		}
	}

	rooks := p.Pieces[us][Rook]
	for rooks != 0 {
		from := rooks.PopLSB()
		targets := RookAttacks(from, occupied) & enemies
		for targets != 0 {
			ml.Add(NewMove(from, targets.PopLSB(), KindCapture))
		}
	}

	queens := p.Pieces[us][Queen]
	for queens != 0 {
		from := queens.PopLSB()
		targets := QueenAttacks(from, occupied) & enemies
		for targets != 0 {
			ml.Add(NewMove(from, targets.PopLSB(), KindCapture))
		}
	}
}

// filterLegalMoves filters out illegal moves (those that leave king in check).
func (p *Position) filterLegalMoves(ml *MoveList) *MoveList {
	result := &MoveList{}
	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		if p.IsLegal(m) {
			result.Add(m)
		}
	}
	return result
}

// IsLegal determines legality without making the move, using the cached
// Threats/Checkers/Pinned bitboards (spec 4.6):
//   - king moves: destination must not be in Threats (already excludes the
//     king's own square from blocker occupancy, so a slider's X-ray through
//     where the king stood is correctly counted)
//   - castling: already fully validated during generation
//   - en passant: the one case that needs direct simulation, since removing
//     the captured pawn can expose a horizontal pin invisible to Pinned
//   - double check: only king moves are legal
//   - single check: the move must capture the checker or block its ray
//   - pinned piece: the move must stay on the pin ray
func (p *Position) IsLegal(m Move) bool {
	us := p.SideToMove
	from := m.From()
	ksq := p.KingSquare[us]

	if from == ksq {
		if m.IsCastling() {
			return true
		}
		return p.Threats&SquareBB(m.To()) == 0
	}

	if m.IsEnPassant() {
		return p.enPassantIsLegal(m)
	}

	switch p.Checkers.PopCount() {
	case 0:
		// no constraint from check
	case 1:
		checkerSq := p.Checkers.LSB()
		allowed := p.Checkers | Between(ksq, checkerSq)
		if allowed&SquareBB(m.To()) == 0 {
			return false
		}
	default:
		return false // double check: only the king may move
	}

	if p.Pinned&SquareBB(from) != 0 {
		return PinnedRay(ksq, from)&SquareBB(m.To()) != 0
	}

	return true
}

// enPassantIsLegal simulates the capture and checks directly whether it
// leaves our own king attacked — the cheap Pinned/Checkers bitboards don't
// capture the rare horizontal-pin-through-two-pawns case.
func (p *Position) enPassantIsLegal(m Move) bool {
	us := p.SideToMove
	them := us.Other()
	ksq := p.KingSquare[us]
	next := p.MakeMove(m)
	return next.AttackersByColor(ksq, them, next.AllOccupied) == 0
}

// HasLegalMoves returns true if the side to move has any legal moves.
func (p *Position) HasLegalMoves() bool {
	ml := p.GeneratePseudoLegalMoves()
	for i := 0; i < ml.Len(); i++ {
		if p.IsLegal(ml.Get(i)) {
			return true
		}
	}
	return false
}

// IsCheckmate returns true if the position is checkmate.
func (p *Position) IsCheckmate() bool {
	return p.InCheck() && !p.HasLegalMoves()
}

// IsStalemate returns true if the position is stalemate.
func (p *Position) IsStalemate() bool {
	return !p.InCheck() && !p.HasLegalMoves()
}

// IsDraw returns true if the position is a draw by stalemate, the 50-move
// rule, or insufficient material. Threefold repetition is tracked by the
// caller (it requires position history, not visible from a single Position).
func (p *Position) IsDraw() bool {
	if p.IsStalemate() {
		return true
	}
	if p.HalfMoveClock >= 100 {
		return true
	}
	return p.IsInsufficientMaterial()
}
