package board

import "fmt"

// Move encodes a chess move in 16 bits:
// bits 0-5:   from square (0-63)
// bits 6-11:  to square (0-63)
// bits 12-15: kind (see MoveKind below)
type Move uint16

// MoveKind partitions moves into quiet, double pawn push, castle, capture,
// en-passant, and the eight promotion variants (plain and capturing). Bit 3
// of the kind (value 8) marks "is promotion"; bit 2 (value 4) marks "is
// capture" — the classic chess-programming-wiki 4-bit move encoding.
type MoveKind uint8

const (
	KindQuiet MoveKind = iota
	KindDoublePush
	KindCastleKing
	KindCastleQueen
	KindCapture
	KindEnPassant
	_reserved6
	_reserved7
	KindPromoKnight
	KindPromoBishop
	KindPromoRook
	KindPromoQueen
	KindPromoCaptureKnight
	KindPromoCaptureBishop
	KindPromoCaptureRook
	KindPromoCaptureQueen
)

// NoMove is the all-zero sentinel (from=a1, to=a1, kind=quiet — never a legal move).
const NoMove Move = 0

// NewMove creates a move with an explicit kind.
func NewMove(from, to Square, kind MoveKind) Move {
	return Move(from) | Move(to)<<6 | Move(kind)<<12
}

// From returns the origin square.
func (m Move) From() Square {
	return Square(m & 0x3F)
}

// To returns the destination square.
func (m Move) To() Square {
	return Square((m >> 6) & 0x3F)
}

// Kind returns the move's 4-bit kind.
func (m Move) Kind() MoveKind {
	return MoveKind(m >> 12)
}

// IsPromotion returns true if bit 3 of the kind (is-promotion) is set.
func (m Move) IsPromotion() bool {
	return m.Kind()&8 != 0
}

// IsCastling returns true for either castling kind.
func (m Move) IsCastling() bool {
	k := m.Kind()
	return k == KindCastleKing || k == KindCastleQueen
}

// IsEnPassant returns true for the en-passant capture kind.
func (m Move) IsEnPassant() bool {
	return m.Kind() == KindEnPassant
}

// IsCapture returns true if the move's kind carries the capture bit, or is en passant.
func (m Move) IsCapture(pos *Position) bool {
	k := m.Kind()
	if k == KindEnPassant {
		return true
	}
	return k&4 != 0
}

// IsQuiet reports whether the move is neither a capture nor a promotion.
func (m Move) IsQuiet(pos *Position) bool {
	return !m.IsCapture(pos) && !m.IsPromotion()
}

// Promotion returns the promoted-to piece type. Only meaningful when IsPromotion().
func (m Move) Promotion() PieceType {
	switch m.Kind() {
	case KindPromoKnight, KindPromoCaptureKnight:
		return Knight
	case KindPromoBishop, KindPromoCaptureBishop:
		return Bishop
	case KindPromoRook, KindPromoCaptureRook:
		return Rook
	default:
		return Queen
	}
}

// promoKindFor returns the promotion MoveKind for a piece type and capture flag.
func promoKindFor(pt PieceType, capture bool) MoveKind {
	var base MoveKind
	switch pt {
	case Knight:
		base = KindPromoKnight
	case Bishop:
		base = KindPromoBishop
	case Rook:
		base = KindPromoRook
	default:
		base = KindPromoQueen
	}
	if capture {
		return base + (KindPromoCaptureKnight - KindPromoKnight)
	}
	return base
}

// String returns the UCI long-algebraic form (e.g. "e2e4", "e7e8q").
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		promoChars := map[PieceType]byte{Knight: 'n', Bishop: 'b', Rook: 'r', Queen: 'q'}
		s += string(promoChars[m.Promotion()])
	}
	return s
}

// ParseMove parses a UCI long-algebraic move string against a position,
// inferring the correct MoveKind from board state.
func ParseMove(s string, pos *Position) (Move, error) {
	if len(s) < 4 {
		return NoMove, fmt.Errorf("invalid move string: %s", s)
	}
	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, err
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, err
	}

	piece := pos.PieceAt(from)
	if piece == NoPiece {
		return NoMove, fmt.Errorf("no piece at %s", from)
	}
	pt := piece.Type()
	captured := pos.PieceAt(to)
	isCapture := captured != NoPiece

	if len(s) == 5 {
		var promo PieceType
		switch s[4] {
		case 'n':
			promo = Knight
		case 'b':
			promo = Bishop
		case 'r':
			promo = Rook
		case 'q':
			promo = Queen
		default:
			return NoMove, fmt.Errorf("invalid promotion piece: %c", s[4])
		}
		return NewMove(from, to, promoKindFor(promo, isCapture)), nil
	}

	if pt == King && abs(int(to)-int(from)) == 2 {
		if to.File() > from.File() {
			return NewMove(from, to, KindCastleKing), nil
		}
		return NewMove(from, to, KindCastleQueen), nil
	}

	if pt == Pawn && to == pos.EnPassant && from.File() != to.File() {
		return NewMove(from, to, KindEnPassant), nil
	}

	if pt == Pawn && abs(to.Rank()-from.Rank()) == 2 {
		return NewMove(from, to, KindDoublePush), nil
	}

	if isCapture {
		return NewMove(from, to, KindCapture), nil
	}
	return NewMove(from, to, KindQuiet), nil
}

// MoveList is a fixed-capacity buffer of moves (252 — a proven upper bound
// on legal moves in any reachable position) plus a length.
type MoveList struct {
	moves [252]Move
	count int
}

// Add appends a move to the list.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int {
	return ml.count
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Set overwrites the move at index i.
func (ml *MoveList) Set(i int, m Move) {
	ml.moves[i] = m
}

// Swap exchanges two entries.
func (ml *MoveList) Swap(i, j int) {
	ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i]
}

// Clear empties the list.
func (ml *MoveList) Clear() {
	ml.count = 0
}

// Contains reports whether m is present in the list.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

// Slice returns the moves as a slice backed by the list's own array.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}

// Pick removes and returns the highest-scoring move at or after index i,
// swapping it into position i. Amortised selection sort: each call costs
// O(remaining), so a beta cutoff that stops early never pays for the tail.
func Pick(ml *MoveList, scores []int32, i int) Move {
	best := i
	for j := i + 1; j < ml.count; j++ {
		if scores[j] > scores[best] {
			best = j
		}
	}
	if best != i {
		ml.Swap(i, best)
		scores[i], scores[best] = scores[best], scores[i]
	}
	return ml.moves[i]
}
