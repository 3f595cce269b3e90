package nnue

import "github.com/hailam/chessplay/internal/board"

// HLSize is the hidden-layer width per perspective.
const HLSize = 1024

// Snapshot is the 8-bitboard fingerprint an accumulator was last computed
// from: one combined (both colors) bitboard per piece kind, plus the two
// per-color occupancy bitboards. The per-side-per-kind bitboard a diff
// actually needs is recovered as PieceBB[kind] & ColorBB[side], so eight
// boards are enough to detect every add/remove without storing all twelve
// individual piece bitboards.
type Snapshot struct {
	PieceBB [6]board.Bitboard
	ColorBB [2]board.Bitboard
}

func snapshotOf(pos *board.Position) Snapshot {
	var s Snapshot
	for pt := board.Pawn; pt <= board.King; pt++ {
		s.PieceBB[pt] = pos.Pieces[board.White][pt] | pos.Pieces[board.Black][pt]
	}
	s.ColorBB[board.White] = pos.Occupied[board.White]
	s.ColorBB[board.Black] = pos.Occupied[board.Black]
	return s
}

// byColorAndKind reconstructs the bitboard of a single color's pieces of
// a single kind from the 8-board snapshot.
func (s Snapshot) byColorAndKind(c board.Color, pt board.PieceType) board.Bitboard {
	return s.PieceBB[pt] & s.ColorBB[c]
}

// CacheEntry is one EvalTable cell: the hidden-layer accumulation for both
// perspectives, valid as of the stored snapshot. A cell is addressed by
// the (white king bucket, black king bucket) pair, so any move that
// doesn't cross a king-bucket boundary reuses the same cell regardless of
// ply. A perspective's half is updated incrementally unless its own king
// has crossed between the a-d and e-h files, which changes the file
// mirroring of every feature and forces a full refresh.
type CacheEntry struct {
	Acc      [2][HLSize]int16 // index by board.Color
	Snapshot Snapshot
	Valid    [2]bool // per-perspective: has this half ever been computed
}

// refreshFull recomputes one perspective's accumulator from scratch against
// the current position and overwrites the stored snapshot's contribution
// for that perspective's king bucket.
func (ce *CacheEntry) refreshFull(pos *board.Position, net *Network, perspective board.Color) {
	acc := &ce.Acc[perspective]
	copy(acc[:], net.FeatureBias[:])

	ownKing := pos.KingSquare[perspective]
	for c := board.White; c <= board.Black; c++ {
		for pt := board.Pawn; pt <= board.King; pt++ {
			bb := pos.Pieces[c][pt]
			for bb != 0 {
				sq := bb.PopLSB()
				idx := FeatureIndex(perspective, ownKing, c, pt, sq)
				row := &net.FeatureWeights[idx]
				accAdd(acc[:], row[:])
			}
		}
	}
	ce.Valid[perspective] = true
}

// applyDiff updates one perspective's accumulator incrementally from the
// cell's stored snapshot to the position's current piece placement,
// per the add/remove rule: adds = new &^ old, subs = old &^ new, for
// every (color, kind) pair.
func (ce *CacheEntry) applyDiff(pos *board.Position, net *Network, perspective board.Color) {
	acc := &ce.Acc[perspective]
	ownKing := pos.KingSquare[perspective]
	old := ce.Snapshot

	for c := board.White; c <= board.Black; c++ {
		for pt := board.Pawn; pt <= board.King; pt++ {
			oldBB := old.byColorAndKind(c, pt)
			newBB := pos.Pieces[c][pt]

			adds := newBB &^ oldBB
			subs := oldBB &^ newBB

			for subs != 0 {
				sq := subs.PopLSB()
				idx := FeatureIndex(perspective, ownKing, c, pt, sq)
				row := &net.FeatureWeights[idx]
				accSub(acc[:], row[:])
			}
			for adds != 0 {
				sq := adds.PopLSB()
				idx := FeatureIndex(perspective, ownKing, c, pt, sq)
				row := &net.FeatureWeights[idx]
				accAdd(acc[:], row[:])
			}
		}
	}
}
