package nnue

import "github.com/hailam/chessplay/internal/board"

// NumKingBuckets groups king squares into coarse regions so that pieces
// near the king get a dedicated input slice per region instead of one
// per exact king square. 8 buckets, one per rank, is the larger of the
// two typical sizes (4 or 8).
const NumKingBuckets = 8

// kingBucketTable maps each square to its bucket, purely by rank: a king
// on its home rank sees a different input slice than one that has
// advanced into the middlegame.
var kingBucketTable [64]int

func init() {
	for sq := 0; sq < 64; sq++ {
		kingBucketTable[sq] = sq / 8
	}
}

// KingBucket returns the bucket index for a perspective's own king square.
// The black perspective buckets off the vertically mirrored square, so a
// white king on its home rank and a black king on its home rank land in
// the same bucket.
func KingBucket(perspective board.Color, kingSq board.Square) int {
	sq := kingSq
	if perspective == board.Black {
		sq ^= 56
	}
	return kingBucketTable[sq]
}

// NumFeatures is the per-perspective input dimension: 768 (6 piece kinds
// times 2 relative sides times 64 squares) per king bucket.
const NumFeatures = 768 * NumKingBuckets

// FeatureIndex computes the one-hot input index for a single piece from a
// single perspective, per the formula:
//
//	base = 768*bucket(P, king_sq_P) + (piece_side==P ? 0 : 384) + 64*piece_kind
//	feat = base + (piece_sq XOR file_flip XOR perspective_rank_flip)
//
// file_flip mirrors the file (XOR 7) whenever the perspective's own king
// sits on the kingside (file e-h), halving the effective feature space.
// perspective_rank_flip mirrors the rank (XOR 56) for the black
// perspective, so both perspectives are fed a board that "looks like"
// it is being played from the bottom.
func FeatureIndex(perspective board.Color, ownKingSq board.Square, pieceColor board.Color, pieceType board.PieceType, pieceSq board.Square) int {
	bucket := KingBucket(perspective, ownKingSq)
	base := 768 * bucket
	if pieceColor != perspective {
		base += 384
	}
	base += 64 * int(pieceType)

	fileFlip := 0
	if ownKingSq.File() >= 4 {
		fileFlip = 7
	}
	rankFlip := 0
	if perspective == board.Black {
		rankFlip = 56
	}

	sq := int(pieceSq) ^ fileFlip ^ rankFlip
	return base + sq
}
