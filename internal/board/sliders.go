package board

import "math/bits"

// Sliding-piece attacks via the obstruction-difference method (Gerd Isenberg).
// For each square, each of the four ray families (file, rank, diagonal,
// anti-diagonal) is split into a "lower" mask (squares toward a1 along the
// ray) and an "upper" mask (squares toward h8). Given an occupancy, the
// attack set along one ray family is:
//
//	lower  = lowerMask & occ
//	upper  = upperMask & occ
//	ms1b   = highest set bit of (lower | 1)
//	odiff  = upper XOR (upper - ms1b)
//	result = (lowerMask | upperMask) & odiff
//
// Rook attacks are the file-ray result unioned with the rank-ray result;
// bishop attacks are the diagonal-ray result unioned with the anti-diagonal
// result; queen attacks are their union. No magic numbers, no runtime
// multiplication — a single masked subtraction per ray family.
var (
	fileLower, fileUpper         [64]Bitboard
	rankLower, rankUpper         [64]Bitboard
	diagLower, diagUpper         [64]Bitboard // a1-h8 parallel
	antidiagLower, antidiagUpper [64]Bitboard // a8-h1 parallel
)

func init() {
	initSliderMasks()
}

func initSliderMasks() {
	for sq := A1; sq <= H8; sq++ {
		file, rank := sq.File(), sq.Rank()

		var fu, fl Bitboard
		for r := rank + 1; r <= 7; r++ {
			fu |= SquareBB(NewSquare(file, r))
		}
		for r := rank - 1; r >= 0; r-- {
			fl |= SquareBB(NewSquare(file, r))
		}
		fileUpper[sq], fileLower[sq] = fu, fl

		var ru, rl Bitboard
		for f := file + 1; f <= 7; f++ {
			ru |= SquareBB(NewSquare(f, rank))
		}
		for f := file - 1; f >= 0; f-- {
			rl |= SquareBB(NewSquare(f, rank))
		}
		rankUpper[sq], rankLower[sq] = ru, rl

		var du, dl Bitboard // NE is upper, SW is lower
		for f, r := file+1, rank+1; f <= 7 && r <= 7; f, r = f+1, r+1 {
			du |= SquareBB(NewSquare(f, r))
		}
		for f, r := file-1, rank-1; f >= 0 && r >= 0; f, r = f-1, r-1 {
			dl |= SquareBB(NewSquare(f, r))
		}
		diagUpper[sq], diagLower[sq] = du, dl

		var au, al Bitboard // NW is upper, SE is lower
		for f, r := file-1, rank+1; f >= 0 && r <= 7; f, r = f-1, r+1 {
			au |= SquareBB(NewSquare(f, r))
		}
		for f, r := file+1, rank-1; f <= 7 && r >= 0; f, r = f+1, r-1 {
			al |= SquareBB(NewSquare(f, r))
		}
		antidiagUpper[sq], antidiagLower[sq] = au, al
	}
}

// msb1 isolates the most significant set bit. b must be non-zero.
func msb1(b Bitboard) Bitboard {
	return Bitboard(1) << uint(63-bits.LeadingZeros64(uint64(b)))
}

func rayAttack(occ, lowerMask, upperMask Bitboard) Bitboard {
	lower := lowerMask & occ
	upper := upperMask & occ
	ms1b := msb1(lower | 1)
	odiff := upper ^ (upper - ms1b)
	return (lowerMask | upperMask) & odiff
}

// getRookAttacks computes rook attacks (file ray + rank ray) for a given occupancy.
func getRookAttacks(sq Square, occ Bitboard) Bitboard {
	return rayAttack(occ, fileLower[sq], fileUpper[sq]) | rayAttack(occ, rankLower[sq], rankUpper[sq])
}

// getBishopAttacks computes bishop attacks (diagonal ray + anti-diagonal ray) for a given occupancy.
func getBishopAttacks(sq Square, occ Bitboard) Bitboard {
	return rayAttack(occ, diagLower[sq], diagUpper[sq]) | rayAttack(occ, antidiagLower[sq], antidiagUpper[sq])
}
