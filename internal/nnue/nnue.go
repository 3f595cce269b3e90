// Package nnue implements the king-bucketed, incrementally-updated
// evaluation network: a single hidden layer fed by two perspective
// accumulators, cached per king-bucket pair in an EvalTable.
package nnue

import "github.com/hailam/chessplay/internal/board"

// materialWeight is the per-piece weight used by the output-scaling
// material term (non-pawn, non-king pieces only).
var materialWeight = [6]int{0, 320, 330, 500, 900, 0} // Pawn, Knight, Bishop, Rook, Queen, King

// Evaluator is the NNUE evaluator: a loaded network plus an EvalTable
// cache keyed by (white king bucket, black king bucket).
type Evaluator struct {
	net   *Network
	table [NumKingBuckets][NumKingBuckets]CacheEntry
}

// NewEvaluator creates a new NNUE evaluator. If weightsFile is empty, the
// network is initialized with small random weights (for testing only).
func NewEvaluator(weightsFile string) (*Evaluator, error) {
	net := NewNetwork()
	if weightsFile != "" {
		if err := net.LoadWeights(weightsFile); err != nil {
			return nil, err
		}
	} else {
		net.InitRandom(12345)
	}
	return &Evaluator{net: net}, nil
}

// Evaluate returns the NNUE evaluation in centipawns from the side to
// move's perspective. On every call the appropriate EvalTable cell is
// located by the position's current king-bucket pair; if the cell's
// snapshot matches a prior position it is refreshed by diffing rather
// than recomputed from scratch.
func (e *Evaluator) Evaluate(pos *board.Position) int {
	wb := KingBucket(board.White, pos.KingSquare[board.White])
	bb := KingBucket(board.Black, pos.KingSquare[board.Black])
	cell := &e.table[wb][bb]

	for _, perspective := range [2]board.Color{board.White, board.Black} {
		// Feature indices also depend on which half of the board the own
		// king stands on (the file mirror), which the bucket does not encode.
		oldKing := cell.Snapshot.byColorAndKind(perspective, board.King).LSB()
		mirrorChanged := (oldKing.File() >= 4) != (pos.KingSquare[perspective].File() >= 4)
		if !cell.Valid[perspective] || mirrorChanged {
			cell.refreshFull(pos, e.net, perspective)
		} else {
			cell.applyDiff(pos, e.net, perspective)
		}
	}
	cell.Snapshot = snapshotOf(pos)

	us := pos.SideToMove
	them := us.Other()
	raw := e.net.Forward(&cell.Acc[us], &cell.Acc[them])

	return scaleOutput(raw, pos)
}

// scaleOutput tapers the raw centipawn score toward zero as non-pawn,
// non-king material thins out: multiply by (700+material)/1024 where
// material sums fixed per-piece weights divided by 32.
func scaleOutput(raw int, pos *board.Position) int {
	material := 0
	for pt := board.Knight; pt <= board.Queen; pt++ {
		count := pos.Pieces[board.White][pt].PopCount() + pos.Pieces[board.Black][pt].PopCount()
		material += count * materialWeight[pt]
	}
	material /= 32

	return raw * (700 + material) / 1024
}

// Reset invalidates every EvalTable cell, forcing a full recompute on
// next use (call when loading a new position unrelated to prior search).
func (e *Evaluator) Reset() {
	for i := range e.table {
		for j := range e.table[i] {
			e.table[i][j] = CacheEntry{}
		}
	}
}
