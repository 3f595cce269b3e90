package board

import "testing"

// TestHashConsistency checks that the incrementally maintained Hash always
// agrees with a from-scratch recomputation, across a handful of ordinary
// moves, a capture, a castle, and a null move.
func TestHashConsistency(t *testing.T) {
	pos := NewPosition()
	checkConsistent(t, pos, "start")

	sequence := []struct {
		from, to Square
		kind     MoveKind
	}{
		{E2, E4, KindDoublePush},
		{E7, E5, KindDoublePush},
		{G1, F3, KindQuiet},
		{B8, C6, KindQuiet},
		{F1, C4, KindQuiet},
		{F8, C5, KindQuiet},
		{E1, G1, KindCastleKing},
		{G8, F6, KindQuiet},
		{F3, E5, KindCapture},
	}

	for _, step := range sequence {
		next := pos.MakeMove(NewMove(step.from, step.to, step.kind))
		pos = &next
		checkConsistent(t, pos, step.from.String()+step.to.String())
	}

	null := pos.MakeNullMove()
	checkConsistent(t, &null, "null move")
}

func checkConsistent(t *testing.T, pos *Position, label string) {
	t.Helper()
	if got, want := pos.Hash, pos.ComputeHash(); got != want {
		t.Errorf("%s: incremental hash %016x != recomputed hash %016x", label, got, want)
	}
}

// TestHashRoundTrip checks the round-trip law for the copy-based make_move
// API: reconstructing the position the move was made from (by re-parsing
// its FEN, since there is no unmake) reproduces the original hash exactly.
func TestHashRoundTrip(t *testing.T) {
	before, err := ParseFEN("r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	beforeHash := before.Hash

	after := before.MakeMove(NewMove(F1, B5, KindQuiet))
	if after.Hash == beforeHash {
		t.Fatal("hash did not change after a move")
	}

	reconstructed, err := ParseFEN("r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	if reconstructed.Hash != beforeHash {
		t.Errorf("reconstructed hash %016x != original hash %016x", reconstructed.Hash, beforeHash)
	}
}
