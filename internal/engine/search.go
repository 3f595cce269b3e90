package engine

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/hailam/chessplay/internal/board"
	"github.com/hailam/chessplay/internal/nnue"
)

// Search constants
const (
	Infinity  = 30000
	MateScore = 29000
	MaxPly    = 128
)

// PVTable stores the principal variation for every ply reached this search.
type PVTable struct {
	length [MaxPly]int
	moves  [MaxPly][MaxPly]board.Move
}

// lmrTable[depth][moveIndex] is the precomputed base LMR reduction,
// 0.88 + ln(depth)/1.8 * ln(moveIndex).
var lmrTable [64][64]int

func init() {
	for d := 1; d < 64; d++ {
		for m := 1; m < 64; m++ {
			r := 0.88 + math.Log(float64(d))/1.8*math.Log(float64(m))
			if r < 0 {
				r = 0
			}
			lmrTable[d][m] = int(r)
		}
	}
}

// SearchInfo is one iterative-deepening progress report.
type SearchInfo struct {
	Depth    int
	Score    int
	Nodes    uint64
	Time     time.Duration
	HashFull int
	PV       []board.Move
}

// Searcher performs the single-threaded alpha-beta search described by the
// core: iterative deepening with aspiration windows over a negamax main
// recursion, incremental NNUE evaluation, and a transposition table shared
// across iterations.
type Searcher struct {
	tt      *TranspositionTable
	orderer *MoveOrderer
	eval    *nnue.Evaluator

	nodes     uint64
	stopFlag  atomic.Bool
	startTime time.Time
	deadline  time.Time
	nodeLimit uint64

	pv         PVTable
	staticEval [MaxPly]int
	searchKeys [MaxPly]uint64

	lastScore int
	lastDepth int

	// gameHistory holds the Zobrist hashes of every position played before
	// the search root (oldest first), used to extend the repetition window
	// past the root into the game that led up to it.
	gameHistory []uint64

	// excludedRoot lists root moves skipped by the move loop, used to find
	// secondary principal variations for multi-PV analysis.
	excludedRoot []board.Move

	OnInfo func(SearchInfo)
}

// SetExcludedRootMoves restricts the root move loop to skip the given
// moves, used to search out additional principal variations after the
// best one has already been found.
func (s *Searcher) SetExcludedRootMoves(moves []board.Move) {
	s.excludedRoot = moves
}

// NewSearcher creates a new searcher sharing the given transposition table
// and NNUE evaluator.
func NewSearcher(tt *TranspositionTable, eval *nnue.Evaluator) *Searcher {
	return &Searcher{
		tt:      tt,
		orderer: NewMoveOrderer(),
		eval:    eval,
	}
}

// Stop signals the search to abandon its current iteration.
func (s *Searcher) Stop() {
	s.stopFlag.Store(true)
}

// Reset clears the move ordering tables and the node count and lowers the
// stop flag. Search calls it before every fixed-depth search; SearchIterative
// keeps the ordering tables from earlier searches.
func (s *Searcher) Reset() {
	s.stopFlag.Store(false)
	s.nodes = 0
	s.orderer.Clear()
}

// Nodes returns the number of nodes visited by the most recent search.
func (s *Searcher) Nodes() uint64 {
	return s.nodes
}

// SetGameHistory records the Zobrist hashes of positions played before the
// search root, oldest first, so repetition detection can see past it.
func (s *Searcher) SetGameHistory(hashes []uint64) {
	s.gameHistory = hashes
}

// Search runs a single fixed-depth negamax search from pos and returns the
// best move found along with its score.
func (s *Searcher) Search(pos *board.Position, depth int) (board.Move, int) {
	s.Reset()
	root := *pos
	score := s.negamax(&root, depth, 0, -Infinity, Infinity)

	var bestMove board.Move
	if s.pv.length[0] > 0 {
		bestMove = s.pv.moves[0][0]
	}
	return bestMove, score
}

// SearchIterative runs iterative deepening with aspiration windows up to
// maxDepth or until deadline/nodeLimit is reached, reporting progress via
// OnInfo after every completed iteration. Returns the best move found by
// the deepest completed iteration.
func (s *Searcher) SearchIterative(pos *board.Position, maxDepth int, deadline time.Time, nodeLimit uint64) board.Move {
	// History and killers carry over between searches; only the per-search
	// counters start over.
	s.stopFlag.Store(false)
	s.nodes = 0
	s.startTime = time.Now()
	s.deadline = deadline
	s.nodeLimit = nodeLimit

	if maxDepth <= 0 || maxDepth > MaxPly-1 {
		maxDepth = MaxPly - 1
	}

	var bestMove board.Move
	prevScore := 0

	for depth := 1; depth <= maxDepth; depth++ {
		root := *pos
		var score int
		if depth < 5 {
			score = s.negamax(&root, depth, 0, -Infinity, Infinity)
		} else {
			score = s.aspiration(&root, depth, prevScore)
		}

		if s.stopFlag.Load() {
			break
		}

		prevScore = score
		s.lastScore = score
		s.lastDepth = depth
		if s.pv.length[0] > 0 {
			bestMove = s.pv.moves[0][0]
		}

		if s.OnInfo != nil {
			s.OnInfo(SearchInfo{
				Depth:    depth,
				Score:    score,
				Nodes:    s.nodes,
				Time:     time.Since(s.startTime),
				HashFull: s.tt.HashFull(),
				PV:       s.GetPV(),
			})
		}

		elapsed := time.Since(s.startTime)
		if !s.deadline.IsZero() {
			budget := s.deadline.Sub(s.startTime)
			if elapsed*5/4 > budget {
				break
			}
		}
		if score > MateScore-MaxPly || score < -MateScore+MaxPly {
			break
		}
	}

	return bestMove
}

// aspiration runs a narrow-window search around prevScore, widening on
// fail-low/fail-high as described by the core's aspiration-window policy.
func (s *Searcher) aspiration(pos *board.Position, depth, prevScore int) int {
	delta := 45
	alpha := prevScore - delta
	beta := prevScore + delta
	if alpha < -Infinity {
		alpha = -Infinity
	}
	if beta > Infinity {
		beta = Infinity
	}

	searchDepth := depth
	for {
		score := s.negamax(pos, searchDepth, 0, alpha, beta)
		if s.stopFlag.Load() {
			return score
		}

		if score <= alpha {
			beta = (alpha + beta) / 2
			alpha -= delta
			searchDepth = depth
		} else if score >= beta {
			beta += delta
			searchDepth--
			if searchDepth < 1 {
				searchDepth = 1
			}
		} else {
			return score
		}

		delta += delta / 2
		if delta > 500 {
			alpha, beta = -Infinity, Infinity
		}
		if alpha < -Infinity {
			alpha = -Infinity
		}
		if beta > Infinity {
			beta = Infinity
		}
	}
}

// outOfTime reports whether the configured deadline or node budget has
// elapsed; polled every 4096 nodes rather than on every visit.
func (s *Searcher) outOfTime() bool {
	if s.nodeLimit > 0 && s.nodes >= s.nodeLimit {
		return true
	}
	if !s.deadline.IsZero() && time.Now().After(s.deadline) {
		return true
	}
	return false
}

// keyAt returns the Zobrist hash at a signed ply offset from the search
// root: non-negative indices read the current search path, negative
// indices reach back into the pre-root game history.
func (s *Searcher) keyAt(idx int) uint64 {
	if idx >= 0 {
		return s.searchKeys[idx]
	}
	gi := len(s.gameHistory) + idx
	if gi < 0 || gi >= len(s.gameHistory) {
		return 0
	}
	return s.gameHistory[gi]
}

// isRepetition reports whether the position at ply (already recorded into
// searchKeys[ply]) has occurred once more (twice more at the root) within
// the last halfmove+1 plies, stepping back two at a time so only positions
// with the same side to move are compared.
func (s *Searcher) isRepetition(ply, halfmove int) bool {
	current := s.searchKeys[ply]
	limit := halfmove + 1
	need := 1
	if ply == 0 {
		need = 2
	}
	count := 0
	for back := ply - 2; back >= ply-limit; back -= 2 {
		if s.keyAt(back) == current {
			count++
			if count >= need {
				return true
			}
		}
	}
	return false
}

func isExcludedRoot(excluded []board.Move, m board.Move) bool {
	for _, e := range excluded {
		if e == m {
			return true
		}
	}
	return false
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// negamax is the main search recursion: alpha-beta with check extension,
// reverse futility pruning, razoring, null-move pruning, internal iterative
// reduction, late-move reductions and principal-variation search, all
// scored from the side-to-move's perspective.
func (s *Searcher) negamax(pos *board.Position, depth, ply int, alpha, beta int) int {
	if s.nodes&4095 == 0 && s.outOfTime() {
		s.stopFlag.Store(true)
	}
	if s.stopFlag.Load() {
		return 0
	}
	s.nodes++

	s.pv.length[ply] = ply
	s.searchKeys[ply] = pos.Hash

	pvNode := beta-alpha > 1

	if ply > 0 {
		if pos.HalfMoveClock >= 100 || pos.IsInsufficientMaterial() || s.isRepetition(ply, pos.HalfMoveClock) {
			return 0
		}
	}

	inCheck := pos.InCheck()
	if inCheck {
		depth++
	}

	if depth <= 0 {
		return s.quiescence(pos, ply, alpha, beta)
	}

	var ttMove board.Move
	if entry, found := s.tt.Probe(pos.Hash); found {
		ttMove = entry.BestMove
		if int(entry.Depth) >= depth && !pvNode {
			score := AdjustScoreFromTT(int(entry.Score), ply)
			switch entry.Flag {
			case TTExact:
				return score
			case TTLowerBound:
				if score >= beta {
					return score
				}
			case TTUpperBound:
				if score <= alpha {
					return score
				}
			}
		}
	}

	staticEval := -Infinity
	if !inCheck {
		staticEval = s.eval.Evaluate(pos)
	}
	s.staticEval[ply] = staticEval

	improving := false
	if ply >= 2 && !inCheck && s.staticEval[ply-2] != -Infinity {
		improving = staticEval > s.staticEval[ply-2]
	}

	if !pvNode && !inCheck {
		// Reverse futility pruning.
		if depth <= 8 && staticEval-(90*depth-35*boolToInt(improving)) >= beta {
			return staticEval
		}

		// Razoring.
		if depth < 4 && staticEval+450*depth < alpha {
			score := s.quiescence(pos, ply, alpha, beta)
			if score <= alpha {
				return score
			}
		}

		// Null-move pruning.
		if depth >= 2 && pos.HasNonPawnMaterial() {
			r := minInt(depth, 6+depth/5)
			child := pos.MakeNullMove()
			childDepth := depth - 1 - r
			if childDepth < 0 {
				childDepth = 0
			}
			score := -s.negamax(&child, childDepth, ply+1, -beta, -beta+1)
			if s.stopFlag.Load() {
				return 0
			}
			if score >= beta {
				if score > MateScore-MaxPly {
					score = beta
				}
				return score
			}
		}
	}

	// Internal iterative reduction.
	if depth >= 2 && ttMove == board.NoMove {
		depth--
	}

	canPrune := !pvNode && !inCheck

	moves := pos.GeneratePseudoLegalMoves()
	scores := s.orderer.ScoreMoves(pos, moves, ply, ttMove)

	alphaOrig := alpha
	bestScore := -Infinity
	bestMove := board.NoMove
	moveCount := 0

	triedQuiets := make([]board.Move, 0, 8)
	triedCaptures := make([]board.Move, 0, 8)

	for i := 0; i < moves.Len(); i++ {
		PickMove(moves, scores, i)
		m := moves.Get(i)
		if !pos.IsLegal(m) {
			continue
		}
		if ply == 0 && isExcludedRoot(s.excludedRoot, m) {
			continue
		}
		moveScore := scores[i]

		if canPrune && depth <= 2 && moveScore < -3550 && bestScore > -MateScore+MaxPly && moveCount > 0 {
			break
		}

		isCapture := m.IsCapture(pos)
		child := pos.MakeMove(m)
		moveCount++

		r := 0
		if depth > 1 && !inCheck && moveScore < killerScore {
			d := minInt(depth, 63)
			mi := minInt(moveCount, 63)
			r = lmrTable[d][mi]
			if pvNode {
				r--
			}
			if child.InCheck() {
				r--
			}
			r -= int(moveScore) / 8192
			if r < 0 {
				r = 0
			}
			if r > depth-1 {
				r = depth - 1
			}
		}

		var score int
		if moveCount == 1 {
			score = -s.negamax(&child, depth-1, ply+1, -beta, -alpha)
		} else {
			score = -s.negamax(&child, depth-1-r, ply+1, -alpha-1, -alpha)
			if score > alpha && (r > 0 || pvNode) {
				score = -s.negamax(&child, depth-1, ply+1, -beta, -alpha)
			}
		}

		if s.stopFlag.Load() {
			return 0
		}

		if score > bestScore {
			bestScore = score
			bestMove = m

			if score > alpha {
				alpha = score
				if pvNode {
					s.pv.moves[ply][ply] = m
					for j := ply + 1; j < s.pv.length[ply+1]; j++ {
						s.pv.moves[ply][j] = s.pv.moves[ply+1][j]
					}
					s.pv.length[ply] = s.pv.length[ply+1]
				}
			}
		}

		if alpha >= beta {
			if !isCapture {
				s.orderer.UpdateKiller(m, ply)
				s.orderer.UpdateQuietHistory(pos.SideToMove, m, triedQuiets, depth)
			}
			s.orderer.UpdateCaptureHistory(pos, m, triedCaptures, depth)
			bestMove = m
			break
		}

		if isCapture {
			triedCaptures = append(triedCaptures, m)
		} else {
			triedQuiets = append(triedQuiets, m)
		}
	}

	if s.stopFlag.Load() {
		return 0
	}

	if moveCount == 0 {
		if inCheck {
			return -MateScore + ply
		}
		return 0
	}

	flag := TTExact
	if bestScore <= alphaOrig {
		flag = TTUpperBound
	} else if bestScore >= beta {
		flag = TTLowerBound
	}
	s.tt.Store(pos.Hash, depth, AdjustScoreToTT(bestScore, ply), flag, bestMove, pvNode)

	return bestScore
}

// quiescence searches only captures and queen promotions to damp the
// horizon effect, with the same TT-probe and bound-storage discipline as
// the main recursion.
func (s *Searcher) quiescence(pos *board.Position, ply, alpha, beta int) int {
	if s.nodes&4095 == 0 && s.outOfTime() {
		s.stopFlag.Store(true)
	}
	if s.stopFlag.Load() {
		return 0
	}
	s.nodes++

	pvNode := beta-alpha > 1

	if ply >= MaxPly {
		return s.eval.Evaluate(pos)
	}

	var ttMove board.Move
	if entry, found := s.tt.Probe(pos.Hash); found {
		ttMove = entry.BestMove
		if !pvNode {
			score := AdjustScoreFromTT(int(entry.Score), ply)
			switch entry.Flag {
			case TTExact:
				return score
			case TTLowerBound:
				if score >= beta {
					return score
				}
			case TTUpperBound:
				if score <= alpha {
					return score
				}
			}
		}
	}

	standPat := s.eval.Evaluate(pos)
	if standPat >= beta {
		s.tt.Store(pos.Hash, 0, AdjustScoreToTT(standPat, ply), TTLowerBound, board.NoMove, pvNode)
		return standPat
	}
	alphaOrig := alpha
	if standPat > alpha {
		alpha = standPat
	}

	moves := pos.GenerateCaptures()
	scores := s.orderer.ScoreMoves(pos, moves, ply, ttMove)

	bestScore := standPat
	bestMove := board.NoMove

	for i := 0; i < moves.Len(); i++ {
		PickMove(moves, scores, i)
		m := moves.Get(i)

		child := pos.MakeMove(m)
		score := -s.quiescence(&child, ply+1, -beta, -alpha)

		if score > bestScore {
			bestScore = score
			bestMove = m
		}
		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			break
		}
	}

	flag := TTUpperBound
	if bestScore >= beta {
		flag = TTLowerBound
	} else if bestScore > alphaOrig {
		flag = TTExact
	}
	s.tt.Store(pos.Hash, 0, AdjustScoreToTT(bestScore, ply), flag, bestMove, pvNode)

	return bestScore
}

// LastScore returns the score of the most recently completed iteration.
func (s *Searcher) LastScore() int {
	return s.lastScore
}

// LastDepth returns the depth of the most recently completed iteration.
func (s *Searcher) LastDepth() int {
	return s.lastDepth
}

// GetPV returns the principal variation from the most recently completed
// iteration.
func (s *Searcher) GetPV() []board.Move {
	pv := make([]board.Move, s.pv.length[0])
	for i := 0; i < s.pv.length[0]; i++ {
		pv[i] = s.pv.moves[0][i]
	}
	return pv
}
