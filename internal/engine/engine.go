package engine

import (
	"time"

	"github.com/hailam/chessplay/internal/board"
	"github.com/hailam/chessplay/internal/book"
	"github.com/hailam/chessplay/internal/nnue"
)

// SearchLimits specifies constraints on the search.
type SearchLimits struct {
	Depth    int           // Maximum depth (0 = no limit)
	Nodes    uint64        // Maximum nodes (0 = no limit)
	MoveTime time.Duration // Time for this move (0 = no limit)
	Infinite bool          // Search until stopped
	MultiPV  int           // Number of principal variations to find (0 or 1 = single best move)
}

// SearchResult contains the result of a single PV search.
type SearchResult struct {
	Move  board.Move
	Score int
	PV    []board.Move
	Depth int
}

// Difficulty represents the AI difficulty level.
type Difficulty int

const (
	Easy   Difficulty = iota // depth 3, 500ms
	Medium                   // depth 7, 1s
	Hard                     // depth 40, 3s
)

// DifficultySettings maps difficulty to search limits.
var DifficultySettings = map[Difficulty]SearchLimits{
	Easy:   {Depth: 3, MoveTime: 500 * time.Millisecond},
	Medium: {Depth: 7, MoveTime: 1 * time.Second},
	Hard:   {Depth: 40, MoveTime: 3 * time.Second},
}

// Engine wraps the single-threaded searcher with the UCI-facing surface:
// opening book probing, difficulty presets, and NNUE loading. Everything
// in the core runs on the one logical actor described by the concurrency
// model — there is no worker pool.
type Engine struct {
	tt       *TranspositionTable
	searcher *Searcher
	eval     *nnue.Evaluator

	difficulty Difficulty
	book       *book.Book

	rootPosHashes []uint64

	lastBookHit bool

	OnInfo func(SearchInfo)
}

// NewEngine creates a new chess engine with the given transposition table size in MB.
func NewEngine(ttSizeMB int) *Engine {
	tt := NewTranspositionTable(ttSizeMB)
	evaluator, _ := nnue.NewEvaluator("") // random weights until LoadNNUE is called

	e := &Engine{
		tt:         tt,
		eval:       evaluator,
		difficulty: Medium,
	}
	e.searcher = NewSearcher(tt, evaluator)
	return e
}

// SetDifficulty sets the engine difficulty.
func (e *Engine) SetDifficulty(d Difficulty) {
	e.difficulty = d
}

// LoadBook loads an opening book from a Polyglot file.
func (e *Engine) LoadBook(filename string) error {
	b, err := book.LoadPolyglot(filename)
	if err != nil {
		return err
	}
	e.book = b
	return nil
}

// SetBook sets the opening book.
func (e *Engine) SetBook(b *book.Book) {
	e.book = b
}

// HasBook returns true if an opening book is loaded.
func (e *Engine) HasBook() bool {
	return e.book != nil
}

// LastBookProbe reports the outcome of the most recent book probe made by
// SearchWithLimits or SearchWithUCILimits: ok is false only when no book is
// loaded. hit is not reset when a book is loaded or replaced, so before the
// first probe of the current book it repeats the previous result (false if
// there was none).
func (e *Engine) LastBookProbe() (hit bool, ok bool) {
	if e.book == nil {
		return false, false
	}
	return e.lastBookHit, true
}

// SetPositionHistory sets the position history for repetition detection.
// This should be called before a search with hashes from the game's move
// history, oldest first, up to (but not including) the root position.
func (e *Engine) SetPositionHistory(hashes []uint64) {
	e.rootPosHashes = make([]uint64, len(hashes))
	copy(e.rootPosHashes, hashes)
	e.searcher.SetGameHistory(e.rootPosHashes)
}

// Search finds the best move for the given position using the current
// difficulty preset.
func (e *Engine) Search(pos *board.Position) board.Move {
	limits := DifficultySettings[e.difficulty]
	return e.SearchWithLimits(pos, limits)
}

// SearchWithLimits finds the best move with specific search limits,
// probing the opening book first.
func (e *Engine) SearchWithLimits(pos *board.Position, limits SearchLimits) board.Move {
	if e.book != nil {
		if move, ok := e.book.Probe(pos); ok {
			e.lastBookHit = true
			return move
		}
		e.lastBookHit = false
	}

	e.tt.NewSearch()
	e.searcher.OnInfo = e.OnInfo

	maxDepth := MaxPly - 1
	if limits.Depth > 0 {
		maxDepth = limits.Depth
	}

	var deadline time.Time
	if limits.MoveTime > 0 {
		deadline = time.Now().Add(limits.MoveTime)
	}

	return e.searcher.SearchIterative(pos, maxDepth, deadline, limits.Nodes)
}

// SearchWithUCILimits finds the best move using UCI time controls.
// Supports wtime/btime/winc/binc for proper tournament time management.
func (e *Engine) SearchWithUCILimits(pos *board.Position, limits UCILimits, ply int) board.Move {
	if e.book != nil {
		if move, ok := e.book.Probe(pos); ok {
			e.lastBookHit = true
			return move
		}
		e.lastBookHit = false
	}

	tm := NewTimeManager()
	tm.Init(limits, pos.SideToMove, ply)

	e.tt.NewSearch()
	e.searcher.OnInfo = e.OnInfo

	maxDepth := MaxPly - 1
	if limits.Depth > 0 {
		maxDepth = limits.Depth
	}

	deadline := time.Now().Add(tm.MaximumTime())
	return e.searcher.SearchIterative(pos, maxDepth, deadline, limits.Nodes)
}

// SearchMultiPV finds multiple best moves (principal variations) for analysis.
func (e *Engine) SearchMultiPV(pos *board.Position, limits SearchLimits) []SearchResult {
	numPV := limits.MultiPV
	if numPV <= 0 {
		numPV = 1
	}

	results := make([]SearchResult, 0, numPV)
	var excluded []board.Move

	for i := 0; i < numPV; i++ {
		e.searcher.SetExcludedRootMoves(excluded)
		move, score, pv, depth := e.searchOnce(pos, limits)
		if move == board.NoMove {
			break
		}
		results = append(results, SearchResult{Move: move, Score: score, PV: pv, Depth: depth})
		excluded = append(excluded, move)
	}
	e.searcher.SetExcludedRootMoves(nil)

	for i := 0; i < len(results)-1; i++ {
		maxIdx := i
		for j := i + 1; j < len(results); j++ {
			if results[j].Score > results[maxIdx].Score {
				maxIdx = j
			}
		}
		if maxIdx != i {
			results[i], results[maxIdx] = results[maxIdx], results[i]
		}
	}

	return results
}

func (e *Engine) searchOnce(pos *board.Position, limits SearchLimits) (board.Move, int, []board.Move, int) {
	e.tt.NewSearch()

	maxDepth := MaxPly - 1
	if limits.Depth > 0 {
		maxDepth = limits.Depth
	}
	var deadline time.Time
	if limits.MoveTime > 0 {
		deadline = time.Now().Add(limits.MoveTime)
	}

	move := e.searcher.SearchIterative(pos, maxDepth, deadline, limits.Nodes)
	pv := e.searcher.GetPV()
	return move, e.searcher.LastScore(), pv, e.searcher.LastDepth()
}

// Stop stops the current search.
func (e *Engine) Stop() {
	e.searcher.Stop()
}

// Clear clears the transposition table and move-ordering tables, and
// invalidates the NNUE evaluator's cache.
func (e *Engine) Clear() {
	e.tt.Clear()
	e.searcher.Reset()
	e.eval.Reset()
}

// Perft performs a perft test (for debugging move generation).
func (e *Engine) Perft(pos *board.Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}

	moves := pos.GenerateLegalMoves()
	if depth == 1 {
		return uint64(moves.Len())
	}

	var nodes uint64
	for i := 0; i < moves.Len(); i++ {
		child := pos.MakeMove(moves.Get(i))
		nodes += e.Perft(&child, depth-1)
	}

	return nodes
}

// Evaluate returns the static NNUE evaluation of a position.
func (e *Engine) Evaluate(pos *board.Position) int {
	return e.eval.Evaluate(pos)
}

// LoadNNUE loads the NNUE network weights from filename.
func (e *Engine) LoadNNUE(filename string) error {
	evaluator, err := nnue.NewEvaluator(filename)
	if err != nil {
		return err
	}
	e.eval = evaluator
	e.searcher = NewSearcher(e.tt, evaluator)
	return nil
}

// HasNNUE reports whether the engine has an NNUE evaluator. NewEngine always
// installs one with random weights, so this is true even when LoadNNUE has
// never succeeded.
func (e *Engine) HasNNUE() bool {
	return e.eval != nil
}

// ScoreToString converts a score to a human-readable string.
func ScoreToString(score int) string {
	if score > MateScore-100 {
		mateIn := (MateScore - score + 1) / 2
		return "Mate in " + itoa(mateIn)
	}
	if score < -MateScore+100 {
		mateIn := (MateScore + score + 1) / 2
		return "Mated in " + itoa(mateIn)
	}

	sign := ""
	if score < 0 {
		sign = "-"
		score = -score
	}
	pawns := score / 100
	centipawns := score % 100

	return sign + itoa(pawns) + "." + itoa(centipawns)
}

// Simple integer to string (avoid fmt import)
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	if n < 0 {
		return "-" + itoa(-n)
	}
	s := ""
	for n > 0 {
		s = string('0'+byte(n%10)) + s
		n /= 10
	}
	return s
}
