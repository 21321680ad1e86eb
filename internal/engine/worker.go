package engine

import (
	"sync/atomic"

	"github.com/MatN23/RustChessEngine/internal/board"
)

// Worker is one independent searcher in the lazy-SMP pool. It owns a
// private copy of the root position, its own ordering heuristics, PV
// table and undo stack, and shares only the transposition table and
// the stop flag with the other workers.
type Worker struct {
	id int

	pos     *board.Position
	orderer *MoveOrderer

	nodes uint64
	pv    PVTable

	undoStack [MaxPly]board.Undo
	evalStack [MaxPly]int

	// Zobrist hashes of every position on the current search path plus
	// the game history supplied at the root, for repetition detection.
	history     []uint64
	rootHistory []uint64

	tt   *TranspositionTable
	stop *atomic.Bool

	// Node budget shared across the pool. poolNodes accumulates every
	// worker's count; once it reaches nodeLimit the checking worker
	// raises the stop flag for all of them.
	nodeLimit uint64
	poolNodes *atomic.Uint64

	// verify disables every pruning shortcut so the search result
	// depends only on evaluation and bounds.
	verify bool
}

// IterationResult is one completed iteration of a worker's deepening
// loop, reported to the coordinator. Nodes is the worker's cumulative
// node count.
type IterationResult struct {
	WorkerID int
	Depth    int
	Score    int
	Move     board.Move
	PV       []board.Move
	Nodes    uint64
}

// NewWorker creates a worker sharing tt and stop with its siblings.
func NewWorker(id int, tt *TranspositionTable, stop *atomic.Bool) *Worker {
	return &Worker{
		id:      id,
		orderer: NewMoveOrderer(),
		tt:      tt,
		stop:    stop,
	}
}

// SetVerification toggles verification mode. With it on, the worker
// searches every node with plain alpha-beta plus quiescence: no null
// move, reductions, futility, razoring or delta pruning.
func (w *Worker) SetVerification(on bool) {
	w.verify = on
}

// SetNodeBudget caps the pool's combined node count at limit. pool is
// the shared counter; each worker adds its nodes to it at the same
// cadence it polls the stop flag, and raises the flag when the budget
// is spent. A limit of zero means unlimited.
func (w *Worker) SetNodeBudget(limit uint64, pool *atomic.Uint64) {
	w.nodeLimit = limit
	w.poolNodes = pool
}

// SetRootHistory installs the hashes of positions played before the
// root, so repetitions across the game/search boundary are seen.
func (w *Worker) SetRootHistory(hashes []uint64) {
	w.rootHistory = append(w.rootHistory[:0], hashes...)
}

// Nodes returns the cumulative node count.
func (w *Worker) Nodes() uint64 {
	return w.nodes
}

// PV returns the principal variation of the last completed search.
func (w *Worker) PV() []board.Move {
	return w.pv.Line()
}

// InitSearch points the worker at its own copy of pos.
func (w *Worker) InitSearch(pos *board.Position) {
	w.pos = pos.Copy()
	w.history = make([]uint64, 0, len(w.rootHistory)+MaxPly)
	w.history = append(w.history, w.rootHistory...)
	w.history = append(w.history, w.pos.Hash)
}

// Run iterates depth 1..maxDepth, reporting each completed iteration.
// Workers after the first start one ply deeper so the pool explores
// different parts of the tree. Run returns when the depth limit is
// reached or the stop flag is raised.
func (w *Worker) Run(pos *board.Position, maxDepth int, results chan<- IterationResult) {
	w.InitSearch(pos)

	start := 1
	if w.id > 0 {
		start += w.id % 2
	}

	prev := 0
	for depth := start; depth <= maxDepth; depth++ {
		move, score, ok := w.searchRoot(depth, prev)
		if !ok {
			return
		}
		results <- IterationResult{
			WorkerID: w.id,
			Depth:    depth,
			Score:    score,
			Move:     move,
			PV:       w.pv.Line(),
			Nodes:    w.nodes,
		}
		prev = score
	}
}

// searchRoot runs one iteration at depth. From aspirationMinDepth on it
// opens a narrow window around the previous score and widens it
// exponentially on a fail until the score lands inside. ok is false if
// the iteration was interrupted and its result must be discarded.
func (w *Worker) searchRoot(depth, prev int) (move board.Move, score int, ok bool) {
	alpha, beta := -Infinity, Infinity
	window := aspirationWindow
	if depth >= aspirationMinDepth {
		alpha, beta = prev-window, prev+window
	}

	for {
		score = w.negamax(depth, 0, alpha, beta, board.NoMove)
		if w.stop.Load() {
			return board.NoMove, 0, false
		}
		if score <= alpha {
			window *= 2
			alpha = maxInt(score-window, -Infinity)
		} else if score >= beta {
			window *= 2
			beta = minInt(score+window, Infinity)
		} else {
			break
		}
	}

	if w.pv.length[0] > 0 {
		move = w.pv.moves[0][0]
	}
	return move, score, true
}

// SearchDepth runs a single fixed-depth search in the given window on
// the position installed by InitSearch.
func (w *Worker) SearchDepth(depth, alpha, beta int) (board.Move, int) {
	score := w.negamax(depth, 0, alpha, beta, board.NoMove)
	var move board.Move
	if w.pv.length[0] > 0 {
		move = w.pv.moves[0][0]
	}
	return move, score
}

// isDraw reports fifty-move, insufficient-material and repetition
// draws. A single repetition of a position on the search path or in
// the game history is scored as a draw.
func (w *Worker) isDraw() bool {
	if w.pos.HalfMoveClock >= 100 {
		return true
	}
	if w.pos.IsInsufficientMaterial() {
		return true
	}
	seen := 0
	for _, h := range w.history {
		if h == w.pos.Hash {
			seen++
			if seen >= 2 {
				return true
			}
		}
	}
	return false
}

// checkLimits is polled every stopCheckInterval nodes. It reports
// whether the search must abort, charging this worker's recent nodes
// against the shared budget first so a single deepening step cannot
// overrun the node limit.
func (w *Worker) checkLimits() bool {
	if w.nodeLimit > 0 && w.poolNodes != nil {
		if w.poolNodes.Add(stopCheckInterval) >= w.nodeLimit {
			w.stop.Store(true)
			return true
		}
	}
	return w.stop.Load()
}

func (w *Worker) negamax(depth, ply, alpha, beta int, prevMove board.Move) int {
	if ply >= MaxPly-1 {
		return Evaluate(w.pos)
	}

	w.nodes++
	if w.nodes%stopCheckInterval == 0 && w.checkLimits() {
		return 0
	}

	w.pv.reset(ply)
	pvNode := beta-alpha > 1

	if ply > 0 {
		if w.isDraw() {
			return 0
		}

		// Mate distance pruning: a mate from here can never beat one
		// already found closer to the root.
		alpha = maxInt(alpha, ply-MateScore)
		beta = minInt(beta, MateScore-ply-1)
		if alpha >= beta {
			return alpha
		}
	}

	var ttMove board.Move
	entry, hit := w.tt.Probe(w.pos.Hash)
	if hit {
		ttMove = entry.BestMove
		if ply > 0 && !pvNode && int(entry.Depth) >= depth {
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

	if depth <= 0 {
		return w.quiescence(ply, 0, alpha, beta)
	}

	inCheck := w.pos.InCheck()
	extension := 0
	if inCheck {
		extension = 1
	}

	staticEval := Evaluate(w.pos)
	w.evalStack[ply] = staticEval
	improving := ply >= 2 && staticEval > w.evalStack[ply-2]

	prune := !w.verify && !pvNode && !inCheck && ply > 0

	// Reverse futility: eval so far above beta that a shallow search
	// will not bring it back down.
	if prune && depth <= rfpMaxDepth && !IsMateScore(beta) {
		margin := rfpMargin * depth
		if improving {
			margin += rfpMargin / 2
		}
		if staticEval-margin >= beta {
			return staticEval - margin
		}
	}

	// Razoring: eval hopelessly below alpha near the leaves, drop
	// straight into quiescence and trust a confirmed fail low.
	if prune && depth <= razorMaxDepth {
		if staticEval+300+100*depth <= alpha {
			score := w.quiescence(ply, 0, alpha, beta)
			if score <= alpha {
				return score
			}
		}
	}

	// Null move: give the opponent a free move; if we still beat beta
	// the real position almost certainly does too. Off in check and in
	// pawn-only endings where zugzwang breaks the assumption.
	if prune && depth >= nmpMinDepth && staticEval >= beta && w.pos.HasNonPawnMaterial() {
		r := 2 + depth/4
		if r > depth-1 {
			r = depth - 1
		}
		undo := w.pos.MakeNullMove()
		score := -w.negamax(depth-1-r, ply+1, -beta, -beta+1, board.NoMove)
		w.pos.UnmakeNullMove(undo)
		if score >= beta && !IsMateScore(score) {
			return beta
		}
	}

	futile := !w.verify && !pvNode && !inCheck && depth <= futilityMaxDepth &&
		staticEval+futilityMargin[depth] <= alpha

	moves := w.pos.GenerateLegalMoves()
	if moves.Len() == 0 {
		if inCheck {
			return ply - MateScore
		}
		return 0
	}

	scores := w.orderer.ScoreMoves(w.pos, moves, ply, ttMove, prevMove)

	bestScore := -Infinity
	bestMove := board.NoMove
	flag := TTUpperBound
	searched := 0

	for i := 0; i < moves.Len(); i++ {
		PickMove(moves, scores, i)
		move := moves.Get(i)

		isCapture := move.IsCapture(w.pos)
		isPromotion := move.IsPromotion()
		quiet := !isCapture && !isPromotion

		if futile && quiet && bestMove != board.NoMove {
			continue
		}

		if !w.verify && !pvNode && isCapture && depth <= futilityMaxDepth &&
			searched > 0 && SEE(w.pos, move) < 0 {
			continue
		}

		w.undoStack[ply] = w.pos.MakeMove(move)
		w.history = append(w.history, w.pos.Hash)
		searched++

		newDepth := depth - 1 + extension

		var score int
		if searched == 1 {
			score = -w.negamax(newDepth, ply+1, -beta, -alpha, move)
		} else {
			reduced := newDepth
			if !w.verify && quiet && !inCheck && depth >= lmrMinDepth && searched > lmrMinMoves {
				r := lmrReductions[minInt(depth, 63)][minInt(searched, 63)]
				if !improving {
					r++
				}
				r -= w.orderer.HistoryScore(move) / 8192
				if r < 1 {
					r = 1
				}
				reduced = maxInt(newDepth-r, 1)
			}

			score = -w.negamax(reduced, ply+1, -alpha-1, -alpha, move)
			if score > alpha && reduced < newDepth {
				score = -w.negamax(newDepth, ply+1, -alpha-1, -alpha, move)
			}
			if score > alpha && score < beta {
				score = -w.negamax(newDepth, ply+1, -beta, -alpha, move)
			}
		}

		w.history = w.history[:len(w.history)-1]
		w.pos.UnmakeMove(move, w.undoStack[ply])

		if w.stop.Load() {
			return 0
		}

		if score > bestScore {
			bestScore = score
			bestMove = move
			if score > alpha {
				alpha = score
				flag = TTExact
				w.pv.accept(ply, move)
			}
		}

		if score >= beta {
			w.tt.Store(w.pos.Hash, depth, AdjustScoreToTT(score, ply), TTLowerBound, move)
			if quiet {
				w.orderer.UpdateKillers(move, ply)
				w.orderer.UpdateHistory(move, depth, true)
				w.orderer.UpdateCounterMove(w.pos, prevMove, move)
			}
			return score
		}
	}

	if !w.stop.Load() {
		w.tt.Store(w.pos.Hash, depth, AdjustScoreToTT(bestScore, ply), flag, bestMove)
	}
	return bestScore
}

// quiescence resolves captures (and, on its first ply, quiet checks)
// until the position is calm enough to trust the static evaluation.
func (w *Worker) quiescence(ply, qply, alpha, beta int) int {
	if ply >= MaxPly || qply > maxQuiescencePly {
		return Evaluate(w.pos)
	}

	w.nodes++
	if w.nodes%stopCheckInterval == 0 && w.checkLimits() {
		return 0
	}

	standPat := Evaluate(w.pos)
	if standPat >= beta {
		return standPat
	}
	if standPat > alpha {
		alpha = standPat
	}

	// Even winning a queen would not reach alpha.
	if !w.verify && standPat+pieceValues[board.Queen]+deltaMargin < alpha {
		return alpha
	}

	inCheck := w.pos.InCheck()

	moves := w.pos.GenerateCaptures()
	scores := w.orderer.ScoreMoves(w.pos, moves, ply, board.NoMove, board.NoMove)

	for i := 0; i < moves.Len(); i++ {
		PickMove(moves, scores, i)
		move := moves.Get(i)

		if !w.verify && !inCheck {
			if move.IsCapture(w.pos) && SEE(w.pos, move) < 0 {
				continue
			}
			gain := 0
			if move.IsEnPassant() {
				gain = pieceValues[board.Pawn]
			} else if captured := w.pos.PieceAt(move.To()); captured != board.NoPiece {
				gain = pieceValues[captured.Type()]
			}
			if move.IsPromotion() {
				gain += pieceValues[board.Queen] - pieceValues[board.Pawn]
			}
			if standPat+gain+deltaMargin <= alpha {
				continue
			}
		}

		undo := w.pos.MakeMove(move)
		score := -w.quiescence(ply+1, qply+1, -beta, -alpha)
		w.pos.UnmakeMove(move, undo)

		if score >= beta {
			return score
		}
		if score > alpha {
			alpha = score
		}
	}

	if qply == 0 && !inCheck {
		checks := w.pos.GenerateChecks()
		for i := 0; i < checks.Len(); i++ {
			move := checks.Get(i)

			undo := w.pos.MakeMove(move)
			if !w.pos.InCheck() {
				w.pos.UnmakeMove(move, undo)
				continue
			}
			score := -w.quiescence(ply+1, qply+1, -beta, -alpha)
			w.pos.UnmakeMove(move, undo)

			if score >= beta {
				return score
			}
			if score > alpha {
				alpha = score
			}
		}
	}

	return alpha
}
