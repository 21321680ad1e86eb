package engine

import (
	"github.com/MatN23/RustChessEngine/internal/board"
)

// Ordering score bands, highest searched first. Captures are split by
// static exchange into winning and losing; quiets fall through to
// killers, counter move and history.
const (
	scoreTTMove      = 1 << 22
	scoreGoodCapture = 1 << 20
	scorePromotion   = 1 << 19
	scoreKiller1     = 1 << 18
	scoreKiller2     = scoreKiller1 - 1
	scoreCounterMove = scoreKiller2 - 1
	scoreBadCapture  = -(1 << 20)

	historyMax = 1 << 14
)

// mvvLva orders captures by most valuable victim, least valuable attacker.
func mvvLva(victim, attacker board.PieceType) int {
	return int(victim)*8 + int(board.King) - int(attacker)
}

// MoveOrderer holds the per-worker move ordering heuristics: killer
// moves, the quiet history table and the counter-move table. It is
// never shared between workers.
type MoveOrderer struct {
	killers      [MaxPly][2]board.Move
	history      [64][64]int
	counterMoves [12][64]board.Move
}

func NewMoveOrderer() *MoveOrderer {
	return &MoveOrderer{}
}

// Clear wipes the killers and counter moves and halves the history
// scores so earlier searches fade rather than vanish.
func (mo *MoveOrderer) Clear() {
	for ply := range mo.killers {
		mo.killers[ply][0] = board.NoMove
		mo.killers[ply][1] = board.NoMove
	}
	for from := range mo.history {
		for to := range mo.history[from] {
			mo.history[from][to] /= 2
		}
	}
	for piece := range mo.counterMoves {
		for sq := range mo.counterMoves[piece] {
			mo.counterMoves[piece][sq] = board.NoMove
		}
	}
}

// ScoreMoves assigns an ordering score to every move in the list.
func (mo *MoveOrderer) ScoreMoves(pos *board.Position, moves *board.MoveList, ply int, ttMove, prevMove board.Move) []int {
	scores := make([]int, moves.Len())
	counter := mo.CounterMove(pos, prevMove)
	for i := 0; i < moves.Len(); i++ {
		scores[i] = mo.scoreMove(pos, moves.Get(i), ply, ttMove, counter)
	}
	return scores
}

func (mo *MoveOrderer) scoreMove(pos *board.Position, m board.Move, ply int, ttMove, counter board.Move) int {
	if m == ttMove {
		return scoreTTMove
	}

	if m.IsCapture(pos) {
		attacker := pos.PieceAt(m.From()).Type()
		victim := board.Pawn
		if !m.IsEnPassant() {
			victim = pos.PieceAt(m.To()).Type()
		}
		base := scoreGoodCapture
		if SEE(pos, m) < 0 {
			base = scoreBadCapture
		}
		return base + mvvLva(victim, attacker)
	}

	if m.IsPromotion() {
		return scorePromotion + int(m.Promotion())
	}

	if m == mo.killers[ply][0] {
		return scoreKiller1
	}
	if m == mo.killers[ply][1] {
		return scoreKiller2
	}
	if m == counter {
		return scoreCounterMove
	}

	return mo.history[m.From()][m.To()]
}

// PickMove selects the best-scored remaining move and swaps it into
// index, so the move loop sorts lazily and stops sorting on a cutoff.
func PickMove(moves *board.MoveList, scores []int, index int) {
	best := index
	for j := index + 1; j < moves.Len(); j++ {
		if scores[j] > scores[best] {
			best = j
		}
	}
	if best != index {
		moves.Swap(index, best)
		scores[index], scores[best] = scores[best], scores[index]
	}
}

// UpdateKillers records a quiet move that caused a beta cutoff.
func (mo *MoveOrderer) UpdateKillers(m board.Move, ply int) {
	if ply >= MaxPly || mo.killers[ply][0] == m {
		return
	}
	mo.killers[ply][1] = mo.killers[ply][0]
	mo.killers[ply][0] = m
}

// UpdateHistory rewards or punishes a quiet move with a depth-squared
// bonus, clamped so the table never dominates the capture bands.
func (mo *MoveOrderer) UpdateHistory(m board.Move, depth int, good bool) {
	bonus := depth * depth
	if !good {
		bonus = -bonus
	}
	h := &mo.history[m.From()][m.To()]
	*h += bonus
	if *h > historyMax {
		*h = historyMax
	} else if *h < -historyMax {
		*h = -historyMax
	}
}

// UpdateCounterMove records m as the refutation of prevMove. The table
// is keyed by the piece now standing on prevMove's target square.
func (mo *MoveOrderer) UpdateCounterMove(pos *board.Position, prevMove, m board.Move) {
	if prevMove == board.NoMove {
		return
	}
	piece := pos.PieceAt(prevMove.To())
	if piece == board.NoPiece {
		return
	}
	mo.counterMoves[piece][prevMove.To()] = m
}

// CounterMove returns the stored refutation of prevMove, if any.
func (mo *MoveOrderer) CounterMove(pos *board.Position, prevMove board.Move) board.Move {
	if prevMove == board.NoMove {
		return board.NoMove
	}
	piece := pos.PieceAt(prevMove.To())
	if piece == board.NoPiece {
		return board.NoMove
	}
	return mo.counterMoves[piece][prevMove.To()]
}

// HistoryScore exposes the quiet history for LMR adjustment.
func (mo *MoveOrderer) HistoryScore(m board.Move) int {
	return mo.history[m.From()][m.To()]
}
