package engine

import (
	"math"

	"github.com/MatN23/RustChessEngine/internal/board"
)

// Score bounds. Mate scores are reported as MateScore minus the distance
// in plies from the root, so any score above MateScore-MaxPly is a mate.
const (
	Infinity  = 30000
	MateScore = 29000
	MaxPly    = 128
)

// Aspiration window parameters for the per-worker deepening loop.
const (
	aspirationMinDepth = 5
	aspirationWindow   = 50
)

// Pruning margins. All of these are skipped when the worker runs in
// verification mode.
const (
	futilityMaxDepth  = 3
	razorMaxDepth     = 2
	rfpMaxDepth       = 6
	rfpMargin         = 80
	nmpMinDepth       = 3
	lmrMinDepth       = 3
	lmrMinMoves       = 4
	deltaMargin       = 200
	maxQuiescencePly  = 32
	stopCheckInterval = 2048
)

var futilityMargin = [futilityMaxDepth + 1]int{0, 200, 300, 500}

// lmrReductions[depth][moveNumber] is the base late-move reduction,
// a logarithmic curve precomputed at init.
var lmrReductions [64][64]int

func init() {
	for d := 1; d < 64; d++ {
		for m := 1; m < 64; m++ {
			lmrReductions[d][m] = int(0.75 + math.Log(float64(d))*math.Log(float64(m))/2.25)
		}
	}
}

// PVTable is a triangular principal-variation table. Row ply holds the
// best line found from that ply; length[ply] is the index one past the
// last move of that line.
type PVTable struct {
	length [MaxPly]int
	moves  [MaxPly][MaxPly]board.Move
}

func (pv *PVTable) reset(ply int) {
	pv.length[ply] = ply
}

// accept records move as the best at ply and pulls up the line from ply+1.
func (pv *PVTable) accept(ply int, m board.Move) {
	pv.moves[ply][ply] = m
	for i := ply + 1; i < pv.length[ply+1]; i++ {
		pv.moves[ply][i] = pv.moves[ply+1][i]
	}
	pv.length[ply] = pv.length[ply+1]
}

// Line returns a copy of the principal variation from the root.
func (pv *PVTable) Line() []board.Move {
	line := make([]board.Move, pv.length[0])
	copy(line, pv.moves[0][:pv.length[0]])
	return line
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// IsMateScore reports whether score encodes a forced mate.
func IsMateScore(score int) bool {
	return abs(score) > MateScore-MaxPly
}
