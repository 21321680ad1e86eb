package engine

import (
	"sync/atomic"
	"testing"

	"github.com/MatN23/RustChessEngine/internal/board"
)

func newTestWorker(t *testing.T, fen string, verify bool) *Worker {
	t.Helper()
	var stop atomic.Bool
	w := NewWorker(0, NewTranspositionTable(4), &stop)
	w.SetVerification(verify)
	w.InitSearch(mustParseFEN(t, fen))
	return w
}

func TestSearchDepthFindsMateInOne(t *testing.T) {
	cases := []struct {
		fen  string
		mate string
	}{
		// Back-rank mate.
		{"6k1/5ppp/8/8/8/8/8/4R1K1 w - - 0 1", "e1e8"},
		// Scholar's mate delivery.
		{"r1bqkbnr/pppp1ppp/2n5/4p2Q/2B1P3/8/PPPP1PPP/RNB1K1NR w KQkq - 4 4", "h5f7"},
	}

	for _, tc := range cases {
		w := newTestWorker(t, tc.fen, false)
		move, score := w.SearchDepth(4, -Infinity, Infinity)
		if score != MateScore-1 {
			t.Errorf("%s: score = %d, want mate in 1 (%d)", tc.fen, score, MateScore-1)
		}
		if move.String() != tc.mate {
			t.Errorf("%s: best move = %s, want %s", tc.fen, move, tc.mate)
		}
	}
}

func TestSearchDepthFindsMateInTwo(t *testing.T) {
	// Two-rook ladder: cut the seventh, mate on the eighth.
	w := newTestWorker(t, "7k/8/8/8/8/8/R7/1R5K w - - 0 1", false)
	_, score := w.SearchDepth(5, -Infinity, Infinity)
	if score != MateScore-3 {
		t.Errorf("score = %d, want mate in 2 (%d)", score, MateScore-3)
	}
}

func TestSearchDepthSeesGettingMated(t *testing.T) {
	// The seventh rank is cut; whatever black plays, Rb8 mates.
	w := newTestWorker(t, "6k1/R7/1R6/8/8/8/8/6K1 b - - 0 1", false)
	_, score := w.SearchDepth(4, -Infinity, Infinity)
	if score != -(MateScore - 2) {
		t.Errorf("score = %d, want mated in 1 (%d)", score, -(MateScore - 2))
	}
}

func TestFiftyMoveRuleScoredAsDraw(t *testing.T) {
	// Any move pushes the clock to 100; a rook up means nothing.
	w := newTestWorker(t, "4k3/8/8/8/8/8/4K3/R7 w - - 99 80", true)
	_, score := w.SearchDepth(3, -Infinity, Infinity)
	if score != 0 {
		t.Errorf("score = %d, want 0 at the fifty-move boundary", score)
	}
}

func TestRepetitionScoredAsDraw(t *testing.T) {
	pos := mustParseFEN(t, board.StartFEN)

	var stop atomic.Bool
	w := NewWorker(0, NewTranspositionTable(4), &stop)
	// The game already visited the root position once before.
	w.SetRootHistory([]uint64{pos.Hash})
	w.InitSearch(pos)

	if !w.isDraw() {
		t.Error("position repeated in the game history not seen as a draw")
	}
}

func TestVerificationWindowConsistency(t *testing.T) {
	// With pruning disabled the search is plain alpha-beta: a window
	// that brackets the full-width score must return exactly it, and
	// offset windows must fail on the correct side.
	fixtures := []string{
		board.StartFEN,
		"8/8/4kpp1/3p4/3P4/4PKP1/8/8 w - - 0 1",
		"4k3/pppp4/8/8/8/8/PPPP4/4K3 w - - 0 1",
	}

	const depth = 3
	for _, fen := range fixtures {
		w := newTestWorker(t, fen, true)
		_, full := w.SearchDepth(depth, -Infinity, Infinity)

		w = newTestWorker(t, fen, true)
		if _, got := w.SearchDepth(depth, full-1, full+1); got != full {
			t.Errorf("%s: bracketing window returned %d, want %d", fen, got, full)
		}

		w = newTestWorker(t, fen, true)
		if _, got := w.SearchDepth(depth, full+10, Infinity); got > full+10 {
			t.Errorf("%s: window above the score returned %d, want a fail low <= %d", fen, got, full+10)
		}

		w = newTestWorker(t, fen, true)
		if _, got := w.SearchDepth(depth, -Infinity, full-10); got < full-10 {
			t.Errorf("%s: window below the score returned %d, want a fail high >= %d", fen, got, full-10)
		}
	}
}

func TestRootEntryStoredExact(t *testing.T) {
	pos := mustParseFEN(t, board.StartFEN)

	var stop atomic.Bool
	tt := NewTranspositionTable(4)
	w := NewWorker(0, tt, &stop)
	w.SetVerification(true)
	w.InitSearch(pos)

	const depth = 3
	_, score := w.SearchDepth(depth, -Infinity, Infinity)

	entry, hit := tt.Probe(pos.Hash)
	if !hit {
		t.Fatal("no table entry for the root after a search")
	}
	if entry.Flag != TTExact {
		t.Errorf("root entry flag = %v, want exact", entry.Flag)
	}
	if int(entry.Depth) != depth {
		t.Errorf("root entry depth = %d, want %d", entry.Depth, depth)
	}
	if got := AdjustScoreFromTT(int(entry.Score), 0); got != score {
		t.Errorf("root entry score = %d, want %d", got, score)
	}
}

func TestNodeBudgetStopsWorker(t *testing.T) {
	pos := mustParseFEN(t, board.StartFEN)

	var stop atomic.Bool
	var pool atomic.Uint64
	const limit = 20000

	w := NewWorker(0, NewTranspositionTable(4), &stop)
	w.SetNodeBudget(limit, &pool)

	results := make(chan IterationResult, MaxPly)
	w.Run(pos, MaxPly-1, results)
	close(results)

	// The budget is polled every stopCheckInterval nodes, so a single
	// (even deep) iteration may run over by at most one interval.
	if w.Nodes() > limit+stopCheckInterval {
		t.Errorf("worker searched %d nodes on a budget of %d", w.Nodes(), limit)
	}
	if !stop.Load() {
		t.Error("spent node budget did not raise the stop flag")
	}
}

func TestStopAbandonsIteration(t *testing.T) {
	pos := mustParseFEN(t, board.StartFEN)

	var stop atomic.Bool
	stop.Store(true)

	w := NewWorker(0, NewTranspositionTable(4), &stop)
	results := make(chan IterationResult, MaxPly)
	w.Run(pos, 10, results)
	close(results)

	for r := range results {
		t.Errorf("worker reported iteration %+v after stop", r)
	}
}

func TestQuiescenceResolvesHangingCapture(t *testing.T) {
	// Depth 1: the static eval after 1.Qxd5 looks like a free pawn,
	// but quiescence must see 1...Qxd5 and keep the score near equal.
	w := newTestWorker(t, "3qk3/8/8/3p4/8/8/8/3QK3 w - - 0 1", false)
	_, score := w.SearchDepth(1, -Infinity, Infinity)
	if score > pieceValues[board.Pawn]*2 {
		t.Errorf("score = %d, quiescence missed the recapture", score)
	}
}
