package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/MatN23/RustChessEngine/internal/board"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	eng := NewEngine(zerolog.Nop())
	if err := eng.Configure(1, 16); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	return eng
}

func TestSearchFindsMateInOne(t *testing.T) {
	eng := newTestEngine(t)
	if err := eng.SetPosition("6k1/5ppp/8/8/8/8/8/4R1K1 w - - 0 1", nil); err != nil {
		t.Fatalf("SetPosition: %v", err)
	}

	res, err := eng.Search(SearchLimits{Depth: 4})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.BestMove.String() != "e1e8" {
		t.Errorf("best move = %s, want e1e8", res.BestMove)
	}
	if res.Score != MateScore-1 {
		t.Errorf("score = %d, want %d", res.Score, MateScore-1)
	}
}

func TestSearchOnCheckmatedPosition(t *testing.T) {
	eng := newTestEngine(t)
	// Back-rank mate, black to move.
	if err := eng.SetPosition("R5k1/5ppp/8/8/8/8/8/6K1 b - - 0 1", nil); err != nil {
		t.Fatalf("SetPosition: %v", err)
	}

	res, err := eng.Search(SearchLimits{Depth: 4})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.BestMove != board.NoMove {
		t.Errorf("best move = %s, want none", res.BestMove)
	}
	if res.Score != -MateScore {
		t.Errorf("score = %d, want %d", res.Score, -MateScore)
	}
}

func TestSearchOnStalematedPosition(t *testing.T) {
	eng := newTestEngine(t)
	if err := eng.SetPosition("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", nil); err != nil {
		t.Fatalf("SetPosition: %v", err)
	}

	res, err := eng.Search(SearchLimits{Depth: 4})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.BestMove != board.NoMove {
		t.Errorf("best move = %s, want none", res.BestMove)
	}
	if res.Score != 0 {
		t.Errorf("score = %d, want 0", res.Score)
	}
}

func TestSingleThreadSearchIsDeterministic(t *testing.T) {
	run := func() Result {
		eng := newTestEngine(t)
		if err := eng.SetPosition(board.StartFEN, nil); err != nil {
			t.Fatalf("SetPosition: %v", err)
		}
		res, err := eng.Search(SearchLimits{Depth: 6})
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		return res
	}

	a, b := run(), run()
	if a.BestMove != b.BestMove || a.Score != b.Score || a.Nodes != b.Nodes || a.Depth != b.Depth {
		t.Errorf("two single-threaded searches diverged:\n  %+v\n  %+v", a, b)
	}
}

func TestSearchRespectsMoveTime(t *testing.T) {
	eng := newTestEngine(t)
	if err := eng.SetPosition(board.StartFEN, nil); err != nil {
		t.Fatalf("SetPosition: %v", err)
	}

	start := time.Now()
	res, err := eng.Search(SearchLimits{MoveTime: 100 * time.Millisecond})
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.BestMove == board.NoMove {
		t.Error("no best move from a timed search")
	}
	if elapsed > 2*time.Second {
		t.Errorf("search ran %v on a 100ms budget", elapsed)
	}
}

func TestSearchRespectsNodeLimit(t *testing.T) {
	eng := newTestEngine(t)
	if err := eng.SetPosition(board.StartFEN, nil); err != nil {
		t.Fatalf("SetPosition: %v", err)
	}

	const limit = 50000
	res, err := eng.Search(SearchLimits{Nodes: limit})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.BestMove == board.NoMove {
		t.Error("no best move from a node-limited search")
	}
	// Workers poll the budget every stopCheckInterval nodes, so the
	// pool can run over by at most one interval per worker.
	if slack := uint64(1 * stopCheckInterval); res.Nodes > limit+slack {
		t.Errorf("search used %d nodes on a budget of %d", res.Nodes, limit)
	}
}

func TestMultiThreadSearchRespectsNodeLimit(t *testing.T) {
	eng := NewEngine(zerolog.Nop())
	if err := eng.Configure(4, 16); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if err := eng.SetPosition(board.StartFEN, nil); err != nil {
		t.Fatalf("SetPosition: %v", err)
	}

	const limit = 50000
	res, err := eng.Search(SearchLimits{Nodes: limit})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if slack := uint64(4 * stopCheckInterval); res.Nodes > limit+slack {
		t.Errorf("pool used %d nodes on a budget of %d", res.Nodes, limit)
	}
}

func TestMultiThreadSearchRespectsMoveTime(t *testing.T) {
	eng := NewEngine(zerolog.Nop())
	if err := eng.Configure(4, 16); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if err := eng.SetPosition(board.StartFEN, nil); err != nil {
		t.Fatalf("SetPosition: %v", err)
	}

	start := time.Now()
	res, err := eng.Search(SearchLimits{MoveTime: 200 * time.Millisecond})
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if elapsed > 2*time.Second {
		t.Errorf("search ran %v on a 200ms budget", elapsed)
	}
	if res.Depth < 1 {
		t.Errorf("no completed iteration, depth = %d", res.Depth)
	}
	if !eng.Position().GenerateLegalMoves().Contains(res.BestMove) {
		t.Errorf("parallel search returned illegal move %s", res.BestMove)
	}
}

func TestMultiThreadSearchFindsMateInOne(t *testing.T) {
	// The iteration order across workers is nondeterministic, but the
	// coordinator keeps the deepest completed iteration and every
	// worker that reaches depth 2 scores the mate exactly.
	eng := NewEngine(zerolog.Nop())
	if err := eng.Configure(4, 16); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if err := eng.SetPosition("6k1/5ppp/8/8/8/8/8/4R1K1 w - - 0 1", nil); err != nil {
		t.Fatalf("SetPosition: %v", err)
	}

	res, err := eng.Search(SearchLimits{Depth: 6})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.BestMove.String() != "e1e8" {
		t.Errorf("best move = %s, want e1e8", res.BestMove)
	}
	if res.Score != MateScore-1 {
		t.Errorf("score = %d, want %d", res.Score, MateScore-1)
	}
}

func TestStopReturnsBestSoFar(t *testing.T) {
	eng := newTestEngine(t)
	if err := eng.SetPosition(board.StartFEN, nil); err != nil {
		t.Fatalf("SetPosition: %v", err)
	}

	started := make(chan struct{}, 1)
	eng.OnInfo = func(SearchInfo) {
		select {
		case started <- struct{}{}:
		default:
		}
	}

	done := make(chan Result, 1)
	go func() {
		res, err := eng.Search(SearchLimits{Infinite: true})
		if err != nil {
			t.Errorf("Search: %v", err)
		}
		done <- res
	}()

	<-started
	eng.Stop()

	select {
	case res := <-done:
		legal := eng.Position().GenerateLegalMoves()
		if !legal.Contains(res.BestMove) {
			t.Errorf("stopped search returned illegal move %s", res.BestMove)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("search did not return after Stop")
	}
}

func TestConfigureRejectedMidSearch(t *testing.T) {
	eng := newTestEngine(t)
	if err := eng.SetPosition(board.StartFEN, nil); err != nil {
		t.Fatalf("SetPosition: %v", err)
	}

	started := make(chan struct{}, 1)
	eng.OnInfo = func(SearchInfo) {
		select {
		case started <- struct{}{}:
		default:
		}
	}

	done := make(chan Result, 1)
	go func() {
		res, err := eng.Search(SearchLimits{Infinite: true})
		if err != nil {
			t.Errorf("Search: %v", err)
		}
		done <- res
	}()
	<-started

	if err := eng.Configure(2, 32); !errors.Is(err, ErrSearchInProgress) {
		t.Errorf("Configure during search: err = %v, want ErrSearchInProgress", err)
	}
	if err := eng.NewGame(); !errors.Is(err, ErrSearchInProgress) {
		t.Errorf("NewGame during search: err = %v, want ErrSearchInProgress", err)
	}

	eng.Stop()
	res := <-done
	if res.BestMove == board.NoMove {
		t.Error("search corrupted by rejected Configure")
	}
}

func TestConfigureValidatesRanges(t *testing.T) {
	eng := NewEngine(zerolog.Nop())
	for _, tc := range []struct{ threads, hashMB int }{
		{0, 64},
		{MaxThreads + 1, 64},
		{1, 0},
		{1, MaxHashMB + 1},
	} {
		if err := eng.Configure(tc.threads, tc.hashMB); err == nil {
			t.Errorf("Configure(%d, %d) accepted", tc.threads, tc.hashMB)
		}
	}
	if err := eng.Configure(2, 32); err != nil {
		t.Errorf("Configure(2, 32): %v", err)
	}
}

func TestSetPositionRejectsBadInput(t *testing.T) {
	eng := newTestEngine(t)
	if err := eng.SetPosition(board.StartFEN, []string{"e2e4"}); err != nil {
		t.Fatalf("SetPosition: %v", err)
	}
	before := eng.Position().ToFEN()

	if err := eng.SetPosition("not a fen", nil); err == nil {
		t.Error("malformed FEN accepted")
	}
	if err := eng.SetPosition(board.StartFEN, []string{"e2e4", "e2e4"}); err == nil {
		t.Error("illegal move list accepted")
	}
	if err := eng.SetPosition(board.StartFEN, []string{"e9e4"}); err == nil {
		t.Error("unparseable move accepted")
	}

	if after := eng.Position().ToFEN(); after != before {
		t.Errorf("position changed after rejected input:\n  before %s\n  after  %s", before, after)
	}
}

func TestSetPositionAppliesMoves(t *testing.T) {
	eng := newTestEngine(t)
	if err := eng.SetPosition(board.StartFEN, []string{"e2e4", "c7c5", "g1f3"}); err != nil {
		t.Fatalf("SetPosition: %v", err)
	}

	want := "rnbqkbnr/pp1ppppp/8/2p5/4P3/5N2/PPPP1PPP/RNBQKB1R b KQkq - 1 2"
	if got := eng.Position().ToFEN(); got != want {
		t.Errorf("position after moves:\n  got  %s\n  want %s", got, want)
	}
}

func TestPerft(t *testing.T) {
	eng := newTestEngine(t)
	if err := eng.SetPosition(board.StartFEN, nil); err != nil {
		t.Fatalf("SetPosition: %v", err)
	}
	if got := eng.Perft(3); got != 8902 {
		t.Errorf("Perft(3) = %d, want 8902", got)
	}
}
