package engine

import (
	"testing"

	"github.com/MatN23/RustChessEngine/internal/board"
)

// Italian-ish middlegame with captures, quiets and tactics available.
const orderingFEN = "r1bqkb1r/pppp1ppp/2n2n2/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq - 4 4"

func TestScoreMovesBands(t *testing.T) {
	pos := mustParseFEN(t, orderingFEN)
	moves := pos.GenerateLegalMoves()

	mo := NewMoveOrderer()
	ttMove := findMove(t, pos, "d2d4")
	killer := findMove(t, pos, "a2a3")
	mo.UpdateKillers(killer, 0)
	quiet := findMove(t, pos, "h2h3")
	mo.UpdateHistory(quiet, 6, true)

	scores := mo.ScoreMoves(pos, moves, 0, ttMove, board.NoMove)

	score := func(m board.Move) int {
		for i := 0; i < moves.Len(); i++ {
			if moves.Get(i) == m {
				return scores[i]
			}
		}
		t.Fatalf("move %s not in list", m)
		return 0
	}

	capture := findMove(t, pos, "f3e5") // Nxe5, pawn is defended
	if score(ttMove) <= score(capture) {
		t.Error("table move not ordered above captures")
	}
	if score(killer) <= score(quiet) {
		t.Error("killer not ordered above a history quiet")
	}
	if score(quiet) <= 0 {
		t.Error("rewarded quiet has no positive history score")
	}
	// Nxe5 loses a knight for a pawn: below every quiet heuristic.
	if score(capture) >= score(quiet) {
		t.Error("losing capture not ordered below quiets")
	}
}

func TestScoreMovesSplitsCapturesBySEE(t *testing.T) {
	// exd5 trades at worst evenly; SEE must keep it in the winning band.
	pos := mustParseFEN(t, "rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR w KQkq - 0 2")
	moves := pos.GenerateLegalMoves()

	mo := NewMoveOrderer()
	scores := mo.ScoreMoves(pos, moves, 0, board.NoMove, board.NoMove)

	exd5 := findMove(t, pos, "e4d5")
	for i := 0; i < moves.Len(); i++ {
		if moves.Get(i) != exd5 {
			continue
		}
		if scores[i] < scoreGoodCapture {
			t.Errorf("exd5 scored %d, want a winning-capture score", scores[i])
		}
		return
	}
	t.Fatal("exd5 not generated")
}

func TestPickMoveSelectsHighestRemaining(t *testing.T) {
	pos := mustParseFEN(t, orderingFEN)
	moves := pos.GenerateLegalMoves()

	mo := NewMoveOrderer()
	ttMove := findMove(t, pos, "e1g1")
	scores := mo.ScoreMoves(pos, moves, 0, ttMove, board.NoMove)

	for i := 0; i < moves.Len(); i++ {
		PickMove(moves, scores, i)
		for j := i + 1; j < moves.Len(); j++ {
			if scores[j] > scores[i] {
				t.Fatalf("index %d: score %d picked before %d", i, scores[i], scores[j])
			}
		}
	}
	if moves.Get(0) != ttMove {
		t.Errorf("first picked move = %s, want the table move", moves.Get(0))
	}
}

func TestUpdateHistoryClamps(t *testing.T) {
	mo := NewMoveOrderer()
	m := board.NewMove(board.A2, board.A3)

	for i := 0; i < 1000; i++ {
		mo.UpdateHistory(m, 20, true)
	}
	if got := mo.HistoryScore(m); got != historyMax {
		t.Errorf("history = %d, want clamp at %d", got, historyMax)
	}

	for i := 0; i < 2000; i++ {
		mo.UpdateHistory(m, 20, false)
	}
	if got := mo.HistoryScore(m); got != -historyMax {
		t.Errorf("history = %d, want clamp at %d", got, -historyMax)
	}
}

func TestKillersShiftAndDeduplicate(t *testing.T) {
	mo := NewMoveOrderer()
	m1 := board.NewMove(board.A2, board.A3)
	m2 := board.NewMove(board.B2, board.B3)

	mo.UpdateKillers(m1, 5)
	mo.UpdateKillers(m2, 5)
	if mo.killers[5][0] != m2 || mo.killers[5][1] != m1 {
		t.Errorf("killers = [%s %s], want [%s %s]", mo.killers[5][0], mo.killers[5][1], m2, m1)
	}

	// Re-storing the first slot must not duplicate it into the second.
	mo.UpdateKillers(m2, 5)
	if mo.killers[5][1] != m1 {
		t.Error("re-stored killer displaced the second slot")
	}
}

func TestCounterMoveRoundTrip(t *testing.T) {
	pos := mustParseFEN(t, board.StartFEN)
	prev := findMove(t, pos, "e2e4")
	undo := pos.MakeMove(prev)
	defer pos.UnmakeMove(prev, undo)

	reply := findMove(t, pos, "c7c5")

	mo := NewMoveOrderer()
	mo.UpdateCounterMove(pos, prev, reply)
	if got := mo.CounterMove(pos, prev); got != reply {
		t.Errorf("counter move = %s, want %s", got, reply)
	}
	if got := mo.CounterMove(pos, board.NoMove); got != board.NoMove {
		t.Errorf("counter of no move = %s, want none", got)
	}
}

func TestClearFadesHistory(t *testing.T) {
	mo := NewMoveOrderer()
	m := board.NewMove(board.A2, board.A3)
	mo.UpdateHistory(m, 10, true)
	mo.UpdateKillers(m, 0)

	before := mo.HistoryScore(m)
	mo.Clear()

	if got := mo.HistoryScore(m); got != before/2 {
		t.Errorf("history after clear = %d, want %d", got, before/2)
	}
	if mo.killers[0][0] != board.NoMove {
		t.Error("killers survived clear")
	}
}
