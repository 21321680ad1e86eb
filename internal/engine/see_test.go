package engine

import (
	"testing"

	"github.com/MatN23/RustChessEngine/internal/board"
)

func mustParseFEN(t *testing.T, fen string) *board.Position {
	t.Helper()
	pos, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return pos
}

func findMove(t *testing.T, pos *board.Position, uci string) board.Move {
	t.Helper()
	m, err := board.ParseMove(uci, pos)
	if err != nil {
		t.Fatalf("ParseMove(%q): %v", uci, err)
	}
	return m
}

func TestSEE(t *testing.T) {
	cases := []struct {
		name string
		fen  string
		move string
		want int
	}{
		{
			name: "free pawn",
			fen:  "1k6/8/8/4p3/8/5N2/8/1K6 w - - 0 1",
			move: "f3e5",
			want: pieceValues[board.Pawn],
		},
		{
			name: "knight takes defended pawn",
			fen:  "1k6/8/3p4/4p3/8/5N2/8/1K6 w - - 0 1",
			move: "f3e5",
			want: pieceValues[board.Pawn] - pieceValues[board.Knight],
		},
		{
			name: "rook takes undefended rook",
			fen:  "4r3/8/8/8/8/8/8/1K2R2k w - - 0 1",
			move: "e1e8",
			want: pieceValues[board.Rook],
		},
		{
			name: "rook trade with king recapture",
			fen:  "3kr3/8/8/8/8/8/8/1K2R3 w - - 0 1",
			move: "e1e8",
			want: 0,
		},
		{
			name: "queen grabs guarded pawn",
			fen:  "1k3q2/8/8/5p2/8/8/2Q5/1K6 w - - 0 1",
			move: "c2f5",
			want: pieceValues[board.Pawn] - pieceValues[board.Queen],
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pos := mustParseFEN(t, tc.fen)
			m := findMove(t, pos, tc.move)
			if got := SEE(pos, m); got != tc.want {
				t.Errorf("SEE(%s on %s) = %d, want %d", tc.move, tc.fen, got, tc.want)
			}
		})
	}
}

func TestSEEXray(t *testing.T) {
	// Rook takes pawn on an open file backed by a second rook; Black
	// recaptures with the rook, White recaptures through the x-ray.
	pos := mustParseFEN(t, "1k2r3/8/8/4p3/8/8/4R3/1K2R3 w - - 0 1")
	m := findMove(t, pos, "e2e5")

	// Pawn for free in the long run: RxP, RxR, RxR.
	want := pieceValues[board.Pawn] - pieceValues[board.Rook] + pieceValues[board.Rook]
	if got := SEE(pos, m); got != want {
		t.Errorf("SEE(e2e5) = %d, want %d", got, want)
	}
}
