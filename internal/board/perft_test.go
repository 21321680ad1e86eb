package board

import (
	"fmt"
	"testing"
)

func TestPerftStartingPosition(t *testing.T) {
	want := []uint64{20, 400, 8902, 197281}
	pos := NewPosition()
	for i, expected := range want {
		depth := i + 1
		t.Run(fmt.Sprintf("depth%d", depth), func(t *testing.T) {
			if got := Perft(pos, depth); got != expected {
				t.Errorf("perft(%d) = %d, want %d", depth, got, expected)
			}
		})
	}
}

func TestPerftKiwipete(t *testing.T) {
	pos, err := ParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -")
	if err != nil {
		t.Fatal(err)
	}
	want := []uint64{48, 2039, 97862}
	for i, expected := range want {
		depth := i + 1
		t.Run(fmt.Sprintf("depth%d", depth), func(t *testing.T) {
			if got := Perft(pos, depth); got != expected {
				t.Errorf("perft(%d) = %d, want %d", depth, got, expected)
			}
		})
	}
}

// Position 3 stresses en passant and pin handling.
func TestPerftPosition3(t *testing.T) {
	pos, err := ParseFEN("8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - -")
	if err != nil {
		t.Fatal(err)
	}
	want := []uint64{14, 191, 2812, 43238}
	for i, expected := range want {
		depth := i + 1
		t.Run(fmt.Sprintf("depth%d", depth), func(t *testing.T) {
			if got := Perft(pos, depth); got != expected {
				t.Errorf("perft(%d) = %d, want %d", depth, got, expected)
			}
		})
	}
}

// Capturing en passant here would remove both pawns from the fourth rank
// and expose the black king to the h4 rook, so it must be rejected.
func TestPerftEnPassantHorizontalPin(t *testing.T) {
	pos, err := ParseFEN("8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1")
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range pos.GenerateLegalMoves().Slice() {
		if m.IsEnPassant() {
			t.Errorf("en passant %v should be illegal", m)
		}
	}
	for depth, expected := range map[int]uint64{1: 6, 2: 94} {
		if got := Perft(pos, depth); got != expected {
			t.Errorf("perft(%d) = %d, want %d", depth, got, expected)
		}
	}
}

func BenchmarkPerftStartpos(b *testing.B) {
	pos := NewPosition()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Perft(pos, 3)
	}
}
