package book

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/MatN23/RustChessEngine/internal/board"
)

// encodeMove packs a move the way Polyglot does: bits 0-5 to,
// 6-11 from, 12-14 promotion.
func encodeMove(from, to board.Square) uint16 {
	return uint16(to.File()) | uint16(to.Rank())<<3 |
		uint16(from.File())<<6 | uint16(from.Rank())<<9
}

func writeRecord(buf *bytes.Buffer, key uint64, move uint16, weight uint16) {
	binary.Write(buf, binary.BigEndian, key)
	binary.Write(buf, binary.BigEndian, move)
	binary.Write(buf, binary.BigEndian, weight)
	binary.Write(buf, binary.BigEndian, uint32(0))
}

func TestReadAndProbe(t *testing.T) {
	pos := board.NewPosition()

	var buf bytes.Buffer
	writeRecord(&buf, pos.PolyglotHash(), encodeMove(board.E2, board.E4), 100)

	b, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if b.Size() != 1 {
		t.Fatalf("Size = %d, want 1", b.Size())
	}

	move, ok := b.Probe(pos)
	if !ok {
		t.Fatal("Probe missed a position that is in the book")
	}
	if move.From() != board.E2 || move.To() != board.E4 {
		t.Errorf("Probe = %s, want e2e4", move)
	}
}

func TestProbeMiss(t *testing.T) {
	b := &Book{entries: map[uint64][]Entry{}}
	move, ok := b.Probe(board.NewPosition())
	if ok {
		t.Error("Probe hit on an empty book")
	}
	if move != board.NoMove {
		t.Errorf("Probe on miss = %s, want 0000", move)
	}
}

func TestProbeRejectsIllegalBookMove(t *testing.T) {
	pos := board.NewPosition()

	// e2e5 is never legal from the start position.
	var buf bytes.Buffer
	writeRecord(&buf, pos.PolyglotHash(), encodeMove(board.E2, board.E5), 50)

	b, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if _, ok := b.Probe(pos); ok {
		t.Error("Probe returned a move that is not legal in the position")
	}
}

func TestMovesSortedByWeight(t *testing.T) {
	pos := board.NewPosition()
	key := pos.PolyglotHash()

	var buf bytes.Buffer
	writeRecord(&buf, key, encodeMove(board.E2, board.E4), 10)
	writeRecord(&buf, key, encodeMove(board.D2, board.D4), 80)
	writeRecord(&buf, key, encodeMove(board.G1, board.F3), 40)

	b, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	moves := b.Moves(pos)
	if len(moves) != 3 {
		t.Fatalf("Moves returned %d entries, want 3", len(moves))
	}
	for i := 1; i < len(moves); i++ {
		if moves[i].Weight > moves[i-1].Weight {
			t.Fatalf("Moves not sorted by weight: %v", moves)
		}
	}
	if moves[0].Move.From() != board.D2 || moves[0].Move.To() != board.D4 {
		t.Errorf("heaviest move = %s, want d2d4", moves[0].Move)
	}
}

func TestDecodeMoveCastling(t *testing.T) {
	// Polyglot encodes white kingside castling as e1h1.
	move := decodeMove(encodeMove(board.E1, board.H1))
	if move.From() != board.E1 || move.To() != board.G1 {
		t.Errorf("decoded castle = %s, want e1g1", move)
	}
}

func TestDecodeMovePromotion(t *testing.T) {
	data := encodeMove(board.E7, board.E8) | 4<<12 // queen
	move := decodeMove(data)
	if !move.IsPromotion() || move.Promotion() != board.Queen {
		t.Errorf("decoded promotion = %s, want e7e8q", move)
	}
}

func TestPolyglotHashStartposKnownValue(t *testing.T) {
	// Reference key from the Polyglot book format specification.
	const want = uint64(0x463b96181691fc9c)
	if got := board.NewPosition().PolyglotHash(); got != want {
		t.Errorf("start position key = %016x, want %016x", got, want)
	}
}

func TestPolyglotHashReferencePositions(t *testing.T) {
	// The remaining reference keys from the Polyglot book format
	// specification. They cover en passant squares both with and
	// without a capturing pawn, king and rook moves dropping
	// castling rights, and an en passant capture.
	cases := []struct {
		fen  string
		want uint64
	}{
		{"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1", 0x823c9b50fd114196},
		{"rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 2", 0x0756b94461c50fb0},
		{"rnbqkbnr/ppp1pppp/8/3pP3/8/8/PPPP1PPP/RNBQKBNR b KQkq - 0 2", 0x662fafb965db29d4},
		{"rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3", 0x22a48b5a8e47ff78},
		{"rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPPKPPP/RNBQ1BNR b kq - 0 3", 0x652a607ca3f242c1},
		{"rnbq1bnr/ppp1pkpp/8/3pPp2/8/8/PPPPKPPP/RNBQ1BNR w - - 1 4", 0x00fdd303c946bdd9},
		{"rnbqkbnr/p1pppppp/8/8/PpP4P/8/1P1PPPP1/RNBQKBNR b KQkq c3 0 3", 0x3c8123ea7b067637},
		{"rnbqkbnr/p1pppppp/8/8/P6P/R1p5/1P1PPPP1/1NBQKBNR b Kkq - 0 4", 0x5c3f9b829b279560},
	}
	for _, tc := range cases {
		pos, err := board.ParseFEN(tc.fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", tc.fen, err)
		}
		if got := pos.PolyglotHash(); got != tc.want {
			t.Errorf("%s: key = %016x, want %016x", tc.fen, got, tc.want)
		}
	}
}
