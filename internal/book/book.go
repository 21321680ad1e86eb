// Package book reads Polyglot opening books. A book is loaded once,
// kept in memory and only ever probed; the engine core never touches
// it.
package book

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sort"

	"github.com/MatN23/RustChessEngine/internal/board"
)

// Entry is one weighted book move for a position.
type Entry struct {
	Move   board.Move
	Weight uint16
}

// Book maps Polyglot position keys to their weighted moves.
type Book struct {
	entries map[uint64][]Entry
}

// Polyglot records are 16 bytes: key(8) move(2) weight(2) learn(4),
// all big-endian. The learn field is ignored.
const recordSize = 16

// Load reads a Polyglot book file.
func Load(path string) (*Book, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("book: %w", err)
	}
	defer f.Close()

	b, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("book %s: %w", path, err)
	}
	return b, nil
}

// Read parses Polyglot records from r until EOF.
func Read(r io.Reader) (*Book, error) {
	b := &Book{entries: make(map[uint64][]Entry)}

	var rec [recordSize]byte
	for {
		if _, err := io.ReadFull(r, rec[:]); err != nil {
			if err == io.EOF {
				return b, nil
			}
			return nil, err
		}

		key := binary.BigEndian.Uint64(rec[0:8])
		move := decodeMove(binary.BigEndian.Uint16(rec[8:10]))
		weight := binary.BigEndian.Uint16(rec[10:12])

		if move != board.NoMove {
			b.entries[key] = append(b.entries[key], Entry{Move: move, Weight: weight})
		}
	}
}

// Polyglot encodes castling as king-takes-rook; remap to the standard
// king-two-squares destinations used everywhere else.
var castleRemap = map[[2]board.Square]board.Square{
	{board.E1, board.H1}: board.G1,
	{board.E1, board.A1}: board.C1,
	{board.E8, board.H8}: board.G8,
	{board.E8, board.A8}: board.C8,
}

var promoTypes = [5]board.PieceType{board.NoPieceType, board.Knight, board.Bishop, board.Rook, board.Queen}

// decodeMove unpacks a Polyglot move: bits 0-5 to, 6-11 from,
// 12-14 promotion piece.
func decodeMove(data uint16) board.Move {
	to := board.NewSquare(int(data&7), int(data>>3&7))
	from := board.NewSquare(int(data>>6&7), int(data>>9&7))
	promo := data >> 12 & 7

	if remapped, ok := castleRemap[[2]board.Square{from, to}]; ok {
		to = remapped
	}

	if promo >= 1 && promo <= 4 {
		return board.NewPromotion(from, to, promoTypes[promo])
	}
	return board.NewMove(from, to)
}

// Probe returns a weighted-random book move for pos, or false when the
// position is out of book. The returned move carries the full flags of
// the matching legal move.
func (b *Book) Probe(pos *board.Position) (board.Move, bool) {
	entries := b.Moves(pos)
	if len(entries) == 0 {
		return board.NoMove, false
	}

	var total uint32
	for _, e := range entries {
		total += uint32(e.Weight)
	}

	chosen := entries[0].Move
	if total > 0 {
		pick := rand.Uint32() % total
		var seen uint32
		for _, e := range entries {
			seen += uint32(e.Weight)
			if pick < seen {
				chosen = e.Move
				break
			}
		}
	}

	if m := matchLegal(pos, chosen); m != board.NoMove {
		return m, true
	}
	return board.NoMove, false
}

// Moves returns every book move for pos, heaviest first.
func (b *Book) Moves(pos *board.Position) []Entry {
	if b == nil {
		return nil
	}
	entries := b.entries[pos.PolyglotHash()]
	if len(entries) == 0 {
		return nil
	}
	out := make([]Entry, len(entries))
	copy(out, entries)
	sort.Slice(out, func(i, j int) bool { return out[i].Weight > out[j].Weight })
	return out
}

// matchLegal resolves a decoded book move against the position's legal
// moves so en passant and castling flags come out right. A book move
// with no legal counterpart (a corrupt or mismatched book) returns
// board.NoMove.
func matchLegal(pos *board.Position, m board.Move) board.Move {
	legal := pos.GenerateLegalMoves()
	for i := 0; i < legal.Len(); i++ {
		lm := legal.Get(i)
		if lm.From() != m.From() || lm.To() != m.To() {
			continue
		}
		if lm.IsPromotion() != m.IsPromotion() {
			continue
		}
		if lm.IsPromotion() && lm.Promotion() != m.Promotion() {
			continue
		}
		return lm
	}
	return board.NoMove
}

// Size returns the number of distinct positions in the book.
func (b *Book) Size() int {
	if b == nil {
		return 0
	}
	return len(b.entries)
}
