package board

import (
	"fmt"
	"strings"
)

// CastlingRights is a bit set of the four castling permissions.
type CastlingRights uint8

const (
	CastleWhiteKing CastlingRights = 1 << iota
	CastleWhiteQueen
	CastleBlackKing
	CastleBlackQueen

	CastleNone CastlingRights = 0
	CastleAll  CastlingRights = CastleWhiteKing | CastleWhiteQueen | CastleBlackKing | CastleBlackQueen
)

func (cr CastlingRights) String() string {
	if cr == CastleNone {
		return "-"
	}
	var sb strings.Builder
	for i, ch := range []byte("KQkq") {
		if cr&(1<<i) != 0 {
			sb.WriteByte(ch)
		}
	}
	return sb.String()
}

// Position is a complete chess position. The piece bitboards are the
// source of truth; Occupied, AllOccupied, KingSquare and Checkers are
// caches kept in sync by make/unmake.
type Position struct {
	Pieces [2][6]Bitboard

	Occupied    [2]Bitboard
	AllOccupied Bitboard

	SideToMove     Color
	CastlingRights CastlingRights
	EnPassant      Square
	HalfMoveClock  int
	FullMoveNumber int

	// Hash is the Zobrist key, maintained incrementally.
	Hash uint64

	KingSquare [2]Square
	Checkers   Bitboard
}

// NewPosition returns the standard starting position.
func NewPosition() *Position {
	pos, _ := ParseFEN(StartFEN)
	return pos
}

// Copy returns an independent copy of p.
func (p *Position) Copy() *Position {
	q := *p
	return &q
}

// PieceAt returns the piece on sq, NoPiece when empty.
func (p *Position) PieceAt(sq Square) Piece {
	bb := SquareBB(sq)
	if p.AllOccupied&bb == 0 {
		return NoPiece
	}
	c := White
	if p.Occupied[Black]&bb != 0 {
		c = Black
	}
	for pt := Pawn; pt <= King; pt++ {
		if p.Pieces[c][pt]&bb != 0 {
			return NewPiece(pt, c)
		}
	}
	return NoPiece
}

// InCheck reports whether the side to move is in check.
func (p *Position) InCheck() bool { return p.Checkers != 0 }

func (p *Position) putPiece(piece Piece, sq Square) {
	c, pt := piece.Color(), piece.Type()
	bb := SquareBB(sq)
	p.Pieces[c][pt] |= bb
	p.Occupied[c] |= bb
	p.AllOccupied |= bb
	if pt == King {
		p.KingSquare[c] = sq
	}
}

func (p *Position) dropPiece(piece Piece, sq Square) {
	c, pt := piece.Color(), piece.Type()
	bb := SquareBB(sq)
	p.Pieces[c][pt] &^= bb
	p.Occupied[c] &^= bb
	p.AllOccupied &^= bb
}

func (p *Position) shiftPiece(piece Piece, from, to Square) {
	c, pt := piece.Color(), piece.Type()
	bb := SquareBB(from) | SquareBB(to)
	p.Pieces[c][pt] ^= bb
	p.Occupied[c] ^= bb
	p.AllOccupied ^= bb
	if pt == King {
		p.KingSquare[c] = to
	}
}

// Pinned returns the side-to-move pieces pinned against their own king,
// found by x-raying sliders through exactly one blocker.
func (p *Position) Pinned() Bitboard {
	us := p.SideToMove
	them := us.Other()
	ksq := p.KingSquare[us]
	var pinned Bitboard

	snipers := RookAttacks(ksq, 0)&(p.Pieces[them][Rook]|p.Pieces[them][Queen]) |
		BishopAttacks(ksq, 0)&(p.Pieces[them][Bishop]|p.Pieces[them][Queen])
	for snipers != 0 {
		sq := snipers.PopLSB()
		blockers := Between(sq, ksq) & p.AllOccupied
		if !blockers.Several() && blockers&p.Occupied[us] != 0 {
			pinned |= blockers
		}
	}
	return pinned
}

// NullUndo carries the state a null move disturbs.
type NullUndo struct {
	EnPassant Square
	Hash      uint64
}

// MakeNullMove passes the turn without moving a piece.
func (p *Position) MakeNullMove() NullUndo {
	undo := NullUndo{EnPassant: p.EnPassant, Hash: p.Hash}
	if p.EnPassant != NoSquare {
		p.Hash ^= zobristEnPassant[p.EnPassant.File()]
	}
	p.EnPassant = NoSquare
	p.SideToMove = p.SideToMove.Other()
	p.Hash ^= zobristSide
	p.updateCheckers()
	return undo
}

// UnmakeNullMove restores the state saved by MakeNullMove.
func (p *Position) UnmakeNullMove(undo NullUndo) {
	p.EnPassant = undo.EnPassant
	p.Hash = undo.Hash
	p.SideToMove = p.SideToMove.Other()
	p.updateCheckers()
}

// HasNonPawnMaterial reports whether the side to move has any piece
// besides pawns and the king. Null-move pruning is unsound without it.
func (p *Position) HasNonPawnMaterial() bool {
	us := p.SideToMove
	return p.Pieces[us][Knight]|p.Pieces[us][Bishop]|p.Pieces[us][Rook]|p.Pieces[us][Queen] != 0
}

func (p *Position) String() string {
	var sb strings.Builder
	for r := 7; r >= 0; r-- {
		fmt.Fprintf(&sb, "%d  ", r+1)
		for f := 0; f < 8; f++ {
			sb.WriteString(p.PieceAt(NewSquare(f, r)).String())
			sb.WriteByte(' ')
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("   a b c d e f g h\n")
	fmt.Fprintf(&sb, "%s to move, castling %s, ep %s, halfmove %d\n",
		p.SideToMove, p.CastlingRights, p.EnPassant, p.HalfMoveClock)
	return sb.String()
}
