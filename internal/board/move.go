package board

import "fmt"

// Move packs a move into 16 bits:
// bits 0-5 from square, bits 6-11 to square,
// bits 12-13 promotion piece (0=N 1=B 2=R 3=Q),
// bits 14-15 kind (normal, promotion, en passant, castling).
type Move uint16

type MoveKind uint16

const (
	KindNormal    MoveKind = 0 << 14
	KindPromotion MoveKind = 1 << 14
	KindEnPassant MoveKind = 2 << 14
	KindCastling  MoveKind = 3 << 14
)

// NoMove is the zero move, never a legal move.
const NoMove Move = 0

func NewMove(from, to Square) Move {
	return Move(from) | Move(to)<<6
}

func NewPromotion(from, to Square, promo PieceType) Move {
	return Move(from) | Move(to)<<6 | Move(promo-Knight)<<12 | Move(KindPromotion)
}

func NewEnPassant(from, to Square) Move {
	return Move(from) | Move(to)<<6 | Move(KindEnPassant)
}

func NewCastling(from, to Square) Move {
	return Move(from) | Move(to)<<6 | Move(KindCastling)
}

func (m Move) From() Square   { return Square(m & 0x3F) }
func (m Move) To() Square     { return Square(m>>6) & 0x3F }
func (m Move) Kind() MoveKind { return MoveKind(m) & 0xC000 }

// Promotion is meaningful only when Kind() == KindPromotion.
func (m Move) Promotion() PieceType { return PieceType(m>>12&3) + Knight }

func (m Move) IsPromotion() bool { return m.Kind() == KindPromotion }
func (m Move) IsEnPassant() bool { return m.Kind() == KindEnPassant }
func (m Move) IsCastling() bool  { return m.Kind() == KindCastling }

// IsCapture reports whether m takes a piece on pos.
func (m Move) IsCapture(pos *Position) bool {
	return m.IsEnPassant() || pos.PieceAt(m.To()) != NoPiece
}

// String is the UCI long algebraic form, e.g. "e2e4" or "e7e8q".
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		s += string("nbrq"[m.Promotion()-Knight])
	}
	return s
}

// ParseMove reads a UCI move string in the context of pos, which is needed
// to recognize castling and en passant.
func ParseMove(s string, pos *Position) (Move, error) {
	if len(s) < 4 || len(s) > 5 {
		return NoMove, fmt.Errorf("bad move %q", s)
	}
	from, err := ParseSquare(s[:2])
	if err != nil {
		return NoMove, err
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, err
	}
	if len(s) == 5 {
		var promo PieceType
		switch s[4] {
		case 'n':
			promo = Knight
		case 'b':
			promo = Bishop
		case 'r':
			promo = Rook
		case 'q':
			promo = Queen
		default:
			return NoMove, fmt.Errorf("bad promotion piece %q", s[4])
		}
		return NewPromotion(from, to, promo), nil
	}
	p := pos.PieceAt(from)
	if p == NoPiece {
		return NoMove, fmt.Errorf("no piece on %s", from)
	}
	switch {
	case p.Type() == King && absInt(int(to)-int(from)) == 2:
		return NewCastling(from, to), nil
	case p.Type() == Pawn && to == pos.EnPassant:
		return NewEnPassant(from, to), nil
	}
	return NewMove(from, to), nil
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// MoveList holds generated moves without heap allocation. 256 covers the
// maximum move count of any legal position.
type MoveList struct {
	moves [256]Move
	count int
}

func (ml *MoveList) Add(m Move)         { ml.moves[ml.count] = m; ml.count++ }
func (ml *MoveList) Len() int           { return ml.count }
func (ml *MoveList) Get(i int) Move     { return ml.moves[i] }
func (ml *MoveList) Swap(i, j int)      { ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i] }
func (ml *MoveList) Clear()             { ml.count = 0 }
func (ml *MoveList) Slice() []Move      { return ml.moves[:ml.count] }
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

// Undo snapshots everything MakeMove changes so UnmakeMove restores the
// position bit for bit, hash included.
type Undo struct {
	Captured    Piece
	Castling    CastlingRights
	EnPassant   Square
	HalfMove    int
	Hash        uint64
	Checkers    Bitboard
	KingSquare  [2]Square
	Pieces      [2][6]Bitboard
	Occupied    [2]Bitboard
	AllOccupied Bitboard
}
