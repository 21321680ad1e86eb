package board

import (
	"math/bits"
	"strings"
)

// Bitboard is a 64-bit set of squares in little-endian rank-file order:
// bit 0 = a1, bit 7 = h1, bit 56 = a8, bit 63 = h8.
type Bitboard uint64

const (
	FileABB Bitboard = 0x0101010101010101
	FileBBB Bitboard = FileABB << 1
	FileCBB Bitboard = FileABB << 2
	FileDBB Bitboard = FileABB << 3
	FileEBB Bitboard = FileABB << 4
	FileFBB Bitboard = FileABB << 5
	FileGBB Bitboard = FileABB << 6
	FileHBB Bitboard = FileABB << 7

	Rank1BB Bitboard = 0x00000000000000FF
	Rank2BB Bitboard = Rank1BB << 8
	Rank3BB Bitboard = Rank1BB << 16
	Rank4BB Bitboard = Rank1BB << 24
	Rank5BB Bitboard = Rank1BB << 32
	Rank6BB Bitboard = Rank1BB << 40
	Rank7BB Bitboard = Rank1BB << 48
	Rank8BB Bitboard = Rank1BB << 56

	EmptyBB Bitboard = 0
	FullBB  Bitboard = ^EmptyBB
)

var fileBB = [8]Bitboard{FileABB, FileBBB, FileCBB, FileDBB, FileEBB, FileFBB, FileGBB, FileHBB}
var rankBB = [8]Bitboard{Rank1BB, Rank2BB, Rank3BB, Rank4BB, Rank5BB, Rank6BB, Rank7BB, Rank8BB}

// FileBB returns the mask of the given file (0=a .. 7=h).
func FileBB(f int) Bitboard { return fileBB[f] }

// RankBB returns the mask of the given rank (0=rank 1 .. 7=rank 8).
func RankBB(r int) Bitboard { return rankBB[r] }

// AdjacentFilesBB returns the files immediately left and right of f.
func AdjacentFilesBB(f int) Bitboard {
	bb := fileBB[f]
	return bb.West() | bb.East()
}

// SquareBB returns a bitboard with only sq set.
func SquareBB(sq Square) Bitboard { return 1 << sq }

func (b Bitboard) Has(sq Square) bool      { return b&(1<<sq) != 0 }
func (b Bitboard) With(sq Square) Bitboard { return b | 1<<sq }
func (b Bitboard) Without(sq Square) Bitboard {
	return b &^ (1 << sq)
}

// Count returns the number of set squares.
func (b Bitboard) Count() int { return bits.OnesCount64(uint64(b)) }

// LSB returns the lowest set square, or NoSquare when empty.
func (b Bitboard) LSB() Square {
	if b == 0 {
		return NoSquare
	}
	return Square(bits.TrailingZeros64(uint64(b)))
}

// MSB returns the highest set square, or NoSquare when empty.
func (b Bitboard) MSB() Square {
	if b == 0 {
		return NoSquare
	}
	return Square(63 - bits.LeadingZeros64(uint64(b)))
}

// PopLSB clears and returns the lowest set square.
func (b *Bitboard) PopLSB() Square {
	sq := b.LSB()
	*b &= *b - 1
	return sq
}

// Several returns true when more than one square is set.
func (b Bitboard) Several() bool { return b&(b-1) != 0 }

func (b Bitboard) North() Bitboard { return b << 8 }
func (b Bitboard) South() Bitboard { return b >> 8 }
func (b Bitboard) East() Bitboard  { return (b << 1) &^ FileABB }
func (b Bitboard) West() Bitboard  { return (b >> 1) &^ FileHBB }

func (b Bitboard) NorthEast() Bitboard { return (b << 9) &^ FileABB }
func (b Bitboard) NorthWest() Bitboard { return (b << 7) &^ FileHBB }
func (b Bitboard) SouthEast() Bitboard { return (b >> 7) &^ FileABB }
func (b Bitboard) SouthWest() Bitboard { return (b >> 9) &^ FileHBB }

// NorthFill smears every set bit toward rank 8.
func (b Bitboard) NorthFill() Bitboard {
	b |= b << 8
	b |= b << 16
	b |= b << 32
	return b
}

// SouthFill smears every set bit toward rank 1.
func (b Bitboard) SouthFill() Bitboard {
	b |= b >> 8
	b |= b >> 16
	b |= b >> 32
	return b
}

// FileFill fills every file that contains a set bit.
func (b Bitboard) FileFill() Bitboard { return b.NorthFill() | b.SouthFill() }

// String renders the board from White's point of view, for debugging.
func (b Bitboard) String() string {
	var sb strings.Builder
	for r := 7; r >= 0; r-- {
		for f := 0; f < 8; f++ {
			if b.Has(NewSquare(f, r)) {
				sb.WriteString("X ")
			} else {
				sb.WriteString(". ")
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
