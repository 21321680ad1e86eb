package board

// Precomputed attack tables for the leapers, plus the between/line
// geometry used by pin and check detection.
var (
	knightAttacks [64]Bitboard
	kingAttacks   [64]Bitboard
	pawnAttacks   [2][64]Bitboard

	betweenBB [64][64]Bitboard // squares strictly between, empty if unaligned
	lineBB    [64][64]Bitboard // full line through both squares, endpoints included
)

func init() {
	for sq := A1; sq <= H8; sq++ {
		bb := SquareBB(sq)

		knightAttacks[sq] = (bb<<17)&^FileABB | (bb<<15)&^FileHBB |
			(bb>>17)&^FileHBB | (bb>>15)&^FileABB |
			(bb<<10)&^(FileABB|FileBBB) | (bb<<6)&^(FileGBB|FileHBB) |
			(bb>>10)&^(FileGBB|FileHBB) | (bb>>6)&^(FileABB|FileBBB)

		kingAttacks[sq] = bb.North() | bb.South() | bb.East() | bb.West() |
			bb.NorthEast() | bb.NorthWest() | bb.SouthEast() | bb.SouthWest()

		pawnAttacks[White][sq] = bb.NorthEast() | bb.NorthWest()
		pawnAttacks[Black][sq] = bb.SouthEast() | bb.SouthWest()
	}
	initRays()
	initMagics()
}

func initRays() {
	for s1 := A1; s1 <= H8; s1++ {
		for s2 := A1; s2 <= H8; s2++ {
			df := signInt(s2.File() - s1.File())
			dr := signInt(s2.Rank() - s1.Rank())
			if s1 == s2 || (df != 0 && dr != 0 && absInt(s2.File()-s1.File()) != absInt(s2.Rank()-s1.Rank())) {
				continue
			}

			f, r := s1.File()+df, s1.Rank()+dr
			for f != s2.File() || r != s2.Rank() {
				betweenBB[s1][s2] |= SquareBB(NewSquare(f, r))
				f += df
				r += dr
			}

			for f, r = s1.File(), s1.Rank(); f >= 0 && f <= 7 && r >= 0 && r <= 7; f, r = f-df, r-dr {
				lineBB[s1][s2] |= SquareBB(NewSquare(f, r))
			}
			for f, r = s1.File()+df, s1.Rank()+dr; f >= 0 && f <= 7 && r >= 0 && r <= 7; f, r = f+df, r+dr {
				lineBB[s1][s2] |= SquareBB(NewSquare(f, r))
			}
		}
	}
}

func signInt(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

func KnightAttacks(sq Square) Bitboard          { return knightAttacks[sq] }
func KingAttacks(sq Square) Bitboard            { return kingAttacks[sq] }
func PawnAttacks(c Color, sq Square) Bitboard   { return pawnAttacks[c][sq] }
func BishopAttacks(sq Square, occ Bitboard) Bitboard {
	return magicBishopAttacks(sq, occ)
}
func RookAttacks(sq Square, occ Bitboard) Bitboard {
	return magicRookAttacks(sq, occ)
}
func QueenAttacks(sq Square, occ Bitboard) Bitboard {
	return magicBishopAttacks(sq, occ) | magicRookAttacks(sq, occ)
}

// Between returns the squares strictly between s1 and s2, empty when they
// do not share a rank, file or diagonal.
func Between(s1, s2 Square) Bitboard { return betweenBB[s1][s2] }

// Line returns the full line through s1 and s2 including both endpoints.
func Line(s1, s2 Square) Bitboard { return lineBB[s1][s2] }

// Aligned reports whether s3 lies on the line through s1 and s2.
func Aligned(s1, s2, s3 Square) bool { return lineBB[s1][s2]&SquareBB(s3) != 0 }

// AttackersByColor returns the pieces of color c attacking sq under the
// given occupancy.
func (p *Position) AttackersByColor(sq Square, c Color, occ Bitboard) Bitboard {
	return pawnAttacks[c.Other()][sq]&p.Pieces[c][Pawn] |
		knightAttacks[sq]&p.Pieces[c][Knight] |
		kingAttacks[sq]&p.Pieces[c][King] |
		BishopAttacks(sq, occ)&(p.Pieces[c][Bishop]|p.Pieces[c][Queen]) |
		RookAttacks(sq, occ)&(p.Pieces[c][Rook]|p.Pieces[c][Queen])
}

// AttackersTo returns all pieces of either color attacking sq.
func (p *Position) AttackersTo(sq Square, occ Bitboard) Bitboard {
	return p.AttackersByColor(sq, White, occ) | p.AttackersByColor(sq, Black, occ)
}

// IsSquareAttacked reports whether by attacks sq.
func (p *Position) IsSquareAttacked(sq Square, by Color) bool {
	return p.AttackersByColor(sq, by, p.AllOccupied) != 0
}

func (p *Position) updateCheckers() {
	us := p.SideToMove
	p.Checkers = p.AttackersByColor(p.KingSquare[us], us.Other(), p.AllOccupied)
}
