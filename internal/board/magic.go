package board

// Fancy magic bitboards for sliding attacks. The attack tables are built
// at init by enumerating every relevant occupancy of each square's mask
// and storing the ray-cast result at the magic-hashed index.

type magicEntry struct {
	mask   Bitboard
	magic  uint64
	shift  uint8
	offset uint32
}

var (
	bishopMagics [64]magicEntry
	rookMagics   [64]magicEntry

	bishopTable [5248]Bitboard
	rookTable   [102400]Bitboard
)

var bishopMagicNumbers = [64]uint64{
	0x0002020202020200, 0x0002020202020000, 0x0004010202000000, 0x0004040080000000,
	0x0001104000000000, 0x0000821040000000, 0x0000410410400000, 0x0000104104104000,
	0x0000040404040400, 0x0000020202020200, 0x0000040102020000, 0x0000040400800000,
	0x0000011040000000, 0x0000008210400000, 0x0000004104104000, 0x0000002082082000,
	0x0004000808080800, 0x0002000404040400, 0x0001000202020200, 0x0000800802004000,
	0x0000800400A00000, 0x0000200100884000, 0x0000400082082000, 0x0000200041041000,
	0x0002080010101000, 0x0001040008080800, 0x0000208004010400, 0x0000404004010200,
	0x0000840000802000, 0x0000404002011000, 0x0000808001041000, 0x0000404000820800,
	0x0001041000202000, 0x0000820800101000, 0x0000104400080800, 0x0000020080080080,
	0x0000404040040100, 0x0000808100020100, 0x0001010100020800, 0x0000808080010400,
	0x0000820820004000, 0x0000410410002000, 0x0000082088001000, 0x0000002011000800,
	0x0000080100400400, 0x0001010101000200, 0x0002020202000400, 0x0001010101000200,
	0x0000410410400000, 0x0000208208200000, 0x0000002084100000, 0x0000000020880000,
	0x0000001002020000, 0x0000040408020000, 0x0004040404040000, 0x0002020202020000,
	0x0000104104104000, 0x0000002082082000, 0x0000000020841000, 0x0000000000208800,
	0x0000000010020200, 0x0000000404080200, 0x0000040404040400, 0x0002020202020200,
}

var rookMagicNumbers = [64]uint64{
	0x0080001020400080, 0x0040001000200040, 0x0080081000200080, 0x0080040800100080,
	0x0080020400080080, 0x0080010200040080, 0x0080008001000200, 0x0080002040800100,
	0x0000800020400080, 0x0000400020005000, 0x0000801000200080, 0x0000800800100080,
	0x0000800400080080, 0x0000800200040080, 0x0000800100020080, 0x0000800040800100,
	0x0000208000400080, 0x0000404000201000, 0x0000808010002000, 0x0000808008001000,
	0x0000808004000800, 0x0000808002000400, 0x0000010100020004, 0x0000020000408104,
	0x0000208080004000, 0x0000200040005000, 0x0000100080200080, 0x0000080080100080,
	0x0000040080080080, 0x0000020080040080, 0x0000010080800200, 0x0000800080004100,
	0x0000204000800080, 0x0000200040401000, 0x0000100080802000, 0x0000080080801000,
	0x0000040080800800, 0x0000020080800400, 0x0000020001010004, 0x0000800040800100,
	0x0000204000808000, 0x0000200040008080, 0x0000100020008080, 0x0000080010008080,
	0x0000040008008080, 0x0000020004008080, 0x0000010002008080, 0x0000004081020004,
	0x0000204000800080, 0x0000200040008080, 0x0000100020008080, 0x0000080010008080,
	0x0000040008008080, 0x0000020004008080, 0x0000800100020080, 0x0000800041000080,
	0x00FFFCDDFCED714A, 0x007FFCDDFCED714A, 0x003FFFCDFFD88096, 0x0000040810002101,
	0x0001000204080011, 0x0001000204000801, 0x0001000082000401, 0x0001FFFAABFAD1A2,
}

func initMagics() {
	buildTable(bishopMagics[:], bishopTable[:], bishopMagicNumbers, bishopMask, rayBishopAttacks)
	buildTable(rookMagics[:], rookTable[:], rookMagicNumbers, rookMask, rayRookAttacks)
}

func buildTable(entries []magicEntry, table []Bitboard, magics [64]uint64,
	maskFn func(Square) Bitboard, slowFn func(Square, Bitboard) Bitboard) {

	var offset uint32
	for sq := A1; sq <= H8; sq++ {
		mask := maskFn(sq)
		bits := mask.Count()
		entries[sq] = magicEntry{
			mask:   mask,
			magic:  magics[sq],
			shift:  uint8(64 - bits),
			offset: offset,
		}
		for i := 0; i < 1<<bits; i++ {
			occ := occupancyFromIndex(i, mask)
			idx := (uint64(occ) * magics[sq]) >> (64 - bits)
			table[offset+uint32(idx)] = slowFn(sq, occ)
		}
		offset += 1 << bits
	}
}

// bishopMask is the bishop's reachable interior squares; edge squares never
// change the attack set so they are excluded from the hash.
func bishopMask(sq Square) Bitboard {
	return rayBishopAttacks(sq, 0) &^ (Rank1BB | Rank8BB | FileABB | FileHBB)
}

func rookMask(sq Square) Bitboard {
	var mask Bitboard
	for f := 1; f < 7; f++ {
		if f != sq.File() {
			mask |= SquareBB(NewSquare(f, sq.Rank()))
		}
	}
	for r := 1; r < 7; r++ {
		if r != sq.Rank() {
			mask |= SquareBB(NewSquare(sq.File(), r))
		}
	}
	return mask
}

// occupancyFromIndex spreads the bits of index over the set squares of mask.
func occupancyFromIndex(index int, mask Bitboard) Bitboard {
	var occ Bitboard
	for i := 0; mask != 0; i++ {
		sq := mask.PopLSB()
		if index&(1<<i) != 0 {
			occ |= SquareBB(sq)
		}
	}
	return occ
}

var bishopDirs = [4][2]int{{1, 1}, {-1, 1}, {1, -1}, {-1, -1}}
var rookDirs = [4][2]int{{0, 1}, {0, -1}, {1, 0}, {-1, 0}}

func rayBishopAttacks(sq Square, occ Bitboard) Bitboard {
	return rayAttacks(sq, occ, bishopDirs)
}

func rayRookAttacks(sq Square, occ Bitboard) Bitboard {
	return rayAttacks(sq, occ, rookDirs)
}

func rayAttacks(sq Square, occ Bitboard, dirs [4][2]int) Bitboard {
	var attacks Bitboard
	for _, d := range dirs {
		for f, r := sq.File()+d[0], sq.Rank()+d[1]; f >= 0 && f <= 7 && r >= 0 && r <= 7; f, r = f+d[0], r+d[1] {
			s := NewSquare(f, r)
			attacks |= SquareBB(s)
			if occ&SquareBB(s) != 0 {
				break
			}
		}
	}
	return attacks
}

func magicBishopAttacks(sq Square, occ Bitboard) Bitboard {
	m := &bishopMagics[sq]
	idx := (uint64(occ&m.mask) * m.magic) >> m.shift
	return bishopTable[m.offset+uint32(idx)]
}

func magicRookAttacks(sq Square, occ Bitboard) Bitboard {
	m := &rookMagics[sq]
	idx := (uint64(occ&m.mask) * m.magic) >> m.shift
	return rookTable[m.offset+uint32(idx)]
}
