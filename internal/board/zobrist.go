package board

// Zobrist keys. Generated from a fixed-seed PRNG so hashes are stable
// across runs and processes sharing a transposition table agree.
var (
	zobristPiece     [2][6][64]uint64
	zobristEnPassant [8]uint64
	zobristCastling  [16]uint64
	zobristSide      uint64
)

// xorshift64* keeps key generation dependency-free and reproducible.
type xorshift struct{ state uint64 }

func (x *xorshift) next() uint64 {
	x.state ^= x.state >> 12
	x.state ^= x.state << 25
	x.state ^= x.state >> 27
	return x.state * 0x2545F4914F6CDD1D
}

func init() {
	rng := xorshift{state: 0x9E3779B97F4A7C15}
	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			for sq := A1; sq <= H8; sq++ {
				zobristPiece[c][pt][sq] = rng.next()
			}
		}
	}
	for f := 0; f < 8; f++ {
		zobristEnPassant[f] = rng.next()
	}
	for i := range zobristCastling {
		zobristCastling[i] = rng.next()
	}
	zobristSide = rng.next()
}
