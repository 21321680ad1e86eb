package board

// Perft counts the leaf nodes of the legal move tree to the given depth.
// It is the standard movegen correctness and throughput benchmark.
func Perft(p *Position, depth int) uint64 {
	if depth <= 0 {
		return 1
	}
	moves := p.GenerateLegalMoves()
	if depth == 1 {
		return uint64(moves.Len())
	}
	var nodes uint64
	for _, m := range moves.Slice() {
		undo := p.MakeMove(m)
		nodes += Perft(p, depth-1)
		p.UnmakeMove(m, undo)
	}
	return nodes
}

// PerftDivide returns the per-root-move leaf counts, for debugging a
// disagreement with reference numbers.
func PerftDivide(p *Position, depth int) map[Move]uint64 {
	out := make(map[Move]uint64)
	for _, m := range p.GenerateLegalMoves().Slice() {
		undo := p.MakeMove(m)
		out[m] = Perft(p, depth-1)
		p.UnmakeMove(m, undo)
	}
	return out
}
