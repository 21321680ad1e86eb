package board

// GenerateLegalMoves returns every legal move in the position.
func (p *Position) GenerateLegalMoves() *MoveList {
	var ml MoveList
	p.generatePseudoLegal(&ml)
	return p.keepLegal(&ml)
}

// GenerateCaptures returns legal captures and promotions, for quiescence.
func (p *Position) GenerateCaptures() *MoveList {
	var ml MoveList
	p.generateCaptures(&ml)
	return p.keepLegal(&ml)
}

// GenerateChecks returns legal quiet moves that give check, for the first
// quiescence ply.
func (p *Position) GenerateChecks() *MoveList {
	var ml MoveList
	p.generateQuietChecks(&ml)
	return p.keepLegal(&ml)
}

func (p *Position) generatePseudoLegal(ml *MoveList) {
	us := p.SideToMove
	occ := p.AllOccupied

	p.generatePawnMoves(ml, us, p.Occupied[us.Other()], occ)
	p.generatePieceMoves(ml, us, ^p.Occupied[us], occ)

	from := p.KingSquare[us]
	for attacks := KingAttacks(from) &^ p.Occupied[us]; attacks != 0; {
		ml.Add(NewMove(from, attacks.PopLSB()))
	}
	p.generateCastles(ml, us)
}

// generatePieceMoves adds knight, bishop, rook and queen moves whose
// destination falls in targets.
func (p *Position) generatePieceMoves(ml *MoveList, us Color, targets, occ Bitboard) {
	for pieces := p.Pieces[us][Knight]; pieces != 0; {
		from := pieces.PopLSB()
		for attacks := KnightAttacks(from) & targets; attacks != 0; {
			ml.Add(NewMove(from, attacks.PopLSB()))
		}
	}
	for pieces := p.Pieces[us][Bishop]; pieces != 0; {
		from := pieces.PopLSB()
		for attacks := BishopAttacks(from, occ) & targets; attacks != 0; {
			ml.Add(NewMove(from, attacks.PopLSB()))
		}
	}
	for pieces := p.Pieces[us][Rook]; pieces != 0; {
		from := pieces.PopLSB()
		for attacks := RookAttacks(from, occ) & targets; attacks != 0; {
			ml.Add(NewMove(from, attacks.PopLSB()))
		}
	}
	for pieces := p.Pieces[us][Queen]; pieces != 0; {
		from := pieces.PopLSB()
		for attacks := QueenAttacks(from, occ) & targets; attacks != 0; {
			ml.Add(NewMove(from, attacks.PopLSB()))
		}
	}
}

func (p *Position) generatePawnMoves(ml *MoveList, us Color, enemies, occ Bitboard) {
	pawns := p.Pieces[us][Pawn]
	empty := ^occ

	var push1, push2, capL, capR, promoRank Bitboard
	var fwd int
	if us == White {
		push1 = pawns.North() & empty
		push2 = (push1 & Rank3BB).North() & empty
		capL = pawns.NorthWest() & enemies
		capR = pawns.NorthEast() & enemies
		promoRank = Rank8BB
		fwd = 8
	} else {
		push1 = pawns.South() & empty
		push2 = (push1 & Rank6BB).South() & empty
		capL = pawns.SouthWest() & enemies
		capR = pawns.SouthEast() & enemies
		promoRank = Rank1BB
		fwd = -8
	}

	for bb := push1 &^ promoRank; bb != 0; {
		to := bb.PopLSB()
		ml.Add(NewMove(Square(int(to)-fwd), to))
	}
	for bb := push2; bb != 0; {
		to := bb.PopLSB()
		ml.Add(NewMove(Square(int(to)-2*fwd), to))
	}
	for bb := capL &^ promoRank; bb != 0; {
		to := bb.PopLSB()
		ml.Add(NewMove(Square(int(to)-fwd+1), to))
	}
	for bb := capR &^ promoRank; bb != 0; {
		to := bb.PopLSB()
		ml.Add(NewMove(Square(int(to)-fwd-1), to))
	}

	for bb := push1 & promoRank; bb != 0; {
		to := bb.PopLSB()
		addPromotions(ml, Square(int(to)-fwd), to)
	}
	for bb := capL & promoRank; bb != 0; {
		to := bb.PopLSB()
		addPromotions(ml, Square(int(to)-fwd+1), to)
	}
	for bb := capR & promoRank; bb != 0; {
		to := bb.PopLSB()
		addPromotions(ml, Square(int(to)-fwd-1), to)
	}

	p.generateEnPassant(ml, us, pawns)
}

func (p *Position) generateEnPassant(ml *MoveList, us Color, pawns Bitboard) {
	if p.EnPassant == NoSquare {
		return
	}
	// pawns that attack the ep square are exactly the pawns an enemy pawn
	// on that square would attack
	for takers := PawnAttacks(us.Other(), p.EnPassant) & pawns; takers != 0; {
		ml.Add(NewEnPassant(takers.PopLSB(), p.EnPassant))
	}
}

func addPromotions(ml *MoveList, from, to Square) {
	ml.Add(NewPromotion(from, to, Queen))
	ml.Add(NewPromotion(from, to, Rook))
	ml.Add(NewPromotion(from, to, Bishop))
	ml.Add(NewPromotion(from, to, Knight))
}

var castleSides = [4]struct {
	right     CastlingRights
	kFrom     Square
	kTo       Square
	emptyMask Bitboard
	checkSqs  [3]Square
}{
	{CastleWhiteKing, E1, G1, SquareBB(F1) | SquareBB(G1), [3]Square{E1, F1, G1}},
	{CastleWhiteQueen, E1, C1, SquareBB(B1) | SquareBB(C1) | SquareBB(D1), [3]Square{E1, D1, C1}},
	{CastleBlackKing, E8, G8, SquareBB(F8) | SquareBB(G8), [3]Square{E8, F8, G8}},
	{CastleBlackQueen, E8, C8, SquareBB(B8) | SquareBB(C8) | SquareBB(D8), [3]Square{E8, D8, C8}},
}

func (p *Position) generateCastles(ml *MoveList, us Color) {
	them := us.Other()
	lo, hi := 0, 2
	if us == Black {
		lo, hi = 2, 4
	}
	for _, cs := range castleSides[lo:hi] {
		if p.CastlingRights&cs.right == 0 || p.AllOccupied&cs.emptyMask != 0 {
			continue
		}
		safe := true
		for _, sq := range cs.checkSqs {
			if p.IsSquareAttacked(sq, them) {
				safe = false
				break
			}
		}
		if safe {
			ml.Add(NewCastling(cs.kFrom, cs.kTo))
		}
	}
}

func (p *Position) generateCaptures(ml *MoveList) {
	us := p.SideToMove
	enemies := p.Occupied[us.Other()]
	occ := p.AllOccupied
	pawns := p.Pieces[us][Pawn]

	var capL, capR, pushPromo, promoRank Bitboard
	var fwd int
	if us == White {
		capL = pawns.NorthWest() & enemies
		capR = pawns.NorthEast() & enemies
		pushPromo = pawns.North() & ^occ & Rank8BB
		promoRank = Rank8BB
		fwd = 8
	} else {
		capL = pawns.SouthWest() & enemies
		capR = pawns.SouthEast() & enemies
		pushPromo = pawns.South() & ^occ & Rank1BB
		promoRank = Rank1BB
		fwd = -8
	}

	for bb := capL &^ promoRank; bb != 0; {
		to := bb.PopLSB()
		ml.Add(NewMove(Square(int(to)-fwd+1), to))
	}
	for bb := capR &^ promoRank; bb != 0; {
		to := bb.PopLSB()
		ml.Add(NewMove(Square(int(to)-fwd-1), to))
	}
	for bb := capL & promoRank; bb != 0; {
		to := bb.PopLSB()
		addPromotions(ml, Square(int(to)-fwd+1), to)
	}
	for bb := capR & promoRank; bb != 0; {
		to := bb.PopLSB()
		addPromotions(ml, Square(int(to)-fwd-1), to)
	}
	// quiet promotions count as tactical for quiescence purposes
	for bb := pushPromo; bb != 0; {
		to := bb.PopLSB()
		addPromotions(ml, Square(int(to)-fwd), to)
	}
	p.generateEnPassant(ml, us, pawns)

	p.generatePieceMoves(ml, us, enemies, occ)

	from := p.KingSquare[us]
	for attacks := KingAttacks(from) & enemies; attacks != 0; {
		ml.Add(NewMove(from, attacks.PopLSB()))
	}
}

// generateQuietChecks adds non-capturing piece moves that attack the enemy
// king from the destination square.
func (p *Position) generateQuietChecks(ml *MoveList) {
	us := p.SideToMove
	enemyKing := p.KingSquare[us.Other()]
	occ := p.AllOccupied
	empty := ^occ

	knightTargets := KnightAttacks(enemyKing) & empty
	for pieces := p.Pieces[us][Knight]; pieces != 0; {
		from := pieces.PopLSB()
		for attacks := KnightAttacks(from) & knightTargets; attacks != 0; {
			ml.Add(NewMove(from, attacks.PopLSB()))
		}
	}

	diagTargets := BishopAttacks(enemyKing, occ) & empty
	lineTargets := RookAttacks(enemyKing, occ) & empty
	for pieces := p.Pieces[us][Bishop]; pieces != 0; {
		from := pieces.PopLSB()
		for attacks := BishopAttacks(from, occ) & diagTargets; attacks != 0; {
			ml.Add(NewMove(from, attacks.PopLSB()))
		}
	}
	for pieces := p.Pieces[us][Rook]; pieces != 0; {
		from := pieces.PopLSB()
		for attacks := RookAttacks(from, occ) & lineTargets; attacks != 0; {
			ml.Add(NewMove(from, attacks.PopLSB()))
		}
	}
	for pieces := p.Pieces[us][Queen]; pieces != 0; {
		from := pieces.PopLSB()
		for attacks := QueenAttacks(from, occ) & (diagTargets | lineTargets); attacks != 0; {
			ml.Add(NewMove(from, attacks.PopLSB()))
		}
	}
}

// keepLegal filters a pseudo-legal list down to legal moves. Moves by
// unpinned pieces other than the king are legal without further work when
// not in check; only king moves, pinned pieces and en passant need care.
func (p *Position) keepLegal(ml *MoveList) *MoveList {
	out := &MoveList{}
	pinned := p.Pinned()
	ksq := p.KingSquare[p.SideToMove]
	inCheck := p.Checkers != 0

	for _, m := range ml.Slice() {
		from := m.From()
		if !inCheck && from != ksq && !m.IsEnPassant() && pinned&SquareBB(from) == 0 {
			out.Add(m)
			continue
		}
		if p.isLegal(m, pinned) {
			out.Add(m)
		}
	}
	return out
}

// isLegal decides legality for the cases keepLegal could not fast-path.
func (p *Position) isLegal(m Move, pinned Bitboard) bool {
	us := p.SideToMove
	them := us.Other()
	from, to := m.From(), m.To()
	ksq := p.KingSquare[us]

	if from == ksq {
		if m.IsCastling() {
			// generation already verified the path; just refuse in check
			return p.Checkers == 0
		}
		// slide the king out of its own shadow before testing the target
		occ := p.AllOccupied &^ SquareBB(from)
		return p.AttackersByColor(to, them, occ) == 0
	}

	if p.Checkers != 0 {
		if p.Checkers.Several() {
			return false // double check, only the king moves
		}
		checker := p.Checkers.LSB()
		if m.IsEnPassant() {
			victim := epVictim(us, to)
			if victim != checker {
				return false
			}
			return p.isLegalEnPassant(m)
		}
		if (SquareBB(checker)|Between(checker, ksq))&SquareBB(to) == 0 {
			return false
		}
		return pinned&SquareBB(from) == 0 || Aligned(from, to, ksq)
	}

	if m.IsEnPassant() {
		return p.isLegalEnPassant(m)
	}
	return pinned&SquareBB(from) == 0 || Aligned(from, to, ksq)
}

// isLegalEnPassant plays the capture out. Removing two pawns from one rank
// can uncover a horizontal attack the pin test misses.
func (p *Position) isLegalEnPassant(m Move) bool {
	us := p.SideToMove
	ksq := p.KingSquare[us]
	undo := p.MakeMove(m)
	attacked := p.IsSquareAttacked(ksq, us.Other())
	p.UnmakeMove(m, undo)
	return !attacked
}

func epVictim(us Color, epSq Square) Square {
	if us == White {
		return epSq - 8
	}
	return epSq + 8
}

// MakeMove applies a pseudo-legal move and returns the state needed to
// undo it. Legality is the caller's responsibility.
func (p *Position) MakeMove(m Move) Undo {
	undo := Undo{
		Captured:    NoPiece,
		Castling:    p.CastlingRights,
		EnPassant:   p.EnPassant,
		HalfMove:    p.HalfMoveClock,
		Hash:        p.Hash,
		Checkers:    p.Checkers,
		KingSquare:  p.KingSquare,
		Pieces:      p.Pieces,
		Occupied:    p.Occupied,
		AllOccupied: p.AllOccupied,
	}

	us := p.SideToMove
	them := us.Other()
	from, to := m.From(), m.To()
	piece := p.PieceAt(from)
	pt := piece.Type()

	p.Hash ^= zobristSide
	p.Hash ^= zobristCastling[p.CastlingRights]
	if p.EnPassant != NoSquare {
		p.Hash ^= zobristEnPassant[p.EnPassant.File()]
	}
	p.EnPassant = NoSquare

	switch {
	case m.IsEnPassant():
		victim := epVictim(us, to)
		undo.Captured = NewPiece(Pawn, them)
		p.dropPiece(undo.Captured, victim)
		p.Hash ^= zobristPiece[them][Pawn][victim]
	default:
		if captured := p.PieceAt(to); captured != NoPiece {
			undo.Captured = captured
			p.dropPiece(captured, to)
			p.Hash ^= zobristPiece[them][captured.Type()][to]
		}
	}

	p.shiftPiece(piece, from, to)
	p.Hash ^= zobristPiece[us][pt][from] ^ zobristPiece[us][pt][to]

	if m.IsPromotion() {
		promo := m.Promotion()
		p.Pieces[us][Pawn] &^= SquareBB(to)
		p.Pieces[us][promo] |= SquareBB(to)
		p.Hash ^= zobristPiece[us][Pawn][to] ^ zobristPiece[us][promo][to]
	}

	if m.IsCastling() {
		var rookFrom, rookTo Square
		if to > from {
			rookFrom, rookTo = NewSquare(7, from.Rank()), NewSquare(5, from.Rank())
		} else {
			rookFrom, rookTo = NewSquare(0, from.Rank()), NewSquare(3, from.Rank())
		}
		p.shiftPiece(NewPiece(Rook, us), rookFrom, rookTo)
		p.Hash ^= zobristPiece[us][Rook][rookFrom] ^ zobristPiece[us][Rook][rookTo]
	}

	if pt == King {
		if us == White {
			p.CastlingRights &^= CastleWhiteKing | CastleWhiteQueen
		} else {
			p.CastlingRights &^= CastleBlackKing | CastleBlackQueen
		}
	}
	// rook moves and rook captures both drop the matching right
	if from == A1 || to == A1 {
		p.CastlingRights &^= CastleWhiteQueen
	}
	if from == H1 || to == H1 {
		p.CastlingRights &^= CastleWhiteKing
	}
	if from == A8 || to == A8 {
		p.CastlingRights &^= CastleBlackQueen
	}
	if from == H8 || to == H8 {
		p.CastlingRights &^= CastleBlackKing
	}
	p.Hash ^= zobristCastling[p.CastlingRights]

	if pt == Pawn && absInt(int(to)-int(from)) == 16 {
		ep := Square((int(from) + int(to)) / 2)
		p.EnPassant = ep
		p.Hash ^= zobristEnPassant[ep.File()]
	}

	if pt == Pawn || undo.Captured != NoPiece {
		p.HalfMoveClock = 0
	} else {
		p.HalfMoveClock++
	}
	if us == Black {
		p.FullMoveNumber++
	}

	p.SideToMove = them
	p.updateCheckers()
	return undo
}

// UnmakeMove restores the position saved by MakeMove.
func (p *Position) UnmakeMove(m Move, undo Undo) {
	us := p.SideToMove.Other()
	p.CastlingRights = undo.Castling
	p.EnPassant = undo.EnPassant
	p.HalfMoveClock = undo.HalfMove
	p.Hash = undo.Hash
	p.Checkers = undo.Checkers
	p.KingSquare = undo.KingSquare
	p.Pieces = undo.Pieces
	p.Occupied = undo.Occupied
	p.AllOccupied = undo.AllOccupied
	p.SideToMove = us
	if us == Black {
		p.FullMoveNumber--
	}
}

// HasLegalMoves reports whether the side to move has any legal move,
// without materializing the full list.
func (p *Position) HasLegalMoves() bool {
	var ml MoveList
	p.generatePseudoLegal(&ml)
	pinned := p.Pinned()
	ksq := p.KingSquare[p.SideToMove]
	inCheck := p.Checkers != 0
	for _, m := range ml.Slice() {
		from := m.From()
		if !inCheck && from != ksq && !m.IsEnPassant() && pinned&SquareBB(from) == 0 {
			return true
		}
		if p.isLegal(m, pinned) {
			return true
		}
	}
	return false
}

// IsCheckmate reports check with no legal reply.
func (p *Position) IsCheckmate() bool { return p.InCheck() && !p.HasLegalMoves() }

// IsStalemate reports no legal reply while not in check.
func (p *Position) IsStalemate() bool { return !p.InCheck() && !p.HasLegalMoves() }

// IsInsufficientMaterial reports positions where neither side can ever
// deliver mate: bare kings, or king plus a single minor piece.
func (p *Position) IsInsufficientMaterial() bool {
	if p.Pieces[White][Pawn]|p.Pieces[Black][Pawn]|
		p.Pieces[White][Rook]|p.Pieces[Black][Rook]|
		p.Pieces[White][Queen]|p.Pieces[Black][Queen] != 0 {
		return false
	}
	wMinors := (p.Pieces[White][Knight] | p.Pieces[White][Bishop]).Count()
	bMinors := (p.Pieces[Black][Knight] | p.Pieces[Black][Bishop]).Count()
	return wMinors+bMinors <= 1
}
