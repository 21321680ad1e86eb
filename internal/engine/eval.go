package engine

import (
	"github.com/MatN23/RustChessEngine/internal/board"
)

// Piece values in centipawns, indexed by PieceType.
var pieceValues = [7]int{100, 320, 330, 500, 900, 20000, 0}

// Tapered evaluation phase weights. A full board gives maxPhase; the score
// blends from the middlegame term to the endgame term as material leaves.
var phaseWeight = [6]int{0, 1, 1, 2, 4, 0}

const maxPhase = 24

var passedPawnBonus = [8]int{0, 10, 20, 40, 70, 120, 200, 0}

var mobilityMgWeight = [6]int{0, 4, 5, 2, 1, 0}
var mobilityEgWeight = [6]int{0, 3, 4, 4, 2, 0}

var kingAttackWeight = [6]int{0, 20, 20, 40, 80, 0}

const (
	pawnShieldBonus      = 10
	pawnShieldMissing    = 15
	openFileNearKing     = 20
	semiOpenFileNearKing = 10

	doubledPawnMg  = 15
	doubledPawnEg  = 20
	isolatedPawnMg = 20
	isolatedPawnEg = 25

	bishopPairMg = 25
	bishopPairEg = 50

	rookOpenFileMg     = 20
	rookOpenFileEg     = 25
	rookSemiOpenFileMg = 10
	rookSemiOpenFileEg = 15

	knightOutpostMg = 25
	knightOutpostEg = 15

	tempoBonus = 10
)

var pawnPST = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	5, 10, 10, -20, -20, 10, 10, 5,
	5, -5, -10, 0, 0, -10, -5, 5,
	0, 0, 0, 20, 20, 0, 0, 0,
	5, 5, 10, 25, 25, 10, 5, 5,
	10, 10, 20, 30, 30, 20, 10, 10,
	50, 50, 50, 50, 50, 50, 50, 50,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var knightPST = [64]int{
	-50, -40, -30, -30, -30, -30, -40, -50,
	-40, -20, 0, 5, 5, 0, -20, -40,
	-30, 5, 10, 15, 15, 10, 5, -30,
	-30, 0, 15, 20, 20, 15, 0, -30,
	-30, 5, 15, 20, 20, 15, 5, -30,
	-30, 0, 10, 15, 15, 10, 0, -30,
	-40, -20, 0, 0, 0, 0, -20, -40,
	-50, -40, -30, -30, -30, -30, -40, -50,
}

var bishopPST = [64]int{
	-20, -10, -10, -10, -10, -10, -10, -20,
	-10, 5, 0, 0, 0, 0, 5, -10,
	-10, 10, 10, 10, 10, 10, 10, -10,
	-10, 0, 10, 10, 10, 10, 0, -10,
	-10, 5, 5, 10, 10, 5, 5, -10,
	-10, 0, 5, 10, 10, 5, 0, -10,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-20, -10, -10, -10, -10, -10, -10, -20,
}

var rookPST = [64]int{
	0, 0, 0, 5, 5, 0, 0, 0,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	5, 10, 10, 10, 10, 10, 10, 5,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var queenPST = [64]int{
	-20, -10, -10, -5, -5, -10, -10, -20,
	-10, 0, 5, 0, 0, 0, 0, -10,
	-10, 5, 5, 5, 5, 5, 0, -10,
	0, 0, 5, 5, 5, 5, 0, -5,
	-5, 0, 5, 5, 5, 5, 0, -5,
	-10, 0, 5, 5, 5, 5, 0, -10,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-20, -10, -10, -5, -5, -10, -10, -20,
}

var kingMgPST = [64]int{
	20, 30, 10, 0, 0, 10, 30, 20,
	20, 20, 0, 0, 0, 0, 20, 20,
	-10, -20, -20, -20, -20, -20, -20, -10,
	-20, -30, -30, -40, -40, -30, -30, -20,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
}

var kingEgPST = [64]int{
	-50, -30, -30, -30, -30, -30, -30, -50,
	-30, -30, 0, 0, 0, 0, -30, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -20, -10, 0, 0, -10, -20, -30,
	-50, -40, -30, -20, -20, -30, -40, -50,
}

// PST tables are written from White's point of view with a1 at index 0;
// Black looks them up through Square.Flip.
var pstMg = [6]*[64]int{&pawnPST, &knightPST, &bishopPST, &rookPST, &queenPST, &kingMgPST}
var pstEg = [6]*[64]int{&pawnPST, &knightPST, &bishopPST, &rookPST, &queenPST, &kingEgPST}

// Evaluate returns a static score in centipawns from the side to move's
// point of view. It never searches: the result depends only on the
// position, and mirroring the board with colors swapped negates it.
func Evaluate(pos *board.Position) int {
	var mg, eg, phase int

	for c := board.White; c <= board.Black; c++ {
		sign := 1
		if c == board.Black {
			sign = -1
		}
		for pt := board.Pawn; pt <= board.King; pt++ {
			for bb := pos.Pieces[c][pt]; bb != 0; {
				sq := bb.PopLSB()
				if c == board.Black {
					sq = sq.Flip()
				}
				mg += sign * (pieceValues[pt] + pstMg[pt][sq])
				eg += sign * (pieceValues[pt] + pstEg[pt][sq])
				phase += phaseWeight[pt]
			}
		}

		pmg, peg := pawnStructure(pos, c)
		mg += sign * pmg
		eg += sign * peg

		mmg, meg := mobility(pos, c)
		mg += sign * mmg
		eg += sign * meg

		mg += sign * kingSafety(pos, c)

		tmg, teg := pieceActivity(pos, c)
		mg += sign * tmg
		eg += sign * teg
	}

	if phase > maxPhase {
		phase = maxPhase
	}
	score := (mg*phase + eg*(maxPhase-phase)) / maxPhase

	if pos.SideToMove == board.Black {
		score = -score
	}
	return score + tempoBonus
}

// isPassed reports whether the pawn on sq has no enemy pawn ahead of it on
// its own or adjacent files.
func isPassed(pos *board.Position, sq board.Square, c board.Color) bool {
	span := board.FileBB(sq.File()) | board.AdjacentFilesBB(sq.File())
	var front board.Bitboard
	if c == board.White {
		front = board.SquareBB(sq).NorthFill() &^ board.SquareBB(sq)
		front |= front.East() | front.West()
		front &= span
	} else {
		front = board.SquareBB(sq).SouthFill() &^ board.SquareBB(sq)
		front |= front.East() | front.West()
		front &= span
	}
	return pos.Pieces[c.Other()][board.Pawn]&front == 0
}

// pawnStructure scores passed, doubled and isolated pawns for c.
func pawnStructure(pos *board.Position, c board.Color) (mg, eg int) {
	pawns := pos.Pieces[c][board.Pawn]
	all := pawns
	for bb := pawns; bb != 0; {
		sq := bb.PopLSB()
		file := sq.File()

		if isPassed(pos, sq, c) {
			bonus := passedPawnBonus[sq.RelativeRank(c)]
			mg += bonus
			eg += bonus * 3 / 2
		}

		// doubled: count only the rearmost pawn of each stack
		stack := all & board.FileBB(file)
		if stack.Several() {
			rear := stack.LSB()
			if c == board.Black {
				rear = stack.MSB()
			}
			if sq == rear {
				mg -= doubledPawnMg
				eg -= doubledPawnEg
			}
		}

		if all&board.AdjacentFilesBB(file) == 0 {
			mg -= isolatedPawnMg
			eg -= isolatedPawnEg
		}
	}
	return mg, eg
}

// mobility counts safe destination squares per piece, excluding squares
// held by own pieces or covered by enemy pawns.
func mobility(pos *board.Position, c board.Color) (mg, eg int) {
	occ := pos.AllOccupied
	enemyPawns := pos.Pieces[c.Other()][board.Pawn]
	var pawnCover board.Bitboard
	if c == board.White {
		pawnCover = enemyPawns.SouthEast() | enemyPawns.SouthWest()
	} else {
		pawnCover = enemyPawns.NorthEast() | enemyPawns.NorthWest()
	}
	blocked := pawnCover | pos.Occupied[c]

	for bb := pos.Pieces[c][board.Knight]; bb != 0; {
		n := (board.KnightAttacks(bb.PopLSB()) &^ blocked).Count()
		mg += mobilityMgWeight[board.Knight] * n
		eg += mobilityEgWeight[board.Knight] * n
	}
	for bb := pos.Pieces[c][board.Bishop]; bb != 0; {
		n := (board.BishopAttacks(bb.PopLSB(), occ) &^ blocked).Count()
		mg += mobilityMgWeight[board.Bishop] * n
		eg += mobilityEgWeight[board.Bishop] * n
	}
	for bb := pos.Pieces[c][board.Rook]; bb != 0; {
		n := (board.RookAttacks(bb.PopLSB(), occ) &^ blocked).Count()
		mg += mobilityMgWeight[board.Rook] * n
		eg += mobilityEgWeight[board.Rook] * n
	}
	for bb := pos.Pieces[c][board.Queen]; bb != 0; {
		n := (board.QueenAttacks(bb.PopLSB(), occ) &^ blocked).Count()
		mg += mobilityMgWeight[board.Queen] * n
		eg += mobilityEgWeight[board.Queen] * n
	}
	return mg, eg
}

// kingSafety scores c's own king shelter: pawn shield, open files next to
// the king, and weighted enemy piece pressure on the king zone.
func kingSafety(pos *board.Position, c board.Color) int {
	score := 0
	occ := pos.AllOccupied
	them := c.Other()
	ksq := pos.KingSquare[c]

	zone := board.KingAttacks(ksq) | board.SquareBB(ksq)
	if c == board.White {
		zone |= zone.North()
	} else {
		zone |= zone.South()
	}

	attackers, weight := 0, 0
	addPressure := func(pt board.PieceType, attacks board.Bitboard) {
		if attacks&zone != 0 {
			attackers++
			weight += kingAttackWeight[pt]
		}
	}
	for bb := pos.Pieces[them][board.Knight]; bb != 0; {
		addPressure(board.Knight, board.KnightAttacks(bb.PopLSB()))
	}
	for bb := pos.Pieces[them][board.Bishop]; bb != 0; {
		addPressure(board.Bishop, board.BishopAttacks(bb.PopLSB(), occ))
	}
	for bb := pos.Pieces[them][board.Rook]; bb != 0; {
		addPressure(board.Rook, board.RookAttacks(bb.PopLSB(), occ))
	}
	for bb := pos.Pieces[them][board.Queen]; bb != 0; {
		addPressure(board.Queen, board.QueenAttacks(bb.PopLSB(), occ))
	}
	if attackers >= 2 {
		weight = weight * attackers / 2
	}
	score -= weight

	ownPawns := pos.Pieces[c][board.Pawn]
	enemyPawns := pos.Pieces[them][board.Pawn]
	shieldRank := 1
	if c == board.Black {
		shieldRank = 6
	}
	for f := ksq.File() - 1; f <= ksq.File()+1; f++ {
		if f < 0 || f > 7 {
			continue
		}
		fileMask := board.FileBB(f)
		if ownPawns&fileMask&board.RankBB(shieldRank) != 0 {
			score += pawnShieldBonus
		} else if ownPawns&fileMask == 0 {
			score -= pawnShieldMissing
		}
		if ownPawns&fileMask == 0 {
			if enemyPawns&fileMask == 0 {
				score -= openFileNearKing
			} else {
				score -= semiOpenFileNearKing
			}
		}
	}
	return score
}

// pieceActivity scores the bishop pair, rooks on open and semi-open files
// and knights on outposts for c.
func pieceActivity(pos *board.Position, c board.Color) (mg, eg int) {
	them := c.Other()
	ownPawns := pos.Pieces[c][board.Pawn]
	enemyPawns := pos.Pieces[them][board.Pawn]

	if pos.Pieces[c][board.Bishop].Several() {
		mg += bishopPairMg
		eg += bishopPairEg
	}

	for bb := pos.Pieces[c][board.Rook]; bb != 0; {
		fileMask := board.FileBB(bb.PopLSB().File())
		if ownPawns&fileMask == 0 {
			if enemyPawns&fileMask == 0 {
				mg += rookOpenFileMg
				eg += rookOpenFileEg
			} else {
				mg += rookSemiOpenFileMg
				eg += rookSemiOpenFileEg
			}
		}
	}

	// outposts: knights on ranks 4-6 (relative), defended by a pawn, with
	// no enemy pawn on an adjacent file able to advance and evict them
	for bb := pos.Pieces[c][board.Knight]; bb != 0; {
		sq := bb.PopLSB()
		rel := sq.RelativeRank(c)
		if rel < 3 || rel > 5 {
			continue
		}
		if board.PawnAttacks(them, sq)&ownPawns == 0 {
			continue
		}
		evictors := board.AdjacentFilesBB(sq.File()) & frontRanks(sq, c)
		if enemyPawns&evictors == 0 {
			mg += knightOutpostMg
			eg += knightOutpostEg
		}
	}
	return mg, eg
}

// frontRanks masks every rank strictly ahead of sq from c's point of view.
func frontRanks(sq board.Square, c board.Color) board.Bitboard {
	row := board.RankBB(sq.Rank())
	if c == board.White {
		return row.North().NorthFill()
	}
	return row.South().SouthFill()
}
