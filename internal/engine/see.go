package engine

import "github.com/MatN23/RustChessEngine/internal/board"

// SEE estimates the material outcome of the capture sequence that m starts,
// from the mover's point of view, using the swap algorithm.
func SEE(pos *board.Position, m board.Move) int {
	from, to := m.From(), m.To()
	attacker := pos.PieceAt(from)
	if attacker == board.NoPiece {
		return 0
	}

	var gain [32]int
	switch {
	case m.IsEnPassant():
		gain[0] = pieceValues[board.Pawn]
	default:
		victim := pos.PieceAt(to)
		if victim == board.NoPiece {
			return 0
		}
		gain[0] = pieceValues[victim.Type()]
	}
	if m.IsPromotion() {
		gain[0] += pieceValues[m.Promotion()] - pieceValues[board.Pawn]
	}

	occ := pos.AllOccupied &^ board.SquareBB(from)
	attackerValue := pieceValues[attacker.Type()]
	side := attacker.Color().Other()

	d := 0
	for {
		d++
		gain[d] = attackerValue - gain[d-1]
		if maxInt(-gain[d-1], gain[d]) < 0 {
			break
		}
		sq, piece := leastValuableAttacker(pos, to, side, occ)
		if sq == board.NoSquare {
			break
		}
		occ &^= board.SquareBB(sq)
		attackerValue = pieceValues[piece]
		side = side.Other()
	}

	for d--; d > 0; d-- {
		gain[d-1] = -maxInt(-gain[d-1], gain[d])
	}
	return gain[0]
}

// leastValuableAttacker finds the cheapest piece of side attacking target
// under occ. Recomputing slider attacks against the shrinking occupancy
// exposes x-ray attackers as pieces leave the board.
func leastValuableAttacker(pos *board.Position, target board.Square, side board.Color, occ board.Bitboard) (board.Square, board.PieceType) {
	if bb := pos.Pieces[side][board.Pawn] & board.PawnAttacks(side.Other(), target) & occ; bb != 0 {
		return bb.LSB(), board.Pawn
	}
	if bb := pos.Pieces[side][board.Knight] & board.KnightAttacks(target) & occ; bb != 0 {
		return bb.LSB(), board.Knight
	}
	diag := board.BishopAttacks(target, occ)
	if bb := pos.Pieces[side][board.Bishop] & diag & occ; bb != 0 {
		return bb.LSB(), board.Bishop
	}
	line := board.RookAttacks(target, occ)
	if bb := pos.Pieces[side][board.Rook] & line & occ; bb != 0 {
		return bb.LSB(), board.Rook
	}
	if bb := pos.Pieces[side][board.Queen] & (diag | line) & occ; bb != 0 {
		return bb.LSB(), board.Queen
	}
	if bb := pos.Pieces[side][board.King] & board.KingAttacks(target) & occ; bb != 0 {
		return bb.LSB(), board.King
	}
	return board.NoSquare, board.NoPieceType
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
