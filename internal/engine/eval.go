// Package engine implements position evaluation, the transposition table,
// and alpha-beta search with iterative deepening.
package engine

import (
	"github.com/hailam/chesscore/internal/board"
)

// Evaluator scores a position in centipawns from the side to move's point
// of view. It must be deterministic and must not modify the position.
type Evaluator func(p *board.Position) int

// Piece values, matching board.Value.
const (
	PawnValue   = 100
	KnightValue = 320
	BishopValue = 330
	RookValue   = 500
	QueenValue  = 900
)

// Activity weights.
const (
	mobilityWeight     = 2  // per attacked square
	centerAttackWeight = 3  // extra per attacked d4/e4/d5/e5
	threatWeight       = 4  // per enemy piece attacked
	centerPieceBonus   = 15 // minor or major piece standing in the center
	bigCenterBonus     = 6  // minor or major piece on c3-f6
	pawnCenterBonus    = 20 // pawn on d4/e4/d5/e5
)

// Evaluate is the default evaluator: material plus how many squares, central
// squares and enemy pieces each side attacks, plus central placement.
func Evaluate(p *board.Position) int {
	score := evalSide(p, board.White) - evalSide(p, board.Black)
	if p.SideToMove() == board.Black {
		return -score
	}
	return score
}

func evalSide(p *board.Position, c board.Color) int {
	pc := &p.Pieces[c]
	score := 0
	for k := board.Pawn; k < board.King; k++ {
		score += pc[k].Count() * board.Value[k]
	}

	pieces := pc[board.Knight] | pc[board.Bishop] | pc[board.Rook] | pc[board.Queen]
	score += (pieces & board.Center).Count() * centerPieceBonus
	score += (pieces & board.BigCenter).Count() * bigCenterBonus
	score += (pc[board.Pawn] & board.Center).Count() * pawnCenterBonus

	attacked := p.AttackedBy(c)
	score += attacked.Count() * mobilityWeight
	score += (attacked & board.Center).Count() * centerAttackWeight
	score += (attacked & p.Occupied[c.Other()]).Count() * threatWeight
	return score
}

// Material returns c's material in centipawns, kings excluded.
func Material(p *board.Position, c board.Color) int {
	m := 0
	for k := board.Pawn; k < board.King; k++ {
		m += p.Pieces[c][k].Count() * board.Value[k]
	}
	return m
}
