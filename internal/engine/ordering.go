package engine

import (
	"golang.org/x/exp/slices"

	"github.com/hailam/chesscore/internal/board"
)

// Move ordering priorities. Captures always come before quiet moves.
const (
	TTMoveScore  = 10_000_000
	CaptureBase  = 1_000_000
	PromoBase    = 900_000
	KillerScore1 = 800_000
	KillerScore2 = 700_000
	historyLimit = 400_000
)

// MoveOrderer ranks moves for the search: hash move, captures by MVV-LVA,
// quiet promotions, killer moves, then history.
type MoveOrderer struct {
	killers [MaxPly][2]board.Move
	history [64][64]int
}

// Clear drops killers and halves history for a new search.
func (mo *MoveOrderer) Clear() {
	mo.killers = [MaxPly][2]board.Move{}
	for i := range mo.history {
		for j := range mo.history[i] {
			mo.history[i][j] /= 2
		}
	}
}

// mvvLva prefers the most valuable victim, then the least valuable attacker.
func mvvLva(victim, attacker board.PieceKind) int {
	return int(victim)*10 + 5 - int(attacker)
}

func (mo *MoveOrderer) score(m board.Move, ply int, hashMove board.Move) int {
	switch {
	case m == hashMove:
		return TTMoveScore
	case m.IsCapture():
		s := CaptureBase + mvvLva(m.Captured(), m.Piece())*1000
		if m.IsPromotion() {
			s += int(m.Promotion()) * 100
		}
		return s
	case m.IsPromotion():
		return PromoBase + int(m.Promotion())*100
	case ply < MaxPly && m == mo.killers[ply][0]:
		return KillerScore1
	case ply < MaxPly && m == mo.killers[ply][1]:
		return KillerScore2
	}
	return mo.history[m.From()][m.To()]
}

// ScoreMoves fills scores with the ordering score of each move.
func (mo *MoveOrderer) ScoreMoves(moves *board.MoveList, scores []int, ply int, hashMove board.Move) {
	for i, m := range moves.Slice() {
		scores[i] = mo.score(m, ply, hashMove)
	}
}

// PickMove swaps the best-scored move at or after index into index.
func PickMove(moves *board.MoveList, scores []int, index int) {
	best := index
	for j := index + 1; j < moves.Len(); j++ {
		if scores[j] > scores[best] {
			best = j
		}
	}
	if best != index {
		moves.Swap(index, best)
		scores[index], scores[best] = scores[best], scores[index]
	}
}

// OrderRoot sorts root moves in place, best first. The sort is stable so
// moves of equal rank keep generation order.
func (mo *MoveOrderer) OrderRoot(moves []board.Move, first board.Move) {
	slices.SortStableFunc(moves, func(a, b board.Move) int {
		return mo.score(b, 0, first) - mo.score(a, 0, first)
	})
}

// UpdateKillers records a quiet move that caused a cutoff at ply.
func (mo *MoveOrderer) UpdateKillers(m board.Move, ply int) {
	if ply >= MaxPly || mo.killers[ply][0] == m {
		return
	}
	mo.killers[ply][1] = mo.killers[ply][0]
	mo.killers[ply][0] = m
}

// UpdateHistory rewards a quiet move that caused a cutoff at depth.
func (mo *MoveOrderer) UpdateHistory(m board.Move, depth int) {
	h := &mo.history[m.From()][m.To()]
	*h += depth * depth
	if *h > historyLimit {
		for i := range mo.history {
			for j := range mo.history[i] {
				mo.history[i][j] /= 2
			}
		}
	}
}
