package engine

import (
	"context"
	"sync/atomic"

	"github.com/hailam/chesscore/internal/board"
)

// Search constants
const (
	Infinity  = 30000
	MateScore = 29000
	DrawScore = 0
	MaxPly    = 128
	MaxDepth  = 64

	maxCaptureExtension = 8
)

// pvTable stores the principal variation as a triangular array.
type pvTable struct {
	length [MaxPly + 1]int
	moves  [MaxPly + 1][MaxPly + 1]board.Move
}

func (pv *pvTable) update(ply int, m board.Move) {
	pv.moves[ply][ply] = m
	for i := ply + 1; i < pv.length[ply+1]; i++ {
		pv.moves[ply][i] = pv.moves[ply+1][i]
	}
	pv.length[ply] = max(pv.length[ply+1], ply+1)
}

func (pv *pvTable) line() []board.Move {
	out := make([]board.Move, pv.length[0])
	copy(out, pv.moves[0][:pv.length[0]])
	return out
}

// searcher holds the state of one search. It owns its position copy and
// makes and unmakes moves on it in place.
type searcher struct {
	pos    *board.Position
	tt     *TranspositionTable // nil when disabled
	eval   Evaluator
	order  *MoveOrderer
	pv     pvTable
	capExt int

	nodes    uint64
	maxNodes uint64
	poll     uint64
	ctx      context.Context
	stop     *atomic.Bool
	aborted  bool
}

func (s *searcher) checkStop() {
	if s.aborted {
		return
	}
	if s.stop.Load() || (s.maxNodes > 0 && s.nodes >= s.maxNodes) {
		s.aborted = true
		return
	}
	select {
	case <-s.ctx.Done():
		s.aborted = true
	default:
	}
}

// isHorizon reports whether a node is a leaf. Past the nominal horizon a line
// continues for up to ext plies while the move into the node was a capture.
func isHorizon(depth int, lastCapture bool, ext int) bool {
	return depth <= 0 && !(lastCapture && depth > -ext)
}

// leafScore scores a leaf. Checkmate and stalemate are still recognised
// here so that a game ending on the last ply is not scored as material.
func leafScore(p *board.Position, ply int, eval Evaluator) int {
	if !p.HasLegalMoves() {
		if p.Checkers != 0 {
			return -MateScore + ply
		}
		return DrawScore
	}
	if p.IsInsufficientMaterial() {
		return DrawScore
	}
	return eval(p)
}

// searchRoot scores every root move with an exact value, or a bound proving
// it is worse than the best so far, and picks the best. Equal scores go to
// the smaller move encoding, so the choice does not depend on move order.
// ok is false if the search was aborted.
func (s *searcher) searchRoot(moves []board.Move, depth int) (best board.Move, bestScore int, ok bool) {
	p := s.pos
	s.pv.length[0] = 0
	bestScore = -Infinity
	for _, m := range moves {
		alpha := -Infinity
		if best != board.NoMove {
			alpha = bestScore - 1
		}
		u := p.MakeMove(m)
		score := -s.negamax(depth-1, 1, -Infinity, -alpha, m.IsCapture())
		p.UnmakeMove(u)
		if s.aborted {
			return board.NoMove, 0, false
		}
		if best == board.NoMove || score > bestScore || (score == bestScore && m < best) {
			best, bestScore = m, score
			s.pv.update(0, m)
		}
	}
	if s.tt != nil {
		s.tt.Store(p.Hash, depth, scoreToTT(bestScore, 0), BoundExact, best)
	}
	return best, bestScore, true
}

// negamax is a fail-soft alpha-beta search. Scores are relative to the side
// to move at the node.
func (s *searcher) negamax(depth, ply, alpha, beta int, lastCapture bool) int {
	s.pv.length[ply] = ply
	s.nodes++
	if s.nodes%s.poll == 0 {
		s.checkStop()
	}
	if s.aborted {
		return 0
	}

	p := s.pos
	if isHorizon(depth, lastCapture, s.capExt) {
		return leafScore(p, ply, s.eval)
	}
	if p.IsInsufficientMaterial() {
		return DrawScore
	}

	origAlpha, origBeta := alpha, beta
	hashMove := board.NoMove
	if s.tt != nil {
		if e, found := s.tt.Probe(p.Hash); found {
			hashMove = e.Move
			// Only a result for exactly this depth is reused, so a node's
			// value never depends on what else the table holds.
			if depth > 0 && int(e.Depth) == depth {
				score := scoreFromTT(int(e.Score), ply)
				switch e.Bound {
				case BoundExact:
					return score
				case BoundLower:
					if score >= beta {
						return score
					}
					alpha = max(alpha, score)
				case BoundUpper:
					if score <= alpha {
						return score
					}
					beta = min(beta, score)
				}
			}
		}
	}

	var ml board.MoveList
	p.GenerateLegal(&ml)
	n := ml.Len()
	if n == 0 {
		if p.Checkers != 0 {
			return -MateScore + ply
		}
		return DrawScore
	}

	var scores [board.MaxMoves]int
	s.order.ScoreMoves(&ml, scores[:n], ply, hashMove)

	best := -Infinity
	bestMove := board.NoMove
	for i := 0; i < n; i++ {
		PickMove(&ml, scores[:n], i)
		m := ml.Get(i)

		u := p.MakeMove(m)
		score := -s.negamax(depth-1, ply+1, -beta, -alpha, m.IsCapture())
		p.UnmakeMove(u)
		if s.aborted {
			return 0
		}

		if score > best {
			best, bestMove = score, m
			if score > alpha {
				alpha = score
				s.pv.update(ply, m)
				if alpha >= beta {
					if !m.IsCapture() {
						s.order.UpdateKillers(m, ply)
						s.order.UpdateHistory(m, depth)
					}
					break
				}
			}
		}
	}

	if s.tt != nil {
		bound := BoundExact
		switch {
		case best <= origAlpha:
			bound = BoundUpper
		case best >= origBeta:
			bound = BoundLower
		}
		s.tt.Store(p.Hash, depth, scoreToTT(best, ply), bound, bestMove)
	}
	return best
}
