package engine

import (
	"time"

	"github.com/hailam/chesscore/internal/board"
)

// Clock holds game clock parameters as sent by a GUI.
type Clock struct {
	Time      [2]time.Duration // remaining time per color
	Inc       [2]time.Duration // increment per move
	MovesToGo int              // moves until next time control (0 = sudden death)
}

const (
	minMoveTime  = 10 * time.Millisecond
	moveOverhead = 20 * time.Millisecond
)

// MoveTime returns how long the side us should spend on its next move, or
// zero when the clock carries no time for us. fullMove is the game's full
// move number.
func (c Clock) MoveTime(us board.Color, fullMove int) time.Duration {
	left := c.Time[us]
	if left <= 0 {
		return 0
	}

	mtg := c.MovesToGo
	if mtg <= 0 {
		// Sudden death: expect fewer moves as the game goes on.
		mtg = max(10, min(50, 50-fullMove/2))
	}

	t := left/time.Duration(mtg) + c.Inc[us]*9/10
	if fullMove < 4 {
		t = t * 85 / 100
	}

	// Never use more than 80% of what is left.
	t = min(t, left*8/10)
	t -= moveOverhead
	return max(t, minMoveTime)
}
