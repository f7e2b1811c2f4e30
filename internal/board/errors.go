package board

import "errors"

var (
	// ErrInvalidMove is returned when a move is not legal in the position.
	ErrInvalidMove = errors.New("board: invalid move")

	// ErrMalformedPosition is returned when a position violates a board invariant.
	ErrMalformedPosition = errors.New("board: malformed position")
)
