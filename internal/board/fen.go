package board

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the standard starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN parses a FEN string. The half-move and full-move fields may be
// omitted. Syntax errors and invariant violations both wrap ErrMalformedPosition.
func ParseFEN(fen string) (*Position, error) {
	fields := strings.Fields(fen)
	if len(fields) < 4 {
		return nil, fmt.Errorf("%w: fen needs at least 4 fields, got %d", ErrMalformedPosition, len(fields))
	}

	p := &Position{}
	if err := p.parsePlacement(fields[0]); err != nil {
		return nil, err
	}

	var side Color
	switch fields[1] {
	case "w":
		side = White
	case "b":
		side = Black
	default:
		return nil, fmt.Errorf("%w: side to move %q", ErrMalformedPosition, fields[1])
	}

	rights, err := parseCastling(fields[2])
	if err != nil {
		return nil, err
	}

	ep := NoSquare
	if fields[3] != "-" {
		if ep, err = ParseSquare(fields[3]); err != nil {
			return nil, fmt.Errorf("%w: en-passant field %q", ErrMalformedPosition, fields[3])
		}
	}

	half, full := 0, 1
	if len(fields) > 4 {
		if half, err = strconv.Atoi(fields[4]); err != nil || half < 0 {
			return nil, fmt.Errorf("%w: half-move clock %q", ErrMalformedPosition, fields[4])
		}
	}
	if len(fields) > 5 {
		if full, err = strconv.Atoi(fields[5]); err != nil || full < 1 {
			return nil, fmt.Errorf("%w: full-move number %q", ErrMalformedPosition, fields[5])
		}
	}

	p.Flags = packFlags(side, rights, ep, half)
	p.FullMoveNumber = full
	if err := p.finish(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Position) parsePlacement(s string) error {
	ranks := strings.Split(s, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("%w: placement has %d ranks", ErrMalformedPosition, len(ranks))
	}
	for i, row := range ranks {
		rank := 7 - i
		file := 0
		for j := 0; j < len(row); j++ {
			c := row[j]
			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}
			pc, ok := PieceFromChar(c)
			if !ok {
				return fmt.Errorf("%w: piece %q", ErrMalformedPosition, c)
			}
			if file > 7 {
				return fmt.Errorf("%w: rank %d overflows", ErrMalformedPosition, rank+1)
			}
			p.toggle(pc.Color(), pc.Kind(), NewSquare(file, rank))
			file++
		}
		if file != 8 {
			return fmt.Errorf("%w: rank %d has %d files", ErrMalformedPosition, rank+1, file)
		}
	}
	return nil
}

func parseCastling(s string) (CastlingRights, error) {
	if s == "-" {
		return NoCastling, nil
	}
	var r CastlingRights
	for _, c := range s {
		switch c {
		case 'K':
			r |= WhiteKingSide
		case 'Q':
			r |= WhiteQueenSide
		case 'k':
			r |= BlackKingSide
		case 'q':
			r |= BlackQueenSide
		default:
			return 0, fmt.Errorf("%w: castling field %q", ErrMalformedPosition, s)
		}
	}
	return r, nil
}

// FEN returns the position in Forsyth-Edwards Notation.
func (p *Position) FEN() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		gap := 0
		for file := 0; file < 8; file++ {
			pc := p.PieceAt(NewSquare(file, rank))
			if pc == NoPiece {
				gap++
				continue
			}
			if gap > 0 {
				sb.WriteByte(byte('0' + gap))
				gap = 0
			}
			sb.WriteString(pc.String())
		}
		if gap > 0 {
			sb.WriteByte(byte('0' + gap))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}
	side := "w"
	if p.SideToMove() == Black {
		side = "b"
	}
	fmt.Fprintf(&sb, " %s %s %s %d %d", side, p.Castling(), p.EnPassant(), p.HalfMoveClock(), p.FullMoveNumber)
	return sb.String()
}
