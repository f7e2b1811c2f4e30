package board

import (
	"fmt"
	"strings"
)

// SAN renders m in Standard Algebraic Notation for position p. m must be
// legal in p.
func (p *Position) SAN(m Move) string {
	if m == NoMove {
		return "-"
	}

	var sb strings.Builder
	switch m.Tag() {
	case TagCastleKing:
		sb.WriteString("O-O")
	case TagCastleQueen:
		sb.WriteString("O-O-O")
	default:
		from, to, kind := m.From(), m.To(), m.Piece()
		if kind != Pawn {
			sb.WriteByte("PNBRQK"[kind])
			sb.WriteString(p.disambiguate(m))
		}
		if m.IsCapture() {
			if kind == Pawn {
				sb.WriteByte(byte('a' + from.File()))
			}
			sb.WriteByte('x')
		}
		sb.WriteString(to.String())
		if m.IsPromotion() {
			sb.WriteByte('=')
			sb.WriteByte("PNBRQK"[m.Promotion()])
		}
	}

	u := p.MakeMove(m)
	if p.Checkers != 0 {
		if p.HasLegalMoves() {
			sb.WriteByte('+')
		} else {
			sb.WriteByte('#')
		}
	}
	p.UnmakeMove(u)
	return sb.String()
}

// disambiguate returns the origin file, rank or square needed when another
// piece of the same kind can reach the same destination.
func (p *Position) disambiguate(m Move) string {
	from := m.From()
	var sameFile, sameRank, other bool
	for _, o := range p.LegalMoves() {
		if o.To() != m.To() || o.Piece() != m.Piece() || o.From() == from {
			continue
		}
		other = true
		sameFile = sameFile || o.From().File() == from.File()
		sameRank = sameRank || o.From().Rank() == from.Rank()
	}
	switch {
	case !other:
		return ""
	case !sameFile:
		return string(rune('a' + from.File()))
	case !sameRank:
		return string(rune('1' + from.Rank()))
	}
	return from.String()
}

// ParseSAN resolves a SAN string against the legal moves of p. Check and
// annotation suffixes are ignored.
func ParseSAN(s string, p *Position) (Move, error) {
	want := trimSAN(s)
	for _, m := range p.LegalMoves() {
		if trimSAN(p.SAN(m)) == want {
			return m, nil
		}
	}
	return NoMove, fmt.Errorf("%w: %q", ErrInvalidMove, s)
}

func trimSAN(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "0", "O")
	return strings.TrimRight(s, "+#!?")
}
