package board

type castleRule struct {
	right            CastlingRights
	color            Color
	tag              Tag
	kingFrom, kingTo Square
	rookFrom, rookTo Square
	// empty must hold no pieces; safe must not be attacked, checked before the king moves.
	empty, safe Bitboard
}

var castleRules = [4]castleRule{
	{WhiteKingSide, White, TagCastleKing, E1, G1, H1, F1,
		SquareBB(F1) | SquareBB(G1), SquareBB(E1) | SquareBB(F1) | SquareBB(G1)},
	{WhiteQueenSide, White, TagCastleQueen, E1, C1, A1, D1,
		SquareBB(B1) | SquareBB(C1) | SquareBB(D1), SquareBB(E1) | SquareBB(D1) | SquareBB(C1)},
	{BlackKingSide, Black, TagCastleKing, E8, G8, H8, F8,
		SquareBB(F8) | SquareBB(G8), SquareBB(E8) | SquareBB(F8) | SquareBB(G8)},
	{BlackQueenSide, Black, TagCastleQueen, E8, C8, A8, D8,
		SquareBB(B8) | SquareBB(C8) | SquareBB(D8), SquareBB(E8) | SquareBB(D8) | SquareBB(C8)},
}

func rookCastleSquares(tag Tag, c Color) (from, to Square) {
	i := int(c) * 2
	if tag == TagCastleQueen {
		i++
	}
	return castleRules[i].rookFrom, castleRules[i].rookTo
}

var promotionKinds = [4]PieceKind{Queen, Rook, Bishop, Knight}

// kindAt returns the kind of c's piece on sq, or NoKind.
func (p *Position) kindAt(c Color, sq Square) PieceKind {
	if !p.Occupied[c].Has(sq) {
		return NoKind
	}
	for k := Pawn; k <= King; k++ {
		if p.Pieces[c][k].Has(sq) {
			return k
		}
	}
	return NoKind
}

// GeneratePseudoLegal fills ml with every move that obeys piece movement,
// including castles, without checking whether the mover's king is left
// attacked.
func (p *Position) GeneratePseudoLegal(ml *MoveList) {
	ml.Clear()
	us := p.SideToMove()
	them := us.Other()
	own := p.Occupied[us]

	p.genPawnMoves(ml, us)
	for k := Knight; k <= King; k++ {
		for b := p.Pieces[us][k]; b != 0; {
			from := b.PopLSB()
			for targets := AttacksFrom(from, k, us, p.AllOccupied) &^ own; targets != 0; {
				to := targets.PopLSB()
				ml.Add(NewMove(from, to, k, p.kindAt(them, to), NoKind, TagNormal))
			}
		}
	}
	p.genCastles(ml, us)
}

func (p *Position) genPawnMoves(ml *MoveList, us Color) {
	them := us.Other()
	empty := ^p.AllOccupied
	enemy := p.Occupied[them]
	ep := p.EnPassant()
	step := Square(8)
	if us == Black {
		step = -8
	}

	add := func(from, to Square, captured PieceKind) {
		if to.RelativeRank(us) == 7 {
			for _, promo := range promotionKinds {
				ml.Add(NewMove(from, to, Pawn, captured, promo, TagNormal))
			}
			return
		}
		ml.Add(NewMove(from, to, Pawn, captured, NoKind, TagNormal))
	}

	for b := p.Pieces[us][Pawn]; b != 0; {
		from := b.PopLSB()
		if one := from + step; empty.Has(one) {
			add(from, one, NoKind)
			if two := one + step; from.RelativeRank(us) == 1 && empty.Has(two) {
				add(from, two, NoKind)
			}
		}
		for caps := pawnAttacks[us][from] & enemy; caps != 0; {
			to := caps.PopLSB()
			add(from, to, p.kindAt(them, to))
		}
		if ep != NoSquare && pawnAttacks[us][from].Has(ep) {
			ml.Add(NewMove(from, ep, Pawn, Pawn, NoKind, TagEnPassant))
		}
	}
}

// genCastles adds castles whose rights are held, whose squares between king
// and rook are empty, and whose king start, transit and destination squares
// are not attacked in the current position.
func (p *Position) genCastles(ml *MoveList, us Color) {
	rights := p.Castling()
	if p.Checkers != 0 || rights == NoCastling {
		return
	}
	them := us.Other()
	for i := range castleRules {
		cr := &castleRules[i]
		if cr.color != us || !rights.Has(cr.right) || p.AllOccupied&cr.empty != 0 {
			continue
		}
		safe := true
		for b := cr.safe; b != 0; {
			if p.IsSquareAttacked(b.PopLSB(), them) {
				safe = false
				break
			}
		}
		if safe {
			ml.Add(NewMove(cr.kingFrom, cr.kingTo, King, NoKind, NoKind, cr.tag))
		}
	}
}

// isLegal tentatively plays m and reports whether the mover's king is safe.
func (p *Position) isLegal(m Move) bool {
	us := p.SideToMove()
	u := p.MakeMove(m)
	ok := !p.IsSquareAttacked(p.KingSquare(us), us.Other())
	p.UnmakeMove(u)
	return ok
}

// GenerateLegal fills ml with the legal moves of p.
func (p *Position) GenerateLegal(ml *MoveList) {
	var pseudo MoveList
	p.GeneratePseudoLegal(&pseudo)
	ml.Clear()
	for _, m := range pseudo.Slice() {
		if p.isLegal(m) {
			ml.Add(m)
		}
	}
}

// LegalMoves returns the legal moves of p in generation order.
func (p *Position) LegalMoves() []Move {
	var ml MoveList
	p.GenerateLegal(&ml)
	return append([]Move(nil), ml.Slice()...)
}

// LegalMoves is the function form of (*Position).LegalMoves.
func LegalMoves(p *Position) []Move {
	return p.LegalMoves()
}

// HasLegalMoves reports whether the side to move has any legal move.
func (p *Position) HasLegalMoves() bool {
	var pseudo MoveList
	p.GeneratePseudoLegal(&pseudo)
	for _, m := range pseudo.Slice() {
		if p.isLegal(m) {
			return true
		}
	}
	return false
}

// Status is the rule state of a position.
type Status uint8

const (
	Ongoing Status = iota
	Checkmate
	Stalemate
	DrawInsufficientMaterial
	DrawFiftyMoves
)

func (s Status) String() string {
	switch s {
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	case DrawInsufficientMaterial:
		return "draw (insufficient material)"
	case DrawFiftyMoves:
		return "draw (fifty-move rule)"
	}
	return "ongoing"
}

// Status classifies p. Having no legal moves takes precedence over draws.
func (p *Position) Status() Status {
	if !p.HasLegalMoves() {
		if p.Checkers != 0 {
			return Checkmate
		}
		return Stalemate
	}
	if p.IsInsufficientMaterial() {
		return DrawInsufficientMaterial
	}
	if p.HalfMoveClock() >= 100 {
		return DrawFiftyMoves
	}
	return Ongoing
}

func (p *Position) IsCheckmate() bool { return p.Checkers != 0 && !p.HasLegalMoves() }
func (p *Position) IsStalemate() bool { return p.Checkers == 0 && !p.HasLegalMoves() }

var darkSquares = func() Bitboard {
	var b Bitboard
	for sq := A1; sq <= H8; sq++ {
		if (sq.File()+sq.Rank())%2 == 0 {
			b |= SquareBB(sq)
		}
	}
	return b
}()

// IsInsufficientMaterial reports positions where neither side can mate:
// bare kings, a single minor piece, or only same-colored bishops, one each.
func (p *Position) IsInsufficientMaterial() bool {
	w, b := &p.Pieces[White], &p.Pieces[Black]
	if w[Pawn]|b[Pawn]|w[Rook]|b[Rook]|w[Queen]|b[Queen] != 0 {
		return false
	}
	minors := w[Knight] | w[Bishop] | b[Knight] | b[Bishop]
	if minors.Count() <= 1 {
		return true
	}
	if w[Knight]|b[Knight] != 0 || w[Bishop].Count() != 1 || b[Bishop].Count() != 1 {
		return false
	}
	bishops := w[Bishop] | b[Bishop]
	return bishops&darkSquares == 0 || bishops&^darkSquares == 0
}
