package board

import (
	"fmt"
	"strings"
)

// CastlingRights is a set of the four castling permissions.
type CastlingRights uint8

const (
	WhiteKingSide CastlingRights = 1 << iota
	WhiteQueenSide
	BlackKingSide
	BlackQueenSide

	NoCastling  CastlingRights = 0
	AllCastling                = WhiteKingSide | WhiteQueenSide | BlackKingSide | BlackQueenSide
)

// Has reports whether every right in r2 is present.
func (r CastlingRights) Has(r2 CastlingRights) bool {
	return r&r2 == r2
}

// String returns the FEN castling field.
func (r CastlingRights) String() string {
	if r == NoCastling {
		return "-"
	}
	var sb strings.Builder
	for i, c := range "KQkq" {
		if r&(1<<i) != 0 {
			sb.WriteRune(c)
		}
	}
	return sb.String()
}

// castleMask[sq] is ANDed into the rights whenever a move starts or ends on sq,
// so moving a king or rook, or capturing a rook at home, drops the right for good.
var castleMask [64]CastlingRights

func init() {
	for sq := range castleMask {
		castleMask[sq] = AllCastling
	}
	castleMask[E1] &^= WhiteKingSide | WhiteQueenSide
	castleMask[H1] &^= WhiteKingSide
	castleMask[A1] &^= WhiteQueenSide
	castleMask[E8] &^= BlackKingSide | BlackQueenSide
	castleMask[H8] &^= BlackKingSide
	castleMask[A8] &^= BlackQueenSide
}

// Flags packs the non-placement state of a position:
//
//	bit  0      side to move (1 = black)
//	bits 1-4    castling rights
//	bits 5-11   en-passant target square (NoSquare if none)
//	bits 12-19  half-move clock, saturating at 255
type Flags uint32

func packFlags(side Color, rights CastlingRights, ep Square, halfMove int) Flags {
	if halfMove > 255 {
		halfMove = 255
	}
	return Flags(uint32(side) | uint32(rights)<<1 | uint32(ep)<<5 | uint32(halfMove)<<12)
}

func (f Flags) SideToMove() Color        { return Color(f & 1) }
func (f Flags) Castling() CastlingRights { return CastlingRights(f >> 1 & 0xF) }
func (f Flags) EnPassant() Square        { return Square(f >> 5 & 0x7F) }
func (f Flags) HalfMoveClock() int       { return int(f >> 12 & 0xFF) }

// Position is a chess position. It is a plain value: copying the struct
// copies the position.
type Position struct {
	// Pieces[color][kind] holds that color's pieces of that kind.
	Pieces      [2][6]Bitboard
	Occupied    [2]Bitboard
	AllOccupied Bitboard

	Flags          Flags
	FullMoveNumber int

	// Hash is the Zobrist key of placement, side, castling and en passant.
	Hash uint64
	// Checkers are the enemy pieces giving check to the side to move.
	Checkers Bitboard
}

func (p *Position) SideToMove() Color        { return p.Flags.SideToMove() }
func (p *Position) Castling() CastlingRights { return p.Flags.Castling() }
func (p *Position) EnPassant() Square        { return p.Flags.EnPassant() }
func (p *Position) HalfMoveClock() int       { return p.Flags.HalfMoveClock() }

// NewPosition returns the standard starting position.
func NewPosition() *Position {
	p, err := ParseFEN(StartFEN)
	if err != nil {
		panic(err)
	}
	return p
}

// Placement describes a position to build with FromPlacement.
type Placement struct {
	Pieces         map[Square]Piece
	SideToMove     Color
	Castling       CastlingRights
	HalfMoveClock  int
	FullMoveNumber int
}

// FromPlacement builds and validates a position from an explicit piece map.
func FromPlacement(pl Placement) (*Position, error) {
	p := &Position{}
	for sq, pc := range pl.Pieces {
		if !sq.IsValid() || pc >= NoPiece {
			return nil, fmt.Errorf("%w: bad entry %v=%v", ErrMalformedPosition, sq, pc)
		}
		p.toggle(pc.Color(), pc.Kind(), sq)
	}
	full := pl.FullMoveNumber
	if full < 1 {
		full = 1
	}
	p.Flags = packFlags(pl.SideToMove, pl.Castling, NoSquare, pl.HalfMoveClock)
	p.FullMoveNumber = full
	if err := p.finish(); err != nil {
		return nil, err
	}
	return p, nil
}

// finish fills the derived fields and validates.
func (p *Position) finish() error {
	if err := p.Validate(); err != nil {
		return err
	}
	p.Hash = p.ComputeHash()
	us := p.SideToMove()
	p.Checkers = p.AttackersOf(p.KingSquare(us), us.Other(), p.AllOccupied)
	return nil
}

// Validate checks the representation invariants. Every error wraps
// ErrMalformedPosition.
func (p *Position) Validate() error {
	var union [2]Bitboard
	var all Bitboard
	for c := White; c <= Black; c++ {
		for k := Pawn; k <= King; k++ {
			if all&p.Pieces[c][k] != 0 {
				return fmt.Errorf("%w: overlapping piece sets", ErrMalformedPosition)
			}
			all |= p.Pieces[c][k]
			union[c] |= p.Pieces[c][k]
		}
	}
	if union != p.Occupied || all != p.AllOccupied {
		return fmt.Errorf("%w: occupancy out of sync", ErrMalformedPosition)
	}

	for c := White; c <= Black; c++ {
		if n := p.Pieces[c][King].Count(); n != 1 {
			return fmt.Errorf("%w: %v has %d kings", ErrMalformedPosition, c, n)
		}
	}
	if (p.Pieces[White][Pawn]|p.Pieces[Black][Pawn])&(Rank1|Rank8) != 0 {
		return fmt.Errorf("%w: pawn on back rank", ErrMalformedPosition)
	}

	us := p.SideToMove()
	if p.IsSquareAttacked(p.KingSquare(us.Other()), us) {
		return fmt.Errorf("%w: %v to move can capture the king", ErrMalformedPosition, us)
	}

	rights := p.Castling()
	for _, cr := range castleRules {
		if !rights.Has(cr.right) {
			continue
		}
		if !p.Pieces[cr.color][King].Has(cr.kingFrom) || !p.Pieces[cr.color][Rook].Has(cr.rookFrom) {
			return fmt.Errorf("%w: castling right %v without king and rook at home", ErrMalformedPosition, cr.right)
		}
	}

	if ep := p.EnPassant(); ep != NoSquare {
		if !ep.IsValid() || ep.RelativeRank(us) != 5 {
			return fmt.Errorf("%w: en-passant square %v", ErrMalformedPosition, ep)
		}
		pushed := ep - 8
		origin := ep + 8
		if us == Black {
			pushed, origin = ep+8, ep-8
		}
		if p.AllOccupied.Has(ep) || p.AllOccupied.Has(origin) || !p.Pieces[us.Other()][Pawn].Has(pushed) {
			return fmt.Errorf("%w: en-passant square %v without a double push", ErrMalformedPosition, ep)
		}
	}
	return nil
}

// Copy returns an independent copy of p.
func (p *Position) Copy() *Position {
	cp := *p
	return &cp
}

// KingSquare returns the square of c's king.
func (p *Position) KingSquare(c Color) Square {
	return p.Pieces[c][King].LSB()
}

// InCheck reports whether c's king is attacked.
func (p *Position) InCheck(c Color) bool {
	if c == p.SideToMove() {
		return p.Checkers != 0
	}
	return p.IsSquareAttacked(p.KingSquare(c), c.Other())
}

// PieceAt returns the piece on sq, or NoPiece.
func (p *Position) PieceAt(sq Square) Piece {
	if !p.AllOccupied.Has(sq) {
		return NoPiece
	}
	c := White
	if p.Occupied[Black].Has(sq) {
		c = Black
	}
	for k := Pawn; k <= King; k++ {
		if p.Pieces[c][k].Has(sq) {
			return NewPiece(k, c)
		}
	}
	return NoPiece
}

// toggle flips a piece on or off sq. It does not touch the hash.
func (p *Position) toggle(c Color, k PieceKind, sq Square) {
	b := SquareBB(sq)
	p.Pieces[c][k] ^= b
	p.Occupied[c] ^= b
	p.AllOccupied ^= b
}

// Undo is the token returned by MakeMove; pass it to UnmakeMove to restore
// the prior position exactly.
type Undo struct {
	Move     Move
	Flags    Flags
	Hash     uint64
	Checkers Bitboard
}

// MakeMove applies m in place without checking legality. It panics if m does
// not fit the board (wrong captured piece, or a destination still occupied),
// which only happens when a move from another position is replayed.
func (p *Position) MakeMove(m Move) Undo {
	u := Undo{Move: m, Flags: p.Flags, Hash: p.Hash, Checkers: p.Checkers}

	us := p.SideToMove()
	them := us.Other()
	from, to, kind := m.From(), m.To(), m.Piece()

	h := p.Hash ^ zobristCastling[p.Castling()]
	if ep := p.EnPassant(); ep != NoSquare {
		h ^= zobristEnPassant[ep.File()]
	}

	if m.IsCapture() {
		capSq := captureSquare(m, us)
		if !p.Pieces[them][m.Captured()].Has(capSq) {
			panic(fmt.Sprintf("board: move %v captures missing %v on %v", m, m.Captured(), capSq))
		}
		p.toggle(them, m.Captured(), capSq)
		h ^= zobristPiece[them][m.Captured()][capSq]
	}

	if !p.Pieces[us][kind].Has(from) || p.AllOccupied.Has(to) {
		panic(fmt.Sprintf("board: move %v does not fit the position", m))
	}
	placed := kind
	if m.IsPromotion() {
		placed = m.Promotion()
	}
	p.toggle(us, kind, from)
	p.toggle(us, placed, to)
	h ^= zobristPiece[us][kind][from] ^ zobristPiece[us][placed][to]

	if m.IsCastle() {
		rf, rt := rookCastleSquares(m.Tag(), us)
		p.toggle(us, Rook, rf)
		p.toggle(us, Rook, rt)
		h ^= zobristPiece[us][Rook][rf] ^ zobristPiece[us][Rook][rt]
	}

	rights := p.Castling() & castleMask[from] & castleMask[to]
	ep := NoSquare
	if kind == Pawn && (to-from == 16 || from-to == 16) {
		ep = (from + to) / 2
		h ^= zobristEnPassant[ep.File()]
	}
	half := p.HalfMoveClock() + 1
	if kind == Pawn || m.IsCapture() {
		half = 0
	}
	p.Flags = packFlags(them, rights, ep, half)
	p.Hash = h ^ zobristCastling[rights] ^ zobristSideToMove
	if us == Black {
		p.FullMoveNumber++
	}
	p.Checkers = p.AttackersOf(p.KingSquare(them), us, p.AllOccupied)
	return u
}

// UnmakeMove reverts the move recorded in u.
func (p *Position) UnmakeMove(u Undo) {
	m := u.Move
	p.Flags = u.Flags
	us := p.SideToMove()

	if m.IsCastle() {
		rf, rt := rookCastleSquares(m.Tag(), us)
		p.toggle(us, Rook, rt)
		p.toggle(us, Rook, rf)
	}
	placed := m.Piece()
	if m.IsPromotion() {
		placed = m.Promotion()
	}
	p.toggle(us, placed, m.To())
	p.toggle(us, m.Piece(), m.From())
	if m.IsCapture() {
		p.toggle(us.Other(), m.Captured(), captureSquare(m, us))
	}

	if us == Black {
		p.FullMoveNumber--
	}
	p.Hash = u.Hash
	p.Checkers = u.Checkers
}

// Apply returns the position after m, leaving p unchanged. It fails with
// ErrInvalidMove if m is not one of p's legal moves.
func (p *Position) Apply(m Move) (*Position, error) {
	var ml MoveList
	p.GenerateLegal(&ml)
	if !ml.Contains(m) {
		return nil, fmt.Errorf("%w: %v in %s", ErrInvalidMove, m, p.FEN())
	}
	next := p.Copy()
	next.MakeMove(m)
	return next, nil
}

// Apply is the function form of (*Position).Apply.
func Apply(p *Position, m Move) (*Position, error) {
	return p.Apply(m)
}

func captureSquare(m Move, us Color) Square {
	if !m.IsEnPassant() {
		return m.To()
	}
	if us == White {
		return m.To() - 8
	}
	return m.To() + 8
}

func (p *Position) String() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		sb.WriteByte(byte('1' + rank))
		for file := 0; file < 8; file++ {
			sb.WriteByte(' ')
			sb.WriteString(p.PieceAt(NewSquare(file, rank)).String())
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("  a b c d e f g h\n")
	fmt.Fprintf(&sb, "fen: %s\nkey: %016x\n", p.FEN(), p.Hash)
	return sb.String()
}
