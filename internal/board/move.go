package board

import "fmt"

// Tag marks moves that need special handling when applied.
type Tag uint8

const (
	TagNormal Tag = iota
	TagCastleKing
	TagCastleQueen
	TagEnPassant
)

// Move packs a move into 24 bits:
//
//	bits  0-5   from
//	bits  6-11  to
//	bits 12-14  moved kind
//	bits 15-17  captured kind (NoKind if none)
//	bits 18-20  promotion kind (NoKind if none)
//	bits 21-22  tag
type Move uint32

// NoMove is the zero move; a1a1 is never generated.
const NoMove Move = 0

// NewMove builds a move. Use NoKind for captured or promo when absent.
func NewMove(from, to Square, piece, captured, promo PieceKind, tag Tag) Move {
	return Move(uint32(from) | uint32(to)<<6 | uint32(piece)<<12 |
		uint32(captured)<<15 | uint32(promo)<<18 | uint32(tag)<<21)
}

func (m Move) From() Square         { return Square(m & 0x3F) }
func (m Move) To() Square           { return Square(m >> 6 & 0x3F) }
func (m Move) Piece() PieceKind     { return PieceKind(m >> 12 & 7) }
func (m Move) Captured() PieceKind  { return PieceKind(m >> 15 & 7) }
func (m Move) Promotion() PieceKind { return PieceKind(m >> 18 & 7) }
func (m Move) Tag() Tag             { return Tag(m >> 21 & 3) }
func (m Move) IsCapture() bool      { return m.Captured() != NoKind }
func (m Move) IsPromotion() bool    { return m.Promotion() != NoKind }
func (m Move) IsCastle() bool       { return m.Tag() == TagCastleKing || m.Tag() == TagCastleQueen }
func (m Move) IsEnPassant() bool    { return m.Tag() == TagEnPassant }

// String returns coordinate notation: origin, destination, and a promotion
// letter if any ("e2e4", "e7e8q"). NoMove is "0000".
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		s += string(m.Promotion().Char())
	}
	return s
}

// ParseMove resolves coordinate notation against the legal moves of p.
func ParseMove(s string, p *Position) (Move, error) {
	if len(s) != 4 && len(s) != 5 {
		return NoMove, fmt.Errorf("%w: %q", ErrInvalidMove, s)
	}
	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, fmt.Errorf("%w: %q", ErrInvalidMove, s)
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, fmt.Errorf("%w: %q", ErrInvalidMove, s)
	}
	promo := NoKind
	if len(s) == 5 {
		switch s[4] {
		case 'n', 'N':
			promo = Knight
		case 'b', 'B':
			promo = Bishop
		case 'r', 'R':
			promo = Rook
		case 'q', 'Q':
			promo = Queen
		default:
			return NoMove, fmt.Errorf("%w: %q", ErrInvalidMove, s)
		}
	}

	var ml MoveList
	p.GenerateLegal(&ml)
	for _, m := range ml.Slice() {
		if m.From() == from && m.To() == to && m.Promotion() == promo {
			return m, nil
		}
	}
	return NoMove, fmt.Errorf("%w: %s in %s", ErrInvalidMove, s, p.FEN())
}

// MaxMoves bounds the number of moves in any legal position.
const MaxMoves = 256

// MoveList is a fixed-capacity move buffer that avoids allocation during search.
type MoveList struct {
	moves [MaxMoves]Move
	n     int
}

func (ml *MoveList) Add(m Move) {
	ml.moves[ml.n] = m
	ml.n++
}

func (ml *MoveList) Len() int       { return ml.n }
func (ml *MoveList) Get(i int) Move { return ml.moves[i] }
func (ml *MoveList) Swap(i, j int)  { ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i] }
func (ml *MoveList) Clear()         { ml.n = 0 }
func (ml *MoveList) Slice() []Move  { return ml.moves[:ml.n] }

// Contains reports whether m is in the list.
func (ml *MoveList) Contains(m Move) bool {
	for _, x := range ml.moves[:ml.n] {
		if x == m {
			return true
		}
	}
	return false
}
