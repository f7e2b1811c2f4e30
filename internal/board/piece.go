package board

// Color is the side owning a piece.
type Color uint8

const (
	White Color = iota
	Black
)

// Other returns the opposing color.
func (c Color) Other() Color {
	return c ^ 1
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// PieceKind is one of the six chess piece kinds.
type PieceKind uint8

const (
	Pawn PieceKind = iota
	Knight
	Bishop
	Rook
	Queen
	King
	NoKind
)

// Value is the material weight of each kind in centipawns.
var Value = [7]int{100, 320, 330, 500, 900, 0, 0}

// Char returns the lowercase letter for the kind.
func (k PieceKind) Char() byte {
	if k >= NoKind {
		return ' '
	}
	return "pnbrqk"[k]
}

func (k PieceKind) String() string {
	switch k {
	case Pawn:
		return "pawn"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Rook:
		return "rook"
	case Queen:
		return "queen"
	case King:
		return "king"
	}
	return "none"
}

// Piece is a colored piece: kind + color*6.
type Piece uint8

const NoPiece Piece = 12

// NewPiece combines a kind and a color.
func NewPiece(k PieceKind, c Color) Piece {
	return Piece(uint8(k) + uint8(c)*6)
}

func (p Piece) Kind() PieceKind {
	if p >= NoPiece {
		return NoKind
	}
	return PieceKind(p % 6)
}

func (p Piece) Color() Color {
	return Color(p / 6)
}

// String returns the FEN letter, uppercase for white.
func (p Piece) String() string {
	if p >= NoPiece {
		return "."
	}
	return string("PNBRQKpnbrqk"[p])
}

// PieceFromChar parses a FEN piece letter.
func PieceFromChar(c byte) (Piece, bool) {
	for i := 0; i < 12; i++ {
		if "PNBRQKpnbrqk"[i] == c {
			return Piece(i), true
		}
	}
	return NoPiece, false
}
