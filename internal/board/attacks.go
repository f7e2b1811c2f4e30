package board

// Ray directions. The first four run towards higher square indexes, so the
// nearest blocker on them is the LSB; the last four use the MSB.
const (
	dirNorth = iota
	dirEast
	dirNorthEast
	dirNorthWest
	dirSouth
	dirWest
	dirSouthEast
	dirSouthWest
	numDirs
)

var dirStep = [numDirs][2]int{
	dirNorth:     {0, 1},
	dirEast:      {1, 0},
	dirNorthEast: {1, 1},
	dirNorthWest: {-1, 1},
	dirSouth:     {0, -1},
	dirWest:      {-1, 0},
	dirSouthEast: {1, -1},
	dirSouthWest: {-1, -1},
}

// Attack tables, filled by init and read-only afterwards.
var (
	knightAttacks [64]Bitboard
	kingAttacks   [64]Bitboard
	pawnAttacks   [2][64]Bitboard
	rays          [numDirs][64]Bitboard
)

func init() {
	knightJumps := [][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingSteps := [][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}

	for sq := A1; sq <= H8; sq++ {
		f, r := sq.File(), sq.Rank()
		knightAttacks[sq] = stepTargets(f, r, knightJumps)
		kingAttacks[sq] = stepTargets(f, r, kingSteps)

		b := SquareBB(sq)
		pawnAttacks[White][sq] = pawnCaptures(b, White)
		pawnAttacks[Black][sq] = pawnCaptures(b, Black)

		for d := 0; d < numDirs; d++ {
			var ray Bitboard
			for tf, tr := f+dirStep[d][0], r+dirStep[d][1]; onBoard(tf, tr); tf, tr = tf+dirStep[d][0], tr+dirStep[d][1] {
				ray |= SquareBB(NewSquare(tf, tr))
			}
			rays[d][sq] = ray
		}
	}
}

func onBoard(f, r int) bool {
	return f >= 0 && f < 8 && r >= 0 && r < 8
}

func stepTargets(f, r int, steps [][2]int) Bitboard {
	var b Bitboard
	for _, s := range steps {
		if onBoard(f+s[0], r+s[1]) {
			b |= SquareBB(NewSquare(f+s[0], r+s[1]))
		}
	}
	return b
}

// rayAttacks walks one ray from sq and stops at the first occupied square,
// which is included.
func rayAttacks(d int, sq Square, occ Bitboard) Bitboard {
	ray := rays[d][sq]
	blockers := ray & occ
	if blockers == 0 {
		return ray
	}
	var first Square
	if d < dirSouth {
		first = blockers.LSB()
	} else {
		first = blockers.MSB()
	}
	return ray &^ rays[d][first]
}

// KnightAttacks returns the squares a knight on sq attacks.
func KnightAttacks(sq Square) Bitboard { return knightAttacks[sq] }

// KingAttacks returns the squares a king on sq attacks.
func KingAttacks(sq Square) Bitboard { return kingAttacks[sq] }

// PawnAttacks returns the diagonal capture squares of a c pawn on sq.
func PawnAttacks(sq Square, c Color) Bitboard { return pawnAttacks[c][sq] }

// BishopAttacks returns diagonal attacks from sq given occupancy occ.
func BishopAttacks(sq Square, occ Bitboard) Bitboard {
	return rayAttacks(dirNorthEast, sq, occ) | rayAttacks(dirNorthWest, sq, occ) |
		rayAttacks(dirSouthEast, sq, occ) | rayAttacks(dirSouthWest, sq, occ)
}

// RookAttacks returns orthogonal attacks from sq given occupancy occ.
func RookAttacks(sq Square, occ Bitboard) Bitboard {
	return rayAttacks(dirNorth, sq, occ) | rayAttacks(dirEast, sq, occ) |
		rayAttacks(dirSouth, sq, occ) | rayAttacks(dirWest, sq, occ)
}

// QueenAttacks is the union of bishop and rook attacks.
func QueenAttacks(sq Square, occ Bitboard) Bitboard {
	return BishopAttacks(sq, occ) | RookAttacks(sq, occ)
}

// AttacksFrom returns the squares attacked by a piece of kind k and color c
// standing on sq. Color only matters for pawns, occupancy only for sliders.
func AttacksFrom(sq Square, k PieceKind, c Color, occ Bitboard) Bitboard {
	switch k {
	case Pawn:
		return pawnAttacks[c][sq]
	case Knight:
		return knightAttacks[sq]
	case Bishop:
		return BishopAttacks(sq, occ)
	case Rook:
		return RookAttacks(sq, occ)
	case Queen:
		return QueenAttacks(sq, occ)
	case King:
		return kingAttacks[sq]
	}
	return 0
}

// AttackersOf returns the pieces of color by that attack sq under occupancy occ.
func (p *Position) AttackersOf(sq Square, by Color, occ Bitboard) Bitboard {
	pc := &p.Pieces[by]
	diag := pc[Bishop] | pc[Queen]
	orth := pc[Rook] | pc[Queen]
	return pawnAttacks[by.Other()][sq]&pc[Pawn] |
		knightAttacks[sq]&pc[Knight] |
		kingAttacks[sq]&pc[King] |
		BishopAttacks(sq, occ)&diag |
		RookAttacks(sq, occ)&orth
}

// IsSquareAttacked reports whether any piece of color by attacks sq.
func (p *Position) IsSquareAttacked(sq Square, by Color) bool {
	pc := &p.Pieces[by]
	if pawnAttacks[by.Other()][sq]&pc[Pawn] != 0 ||
		knightAttacks[sq]&pc[Knight] != 0 ||
		kingAttacks[sq]&pc[King] != 0 {
		return true
	}
	if BishopAttacks(sq, p.AllOccupied)&(pc[Bishop]|pc[Queen]) != 0 {
		return true
	}
	return RookAttacks(sq, p.AllOccupied)&(pc[Rook]|pc[Queen]) != 0
}

// pawnCaptures returns the squares attacked by c's pawns on b.
func pawnCaptures(b Bitboard, c Color) Bitboard {
	f := b.Forward(c)
	return f.East() | f.West()
}

// AttackedBy returns every square attacked by color c.
func (p *Position) AttackedBy(c Color) Bitboard {
	pc := &p.Pieces[c]
	att := pawnCaptures(pc[Pawn], c)
	for k := Knight; k <= King; k++ {
		for b := pc[k]; b != 0; {
			att |= AttacksFrom(b.PopLSB(), k, c, p.AllOccupied)
		}
	}
	return att
}
