package board

import (
	"encoding/binary"

	"lukechampine.com/frand"
)

// zobristSeed fixes the key stream so hashes agree across runs.
var zobristSeed = [32]byte{
	0x98, 0xF1, 0x07, 0xA2, 0xBE, 0xEF, 0x12, 0x34,
	0x63, 0x68, 0x65, 0x73, 0x73, 0x63, 0x6F, 0x72,
	0x65, 0x2D, 0x7A, 0x6F, 0x62, 0x72, 0x69, 0x73,
	0x74, 0x2D, 0x6B, 0x65, 0x79, 0x73, 0x00, 0x01,
}

var (
	zobristPiece      [2][6][64]uint64
	zobristCastling   [16]uint64
	zobristEnPassant  [8]uint64
	zobristSideToMove uint64
)

func init() {
	rng := frand.NewCustom(zobristSeed[:], 1024, 20)
	var buf [8]byte
	next := func() uint64 {
		rng.Read(buf[:])
		return binary.LittleEndian.Uint64(buf[:])
	}

	for c := 0; c < 2; c++ {
		for k := 0; k < 6; k++ {
			for sq := 0; sq < 64; sq++ {
				zobristPiece[c][k][sq] = next()
			}
		}
	}
	// Index 0 (no rights) stays zero so a bare position hashes on placement alone.
	for i := 1; i < 16; i++ {
		zobristCastling[i] = next()
	}
	for f := 0; f < 8; f++ {
		zobristEnPassant[f] = next()
	}
	zobristSideToMove = next()
}

// ComputeHash recomputes the Zobrist key from scratch.
func (p *Position) ComputeHash() uint64 {
	var h uint64
	for c := White; c <= Black; c++ {
		for k := Pawn; k <= King; k++ {
			for b := p.Pieces[c][k]; b != 0; {
				h ^= zobristPiece[c][k][b.PopLSB()]
			}
		}
	}
	h ^= zobristCastling[p.Castling()]
	if ep := p.EnPassant(); ep != NoSquare {
		h ^= zobristEnPassant[ep.File()]
	}
	if p.SideToMove() == Black {
		h ^= zobristSideToMove
	}
	return h
}
