package board

import (
	"errors"
	"testing"
)

func TestFENRoundTrip(t *testing.T) {
	fens := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3",
		"8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1",
		"r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10",
	}
	for _, fen := range fens {
		if got := mustParse(t, fen).FEN(); got != fen {
			t.Errorf("FEN round trip:\n got %s\nwant %s", got, fen)
		}
	}
}

func TestParseFENDefaultsClocks(t *testing.T) {
	p := mustParse(t, "4k3/8/8/8/8/8/8/4K3 b - -")
	if p.HalfMoveClock() != 0 || p.FullMoveNumber != 1 {
		t.Errorf("clocks = %d/%d, want 0/1", p.HalfMoveClock(), p.FullMoveNumber)
	}
	if p.SideToMove() != Black {
		t.Errorf("side = %v, want black", p.SideToMove())
	}
}

func TestMalformedPositions(t *testing.T) {
	tests := []struct {
		name string
		fen  string
	}{
		{"no white king", "4k3/8/8/8/8/8/8/8 w - - 0 1"},
		{"two white kings", "4k3/8/8/8/8/8/8/KK6 w - - 0 1"},
		{"pawn on eighth rank", "P3k3/8/8/8/8/8/8/4K3 w - - 0 1"},
		{"pawn on first rank", "4k3/8/8/8/8/8/8/p3K3 w - - 0 1"},
		{"side not to move in check", "4k3/8/8/8/8/8/8/4R1K1 w - - 0 1"},
		{"castling without rook", "4k3/8/8/8/8/8/8/4K3 w K - 0 1"},
		{"castling with king off home", "r3k2r/8/8/8/8/8/8/R4K1R w KQ - 0 1"},
		{"en passant without pawn", "4k3/8/8/8/8/8/8/4K3 w - e6 0 1"},
		{"en passant wrong rank", "4k3/8/8/3pP3/8/8/8/4K3 w - d5 0 1"},
		{"short rank", "4k3/8/8/8/8/8/8/4K2 w - - 0 1"},
		{"long rank", "4k3/8/8/8/8/8/8/4K4 w - - 0 1"},
		{"bad piece", "4k3/8/8/8/8/8/8/4X3 w - - 0 1"},
		{"bad side", "4k3/8/8/8/8/8/8/4K3 x - - 0 1"},
		{"missing fields", "4k3/8/8/8/8/8/8/4K3 w"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseFEN(tc.fen)
			if !errors.Is(err, ErrMalformedPosition) {
				t.Errorf("ParseFEN(%q) error = %v, want ErrMalformedPosition", tc.fen, err)
			}
		})
	}
}

func TestFromPlacement(t *testing.T) {
	p, err := FromPlacement(Placement{
		Pieces: map[Square]Piece{
			G1: NewPiece(King, White),
			E7: NewPiece(Rook, White),
			F2: NewPiece(Pawn, White),
			G8: NewPiece(King, Black),
			F7: NewPiece(Pawn, Black),
		},
		SideToMove: White,
	})
	if err != nil {
		t.Fatalf("FromPlacement: %v", err)
	}
	if want := "6k1/4Rp2/8/8/8/8/5P2/6K1 w - - 0 1"; p.FEN() != want {
		t.Errorf("FEN = %s, want %s", p.FEN(), want)
	}
	if p.Hash != mustParse(t, p.FEN()).Hash {
		t.Error("FromPlacement and ParseFEN disagree on the hash")
	}

	_, err = FromPlacement(Placement{Pieces: map[Square]Piece{E1: NewPiece(King, White)}})
	if !errors.Is(err, ErrMalformedPosition) {
		t.Errorf("missing black king: error = %v, want ErrMalformedPosition", err)
	}
}

// walk visits every node of the legal move tree to depth and checks that
// make/unmake is an exact round trip and the incremental hash is correct.
func walk(t *testing.T, p *Position, depth int) {
	if depth == 0 {
		return
	}
	for _, m := range p.LegalMoves() {
		before := *p
		u := p.MakeMove(m)
		if p.Hash != p.ComputeHash() {
			t.Fatalf("%s after %v: incremental hash %016x, recomputed %016x", before.FEN(), m, p.Hash, p.ComputeHash())
		}
		if err := p.Validate(); err != nil {
			t.Fatalf("%s after %v: %v", before.FEN(), m, err)
		}
		walk(t, p, depth-1)
		p.UnmakeMove(u)
		if *p != before {
			t.Fatalf("unmake %v did not restore %s, got %s", m, before.FEN(), p.FEN())
		}
	}
}

func TestMakeUnmakeRoundTrip(t *testing.T) {
	for _, tc := range perftCases {
		t.Run(tc.name, func(t *testing.T) {
			walk(t, mustParse(t, tc.fen), 2)
		})
	}
}

func TestApplyRejectsIllegalMove(t *testing.T) {
	p := NewPosition()
	fen := p.FEN()
	bad := []Move{
		NewMove(E2, E5, Pawn, NoKind, NoKind, TagNormal),
		NewMove(E1, G1, King, NoKind, NoKind, TagCastleKing),
		NewMove(G1, G3, Knight, NoKind, NoKind, TagNormal),
	}
	for _, m := range bad {
		if _, err := p.Apply(m); !errors.Is(err, ErrInvalidMove) {
			t.Errorf("Apply(%v) error = %v, want ErrInvalidMove", m, err)
		}
	}
	if p.FEN() != fen {
		t.Errorf("rejected moves changed the position: %s", p.FEN())
	}

	if _, err := ParseMove("e2e5", p); !errors.Is(err, ErrInvalidMove) {
		t.Errorf("ParseMove(e2e5) error = %v, want ErrInvalidMove", err)
	}
	if _, err := ParseMove("zz", p); !errors.Is(err, ErrInvalidMove) {
		t.Errorf("ParseMove(zz) error = %v, want ErrInvalidMove", err)
	}
}

func TestApplyLeavesOriginal(t *testing.T) {
	p := NewPosition()
	m, err := ParseMove("e2e4", p)
	if err != nil {
		t.Fatalf("ParseMove: %v", err)
	}
	next, err := Apply(p, m)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if p.FEN() != StartFEN {
		t.Errorf("Apply modified the original: %s", p.FEN())
	}
	if want := "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"; next.FEN() != want {
		t.Errorf("after e2e4 FEN = %s, want %s", next.FEN(), want)
	}
}

func TestCastlingRightsNeverRestored(t *testing.T) {
	p := mustParse(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	play := func(s string) {
		t.Helper()
		m, err := ParseMove(s, p)
		if err != nil {
			t.Fatalf("ParseMove(%s): %v", s, err)
		}
		p.MakeMove(m)
	}

	play("h1h8") // rook takes rook: white loses K, black loses k
	if got := p.Castling(); got != WhiteQueenSide|BlackQueenSide {
		t.Fatalf("rights after h1xh8 = %v, want Qq", got)
	}
	play("e8d7")
	if got := p.Castling(); got != WhiteQueenSide {
		t.Fatalf("rights after king move = %v, want Q", got)
	}
	play("a1a2")
	play("d7d6")
	play("a2a1")
	if got := p.Castling(); got != NoCastling {
		t.Errorf("rights after rook returned home = %v, want none", got)
	}
}

func TestFlagsPacking(t *testing.T) {
	f := packFlags(Black, WhiteKingSide|BlackQueenSide, E3, 300)
	if f.SideToMove() != Black || f.Castling() != WhiteKingSide|BlackQueenSide ||
		f.EnPassant() != E3 || f.HalfMoveClock() != 255 {
		t.Errorf("unpacked %v %v %v %d", f.SideToMove(), f.Castling(), f.EnPassant(), f.HalfMoveClock())
	}
	if packFlags(White, NoCastling, NoSquare, 0).EnPassant() != NoSquare {
		t.Error("NoSquare did not survive packing")
	}
}

func TestPieceMasksDisjoint(t *testing.T) {
	p := mustParse(t, perftCases[1].fen)
	var seen Bitboard
	for c := White; c <= Black; c++ {
		for k := Pawn; k <= King; k++ {
			if seen&p.Pieces[c][k] != 0 {
				t.Fatalf("%v %v overlaps another piece set", c, k)
			}
			seen |= p.Pieces[c][k]
		}
	}
	if seen != p.AllOccupied || p.Occupied[White]|p.Occupied[Black] != p.AllOccupied {
		t.Error("occupancy masks do not match the piece sets")
	}
}
