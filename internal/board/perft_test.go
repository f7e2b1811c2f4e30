package board

import (
	"context"
	"testing"
)

type perftCase struct {
	name  string
	fen   string
	nodes []uint64 // nodes[i] is perft(i+1)
	short int      // depths run under -short
}

var perftCases = []perftCase{
	{"start", StartFEN, []uint64{20, 400, 8902, 197281}, 3},
	{"kiwipete", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		[]uint64{48, 2039, 97862}, 2},
	{"rook endgame", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		[]uint64{14, 191, 2812, 43238}, 3},
	{"promotions", "r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
		[]uint64{6, 264, 9467}, 2},
	{"talkchess", "rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
		[]uint64{44, 1486, 62379}, 2},
	{"middlegame", "r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10",
		[]uint64{46, 2079, 89890}, 2},
	{"en passant pin", "8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1", []uint64{6, 94}, 2},
}

func TestPerft(t *testing.T) {
	for _, tc := range perftCases {
		t.Run(tc.name, func(t *testing.T) {
			pos, err := ParseFEN(tc.fen)
			if err != nil {
				t.Fatalf("ParseFEN: %v", err)
			}
			for i, want := range tc.nodes {
				depth := i + 1
				if testing.Short() && depth > tc.short {
					break
				}
				if got := pos.Perft(depth); got != want {
					t.Errorf("perft(%d) = %d, want %d", depth, got, want)
				}
			}
			if pos.FEN() != mustParse(t, tc.fen).FEN() {
				t.Errorf("perft left the position changed: %s", pos.FEN())
			}
		})
	}
}

func TestDivideMatchesPerft(t *testing.T) {
	pos := mustParse(t, perftCases[1].fen)
	entries, err := pos.Divide(context.Background(), 3)
	if err != nil {
		t.Fatalf("Divide: %v", err)
	}
	if len(entries) != 48 {
		t.Fatalf("Divide returned %d root moves, want 48", len(entries))
	}
	var total uint64
	for i, e := range entries {
		total += e.Nodes
		if i > 0 && entries[i-1].Move.String() >= e.Move.String() {
			t.Errorf("entries not sorted at %d: %v then %v", i, entries[i-1].Move, e.Move)
		}
	}
	if total != 97862 {
		t.Errorf("divide total = %d, want 97862", total)
	}
}

func TestDivideCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewPosition().Divide(ctx, 4); err == nil {
		t.Error("Divide with a cancelled context returned no error")
	}
}

func mustParse(t *testing.T, fen string) *Position {
	t.Helper()
	p, err := ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return p
}
