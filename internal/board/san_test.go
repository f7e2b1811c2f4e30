package board

import "testing"

func TestSAN(t *testing.T) {
	tests := []struct {
		fen  string
		move string
		san  string
	}{
		{StartFEN, "g1f3", "Nf3"},
		{StartFEN, "e2e4", "e4"},
		{"r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", "e1g1", "O-O"},
		{"r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", "e1c1", "O-O-O"},
		{"rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3", "e5f6", "exf6"},
		{"6k1/4Rppp/8/8/8/8/5PPP/6K1 w - - 0 1", "e7e8", "Re8#"},
		{"8/P6k/8/8/8/8/8/K7 w - - 0 1", "a7a8q", "a8=Q"},
		{"4k3/8/8/8/8/8/4K3/R6R w - - 0 1", "a1d1", "Rad1"},
		{"4k3/8/8/8/8/8/4K3/R6R w - - 0 1", "h1h8", "Rh8+"},
	}
	for _, tc := range tests {
		t.Run(tc.san, func(t *testing.T) {
			p := mustParse(t, tc.fen)
			m, err := ParseMove(tc.move, p)
			if err != nil {
				t.Fatalf("ParseMove: %v", err)
			}
			if got := p.SAN(m); got != tc.san {
				t.Errorf("SAN(%s) = %s, want %s", tc.move, got, tc.san)
			}
			back, err := ParseSAN(tc.san, p)
			if err != nil || back != m {
				t.Errorf("ParseSAN(%s) = %v, %v; want %v", tc.san, back, err, m)
			}
		})
	}
}
