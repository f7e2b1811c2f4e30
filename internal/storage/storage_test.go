package storage

import (
	"path/filepath"
	"testing"
)

func openTemp(t *testing.T) *Storage {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSettings(t *testing.T) {
	s := openTemp(t)

	st, found, err := s.LoadSettings()
	if err != nil || found {
		t.Fatalf("LoadSettings on empty db = %v, %v", found, err)
	}
	if st != DefaultSettings() {
		t.Errorf("expected defaults, got %+v", st)
	}

	st.Difficulty = "hard"
	st.HashMB = 64
	st.UseTT = false
	if err := s.SaveSettings(st); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	got, found, err := s.LoadSettings()
	if err != nil || !found || got != st {
		t.Errorf("LoadSettings = %+v, %v, %v; want %+v", got, found, err, st)
	}
}

func TestAnalysis(t *testing.T) {
	s := openTemp(t)
	const hash = 0x1234abcd
	const fen = "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"

	if _, ok, err := s.LookupAnalysis(hash, fen, 1, 1); ok || err != nil {
		t.Fatalf("lookup on empty db = %v, %v", ok, err)
	}

	deep := Analysis{FEN: fen, Move: "e7e5", Score: -20, Depth: 6, CaptureExtension: 1, Nodes: 12345, PV: []string{"e7e5", "g1f3"}}
	if ok, err := s.SaveAnalysis(hash, deep); !ok || err != nil {
		t.Fatalf("SaveAnalysis = %v, %v", ok, err)
	}

	shallow := Analysis{FEN: fen, Move: "c7c5", Score: -35, Depth: 3, CaptureExtension: 1}
	if ok, err := s.SaveAnalysis(hash, shallow); ok || err != nil {
		t.Errorf("shallower analysis overwrote a deeper one: %v, %v", ok, err)
	}

	got, ok, err := s.LookupAnalysis(hash, fen, 1, 5)
	if err != nil || !ok {
		t.Fatalf("LookupAnalysis = %v, %v", ok, err)
	}
	if got.Move != "e7e5" || got.Depth != 6 || got.Nodes != 12345 || len(got.PV) != 2 {
		t.Errorf("LookupAnalysis = %+v", got)
	}
	if got.SearchedAt.IsZero() {
		t.Error("SearchedAt not set")
	}

	if _, ok, _ := s.LookupAnalysis(hash, fen, 1, 7); ok {
		t.Error("lookup returned an analysis shallower than requested")
	}
	if _, ok, _ := s.LookupAnalysis(hash, "8/8/8/8/8/8/8/8 w - - 0 1", 1, 1); ok {
		t.Error("lookup ignored a FEN mismatch")
	}

	// A different position under the same key replaces the entry.
	other := Analysis{FEN: "other", Move: "a2a3", Depth: 1}
	if ok, err := s.SaveAnalysis(hash, other); !ok || err != nil {
		t.Errorf("colliding position was not stored: %v, %v", ok, err)
	}
}

func TestAnalysisCaptureExtension(t *testing.T) {
	s := openTemp(t)
	const hash = 0x5eed
	const fen = "4k3/8/8/3q4/8/8/8/3RK3 w - - 0 1"

	deep := Analysis{FEN: fen, Move: "d1d5", Depth: 8, CaptureExtension: 1}
	if ok, err := s.SaveAnalysis(hash, deep); !ok || err != nil {
		t.Fatalf("SaveAnalysis = %v, %v", ok, err)
	}

	tests := []struct {
		name       string
		captureExt int
		minDepth   int
		hit        bool
	}{
		{"same extension", 1, 4, true},
		{"no extension", 0, 4, false},
		{"longer extension", 3, 4, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, ok, err := s.LookupAnalysis(hash, fen, tc.captureExt, tc.minDepth); ok != tc.hit || err != nil {
				t.Errorf("LookupAnalysis(ext %d) = %v, %v; want %v", tc.captureExt, ok, err, tc.hit)
			}
		})
	}

	// A shallower result under another extension still replaces the entry.
	other := Analysis{FEN: fen, Move: "d1d2", Depth: 2, CaptureExtension: 0}
	if ok, err := s.SaveAnalysis(hash, other); !ok || err != nil {
		t.Fatalf("SaveAnalysis with another extension = %v, %v", ok, err)
	}
	got, ok, err := s.LookupAnalysis(hash, fen, 0, 2)
	if err != nil || !ok || got.Move != "d1d2" {
		t.Errorf("LookupAnalysis(ext 0) = %+v, %v, %v", got, ok, err)
	}
	if _, ok, _ := s.LookupAnalysis(hash, fen, 1, 1); ok {
		t.Error("replaced entry still answers for extension 1")
	}
}

func TestStats(t *testing.T) {
	s := openTemp(t)
	for _, hit := range []bool{true, false, false, true} {
		if err := s.RecordSearch(hit); err != nil {
			t.Fatalf("RecordSearch: %v", err)
		}
	}
	st, err := s.LoadStats()
	if err != nil {
		t.Fatalf("LoadStats: %v", err)
	}
	if st.Searches != 4 || st.CacheHits != 2 || st.HitRate() != 50 {
		t.Errorf("stats = %+v, hit rate %.1f", st, st.HitRate())
	}
	if (Stats{}).HitRate() != 0 {
		t.Error("empty stats have a hit rate")
	}
}

func TestDataPaths(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	t.Setenv(EnvDataDir, dir)

	dataDir, err := GetDataDir()
	if err != nil || dataDir != dir {
		t.Fatalf("GetDataDir = %q, %v; want %q", dataDir, err, dir)
	}
	dbDir, err := GetDatabaseDir()
	if err != nil || dbDir != filepath.Join(dir, "db") {
		t.Errorf("GetDatabaseDir = %q, %v", dbDir, err)
	}
}
