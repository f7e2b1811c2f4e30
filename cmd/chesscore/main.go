// Command chesscore analyses chess positions, counts move paths and speaks UCI.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"time"

	"github.com/rs/zerolog"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/engine"
	"github.com/hailam/chesscore/internal/storage"
	"github.com/hailam/chesscore/internal/uci"
)

var (
	fenFlag    = flag.String("fen", board.StartFEN, "position to analyse")
	perft      = flag.Int("perft", 0, "count leaf nodes to this depth and exit")
	divide     = flag.Int("divide", 0, "print per-move perft counts to this depth and exit")
	depth      = flag.Int("depth", 0, "search depth (0 = from settings or difficulty)")
	movetime   = flag.Duration("movetime", 0, "search time limit, e.g. 2s")
	hash       = flag.Int("hash", 0, "transposition table size in MB (0 = from settings)")
	captureExt = flag.Int("capext", 1, "plies a capture sequence may run past the horizon")
	useTT      = flag.Bool("tt", true, "use the transposition table")
	difficulty = flag.String("difficulty", "", "preset budget: easy, medium or hard")
	dataDir    = flag.String("datadir", "", "database directory (default: platform data dir)")
	noStore    = flag.Bool("nostore", false, "do not open the settings and analysis database")
	uciMode    = flag.Bool("uci", false, "run the UCI protocol on stdin/stdout")
	verbose    = flag.Bool("v", false, "debug logging")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
)

func main() {
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).With().Timestamp().Logger()

	if err := run(log); err != nil {
		log.Error().Err(err).Msg("chesscore failed")
		os.Exit(1)
	}
}

func run(log zerolog.Logger) error {
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			return fmt.Errorf("create cpu profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("start cpu profile: %w", err)
		}
		defer pprof.StopCPUProfile()
		log.Info().Str("path", profilePath).Msg("cpu profiling enabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var store *storage.Storage
	if !*noStore {
		var err error
		if *dataDir != "" {
			store, err = storage.Open(*dataDir)
		} else {
			store, err = storage.OpenDefault()
		}
		if err != nil {
			log.Warn().Err(err).Msg("database unavailable, continuing without it")
			store = nil
		} else {
			defer store.Close()
		}
	}

	settings, err := loadSettings(store, log)
	if err != nil {
		return err
	}

	cfg := engine.DefaultConfig()
	cfg.HashMB = settings.HashMB
	cfg.Depth = settings.Depth
	cfg.CaptureExtension = settings.CaptureExtension
	cfg.UseTT = settings.UseTT
	cfg.Logger = log

	if *uciMode {
		// stdout belongs to the protocol; keep per-search logs quiet.
		cfg.Logger = log.Level(zerolog.WarnLevel)
		return uci.New(engine.New(cfg), os.Stdout, log).Run(ctx, os.Stdin)
	}
	eng := engine.New(cfg)

	pos, err := board.ParseFEN(*fenFlag)
	if err != nil {
		return err
	}

	switch {
	case *perft > 0:
		start := time.Now()
		n := pos.Perft(*perft)
		fmt.Printf("perft(%d) = %d\n", *perft, n)
		log.Debug().Dur("elapsed", time.Since(start)).Msg("perft done")
		return nil
	case *divide > 0:
		entries, err := pos.Divide(ctx, *divide)
		if err != nil {
			return err
		}
		var total uint64
		for _, e := range entries {
			fmt.Printf("%s: %d\n", e.Move, e.Nodes)
			total += e.Nodes
		}
		fmt.Printf("\nNodes searched: %d\n", total)
		return nil
	}

	b, err := searchBudget(settings)
	if err != nil {
		return err
	}
	return analyse(ctx, eng, store, pos, b, log)
}

// loadSettings merges stored settings with flags given on the command line
// and saves the result.
func loadSettings(store *storage.Storage, log zerolog.Logger) (storage.Settings, error) {
	settings := storage.DefaultSettings()
	if store != nil {
		var found bool
		var err error
		settings, found, err = store.LoadSettings()
		if err != nil {
			return settings, err
		}
		log.Debug().Bool("found", found).Interface("settings", settings).Msg("settings loaded")
	}

	changed := false
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "hash":
			settings.HashMB, changed = *hash, true
		case "depth":
			settings.Depth, changed = *depth, true
		case "difficulty":
			settings.Difficulty, changed = *difficulty, true
		case "capext":
			settings.CaptureExtension, changed = *captureExt, true
		case "tt":
			settings.UseTT, changed = *useTT, true
		}
	})
	if changed && store != nil {
		if err := store.SaveSettings(settings); err != nil {
			return settings, err
		}
	}
	return settings, nil
}

// budget is either explicit limits or a difficulty preset.
type budget struct {
	limits     engine.Limits
	preset     bool
	difficulty engine.Difficulty
}

func (b budget) search(ctx context.Context, eng *engine.Engine, pos *board.Position) engine.Result {
	if b.preset {
		return eng.SearchDifficulty(ctx, pos, b.difficulty)
	}
	return eng.Search(ctx, pos, b.limits)
}

// searchBudget picks the budget: explicit depth or move time first, then the
// difficulty preset.
func searchBudget(settings storage.Settings) (budget, error) {
	if *depth > 0 || *movetime > 0 {
		return budget{limits: engine.Limits{Depth: *depth, MoveTime: *movetime}}, nil
	}
	if *difficulty == "" {
		return budget{limits: engine.Limits{Depth: settings.Depth}}, nil
	}
	d, err := engine.ParseDifficulty(settings.Difficulty)
	if err != nil {
		return budget{}, err
	}
	return budget{limits: engine.DifficultySettings[d], preset: true, difficulty: d}, nil
}

func analyse(ctx context.Context, eng *engine.Engine, store *storage.Storage, pos *board.Position, b budget, log zerolog.Logger) error {
	fen := pos.FEN()
	ext := eng.Config().CaptureExtension
	if status := pos.Status(); status != board.Ongoing {
		fmt.Printf("%s: %s\n", fen, status)
		return nil
	}

	if store != nil && b.limits.Depth > 0 {
		a, ok, err := store.LookupAnalysis(pos.Hash, fen, ext, b.limits.Depth)
		if err != nil {
			return err
		}
		if err := store.RecordSearch(ok); err != nil {
			log.Warn().Err(err).Msg("record search")
		}
		if ok {
			log.Debug().Int("depth", a.Depth).Time("searched_at", a.SearchedAt).Msg("analysis cache hit")
			fmt.Printf("bestmove %s score %s depth %d (cached)\n", a.Move, engine.ScoreToString(a.Score), a.Depth)
			return nil
		}
	}

	eng.OnInfo = func(info engine.Info) {
		fmt.Printf("depth %2d  score %7s  nodes %10d  time %8s  pv %s\n",
			info.Depth, engine.ScoreToString(info.Score), info.Nodes,
			info.Time.Round(time.Millisecond), engine.FormatPV(info.PV))
	}
	res := b.search(ctx, eng, pos)
	if err := res.Err(); err != nil {
		log.Warn().Err(err).Int("depth", res.Depth).Msg("search stopped early")
	}
	fmt.Printf("bestmove %s (%s) score %s depth %d\n",
		res.Move, pos.SAN(res.Move), engine.ScoreToString(res.Score), res.Depth)

	if store == nil || res.Depth == 0 {
		return nil
	}
	pv := make([]string, len(res.PV))
	for i, m := range res.PV {
		pv[i] = m.String()
	}
	_, err := store.SaveAnalysis(pos.Hash, storage.Analysis{
		FEN:              fen,
		Move:             res.Move.String(),
		Score:            res.Score,
		Depth:            res.Depth,
		CaptureExtension: ext,
		Nodes:            res.Nodes,
		PV:               pv,
		Elapsed:          res.Elapsed,
	})
	return err
}
