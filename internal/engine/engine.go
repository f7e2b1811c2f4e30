package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/hailam/chesscore/internal/board"
)

// ErrSearchAborted reports that a search stopped before its target depth.
// The result still holds the best move of the last completed iteration.
var ErrSearchAborted = errors.New("engine: search aborted")

// Info describes one completed iteration.
type Info struct {
	Depth    int
	Score    int
	Nodes    uint64
	Time     time.Duration
	PV       []board.Move
	HashFull int // permille
}

// Limits bounds a search. A zero Depth means the configured default, or
// MaxDepth when a time, node or infinite limit is given.
type Limits struct {
	Depth    int
	Nodes    uint64
	MoveTime time.Duration
	Infinite bool // search until the context is cancelled or Stop is called
}

// Difficulty is a preset search budget.
type Difficulty int

const (
	Easy Difficulty = iota
	Medium
	Hard
)

// DifficultySettings maps each preset to its limits.
var DifficultySettings = map[Difficulty]Limits{
	Easy:   {Depth: 3, MoveTime: 500 * time.Millisecond},
	Medium: {Depth: 5, MoveTime: 2 * time.Second},
	Hard:   {Depth: 7, MoveTime: 5 * time.Second},
}

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	}
	return fmt.Sprintf("difficulty(%d)", int(d))
}

// ParseDifficulty reads "easy", "medium" or "hard".
func ParseDifficulty(s string) (Difficulty, error) {
	for d := Easy; d <= Hard; d++ {
		if strings.EqualFold(s, d.String()) {
			return d, nil
		}
	}
	return Medium, fmt.Errorf("engine: unknown difficulty %q", s)
}

// Config configures an Engine. Start from DefaultConfig.
type Config struct {
	HashMB int
	// Depth is used when Limits carries neither a depth nor a budget.
	Depth int
	// CaptureExtension is how many plies past the horizon a line may run
	// while every move in it is a capture.
	CaptureExtension int
	UseTT            bool
	// PollInterval is how many nodes pass between deadline checks.
	PollInterval uint64
	Eval         Evaluator
	Logger       zerolog.Logger
}

// DefaultConfig returns the standard engine configuration.
func DefaultConfig() Config {
	return Config{
		HashMB:           16,
		Depth:            6,
		CaptureExtension: 1,
		UseTT:            true,
		PollInterval:     2048,
		Eval:             Evaluate,
		Logger:           zerolog.Nop(),
	}
}

// Result is the outcome of a search.
type Result struct {
	Move    board.Move
	Score   int
	Depth   int // last completed iteration; 0 if none completed
	Nodes   uint64
	PV      []board.Move
	Aborted bool
	Elapsed time.Duration
}

// Err returns ErrSearchAborted if the search stopped early.
func (r Result) Err() error {
	if r.Aborted {
		return ErrSearchAborted
	}
	return nil
}

// Engine owns a transposition table and move-ordering state and runs one
// search at a time.
type Engine struct {
	cfg   Config
	mu    sync.Mutex
	tt    *TranspositionTable
	order MoveOrderer
	stop  atomic.Bool

	// OnInfo, if set, is called on the searching goroutine after each
	// completed iteration.
	OnInfo func(Info)
}

// New creates an engine.
func New(cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.HashMB <= 0 {
		cfg.HashMB = def.HashMB
	}
	if cfg.Depth <= 0 {
		cfg.Depth = def.Depth
	}
	cfg.Depth = min(cfg.Depth, MaxDepth)
	cfg.CaptureExtension = max(0, min(cfg.CaptureExtension, maxCaptureExtension))
	if cfg.PollInterval == 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.Eval == nil {
		cfg.Eval = def.Eval
	}
	return &Engine{cfg: cfg, tt: NewTranspositionTable(cfg.HashMB)}
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Search finds the best move in pos by iterative deepening. It returns once
// the depth limit is reached, or when ctx is done, the move time or node
// budget runs out, or Stop is called; in those cases the result comes from
// the last completed iteration and Aborted is set. pos is not modified.
//
// With no legal moves the result has NoMove and the checkmate or stalemate
// score.
func (e *Engine) Search(ctx context.Context, pos *board.Position, lim Limits) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	e.stop.Store(false)
	if lim.MoveTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, lim.MoveTime)
		defer cancel()
	}

	maxDepth := lim.Depth
	if maxDepth <= 0 {
		maxDepth = e.cfg.Depth
		if lim.MoveTime > 0 || lim.Nodes > 0 || lim.Infinite {
			maxDepth = MaxDepth
		}
	}
	maxDepth = min(maxDepth, MaxDepth)

	root := pos.LegalMoves()
	if len(root) == 0 {
		score := DrawScore
		if pos.Checkers != 0 {
			score = -MateScore
		}
		return Result{Move: board.NoMove, Score: score, Elapsed: time.Since(start)}
	}

	s := &searcher{
		pos:      pos.Copy(),
		eval:     e.cfg.Eval,
		order:    &e.order,
		capExt:   e.cfg.CaptureExtension,
		poll:     e.cfg.PollInterval,
		maxNodes: lim.Nodes,
		ctx:      ctx,
		stop:     &e.stop,
	}
	if e.cfg.UseTT {
		s.tt = e.tt
		e.tt.NewSearch()
	}
	e.order.Clear()

	e.order.OrderRoot(root, board.NoMove)
	res := Result{Move: root[0]}
	for depth := 1; depth <= maxDepth; depth++ {
		if s.checkStop(); s.aborted {
			break
		}
		e.order.OrderRoot(root, res.Move)
		move, score, ok := s.searchRoot(root, depth)
		if !ok {
			break
		}
		res.Move, res.Score, res.Depth = move, score, depth
		res.PV = s.pv.line()

		info := Info{Depth: depth, Score: score, Nodes: s.nodes, Time: time.Since(start), PV: res.PV}
		if s.tt != nil {
			info.HashFull = s.tt.HashFull()
		}
		e.cfg.Logger.Debug().
			Int("depth", depth).
			Int("score", score).
			Uint64("nodes", s.nodes).
			Dur("elapsed", info.Time).
			Str("pv", FormatPV(res.PV)).
			Msg("iteration complete")
		if e.OnInfo != nil {
			e.OnInfo(info)
		}
	}

	res.Aborted = res.Depth < maxDepth
	res.Nodes = s.nodes
	res.Elapsed = time.Since(start)
	e.cfg.Logger.Info().
		Str("move", res.Move.String()).
		Str("score", ScoreToString(res.Score)).
		Int("depth", res.Depth).
		Uint64("nodes", res.Nodes).
		Dur("elapsed", res.Elapsed).
		Bool("aborted", res.Aborted).
		Msg("search finished")
	return res
}

// SearchDifficulty searches with a preset budget.
func (e *Engine) SearchDifficulty(ctx context.Context, pos *board.Position, d Difficulty) Result {
	return e.Search(ctx, pos, DifficultySettings[d])
}

// Stop asks a running search to return. It is safe to call from any goroutine.
func (e *Engine) Stop() {
	e.stop.Store(true)
}

// Clear empties the transposition table and ordering history.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tt.Clear()
	e.order = MoveOrderer{}
}

// SetHashSize replaces the transposition table with one of sizeMB megabytes.
func (e *Engine) SetHashSize(sizeMB int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg.HashMB = sizeMB
	e.tt = NewTranspositionTable(sizeMB)
}

// Evaluate returns the static evaluation of pos.
func (e *Engine) Evaluate(pos *board.Position) int {
	return e.cfg.Eval(pos)
}

// MateDistance returns the number of moves to mate for a mate score,
// negative when the side to move is being mated.
func MateDistance(score int) (int, bool) {
	switch {
	case score > MateScore-MaxPly:
		return (MateScore - score + 1) / 2, true
	case score < -MateScore+MaxPly:
		return -(MateScore + score + 1) / 2, true
	}
	return 0, false
}

// ScoreToString formats a score for people: "+0.35", "-1.20", "mate 3".
func ScoreToString(score int) string {
	if n, ok := MateDistance(score); ok {
		return fmt.Sprintf("mate %d", n)
	}
	sign := "+"
	if score < 0 {
		sign = "-"
		score = -score
	}
	return fmt.Sprintf("%s%d.%02d", sign, score/100, score%100)
}

// FormatPV joins moves in coordinate notation.
func FormatPV(pv []board.Move) string {
	parts := make([]string, len(pv))
	for i, m := range pv {
		parts[i] = m.String()
	}
	return strings.Join(parts, " ")
}
