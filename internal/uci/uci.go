// Package uci adapts the engine to the Universal Chess Interface protocol.
package uci

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/engine"
)

const (
	engineName   = "chesscore"
	engineAuthor = "the chesscore authors"
)

// UCI implements the Universal Chess Interface protocol.
type UCI struct {
	engine   *engine.Engine
	position *board.Position
	log      zerolog.Logger

	mu  sync.Mutex // guards out
	out io.Writer

	// Search state
	cancel     context.CancelFunc
	searchDone chan struct{}
}

// New creates a UCI handler writing responses to out.
func New(eng *engine.Engine, out io.Writer, log zerolog.Logger) *UCI {
	return &UCI{
		engine:   eng,
		position: board.NewPosition(),
		log:      log,
		out:      out,
	}
}

func (u *UCI) send(format string, args ...any) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fmt.Fprintf(u.out, format+"\n", args...)
}

// Run reads commands from in until "quit", end of input or ctx is done.
// At end of input a running search is allowed to finish; "quit" stops it.
func (u *UCI) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd, args := parts[0], parts[1:]
		u.log.Debug().Str("cmd", line).Msg("uci command")

		switch cmd {
		case "uci":
			u.handleUCI()
		case "isready":
			u.send("readyok")
		case "ucinewgame":
			u.handleStop()
			u.engine.Clear()
			u.position = board.NewPosition()
		case "position":
			u.handleStop()
			u.handlePosition(args)
		case "go":
			u.handleStop()
			u.handleGo(ctx, args)
		case "stop":
			u.handleStop()
		case "quit":
			u.handleStop()
			return nil
		case "setoption":
			u.handleSetOption(args)
		// Debug commands
		case "d":
			u.send("%s\nFen: %s\nKey: %016x", u.position, u.position.FEN(), u.position.Hash)
		case "eval":
			u.send("info string eval %s", engine.ScoreToString(u.engine.Evaluate(u.position)))
		case "perft":
			u.handleStop()
			u.handlePerft(ctx, args)
		default:
			u.send("info string unknown command: %s", cmd)
		}
	}
	u.waitSearch()
	return scanner.Err()
}

func (u *UCI) handleUCI() {
	u.send("id name %s", engineName)
	u.send("id author %s", engineAuthor)
	u.send("")
	u.send("option name Hash type spin default %d min 1 max 4096", u.engine.Config().HashMB)
	u.send("option name Clear Hash type button")
	u.send("uciok")
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos [moves e2e4 e7e5 ...]
//   - position fen <fen> [moves ...]
//
// On error the previous position is kept.
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	movesAt := len(args)
	for i, arg := range args {
		if arg == "moves" {
			movesAt = i
			break
		}
	}

	var pos *board.Position
	switch args[0] {
	case "startpos":
		pos = board.NewPosition()
	case "fen":
		var err error
		pos, err = board.ParseFEN(strings.Join(args[1:movesAt], " "))
		if err != nil {
			u.send("info string invalid fen: %v", err)
			return
		}
	default:
		u.send("info string invalid position command")
		return
	}

	if movesAt < len(args) {
		for _, s := range args[movesAt+1:] {
			m, err := board.ParseMove(s, pos)
			if err != nil {
				u.send("info string invalid move %s: %v", s, err)
				return
			}
			pos.MakeMove(m)
		}
	}
	u.position = pos
}

// GoOptions holds the parameters of a "go" command.
type GoOptions struct {
	Depth    int
	Nodes    uint64
	MoveTime time.Duration
	Infinite bool
	Clock    engine.Clock
}

// ParseGoOptions reads the arguments of a "go" command. Unknown tokens are
// skipped.
func ParseGoOptions(args []string) GoOptions {
	var opts GoOptions
	next := func(i int) int64 {
		if i+1 >= len(args) {
			return 0
		}
		n, _ := strconv.ParseInt(args[i+1], 10, 64)
		return n
	}
	ms := func(i int) time.Duration { return time.Duration(next(i)) * time.Millisecond }

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth":
			opts.Depth = int(next(i))
		case "nodes":
			opts.Nodes = uint64(max(0, next(i)))
		case "movetime":
			opts.MoveTime = ms(i)
		case "wtime":
			opts.Clock.Time[board.White] = ms(i)
		case "btime":
			opts.Clock.Time[board.Black] = ms(i)
		case "winc":
			opts.Clock.Inc[board.White] = ms(i)
		case "binc":
			opts.Clock.Inc[board.Black] = ms(i)
		case "movestogo":
			opts.Clock.MovesToGo = int(next(i))
		case "infinite":
			opts.Infinite = true
			continue
		default:
			continue
		}
		i++
	}
	return opts
}

// Limits converts the options to search limits for pos.
func (o GoOptions) Limits(pos *board.Position) engine.Limits {
	lim := engine.Limits{Depth: o.Depth, Nodes: o.Nodes, Infinite: o.Infinite}
	if o.Infinite {
		return lim
	}
	lim.MoveTime = o.MoveTime
	if lim.MoveTime == 0 {
		lim.MoveTime = o.Clock.MoveTime(pos.SideToMove(), pos.FullMoveNumber)
	}
	return lim
}

func (u *UCI) handleGo(ctx context.Context, args []string) {
	opts := ParseGoOptions(args)
	pos := u.position.Copy()
	lim := opts.Limits(pos)

	u.engine.OnInfo = func(info engine.Info) { u.sendInfo(info) }

	ctx, u.cancel = context.WithCancel(ctx)
	done := make(chan struct{})
	u.searchDone = done

	go func() {
		defer close(done)
		res := u.engine.Search(ctx, pos, lim)
		if res.Move == board.NoMove {
			u.send("bestmove 0000")
			return
		}
		u.send("bestmove %s", res.Move)
	}()
}

// FormatScore renders a score the way UCI expects: "cp 35" or "mate -2".
func FormatScore(score int) string {
	if n, ok := engine.MateDistance(score); ok {
		return fmt.Sprintf("mate %d", n)
	}
	return fmt.Sprintf("cp %d", score)
}

func (u *UCI) sendInfo(info engine.Info) {
	parts := []string{
		fmt.Sprintf("depth %d", info.Depth),
		"score " + FormatScore(info.Score),
		fmt.Sprintf("nodes %d", info.Nodes),
		fmt.Sprintf("time %d", info.Time.Milliseconds()),
	}
	if info.Time > 0 {
		parts = append(parts, fmt.Sprintf("nps %d", uint64(float64(info.Nodes)/info.Time.Seconds())))
	}
	if info.HashFull > 0 {
		parts = append(parts, fmt.Sprintf("hashfull %d", info.HashFull))
	}
	if len(info.PV) > 0 {
		parts = append(parts, "pv "+engine.FormatPV(info.PV))
	}
	u.send("info %s", strings.Join(parts, " "))
}

// handleStop cancels a running search and waits for its bestmove.
func (u *UCI) handleStop() {
	if u.cancel != nil {
		u.cancel()
	}
	u.waitSearch()
}

func (u *UCI) waitSearch() {
	if u.searchDone != nil {
		<-u.searchDone
		u.searchDone = nil
	}
	if u.cancel != nil {
		u.cancel()
		u.cancel = nil
	}
}

// parseOption splits "name <words> value <words>".
func parseOption(args []string) (name, value string) {
	var names, values []string
	target := &names
	for _, arg := range args {
		switch arg {
		case "name":
			target = &names
		case "value":
			target = &values
		default:
			*target = append(*target, arg)
		}
	}
	return strings.Join(names, " "), strings.Join(values, " ")
}

func (u *UCI) handleSetOption(args []string) {
	u.handleStop()
	name, value := parseOption(args)
	switch strings.ToLower(name) {
	case "hash":
		mb, err := strconv.Atoi(value)
		if err != nil || mb < 1 {
			u.send("info string invalid hash size %q", value)
			return
		}
		u.engine.SetHashSize(mb)
	case "clear hash":
		u.engine.Clear()
	default:
		u.send("info string unknown option %q", name)
	}
}

func (u *UCI) handlePerft(ctx context.Context, args []string) {
	depth := 1
	if len(args) > 0 {
		if d, err := strconv.Atoi(args[0]); err == nil && d > 0 {
			depth = d
		}
	}

	start := time.Now()
	entries, err := u.position.Divide(ctx, depth)
	if err != nil {
		u.send("info string perft: %v", err)
		return
	}
	var total uint64
	for _, e := range entries {
		u.send("%s: %d", e.Move, e.Nodes)
		total += e.Nodes
	}
	u.send("")
	u.send("Nodes searched: %d", total)
	u.log.Debug().Int("depth", depth).Uint64("nodes", total).Dur("elapsed", time.Since(start)).Msg("perft")
}
