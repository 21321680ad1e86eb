// Package uci adapts the engine to the Universal Chess Interface:
// it parses commands from a reader, drives the engine, and writes
// protocol replies. Diagnostics go to the logger, never to the
// protocol stream.
package uci

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/MatN23/RustChessEngine/internal/board"
	"github.com/MatN23/RustChessEngine/internal/book"
	"github.com/MatN23/RustChessEngine/internal/engine"
)

const (
	engineName   = "RustChessEngine"
	engineAuthor = "MatN23"

	// The book is only consulted in the opening.
	bookMaxFullMove = 15
)

// Adapter runs the UCI protocol over an engine.
type Adapter struct {
	engine *engine.Engine
	out    io.Writer
	log    zerolog.Logger

	book    *book.Book
	useBook bool

	threads int
	hashMB  int

	searchDone chan struct{}
}

// New wires an adapter to eng, writing protocol output to out.
func New(eng *engine.Engine, out io.Writer, logger zerolog.Logger) *Adapter {
	return &Adapter{
		engine:  eng,
		out:     out,
		log:     logger,
		threads: engine.DefaultThreads,
		hashMB:  engine.DefaultHashMB,
	}
}

func (a *Adapter) send(format string, args ...any) {
	fmt.Fprintf(a.out, format+"\n", args...)
}

// Run reads commands from in until "quit" or EOF.
func (a *Adapter) Run(in io.Reader) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "uci":
			a.identify()
		case "isready":
			a.send("readyok")
		case "ucinewgame":
			a.waitSearch()
			if err := a.engine.NewGame(); err != nil {
				a.log.Warn().Err(err).Msg("ucinewgame rejected")
			}
		case "position":
			a.position(args)
		case "go":
			a.startSearch(args)
		case "stop":
			a.engine.Stop()
			a.waitSearch()
		case "setoption":
			a.setOption(args)
		case "d":
			a.send("%s", a.engine.Position())
		case "perft":
			a.perft(args)
		case "quit":
			a.engine.Stop()
			a.waitSearch()
			return
		default:
			a.log.Debug().Str("cmd", cmd).Msg("unknown command")
		}
	}
}

func (a *Adapter) identify() {
	a.send("id name %s", engineName)
	a.send("id author %s", engineAuthor)
	a.send("")
	a.send("option name Hash type spin default %d min 1 max %d", engine.DefaultHashMB, engine.MaxHashMB)
	a.send("option name Threads type spin default %d min 1 max %d", engine.DefaultThreads, engine.MaxThreads)
	a.send("option name OwnBook type check default false")
	a.send("option name BookFile type string default <empty>")
	a.send("uciok")
}

// waitSearch blocks until the running search, if any, has finished.
func (a *Adapter) waitSearch() {
	if a.searchDone != nil {
		<-a.searchDone
		a.searchDone = nil
	}
}

// position handles "position [startpos | fen <fen>] [moves ...]".
func (a *Adapter) position(args []string) {
	if len(args) == 0 {
		return
	}
	a.waitSearch()

	fen := board.StartFEN
	rest := args[1:]

	if args[0] == "fen" {
		end := len(rest)
		for i, arg := range rest {
			if arg == "moves" {
				end = i
				break
			}
		}
		fen = strings.Join(rest[:end], " ")
		rest = rest[end:]
	} else if args[0] != "startpos" {
		a.log.Warn().Str("arg", args[0]).Msg("bad position command")
		return
	}

	var moves []string
	if len(rest) > 0 && rest[0] == "moves" {
		moves = rest[1:]
	}

	if err := a.engine.SetPosition(fen, moves); err != nil {
		a.log.Warn().Err(err).Msg("position rejected")
	}
}

// startSearch parses limits, consults the book, and starts a search.
func (a *Adapter) startSearch(args []string) {
	a.waitSearch()

	pos := a.engine.Position()

	if a.useBook && a.book != nil && pos.FullMoveNumber <= bookMaxFullMove {
		if move, ok := a.book.Probe(pos); ok {
			a.log.Debug().Str("move", move.String()).Msg("book hit")
			a.send("bestmove %s", move)
			return
		}
	}

	limits := parseLimits(args)

	a.engine.OnInfo = func(info engine.SearchInfo) {
		a.sendInfo(info)
	}

	done := make(chan struct{})
	a.searchDone = done
	go func() {
		defer close(done)
		result, err := a.engine.Search(limits)
		if err != nil {
			a.log.Error().Err(err).Msg("search failed")
			a.send("bestmove 0000")
			return
		}
		a.send("bestmove %s", result.BestMove)
	}()
}

// parseLimits reads the "go" arguments into SearchLimits.
func parseLimits(args []string) engine.SearchLimits {
	var limits engine.SearchLimits

	intArg := func(i int) int {
		if i+1 < len(args) {
			n, _ := strconv.Atoi(args[i+1])
			return n
		}
		return 0
	}
	msArg := func(i int) time.Duration {
		return time.Duration(intArg(i)) * time.Millisecond
	}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth":
			limits.Depth = intArg(i)
			i++
		case "nodes":
			limits.Nodes = uint64(intArg(i))
			i++
		case "movetime":
			limits.MoveTime = msArg(i)
			i++
		case "wtime":
			limits.Time[board.White] = msArg(i)
			i++
		case "btime":
			limits.Time[board.Black] = msArg(i)
			i++
		case "winc":
			limits.Inc[board.White] = msArg(i)
			i++
		case "binc":
			limits.Inc[board.Black] = msArg(i)
			i++
		case "movestogo":
			limits.MovesToGo = intArg(i)
			i++
		case "infinite":
			limits.Infinite = true
		}
	}
	return limits
}

// sendInfo formats one iteration as a UCI info line.
func (a *Adapter) sendInfo(info engine.SearchInfo) {
	var b strings.Builder
	fmt.Fprintf(&b, "info depth %d score %s nodes %d time %d",
		info.Depth, FormatScore(info.Score), info.Nodes, info.Time.Milliseconds())
	if info.Time > 0 {
		fmt.Fprintf(&b, " nps %d", uint64(float64(info.Nodes)/info.Time.Seconds()))
	}
	if info.HashFull > 0 {
		fmt.Fprintf(&b, " hashfull %d", info.HashFull)
	}
	if len(info.PV) > 0 {
		b.WriteString(" pv")
		for _, m := range info.PV {
			b.WriteByte(' ')
			b.WriteString(m.String())
		}
	}
	a.send("%s", b.String())
}

// FormatScore renders a score as "cp N" or "mate N" per the protocol.
// Mate distances are in full moves, negative when the engine is mated.
func FormatScore(score int) string {
	if engine.IsMateScore(score) {
		if score > 0 {
			return fmt.Sprintf("mate %d", (engine.MateScore-score+1)/2)
		}
		return fmt.Sprintf("mate %d", -(engine.MateScore+score+1)/2)
	}
	return fmt.Sprintf("cp %d", score)
}

// setOption handles "setoption name <name> [value <value>]".
func (a *Adapter) setOption(args []string) {
	var name, value []string
	target := &name
	for _, arg := range args {
		switch arg {
		case "name":
			target = &name
		case "value":
			target = &value
		default:
			*target = append(*target, arg)
		}
	}

	optName := strings.ToLower(strings.Join(name, " "))
	optValue := strings.Join(value, " ")

	switch optName {
	case "hash":
		mb, err := strconv.Atoi(optValue)
		if err != nil {
			a.log.Warn().Str("value", optValue).Msg("bad Hash value")
			return
		}
		a.configure(a.threads, mb)
	case "threads":
		n, err := strconv.Atoi(optValue)
		if err != nil {
			a.log.Warn().Str("value", optValue).Msg("bad Threads value")
			return
		}
		a.configure(n, a.hashMB)
	case "ownbook":
		a.useBook = strings.EqualFold(optValue, "true")
	case "bookfile":
		b, err := book.Load(optValue)
		if err != nil {
			a.log.Warn().Err(err).Msg("book not loaded")
			return
		}
		a.book = b
		a.log.Info().Int("positions", b.Size()).Str("file", optValue).Msg("book loaded")
	default:
		a.log.Debug().Str("option", optName).Msg("unknown option")
	}
}

func (a *Adapter) configure(threads, hashMB int) {
	if err := a.engine.Configure(threads, hashMB); err != nil {
		a.log.Warn().Err(err).Msg("configure rejected")
		return
	}
	a.threads = threads
	a.hashMB = hashMB
}

// perft runs the debug perft command on the current position.
func (a *Adapter) perft(args []string) {
	depth := 5
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil && n > 0 {
			depth = n
		}
	}

	start := time.Now()
	nodes := a.engine.Perft(depth)
	elapsed := time.Since(start)

	a.send("info string perft(%d) = %d in %v", depth, nodes, elapsed)
}
