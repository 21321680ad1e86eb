// Package engine implements the search core: static evaluation, the
// shared transposition table, the per-worker alpha-beta search and the
// Engine facade that coordinates a lazy-SMP worker pool over it.
package engine

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/MatN23/RustChessEngine/internal/board"
)

const (
	DefaultThreads = 1
	DefaultHashMB  = 64
	MaxThreads     = 256
	MaxHashMB      = 65536
)

// ErrSearchInProgress rejects any operation that would mutate engine
// state while a search is running.
var ErrSearchInProgress = errors.New("engine: search in progress")

// SearchLimits bounds a single search. Zero values mean unlimited;
// Time/Inc are indexed by board.Color.
type SearchLimits struct {
	Depth     int
	Nodes     uint64
	MoveTime  time.Duration
	Time      [2]time.Duration
	Inc       [2]time.Duration
	MovesToGo int
	Infinite  bool
}

// Result is the outcome of a search. BestMove is board.NoMove only
// when the root has no legal moves; Depth is the deepest fully
// completed iteration.
type Result struct {
	BestMove board.Move
	Score    int
	Depth    int
	Nodes    uint64
	Time     time.Duration
	PV       []board.Move
}

// SearchInfo is a progress snapshot emitted once per accepted
// iteration, for UCI info lines.
type SearchInfo struct {
	Depth    int
	Score    int
	Nodes    uint64
	Time     time.Duration
	PV       []board.Move
	HashFull int
}

// Engine owns the root position and the shared transposition table,
// and runs searches over a pool of workers. All methods are meant to
// be called from a single driving goroutine except Stop, which is safe
// to call from anywhere while a search runs.
type Engine struct {
	tt      *TranspositionTable
	threads int
	hashMB  int

	root    *board.Position
	history []uint64 // hashes of positions before the root

	searching atomic.Bool
	stop      atomic.Bool

	log zerolog.Logger

	// OnInfo, when set, receives a snapshot per accepted iteration.
	OnInfo func(SearchInfo)
}

// NewEngine creates an engine at the starting position with default
// thread and hash settings.
func NewEngine(logger zerolog.Logger) *Engine {
	pos, err := board.ParseFEN(board.StartFEN)
	if err != nil {
		panic(err) // StartFEN is a constant
	}
	return &Engine{
		tt:      NewTranspositionTable(DefaultHashMB),
		threads: DefaultThreads,
		hashMB:  DefaultHashMB,
		root:    pos,
		log:     logger,
	}
}

// Configure sets the worker count and transposition table size. It is
// rejected while a search runs so in-flight state is never disturbed.
func (e *Engine) Configure(threads, hashMB int) error {
	if e.searching.Load() {
		return ErrSearchInProgress
	}
	if threads < 1 || threads > MaxThreads {
		return fmt.Errorf("engine: threads %d out of range [1, %d]", threads, MaxThreads)
	}
	if hashMB < 1 || hashMB > MaxHashMB {
		return fmt.Errorf("engine: hash size %d MB out of range [1, %d]", hashMB, MaxHashMB)
	}
	e.threads = threads
	if hashMB != e.hashMB {
		e.tt = NewTranspositionTable(hashMB)
		e.hashMB = hashMB
	}
	return nil
}

// SetPosition installs a new root from a FEN record plus a sequence of
// UCI moves played from it. A malformed FEN or an illegal move rejects
// the whole call and leaves the engine state untouched.
func (e *Engine) SetPosition(fen string, moves []string) error {
	if e.searching.Load() {
		return ErrSearchInProgress
	}

	pos, err := board.ParseFEN(fen)
	if err != nil {
		return fmt.Errorf("set position: %w", err)
	}

	history := make([]uint64, 0, len(moves))
	for _, s := range moves {
		m, err := board.ParseMove(s, pos)
		if err != nil {
			return fmt.Errorf("set position: %w", err)
		}
		if !pos.GenerateLegalMoves().Contains(m) {
			return fmt.Errorf("set position: illegal move %q", s)
		}
		history = append(history, pos.Hash)
		pos.MakeMove(m)
	}

	e.root = pos
	e.history = history
	return nil
}

// Position returns a copy of the current root.
func (e *Engine) Position() *board.Position {
	return e.root.Copy()
}

// NewGame clears the transposition table between games.
func (e *Engine) NewGame() error {
	if e.searching.Load() {
		return ErrSearchInProgress
	}
	e.tt.Clear()
	return nil
}

// Stop asks a running search to finish. The search still returns the
// best result found so far.
func (e *Engine) Stop() {
	e.stop.Store(true)
}

// Perft counts leaf nodes of the legal move tree from the current root.
func (e *Engine) Perft(depth int) uint64 {
	return board.Perft(e.root.Copy(), depth)
}

// Search runs a blocking search under limits and returns the best
// result. Workers iterate independently over shared hash; the
// coordinator keeps the deepest fully completed iteration, ties going
// to the lowest worker id. A position with no legal moves yields a
// terminal mate or stalemate result, not an error.
func (e *Engine) Search(limits SearchLimits) (Result, error) {
	if !e.searching.CompareAndSwap(false, true) {
		return Result{}, ErrSearchInProgress
	}
	defer e.searching.Store(false)

	root := e.root
	start := time.Now()

	legal := root.GenerateLegalMoves()
	if legal.Len() == 0 {
		score := 0
		if root.InCheck() {
			score = -MateScore
		}
		return Result{Score: score, Time: time.Since(start)}, nil
	}

	e.stop.Store(false)
	e.tt.NewSearch()

	maxDepth := MaxPly - 1
	if limits.Depth > 0 && limits.Depth < maxDepth {
		maxDepth = limits.Depth
	}

	tm := NewTimeManager()
	tm.Init(limits, root.SideToMove, gamePly(root))

	e.log.Debug().
		Int("threads", e.threads).
		Int("maxDepth", maxDepth).
		Dur("soft", tm.soft).
		Dur("hard", tm.hard).
		Msg("search started")

	results := make(chan IterationResult, e.threads*4)

	var poolNodes atomic.Uint64
	var g errgroup.Group
	for i := 0; i < e.threads; i++ {
		w := NewWorker(i, e.tt, &e.stop)
		w.SetRootHistory(e.history)
		w.SetNodeBudget(limits.Nodes, &poolNodes)
		g.Go(func() error {
			w.Run(root, maxDepth, results)
			return nil
		})
	}
	go func() {
		_ = g.Wait() // workers never return an error
		close(results)
	}()

	// Hard-limit watchdog. The soft limit is only consulted between
	// iterations; this deadline fires regardless of progress. Infinite
	// and untimed searches have no hard limit and run until stopped.
	watchdogDone := make(chan struct{})
	defer close(watchdogDone)
	if hard := tm.HardLimit(); hard > 0 {
		go func() {
			t := time.NewTimer(hard)
			defer t.Stop()
			select {
			case <-t.C:
				e.stop.Store(true)
			case <-watchdogDone:
			}
		}()
	}

	var best IterationResult
	nodesPerWorker := make(map[int]uint64, e.threads)
	stable := 0

	for r := range results {
		nodesPerWorker[r.WorkerID] = r.Nodes
		var total uint64
		for _, n := range nodesPerWorker {
			total += n
		}

		if r.Depth > best.Depth || (r.Depth == best.Depth && r.WorkerID < best.WorkerID) {
			if best.Move != board.NoMove && r.Move == best.Move {
				stable++
			} else {
				stable = 0
			}
			best = r
			tm.ScaleForStability(stable)

			elapsed := time.Since(start)
			e.log.Debug().
				Int("depth", best.Depth).
				Int("score", best.Score).
				Uint64("nodes", total).
				Dur("elapsed", elapsed).
				Str("move", best.Move.String()).
				Msg("iteration")
			if e.OnInfo != nil {
				e.OnInfo(SearchInfo{
					Depth:    best.Depth,
					Score:    best.Score,
					Nodes:    total,
					Time:     elapsed,
					PV:       best.PV,
					HashFull: e.tt.HashFull(),
				})
			}
		}

		if best.Depth >= maxDepth ||
			(limits.Nodes > 0 && total >= limits.Nodes) ||
			(!limits.Infinite && IsMateScore(best.Score)) ||
			(!limits.Infinite && tm.SoftExpired()) {
			e.stop.Store(true)
		}
	}

	var nodes uint64
	for _, n := range nodesPerWorker {
		nodes += n
	}

	result := Result{
		BestMove: best.Move,
		Score:    best.Score,
		Depth:    best.Depth,
		Nodes:    nodes,
		Time:     time.Since(start),
		PV:       best.PV,
	}
	// A stop before any iteration completed: fall back to the first
	// legal move rather than returning nothing.
	if result.BestMove == board.NoMove {
		result.BestMove = legal.Get(0)
	}
	return result, nil
}

// gamePly converts the root's move counters into a half-move number.
func gamePly(pos *board.Position) int {
	ply := 2 * (pos.FullMoveNumber - 1)
	if pos.SideToMove == board.Black {
		ply++
	}
	return ply
}
