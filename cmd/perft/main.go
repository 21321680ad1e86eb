// Command perft counts legal move paths from a position, depth by
// depth, with a live terminal display. With -divide it also breaks the
// final depth down per root move.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	tm "github.com/buger/goterm"

	"github.com/MatN23/RustChessEngine/internal/board"
)

func main() {
	fen := flag.String("fen", board.StartFEN, "position to count from")
	depth := flag.Int("depth", 6, "maximum depth")
	divide := flag.Bool("divide", false, "per-move node counts at the final depth")
	flag.Parse()

	pos, err := board.ParseFEN(*fen)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	rows := []string{fmt.Sprintf("perft %s", *fen), ""}
	draw(rows)

	for d := 1; d <= *depth; d++ {
		start := time.Now()
		nodes := board.Perft(pos.Copy(), d)
		elapsed := time.Since(start)

		rows = append(rows, fmt.Sprintf("depth %2d  %14d nodes  %9s  %8.2f Mnps",
			d, nodes, elapsed.Round(time.Millisecond), mnps(nodes, elapsed)))
		draw(rows)
	}

	if *divide {
		printDivide(pos, *depth)
	}
}

func draw(rows []string) {
	tm.Clear()
	tm.MoveCursor(1, 1)
	for _, row := range rows {
		tm.Println(row)
	}
	tm.Flush()
}

func mnps(nodes uint64, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(nodes) / elapsed.Seconds() / 1e6
}

func printDivide(pos *board.Position, depth int) {
	counts := board.PerftDivide(pos.Copy(), depth)

	moves := make([]board.Move, 0, len(counts))
	for m := range counts {
		moves = append(moves, m)
	}
	sort.Slice(moves, func(i, j int) bool {
		return moves[i].String() < moves[j].String()
	})

	var total uint64
	fmt.Println()
	for _, m := range moves {
		fmt.Printf("%-6s %12d\n", m, counts[m])
		total += counts[m]
	}
	fmt.Printf("%-6s %12d\n", "total", total)
}
