// Command analyze searches a batch of positions and persists the
// results. Positions already analyzed at the requested depth or deeper
// are skipped, so an interrupted run can resume where it left off.
//
// Input is one FEN per line on stdin or in the file given by -input;
// blank lines and lines starting with '#' are ignored.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/MatN23/RustChessEngine/internal/engine"
	"github.com/MatN23/RustChessEngine/internal/storage"
)

func main() {
	input := flag.String("input", "", "file of FENs to analyze (default stdin)")
	dbDir := flag.String("db", "", "analysis store directory (default platform data dir)")
	depth := flag.Int("depth", 12, "search depth per position")
	threads := flag.Int("threads", 1, "search threads")
	hashMB := flag.Int("hash", engine.DefaultHashMB, "transposition table size in MB")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger()

	if err := run(*input, *dbDir, *depth, *threads, *hashMB, logger); err != nil {
		logger.Fatal().Err(err).Msg("analyze failed")
	}
}

func run(input, dbDir string, depth, threads, hashMB int, logger zerolog.Logger) error {
	var in io.Reader = os.Stdin
	if input != "" {
		f, err := os.Open(input)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	var store *storage.Store
	var err error
	if dbDir != "" {
		store, err = storage.Open(dbDir)
	} else {
		store, err = storage.OpenDefault()
	}
	if err != nil {
		return err
	}
	defer store.Close()

	eng := engine.NewEngine(logger.Level(zerolog.WarnLevel))
	if err := eng.Configure(threads, hashMB); err != nil {
		return err
	}

	analyzed, skipped := 0, 0
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		fen := strings.TrimSpace(scanner.Text())
		if fen == "" || strings.HasPrefix(fen, "#") {
			continue
		}

		done, err := store.HasAtDepth(fen, depth)
		if err != nil {
			return err
		}
		if done {
			skipped++
			continue
		}

		if err := eng.SetPosition(fen, nil); err != nil {
			logger.Warn().Err(err).Msg("skipping position")
			continue
		}

		result, err := eng.Search(engine.SearchLimits{Depth: depth})
		if err != nil {
			return err
		}

		pv := make([]string, len(result.PV))
		for i, m := range result.PV {
			pv[i] = m.String()
		}
		record := storage.Analysis{
			FEN:      fen,
			Depth:    result.Depth,
			Score:    result.Score,
			BestMove: result.BestMove.String(),
			PV:       pv,
			Nodes:    result.Nodes,
		}
		if err := store.Put(record); err != nil {
			return err
		}
		analyzed++

		logger.Info().
			Str("fen", fen).
			Str("best", record.BestMove).
			Int("depth", record.Depth).
			Int("score", record.Score).
			Uint64("nodes", record.Nodes).
			Dur("time", result.Time).
			Msg("analyzed")
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	fmt.Printf("analyzed %d positions, skipped %d already in store\n", analyzed, skipped)
	return nil
}
