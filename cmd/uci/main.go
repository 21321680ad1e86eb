// Command uci runs the engine as a UCI protocol server on stdin/stdout.
// Diagnostics go to stderr; set RUSTCHESS_DEBUG=1 for verbose logging.
package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/MatN23/RustChessEngine/internal/engine"
	"github.com/MatN23/RustChessEngine/internal/uci"
)

func main() {
	level := zerolog.WarnLevel
	if os.Getenv("RUSTCHESS_DEBUG") != "" {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger().Level(level)

	eng := engine.NewEngine(logger)
	uci.New(eng, os.Stdout, logger).Run(os.Stdin)
}
