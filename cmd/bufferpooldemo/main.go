// Command bufferpooldemo drives a BufferPool through a pin/write/
// mark-dirty/unpin/flush/shutdown sequence, logging each step. It takes
// one optional argument: a path to a YAML config file (see
// internal/config). Generalized from the teacher's original
// src/cmd/main.go, which wrote one string into a MockPool and printed
// it back with fmt.Println.
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pnathan/storagepool/internal/bufferpool"
	"github.com/pnathan/storagepool/internal/config"
	"github.com/pnathan/storagepool/internal/pagefile"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	var cfgPath string
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}

	strategy, err := cfg.Strategy()
	if err != nil {
		log.Fatal().Err(err).Msg("parsing strategy")
	}

	pf, err := pagefile.Create(cfg.Pool.PageFilePath, cfg.Pool.PageSize)
	if err != nil {
		log.Fatal().Err(err).Msg("creating page file")
	}
	if err := pf.Close(); err != nil {
		log.Fatal().Err(err).Msg("closing bootstrap handle")
	}

	bp := bufferpool.New()
	err = bp.Init(cfg.Pool.PageFilePath, cfg.Pool.Size, strategy,
		bufferpool.WithPageSize(cfg.Pool.PageSize),
		bufferpool.WithThreadSafe(cfg.Pool.ThreadSafe),
		bufferpool.WithLogger(log.Logger),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("initializing buffer pool")
	}
	defer func() {
		if err := bp.Shutdown(); err != nil {
			log.Error().Err(err).Msg("shutting down buffer pool")
		}
	}()

	var handle bufferpool.PageHandle
	if err := bp.Pin(&handle, 0); err != nil {
		log.Fatal().Err(err).Msg("pinning page 0")
	}

	copy(handle.Data, []byte("hello, buffer pool"))
	if err := bp.MarkDirty(&handle); err != nil {
		log.Fatal().Err(err).Msg("marking page 0 dirty")
	}
	if err := bp.Unpin(&handle); err != nil {
		log.Fatal().Err(err).Msg("unpinning page 0")
	}

	if err := bp.ForceFlushPool(); err != nil {
		log.Fatal().Err(err).Msg("flushing pool")
	}

	log.Info().
		Int("numReadIO", bp.NumReadIO()).
		Int("numWriteIO", bp.NumWriteIO()).
		Str("pool", bp.String()).
		Msg("demo sequence complete")
}
